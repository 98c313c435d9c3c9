package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/subosito/gotenv"
	"go.uber.org/zap"

	"github.com/sric-portal/expense-workflow/internal/application/service"
	"github.com/sric-portal/expense-workflow/internal/config"
	"github.com/sric-portal/expense-workflow/internal/infrastructure/persistence/repository"
	"github.com/sric-portal/expense-workflow/internal/infrastructure/persistence/sqlite"
	httpserver "github.com/sric-portal/expense-workflow/internal/interfaces/http"
	"github.com/sric-portal/expense-workflow/internal/statement"
	"github.com/sric-portal/expense-workflow/pkg/database"
	"github.com/sric-portal/expense-workflow/pkg/utils"
)

func main() {
	// Local overrides; absence is fine in production.
	_ = gotenv.Load()

	cfg, err := config.Load("configs/config.yaml")
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to load configuration: %v\n", err)
		os.Exit(1)
	}

	logger, err := utils.NewLogger(utils.LoggerConfig{
		Level:      cfg.Logger.Level,
		OutputPath: cfg.Logger.OutputPath,
		Format:     cfg.Logger.Format,
	})
	if err != nil {
		fmt.Fprintf(os.Stderr, "Failed to initialize logger: %v\n", err)
		os.Exit(1)
	}
	defer logger.Sync()

	logger.Info("Starting Expense Workflow System",
		zap.String("version", "1.0.0"),
		zap.Int("port", cfg.Server.Port))

	if dir := filepath.Dir(cfg.Database.Path); dir != "." {
		if err := os.MkdirAll(dir, 0755); err != nil {
			logger.Fatal("Failed to create data directory", zap.Error(err))
		}
	}

	db, err := database.New(database.Config{
		Path:            cfg.Database.Path,
		MaxOpenConns:    cfg.Database.MaxOpenConns,
		MaxIdleConns:    cfg.Database.MaxIdleConns,
		ConnMaxLifetime: cfg.Database.ConnMaxLifetime,
	}, logger)
	if err != nil {
		logger.Fatal("Failed to initialize database", zap.Error(err))
	}
	defer db.Close()

	migrator := database.NewMigrator(db, logger)
	if err := migrator.Run(sqlite.Migrations); err != nil {
		logger.Fatal("Failed to run database migrations", zap.Error(err))
	}

	// Persistence
	txManager := sqlite.NewDB(db.DB, logger)
	reportRepo := repository.NewReportRepository(db.DB, logger)
	userRepo := repository.NewUserRepository(db.DB, logger)
	approverRepo := repository.NewApproverRepository(db.DB, logger)

	// Application services
	registryService := service.NewRegistryService(approverRepo, userRepo, logger)
	reportService := service.NewReportService(reportRepo, userRepo, registryService, txManager, logger)

	exporter := statement.NewExporter(cfg.Statement.InstituteName, cfg.Statement.SheetName, logger)

	server := httpserver.NewServer(httpserver.ServerConfig{
		Host:         cfg.Server.Host,
		Port:         cfg.Server.Port,
		ReadTimeout:  cfg.Server.ReadTimeout,
		WriteTimeout: cfg.Server.WriteTimeout,
		JWTSecret:    cfg.Auth.JWTSecret,
	}, reportService, registryService, exporter, logger)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	if err := server.Start(ctx); err != nil {
		logger.Fatal("Server error", zap.Error(err))
	}

	logger.Info("Server exited successfully")
}
