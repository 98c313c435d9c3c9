package port

import (
	"context"

	"github.com/sric-portal/expense-workflow/internal/domain/entity"
)

// ApproverRegistry is the lookup abstraction the workflow engine authorizes
// against. It answers "who is the legitimate approver" without exposing how
// the records are stored. Nil without error means no one is designated.
type ApproverRegistry interface {
	GetSchoolChair(ctx context.Context, department string) (*entity.UserRef, error)
	GetDeanSRIC(ctx context.Context) (*entity.UserRef, error)
	GetDirector(ctx context.Context) (*entity.UserRef, error)
}
