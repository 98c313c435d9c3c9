package workflow

import (
	"github.com/sric-portal/expense-workflow/internal/domain/entity"
	domainwf "github.com/sric-portal/expense-workflow/internal/domain/workflow"
)

// PendingStage returns the stage whose approver is expected to act next on a
// report in the given status, and false when nobody is (Draft or terminal).
// A report has at most one pending stage at any time.
func PendingStage(status domainwf.State, fundType entity.FundType) (entity.Stage, bool) {
	switch status {
	case domainwf.StateSubmitted:
		return entity.StageFaculty, true
	case domainwf.StateFacultyApproved:
		return entity.StageSchoolChair, true
	case domainwf.StateSchoolChairApproved:
		switch fundType {
		case entity.FundProject:
			return entity.StageDeanSRIC, true
		case entity.FundInstitute:
			return entity.StageDirector, true
		case entity.FundDepartment, entity.FundPDA:
			return entity.StageAudit, true
		}
		return "", false
	case domainwf.StateDeanSRICApproved, domainwf.StateDirectorApproved:
		return entity.StageAudit, true
	case domainwf.StateAuditApproved:
		return entity.StageFinance, true
	}
	return "", false
}

// StageRole maps an approval stage to the role that acts at it.
func StageRole(stage entity.Stage) entity.Role {
	switch stage {
	case entity.StageFaculty:
		return entity.RoleFaculty
	case entity.StageSchoolChair:
		return entity.RoleSchoolChair
	case entity.StageDeanSRIC:
		return entity.RoleDeanSRIC
	case entity.StageDirector:
		return entity.RoleDirector
	case entity.StageAudit:
		return entity.RoleAudit
	case entity.StageFinance:
		return entity.RoleFinance
	}
	return ""
}

// RoleStage is the inverse of StageRole for approver roles.
func RoleStage(role entity.Role) (entity.Stage, bool) {
	switch role {
	case entity.RoleFaculty:
		return entity.StageFaculty, true
	case entity.RoleSchoolChair:
		return entity.StageSchoolChair, true
	case entity.RoleDeanSRIC:
		return entity.StageDeanSRIC, true
	case entity.RoleDirector:
		return entity.StageDirector, true
	case entity.RoleAudit:
		return entity.StageAudit, true
	case entity.RoleFinance:
		return entity.StageFinance, true
	}
	return "", false
}
