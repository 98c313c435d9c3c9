package entity

// Role held by a user in the directory. Roles are assigned externally and are
// never inferred from report data.
type Role string

const (
	RoleStudent     Role = "Student"
	RoleFaculty     Role = "Faculty"
	RoleSchoolChair Role = "School Chair"
	RoleDeanSRIC    Role = "Dean SRIC"
	RoleDirector    Role = "Director"
	RoleAudit       Role = "Audit"
	RoleFinance     Role = "Finance"
	RoleAdmin       Role = "Admin"
)

var validRoles = map[Role]bool{
	RoleStudent:     true,
	RoleFaculty:     true,
	RoleSchoolChair: true,
	RoleDeanSRIC:    true,
	RoleDirector:    true,
	RoleAudit:       true,
	RoleFinance:     true,
	RoleAdmin:       true,
}

// IsValid reports whether r is a known role.
func (r Role) IsValid() bool {
	return validRoles[r]
}

// CanSubmit reports whether the role may create and submit expense reports.
func (r Role) CanSubmit() bool {
	return r == RoleStudent || r == RoleFaculty
}

// FundType classifies the funding source of a report and selects which
// mid-chain path it takes after School Chair approval.
type FundType string

const (
	FundInstitute  FundType = "Institute Fund"
	FundDepartment FundType = "Department/School Fund"
	FundProject    FundType = "Project Fund"
	FundPDA        FundType = "Professional Development Allowance"
)

var validFundTypes = map[FundType]bool{
	FundInstitute:  true,
	FundDepartment: true,
	FundProject:    true,
	FundPDA:        true,
}

// IsValid reports whether f is a known fund type. The empty value is not
// valid: a report's fund type stays unset until a Faculty actor fixes it.
func (f FundType) IsValid() bool {
	return validFundTypes[f]
}

// RequiresProject reports whether reports of this fund type must carry a
// project reference.
func (f FundType) RequiresProject() bool {
	return f == FundProject
}

// Stage is one step in the approval chain, as recorded in approval history.
type Stage string

const (
	StageFaculty     Stage = "Faculty"
	StageSchoolChair Stage = "School Chair"
	StageDeanSRIC    Stage = "Dean SRIC"
	StageDirector    Stage = "Director"
	StageAudit       Stage = "Audit"
	StageFinance     Stage = "Finance"
)

// InstituteKey is the department value used for institute-wide singleton
// designated-approver records (Dean SRIC, Director).
const InstituteKey = "Institute"

// Departments is the fixed enumeration of schools and centres.
var Departments = []string{
	"School of Computing and Electrical Engineering",
	"School of Mechanical and Materials Engineering",
	"School of Civil and Environmental Engineering",
	"School of Basic Sciences",
	"School of Chemical Sciences",
	"School of Biosciences and Bioengineering",
	"School of Humanities and Social Sciences",
	"School of Management",
	"School of Mathematical and Statistical Sciences",
	"Centre for Quantum Science and Technology",
	"Centre for Climate Change and Disaster Management",
}

var departmentSet = func() map[string]bool {
	set := make(map[string]bool, len(Departments))
	for _, d := range Departments {
		set[d] = true
	}
	return set
}()

// IsValidDepartment reports whether dept is one of the known schools/centres.
func IsValidDepartment(dept string) bool {
	return departmentSet[dept]
}

// Payment methods recognized by the totals calculator.
const (
	PaymentUniversityCard = "University Credit Card (P-Card)"
	PaymentPersonalFunds  = "Personal Funds (Reimbursement)"
)

// Actions accepted by the approve endpoint and recorded in history.
const (
	ActionApprove  = "approve"
	ActionReject   = "reject"
	ActionSendBack = "sendback"
)
