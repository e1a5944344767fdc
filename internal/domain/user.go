package domain

// Role enumerates user roles.
type Role string

const (
	RoleReporter  Role = "REPORTER"
	RoleDeveloper Role = "DEVELOPER"
	RoleManager   Role = "MANAGER"
)

// Seniority enumerates developer seniority levels.
type Seniority string

const (
	SeniorityJunior Seniority = "JUNIOR"
	SeniorityMid    Seniority = "MID"
	SenioritySenior Seniority = "SENIOR"
)

// ExpertiseArea enumerates the areas a ticket or developer belongs to.
type ExpertiseArea string

const (
	ExpertiseBackend   ExpertiseArea = "BACKEND"
	ExpertiseFrontend  ExpertiseArea = "FRONTEND"
	ExpertiseFullstack ExpertiseArea = "FULLSTACK"
	ExpertiseDB        ExpertiseArea = "DB"
	ExpertiseDesign    ExpertiseArea = "DESIGN"
	ExpertiseDevOps    ExpertiseArea = "DEVOPS"
)

// User is any account known to the system. Developer and manager
// specific fields are populated according to Role.
type User struct {
	Username     string
	Email        string
	Role         Role
	PasswordHash string

	// Developer fields.
	ExpertiseArea    ExpertiseArea
	Seniority        Seniority
	HireDate         string
	PerformanceScore float64

	// Manager fields.
	Subordinates []string
}

// IsDeveloper reports whether the user holds the DEVELOPER role.
func (u *User) IsDeveloper() bool {
	return u.Role == RoleDeveloper
}

// IsManager reports whether the user holds the MANAGER role.
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}
