package domain

// Role is an access role assigned to a user. Unknown or unassigned roles fall
// back to the most restrictive category set.
type Role string

const (
	RoleAdmin     Role = "admin"
	RoleHR        Role = "hr"
	RoleDeveloper Role = "developer"
)

// AllowedCategories resolves a role to the document categories it may read.
func (r Role) AllowedCategories() []Category {
	switch r {
	case RoleAdmin:
		return []Category{CategoryHR, CategoryTechnical, CategoryGeneral}
	case RoleHR:
		return []Category{CategoryHR, CategoryGeneral}
	case RoleDeveloper:
		return []Category{CategoryTechnical, CategoryGeneral}
	default:
		return []Category{CategoryGeneral}
	}
}

// IsAdmin reports whether the role carries administrative privileges.
func (r Role) IsAdmin() bool {
	return r == RoleAdmin
}

// User is an authenticated end-user identity.
type User struct {
	ID    string `json:"id"`
	Email string `json:"email"`
	Role  Role   `json:"role"`
}
