package models

// User roles.
const (
	RoleManager = "manager"
	RoleStaff   = "staff"
)

// User is a back-office account that operates the store.
type User struct {
	BaseModel
	Username     string `gorm:"uniqueIndex" json:"username"`
	Email        string `gorm:"uniqueIndex" json:"email"`
	PasswordHash string `json:"-"`
	Role         string `gorm:"default:staff" json:"role"`
}

// IsManager reports whether the user holds the manager role.
func (u *User) IsManager() bool {
	return u.Role == RoleManager
}
