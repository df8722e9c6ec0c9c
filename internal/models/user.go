package models

// User roles.
const (
	RoleUser  = "user"
	RoleAdmin = "admin"
)

// User represents a registered account. New accounts start unvalidated and
// cannot log in until an administrator approves them.
type User struct {
	BaseModel
	Name         string    `json:"name"`
	Email        string    `gorm:"uniqueIndex" json:"email"`
	PasswordHash string    `json:"-"`
	Photo        string    `json:"photo,omitempty"`
	Role         string    `gorm:"default:user" json:"role"`
	Validated    bool      `json:"validated"`
	Orders       []Order   `gorm:"constraint:OnDelete:CASCADE" json:"orders,omitempty"`
	Comments     []Comment `gorm:"constraint:OnDelete:CASCADE" json:"comments,omitempty"`
}

// IsAdmin reports whether the user holds the administrator role.
func (u *User) IsAdmin() bool {
	return u.Role == RoleAdmin
}
