package models

import (
	"time"

	"gorm.io/gorm"

	"github.com/mkravchenko/blog-backend/internal/hash"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleAdmin Role = "admin"
)

func (r Role) Valid() bool {
	switch r {
	case RoleUser, RoleAdmin:
		return true
	}
	return false
}

type User struct {
	ID        uint   `gorm:"primaryKey;autoIncrement" json:"id"`
	Username  string `gorm:"size:20;uniqueIndex;not null" json:"username"`
	Email     string `gorm:"size:50;uniqueIndex;not null" json:"email"`
	Password  string `gorm:"not null"                     json:"-"`
	Role      Role   `gorm:"size:10;not null;default:user" json:"role"`
	FirstName string `gorm:"size:50" json:"first_name,omitempty"`
	LastName  string `gorm:"size:50" json:"last_name,omitempty"`
	Website   string `gorm:"size:100" json:"website,omitempty"`
	Twitter   string `gorm:"size:100" json:"twitter,omitempty"`
	Github    string `gorm:"size:100" json:"github,omitempty"`

	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}

// BeforeCreate hashes the password before the first write. A hashing failure
// aborts the write.
func (u *User) BeforeCreate(_ *gorm.DB) error {
	hashed, err := hash.HashPassword(u.Password)
	if err != nil {
		return err
	}
	u.Password = hashed
	return nil
}

// BeforeUpdate re-hashes only when the password field itself was changed, so
// an unrelated save never touches the stored hash.
func (u *User) BeforeUpdate(tx *gorm.DB) error {
	if !tx.Statement.Changed("Password") {
		return nil
	}
	hashed, err := hash.HashPassword(u.Password)
	if err != nil {
		return err
	}
	tx.Statement.SetColumn("Password", hashed)
	return nil
}

type RefreshToken struct {
	ID        uint      `gorm:"primaryKey"       json:"id"`
	UserID    uint      `gorm:"index;not null"   json:"user_id"`
	Token     string    `gorm:"size:500;uniqueIndex;not null" json:"token"`
	CreatedAt time.Time `json:"created_at"`
	UpdatedAt time.Time `json:"updated_at"`
}
