package models

import "gorm.io/gorm"

// User is a back-office login: a cashier or an admin. Sales record the user
// who confirmed them; voids record the user who voided them.
type User struct {
	gorm.Model
	Name     string `gorm:"size:255;not null" json:"name"`
	Email    string `gorm:"uniqueIndex;size:255;not null" json:"email"`
	Password string `gorm:"size:255;not null" json:"-"` // hashed, never serialised
	Role     string `gorm:"size:50;not null;default:cashier" json:"role"`
}

func (u User) IsAdmin() bool { return u.Role == "admin" }
