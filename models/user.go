package models

import (
	"time"

	"golang.org/x/crypto/bcrypt"
)

// PasswordHashCost is the bcrypt cost used for stored passwords.
const PasswordHashCost = bcrypt.DefaultCost

// User is an operator account of the administration panel.
type User struct {
	ID           uint       `json:"id_usuario" gorm:"column:id_usuario;primaryKey"`
	Username     string     `json:"nombre_usuario" gorm:"column:nombre_usuario;uniqueIndex;not null"`
	PasswordHash string     `json:"-" gorm:"column:contrasena;not null"` // never serialized
	RoleID       uint       `json:"id_rol" gorm:"column:id_rol;not null;index"`
	Role         *Role      `json:"rol" gorm:"foreignKey:RoleID;references:ID"`
	ExpiresAt    *time.Time `json:"fecha_fin" gorm:"column:fecha_fin"` // nil means the account never expires
	CreatedAt    time.Time  `json:"creado_en" gorm:"column:creado_en"`
	UpdatedAt    time.Time  `json:"actualizado_en" gorm:"column:actualizado_en"`
}

func (User) TableName() string {
	return "usuario"
}

// SetPassword hashes the given password and sets it on the user model.
func (u *User) SetPassword(password string) error {
	hashedPassword, err := bcrypt.GenerateFromPassword([]byte(password), PasswordHashCost)
	if err != nil {
		return err
	}
	u.PasswordHash = string(hashedPassword)
	return nil
}

// CheckPassword verifies if the given password matches the user's hashed password.
func (u *User) CheckPassword(password string) bool {
	err := bcrypt.CompareHashAndPassword([]byte(u.PasswordHash), []byte(password))
	return err == nil
}

// IsActive reports whether the account is usable at the given instant: no
// expiry, or an expiry strictly after now.
func (u *User) IsActive(now time.Time) bool {
	return u.ExpiresAt == nil || u.ExpiresAt.After(now)
}

// HasPermission checks the permissions granted by the user's role.
// Assumes u.Role is preloaded.
func (u *User) HasPermission(permission string) bool {
	if u.Role == nil {
		return false
	}
	return u.Role.HasPermission(permission)
}
