package model

import (
	"time"

	"github.com/google/uuid"
)

// User roles.
const (
	RoleCashier    = "cajero"
	RoleSupervisor = "supervisor"
	RoleAdmin      = "administrador"
)

// User stores system operators with role-based access.
type User struct {
	ID           uuid.UUID `gorm:"type:uuid;primaryKey;default:gen_random_uuid()"`
	Username     string    `gorm:"uniqueIndex;not null"`
	Name         string    `gorm:"not null"`
	Email        *string
	PasswordHash string `gorm:"not null"`
	Role         string `gorm:"type:varchar(20);not null"`
	// BranchID restricts a cashier to one branch; nil = all branches
	BranchID  *int
	Active    bool `gorm:"not null;default:true"`
	CreatedAt time.Time
	UpdatedAt time.Time
}
