package models

import "time"

type Customer struct {
	ID           uint      `gorm:"primaryKey" json:"id"`
	FullName     string    `gorm:"size:150;not null;index" json:"full_name"`
	Phone        string    `gorm:"size:20" json:"phone"`
	Email        string    `gorm:"size:100" json:"email"`
	Address      string    `json:"address"`
	RegisteredAt time.Time `gorm:"autoCreateTime;<-:create" json:"registered_at"`
	Active       bool      `gorm:"not null;default:true" json:"active"`
	Notes        string    `json:"notes"`
	UpdatedAt    time.Time `json:"updated_at"`
}
