package model

import "time"

// Environment groups flag configurations. Protected environments
// (production-class) require the admin role for mutations.
type Environment struct {
	ID        uint64    `gorm:"primaryKey" json:"id"`
	Key       string    `gorm:"size:64;uniqueIndex" json:"key"`
	Name      string    `gorm:"size:128" json:"name"`
	Protected bool      `json:"protected"`
	CreatedAt time.Time `json:"created_at"`
}
