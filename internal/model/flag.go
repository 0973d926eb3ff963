package model

import "time"

// FlagConfig is the source-of-truth row for a flag in one environment.
// Version increments on every committed write and backs the compare-and-swap
// contract: an UPDATE guarded by the expected version either bumps it or
// touches zero rows.
type FlagConfig struct {
	ID                uint64    `gorm:"primaryKey" json:"id"`
	Key               string    `gorm:"size:128;uniqueIndex:idx_flag_env" json:"key"`
	EnvKey            string    `gorm:"size:64;uniqueIndex:idx_flag_env" json:"env"`
	Enabled           bool      `json:"enabled"`
	Type              string    `gorm:"size:32" json:"type"`
	RolloutPercentage int       `json:"rollout_percentage"`
	Version           int       `json:"version"`
	UpdatedAt         time.Time `json:"updated_at"`
	UpdatedBy         string    `gorm:"size:64" json:"updated_by"`
}
