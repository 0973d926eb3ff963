package model

import "time"

// FlagAudit is an append-only record of one committed flag mutation.
// It is written inside the same database transaction as the mutation it
// describes, so the two can never diverge. Before/After hold JSON snapshots
// of the flag config; Before is empty for creates, After for deletes.
type FlagAudit struct {
	ID        int64     `json:"id" gorm:"primaryKey"`
	FlagKey   string    `json:"flag_key" gorm:"size:128;index"`
	EnvKey    string    `json:"env" gorm:"size:64;index"`
	Action    string    `json:"action" gorm:"size:16"`
	ActorID   string    `json:"actor_id" gorm:"size:64"`
	Before    string    `json:"before" gorm:"type:text"`
	After     string    `json:"after" gorm:"type:text"`
	TraceID   string    `json:"trace_id" gorm:"size:36;index"`
	CreatedAt time.Time `json:"created_at" gorm:"index"`
}
