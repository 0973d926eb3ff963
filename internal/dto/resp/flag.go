package resp

import "time"

// EvalResult is the evaluation decision plus the reason it was made.
// Bucket is set only for percentage flags that were actually bucketed.
type EvalResult struct {
	FlagKey string `json:"flag_key"`
	Enabled bool   `json:"enabled"`
	Reason  string `json:"reason"`
	Bucket  *int   `json:"bucket,omitempty"`
}

type FlagItem struct {
	ID                uint64    `json:"id"`
	Key               string    `json:"key"`
	Env               string    `json:"env"`
	Enabled           bool      `json:"enabled"`
	Type              string    `json:"type"`
	RolloutPercentage int       `json:"rollout_percentage"`
	Version           int       `json:"version"`
	UpdatedAt         time.Time `json:"updated_at"`
	UpdatedBy         string    `json:"updated_by"`
}

type MutationResponse struct {
	Version int `json:"version"`
}

type AuditLogItem struct {
	ID        int64     `json:"id"`
	FlagKey   string    `json:"flag_key"`
	Env       string    `json:"env"`
	Action    string    `json:"action"`
	ActorID   string    `json:"actor_id"`
	Before    string    `json:"before,omitempty"`
	After     string    `json:"after,omitempty"`
	CreatedAt time.Time `json:"created_at"`
}

type EnvironmentItem struct {
	Key       string    `json:"key"`
	Name      string    `json:"name"`
	Protected bool      `json:"protected"`
	CreatedAt time.Time `json:"created_at"`
}
