package req

type CreateFlagRequest struct {
	Key               string `json:"key" binding:"required"`
	Env               string `json:"env" binding:"required"`
	Type              string `json:"type" binding:"required"`
	Enabled           bool   `json:"enabled"`
	RolloutPercentage int    `json:"rollout_percentage"`
}

type UpdateFlagRequest struct {
	Env               string `json:"env" binding:"required"`
	ExpectedVersion   int    `json:"expected_version" binding:"required"`
	Type              string `json:"type" binding:"required"`
	Enabled           bool   `json:"enabled"`
	RolloutPercentage int    `json:"rollout_percentage"`
}

type CreateEnvironmentRequest struct {
	Key       string `json:"key" binding:"required"`
	Name      string `json:"name" binding:"required"`
	Protected bool   `json:"protected"`
}
