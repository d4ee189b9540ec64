package dto

// Trigger statuses.
const (
	TriggerStatusCompleted = "completed"
	TriggerStatusQueued    = "queued"
)

// TriggerResponse reports a manually triggered job.
type TriggerResponse struct {
	Job    string `json:"job"`
	Status string `json:"status"`
	TaskID string `json:"task_id"`
}

// StatsResponse represents a user's reward totals.
type StatsResponse struct {
	TotalSaved    string `json:"total_saved"`
	TotalInvested string `json:"total_invested"`
	TargetsBeaten int64  `json:"targets_beaten"`
	Investments   int64  `json:"investments"`
	BestStreak    int64  `json:"best_streak"`
	FirstInvested bool   `json:"first_invested"`
}
