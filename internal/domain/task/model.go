package task

import "time"

type Status string

const (
	StatusActive    Status = "active"
	StatusCompleted Status = "completed"
	StatusDismissed Status = "dismissed"
)

type Priority string

const (
	PriorityHigh   Priority = "high"
	PriorityMedium Priority = "medium"
	PriorityLow    Priority = "low"
)

type Category string

const (
	CategoryAggressiveness Category = "aggressiveness"
	CategoryFarmEfficiency Category = "farm_efficiency"
	CategoryMacro          Category = "macro"
	CategorySurvivability  Category = "survivability"
	CategoryWinRate        Category = "win_rate"
)

// Task is one coaching goal derived from a user's statistics.
type Task struct {
	ID                 string
	UserID             string
	Category           Category
	Title              string
	Description        string
	Status             Status
	Priority           Priority
	TargetValue        float64
	CurrentValue       float64
	ProgressPercentage float64
	CreatedAt          time.Time
	UpdatedAt          time.Time
}
