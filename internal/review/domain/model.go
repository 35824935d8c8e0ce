package domain

import "time"

// Project is the aggregate root of the review workflow. Scores, business
// plans, and missing-information records are owned by it and cannot outlive
// it. It is intentionally storage-agnostic and used across repository and
// HTTP layers.
type Project struct {
	ID             string    `json:"id"`
	EnterpriseName string    `json:"enterprise_name"`
	ProjectName    string    `json:"project_name"`
	Description    *string   `json:"description,omitempty"`
	Status         Status    `json:"status"`
	TotalScore     *float64  `json:"total_score,omitempty"`
	ReviewResult   *string   `json:"review_result,omitempty"`
	CreatedAt      time.Time `json:"created_at"`
	UpdatedAt      time.Time `json:"updated_at"`
}

// BusinessPlan tracks one uploaded document. It is created in processing and
// receives exactly one terminal write (completed or failed) per upload
// attempt; the ingestion pipeline owns it exclusively.
type BusinessPlan struct {
	ID           string    `json:"id"`
	ProjectID    string    `json:"project_id"`
	FileName     string    `json:"file_name"`
	FileSize     int64     `json:"file_size"`
	Status       string    `json:"status"`
	UploadTime   time.Time `json:"upload_time"`
	UpdatedAt    time.Time `json:"updated_at"`
	ErrorMessage *string   `json:"error_message,omitempty"`
}

// BusinessPlan status constants
const (
	PlanProcessing = "processing"
	PlanCompleted  = "completed"
	PlanFailed     = "failed"
)

// DimensionScore is one top-level rubric score with its sub-dimension
// breakdown. Sub-dimension scores inform the dimension score but are not
// required to sum to it.
type DimensionScore struct {
	Dimension     string              `json:"dimension"`
	Score         float64             `json:"score"`
	MaxScore      float64             `json:"max_score"`
	Comments      string              `json:"comments"`
	SubDimensions []SubDimensionScore `json:"sub_dimensions"`
}

// SubDimensionScore is a finer-grained criterion within a dimension.
type SubDimensionScore struct {
	SubDimension string  `json:"sub_dimension"`
	Score        float64 `json:"score"`
	MaxScore     float64 `json:"max_score"`
	Comments     string  `json:"comments"`
}

// ScoreSet is a validated, ready-to-persist replacement for a project's
// entire score set. Total and ReviewResult are derived by the scoring
// service before the set reaches the repository.
type ScoreSet struct {
	Dimensions   []DimensionScore
	Total        float64
	ReviewResult string
}

// MissingInformation flags a gap a reviewer found in one rubric dimension.
// Open records gate the project's completion status.
type MissingInformation struct {
	ID              string    `json:"id"`
	ProjectID       string    `json:"project_id"`
	Dimension       string    `json:"dimension"`
	InformationType string    `json:"information_type"`
	Description     string    `json:"description"`
	Status          string    `json:"status"`
	CreatedAt       time.Time `json:"created_at"`
	UpdatedAt       time.Time `json:"updated_at"`
}

// MissingInformation status constants
const (
	InfoOpen     = "open"
	InfoResolved = "resolved"
)

// Statistics summarizes project counts by status plus the most recent
// projects, for the dashboard.
type Statistics struct {
	PendingReview  int       `json:"pending_review"`
	Processing     int       `json:"processing"`
	Completed      int       `json:"completed"`
	NeedsInfo      int       `json:"needs_info"`
	RecentProjects []Project `json:"recent_projects"`
}

// ProjectPage is one page of a filtered project listing.
type ProjectPage struct {
	Total int       `json:"total"`
	Items []Project `json:"items"`
}

// ProjectFilter narrows and paginates project listings.
type ProjectFilter struct {
	Page   int
	Size   int
	Status string
	Search string
}
