package dto

import "time"

type CreateReportRequest struct {
	ThreatType  string `json:"threat_type" validate:"required,max=100"`
	Description string `json:"description" validate:"required,max=5000"`
	Location    string `json:"location" validate:"max=255"`
	Urgency     string `json:"urgency" validate:"omitempty,oneof=low medium high"`
}

type ListReportsQuery struct {
	Page         int    `query:"page"`
	PerPage      int    `query:"per_page"`
	ThreatType   string `query:"threat_type"`
	Urgency      string `query:"urgency"`
	Status       string `query:"status"`
	VerifiedOnly bool   `query:"verified_only"`
	IncludeAll   bool   `query:"include_all"`
	IncludeOwn   bool   `query:"include_own"`
	Sort         string `query:"sort"`
}

type VoteRequest struct {
	Direction string `json:"direction" validate:"required,oneof=up down"`
}

type CreateCommentRequest struct {
	Body string `json:"body" validate:"required,max=2000"`
}

type AddMediaRequest struct {
	MediaURL  string `json:"media_url" validate:"omitempty,url,max=1024"`
	MediaType string `json:"media_type" validate:"omitempty,oneof=image video"`
}

type ReporterSummary struct {
	ID          uint   `json:"id"`
	DisplayName string `json:"display_name"`
	Tier        string `json:"tier"`
}

type MediaResponse struct {
	ID        uint      `json:"id"`
	URL       string    `json:"url"`
	MediaType string    `json:"media_type"`
	CreatedAt time.Time `json:"created_at"`
}

type CommentResponse struct {
	ID        uint            `json:"id"`
	ReportID  uint            `json:"report_id"`
	Author    ReporterSummary `json:"author"`
	Body      string          `json:"body"`
	CreatedAt time.Time       `json:"created_at"`
}

type ReportResponse struct {
	ID          uint              `json:"id"`
	ThreatType  string            `json:"threat_type"`
	Description string            `json:"description"`
	Location    string            `json:"location,omitempty"`
	Urgency     string            `json:"urgency"`
	Status      string            `json:"status"`
	Verified    bool              `json:"verified"`
	Upvotes     int               `json:"upvotes"`
	Downvotes   int               `json:"downvotes"`
	CreatedAt   time.Time         `json:"created_at"`
	Reporter    ReporterSummary   `json:"reporter"`
	Media       []MediaResponse   `json:"media"`
	Comments    []CommentResponse `json:"recent_comments"`
	MyVote      string            `json:"my_vote,omitempty"`
}

type ReportListResponse struct {
	Reports []ReportResponse `json:"reports"`
	Page    int              `json:"page"`
	PerPage int              `json:"per_page"`
	Total   int64            `json:"total"`
}

type VoteResponse struct {
	Upvotes   int    `json:"upvotes"`
	Downvotes int    `json:"downvotes"`
	MyVote    string `json:"my_vote,omitempty"`
}

type LeaderboardEntry struct {
	Rank        int    `json:"rank"`
	UserID      uint   `json:"user_id"`
	DisplayName string `json:"display_name"`
	Points      int    `json:"points"`
	Tier        string `json:"tier"`
}

type MyStatsResponse struct {
	ReportsByStatus map[string]int64 `json:"reports_by_status"`
	Points          int              `json:"points"`
	Tier            string           `json:"tier"`
	Rank            int              `json:"rank"`
}

type CommunityStatsResponse struct {
	TotalReports    int64            `json:"total_reports"`
	ReportsByStatus map[string]int64 `json:"reports_by_status"`
	VerifiedReports int64            `json:"verified_reports"`
	TotalScans      int64            `json:"total_scans"`
	ScamsDetected   int64            `json:"scams_detected"`
	KnownThreats    int64            `json:"known_threats"`
	ActiveAlerts    int64            `json:"active_alerts"`
}

type LearningModuleResponse struct {
	ID          uint   `json:"id"`
	Title       string `json:"title"`
	Description string `json:"description"`
	Category    string `json:"category"`
	Difficulty  string `json:"difficulty"`
	Position    int    `json:"position"`
	Completed   bool   `json:"completed"`
	Score       int    `json:"score"`
}

type UpdateProgressRequest struct {
	Completed bool `json:"completed"`
	Score     int  `json:"score" validate:"min=0,max=100"`
}
