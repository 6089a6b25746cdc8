package models

import "encoding/json"

// Severity of an SEO issue
type Severity string

const (
	SeverityCritical Severity = "critical"
	SeverityWarning  Severity = "warning"
	SeverityInfo     Severity = "info"
)

// IssueStatus is the lifecycle state of an SEO issue
type IssueStatus string

const (
	IssueStatusOpen         IssueStatus = "open"
	IssueStatusAcknowledged IssueStatus = "acknowledged"
	IssueStatusIgnored      IssueStatus = "ignored"
)

// Issue is one SEO problem detected by a crawl
type Issue struct {
	ID        string          `json:"id"`
	Type      string          `json:"type"`
	Severity  Severity        `json:"severity"`
	Message   string          `json:"message"`
	Details   json.RawMessage `json:"details,omitzero"`
	Status    IssueStatus     `json:"status"`
	CreatedAt string          `json:"createdAt"`
	UpdatedAt string          `json:"updatedAt"`
}

// IssuesSummary holds aggregate issue counts computed upstream
type IssuesSummary struct {
	Critical     int `json:"critical"`
	Warning      int `json:"warning"`
	Info         int `json:"info"`
	Open         int `json:"open"`
	Acknowledged int `json:"acknowledged"`
	Ignored      int `json:"ignored"`
}

// IssueList is the filtered issue listing of a project
type IssueList struct {
	Issues  []Issue       `json:"issues"`
	Total   int           `json:"total"`
	Summary IssuesSummary `json:"summary"`
}
