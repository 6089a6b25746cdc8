package models

// Project represents a site tracked by RankPath
type Project struct {
	ID        string `json:"id"`
	Name      string `json:"name"`
	URL       string `json:"url"`
	CreatedAt string `json:"createdAt"`
}

// APIError is the body RankPath returns alongside a non-2xx status
type APIError struct {
	Error   string  `json:"error"`
	Message *string `json:"message,omitzero"`
}

// Projects is the project listing of the authenticated user
type Projects []Project
