package models

// Crawl status values reported by RankPath. The set is owned upstream and
// is not validated locally.
const (
	CrawlStatusPending   = "pending"
	CrawlStatusRunning   = "running"
	CrawlStatusCompleted = "completed"
	CrawlStatusFailed    = "failed"
)

// IssueCounts tallies the issues found by one crawl
type IssueCounts struct {
	Critical int `json:"critical"`
	Warning  int `json:"warning"`
	Info     int `json:"info"`
}

// CrawlSummary is the abbreviated form of a crawl used in crawl history
type CrawlSummary struct {
	ID             string       `json:"id"`
	Status         string       `json:"status"`
	CrawledAt      string       `json:"crawledAt"`
	Score          *int         `json:"score,omitzero"`
	IssueCounts    *IssueCounts `json:"issueCounts,omitzero"`
	HTTPStatus     *int         `json:"httpStatus,omitzero"`
	ResponseTimeMs *int         `json:"responseTimeMs,omitzero"`
}

// CrawlHistory is one page of a project's crawl history
type CrawlHistory struct {
	Crawls []CrawlSummary `json:"crawls"`
	Total  int            `json:"total"`
	Limit  int            `json:"limit"`
	Offset int            `json:"offset"`
}

// OpenGraph holds the og:* tags found on a crawled page
type OpenGraph struct {
	Title       *string `json:"title,omitzero"`
	Description *string `json:"description,omitzero"`
	Image       *string `json:"image,omitzero"`
}

// SeoData holds the on-page SEO attributes of a crawled page
type SeoData struct {
	Title           *string    `json:"title,omitzero"`
	MetaDescription *string    `json:"metaDescription,omitzero"`
	H1Tags          []string   `json:"h1Tags,omitzero"`
	CanonicalURL    *string    `json:"canonicalUrl,omitzero"`
	Language        *string    `json:"language,omitzero"`
	RobotsMeta      *string    `json:"robotsMeta,omitzero"`
	OpenGraph       *OpenGraph `json:"openGraph,omitzero"`
}

// ContentMetrics holds content statistics of a crawled page
type ContentMetrics struct {
	WordCount         *int `json:"wordCount,omitzero"`
	ListCount         *int `json:"listCount,omitzero"`
	ImageCount        int  `json:"imageCount"`
	LinkCount         int  `json:"linkCount"`
	InternalLinkCount int  `json:"internalLinkCount"`
	ExternalLinkCount int  `json:"externalLinkCount"`
}

// Image is an <img> found on a crawled page
type Image struct {
	Src    string `json:"src"`
	Alt    string `json:"alt"`
	HasAlt bool   `json:"hasAlt"`
}

// Link is an anchor found on a crawled page
type Link struct {
	Href       string `json:"href"`
	Text       string `json:"text"`
	IsInternal bool   `json:"isInternal"`
}

// GeoAnalysis is the generative-engine-optimization report of a crawl.
// Every field is absent until the analysis has run upstream.
type GeoAnalysis struct {
	CitationScore     *int     `json:"citationScore,omitzero"`
	CitableFactsCount *int     `json:"citableFactsCount,omitzero"`
	QuestionsAnswered []string `json:"questionsAnswered,omitzero"`
	Strengths         []string `json:"strengths,omitzero"`
	Weaknesses        []string `json:"weaknesses,omitzero"`
	Recommendations   []string `json:"recommendations,omitzero"`
	AuthorityTopics   []string `json:"authorityTopics,omitzero"`
	AnalyzedAt        *string  `json:"analyzedAt,omitzero"`
}

// CrawlResult is one crawl in full detail. A failed crawl is still a
// CrawlResult, with Status set accordingly and usually an ErrorMessage.
type CrawlResult struct {
	ID             string          `json:"id"`
	ProjectID      string          `json:"projectId"`
	Status         string          `json:"status"`
	ErrorMessage   *string         `json:"errorMessage,omitzero"`
	CrawledAt      string          `json:"crawledAt"`
	Score          *int            `json:"score,omitzero"`
	IssueCounts    *IssueCounts    `json:"issueCounts,omitzero"`
	HTTPStatus     *int            `json:"httpStatus,omitzero"`
	ResponseTimeMs *int            `json:"responseTimeMs,omitzero"`
	SeoData        *SeoData        `json:"seoData,omitzero"`
	ContentMetrics *ContentMetrics `json:"contentMetrics,omitzero"`
	Images         []Image         `json:"images,omitzero"`
	Links          []Link          `json:"links,omitzero"`
	GeoAnalysis    *GeoAnalysis    `json:"geoAnalysis,omitzero"`
}
