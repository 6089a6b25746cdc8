package models

import "fmt"

// Validate checks the fields a project cannot be without.
func (p Project) Validate() error {
	if p.ID == "" {
		return fmt.Errorf("project: missing id")
	}
	return nil
}

// Validate checks the fields a crawl result cannot be without.
func (r CrawlResult) Validate() error {
	if r.ID == "" {
		return fmt.Errorf("crawl result: missing id")
	}
	if r.Status == "" {
		return fmt.Errorf("crawl result %s: missing status", r.ID)
	}
	return nil
}

// Validate checks every crawl summary on the page.
func (h CrawlHistory) Validate() error {
	for i, crawl := range h.Crawls {
		if crawl.ID == "" {
			return fmt.Errorf("crawl history: crawl %d: missing id", i)
		}
	}
	return nil
}

// Validate checks every issue in the listing.
func (l IssueList) Validate() error {
	for i, issue := range l.Issues {
		if issue.ID == "" {
			return fmt.Errorf("issues: issue %d: missing id", i)
		}
	}
	return nil
}

// Validate checks every project in the listing.
func (ps Projects) Validate() error {
	for i, p := range ps {
		if err := p.Validate(); err != nil {
			return fmt.Errorf("projects: project %d: %w", i, err)
		}
	}
	return nil
}
