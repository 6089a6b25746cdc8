package models

import (
	"encoding/json"
	"fmt"
)

// requireKeys fails when obj lacks one of keys or carries it as null.
// encoding/json leaves such fields at their zero value, which would pass
// for data the upstream never sent.
func requireKeys(data []byte, record string, keys ...string) error {
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(data, &fields); err != nil {
		return fmt.Errorf("%s: %w", record, err)
	}
	for _, key := range keys {
		raw, ok := fields[key]
		if !ok || string(raw) == "null" {
			return fmt.Errorf("%s: missing required field %q", record, key)
		}
	}
	return nil
}

func (p *Project) UnmarshalJSON(data []byte) error {
	type plain Project
	if err := requireKeys(data, "project", "id", "name", "url", "createdAt"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(p))
}

func (c *IssueCounts) UnmarshalJSON(data []byte) error {
	type plain IssueCounts
	if err := requireKeys(data, "issue counts", "critical", "warning", "info"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(c))
}

func (s *CrawlSummary) UnmarshalJSON(data []byte) error {
	type plain CrawlSummary
	if err := requireKeys(data, "crawl summary", "id", "status", "crawledAt"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(s))
}

func (h *CrawlHistory) UnmarshalJSON(data []byte) error {
	type plain CrawlHistory
	if err := requireKeys(data, "crawl history", "crawls", "total", "limit", "offset"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(h))
}

func (m *ContentMetrics) UnmarshalJSON(data []byte) error {
	type plain ContentMetrics
	if err := requireKeys(data, "content metrics", "imageCount", "linkCount", "internalLinkCount", "externalLinkCount"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(m))
}

func (i *Image) UnmarshalJSON(data []byte) error {
	type plain Image
	if err := requireKeys(data, "image", "src", "alt", "hasAlt"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(i))
}

func (l *Link) UnmarshalJSON(data []byte) error {
	type plain Link
	if err := requireKeys(data, "link", "href", "text", "isInternal"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(l))
}

func (r *CrawlResult) UnmarshalJSON(data []byte) error {
	type plain CrawlResult
	if err := requireKeys(data, "crawl result", "id", "projectId", "status", "crawledAt"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(r))
}

func (i *Issue) UnmarshalJSON(data []byte) error {
	type plain Issue
	if err := requireKeys(data, "issue", "id", "type", "severity", "message", "status", "createdAt", "updatedAt"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(i))
}

func (s *IssuesSummary) UnmarshalJSON(data []byte) error {
	type plain IssuesSummary
	if err := requireKeys(data, "issues summary", "critical", "warning", "info", "open", "acknowledged", "ignored"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(s))
}

func (l *IssueList) UnmarshalJSON(data []byte) error {
	type plain IssueList
	if err := requireKeys(data, "issues", "issues", "total", "summary"); err != nil {
		return err
	}
	return json.Unmarshal(data, (*plain)(l))
}
