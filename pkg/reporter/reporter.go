package reporter

import (
	"bytes"
	"encoding/json"
	"fmt"
	"strings"

	"github.com/amosWeiskopf/rankpath-mcp/internal/models"
)

// Supported output formats
const (
	FormatJSON     = "json"
	FormatMarkdown = "markdown"
)

// Reporter renders API results as text
type Reporter struct {
	indent string
}

// New creates a Reporter producing two-space indented JSON
func New() *Reporter {
	return &Reporter{indent: "  "}
}

// Render formats v in the given format. An empty format means JSON.
func (r *Reporter) Render(v any, format string) (string, error) {
	switch format {
	case "", FormatJSON:
		return r.JSON(v)
	case FormatMarkdown:
		return r.Markdown(v)
	default:
		return "", fmt.Errorf("unsupported format: %s", format)
	}
}

// JSON renders v as indented JSON. Identical values always render to
// identical text.
func (r *Reporter) JSON(v any) (string, error) {
	data, err := json.MarshalIndent(v, "", r.indent)
	if err != nil {
		return "", fmt.Errorf("failed to marshal result: %w", err)
	}
	return string(data), nil
}

// Markdown renders the RankPath result types as a human-readable summary
func (r *Reporter) Markdown(v any) (string, error) {
	var buf bytes.Buffer

	switch val := v.(type) {
	case []models.Project:
		writeProjects(&buf, val)
	case *models.Project:
		writeProjects(&buf, []models.Project{*val})
	case *models.CrawlHistory:
		writeCrawlHistory(&buf, val)
	case *models.CrawlResult:
		writeCrawlResult(&buf, val)
	case *models.IssueList:
		writeIssues(&buf, val)
	default:
		return "", fmt.Errorf("no markdown layout for %T", v)
	}

	return buf.String(), nil
}

func writeProjects(buf *bytes.Buffer, projects []models.Project) {
	fmt.Fprintf(buf, "# Projects\n\n")
	if len(projects) == 0 {
		fmt.Fprintf(buf, "*No projects.*\n")
		return
	}
	fmt.Fprintf(buf, "| Name | URL | ID | Created |\n")
	fmt.Fprintf(buf, "|------|-----|----|---------|\n")
	for _, p := range projects {
		fmt.Fprintf(buf, "| %s | %s | %s | %s |\n", cell(p.Name), cell(p.URL), p.ID, p.CreatedAt)
	}
}

func writeCrawlHistory(buf *bytes.Buffer, h *models.CrawlHistory) {
	fmt.Fprintf(buf, "# Crawl History\n\n")
	fmt.Fprintf(buf, "*Showing %d of %d (offset %d, limit %d)*\n\n", len(h.Crawls), h.Total, h.Offset, h.Limit)
	if len(h.Crawls) == 0 {
		return
	}
	fmt.Fprintf(buf, "| Crawled | Status | Score | Critical | Warning | Info |\n")
	fmt.Fprintf(buf, "|---------|--------|-------|----------|---------|------|\n")
	for _, c := range h.Crawls {
		critical, warning, info := "-", "-", "-"
		if c.IssueCounts != nil {
			critical = fmt.Sprint(c.IssueCounts.Critical)
			warning = fmt.Sprint(c.IssueCounts.Warning)
			info = fmt.Sprint(c.IssueCounts.Info)
		}
		fmt.Fprintf(buf, "| %s | %s | %s | %s | %s | %s |\n",
			c.CrawledAt, c.Status, optInt(c.Score), critical, warning, info)
	}
}

func writeCrawlResult(buf *bytes.Buffer, c *models.CrawlResult) {
	fmt.Fprintf(buf, "# Crawl %s\n\n", c.ID)
	fmt.Fprintf(buf, "- **Status:** %s\n", c.Status)
	if c.ErrorMessage != nil {
		fmt.Fprintf(buf, "- **Error:** %s\n", *c.ErrorMessage)
	}
	fmt.Fprintf(buf, "- **Crawled:** %s\n", c.CrawledAt)
	fmt.Fprintf(buf, "- **Score:** %s\n", optInt(c.Score))
	if c.HTTPStatus != nil {
		fmt.Fprintf(buf, "- **HTTP status:** %d\n", *c.HTTPStatus)
	}
	if c.ResponseTimeMs != nil {
		fmt.Fprintf(buf, "- **Response time:** %d ms\n", *c.ResponseTimeMs)
	}
	fmt.Fprintf(buf, "\n")

	if s := c.SeoData; s != nil {
		fmt.Fprintf(buf, "## On-page SEO\n\n")
		fmt.Fprintf(buf, "- **Title:** %s\n", optString(s.Title))
		fmt.Fprintf(buf, "- **Meta description:** %s\n", optString(s.MetaDescription))
		fmt.Fprintf(buf, "- **Canonical:** %s\n", optString(s.CanonicalURL))
		if len(s.H1Tags) > 0 {
			fmt.Fprintf(buf, "- **H1:** %s\n", strings.Join(s.H1Tags, "; "))
		}
		fmt.Fprintf(buf, "\n")
	}

	if m := c.ContentMetrics; m != nil {
		fmt.Fprintf(buf, "## Content\n\n")
		fmt.Fprintf(buf, "| Metric | Value |\n")
		fmt.Fprintf(buf, "|--------|-------|\n")
		fmt.Fprintf(buf, "| Words | %s |\n", optInt(m.WordCount))
		fmt.Fprintf(buf, "| Images | %d |\n", m.ImageCount)
		fmt.Fprintf(buf, "| Links | %d (%d internal, %d external) |\n\n",
			m.LinkCount, m.InternalLinkCount, m.ExternalLinkCount)
	}

	if g := c.GeoAnalysis; g != nil {
		fmt.Fprintf(buf, "## GEO Analysis\n\n")
		fmt.Fprintf(buf, "**Citation score:** %s\n\n", optInt(g.CitationScore))
		writeList(buf, "Strengths", g.Strengths)
		writeList(buf, "Weaknesses", g.Weaknesses)
		writeList(buf, "Recommendations", g.Recommendations)
	}
}

func writeIssues(buf *bytes.Buffer, l *models.IssueList) {
	s := l.Summary
	fmt.Fprintf(buf, "# Issues (%d)\n\n", l.Total)
	fmt.Fprintf(buf, "| Critical | Warning | Info | Open | Acknowledged | Ignored |\n")
	fmt.Fprintf(buf, "|----------|---------|------|------|--------------|---------|\n")
	fmt.Fprintf(buf, "| %d | %d | %d | %d | %d | %d |\n\n",
		s.Critical, s.Warning, s.Info, s.Open, s.Acknowledged, s.Ignored)

	for _, issue := range l.Issues {
		fmt.Fprintf(buf, "### %s\n", issue.Type)
		fmt.Fprintf(buf, "- **Severity:** %s\n", issue.Severity)
		fmt.Fprintf(buf, "- **Status:** %s\n", issue.Status)
		fmt.Fprintf(buf, "- **Message:** %s\n", issue.Message)
		fmt.Fprintf(buf, "\n")
	}
}

func writeList(buf *bytes.Buffer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintf(buf, "### %s\n\n", title)
	for _, item := range items {
		fmt.Fprintf(buf, "- %s\n", item)
	}
	fmt.Fprintf(buf, "\n")
}

func optInt(v *int) string {
	if v == nil {
		return "n/a"
	}
	return fmt.Sprint(*v)
}

func optString(v *string) string {
	if v == nil {
		return "n/a"
	}
	return *v
}

// cell escapes pipes so a value cannot break the table
func cell(s string) string {
	return strings.ReplaceAll(s, "|", `\|`)
}
