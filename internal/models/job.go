package models

import "time"

// Job sources known to the ingestion collaborators. Source is free text in
// storage; these are the values the scrapers emit today.
const (
	SourceLinkedIn  = "linkedin"
	SourceIndeed    = "indeed"
	SourceJobStreet = "jobstreet"
)

// Job is a deduplicated posting. ID is the fingerprint of
// (URL, Company, Title, Location).
type Job struct {
	ID              string    `json:"id"`
	URL             string    `json:"url"`
	Company         string    `json:"company"`
	Title           string    `json:"title"`
	Location        string    `json:"location"`
	Description     *string   `json:"description,omitempty"`
	RawContent      *string   `json:"rawContent,omitempty"`
	Source          string    `json:"source"`
	ScrapedAt       time.Time `json:"scrapedAt"`
	UpdatedAt       time.Time `json:"updatedAt"`
	MatchedKeywords []string  `json:"matchedKeywords,omitempty"`
}

// IsStale reports whether the posting was scraped more than days ago.
func (j *Job) IsStale(now time.Time, days int) bool {
	return j.ScrapedAt.Before(now.AddDate(0, 0, -days))
}

// DescriptionText returns the description or "" when absent.
func (j *Job) DescriptionText() string {
	if j.Description == nil {
		return ""
	}
	return *j.Description
}

// Posting is what the ingestion collaborator hands over for one scraped job.
type Posting struct {
	URL             string   `json:"url"`
	Company         string   `json:"company"`
	Title           string   `json:"title"`
	Location        string   `json:"location"`
	Description     *string  `json:"description,omitempty"`
	RawContent      *string  `json:"rawContent,omitempty"`
	Source          string   `json:"source"`
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`
}
