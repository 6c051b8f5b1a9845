package ingestjobposting

type Input struct {
	URL             string   `json:"url"`
	Company         string   `json:"company"`
	Title           string   `json:"title"`
	Location        string   `json:"location"`
	Description     string   `json:"description,omitempty"`
	RawContent      string   `json:"rawContent,omitempty"`
	Source          string   `json:"source"`
	MatchedKeywords []string `json:"matchedKeywords,omitempty"`
}

type Output struct {
	JobID     string `json:"jobId"`
	Duplicate bool   `json:"duplicate"`
}
