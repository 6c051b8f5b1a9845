// internal/workers/customization/recommend-template/models.go
package recommendtemplate

// Input names the job either by id or by title and description.
type Input struct {
	JobID             string `json:"jobId,omitempty"`
	JobTitle          string `json:"jobTitle,omitempty"`
	JobDescription    string `json:"jobDescription,omitempty"`
	PreferredTemplate string `json:"preferredTemplate,omitempty"`
	TopN              int    `json:"topN,omitempty"`
}

type Output struct {
	SelectedTemplateKey  string   `json:"selectedTemplateKey"`
	SelectedTemplateName string   `json:"selectedTemplateName"`
	SelectionOutcome     string   `json:"selectionOutcome"`
	Recommendations      []string `json:"recommendations"`
}
