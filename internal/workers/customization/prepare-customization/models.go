package preparecustomization

type Input struct {
	TemplateKey    string                 `json:"templateKey"`
	JobTitle       string                 `json:"jobTitle"`
	JobDescription string                 `json:"jobDescription,omitempty"`
	Company        string                 `json:"company"`
	CompanyInfo    map[string]interface{} `json:"companyInfo,omitempty"`
	ApplicationID  int64                  `json:"applicationId,omitempty"`
	DryRun         bool                   `json:"dryRun,omitempty"`
}

// Output leaves the template content out of the process variables; the
// content generator reads the full record from the staging store.
type Output struct {
	StagingID     string `json:"stagingId"`
	ApplicationID int64  `json:"applicationId,omitempty"`
	TemplateKey   string `json:"templateKey"`
	TemplateName  string `json:"templateName"`
	OutputPath    string `json:"outputPath"`
	Status        string `json:"customizationStatus"`
	PreparedAt    string `json:"preparedAt"`
	DryRun        bool   `json:"dryRun"`
}
