package catalog

import "job-applier/internal/models"

// DefaultTemplates is the built-in catalog. Order matters: it breaks
// recommendation ties and the first entry is the fallback.
func DefaultTemplates() []models.ResumeTemplate {
	return []models.ResumeTemplate{
		{
			Key:         "resume_consultant.md",
			Name:        "Consultant resume",
			TargetRoles: []string{"Consultant", "Manager", "Business Analyst", "Strategic Advisor"},
			Description: "Business-focused resume emphasizing consulting projects, client engagement, and strategic initiatives",
			Keywords:    []string{"consulting", "strategy", "client", "project management", "stakeholder", "business", "advisory"},
			Priority:    3,
		},
		{
			Key:         "resume_solution_architect.md",
			Name:        "Solution Architect resume",
			TargetRoles: []string{"Solution Architect", "Enterprise Architect", "Tech Lead", "Senior Engineer"},
			Description: "Technical architecture-focused resume emphasizing system design, enterprise solutions, and technical leadership",
			Keywords:    []string{"architecture", "system design", "enterprise", "solution", "infrastructure", "technical leadership"},
			Priority:    4,
		},
		{
			Key:         "resume_data_engineer.md",
			Name:        "Data Engineer resume",
			TargetRoles: []string{"Data Engineer", "Big Data Engineer", "ETL Developer", "Analytics Engineer"},
			Description: "Data-focused resume emphasizing data pipelines, big data technologies, and analytics infrastructure",
			Keywords:    []string{"data engineer", "pipeline", "etl", "big data", "spark", "hadoop", "analytics", "data warehouse"},
			Priority:    2,
		},
		{
			Key:         "resume_fde.md",
			Name:        "Full-Stack/Frontend Developer resume",
			TargetRoles: []string{"Full Stack Developer", "Frontend Engineer", "Web Developer", "Software Engineer"},
			Description: "Development-focused resume emphasizing full-stack capabilities, frontend frameworks, and application development",
			Keywords:    []string{"developer", "frontend", "backend", "full-stack", "web", "react", "node", "typescript", "javascript"},
			Priority:    1,
		},
	}
}
