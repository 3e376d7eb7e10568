package catalog

// defaultCategories is the built-in category table, in ranking tie-break order.
var defaultCategories = []Category{
	{Key: "software", Title: "Software Engineer", Keywords: []string{"software", "engineer", "developer", "javascript", "python", "java", "react", "node"}},
	{Key: "data_scientist", Title: "Data Scientist", Keywords: []string{"data", "machine learning", "ml", "model", "statistics", "python", "pandas", "numpy"}},
	{Key: "product_manager", Title: "Product Manager", Keywords: []string{"product", "roadmap", "stakeholder", "product management", "pm", "strategy"}},
	{Key: "designer", Title: "Designer / UX", Keywords: []string{"design", "ux", "ui", "figma", "sketch", "prototype", "visual"}},
	{Key: "devops_engineer", Title: "DevOps Engineer", Keywords: []string{"devops", "ci/cd", "docker", "kubernetes", "aws", "azure", "gcp", "infrastructure"}},
	{Key: "qa_engineer", Title: "QA / Test Engineer", Keywords: []string{"test", "qa", "automation", "selenium", "jest", "pytest"}},
	{Key: "technical_writer", Title: "Technical Writer", Keywords: []string{"documentation", "write", "technical writing", "docs"}},
	{Key: "teacher", Title: "Teacher / Educator", Keywords: []string{"teaching", "teacher", "curriculum", "lesson", "classroom", "student", "tutor", "education"}},
	{Key: "animator", Title: "Animator / Motion Designer", Keywords: []string{"animation", "after effects", "aftereffects", "maya", "blender", "3d", "render", "storyboard", "animator"}},
	{Key: "accountant", Title: "Accountant / Bookkeeper", Keywords: []string{"accounting", "bookkeeping", "finance", "tax", "quickbooks", "audit", "accounts payable", "accounts receivable"}},
	{Key: "nurse", Title: "Nurse", Keywords: []string{"nurse", "rn", "patient care", "clinical", "ward", "patient", "nursing"}},
	{Key: "doctor", Title: "Physician / Doctor", Keywords: []string{"doctor", "physician", "md", "medical", "clinical", "patient care"}},
	{Key: "marketing_manager", Title: "Marketing Manager", Keywords: []string{"marketing", "seo", "campaign", "content", "social media", "google analytics", "email marketing", "growth"}},
	{Key: "sales_rep", Title: "Sales Representative", Keywords: []string{"sales", "quota", "crm", "pipeline", "prospecting", "negotiation", "account executive", "bdm"}},
	{Key: "hr_manager", Title: "HR / People Operations", Keywords: []string{"hr", "human resources", "talent acquisition", "recruiting", "onboarding", "employee relations"}},
	{Key: "graphic_designer", Title: "Graphic Designer", Keywords: []string{"photoshop", "illustrator", "figma", "adobe", "design", "branding", "visual design"}},
	{Key: "project_manager", Title: "Project Manager", Keywords: []string{"project manager", "project management", "scrum", "pmp", "gantt", "stakeholder management", "delivery"}},
	{Key: "social_worker", Title: "Social Worker", Keywords: []string{"social work", "social worker", "case management", "counseling", "community"}},
}

// defaultWeights boosts keywords that are strong signals on their own.
var defaultWeights = map[string]int{
	"ci cd":            3,
	"ci/cd":            3,
	"cicd":             3,
	"docker":           3,
	"kubernetes":       3,
	"aws":              3,
	"devops":           3,
	"infrastructure":   2,
	"machine learning": 2,
	"python":           2,
	"data":             2,
}

// Default returns the built-in catalog.
func Default() *Catalog {
	c, err := New(defaultCategories, defaultWeights)
	if err != nil {
		// The built-in table is static; failing here is a programming error.
		panic(err)
	}
	return c
}
