package enhancements

import "strings"

// IndustryProfile describes a target industry for a revamp. The keywords feed
// both the instruction file and the keyword analysis.
type IndustryProfile struct {
	Name     string
	Display  string
	Keywords []string
}

// The industry set is closed. Adding one means updating the generator-side
// playbooks as well, so new entries land here and there together.
var industryProfiles = []IndustryProfile{
	{
		Name:    "software_engineering",
		Display: "Software Engineering",
		Keywords: []string{
			"software", "engineering", "api", "cloud", "microservices",
			"testing", "ci/cd", "architecture", "scalability", "agile",
		},
	},
	{
		Name:    "data_science",
		Display: "Data Science",
		Keywords: []string{
			"python", "machine learning", "statistics", "sql", "modeling",
			"visualization", "pipelines", "experimentation", "analytics", "ai",
		},
	},
	{
		Name:    "product_management",
		Display: "Product Management",
		Keywords: []string{
			"roadmap", "stakeholders", "metrics", "discovery", "prioritization",
			"launch", "strategy", "user research", "okrs", "cross-functional",
		},
	},
	{
		Name:    "finance",
		Display: "Finance",
		Keywords: []string{
			"financial", "modeling", "forecasting", "budgeting", "compliance",
			"audit", "valuation", "reporting", "risk", "excel",
		},
	},
	{
		Name:    "healthcare",
		Display: "Healthcare",
		Keywords: []string{
			"clinical", "patient", "hipaa", "care", "medical",
			"compliance", "ehr", "quality", "safety", "outcomes",
		},
	},
	{
		Name:    "marketing",
		Display: "Marketing",
		Keywords: []string{
			"campaigns", "brand", "seo", "content", "analytics",
			"conversion", "social media", "engagement", "growth", "crm",
		},
	},
}

// IndustryByName returns the profile for name.
func IndustryByName(name string) (IndustryProfile, bool) {
	for _, p := range industryProfiles {
		if p.Name == name {
			return p, true
		}
	}
	return IndustryProfile{}, false
}

// IndustryNames returns the supported industries for error messages.
func IndustryNames() string {
	names := make([]string, 0, len(industryProfiles))
	for _, p := range industryProfiles {
		names = append(names, p.Name)
	}
	return strings.Join(names, ", ")
}
