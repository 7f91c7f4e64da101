package record

// Result is the structured projection of the model text accumulated so far.
// It is rebuilt from scratch on every parse and never patched.
type Result struct {
	Components []Component `json:"components"`
	Analysis   Analysis    `json:"analysis"`
}

// Component is one generated UI component.
type Component struct {
	ID            string   `json:"id"`
	Name          string   `json:"name"`
	Category      string   `json:"category,omitempty"`
	Description   string   `json:"description,omitempty"`
	Documentation string   `json:"documentation,omitempty"`
	Code          string   `json:"code,omitempty"`
	PreviewCode   string   `json:"previewCode,omitempty"`
	PreviewCodes  []string `json:"previewCodes,omitempty"`
}

// Analysis is the model's assessment of the overall request.
type Analysis struct {
	Summary               string         `json:"summary,omitempty"`
	ComponentCategories   []CategoryInfo `json:"componentCategories,omitempty"`
	TechnicalRequirements []string       `json:"technicalRequirements,omitempty"`
	DesignPatterns        []string       `json:"designPatterns,omitempty"`
	EstimatedComplexity   string         `json:"estimatedComplexity,omitempty"`
	Recommendations       []string       `json:"recommendations,omitempty"`
	Dependencies          []string       `json:"dependencies,omitempty"`
}

// CategoryInfo is one "Category: description" line of the analysis.
type CategoryInfo struct {
	Category    string   `json:"category"`
	Description string   `json:"description"`
	Components  []string `json:"components"`
}

// Empty reports whether no analysis field has been revealed yet.
func (a Analysis) Empty() bool {
	return a.Summary == "" &&
		a.EstimatedComplexity == "" &&
		len(a.ComponentCategories) == 0 &&
		len(a.TechnicalRequirements) == 0 &&
		len(a.DesignPatterns) == 0 &&
		len(a.Recommendations) == 0 &&
		len(a.Dependencies) == 0
}

// Merge overlays every non-empty field of other onto a.
func (a *Analysis) Merge(other Analysis) {
	if other.Summary != "" {
		a.Summary = other.Summary
	}
	if other.EstimatedComplexity != "" {
		a.EstimatedComplexity = other.EstimatedComplexity
	}
	if other.ComponentCategories != nil {
		a.ComponentCategories = other.ComponentCategories
	}
	if other.TechnicalRequirements != nil {
		a.TechnicalRequirements = other.TechnicalRequirements
	}
	if other.DesignPatterns != nil {
		a.DesignPatterns = other.DesignPatterns
	}
	if other.Recommendations != nil {
		a.Recommendations = other.Recommendations
	}
	if other.Dependencies != nil {
		a.Dependencies = other.Dependencies
	}
}
