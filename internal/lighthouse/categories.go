package lighthouse

// Audit categories understood by Lighthouse. Any other name is passed through unchanged.
const (
	CategoryAccessibility = "accessibility"
	CategoryBestPractices = "best-practices"
	CategoryPerformance   = "performance"
	CategoryPWA           = "pwa"
	CategorySEO           = "seo"
)

// EnableCategory adds name to the category set unless it is already present.
func (auditor *Auditor) EnableCategory(name string) *Auditor {
	for _, existing := range auditor.categories {
		if existing == name {
			return auditor
		}
	}
	auditor.categories = append(auditor.categories, name)
	return auditor
}

// DisableCategory removes name from the category set when present.
func (auditor *Auditor) DisableCategory(name string) *Auditor {
	for index, existing := range auditor.categories {
		if existing == name {
			auditor.categories = append(auditor.categories[:index], auditor.categories[index+1:]...)
			return auditor
		}
	}
	return auditor
}

// EnableCategories enables each name in order.
func (auditor *Auditor) EnableCategories(names ...string) *Auditor {
	for _, name := range names {
		auditor.EnableCategory(name)
	}
	return auditor
}

// DisableCategories disables each name in order.
func (auditor *Auditor) DisableCategories(names ...string) *Auditor {
	for _, name := range names {
		auditor.DisableCategory(name)
	}
	return auditor
}

// SetCategory enables or disables name.
func (auditor *Auditor) SetCategory(name string, enabled bool) *Auditor {
	if enabled {
		return auditor.EnableCategory(name)
	}
	return auditor.DisableCategory(name)
}

// Accessibility enables the accessibility category.
func (auditor *Auditor) Accessibility() *Auditor {
	return auditor.EnableCategory(CategoryAccessibility)
}

// BestPractices enables the best-practices category.
func (auditor *Auditor) BestPractices() *Auditor {
	return auditor.EnableCategory(CategoryBestPractices)
}

// Performance enables the performance category.
func (auditor *Auditor) Performance() *Auditor {
	return auditor.EnableCategory(CategoryPerformance)
}

// PWA enables the progressive web app category.
func (auditor *Auditor) PWA() *Auditor {
	return auditor.EnableCategory(CategoryPWA)
}

// SEO enables the search engine optimization category.
func (auditor *Auditor) SEO() *Auditor {
	return auditor.EnableCategory(CategorySEO)
}

// Categories returns the enabled categories in insertion order.
func (auditor *Auditor) Categories() []string {
	return append([]string{}, auditor.categories...)
}
