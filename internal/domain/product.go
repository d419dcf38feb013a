package domain

import "time"

// ProductRecord is the sparse product description returned by the food
// database. Every field may be empty: absence of data is normal and must
// never be treated as an error by consumers.
type ProductRecord struct {
	Code        string `json:"code"`
	Name        string `json:"name"`
	GenericName string `json:"genericName,omitempty"`
	Brands      string `json:"brands,omitempty"`

	// IngredientsText holds ingredient free text keyed by language code
	// ("sk", "cs", "en"). The untagged default variant is stored under
	// the empty key.
	IngredientsText map[string]string `json:"ingredientsText,omitempty"`

	AllergenTags []string `json:"allergenTags,omitempty"`
	TracesTags   []string `json:"tracesTags,omitempty"`
	Traces       string   `json:"traces,omitempty"`
	Labels       string   `json:"labels,omitempty"`
	LabelTags    []string `json:"labelTags,omitempty"`

	// AnalysisTags carries the database's own ingredient analysis tags,
	// e.g. "en:may-contain-gluten".
	AnalysisTags []string `json:"analysisTags,omitempty"`

	LastModified time.Time `json:"lastModified,omitempty"`
}

// Ingredients returns the ingredient text for the given language, or the
// empty string when that variant is missing.
func (p *ProductRecord) Ingredients(lang string) string {
	if p == nil || p.IngredientsText == nil {
		return ""
	}
	return p.IngredientsText[lang]
}

// DisplayName returns the best available human-readable product name.
func (p *ProductRecord) DisplayName() string {
	if p == nil {
		return ""
	}
	if p.Name != "" {
		return p.Name
	}
	return p.GenericName
}
