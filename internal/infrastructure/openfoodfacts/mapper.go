package openfoodfacts

import (
	"time"

	"github.com/labelsafe/backend/internal/domain"
)

// productEnvelope is the Open Food Facts lookup response. status != 1 or
// a missing product both mean "not found".
type productEnvelope struct {
	Status  int         `json:"status"`
	Product *offProduct `json:"product"`
}

// offProduct mirrors the subset of the OFF product payload the
// classifier cares about. Every field is optional.
type offProduct struct {
	Code        string `json:"code"`
	ProductName string `json:"product_name"`
	GenericName string `json:"generic_name"`
	Brands      string `json:"brands"`

	IngredientsText   string `json:"ingredients_text"`
	IngredientsTextSK string `json:"ingredients_text_sk"`
	IngredientsTextCS string `json:"ingredients_text_cs"`
	IngredientsTextEN string `json:"ingredients_text_en"`

	AllergensTags           []string `json:"allergens_tags"`
	TracesTags              []string `json:"traces_tags"`
	Traces                  string   `json:"traces"`
	Labels                  string   `json:"labels"`
	LabelsTags              []string `json:"labels_tags"`
	IngredientsAnalysisTags []string `json:"ingredients_analysis_tags"`

	LastModifiedT int64 `json:"last_modified_t"`
}

// mapToProductRecord converts the raw OFF payload into the domain model.
// Missing fields become empty strings/sets; the mapper never fails.
func mapToProductRecord(code string, p *offProduct) *domain.ProductRecord {
	if p == nil {
		p = &offProduct{}
	}
	if p.Code != "" {
		code = p.Code
	}

	ingredients := map[string]string{}
	if p.IngredientsText != "" {
		ingredients[""] = p.IngredientsText
	}
	if p.IngredientsTextSK != "" {
		ingredients["sk"] = p.IngredientsTextSK
	}
	if p.IngredientsTextCS != "" {
		ingredients["cs"] = p.IngredientsTextCS
	}
	if p.IngredientsTextEN != "" {
		ingredients["en"] = p.IngredientsTextEN
	}

	var lastModified time.Time
	if p.LastModifiedT > 0 {
		lastModified = time.Unix(p.LastModifiedT, 0).UTC()
	}

	return &domain.ProductRecord{
		Code:            code,
		Name:            p.ProductName,
		GenericName:     p.GenericName,
		Brands:          p.Brands,
		IngredientsText: ingredients,
		AllergenTags:    p.AllergensTags,
		TracesTags:      p.TracesTags,
		Traces:          p.Traces,
		Labels:          p.Labels,
		LabelTags:       p.LabelsTags,
		AnalysisTags:    p.IngredientsAnalysisTags,
		LastModified:    lastModified,
	}
}
