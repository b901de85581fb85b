package models

import "time"

// DocumentType classifies knowledge-base documents for filtered search.
type DocumentType string

const (
	DocumentTypeGeneral        DocumentType = "general"
	DocumentTypePesticide      DocumentType = "pesticide"
	DocumentTypeCropProtection DocumentType = "crop_protection"
	DocumentTypeRegulation     DocumentType = "regulation"
)

// Document is the ingestion-side shape of a knowledge-base entry.
type Document struct {
	Text         string       `json:"text"`
	Source       string       `json:"source"`
	DocumentType DocumentType `json:"document_type"`
	Language     string       `json:"language"`
	CountryCode  string       `json:"country_code,omitempty"`
	Crop         string       `json:"crop,omitempty"`
	Chemical     string       `json:"chemical,omitempty"`
	PHIDays      *int         `json:"phi_days,omitempty"` // pre-harvest interval
}

// ScoredDocument is one ranked hit from the vector search collaborator.
type ScoredDocument struct {
	ID           string         `json:"id"`
	Score        float32        `json:"score"`
	Text         string         `json:"text"`
	Source       string         `json:"source"`
	DocumentType DocumentType   `json:"document_type"`
	Language     string         `json:"language"`
	CountryCode  string         `json:"country_code,omitempty"`
	Crop         string         `json:"crop,omitempty"`
	Chemical     string         `json:"chemical,omitempty"`
	PHIDays      *int           `json:"phi_days,omitempty"`
	Metadata     map[string]any `json:"metadata,omitempty"`
}

// SearchFilters narrows a knowledge-base search. Zero-value fields are
// not applied.
type SearchFilters struct {
	DocumentType DocumentType
	Crop         string
	Chemical     string
	Language     string
	CountryCode  string
}

// Empty reports whether no filter field is set.
func (f SearchFilters) Empty() bool {
	return f.DocumentType == "" && f.Crop == "" && f.Chemical == "" &&
		f.Language == "" && f.CountryCode == ""
}

// PesticideInfo is the extracted pre-harvest-interval answer.
type PesticideInfo struct {
	Chemical       string `json:"chemical"`
	Crop           string `json:"crop"`
	PHIDays        int    `json:"phi_days"`
	Source         string `json:"source"`
	AdditionalInfo string `json:"additional_info"`
}

// PesticideResult wraps a pesticide lookup with its supporting documents.
type PesticideResult struct {
	Found     bool             `json:"found"`
	Info      *PesticideInfo   `json:"pesticide_info,omitempty"`
	Message   string           `json:"message,omitempty"`
	Documents []ScoredDocument `json:"documents"`
}

// ProtectionCategory groups crop-protection recommendations by treatment.
type ProtectionCategory string

const (
	ProtectionFungicide   ProtectionCategory = "fungicides"
	ProtectionInsecticide ProtectionCategory = "insecticides"
	ProtectionHerbicide   ProtectionCategory = "herbicides"
	ProtectionGeneral     ProtectionCategory = "general"
)

// ProtectionRecommendation is one treatment suggestion for a crop.
type ProtectionRecommendation struct {
	Chemical   string `json:"chemical"`
	TargetPest string `json:"target"`
	Dosage     string `json:"dosage"`
	Timing     string `json:"timing"`
	Details    string `json:"text"`
}

// CropProtectionAdvice groups recommendations by treatment category.
type CropProtectionAdvice struct {
	Fungicides   []ProtectionRecommendation `json:"fungicides"`
	Insecticides []ProtectionRecommendation `json:"insecticides"`
	Herbicides   []ProtectionRecommendation `json:"herbicides"`
	General      []ProtectionRecommendation `json:"general"`
}

// Add appends a recommendation to the matching category bucket. Unknown
// categories fall into General.
func (a *CropProtectionAdvice) Add(category ProtectionCategory, rec ProtectionRecommendation) {
	switch category {
	case ProtectionFungicide:
		a.Fungicides = append(a.Fungicides, rec)
	case ProtectionInsecticide:
		a.Insecticides = append(a.Insecticides, rec)
	case ProtectionHerbicide:
		a.Herbicides = append(a.Herbicides, rec)
	default:
		a.General = append(a.General, rec)
	}
}

// IndexStats reports the outcome of a bulk ingestion run.
type IndexStats struct {
	Total     int `json:"total"`
	Succeeded int `json:"success"`
	Failed    int `json:"failed"`
}

// FarmerRecord is one row from the farmer-record store (fields, crops,
// field notes).
type FarmerRecord struct {
	FarmerID  int64     `json:"farmer_id" db:"farmer_id"`
	FieldName string    `json:"field_name" db:"field_name"`
	Crop      string    `json:"crop" db:"crop"`
	Notes     string    `json:"notes" db:"notes"`
	UpdatedAt time.Time `json:"updated_at" db:"updated_at"`
}

// CountryAdvisory is a country-scoped agronomy note from the relational
// store (regulations, advisories, seasonal guidance).
type CountryAdvisory struct {
	CountryCode string    `json:"country_code" db:"country_code"`
	Title       string    `json:"title" db:"title"`
	Body        string    `json:"body" db:"body"`
	Language    string    `json:"language" db:"language"`
	PublishedAt time.Time `json:"published_at" db:"published_at"`
}
