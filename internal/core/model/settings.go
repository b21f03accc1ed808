package model

import (
	"fmt"

	"github.com/go-playground/validator/v10"
)

var validate = validator.New(validator.WithRequiredStructEnabled())

// InferenceSettings controls edge inference for one build. It is passed by
// value, so a build never observes later changes.
type InferenceSettings struct {
	CompanyWeight       float64 `json:"company_weight" toml:"company_weight" validate:"gte=0,lte=1000"`
	SchoolWeight        float64 `json:"school_weight" toml:"school_weight" validate:"gte=0,lte=1000"`
	LocationWeight      float64 `json:"location_weight" toml:"location_weight" validate:"gte=0,lte=1000"`
	PositionWeight      float64 `json:"position_weight" toml:"position_weight" validate:"gte=0,lte=1000"`
	Threshold           float64 `json:"threshold" toml:"threshold" validate:"gt=0"`
	FuzzyMatching       bool    `json:"fuzzy_matching" toml:"fuzzy_matching"`
	SimilarityThreshold float64 `json:"similarity_threshold" toml:"similarity_threshold" validate:"gte=0,lte=100"`
}

// DefaultInferenceSettings mirrors the weights the upload form starts with.
func DefaultInferenceSettings() InferenceSettings {
	return InferenceSettings{
		CompanyWeight:       3,
		SchoolWeight:        2,
		LocationWeight:      1,
		PositionWeight:      1,
		Threshold:           2,
		FuzzyMatching:       true,
		SimilarityThreshold: 85,
	}
}

// NewInferenceSettings validates s and returns it.
func NewInferenceSettings(s InferenceSettings) (InferenceSettings, error) {
	if err := s.Validate(); err != nil {
		return InferenceSettings{}, err
	}
	return s, nil
}

// Validate checks field ranges and that at least one attribute can contribute.
func (s InferenceSettings) Validate() error {
	if err := validate.Struct(s); err != nil {
		return NewError(KindInvalidInput, "validate_settings", "", err)
	}
	if s.CompanyWeight+s.SchoolWeight+s.LocationWeight+s.PositionWeight <= 0 {
		return NewError(KindInvalidInput, "validate_settings", "", fmt.Errorf("at least one attribute weight must be positive"))
	}
	return nil
}

// Weight returns the configured weight of a named attribute.
func (s InferenceSettings) Weight(attr string) float64 {
	switch attr {
	case AttrCompany:
		return s.CompanyWeight
	case AttrSchool:
		return s.SchoolWeight
	case AttrLocation:
		return s.LocationWeight
	case AttrPosition:
		return s.PositionWeight
	}
	return 0
}

// ActiveAttributes returns the attributes with a positive weight, in scoring order.
func (s InferenceSettings) ActiveAttributes() []string {
	var attrs []string
	for _, a := range Attributes {
		if s.Weight(a) > 0 {
			attrs = append(attrs, a)
		}
	}
	return attrs
}

// SettingsOverride is the partial settings document accepted from clients.
// Nil fields keep the base value.
type SettingsOverride struct {
	CompanyWeight       *float64 `json:"company_weight"`
	SchoolWeight        *float64 `json:"school_weight"`
	LocationWeight      *float64 `json:"location_weight"`
	PositionWeight      *float64 `json:"position_weight"`
	Threshold           *float64 `json:"threshold"`
	FuzzyMatching       *bool    `json:"fuzzy_matching"`
	SimilarityThreshold *float64 `json:"similarity_threshold"`
}

// Apply merges o over base and validates the result.
func (o SettingsOverride) Apply(base InferenceSettings) (InferenceSettings, error) {
	s := base
	if o.CompanyWeight != nil {
		s.CompanyWeight = *o.CompanyWeight
	}
	if o.SchoolWeight != nil {
		s.SchoolWeight = *o.SchoolWeight
	}
	if o.LocationWeight != nil {
		s.LocationWeight = *o.LocationWeight
	}
	if o.PositionWeight != nil {
		s.PositionWeight = *o.PositionWeight
	}
	if o.Threshold != nil {
		s.Threshold = *o.Threshold
	}
	if o.FuzzyMatching != nil {
		s.FuzzyMatching = *o.FuzzyMatching
	}
	if o.SimilarityThreshold != nil {
		s.SimilarityThreshold = *o.SimilarityThreshold
	}
	return NewInferenceSettings(s)
}
