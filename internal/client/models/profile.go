// Package models defines the health-state types persisted by the client
// and the strict parsers for structured inference responses.
package models

import (
	"math"
	"slices"
	"strings"

	"github.com/dmitrijs2005/medigenie/internal/common"
)

const (
	DefaultGender   = "Other"
	DefaultLanguage = "English"
	UnknownBlood    = "Unknown"
)

// BloodGroups is the closed set accepted for UserProfile.BloodGroup.
var BloodGroups = []string{"A+", "A-", "B+", "B-", "AB+", "AB-", "O+", "O-", UnknownBlood}

// Genders lists the values offered at registration. Gender is free text, so
// this is a hint rather than a constraint.
var Genders = []string{"Male", "Female", "Non-binary", "Prefer not to say", "Other"}

// Demographics are the user-editable baseline fields of a profile.
type Demographics struct {
	Name              string   `json:"name"`
	Age               int      `json:"age"`
	Gender            string   `json:"gender"`
	Weight            float64  `json:"weight"`
	Height            float64  `json:"height"`
	BloodGroup        string   `json:"bloodGroup"`
	Allergies         []string `json:"allergies"`
	MedicalHistory    string   `json:"medicalHistory"`
	PreferredLanguage string   `json:"preferredLanguage"`
}

// UserProfile is the persisted profile. HealthSummary and DigitalTwin are
// derived state written only by the summarizer and twin builder paths.
type UserProfile struct {
	Demographics

	HealthSummary string       `json:"healthSummary,omitempty"`
	DigitalTwin   *DigitalTwin `json:"digitalTwin,omitempty"`
	IsRegistered  bool         `json:"isRegistered"`
}

// NewProfile returns the unregistered placeholder profile.
func NewProfile() UserProfile {
	return UserProfile{
		Demographics: Demographics{
			Gender:            DefaultGender,
			BloodGroup:        UnknownBlood,
			Allergies:         []string{},
			PreferredLanguage: DefaultLanguage,
		},
	}
}

func ValidBloodGroup(s string) bool {
	return slices.Contains(BloodGroups, s)
}

// Normalize fills blank optional fields with defaults and trims text.
// Allergy order, case and duplicates are preserved; blank entries are dropped.
func (d Demographics) Normalize() Demographics {
	d.Name = strings.TrimSpace(d.Name)
	d.Gender = strings.TrimSpace(d.Gender)
	if d.Gender == "" {
		d.Gender = DefaultGender
	}
	d.BloodGroup = strings.TrimSpace(d.BloodGroup)
	if d.BloodGroup == "" {
		d.BloodGroup = UnknownBlood
	}
	d.PreferredLanguage = strings.TrimSpace(d.PreferredLanguage)
	if d.PreferredLanguage == "" {
		d.PreferredLanguage = DefaultLanguage
	}

	allergies := make([]string, 0, len(d.Allergies))
	for _, a := range d.Allergies {
		if a = strings.TrimSpace(a); a != "" {
			allergies = append(allergies, a)
		}
	}
	d.Allergies = allergies
	return d
}

func (d Demographics) Validate() error {
	switch {
	case d.Name == "":
		return common.Invalid("name", "is required")
	case d.Age < 0:
		return common.Invalid("age", "must not be negative")
	case d.Weight < 0 || math.IsNaN(d.Weight) || math.IsInf(d.Weight, 0):
		return common.Invalid("weight", "must be a non-negative number")
	case d.Height < 0 || math.IsNaN(d.Height) || math.IsInf(d.Height, 0):
		return common.Invalid("height", "must be a non-negative number")
	case !ValidBloodGroup(d.BloodGroup):
		return common.Invalid("bloodGroup", "must be one of "+strings.Join(BloodGroups, ", "))
	case d.PreferredLanguage == "":
		return common.Invalid("preferredLanguage", "is required")
	}
	return nil
}

// ParseAllergies splits a comma separated list.
func ParseAllergies(s string) []string {
	out := []string{}
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

// WithoutTwin returns a copy of p with the twin detached, which is what the
// builder sends as context.
func (p UserProfile) WithoutTwin() UserProfile {
	p.DigitalTwin = nil
	p.Allergies = slices.Clone(p.Allergies)
	return p
}

// Clone returns a deep copy.
func (p UserProfile) Clone() UserProfile {
	p.Allergies = slices.Clone(p.Allergies)
	if p.DigitalTwin != nil {
		t := p.DigitalTwin.Clone()
		p.DigitalTwin = &t
	}
	return p
}
