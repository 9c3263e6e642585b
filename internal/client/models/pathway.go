package models

import "strings"

type PotentialCause struct {
	Title       string `json:"title"`
	Likelihood  string `json:"likelihood"`
	Description string `json:"description"`
}

type CarePathway struct {
	PotentialCauses  []PotentialCause `json:"potentialCauses"`
	ImmediateActions []string         `json:"immediateActions"`
	HomeCareSteps    []string         `json:"homeCareSteps"`
	DoctorFollowUp   string           `json:"doctorFollowUp"`
	RedFlags         []string         `json:"redFlags"`
}

// Lifestyle is optional context for pathway generation.
type Lifestyle struct {
	Sleep    string `json:"sleep,omitempty"`
	Diet     string `json:"diet,omitempty"`
	Activity string `json:"activity,omitempty"`
	Stress   string `json:"stress,omitempty"`
}

func (l *Lifestyle) Empty() bool {
	return l == nil || (l.Sleep == "" && l.Diet == "" && l.Activity == "" && l.Stress == "")
}

type wireCarePathway struct {
	PotentialCauses  *[]wireCause `json:"potentialCauses"`
	ImmediateActions *[]string    `json:"immediateActions"`
	HomeCareSteps    *[]string    `json:"homeCareSteps"`
	DoctorFollowUp   *string      `json:"doctorFollowUp"`
	RedFlags         *[]string    `json:"redFlags"`
}

type wireCause struct {
	Title       *string `json:"title"`
	Likelihood  *string `json:"likelihood"`
	Description *string `json:"description"`
}

// ParseCarePathway strictly decodes a care pathway. At least one potential
// cause is required.
func ParseCarePathway(data []byte) (CarePathway, error) {
	w, err := decodeStrict[wireCarePathway](data)
	if err != nil {
		return CarePathway{}, err
	}
	if w.PotentialCauses == nil || w.ImmediateActions == nil || w.HomeCareSteps == nil ||
		w.DoctorFollowUp == nil || w.RedFlags == nil {
		return CarePathway{}, malformed("care pathway requires potentialCauses, immediateActions, homeCareSteps, doctorFollowUp and redFlags")
	}
	if len(*w.PotentialCauses) == 0 {
		return CarePathway{}, malformed("care pathway has no potential causes")
	}

	p := CarePathway{
		PotentialCauses:  make([]PotentialCause, 0, len(*w.PotentialCauses)),
		ImmediateActions: *w.ImmediateActions,
		HomeCareSteps:    *w.HomeCareSteps,
		DoctorFollowUp:   *w.DoctorFollowUp,
		RedFlags:         *w.RedFlags,
	}
	for i, c := range *w.PotentialCauses {
		if c.Title == nil || c.Likelihood == nil || c.Description == nil || strings.TrimSpace(*c.Title) == "" {
			return CarePathway{}, malformed("potentialCauses[%d] requires title, likelihood and description", i)
		}
		p.PotentialCauses = append(p.PotentialCauses, PotentialCause{
			Title:       *c.Title,
			Likelihood:  *c.Likelihood,
			Description: *c.Description,
		})
	}
	return p, nil
}
