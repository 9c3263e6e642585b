package models

import (
	"fmt"
	"slices"
	"strings"
	"time"
)

type Effectiveness string

const (
	EffectivenessHigh    Effectiveness = "High"
	EffectivenessMedium  Effectiveness = "Medium"
	EffectivenessLow     Effectiveness = "Low"
	EffectivenessUnknown Effectiveness = "Unknown"
)

var effectivenessValues = []Effectiveness{EffectivenessHigh, EffectivenessMedium, EffectivenessLow, EffectivenessUnknown}

func (e Effectiveness) Valid() bool { return slices.Contains(effectivenessValues, e) }

type Severity string

const (
	SeverityNone     Severity = "None"
	SeverityMild     Severity = "Mild"
	SeverityModerate Severity = "Moderate"
	SeveritySevere   Severity = "Severe"
)

var severityValues = []Severity{SeverityNone, SeverityMild, SeverityModerate, SeveritySevere}

func (s Severity) Valid() bool { return slices.Contains(severityValues, s) }

type Vitals struct {
	HeartRate     []float64 `json:"heartRate"`
	BMI           []float64 `json:"bmi"`
	BloodPressure []string  `json:"bloodPressure"`
	LastUpdated   time.Time `json:"lastUpdated"`
}

// Trajectory is one labelled series; Values[i] was observed at Dates[i].
type Trajectory struct {
	Label  string    `json:"label"`
	Values []float64 `json:"values"`
	Dates  []string  `json:"dates"`
}

type MedicationResponse struct {
	Med                 string        `json:"med"`
	Effectiveness       Effectiveness `json:"effectiveness"`
	SideEffectsSeverity Severity      `json:"sideEffectsSeverity"`
}

// DigitalTwin is a derived snapshot of the user's health state. It is
// replaced wholesale on every rebuild and never patched.
type DigitalTwin struct {
	Vitals              Vitals               `json:"vitals"`
	Trajectories        []Trajectory         `json:"trajectories"`
	MedicationResponses []MedicationResponse `json:"medicationResponses"`
	EquilibriumStatus   string               `json:"equilibriumStatus"`
}

// Validate checks the structural invariants of a twin.
func (t DigitalTwin) Validate() error {
	if err := finite("vitals.heartRate", t.Vitals.HeartRate); err != nil {
		return err
	}
	if err := finite("vitals.bmi", t.Vitals.BMI); err != nil {
		return err
	}
	if t.Vitals.LastUpdated.IsZero() {
		return fmt.Errorf("vitals.lastUpdated is not set")
	}
	for i, tr := range t.Trajectories {
		if strings.TrimSpace(tr.Label) == "" {
			return fmt.Errorf("trajectories[%d].label is empty", i)
		}
		if len(tr.Values) != len(tr.Dates) {
			return fmt.Errorf("trajectories[%d] has %d values but %d dates", i, len(tr.Values), len(tr.Dates))
		}
		if err := finite(fmt.Sprintf("trajectories[%d].values", i), tr.Values); err != nil {
			return err
		}
	}
	for i, m := range t.MedicationResponses {
		if strings.TrimSpace(m.Med) == "" {
			return fmt.Errorf("medicationResponses[%d].med is empty", i)
		}
		if !m.Effectiveness.Valid() {
			return fmt.Errorf("medicationResponses[%d].effectiveness %q is not allowed", i, m.Effectiveness)
		}
		if !m.SideEffectsSeverity.Valid() {
			return fmt.Errorf("medicationResponses[%d].sideEffectsSeverity %q is not allowed", i, m.SideEffectsSeverity)
		}
	}
	return nil
}

func (t DigitalTwin) Clone() DigitalTwin {
	out := t
	out.Vitals.HeartRate = slices.Clone(t.Vitals.HeartRate)
	out.Vitals.BMI = slices.Clone(t.Vitals.BMI)
	out.Vitals.BloodPressure = slices.Clone(t.Vitals.BloodPressure)
	if t.Trajectories != nil {
		out.Trajectories = make([]Trajectory, len(t.Trajectories))
		for i, tr := range t.Trajectories {
			out.Trajectories[i] = Trajectory{
				Label:  tr.Label,
				Values: slices.Clone(tr.Values),
				Dates:  slices.Clone(tr.Dates),
			}
		}
	}
	out.MedicationResponses = slices.Clone(t.MedicationResponses)
	return out
}

// wire shapes: pointers tell "absent" apart from "empty".
type wireTwin struct {
	Vitals              *wireVitals            `json:"vitals"`
	Trajectories        *[]wireTrajectory      `json:"trajectories"`
	MedicationResponses *[]wireMedicationReply `json:"medicationResponses"`
	EquilibriumStatus   *string                `json:"equilibriumStatus"`
}

type wireVitals struct {
	HeartRate     *[]float64 `json:"heartRate"`
	BMI           *[]float64 `json:"bmi"`
	BloodPressure *[]string  `json:"bloodPressure"`
	LastUpdated   *string    `json:"lastUpdated"`
}

type wireTrajectory struct {
	Label  *string    `json:"label"`
	Values *[]float64 `json:"values"`
	Dates  *[]string  `json:"dates"`
}

type wireMedicationReply struct {
	Med                 *string `json:"med"`
	Effectiveness       *string `json:"effectiveness"`
	SideEffectsSeverity *string `json:"sideEffectsSeverity"`
}

var lastUpdatedLayouts = []string{time.RFC3339Nano, "2006-01-02T15:04:05", "2006-01-02"}

func parseInstant(s string) (time.Time, error) {
	for _, layout := range lastUpdatedLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}
	return time.Time{}, fmt.Errorf("unrecognised time %q", s)
}

// ParseDigitalTwin strictly decodes a twin produced by the inference
// service. Unknown or missing fields, bad enum values, mismatched trajectory
// lengths and non-finite numbers are all rejected with
// ErrMalformedDerivedState. A missing lastUpdated is stamped with now.
func ParseDigitalTwin(data []byte, now time.Time) (DigitalTwin, error) {
	w, err := decodeStrict[wireTwin](data)
	if err != nil {
		return DigitalTwin{}, err
	}

	switch {
	case w.Vitals == nil:
		return DigitalTwin{}, malformed("missing vitals")
	case w.Trajectories == nil:
		return DigitalTwin{}, malformed("missing trajectories")
	case w.MedicationResponses == nil:
		return DigitalTwin{}, malformed("missing medicationResponses")
	case w.EquilibriumStatus == nil:
		return DigitalTwin{}, malformed("missing equilibriumStatus")
	case w.Vitals.HeartRate == nil, w.Vitals.BMI == nil, w.Vitals.BloodPressure == nil:
		return DigitalTwin{}, malformed("vitals requires heartRate, bmi and bloodPressure")
	}

	twin := DigitalTwin{
		Vitals: Vitals{
			HeartRate:     *w.Vitals.HeartRate,
			BMI:           *w.Vitals.BMI,
			BloodPressure: *w.Vitals.BloodPressure,
			LastUpdated:   now.UTC(),
		},
		Trajectories:        make([]Trajectory, 0, len(*w.Trajectories)),
		MedicationResponses: make([]MedicationResponse, 0, len(*w.MedicationResponses)),
		EquilibriumStatus:   *w.EquilibriumStatus,
	}

	if lu := w.Vitals.LastUpdated; lu != nil && strings.TrimSpace(*lu) != "" {
		ts, err := parseInstant(strings.TrimSpace(*lu))
		if err != nil {
			return DigitalTwin{}, malformed("vitals.lastUpdated: %v", err)
		}
		twin.Vitals.LastUpdated = ts
	}

	for i, tr := range *w.Trajectories {
		if tr.Label == nil || tr.Values == nil || tr.Dates == nil {
			return DigitalTwin{}, malformed("trajectories[%d] requires label, values and dates", i)
		}
		twin.Trajectories = append(twin.Trajectories, Trajectory{Label: *tr.Label, Values: *tr.Values, Dates: *tr.Dates})
	}

	for i, m := range *w.MedicationResponses {
		if m.Med == nil || m.Effectiveness == nil || m.SideEffectsSeverity == nil {
			return DigitalTwin{}, malformed("medicationResponses[%d] requires med, effectiveness and sideEffectsSeverity", i)
		}
		twin.MedicationResponses = append(twin.MedicationResponses, MedicationResponse{
			Med:                 *m.Med,
			Effectiveness:       Effectiveness(*m.Effectiveness),
			SideEffectsSeverity: Severity(*m.SideEffectsSeverity),
		})
	}

	if err := twin.Validate(); err != nil {
		return DigitalTwin{}, malformed("%v", err)
	}
	return twin, nil
}
