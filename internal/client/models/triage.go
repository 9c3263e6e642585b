package models

import (
	"math"
	"slices"
	"strings"
)

type RiskLevel string

const (
	RiskLow       RiskLevel = "Low"
	RiskMedium    RiskLevel = "Medium"
	RiskHigh      RiskLevel = "High"
	RiskEmergency RiskLevel = "Emergency"
)

var riskLevels = []RiskLevel{RiskLow, RiskMedium, RiskHigh, RiskEmergency}

func (r RiskLevel) Valid() bool { return slices.Contains(riskLevels, r) }

type TriageResult struct {
	PotentialConditions []string `json:"potentialConditions"`
	RiskScore           float64  `json:"riskScore"`
	Recommendation      string   `json:"recommendation"`
	Urgency             string   `json:"urgency"`
}

// TriageStep is one turn of the symptom triage dialogue. Result is set only
// once IsComplete is true.
type TriageStep struct {
	Question     string        `json:"question"`
	Options      []string      `json:"options,omitempty"`
	RiskLevel    RiskLevel     `json:"riskLevel"`
	SummarySoFar string        `json:"summarySoFar"`
	IsComplete   bool          `json:"isComplete"`
	Result       *TriageResult `json:"result,omitempty"`
}

// TriageAnswer is a question/answer pair fed back as triage history.
type TriageAnswer struct {
	Question string `json:"question"`
	Answer   string `json:"answer"`
}

type wireTriageStep struct {
	Question     *string           `json:"question"`
	Options      []string          `json:"options"`
	RiskLevel    *string           `json:"riskLevel"`
	SummarySoFar *string           `json:"summarySoFar"`
	IsComplete   *bool             `json:"isComplete"`
	Result       *wireTriageResult `json:"result"`
}

type wireTriageResult struct {
	PotentialConditions *[]string `json:"potentialConditions"`
	RiskScore           *float64  `json:"riskScore"`
	Recommendation      *string   `json:"recommendation"`
	Urgency             *string   `json:"urgency"`
}

// ParseTriageStep strictly decodes a triage turn.
func ParseTriageStep(data []byte) (TriageStep, error) {
	w, err := decodeStrict[wireTriageStep](data)
	if err != nil {
		return TriageStep{}, err
	}

	if w.Question == nil || w.RiskLevel == nil || w.SummarySoFar == nil || w.IsComplete == nil {
		return TriageStep{}, malformed("triage step requires question, riskLevel, summarySoFar and isComplete")
	}
	step := TriageStep{
		Question:     *w.Question,
		Options:      w.Options,
		RiskLevel:    RiskLevel(*w.RiskLevel),
		SummarySoFar: *w.SummarySoFar,
		IsComplete:   *w.IsComplete,
	}
	if !step.RiskLevel.Valid() {
		return TriageStep{}, malformed("riskLevel %q is not allowed", step.RiskLevel)
	}
	if !step.IsComplete && strings.TrimSpace(step.Question) == "" {
		return TriageStep{}, malformed("incomplete triage step has no question")
	}

	if w.Result != nil {
		r := w.Result
		if r.PotentialConditions == nil || r.RiskScore == nil || r.Recommendation == nil || r.Urgency == nil {
			return TriageStep{}, malformed("triage result requires potentialConditions, riskScore, recommendation and urgency")
		}
		if math.IsNaN(*r.RiskScore) || *r.RiskScore < 0 || *r.RiskScore > 100 {
			return TriageStep{}, malformed("riskScore %v is outside 0..100", *r.RiskScore)
		}
		step.Result = &TriageResult{
			PotentialConditions: *r.PotentialConditions,
			RiskScore:           *r.RiskScore,
			Recommendation:      *r.Recommendation,
			Urgency:             *r.Urgency,
		}
	}
	if step.IsComplete && step.Result == nil {
		return TriageStep{}, malformed("complete triage step has no result")
	}
	return step, nil
}
