package services

import (
	"regexp"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
)

// Intent is the closed set of chat routes.
type Intent string

const (
	IntentSymptomAnalysis    Intent = "SymptomAnalysis"
	IntentPrescriptionSafety Intent = "PrescriptionSafety"
	IntentCounterfactual     Intent = "Counterfactual"
	IntentMemory             Intent = "Memory"
	IntentLibrarian          Intent = "Librarian"
)

// Agent is the agent that answers an intent.
func (i Intent) Agent() models.AgentName {
	switch i {
	case IntentSymptomAnalysis:
		return models.AgentSymptomAnalyzer
	case IntentPrescriptionSafety:
		return models.AgentPrescriptionSafety
	case IntentCounterfactual:
		return models.AgentCounterfactual
	case IntentMemory:
		return models.AgentMemory
	default:
		return models.AgentMedicalLibrarian
	}
}

// Classifier maps a user turn to an intent.
type Classifier interface {
	Classify(text string, hasImage bool) Intent
}

// Rule routes to Intent when Pattern matches.
type Rule struct {
	Intent  Intent
	Pattern *regexp.Regexp
}

// RuleClassifier evaluates rules in order; the first match wins. An image
// always means symptom analysis. Upgrade, when set, can turn the default
// intent into PrescriptionSafety.
type RuleClassifier struct {
	Rules   []Rule
	Upgrade *regexp.Regexp
}

var (
	medicationPattern = regexp.MustCompile(`(?i)med|pill|tablet|dose|interaction|price|cost|buy|treat|medicine|relief`)
	simulatePattern   = regexp.MustCompile(`(?i)simulate|predict|what if|if i\b`)
	memoryPattern     = regexp.MustCompile(`(?i)history|last time|previously`)
	symptomPattern    = regexp.MustCompile(`(?i)pain|fever|cough|sore|flu|cold|headache|ache`)
)

func DefaultClassifier() *RuleClassifier {
	return &RuleClassifier{
		Rules: []Rule{
			{Intent: IntentPrescriptionSafety, Pattern: medicationPattern},
			{Intent: IntentCounterfactual, Pattern: simulatePattern},
			{Intent: IntentMemory, Pattern: memoryPattern},
		},
		Upgrade: symptomPattern,
	}
}

func (c *RuleClassifier) Classify(text string, hasImage bool) Intent {
	if hasImage {
		return IntentSymptomAnalysis
	}
	for _, r := range c.Rules {
		if r.Pattern.MatchString(text) {
			return r.Intent
		}
	}
	if c.Upgrade != nil && c.Upgrade.MatchString(text) {
		return IntentPrescriptionSafety
	}
	return IntentLibrarian
}
