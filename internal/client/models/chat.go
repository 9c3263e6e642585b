package models

import "time"

type AgentName string

const (
	AgentSymptomAnalyzer     AgentName = "Symptom Analyzer"
	AgentMedicalLibrarian    AgentName = "Medical Librarian"
	AgentRiskEvaluator       AgentName = "Risk Evaluator"
	AgentActionPlanner       AgentName = "Action Planner"
	AgentSafetyOfficer       AgentName = "Safety Officer"
	AgentFollowUpCoordinator AgentName = "Follow-up Coordinator"
	AgentPrescriptionSafety  AgentName = "Prescription Safety Agent"
	AgentMemory              AgentName = "Memory Agent"
	AgentTwinArchitect       AgentName = "Twin Architect Agent"
	AgentCounterfactual      AgentName = "Counterfactual Simulator"
)

type Confidence string

const (
	ConfidenceLow    Confidence = "Low"
	ConfidenceMedium Confidence = "Medium"
	ConfidenceHigh   Confidence = "High"
)

type Role string

const (
	RoleUser  Role = "user"
	RoleModel Role = "model"
)

// GroundingSource is a search attribution, shown to the user verbatim.
type GroundingSource struct {
	Title string `json:"title"`
	URI   string `json:"uri"`
}

// Image is an inline image attached to a message.
type Image struct {
	MimeType string `json:"mimeType"`
	Data     []byte `json:"data"`
}

// ChatMessage is one transcript entry.
type ChatMessage struct {
	Role           Role                `json:"role"`
	Text           string              `json:"text"`
	Image          *Image              `json:"image,omitempty"`
	Timestamp      time.Time           `json:"timestamp"`
	Sources        []GroundingSource   `json:"sources,omitempty"`
	Confidence     Confidence          `json:"confidence,omitempty"`
	ActiveAgent    AgentName           `json:"activeAgent,omitempty"`
	Recommendation *PrescriptionAdvice `json:"recommendation,omitempty"`
}

// SimulationResult is the narrative returned by the counterfactual simulator.
type SimulationResult struct {
	Scenario  string `json:"scenario"`
	Narrative string `json:"narrative"`
}

// Grounded is a free-text answer with its search attributions.
type Grounded struct {
	Text    string            `json:"text"`
	Sources []GroundingSource `json:"sources,omitempty"`
}
