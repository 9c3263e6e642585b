package services

import (
	"encoding/json"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
)

const (
	medicalDisclaimer = "This is not medical advice. Consult a doctor."
	dosageDisclaimer  = "MediGenie recommendations are for informational purposes only. Do not exceed specified dosages."
)

func language(p models.UserProfile) string {
	if l := strings.TrimSpace(p.PreferredLanguage); l != "" {
		return l
	}
	return models.DefaultLanguage
}

// LanguageRule is appended to every system instruction.
func LanguageRule(lang string) string {
	return fmt.Sprintf("LANGUAGE RULE: You MUST respond entirely in %s.", lang)
}

// SafetyRules is the shared block of every advisory instruction.
func SafetyRules(lang string) string {
	var b strings.Builder
	b.WriteString("STRICT SAFETY RULES:\n")
	b.WriteString("- NEVER state a definitive diagnosis.\n")
	fmt.Fprintf(&b, "- ALWAYS include: %q (translate this to %s).\n", medicalDisclaimer, lang)
	b.WriteString("- If an Emergency risk is detected, stop all other logic and insist on calling emergency services.\n")
	fmt.Fprintf(&b, "- Disclaimer: %q\n", dosageDisclaimer)
	b.WriteString("- ACTIVE LEARNING: if you are unsure about a clinical interpretation, DO NOT GUESS. Ask the user a specific clarifying medical question instead.\n")
	b.WriteString("- " + LanguageRule(lang))
	return b.String()
}

func instruction(role string, lang string, safety bool, extra ...string) string {
	lines := []string{"You are the " + role + " of MediGenie."}
	lines = append(lines, extra...)
	if safety {
		lines = append(lines, SafetyRules(lang))
	} else {
		lines = append(lines, LanguageRule(lang))
	}
	return strings.Join(lines, "\n")
}

func twinInstruction(lang string) string {
	return instruction("Twin Architect Agent", lang, false,
		"Maintain a Patient Digital Twin from the profile and the chronological follow-up history.",
		"Replace the twin entirely; do not assume any previous twin state.",
		"Trajectories must have exactly as many dates as values. Dates are ISO-8601.",
		"Text in equilibriumStatus is written in "+lang+".",
		"Return ONLY valid JSON matching the response schema.",
	)
}

func simulatorInstruction(lang string) string {
	return instruction("Counterfactual Simulator Agent", lang, true,
		"Answer the what-if scenario against the digital twin state.",
		`Focus on "Risk Deltas": relative percentage changes of risk over an explicit time horizon.`,
		"Never produce a diagnosis.",
	)
}

func summaryInstruction(lang string) string {
	return instruction("Memory Agent", lang, false,
		"Write a concise longitudinal health summary from the profile and the most recent follow-up logs.",
		"Explicitly mention gaps in the available data instead of inventing facts.",
	)
}

func feedbackInstruction(lang string) string {
	return instruction("Follow-up Coordinator", lang, true,
		"Give short feedback on the new follow-up entry in the context of the previous entries.",
	)
}

func chatInstruction(lang string, agent models.AgentName) string {
	return instruction("Orchestrator", lang, true,
		"The request was routed to the "+string(agent)+".",
	)
}

func prescriptionInstruction(lang string) string {
	return instruction("Prescription Safety Agent", lang, true,
		"Use web search for real-time prices.",
		"Take the user's allergies into account.",
		"The fields medication, dosage and warnings must be written in "+lang+".",
	)
}

func triageInstruction(lang string) string {
	return instruction("Symptom Analyzer", lang, true,
		"Run a step-by-step symptom triage. Ask one question at a time with short answer options.",
		"Set isComplete and provide result only when enough information was collected.",
		"riskScore is a number from 0 to 100.",
	)
}

func pathwayInstruction(lang string) string {
	return instruction("Action Planner", lang, true,
		"Build a care pathway for the reported symptoms: potential causes, immediate actions, home care steps, doctor follow-up and red flags.",
	)
}

func drugsInstruction(lang string) string {
	return instruction("Prescription Safety Agent", lang, true,
		"Analyze interactions between the listed medications and flag dangerous combinations.",
	)
}

func labInstruction(lang string) string {
	return instruction("Medical Librarian", lang, true,
		"Explain the lab report in plain language and point out values outside reference ranges.",
	)
}

func searchInstruction(lang string) string {
	return instruction("Medical Librarian", lang, true,
		"Search reliable medical sources and summarize the answer.",
	)
}

func clinicsInstruction(lang string) string {
	return instruction("Action Planner", lang, true,
		"Find nearby clinics and describe each result briefly.",
	)
}

func mustJSON(v any) string {
	b, err := json.Marshal(v)
	if err != nil {
		// only plain data types reach here
		panic(err)
	}
	return string(b)
}
