package models

// Response schemas in the OpenAPI subset the inference service accepts for
// structured output.

func obj(props map[string]any, required ...string) map[string]any {
	return map[string]any{"type": "OBJECT", "properties": props, "required": required}
}

func arr(items map[string]any) map[string]any {
	return map[string]any{"type": "ARRAY", "items": items}
}

func str() map[string]any { return map[string]any{"type": "STRING"} }
func num() map[string]any { return map[string]any{"type": "NUMBER"} }

func enum(values ...string) map[string]any {
	return map[string]any{"type": "STRING", "enum": values}
}

func DigitalTwinSchema() map[string]any {
	return obj(map[string]any{
		"vitals": obj(map[string]any{
			"heartRate":     arr(num()),
			"bmi":           arr(num()),
			"bloodPressure": arr(str()),
			"lastUpdated":   str(),
		}, "heartRate", "bmi", "bloodPressure", "lastUpdated"),
		"trajectories": arr(obj(map[string]any{
			"label":  str(),
			"values": arr(num()),
			"dates":  arr(str()),
		}, "label", "values", "dates")),
		"medicationResponses": arr(obj(map[string]any{
			"med":                 str(),
			"effectiveness":       enum("High", "Medium", "Low", "Unknown"),
			"sideEffectsSeverity": enum("None", "Mild", "Moderate", "Severe"),
		}, "med", "effectiveness", "sideEffectsSeverity")),
		"equilibriumStatus": str(),
	}, "vitals", "trajectories", "medicationResponses", "equilibriumStatus")
}

func TriageStepSchema() map[string]any {
	return obj(map[string]any{
		"question":     str(),
		"options":      arr(str()),
		"riskLevel":    enum("Low", "Medium", "High", "Emergency"),
		"summarySoFar": str(),
		"isComplete":   map[string]any{"type": "BOOLEAN"},
		"result": obj(map[string]any{
			"potentialConditions": arr(str()),
			"riskScore":           num(),
			"recommendation":      str(),
			"urgency":             str(),
		}, "potentialConditions", "riskScore", "recommendation", "urgency"),
	}, "question", "riskLevel", "summarySoFar", "isComplete")
}

func CarePathwaySchema() map[string]any {
	return obj(map[string]any{
		"potentialCauses": arr(obj(map[string]any{
			"title":       str(),
			"likelihood":  str(),
			"description": str(),
		}, "title", "likelihood", "description")),
		"immediateActions": arr(str()),
		"homeCareSteps":    arr(str()),
		"doctorFollowUp":   str(),
		"redFlags":         arr(str()),
	}, "potentialCauses", "immediateActions", "homeCareSteps", "doctorFollowUp", "redFlags")
}

func PrescriptionAdviceSchema() map[string]any {
	return obj(map[string]any{
		"medication":  str(),
		"dosage":      str(),
		"price":       str(),
		"sideEffects": arr(str()),
		"warnings":    arr(str()),
	}, "medication", "dosage", "sideEffects", "warnings")
}
