package models

import "strings"

// PrescriptionAdvice is the structured recommendation attached to a
// prescription-safety reply.
type PrescriptionAdvice struct {
	Medication  string   `json:"medication"`
	Dosage      string   `json:"dosage"`
	Price       string   `json:"price,omitempty"`
	SideEffects []string `json:"sideEffects"`
	Warnings    []string `json:"warnings"`
}

type wirePrescription struct {
	Medication  *string   `json:"medication"`
	Dosage      *string   `json:"dosage"`
	Price       *string   `json:"price"`
	SideEffects *[]string `json:"sideEffects"`
	Warnings    *[]string `json:"warnings"`
}

func ParsePrescriptionAdvice(data []byte) (PrescriptionAdvice, error) {
	w, err := decodeStrict[wirePrescription](data)
	if err != nil {
		return PrescriptionAdvice{}, err
	}
	if w.Medication == nil || w.Dosage == nil || w.SideEffects == nil || w.Warnings == nil {
		return PrescriptionAdvice{}, malformed("prescription advice requires medication, dosage, sideEffects and warnings")
	}
	if strings.TrimSpace(*w.Medication) == "" {
		return PrescriptionAdvice{}, malformed("prescription advice has no medication")
	}

	a := PrescriptionAdvice{
		Medication:  *w.Medication,
		Dosage:      *w.Dosage,
		SideEffects: *w.SideEffects,
		Warnings:    *w.Warnings,
	}
	if w.Price != nil {
		a.Price = *w.Price
	}
	return a, nil
}
