package services

import (
	"context"
	"fmt"
	"strings"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/dmitrijs2005/medigenie/internal/logging"
)

// MinInteractionMeds is the smallest medication list worth checking.
const MinInteractionMeds = 2

// Advisor groups the stand-alone advisory tools. All of them require a
// registered profile and make exactly one inference call.
type Advisor struct {
	profiles *ProfileService
	gen      inference.Generator
	guard    *Guard
	log      logging.Logger
}

func NewAdvisor(profiles *ProfileService, gen inference.Generator, guard *Guard, log logging.Logger) *Advisor {
	return &Advisor{profiles: profiles, gen: gen, guard: guard, log: log}
}

func (a *Advisor) begin(ctx context.Context, action Action) (models.UserProfile, func(), error) {
	profile, err := a.profiles.Registered(ctx)
	if err != nil {
		return models.UserProfile{}, nil, err
	}
	release, err := a.guard.Acquire(action)
	if err != nil {
		return models.UserProfile{}, nil, err
	}
	return profile, release, nil
}

func (a *Advisor) text(ctx context.Context, req inference.Request, op string) (models.Grounded, error) {
	resp, err := a.gen.Generate(ctx, req)
	if err != nil {
		return models.Grounded{}, fmt.Errorf("%s: %w", op, err)
	}
	a.log.Debug(ctx, "advisory answer", "op", op, "sources", len(resp.GroundingReferences))
	return models.Grounded{Text: resp.Text, Sources: resp.GroundingReferences}, nil
}

// TriageStep asks for the next triage turn given the answers so far.
func (a *Advisor) TriageStep(ctx context.Context, symptoms string, history []models.TriageAnswer) (models.TriageStep, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return models.TriageStep{}, common.Invalid("symptoms", "is required")
	}
	profile, release, err := a.begin(ctx, ActionTriage)
	if err != nil {
		return models.TriageStep{}, err
	}
	defer release()

	if history == nil {
		history = []models.TriageAnswer{}
	}
	prompt := "Patient: " + mustJSON(profile.Demographics) +
		"\nSymptoms: " + symptoms +
		"\nHistory: " + mustJSON(history)

	resp, err := a.gen.Generate(ctx, inference.Request{
		SystemInstruction: triageInstruction(language(profile)),
		Messages:          []inference.Message{inference.UserText(prompt)},
		ResponseSchema:    models.TriageStepSchema(),
	})
	if err != nil {
		return models.TriageStep{}, fmt.Errorf("triage: %w", err)
	}
	return models.ParseTriageStep([]byte(resp.Text))
}

// CarePathway plans next steps for the reported symptoms.
func (a *Advisor) CarePathway(ctx context.Context, symptoms string, lifestyle *models.Lifestyle) (models.CarePathway, error) {
	symptoms = strings.TrimSpace(symptoms)
	if symptoms == "" {
		return models.CarePathway{}, common.Invalid("symptoms", "is required")
	}
	profile, release, err := a.begin(ctx, ActionPathway)
	if err != nil {
		return models.CarePathway{}, err
	}
	defer release()

	prompt := "Patient: " + mustJSON(profile.Demographics) + "\nSymptoms: " + symptoms
	if !lifestyle.Empty() {
		prompt += "\nLifestyle: " + mustJSON(lifestyle)
	}

	resp, err := a.gen.Generate(ctx, inference.Request{
		SystemInstruction: pathwayInstruction(language(profile)),
		Messages:          []inference.Message{inference.UserText(prompt)},
		ResponseSchema:    models.CarePathwaySchema(),
	})
	if err != nil {
		return models.CarePathway{}, fmt.Errorf("care pathway: %w", err)
	}
	return models.ParseCarePathway([]byte(resp.Text))
}

// Prescription returns structured treatment advice, grounded in web search.
func (a *Advisor) Prescription(ctx context.Context, query string) (models.PrescriptionAdvice, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.PrescriptionAdvice{}, common.Invalid("query", "is required")
	}
	profile, release, err := a.begin(ctx, ActionAdvice)
	if err != nil {
		return models.PrescriptionAdvice{}, err
	}
	defer release()

	return prescribe(ctx, a.gen, profile, query)
}

func (a *Advisor) DrugInteractions(ctx context.Context, medications []string) (models.Grounded, error) {
	meds := make([]string, 0, len(medications))
	seen := map[string]bool{}
	for _, m := range medications {
		m = strings.TrimSpace(m)
		if m == "" || seen[strings.ToLower(m)] {
			continue
		}
		seen[strings.ToLower(m)] = true
		meds = append(meds, m)
	}
	if len(meds) < MinInteractionMeds {
		return models.Grounded{}, common.Invalid("medications", fmt.Sprintf("needs at least %d distinct entries", MinInteractionMeds))
	}

	profile, release, err := a.begin(ctx, ActionAdvice)
	if err != nil {
		return models.Grounded{}, err
	}
	defer release()

	return a.text(ctx, inference.Request{
		SystemInstruction: drugsInstruction(language(profile)),
		Messages:          []inference.Message{inference.UserText("Analyze interactions: " + strings.Join(meds, ", "))},
	}, "drug interactions")
}

// LabReport simplifies a report given as text or as an image.
func (a *Advisor) LabReport(ctx context.Context, report string, image *models.Image) (models.Grounded, error) {
	report = strings.TrimSpace(report)
	if report == "" && image == nil {
		return models.Grounded{}, common.Invalid("report", "text or image is required")
	}
	profile, release, err := a.begin(ctx, ActionAdvice)
	if err != nil {
		return models.Grounded{}, err
	}
	defer release()

	var msg inference.Message
	if image != nil {
		msg = inference.UserParts("Simplify this lab report. "+report, &inference.InlineData{MimeType: image.MimeType, Data: image.Data})
	} else {
		msg = inference.UserText("Simplify this lab report:\n" + report)
	}
	return a.text(ctx, inference.Request{
		SystemInstruction: labInstruction(language(profile)),
		Messages:          []inference.Message{msg},
	}, "lab report")
}

// Search answers a medical question with web grounding.
func (a *Advisor) Search(ctx context.Context, query string) (models.Grounded, error) {
	query = strings.TrimSpace(query)
	if query == "" {
		return models.Grounded{}, common.Invalid("query", "is required")
	}
	profile, release, err := a.begin(ctx, ActionAdvice)
	if err != nil {
		return models.Grounded{}, err
	}
	defer release()

	return a.text(ctx, inference.Request{
		SystemInstruction: searchInstruction(language(profile)),
		Messages:          []inference.Message{inference.UserText("Search and summarize: " + query)},
		Tools:             inference.Tools{WebSearch: true},
	}, "search")
}

// Clinics finds clinics of the given specialty around a location using
// maps grounding.
func (a *Advisor) Clinics(ctx context.Context, specialty string, at inference.LatLng) (models.Grounded, error) {
	specialty = strings.TrimSpace(specialty)
	if specialty == "" {
		specialty = "general"
	}
	if at.Latitude < -90 || at.Latitude > 90 {
		return models.Grounded{}, common.Invalid("latitude", "must be within -90..90")
	}
	if at.Longitude < -180 || at.Longitude > 180 {
		return models.Grounded{}, common.Invalid("longitude", "must be within -180..180")
	}
	profile, release, err := a.begin(ctx, ActionAdvice)
	if err != nil {
		return models.Grounded{}, err
	}
	defer release()

	return a.text(ctx, inference.Request{
		SystemInstruction: clinicsInstruction(language(profile)),
		Messages:          []inference.Message{inference.UserText("Find " + specialty + " clinics near me.")},
		Tools:             inference.Tools{MapsSearch: &at},
	}, "clinics")
}
