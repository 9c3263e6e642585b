package services

import (
	"context"
	"testing"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const (
	roleTriage    = "Symptom Analyzer"
	rolePlanner   = "Action Planner"
	roleLibrarian = "Medical Librarian"
)

func TestAdvisor_RequiresRegistration(t *testing.T) {
	gen := newFakeGen()
	s := newTestServices(t, gen)
	ctx := context.Background()
	a := s.Advisor

	_, err := a.TriageStep(ctx, "headache", nil)
	assert.ErrorIs(t, err, common.ErrNotRegistered)
	_, err = a.CarePathway(ctx, "headache", nil)
	assert.ErrorIs(t, err, common.ErrNotRegistered)
	_, err = a.Prescription(ctx, "headache")
	assert.ErrorIs(t, err, common.ErrNotRegistered)
	_, err = a.DrugInteractions(ctx, []string{"a", "b"})
	assert.ErrorIs(t, err, common.ErrNotRegistered)
	_, err = a.LabReport(ctx, "HbA1c 6.1%", nil)
	assert.ErrorIs(t, err, common.ErrNotRegistered)
	_, err = a.Search(ctx, "asthma")
	assert.ErrorIs(t, err, common.ErrNotRegistered)
	_, err = a.Clinics(ctx, "dental", inference.LatLng{})
	assert.ErrorIs(t, err, common.ErrNotRegistered)

	assert.Zero(t, gen.count())
}

func TestAdvisor_Validation(t *testing.T) {
	gen := newFakeGen()
	s := newTestServices(t, gen)
	ctx := context.Background()
	register(t, s)
	a := s.Advisor

	_, err := a.TriageStep(ctx, " ", nil)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = a.CarePathway(ctx, "", nil)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = a.Prescription(ctx, "")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = a.DrugInteractions(ctx, []string{"Aspirin", " aspirin ", ""})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = a.LabReport(ctx, "", nil)
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = a.Search(ctx, "")
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = a.Clinics(ctx, "", inference.LatLng{Latitude: 91})
	assert.ErrorIs(t, err, common.ErrValidation)
	_, err = a.Clinics(ctx, "", inference.LatLng{Longitude: -181})
	assert.ErrorIs(t, err, common.ErrValidation)

	assert.Zero(t, gen.count())
}

func TestAdvisor_Triage(t *testing.T) {
	gen := newFakeGen().text(roleTriage, `{"question":"Any fever?","options":["Yes","No"],"riskLevel":"Medium","summarySoFar":"Headache for 2 days","isComplete":false}`)
	s := newTestServices(t, gen)
	register(t, s)

	history := []models.TriageAnswer{{Question: "Where?", Answer: "Forehead"}}
	step, err := s.Advisor.TriageStep(context.Background(), "headache", history)
	require.NoError(t, err)
	assert.Equal(t, "Any fever?", step.Question)
	assert.Equal(t, models.RiskMedium, step.RiskLevel)
	assert.False(t, step.IsComplete)

	req := gen.requests(roleTriage)[0]
	assert.Equal(t, models.TriageStepSchema(), req.ResponseSchema)
	assert.Contains(t, prompt(req), `"answer":"Forehead"`)
	assert.Contains(t, req.SystemInstruction, LanguageRule("Latvian"))
}

func TestAdvisor_TriageMalformed(t *testing.T) {
	gen := newFakeGen().text(roleTriage, `{"question":"","riskLevel":"High","summarySoFar":"x","isComplete":true}`)
	s := newTestServices(t, gen)
	register(t, s)

	_, err := s.Advisor.TriageStep(context.Background(), "chest pain", nil)
	assert.ErrorIs(t, err, common.ErrMalformedDerivedState)
}

func TestAdvisor_CarePathway(t *testing.T) {
	gen := newFakeGen().text(rolePlanner, `{
		"potentialCauses":[{"title":"Tension headache","likelihood":"High","description":"stress"}],
		"immediateActions":["hydrate"],"homeCareSteps":["rest"],"doctorFollowUp":"if it lasts a week","redFlags":["vision loss"]}`)
	s := newTestServices(t, gen)
	register(t, s)

	p, err := s.Advisor.CarePathway(context.Background(), "headache", &models.Lifestyle{Sleep: "5h"})
	require.NoError(t, err)
	require.Len(t, p.PotentialCauses, 1)
	assert.Equal(t, "Tension headache", p.PotentialCauses[0].Title)

	req := gen.requests(rolePlanner)[0]
	assert.Equal(t, models.CarePathwaySchema(), req.ResponseSchema)
	assert.Contains(t, prompt(req), `Lifestyle: {"sleep":"5h"}`)
}

func TestAdvisor_Prescription(t *testing.T) {
	gen := newFakeGen().text(roleRx, "```json\n"+`{"medication":"Paracetamol","dosage":"500mg","sideEffects":[],"warnings":[]}`+"\n```")
	s := newTestServices(t, gen)
	register(t, s)

	advice, err := s.Advisor.Prescription(context.Background(), "fever")
	require.NoError(t, err)
	assert.Equal(t, "Paracetamol", advice.Medication)
	assert.Empty(t, advice.Price)
}

func TestAdvisor_DrugInteractions(t *testing.T) {
	gen := newFakeGen().text(roleRx, "No major interactions.")
	s := newTestServices(t, gen)
	register(t, s)

	res, err := s.Advisor.DrugInteractions(context.Background(), []string{"Aspirin", "aspirin", " Warfarin "})
	require.NoError(t, err)
	assert.Equal(t, "No major interactions.", res.Text)
	assert.Contains(t, prompt(gen.requests(roleRx)[0]), "Aspirin, Warfarin")
}

func TestAdvisor_LabReport(t *testing.T) {
	gen := newFakeGen().text(roleLibrarian, "All values normal.")
	s := newTestServices(t, gen)
	register(t, s)
	ctx := context.Background()

	_, err := s.Advisor.LabReport(ctx, "HbA1c 5.2%", nil)
	require.NoError(t, err)

	img := &models.Image{MimeType: "image/png", Data: []byte("png")}
	res, err := s.Advisor.LabReport(ctx, "", img)
	require.NoError(t, err)
	assert.Equal(t, "All values normal.", res.Text)

	reqs := gen.requests(roleLibrarian)
	require.Len(t, reqs, 2)
	assert.Len(t, reqs[0].Messages[0].Parts, 1)
	require.Len(t, reqs[1].Messages[0].Parts, 2)
	assert.Equal(t, "image/png", reqs[1].Messages[0].Parts[1].Inline.MimeType)
}

func TestAdvisor_SearchAndClinics(t *testing.T) {
	src := []models.GroundingSource{{Title: "NHS", URI: "https://nhs.uk"}}
	gen := newFakeGen().
		on(roleLibrarian, func(inference.Request) (inference.Response, error) {
			return inference.Response{Text: "answer", GroundingReferences: src}, nil
		}).
		text(rolePlanner, "Clinic A, Clinic B")
	s := newTestServices(t, gen)
	register(t, s)
	ctx := context.Background()

	res, err := s.Advisor.Search(ctx, "asthma triggers")
	require.NoError(t, err)
	assert.Equal(t, src, res.Sources)
	assert.True(t, gen.requests(roleLibrarian)[0].Tools.WebSearch)

	at := inference.LatLng{Latitude: 56.95, Longitude: 24.11}
	res, err = s.Advisor.Clinics(ctx, "", at)
	require.NoError(t, err)
	assert.Equal(t, "Clinic A, Clinic B", res.Text)

	req := gen.requests(rolePlanner)[0]
	require.NotNil(t, req.Tools.MapsSearch)
	assert.Equal(t, at, *req.Tools.MapsSearch)
	assert.False(t, req.Tools.WebSearch)
	assert.Contains(t, prompt(req), "general clinics")
}
