package cli

import (
	"bytes"
	"context"
	"errors"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/client/repositories/kv"
	"github.com/dmitrijs2005/medigenie/internal/client/services"
	"github.com/dmitrijs2005/medigenie/internal/client/storage"
	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/dmitrijs2005/medigenie/internal/config"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const cliTwinJSON = `{
  "vitals": {"heartRate": [72], "bmi": [21.3], "bloodPressure": ["118/76"], "lastUpdated": "2026-05-01T09:00:00Z"},
  "trajectories": [{"label": "Back pain", "values": [7, 4], "dates": ["2026-04-20", "2026-05-01"]}],
  "medicationResponses": [{"med": "Ibuprofen", "effectiveness": "Medium", "sideEffectsSeverity": "None"}],
  "equilibriumStatus": "Recovering"
}`

// replies answers by the role named on the first instruction line.
func replies(m map[string]string) inference.Generator {
	return inference.GeneratorFunc(func(ctx context.Context, req inference.Request) (inference.Response, error) {
		for role, text := range m {
			if strings.HasPrefix(req.SystemInstruction, "You are the "+role+" of MediGenie.") {
				return inference.Response{
					Text:                text,
					GroundingReferences: []models.GroundingSource{{Title: "NHS", URI: "https://www.nhs.uk"}},
				}, nil
			}
		}
		return inference.Response{}, errors.Join(common.ErrInferenceUnavailable, errors.New("no reply scripted"))
	})
}

type harness struct {
	svc *services.Services
	out *bytes.Buffer
}

func newHarness(t *testing.T, gen inference.Generator) *harness {
	t.Helper()
	store := storage.NewStore(kv.NewMemoryRepository(), nil)
	return &harness{svc: services.New(store, gen, nil), out: &bytes.Buffer{}}
}

func (h *harness) app(input string) *App {
	a := NewApp(&config.Config{}, h.svc, strings.NewReader(input), h.out, nil)
	a.now = func() time.Time { return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC) }
	return a
}

// registrationInput answers the profile form; the language keeps its default.
const registrationInput = "Ada\n36\nFemale\n61.5\n170\nA-\nPenicillin, Pollen\nAsthma\n\n"

func (h *harness) register(t *testing.T) {
	t.Helper()
	require.NoError(t, h.app(registrationInput).Register(context.Background(), nil))
}

func TestApp_RegisterAndProfile(t *testing.T) {
	h := newHarness(t, replies(nil))
	h.register(t)

	p, err := h.svc.Profiles.Registered(context.Background())
	require.NoError(t, err)
	assert.Equal(t, "Ada", p.Name)
	assert.Equal(t, 36, p.Age)
	assert.Equal(t, []string{"Penicillin", "Pollen"}, p.Allergies)
	assert.Equal(t, models.DefaultLanguage, p.PreferredLanguage)
	assert.Contains(t, h.out.String(), "Welcome, Ada!")

	h.out.Reset()
	require.NoError(t, h.app("").Register(context.Background(), nil))
	assert.Contains(t, h.out.String(), "Already registered")

	h.out.Reset()
	require.NoError(t, h.app("").Profile(context.Background(), nil))
	assert.Contains(t, h.out.String(), "Penicillin, Pollen")
	assert.Contains(t, h.out.String(), "Digital twin")
}

func TestApp_CommandsRequireRegistration(t *testing.T) {
	h := newHarness(t, replies(nil))
	a := h.app("")
	ctx := context.Background()

	assert.ErrorIs(t, a.AddLog(ctx, nil), common.ErrNotRegistered)
	assert.ErrorIs(t, a.Chat(ctx, []string{"hello"}), common.ErrNotRegistered)
	assert.ErrorIs(t, a.Logs(ctx, nil), common.ErrNotRegistered)
	assert.ErrorIs(t, a.Export(ctx, []string{filepath.Join(t.TempDir(), "x.xlsx")}), common.ErrNotRegistered)
	assert.False(t, a.isRegistered(ctx))
}

func TestApp_AddLogSynchronizesTwin(t *testing.T) {
	h := newHarness(t, replies(map[string]string{
		"Follow-up Coordinator": "Keep resting and stretch gently.",
		"Memory Agent":          "Back pain is improving.",
		"Twin Architect Agent":  cliTwinJSON,
	}))
	h.register(t)
	h.out.Reset()

	a := h.app("Back pain\nworsening\nSharp pain after lifting\n\n")
	require.NoError(t, a.AddLog(context.Background(), nil))

	out := h.out.String()
	assert.Contains(t, out, "Keep resting and stretch gently.")
	assert.Contains(t, out, "up to date")

	logs, err := h.svc.Profiles.Logs(context.Background())
	require.NoError(t, err)
	require.Len(t, logs, 1)
	assert.Equal(t, models.StatusWorsening, logs[0].Status)

	h.out.Reset()
	require.NoError(t, h.app("").Twin(context.Background(), nil))
	assert.Contains(t, h.out.String(), "Recovering")
	assert.Contains(t, h.out.String(), "Ibuprofen")

	h.out.Reset()
	require.NoError(t, h.app("").Summary(context.Background(), nil))
	assert.Contains(t, h.out.String(), "Back pain is improving.")
}

func TestApp_AddLogDegradedKeepsEntry(t *testing.T) {
	h := newHarness(t, replies(map[string]string{
		"Follow-up Coordinator": "Noted.",
		"Memory Agent":          "Summary.",
		"Twin Architect Agent":  `{"vitals": "broken"}`,
	}))
	h.register(t)
	h.out.Reset()

	require.NoError(t, h.app("Cough\nStable\nDry cough at night\n\n").AddLog(context.Background(), nil))
	assert.Contains(t, h.out.String(), "could not be refreshed")

	logs, err := h.svc.Profiles.Logs(context.Background())
	require.NoError(t, err)
	assert.Len(t, logs, 1)
}

func TestApp_ChatSingleTurn(t *testing.T) {
	h := newHarness(t, replies(map[string]string{
		"Orchestrator": "Aspirin is a common pain reliever. Consult a doctor before use.",
	}))
	h.register(t)
	h.out.Reset()

	a := h.app("")
	require.NoError(t, a.Chat(context.Background(), []string{"what", "is", "aspirin"}))
	require.NotNil(t, a.session)

	out := h.out.String()
	assert.Contains(t, out, "Aspirin is a common pain reliever.")
	assert.Contains(t, out, "https://www.nhs.uk")
}

func TestApp_ChatLoopEndsOnEmptyLine(t *testing.T) {
	h := newHarness(t, replies(map[string]string{
		"Orchestrator": "Hydration helps.",
	}))
	h.register(t)
	h.out.Reset()

	a := h.app("tell me about water intake\n\nnot consumed\n")
	require.NoError(t, a.Chat(context.Background(), nil))

	assert.Contains(t, h.out.String(), "Hydration helps.")
	line, ok := a.nextLine()
	assert.True(t, ok)
	assert.Equal(t, "not consumed", line)
}

func TestApp_ChatCounterfactualWithoutTwin(t *testing.T) {
	h := newHarness(t, replies(nil))
	h.register(t)

	err := h.app("").Chat(context.Background(), []string{"what", "if", "i", "stop", "running"})
	assert.ErrorIs(t, err, common.ErrPreconditionFailed)
}

func TestApp_Triage(t *testing.T) {
	h := newHarness(t, replies(map[string]string{
		"Symptom Analyzer": `{"question": "", "riskLevel": "Low", "summarySoFar": "Mild cold",
			"isComplete": true, "result": {"potentialConditions": ["Common cold"], "riskScore": 10,
			"recommendation": "Rest and fluids", "urgency": "Low"}}`,
	}))
	h.register(t)
	h.out.Reset()

	require.NoError(t, h.app("").Triage(context.Background(), []string{"runny", "nose"}))
	out := h.out.String()
	assert.Contains(t, out, "Triage complete")
	assert.Contains(t, out, "Common cold")
	assert.Contains(t, out, "Rest and fluids")
}

func TestApp_Drugs(t *testing.T) {
	h := newHarness(t, replies(map[string]string{
		"Prescription Safety Agent": "No major interactions known.",
	}))
	h.register(t)
	h.out.Reset()

	a := h.app("")
	require.NoError(t, a.Drugs(context.Background(), []string{"ibuprofen,", "paracetamol"}))
	assert.Contains(t, h.out.String(), "No major interactions known.")

	err := h.app("aspirin\n\n").Drugs(context.Background(), nil)
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestApp_ClinicsRejectsBadCoordinates(t *testing.T) {
	h := newHarness(t, replies(nil))
	h.register(t)

	err := h.app("").Clinics(context.Background(), []string{"north", "24.1"})
	assert.Error(t, err)

	err = h.app("").Clinics(context.Background(), []string{"95", "24.1"})
	assert.ErrorIs(t, err, common.ErrValidation)
}

func TestApp_ExportAndReport(t *testing.T) {
	h := newHarness(t, replies(nil))
	h.register(t)
	dir := t.TempDir()

	xlsx := filepath.Join(dir, "out", "logs.xlsx")
	require.NoError(t, h.app("").Export(context.Background(), []string{xlsx}))
	pdf := filepath.Join(dir, "report.pdf")
	require.NoError(t, h.app("").Report(context.Background(), []string{pdf}))

	for _, p := range []string{xlsx, pdf} {
		st, err := os.Stat(p)
		require.NoError(t, err)
		assert.Positive(t, st.Size())
	}
}

func TestEnsureAPIKey(t *testing.T) {
	origTerm, origRead := isTerminal, readPassword
	t.Cleanup(func() { isTerminal, readPassword = origTerm, origRead })

	c := &config.Config{APIKey: "set"}
	require.NoError(t, EnsureAPIKey(c, &bytes.Buffer{}))
	assert.Equal(t, "set", c.APIKey)

	isTerminal = func(int) bool { return false }
	assert.Error(t, EnsureAPIKey(&config.Config{}, &bytes.Buffer{}))

	isTerminal = func(int) bool { return true }
	readPassword = func(int) ([]byte, error) { return []byte("  typed-key \n"), nil }
	c = &config.Config{}
	require.NoError(t, EnsureAPIKey(c, &bytes.Buffer{}))
	assert.Equal(t, "typed-key", c.APIKey)

	readPassword = func(int) ([]byte, error) { return nil, nil }
	assert.Error(t, EnsureAPIKey(&config.Config{}, &bytes.Buffer{}))
}
