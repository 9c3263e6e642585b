package services

import (
	"context"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/client/repositories/kv"
	"github.com/dmitrijs2005/medigenie/internal/client/storage"
	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/stretchr/testify/require"
)

// fakeGen records requests and answers by the agent role named in the
// system instruction.
type fakeGen struct {
	mu      sync.Mutex
	calls   []inference.Request
	replies map[string]func(inference.Request) (inference.Response, error)
}

func newFakeGen() *fakeGen {
	return &fakeGen{replies: map[string]func(inference.Request) (inference.Response, error){}}
}

func (f *fakeGen) on(role string, fn func(inference.Request) (inference.Response, error)) *fakeGen {
	f.replies[role] = fn
	return f
}

func (f *fakeGen) text(role, text string) *fakeGen {
	return f.on(role, func(inference.Request) (inference.Response, error) {
		return inference.Response{Text: text}, nil
	})
}

func (f *fakeGen) fail(role string) *fakeGen {
	return f.on(role, func(inference.Request) (inference.Response, error) {
		return inference.Response{}, common.ErrInferenceUnavailable
	})
}

func (f *fakeGen) Generate(ctx context.Context, req inference.Request) (inference.Response, error) {
	f.mu.Lock()
	f.calls = append(f.calls, req)
	handler := f.replies[roleOf(req)]
	f.mu.Unlock()

	if err := ctx.Err(); err != nil {
		return inference.Response{}, err
	}
	if handler == nil {
		return inference.Response{Text: "ok"}, nil
	}
	return handler(req)
}

func (f *fakeGen) requests(role string) []inference.Request {
	f.mu.Lock()
	defer f.mu.Unlock()
	var out []inference.Request
	for _, r := range f.calls {
		if roleOf(r) == role {
			out = append(out, r)
		}
	}
	return out
}

func (f *fakeGen) count() int {
	f.mu.Lock()
	defer f.mu.Unlock()
	return len(f.calls)
}

// roleOf extracts the agent role from the first instruction line.
func roleOf(req inference.Request) string {
	first, _, _ := strings.Cut(req.SystemInstruction, "\n")
	first = strings.TrimPrefix(first, "You are the ")
	role, _, _ := strings.Cut(first, " of MediGenie.")
	return role
}

func prompt(req inference.Request) string {
	var b strings.Builder
	for _, m := range req.Messages {
		for _, p := range m.Parts {
			b.WriteString(p.Text)
		}
	}
	return b.String()
}

const (
	roleTwin     = "Twin Architect Agent"
	roleMemory   = "Memory Agent"
	roleFeedback = "Follow-up Coordinator"
	roleSim      = "Counterfactual Simulator Agent"
	roleChat     = "Orchestrator"
	roleRx       = "Prescription Safety Agent"
)

const twinJSON = `{
  "vitals": {"heartRate": [72, 70], "bmi": [24.1], "bloodPressure": ["120/80"], "lastUpdated": "2026-03-01T10:00:00Z"},
  "trajectories": [{"label": "Pain", "values": [6, 3], "dates": ["2026-02-01", "2026-02-15"]}],
  "medicationResponses": [{"med": "Ibuprofen", "effectiveness": "High", "sideEffectsSeverity": "Mild"}],
  "equilibriumStatus": "Recovering"
}`

const twinNoTimestampJSON = `{
  "vitals": {"heartRate": [], "bmi": [], "bloodPressure": []},
  "trajectories": [],
  "medicationResponses": [],
  "equilibriumStatus": "No data yet"
}`

func newTestServices(t *testing.T, gen inference.Generator) *Services {
	t.Helper()
	store := storage.NewStore(kv.NewMemoryRepository(), nil)
	return New(store, gen, nil)
}

func demographics() models.Demographics {
	return models.Demographics{
		Name:              "Ada",
		Age:               36,
		Gender:            "Female",
		Weight:            61.5,
		Height:            170,
		BloodGroup:        "A-",
		Allergies:         []string{"Penicillin", "Pollen"},
		MedicalHistory:    "Asthma",
		PreferredLanguage: "Latvian",
	}
}

func register(t *testing.T, s *Services) models.UserProfile {
	t.Helper()
	p, err := s.Profiles.Register(context.Background(), demographics())
	require.NoError(t, err)
	return p
}

func fixedClock(ts time.Time) func() time.Time {
	return func() time.Time { return ts }
}
