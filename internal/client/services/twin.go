package services

import (
	"context"
	"fmt"
	"strings"
	"sync"
	"sync/atomic"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/client/storage"
	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/dmitrijs2005/medigenie/internal/logging"
)

// TwinBuilder derives a DigitalTwin from a profile and its follow-up logs.
// It has no side effects and never retries.
type TwinBuilder struct {
	gen inference.Generator
	now func() time.Time
}

func NewTwinBuilder(gen inference.Generator) *TwinBuilder {
	return &TwinBuilder{gen: gen, now: time.Now}
}

func (b *TwinBuilder) BuildTwin(ctx context.Context, profile models.UserProfile, logs []models.FollowUpLog) (models.DigitalTwin, error) {
	if err := requireRegistered(profile); err != nil {
		return models.DigitalTwin{}, err
	}

	prompt := "Current Profile: " + mustJSON(profile.WithoutTwin()) +
		"\nHistory Logs (oldest first): " + mustJSON(models.Chronological(logs))

	resp, err := b.gen.Generate(ctx, inference.Request{
		SystemInstruction: twinInstruction(language(profile)),
		Messages:          []inference.Message{inference.UserText(prompt)},
		ResponseSchema:    models.DigitalTwinSchema(),
	})
	if err != nil {
		return models.DigitalTwin{}, fmt.Errorf("build twin: %w", err)
	}

	twin, err := models.ParseDigitalTwin([]byte(resp.Text), b.now().UTC())
	if err != nil {
		return models.DigitalTwin{}, fmt.Errorf("build twin: %w", err)
	}
	return twin, nil
}

// Simulator answers what-if scenarios against a twin. The twin is read only.
type Simulator struct {
	gen inference.Generator
}

func NewSimulator(gen inference.Generator) *Simulator {
	return &Simulator{gen: gen}
}

func (s *Simulator) Simulate(ctx context.Context, twin *models.DigitalTwin, profile models.UserProfile, scenario string) (models.SimulationResult, error) {
	if err := requireRegistered(profile); err != nil {
		return models.SimulationResult{}, err
	}
	if twin == nil {
		return models.SimulationResult{}, common.ErrNoTwin
	}
	scenario = strings.TrimSpace(scenario)
	if scenario == "" {
		return models.SimulationResult{}, common.Invalid("scenario", "is required")
	}

	prompt := "Digital Twin State: " + mustJSON(twin) +
		"\nUser Profile: " + mustJSON(profile.WithoutTwin()) +
		"\nWhat-If Request: " + scenario

	resp, err := s.gen.Generate(ctx, inference.Request{
		SystemInstruction: simulatorInstruction(language(profile)),
		Messages:          []inference.Message{inference.UserText(prompt)},
	})
	if err != nil {
		return models.SimulationResult{}, fmt.Errorf("simulate: %w", err)
	}
	if strings.TrimSpace(resp.Text) == "" {
		return models.SimulationResult{}, fmt.Errorf("simulate: %w: empty narrative", common.ErrMalformedDerivedState)
	}
	return models.SimulationResult{Scenario: scenario, Narrative: resp.Text}, nil
}

// SummaryLogs is how many recent logs the summarizer looks at.
const SummaryLogs = 5

type Summarizer struct {
	gen inference.Generator
}

func NewSummarizer(gen inference.Generator) *Summarizer {
	return &Summarizer{gen: gen}
}

// Summarize produces the narrative cached on profile.healthSummary from the
// most recent logs, newest first.
func (s *Summarizer) Summarize(ctx context.Context, profile models.UserProfile, logs []models.FollowUpLog) (string, error) {
	if err := requireRegistered(profile); err != nil {
		return "", err
	}

	baseline := profile.WithoutTwin()
	baseline.HealthSummary = ""
	prompt := "Profile: " + mustJSON(baseline) +
		"\nRecent Logs (newest first): " + mustJSON(models.Recent(logs, SummaryLogs))

	resp, err := s.gen.Generate(ctx, inference.Request{
		SystemInstruction: summaryInstruction(language(profile)),
		Messages:          []inference.Message{inference.UserText(prompt)},
	})
	if err != nil {
		return "", fmt.Errorf("summarize: %w", err)
	}
	text := strings.TrimSpace(resp.Text)
	if text == "" {
		return "", fmt.Errorf("summarize: %w: empty summary", common.ErrMalformedDerivedState)
	}
	return text, nil
}

// TwinService rebuilds and persists derived state. Every rebuild takes a
// generation token and every summary takes a summary token; results older
// than the newest issued token of their kind are dropped.
type TwinService struct {
	store      *storage.Store
	builder    *TwinBuilder
	summarizer *Summarizer
	guard      *Guard
	log        logging.Logger

	issued    atomic.Uint64
	summaries atomic.Uint64
	mu        sync.Mutex
}

func NewTwinService(store *storage.Store, builder *TwinBuilder, summarizer *Summarizer, guard *Guard, log logging.Logger) *TwinService {
	return &TwinService{store: store, builder: builder, summarizer: summarizer, guard: guard, log: log}
}

// Derived is the outcome of one synchronization. A zero Generation carries
// no twin.
type Derived struct {
	Generation        uint64
	SummaryGeneration uint64
	Twin              models.DigitalTwin
	Summary           string
}

// Rebuild reconstructs the twin from the stored profile and logs.
func (s *TwinService) Rebuild(ctx context.Context) (models.DigitalTwin, error) {
	release, err := s.guard.Acquire(ActionRebuild)
	if err != nil {
		return models.DigitalTwin{}, err
	}
	defer release()

	profile, logs, err := s.store.Snapshot(ctx)
	if err != nil {
		return models.DigitalTwin{}, err
	}
	if err := requireRegistered(profile); err != nil {
		return models.DigitalTwin{}, err
	}

	d, err := s.sync(ctx, profile, logs, false)
	if err != nil {
		return models.DigitalTwin{}, err
	}
	return d.Twin, nil
}

// Summarize refreshes only the cached health summary.
func (s *TwinService) Summarize(ctx context.Context) (string, error) {
	release, err := s.guard.Acquire(ActionSummarize)
	if err != nil {
		return "", err
	}
	defer release()

	d := Derived{SummaryGeneration: s.summaries.Add(1)}
	profile, logs, err := s.store.Snapshot(ctx)
	if err != nil {
		return "", err
	}
	summary, err := s.summarizer.Summarize(ctx, profile, logs)
	if err != nil {
		return "", err
	}
	d.Summary = summary
	if err := s.apply(ctx, d, true); err != nil {
		return "", err
	}
	return summary, nil
}

// sync builds (and optionally summarizes) from the given inputs and applies
// the result unless a newer generation was issued meanwhile.
func (s *TwinService) sync(ctx context.Context, profile models.UserProfile, logs []models.FollowUpLog, withSummary bool) (Derived, error) {
	d := Derived{Generation: s.issued.Add(1)}
	log := s.log.With("generation", d.Generation)

	if withSummary {
		d.SummaryGeneration = s.summaries.Add(1)
		summary, err := s.summarizer.Summarize(ctx, profile, logs)
		if err != nil {
			return Derived{}, err
		}
		d.Summary = summary
	}

	twin, err := s.builder.BuildTwin(ctx, profile, logs)
	if err != nil {
		log.Warn(ctx, "twin build failed", "error", err)
		return Derived{}, err
	}
	d.Twin = twin

	if err := s.apply(ctx, d, withSummary); err != nil {
		return Derived{}, err
	}
	log.Info(ctx, "twin synchronized", "logs", len(logs), "trajectories", len(twin.Trajectories))
	return d, nil
}

func (s *TwinService) apply(ctx context.Context, d Derived, withSummary bool) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if newest := s.issued.Load(); d.Generation != 0 && d.Generation < newest {
		return fmt.Errorf("%w: generation %d, newest %d", common.ErrStaleResult, d.Generation, newest)
	}
	if newest := s.summaries.Load(); withSummary && d.SummaryGeneration < newest {
		return fmt.Errorf("%w: summary generation %d, newest %d", common.ErrStaleResult, d.SummaryGeneration, newest)
	}

	twin := d.Twin.Clone()
	_, err := s.store.UpdateProfile(ctx, func(p *models.UserProfile) error {
		if d.Generation != 0 {
			p.DigitalTwin = &twin
		}
		if withSummary {
			p.HealthSummary = d.Summary
		}
		return nil
	})
	return err
}
