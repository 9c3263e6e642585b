package services

import (
	"context"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/client/storage"
	"github.com/dmitrijs2005/medigenie/internal/logging"
)

// Services wires every application service over one store and one
// inference backend. The CLI and the local API both use it.
type Services struct {
	Store        *storage.Store
	Profiles     *ProfileService
	Twins        *TwinService
	Simulator    *Simulator
	Coordinator  *Coordinator
	Orchestrator *Orchestrator
	Advisor      *Advisor

	guard *Guard
}

func New(store *storage.Store, gen inference.Generator, log logging.Logger) *Services {
	if log == nil {
		log = logging.Nop()
	}
	guard := NewGuard()

	profiles := NewProfileService(store, log.With("service", "profile"))
	simulator := NewSimulator(gen)
	twins := NewTwinService(store, NewTwinBuilder(gen), NewSummarizer(gen), guard, log.With("service", "twin"))

	return &Services{
		Store:        store,
		Profiles:     profiles,
		Twins:        twins,
		Simulator:    simulator,
		Coordinator:  NewCoordinator(store, gen, twins, guard, log.With("service", "follow-up")),
		Orchestrator: NewOrchestrator(profiles, gen, simulator, nil, guard, log.With("service", "chat")),
		Advisor:      NewAdvisor(profiles, gen, guard, log.With("service", "advisor")),
		guard:        guard,
	}
}

// Simulate runs a what-if scenario against the stored twin.
func (s *Services) Simulate(ctx context.Context, scenario string) (models.SimulationResult, error) {
	release, err := s.guard.Acquire(ActionSimulate)
	if err != nil {
		return models.SimulationResult{}, err
	}
	defer release()

	profile, err := s.Profiles.Get(ctx)
	if err != nil {
		return models.SimulationResult{}, err
	}
	return s.Simulator.Simulate(ctx, profile.DigitalTwin, profile, scenario)
}
