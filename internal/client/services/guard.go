package services

import (
	"fmt"
	"sync"

	"github.com/dmitrijs2005/medigenie/internal/common"
)

// Action names a kind of long-running user action.
type Action string

const (
	ActionRebuild   Action = "rebuild"
	ActionCommitLog Action = "commit-log"
	ActionSimulate  Action = "simulate"
	ActionSummarize Action = "summarize"
	ActionChat      Action = "chat"
	ActionTriage    Action = "triage"
	ActionPathway   Action = "pathway"
	ActionAdvice    Action = "advice"
)

// Guard allows at most one running action per kind.
type Guard struct {
	mu      sync.Mutex
	running map[Action]bool
}

func NewGuard() *Guard {
	return &Guard{running: map[Action]bool{}}
}

// Acquire marks a as running. The returned release must be called when the
// action is done. A second Acquire of the same kind fails with ErrInFlight.
func (g *Guard) Acquire(a Action) (func(), error) {
	g.mu.Lock()
	defer g.mu.Unlock()

	if g.running[a] {
		return nil, fmt.Errorf("%w: %s", common.ErrInFlight, a)
	}
	g.running[a] = true

	var once sync.Once
	return func() {
		once.Do(func() {
			g.mu.Lock()
			delete(g.running, a)
			g.mu.Unlock()
		})
	}, nil
}

func (g *Guard) Running(a Action) bool {
	g.mu.Lock()
	defer g.mu.Unlock()
	return g.running[a]
}
