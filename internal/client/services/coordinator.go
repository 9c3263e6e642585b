package services

import (
	"context"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/client/storage"
	"github.com/dmitrijs2005/medigenie/internal/logging"
)

const (
	// FeedbackLogs is how many prior logs go with the feedback request.
	FeedbackLogs = 3

	FallbackFeedback = "Log saved successfully."
)

// SyncState is the terminal state of a log commit.
type SyncState string

const (
	StateTwinSynchronized SyncState = "TwinSynchronized"
	StateDegraded         SyncState = "Degraded"
)

// CommitResult describes a committed log entry. When State is Degraded the
// entry is persisted but summary and twin are stale; SyncErr says why.
type CommitResult struct {
	Entry    models.FollowUpLog
	Logs     []models.FollowUpLog
	Feedback string
	State    SyncState
	SyncErr  error
	Twin     *models.DigitalTwin
}

// Coordinator runs the follow-up protocol:
// Draft → Analyzed → Committed → TwinSynchronized | Degraded.
type Coordinator struct {
	store *storage.Store
	gen   inference.Generator
	twins *TwinService
	guard *Guard
	log   logging.Logger
	now   func() time.Time
}

func NewCoordinator(store *storage.Store, gen inference.Generator, twins *TwinService, guard *Guard, log logging.Logger) *Coordinator {
	return &Coordinator{store: store, gen: gen, twins: twins, guard: guard, log: log, now: time.Now}
}

func (c *Coordinator) CommitLog(ctx context.Context, d models.FollowUpDraft) (CommitResult, error) {
	d.Condition = strings.TrimSpace(d.Condition)
	d.Notes = strings.TrimSpace(d.Notes)
	if err := d.Validate(); err != nil {
		return CommitResult{}, err
	}

	release, err := c.guard.Acquire(ActionCommitLog)
	if err != nil {
		return CommitResult{}, err
	}
	defer release()

	profile, prior, err := c.store.Snapshot(ctx)
	if err != nil {
		return CommitResult{}, err
	}
	if err := requireRegistered(profile); err != nil {
		return CommitResult{}, err
	}

	// Analyzed
	res := CommitResult{Feedback: c.feedback(ctx, profile, prior, d)}

	// Committed
	entry, logs, err := c.store.AppendLog(ctx, d, c.now())
	if err != nil {
		return CommitResult{}, fmt.Errorf("commit log: %w", err)
	}
	res.Entry, res.Logs = entry, logs
	c.log.Info(ctx, "follow-up committed", "id", entry.ID, "status", entry.Status)

	// TwinSynchronized | Degraded
	derived, err := c.twins.sync(ctx, profile, logs, true)
	if err != nil {
		c.log.Warn(ctx, "derived state not synchronized", "id", entry.ID, "error", err)
		res.State, res.SyncErr = StateDegraded, err
		return res, nil
	}
	res.State = StateTwinSynchronized
	res.Twin = &derived.Twin
	return res, nil
}

func (c *Coordinator) feedback(ctx context.Context, profile models.UserProfile, prior []models.FollowUpLog, d models.FollowUpDraft) string {
	prompt := "Current: " + mustJSON(d) +
		"\nHistory: " + mustJSON(models.Recent(prior, FeedbackLogs))

	resp, err := c.gen.Generate(ctx, inference.Request{
		SystemInstruction: feedbackInstruction(language(profile)),
		Messages:          []inference.Message{inference.UserText(prompt)},
	})
	if err != nil {
		c.log.Warn(ctx, "follow-up feedback unavailable", "error", err)
		return FallbackFeedback
	}
	if text := strings.TrimSpace(resp.Text); text != "" {
		return text
	}
	return FallbackFeedback
}
