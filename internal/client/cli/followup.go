package cli

import (
	"context"
	"strconv"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/client/services"
)

var statusOptions = []string{string(models.StatusImproving), string(models.StatusStable), string(models.StatusWorsening)}

func (a *App) AddLog(ctx context.Context, _ []string) error {
	if _, err := a.svc.Profiles.Registered(ctx); err != nil {
		return err
	}

	var d models.FollowUpDraft
	var err error
	if d.Condition, err = a.text("Condition"); err != nil {
		return err
	}
	status, err := GetChoice(a.reader, "Status", statusOptions, string(models.StatusStable), a.out)
	if err != nil {
		return err
	}
	d.Status = models.Status(status)
	if d.Notes, err = GetMultiline(a.reader, "Notes", a.out); err != nil {
		return err
	}

	a.println("Analyzing and syncing your digital twin...")
	res, err := a.svc.Coordinator.CommitLog(ctx, d)
	if err != nil {
		return err
	}

	a.println(res.Feedback)
	switch res.State {
	case services.StateTwinSynchronized:
		a.println("Log saved; summary and digital twin are up to date.")
	case services.StateDegraded:
		a.println("Log saved, but the summary and twin could not be refreshed: " + describe(res.SyncErr))
	}
	return nil
}

func (a *App) Logs(ctx context.Context, args []string) error {
	logs, err := a.svc.Profiles.Logs(ctx)
	if err != nil {
		return err
	}
	limit := len(logs)
	if len(args) > 0 {
		if n, err := strconv.Atoi(args[0]); err == nil && n >= 0 && n < limit {
			limit = n
		}
	}
	printLogs(a.out, logs[:limit])
	return nil
}
