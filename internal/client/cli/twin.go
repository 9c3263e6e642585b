package cli

import (
	"context"
)

func (a *App) Twin(ctx context.Context, _ []string) error {
	p, err := a.svc.Profiles.Registered(ctx)
	if err != nil {
		return err
	}
	if p.DigitalTwin == nil {
		a.println("No digital twin yet. Add a follow-up log or run 'rebuild'.")
		return nil
	}
	printTwin(a.out, *p.DigitalTwin)
	return nil
}

func (a *App) Rebuild(ctx context.Context, _ []string) error {
	a.println("Rebuilding your digital twin...")
	twin, err := a.svc.Twins.Rebuild(ctx)
	if err != nil {
		return err
	}
	printTwin(a.out, twin)
	return nil
}

func (a *App) Simulate(ctx context.Context, args []string) error {
	scenario, err := a.argOrPrompt(args, "What if...?")
	if err != nil {
		return err
	}
	res, err := a.svc.Simulate(ctx, scenario)
	if err != nil {
		return err
	}
	a.println(res.Narrative)
	return nil
}

func (a *App) Summary(ctx context.Context, args []string) error {
	if len(args) > 0 && args[0] == "refresh" {
		s, err := a.svc.Twins.Summarize(ctx)
		if err != nil {
			return err
		}
		a.println(s)
		return nil
	}

	p, err := a.svc.Profiles.Registered(ctx)
	if err != nil {
		return err
	}
	if p.HealthSummary == "" {
		a.println("No summary yet. Run 'summary refresh' to create one.")
		return nil
	}
	a.println(p.HealthSummary)
	return nil
}
