package cli

import (
	"context"
	"io"

	"github.com/dmitrijs2005/medigenie/internal/export"
	"github.com/dmitrijs2005/medigenie/internal/filex"
)

const (
	defaultWorkbookPath = "medigenie-export.xlsx"
	defaultReportPath   = "medigenie-report.pdf"
)

func (a *App) writeFile(path string, render func(w io.Writer) error) error {
	f, err := filex.CreateFile(path)
	if err != nil {
		return err
	}
	if err := render(f); err != nil {
		f.Close()
		return err
	}
	return f.Close()
}

func outPath(args []string, def string) string {
	if len(args) > 0 {
		return args[0]
	}
	return def
}

func (a *App) Export(ctx context.Context, args []string) error {
	p, err := a.svc.Profiles.Registered(ctx)
	if err != nil {
		return err
	}
	logs, err := a.svc.Profiles.Logs(ctx)
	if err != nil {
		return err
	}

	path := outPath(args, defaultWorkbookPath)
	if err := a.writeFile(path, func(w io.Writer) error {
		return export.WriteWorkbook(w, p, logs)
	}); err != nil {
		return err
	}
	a.println("Exported to", path)
	return nil
}

func (a *App) Report(ctx context.Context, args []string) error {
	p, err := a.svc.Profiles.Registered(ctx)
	if err != nil {
		return err
	}
	logs, err := a.svc.Profiles.Logs(ctx)
	if err != nil {
		return err
	}

	path := outPath(args, defaultReportPath)
	if err := a.writeFile(path, func(w io.Writer) error {
		return export.WriteReport(w, p, logs, a.now())
	}); err != nil {
		return err
	}
	a.println("Report written to", path)
	return nil
}
