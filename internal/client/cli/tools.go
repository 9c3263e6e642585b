package cli

import (
	"context"
	"fmt"
	"strconv"
	"strings"

	"github.com/dmitrijs2005/medigenie/internal/client/inference"
	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/filex"
)

// maxTriageTurns bounds an interactive triage dialogue.
const maxTriageTurns = 12

func (a *App) Triage(ctx context.Context, args []string) error {
	symptoms, err := a.argOrPrompt(args, "Describe your symptoms")
	if err != nil {
		return err
	}

	var history []models.TriageAnswer
	for turn := 0; turn < maxTriageTurns; turn++ {
		step, err := a.svc.Advisor.TriageStep(ctx, symptoms, history)
		if err != nil {
			return err
		}
		if step.RiskLevel == models.RiskEmergency {
			a.println("!!! Possible emergency. Call your local emergency number now.")
		}
		if step.IsComplete {
			printTriageResult(a.out, step)
			return nil
		}

		a.printf("[%s risk] %s\n", step.RiskLevel, step.SummarySoFar)
		prompt := step.Question
		for i, o := range step.Options {
			prompt += fmt.Sprintf("\n  %d) %s", i+1, o)
		}
		answer, err := a.text(prompt)
		if err != nil {
			return err
		}
		if answer == "" {
			a.println("Triage stopped.")
			return nil
		}
		if n, err := strconv.Atoi(answer); err == nil && n >= 1 && n <= len(step.Options) {
			answer = step.Options[n-1]
		}
		history = append(history, models.TriageAnswer{Question: step.Question, Answer: answer})
	}
	a.println("Triage did not converge; please consult a doctor.")
	return nil
}

func (a *App) Pathway(ctx context.Context, args []string) error {
	symptoms, err := a.argOrPrompt(args, "Describe your symptoms")
	if err != nil {
		return err
	}
	var l models.Lifestyle
	if l.Sleep, err = a.text("Sleep (optional)"); err != nil {
		return err
	}
	if l.Diet, err = a.text("Diet (optional)"); err != nil {
		return err
	}
	if l.Activity, err = a.text("Activity (optional)"); err != nil {
		return err
	}
	if l.Stress, err = a.text("Stress (optional)"); err != nil {
		return err
	}

	p, err := a.svc.Advisor.CarePathway(ctx, symptoms, &l)
	if err != nil {
		return err
	}
	printPathway(a.out, p)
	return nil
}

func (a *App) Drugs(ctx context.Context, args []string) error {
	var meds []string
	if len(args) > 0 {
		meds = models.ParseAllergies(strings.Join(args, " "))
	} else {
		var err error
		if meds, err = GetList(a.reader, "Medications", a.out); err != nil {
			return err
		}
	}
	res, err := a.svc.Advisor.DrugInteractions(ctx, meds)
	if err != nil {
		return err
	}
	printGrounded(a.out, res)
	return nil
}

// Lab takes either "lab <image path>" or a pasted report.
func (a *App) Lab(ctx context.Context, args []string) error {
	var image *models.Image
	var report string
	if len(args) > 0 {
		mime, data, err := filex.ReadImage(strings.Join(args, " "))
		if err != nil {
			return err
		}
		image = &models.Image{MimeType: mime, Data: data}
	} else {
		var err error
		if report, err = GetMultiline(a.reader, "Paste the lab report", a.out); err != nil {
			return err
		}
	}
	res, err := a.svc.Advisor.LabReport(ctx, report, image)
	if err != nil {
		return err
	}
	printGrounded(a.out, res)
	return nil
}

func (a *App) Search(ctx context.Context, args []string) error {
	q, err := a.argOrPrompt(args, "Search medical information")
	if err != nil {
		return err
	}
	res, err := a.svc.Advisor.Search(ctx, q)
	if err != nil {
		return err
	}
	printGrounded(a.out, res)
	return nil
}

// Clinics accepts "clinics <lat> <lng> [specialty...]" or prompts.
func (a *App) Clinics(ctx context.Context, args []string) error {
	var at inference.LatLng
	var specialty string
	var err error

	if len(args) >= 2 {
		if at.Latitude, err = strconv.ParseFloat(args[0], 64); err != nil {
			return fmt.Errorf("latitude: %w", err)
		}
		if at.Longitude, err = strconv.ParseFloat(args[1], 64); err != nil {
			return fmt.Errorf("longitude: %w", err)
		}
		specialty = strings.Join(args[2:], " ")
	} else {
		if at.Latitude, err = GetFloat(a.reader, "Latitude", 0, a.out); err != nil {
			return err
		}
		if at.Longitude, err = GetFloat(a.reader, "Longitude", 0, a.out); err != nil {
			return err
		}
		if specialty, err = a.text("Specialty (optional)"); err != nil {
			return err
		}
	}

	res, err := a.svc.Advisor.Clinics(ctx, specialty, at)
	if err != nil {
		return err
	}
	printGrounded(a.out, res)
	return nil
}
