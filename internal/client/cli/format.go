package cli

import (
	"fmt"
	"io"
	"strings"
	"text/tabwriter"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
)

const dateLayout = "2006-01-02 15:04"

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

func bullets(w io.Writer, title string, items []string) {
	if len(items) == 0 {
		return
	}
	fmt.Fprintln(w, title+":")
	for _, it := range items {
		fmt.Fprintln(w, "  -", it)
	}
}

func printProfile(w io.Writer, p models.UserProfile) {
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Name\t%s\n", p.Name)
	fmt.Fprintf(tw, "Age\t%d\n", p.Age)
	fmt.Fprintf(tw, "Gender\t%s\n", p.Gender)
	fmt.Fprintf(tw, "Weight\t%.1f kg\n", p.Weight)
	fmt.Fprintf(tw, "Height\t%.1f cm\n", p.Height)
	fmt.Fprintf(tw, "Blood group\t%s\n", p.BloodGroup)
	fmt.Fprintf(tw, "Allergies\t%s\n", orDash(strings.Join(p.Allergies, ", ")))
	fmt.Fprintf(tw, "History\t%s\n", orDash(p.MedicalHistory))
	fmt.Fprintf(tw, "Language\t%s\n", p.PreferredLanguage)
	twin := "no"
	if p.DigitalTwin != nil {
		twin = "updated " + p.DigitalTwin.Vitals.LastUpdated.Local().Format(dateLayout)
	}
	fmt.Fprintf(tw, "Digital twin\t%s\n", twin)
	tw.Flush()
}

// printLogs prints logs in the order given (newest first as stored).
func printLogs(w io.Writer, logs []models.FollowUpLog) {
	if len(logs) == 0 {
		fmt.Fprintln(w, "No follow-up logs yet.")
		return
	}
	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintln(tw, "DATE\tSTATUS\tCONDITION\tNOTES")
	for _, l := range logs {
		fmt.Fprintf(tw, "%s\t%s\t%s\t%s\n", l.Date.Local().Format(dateLayout), l.Status, l.Condition, l.Notes)
	}
	tw.Flush()
}

func printTwin(w io.Writer, t models.DigitalTwin) {
	fmt.Fprintln(w, "Equilibrium:", orDash(t.EquilibriumStatus))
	fmt.Fprintln(w, "Last updated:", t.Vitals.LastUpdated.Local().Format(dateLayout))

	tw := tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
	fmt.Fprintf(tw, "Heart rate\t%s\n", orDash(floats(t.Vitals.HeartRate)))
	fmt.Fprintf(tw, "BMI\t%s\n", orDash(floats(t.Vitals.BMI)))
	fmt.Fprintf(tw, "Blood pressure\t%s\n", orDash(strings.Join(t.Vitals.BloodPressure, ", ")))
	tw.Flush()

	for _, tr := range t.Trajectories {
		fmt.Fprintf(w, "Trajectory %q:\n", tr.Label)
		for i := range tr.Values {
			fmt.Fprintf(w, "  %s  %g\n", tr.Dates[i], tr.Values[i])
		}
	}
	if len(t.MedicationResponses) > 0 {
		tw = tabwriter.NewWriter(w, 0, 0, 2, ' ', 0)
		fmt.Fprintln(tw, "MEDICATION\tEFFECTIVENESS\tSIDE EFFECTS")
		for _, m := range t.MedicationResponses {
			fmt.Fprintf(tw, "%s\t%s\t%s\n", m.Med, m.Effectiveness, m.SideEffectsSeverity)
		}
		tw.Flush()
	}
}

func floats(vs []float64) string {
	parts := make([]string, len(vs))
	for i, v := range vs {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, ", ")
}

func printSources(w io.Writer, sources []models.GroundingSource) {
	if len(sources) == 0 {
		return
	}
	fmt.Fprintln(w, "Sources:")
	for _, s := range sources {
		fmt.Fprintf(w, "  - %s <%s>\n", orDash(s.Title), s.URI)
	}
}

func printGrounded(w io.Writer, g models.Grounded) {
	fmt.Fprintln(w, g.Text)
	printSources(w, g.Sources)
}

func printAdvice(w io.Writer, r models.PrescriptionAdvice) {
	fmt.Fprintf(w, "Suggested: %s (%s)\n", r.Medication, orDash(r.Dosage))
	if r.Price != "" {
		fmt.Fprintln(w, "Price:", r.Price)
	}
	bullets(w, "Side effects", r.SideEffects)
	bullets(w, "Warnings", r.Warnings)
}

func printReply(w io.Writer, m models.ChatMessage) {
	fmt.Fprintf(w, "[%s", m.ActiveAgent)
	if m.Confidence != "" {
		fmt.Fprintf(w, ", %s confidence", m.Confidence)
	}
	fmt.Fprintln(w, "]")
	fmt.Fprintln(w, m.Text)
	printSources(w, m.Sources)
	if m.Recommendation != nil {
		printAdvice(w, *m.Recommendation)
	}
}

func printTriageResult(w io.Writer, s models.TriageStep) {
	fmt.Fprintf(w, "Triage complete (%s risk)\n", s.RiskLevel)
	fmt.Fprintln(w, s.SummarySoFar)
	if s.Result == nil {
		return
	}
	fmt.Fprintf(w, "Risk score: %.0f/100, urgency: %s\n", s.Result.RiskScore, orDash(s.Result.Urgency))
	bullets(w, "Possible conditions", s.Result.PotentialConditions)
	fmt.Fprintln(w, s.Result.Recommendation)
}

func printPathway(w io.Writer, p models.CarePathway) {
	fmt.Fprintln(w, "Possible causes:")
	for _, c := range p.PotentialCauses {
		fmt.Fprintf(w, "  - %s (%s): %s\n", c.Title, c.Likelihood, c.Description)
	}
	bullets(w, "Do now", p.ImmediateActions)
	bullets(w, "Home care", p.HomeCareSteps)
	if p.DoctorFollowUp != "" {
		fmt.Fprintln(w, "See a doctor:", p.DoctorFollowUp)
	}
	bullets(w, "Red flags", p.RedFlags)
}
