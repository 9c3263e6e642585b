package export

import (
	"fmt"
	"io"
	"strings"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/jung-kurt/gofpdf"
)

// ReportLogs caps the number of log entries printed in the report.
const ReportLogs = 20

const reportDisclaimer = "MediGenie recommendations are for informational purposes only. This is not medical advice. Consult a doctor."

type report struct {
	pdf *gofpdf.Fpdf
	tr  func(string) string
}

func (r *report) heading(text string) {
	r.pdf.Ln(4)
	r.pdf.SetFont("Helvetica", "B", 13)
	r.pdf.CellFormat(0, 8, r.tr(text), "B", 1, "L", false, 0, "")
	r.pdf.Ln(2)
	r.pdf.SetFont("Helvetica", "", 10)
}

func (r *report) line(label, value string) {
	r.pdf.SetFont("Helvetica", "B", 10)
	r.pdf.CellFormat(45, 6, r.tr(label), "", 0, "L", false, 0, "")
	r.pdf.SetFont("Helvetica", "", 10)
	r.pdf.MultiCell(0, 6, r.tr(value), "", "L", false)
}

func (r *report) para(text string) {
	r.pdf.MultiCell(0, 5, r.tr(text), "", "L", false)
}

func joinFloats(values []float64) string {
	parts := make([]string, len(values))
	for i, v := range values {
		parts[i] = fmt.Sprintf("%g", v)
	}
	return strings.Join(parts, ", ")
}

func orDash(s string) string {
	if strings.TrimSpace(s) == "" {
		return "-"
	}
	return s
}

// WriteReport renders a PDF health report: profile, cached summary, twin
// state and the most recent follow-up logs.
func WriteReport(w io.Writer, profile models.UserProfile, logs []models.FollowUpLog, now time.Time) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("MediGenie health report", true)
	pdf.SetAuthor("MediGenie", true)
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont("Helvetica", "I", 8)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	r := &report{pdf: pdf, tr: pdf.UnicodeTranslatorFromDescriptor("")}

	pdf.AddPage()
	pdf.SetFont("Helvetica", "B", 18)
	pdf.CellFormat(0, 10, r.tr("Health report: "+orDash(profile.Name)), "", 1, "L", false, 0, "")
	pdf.SetFont("Helvetica", "", 9)
	pdf.CellFormat(0, 6, "Generated "+now.UTC().Format(time.RFC1123), "", 1, "L", false, 0, "")

	r.heading("Profile")
	r.line("Age", fmt.Sprintf("%d", profile.Age))
	r.line("Gender", orDash(profile.Gender))
	r.line("Weight / height", fmt.Sprintf("%g kg / %g cm", profile.Weight, profile.Height))
	r.line("Blood group", orDash(profile.BloodGroup))
	r.line("Allergies", orDash(strings.Join(profile.Allergies, ", ")))
	r.line("Medical history", orDash(profile.MedicalHistory))
	r.line("Language", orDash(profile.PreferredLanguage))

	r.heading("Health summary")
	r.para(orDash(profile.HealthSummary))

	r.heading("Digital twin")
	if t := profile.DigitalTwin; t != nil {
		r.line("Equilibrium", orDash(t.EquilibriumStatus))
		r.line("Last updated", t.Vitals.LastUpdated.UTC().Format(time.RFC3339))
		r.line("Heart rate", orDash(joinFloats(t.Vitals.HeartRate)))
		r.line("BMI", orDash(joinFloats(t.Vitals.BMI)))
		r.line("Blood pressure", orDash(strings.Join(t.Vitals.BloodPressure, ", ")))
		for _, tr := range t.Trajectories {
			r.line(tr.Label, joinFloats(tr.Values))
		}
		for _, m := range t.MedicationResponses {
			r.line(m.Med, fmt.Sprintf("effectiveness %s, side effects %s", m.Effectiveness, m.SideEffectsSeverity))
		}
	} else {
		r.para("No digital twin has been built yet.")
	}

	r.heading("Recent follow-up logs")
	recent := models.Recent(logs, ReportLogs)
	if len(recent) == 0 {
		r.para("No follow-up logs recorded.")
	}
	for _, l := range recent {
		r.line(l.Date.UTC().Format("2006-01-02 15:04"), fmt.Sprintf("%s (%s): %s", l.Condition, l.Status, l.Notes))
	}

	pdf.Ln(6)
	pdf.SetFont("Helvetica", "I", 8)
	r.para(reportDisclaimer)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("failed to render report: %w", err)
	}
	return nil
}
