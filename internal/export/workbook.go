// Package export renders the local health state as an xlsx workbook and a
// PDF report.
package export

import (
	"fmt"
	"io"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/xuri/excelize/v2"
)

const (
	LogsSheet         = "Follow-up Logs"
	TrajectoriesSheet = "Trajectories"
	MedicationsSheet  = "Medications"
)

var (
	logsHeader         = []string{"ID", "Date", "Condition", "Status", "Notes"}
	trajectoriesHeader = []string{"Label", "Date", "Value"}
	medicationsHeader  = []string{"Medication", "Effectiveness", "Side Effects"}
)

type sheet struct {
	name   string
	header []string
	widths []float64
	rows   [][]any
}

func logRows(logs []models.FollowUpLog) [][]any {
	rows := make([][]any, 0, len(logs))
	for _, l := range logs {
		rows = append(rows, []any{l.ID, l.Date.UTC().Format(time.RFC3339), l.Condition, string(l.Status), l.Notes})
	}
	return rows
}

func trajectoryRows(twin *models.DigitalTwin) [][]any {
	if twin == nil {
		return nil
	}
	var rows [][]any
	for _, tr := range twin.Trajectories {
		for i, v := range tr.Values {
			date := ""
			if i < len(tr.Dates) {
				date = tr.Dates[i]
			}
			rows = append(rows, []any{tr.Label, date, v})
		}
	}
	return rows
}

func medicationRows(twin *models.DigitalTwin) [][]any {
	if twin == nil {
		return nil
	}
	rows := make([][]any, 0, len(twin.MedicationResponses))
	for _, m := range twin.MedicationResponses {
		rows = append(rows, []any{m.Med, string(m.Effectiveness), string(m.SideEffectsSeverity)})
	}
	return rows
}

// Workbook builds a workbook with the follow-up log (newest first) and the
// trajectories and medication responses of the twin. The caller closes it.
func Workbook(profile models.UserProfile, logs []models.FollowUpLog) (*excelize.File, error) {
	sheets := []sheet{
		{name: LogsSheet, header: logsHeader, widths: []float64{16, 22, 24, 12, 60}, rows: logRows(logs)},
		{name: TrajectoriesSheet, header: trajectoriesHeader, widths: []float64{24, 14, 10}, rows: trajectoryRows(profile.DigitalTwin)},
		{name: MedicationsSheet, header: medicationsHeader, widths: []float64{24, 14, 14}, rows: medicationRows(profile.DigitalTwin)},
	}

	f := excelize.NewFile()
	headerStyle, err := f.NewStyle(&excelize.Style{
		Font: &excelize.Font{Bold: true},
		Fill: excelize.Fill{Type: "pattern", Color: []string{"#E6F3FF"}, Pattern: 1},
		Border: []excelize.Border{
			{Type: "bottom", Color: "000000", Style: 1},
		},
		Alignment: &excelize.Alignment{Horizontal: "center", Vertical: "center"},
	})
	if err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to create header style: %w", err)
	}

	for i, s := range sheets {
		if err := writeSheet(f, s, headerStyle); err != nil {
			f.Close()
			return nil, err
		}
		if i == 0 {
			idx, err := f.GetSheetIndex(s.name)
			if err != nil {
				f.Close()
				return nil, err
			}
			f.SetActiveSheet(idx)
		}
	}
	if err := f.DeleteSheet("Sheet1"); err != nil {
		f.Close()
		return nil, fmt.Errorf("failed to drop default sheet: %w", err)
	}
	return f, nil
}

func writeSheet(f *excelize.File, s sheet, headerStyle int) error {
	if _, err := f.NewSheet(s.name); err != nil {
		return fmt.Errorf("failed to create sheet %s: %w", s.name, err)
	}

	header := make([]any, len(s.header))
	for i, h := range s.header {
		header[i] = h
	}
	if err := f.SetSheetRow(s.name, "A1", &header); err != nil {
		return fmt.Errorf("failed to write header of %s: %w", s.name, err)
	}
	last, err := excelize.CoordinatesToCellName(len(s.header), 1)
	if err != nil {
		return err
	}
	if err := f.SetCellStyle(s.name, "A1", last, headerStyle); err != nil {
		return fmt.Errorf("failed to set header style: %w", err)
	}

	for i, w := range s.widths {
		col, err := excelize.ColumnNumberToName(i + 1)
		if err != nil {
			return err
		}
		if err := f.SetColWidth(s.name, col, col, w); err != nil {
			return err
		}
	}

	for i, row := range s.rows {
		cell, err := excelize.CoordinatesToCellName(1, i+2)
		if err != nil {
			return err
		}
		if err := f.SetSheetRow(s.name, cell, &row); err != nil {
			return fmt.Errorf("failed to write row %d of %s: %w", i+2, s.name, err)
		}
	}
	return nil
}

// WriteWorkbook renders the workbook to w.
func WriteWorkbook(w io.Writer, profile models.UserProfile, logs []models.FollowUpLog) error {
	f, err := Workbook(profile, logs)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("failed to write workbook: %w", err)
	}
	return nil
}
