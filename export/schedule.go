// Package export writes championship schedules as XLSX workbooks.
package export

import (
	"fmt"
	"io"
	"strings"

	"github.com/Dosada05/championship-system/models"
	"github.com/xuri/excelize/v2"
)

const (
	ScheduleSheet  = "Schedule"
	maxSheetName   = 31
	defaultFont    = "Arial"
	headerFill     = "#1E3A8A"
	unknownTeam    = "?"
	matchSeparator = " x "
)

var scheduleHeaders = []string{"Round", "#", "Home", "Away", "Score", "Status", "Date"}
var teamHeaders = []string{"Round", "H/A", "Opponent", "Score", "Status", "Date"}

// WriteSchedule writes a "Schedule" sheet with every match plus one sheet per
// team listing its own fixtures.
func WriteSchedule(w io.Writer, championship *models.Championship, teams []*models.Team, matches []*models.Match) error {
	f, err := Generate(championship, teams, matches)
	if err != nil {
		return err
	}
	defer f.Close()

	if _, err := f.WriteTo(w); err != nil {
		return fmt.Errorf("writing workbook: %w", err)
	}
	return nil
}

// Generate builds the workbook in memory.
func Generate(championship *models.Championship, teams []*models.Team, matches []*models.Match) (*excelize.File, error) {
	f := excelize.NewFile()
	if err := f.SetDefaultFont(defaultFont); err != nil {
		return nil, fmt.Errorf("setting default font: %w", err)
	}

	names := make(map[int]string, len(teams))
	for _, t := range teams {
		names[t.ID] = t.Name
	}

	if err := writeScheduleSheet(f, championship, names, matches); err != nil {
		return nil, fmt.Errorf("writing schedule sheet: %w", err)
	}
	if err := writeTeamSheets(f, teams, names, matches); err != nil {
		return nil, fmt.Errorf("writing team sheets: %w", err)
	}

	if err := f.DeleteSheet("Sheet1"); err != nil {
		return nil, fmt.Errorf("removing default sheet: %w", err)
	}
	idx, err := f.GetSheetIndex(ScheduleSheet)
	if err != nil {
		return nil, err
	}
	f.SetActiveSheet(idx)
	return f, nil
}

func writeScheduleSheet(f *excelize.File, championship *models.Championship, names map[int]string, matches []*models.Match) error {
	if _, err := f.NewSheet(ScheduleSheet); err != nil {
		return err
	}

	row := 1
	if championship != nil && championship.Name != "" {
		if err := f.SetCellValue(ScheduleSheet, cellRef(1, row), championship.Name); err != nil {
			return err
		}
		titleStyle, err := f.NewStyle(&excelize.Style{Font: &excelize.Font{Bold: true, Size: 14}})
		if err != nil {
			return err
		}
		if err := f.SetCellStyle(ScheduleSheet, cellRef(1, row), cellRef(1, row), titleStyle); err != nil {
			return err
		}
		row += 2
	}

	if err := writeHeader(f, ScheduleSheet, row, scheduleHeaders); err != nil {
		return err
	}
	for _, m := range matches {
		row++
		values := []interface{}{
			m.Round,
			m.Sequence,
			teamName(names, m.HomeTeamID),
			teamName(names, m.AwayTeamID),
			score(m),
			string(m.Status),
			matchDate(m),
		}
		for col, v := range values {
			if err := f.SetCellValue(ScheduleSheet, cellRef(col+1, row), v); err != nil {
				return err
			}
		}
	}

	widths := map[string]float64{"A": 8, "B": 6, "C": 28, "D": 28, "E": 10, "F": 12, "G": 18}
	for col, width := range widths {
		if err := f.SetColWidth(ScheduleSheet, col, col, width); err != nil {
			return err
		}
	}
	return nil
}

func writeTeamSheets(f *excelize.File, teams []*models.Team, names map[int]string, matches []*models.Match) error {
	used := map[string]bool{
		strings.ToLower(ScheduleSheet): true,
		"sheet1":                       true,
	}
	for _, t := range teams {
		sheet := uniqueSheetName(t.Name, used)
		if _, err := f.NewSheet(sheet); err != nil {
			return err
		}
		if err := writeHeader(f, sheet, 1, teamHeaders); err != nil {
			return err
		}

		row := 1
		for _, m := range matches {
			var side string
			var opponent int
			switch t.ID {
			case m.HomeTeamID:
				side, opponent = "H", m.AwayTeamID
			case m.AwayTeamID:
				side, opponent = "A", m.HomeTeamID
			default:
				continue
			}
			row++
			values := []interface{}{m.Round, side, teamName(names, opponent), score(m), string(m.Status), matchDate(m)}
			for col, v := range values {
				if err := f.SetCellValue(sheet, cellRef(col+1, row), v); err != nil {
					return err
				}
			}
		}

		widths := map[string]float64{"A": 8, "B": 6, "C": 28, "D": 10, "E": 12, "F": 18}
		for col, width := range widths {
			if err := f.SetColWidth(sheet, col, col, width); err != nil {
				return err
			}
		}
	}
	return nil
}

func writeHeader(f *excelize.File, sheet string, row int, headers []string) error {
	style, err := f.NewStyle(&excelize.Style{
		Font:      &excelize.Font{Bold: true, Color: "#FFFFFF"},
		Fill:      excelize.Fill{Type: "pattern", Pattern: 1, Color: []string{headerFill}},
		Alignment: &excelize.Alignment{Horizontal: "center"},
	})
	if err != nil {
		return err
	}
	for i, h := range headers {
		if err := f.SetCellValue(sheet, cellRef(i+1, row), h); err != nil {
			return err
		}
	}
	return f.SetCellStyle(sheet, cellRef(1, row), cellRef(len(headers), row), style)
}

func teamName(names map[int]string, id int) string {
	if name, ok := names[id]; ok {
		return name
	}
	return unknownTeam
}

func score(m *models.Match) string {
	if m.HomeScore == nil || m.AwayScore == nil {
		return ""
	}
	return fmt.Sprintf("%d%s%d", *m.HomeScore, matchSeparator, *m.AwayScore)
}

func matchDate(m *models.Match) string {
	if m.ScheduledAt == nil {
		return ""
	}
	return m.ScheduledAt.Format("02/01/2006 15:04")
}

// uniqueSheetName strips characters Excel rejects, truncates to 31 runes and
// appends a counter when the name is already taken.
func uniqueSheetName(name string, used map[string]bool) string {
	cleaned := strings.Map(func(r rune) rune {
		switch r {
		case '[', ']', ':', '*', '?', '/', '\\':
			return '-'
		}
		return r
	}, strings.TrimSpace(name))
	cleaned = strings.Trim(cleaned, "'")
	if cleaned == "" {
		cleaned = "Team"
	}
	base := truncateRunes(cleaned, maxSheetName)

	candidate := base
	for i := 2; used[strings.ToLower(candidate)]; i++ {
		suffix := fmt.Sprintf(" (%d)", i)
		candidate = truncateRunes(base, maxSheetName-len(suffix)) + suffix
	}
	used[strings.ToLower(candidate)] = true
	return candidate
}

func truncateRunes(s string, n int) string {
	r := []rune(s)
	if len(r) <= n {
		return s
	}
	return string(r[:n])
}

func cellRef(col, row int) string {
	return fmt.Sprintf("%s%d", colLetter(col), row)
}

func colLetter(col int) string {
	result := ""
	for col > 0 {
		col--
		result = string(rune('A'+col%26)) + result
		col /= 26
	}
	return result
}
