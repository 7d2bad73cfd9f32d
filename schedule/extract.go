package schedule

import (
	"errors"
	"fmt"
	"strconv"
	"strings"
	"time"

	"github.com/xuri/excelize/v2"
)

// ErrInvalidFormat means the workbook is missing the expected sheet,
// named range, headers or data region.
var ErrInvalidFormat = errors.New("invalid schedule format")

// rangeName is the defined name marking the schedule table. When the
// workbook does not declare it, data is assumed to start 4 rows below
// the top of the sheet.
const rangeName = "schedule"

const headerOffset = 4 // positional fallback: headers on Excel row 5

// Identifier columns.
const (
	headerPRGID   = "PGID"
	headerPRGName = "PG名称"
)

// RawPhase holds one phase's columns as raw cell strings. Date cells
// are already normalized to YYYY-MM-DD at this point.
type RawPhase struct {
	DeliveryDate     string
	BaselineEffort   string
	PlannedStartDate string
	PlannedEndDate   string
	ActualStartDate  string
	ActualEndDate    string
	Assignee         string
	Progress         string
	ActualEffort     string
	DesignPages      string
	TestCases        string
	Defects          string
	Notes            string
}

// RawProgramRow is one data row of the schedule table, split into the
// four phase column groups. The numeric suffix on each header selects
// the phase: 1=Design, 2=Review, 3=Coding, 4=Testing.
type RawProgramRow struct {
	PRGID   string
	PRGName string
	Phases  [4]RawPhase
}

// phaseHeaders names the columns of phase n. Parenthesized suffixes are
// the planned figures, bare suffixes the actuals.
type phaseHeaders struct {
	delivery     string
	baseline     string
	plannedStart string
	plannedEnd   string
	actualStart  string
	actualEnd    string
	assignee     string
	progress     string
	actualEffort string
	pages        string
	tests        string
	defects      string
	notes        string
}

func headersForPhase(n int) phaseHeaders {
	return phaseHeaders{
		delivery:     fmt.Sprintf("納品(%d)", n),
		baseline:     fmt.Sprintf("工数(%d)", n),
		plannedStart: fmt.Sprintf("開始日(%d)", n),
		plannedEnd:   fmt.Sprintf("終了日(%d)", n),
		actualStart:  fmt.Sprintf("開始日%d", n),
		actualEnd:    fmt.Sprintf("終了日%d", n),
		assignee:     fmt.Sprintf("担当%d", n),
		progress:     fmt.Sprintf("進捗率%d", n),
		actualEffort: fmt.Sprintf("工数%d", n),
		pages:        fmt.Sprintf("PageTK%d", n),
		tests:        fmt.Sprintf("テスト%d", n),
		defects:      fmt.Sprintf("不具合%d", n),
		notes:        fmt.Sprintf("コメント%d", n),
	}
}

// requiredHeaders are the columns that must be present for the file to
// be usable. Delivery, page, test, defect and note columns vary between
// schedule templates and default to empty when absent.
func requiredHeaders() []string {
	required := []string{headerPRGID, headerPRGName}
	for n := 1; n <= 4; n++ {
		h := headersForPhase(n)
		required = append(required,
			h.baseline, h.plannedStart, h.plannedEnd,
			h.actualStart, h.actualEnd, h.assignee,
			h.progress, h.actualEffort)
	}
	return required
}

// ExtractRows reads the schedule table out of a workbook. A defined
// name "schedule" pins the table's exact range; without one the table
// is read from row 5 of the sheet named "schedule", or the first sheet.
func ExtractRows(path string) ([]RawProgramRow, error) {
	f, err := excelize.OpenFile(path)
	if err != nil {
		return nil, fmt.Errorf("%w: opening %s: %v", ErrInvalidFormat, path, err)
	}
	defer f.Close()

	region, err := dataRegion(f)
	if err != nil {
		return nil, err
	}
	if len(region) < 2 {
		return nil, fmt.Errorf("%w: no data rows in schedule table", ErrInvalidFormat)
	}

	columns := make(map[string]int)
	for i, header := range region[0] {
		if header = strings.TrimSpace(header); header != "" {
			columns[header] = i
		}
	}

	var missing []string
	for _, header := range requiredHeaders() {
		if _, ok := columns[header]; !ok {
			missing = append(missing, header)
		}
	}
	if len(missing) > 0 {
		return nil, fmt.Errorf("%w: missing required headers: %s", ErrInvalidFormat, strings.Join(missing, ", "))
	}

	cell := func(row []string, header string) string {
		idx, ok := columns[header]
		if !ok || idx >= len(row) {
			return ""
		}
		return strings.TrimSpace(row[idx])
	}
	dateCell := func(row []string, header string) string {
		return normalizeDate(cell(row, header))
	}

	var rows []RawProgramRow
	for _, row := range region[1:] {
		if blankRow(row) {
			continue
		}
		raw := RawProgramRow{
			PRGID:   cell(row, headerPRGID),
			PRGName: cell(row, headerPRGName),
		}
		for n := 1; n <= 4; n++ {
			h := headersForPhase(n)
			raw.Phases[n-1] = RawPhase{
				DeliveryDate:     dateCell(row, h.delivery),
				BaselineEffort:   cell(row, h.baseline),
				PlannedStartDate: dateCell(row, h.plannedStart),
				PlannedEndDate:   dateCell(row, h.plannedEnd),
				ActualStartDate:  dateCell(row, h.actualStart),
				ActualEndDate:    dateCell(row, h.actualEnd),
				Assignee:         cell(row, h.assignee),
				Progress:         cell(row, h.progress),
				ActualEffort:     cell(row, h.actualEffort),
				DesignPages:      cell(row, h.pages),
				TestCases:        cell(row, h.tests),
				Defects:          cell(row, h.defects),
				Notes:            cell(row, h.notes),
			}
		}
		rows = append(rows, raw)
	}
	return rows, nil
}

// dataRegion locates the schedule table: the "schedule" defined name
// wins; otherwise the positional fallback applies.
func dataRegion(f *excelize.File) ([][]string, error) {
	for _, name := range f.GetDefinedName() {
		if name.Name == rangeName && name.RefersTo != "" {
			return rowsFromRef(f, name.RefersTo)
		}
	}

	sheets := f.GetSheetList()
	if len(sheets) == 0 {
		return nil, fmt.Errorf("%w: workbook has no sheets", ErrInvalidFormat)
	}
	sheet := sheets[0]
	for _, s := range sheets {
		if s == rangeName {
			sheet = s
			break
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %s: %v", ErrInvalidFormat, sheet, err)
	}
	if len(rows) <= headerOffset {
		return nil, fmt.Errorf("%w: sheet %s has no data below row %d", ErrInvalidFormat, sheet, headerOffset+1)
	}
	return rows[headerOffset:], nil
}

// rowsFromRef reads the cells referenced by a defined-name target such
// as "Sheet1!$A$5:$P$40" or "'My Sheet'!$A$5:$P$40".
func rowsFromRef(f *excelize.File, ref string) ([][]string, error) {
	bang := strings.LastIndex(ref, "!")
	if bang < 0 {
		return nil, fmt.Errorf("%w: malformed range reference %q", ErrInvalidFormat, ref)
	}
	sheet := strings.Trim(ref[:bang], "'")
	bounds := strings.Split(strings.ReplaceAll(ref[bang+1:], "$", ""), ":")

	startCol, startRow, err := excelize.CellNameToCoordinates(bounds[0])
	if err != nil {
		return nil, fmt.Errorf("%w: malformed range reference %q", ErrInvalidFormat, ref)
	}
	endCol, endRow := startCol, startRow
	if len(bounds) > 1 {
		if endCol, endRow, err = excelize.CellNameToCoordinates(bounds[1]); err != nil {
			return nil, fmt.Errorf("%w: malformed range reference %q", ErrInvalidFormat, ref)
		}
	}

	rows, err := f.GetRows(sheet)
	if err != nil {
		return nil, fmt.Errorf("%w: reading sheet %s: %v", ErrInvalidFormat, sheet, err)
	}

	var region [][]string
	for r := startRow; r <= endRow && r <= len(rows); r++ {
		row := rows[r-1]
		var cells []string
		for c := startCol; c <= endCol; c++ {
			if c <= len(row) {
				cells = append(cells, row[c-1])
			} else {
				cells = append(cells, "")
			}
		}
		region = append(region, cells)
	}
	if len(region) == 0 {
		return nil, fmt.Errorf("%w: named range %q is empty", ErrInvalidFormat, rangeName)
	}
	return region, nil
}

func blankRow(row []string) bool {
	for _, cell := range row {
		if strings.TrimSpace(cell) != "" {
			return false
		}
	}
	return true
}

// dateLayouts are the text forms date cells show up in, depending on
// the cell's number format.
var dateLayouts = []string{
	"2006-01-02",
	"2006/01/02",
	"2006/1/2",
	"01-02-06",
	"1-2-06",
	"01/02/2006",
	"1/2/2006",
	time.RFC3339,
}

// normalizeDate coerces date-column cells to YYYY-MM-DD. Excel serial
// numbers are converted through the 1900 epoch; recognizable date
// strings are reformatted; anything else passes through unchanged.
func normalizeDate(value string) string {
	if value == "" {
		return ""
	}
	for _, layout := range dateLayouts {
		if t, err := time.Parse(layout, value); err == nil {
			return t.Format("2006-01-02")
		}
	}
	if serial, err := strconv.ParseFloat(value, 64); err == nil && serial > 59 {
		if t, err := excelize.ExcelDateToTime(serial, false); err == nil {
			return t.Format("2006-01-02")
		}
	}
	return value
}
