package schedule

import (
	"strconv"
	"strings"

	"go.uber.org/zap"

	"tracking-dashboard/tracking"
)

// BuildPrograms maps raw schedule rows into Programs with their four
// ordered phases. Rows missing a program id or name are dropped with a
// warning, never fatally.
func BuildPrograms(rows []RawProgramRow, logger *zap.Logger) []Program {
	if logger == nil {
		logger = zap.NewNop()
	}

	programs := make([]Program, 0, len(rows))
	for i, row := range rows {
		if row.PRGID == "" || row.PRGName == "" {
			logger.Warn("skipping schedule row without program id or name",
				zap.Int("row", i))
			continue
		}

		phases := make([]Phase, 0, len(PhaseNames))
		for n, name := range PhaseNames {
			phases = append(phases, buildPhase(name, row.Phases[n]))
		}

		programs = append(programs, Program{
			PRGID:          row.PRGID,
			PRGName:        row.PRGName,
			Phases:         phases,
			TrackingIssues: []tracking.TrackingIssue{},
		})
	}
	return programs
}

func buildPhase(name string, raw RawPhase) Phase {
	return Phase{
		PhaseName:        name,
		DeliveryDate:     raw.DeliveryDate,
		BaselineEffort:   parseFloat(raw.BaselineEffort),
		PlannedStartDate: raw.PlannedStartDate,
		PlannedEndDate:   raw.PlannedEndDate,
		ActualStartDate:  raw.ActualStartDate,
		ActualEndDate:    raw.ActualEndDate,
		Assignee:         raw.Assignee,
		Progress:         parseProgress(raw.Progress),
		ActualEffort:     parseFloat(raw.ActualEffort),
		DesignPages:      parseInt(raw.DesignPages),
		TestCases:        parseInt(raw.TestCases),
		Defects:          parseInt(raw.Defects),
		Notes:            raw.Notes,
	}
}

// ImportSchedule extracts a workbook and builds its programs in one
// call.
func ImportSchedule(path string, logger *zap.Logger) ([]Program, error) {
	rows, err := ExtractRows(path)
	if err != nil {
		return nil, err
	}
	return BuildPrograms(rows, logger), nil
}

func parseFloat(value string) float64 {
	f, err := strconv.ParseFloat(strings.TrimSpace(value), 64)
	if err != nil {
		return 0
	}
	return f
}

// parseProgress keeps progress a ratio in [0,1]. Percent-formatted
// cells arrive with a trailing % sign and are divided down.
func parseProgress(value string) float64 {
	value = strings.TrimSpace(value)
	if trimmed, ok := strings.CutSuffix(value, "%"); ok {
		return parseFloat(trimmed) / 100
	}
	return parseFloat(value)
}

func parseInt(value string) int {
	value = strings.TrimSpace(value)
	if n, err := strconv.Atoi(value); err == nil {
		return n
	}
	// tolerate "3.0" style numeric cells
	if f, err := strconv.ParseFloat(value, 64); err == nil {
		return int(f)
	}
	return 0
}
