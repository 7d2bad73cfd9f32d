package schedule

import "tracking-dashboard/tracking"

// types.go - Program and Phase records built from the schedule workbook

// Phase names in workbook column order. Every Program carries exactly
// these four phases.
const (
	PhaseDesign  = "Design"
	PhaseReview  = "Review"
	PhaseCoding  = "Coding"
	PhaseTesting = "Testing"
)

// PhaseNames lists the fixed phase order.
var PhaseNames = [4]string{PhaseDesign, PhaseReview, PhaseCoding, PhaseTesting}

// Phase holds the planned and actual figures of one phase of a program.
// Progress is a ratio in [0,1]; rendering multiplies by 100.
type Phase struct {
	PhaseName        string  `json:"phaseName"`
	DeliveryDate     string  `json:"deliveryDate"`
	BaselineEffort   float64 `json:"baselineEffort"`
	PlannedStartDate string  `json:"plannedStartDate"`
	PlannedEndDate   string  `json:"plannedEndDate"`
	ActualStartDate  string  `json:"actualStartDate"`
	ActualEndDate    string  `json:"actualEndDate"`
	Assignee         string  `json:"assignee"`
	Progress         float64 `json:"progress"`
	ActualEffort     float64 `json:"actualEffort"`
	DesignPages      int     `json:"designPages"`
	TestCases        int     `json:"testCases"`
	Defects          int     `json:"defects"`
	Notes            string  `json:"notes"`
}

// Program is one unit of work in the schedule, identified by PRGID.
// TrackingIssues and the four counts are derived: they are overwritten
// wholesale on every reconciliation pass and never mutated piecemeal.
type Program struct {
	PRGID            string                   `json:"prgid"`
	PRGName          string                   `json:"prgname"`
	Frame            string                   `json:"frame"`
	Phases           []Phase                  `json:"phases"`
	TrackingIssues   []tracking.TrackingIssue `json:"trackingIssues"`
	BugCount         int                      `json:"bugCount"`
	QACount          int                      `json:"qaCount"`
	BugResolvedCount int                      `json:"bugResolvedCount"`
	QAResolvedCount  int                      `json:"qaResolvedCount"`
}
