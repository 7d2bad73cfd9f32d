package schedule

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

func TestBuildPrograms(t *testing.T) {
	rows := []RawProgramRow{
		{
			PRGID:   "P100",
			PRGName: "Login",
			Phases: [4]RawPhase{
				{Assignee: "sato", Progress: "0.5", BaselineEffort: "2.5", DesignPages: "12", Notes: "draft"},
				{Assignee: "ito", Progress: "50%", Defects: "2"},
				{Assignee: "kato", TestCases: "30", ActualEffort: "4.0"},
				{},
			},
		},
	}

	programs := BuildPrograms(rows, zap.NewNop())
	require.Len(t, programs, 1)

	p := programs[0]
	assert.Equal(t, "P100", p.PRGID)
	require.Len(t, p.Phases, 4)
	assert.Equal(t, []string{"Design", "Review", "Coding", "Testing"},
		[]string{p.Phases[0].PhaseName, p.Phases[1].PhaseName, p.Phases[2].PhaseName, p.Phases[3].PhaseName})

	design := p.Phases[0]
	assert.Equal(t, "sato", design.Assignee)
	assert.Equal(t, 0.5, design.Progress)
	assert.Equal(t, 2.5, design.BaselineEffort)
	assert.Equal(t, 12, design.DesignPages)
	assert.Equal(t, "draft", design.Notes)

	// percent-formatted progress comes back as a ratio
	assert.Equal(t, 0.5, p.Phases[1].Progress)
	assert.Equal(t, 2, p.Phases[1].Defects)
	assert.Equal(t, 30, p.Phases[2].TestCases)
	assert.Equal(t, 4.0, p.Phases[2].ActualEffort)

	// derived fields start empty, not nil
	assert.NotNil(t, p.TrackingIssues)
	assert.Zero(t, p.BugCount)
}

func TestBuildProgramsDropsRowsWithoutIdentifier(t *testing.T) {
	rows := []RawProgramRow{
		{PRGID: "", PRGName: "orphan"},
		{PRGID: "P1", PRGName: ""},
		{PRGID: "P2", PRGName: "kept"},
	}

	programs := BuildPrograms(rows, zap.NewNop())

	require.Len(t, programs, 1)
	assert.Equal(t, "P2", programs[0].PRGID)
}

func TestParseHelpers(t *testing.T) {
	assert.Equal(t, 0.0, parseFloat("not a number"))
	assert.Equal(t, 1.5, parseFloat(" 1.5 "))
	assert.Equal(t, 0.25, parseProgress("25%"))
	assert.Equal(t, 0.25, parseProgress("0.25"))
	assert.Equal(t, 0, parseInt(""))
	assert.Equal(t, 3, parseInt("3.0"))
	assert.Equal(t, 7, parseInt("7"))
}
