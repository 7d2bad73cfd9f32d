package store

import (
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking-dashboard/redmine"
	"tracking-dashboard/schedule"
	"tracking-dashboard/tracking"
)

func TestIssuesRoundTrip(t *testing.T) {
	s := New(t.TempDir(), time.Hour)

	issues := []redmine.Issue{
		{ID: 1, Subject: "one", CustomFields: []redmine.CustomField{{Name: "Module", Value: "P1"}}},
		{ID: 2, Subject: "two"},
	}
	require.NoError(t, s.SaveIssues(issues))

	loaded, err := s.LoadIssues()
	require.NoError(t, err)
	assert.Equal(t, issues, loaded)
}

func TestLoadIssuesNotFound(t *testing.T) {
	s := New(t.TempDir(), time.Hour)

	_, err := s.LoadIssues()
	assert.ErrorIs(t, err, ErrNotFound)
}

func TestLoadIssuesExpired(t *testing.T) {
	s := New(t.TempDir(), time.Millisecond)

	require.NoError(t, s.SaveIssues([]redmine.Issue{{ID: 1}}))
	time.Sleep(5 * time.Millisecond)

	_, err := s.LoadIssues()
	assert.ErrorIs(t, err, ErrExpired)
}

func TestProgramsRoundTripWithoutExpiry(t *testing.T) {
	// the schedule snapshot is not a cache: it stays readable past the TTL
	s := New(t.TempDir(), time.Millisecond)

	programs := []schedule.Program{
		{
			PRGID:   "P100",
			PRGName: "Login",
			Phases: []schedule.Phase{
				{PhaseName: "Design", Progress: 0.5, Assignee: "sato"},
			},
			TrackingIssues: []tracking.TrackingIssue{{IssueID: 3, TrackerName: "Bug"}},
			BugCount:       1,
		},
	}
	require.NoError(t, s.SavePrograms(programs))
	time.Sleep(5 * time.Millisecond)

	loaded, err := s.LoadPrograms()
	require.NoError(t, err)
	assert.Equal(t, programs, loaded)
}

func TestSaveOverwrites(t *testing.T) {
	s := New(t.TempDir(), time.Hour)

	require.NoError(t, s.SaveIssues([]redmine.Issue{{ID: 1}, {ID: 2}}))
	require.NoError(t, s.SaveIssues([]redmine.Issue{{ID: 3}}))

	loaded, err := s.LoadIssues()
	require.NoError(t, err)
	require.Len(t, loaded, 1)
	assert.Equal(t, 3, loaded[0].ID)
}

func TestConcurrentSaves(t *testing.T) {
	s := New(t.TempDir(), time.Hour)

	var wg sync.WaitGroup
	for i := 0; i < 10; i++ {
		wg.Add(1)
		go func(n int) {
			defer wg.Done()
			assert.NoError(t, s.SaveIssues([]redmine.Issue{{ID: n}}))
		}(i)
	}
	wg.Wait()

	// writes were serialized: the file holds one intact issue list
	loaded, err := s.LoadIssues()
	require.NoError(t, err)
	assert.Len(t, loaded, 1)
}

func TestCorruptFileSurfacesError(t *testing.T) {
	dir := t.TempDir()
	s := New(dir, time.Hour)
	require.NoError(t, os.WriteFile(filepath.Join(dir, "issues.json"), []byte("{not json"), 0644))

	_, err := s.LoadIssues()
	require.Error(t, err)
	assert.NotErrorIs(t, err, ErrNotFound)
}
