package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadConfigFromFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	content := `{
		"projects": [
			{
				"project_id": "PRJ1",
				"root_path": "/work/prj1",
				"tracking_url": "https://tracking.example.com",
				"tracking_api_key": "tk",
				"redmine_name": "Project One",
				"redmine_url": "https://redmine.example.com",
				"redmine_api_key": "rk"
			}
		],
		"resolved_statuses": ["解決"]
	}`
	require.NoError(t, os.WriteFile(path, []byte(content), 0644))

	cfg, err := LoadConfig(path)
	require.NoError(t, err)

	require.Len(t, cfg.Projects, 1)
	p := cfg.Projects[0]
	assert.Equal(t, "PRJ1", p.ProjectID)

	// derived paths are filled from the root
	assert.Equal(t, filepath.Join("/work/prj1", "schedule"), p.SchedulePath)
	assert.Equal(t, "schedule.xlsx", p.ScheduleFileName)
	assert.Equal(t, filepath.Join("/work/prj1", "schedule", "schedule.xlsx"), p.ScheduleFile())

	// defaults apply around the explicit values
	assert.Equal(t, "Bug", cfg.BugTracker)
	assert.Equal(t, "Q&A", cfg.QATracker)
	assert.Equal(t, []string{"解決"}, cfg.ResolvedStatuses)
	assert.Equal(t, 24*time.Hour, cfg.CacheTTL())
}

func TestLoadConfigBadJSON(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.json")
	require.NoError(t, os.WriteFile(path, []byte("{"), 0644))

	_, err := LoadConfig(path)
	assert.Error(t, err)
}

func TestLoadConfigFromEnvironment(t *testing.T) {
	t.Setenv("PROJECT_ID", "PRJ9")
	t.Setenv("PROJECT_ROOT_PATH", "/work/prj9")
	t.Setenv("REDMINE_NAME", "Nine")
	t.Setenv("REDMINE_URL", "https://redmine.example.com")
	t.Setenv("REDMINE_API_KEY", "rk")
	t.Setenv("TRACKING_URL", "https://tracking.example.com")
	t.Setenv("TRACKING_API_KEY", "tk")
	t.Setenv("RESOLVED_STATUS", "Closed")
	t.Setenv("CACHE_TTL_HOURS", "6")

	cfg, err := LoadConfig(filepath.Join(t.TempDir(), "missing.json"))
	require.NoError(t, err)

	require.Len(t, cfg.Projects, 1)
	assert.Equal(t, "PRJ9", cfg.Projects[0].ProjectID)
	assert.Equal(t, []string{"Closed"}, cfg.ResolvedStatuses)
	assert.Equal(t, 6*time.Hour, cfg.CacheTTL())
}

func TestDerivePathsKeepsExplicitValues(t *testing.T) {
	p := Project{
		RootPath:     "/work/prj",
		SchedulePath: "/elsewhere/sched",
	}
	p.DerivePaths()

	assert.Equal(t, "/elsewhere/sched", p.SchedulePath)
	assert.Equal(t, filepath.Join("/work/prj", "design"), p.DesignPath)
}
