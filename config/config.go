package config

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strconv"
	"time"

	"github.com/joho/godotenv"
)

// Project describes one configured Redmine project: where its schedule
// workbook lives on disk and how to reach its two tracker endpoints
// (the tracking instance holding Bug/Q&A issues and the main Redmine).
type Project struct {
	ProjectID        string `json:"project_id"`
	RootPath         string `json:"root_path"`
	DesignPath       string `json:"design_path"`
	TestingPath      string `json:"testing_path"`
	SchedulePath     string `json:"schedule_path"`
	ScheduleFileName string `json:"schedule_file_name"`
	TrackingURL      string `json:"tracking_url"`
	TrackingAPIKey   string `json:"tracking_api_key"`
	RedmineName      string `json:"redmine_name"`
	RedmineURL       string `json:"redmine_url"`
	RedmineAPIKey    string `json:"redmine_api_key"`
}

// DerivePaths fills the derived path fields from RootPath. Fields already
// set by the user are left alone.
func (p *Project) DerivePaths() {
	if p.RootPath == "" {
		return
	}
	if p.DesignPath == "" {
		p.DesignPath = filepath.Join(p.RootPath, "design")
	}
	if p.TestingPath == "" {
		p.TestingPath = filepath.Join(p.RootPath, "testing")
	}
	if p.SchedulePath == "" {
		p.SchedulePath = filepath.Join(p.RootPath, "schedule")
	}
	if p.ScheduleFileName == "" {
		p.ScheduleFileName = "schedule.xlsx"
	}
}

// ScheduleFile returns the full path of the project's schedule workbook.
func (p Project) ScheduleFile() string {
	return filepath.Join(p.SchedulePath, p.ScheduleFileName)
}

// Config represents the application configuration
type Config struct {
	Projects []Project `json:"projects"`

	// Tracker labels and statuses used by the reconciler. The resolved
	// status label differs between tracker locales, so it is configured
	// rather than assumed.
	BugTracker       string   `json:"bug_tracker"`        // e.g., "Bug"
	QATracker        string   `json:"qa_tracker"`         // e.g., "Q&A"
	ResolvedStatuses []string `json:"resolved_statuses"`  // e.g., ["Resolved"]
	ExactModuleMatch bool     `json:"exact_module_match"` // false = substring join

	StorePath     string `json:"store_path"`      // directory for cached JSON state
	CacheTTLHours int    `json:"cache_ttl_hours"` // issue cache expiry window
}

// CacheTTL returns the issue cache expiry window as a duration.
func (c Config) CacheTTL() time.Duration {
	return time.Duration(c.CacheTTLHours) * time.Hour
}

func (c *Config) applyDefaults() {
	if c.BugTracker == "" {
		c.BugTracker = "Bug"
	}
	if c.QATracker == "" {
		c.QATracker = "Q&A"
	}
	if len(c.ResolvedStatuses) == 0 {
		c.ResolvedStatuses = []string{"Resolved"}
	}
	if c.StorePath == "" {
		c.StorePath = "data"
	}
	if c.CacheTTLHours <= 0 {
		c.CacheTTLHours = 24
	}
	for i := range c.Projects {
		c.Projects[i].DerivePaths()
	}
}

// LoadConfig loads configuration from file or environment variables
func LoadConfig(filename string) (Config, error) {
	// Try loading from file first
	if _, err := os.Stat(filename); err == nil {
		data, err := os.ReadFile(filename)
		if err != nil {
			return Config{}, err
		}
		var config Config
		if err := json.Unmarshal(data, &config); err != nil {
			return Config{}, fmt.Errorf("parsing %s: %w", filename, err)
		}
		config.applyDefaults()
		return config, nil
	}

	// Fall back to environment variables for a single-project setup
	_ = godotenv.Load()

	project := Project{
		ProjectID:      os.Getenv("PROJECT_ID"),
		RootPath:       os.Getenv("PROJECT_ROOT_PATH"),
		TrackingURL:    os.Getenv("TRACKING_URL"),
		TrackingAPIKey: os.Getenv("TRACKING_API_KEY"),
		RedmineName:    os.Getenv("REDMINE_NAME"),
		RedmineURL:     os.Getenv("REDMINE_URL"),
		RedmineAPIKey:  os.Getenv("REDMINE_API_KEY"),
	}

	config := Config{
		BugTracker:       os.Getenv("BUG_TRACKER"),
		QATracker:        os.Getenv("QA_TRACKER"),
		ExactModuleMatch: os.Getenv("EXACT_MODULE_MATCH") == "true",
		StorePath:        os.Getenv("STORE_PATH"),
	}
	if resolved := os.Getenv("RESOLVED_STATUS"); resolved != "" {
		config.ResolvedStatuses = []string{resolved}
	}
	if ttl := os.Getenv("CACHE_TTL_HOURS"); ttl != "" {
		if h, err := strconv.Atoi(ttl); err == nil {
			config.CacheTTLHours = h
		}
	}
	if project.ProjectID != "" {
		config.Projects = []Project{project}
	}

	config.applyDefaults()
	return config, nil
}

// CreateSampleConfig creates a sample configuration file
func CreateSampleConfig() error {
	config := Config{
		Projects: []Project{
			{
				ProjectID:      "PRJ001",
				RootPath:       "/projects/prj001",
				TrackingURL:    "https://tracking.company.com",
				TrackingAPIKey: "your-tracking-api-key",
				RedmineName:    "Project One",
				RedmineURL:     "https://redmine.company.com",
				RedmineAPIKey:  "your-redmine-api-key",
			},
		},
		BugTracker:       "Bug",
		QATracker:        "Q&A",
		ResolvedStatuses: []string{"Resolved"},
		StorePath:        "data",
		CacheTTLHours:    24,
	}
	config.applyDefaults()

	data, err := json.MarshalIndent(config, "", "  ")
	if err != nil {
		return err
	}

	return os.WriteFile("config.sample.json", data, 0644)
}
