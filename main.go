package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"log"
	"os"
	"time"

	"go.uber.org/zap"

	"tracking-dashboard/config"
	"tracking-dashboard/redmine"
	"tracking-dashboard/report"
	"tracking-dashboard/schedule"
	"tracking-dashboard/store"
)

func main() {
	var (
		configPath   string
		sampleConfig bool
		skipSchedule bool
		timeout      time.Duration
	)
	flag.StringVar(&configPath, "config", "config.json", "Path to the configuration file")
	flag.BoolVar(&sampleConfig, "sample-config", false, "Write config.sample.json and exit")
	flag.BoolVar(&skipSchedule, "skip-schedule", false, "Skip schedule import and reconciliation")
	flag.DurationVar(&timeout, "timeout", 5*time.Minute, "Overall fetch deadline")
	flag.Parse()

	if sampleConfig {
		if err := config.CreateSampleConfig(); err != nil {
			log.Fatalf("Error creating sample config: %v", err)
		}
		fmt.Println("✅ Sample configuration file created: config.sample.json")
		fmt.Println("\nEdit this file with your credentials and rename to config.json")
		return
	}

	logger, err := zap.NewProduction()
	if err != nil {
		log.Fatalf("initializing logger: %v", err)
	}
	defer logger.Sync()

	cfg, err := config.LoadConfig(configPath)
	if err != nil {
		log.Fatalf("Error loading configuration: %v", err)
	}
	if len(cfg.Projects) == 0 {
		fmt.Println("❌ Configuration Error!")
		fmt.Println("\nYou need to provide configuration either by:")
		fmt.Println("1. Creating a config.json file (run with --sample-config to generate template)")
		fmt.Println("2. Setting environment variables:")
		fmt.Println("   - PROJECT_ID, PROJECT_ROOT_PATH")
		fmt.Println("   - REDMINE_NAME, REDMINE_URL, REDMINE_API_KEY")
		fmt.Println("   - TRACKING_URL, TRACKING_API_KEY")
		os.Exit(1)
	}

	ctx, cancel := context.WithTimeout(context.Background(), timeout)
	defer cancel()

	st := store.New(cfg.StorePath, cfg.CacheTTL())

	// Fetch issues across all configured projects
	fmt.Printf("🔄 Fetching issues for %d project(s)...\n", len(cfg.Projects))
	results := redmine.FetchAll(ctx, cfg.Projects, redmine.IssueFilter{}, logger)
	issues := redmine.CollectIssues(results)
	fmt.Printf("✅ Fetched %d issues\n", len(issues))

	if err := st.SaveIssues(issues); err != nil {
		log.Printf("❌ Error caching issues: %v", err)
	}

	// Import and reconcile each project's schedule
	var programs []schedule.Program
	if !skipSchedule {
		for _, project := range cfg.Projects {
			workbook := project.ScheduleFile()
			if _, err := os.Stat(workbook); err != nil {
				continue
			}

			fmt.Printf("🔄 Importing schedule for %s...\n", project.ProjectID)
			imported, err := schedule.ImportSchedule(workbook, logger)
			if err != nil {
				if errors.Is(err, schedule.ErrInvalidFormat) {
					log.Printf("❌ Invalid schedule for %s: %v", project.ProjectID, err)
					continue
				}
				log.Printf("❌ Error importing schedule for %s: %v", project.ProjectID, err)
				continue
			}

			client := redmine.NewClient(project.TrackingURL, project.TrackingAPIKey, logger)
			reconciler := schedule.NewReconciler(client, schedule.Options{
				BugTracker:       cfg.BugTracker,
				QATracker:        cfg.QATracker,
				ResolvedStatuses: cfg.ResolvedStatuses,
				ExactMatch:       cfg.ExactModuleMatch,
			}, logger)

			reconciled, err := reconciler.Update(ctx, imported, project)
			if err != nil {
				log.Printf("❌ Reconciliation failed for %s, keeping imported schedule: %v", project.ProjectID, err)
			}
			programs = append(programs, reconciled...)
		}

		if len(programs) > 0 {
			if err := st.SavePrograms(programs); err != nil {
				log.Printf("❌ Error saving schedule snapshot: %v", err)
			}
		}
	}

	// Print summary
	report.PrintSummary(results, programs)

	// Export to files
	if err := report.ExportIssuesToJSON(issues, "issues.json"); err != nil {
		log.Printf("Error exporting issues: %v", err)
	} else {
		fmt.Println("\n✅ Issues exported to: issues.json")
	}

	if len(programs) > 0 {
		if err := report.ExportProgramsToJSON(programs, "programs.json"); err != nil {
			log.Printf("Error exporting programs: %v", err)
		} else {
			fmt.Println("✅ Programs exported to: programs.json")
		}
		if err := report.ExportProgramsToCSV(programs, "programs.csv"); err != nil {
			log.Printf("Error exporting programs to CSV: %v", err)
		} else {
			fmt.Println("✅ Programs exported to: programs.csv")
		}
	}
}
