package report

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"sort"
	"strconv"
	"strings"

	"tracking-dashboard/redmine"
	"tracking-dashboard/schedule"
)

// ExportIssuesToJSON saves fetched issues to a JSON file
func ExportIssuesToJSON(issues []redmine.Issue, filename string) error {
	data, err := json.MarshalIndent(issues, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// ExportProgramsToJSON saves reconciled programs to a JSON file
func ExportProgramsToJSON(programs []schedule.Program, filename string) error {
	data, err := json.MarshalIndent(programs, "", "  ")
	if err != nil {
		return err
	}
	return os.WriteFile(filename, data, 0644)
}

// ExportProgramsToCSV saves one row per program with its phase progress
// and derived counts
func ExportProgramsToCSV(programs []schedule.Program, filename string) error {
	file, err := os.Create(filename)
	if err != nil {
		return err
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	defer writer.Flush()

	header := []string{"PRGID", "PRG Name"}
	for _, phase := range schedule.PhaseNames {
		header = append(header, phase+" Progress (%)", phase+" Assignee")
	}
	header = append(header, "Bugs", "Bugs Resolved", "Q&A", "Q&A Resolved")
	writer.Write(header)

	for _, p := range programs {
		row := []string{p.PRGID, p.PRGName}
		for _, phase := range p.Phases {
			row = append(row,
				fmt.Sprintf("%.0f", phase.Progress*100),
				phase.Assignee)
		}
		row = append(row,
			strconv.Itoa(p.BugCount), strconv.Itoa(p.BugResolvedCount),
			strconv.Itoa(p.QACount), strconv.Itoa(p.QAResolvedCount))
		writer.Write(row)
	}

	return nil
}

// PrintSummary displays a formatted fetch and schedule summary to the console
func PrintSummary(results []redmine.ProjectResult, programs []schedule.Program) {
	fmt.Println("\n" + strings.Repeat("=", 60))
	fmt.Println("TRACKING DASHBOARD SUMMARY")
	fmt.Println(strings.Repeat("=", 60))

	fmt.Println("\n📋 PROJECT FETCHES")
	fmt.Println(strings.Repeat("-", 60))
	for _, r := range results {
		if r.Err != nil {
			fmt.Printf("  - %s: FAILED (%v)\n", r.Project.ProjectID, r.Err)
			continue
		}
		fmt.Printf("  - %s: %d issues\n", r.Project.ProjectID, len(r.Issues))
	}

	issues := redmine.CollectIssues(results)
	fmt.Printf("\nTotal Issues (deduplicated): %d\n", len(issues))

	fmt.Println("\nIssues by Project:")
	byProject := ProjectCounts(issues)
	names := make([]string, 0, len(byProject))
	for name := range byProject {
		names = append(names, name)
	}
	sort.Strings(names)
	for _, name := range names {
		fmt.Printf("  - %s: %d issues\n", name, byProject[name])
	}

	if len(programs) > 0 {
		fmt.Println("\n📊 SCHEDULE PROGRAMS")
		fmt.Println(strings.Repeat("-", 60))
		for _, p := range programs {
			fmt.Printf("  - %s %s: %d issues (Bug %d/%d resolved, Q&A %d/%d resolved)\n",
				p.PRGID, p.PRGName, len(p.TrackingIssues),
				p.BugResolvedCount, p.BugCount,
				p.QAResolvedCount, p.QACount)
		}
	}

	fmt.Println("\n" + strings.Repeat("=", 60))
}
