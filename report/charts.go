package report

import (
	"sort"

	"tracking-dashboard/redmine"
)

// charts.go - Aggregate counts feeding the dashboard charts. All pure
// functions over a fetched issue collection.

const (
	fieldResponseDeliveryDate = "回答納期"
	fieldFJNErrorType         = "FJN側障害種別"
)

const missing = "N/A"

// LabeledCount is one chart bar.
type LabeledCount struct {
	Label string `json:"label"`
	Count int    `json:"count"`
}

// ProjectCounts tallies issues per project name.
func ProjectCounts(issues []redmine.Issue) map[string]int {
	counts := make(map[string]int)
	for _, issue := range issues {
		if issue.Project == nil {
			continue
		}
		counts[issue.Project.Name]++
	}
	return counts
}

// PriorityCounts tallies issues per priority name.
func PriorityCounts(issues []redmine.Issue) map[string]int {
	counts := make(map[string]int)
	for _, issue := range issues {
		if issue.Priority == nil {
			continue
		}
		counts[issue.Priority.Name]++
	}
	return counts
}

// DueDateCounts returns the topN busiest response due dates, ordered by
// date. Issues without the due-date field are skipped.
func DueDateCounts(issues []redmine.Issue, topN int) []LabeledCount {
	counts := make(map[string]int)
	for _, issue := range issues {
		date := redmine.CustomFieldValue(issue.CustomFields, fieldResponseDeliveryDate, missing)
		if date == missing {
			continue
		}
		counts[date]++
	}

	dates := make([]LabeledCount, 0, len(counts))
	for date, count := range counts {
		dates = append(dates, LabeledCount{Label: date, Count: count})
	}

	// keep the busiest dates, then present them chronologically
	sort.Slice(dates, func(i, j int) bool { return dates[i].Count > dates[j].Count })
	if topN > 0 && len(dates) > topN {
		dates = dates[:topN]
	}
	sort.Slice(dates, func(i, j int) bool { return dates[i].Label < dates[j].Label })
	return dates
}

// ProjectErrorTypeCounts breaks issues down by project and error type.
func ProjectErrorTypeCounts(issues []redmine.Issue) map[string]map[string]int {
	counts := make(map[string]map[string]int)
	for _, issue := range issues {
		if issue.Project == nil {
			continue
		}
		project := issue.Project.Name
		errorType := redmine.CustomFieldValue(issue.CustomFields, fieldFJNErrorType, missing)
		if counts[project] == nil {
			counts[project] = make(map[string]int)
		}
		counts[project][errorType]++
	}
	return counts
}
