// Package filter applies multi-field substring filters and comparator
// based sorting over fetched issues. Everything here is a pure function
// of its inputs so the presentation layer can call it freely.
package filter

import (
	"sort"
	"strconv"
	"strings"

	"tracking-dashboard/redmine"
)

// Tracker custom fields surfaced as filterable columns.
const (
	fieldGeneratedPGID        = "発生PGID"
	fieldDesiredDeliveryDate  = "希望納期"
	fieldResponseDeliveryDate = "回答納期"
	fieldFJNErrorType         = "FJN側障害種別"
	fieldUCDErrorType         = "UCD側障害種別"
	fieldUnitID               = "部品ID"
	fieldEditPGID             = "修正PGID"
)

const missing = "N/A"

// Spec holds one optional substring predicate per recognized column.
// Empty means no constraint; all set predicates must match (logical AND).
type Spec struct {
	STT                  string `json:"stt"`
	TicketNo             string `json:"ticketNo"`
	GeneratedPGID        string `json:"generatedPgId"`
	ProjectName          string `json:"projectName"`
	Author               string `json:"author"`
	DesiredDeliveryDate  string `json:"desiredDeliveryDate"`
	ResponseDeliveryDate string `json:"responseDeliveryDate"`
	FJNErrorType         string `json:"fjnErrorType"`
	UCDErrorType         string `json:"ucdErrorType"`
	UnitID               string `json:"unitId"`
	EditPGID             string `json:"editPgId"`
}

// Sort names a column and a direction. An unrecognized key leaves the
// input order unchanged.
type Sort struct {
	Key        string `json:"key"`
	Descending bool   `json:"descending"`
}

func custom(issue redmine.Issue, name string) string {
	return redmine.CustomFieldValue(issue.CustomFields, name, missing)
}

func projectName(issue redmine.Issue) string {
	if issue.Project == nil {
		return ""
	}
	return issue.Project.Name
}

func authorName(issue redmine.Issue) string {
	if issue.Author == nil {
		return missing
	}
	return issue.Author.Name
}

func containsFold(value, want string) bool {
	if want == "" {
		return true
	}
	return strings.Contains(strings.ToLower(value), strings.ToLower(want))
}

func matches(issue redmine.Issue, position int, spec Spec) bool {
	stt := strconv.Itoa(position + 1)
	ticketNo := strconv.Itoa(issue.ID)

	return strings.Contains(stt, spec.STT) &&
		strings.Contains(ticketNo, spec.TicketNo) &&
		containsFold(custom(issue, fieldGeneratedPGID), spec.GeneratedPGID) &&
		containsFold(projectName(issue), spec.ProjectName) &&
		containsFold(authorName(issue), spec.Author) &&
		containsFold(custom(issue, fieldDesiredDeliveryDate), spec.DesiredDeliveryDate) &&
		containsFold(custom(issue, fieldResponseDeliveryDate), spec.ResponseDeliveryDate) &&
		containsFold(custom(issue, fieldFJNErrorType), spec.FJNErrorType) &&
		containsFold(custom(issue, fieldUCDErrorType), spec.UCDErrorType) &&
		containsFold(custom(issue, fieldUnitID), spec.UnitID) &&
		containsFold(custom(issue, fieldEditPGID), spec.EditPGID)
}

// textKey maps a sort key to its per-issue string value. Keys that sort
// numerically or not at all are handled separately.
func textKey(issue redmine.Issue, key string) (string, bool) {
	switch key {
	case "generatedPgId":
		return custom(issue, fieldGeneratedPGID), true
	case "projectName":
		return projectName(issue), true
	case "author":
		return authorName(issue), true
	case "desiredDeliveryDate":
		return custom(issue, fieldDesiredDeliveryDate), true
	case "responseDeliveryDate":
		return custom(issue, fieldResponseDeliveryDate), true
	case "fjnErrorType":
		return custom(issue, fieldFJNErrorType), true
	case "ucdErrorType":
		return custom(issue, fieldUCDErrorType), true
	case "unitId":
		return custom(issue, fieldUnitID), true
	case "editPgId":
		return custom(issue, fieldEditPGID), true
	}
	return "", false
}

// Apply filters and sorts a copy of issues. The input slice is never
// mutated; ties keep their original relative order.
func Apply(issues []redmine.Issue, spec Spec, sortBy Sort) []redmine.Issue {
	result := make([]redmine.Issue, 0, len(issues))
	for i, issue := range issues {
		if matches(issue, i, spec) {
			result = append(result, issue)
		}
	}

	less := lessFunc(sortBy.Key)
	if less == nil {
		return result
	}
	sort.SliceStable(result, func(i, j int) bool {
		if sortBy.Descending {
			return less(result[j], result[i])
		}
		return less(result[i], result[j])
	})
	return result
}

func lessFunc(key string) func(a, b redmine.Issue) bool {
	if key == "" || key == "stt" {
		// stt is the display row number; sorting by it is the input order.
		return nil
	}
	if key == "ticketNo" {
		return func(a, b redmine.Issue) bool { return a.ID < b.ID }
	}
	if _, ok := textKey(redmine.Issue{}, key); !ok {
		return nil
	}
	return func(a, b redmine.Issue) bool {
		av, _ := textKey(a, key)
		bv, _ := textKey(b, key)
		return av < bv
	}
}
