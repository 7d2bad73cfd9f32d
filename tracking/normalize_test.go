package tracking

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"tracking-dashboard/redmine"
)

func fullIssue() redmine.Issue {
	return redmine.Issue{
		ID:          42,
		Subject:     "Login fails on timeout",
		Description: "repro steps",
		Status:      &redmine.NameRef{Name: "Resolved"},
		Priority:    &redmine.NameRef{Name: "High"},
		Author:      &redmine.NameRef{Name: "tanaka"},
		AssignedTo:  &redmine.NameRef{Name: "suzuki"},
		Tracker:     &redmine.NameRef{Name: "Bug"},
		Project:     &redmine.ProjectRef{ID: 7, Name: "Alpha"},
		CreatedOn:   "2025-03-01T09:00:00Z",
		UpdatedOn:   "2025-03-02T09:00:00Z",
		CustomFields: []redmine.CustomField{
			{Name: "Q&A No.", Value: "QA-0012"},
			{Name: "Module", Value: "P100-UI"},
			{Name: "Fix Method", Value: "patch"},
			{Name: "Question (VN)", Value: "vn question"},
			{Name: "Question (JP)", Value: "jp question"},
			{Name: "Answer (JP)", Value: "jp answer"},
			{Name: "Answer (VN)", Value: "vn answer"},
		},
		Attachments: []redmine.Attachment{
			{ID: 5, Filename: "log.txt", ContentURL: "http://x/log.txt", CreatedOn: "2025-03-01T10:00:00Z"},
		},
	}
}

func TestFromIssue(t *testing.T) {
	issue := FromIssue(fullIssue())

	assert.Equal(t, 42, issue.IssueID)
	assert.Equal(t, "QA-0012", issue.QANo)
	assert.Equal(t, "Resolved", issue.Status)
	assert.Equal(t, "High", issue.Priority)
	assert.Equal(t, "suzuki", issue.Assignee)
	assert.Equal(t, "tanaka", issue.Author)
	assert.Equal(t, "Bug", issue.TrackerName)
	assert.Equal(t, "P100-UI", issue.Module)
	assert.Equal(t, 7, issue.ProjectID)
	assert.Equal(t, "Alpha", issue.ProjectName)
	assert.Equal(t, "patch", issue.FixMethod)
	assert.Equal(t, "jp answer", issue.AnswerJP)

	require.Len(t, issue.Attachments, 1)
	assert.Equal(t, "log.txt", issue.Attachments[0].Filename)
}

func TestFromIssueDefaultsEmptyInput(t *testing.T) {
	issue := FromIssue(redmine.Issue{ID: 1})

	// every optional field collapses to its zero value, never a panic
	assert.Equal(t, 1, issue.IssueID)
	assert.Equal(t, "", issue.Status)
	assert.Equal(t, "", issue.Priority)
	assert.Equal(t, "", issue.Assignee)
	assert.Equal(t, "", issue.Author)
	assert.Equal(t, "", issue.TrackerName)
	assert.Equal(t, "", issue.Module)
	assert.Equal(t, "", issue.QANo)
	assert.Equal(t, 0, issue.ProjectID)
	assert.Equal(t, "", issue.ProjectName)
	assert.NotNil(t, issue.Attachments)
	assert.Empty(t, issue.Attachments)
}

func TestFromIssueIdempotent(t *testing.T) {
	raw := fullIssue()
	assert.Equal(t, FromIssue(raw), FromIssue(raw))
}

func TestFromIssues(t *testing.T) {
	issues := FromIssues([]redmine.Issue{{ID: 1}, {ID: 2}})
	require.Len(t, issues, 2)
	assert.Equal(t, 2, issues[1].IssueID)

	assert.Empty(t, FromIssues(nil))
}
