package tracking

// types.go - Normalized issue records consumed by the schedule and
// presentation layers. Every optional field defaults to an empty string
// or zero so downstream rendering never has to null-check.

// Attachment is a file attached to a tracking issue. It has no lifecycle
// of its own; it lives and dies with its parent issue.
type Attachment struct {
	ID         int    `json:"id"`
	Filename   string `json:"filename"`
	ContentURL string `json:"contentUrl"`
	CreatedOn  string `json:"createdOn"`
}

// TrackingIssue is the flat, fully-defaulted projection of a raw tracker
// issue. Created once per fetch cycle and never mutated afterwards.
type TrackingIssue struct {
	IssueID     int          `json:"issueId"`
	QANo        string       `json:"qaNo"`
	Subject     string       `json:"subject"`
	Status      string       `json:"status"`
	Priority    string       `json:"priority"`
	Assignee    string       `json:"assignee"`
	Author      string       `json:"author"`
	CreatedOn   string       `json:"createdOn"`
	UpdatedOn   string       `json:"updatedOn"`
	TrackerName string       `json:"trackerName"`
	Module      string       `json:"module"`
	Description string       `json:"description"`
	Attachments []Attachment `json:"attachments"`
	ProjectID   int          `json:"projectId"`
	ProjectName string       `json:"projectName"`
	FixMethod   string       `json:"fixMethod"`
	QuestionVN  string       `json:"questionVN"`
	QuestionJP  string       `json:"questionJP"`
	AnswerJP    string       `json:"answerJP"`
	AnswerVN    string       `json:"answerVN"`
}
