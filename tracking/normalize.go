package tracking

import "tracking-dashboard/redmine"

// Custom field names as defined on the tracking Redmine instance.
const (
	fieldQANo       = "Q&A No."
	fieldModule     = "Module"
	fieldFixMethod  = "Fix Method"
	fieldQuestionVN = "Question (VN)"
	fieldQuestionJP = "Question (JP)"
	fieldAnswerJP   = "Answer (JP)"
	fieldAnswerVN   = "Answer (VN)"
)

func refName(ref *redmine.NameRef) string {
	if ref == nil {
		return ""
	}
	return ref.Name
}

// FromIssue maps one raw tracker issue into a TrackingIssue. Pure and
// total: malformed or partial input produces defaulted fields, never an
// error.
func FromIssue(issue redmine.Issue) TrackingIssue {
	field := func(name string) string {
		return redmine.CustomFieldValue(issue.CustomFields, name, "")
	}

	attachments := make([]Attachment, 0, len(issue.Attachments))
	for _, att := range issue.Attachments {
		attachments = append(attachments, Attachment{
			ID:         att.ID,
			Filename:   att.Filename,
			ContentURL: att.ContentURL,
			CreatedOn:  att.CreatedOn,
		})
	}

	normalized := TrackingIssue{
		IssueID:     issue.ID,
		QANo:        field(fieldQANo),
		Subject:     issue.Subject,
		Status:      refName(issue.Status),
		Priority:    refName(issue.Priority),
		Assignee:    refName(issue.AssignedTo),
		Author:      refName(issue.Author),
		CreatedOn:   issue.CreatedOn,
		UpdatedOn:   issue.UpdatedOn,
		TrackerName: refName(issue.Tracker),
		Module:      field(fieldModule),
		Description: issue.Description,
		Attachments: attachments,
		FixMethod:   field(fieldFixMethod),
		QuestionVN:  field(fieldQuestionVN),
		QuestionJP:  field(fieldQuestionJP),
		AnswerJP:    field(fieldAnswerJP),
		AnswerVN:    field(fieldAnswerVN),
	}
	if issue.Project != nil {
		normalized.ProjectID = issue.Project.ID
		normalized.ProjectName = issue.Project.Name
	}
	return normalized
}

// FromIssues normalizes a whole fetch result.
func FromIssues(issues []redmine.Issue) []TrackingIssue {
	normalized := make([]TrackingIssue, 0, len(issues))
	for _, issue := range issues {
		normalized = append(normalized, FromIssue(issue))
	}
	return normalized
}
