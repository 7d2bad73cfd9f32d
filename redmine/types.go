package redmine

// types.go - Wire-level structures for the Redmine REST API

// NameRef is a nested reference carrying only a display name.
type NameRef struct {
	Name string `json:"name"`
}

// ProjectRef identifies a project inside the tracker.
type ProjectRef struct {
	ID   int    `json:"id"`
	Name string `json:"name"`
}

// CustomField is a tracker-defined name/value pair attached to an issue.
// Only fields present on the issue appear in the list.
type CustomField struct {
	Name  string `json:"name"`
	Value string `json:"value"`
}

// Attachment is a file attached to an issue.
type Attachment struct {
	ID         int    `json:"id"`
	Filename   string `json:"filename"`
	ContentURL string `json:"content_url"`
	CreatedOn  string `json:"created_on"`
}

// Issue is a raw tracker issue as returned by issues.json. Nested
// references are pointers because the API omits them when unset.
type Issue struct {
	ID           int           `json:"id"`
	Subject      string        `json:"subject"`
	Description  string        `json:"description"`
	Status       *NameRef      `json:"status"`
	Priority     *NameRef      `json:"priority"`
	Author       *NameRef      `json:"author"`
	AssignedTo   *NameRef      `json:"assigned_to"`
	Tracker      *NameRef      `json:"tracker"`
	Project      *ProjectRef   `json:"project"`
	CreatedOn    string        `json:"created_on"`
	UpdatedOn    string        `json:"updated_on"`
	CustomFields []CustomField `json:"custom_fields"`
	Attachments  []Attachment  `json:"attachments"`

	// URL is filled in after fetching so the presentation layer can
	// link back to the tracker. Not part of the wire format.
	URL string `json:"url,omitempty"`
}

// CustomFieldValue returns the value of the named custom field, or the
// sentinel when the field is absent or empty. Safe on a nil list; every
// consumer of custom fields goes through here so missing-field semantics
// agree across the pipeline.
func CustomFieldValue(fields []CustomField, name, sentinel string) string {
	for _, f := range fields {
		if f.Name == name && f.Value != "" {
			return f.Value
		}
	}
	return sentinel
}
