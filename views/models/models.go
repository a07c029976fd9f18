package models

// EntryView represents an entry for template rendering
type EntryView struct {
	ID          string
	Name        string
	CreatedAt   string // already formatted for the reader
	ContentHTML string // escaped or sanitized
}

// FormView holds the draft fields and what the form controls allow
type FormView struct {
	Name          string
	Content       string
	ContentLength int
	NameMax       int
	ContentMax    int
	Loading       bool
	CanSubmit     bool
}

// DebugView is shown only when debug is enabled
type DebugView struct {
	APIBaseURL  string
	Environment string
	Version     string
	Loading     bool
	Error       string
	EntryCount  int
}

// PageView is everything the guestbook page renders
type PageView struct {
	Title   string
	Error   string
	Form    FormView
	Entries []EntryView
	Debug   *DebugView
}

// ConfirmView asks the reader to approve deleting an entry
type ConfirmView struct {
	Title   string
	EntryID string
	Name    string // empty when the entry is not in the current list
}
