package guestbook

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
)

const (
	MaxNameLength    = 50
	MaxContentLength = 1000
)

// Entry is one guestbook message as returned by the backend.
type Entry struct {
	ID        EntryID `json:"id"`
	Name      string  `json:"name"`
	Content   string  `json:"content"`
	CreatedAt string  `json:"createdAt"` // set by the backend, display only
}

// EntryID is the backend-assigned identifier. The backend may send it as a
// JSON number or string; either way it is kept verbatim. Null and empty ids
// are rejected.
type EntryID string

var errEmptyID = errors.New("entry id is empty")

func (id *EntryID) UnmarshalJSON(data []byte) error {
	data = bytes.TrimSpace(data)
	if bytes.Equal(data, []byte("null")) {
		return errEmptyID
	}
	if len(data) > 0 && data[0] == '"' {
		var s string
		if err := json.Unmarshal(data, &s); err != nil {
			return err
		}
		if s == "" {
			return errEmptyID
		}
		*id = EntryID(s)
		return nil
	}

	var n json.Number
	if err := json.Unmarshal(data, &n); err != nil {
		return fmt.Errorf("entry id: %w", err)
	}
	*id = EntryID(n.String())
	return nil
}

func (id EntryID) String() string {
	return string(id)
}

// createEntryInput is the JSON payload of a create request.
type createEntryInput struct {
	Name    string `json:"name"`
	Content string `json:"content"`
}

// NetworkError is returned when a request fails in transport or the backend
// answers with a non-2xx status.
type NetworkError struct {
	Op         string
	URL        string
	StatusCode int // zero on transport failures
	Err        error
}

func (e *NetworkError) Error() string {
	if e.StatusCode != 0 {
		return fmt.Sprintf("%s %s: unexpected status %d", e.Op, e.URL, e.StatusCode)
	}
	return fmt.Sprintf("%s %s: %v", e.Op, e.URL, e.Err)
}

func (e *NetworkError) Unwrap() error {
	return e.Err
}

// FormatError is returned when a response body does not have the expected
// shape.
type FormatError struct {
	URL string
	Err error
}

func (e *FormatError) Error() string {
	return fmt.Sprintf("unexpected response from %s: %v", e.URL, e.Err)
}

func (e *FormatError) Unwrap() error {
	return e.Err
}
