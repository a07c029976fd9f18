package guestbook

import (
	"context"
	"errors"
	"strings"
	"sync"
	"unicode/utf8"

	"go.uber.org/zap"
)

// Messages shown to the user. Failures are never reported in more detail
// than this.
const (
	ErrMsgFetchFailed    = "Could not load the guestbook."
	ErrMsgInvalidData    = "The server did not return valid data."
	ErrMsgFieldsRequired = "Please enter both a name and a message."
	ErrMsgCreateFailed   = "Could not post the message."
	ErrMsgDeleteFailed   = "Could not delete the message."
)

// Backend is the set of calls the controller makes. *Client implements it.
type Backend interface {
	ListEntries(ctx context.Context) ([]Entry, error)
	CreateEntry(ctx context.Context, name, content string) error
	DeleteEntry(ctx context.Context, id EntryID) error
}

// Confirmer asks the user to approve a destructive action.
type Confirmer interface {
	Confirm(ctx context.Context, prompt string) bool
}

// Answer is a Confirmer whose answer is already known.
type Answer bool

func (a Answer) Confirm(context.Context, string) bool {
	return bool(a)
}

// State is the view state of one UI instance.
type State struct {
	Entries []Entry
	Name    string
	Content string
	Loading bool
	Error   string
}

// CanSubmit reports whether the submit control is enabled.
func (s State) CanSubmit() bool {
	return !s.Loading && strings.TrimSpace(s.Name) != "" && strings.TrimSpace(s.Content) != ""
}

// Controller owns the State of one UI instance and runs every transition on
// it. The lock is never held across a backend call.
type Controller struct {
	backend Backend
	log     *zap.SugaredLogger

	mu    sync.Mutex
	state State
	seq   uint64 // last refresh started
}

func NewController(backend Backend, log *zap.SugaredLogger) *Controller {
	return &Controller{
		backend: backend,
		log:     log,
		state:   State{Entries: []Entry{}},
	}
}

// Snapshot returns a copy of the current state.
func (c *Controller) Snapshot() State {
	c.mu.Lock()
	defer c.mu.Unlock()

	s := c.state
	s.Entries = append([]Entry(nil), c.state.Entries...)
	if s.Entries == nil {
		s.Entries = []Entry{}
	}
	return s
}

// Mount is called when a UI instance is shown.
func (c *Controller) Mount(ctx context.Context) {
	c.log.Debug("mount")
	c.Refresh(ctx)
}

// SetName stores the name draft, dropping whatever exceeds MaxNameLength.
func (c *Controller) SetName(name string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Name = truncate(name, MaxNameLength)
}

// SetContent stores the content draft, dropping whatever exceeds
// MaxContentLength.
func (c *Controller) SetContent(content string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Content = truncate(content, MaxContentLength)
}

// Refresh replaces the entries with a fresh list from the backend. It does
// not touch the loading flag.
func (c *Controller) Refresh(ctx context.Context) {
	c.mu.Lock()
	c.seq++
	seq := c.seq
	c.state.Error = ""
	c.mu.Unlock()

	entries, err := c.backend.ListEntries(ctx)

	c.mu.Lock()
	defer c.mu.Unlock()

	if seq != c.seq {
		c.log.Debugw("discarding stale list response", "seq", seq, "latest", c.seq)
		return
	}

	var formatErr *FormatError
	switch {
	case err == nil:
		c.state.Entries = entries
	case errors.As(err, &formatErr):
		c.log.Warnw("invalid list response", "error", err)
		c.state.Entries = []Entry{}
		c.state.Error = ErrMsgInvalidData
	default:
		c.log.Warnw("failed to list entries", "error", err)
		c.state.Entries = []Entry{}
		c.state.Error = ErrMsgFetchFailed
	}

	c.log.Debugw("refreshed", "entries", len(c.state.Entries), "error", c.state.Error)
}

// ErrSubmitPending is returned by Submit and SubmitDraft while an earlier
// submit is still waiting for the backend.
var ErrSubmitPending = errors.New("another post is in progress")

// Submit posts the current drafts. A blank draft only sets an error. While a
// previous submit is pending it returns ErrSubmitPending and changes nothing.
func (c *Controller) Submit(ctx context.Context) error {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		c.log.Debug("submit ignored while loading")
		return ErrSubmitPending
	}
	return c.submitLocked(ctx)
}

// SubmitDraft stores both drafts and submits them in one step, so another
// caller cannot swap the drafts in between. While a previous submit is
// pending the drafts are left alone and ErrSubmitPending is returned.
func (c *Controller) SubmitDraft(ctx context.Context, name, content string) error {
	c.mu.Lock()
	if c.state.Loading {
		c.mu.Unlock()
		c.log.Debug("submit ignored while loading")
		return ErrSubmitPending
	}
	c.state.Name = truncate(name, MaxNameLength)
	c.state.Content = truncate(content, MaxContentLength)
	return c.submitLocked(ctx)
}

// submitLocked must be called with c.mu held. It releases the lock.
func (c *Controller) submitLocked(ctx context.Context) error {
	name := strings.TrimSpace(c.state.Name)
	content := strings.TrimSpace(c.state.Content)
	if name == "" || content == "" {
		c.state.Error = ErrMsgFieldsRequired
		c.mu.Unlock()
		return nil
	}

	c.state.Loading = true
	c.state.Error = ""
	c.mu.Unlock()

	defer func() {
		c.mu.Lock()
		c.state.Loading = false
		c.mu.Unlock()
	}()

	c.log.Debugw("submitting entry", "name", name, "length", utf8.RuneCountInString(content))

	if err := c.backend.CreateEntry(ctx, name, content); err != nil {
		c.log.Warnw("failed to create entry", "error", err)
		c.setError(ErrMsgCreateFailed)
		return nil
	}

	c.mu.Lock()
	c.state.Name = ""
	c.state.Content = ""
	c.mu.Unlock()

	c.Refresh(ctx)
	c.setError("")
	return nil
}

// Delete removes an entry once the confirmer approves it.
func (c *Controller) Delete(ctx context.Context, id EntryID, confirmer Confirmer) {
	if !confirmer.Confirm(ctx, "Delete message "+id.String()+"?") {
		c.log.Debugw("delete declined", "id", id)
		return
	}

	if err := c.backend.DeleteEntry(ctx, id); err != nil {
		c.log.Warnw("failed to delete entry", "id", id, "error", err)
		c.setError(ErrMsgDeleteFailed)
		return
	}

	c.Refresh(ctx)
	c.setError("")
}

func (c *Controller) setError(msg string) {
	c.mu.Lock()
	defer c.mu.Unlock()
	c.state.Error = msg
}

func truncate(s string, limit int) string {
	if utf8.RuneCountInString(s) <= limit {
		return s
	}
	return string([]rune(s)[:limit])
}
