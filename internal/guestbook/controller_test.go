package guestbook

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"
)

type createCall struct {
	name, content string
}

type fakeBackend struct {
	mu        sync.Mutex
	entries   []Entry
	listErr   error
	createErr error
	deleteErr error

	lists   int
	creates []createCall
	deletes []EntryID
	calls   []string
}

func (f *fakeBackend) ListEntries(context.Context) ([]Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.lists++
	f.calls = append(f.calls, "list")
	if f.listErr != nil {
		return nil, f.listErr
	}
	return append([]Entry(nil), f.entries...), nil
}

func (f *fakeBackend) CreateEntry(_ context.Context, name, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates = append(f.creates, createCall{name, content})
	f.calls = append(f.calls, "create")
	if f.createErr != nil {
		return f.createErr
	}
	f.entries = append(f.entries, Entry{ID: EntryID(name), Name: name, Content: content})
	return nil
}

func (f *fakeBackend) DeleteEntry(_ context.Context, id EntryID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	f.calls = append(f.calls, "delete")
	return f.deleteErr
}

func newTestController(b Backend) *Controller {
	return NewController(b, zap.NewNop().Sugar())
}

func TestControllerInitialState(t *testing.T) {
	c := newTestController(&fakeBackend{})
	s := c.Snapshot()
	assert.Equal(t, []Entry{}, s.Entries)
	assert.False(t, s.Loading)
	assert.Empty(t, s.Error)
	assert.False(t, s.CanSubmit())
}

func TestControllerMount(t *testing.T) {
	b := &fakeBackend{entries: []Entry{{ID: "1", Name: "Alice", Content: "Hello"}}}
	c := newTestController(b)

	c.Mount(context.Background())

	s := c.Snapshot()
	assert.Equal(t, 1, b.lists)
	assert.Equal(t, b.entries, s.Entries)
	assert.Empty(t, s.Error)
}

func TestControllerMountFetchFailed(t *testing.T) {
	b := &fakeBackend{listErr: &NetworkError{Op: "GET", URL: "x", Err: errors.New("connection refused")}}
	c := newTestController(b)

	c.Mount(context.Background())

	s := c.Snapshot()
	assert.Equal(t, []Entry{}, s.Entries)
	assert.Equal(t, ErrMsgFetchFailed, s.Error)
}

func TestControllerRefreshInvalidData(t *testing.T) {
	b := &fakeBackend{entries: []Entry{{ID: "1"}}}
	c := newTestController(b)
	c.Refresh(context.Background())
	require.Len(t, c.Snapshot().Entries, 1)

	b.listErr = &FormatError{URL: "x", Err: errors.New("not an array")}
	c.Refresh(context.Background())

	s := c.Snapshot()
	assert.Equal(t, []Entry{}, s.Entries)
	assert.Equal(t, ErrMsgInvalidData, s.Error)
}

func TestControllerSubmit(t *testing.T) {
	b := &fakeBackend{}
	c := newTestController(b)
	c.SetName("  Alice ")
	c.SetContent("\tHello\n")

	c.Submit(context.Background())

	assert.Equal(t, []createCall{{"Alice", "Hello"}}, b.creates)
	assert.Equal(t, []string{"create", "list"}, b.calls)

	s := c.Snapshot()
	assert.Empty(t, s.Name)
	assert.Empty(t, s.Content)
	assert.Empty(t, s.Error)
	assert.False(t, s.Loading)
	require.Len(t, s.Entries, 1)
	assert.Equal(t, "Alice", s.Entries[0].Name)
}

func TestControllerSubmitRequiresBothFields(t *testing.T) {
	tests := []struct {
		name, content string
	}{
		{"", ""},
		{"Alice", ""},
		{"", "Hello"},
		{"   ", "Hello"},
		{"Alice", " \n\t "},
	}

	for _, test := range tests {
		b := &fakeBackend{}
		c := newTestController(b)
		c.SetName(test.name)
		c.SetContent(test.content)

		c.Submit(context.Background())

		assert.Empty(t, b.calls)
		s := c.Snapshot()
		assert.Equal(t, ErrMsgFieldsRequired, s.Error)
		assert.Equal(t, test.name, s.Name)
		assert.False(t, s.Loading)
	}
}

func TestControllerSubmitFailure(t *testing.T) {
	b := &fakeBackend{createErr: &NetworkError{Op: "POST", URL: "x", StatusCode: 500}}
	c := newTestController(b)
	c.SetName("Alice")
	c.SetContent("Hello")

	c.Submit(context.Background())

	assert.Equal(t, []string{"create"}, b.calls)
	s := c.Snapshot()
	assert.Equal(t, ErrMsgCreateFailed, s.Error)
	assert.Equal(t, "Alice", s.Name)
	assert.Equal(t, "Hello", s.Content)
	assert.False(t, s.Loading)
}

func TestControllerSubmitClearsRefreshError(t *testing.T) {
	b := &fakeBackend{listErr: errors.New("boom")}
	c := newTestController(b)
	c.SetName("Alice")
	c.SetContent("Hello")

	c.Submit(context.Background())

	s := c.Snapshot()
	assert.Empty(t, s.Error)
	assert.Equal(t, []Entry{}, s.Entries)
}

// blockingBackend holds CreateEntry until released.
type blockingBackend struct {
	fakeBackend
	started chan struct{}
	release chan struct{}
}

func (b *blockingBackend) CreateEntry(ctx context.Context, name, content string) error {
	close(b.started)
	<-b.release
	return b.fakeBackend.CreateEntry(ctx, name, content)
}

func TestControllerSubmitWhileLoading(t *testing.T) {
	b := &blockingBackend{started: make(chan struct{}), release: make(chan struct{})}
	c := newTestController(b)
	c.SetName("Alice")
	c.SetContent("Hello")

	done := make(chan struct{})
	go func() {
		c.Submit(context.Background())
		close(done)
	}()

	<-b.started
	s := c.Snapshot()
	assert.True(t, s.Loading)
	assert.False(t, s.CanSubmit())

	assert.ErrorIs(t, c.Submit(context.Background()), ErrSubmitPending)

	close(b.release)
	<-done

	assert.Len(t, b.creates, 1)
	assert.False(t, c.Snapshot().Loading)
}

func TestControllerSubmitDraftWhileLoading(t *testing.T) {
	b := &blockingBackend{started: make(chan struct{}), release: make(chan struct{})}
	c := newTestController(b)

	done := make(chan error, 1)
	go func() {
		done <- c.SubmitDraft(context.Background(), "Alice", "first")
	}()

	<-b.started
	err := c.SubmitDraft(context.Background(), "Bob", "second")
	require.ErrorIs(t, err, ErrSubmitPending)

	s := c.Snapshot()
	assert.Equal(t, "Alice", s.Name)
	assert.Equal(t, "first", s.Content)

	close(b.release)
	require.NoError(t, <-done)

	assert.Equal(t, []createCall{{"Alice", "first"}}, b.creates)
	s = c.Snapshot()
	assert.Empty(t, s.Name)
	assert.Empty(t, s.Error)
	assert.False(t, s.Loading)
}

func TestControllerSubmitDraftCaps(t *testing.T) {
	b := &fakeBackend{}
	c := newTestController(b)

	require.NoError(t, c.SubmitDraft(context.Background(), strings.Repeat("n", MaxNameLength+1), "Hello"))

	require.Len(t, b.creates, 1)
	assert.Equal(t, strings.Repeat("n", MaxNameLength), b.creates[0].name)
}

func TestControllerDelete(t *testing.T) {
	b := &fakeBackend{entries: []Entry{{ID: "1"}, {ID: "2"}}}
	c := newTestController(b)
	c.Mount(context.Background())

	c.Delete(context.Background(), "1", Answer(true))

	assert.Equal(t, []EntryID{"1"}, b.deletes)
	assert.Equal(t, []string{"list", "delete", "list"}, b.calls)
	assert.Empty(t, c.Snapshot().Error)
}

func TestControllerDeleteDeclined(t *testing.T) {
	b := &fakeBackend{entries: []Entry{{ID: "1"}}}
	c := newTestController(b)
	c.Mount(context.Background())
	before := c.Snapshot()

	c.Delete(context.Background(), "1", Answer(false))

	assert.Empty(t, b.deletes)
	assert.Equal(t, []string{"list"}, b.calls)
	assert.Equal(t, before, c.Snapshot())
}

func TestControllerDeleteFailure(t *testing.T) {
	b := &fakeBackend{deleteErr: &NetworkError{Op: "DELETE", URL: "x", StatusCode: 404}}
	c := newTestController(b)

	c.Delete(context.Background(), "1", Answer(true))

	assert.Equal(t, []string{"delete"}, b.calls)
	assert.Equal(t, ErrMsgDeleteFailed, c.Snapshot().Error)
}

func TestControllerDraftCaps(t *testing.T) {
	c := newTestController(&fakeBackend{})

	c.SetContent(strings.Repeat("a", MaxContentLength))
	assert.Len(t, c.Snapshot().Content, MaxContentLength)

	c.SetContent(strings.Repeat("a", MaxContentLength+1))
	assert.Len(t, c.Snapshot().Content, MaxContentLength)

	c.SetName(strings.Repeat("가", MaxNameLength+5))
	assert.Equal(t, strings.Repeat("가", MaxNameLength), c.Snapshot().Name)
}

// orderedBackend lets a test decide when each ListEntries call returns.
type orderedBackend struct {
	fakeBackend
	entered chan chan []Entry
}

func (b *orderedBackend) ListEntries(context.Context) ([]Entry, error) {
	reply := make(chan []Entry)
	b.entered <- reply
	return <-reply, nil
}

func TestControllerDiscardsStaleRefresh(t *testing.T) {
	b := &orderedBackend{entered: make(chan chan []Entry)}
	c := newTestController(b)

	var older, newer sync.WaitGroup
	older.Add(1)
	go func() {
		defer older.Done()
		c.Refresh(context.Background())
	}()
	first := <-b.entered

	newer.Add(1)
	go func() {
		defer newer.Done()
		c.Refresh(context.Background())
	}()
	second := <-b.entered

	// The newer refresh resolves first, the older one last.
	second <- []Entry{{ID: "new"}}
	newer.Wait()
	first <- []Entry{{ID: "old"}}
	older.Wait()

	assert.Equal(t, []Entry{{ID: "new"}}, c.Snapshot().Entries)
}
