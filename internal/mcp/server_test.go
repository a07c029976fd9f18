package mcp

import (
	"context"
	"encoding/json"
	"sync"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	"guestbook/internal/guestbook"
)

type fakeBackend struct {
	mu      sync.Mutex
	entries []guestbook.Entry
	deletes []guestbook.EntryID
	creates int
}

func (f *fakeBackend) ListEntries(context.Context) ([]guestbook.Entry, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return append([]guestbook.Entry(nil), f.entries...), nil
}

func (f *fakeBackend) CreateEntry(_ context.Context, name, content string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.creates++
	f.entries = append(f.entries, guestbook.Entry{ID: "9", Name: name, Content: content, CreatedAt: "2024-05-01T15:04:00"})
	return nil
}

func (f *fakeBackend) DeleteEntry(_ context.Context, id guestbook.EntryID) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.deletes = append(f.deletes, id)
	return nil
}

func (f *fakeBackend) GetEntry(_ context.Context, id guestbook.EntryID) (guestbook.Entry, error) {
	for _, e := range f.entries {
		if e.ID == id {
			return e, nil
		}
	}
	return guestbook.Entry{}, &guestbook.NetworkError{Op: "GET", URL: "x", StatusCode: 404}
}

// slowBackend holds CreateEntry until released.
type slowBackend struct {
	fakeBackend
	started chan struct{}
	release chan struct{}
}

func (b *slowBackend) CreateEntry(ctx context.Context, name, content string) error {
	b.started <- struct{}{}
	<-b.release
	return b.fakeBackend.CreateEntry(ctx, name, content)
}

func callTool(args map[string]any) mcp.CallToolRequest {
	req := mcp.CallToolRequest{}
	req.Params.Arguments = args
	return req
}

func resultText(t *testing.T, res *mcp.CallToolResult) string {
	t.Helper()
	require.NotEmpty(t, res.Content)
	text, ok := res.Content[0].(mcp.TextContent)
	require.True(t, ok)
	return text.Text
}

func TestCreateAndListEntries(t *testing.T) {
	b := &fakeBackend{}
	ctl := guestbook.NewController(b, zap.NewNop().Sugar())

	res, err := handleCreateEntry(ctl)(context.Background(), callTool(map[string]any{"name": " Alice ", "content": "Hello"}))
	require.NoError(t, err)
	require.False(t, res.IsError, resultText(t, res))

	var state StateResult
	require.NoError(t, json.Unmarshal([]byte(resultText(t, res)), &state))
	require.Len(t, state.Entries, 1)
	assert.Equal(t, "Alice", state.Entries[0].Name)

	res, err = handleListEntries(ctl)(context.Background(), callTool(nil))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"name": "Alice"`)
}

func TestCreateEntryRequiresFields(t *testing.T) {
	b := &fakeBackend{}
	ctl := guestbook.NewController(b, zap.NewNop().Sugar())

	res, err := handleCreateEntry(ctl)(context.Background(), callTool(map[string]any{"name": "Alice", "content": "  "}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), guestbook.ErrMsgFieldsRequired)
	assert.Zero(t, b.creates)
}

func TestCreateEntryWhilePending(t *testing.T) {
	b := &slowBackend{started: make(chan struct{}), release: make(chan struct{})}
	ctl := guestbook.NewController(b, zap.NewNop().Sugar())
	handler := handleCreateEntry(ctl)

	first := make(chan *mcp.CallToolResult, 1)
	go func() {
		res, _ := handler(context.Background(), callTool(map[string]any{"name": "Alice", "content": "first"}))
		first <- res
	}()
	<-b.started

	res, err := handler(context.Background(), callTool(map[string]any{"name": "Bob", "content": "second"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "another post is in progress")

	close(b.release)
	res = <-first
	require.False(t, res.IsError, resultText(t, res))

	b.mu.Lock()
	defer b.mu.Unlock()
	assert.Equal(t, 1, b.creates)
	require.Len(t, b.entries, 1)
	assert.Equal(t, "Alice", b.entries[0].Name)
}

func TestDeleteEntryNeedsConfirm(t *testing.T) {
	b := &fakeBackend{entries: []guestbook.Entry{{ID: "1", Name: "Alice"}}}
	ctl := guestbook.NewController(b, zap.NewNop().Sugar())
	handler := handleDeleteEntry(ctl)

	res, err := handler(context.Background(), callTool(map[string]any{"id": "1"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Empty(t, b.deletes)

	res, err = handler(context.Background(), callTool(map[string]any{"id": "1", "confirm": true}))
	require.NoError(t, err)
	assert.False(t, res.IsError)
	assert.Equal(t, []guestbook.EntryID{"1"}, b.deletes)
}

func TestGetEntry(t *testing.T) {
	b := &fakeBackend{entries: []guestbook.Entry{{ID: "1", Name: "Alice", Content: "Hello"}}}

	res, err := handleGetEntry(b)(context.Background(), callTool(map[string]any{"id": "1"}))
	require.NoError(t, err)
	assert.Contains(t, resultText(t, res), `"content": "Hello"`)

	res, err = handleGetEntry(b)(context.Background(), callTool(map[string]any{"id": "2"}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
	assert.Contains(t, resultText(t, res), "not found")
}
