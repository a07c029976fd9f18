package guestbook

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"strings"

	"github.com/samber/lo"
	"go.uber.org/zap"
)

// Client talks to the guestbook REST backend.
type Client struct {
	endpoint   string
	httpClient *http.Client
	log        *zap.SugaredLogger
}

func NewClient(endpoint string, httpClient *http.Client, log *zap.SugaredLogger) *Client {
	if httpClient == nil {
		httpClient = &http.Client{}
	}
	return &Client{
		endpoint:   strings.TrimSuffix(endpoint, "/") + "/guestbook",
		httpClient: httpClient,
		log:        log,
	}
}

// ListEntries fetches every entry. The body must be a JSON array.
func (c *Client) ListEntries(ctx context.Context) ([]Entry, error) {
	body, err := c.do(ctx, http.MethodGet, c.endpoint, nil)
	if err != nil {
		return nil, err
	}

	if !bytes.HasPrefix(bytes.TrimSpace(body), []byte("[")) {
		return nil, &FormatError{URL: c.endpoint, Err: errors.New("body is not a JSON array")}
	}

	entries := []Entry{}
	if err := json.Unmarshal(body, &entries); err != nil {
		return nil, &FormatError{URL: c.endpoint, Err: err}
	}
	if _, i, found := lo.FindIndexOf(entries, func(e Entry) bool { return e.ID == "" }); found {
		return nil, &FormatError{URL: c.endpoint, Err: fmt.Errorf("entry %d: %w", i, errEmptyID)}
	}

	c.log.Debugw("listed entries", "count", len(entries))
	return entries, nil
}

// GetEntry fetches a single entry.
func (c *Client) GetEntry(ctx context.Context, id EntryID) (Entry, error) {
	u := c.entryURL(id)
	body, err := c.do(ctx, http.MethodGet, u, nil)
	if err != nil {
		return Entry{}, err
	}

	var entry Entry
	if err := json.Unmarshal(body, &entry); err != nil {
		return Entry{}, &FormatError{URL: u, Err: err}
	}
	if entry.ID == "" {
		return Entry{}, &FormatError{URL: u, Err: errEmptyID}
	}
	return entry, nil
}

// CreateEntry posts a new entry. The created entry is not returned; callers
// list again to observe it.
func (c *Client) CreateEntry(ctx context.Context, name, content string) error {
	payload, err := json.Marshal(createEntryInput{Name: name, Content: content})
	if err != nil {
		return fmt.Errorf("encode entry: %w", err)
	}

	_, err = c.do(ctx, http.MethodPost, c.endpoint, payload)
	if err != nil {
		return err
	}

	c.log.Debugw("created entry", "name", name)
	return nil
}

// DeleteEntry removes the entry with the given id.
func (c *Client) DeleteEntry(ctx context.Context, id EntryID) error {
	_, err := c.do(ctx, http.MethodDelete, c.entryURL(id), nil)
	if err != nil {
		return err
	}

	c.log.Debugw("deleted entry", "id", id)
	return nil
}

func (c *Client) entryURL(id EntryID) string {
	return c.endpoint + "/" + url.PathEscape(id.String())
}

func (c *Client) do(ctx context.Context, method, u string, payload []byte) ([]byte, error) {
	var reqBody io.Reader
	if payload != nil {
		reqBody = bytes.NewReader(payload)
	}

	req, err := http.NewRequestWithContext(ctx, method, u, reqBody)
	if err != nil {
		return nil, &NetworkError{Op: method, URL: u, Err: err}
	}
	req.Header.Set("Accept", "application/json")
	if payload != nil {
		req.Header.Set("Content-Type", "application/json")
	}

	c.log.Debugw("request", "method", method, "url", u)

	res, err := c.httpClient.Do(req)
	if err != nil {
		return nil, &NetworkError{Op: method, URL: u, Err: err}
	}
	defer res.Body.Close()

	body, err := io.ReadAll(res.Body)
	if err != nil {
		return nil, &NetworkError{Op: method, URL: u, Err: fmt.Errorf("read body: %w", err)}
	}

	c.log.Debugw("response", "method", method, "url", u, "status", res.StatusCode, "size", len(body))

	if res.StatusCode < 200 || res.StatusCode > 299 {
		return nil, &NetworkError{Op: method, URL: u, StatusCode: res.StatusCode}
	}

	return body, nil
}
