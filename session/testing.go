package session

import (
	"context"
	"net/url"
	"sync"
	"testing"

	"github.com/stretchr/testify/require"
)

// TestBrowser is a Browser that records what the Manager asks of it.
type TestBrowser struct {
	mu        sync.Mutex
	location  *url.URL
	assigned  []string
	replaced  []string
	alerts    []string
	assignErr error
}

var _ Browser = (*TestBrowser)(nil)

// NewTestBrowser creates a TestBrowser whose current location is rawURL.
func NewTestBrowser(t *testing.T, rawURL string) *TestBrowser {
	t.Helper()
	u, err := url.Parse(rawURL)
	require.NoError(t, err)
	return &TestBrowser{location: u}
}

// SetAssignError makes every following Assign fail with err.
func (b *TestBrowser) SetAssignError(err error) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.assignErr = err
}

func (b *TestBrowser) Location() *url.URL {
	b.mu.Lock()
	defer b.mu.Unlock()
	u := *b.location
	return &u
}

func (b *TestBrowser) Assign(_ context.Context, u string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	if b.assignErr != nil {
		return b.assignErr
	}
	b.assigned = append(b.assigned, u)
	return nil
}

// ReplaceLocation changes the location's path and drops its query.
func (b *TestBrowser) ReplaceLocation(path string) error {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.replaced = append(b.replaced, path)
	u := *b.location
	u.Path, u.RawQuery = path, ""
	b.location = &u
	return nil
}

func (b *TestBrowser) Alert(msg string) {
	b.mu.Lock()
	defer b.mu.Unlock()
	b.alerts = append(b.alerts, msg)
}

// Assigned returns the URLs navigated to, oldest first.
func (b *TestBrowser) Assigned() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.assigned...)
}

// Replaced returns the paths the location was replaced with, oldest first.
func (b *TestBrowser) Replaced() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.replaced...)
}

// Alerts returns the alerts shown, oldest first.
func (b *TestBrowser) Alerts() []string {
	b.mu.Lock()
	defer b.mu.Unlock()
	return append([]string(nil), b.alerts...)
}
