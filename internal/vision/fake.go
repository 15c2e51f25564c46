package vision

import (
	"context"
	"sync"
)

// FakeInspector is a deterministic Inspector for tests: it records the paths
// it was asked about and replies with a canned summary or error.
type FakeInspector struct {
	mu      sync.Mutex
	Summary string
	Err     error
	Calls   []string
}

// Inspect returns the configured summary or error.
func (f *FakeInspector) Inspect(_ context.Context, imagePath string) (string, error) {
	f.mu.Lock()
	f.Calls = append(f.Calls, imagePath)
	f.mu.Unlock()

	if f.Err != nil {
		return "", f.Err
	}
	return f.Summary, nil
}
