package watcher

import (
	"context"
	"errors"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mvp-joe/sdkref/internal/indexer"
)

// Test Plan for WatchCoordinator:
// - Start runs a full pass while the file watcher is paused, then resumes
// - File change event triggers Update() with the changed paths
// - Empty batches are ignored
// - Error handling: initial Run() fails (log, keep watching)
// - Error handling: Update() fails (log, continue)
// - Error handling: file watcher.Start() fails (propagate error)
// - Context cancellation stops the file watcher

// mockFileWatcher implements FileWatcher for testing.
type mockFileWatcher struct {
	mu            sync.Mutex
	startErr      error
	startCallback func(files []string)
	events        []string
	stopCalled    bool
	started       chan struct{}
}

func newMockFileWatcher() *mockFileWatcher {
	return &mockFileWatcher{started: make(chan struct{})}
}

func (m *mockFileWatcher) Start(ctx context.Context, callback func(files []string)) error {
	m.mu.Lock()
	m.startCallback = callback
	m.events = append(m.events, "start")
	startErr := m.startErr
	m.mu.Unlock()
	close(m.started)

	if startErr != nil {
		return startErr
	}

	// Block until context done (simulates watcher behavior)
	<-ctx.Done()
	return nil
}

func (m *mockFileWatcher) Stop() error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.stopCalled = true
	return nil
}

func (m *mockFileWatcher) Pause() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "pause")
}

func (m *mockFileWatcher) Resume() {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.events = append(m.events, "resume")
}

func (m *mockFileWatcher) trigger(files []string) {
	<-m.started
	m.mu.Lock()
	callback := m.startCallback
	m.mu.Unlock()
	callback(files)
}

func (m *mockFileWatcher) stopped() bool {
	m.mu.Lock()
	defer m.mu.Unlock()
	return m.stopCalled
}

// mockIndexer implements Indexer for testing.
type mockIndexer struct {
	mu        sync.Mutex
	runErr    error
	updateErr error
	runs      int
	updates   [][]string
	ran       chan struct{}
}

func newMockIndexer() *mockIndexer {
	return &mockIndexer{ran: make(chan struct{}, 1)}
}

func (m *mockIndexer) Run(ctx context.Context) (*indexer.Stats, error) {
	m.mu.Lock()
	m.runs++
	err := m.runErr
	m.mu.Unlock()
	m.ran <- struct{}{}

	if err != nil {
		return nil, err
	}
	return &indexer.Stats{FilesAdded: 2, Symbols: 5}, nil
}

func (m *mockIndexer) Update(ctx context.Context, paths []string) (*indexer.Stats, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.updates = append(m.updates, paths)
	if m.updateErr != nil {
		return nil, m.updateErr
	}
	return &indexer.Stats{FilesModified: len(paths)}, nil
}

func (m *mockIndexer) updateCalls() [][]string {
	m.mu.Lock()
	defer m.mu.Unlock()
	return append([][]string(nil), m.updates...)
}

func startCoordinator(t *testing.T, files *mockFileWatcher, idx *mockIndexer) (context.CancelFunc, chan error) {
	t.Helper()

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	coord := NewWatchCoordinator(files, idx)
	go func() { done <- coord.Start(ctx) }()

	select {
	case <-idx.ran:
	case <-time.After(time.Second):
		t.Fatal("initial Run not called")
	}
	return cancel, done
}

func TestWatchCoordinator_InitialRunWhilePaused(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	idx := newMockIndexer()
	cancel, done := startCoordinator(t, files, idx)

	cancel()
	require.ErrorIs(t, <-done, context.Canceled)

	files.mu.Lock()
	events := append([]string(nil), files.events...)
	files.mu.Unlock()

	require.Len(t, events, 3)
	assert.Equal(t, "pause", events[0], "watcher is paused before the full pass")
	assert.ElementsMatch(t, []string{"pause", "start", "resume"}, events)
	assert.Equal(t, 1, idx.runs)
	assert.True(t, files.stopped())
}

func TestWatchCoordinator_FileChangeTriggersUpdate(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	idx := newMockIndexer()
	cancel, done := startCoordinator(t, files, idx)
	defer func() {
		cancel()
		<-done
	}()

	files.trigger([]string{"/project/a.go", "/project/b.py"})
	files.trigger(nil)

	assert.Equal(t, [][]string{{"/project/a.go", "/project/b.py"}}, idx.updateCalls())
}

func TestWatchCoordinator_RunErrorKeepsWatching(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	idx := newMockIndexer()
	idx.runErr = errors.New("disk full")
	cancel, done := startCoordinator(t, files, idx)
	defer func() {
		cancel()
		<-done
	}()

	files.trigger([]string{"/project/a.go"})
	assert.Len(t, idx.updateCalls(), 1)
}

func TestWatchCoordinator_UpdateErrorContinues(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	idx := newMockIndexer()
	idx.updateErr = errors.New("parse failure")
	cancel, done := startCoordinator(t, files, idx)
	defer func() {
		cancel()
		<-done
	}()

	files.trigger([]string{"/project/a.go"})
	files.trigger([]string{"/project/b.go"})
	assert.Len(t, idx.updateCalls(), 2)
}

func TestWatchCoordinator_FileWatcherStartError(t *testing.T) {
	t.Parallel()

	files := newMockFileWatcher()
	files.startErr = errors.New("too many open files")
	idx := newMockIndexer()

	coord := NewWatchCoordinator(files, idx)
	err := coord.Start(context.Background())

	require.Error(t, err)
	assert.Contains(t, err.Error(), "too many open files")
	assert.True(t, files.stopped())
}
