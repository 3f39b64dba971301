package files

import (
	"context"
	"os"
	"path/filepath"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"unistats/internal/shared/testutil"
)

func TestWatcherDebouncesWorkbookChanges(t *testing.T) {
	dir := t.TempDir()
	logger, _ := testutil.NewTestLogger(t)

	var (
		mu    sync.Mutex
		calls [][]string
	)
	notified := make(chan struct{}, 4)

	w := NewWatcher(dir, 100*time.Millisecond, func(ctx context.Context, changed []string) {
		mu.Lock()
		calls = append(calls, changed)
		mu.Unlock()
		notified <- struct{}{}
	}, logger)

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- w.Run(ctx) }()

	// fsnotify registers the directory inside Run.
	time.Sleep(200 * time.Millisecond)

	for i := 0; i < 3; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, "Old-Dominion-U.xlsx"), []byte{byte(i)}, 0644))
	}
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.txt"), []byte("x"), 0644))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "~$Old-Dominion-U.xlsx"), []byte("x"), 0644))

	select {
	case <-notified:
	case <-time.After(5 * time.Second):
		t.Fatal("no change notification")
	}

	cancel()
	require.NoError(t, <-done)

	mu.Lock()
	defer mu.Unlock()
	require.Len(t, calls, 1)
	assert.Equal(t, []string{filepath.Join(dir, "Old-Dominion-U.xlsx")}, calls[0])
}

func TestWatcherMissingDirectory(t *testing.T) {
	w := NewWatcher(filepath.Join(t.TempDir(), "absent"), time.Millisecond, nil, nil)
	err := w.Run(context.Background())
	assert.Error(t, err)
}
