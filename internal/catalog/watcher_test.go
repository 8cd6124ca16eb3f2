package catalog

import (
	"os"
	"path/filepath"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewWatcher_Defaults(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{Dir: "/tmp/catalog"})

	assert.Equal(t, DefaultDebounceInterval, watcher.config.Debounce)
	assert.Equal(t, DefaultPollInterval, watcher.config.PollInterval)
}

func TestWatcher_StartStop(t *testing.T) {
	watcher := NewWatcher(WatcherConfig{Dir: t.TempDir()})

	require.NoError(t, watcher.Start())
	assert.True(t, watcher.IsRunning())

	// Starting again is a no-op
	require.NoError(t, watcher.Start())

	require.NoError(t, watcher.Stop())
	assert.False(t, watcher.IsRunning())

	// Stopping again is a no-op
	require.NoError(t, watcher.Stop())
}

func TestWatcher_DetectsCatalogChanges(t *testing.T) {
	dir := t.TempDir()
	require.NoError(t, os.WriteFile(filepath.Join(dir, modulesFileName), []byte("modules: []\n"), 0644))

	var changeCount int32
	watcher := NewWatcher(WatcherConfig{
		Dir:          dir,
		Debounce:     50 * time.Millisecond,
		PollInterval: 50 * time.Millisecond,
		OnChange: func() {
			atomic.AddInt32(&changeCount, 1)
		},
	})
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, dependenciesFileName), []byte("dependencies: []\n"), 0644))

	assert.Eventually(t, func() bool {
		return atomic.LoadInt32(&changeCount) >= 1
	}, 2*time.Second, 25*time.Millisecond)
}

func TestWatcher_DebouncesBursts(t *testing.T) {
	dir := t.TempDir()

	var changeCount int32
	watcher := NewWatcher(WatcherConfig{
		Dir:      dir,
		Debounce: 300 * time.Millisecond,
		OnChange: func() {
			atomic.AddInt32(&changeCount, 1)
		},
	})
	require.NoError(t, watcher.Start())
	defer watcher.Stop()

	time.Sleep(100 * time.Millisecond)

	for i := 0; i < 5; i++ {
		require.NoError(t, os.WriteFile(filepath.Join(dir, modulesFileName), []byte("modules: []\n# "+string(rune('0'+i))), 0644))
		time.Sleep(20 * time.Millisecond)
	}

	time.Sleep(800 * time.Millisecond)

	count := atomic.LoadInt32(&changeCount)
	assert.GreaterOrEqual(t, count, int32(1))
	assert.Less(t, count, int32(5), "debouncing should collapse the burst")
}

func TestWatcher_IgnoresUnrelatedFiles(t *testing.T) {
	tests := []struct {
		fileName string
		relevant bool
	}{
		{modulesFileName, true},
		{dependenciesFileName, true},
		{"config.yaml", false},
		{"modules.yaml.swp", false},
	}

	for _, tt := range tests {
		t.Run(tt.fileName, func(t *testing.T) {
			assert.Equal(t, tt.relevant, isCatalogFile(tt.fileName))
		})
	}
}

func TestWatcher_CheckForChangesPolling(t *testing.T) {
	dir := t.TempDir()
	watcher := NewWatcher(WatcherConfig{Dir: dir})

	// Nothing seen yet
	assert.False(t, watcher.checkForChanges())

	path := filepath.Join(dir, modulesFileName)
	require.NoError(t, os.WriteFile(path, []byte("modules: []\n"), 0644))
	// First sighting only records the mod time
	assert.False(t, watcher.checkForChanges())

	later := time.Now().Add(time.Minute)
	require.NoError(t, os.Chtimes(path, later, later))
	assert.True(t, watcher.checkForChanges())
	assert.False(t, watcher.checkForChanges())

	require.NoError(t, os.Remove(path))
	assert.True(t, watcher.checkForChanges())
}
