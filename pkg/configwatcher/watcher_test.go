package configwatcher

import (
	"adaptive_lms_backend/internal/config"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const baseConfig = `
scoring:
  default_pass_percent: 70
  mastery_high: 80
  mastery_medium: 50
`

const updatedConfig = `
scoring:
  default_pass_percent: 60
  mastery_high: 90
  mastery_medium: 40
`

func TestWatchReloadsOnWrite(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte(baseConfig), 0o644))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	reloaded := make(chan *config.Config, 1)
	done := make(chan error, 1)
	go func() {
		done <- Watch(ctx, dir, func(cfg *config.Config) {
			select {
			case reloaded <- cfg:
			default:
			}
		})
	}()

	time.Sleep(300 * time.Millisecond)
	require.NoError(t, os.WriteFile(path, []byte(updatedConfig), 0o644))

	select {
	case cfg := <-reloaded:
		assert.Equal(t, 90, cfg.Scoring.MasteryHigh)
		assert.Equal(t, 40, cfg.Scoring.MasteryMedium)
	case <-time.After(5 * time.Second):
		t.Fatal("config was not reloaded")
	}

	cancel()
	select {
	case err := <-done:
		assert.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("watcher did not stop")
	}
}

func TestWatchMissingDir(t *testing.T) {
	err := Watch(context.Background(), filepath.Join(t.TempDir(), "missing"), func(*config.Config) {})
	assert.Error(t, err)
}
