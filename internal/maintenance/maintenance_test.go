package maintenance

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/goleak"
)

func TestMain(m *testing.M) {
	goleak.VerifyTestMain(m)
}

type fakeStore struct {
	mu          sync.Mutex
	sweeps      int
	checkpoints int
	purge       int
	sweepErr    error
}

func (f *fakeStore) EmptyExpiredTrash(context.Context) (int, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.sweeps++
	return f.purge, f.sweepErr
}

func (f *fakeStore) Checkpoint(context.Context) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.checkpoints++
	return nil
}

func (f *fakeStore) counts() (int, int) {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.sweeps, f.checkpoints
}

func quietConfig(interval time.Duration) Config {
	return Config{Interval: interval, Logger: slog.New(slog.NewTextHandler(io.Discard, nil))}
}

func TestConfig_ApplyDefaults(t *testing.T) {
	var cfg Config
	cfg.applyDefaults()

	assert.Equal(t, DefaultInterval, cfg.Interval)
	assert.NotNil(t, cfg.Logger)
}

func TestTick_SweepsAndSkipsIdleCheckpoint(t *testing.T) {
	store := &fakeStore{}
	r := NewRunner(store, store, quietConfig(time.Hour))

	r.tick(context.Background())

	sweeps, checkpoints := store.counts()
	assert.Equal(t, 1, sweeps)
	assert.Equal(t, 0, checkpoints)
	assert.Equal(t, int64(1), r.GetStats().Ticks)
}

func TestTick_CheckpointsAfterWrites(t *testing.T) {
	store := &fakeStore{}
	r := NewRunner(store, store, quietConfig(time.Hour))

	r.RecordSave()
	r.RecordSave()
	r.tick(context.Background())

	_, checkpoints := store.counts()
	assert.Equal(t, 1, checkpoints)
	assert.Equal(t, int64(0), r.saves.Load())
	assert.Equal(t, int64(1), r.GetStats().WALCheckpoints)
}

func TestTick_CountsPurgedTrash(t *testing.T) {
	store := &fakeStore{purge: 3}
	r := NewRunner(store, nil, quietConfig(time.Hour))

	r.tick(context.Background())
	r.tick(context.Background())

	assert.Equal(t, int64(6), r.GetStats().TrashPurged)
}

func TestTick_SweepErrorIsLogged(t *testing.T) {
	store := &fakeStore{sweepErr: errors.New("database is locked")}
	r := NewRunner(store, store, quietConfig(time.Hour))

	r.tick(context.Background())

	assert.Equal(t, int64(0), r.GetStats().TrashPurged)
	assert.Equal(t, int64(1), r.GetStats().Ticks)
}

func TestRun_ContextCancel(t *testing.T) {
	store := &fakeStore{}
	r := NewRunner(store, store, quietConfig(10*time.Millisecond))

	ctx, cancel := context.WithCancel(context.Background())
	done := make(chan error, 1)
	go func() { done <- r.Run(ctx) }()

	require.Eventually(t, func() bool {
		return r.GetStats().Ticks >= 3
	}, 2*time.Second, 5*time.Millisecond)
	cancel()

	select {
	case err := <-done:
		require.NoError(t, err)
	case <-time.After(2 * time.Second):
		t.Fatal("Run did not stop after context cancel")
	}
}
