package capture

import (
	"context"
	"errors"
	"io"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/runger/cmdvault/internal/commandstore"
	"github.com/runger/cmdvault/internal/prompt"
	"github.com/runger/cmdvault/internal/retention"
	"github.com/runger/cmdvault/internal/storage"
)

func newTestPipeline(t *testing.T, opts Options) (*Pipeline, *commandstore.Store) {
	t.Helper()

	db, err := storage.NewSQLiteStore(filepath.Join(t.TempDir(), "cmdvault.db"))
	require.NoError(t, err)
	t.Cleanup(func() { _ = db.Close() })

	logger := slog.New(slog.NewTextHandler(io.Discard, nil))
	lib := commandstore.New(db, &commandstore.Options{Policy: retention.DefaultPolicy(), Logger: logger})
	cleaner := prompt.New(&prompt.Options{
		Logger:   logger,
		Detector: prompt.NewDetector(prompt.WithLaunchParams(prompt.LaunchParams{ShellPath: "/bin/bash"})),
	})
	return New(cleaner, lib, opts, logger), lib
}

func defaultOptions() Options {
	return Options{MinCommandLength: 2, SkipDuplicates: true, SkipSecrets: true}
}

func TestCapture_Saves(t *testing.T) {
	t.Parallel()

	p, lib := newTestPipeline(t, defaultOptions())
	ctx := context.Background()

	res, err := p.Capture(ctx, "\x1b[32muser@host\x1b[0m:~$ git status")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, res.Outcome)
	assert.Equal(t, "git status", res.Command)
	assert.Equal(t, "git", res.Category)
	assert.Equal(t, prompt.DialectBash, res.Dialect)
	require.NotNil(t, res.Record)
	assert.Equal(t, storage.SourceAutoCapture, res.Record.Source)

	got, err := lib.GetCommand(ctx, res.Record.ID)
	require.NoError(t, err)
	require.NotNil(t, got)
	assert.Equal(t, "git status", got.Command)
}

func TestCapture_Outcomes(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t, defaultOptions())
	ctx := context.Background()

	res, err := p.Capture(ctx, "$ l")
	require.NoError(t, err)
	assert.Equal(t, OutcomeTooShort, res.Outcome)

	res, err = p.Capture(ctx, "   ")
	require.NoError(t, err)
	assert.Equal(t, OutcomeTooShort, res.Outcome)

	res, err = p.Capture(ctx, strings.Repeat("#", prompt.MaxCommandLength))
	require.NoError(t, err)
	assert.Equal(t, OutcomeInvalid, res.Outcome)

	res, err = p.Capture(ctx, "user@host:~$ make build")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, res.Outcome)
	assert.Equal(t, "build", res.Category)

	res, err = p.Capture(ctx, "other@box:/tmp$ make build")
	require.NoError(t, err)
	assert.Equal(t, OutcomeDuplicate, res.Outcome)
}

func TestCapture_SkipsSecrets(t *testing.T) {
	t.Parallel()

	p, lib := newTestPipeline(t, defaultOptions())
	ctx := context.Background()

	res, err := p.Capture(ctx, "user@host:~$ mysql -u root password=hunter2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSecret, res.Outcome)
	assert.NotContains(t, res.Command, "hunter2")
	assert.Nil(t, res.Record)

	count, err := lib.GetCommandCount(ctx)
	require.NoError(t, err)
	assert.Zero(t, count)

	opts := p.Options()
	opts.SkipSecrets = false
	p.SetOptions(opts)
	res, err = p.Capture(ctx, "user@host:~$ mysql -u root password=hunter2")
	require.NoError(t, err)
	assert.Equal(t, OutcomeSaved, res.Outcome)
	assert.Equal(t, "mysql -u root password=hunter2", res.Record.Command)
}

func TestCapture_DuplicatesAllowedWhenNotSkipping(t *testing.T) {
	t.Parallel()

	p, lib := newTestPipeline(t, Options{MinCommandLength: 2})
	ctx := context.Background()

	for i := 0; i < 2; i++ {
		res, err := p.Capture(ctx, "$ ls -la")
		require.NoError(t, err)
		assert.Equal(t, OutcomeSaved, res.Outcome)
	}
	count, err := lib.GetCommandCount(ctx)
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestCapture_ForcedDialectAndSetOptions(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t, defaultOptions())
	ctx := context.Background()

	opts := p.Options()
	opts.Dialect = prompt.DialectPowerShell
	p.SetOptions(opts)

	res, err := p.Capture(ctx, `PS C:\Users\me> Get-ChildItem`)
	require.NoError(t, err)
	assert.Equal(t, prompt.DialectPowerShell, res.Dialect)
	assert.Equal(t, "Get-ChildItem", res.Command)
}

func TestCapture_OnSave(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t, defaultOptions())
	var saved atomic.Int64
	p.OnSave(func(*storage.CommandRecord) { saved.Add(1) })

	_, err := p.Capture(context.Background(), "$ docker ps")
	require.NoError(t, err)
	_, err = p.Capture(context.Background(), "$ docker ps")
	require.NoError(t, err)

	assert.Equal(t, int64(1), saved.Load())
}

func TestFollow(t *testing.T) {
	t.Parallel()

	p, lib := newTestPipeline(t, defaultOptions())
	input := strings.Join([]string{
		"user@host:~$ git pull",
		"",
		"user@host:~$ git pull",
		"$ " + strings.Repeat("x", 200),
		"user@host:~$ npm test",
	}, "\n")

	var bgRan atomic.Bool
	var results []Result
	summary, err := p.Follow(context.Background(), strings.NewReader(input), FollowOptions{
		MaxLineBytes: 100,
		Background: []func(context.Context) error{
			func(ctx context.Context) error {
				bgRan.Store(true)
				<-ctx.Done()
				return nil
			},
		},
		OnResult: func(r Result) { results = append(results, r) },
	})
	require.NoError(t, err)

	assert.Equal(t, &Summary{Lines: 5, Saved: 2, Duplicates: 1, TooShort: 1, Oversized: 1}, summary)
	assert.Len(t, results, 4)
	assert.True(t, bgRan.Load())

	count, err := lib.GetCommandCount(context.Background())
	require.NoError(t, err)
	assert.Equal(t, 2, count)
}

func TestFollow_BackgroundErrorStops(t *testing.T) {
	t.Parallel()

	p, _ := newTestPipeline(t, defaultOptions())
	pr, pw := io.Pipe()
	defer pw.Close()

	boom := errors.New("boom")
	_, err := p.Follow(context.Background(), pr, FollowOptions{
		Background: []func(context.Context) error{
			func(context.Context) error { return boom },
		},
	})
	require.ErrorIs(t, err, boom)
}

func TestReadLines(t *testing.T) {
	t.Parallel()

	out := make(chan line, 10)
	err := readLines(context.Background(), strings.NewReader("a\n"+strings.Repeat("b", 20)+"\nc"), 10, out)
	require.NoError(t, err)
	close(out)

	var got []line
	for l := range out {
		got = append(got, l)
	}
	assert.Equal(t, []line{{text: "a"}, {oversized: true}, {text: "c"}}, got)
}

func TestWatchFile(t *testing.T) {
	t.Parallel()

	dir := t.TempDir()
	path := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("a: 1\n"), 0o600))

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	var changes atomic.Int64
	done := make(chan error, 1)
	go func() {
		done <- WatchFile(ctx, path, 20*time.Millisecond, nil, func() { changes.Add(1) })
	}()

	require.Eventually(t, func() bool {
		_ = os.WriteFile(path, []byte("a: 2\n"), 0o600)
		return changes.Load() > 0
	}, 3*time.Second, 50*time.Millisecond)

	require.NoError(t, os.WriteFile(filepath.Join(dir, "other.txt"), []byte("x"), 0o600))
	cancel()
	require.NoError(t, <-done)
}
