package services

import (
	"bytes"
	"context"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestMediaSweeperDeletesOldOrphansOnly(t *testing.T) {
	f := newFixture(t)
	ctx := context.Background()
	p := f.createWithCover(t, f.baseInput())

	for _, name := range []string{"uploads/orphan.png", "uploads/fresh.png"} {
		require.NoError(t, f.store.Put(ctx, name, bytes.NewReader(pngHeader), "image/png"))
	}
	old := time.Now().Add(-3 * time.Hour)
	root := f.store.Root()
	require.NoError(t, os.Chtimes(filepath.Join(root, "uploads", "orphan.png"), old, old))
	require.NoError(t, os.Chtimes(filepath.Join(root, filepath.FromSlash(*p.CoverImageURL)), old, old))

	sweeper := NewMediaSweeper(f.db, f.store, time.Hour)
	report, err := sweeper.Sweep(ctx)
	require.NoError(t, err)

	assert.Equal(t, 3, report.Scanned)
	assert.Equal(t, 1, report.Kept)
	assert.Equal(t, 1, report.Recent)
	assert.Equal(t, []string{"uploads/orphan.png"}, report.Deleted)
	assert.False(t, f.exists(t, "uploads/orphan.png"))
	assert.True(t, f.exists(t, "uploads/fresh.png"))
	assert.True(t, f.exists(t, *p.CoverImageURL))
}

func TestSweepSchedulerRejectsBadSpec(t *testing.T) {
	f := newFixture(t)
	_, err := NewSweepScheduler(NewMediaSweeper(f.db, f.store, 0), "not a cron line")
	assert.Error(t, err)

	s, err := NewSweepScheduler(NewMediaSweeper(f.db, f.store, 0), "@every 1h")
	require.NoError(t, err)
	s.Start()
	s.Stop()
}
