package reportstore

import (
	"context"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"github.com/yanqian/swing-coach/internal/domain/report"
)

func TestMemoryStore_SaveAndGet(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	record := report.ReportRecord{
		ID:        "rep-1",
		Report:    report.SwingReport{PlayerName: "Jordan"},
		CreatedAt: time.Now(),
	}
	require.NoError(t, store.SaveReport(ctx, record, time.Hour))

	got, found, err := store.GetReport(ctx, "rep-1")
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "Jordan", got.Report.PlayerName)

	_, found, err = store.GetReport(ctx, "missing")
	require.NoError(t, err)
	require.False(t, found)
}

func TestMemoryStore_LatestTracksNewestSave(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	_, found, err := store.Latest(ctx)
	require.NoError(t, err)
	require.False(t, found)

	require.NoError(t, store.SaveReport(ctx, report.ReportRecord{ID: "rep-1"}, time.Hour))
	require.NoError(t, store.SaveReport(ctx, report.ReportRecord{ID: "rep-2"}, time.Hour))

	got, found, err := store.Latest(ctx)
	require.NoError(t, err)
	require.True(t, found)
	require.Equal(t, "rep-2", got.ID)
}

func TestMemoryStore_ExpiredReportIsGone(t *testing.T) {
	store := NewMemoryStore()
	ctx := context.Background()

	require.NoError(t, store.SaveReport(ctx, report.ReportRecord{ID: "rep-1"}, -time.Second))

	_, found, err := store.GetReport(ctx, "rep-1")
	require.NoError(t, err)
	require.False(t, found)

	_, found, err = store.Latest(ctx)
	require.NoError(t, err)
	require.False(t, found)
}
