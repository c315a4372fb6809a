package storage

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"agar-mic/internal/domain/entity"
)

func TestMemorySessionRepository_GetCreates(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	s, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, s.State)
	require.Equal(t, int64(10), s.ChatID)
}

func TestMemorySessionRepository_SaveIsolatesCopies(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	s, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	s.Begin("ceftazidime")
	s.AddEntry(entity.SeriesEntry{Concentration: 1})
	require.NoError(t, repo.Save(ctx, s))

	s.AddEntry(entity.SeriesEntry{Concentration: 2})

	stored, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, "ceftazidime", stored.Drug)
	require.Len(t, stored.Entries, 1)
}

func TestMemorySessionRepository_UpdateState(t *testing.T) {
	repo := NewMemorySessionRepository()
	ctx := context.Background()

	_, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.NoError(t, repo.UpdateState(ctx, 1, entity.StateProcessing))

	s, err := repo.Get(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, s.State)

	require.NoError(t, repo.UpdateState(ctx, 99, entity.StateProcessing))
}
