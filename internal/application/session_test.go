package app

import (
	"context"
	"testing"

	"github.com/stretchr/testify/require"

	"agar-mic/internal/domain/entity"
	"agar-mic/internal/infrastructure/storage"
)

func TestSessionService_BeginAndCancel(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	session, err := svc.Begin(ctx, 1, 10, "ceftazidime")
	require.NoError(t, err)
	require.Equal(t, entity.StateCollectingPlates, session.State)
	require.Equal(t, "ceftazidime", session.Drug)

	session, err = svc.Cancel(ctx, 1, 10)
	require.NoError(t, err)
	require.Equal(t, entity.StateMainMenu, session.State)
	require.Empty(t, session.Drug)
}

func TestSessionService_SetState(t *testing.T) {
	repo := storage.NewMemorySessionRepository()
	svc := NewSessionService(repo)
	ctx := context.Background()

	session, err := svc.SetState(ctx, 2, 20, entity.StateProcessing)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, session.State)

	stored, err := svc.Get(ctx, 2, 20)
	require.NoError(t, err)
	require.Equal(t, entity.StateProcessing, stored.State)
}
