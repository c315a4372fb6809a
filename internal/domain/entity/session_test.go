package entity

import (
	"testing"

	"github.com/stretchr/testify/require"
)

func TestNewSession_DefaultState(t *testing.T) {
	s := NewSession(1, 10)
	require.Equal(t, StateMainMenu, s.State)
	require.Equal(t, int64(1), s.ID)
	require.Equal(t, int64(10), s.ChatID)
}

func TestSession_AddEntryReplacesConcentration(t *testing.T) {
	s := NewSession(1, 10)
	s.Begin("ceftazidime")
	require.Equal(t, StateCollectingPlates, s.State)

	s.AddEntry(SeriesEntry{Concentration: 1, Source: "first"})
	s.AddEntry(SeriesEntry{Concentration: 2, Source: "second"})
	s.AddEntry(SeriesEntry{Concentration: 1, Source: "retake"})
	require.Len(t, s.Entries, 2)
	require.Equal(t, "retake", s.Entries[0].Source)

	s.Reset()
	require.Equal(t, StateMainMenu, s.State)
	require.Empty(t, s.Entries)
	require.Empty(t, s.Drug)
}

func TestSession_SeriesAdvancesOnBeginAndReset(t *testing.T) {
	s := NewSession(1, 10)
	require.Zero(t, s.Series)

	s.Begin("ceftazidime")
	first := s.Series
	s.Reset()
	require.Greater(t, s.Series, first)

	afterReset := s.Series
	s.Begin("ceftazidime")
	require.Greater(t, s.Series, afterReset)

	s.SetState(StateProcessing)
	s.AddEntry(SeriesEntry{Concentration: 1})
	require.Equal(t, afterReset+1, s.Series)
}
