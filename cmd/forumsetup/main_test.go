package main

import (
	"bytes"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/mmrzaf/forumsetup/internal/domain"
)

func TestPrintRunsShortensIDs(t *testing.T) {
	started := time.Date(2026, 1, 2, 3, 4, 5, 0, time.UTC)
	runs := []*domain.InstallRun{
		{ID: "0f8e2c1a-5b3d-4e6f-9a7b-1c2d3e4f5a6b", Status: domain.RunStatusCompleted, StartedAt: started},
		{ID: "r1", Status: domain.RunStatusMoreWork, NextTask: "add_bots", StartedAt: started},
		{ID: "", Status: domain.RunStatusFailed, StartedAt: started, Error: "boom"},
	}

	var buf bytes.Buffer
	require.NotPanics(t, func() { require.NoError(t, printRuns(&buf, runs)) })

	out := buf.String()
	assert.Contains(t, out, "0f8e2c1a ")
	assert.NotContains(t, out, "0f8e2c1a-")
	assert.Contains(t, out, "r1")
	assert.Contains(t, out, "add_bots")
	assert.Contains(t, out, "boom")
}

func TestShortID(t *testing.T) {
	assert.Equal(t, "abcdefgh", shortID("abcdefghijkl"))
	assert.Equal(t, "abc", shortID("abc"))
	assert.Equal(t, "", shortID(""))
}
