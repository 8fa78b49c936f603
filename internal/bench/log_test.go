package bench

import (
	"encoding/json"
	"os"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestNewRecord(t *testing.T) {
	res := Result{Runs: 100, Average: 2 * time.Millisecond, Best: time.Millisecond}
	rec := NewRecord("linux-amd64-vulkan", "WebGPU", "greedy", res)

	assert.NotEmpty(t, rec.Session)
	assert.Equal(t, "linux-amd64-vulkan", rec.Target)
	assert.Equal(t, "WebGPU", rec.Engine)
	assert.Equal(t, "greedy", rec.Scheduler)
	assert.Equal(t, 100, rec.Runs)
	assert.InDelta(t, 2.0, rec.AverageMs, 1e-9)
	assert.InDelta(t, 1.0, rec.BestMs, 1e-9)
	assert.False(t, rec.Timestamp.IsZero())

	// Session ids must be unique across records.
	other := NewRecord("linux-amd64-vulkan", "WebGPU", "", res)
	assert.NotEqual(t, rec.Session, other.Session)
}

func TestWriteLog(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecord("windows-amd64-d3d12", "WebGPU", "", Result{Runs: 10, Average: time.Millisecond, Best: time.Millisecond})

	path, err := WriteLog(dir, rec)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var got Record
	require.NoError(t, json.Unmarshal(data, &got))
	assert.Equal(t, rec.Session, got.Session)
	assert.Equal(t, rec.Target, got.Target)
	assert.Equal(t, rec.Runs, got.Runs)
}

func TestWriteLogOmitsEmptyScheduler(t *testing.T) {
	dir := t.TempDir()
	rec := NewRecord("t", "e", "", Result{Runs: 1})

	path, err := WriteLog(dir, rec)
	require.NoError(t, err)

	data, err := os.ReadFile(path)
	require.NoError(t, err)
	assert.NotContains(t, string(data), "scheduler")
}
