package mem

import (
	"fmt"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestTaskResultsLifecycle(t *testing.T) {
	store := NewTaskResults()

	store.Create("t1")
	rec, ok := store.Get("t1")
	require.True(t, ok)
	assert.Equal(t, StatusProcessing, rec.Status)
	assert.Empty(t, rec.Logs)
	assert.Nil(t, rec.Result)

	store.AppendLog("t1", "step one")
	store.AppendLog("t1", "step two")
	rec, _ = store.Get("t1")
	require.Len(t, rec.Logs, 2)
	assert.Regexp(t, `^\[\d{2}:\d{2}:\d{2}\] step one$`, rec.Logs[0])

	store.Finish("t1", StatusCompleted, map[string]interface{}{"success": true})
	rec, _ = store.Get("t1")
	assert.Equal(t, StatusCompleted, rec.Status)
	assert.Equal(t, true, rec.Result["success"])
}

func TestTaskResultsUnknownID(t *testing.T) {
	store := NewTaskResults()

	_, ok := store.Get("missing")
	assert.False(t, ok)

	// writes to unknown tasks are dropped silently
	store.AppendLog("missing", "nope")
	store.Finish("missing", StatusFailed, nil)
	_, ok = store.Get("missing")
	assert.False(t, ok)
}

func TestTaskResultsGetCopiesLogs(t *testing.T) {
	store := NewTaskResults()
	store.Create("t1")
	store.AppendLog("t1", "first")

	rec, _ := store.Get("t1")
	rec.Logs[0] = "mutated"

	fresh, _ := store.Get("t1")
	assert.Contains(t, fresh.Logs[0], "first")
}

func TestTaskResultsPrunesStaleFinishedRecords(t *testing.T) {
	store := NewTaskResults()
	base := time.Now()
	store.now = func() time.Time { return base }

	for i := 0; i < maxRecords+1; i++ {
		id := fmt.Sprintf("old-%d", i)
		store.Create(id)
		store.Finish(id, StatusCompleted, nil)
	}
	store.Create("still-processing")

	store.now = func() time.Time { return base.Add(recordTTL + time.Hour) }
	store.Create("fresh")

	_, ok := store.Get("old-0")
	assert.False(t, ok)
	_, ok = store.Get("still-processing")
	assert.True(t, ok)
	_, ok = store.Get("fresh")
	assert.True(t, ok)
}
