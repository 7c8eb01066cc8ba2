// pkg/mem/task_results.go
package mem

import (
	"fmt"
	"sync"
	"time"
)

const (
	StatusProcessing = "processing"
	StatusCompleted  = "completed"
	StatusFailed     = "failed"
	StatusExpired    = "expired"
)

const (
	maxRecords = 1000
	recordTTL  = 2 * time.Hour
)

// TaskRecord is everything the status endpoint exposes for one task.
// Result stays null until the task reaches a terminal status.
type TaskRecord struct {
	Status string                 `json:"status"`
	Logs   []string               `json:"logs"`
	Result map[string]interface{} `json:"result"`
}

type TaskResultStore interface {
	Create(taskID string)

	// AppendLog adds a timestamped line to the task's log trail.
	// Unknown task IDs are ignored.
	AppendLog(taskID string, message string)

	// Finish sets the terminal status and result for a task.
	Finish(taskID string, status string, result map[string]interface{})

	Get(taskID string) (TaskRecord, bool)
}

type taskEntry struct {
	record    TaskRecord
	updatedAt time.Time
}

type TaskResults struct {
	mu   sync.RWMutex
	data map[string]*taskEntry
	now  func() time.Time
}

func NewTaskResults() *TaskResults {
	return &TaskResults{
		data: make(map[string]*taskEntry),
		now:  time.Now,
	}
}

func (s *TaskResults) Create(taskID string) {
	s.mu.Lock()
	defer s.mu.Unlock()
	s.data[taskID] = &taskEntry{
		record:    TaskRecord{Status: StatusProcessing, Logs: []string{}},
		updatedAt: s.now(),
	}
	s.pruneLocked()
}

func (s *TaskResults) AppendLog(taskID string, message string) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[taskID]
	if !ok {
		return
	}
	line := fmt.Sprintf("[%s] %s", s.now().Format("15:04:05"), message)
	e.record.Logs = append(e.record.Logs, line)
	e.updatedAt = s.now()
}

func (s *TaskResults) Finish(taskID string, status string, result map[string]interface{}) {
	s.mu.Lock()
	defer s.mu.Unlock()

	e, ok := s.data[taskID]
	if !ok {
		return
	}
	e.record.Status = status
	e.record.Result = result
	e.updatedAt = s.now()
}

func (s *TaskResults) Get(taskID string) (TaskRecord, bool) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	e, ok := s.data[taskID]
	if !ok {
		return TaskRecord{}, false
	}
	// copy the log slice, writers keep appending to theirs
	rec := e.record
	rec.Logs = append([]string(nil), e.record.Logs...)
	return rec, true
}

// pruneLocked drops stale finished records once the map grows past the cap.
// Records still processing are never dropped.
func (s *TaskResults) pruneLocked() {
	if len(s.data) <= maxRecords {
		return
	}
	cutoff := s.now().Add(-recordTTL)
	for id, e := range s.data {
		if e.record.Status != StatusProcessing && e.updatedAt.Before(cutoff) {
			delete(s.data, id)
		}
	}
}
