package bench

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/google/uuid"
)

// Record captures one benchmark session for the JSON session log.
type Record struct {
	Session   string    `json:"session"`
	Target    string    `json:"target"`
	Engine    string    `json:"engine"`
	Scheduler string    `json:"scheduler,omitempty"`
	Runs      int       `json:"runs"`
	AverageMs float64   `json:"average_ms"`
	BestMs    float64   `json:"best_ms"`
	Timestamp time.Time `json:"timestamp"`
}

// NewRecord builds a session record with a fresh session id.
func NewRecord(target, engine, scheduler string, res Result) Record {
	return Record{
		Session:   uuid.NewString(),
		Target:    target,
		Engine:    engine,
		Scheduler: scheduler,
		Runs:      res.Runs,
		AverageMs: res.AverageMilliseconds(),
		BestMs:    res.BestMilliseconds(),
		Timestamp: time.Now(),
	}
}

// WriteLog appends the record to a timestamped JSON file under dir,
// creating the directory if needed. Returns the file path.
func WriteLog(dir string, rec Record) (string, error) {
	if err := os.MkdirAll(dir, 0o755); err != nil {
		return "", fmt.Errorf("bench: creating log directory: %w", err)
	}

	name := fmt.Sprintf("blur_%s.json", rec.Timestamp.Format("20060102_150405"))
	path := filepath.Join(dir, name)

	data, err := json.MarshalIndent(rec, "", "  ")
	if err != nil {
		return "", fmt.Errorf("bench: marshaling record: %w", err)
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("bench: writing log: %w", err)
	}
	return path, nil
}
