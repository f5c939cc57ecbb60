package indicators

import (
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
)

// Indicators is the running productivity summary, one singleton document
// per metrics store. Read-modify-written on every event.
type Indicators struct {
	SessionStart     string         `json:"session_start"`
	CommandsExecuted int            `json:"commands_executed"`
	ToolsUsed        map[string]int `json:"tools_used"`
	FilesModified    int            `json:"files_modified"`
	LinesChanged     int            `json:"lines_changed"`
	AgentsInvoked    map[string]int `json:"agents_invoked"`
	SuccessRate      float64        `json:"success_rate"`
	LastActivity     *string        `json:"last_activity"`
}

// New returns a fresh document with zeroed counters and a 100% success
// rate, started at the given timestamp.
func New(start string) *Indicators {
	return &Indicators{
		SessionStart:  start,
		ToolsUsed:     map[string]int{},
		AgentsInvoked: map[string]int{},
		SuccessRate:   100.0,
	}
}

// Store persists the indicators document. Injected into the aggregator so
// tests can substitute an in-memory double.
type Store interface {
	// Load returns the current document, or (nil, nil) when none exists yet.
	Load() (*Indicators, error)
	// Save persists the document.
	Save(*Indicators) error
}

// FileStore keeps the document as a single indented JSON file.
type FileStore struct {
	path string
}

// NewFileStore creates a store backed by the given file path.
func NewFileStore(path string) *FileStore {
	return &FileStore{path: path}
}

// Load implements Store. A missing file means no document yet.
func (s *FileStore) Load() (*Indicators, error) {
	data, err := os.ReadFile(s.path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, fmt.Errorf("indicators: read %s: %w", s.path, err)
	}

	var ind Indicators
	if err := json.Unmarshal(data, &ind); err != nil {
		return nil, fmt.Errorf("indicators: parse %s: %w", s.path, err)
	}
	if ind.ToolsUsed == nil {
		ind.ToolsUsed = map[string]int{}
	}
	if ind.AgentsInvoked == nil {
		ind.AgentsInvoked = map[string]int{}
	}
	return &ind, nil
}

// Save implements Store.
func (s *FileStore) Save(ind *Indicators) error {
	if err := os.MkdirAll(filepath.Dir(s.path), 0750); err != nil {
		return fmt.Errorf("indicators: create directory: %w", err)
	}
	data, err := json.MarshalIndent(ind, "", "  ")
	if err != nil {
		return fmt.Errorf("indicators: marshal: %w", err)
	}
	if err := os.WriteFile(s.path, data, 0600); err != nil {
		return fmt.Errorf("indicators: write %s: %w", s.path, err)
	}
	return nil
}
