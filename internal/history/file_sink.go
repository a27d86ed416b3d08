package history

import (
	"bufio"
	"encoding/json"
	"fmt"
	"log"
	"os"
	"sync"
)

// fileRecord is one JSON line in a cross-process step log.
type fileRecord struct {
	SessionID string `json:"session_id"`
	Step
}

// FileSink appends steps as JSON lines to a file. It is used by the
// out-of-process workspace tool server, whose steps are merged into the
// orchestrator's recorder before the final artifact is written.
type FileSink struct {
	mu   sync.Mutex
	path string
}

// NewFileSink creates a sink writing to path. The file is created on
// first append.
func NewFileSink(path string) *FileSink {
	return &FileSink{path: path}
}

// Append writes one step as a JSON line. Failures are logged rather than
// returned: a broken step log must not fail the tool call itself.
func (f *FileSink) Append(sessionID string, step Step) {
	f.mu.Lock()
	defer f.mu.Unlock()

	blob, err := json.Marshal(fileRecord{SessionID: sessionID, Step: step})
	if err != nil {
		log.Printf("[History] Failed to marshal step: %v", err)
		return
	}

	file, err := os.OpenFile(f.path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		log.Printf("[History] Failed to open step log %s: %v", f.path, err)
		return
	}
	defer file.Close()

	if _, err := file.Write(append(blob, '\n')); err != nil {
		log.Printf("[History] Failed to append step: %v", err)
	}
}

// MergeFile reads a JSON-lines step log and appends its steps, in file
// order, to the recorder. A missing file is not an error: the run may
// never have invoked a tool.
func (r *Recorder) MergeFile(path string) error {
	file, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil
		}
		return fmt.Errorf("failed to open step log: %w", err)
	}
	defer file.Close()

	scanner := bufio.NewScanner(file)
	scanner.Buffer(make([]byte, 0, 64*1024), 4*1024*1024)
	line := 0
	for scanner.Scan() {
		line++
		var rec fileRecord
		if err := json.Unmarshal(scanner.Bytes(), &rec); err != nil {
			return fmt.Errorf("bad step log line %d: %w", line, err)
		}
		r.Append(rec.SessionID, rec.Step)
	}
	return scanner.Err()
}
