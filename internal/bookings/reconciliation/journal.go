// Package reconciliation keeps the local record of charges that need an operator.
package reconciliation

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"sync"

	"k9harmony/pkg/model"
)

type Journal interface {
	Append(ctx context.Context, rec *model.ReconciliationRecord) error
}

// FileJournal appends one JSON document per line and syncs after every write.
type FileJournal struct {
	path string
	mu   sync.Mutex
}

func NewFileJournal(path string) *FileJournal {
	return &FileJournal{path: path}
}

func (j *FileJournal) Path() string {
	return j.path
}

func (j *FileJournal) Append(_ context.Context, rec *model.ReconciliationRecord) error {
	line, err := json.Marshal(rec)
	if err != nil {
		return fmt.Errorf("encode reconciliation record: %w", err)
	}
	line = append(line, '\n')

	j.mu.Lock()
	defer j.mu.Unlock()

	f, err := os.OpenFile(j.path, os.O_CREATE|os.O_APPEND|os.O_WRONLY, 0o600)
	if err != nil {
		return fmt.Errorf("open reconciliation journal: %w", err)
	}
	if _, err := f.Write(line); err != nil {
		_ = f.Close()
		return fmt.Errorf("write reconciliation journal: %w", err)
	}
	if err := f.Sync(); err != nil {
		_ = f.Close()
		return fmt.Errorf("sync reconciliation journal: %w", err)
	}
	return f.Close()
}

// Read decodes a journal. A torn final line from a crash mid-write is skipped.
func Read(r io.Reader) ([]model.ReconciliationRecord, error) {
	var records []model.ReconciliationRecord
	scanner := bufio.NewScanner(r)
	scanner.Buffer(make([]byte, 64*1024), 1024*1024)

	var pending error
	for lineNo := 1; scanner.Scan(); lineNo++ {
		if pending != nil {
			return nil, pending
		}
		raw := scanner.Bytes()
		if len(raw) == 0 {
			continue
		}
		var rec model.ReconciliationRecord
		if err := json.Unmarshal(raw, &rec); err != nil {
			pending = fmt.Errorf("reconciliation journal line %d: %w", lineNo, err)
			continue
		}
		records = append(records, rec)
	}
	if err := scanner.Err(); err != nil {
		return nil, err
	}
	return records, nil
}

func ReadFile(path string) ([]model.ReconciliationRecord, error) {
	f, err := os.Open(path)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, nil
		}
		return nil, err
	}
	defer f.Close()
	return Read(f)
}
