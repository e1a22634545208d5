package audit

import (
	"encoding/json"
	"fmt"
	"os"
	"sync"

	"github.com/breardon2011/mitigationDB/internal/core"
)

// maxBufferedRecords bounds the in-memory tail the file auditor keeps for
// GetRecent and Find. The file on disk holds the full history.
const maxBufferedRecords = 1000

var _ core.Auditor = (*FileAuditor)(nil)

// FileAuditor appends audit records to a file as JSON lines and keeps a
// bounded in-memory tail for queries.
type FileAuditor struct {
	mu      sync.Mutex
	file    *os.File
	encoder *json.Encoder
	tail    []core.AuditRecord
}

func NewFileAuditor(filePath string) (*FileAuditor, error) {
	file, err := os.OpenFile(filePath, os.O_APPEND|os.O_CREATE|os.O_WRONLY, 0600)
	if err != nil {
		return nil, fmt.Errorf("opening audit log file: %w", err)
	}
	return &FileAuditor{
		file:    file,
		encoder: json.NewEncoder(file),
		tail:    make([]core.AuditRecord, 0),
	}, nil
}

func (f *FileAuditor) Log(record core.AuditRecord) error {
	f.mu.Lock()
	defer f.mu.Unlock()

	if err := f.encoder.Encode(record); err != nil {
		return fmt.Errorf("writing audit log record: %w", err)
	}

	f.tail = append(f.tail, record)
	if len(f.tail) > maxBufferedRecords {
		f.tail = f.tail[1:]
	}
	return nil
}

func (f *FileAuditor) GetRecent(limit int) ([]core.AuditRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	if limit > len(f.tail) {
		limit = len(f.tail)
	}
	start := len(f.tail) - limit
	records := make([]core.AuditRecord, limit)
	copy(records, f.tail[start:])

	return records, nil
}

func (f *FileAuditor) Find(filter func(record core.AuditRecord) bool, limit int) ([]core.AuditRecord, error) {
	f.mu.Lock()
	defer f.mu.Unlock()

	var matches []core.AuditRecord
	for _, record := range f.tail {
		if filter(record) {
			matches = append(matches, record)
		}
	}

	if len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}

	return matches, nil
}

func (f *FileAuditor) Close() error {
	f.mu.Lock()
	defer f.mu.Unlock()
	return f.file.Close()
}
