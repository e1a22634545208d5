package audit

import (
	"sync"

	"github.com/breardon2011/mitigationDB/internal/core"
)

var _ core.Auditor = (*InMemoryAuditor)(nil)

// InMemoryAuditor is an auditor that stores audit records in memory.
type InMemoryAuditor struct {
	mu      sync.Mutex
	records []core.AuditRecord
}

func NewInMemoryAuditor() *InMemoryAuditor {
	return &InMemoryAuditor{
		records: make([]core.AuditRecord, 0),
	}
}

func (i *InMemoryAuditor) Log(record core.AuditRecord) error {
	i.mu.Lock()
	defer i.mu.Unlock()

	i.records = append(i.records, record)
	return nil
}

func (i *InMemoryAuditor) GetRecent(limit int) ([]core.AuditRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	if limit > len(i.records) {
		limit = len(i.records)
	}
	start := len(i.records) - limit
	records := make([]core.AuditRecord, limit)
	copy(records, i.records[start:])

	return records, nil
}

func (i *InMemoryAuditor) Find(filter func(record core.AuditRecord) bool, limit int) ([]core.AuditRecord, error) {
	i.mu.Lock()
	defer i.mu.Unlock()

	var matches []core.AuditRecord
	for _, record := range i.records {
		if filter(record) {
			matches = append(matches, record)
		}
	}

	if len(matches) > limit {
		matches = matches[len(matches)-limit:]
	}

	return matches, nil
}

func (i *InMemoryAuditor) Close() error {
	return nil // nothing to close :)
}
