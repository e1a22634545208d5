package audit

import "github.com/breardon2011/mitigationDB/internal/core"

var _ core.Auditor = (*NoopAuditor)(nil)

// NoopAuditor is an auditor that does nothing.
type NoopAuditor struct{}

func NewNoopAuditor() *NoopAuditor {
	return &NoopAuditor{}
}

func (n *NoopAuditor) Log(core.AuditRecord) error {
	// noop
	return nil
}

func (n *NoopAuditor) GetRecent(int) ([]core.AuditRecord, error) {
	return nil, nil
}

func (n *NoopAuditor) Find(func(core.AuditRecord) bool, int) ([]core.AuditRecord, error) {
	return nil, nil
}

func (n *NoopAuditor) Close() error {
	// nothing to close
	return nil
}
