package source

import (
	"context"

	"github.com/breardon2011/mitigationDB/internal/core"
	"github.com/breardon2011/mitigationDB/internal/logging"
)

// Fetcher loads rule definitions from an external source, e.g. a file on
// disk or a GitHub repository.
type Fetcher interface {
	Fetch(ctx context.Context, log logging.InternalLogger) ([]core.Rule, error)
}
