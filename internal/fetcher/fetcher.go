package fetcher

import (
	"context"
	"time"

	"github.com/IshaanNene/BrandLens/internal/types"
)

// Fetcher is one page acquisition strategy in the chain.
type Fetcher interface {
	// Fetch retrieves the content at the given request's URL. The context
	// carries the attempt deadline.
	Fetch(ctx context.Context, req *types.Request) (*types.Document, error)

	// Close releases any resources held by the fetcher.
	Close() error

	// Type returns the strategy tag recorded on documents.
	Type() types.ExtractionMethod

	// Timeout is the fixed per-attempt budget for this strategy.
	Timeout() time.Duration
}
