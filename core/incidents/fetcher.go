package incidents

import (
	"context"
	"time"

	"incidents-dashboard/core/utils"
)

// Source is the document store boundary: one bulk read of a named collection.
type Source interface {
	FetchAll(ctx context.Context, collection string) ([]RawRecord, error)
}

type SourceFunc func(ctx context.Context, collection string) ([]RawRecord, error)

func (f SourceFunc) FetchAll(ctx context.Context, collection string) ([]RawRecord, error) {
	return f(ctx, collection)
}

type Fetcher struct {
	source     Source
	collection string
	timeout    time.Duration
	logger     *utils.Logger
}

func NewFetcher(source Source, collection string, timeout time.Duration, logger *utils.Logger) *Fetcher {
	if collection == "" {
		collection = DefaultCollection
	}
	return &Fetcher{source: source, collection: collection, timeout: timeout, logger: logger}
}

func (f *Fetcher) Collection() string {
	return f.collection
}

// LoadAll reads the whole collection. It returns either every incident or a *LoadError.
func (f *Fetcher) LoadAll(ctx context.Context) ([]Incident, error) {
	if f.timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, f.timeout)
		defer cancel()
	}
	start := time.Now()
	recs, err := f.source.FetchAll(ctx, f.collection)
	if err != nil {
		le := newLoadError(f.collection, err)
		f.logger.Errorf("incidents load failed collection=%s kind=%s: %v", f.collection, le.Kind, err)
		return nil, le
	}
	items := NormalizeAll(recs)
	f.logger.Debugf("incidents loaded collection=%s count=%d dur=%s", f.collection, len(items), time.Since(start))
	return items, nil
}
