package uniprot

import (
	"context"
	"fmt"
	"time"

	lru "github.com/hashicorp/golang-lru/v2"
	"golang.org/x/sync/singleflight"

	"proteinstruct/internal/protein"
)

// DefaultCacheSize bounds the number of memoized (species, max count) outcomes.
const DefaultCacheSize = 32

// Source downloads a proteome; *Client implements it.
type Source interface {
	Proteome(ctx context.Context, sp Species, maxCount int) ([]protein.Record, error)
}

type cacheKey struct {
	species  string
	maxCount int
}

// result is one memoized download outcome; err is kept so a failed pair is
// not requested again.
type result struct {
	records []protein.Record
	err     error
}

// Fetcher memoizes proteome downloads per (species, max count). Failed
// downloads are memoized as well, so a pair reaches the network at most once
// while it stays in the cache.
type Fetcher struct {
	// Timeout bounds the shared download started for a key. Zero means the
	// download is only bounded by the source's own client timeout.
	Timeout time.Duration

	src   Source
	cache *lru.Cache[cacheKey, result]
	group singleflight.Group
}

// NewFetcher wraps src with a cache holding at most size results.
func NewFetcher(src Source, size int) (*Fetcher, error) {
	if size <= 0 {
		size = DefaultCacheSize
	}
	cache, err := lru.New[cacheKey, result](size)
	if err != nil {
		return nil, err
	}
	return &Fetcher{src: src, cache: cache}, nil
}

// Fetch resolves a species by name and returns its records. The returned
// slice is shared with the cache and must not be modified.
//
// Concurrent calls for the same pair share one download. The download runs
// detached from ctx, so a caller that gives up does not fail the others;
// ctx only bounds how long this caller waits.
func (f *Fetcher) Fetch(ctx context.Context, speciesName string, maxCount int) ([]protein.Record, error) {
	sp, err := ParseSpecies(speciesName)
	if err != nil {
		return nil, fmt.Errorf("%w: %q", err, speciesName)
	}
	if maxCount < 1 {
		return nil, ErrInvalidMaxCount
	}

	key := cacheKey{species: sp.Name, maxCount: maxCount}
	if r, ok := f.cache.Get(key); ok {
		return r.records, r.err
	}
	ch := f.group.DoChan(fmt.Sprintf("%s/%d", key.species, key.maxCount), func() (interface{}, error) {
		if r, ok := f.cache.Get(key); ok {
			return r, nil
		}
		dctx, cancel := f.downloadContext(ctx)
		defer cancel()
		recs, err := f.src.Proteome(dctx, sp, maxCount)
		r := result{records: recs, err: err}
		if err != nil {
			r.records = nil
		}
		f.cache.Add(key, r)
		return r, nil
	})
	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		r := res.Val.(result)
		return r.records, r.err
	}
}

func (f *Fetcher) downloadContext(ctx context.Context) (context.Context, context.CancelFunc) {
	detached := context.WithoutCancel(ctx)
	if f.Timeout > 0 {
		return context.WithTimeout(detached, f.Timeout)
	}
	return context.WithCancel(detached)
}

// Forget drops the memoized outcome for a pair so the next Fetch downloads again.
func (f *Fetcher) Forget(speciesName string, maxCount int) {
	sp, err := ParseSpecies(speciesName)
	if err != nil {
		return
	}
	f.cache.Remove(cacheKey{species: sp.Name, maxCount: maxCount})
}

// Cached reports whether an outcome for the pair is memoized.
func (f *Fetcher) Cached(speciesName string, maxCount int) bool {
	sp, err := ParseSpecies(speciesName)
	if err != nil {
		return false
	}
	return f.cache.Contains(cacheKey{species: sp.Name, maxCount: maxCount})
}

// Len is the number of memoized results.
func (f *Fetcher) Len() int {
	return f.cache.Len()
}
