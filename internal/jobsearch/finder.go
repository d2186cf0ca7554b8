package jobsearch

import (
	"context"
	"strings"

	"github.com/rs/zerolog"
)

type Searcher interface {
	Search(ctx context.Context, query string, page int) ([]Record, error)
}

// Finder serves reshaped jobs for a location, reading through the cache
// when one is configured. Cache errors never fail a lookup.
type Finder struct {
	searcher Searcher
	cache    *Cache
	log      zerolog.Logger
}

func NewFinder(searcher Searcher, cache *Cache, log zerolog.Logger) *Finder {
	return &Finder{searcher: searcher, cache: cache, log: log}
}

func (f *Finder) Find(ctx context.Context, location string) ([]Job, error) {
	location = strings.TrimSpace(location)
	if location == "" {
		location = DefaultLocation
	}

	if f.cache != nil {
		jobs, ok, err := f.cache.Get(ctx, location)
		if err != nil {
			f.log.Warn().Err(err).Str("location", location).Msg("job cache read failed")
		} else if ok {
			return jobs, nil
		}
	}

	records, err := f.searcher.Search(ctx, Query(location), 1)
	if err != nil {
		return nil, err
	}
	jobs := Reshape(records)

	if f.cache != nil {
		if err := f.cache.Set(ctx, location, jobs); err != nil {
			f.log.Warn().Err(err).Str("location", location).Msg("job cache write failed")
		}
	}
	return jobs, nil
}
