package cache

import (
	"context"
	"fmt"

	lru "github.com/hashicorp/golang-lru/v2"
	log "github.com/sirupsen/logrus"

	"autostreamml/internal/core/domain"
	"autostreamml/internal/core/ports/output"
)

// ProfileCache memoizes reports by dataset fingerprint and title. A new
// upload changes the fingerprint, so a stale report is never served.
type ProfileCache struct {
	next    ports.Profiler
	reports *lru.Cache[string, *domain.ProfileReport]
}

var _ ports.Profiler = (*ProfileCache)(nil)

// NewProfileCache wraps next. A size of 0 disables caching and returns next.
func NewProfileCache(next ports.Profiler, size int) (ports.Profiler, error) {
	if size <= 0 {
		return next, nil
	}
	reports, err := lru.New[string, *domain.ProfileReport](size)
	if err != nil {
		return nil, fmt.Errorf("failed to create profile cache: %w", err)
	}
	return &ProfileCache{next: next, reports: reports}, nil
}

func (c *ProfileCache) Profile(ctx context.Context, ds *domain.Dataset, title string) (*domain.ProfileReport, error) {
	key := ds.Fingerprint() + "\x00" + title
	if report, ok := c.reports.Get(key); ok {
		log.WithField("fingerprint", report.Fingerprint).Debug("Profile cache hit")
		return report, nil
	}

	report, err := c.next.Profile(ctx, ds, title)
	if err != nil {
		return nil, err
	}
	c.reports.Add(key, report)
	return report, nil
}

func (c *ProfileCache) Len() int {
	return c.reports.Len()
}
