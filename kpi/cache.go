package kpi

import (
	"campaign-kpi/errors"
	"campaign-kpi/metrics"
	"campaign-kpi/models"
	"encoding/binary"
	"fmt"
	"math"
	"time"

	"github.com/cespare/xxhash/v2"
	"github.com/dgraph-io/ristretto/v2"
)

// cachedReport is one memoized Report call.
type cachedReport struct {
	report   *models.Report
	rejected []*errors.RecordError
}

// Cache memoizes Engine.Report by a fingerprint of the records snapshot and
// the query. Cached reports are shared between callers and must be treated
// as read-only.
type Cache struct {
	engine *Engine
	store  *ristretto.Cache[uint64, cachedReport]
	ttl    time.Duration
}

// NewCache wraps engine with a cache holding up to maxEntries reports for
// ttl each. A non-positive ttl keeps entries until evicted.
func NewCache(engine *Engine, maxEntries int64, ttl time.Duration) (*Cache, error) {
	if maxEntries <= 0 {
		maxEntries = 1024
	}
	store, err := ristretto.NewCache(&ristretto.Config[uint64, cachedReport]{
		NumCounters: maxEntries * 10,
		MaxCost:     maxEntries,
		BufferItems: 64,
		// every entry costs 1, so MaxCost is an entry count
		IgnoreInternalCost: true,
	})
	if err != nil {
		return nil, fmt.Errorf("error creating report cache: %w", err)
	}
	return &Cache{engine: engine, store: store, ttl: ttl}, nil
}

// Report returns the memoized report for (records, q), computing it on a
// miss. Errors are never cached.
func (c *Cache) Report(records []models.DailyRecord, q models.Query) (*models.Report, []*errors.RecordError, error) {
	key := fingerprint(records, q)
	if entry, ok := c.store.Get(key); ok {
		metrics.CacheRequestsTotal.WithLabelValues("hit").Inc()
		return entry.report, entry.rejected, nil
	}
	metrics.CacheRequestsTotal.WithLabelValues("miss").Inc()

	report, rejected, err := c.engine.Report(records, q)
	if err != nil {
		return nil, rejected, err
	}

	entry := cachedReport{report: report, rejected: rejected}
	if c.ttl > 0 {
		c.store.SetWithTTL(key, entry, 1, c.ttl)
	} else {
		c.store.Set(key, entry, 1)
	}
	c.store.Wait()
	return report, rejected, nil
}

// Close releases the cache's background goroutines.
func (c *Cache) Close() {
	c.store.Close()
}

// fingerprint hashes every field that affects a report.
func fingerprint(records []models.DailyRecord, q models.Query) uint64 {
	d := xxhash.New()
	buf := make([]byte, 0, 64)

	buf = binary.LittleEndian.AppendUint64(buf, uint64(q.CampaignID))
	buf = append(buf, q.Start.String()...)
	buf = append(buf, '|')
	buf = append(buf, q.End.String()...)
	buf = append(buf, '|')
	buf = append(buf, q.AsOf.String()...)
	buf = append(buf, '|')
	buf = append(buf, q.Unit...)
	if q.ShowEmptyDays {
		buf = append(buf, 1)
	} else {
		buf = append(buf, 0)
	}
	_, _ = d.Write(buf)

	for _, r := range records {
		buf = buf[:0]
		buf = append(buf, r.Date.String()...)
		buf = binary.LittleEndian.AppendUint64(buf, math.Float64bits(r.Hours))
		_, _ = d.Write(buf)
	}
	return d.Sum64()
}
