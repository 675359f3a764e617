package exchange

import (
	"fmt"
	"sync"
	"time"

	"CryptoSentry/internal/model"
)

// CachedFetcher wraps a Fetcher with a TTL cache. It is an explicit wired
// object rather than a package-level singleton, so two engines never share
// state by accident. Safe for concurrent readers.
type CachedFetcher struct {
	inner Fetcher
	ttl   time.Duration

	mu      sync.Mutex
	candles map[string]candleEntry
	prices  map[string]priceEntry
	hits    int64
	misses  int64
	now     func() time.Time
}

type candleEntry struct {
	series  model.Series
	fetched time.Time
}

type priceEntry struct {
	price   float64
	fetched time.Time
}

// DefaultCacheTTL keeps series fresh enough for minute strategies without
// hammering the quotation API from overlapping cycles.
const DefaultCacheTTL = 60 * time.Second

func NewCachedFetcher(inner Fetcher, ttl time.Duration) *CachedFetcher {
	if ttl <= 0 {
		ttl = DefaultCacheTTL
	}
	return &CachedFetcher{
		inner:   inner,
		ttl:     ttl,
		candles: make(map[string]candleEntry),
		prices:  make(map[string]priceEntry),
		now:     time.Now,
	}
}

func (c *CachedFetcher) Name() string { return c.inner.Name() + "+cache" }

func (c *CachedFetcher) FetchCandles(symbol, interval string, count int) (model.Series, error) {
	key := fmt.Sprintf("%s|%s|%d", symbol, interval, count)

	c.mu.Lock()
	if e, ok := c.candles[key]; ok && c.now().Sub(e.fetched) < c.ttl {
		c.hits++
		c.mu.Unlock()
		return e.series, nil
	}
	c.misses++
	c.mu.Unlock()

	series, err := c.inner.FetchCandles(symbol, interval, count)
	if err != nil {
		return nil, err
	}
	c.mu.Lock()
	c.candles[key] = candleEntry{series: series, fetched: c.now()}
	c.mu.Unlock()
	return series, nil
}

func (c *CachedFetcher) FetchCurrentPrice(symbol string) (float64, error) {
	c.mu.Lock()
	if e, ok := c.prices[symbol]; ok && c.now().Sub(e.fetched) < c.ttl {
		c.hits++
		c.mu.Unlock()
		return e.price, nil
	}
	c.misses++
	c.mu.Unlock()

	price, err := c.inner.FetchCurrentPrice(symbol)
	if err != nil {
		return 0, err
	}
	c.mu.Lock()
	c.prices[symbol] = priceEntry{price: price, fetched: c.now()}
	c.mu.Unlock()
	return price, nil
}

// FetchOrderbook is never cached: the book is only read right before an
// order, when staleness costs money.
func (c *CachedFetcher) FetchOrderbook(symbol string) (Orderbook, error) {
	return c.inner.FetchOrderbook(symbol)
}

// Stats returns the cumulative hit/miss counters.
func (c *CachedFetcher) Stats() (hits, misses int64) {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.hits, c.misses
}
