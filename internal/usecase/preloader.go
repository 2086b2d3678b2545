package usecase

import (
	"context"
	"fmt"

	"golang.org/x/sync/errgroup"
	"golang.org/x/sync/semaphore"

	"github.com/fairyhunter13/kafka-order-processor/internal/cache"
	"github.com/fairyhunter13/kafka-order-processor/internal/domain"
)

// ContextLoader assembles the reference data for one batch of orders.
type ContextLoader interface {
	Preload(ctx domain.Context, orderIDs []string) (domain.ProcessingContext, error)
}

// Preloader fetches customers, inventory, and pricing in parallel. Each
// data type partitions its ids into chunks and fans the chunks out
// under a shared database semaphore, so total in-flight queries stay
// bounded across all three types.
type Preloader struct {
	Repo      domain.ReferenceDataRepository
	chunkSize int
	dbSem     *semaphore.Weighted
}

// NewPreloader constructs a Preloader. dbConcurrency caps in-flight
// chunk queries across all three data types combined.
func NewPreloader(repo domain.ReferenceDataRepository, chunkSize, dbConcurrency int) *Preloader {
	if chunkSize < 1 {
		chunkSize = 1
	}
	if dbConcurrency < 1 {
		dbConcurrency = 1
	}
	return &Preloader{
		Repo:      repo,
		chunkSize: chunkSize,
		dbSem:     semaphore.NewWeighted(int64(dbConcurrency)),
	}
}

// Preload returns a fully populated context or an error; there is no
// partial success across data types. Individual missing keys are fine,
// they are simply absent from the maps.
func (p *Preloader) Preload(ctx domain.Context, orderIDs []string) (domain.ProcessingContext, error) {
	data := domain.NewProcessingContext()
	if len(orderIDs) == 0 {
		return data, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := fetchChunked(gctx, p.dbSem, orderIDs, p.chunkSize, p.Repo.BatchFetchCustomerData)
		if err != nil {
			return fmt.Errorf("op=preload.customers: %w", err)
		}
		data.Customers = m
		return nil
	})
	g.Go(func() error {
		m, err := fetchChunked(gctx, p.dbSem, orderIDs, p.chunkSize, p.Repo.BatchFetchInventoryData)
		if err != nil {
			return fmt.Errorf("op=preload.inventory: %w", err)
		}
		data.Inventories = m
		return nil
	})
	g.Go(func() error {
		m, err := fetchChunked(gctx, p.dbSem, orderIDs, p.chunkSize, p.Repo.BatchFetchPricingData)
		if err != nil {
			return fmt.Errorf("op=preload.pricing: %w", err)
		}
		data.Pricings = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.ProcessingContext{}, err
	}
	return data, nil
}

// fetchChunked issues one repository call per chunk of ids, each
// holding one database permit, and merges the disjoint results.
func fetchChunked[V any](ctx context.Context, sem *semaphore.Weighted, ids []string, chunkSize int, fetch func(domain.Context, []string) (map[string]V, error)) (map[string]V, error) {
	chunks := partition(ids, chunkSize)
	results := make([]map[string]V, len(chunks))
	g, gctx := errgroup.WithContext(ctx)
	for i, chunk := range chunks {
		g.Go(func() error {
			if err := sem.Acquire(gctx, 1); err != nil {
				return err
			}
			defer sem.Release(1)
			m, err := fetch(gctx, chunk)
			if err != nil {
				return err
			}
			results[i] = m
			return nil
		})
	}
	if err := g.Wait(); err != nil {
		return nil, err
	}
	merged := make(map[string]V, len(ids))
	for _, m := range results {
		for k, v := range m {
			merged[k] = v
		}
	}
	return merged, nil
}

func partition(ids []string, size int) [][]string {
	if len(ids) == 0 {
		return nil
	}
	chunks := make([][]string, 0, (len(ids)+size-1)/size)
	for start := 0; start < len(ids); start += size {
		end := min(start+size, len(ids))
		chunks = append(chunks, ids[start:end])
	}
	return chunks
}

// CachingPreloader is a cache-aside layer in front of the Preloader.
// Per data type it splits ids into hits and misses, fetches only the
// misses through the base loader's chunked path, and writes fetched
// entries back for the next event.
type CachingPreloader struct {
	Base        *Preloader
	Customers   *cache.Cache[domain.Customer]
	Inventories *cache.Cache[domain.Inventory]
	Pricings    *cache.Cache[domain.Pricing]
}

// NewCachingPreloader constructs a CachingPreloader over base.
func NewCachingPreloader(base *Preloader, customers *cache.Cache[domain.Customer], inventories *cache.Cache[domain.Inventory], pricings *cache.Cache[domain.Pricing]) *CachingPreloader {
	return &CachingPreloader{
		Base:        base,
		Customers:   customers,
		Inventories: inventories,
		Pricings:    pricings,
	}
}

// Preload mirrors Preloader.Preload with a cache in front of each data
// type. An all-hit type issues no queries at all.
func (p *CachingPreloader) Preload(ctx domain.Context, orderIDs []string) (domain.ProcessingContext, error) {
	data := domain.NewProcessingContext()
	if len(orderIDs) == 0 {
		return data, nil
	}
	g, gctx := errgroup.WithContext(ctx)
	g.Go(func() error {
		m, err := loadThrough(gctx, p.Base, p.Customers, orderIDs, p.Base.Repo.BatchFetchCustomerData)
		if err != nil {
			return fmt.Errorf("op=preload.customers: %w", err)
		}
		data.Customers = m
		return nil
	})
	g.Go(func() error {
		m, err := loadThrough(gctx, p.Base, p.Inventories, orderIDs, p.Base.Repo.BatchFetchInventoryData)
		if err != nil {
			return fmt.Errorf("op=preload.inventory: %w", err)
		}
		data.Inventories = m
		return nil
	})
	g.Go(func() error {
		m, err := loadThrough(gctx, p.Base, p.Pricings, orderIDs, p.Base.Repo.BatchFetchPricingData)
		if err != nil {
			return fmt.Errorf("op=preload.pricing: %w", err)
		}
		data.Pricings = m
		return nil
	})
	if err := g.Wait(); err != nil {
		return domain.ProcessingContext{}, err
	}
	return data, nil
}

func loadThrough[V any](ctx context.Context, base *Preloader, c *cache.Cache[V], ids []string, fetch func(domain.Context, []string) (map[string]V, error)) (map[string]V, error) {
	out := make(map[string]V, len(ids))
	var misses []string
	for _, id := range ids {
		if v, ok := c.Get(id); ok {
			out[id] = v
		} else {
			misses = append(misses, id)
		}
	}
	if len(misses) == 0 {
		return out, nil
	}
	fetched, err := fetchChunked(ctx, base.dbSem, misses, base.chunkSize, fetch)
	if err != nil {
		return nil, err
	}
	for id, v := range fetched {
		c.Set(id, v)
		out[id] = v
	}
	return out, nil
}
