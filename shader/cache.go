package shader

import (
	"context"
	"errors"
	"log/slog"
	"sync"
	"sync/atomic"

	"golang.org/x/sync/singleflight"
)

// Cache memoizes program sets by name for the life of the process.
// Concurrent first requests share one load; failed loads are not cached.
type Cache struct {
	loader Loader
	logger *slog.Logger

	group singleflight.Group

	mu       sync.RWMutex
	programs map[string]*ProgramSet

	loads atomic.Int64
}

// NewCache creates a cache backed by loader.
func NewCache(loader Loader, logger *slog.Logger) *Cache {
	if logger == nil {
		logger = slog.Default()
	}
	return &Cache{
		loader:   loader,
		logger:   logger,
		programs: make(map[string]*ProgramSet),
	}
}

// Get returns the program set for name, loading it on first use.
// Every successful call for a name returns the same *ProgramSet.
// Cancelling ctx abandons the wait but not the shared load.
func (c *Cache) Get(ctx context.Context, name string) (*ProgramSet, error) {
	if p := c.lookup(name); p != nil {
		return p, nil
	}

	ch := c.group.DoChan(name, func() (any, error) {
		if p := c.lookup(name); p != nil {
			return p, nil
		}
		c.loads.Add(1)
		p, err := c.loader.Load(context.WithoutCancel(ctx), name)
		if err != nil {
			var le *LoadError
			if !errors.As(err, &le) {
				err = &LoadError{Program: name, Stage: StageFetch, Err: err}
			}
			c.logger.Error("shader load failed", "program", name, "error", err)
			return nil, err
		}
		c.mu.Lock()
		c.programs[name] = p
		c.mu.Unlock()
		c.logger.Info("shader loaded", "program", name)
		return p, nil
	})

	select {
	case <-ctx.Done():
		return nil, ctx.Err()
	case res := <-ch:
		if res.Err != nil {
			return nil, res.Err
		}
		return res.Val.(*ProgramSet), nil
	}
}

// Loads reports how many loads have been issued to the underlying loader.
func (c *Cache) Loads() int64 {
	return c.loads.Load()
}

func (c *Cache) lookup(name string) *ProgramSet {
	c.mu.RLock()
	defer c.mu.RUnlock()
	return c.programs[name]
}
