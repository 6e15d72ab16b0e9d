// Package memory provides in-memory repository implementations used by
// tests and local experiments. They mirror the ordering and constraint
// semantics of the Postgres implementations.
package memory

import (
	"fmt"
	"sync"
)

type idGen struct {
	mu sync.Mutex
	n  int
}

func (g *idGen) next(prefix string) string {
	g.mu.Lock()
	defer g.mu.Unlock()
	g.n++
	return fmt.Sprintf("%s-%04d", prefix, g.n)
}
