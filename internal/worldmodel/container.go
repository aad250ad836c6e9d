package worldmodel

import (
	"fmt"
	"sync"

	"github.com/beliefdrift/beliefdrift/internal/domain"
)

// UpdateMode controls how an incoming graph is applied to a role's belief.
type UpdateMode string

const (
	// UpdateReplace discards the role's current graph in favor of the
	// incoming one.
	UpdateReplace UpdateMode = "replace"
	// UpdateMerge overlays the incoming graph on the role's current one.
	UpdateMerge UpdateMode = "merge"
)

func ValidUpdateMode(m string) bool {
	switch UpdateMode(m) {
	case UpdateReplace, UpdateMerge:
		return true
	}
	return false
}

// Container owns one belief graph per role and guarantees that updating one
// role never touches the other. Reads hand out deep copies so callers get a
// stable snapshot regardless of concurrent updates.
type Container struct {
	mu     sync.RWMutex
	graphs map[domain.Role]*Graph
}

func NewContainer() *Container {
	return &Container{
		graphs: map[domain.Role]*Graph{
			domain.RoleRobot: NewGraph(),
			domain.RoleHuman: NewGraph(),
		},
	}
}

// Snapshot returns a deep copy of the role's graph.
func (c *Container) Snapshot(role domain.Role) (*Graph, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	g, ok := c.graphs[role]
	if !ok {
		return nil, fmt.Errorf("unknown belief role %q", role)
	}
	return g.Clone(), nil
}

// UpdateBelief applies an incoming graph to exactly one role. The incoming
// graph is cloned on the way in, so the caller keeps ownership of its copy.
func (c *Container) UpdateBelief(role domain.Role, incoming *Graph, mode UpdateMode) error {
	c.mu.Lock()
	defer c.mu.Unlock()

	current, ok := c.graphs[role]
	if !ok {
		return fmt.Errorf("unknown belief role %q", role)
	}

	switch mode {
	case UpdateReplace:
		c.graphs[role] = incoming.Clone()
	case UpdateMerge:
		current.Merge(incoming)
	default:
		return fmt.Errorf("unknown update mode %q", mode)
	}
	return nil
}

// AvgConfidence reports the mean node confidence of the role's graph.
func (c *Container) AvgConfidence(role domain.Role) (float64, error) {
	c.mu.RLock()
	defer c.mu.RUnlock()

	g, ok := c.graphs[role]
	if !ok {
		return 0, fmt.Errorf("unknown belief role %q", role)
	}
	return g.AvgConfidence(), nil
}
