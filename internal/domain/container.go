package domain

import (
	"encoding/json"
	"sort"
)

// ObstacleContainer is the result of one complete parse pass: the
// publication cycle from the header plus every decoded record, keyed by
// identifier. Immutable once built; a failed parse produces no container,
// so a container in hand always has an explicit cycle.
type ObstacleContainer struct {
	cycle     Cycle
	obstacles map[string]Obstacle
}

// NewContainer wraps a finished parse result. It takes ownership of the
// map; the caller must not retain or mutate it. Duplicate handling happened
// at insert time: the map already holds the last record written per
// identifier.
func NewContainer(cycle Cycle, obstacles map[string]Obstacle) *ObstacleContainer {
	if obstacles == nil {
		obstacles = map[string]Obstacle{}
	}
	return &ObstacleContainer{cycle: cycle, obstacles: obstacles}
}

// Cycle returns the publication cycle the container's records belong to.
func (c *ObstacleContainer) Cycle() Cycle {
	return c.cycle
}

// Len returns the number of distinct obstacles.
func (c *ObstacleContainer) Len() int {
	return len(c.obstacles)
}

// Get looks up an obstacle by identifier.
func (c *ObstacleContainer) Get(identifier string) (Obstacle, bool) {
	o, ok := c.obstacles[identifier]
	return o, ok
}

// Identifiers returns every identifier in ascending order.
func (c *ObstacleContainer) Identifiers() []string {
	ids := make([]string, 0, len(c.obstacles))
	for id := range c.obstacles {
		ids = append(ids, id)
	}
	sort.Strings(ids)
	return ids
}

// Obstacles returns the records in identifier order. The slice is freshly
// allocated; callers may keep it.
func (c *ObstacleContainer) Obstacles() []Obstacle {
	out := make([]Obstacle, 0, len(c.obstacles))
	for _, id := range c.Identifiers() {
		out = append(out, c.obstacles[id])
	}
	return out
}

// MarshalJSON renders the container with its cycle, count, and records in
// identifier order.
func (c *ObstacleContainer) MarshalJSON() ([]byte, error) {
	return json.Marshal(struct {
		Cycle     Cycle      `json:"cycle"`
		Count     int        `json:"count"`
		Obstacles []Obstacle `json:"obstacles"`
	}{
		Cycle:     c.cycle,
		Count:     c.Len(),
		Obstacles: c.Obstacles(),
	})
}
