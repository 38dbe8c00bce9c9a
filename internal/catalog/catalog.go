// Package catalog holds the static registry of analysis agents. The catalog
// is assembled once at process start and answers pure lookups: which agents
// exist, and which platforms an agent may run on. It performs no I/O.
package catalog

import (
	"fmt"

	"github.com/mhollis/agentbench/internal/models"
)

// Catalog is an immutable, ordered registry of agent definitions.
type Catalog struct {
	agents []models.Agent
	byID   map[string]models.Agent
}

// New creates a catalog from the given agent definitions, preserving order.
// Duplicate ids are rejected.
func New(agents ...models.Agent) (*Catalog, error) {
	c := &Catalog{
		agents: make([]models.Agent, 0, len(agents)),
		byID:   make(map[string]models.Agent, len(agents)),
	}
	for _, a := range agents {
		if a.ID == "" {
			return nil, fmt.Errorf("agent with empty id")
		}
		if _, exists := c.byID[a.ID]; exists {
			return nil, fmt.Errorf("duplicate agent id %q", a.ID)
		}
		if len(a.EligiblePlatforms) == 0 {
			return nil, fmt.Errorf("agent %q has no eligible platforms", a.ID)
		}
		for _, p := range a.EligiblePlatforms {
			if !p.Valid() {
				return nil, fmt.Errorf("agent %q references unknown platform %q", a.ID, p)
			}
		}
		c.agents = append(c.agents, a)
		c.byID[a.ID] = a
	}
	return c, nil
}

// Agents returns all agents in catalog order. The returned slice is a copy.
func (c *Catalog) Agents() []models.Agent {
	out := make([]models.Agent, len(c.agents))
	copy(out, c.agents)
	return out
}

// Get returns the agent with the given id.
func (c *Catalog) Get(id string) (models.Agent, bool) {
	a, ok := c.byID[id]
	return a, ok
}

// PlatformsFor returns the ordered eligible platform set for an agent id.
func (c *Catalog) PlatformsFor(id string) ([]models.Platform, error) {
	a, ok := c.byID[id]
	if !ok {
		return nil, fmt.Errorf("unknown agent %q", id)
	}
	out := make([]models.Platform, len(a.EligiblePlatforms))
	copy(out, a.EligiblePlatforms)
	return out, nil
}

// Len returns the number of agents in the catalog.
func (c *Catalog) Len() int {
	return len(c.agents)
}

// PairCount returns the total number of (agent, platform) pairs a full
// sweep over this catalog executes.
func (c *Catalog) PairCount() int {
	total := 0
	for _, a := range c.agents {
		total += len(a.EligiblePlatforms)
	}
	return total
}

// prototype metadata shared by both catalog modes.
var prototypes = []struct {
	proto        string
	displayName  string
	category     string
	capabilities []string
}{
	{
		proto:        models.PrototypeSentiment,
		displayName:  "Sentiment Analyzer",
		category:     "customer-intelligence",
		capabilities: []string{"tone-detection", "interaction-scoring", "follow-up-suggestions"},
	},
	{
		proto:        models.PrototypeChurn,
		displayName:  "Churn Predictor",
		category:     "retention",
		capabilities: []string{"risk-scoring", "intervention-planning"},
	},
	{
		proto:        models.PrototypeSegmentation,
		displayName:  "Segment Builder",
		category:     "marketing",
		capabilities: []string{"clustering", "lifetime-value", "engagement-scoring"},
	},
}

// Default returns the production catalog: every prototype pinned to each
// platform as its own fixed-platform agent, so one run per agent id.
func Default() *Catalog {
	var agents []models.Agent
	for _, pt := range prototypes {
		for _, p := range models.AllPlatforms() {
			agents = append(agents, models.Agent{
				ID:                fmt.Sprintf("%s-%s", pt.proto, p),
				DisplayName:       fmt.Sprintf("%s (%s)", pt.displayName, p),
				Category:          pt.category,
				BasePrototype:     pt.proto,
				Capabilities:      pt.capabilities,
				EligiblePlatforms: []models.Platform{p},
			})
		}
	}
	c, err := New(agents...)
	if err != nil {
		// The built-in definitions are validated by construction.
		panic(err)
	}
	return c
}

// Sweep returns the comparison catalog: one platform-agnostic agent per
// prototype, each eligible on every platform in the given list, producing
// one result per (prototype, platform) pair when driven.
func Sweep(platforms []models.Platform) (*Catalog, error) {
	if len(platforms) == 0 {
		return nil, fmt.Errorf("sweep catalog requires at least one platform")
	}
	var agents []models.Agent
	for _, pt := range prototypes {
		eligible := make([]models.Platform, len(platforms))
		copy(eligible, platforms)
		agents = append(agents, models.Agent{
			ID:                pt.proto,
			DisplayName:       pt.displayName,
			Category:          pt.category,
			BasePrototype:     pt.proto,
			Capabilities:      pt.capabilities,
			EligiblePlatforms: eligible,
		})
	}
	return New(agents...)
}
