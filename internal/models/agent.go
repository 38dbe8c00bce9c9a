package models

// Agent family prototypes. Every catalog entry is an instance of one of these
// analysis routines, optionally pinned to a single platform.
const (
	PrototypeSentiment    = "sentiment"
	PrototypeChurn        = "churn"
	PrototypeSegmentation = "segmentation"
)

// Agent is an immutable catalog entry describing one named analysis routine.
// Agents are defined at process start and never created or destroyed at runtime.
type Agent struct {
	// ID uniquely identifies the agent within the catalog.
	ID string `json:"id"`

	// DisplayName is the human-readable agent name shown in output.
	DisplayName string `json:"display_name"`

	// Category groups agents by business capability for display purposes.
	Category string `json:"category"`

	// BasePrototype names the underlying analysis family (sentiment, churn,
	// segmentation), independent of which platform the agent targets.
	BasePrototype string `json:"base_prototype"`

	// Capabilities are free-form tags describing what the agent can do.
	Capabilities []string `json:"capabilities"`

	// EligiblePlatforms lists the platforms this agent may be executed
	// against, in execution order. Fixed-platform agents carry exactly one
	// entry; sweep-mode agents carry the full platform list.
	EligiblePlatforms []Platform `json:"eligible_platforms"`
}

// SupportsPlatform reports whether p is in the agent's eligible set.
func (a Agent) SupportsPlatform(p Platform) bool {
	for _, ep := range a.EligiblePlatforms {
		if ep == p {
			return true
		}
	}
	return false
}
