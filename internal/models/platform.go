package models

// Platform identifies one of the CRM backends an agent can be pointed at.
type Platform string

// The closed set of supported platforms. Native is the local CRM database;
// the other two are external integrations reached through OAuth-connected APIs.
const (
	PlatformNative     Platform = "native"
	PlatformSalesforce Platform = "salesforce"
	PlatformHubSpot    Platform = "hubspot"
)

// AllPlatforms returns the full platform set in canonical order.
func AllPlatforms() []Platform {
	return []Platform{PlatformNative, PlatformSalesforce, PlatformHubSpot}
}

// Valid reports whether p is a member of the closed platform set.
func (p Platform) Valid() bool {
	switch p {
	case PlatformNative, PlatformSalesforce, PlatformHubSpot:
		return true
	}
	return false
}

// Live reports whether p requires an external integration endpoint.
// The native platform never performs outbound calls.
func (p Platform) Live() bool {
	return p == PlatformSalesforce || p == PlatformHubSpot
}

// ConnectionStatus describes whether a platform backend is reachable.
type ConnectionStatus string

const (
	StatusConnected    ConnectionStatus = "connected"
	StatusDisconnected ConnectionStatus = "disconnected"
)
