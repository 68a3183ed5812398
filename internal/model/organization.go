package model

// Organization is a single tenant in the device-management API.
// The set of organizations visible to a run is scoped by the API key.
//
// Records are immutable for the duration of a run: the API is the source
// of truth and nothing is persisted back to it.
type Organization struct {
	// ID is the tenant identifier used to scope user queries.
	ID string `json:"id"`

	// Domain is the tenant's primary domain. The API may omit it for
	// tenants that have not completed onboarding, so it is a pointer.
	Domain *string `json:"domain,omitempty"`
}
