package model

// User is a single user record as returned by the device-management API.
// A user belongs to exactly one organization: the one whose ID was used
// in the query that fetched it. Users are never persisted locally.
type User struct {
	// ID is the user identifier.
	ID string `json:"id"`

	// Name is the user's display name, absent for unprovisioned accounts.
	Name *string `json:"name,omitempty"`

	// Info carries optional contact details. The whole object may be absent.
	Info *UserInfo `json:"info,omitempty"`

	// Devices lists the user's registered client installations.
	// Users without enrolled devices have a nil or empty slice.
	Devices []Device `json:"devs,omitempty"`
}

// UserInfo holds optional contact details nested under a user record.
type UserInfo struct {
	// Email is the user's contact address.
	Email *string `json:"email,omitempty"`
}

// Device is a client installation record attached to a user.
type Device struct {
	// ID is the device identifier.
	ID *string `json:"id,omitempty"`

	// IP is the last-seen address reported by the device.
	IP *string `json:"ip,omitempty"`

	// UserAgent carries the free-form client-version string reported by
	// the installation (e.g. "5.5.09.04"). It is not a strict semantic
	// version; filtering matches by substring containment, not equality.
	UserAgent *string `json:"ua,omitempty"`
}
