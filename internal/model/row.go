package model

// Placeholder is rendered for every report field whose source value the
// API omitted. Consumers rely on the literal string, never empty or null.
const Placeholder = "N/A"

// ReportRow is one flattened output record: the denormalized join of an
// organization, one of its users, and one of that user's matching devices.
//
// Rows are append-only. A row exists if and only if its source device
// reported a version string that matched the configured target pattern,
// and it is never mutated after creation.
type ReportRow struct {
	OrgDomain  string `json:"org_domain"`
	OrgID      string `json:"org_id"`
	UserID     string `json:"user_id"`
	UserName   string `json:"user_name"`
	UserEmail  string `json:"user_email"`
	DeviceID   string `json:"device_id"`
	DeviceIP   string `json:"device_ip"`
	AppVersion string `json:"app_version"`
}

// RowHeader returns the report field names in their fixed output order.
// Every sink (table, CSV, Markdown) uses this order.
func RowHeader() []string {
	return []string{
		"org_domain", "org_id", "user_id", "user_name",
		"user_email", "device_id", "device_ip", "app_version",
	}
}

// NewReportRow flattens an (organization, user, device) triple into a row,
// substituting Placeholder for every absent field.
//
// The caller is responsible for the match predicate; this constructor only
// performs the join and the present-or-placeholder rendering.
func NewReportRow(org Organization, user User, dev Device) ReportRow {
	var email *string
	if user.Info != nil {
		email = user.Info.Email
	}

	return ReportRow{
		OrgDomain:  orPlaceholder(org.Domain),
		OrgID:      orPlaceholderString(org.ID),
		UserID:     orPlaceholderString(user.ID),
		UserName:   orPlaceholder(user.Name),
		UserEmail:  orPlaceholder(email),
		DeviceID:   orPlaceholder(dev.ID),
		DeviceIP:   orPlaceholder(dev.IP),
		AppVersion: orPlaceholder(dev.UserAgent),
	}
}

// Values returns the row's field values in the fixed output order.
// The result aligns index-for-index with RowHeader.
func (r ReportRow) Values() []string {
	return []string{
		r.OrgDomain, r.OrgID, r.UserID, r.UserName,
		r.UserEmail, r.DeviceID, r.DeviceIP, r.AppVersion,
	}
}

// orPlaceholder renders an optional string, collapsing absence to Placeholder.
func orPlaceholder(s *string) string {
	if s == nil {
		return Placeholder
	}
	return *s
}

// orPlaceholderString guards against identifiers the API returned as empty
// strings. IDs are required fields, but a row must never render blank cells.
func orPlaceholderString(s string) string {
	if s == "" {
		return Placeholder
	}
	return s
}
