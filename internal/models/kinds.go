package models

import "github.com/courtsec/courtsec/internal/entity"

// Entity kinds. Each value is the backing table name and the table_name
// recorded on audit rows.
const (
	KindIncident   entity.Kind = "incidents"
	KindAttachment entity.Kind = "attachments"
	KindCourthouse entity.Kind = "courthouses"
	KindAuditLog   entity.Kind = "audit_logs"
)
