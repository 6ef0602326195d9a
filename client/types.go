package client

import (
	"encoding/json"
	"time"
)

// Incident is a reported courtroom security incident.
type Incident struct {
	ID            string     `json:"id"`
	IncidentDate  time.Time  `json:"incident_date"`
	ReportDate    time.Time  `json:"report_date"`
	Status        string     `json:"status"`
	CreatedAt     time.Time  `json:"created_at"`
	LastUpdatedAt *time.Time `json:"last_updated_at,omitempty"`

	ReporterFirstName  string  `json:"reporter_first_name"`
	ReporterLastName   string  `json:"reporter_last_name"`
	ReporterEmail      string  `json:"reporter_email"`
	ReporterJobTitle   string  `json:"reporter_job_title"`
	ReporterEmployeeID *string `json:"reporter_employee_id,omitempty"`

	County                   string `json:"county"`
	Division                 string `json:"division"`
	Courthouse               string `json:"courthouse"`
	LocationWithinCourthouse string `json:"location_within_courthouse"`

	RelatedDocketNumber *string `json:"related_docket_number,omitempty"`
	CaseName            *string `json:"case_name,omitempty"`

	SuspectFirstName      *string `json:"suspect_first_name,omitempty"`
	SuspectLastName       *string `json:"suspect_last_name,omitempty"`
	AdditionalIdentifiers *string `json:"additional_identifiers,omitempty"`

	Type             string  `json:"type"`
	WeaponInvolved   bool    `json:"weapon_involved"`
	WeaponType       *string `json:"weapon_type,omitempty"`
	ContrabandSeized bool    `json:"contraband_seized"`
	ContrabandType   *string `json:"contraband_type,omitempty"`

	Narrative   string       `json:"narrative"`
	Deleted     bool         `json:"deleted"`
	Attachments []Attachment `json:"attachments,omitempty"`
}

// CreateIncidentRequest is the payload for reporting an incident.
type CreateIncidentRequest struct {
	IncidentDate time.Time `json:"incident_date"`

	ReporterFirstName  string  `json:"reporter_first_name"`
	ReporterLastName   string  `json:"reporter_last_name"`
	ReporterEmail      string  `json:"reporter_email"`
	ReporterJobTitle   string  `json:"reporter_job_title"`
	ReporterEmployeeID *string `json:"reporter_employee_id,omitempty"`

	County                   string `json:"county"`
	Division                 string `json:"division"`
	Courthouse               string `json:"courthouse"`
	LocationWithinCourthouse string `json:"location_within_courthouse"`

	RelatedDocketNumber *string `json:"related_docket_number,omitempty"`
	CaseName            *string `json:"case_name,omitempty"`

	SuspectFirstName      *string `json:"suspect_first_name,omitempty"`
	SuspectLastName       *string `json:"suspect_last_name,omitempty"`
	AdditionalIdentifiers *string `json:"additional_identifiers,omitempty"`

	Type             string  `json:"type"`
	WeaponInvolved   bool    `json:"weapon_involved"`
	WeaponType       *string `json:"weapon_type,omitempty"`
	ContrabandSeized bool    `json:"contraband_seized"`
	ContrabandType   *string `json:"contraband_type,omitempty"`

	Narrative string `json:"narrative"`
}

// UpdateIncidentRequest replaces the editable fields of an incident.
type UpdateIncidentRequest struct {
	IncidentDate *time.Time `json:"incident_date,omitempty"`
	Status       string     `json:"status"`
	Type         string     `json:"type"`
	Narrative    string     `json:"narrative"`

	County                   string `json:"county"`
	Division                 string `json:"division"`
	Courthouse               string `json:"courthouse"`
	LocationWithinCourthouse string `json:"location_within_courthouse"`

	RelatedDocketNumber *string `json:"related_docket_number,omitempty"`
	CaseName            *string `json:"case_name,omitempty"`

	SuspectFirstName      *string `json:"suspect_first_name,omitempty"`
	SuspectLastName       *string `json:"suspect_last_name,omitempty"`
	AdditionalIdentifiers *string `json:"additional_identifiers,omitempty"`

	WeaponInvolved   bool    `json:"weapon_involved"`
	WeaponType       *string `json:"weapon_type,omitempty"`
	ContrabandSeized bool    `json:"contraband_seized"`
	ContrabandType   *string `json:"contraband_type,omitempty"`
}

// UpdateFrom returns a request that keeps every editable field of inc.
func UpdateFrom(inc *Incident) *UpdateIncidentRequest {
	date := inc.IncidentDate

	return &UpdateIncidentRequest{
		IncidentDate:             &date,
		Status:                   inc.Status,
		Type:                     inc.Type,
		Narrative:                inc.Narrative,
		County:                   inc.County,
		Division:                 inc.Division,
		Courthouse:               inc.Courthouse,
		LocationWithinCourthouse: inc.LocationWithinCourthouse,
		RelatedDocketNumber:      inc.RelatedDocketNumber,
		CaseName:                 inc.CaseName,
		SuspectFirstName:         inc.SuspectFirstName,
		SuspectLastName:          inc.SuspectLastName,
		AdditionalIdentifiers:    inc.AdditionalIdentifiers,
		WeaponInvolved:           inc.WeaponInvolved,
		WeaponType:               inc.WeaponType,
		ContrabandSeized:         inc.ContrabandSeized,
		ContrabandType:           inc.ContrabandType,
	}
}

// IncidentListOptions filters incident listings.
type IncidentListOptions struct {
	Status string
	Limit  int
	Offset int
}

// Attachment is the metadata of a file filed against an incident.
type Attachment struct {
	ID          string    `json:"id"`
	IncidentID  string    `json:"incident_id"`
	FileName    string    `json:"file_name"`
	ContentType string    `json:"content_type"`
	SizeInBytes int64     `json:"size_in_bytes"`
	StoragePath string    `json:"storage_path"`
	UploadedAt  time.Time `json:"uploaded_at"`
	UploadedBy  string    `json:"uploaded_by"`
	Deleted     bool      `json:"deleted"`
}

// CreateAttachmentRequest registers an already-stored file.
type CreateAttachmentRequest struct {
	FileName    string `json:"file_name"`
	ContentType string `json:"content_type,omitempty"`
	SizeInBytes int64  `json:"size_in_bytes"`
	StoragePath string `json:"storage_path"`
}

// Courthouse is a courthouse directory entry.
type Courthouse struct {
	ID        string    `json:"id"`
	County    string    `json:"county"`
	Division  string    `json:"division"`
	Name      string    `json:"name"`
	CreatedAt time.Time `json:"created_at"`
}

// CreateCourthouseRequest adds a directory entry.
type CreateCourthouseRequest struct {
	County   string `json:"county"`
	Division string `json:"division"`
	Name     string `json:"name"`
}

// AuditRecord is one immutable audit log row. OldValues and NewValues are
// JSON objects keyed by column name, or null.
type AuditRecord struct {
	ID         string          `json:"id"`
	TableName  string          `json:"table_name"`
	PrimaryKey string          `json:"primary_key"`
	Action     string          `json:"action"`
	OldValues  json.RawMessage `json:"old_values"`
	NewValues  json.RawMessage `json:"new_values"`
	Timestamp  time.Time       `json:"timestamp"`
	UserID     string          `json:"user_id"`
}

// AuditQueryOptions filters audit log queries.
type AuditQueryOptions struct {
	TableName  string
	PrimaryKey string
	Action     string
	Since      *time.Time
	Limit      int
	Offset     int
}

// HealthResponse is the liveness check payload.
type HealthResponse struct {
	Status        string  `json:"status"`
	Version       string  `json:"version"`
	Database      string  `json:"database"`
	SchemaVersion int     `json:"schema_version"`
	UptimeSeconds float64 `json:"uptime_seconds"`
}

// ReadyResponse is the readiness check payload.
type ReadyResponse struct {
	Status string            `json:"status"`
	Checks map[string]string `json:"checks"`
}
