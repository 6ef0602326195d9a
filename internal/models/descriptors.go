package models

import (
	"encoding/json"
	"time"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/entity"
)

// IncidentFields is the field table for incidents, in column order.
var IncidentFields = entity.Describe[Incident](KindIncident,
	entity.Column("id", func(i *Incident) *uuid.UUID { return &i.ID }).Key().Generated(),
	entity.Timestamp("incident_date", func(i *Incident) *time.Time { return &i.IncidentDate }),
	entity.Timestamp("report_date", func(i *Incident) *time.Time { return &i.ReportDate }).Generated(),
	entity.Column("status", func(i *Incident) *IncidentStatus { return &i.Status }),
	entity.Timestamp("created_at", func(i *Incident) *time.Time { return &i.CreatedAt }).Generated(),
	entity.NullableTimestamp("last_updated_at", func(i *Incident) **time.Time { return &i.LastUpdatedAt }),
	entity.Column("reporter_first_name", func(i *Incident) *string { return &i.ReporterFirstName }),
	entity.Column("reporter_last_name", func(i *Incident) *string { return &i.ReporterLastName }),
	entity.Column("reporter_email", func(i *Incident) *string { return &i.ReporterEmail }),
	entity.Column("reporter_job_title", func(i *Incident) *string { return &i.ReporterJobTitle }),
	entity.Nullable("reporter_employee_id", func(i *Incident) **string { return &i.ReporterEmployeeID }),
	entity.Column("county", func(i *Incident) *string { return &i.County }),
	entity.Column("division", func(i *Incident) *string { return &i.Division }),
	entity.Column("courthouse", func(i *Incident) *string { return &i.Courthouse }),
	entity.Column("location_within_courthouse", func(i *Incident) *string { return &i.LocationWithinCourthouse }),
	entity.Nullable("related_docket_number", func(i *Incident) **string { return &i.RelatedDocketNumber }),
	entity.Nullable("case_name", func(i *Incident) **string { return &i.CaseName }),
	entity.Nullable("suspect_first_name", func(i *Incident) **string { return &i.SuspectFirstName }),
	entity.Nullable("suspect_last_name", func(i *Incident) **string { return &i.SuspectLastName }),
	entity.Nullable("additional_identifiers", func(i *Incident) **string { return &i.AdditionalIdentifiers }),
	entity.Column("type", func(i *Incident) *IncidentType { return &i.Type }),
	entity.Column("weapon_involved", func(i *Incident) *bool { return &i.WeaponInvolved }),
	entity.Nullable("weapon_type", func(i *Incident) **string { return &i.WeaponType }),
	entity.Column("contraband_seized", func(i *Incident) *bool { return &i.ContrabandSeized }),
	entity.Nullable("contraband_type", func(i *Incident) **string { return &i.ContrabandType }),
	entity.Column("narrative", func(i *Incident) *string { return &i.Narrative }),
	entity.Column("deleted", func(i *Incident) *bool { return &i.Deleted }),
).SoftDeletes("deleted").TracksModified("last_updated_at")

// AttachmentFields is the field table for attachment metadata.
var AttachmentFields = entity.Describe[Attachment](KindAttachment,
	entity.Column("id", func(a *Attachment) *uuid.UUID { return &a.ID }).Key().Generated(),
	entity.Column("incident_id", func(a *Attachment) *uuid.UUID { return &a.IncidentID }),
	entity.Column("file_name", func(a *Attachment) *string { return &a.FileName }),
	entity.Column("content_type", func(a *Attachment) *string { return &a.ContentType }),
	entity.Column("size_in_bytes", func(a *Attachment) *int64 { return &a.SizeInBytes }),
	entity.Column("storage_path", func(a *Attachment) *string { return &a.StoragePath }),
	entity.Timestamp("uploaded_at", func(a *Attachment) *time.Time { return &a.UploadedAt }).Generated(),
	entity.Column("uploaded_by", func(a *Attachment) *string { return &a.UploadedBy }),
	entity.Column("deleted", func(a *Attachment) *bool { return &a.Deleted }),
).SoftDeletes("deleted")

// CourthouseFields is the field table for the courthouse directory.
var CourthouseFields = entity.Describe[Courthouse](KindCourthouse,
	entity.Column("id", func(c *Courthouse) *uuid.UUID { return &c.ID }).Key().Generated(),
	entity.Column("county", func(c *Courthouse) *string { return &c.County }),
	entity.Column("division", func(c *Courthouse) *string { return &c.Division }),
	entity.Column("name", func(c *Courthouse) *string { return &c.Name }),
	entity.Timestamp("created_at", func(c *Courthouse) *time.Time { return &c.CreatedAt }).Generated(),
)

// AuditFields is the field table for audit rows. Audit rows are written
// once and never diffed.
var AuditFields = entity.Describe[AuditRecord](KindAuditLog,
	entity.Column("id", func(r *AuditRecord) *uuid.UUID { return &r.ID }).Key(),
	entity.Column("table_name", func(r *AuditRecord) *string { return &r.TableName }),
	entity.Column("primary_key", func(r *AuditRecord) *string { return &r.PrimaryKey }),
	entity.Column("action", func(r *AuditRecord) *AuditAction { return &r.Action }),
	entity.JSON("old_values", func(r *AuditRecord) *json.RawMessage { return &r.OldValues }),
	entity.JSON("new_values", func(r *AuditRecord) *json.RawMessage { return &r.NewValues }),
	entity.Timestamp("timestamp", func(r *AuditRecord) *time.Time { return &r.Timestamp }),
	entity.Column("user_id", func(r *AuditRecord) *string { return &r.UserID }),
)

// SoftDeleted lists the kinds whose deletes are rewritten into a flag update.
var SoftDeleted = []entity.Kind{KindIncident, KindAttachment}

// Cascades lists the soft deletes that carry over to dependent rows.
var Cascades = []entity.Cascade{
	{Parent: KindIncident, Child: KindAttachment, Column: "incident_id"},
}

// NewRegistry returns the registry of every persisted kind.
func NewRegistry() (*entity.Registry, error) {
	return entity.NewRegistry(IncidentFields, AttachmentFields, CourthouseFields, AuditFields)
}

// NewSoftDeletePolicy returns the soft-delete policy for this domain.
func NewSoftDeletePolicy() entity.SoftDeletePolicy {
	return entity.NewSoftDeletePolicy(SoftDeleted...)
}
