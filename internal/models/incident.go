// Package models defines the records of the courtroom security incident log.
package models

import (
	"fmt"
	"net/mail"
	"time"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/entity"
)

// IncidentStatus is the workflow state of an incident.
type IncidentStatus string

// Incident statuses.
const (
	StatusOpen        IncidentStatus = "Open"
	StatusUnderReview IncidentStatus = "UnderReview"
	StatusEscalated   IncidentStatus = "Escalated"
	StatusClosed      IncidentStatus = "Closed"
)

// Valid reports whether s is a known status.
func (s IncidentStatus) Valid() bool {
	switch s {
	case StatusOpen, StatusUnderReview, StatusEscalated, StatusClosed:
		return true
	}

	return false
}

// IncidentType classifies what happened.
type IncidentType string

// Incident types.
const (
	TypeMedicalEmergency    IncidentType = "MedicalEmergency"
	TypePhysicalAltercation IncidentType = "PhysicalAltercation"
	TypeVerbalThreat        IncidentType = "VerbalThreat"
	TypeContrabandFound     IncidentType = "ContrabandFound"
	TypeEvacuation          IncidentType = "Evacuation"
	TypeOther               IncidentType = "Other"
)

// Valid reports whether t is a known incident type.
func (t IncidentType) Valid() bool {
	switch t {
	case TypeMedicalEmergency, TypePhysicalAltercation, TypeVerbalThreat,
		TypeContrabandFound, TypeEvacuation, TypeOther:
		return true
	}

	return false
}

// Incident is a single reported courtroom security incident.
type Incident struct {
	ID            uuid.UUID      `json:"id"`
	IncidentDate  time.Time      `json:"incident_date"`
	ReportDate    time.Time      `json:"report_date"`
	Status        IncidentStatus `json:"status"`
	CreatedAt     time.Time      `json:"created_at"`
	LastUpdatedAt *time.Time     `json:"last_updated_at,omitempty"`

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

	Type             IncidentType `json:"type"`
	WeaponInvolved   bool         `json:"weapon_involved"`
	WeaponType       *string      `json:"weapon_type,omitempty"`
	ContrabandSeized bool         `json:"contraband_seized"`
	ContrabandType   *string      `json:"contraband_type,omitempty"`

	Narrative string `json:"narrative"`
	Deleted   bool   `json:"deleted"`

	// Attachments is populated on single-incident reads only.
	Attachments []Attachment `json:"attachments,omitempty"`
}

// EntityKind implements entity.Entity.
func (*Incident) EntityKind() entity.Kind { return KindIncident }

// IncidentListOpts holds paging for incident listings.
type IncidentListOpts struct {
	Status IncidentStatus
	Limit  int
	Offset int
}

// CreateIncidentRequest is the payload for reporting a new incident.
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

	Type             IncidentType `json:"type"`
	WeaponInvolved   bool         `json:"weapon_involved"`
	WeaponType       *string      `json:"weapon_type,omitempty"`
	ContrabandSeized bool         `json:"contraband_seized"`
	ContrabandType   *string      `json:"contraband_type,omitempty"`

	Narrative string `json:"narrative"`
}

// Validate checks required fields and limits on CreateIncidentRequest.
func (r *CreateIncidentRequest) Validate() error {
	if r.IncidentDate.IsZero() {
		return ErrMissingIncidentDate
	}

	if r.ReporterFirstName == "" || r.ReporterLastName == "" {
		return ErrMissingReporter
	}

	if _, err := mail.ParseAddress(r.ReporterEmail); err != nil {
		return fmt.Errorf("reporter_email is invalid: %w", err)
	}

	if !r.Type.Valid() {
		return ErrInvalidType
	}

	if r.Narrative == "" {
		return ErrMissingNarrative
	}

	if len(r.Narrative) > maxNarrativeLen {
		return ErrFieldTooLong("narrative", maxNarrativeLen)
	}

	return validateLocation(r.County, r.Division, r.Courthouse, r.LocationWithinCourthouse)
}

// NewIncident builds an Open incident from the request. ID, report date and
// creation time are left for storage to assign.
func (r *CreateIncidentRequest) NewIncident() *Incident {
	return &Incident{
		IncidentDate:             r.IncidentDate.UTC(),
		Status:                   StatusOpen,
		ReporterFirstName:        r.ReporterFirstName,
		ReporterLastName:         r.ReporterLastName,
		ReporterEmail:            r.ReporterEmail,
		ReporterJobTitle:         r.ReporterJobTitle,
		ReporterEmployeeID:       r.ReporterEmployeeID,
		County:                   r.County,
		Division:                 r.Division,
		Courthouse:               r.Courthouse,
		LocationWithinCourthouse: r.LocationWithinCourthouse,
		RelatedDocketNumber:      r.RelatedDocketNumber,
		CaseName:                 r.CaseName,
		SuspectFirstName:         r.SuspectFirstName,
		SuspectLastName:          r.SuspectLastName,
		AdditionalIdentifiers:    r.AdditionalIdentifiers,
		Type:                     r.Type,
		WeaponInvolved:           r.WeaponInvolved,
		WeaponType:               r.WeaponType,
		ContrabandSeized:         r.ContrabandSeized,
		ContrabandType:           r.ContrabandType,
		Narrative:                r.Narrative,
	}
}

// UpdateIncidentRequest replaces the editable fields of an incident.
// Reporter details and timestamps are not editable.
type UpdateIncidentRequest struct {
	IncidentDate *time.Time     `json:"incident_date,omitempty"`
	Status       IncidentStatus `json:"status"`
	Type         IncidentType   `json:"type"`
	Narrative    string         `json:"narrative"`

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

// Validate checks UpdateIncidentRequest fields.
func (r *UpdateIncidentRequest) Validate() error {
	if !r.Status.Valid() {
		return ErrInvalidStatus
	}

	if !r.Type.Valid() {
		return ErrInvalidType
	}

	if r.Narrative == "" {
		return ErrMissingNarrative
	}

	if len(r.Narrative) > maxNarrativeLen {
		return ErrFieldTooLong("narrative", maxNarrativeLen)
	}

	return validateLocation(r.County, r.Division, r.Courthouse, r.LocationWithinCourthouse)
}

// ApplyTo copies the editable fields onto inc.
func (r *UpdateIncidentRequest) ApplyTo(inc *Incident) {
	if r.IncidentDate != nil {
		inc.IncidentDate = r.IncidentDate.UTC()
	}

	inc.Status = r.Status
	inc.Type = r.Type
	inc.Narrative = r.Narrative
	inc.County = r.County
	inc.Division = r.Division
	inc.Courthouse = r.Courthouse
	inc.LocationWithinCourthouse = r.LocationWithinCourthouse
	inc.RelatedDocketNumber = r.RelatedDocketNumber
	inc.CaseName = r.CaseName
	inc.SuspectFirstName = r.SuspectFirstName
	inc.SuspectLastName = r.SuspectLastName
	inc.AdditionalIdentifiers = r.AdditionalIdentifiers
	inc.WeaponInvolved = r.WeaponInvolved
	inc.WeaponType = r.WeaponType
	inc.ContrabandSeized = r.ContrabandSeized
	inc.ContrabandType = r.ContrabandType
}

const (
	maxNarrativeLen = 20000
	maxLocationLen  = 255
)

func validateLocation(county, division, courthouse, within string) error {
	for _, f := range []struct {
		name, value string
	}{
		{"county", county},
		{"division", division},
		{"courthouse", courthouse},
		{"location_within_courthouse", within},
	} {
		if f.value == "" {
			return fmt.Errorf("%s is required", f.name)
		}

		if len(f.value) > maxLocationLen {
			return ErrFieldTooLong(f.name, maxLocationLen)
		}
	}

	return nil
}
