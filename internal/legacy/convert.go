package legacy

import (
	"database/sql"
	"fmt"
	"strings"
	"time"

	"github.com/google/uuid"

	"github.com/courtsec/courtsec/internal/models"
)

var legacyStatuses = map[int]models.IncidentStatus{
	1: models.StatusOpen,
	2: models.StatusUnderReview,
	3: models.StatusEscalated,
	4: models.StatusClosed,
}

var legacyTypes = map[int]models.IncidentType{
	1:  models.TypeMedicalEmergency,
	2:  models.TypePhysicalAltercation,
	3:  models.TypeVerbalThreat,
	4:  models.TypeContrabandFound,
	5:  models.TypeEvacuation,
	99: models.TypeOther,
}

// timeLayouts are the datetime renderings found in exports, most specific first.
var timeLayouts = []string{
	time.RFC3339Nano,
	"2006-01-02 15:04:05.9999999",
	"2006-01-02 15:04:05",
	"2006-01-02T15:04:05.9999999",
	"2006-01-02",
}

func parseTime(s string) (time.Time, error) {
	s = strings.TrimSpace(s)
	for _, layout := range timeLayouts {
		if t, err := time.Parse(layout, s); err == nil {
			return t.UTC(), nil
		}
	}

	return time.Time{}, fmt.Errorf("unparseable time %q", s)
}

func nullStr(s sql.NullString) *string {
	if !s.Valid || s.String == "" {
		return nil
	}

	v := s.String

	return &v
}

// toIncident converts a legacy row. Ids and timestamps are carried over so
// references held elsewhere stay valid.
func toIncident(r *incidentRow) (*models.Incident, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}

	status, ok := legacyStatuses[r.Status]
	if !ok {
		return nil, fmt.Errorf("unknown status %d", r.Status)
	}

	typ, ok := legacyTypes[r.Type]
	if !ok {
		return nil, fmt.Errorf("unknown type %d", r.Type)
	}

	incidentDate, err := parseTime(r.IncidentDate)
	if err != nil {
		return nil, fmt.Errorf("incident date: %w", err)
	}

	reportDate, err := parseTime(r.ReportDate)
	if err != nil {
		return nil, fmt.Errorf("report date: %w", err)
	}

	createdAt, err := parseTime(r.CreatedAt)
	if err != nil {
		return nil, fmt.Errorf("created at: %w", err)
	}

	inc := &models.Incident{
		ID:                       id,
		IncidentDate:             incidentDate,
		ReportDate:               reportDate,
		Status:                   status,
		CreatedAt:                createdAt,
		ReporterFirstName:        r.ReporterFirstName,
		ReporterLastName:         r.ReporterLastName,
		ReporterEmail:            r.ReporterEmail,
		ReporterJobTitle:         r.ReporterJobTitle,
		ReporterEmployeeID:       nullStr(r.ReporterEmployeeID),
		County:                   r.County,
		Division:                 r.Division,
		Courthouse:               r.Courthouse,
		LocationWithinCourthouse: r.LocationWithinCourthouse,
		RelatedDocketNumber:      nullStr(r.RelatedDocketNumber),
		CaseName:                 nullStr(r.CaseName),
		SuspectFirstName:         nullStr(r.SuspectFirstName),
		SuspectLastName:          nullStr(r.SuspectLastName),
		AdditionalIdentifiers:    nullStr(r.AdditionalIdentifiers),
		Type:                     typ,
		WeaponInvolved:           r.WeaponInvolved,
		WeaponType:               nullStr(r.WeaponType),
		ContrabandSeized:         r.ContrabandSeized,
		ContrabandType:           nullStr(r.ContrabandType),
		Narrative:                r.Narrative,
		Deleted:                  r.IsDeleted,
	}

	if r.LastUpdatedAt.Valid && r.LastUpdatedAt.String != "" {
		t, err := parseTime(r.LastUpdatedAt.String)
		if err != nil {
			return nil, fmt.Errorf("last updated at: %w", err)
		}
		inc.LastUpdatedAt = &t
	}

	return inc, nil
}

func toAttachment(r *attachmentRow) (*models.Attachment, error) {
	id, err := uuid.Parse(r.ID)
	if err != nil {
		return nil, fmt.Errorf("id: %w", err)
	}

	incidentID, err := uuid.Parse(r.IncidentID)
	if err != nil {
		return nil, fmt.Errorf("incident id: %w", err)
	}

	uploadedAt, err := parseTime(r.UploadedAt)
	if err != nil {
		return nil, fmt.Errorf("uploaded at: %w", err)
	}

	return &models.Attachment{
		ID:          id,
		IncidentID:  incidentID,
		FileName:    r.FileName,
		ContentType: r.ContentType,
		SizeInBytes: r.SizeInBytes,
		StoragePath: r.StoragePath,
		UploadedAt:  uploadedAt,
		UploadedBy:  r.UploadedBy,
		Deleted:     r.IsDeleted,
	}, nil
}
