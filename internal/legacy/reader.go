// Package legacy imports incidents exported from the previous incident log
// into the audited store. The export is a SQLite file using the previous
// application's table layout: PascalCase columns, GUID text ids and enum
// values stored as integers.
package legacy

import (
	"context"
	"database/sql"
	"fmt"

	_ "modernc.org/sqlite" // register the pure-Go sqlite driver
)

// incidentRow is one row of the legacy Incidents table.
type incidentRow struct {
	ID                       string
	IncidentDate             string
	ReportDate               string
	Status                   int
	CreatedAt                string
	LastUpdatedAt            sql.NullString
	ReporterFirstName        string
	ReporterLastName         string
	ReporterEmail            string
	ReporterJobTitle         string
	ReporterEmployeeID       sql.NullString
	County                   string
	Division                 string
	Courthouse               string
	LocationWithinCourthouse string
	RelatedDocketNumber      sql.NullString
	CaseName                 sql.NullString
	SuspectFirstName         sql.NullString
	SuspectLastName          sql.NullString
	AdditionalIdentifiers    sql.NullString
	Type                     int
	WeaponInvolved           bool
	WeaponType               sql.NullString
	ContrabandSeized         bool
	ContrabandType           sql.NullString
	Narrative                string
	IsDeleted                bool
}

// attachmentRow is one row of the legacy Attachments table.
type attachmentRow struct {
	ID          string
	IncidentID  string
	FileName    string
	ContentType string
	SizeInBytes int64
	StoragePath string
	UploadedAt  string
	UploadedBy  string
	IsDeleted   bool
}

// openExport opens the export read-only.
func openExport(path string) (*sql.DB, error) {
	db, err := sql.Open("sqlite", "file:"+path+"?mode=ro")
	if err != nil {
		return nil, fmt.Errorf("open sqlite: %w", err)
	}

	return db, nil
}

// readIncidents reads every legacy incident, deleted ones included.
func readIncidents(ctx context.Context, db *sql.DB) ([]incidentRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT Id, IncidentDate, ReportDate, Status, CreatedAt, LastUpdatedAt,
		        ReporterFirstName, ReporterLastName, ReporterEmail, ReporterJobTitle, ReporterEmployeeId,
		        County, Division, Courthouse, LocationWithinCourthouse,
		        RelatedDocketNumber, CaseName, SuspectFirstName, SuspectLastName, AdditionalIdentifiers,
		        Type, WeaponInvolved, WeaponType, ContrabandSeized, ContrabandType,
		        Narrative, IsDeleted
		 FROM Incidents
		 ORDER BY CreatedAt`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []incidentRow
	for rows.Next() {
		var r incidentRow
		if err := rows.Scan(&r.ID, &r.IncidentDate, &r.ReportDate, &r.Status, &r.CreatedAt, &r.LastUpdatedAt,
			&r.ReporterFirstName, &r.ReporterLastName, &r.ReporterEmail, &r.ReporterJobTitle, &r.ReporterEmployeeID,
			&r.County, &r.Division, &r.Courthouse, &r.LocationWithinCourthouse,
			&r.RelatedDocketNumber, &r.CaseName, &r.SuspectFirstName, &r.SuspectLastName, &r.AdditionalIdentifiers,
			&r.Type, &r.WeaponInvolved, &r.WeaponType, &r.ContrabandSeized, &r.ContrabandType,
			&r.Narrative, &r.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan incident: %w", err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}

// readAttachments reads every legacy attachment, deleted ones included.
func readAttachments(ctx context.Context, db *sql.DB) ([]attachmentRow, error) {
	rows, err := db.QueryContext(ctx,
		`SELECT Id, IncidentId, FileName, ContentType, SizeInBytes, StoragePath,
		        UploadedAt, UploadedBy, IsDeleted
		 FROM Attachments
		 ORDER BY UploadedAt`)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var out []attachmentRow
	for rows.Next() {
		var r attachmentRow
		if err := rows.Scan(&r.ID, &r.IncidentID, &r.FileName, &r.ContentType, &r.SizeInBytes,
			&r.StoragePath, &r.UploadedAt, &r.UploadedBy, &r.IsDeleted); err != nil {
			return nil, fmt.Errorf("scan attachment: %w", err)
		}
		out = append(out, r)
	}

	return out, rows.Err()
}
