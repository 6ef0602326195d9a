package store

import (
	"errors"
	"strings"
	"testing"
	"time"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5/pgconn"

	"github.com/courtsec/courtsec/internal/commit"
	"github.com/courtsec/courtsec/internal/models"
)

func TestInsertSQL_SkipsPendingColumns(t *testing.T) {
	inc := &models.Incident{Narrative: "A", IncidentDate: time.Now()}

	query, args := insertSQL(models.IncidentFields, inc)

	for _, col := range []string{`"id"`, `"created_at"`, `"report_date"`} {
		if strings.Contains(query[:strings.Index(query, "VALUES")], col) {
			t.Errorf("insert lists pending column %s: %s", col, query)
		}
	}

	wantArgs := len(models.IncidentFields.Fields) - 3
	if len(args) != wantArgs {
		t.Errorf("args = %d, want %d", len(args), wantArgs)
	}

	if !strings.HasPrefix(query, `INSERT INTO "incidents"`) || !strings.Contains(query, "RETURNING") {
		t.Errorf("query = %s", query)
	}
}

func TestUpdateSQL(t *testing.T) {
	inc := &models.Incident{ID: uuid.New(), Narrative: "B", CreatedAt: time.Now(), ReportDate: time.Now()}

	query, args, err := updateSQL(models.IncidentFields, inc, []string{"narrative", "last_updated_at"})
	if err != nil {
		t.Fatal(err)
	}

	want := `UPDATE "incidents" SET "narrative" = $1, "last_updated_at" = $2 WHERE "id" = $3 AND "deleted" = false RETURNING `
	if !strings.HasPrefix(query, want) {
		t.Errorf("query = %s\nwant prefix %s", query, want)
	}

	if len(args) != 3 || args[0] != "B" || args[2] != inc.ID {
		t.Errorf("args = %v", args)
	}

	query, _, err = updateSQL(models.CourthouseFields, &models.Courthouse{ID: uuid.New()}, []string{"name"})
	if err != nil {
		t.Fatal(err)
	}

	if strings.Contains(query, "deleted") {
		t.Errorf("courthouses have no deleted flag: %s", query)
	}

	for name, cols := range map[string][]string{
		"no columns":     nil,
		"unknown column": {"colour"},
		"key column":     {"id"},
	} {
		if _, _, err := updateSQL(models.IncidentFields, inc, cols); err == nil {
			t.Errorf("%s: expected error", name)
		}
	}

	if _, _, err := updateSQL(models.IncidentFields, &models.Incident{}, []string{"narrative"}); err == nil {
		t.Error("expected error for a pending key")
	}
}

func TestUpdateSQL_SoftDeleteSetsOnlyFlagAndStamp(t *testing.T) {
	inc := &models.Incident{ID: uuid.New(), Narrative: "stale", Deleted: true}

	query, args, err := updateSQL(models.IncidentFields, inc, []string{"deleted", "last_updated_at"})
	if err != nil {
		t.Fatal(err)
	}

	set := query[:strings.Index(query, " WHERE")]
	if set != `UPDATE "incidents" SET "deleted" = $1, "last_updated_at" = $2` {
		t.Errorf("set clause = %s", set)
	}

	if len(args) != 3 || args[0] != true {
		t.Errorf("args = %v", args)
	}
}

func TestLockSQL(t *testing.T) {
	id := uuid.New()

	tests := []struct {
		name  string
		query func() (string, []any, error)
		want  string
	}{
		{
			name: "update lock on soft-deletable kind",
			query: func() (string, []any, error) {
				return lockSQL(models.IncidentFields, &models.Incident{ID: id}, commit.LockUpdate)
			},
			want: `FROM "incidents" WHERE "id" = $1 AND "deleted" = false FOR UPDATE`,
		},
		{
			name: "share lock",
			query: func() (string, []any, error) {
				return lockSQL(models.IncidentFields, &models.Incident{ID: id}, commit.LockShare)
			},
			want: `AND "deleted" = false FOR SHARE`,
		},
		{
			name: "kind without flag",
			query: func() (string, []any, error) {
				return lockSQL(models.CourthouseFields, &models.Courthouse{ID: id}, commit.LockUpdate)
			},
			want: `FROM "courthouses" WHERE "id" = $1 FOR UPDATE`,
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			query, args, err := tc.query()
			if err != nil {
				t.Fatal(err)
			}

			if !strings.HasSuffix(query, tc.want) {
				t.Errorf("query = %s\nwant suffix %s", query, tc.want)
			}

			if len(args) != 1 || args[0] != id {
				t.Errorf("args = %v", args)
			}
		})
	}

	if _, _, err := lockSQL(models.IncidentFields, &models.Incident{}, commit.LockShare); err == nil {
		t.Error("expected error for a pending key")
	}
}

func TestChildrenSQL(t *testing.T) {
	query, err := childrenSQL(models.AttachmentFields, "incident_id")
	if err != nil {
		t.Fatal(err)
	}

	want := `FROM "attachments" WHERE "incident_id" = $1 AND "deleted" = false ORDER BY "id" FOR UPDATE`
	if !strings.HasSuffix(query, want) {
		t.Errorf("query = %s\nwant suffix %s", query, want)
	}

	if _, err := childrenSQL(models.AttachmentFields, "owner_id"); err == nil {
		t.Error("expected error for an unknown column")
	}
}

func TestDeleteSQL(t *testing.T) {
	id := uuid.New()

	query, args, err := deleteSQL(models.CourthouseFields, &models.Courthouse{ID: id})
	if err != nil {
		t.Fatal(err)
	}

	if query != `DELETE FROM "courthouses" WHERE "id" = $1` || args[0] != id {
		t.Errorf("query = %s args = %v", query, args)
	}
}

func TestSelectSQL_ReadFilter(t *testing.T) {
	tests := []struct {
		name  string
		query string
		want  string
		not   string
	}{
		{
			name:  "visible incidents",
			query: selectSQL(models.IncidentFields, visibleOnly),
			want:  `WHERE "deleted" = false`,
		},
		{
			name:  "visible with condition",
			query: selectSQL(models.AttachmentFields, visibleOnly, "incident_id = $1"),
			want:  `WHERE "deleted" = false AND incident_id = $1`,
		},
		{
			name:  "include deleted",
			query: selectSQL(models.IncidentFields, includeDeleted, "id = $1"),
			want:  "WHERE id = $1",
			not:   "deleted\" = false",
		},
		{
			name:  "kind without flag",
			query: selectSQL(models.CourthouseFields, visibleOnly),
			not:   "WHERE",
		},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if tc.want != "" && !strings.Contains(tc.query, tc.want) {
				t.Errorf("query %q missing %q", tc.query, tc.want)
			}

			if tc.not != "" && strings.Contains(tc.query, tc.not) {
				t.Errorf("query %q must not contain %q", tc.query, tc.not)
			}
		})
	}
}

func TestClassify(t *testing.T) {
	tests := []struct {
		name string
		err  error
		want error
	}{
		{"unique violation", &pgconn.PgError{Code: "23505"}, commit.ErrConstraintViolation},
		{"fk violation", &pgconn.PgError{Code: "23503"}, commit.ErrConstraintViolation},
		{"serialization failure", &pgconn.PgError{Code: "40001"}, commit.ErrStorageUnavailable},
		{"admin shutdown", &pgconn.PgError{Code: "57P01"}, commit.ErrStorageUnavailable},
		{"network", errors.New("connection reset"), commit.ErrStorageUnavailable},
	}

	for _, tc := range tests {
		t.Run(tc.name, func(t *testing.T) {
			if got := classify(tc.err); !errors.Is(got, tc.want) {
				t.Errorf("classify = %v, want %v", got, tc.want)
			}
		})
	}

	// Codes shorter than a class pass through unclassified.
	short := &pgconn.PgError{Code: "X"}
	if got := classify(short); got != short {
		t.Errorf("classify(short code) = %v, want it unchanged", got)
	}

	if classify(nil) != nil {
		t.Error("classify(nil) must be nil")
	}

	syntax := &pgconn.PgError{Code: "42601"}
	if got := classify(syntax); errors.Is(got, commit.ErrStorageUnavailable) || errors.Is(got, commit.ErrConstraintViolation) {
		t.Errorf("syntax errors are not storage failures: %v", got)
	}
}

func TestClampPage(t *testing.T) {
	for _, tc := range []struct{ limit, offset, wantLimit, wantOffset int }{
		{0, 0, 50, 0},
		{10, 5, 10, 5},
		{5000, -3, maxListLimit, 0},
	} {
		l, o := clampPage(tc.limit, tc.offset)
		if l != tc.wantLimit || o != tc.wantOffset {
			t.Errorf("clampPage(%d,%d) = %d,%d", tc.limit, tc.offset, l, o)
		}
	}
}

func TestBuildAuditFilter(t *testing.T) {
	since := time.Date(2025, 1, 1, 0, 0, 0, 0, time.UTC)

	conds, args := buildAuditFilter(models.AuditQueryOpts{
		TableName:  "incidents",
		PrimaryKey: "abc",
		Action:     models.ActionSoftDelete,
		Since:      &since,
	})

	if len(conds) != 4 || len(args) != 4 {
		t.Fatalf("conds = %v args = %v", conds, args)
	}

	if conds[3] != `"timestamp" >= $4` {
		t.Errorf("since condition = %q", conds[3])
	}

	if conds, args := buildAuditFilter(models.AuditQueryOpts{}); len(conds) != 0 || len(args) != 0 {
		t.Error("empty opts must produce no filter")
	}
}
