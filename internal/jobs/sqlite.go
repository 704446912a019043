package jobs

import (
	"context"
	"database/sql"
	"embed"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"sync"
	"time"

	"github.com/pressly/goose/v3"
	_ "modernc.org/sqlite"

	"mediasig/internal/analysis"
)

//go:embed migrations/*.sql
var migrationFS embed.FS

// goose keeps its dialect and filesystem in package state.
var gooseMu sync.Mutex

// storedTimeLayout is fixed-width so text ordering matches time ordering.
const storedTimeLayout = "2006-01-02T15:04:05.000000000Z07:00"

const jobColumns = "id, kind, status, result_json, error_message, created_at, updated_at"

// SQLiteStore keeps jobs in a SQLite database. The table is emptied on open
// so a file-backed database still only holds jobs of the current process.
type SQLiteStore struct {
	db  *sql.DB
	dsn string
	now func() time.Time
}

// OpenSQLite opens dsn (":memory:" when empty), applies migrations and clears
// previous jobs.
func OpenSQLite(ctx context.Context, dsn string) (*SQLiteStore, error) {
	if strings.TrimSpace(dsn) == "" {
		dsn = ":memory:"
	}
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	// One connection: an in-memory database exists per connection, and a
	// single writer avoids SQLITE_BUSY on file databases.
	db.SetMaxOpenConns(1)

	pragmas := []string{
		"PRAGMA busy_timeout = 5000",
	}
	for _, pragma := range pragmas {
		if _, execErr := db.ExecContext(ctx, pragma); execErr != nil {
			_ = db.Close()
			return nil, fmt.Errorf("apply pragma %q: %w", pragma, execErr)
		}
	}

	if err := runMigrations(ctx, db); err != nil {
		_ = db.Close()
		return nil, err
	}
	if _, err := db.ExecContext(ctx, "DELETE FROM jobs"); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("clear previous jobs: %w", err)
	}
	return &SQLiteStore{db: db, dsn: dsn, now: time.Now}, nil
}

func runMigrations(ctx context.Context, db *sql.DB) error {
	gooseMu.Lock()
	defer gooseMu.Unlock()
	goose.SetBaseFS(migrationFS)
	goose.SetLogger(goose.NopLogger())
	if err := goose.SetDialect("sqlite3"); err != nil {
		return fmt.Errorf("set migration dialect: %w", err)
	}
	if err := goose.UpContext(ctx, db, "migrations"); err != nil {
		return fmt.Errorf("apply migrations: %w", err)
	}
	return nil
}

// Close closes the underlying database connection.
func (s *SQLiteStore) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

func (s *SQLiteStore) Create(ctx context.Context, job Job) error {
	resultJSON, err := encodeResult(job.Result)
	if err != nil {
		return err
	}
	_, err = s.db.ExecContext(ctx,
		`INSERT INTO jobs (`+jobColumns+`) VALUES (?, ?, ?, ?, ?, ?, ?)`,
		job.ID,
		string(job.Kind),
		string(job.Status),
		resultJSON,
		nullableString(job.Error),
		formatTime(job.CreatedAt),
		formatTime(job.UpdatedAt),
	)
	if err != nil {
		if strings.Contains(err.Error(), "UNIQUE constraint failed") {
			return duplicate(job.ID)
		}
		return fmt.Errorf("insert job: %w", err)
	}
	return nil
}

func (s *SQLiteStore) Get(ctx context.Context, id string) (Job, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+jobColumns+` FROM jobs WHERE id = ?`, id)
	job, err := scanJob(row)
	if errors.Is(err, sql.ErrNoRows) {
		return Job{}, notFound(id)
	}
	if err != nil {
		return Job{}, fmt.Errorf("get job: %w", err)
	}
	return job, nil
}

// Finish performs the transition as a conditional update, so concurrent
// callers cannot both succeed.
func (s *SQLiteStore) Finish(ctx context.Context, id string, status Status, result analysis.Result, errMsg string) error {
	if err := validTerminal(status); err != nil {
		return err
	}
	resultJSON, err := encodeResult(result)
	if err != nil {
		return err
	}
	res, err := s.db.ExecContext(ctx,
		`UPDATE jobs SET status = ?, result_json = ?, error_message = ?, updated_at = ?
         WHERE id = ? AND status = ?`,
		string(status),
		resultJSON,
		nullableString(errMsg),
		formatTime(s.now()),
		id,
		string(StatusProcessing),
	)
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	affected, err := res.RowsAffected()
	if err != nil {
		return fmt.Errorf("finish job: %w", err)
	}
	if affected == 1 {
		return nil
	}
	current, err := s.Get(ctx, id)
	if err != nil {
		return err
	}
	return alreadyFinished(id, current.Status)
}

func (s *SQLiteStore) List(ctx context.Context) ([]Job, error) {
	rows, err := s.db.QueryContext(ctx, `SELECT `+jobColumns+` FROM jobs ORDER BY created_at, id`)
	if err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	defer rows.Close()

	var out []Job
	for rows.Next() {
		job, err := scanJob(rows)
		if err != nil {
			return nil, fmt.Errorf("scan job: %w", err)
		}
		out = append(out, job)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("list jobs: %w", err)
	}
	return out, nil
}

func scanJob(scanner interface{ Scan(dest ...any) error }) (Job, error) {
	var (
		id           string
		kind         string
		status       string
		resultJSON   sql.NullString
		errorMessage sql.NullString
		createdRaw   string
		updatedRaw   string
	)
	if err := scanner.Scan(&id, &kind, &status, &resultJSON, &errorMessage, &createdRaw, &updatedRaw); err != nil {
		return Job{}, err
	}
	job := Job{
		ID:        id,
		Kind:      analysis.Kind(kind),
		Status:    Status(status),
		Error:     errorMessage.String,
		CreatedAt: parseTime(createdRaw),
		UpdatedAt: parseTime(updatedRaw),
	}
	if resultJSON.Valid && resultJSON.String != "" {
		result, err := analysis.DecodeResult(job.Kind, []byte(resultJSON.String))
		if err != nil {
			return Job{}, err
		}
		job.Result = result
	}
	return job, nil
}

func encodeResult(result analysis.Result) (any, error) {
	if result == nil {
		return nil, nil
	}
	raw, err := json.Marshal(result)
	if err != nil {
		return nil, fmt.Errorf("encode result: %w", err)
	}
	return string(raw), nil
}

func nullableString(value string) any {
	if value == "" {
		return nil
	}
	return value
}

func formatTime(t time.Time) string {
	return t.UTC().Format(storedTimeLayout)
}

func parseTime(raw string) time.Time {
	t, err := time.Parse(storedTimeLayout, raw)
	if err != nil {
		return time.Time{}
	}
	return t
}
