package sqlite

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"path/filepath"
	"strings"
	"time"

	_ "modernc.org/sqlite"

	"copresence/internal/domain"
	"copresence/internal/store/sqlite/migrations"
)

// ErrReportExists is returned when saving a report whose ID is taken.
var ErrReportExists = errors.New("scan report already exists")

// Store persists scan reports in SQLite.
type Store struct {
	db *sql.DB
}

func toMillis(t time.Time) int64 { return t.UTC().UnixMilli() }

func fromMillis(v int64) time.Time { return time.UnixMilli(v).UTC() }

// Open opens the ledger at path, creating it if needed, and applies the
// embedded migrations.
func Open(path string) (*Store, error) {
	if strings.TrimSpace(path) == "" {
		return nil, fmt.Errorf("storage path is required")
	}
	dsn := filepath.Clean(path) + "?_journal_mode=WAL&_busy_timeout=5000&_synchronous=NORMAL&_pragma=foreign_keys(ON)"
	db, err := sql.Open("sqlite", dsn)
	if err != nil {
		return nil, fmt.Errorf("open sqlite db: %w", err)
	}
	if err := db.Ping(); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("ping sqlite db: %w", err)
	}
	if err := applyMigrations(context.Background(), db, migrations.FS); err != nil {
		_ = db.Close()
		return nil, fmt.Errorf("run migrations: %w", err)
	}
	return &Store{db: db}, nil
}

// Close closes the database handle.
func (s *Store) Close() error {
	if s == nil || s.db == nil {
		return nil
	}
	return s.db.Close()
}

// SaveReport writes a report with its sightings and pair distances in one
// transaction.
func (s *Store) SaveReport(ctx context.Context, r domain.ScanReport) error {
	if err := ctx.Err(); err != nil {
		return err
	}
	id := strings.TrimSpace(string(r.ID))
	if id == "" {
		return fmt.Errorf("report id is required")
	}

	tx, err := s.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("begin save report: %w", err)
	}
	defer func() { _ = tx.Rollback() }()

	var exists int
	err = tx.QueryRowContext(ctx, `SELECT 1 FROM scan_reports WHERE id = ?`, id).Scan(&exists)
	switch {
	case err == nil:
		return fmt.Errorf("save report %s: %w", id, ErrReportExists)
	case !errors.Is(err, sql.ErrNoRows):
		return fmt.Errorf("check report %s: %w", id, err)
	}

	if _, err := tx.ExecContext(ctx,
		`INSERT INTO scan_reports (id, service, started_at, ended_at) VALUES (?, ?, ?, ?)`,
		id, r.Service, toMillis(r.StartedAt), toMillis(r.EndedAt),
	); err != nil {
		return fmt.Errorf("insert report: %w", err)
	}
	for _, sg := range r.Sightings {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO sightings (report_id, peer_id, tx_power, distance, neighbours) VALUES (?, ?, ?, ?, ?)`,
			id, int(sg.PeerID), int(sg.TxPower), sg.Distance, sg.Neighbours,
		); err != nil {
			return fmt.Errorf("insert sighting %s: %w", sg.PeerID, err)
		}
	}
	for _, d := range r.Distances {
		if _, err := tx.ExecContext(ctx,
			`INSERT INTO pair_distances (report_id, peer_a, peer_b, meters) VALUES (?, ?, ?, ?)`,
			id, int(d.A), int(d.B), d.Meters,
		); err != nil {
			return fmt.Errorf("insert distance %s-%s: %w", d.A, d.B, err)
		}
	}
	if err := tx.Commit(); err != nil {
		return fmt.Errorf("commit report: %w", err)
	}
	return nil
}

// LoadReport returns one report by ID.
func (s *Store) LoadReport(ctx context.Context, id domain.ReportID) (domain.ScanReport, bool, error) {
	if err := ctx.Err(); err != nil {
		return domain.ScanReport{}, false, err
	}
	row := s.db.QueryRowContext(ctx,
		`SELECT id, service, started_at, ended_at FROM scan_reports WHERE id = ?`,
		strings.TrimSpace(string(id)),
	)
	r, err := scanReport(row)
	if errors.Is(err, sql.ErrNoRows) {
		return domain.ScanReport{}, false, nil
	}
	if err != nil {
		return domain.ScanReport{}, false, fmt.Errorf("load report %s: %w", id, err)
	}
	if err := s.loadDetails(ctx, &r); err != nil {
		return domain.ScanReport{}, false, err
	}
	return r, true, nil
}

// ListReports returns the newest reports first. limit <= 0 returns all.
func (s *Store) ListReports(ctx context.Context, limit int) ([]domain.ScanReport, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if limit <= 0 {
		limit = -1
	}
	rows, err := s.db.QueryContext(ctx,
		`SELECT id, service, started_at, ended_at FROM scan_reports
		 ORDER BY started_at DESC, id ASC LIMIT ?`,
		limit,
	)
	if err != nil {
		return nil, fmt.Errorf("list reports: %w", err)
	}
	var out []domain.ScanReport
	for rows.Next() {
		r, err := scanReport(rows)
		if err != nil {
			_ = rows.Close()
			return nil, fmt.Errorf("scan report row: %w", err)
		}
		out = append(out, r)
	}
	if err := rows.Err(); err != nil {
		_ = rows.Close()
		return nil, fmt.Errorf("iterate reports: %w", err)
	}
	_ = rows.Close()

	for i := range out {
		if err := s.loadDetails(ctx, &out[i]); err != nil {
			return nil, err
		}
	}
	return out, nil
}

type rowScanner interface {
	Scan(dest ...any) error
}

func scanReport(row rowScanner) (domain.ScanReport, error) {
	var (
		r              domain.ScanReport
		id             string
		started, ended int64
	)
	if err := row.Scan(&id, &r.Service, &started, &ended); err != nil {
		return domain.ScanReport{}, err
	}
	r.ID = domain.ReportID(id)
	r.StartedAt = fromMillis(started)
	r.EndedAt = fromMillis(ended)
	return r, nil
}

func (s *Store) loadDetails(ctx context.Context, r *domain.ScanReport) error {
	rows, err := s.db.QueryContext(ctx,
		`SELECT peer_id, tx_power, distance, neighbours FROM sightings
		 WHERE report_id = ? ORDER BY peer_id`,
		string(r.ID),
	)
	if err != nil {
		return fmt.Errorf("load sightings: %w", err)
	}
	for rows.Next() {
		var (
			sg          domain.Sighting
			peer, power int
		)
		if err := rows.Scan(&peer, &power, &sg.Distance, &sg.Neighbours); err != nil {
			_ = rows.Close()
			return fmt.Errorf("scan sighting: %w", err)
		}
		sg.PeerID, sg.TxPower = domain.PeerID(peer), int8(power)
		r.Sightings = append(r.Sightings, sg)
	}
	err = rows.Err()
	_ = rows.Close()
	if err != nil {
		return fmt.Errorf("iterate sightings: %w", err)
	}

	rows, err = s.db.QueryContext(ctx,
		`SELECT peer_a, peer_b, meters FROM pair_distances
		 WHERE report_id = ? ORDER BY peer_a, peer_b`,
		string(r.ID),
	)
	if err != nil {
		return fmt.Errorf("load distances: %w", err)
	}
	defer rows.Close()
	for rows.Next() {
		var (
			d    domain.PairDistance
			a, b int
		)
		if err := rows.Scan(&a, &b, &d.Meters); err != nil {
			return fmt.Errorf("scan distance: %w", err)
		}
		d.A, d.B = domain.PeerID(a), domain.PeerID(b)
		r.Distances = append(r.Distances, d)
	}
	if err := rows.Err(); err != nil {
		return fmt.Errorf("iterate distances: %w", err)
	}
	return nil
}

// Compile-time assertion that Store implements domain.AttendanceStore.
var _ domain.AttendanceStore = (*Store)(nil)
