// Package database provides the storage layer for Fathom.
//
// It implements the Store interface using SQLite with WAL mode,
// full-text search over the dive-site catalog, and indexes tuned
// for logbook queries. The DBService struct is the primary entry
// point for all database operations.
//
// Site search uses FTS5 when the driver is built with
// -tags sqlite_fts5, and degrades to a LIKE scan otherwise.
package database

import (
	"database/sql"
	"embed"
	"fmt"
	"sync"
	"time"

	_ "github.com/mattn/go-sqlite3"
)

//go:embed schema.sql schema_fts.sql
var schemaFS embed.FS

// Store defines the interface for dive data persistence.
// This abstraction allows for mocking in tests and potential
// future backends beyond SQLite.
type Store interface {
	// UpsertSite persists a dive site, updating it if the ID exists.
	UpsertSite(site *Site) error
	// InsertDive persists a logbook entry.
	InsertDive(dive *Dive) error
	// InsertFeedback persists a chatbot feedback record.
	InsertFeedback(fb *Feedback) error

	// BatchInsertDives inserts multiple dives in a single transaction.
	BatchInsertDives(dives []*Dive) error
	// BatchInsertFeedback inserts multiple feedback records in a single transaction.
	BatchInsertFeedback(records []*Feedback) error

	// QuerySites returns sites matching the given filter, ordered by rating DESC.
	QuerySites(filter SiteFilter) ([]*Site, error)
	// SearchSites performs full-text search over site names, regions, and descriptions.
	SearchSites(query string, limit int) ([]*Site, error)
	// GetSite returns a single site by ID.
	GetSite(siteID int64) (*Site, error)
	// QueryDives returns logbook entries matching the filter, most recent first.
	QueryDives(filter DiveFilter) ([]*Dive, error)
	// GetDive returns a single logbook entry by ID.
	GetDive(diveID string) (*Dive, error)
	// QueryFeedback returns feedback records matching the filter, newest first.
	QueryFeedback(filter FeedbackFilter) ([]*Feedback, error)
	// ResolveFeedback transitions a feedback record to a terminal review status.
	ResolveFeedback(feedbackID string, status string) error
	// GetLogStats returns aggregated logbook statistics for a diver.
	GetLogStats(diver string) (*LogStats, error)

	// WritePendingPayload stores a raw sync payload for crash recovery.
	WritePendingPayload(payload []byte) (int64, error)
	// CommitPendingPayload marks a pending write as committed.
	CommitPendingPayload(writeID int64) error
	// GetPendingPayloads returns all payloads that haven't been committed.
	GetPendingPayloads() ([]PendingWrite, error)

	// Close gracefully shuts down the database connection.
	Close() error
}

// ============================================================
// Domain Models
// ============================================================

// Site is one entry in the dive-site catalog.
type Site struct {
	SiteID      int64   `json:"site_id"`
	Name        string  `json:"name"`
	Region      string  `json:"region"`
	Country     string  `json:"country"`
	MaxDepth    float64 `json:"max_depth"`
	Level       string  `json:"level"` // beginner, intermediate, advanced, technical
	Kind        string  `json:"kind"`  // reef, wreck, cave, wall, drift
	Rating      float64 `json:"rating"`
	Description *string `json:"description,omitempty"`
}

// Dive is a single logbook entry.
type Dive struct {
	DiveID      string   `json:"dive_id"`
	SiteID      *int64   `json:"site_id,omitempty"`
	Diver       string   `json:"diver"`
	DiveTime    int64    `json:"dive_time"` // Unix nanoseconds
	MaxDepth    float64  `json:"max_depth"`
	DurationMin int      `json:"duration_min"`
	FO2         float64  `json:"fo2"`
	FHe         float64  `json:"fhe"`
	MixLabel    string   `json:"mix_label"`
	WaterTemp   *float64 `json:"water_temp,omitempty"`
	Rating      int      `json:"rating"`
	Notes       *string  `json:"notes,omitempty"`
	Synced      bool     `json:"synced"`
}

// Feedback is a chatbot feedback record awaiting admin review.
type Feedback struct {
	FeedbackID string  `json:"feedback_id"`
	User       string  `json:"user"`
	Question   string  `json:"question"`
	Answer     string  `json:"answer"`
	Helpful    bool    `json:"helpful"`
	Comment    *string `json:"comment,omitempty"`
	CreatedAt  int64   `json:"created_at"` // Unix nanoseconds
	Status     string  `json:"status"`     // pending, resolved, dismissed
}

// SiteFilter defines query parameters for catalog listing.
type SiteFilter struct {
	Region    *string  `json:"region,omitempty"`
	Country   *string  `json:"country,omitempty"`
	Kind      *string  `json:"kind,omitempty"`
	Level     *string  `json:"level,omitempty"`
	MaxDepth  *float64 `json:"max_depth,omitempty"` // Only sites no deeper than this
	MinRating *float64 `json:"min_rating,omitempty"`
	Limit     int      `json:"limit"` // <= 0 means unbounded
	Offset    int      `json:"offset"`
}

// DiveFilter defines query parameters for logbook listing.
type DiveFilter struct {
	Diver  *string `json:"diver,omitempty"`
	SiteID *int64  `json:"site_id,omitempty"`
	Since  *int64  `json:"since,omitempty"` // Unix nanoseconds
	Until  *int64  `json:"until,omitempty"` // Unix nanoseconds
	Limit  int     `json:"limit"`           // <= 0 means unbounded
	Offset int     `json:"offset"`
}

// FeedbackFilter defines query parameters for feedback review.
type FeedbackFilter struct {
	Status  *string `json:"status,omitempty"`
	Helpful *bool   `json:"helpful,omitempty"`
	Limit   int     `json:"limit"` // <= 0 means unbounded
	Offset  int     `json:"offset"`
}

// LogStats holds aggregated logbook statistics for one diver.
type LogStats struct {
	Diver           string  `json:"diver"`
	TotalDives      int     `json:"total_dives"`
	TotalBottomMin  int     `json:"total_bottom_min"`
	DeepestMeters   float64 `json:"deepest_meters"`
	DistinctSites   int     `json:"distinct_sites"`
	TrimixDives     int     `json:"trimix_dives"`
	PendingFeedback int     `json:"pending_feedback"`
}

// PendingWrite represents an uncommitted sync payload.
type PendingWrite struct {
	WriteID   int64  `json:"write_id"`
	Payload   []byte `json:"payload"`
	Status    string `json:"status"`
	CreatedAt int64  `json:"created_at"`
}

// ============================================================
// DBService Implementation
// ============================================================

// DBService implements the Store interface using SQLite.
// It manages the database connection pool, prepared statements,
// and ensures thread-safe access through a read-write mutex.
type DBService struct {
	db   *sql.DB
	mu   sync.RWMutex
	path string
	fts  bool // FTS5 module available in this build

	// Prepared statements for hot-path operations
	stmtUpsertSite      *sql.Stmt
	stmtInsertDive      *sql.Stmt
	stmtInsertFeedback  *sql.Stmt
	stmtResolveFeedback *sql.Stmt
	stmtInsertPending   *sql.Stmt
	stmtCommitPending   *sql.Stmt
}

// NewDBService creates a new database service, initializes the schema,
// and prepares frequently-used statements.
//
// The path parameter specifies the SQLite database file location.
// Use ":memory:" for in-memory databases (useful for testing).
func NewDBService(path string) (*DBService, error) {
	// Enable WAL mode, foreign keys, and other optimizations via DSN
	dsn := fmt.Sprintf("%s?_journal_mode=WAL&_synchronous=NORMAL&_foreign_keys=ON&_cache_size=-64000", path)

	db, err := sql.Open("sqlite3", dsn)
	if err != nil {
		return nil, fmt.Errorf("opening database at %s: %w", path, err)
	}

	// SQLite handles concurrency through WAL mode, so we limit writers
	db.SetMaxOpenConns(1)
	db.SetMaxIdleConns(1)
	db.SetConnMaxLifetime(0)

	svc := &DBService{
		db:   db,
		path: path,
	}

	if err := svc.initSchema(); err != nil {
		db.Close()
		return nil, fmt.Errorf("initializing schema: %w", err)
	}

	if err := svc.prepareStatements(); err != nil {
		db.Close()
		return nil, fmt.Errorf("preparing statements: %w", err)
	}

	return svc, nil
}

// initSchema executes the embedded schema files. The core schema is
// mandatory; the FTS5 schema is applied opportunistically, since the
// sqlite3 driver only compiles the fts5 module behind the sqlite_fts5
// build tag. When it is missing, search runs on the LIKE fallback.
func (s *DBService) initSchema() error {
	schema, err := schemaFS.ReadFile("schema.sql")
	if err != nil {
		return fmt.Errorf("reading embedded schema: %w", err)
	}
	if _, err := s.db.Exec(string(schema)); err != nil {
		return fmt.Errorf("executing schema: %w", err)
	}

	ftsSchema, err := schemaFS.ReadFile("schema_fts.sql")
	if err != nil {
		return fmt.Errorf("reading embedded FTS schema: %w", err)
	}
	if _, err := s.db.Exec(string(ftsSchema)); err != nil {
		// A database created by an FTS-enabled build may carry triggers
		// that reference sites_fts; they would break inserts here.
		if _, dropErr := s.db.Exec(`
			DROP TRIGGER IF EXISTS sites_fts_insert;
			DROP TRIGGER IF EXISTS sites_fts_update;
			DROP TRIGGER IF EXISTS sites_fts_delete;
		`); dropErr != nil {
			return fmt.Errorf("dropping stale FTS triggers: %w", dropErr)
		}
		return nil
	}
	s.fts = true

	return nil
}

// prepareStatements creates prepared statements for frequently-used
// insert and update operations to minimize parsing overhead.
func (s *DBService) prepareStatements() error {
	var err error

	s.stmtUpsertSite, err = s.db.Prepare(`
		INSERT INTO sites (site_id, name, region, country, max_depth, level, kind, rating, description)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(site_id) DO UPDATE SET
			name = excluded.name,
			region = excluded.region,
			country = excluded.country,
			max_depth = excluded.max_depth,
			level = excluded.level,
			kind = excluded.kind,
			rating = excluded.rating,
			description = COALESCE(excluded.description, sites.description)
	`)
	if err != nil {
		return fmt.Errorf("preparing UpsertSite: %w", err)
	}

	s.stmtInsertDive, err = s.db.Prepare(`
		INSERT INTO dives (dive_id, site_id, diver, dive_time, max_depth, duration_min,
			fo2, fhe, mix_label, water_temp, rating, notes, synced)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(dive_id) DO UPDATE SET
			rating = excluded.rating,
			notes = COALESCE(excluded.notes, dives.notes),
			synced = excluded.synced
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertDive: %w", err)
	}

	s.stmtInsertFeedback, err = s.db.Prepare(`
		INSERT INTO feedback (feedback_id, user, question, answer, helpful, comment, created_at, status)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?)
		ON CONFLICT(feedback_id) DO NOTHING
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertFeedback: %w", err)
	}

	s.stmtResolveFeedback, err = s.db.Prepare(`
		UPDATE feedback SET status = ? WHERE feedback_id = ?
	`)
	if err != nil {
		return fmt.Errorf("preparing ResolveFeedback: %w", err)
	}

	s.stmtInsertPending, err = s.db.Prepare(`
		INSERT INTO pending_writes (payload, status) VALUES (?, 'pending')
	`)
	if err != nil {
		return fmt.Errorf("preparing InsertPending: %w", err)
	}

	s.stmtCommitPending, err = s.db.Prepare(`
		UPDATE pending_writes SET status = 'committed', committed_at = ? WHERE write_id = ?
	`)
	if err != nil {
		return fmt.Errorf("preparing CommitPending: %w", err)
	}

	return nil
}

// UpsertSite persists a dive site. If a site with the same ID already
// exists, its catalog fields are updated in place.
func (s *DBService) UpsertSite(site *Site) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.stmtUpsertSite.Exec(
		site.SiteID, site.Name, site.Region, site.Country,
		site.MaxDepth, site.Level, site.Kind, site.Rating, site.Description,
	)
	if err != nil {
		return fmt.Errorf("upserting site %d (%s): %w", site.SiteID, site.Name, err)
	}
	return nil
}

// InsertDive persists a logbook entry. Re-inserting the same dive ID
// updates the mutable fields (rating, notes, sync flag).
func (s *DBService) InsertDive(dive *Dive) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.stmtInsertDive.Exec(
		dive.DiveID, dive.SiteID, dive.Diver, dive.DiveTime,
		dive.MaxDepth, dive.DurationMin, dive.FO2, dive.FHe, dive.MixLabel,
		dive.WaterTemp, dive.Rating, dive.Notes, dive.Synced,
	)
	if err != nil {
		return fmt.Errorf("inserting dive %s: %w", dive.DiveID, err)
	}
	return nil
}

// InsertFeedback persists a chatbot feedback record.
func (s *DBService) InsertFeedback(fb *Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	_, err := s.stmtInsertFeedback.Exec(
		fb.FeedbackID, fb.User, fb.Question, fb.Answer,
		fb.Helpful, fb.Comment, fb.CreatedAt, fb.Status,
	)
	if err != nil {
		return fmt.Errorf("inserting feedback %s: %w", fb.FeedbackID, err)
	}
	return nil
}

// BatchInsertDives inserts multiple dives within a single transaction
// for improved throughput during sync ingestion.
func (s *DBService) BatchInsertDives(dives []*Dive) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch dive transaction: %w", err)
	}
	defer tx.Rollback() // No-op if committed

	stmt := tx.Stmt(s.stmtInsertDive)
	for _, dive := range dives {
		_, err := stmt.Exec(
			dive.DiveID, dive.SiteID, dive.Diver, dive.DiveTime,
			dive.MaxDepth, dive.DurationMin, dive.FO2, dive.FHe, dive.MixLabel,
			dive.WaterTemp, dive.Rating, dive.Notes, dive.Synced,
		)
		if err != nil {
			return fmt.Errorf("batch inserting dive %s: %w", dive.DiveID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch dive transaction: %w", err)
	}
	return nil
}

// BatchInsertFeedback inserts multiple feedback records within a single
// transaction for improved throughput.
func (s *DBService) BatchInsertFeedback(records []*Feedback) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	tx, err := s.db.Begin()
	if err != nil {
		return fmt.Errorf("beginning batch feedback transaction: %w", err)
	}
	defer tx.Rollback()

	stmt := tx.Stmt(s.stmtInsertFeedback)
	for _, fb := range records {
		_, err := stmt.Exec(
			fb.FeedbackID, fb.User, fb.Question, fb.Answer,
			fb.Helpful, fb.Comment, fb.CreatedAt, fb.Status,
		)
		if err != nil {
			return fmt.Errorf("batch inserting feedback %s: %w", fb.FeedbackID, err)
		}
	}

	if err := tx.Commit(); err != nil {
		return fmt.Errorf("committing batch feedback transaction: %w", err)
	}
	return nil
}

// QuerySites returns sites matching the given filter criteria.
// Results are ordered by rating descending, then name.
func (s *DBService) QuerySites(filter SiteFilter) ([]*Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT site_id, name, region, country, max_depth, level, kind, rating, description FROM sites WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Region != nil {
		query += ` AND region = ?`
		args = append(args, *filter.Region)
	}
	if filter.Country != nil {
		query += ` AND country = ?`
		args = append(args, *filter.Country)
	}
	if filter.Kind != nil {
		query += ` AND kind = ?`
		args = append(args, *filter.Kind)
	}
	if filter.Level != nil {
		query += ` AND level = ?`
		args = append(args, *filter.Level)
	}
	if filter.MaxDepth != nil {
		query += ` AND max_depth <= ?`
		args = append(args, *filter.MaxDepth)
	}
	if filter.MinRating != nil {
		query += ` AND rating >= ?`
		args = append(args, *filter.MinRating)
	}

	query += ` ORDER BY rating DESC, name ASC`

	// Limit <= 0 means unbounded; OFFSET needs a LIMIT clause in SQLite,
	// so -1 (no limit) stands in when only an offset is set.
	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying sites: %w", err)
	}
	defer rows.Close()

	return scanSites(rows)
}

// SearchSites searches site names, regions, and descriptions. With an
// FTS5-enabled build results are ranked by BM25 relevance; otherwise a
// LIKE substring scan ordered by rating serves the same queries.
func (s *DBService) SearchSites(query string, limit int) ([]*Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	if limit <= 0 {
		limit = 20
	}

	if !s.fts {
		pattern := "%" + query + "%"
		rows, err := s.db.Query(`
			SELECT site_id, name, region, country, max_depth, level, kind, rating, description
			FROM sites
			WHERE name LIKE ? OR region LIKE ? OR COALESCE(description, '') LIKE ?
			ORDER BY rating DESC, name ASC
			LIMIT ?
		`, pattern, pattern, pattern, limit)
		if err != nil {
			return nil, fmt.Errorf("searching sites for %q: %w", query, err)
		}
		defer rows.Close()

		return scanSites(rows)
	}

	rows, err := s.db.Query(`
		SELECT s.site_id, s.name, s.region, s.country, s.max_depth, s.level, s.kind, s.rating, s.description
		FROM sites s
		INNER JOIN sites_fts f ON s.site_id = f.site_id
		WHERE sites_fts MATCH ?
		ORDER BY rank
		LIMIT ?
	`, query, limit)
	if err != nil {
		return nil, fmt.Errorf("searching sites for %q: %w", query, err)
	}
	defer rows.Close()

	return scanSites(rows)
}

// GetSite returns a single site by ID.
func (s *DBService) GetSite(siteID int64) (*Site, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	site := &Site{}
	err := s.db.QueryRow(`
		SELECT site_id, name, region, country, max_depth, level, kind, rating, description
		FROM sites WHERE site_id = ?
	`, siteID).Scan(
		&site.SiteID, &site.Name, &site.Region, &site.Country,
		&site.MaxDepth, &site.Level, &site.Kind, &site.Rating, &site.Description,
	)
	if err != nil {
		return nil, fmt.Errorf("getting site %d: %w", siteID, err)
	}
	return site, nil
}

// QueryDives returns logbook entries matching the filter, most recent first.
func (s *DBService) QueryDives(filter DiveFilter) ([]*Dive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT dive_id, site_id, diver, dive_time, max_depth, duration_min,
		fo2, fhe, mix_label, water_temp, rating, notes, synced FROM dives WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Diver != nil {
		query += ` AND diver = ?`
		args = append(args, *filter.Diver)
	}
	if filter.SiteID != nil {
		query += ` AND site_id = ?`
		args = append(args, *filter.SiteID)
	}
	if filter.Since != nil {
		query += ` AND dive_time >= ?`
		args = append(args, *filter.Since)
	}
	if filter.Until != nil {
		query += ` AND dive_time <= ?`
		args = append(args, *filter.Until)
	}

	query += ` ORDER BY dive_time DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying dives: %w", err)
	}
	defer rows.Close()

	return scanDives(rows)
}

// GetDive returns a single logbook entry by ID.
func (s *DBService) GetDive(diveID string) (*Dive, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	d := &Dive{}
	err := s.db.QueryRow(`
		SELECT dive_id, site_id, diver, dive_time, max_depth, duration_min,
			fo2, fhe, mix_label, water_temp, rating, notes, synced
		FROM dives WHERE dive_id = ?
	`, diveID).Scan(
		&d.DiveID, &d.SiteID, &d.Diver, &d.DiveTime, &d.MaxDepth, &d.DurationMin,
		&d.FO2, &d.FHe, &d.MixLabel, &d.WaterTemp, &d.Rating, &d.Notes, &d.Synced,
	)
	if err != nil {
		return nil, fmt.Errorf("getting dive %s: %w", diveID, err)
	}
	return d, nil
}

// QueryFeedback returns feedback records matching the filter, newest first.
// This powers the admin review table in the TUI and CLI.
func (s *DBService) QueryFeedback(filter FeedbackFilter) ([]*Feedback, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	query := `SELECT feedback_id, user, question, answer, helpful, comment, created_at, status FROM feedback WHERE 1=1`
	args := make([]interface{}, 0)

	if filter.Status != nil {
		query += ` AND status = ?`
		args = append(args, *filter.Status)
	}
	if filter.Helpful != nil {
		query += ` AND helpful = ?`
		args = append(args, *filter.Helpful)
	}

	query += ` ORDER BY created_at DESC`

	if filter.Limit > 0 {
		query += ` LIMIT ?`
		args = append(args, filter.Limit)
	} else if filter.Offset > 0 {
		query += ` LIMIT -1`
	}
	if filter.Offset > 0 {
		query += ` OFFSET ?`
		args = append(args, filter.Offset)
	}

	rows, err := s.db.Query(query, args...)
	if err != nil {
		return nil, fmt.Errorf("querying feedback: %w", err)
	}
	defer rows.Close()

	var records []*Feedback
	for rows.Next() {
		fb := &Feedback{}
		if err := rows.Scan(
			&fb.FeedbackID, &fb.User, &fb.Question, &fb.Answer,
			&fb.Helpful, &fb.Comment, &fb.CreatedAt, &fb.Status,
		); err != nil {
			return nil, fmt.Errorf("scanning feedback row: %w", err)
		}
		records = append(records, fb)
	}
	return records, rows.Err()
}

// ResolveFeedback transitions a feedback record to resolved or dismissed.
func (s *DBService) ResolveFeedback(feedbackID string, status string) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	if status != "resolved" && status != "dismissed" {
		return fmt.Errorf("invalid feedback status %q", status)
	}

	res, err := s.stmtResolveFeedback.Exec(status, feedbackID)
	if err != nil {
		return fmt.Errorf("resolving feedback %s: %w", feedbackID, err)
	}
	if n, _ := res.RowsAffected(); n == 0 {
		return fmt.Errorf("feedback %s not found", feedbackID)
	}
	return nil
}

// GetLogStats returns aggregated logbook statistics for a diver.
// Used by the TUI header and the CLI log command.
func (s *DBService) GetLogStats(diver string) (*LogStats, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	stats := &LogStats{Diver: diver}

	err := s.db.QueryRow(`
		SELECT
			COUNT(*) as total_dives,
			COALESCE(SUM(duration_min), 0) as total_bottom_min,
			COALESCE(MAX(max_depth), 0) as deepest,
			COUNT(DISTINCT site_id) as distinct_sites,
			COALESCE(SUM(CASE WHEN fhe > 0.001 THEN 1 ELSE 0 END), 0) as trimix_dives
		FROM dives
		WHERE diver = ?
	`, diver).Scan(
		&stats.TotalDives, &stats.TotalBottomMin, &stats.DeepestMeters,
		&stats.DistinctSites, &stats.TrimixDives,
	)
	if err != nil {
		return nil, fmt.Errorf("querying log stats for %s: %w", diver, err)
	}

	err = s.db.QueryRow(`
		SELECT COUNT(*) FROM feedback WHERE status = 'pending'
	`).Scan(&stats.PendingFeedback)
	if err != nil {
		return nil, fmt.Errorf("counting pending feedback: %w", err)
	}

	return stats, nil
}

// WritePendingPayload stores a raw payload in the pending_writes table
// for crash recovery. Returns the write ID for later commitment.
func (s *DBService) WritePendingPayload(payload []byte) (int64, error) {
	s.mu.Lock()
	defer s.mu.Unlock()

	result, err := s.stmtInsertPending.Exec(payload)
	if err != nil {
		return 0, fmt.Errorf("writing pending payload: %w", err)
	}
	return result.LastInsertId()
}

// CommitPendingPayload marks a pending write as committed.
func (s *DBService) CommitPendingPayload(writeID int64) error {
	s.mu.Lock()
	defer s.mu.Unlock()

	now := time.Now().UnixNano()
	_, err := s.stmtCommitPending.Exec(now, writeID)
	if err != nil {
		return fmt.Errorf("committing pending payload %d: %w", writeID, err)
	}
	return nil
}

// GetPendingPayloads returns all uncommitted payloads for crash recovery.
func (s *DBService) GetPendingPayloads() ([]PendingWrite, error) {
	s.mu.RLock()
	defer s.mu.RUnlock()

	rows, err := s.db.Query(`
		SELECT write_id, payload, status, created_at
		FROM pending_writes
		WHERE status = 'pending'
		ORDER BY write_id ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("querying pending payloads: %w", err)
	}
	defer rows.Close()

	var writes []PendingWrite
	for rows.Next() {
		var w PendingWrite
		if err := rows.Scan(&w.WriteID, &w.Payload, &w.Status, &w.CreatedAt); err != nil {
			return nil, fmt.Errorf("scanning pending write: %w", err)
		}
		writes = append(writes, w)
	}
	return writes, rows.Err()
}

// Close gracefully shuts down the database, closing all prepared statements
// and the underlying connection pool.
func (s *DBService) Close() error {
	s.mu.Lock()
	defer s.mu.Unlock()

	stmts := []*sql.Stmt{
		s.stmtUpsertSite, s.stmtInsertDive, s.stmtInsertFeedback,
		s.stmtResolveFeedback, s.stmtInsertPending, s.stmtCommitPending,
	}
	for _, stmt := range stmts {
		if stmt != nil {
			stmt.Close()
		}
	}

	return s.db.Close()
}

// ============================================================
// Scan Helpers
// ============================================================

func scanSites(rows *sql.Rows) ([]*Site, error) {
	var sites []*Site
	for rows.Next() {
		site := &Site{}
		if err := rows.Scan(
			&site.SiteID, &site.Name, &site.Region, &site.Country,
			&site.MaxDepth, &site.Level, &site.Kind, &site.Rating, &site.Description,
		); err != nil {
			return nil, fmt.Errorf("scanning site row: %w", err)
		}
		sites = append(sites, site)
	}
	return sites, rows.Err()
}

func scanDives(rows *sql.Rows) ([]*Dive, error) {
	var dives []*Dive
	for rows.Next() {
		d := &Dive{}
		if err := rows.Scan(
			&d.DiveID, &d.SiteID, &d.Diver, &d.DiveTime, &d.MaxDepth, &d.DurationMin,
			&d.FO2, &d.FHe, &d.MixLabel, &d.WaterTemp, &d.Rating, &d.Notes, &d.Synced,
		); err != nil {
			return nil, fmt.Errorf("scanning dive row: %w", err)
		}
		dives = append(dives, d)
	}
	return dives, rows.Err()
}
