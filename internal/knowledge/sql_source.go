package knowledge

import (
	"context"
	"database/sql"
	"encoding/json"
	"fmt"

	_ "github.com/lib/pq"
	_ "github.com/mattn/go-sqlite3"

	"github.com/spherical-ai/profile-assistant/internal/domain"
)

// Schema is the table layout SQLSource reads. List columns hold JSON arrays.
const Schema = `
CREATE TABLE IF NOT EXISTS knowledge_entries (
	position           INTEGER NOT NULL,
	id                 TEXT PRIMARY KEY,
	intent_key         TEXT NOT NULL,
	canonical_question TEXT NOT NULL,
	question_variants  TEXT NOT NULL DEFAULT '[]',
	tags               TEXT NOT NULL DEFAULT '[]',
	industries         TEXT NOT NULL DEFAULT '[]',
	answer             TEXT NOT NULL DEFAULT '',
	confidence_score   REAL,
	review_status      TEXT
)`

const selectEntries = `
	SELECT id, intent_key, canonical_question, question_variants, tags, industries,
	       answer, confidence_score, review_status
	FROM knowledge_entries
	ORDER BY position, id`

// DB represents the read side of a database connection.
type DB interface {
	QueryContext(ctx context.Context, query string, args ...interface{}) (*sql.Rows, error)
}

// SQLSource reads the knowledge document from a knowledge_entries table.
type SQLSource struct {
	db     DB
	name   string
	closer func() error
}

// NewSQLSource wraps an existing connection.
func NewSQLSource(db DB, name string) *SQLSource {
	return &SQLSource{db: db, name: name}
}

// OpenSQLSource opens a sqlite or postgres connection for reading entries.
func OpenSQLSource(driver, dsn string) (*SQLSource, error) {
	var driverName string
	switch driver {
	case "sqlite":
		driverName = "sqlite3"
	case "postgres":
		driverName = "postgres"
	default:
		return nil, domain.ConfigError(fmt.Sprintf("unsupported database driver: %s", driver), nil)
	}

	db, err := sql.Open(driverName, dsn)
	if err != nil {
		return nil, domain.ConfigError("open knowledge database", err)
	}
	if driver == "sqlite" {
		db.SetMaxOpenConns(1)
	}

	return &SQLSource{db: db, name: driver + ":knowledge_entries", closer: db.Close}, nil
}

// Name identifies the source.
func (s *SQLSource) Name() string { return s.name }

// Fetch reads all rows in position order.
func (s *SQLSource) Fetch(ctx context.Context) ([]Entry, error) {
	rows, err := s.db.QueryContext(ctx, selectEntries)
	if err != nil {
		return nil, domain.IOError("query knowledge entries", err)
	}
	defer rows.Close()

	entries := make([]Entry, 0)
	for rows.Next() {
		var (
			e                          Entry
			variants, tags, industries string
			confidence                 sql.NullFloat64
			review                     sql.NullString
		)
		if err := rows.Scan(&e.ID, &e.IntentKey, &e.CanonicalQuestion, &variants, &tags, &industries,
			&e.Answer, &confidence, &review); err != nil {
			return nil, domain.IOError("scan knowledge entry", err)
		}
		if e.QuestionVariants, err = decodeList(variants); err != nil {
			return nil, domain.ParseError(fmt.Sprintf("entry %s question_variants", e.ID), err)
		}
		if e.Tags, err = decodeList(tags); err != nil {
			return nil, domain.ParseError(fmt.Sprintf("entry %s tags", e.ID), err)
		}
		if e.Industries, err = decodeList(industries); err != nil {
			return nil, domain.ParseError(fmt.Sprintf("entry %s industries", e.ID), err)
		}
		e.ConfidenceScore = confidence.Float64
		e.ReviewStatus = review.String
		entries = append(entries, e)
	}
	if err := rows.Err(); err != nil {
		return nil, domain.IOError("iterate knowledge entries", err)
	}

	return entries, nil
}

// Close releases the connection when the source opened it.
func (s *SQLSource) Close() error {
	if s.closer == nil {
		return nil
	}
	return s.closer()
}

func decodeList(raw string) ([]string, error) {
	if raw == "" {
		return nil, nil
	}
	var out []string
	if err := json.Unmarshal([]byte(raw), &out); err != nil {
		return nil, err
	}
	return out, nil
}
