package docstore

import (
	"context"
	"database/sql"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
	"go.opentelemetry.io/otel"
	"go.opentelemetry.io/otel/attribute"
	"go.opentelemetry.io/otel/codes"
	"go.opentelemetry.io/otel/trace"

	"github.com/ziadkadry99/quotegen/internal/db"
)

var tracer = otel.Tracer("github.com/ziadkadry99/quotegen/internal/docstore")

// SQLite implements Store on the quotegen SQLite database.
type SQLite struct {
	db     *db.DB
	broker *Broker
	now    func() time.Time
}

// NewSQLite creates a Store backed by the given database.
func NewSQLite(database *db.DB) *SQLite {
	return &SQLite{db: database, broker: NewBroker(), now: time.Now}
}

// Broker exposes the change broker, mainly for tests.
func (s *SQLite) Broker() *Broker { return s.broker }

const recordColumns = "id, topic, language, tone, quote, timestamp"

// QueryDescending implements Store.
func (s *SQLite) QueryDescending(ctx context.Context, limit int, after Cursor) ([]Record, error) {
	if limit <= 0 {
		return nil, ErrInvalidLimit
	}

	ctx, span := tracer.Start(ctx, "docstore.QueryDescending", trace.WithAttributes(
		attribute.Int("limit", limit),
		attribute.Bool("cursor", !after.IsZero()),
	))
	defer span.End()

	var (
		rows *sql.Rows
		err  error
	)
	if after.IsZero() {
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+recordColumns+" FROM generation_history ORDER BY timestamp DESC, id DESC LIMIT ?",
			limit)
	} else {
		var ts int64
		err = s.db.QueryRowContext(ctx,
			"SELECT timestamp FROM generation_history WHERE id = ?", string(after)).Scan(&ts)
		if errors.Is(err, sql.ErrNoRows) {
			span.SetStatus(codes.Error, "cursor not found")
			return nil, fmt.Errorf("%w: %s", ErrCursorNotFound, after)
		}
		if err != nil {
			span.RecordError(err)
			return nil, fmt.Errorf("resolving cursor: %w", err)
		}
		rows, err = s.db.QueryContext(ctx,
			"SELECT "+recordColumns+` FROM generation_history
			WHERE timestamp < ? OR (timestamp = ? AND id < ?)
			ORDER BY timestamp DESC, id DESC LIMIT ?`,
			ts, ts, string(after), limit)
	}
	if err != nil {
		span.RecordError(err)
		return nil, fmt.Errorf("querying history: %w", err)
	}
	defer rows.Close()

	var records []Record
	for rows.Next() {
		var (
			r  Record
			ts int64
		)
		if err := rows.Scan(&r.ID, &r.Topic, &r.Language, &r.Tone, &r.Quote, &ts); err != nil {
			return nil, fmt.Errorf("scanning history record: %w", err)
		}
		r.Timestamp = time.Unix(0, ts).UTC()
		records = append(records, r)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterating history: %w", err)
	}
	span.SetAttributes(attribute.Int("returned", len(records)))
	return records, nil
}

// AddRecord implements Store.
func (s *SQLite) AddRecord(ctx context.Context, r Record) (Record, error) {
	if r.ID == "" {
		r.ID = uuid.New().String()
	}
	if r.Timestamp.IsZero() {
		r.Timestamp = s.now()
	}
	r.Timestamp = r.Timestamp.UTC()

	ctx, span := tracer.Start(ctx, "docstore.AddRecord")
	defer span.End()

	_, err := s.db.ExecContext(ctx,
		"INSERT INTO generation_history ("+recordColumns+") VALUES (?, ?, ?, ?, ?, ?)",
		r.ID, r.Topic, r.Language, r.Tone, r.Quote, r.Timestamp.UnixNano())
	if err != nil {
		span.RecordError(err)
		return Record{}, fmt.Errorf("inserting history record: %w", err)
	}

	s.broker.Publish(CollectionHistory)
	return r, nil
}

// Increment implements Store. The delta is applied by SQLite in a single
// upsert so concurrent increments never lose updates.
func (s *SQLite) Increment(ctx context.Context, docID string, delta int64) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO site_stats (id, visitor_count, updated_at) VALUES (?, ?, ?)
		ON CONFLICT(id) DO UPDATE SET
			visitor_count = visitor_count + excluded.visitor_count,
			updated_at = excluded.updated_at`,
		docID, delta, s.now().UnixNano())
	if err != nil {
		return fmt.Errorf("incrementing %s: %w", docID, err)
	}

	s.broker.Publish(statsTopic(docID))
	return nil
}

// Stats implements Store.
func (s *SQLite) Stats(ctx context.Context, docID string) (Stats, error) {
	st := Stats{ID: docID}
	err := s.db.QueryRowContext(ctx,
		"SELECT visitor_count FROM site_stats WHERE id = ?", docID).Scan(&st.VisitorCount)
	if errors.Is(err, sql.ErrNoRows) {
		return st, nil
	}
	if err != nil {
		return Stats{}, fmt.Errorf("reading %s: %w", docID, err)
	}
	st.Exists = true
	return st, nil
}

// WatchRecent implements Store.
func (s *SQLite) WatchRecent(limit int, fn func([]Record), opts ...WatchOption) *Subscription {
	return watch(s.broker, CollectionHistory, func(ctx context.Context) ([]Record, error) {
		return s.QueryDescending(ctx, limit, "")
	}, fn, opts)
}

// WatchStats implements Store.
func (s *SQLite) WatchStats(docID string, fn func(Stats), opts ...WatchOption) *Subscription {
	return watch(s.broker, statsTopic(docID), func(ctx context.Context) (Stats, error) {
		return s.Stats(ctx, docID)
	}, fn, opts)
}
