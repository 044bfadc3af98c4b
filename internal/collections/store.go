package collections

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"time"

	"github.com/google/uuid"
)

// ErrNotFound is returned when a collection does not exist.
var ErrNotFound = errors.New("collection not found")

// Store persists collections in SQLite. List-valued fields are stored as
// JSON columns; the store owns all encoding.
type Store struct {
	db *sql.DB
}

// NewStore creates a collection store.
func NewStore(db *sql.DB) *Store {
	return &Store{db: db}
}

// Create inserts a new collection, assigning an ID and timestamps.
func (s *Store) Create(ctx context.Context, col *Collection) error {
	if col.ID == "" {
		col.ID = uuid.NewString()
	}
	now := time.Now().UTC()
	col.CreatedAt = now
	col.UpdatedAt = now

	genresJSON, filtersJSON, idsJSON, err := encodeColumns(col)
	if err != nil {
		return err
	}

	_, err = s.db.ExecContext(ctx, `
		INSERT INTO collections (
			id, name, auto_update, update_frequency, media_type,
			genres, genre_logic, filters, content_ids,
			last_checked_at, created_at, updated_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`,
		col.ID, col.Name, col.AutoUpdate, string(col.UpdateFrequency), col.MediaType,
		genresJSON, string(col.GenreLogic), filtersJSON, idsJSON,
		nullableTime(col.LastCheckedAt), col.CreatedAt, col.UpdatedAt,
	)
	if err != nil {
		return fmt.Errorf("failed to insert collection: %w", err)
	}
	return nil
}

// Get fetches one collection by ID.
func (s *Store) Get(ctx context.Context, id string) (*Collection, error) {
	row := s.db.QueryRowContext(ctx, selectColumns+" WHERE id = ?", id)
	col, err := scanCollection(row)
	if errors.Is(err, sql.ErrNoRows) {
		return nil, ErrNotFound
	}
	return col, err
}

// List returns all collections ordered by creation time.
func (s *Store) List(ctx context.Context) ([]*Collection, error) {
	rows, err := s.db.QueryContext(ctx, selectColumns+" ORDER BY created_at")
	if err != nil {
		return nil, fmt.Errorf("failed to query collections: %w", err)
	}
	defer rows.Close()

	var out []*Collection
	for rows.Next() {
		col, err := scanCollection(rows)
		if err != nil {
			return nil, err
		}
		out = append(out, col)
	}
	return out, rows.Err()
}

// Update rewrites a collection's mutable fields.
func (s *Store) Update(ctx context.Context, col *Collection) error {
	col.UpdatedAt = time.Now().UTC()

	genresJSON, filtersJSON, idsJSON, err := encodeColumns(col)
	if err != nil {
		return err
	}

	res, err := s.db.ExecContext(ctx, `
		UPDATE collections SET
			name = ?, auto_update = ?, update_frequency = ?, media_type = ?,
			genres = ?, genre_logic = ?, filters = ?, content_ids = ?,
			last_checked_at = ?, updated_at = ?
		WHERE id = ?`,
		col.Name, col.AutoUpdate, string(col.UpdateFrequency), col.MediaType,
		genresJSON, string(col.GenreLogic), filtersJSON, idsJSON,
		nullableTime(col.LastCheckedAt), col.UpdatedAt, col.ID,
	)
	if err != nil {
		return fmt.Errorf("failed to update collection: %w", err)
	}
	return requireRow(res)
}

// Delete removes a collection.
func (s *Store) Delete(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, "DELETE FROM collections WHERE id = ?", id)
	if err != nil {
		return fmt.Errorf("failed to delete collection: %w", err)
	}
	return requireRow(res)
}

// RecordCheck appends newly discovered IDs and stamps the check time.
func (s *Store) RecordCheck(ctx context.Context, col *Collection, newIDs []int, checkedAt time.Time) error {
	col.ContentIDs = append(col.ContentIDs, newIDs...)
	t := checkedAt.UTC()
	col.LastCheckedAt = &t
	return s.Update(ctx, col)
}

const selectColumns = `
	SELECT id, name, auto_update, update_frequency, media_type,
	       genres, genre_logic, filters, content_ids,
	       last_checked_at, created_at, updated_at
	FROM collections`

type rowScanner interface {
	Scan(dest ...interface{}) error
}

func scanCollection(row rowScanner) (*Collection, error) {
	var (
		col         Collection
		frequency   string
		logic       string
		genresJSON  string
		filtersJSON string
		idsJSON     string
		lastChecked sql.NullTime
	)

	err := row.Scan(
		&col.ID, &col.Name, &col.AutoUpdate, &frequency, &col.MediaType,
		&genresJSON, &logic, &filtersJSON, &idsJSON,
		&lastChecked, &col.CreatedAt, &col.UpdatedAt,
	)
	if err != nil {
		return nil, err
	}

	col.UpdateFrequency = UpdateFrequency(frequency)
	col.GenreLogic = logicFromString(logic)
	if lastChecked.Valid {
		t := lastChecked.Time
		col.LastCheckedAt = &t
	}

	if err := json.Unmarshal([]byte(genresJSON), &col.Genres); err != nil {
		return nil, fmt.Errorf("failed to decode genres for %s: %w", col.ID, err)
	}
	if err := json.Unmarshal([]byte(filtersJSON), &col.Filters); err != nil {
		return nil, fmt.Errorf("failed to decode filters for %s: %w", col.ID, err)
	}
	if err := json.Unmarshal([]byte(idsJSON), &col.ContentIDs); err != nil {
		return nil, fmt.Errorf("failed to decode content ids for %s: %w", col.ID, err)
	}

	return &col, nil
}

func encodeColumns(col *Collection) (genresJSON, filtersJSON, idsJSON string, err error) {
	if col.Genres == nil {
		col.Genres = []string{}
	}
	if col.ContentIDs == nil {
		col.ContentIDs = []int{}
	}

	g, err := json.Marshal(col.Genres)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode genres: %w", err)
	}
	f, err := json.Marshal(col.Filters)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode filters: %w", err)
	}
	ids, err := json.Marshal(col.ContentIDs)
	if err != nil {
		return "", "", "", fmt.Errorf("failed to encode content ids: %w", err)
	}
	return string(g), string(f), string(ids), nil
}

func nullableTime(t *time.Time) interface{} {
	if t == nil {
		return nil
	}
	return t.UTC()
}

func requireRow(res sql.Result) error {
	n, err := res.RowsAffected()
	if err != nil {
		return err
	}
	if n == 0 {
		return ErrNotFound
	}
	return nil
}
