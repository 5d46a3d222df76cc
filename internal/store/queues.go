package store

import (
	"context"
	"database/sql"
	"errors"
	"fmt"

	"github.com/roach88/precario/internal/catalog"
)

const queueColumns = `id, name, number, icon, background_color, video_url, video_volume, sound_volume, velocity, has_news`

// ListQueues returns every queue ordered by name, then id.
// Returns an empty slice (not nil) when the collection is empty.
func (s *Store) ListQueues(ctx context.Context) ([]catalog.Queue, error) {
	rows, err := s.db.QueryContext(ctx, `
		SELECT `+queueColumns+`
		FROM queues
		ORDER BY name COLLATE BINARY ASC, id COLLATE BINARY ASC
	`)
	if err != nil {
		return nil, fmt.Errorf("query queues: %w", err)
	}
	defer rows.Close()

	queues := []catalog.Queue{}
	for rows.Next() {
		q, err := scanQueue(rows)
		if err != nil {
			return nil, err
		}
		queues = append(queues, q)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate queues: %w", err)
	}

	return queues, nil
}

// GetQueue returns one queue or catalog.ErrNotFound.
func (s *Store) GetQueue(ctx context.Context, id string) (catalog.Queue, error) {
	row := s.db.QueryRowContext(ctx, `SELECT `+queueColumns+` FROM queues WHERE id = ?`, id)
	q, err := scanQueue(row)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Queue{}, catalog.ErrNotFound
	}
	if err != nil {
		return catalog.Queue{}, err
	}
	return q, nil
}

// CreateQueue inserts q. Fails with catalog.ErrAlreadyExists when the id is
// taken.
func (s *Store) CreateQueue(ctx context.Context, q catalog.Queue) error {
	_, err := s.db.ExecContext(ctx, `
		INSERT INTO queues (`+queueColumns+`)
		VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?)
	`,
		q.ID,
		q.Name,
		q.Number,
		q.Icon,
		q.BackgroundColor,
		q.VideoURL,
		q.VideoVolume,
		q.SoundVolume,
		q.Velocity,
		q.HasNews,
	)
	if isConstraintError(err) {
		return fmt.Errorf("write queue %s: %w", q.ID, catalog.ErrAlreadyExists)
	}
	if err != nil {
		return fmt.Errorf("write queue: %w", err)
	}
	return nil
}

// UpdateQueue replaces every field of an existing queue.
func (s *Store) UpdateQueue(ctx context.Context, q catalog.Queue) error {
	res, err := s.db.ExecContext(ctx, `
		UPDATE queues
		SET name = ?, number = ?, icon = ?, background_color = ?, video_url = ?,
		    video_volume = ?, sound_volume = ?, velocity = ?, has_news = ?
		WHERE id = ?
	`,
		q.Name,
		q.Number,
		q.Icon,
		q.BackgroundColor,
		q.VideoURL,
		q.VideoVolume,
		q.SoundVolume,
		q.Velocity,
		q.HasNews,
		q.ID,
	)
	if err != nil {
		return fmt.Errorf("update queue: %w", err)
	}
	return requireAffected(res)
}

// DeleteQueue removes a queue.
func (s *Store) DeleteQueue(ctx context.Context, id string) error {
	res, err := s.db.ExecContext(ctx, `DELETE FROM queues WHERE id = ?`, id)
	if err != nil {
		return fmt.Errorf("delete queue: %w", err)
	}
	return requireAffected(res)
}

func scanQueue(row rowScanner) (catalog.Queue, error) {
	var q catalog.Queue
	err := row.Scan(
		&q.ID,
		&q.Name,
		&q.Number,
		&q.Icon,
		&q.BackgroundColor,
		&q.VideoURL,
		&q.VideoVolume,
		&q.SoundVolume,
		&q.Velocity,
		&q.HasNews,
	)
	if errors.Is(err, sql.ErrNoRows) {
		return catalog.Queue{}, err
	}
	if err != nil {
		return catalog.Queue{}, fmt.Errorf("scan queue: %w", err)
	}
	return q, nil
}
