package repository

import (
	"context"
	"database/sql"
	"fmt"
	"time"

	"pitchmap/internal/constants"
	"pitchmap/internal/domain"

	"github.com/rs/zerolog"
)

type PlayerRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPlayerRepository(sqlDB *sql.DB, logger zerolog.Logger) *PlayerRepository {
	return &PlayerRepository{db: sqlDB, logger: logger}
}

// UpsertBatch replaces roster rows in DBBatchSize chunks inside one
// transaction.
func (r *PlayerRepository) UpsertBatch(ctx context.Context, players []domain.RosterPlayer) error {
	if len(players) == 0 {
		return nil
	}

	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO players (player_id, name, season, last_fetch_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?, ?)
		ON CONFLICT (player_id) DO UPDATE SET
			name = excluded.name,
			season = excluded.season,
			last_fetch_at = excluded.last_fetch_at,
			updated_at = excluded.updated_at`)
	if err != nil {
		return fmt.Errorf("failed to prepare upsert: %w", err)
	}
	defer stmt.Close()

	now := time.Now()
	for i := 0; i < len(players); i += constants.DBBatchSize {
		end := i + constants.DBBatchSize
		if end > len(players) {
			end = len(players)
		}
		for _, p := range players[i:end] {
			if _, err := stmt.ExecContext(ctx, p.ID, p.Name, p.Season, now, now, now); err != nil {
				return fmt.Errorf("failed to upsert player %d: %w", p.ID, err)
			}
		}
	}

	return tx.Commit()
}

// List returns the season roster ordered by name, which is the order the
// pitcher select control shows.
func (r *PlayerRepository) List(ctx context.Context, season int) ([]domain.RosterPlayer, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT player_id, name, season, last_fetch_at, created_at, updated_at
		FROM players WHERE season = ? ORDER BY name`, season)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var players []domain.RosterPlayer
	for rows.Next() {
		var p domain.RosterPlayer
		if err := rows.Scan(&p.ID, &p.Name, &p.Season, &p.LastFetchAt, &p.CreatedAt, &p.UpdatedAt); err != nil {
			return nil, err
		}
		players = append(players, p)
	}
	return players, rows.Err()
}

// ShouldRefresh reports whether the season roster is stale. An empty
// roster always refreshes. The newest row is selected directly rather
// than through MAX(): the aggregate loses the column's declared type and
// the driver hands back a string the time scanner rejects.
func (r *PlayerRepository) ShouldRefresh(ctx context.Context, season int, ttl time.Duration) (bool, error) {
	var last time.Time
	err := r.db.QueryRowContext(ctx, `
		SELECT last_fetch_at FROM players
		WHERE season = ? ORDER BY last_fetch_at DESC LIMIT 1`, season).Scan(&last)
	if err == sql.ErrNoRows {
		r.logger.Debug().Int("season", season).Msg("roster empty, should refresh")
		return true, nil
	}
	if err != nil {
		r.logger.Error().Err(err).Int("season", season).Msg("failed to read roster fetch time")
		return false, err
	}

	timeSince := time.Since(last)
	shouldRefresh := timeSince > ttl
	r.logger.Debug().
		Int("season", season).
		Time("last_fetch_at", last).
		Dur("time_since", timeSince).
		Dur("ttl", ttl).
		Bool("should_refresh", shouldRefresh).
		Msg("checking if roster should refresh")

	return shouldRefresh, nil
}
