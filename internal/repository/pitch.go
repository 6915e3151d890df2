package repository

import (
	"context"
	"database/sql"
	"fmt"
	"math"
	"time"

	"pitchmap/internal/domain"

	gonanoid "github.com/matoous/go-nanoid/v2"
	"github.com/rs/zerolog"
)

type PitchRepository struct {
	db     *sql.DB
	logger zerolog.Logger
}

func NewPitchRepository(sqlDB *sql.DB, logger zerolog.Logger) *PitchRepository {
	return &PitchRepository{db: sqlDB, logger: logger}
}

// FetchedGames returns the gamePks whose feeds are already cached. Feeds
// are immutable once a game is final, so a cached game is never re-fetched
// unless the caller forces a refresh.
func (r *PitchRepository) FetchedGames(ctx context.Context, gamePks []int) (map[int]bool, error) {
	fetched := make(map[int]bool, len(gamePks))
	if len(gamePks) == 0 {
		return fetched, nil
	}

	stmt, err := r.db.PrepareContext(ctx,
		`SELECT 1 FROM games WHERE game_pk = ? AND fetched_at IS NOT NULL`)
	if err != nil {
		return nil, err
	}
	defer stmt.Close()

	for _, pk := range gamePks {
		var one int
		err := stmt.QueryRowContext(ctx, pk).Scan(&one)
		if err == sql.ErrNoRows {
			continue
		}
		if err != nil {
			return nil, err
		}
		fetched[pk] = true
	}
	return fetched, nil
}

// ReplaceGamePitches stores every pitch of one game, replacing any prior
// rows for that game in the same transaction.
func (r *PitchRepository) ReplaceGamePitches(ctx context.Context, gamePk, season int, pitches []domain.PitchRecord) error {
	tx, err := r.db.BeginTx(ctx, nil)
	if err != nil {
		return fmt.Errorf("failed to begin transaction: %w", err)
	}
	defer tx.Rollback()

	now := time.Now()
	if _, err := tx.ExecContext(ctx, `
		INSERT INTO games (game_pk, season, fetched_at, created_at, updated_at)
		VALUES (?, ?, ?, ?, ?)
		ON CONFLICT (game_pk) DO UPDATE SET
			fetched_at = excluded.fetched_at,
			updated_at = excluded.updated_at`,
		gamePk, season, now, now, now); err != nil {
		return fmt.Errorf("failed to upsert game %d: %w", gamePk, err)
	}

	if _, err := tx.ExecContext(ctx, `DELETE FROM pitches WHERE game_pk = ?`, gamePk); err != nil {
		return fmt.Errorf("failed to clear pitches for game %d: %w", gamePk, err)
	}

	stmt, err := tx.PrepareContext(ctx, `
		INSERT INTO pitches (
			id, game_pk, pitcher_id, pitcher_name, pitch_type, game_date, batter_hand,
			px, pz, vx0, vy0, vz0, ax, ay, az, start_speed, ivb, hb, extension, created_at
		) VALUES (?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?, ?)`)
	if err != nil {
		return fmt.Errorf("failed to prepare pitch insert: %w", err)
	}
	defer stmt.Close()

	for _, p := range pitches {
		id, err := gonanoid.New()
		if err != nil {
			return fmt.Errorf("failed to generate nanoid: %w", err)
		}
		_, err = stmt.ExecContext(ctx,
			id, gamePk, p.PitcherID, p.PitcherName, p.PitchType, p.GameDate, p.BatterHand,
			nullIfNaN(p.PX), nullIfNaN(p.PZ),
			nullIfNaN(p.VX0), nullIfNaN(p.VY0), nullIfNaN(p.VZ0),
			nullIfNaN(p.AX), nullIfNaN(p.AY), nullIfNaN(p.AZ),
			nullIfNaN(p.StartSpeed), nullIfNaN(p.IVB), nullIfNaN(p.HB), nullIfNaN(p.Extension),
			time.Now())
		if err != nil {
			return fmt.Errorf("failed to insert pitch: %w", err)
		}
	}

	return tx.Commit()
}

// GetByPitcher returns every cached pitch thrown by one pitcher. Stored
// NULLs come back as NaN, matching the in-memory convention.
func (r *PitchRepository) GetByPitcher(ctx context.Context, pitcherID int) ([]domain.PitchRecord, error) {
	rows, err := r.db.QueryContext(ctx, `
		SELECT pitcher_id, pitcher_name, pitch_type, game_date, batter_hand,
			px, pz, vx0, vy0, vz0, ax, ay, az, start_speed, ivb, hb, extension
		FROM pitches WHERE pitcher_id = ? ORDER BY game_date, id`, pitcherID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var records []domain.PitchRecord
	for rows.Next() {
		var p domain.PitchRecord
		var px, pz, vx0, vy0, vz0, ax, ay, az, speed, ivb, hb, ext sql.NullFloat64
		if err := rows.Scan(&p.PitcherID, &p.PitcherName, &p.PitchType, &p.GameDate, &p.BatterHand,
			&px, &pz, &vx0, &vy0, &vz0, &ax, &ay, &az, &speed, &ivb, &hb, &ext); err != nil {
			return nil, err
		}
		p.PX, p.PZ = nanIfNull(px), nanIfNull(pz)
		p.VX0, p.VY0, p.VZ0 = nanIfNull(vx0), nanIfNull(vy0), nanIfNull(vz0)
		p.AX, p.AY, p.AZ = nanIfNull(ax), nanIfNull(ay), nanIfNull(az)
		p.StartSpeed, p.IVB, p.HB, p.Extension = nanIfNull(speed), nanIfNull(ivb), nanIfNull(hb), nanIfNull(ext)
		records = append(records, p)
	}
	return records, rows.Err()
}

func nullIfNaN(v float64) any {
	if math.IsNaN(v) {
		return nil
	}
	return v
}

func nanIfNull(v sql.NullFloat64) float64 {
	if !v.Valid {
		return math.NaN()
	}
	return v.Float64
}
