package playerpool

import (
	"context"
	"errors"
	"fmt"

	"github.com/google/uuid"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/draftkit/draftroom/go/internal/models"
)

const (
	selectPlayerByID = `
SELECT id, full_name, position, team, adp, projected_points, bye_week
FROM players
WHERE id = $1`

	selectAllPlayers = `
SELECT id, full_name, position, team, adp, projected_points, bye_week
FROM players
ORDER BY adp`
)

// Repository is the Postgres-backed Pool used in production rooms.
type Repository struct {
	pool *pgxpool.Pool
}

// NewRepository wraps a pgx connection pool.
func NewRepository(pool *pgxpool.Pool) *Repository {
	return &Repository{pool: pool}
}

var _ Pool = (*Repository)(nil)

// Player implements Pool.
func (r *Repository) Player(ctx context.Context, id uuid.UUID) (models.Player, error) {
	row := r.pool.QueryRow(ctx, selectPlayerByID, id)
	p, err := scanPlayer(row)
	if errors.Is(err, pgx.ErrNoRows) {
		return models.Player{}, fmt.Errorf("%w: %s", ErrPlayerNotFound, id)
	}
	if err != nil {
		return models.Player{}, fmt.Errorf("query player %s: %w", id, err)
	}
	return p, nil
}

// List implements Pool, returning the full pool ordered by ADP.
func (r *Repository) List(ctx context.Context) ([]models.Player, error) {
	rows, err := r.pool.Query(ctx, selectAllPlayers)
	if err != nil {
		return nil, fmt.Errorf("query players: %w", err)
	}
	defer rows.Close()

	var players []models.Player
	for rows.Next() {
		p, err := scanPlayer(rows)
		if err != nil {
			return nil, fmt.Errorf("scan player: %w", err)
		}
		players = append(players, p)
	}
	if err := rows.Err(); err != nil {
		return nil, fmt.Errorf("iterate players: %w", err)
	}
	return players, nil
}

func scanPlayer(row pgx.Row) (models.Player, error) {
	var p models.Player
	var position string
	err := row.Scan(&p.ID, &p.FullName, &position, &p.Team, &p.ADP, &p.ProjectedPoints, &p.ByeWeek)
	if err != nil {
		return models.Player{}, err
	}
	p.Position = models.Position(position)
	if !p.Position.Valid() {
		return models.Player{}, fmt.Errorf("player %s has unknown position %q", p.ID, position)
	}
	return p, nil
}
