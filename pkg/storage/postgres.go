package storage

import (
	"context"
	"errors"

	"github.com/jackc/pgerrcode"
	"github.com/jackc/pgx/v5"
	"github.com/jackc/pgx/v5/pgconn"
	"github.com/jackc/pgx/v5/pgxpool"
)

// ErrDuplicateCode is returned by Create when the code column's unique
// constraint rejects the insert. The constraint is the authoritative conflict
// signal; callers may pre-check existence but must still handle this error.
var ErrDuplicateCode = errors.New("code already exists")

type PostgresLinkStore struct {
	pool *pgxpool.Pool
}

func NewPostgresLinkStore(pool *pgxpool.Pool) *PostgresLinkStore {
	return &PostgresLinkStore{pool: pool}
}

// Init creates the links table. Idempotent: safe to run at every startup and
// under concurrent cold starts.
func (s *PostgresLinkStore) Init(ctx context.Context) error {
	_, err := s.pool.Exec(ctx, `
		CREATE TABLE IF NOT EXISTS links (
			id SERIAL PRIMARY KEY,
			code VARCHAR(8) UNIQUE NOT NULL,
			target_url TEXT NOT NULL,
			clicks INTEGER DEFAULT 0,
			last_clicked TIMESTAMP,
			created_at TIMESTAMP DEFAULT CURRENT_TIMESTAMP
		)`)
	return err
}

func (s *PostgresLinkStore) Create(ctx context.Context, code, targetURL string) (*Link, error) {
	query := `INSERT INTO links (code, target_url, clicks, last_clicked, created_at)
		VALUES ($1, $2, 0, NULL, CURRENT_TIMESTAMP)
		RETURNING id, code, target_url, clicks, last_clicked, created_at`
	row := s.pool.QueryRow(ctx, query, code, targetURL)
	var link Link
	err := row.Scan(&link.ID, &link.Code, &link.TargetURL, &link.Clicks, &link.LastClicked, &link.CreatedAt)
	if err != nil {
		var pgErr *pgconn.PgError
		if errors.As(err, &pgErr) && pgErr.Code == pgerrcode.UniqueViolation {
			return nil, ErrDuplicateCode
		}
		return nil, err
	}
	return &link, nil
}

func (s *PostgresLinkStore) GetAll(ctx context.Context) ([]Link, error) {
	query := `SELECT id, code, target_url, clicks, last_clicked, created_at
		FROM links ORDER BY created_at DESC, id DESC`
	rows, err := s.pool.Query(ctx, query)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var links []Link
	for rows.Next() {
		var link Link
		if err := rows.Scan(&link.ID, &link.Code, &link.TargetURL, &link.Clicks, &link.LastClicked, &link.CreatedAt); err != nil {
			return nil, err
		}
		links = append(links, link)
	}
	return links, rows.Err()
}

func (s *PostgresLinkStore) GetByCode(ctx context.Context, code string) (*Link, error) {
	query := `SELECT id, code, target_url, clicks, last_clicked, created_at
		FROM links WHERE code = $1`
	row := s.pool.QueryRow(ctx, query, code)
	var link Link
	err := row.Scan(&link.ID, &link.Code, &link.TargetURL, &link.Clicks, &link.LastClicked, &link.CreatedAt)
	if err != nil {
		if errors.Is(err, pgx.ErrNoRows) {
			return nil, nil
		}
		return nil, err
	}
	return &link, nil
}

// IncrementClicks bumps the counter and stamps last_clicked in one statement.
// A code with no row is a no-op, not an error.
func (s *PostgresLinkStore) IncrementClicks(ctx context.Context, code string) error {
	query := `UPDATE links SET clicks = clicks + 1, last_clicked = CURRENT_TIMESTAMP WHERE code = $1`
	_, err := s.pool.Exec(ctx, query, code)
	return err
}

func (s *PostgresLinkStore) Delete(ctx context.Context, code string) (bool, error) {
	tag, err := s.pool.Exec(ctx, `DELETE FROM links WHERE code = $1`, code)
	if err != nil {
		return false, err
	}
	return tag.RowsAffected() > 0, nil
}
