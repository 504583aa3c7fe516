package repository

import (
	"context"

	"github.com/jackc/pgx/v5/pgxpool"

	"github.com/BerkantGC/hotel-booking-api/internal/domain"
)

// SubjectRepository defines the point lookup the identity verifier performs.
type SubjectRepository interface {
	GetByID(ctx context.Context, id int64) (*domain.Subject, error)
}

type subjectRepository struct {
	pool *pgxpool.Pool
}

// NewSubjectRepository returns a Postgres-backed implementation.
func NewSubjectRepository(pool *pgxpool.Pool) SubjectRepository {
	return &subjectRepository{pool: pool}
}

func (r *subjectRepository) GetByID(ctx context.Context, id int64) (*domain.Subject, error) {
	const query = `SELECT id FROM users WHERE id=$1`

	var subject domain.Subject
	if err := r.pool.QueryRow(ctx, query, id).Scan(&subject.ID); err != nil {
		return nil, err
	}
	return &subject, nil
}
