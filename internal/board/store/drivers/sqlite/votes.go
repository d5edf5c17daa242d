package sqlite

import (
	"context"

	"github.com/uplist/uplist/internal/board/domain"
)

type votesRepo struct {
	db dbtx
}

func (r *votesRepo) CreateVote(ctx context.Context, v domain.Vote) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO votes (feature_id, voter_key, created_at) VALUES (?, ?, ?)`,
		v.FeatureID, v.VoterKey, v.CreatedAt)
	return mapConstraint(err)
}

func (r *votesRepo) CountVotes(ctx context.Context, featureID string) (int, error) {
	var count int
	err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM votes WHERE feature_id = ?`, featureID).Scan(&count)
	return count, err
}
