package sqlite

import (
	"context"
	"database/sql"

	"github.com/uplist/uplist/internal/board/domain"
)

type commentsRepo struct {
	db dbtx
}

func (r *commentsRepo) CreateComment(ctx context.Context, c domain.Comment) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO comments (id, feature_id, parent_id, author_name, body, created_at)
		 VALUES (?, ?, ?, ?, ?, ?)`,
		c.ID, c.FeatureID, mapOptionalString(c.ParentID), c.AuthorName, c.Body, c.CreatedAt)
	return mapConstraint(err)
}

func (r *commentsRepo) ListCommentsByFeature(ctx context.Context, featureID string) ([]domain.Comment, error) {
	rows, err := r.db.QueryContext(ctx,
		`SELECT id, feature_id, parent_id, author_name, body, created_at
		 FROM comments WHERE feature_id = ? ORDER BY created_at ASC`, featureID)
	if err != nil {
		return nil, err
	}
	defer rows.Close()

	var comments []domain.Comment
	for rows.Next() {
		var (
			c        domain.Comment
			parentID sql.NullString
		)
		if err := rows.Scan(&c.ID, &c.FeatureID, &parentID, &c.AuthorName, &c.Body, &c.CreatedAt); err != nil {
			return nil, err
		}
		c.ParentID = mapNullStringPtr(parentID)
		comments = append(comments, c)
	}
	return comments, rows.Err()
}
