package sqlite

import (
	"context"
	"time"

	"github.com/uplist/uplist/internal/board/domain"
)

type featuresRepo struct {
	db dbtx
}

// featureColumns includes the derived vote count so listings and single
// fetches stay consistent.
const featureColumns = `f.id, f.title, f.description, f.status, f.author_name,
	(SELECT COUNT(*) FROM votes v WHERE v.feature_id = f.id) AS votes,
	f.created_at, f.updated_at`

func scanFeature(row interface{ Scan(...any) error }) (domain.Feature, error) {
	var f domain.Feature
	err := row.Scan(&f.ID, &f.Title, &f.Description, &f.Status, &f.AuthorName, &f.Votes, &f.CreatedAt, &f.UpdatedAt)
	return f, err
}

func (r *featuresRepo) CreateFeature(ctx context.Context, f domain.Feature) error {
	_, err := r.db.ExecContext(ctx,
		`INSERT INTO features (id, title, description, status, author_name, created_at, updated_at)
		 VALUES (?, ?, ?, ?, ?, ?, ?)`,
		f.ID, f.Title, f.Description, f.Status, f.AuthorName, f.CreatedAt, f.UpdatedAt)
	return mapConstraint(err)
}

func (r *featuresRepo) GetFeatureByID(ctx context.Context, id string) (domain.Feature, error) {
	row := r.db.QueryRowContext(ctx,
		`SELECT `+featureColumns+` FROM features f WHERE f.id = ?`, id)
	f, err := scanFeature(row)
	if err != nil {
		return domain.Feature{}, mapNotFound(err)
	}
	return f, nil
}

func (r *featuresRepo) ListFeatures(ctx context.Context, filter domain.FeatureFilter) (domain.FeaturePage, error) {
	where := ` WHERE 1=1`
	args := []any{}

	if filter.Status != "" {
		where += ` AND f.status = ?`
		args = append(args, filter.Status)
	}
	if filter.Query != "" {
		where += ` AND (f.title LIKE ? OR f.description LIKE ?)`
		pattern := "%" + filter.Query + "%"
		args = append(args, pattern, pattern)
	}

	var total int
	if err := r.db.QueryRowContext(ctx,
		`SELECT COUNT(*) FROM features f`+where, args...).Scan(&total); err != nil {
		return domain.FeaturePage{}, err
	}

	order := ` ORDER BY f.created_at DESC`
	switch filter.Sort {
	case domain.SortOldest:
		order = ` ORDER BY f.created_at ASC`
	case domain.SortVotes:
		order = ` ORDER BY votes DESC, f.created_at DESC`
	}

	page := max(filter.Page, 1)
	perPage := filter.PerPage
	if perPage <= 0 {
		perPage = 20
	}

	query := `SELECT ` + featureColumns + ` FROM features f` + where + order + ` LIMIT ? OFFSET ?`
	args = append(args, perPage, (page-1)*perPage)

	rows, err := r.db.QueryContext(ctx, query, args...)
	if err != nil {
		return domain.FeaturePage{}, err
	}
	defer rows.Close()

	var features []domain.Feature
	for rows.Next() {
		f, err := scanFeature(rows)
		if err != nil {
			return domain.FeaturePage{}, err
		}
		features = append(features, f)
	}
	if err := rows.Err(); err != nil {
		return domain.FeaturePage{}, err
	}

	return domain.FeaturePage{
		Features: features,
		Total:    total,
		Page:     page,
		PerPage:  perPage,
	}, nil
}

func (r *featuresRepo) UpdateFeatureStatus(ctx context.Context, featureID, status string) error {
	res, err := r.db.ExecContext(ctx,
		`UPDATE features SET status = ?, updated_at = ? WHERE id = ?`,
		status, time.Now().UTC(), featureID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}

func (r *featuresRepo) DeleteFeature(ctx context.Context, featureID string) error {
	res, err := r.db.ExecContext(ctx, `DELETE FROM features WHERE id = ?`, featureID)
	if err != nil {
		return err
	}
	return requireAffected(res)
}
