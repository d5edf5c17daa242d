package service

import (
	"context"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/uplist/uplist/internal/board/domain"
	"github.com/uplist/uplist/internal/board/store"
	"github.com/uplist/uplist/pkg/idx"
)

// ErrInvalidInput marks request data the board cannot accept (empty title,
// over-long body, unknown sort). Wrapped errors carry the specific reason.
var ErrInvalidInput = errors.New("invalid_input")

// Field limits for board submissions.
const (
	MaxTitleLength       = 140
	MaxDescriptionLength = 4000
	MaxCommentLength     = 2000
	MaxAuthorNameLength  = 60

	DefaultPerPage = 20
	MaxPerPage     = 100
)

// FeatureService owns the public board surface: feature requests, comments,
// and votes.
type FeatureService struct {
	Store store.Store
}

// CreateFeature submits a new feature request; it always starts open.
func (s *FeatureService) CreateFeature(ctx context.Context, title, description, authorName string) (domain.Feature, error) {
	title = strings.TrimSpace(title)
	if title == "" {
		return domain.Feature{}, fmt.Errorf("%w: title is required", ErrInvalidInput)
	}
	if len(title) > MaxTitleLength {
		return domain.Feature{}, fmt.Errorf("%w: title exceeds %d characters", ErrInvalidInput, MaxTitleLength)
	}
	if len(description) > MaxDescriptionLength {
		return domain.Feature{}, fmt.Errorf("%w: description exceeds %d characters", ErrInvalidInput, MaxDescriptionLength)
	}
	if len(authorName) > MaxAuthorNameLength {
		return domain.Feature{}, fmt.Errorf("%w: author name exceeds %d characters", ErrInvalidInput, MaxAuthorNameLength)
	}

	now := time.Now().UTC()
	f := domain.Feature{
		ID:          idx.New().String(),
		Title:       title,
		Description: strings.TrimSpace(description),
		Status:      domain.StatusOpen,
		AuthorName:  strings.TrimSpace(authorName),
		CreatedAt:   now,
		UpdatedAt:   now,
	}

	if err := s.Store.Features().CreateFeature(ctx, f); err != nil {
		return domain.Feature{}, err
	}
	return f, nil
}

// GetFeature returns a single feature with its vote count.
func (s *FeatureService) GetFeature(ctx context.Context, id string) (domain.Feature, error) {
	return s.Store.Features().GetFeatureByID(ctx, id)
}

// ListFeatures normalizes the filter and returns one page of matches.
func (s *FeatureService) ListFeatures(ctx context.Context, filter domain.FeatureFilter) (domain.FeaturePage, error) {
	if filter.Status != "" && !domain.ValidStatus(filter.Status) {
		return domain.FeaturePage{}, fmt.Errorf("%w: unknown status %q", ErrInvalidInput, filter.Status)
	}
	switch filter.Sort {
	case "", domain.SortNewest, domain.SortOldest, domain.SortVotes:
	default:
		return domain.FeaturePage{}, fmt.Errorf("%w: unknown sort %q", ErrInvalidInput, filter.Sort)
	}

	if filter.PerPage <= 0 {
		filter.PerPage = DefaultPerPage
	}
	if filter.PerPage > MaxPerPage {
		filter.PerPage = MaxPerPage
	}
	if filter.Page < 1 {
		filter.Page = 1
	}

	return s.Store.Features().ListFeatures(ctx, filter)
}

// UpdateStatus moves a feature to a new workflow status.
func (s *FeatureService) UpdateStatus(ctx context.Context, featureID, status string) error {
	if !domain.ValidStatus(status) {
		return domain.ErrInvalidStatus
	}
	return s.Store.Features().UpdateFeatureStatus(ctx, featureID, status)
}

// DeleteFeature removes a feature and, via the schema, its comments and votes.
func (s *FeatureService) DeleteFeature(ctx context.Context, featureID string) error {
	return s.Store.Features().DeleteFeature(ctx, featureID)
}

// AddComment attaches a comment to a feature. parentID may be nil for a
// top-level comment; a missing feature or parent surfaces as store.ErrNotFound.
func (s *FeatureService) AddComment(ctx context.Context, featureID string, parentID *string, authorName, body string) (domain.Comment, error) {
	body = strings.TrimSpace(body)
	if body == "" {
		return domain.Comment{}, fmt.Errorf("%w: comment body is required", ErrInvalidInput)
	}
	if len(body) > MaxCommentLength {
		return domain.Comment{}, fmt.Errorf("%w: comment exceeds %d characters", ErrInvalidInput, MaxCommentLength)
	}
	if len(authorName) > MaxAuthorNameLength {
		return domain.Comment{}, fmt.Errorf("%w: author name exceeds %d characters", ErrInvalidInput, MaxAuthorNameLength)
	}

	c := domain.Comment{
		ID:         idx.New().String(),
		FeatureID:  featureID,
		ParentID:   parentID,
		AuthorName: strings.TrimSpace(authorName),
		Body:       body,
		CreatedAt:  time.Now().UTC(),
	}

	if err := s.Store.Comments().CreateComment(ctx, c); err != nil {
		return domain.Comment{}, err
	}
	return c, nil
}

// ListComments returns a feature's comments oldest first. The feature must
// exist; listing a missing feature returns store.ErrNotFound.
func (s *FeatureService) ListComments(ctx context.Context, featureID string) ([]domain.Comment, error) {
	if _, err := s.Store.Features().GetFeatureByID(ctx, featureID); err != nil {
		return nil, err
	}
	return s.Store.Comments().ListCommentsByFeature(ctx, featureID)
}

// Vote records one vote per voter key per feature and returns the new count.
// A duplicate vote surfaces as store.ErrAlreadyExists. The insert and the
// count read share a transaction so the returned count is exact.
func (s *FeatureService) Vote(ctx context.Context, featureID, voterKey string) (int, error) {
	voterKey = strings.TrimSpace(voterKey)
	if voterKey == "" {
		return 0, fmt.Errorf("%w: voter key is required", ErrInvalidInput)
	}

	var count int
	err := s.Store.WithTx(ctx, func(tx store.Tx) error {
		if err := tx.Votes().CreateVote(ctx, domain.Vote{
			FeatureID: featureID,
			VoterKey:  voterKey,
			CreatedAt: time.Now().UTC(),
		}); err != nil {
			return err
		}
		var err error
		count, err = tx.Votes().CountVotes(ctx, featureID)
		return err
	})
	if err != nil {
		return 0, err
	}
	return count, nil
}
