package store

import (
	"context"
	"errors"

	"github.com/uplist/uplist/internal/board/domain"
)

var (
	ErrNotFound      = errors.New("store: not found")
	ErrAlreadyExists = errors.New("store: already exists")
)

// Store is the root data access interface. Concrete drivers (sqlite today,
// postgres later) implement this. Sub-repositories keep the surface tidy and
// make it obvious which operations belong to which table.
type Store interface {
	Admins() Admins
	Features() Features
	Comments() Comments
	Votes() Votes

	ApplyMigrations() error

	// Tx starts a read/write transaction and returns a Tx-scoped Store.
	// The caller MUST call Commit() or Rollback() on the returned Tx.
	Tx(ctx context.Context) (Tx, error)

	// WithTx executes fn within a transaction. A non-nil error from fn rolls
	// the transaction back; nil commits it.
	WithTx(ctx context.Context, fn func(tx Tx) error) error

	// Close releases any underlying resources.
	Close() error

	// Ping verifies the database connection is still alive.
	Ping(ctx context.Context) error
}

// Tx is a transactional store. It exposes the same repos plus Commit/Rollback.
type Tx interface {
	Store
	Commit() error
	Rollback() error
}

type Admins interface {
	// GetAdminByID returns an account by id.
	GetAdminByID(ctx context.Context, id string) (domain.Admin, error)

	// GetAdminByEmail is used during login; emails are stored lowercased.
	GetAdminByEmail(ctx context.Context, email string) (domain.Admin, error)

	// CreateAdmin inserts a new account (id is provided by the app via ULID).
	// Returns ErrAlreadyExists when the email is taken.
	CreateAdmin(ctx context.Context, a domain.Admin) error

	// ListAdmins returns all accounts ordered by creation date (newest first).
	ListAdmins(ctx context.Context) ([]domain.Admin, error)

	// UpdatePasswordHash sets the password_hash and bumps updated_at.
	UpdatePasswordHash(ctx context.Context, adminID string, newHash string) error

	// DeleteAdmin removes an account.
	DeleteAdmin(ctx context.Context, adminID string) error

	// IsEmpty returns true if there are no accounts (bootstrap check).
	IsEmpty(ctx context.Context) (bool, error)
}

type Features interface {
	// CreateFeature inserts a new feature request.
	CreateFeature(ctx context.Context, f domain.Feature) error

	// GetFeatureByID returns a feature with its derived vote count.
	GetFeatureByID(ctx context.Context, id string) (domain.Feature, error)

	// ListFeatures returns one page of features matching the filter, with
	// vote counts and the total match count.
	ListFeatures(ctx context.Context, filter domain.FeatureFilter) (domain.FeaturePage, error)

	// UpdateFeatureStatus moves a feature to a new status and bumps updated_at.
	UpdateFeatureStatus(ctx context.Context, featureID, status string) error

	// DeleteFeature cascades to comments and votes (per schema).
	DeleteFeature(ctx context.Context, featureID string) error
}

type Comments interface {
	// CreateComment attaches a comment to a feature. A missing feature or
	// parent comment surfaces as ErrNotFound.
	CreateComment(ctx context.Context, c domain.Comment) error

	// ListCommentsByFeature returns a feature's comments oldest first.
	ListCommentsByFeature(ctx context.Context, featureID string) ([]domain.Comment, error)
}

type Votes interface {
	// CreateVote records one voter's vote. Returns ErrAlreadyExists when the
	// voter key has already voted on the feature.
	CreateVote(ctx context.Context, v domain.Vote) error

	// CountVotes returns the number of votes on a feature.
	CountVotes(ctx context.Context, featureID string) (int, error)
}
