package domain

import "time"

// Vote records one voter's support for a feature. VoterKey is an opaque
// client-supplied identity (cookie value or user ID); the store enforces one
// vote per key per feature.
type Vote struct {
	FeatureID string
	VoterKey  string
	CreatedAt time.Time
}
