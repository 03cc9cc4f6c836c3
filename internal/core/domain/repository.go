package domain

import "context"

// MetadataStore is the external store holding the wallet snapshot. A nil
// snapshot with a nil error from Fetch means no snapshot exists yet.
type MetadataStore interface {
	Fetch(ctx context.Context) (*Snapshot, error)
	Update(ctx context.Context, snapshot *Snapshot) error
}
