package availability

import (
	"context"
	"time"
)

// Snapshot is the last saved availability of one employee.
type Snapshot struct {
	Employee string    `json:"employee"`
	Version  string    `json:"version"`
	Document Document  `json:"availability"`
	SavedAt  time.Time `json:"saved_at"`
}

// SnapshotCache is the key-value capability used to keep the last saved
// snapshot close at hand. The codec never calls it; the service layer injects
// an implementation.
type SnapshotCache interface {
	GetSnapshot(ctx context.Context, employee string) (Snapshot, bool, error)
	SetSnapshot(ctx context.Context, snap Snapshot) error
}

// NopSnapshotCache never hits.
type NopSnapshotCache struct{}

func (NopSnapshotCache) GetSnapshot(context.Context, string) (Snapshot, bool, error) {
	return Snapshot{}, false, nil
}
func (NopSnapshotCache) SetSnapshot(context.Context, Snapshot) error { return nil }
