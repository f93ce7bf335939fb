// Package versioning decides how to reconcile two copies of the same slice.
// Every function here is pure apart from reading the clock in BumpSliceVersionForEdit.
package versioning

import (
	"fmt"
	"time"

	"babyday-backend/internal/model"
	"babyday-backend/internal/validate"
)

// Comparison is the outcome of comparing a local and a remote copy.
type Comparison string

const (
	Local    Comparison = "local"
	Remote   Comparison = "remote"
	Equal    Comparison = "equal"
	Conflict Comparison = "conflict"
)

// SyncAction is what a sync layer should do with a remote copy.
type SyncAction string

const (
	ApplyRemote    SyncAction = "applyRemote"
	KeepLocal      SyncAction = "keepLocal"
	NoChange       SyncAction = "noChange"
	ManualConflict SyncAction = "manualConflict"
)

// CompareSliceVersions orders two copies of a slice by version, then by updatedAt.
// Equal versions with differing updatedAt are a conflict.
func CompareSliceVersions(local, remote model.LogSlice) Comparison {
	switch {
	case local.Version > remote.Version:
		return Local
	case remote.Version > local.Version:
		return Remote
	case local.UpdatedAt.Equal(remote.UpdatedAt):
		return Equal
	default:
		return Conflict
	}
}

// DecideSyncAction maps the comparison of local (nil when absent) and remote to an action.
func DecideSyncAction(local *model.LogSlice, remote model.LogSlice) SyncAction {
	if local == nil {
		return ApplyRemote
	}
	switch CompareSliceVersions(*local, remote) {
	case Remote:
		return ApplyRemote
	case Local:
		return KeepLocal
	case Equal:
		return NoChange
	default:
		return ManualConflict
	}
}

// ResolveSync returns the copy that should be kept. A manual conflict is
// returned as model.ErrConflictUnresolved together with the local copy.
func ResolveSync(local *model.LogSlice, remote model.LogSlice) (model.LogSlice, SyncAction, error) {
	action := DecideSyncAction(local, remote)
	switch action {
	case ApplyRemote:
		return remote, action, nil
	case KeepLocal, NoChange:
		return *local, action, nil
	default:
		return *local, action, fmt.Errorf("slice %s at version %d: %w", remote.ID, remote.Version, model.ErrConflictUnresolved)
	}
}

// BumpSliceVersionForEdit returns a copy of slice with version+1 and updatedAt set
// to now, validated against the slice schema.
func BumpSliceVersionForEdit(slice model.LogSlice) (model.LogSlice, error) {
	return bumpAt(slice, time.Now().UTC())
}

func bumpAt(slice model.LogSlice, now time.Time) (model.LogSlice, error) {
	slice.Version++
	slice.UpdatedAt = now
	if err := validate.Slice(slice); err != nil {
		return model.LogSlice{}, err
	}
	return slice, nil
}
