package settings

import "context"

// Store persists one Settings document per family. Load returns
// ErrSettingsNotFound for a family that never saved any.
type Store interface {
	Load(ctx context.Context, familyID string) (*Settings, error)
	Save(ctx context.Context, settings *Settings) error
}
