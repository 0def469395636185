package config

import "context"

// Loader is the interface for a format-specific grammar loader. Load reads
// every fragment file under root, validates its shape, and merges the
// fragments into a single Document.
type Loader interface {
	Load(ctx context.Context, root string) (*Document, error)
}
