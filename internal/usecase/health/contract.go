package health

import "context"

// StorePinger checks index store availability.
type StorePinger interface {
	Ping(ctx context.Context) error
}

// SchemaChecker verifies the store schema is readable.
type SchemaChecker interface {
	Refresh(ctx context.Context) error
}
