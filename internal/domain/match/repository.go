package match

import "context"

// Counts aggregates match totals for status reporting.
type Counts struct {
	Total    int
	Finished int
}

// Repository exposes match persistence. ExternalID is unique; matches are
// never deleted by this service.
type Repository interface {
	GetByExternalID(ctx context.Context, externalID int64) (Match, bool, error)
	Insert(ctx context.Context, item Match) (Match, error)
	Update(ctx context.Context, item Match) error
	ListByStatus(ctx context.Context, status string) ([]Match, error)
	// ListFinishedWithUnprocessed returns FINISHED matches that still have at
	// least one prediction with processed=false.
	ListFinishedWithUnprocessed(ctx context.Context) ([]Match, error)
	Counts(ctx context.Context) (Counts, error)
}
