package domain

import "context"

// ArtifactSource defines read access to the files written by the matching pipeline.
// A missing artifact is not an error: implementations return a nil result and a nil error.
type ArtifactSource interface {
	ReadRuns(ctx context.Context) ([]Run, error)
	ReadExportRows(ctx context.Context) ([]ExportRow, error)
	LoadCheckpoint(ctx context.Context, productID string) (*Checkpoint, error)
	LoadMatch(ctx context.Context, productID string) (*Match, error)
}
