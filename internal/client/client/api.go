// Package client implements the HTTP consumer side of the offline sync
// protocol: catalog snapshot fetch, JSON batch submit and multipart
// attachment upload.
package client

import (
	"context"

	"github.com/dmitrijs2005/liftaudit/internal/client/models"
)

// API is the transport surface the sync engine and catalog cache depend on.
type API interface {
	// Ping reports whether the server is reachable at all.
	Ping(ctx context.Context) error

	// FetchSnapshot downloads the current catalog snapshot.
	FetchSnapshot(ctx context.Context) (*models.Snapshot, error)

	// SubmitBatch posts one sync batch and returns the server-assigned id
	// mappings, correlated by client_id.
	SubmitBatch(ctx context.Context, req *BatchRequest) (*BatchResult, error)

	// UploadAttachment posts one attachment as multipart form data. The
	// offline UUID inside meta lets the server deduplicate retried uploads.
	UploadAttachment(ctx context.Context, deviceID string, meta AttachmentMeta, filename string, data []byte) (*UploadResult, error)
}
