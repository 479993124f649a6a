package records

import (
	"context"
	"io"

	"github.com/JaimeStill/hearth/pkg/lifecycle"
	"github.com/JaimeStill/hearth/pkg/pagination"
)

// System defines the public contract for record operations.
// It owns the one in-memory record set; every mutation is persisted through
// the Store and followed by a reload.
type System interface {
	Handler(maxUploadSize int64) *Handler

	// Start registers a startup hook that loads the record set.
	Start(lc *lifecycle.Coordinator) error
	Load(ctx context.Context) error

	List(
		ctx context.Context,
		page pagination.PageRequest,
		filters Filters,
	) (*pagination.PageResult[Record], error)

	Snapshot() []Record
	Find(ctx context.Context, id string) (*Record, error)
	Matches(name string) []Record
	Types() TypeOptions
	Status() Status

	Submit(ctx context.Context, cmd SubmitCommand) (*SubmitResult, error)
	Delete(ctx context.Context, id string) error
	DeleteBatch(ctx context.Context, ids []string) (int, error)
	Clear(ctx context.Context) error
	Flush(ctx context.Context) error

	Export(ctx context.Context, format string, w io.Writer) error
}

// PhotoSaver stores an uploaded image and returns its stored name.
type PhotoSaver interface {
	Save(ctx context.Context, filename string, data []byte) (string, error)
}
