package blob

import (
	"context"
	"fmt"
	"path"
	"time"
)

// Store holds uploaded deliverables. Every version gets a fresh object path,
// so objects are write-once and concurrent uploads never clobber each other.
type Store interface {
	Put(ctx context.Context, objectPath string, data []byte, contentType string) error

	PublicURL(objectPath string) string
}

// ArtifactPath builds the object path for one uploaded version:
// tasks/<task id>/<unix timestamp>_<filename>.
func ArtifactPath(taskID, filename string, uploadedAt time.Time) string {
	return path.Join("tasks", taskID, fmt.Sprintf("%d_%s", uploadedAt.Unix(), path.Base(filename)))
}
