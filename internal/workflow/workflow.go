// Package workflow implements the automation passes the service exposes as
// trigger endpoints: retrieving pending files, discovering and retrieving
// whole directories, sending freshly landed objects and reconciling batch
// status records against transfer results.
package workflow

import (
	"context"

	"github.com/sftpflow/sftpflow/internal/models"
)

// Lister enumerates the files of a remote directory.
type Lister interface {
	List(ctx context.Context, dir string) ([]string, error)
}

// Notifier is told when a batch reaches a terminal status.
type Notifier interface {
	BatchFinished(ctx context.Context, rec models.BatchRecord) error
}
