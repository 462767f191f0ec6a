package repository

import (
	"context"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
)

// InstanceLister lists the instances that belong to a cluster.
type InstanceLister interface {
	ListInstances(ctx context.Context, clusterID string) ([]entity.DBInstance, error)
}

// LogFileLister returns one page of log file descriptors, starting at marker.
// An empty marker requests the first page.
type LogFileLister interface {
	ListLogFiles(ctx context.Context, instanceID, marker string) (entity.LogFilePage, error)
}
