package repository

import (
	"github.com/diillson/aurora-logmon/internal/shared/types"
)

// ConfigRepository defines the interface for loading configuration.
type ConfigRepository interface {
	LoadConfigFile(filePath string) (*types.RunConfig, error)
	LoadEnv() (*types.RunConfig, error)
}
