package types

import (
	"errors"
	"fmt"
)

var (
	ErrConfiguration       = errors.New("configuration error")
	ErrUpstreamUnavailable = errors.New("upstream unavailable")
	ErrPublishFailure      = errors.New("publish failure")
	ErrMalformedDescriptor = errors.New("malformed log file descriptor")
)

// Stages at which a single instance can fail.
const (
	StageListLogFiles = "list_log_files"
	StagePublish      = "publish_metrics"
)

// InstanceError scopes a failure to one instance and the stage it happened in.
type InstanceError struct {
	InstanceID string
	Stage      string
	Err        error
}

func (e *InstanceError) Error() string {
	return fmt.Sprintf("instance %s: %s: %v", e.InstanceID, e.Stage, e.Err)
}

func (e *InstanceError) Unwrap() error {
	return e.Err
}
