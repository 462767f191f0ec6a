package entity

import (
	"fmt"
	"math"
	"time"

	"github.com/diillson/aurora-logmon/internal/shared/types"
)

// Sentinels for fields the API left out. Epoch 0 and negative timestamps are
// valid LastWritten values.
const (
	UnknownSize        int64 = -1
	UnknownLastWritten int64 = math.MinInt64
)

// LogFileDescriptor representa um arquivo de log de uma instância (sem o conteúdo).
type LogFileDescriptor struct {
	Name        string `json:"name"`
	SizeBytes   int64  `json:"size_bytes"`
	LastWritten int64  `json:"last_written"` // epoch millis
}

// LastWrittenTime returns LastWritten as a UTC time.
func (d LogFileDescriptor) LastWrittenTime() time.Time {
	return time.UnixMilli(d.LastWritten).UTC()
}

// Validate reports descriptors missing one of the required fields.
func (d LogFileDescriptor) Validate() error {
	switch {
	case d.Name == "":
		return fmt.Errorf("%w: missing log file name", types.ErrMalformedDescriptor)
	case d.SizeBytes < 0:
		return fmt.Errorf("%w: %s has no size", types.ErrMalformedDescriptor, d.Name)
	case d.LastWritten == UnknownLastWritten:
		return fmt.Errorf("%w: %s has no last written time", types.ErrMalformedDescriptor, d.Name)
	}
	return nil
}

// LogFilePage is one response of the log file listing.
type LogFilePage struct {
	Files      []LogFileDescriptor
	NextMarker string
}

// Category is the log class inferred from the file name.
type Category int

const (
	CategoryUnclassified Category = iota
	CategoryError
	CategoryGeneral
	CategoryAudit
	CategorySlowQuery
)

// Categories lists the classified categories in matching order.
var Categories = []Category{CategoryError, CategoryGeneral, CategoryAudit, CategorySlowQuery}

func (c Category) String() string {
	switch c {
	case CategoryError:
		return "error"
	case CategoryGeneral:
		return "general"
	case CategoryAudit:
		return "audit"
	case CategorySlowQuery:
		return "slowquery"
	default:
		return "unclassified"
	}
}

// MarshalText lets categories be used as JSON map keys.
func (c Category) MarshalText() ([]byte, error) {
	return []byte(c.String()), nil
}
