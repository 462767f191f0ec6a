// Package inventory classifies RDS log file descriptors and folds them into
// per-instance aggregates.
package inventory

import (
	"strings"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
)

type categoryPattern struct {
	fragment string
	category entity.Category
}

// Order matters: the first fragment found in a name decides its category.
var categoryPatterns = []categoryPattern{
	{"error/", entity.CategoryError},
	{"general/", entity.CategoryGeneral},
	{"audit/", entity.CategoryAudit},
	{"slowquery/", entity.CategorySlowQuery},
}

// Classify maps a log file name to its category.
func Classify(name string) entity.Category {
	for _, p := range categoryPatterns {
		if strings.Contains(name, p.fragment) {
			return p.category
		}
	}
	return entity.CategoryUnclassified
}
