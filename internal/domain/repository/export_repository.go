package repository

import (
	"context"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
)

type ExportRepository interface {
	ExportReportToCSV(report entity.RunReport, filename string, outputDir string) (string, error)
	ExportReportToJSON(report entity.RunReport, filename string, outputDir string) (string, error)
	ExportReportToPDF(report entity.RunReport, filename string, outputDir string) (string, error)
}

// ArtifactStore keeps exported report files outside the local machine.
type ArtifactStore interface {
	Upload(ctx context.Context, target string, paths []string) ([]string, error)
}
