package export

import (
	"encoding/csv"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"regexp"
	"strconv"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/jung-kurt/gofpdf"

	"github.com/diillson/aurora-logmon/internal/domain/entity"
	"github.com/diillson/aurora-logmon/internal/domain/repository"
)

// ExportRepositoryImpl implementa o ExportRepository.
type ExportRepositoryImpl struct{}

// NewExportRepository cria uma nova implementação do ExportRepository.
func NewExportRepository() repository.ExportRepository {
	return &ExportRepositoryImpl{}
}

var csvHeaders = []string{
	"Run ID", "Cluster", "Account ID", "Instance", "Engine", "Instance Class",
	"Log Files", "Total Size (bytes)", "Total Size",
	"Stale Error", "Stale General", "Stale Audit", "Stale Slow Query", "Stale Total",
	"Skipped", "Size Threshold Exceeded", "Published", "Error",
}

// ExportReportToCSV writes one row per instance.
func (r *ExportRepositoryImpl) ExportReportToCSV(report entity.RunReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "csv")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating CSV file: %w", err)
	}
	defer file.Close()

	writer := csv.NewWriter(file)
	if err := writer.Write(csvHeaders); err != nil {
		return "", fmt.Errorf("error writing CSV header: %w", err)
	}

	for _, o := range report.Outcomes {
		record := []string{
			report.RunID,
			report.ClusterID,
			report.AccountID,
			o.Instance.Identifier,
			o.Instance.Engine,
			o.Instance.Class,
		}
		if res := o.Result; res != nil {
			record = append(record,
				strconv.Itoa(res.TotalFileCount),
				strconv.FormatInt(res.TotalSizeBytes, 10),
				humanize.IBytes(uint64(res.TotalSizeBytes)),
				strconv.Itoa(res.OverThresholdByCategory[entity.CategoryError]),
				strconv.Itoa(res.OverThresholdByCategory[entity.CategoryGeneral]),
				strconv.Itoa(res.OverThresholdByCategory[entity.CategoryAudit]),
				strconv.Itoa(res.OverThresholdByCategory[entity.CategorySlowQuery]),
				strconv.Itoa(res.TotalOverThresholdCount),
				strconv.Itoa(res.SkippedCount),
				strconv.FormatBool(res.SizeThresholdExceeded),
			)
		} else {
			record = append(record, "", "", "", "", "", "", "", "", "", "")
		}
		record = append(record, strconv.FormatBool(o.Published), cleanRichTags(outcomeError(o)))

		if err := writer.Write(record); err != nil {
			return "", fmt.Errorf("error writing CSV row: %w", err)
		}
	}

	writer.Flush()
	if err := writer.Error(); err != nil {
		return "", fmt.Errorf("error flushing CSV file: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportReportToJSON writes the whole report, including per-file detail when collected.
func (r *ExportRepositoryImpl) ExportReportToJSON(report entity.RunReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "json")
	if err != nil {
		return "", err
	}

	file, err := os.Create(outputFilename)
	if err != nil {
		return "", fmt.Errorf("error creating JSON file: %w", err)
	}
	defer file.Close()

	encoder := json.NewEncoder(file)
	encoder.SetIndent("", "  ")
	if err := encoder.Encode(report); err != nil {
		return "", fmt.Errorf("error encoding JSON data: %w", err)
	}

	return filepath.Abs(outputFilename)
}

// ExportReportToPDF renders a summary page followed by one section per instance.
func (r *ExportRepositoryImpl) ExportReportToPDF(report entity.RunReport, filename, outputDir string) (string, error) {
	outputFilename, err := generateFilename(filename, outputDir, "pdf")
	if err != nil {
		return "", err
	}

	pdf := gofpdf.New("P", "mm", "A4", "")
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	headerColor := [3]int{40, 40, 40}
	headerTextColor := [3]int{255, 255, 255}
	bodyTextColor := [3]int{50, 50, 50}
	lineColor := [3]int{200, 200, 200}
	alertColor := [3]int{180, 30, 30}

	pdf.AddPage()
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetFont("Arial", "B", 14)
	pdf.CellFormat(0, 12, tr(fmt.Sprintf("  Aurora log inventory - %s", report.ClusterID)), "", 1, "L", true, 0, "")

	pdf.SetFont("Arial", "", 10)
	pdf.SetFillColor(240, 240, 240)
	pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
	meta := []string{
		fmt.Sprintf("  Run ID: %s", report.RunID),
		fmt.Sprintf("  Account ID: %s", report.AccountID),
		fmt.Sprintf("  Started: %s", report.StartedAt.Format(time.RFC3339)),
		fmt.Sprintf("  Result: %s", cleanRichTags(report.Summary())),
	}
	for _, line := range meta {
		pdf.CellFormat(0, 7, tr(line), "", 1, "L", true, 0, "")
	}
	pdf.Ln(8)

	// Tabela resumo por instância
	widths := []float64{50, 20, 28, 18, 18, 18, 18, 20}
	headers := []string{"Instance", "Files", "Size", "Error", "General", "Audit", "Slow Q.", "Stale"}
	pdf.SetFont("Arial", "B", 9)
	pdf.SetFillColor(headerColor[0], headerColor[1], headerColor[2])
	pdf.SetTextColor(headerTextColor[0], headerTextColor[1], headerTextColor[2])
	pdf.SetDrawColor(lineColor[0], lineColor[1], lineColor[2])
	for i, h := range headers {
		pdf.CellFormat(widths[i], 7, h, "1", 0, "C", true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont("Arial", "", 9)
	for _, o := range report.Outcomes {
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		cells := []string{o.Instance.Identifier, "-", "-", "-", "-", "-", "-", "-"}
		if res := o.Result; res != nil {
			cells = []string{
				o.Instance.Identifier,
				humanize.Comma(int64(res.TotalFileCount)),
				humanize.IBytes(uint64(res.TotalSizeBytes)),
				strconv.Itoa(res.OverThresholdByCategory[entity.CategoryError]),
				strconv.Itoa(res.OverThresholdByCategory[entity.CategoryGeneral]),
				strconv.Itoa(res.OverThresholdByCategory[entity.CategoryAudit]),
				strconv.Itoa(res.OverThresholdByCategory[entity.CategorySlowQuery]),
				strconv.Itoa(res.TotalOverThresholdCount),
			}
			if res.TotalOverThresholdCount > 0 || res.SizeThresholdExceeded {
				pdf.SetTextColor(alertColor[0], alertColor[1], alertColor[2])
			}
		}
		if len(cells[0]) > 30 {
			cells[0] = cells[0][:27] + "..."
		}
		for i, c := range cells {
			align := "R"
			if i == 0 {
				align = "L"
			}
			pdf.CellFormat(widths[i], 6, tr(c), "1", 0, align, false, 0, "")
		}
		pdf.Ln(-1)
	}

	failures := report.Failures()
	if len(failures) > 0 {
		pdf.Ln(8)
		pdf.SetFont("Arial", "B", 12)
		pdf.SetTextColor(alertColor[0], alertColor[1], alertColor[2])
		pdf.Cell(0, 8, "Failures")
		pdf.Ln(7)
		pdf.SetFont("Arial", "", 10)
		pdf.SetTextColor(bodyTextColor[0], bodyTextColor[1], bodyTextColor[2])
		for _, o := range failures {
			pdf.MultiCell(190, 5, tr(cleanRichTags(outcomeError(o))), "", "L", false)
			pdf.Ln(2)
		}
	}

	pdf.SetY(-15)
	pdf.SetFont("Arial", "I", 8)
	pdf.SetTextColor(128, 128, 128)
	pdf.CellFormat(0, 10, fmt.Sprintf("Generated on %s", time.Now().Format("2006-01-02 15:04:05")), "", 0, "C", false, 0, "")

	if err := pdf.OutputFileAndClose(outputFilename); err != nil {
		return "", fmt.Errorf("error writing PDF file: %w", err)
	}
	return filepath.Abs(outputFilename)
}

func outcomeError(o entity.InstanceOutcome) string {
	if o.Error != "" {
		return o.Error
	}
	if o.Err != nil {
		return o.Err.Error()
	}
	return ""
}

func generateFilename(base, dir, ext string) (string, error) {
	if dir == "" {
		cwd, err := os.Getwd()
		if err != nil {
			return "", fmt.Errorf("could not get current working directory: %w", err)
		}
		dir = cwd
	}
	if err := os.MkdirAll(dir, 0755); err != nil {
		return "", fmt.Errorf("error creating output directory '%s': %w", dir, err)
	}
	timestamp := time.Now().Format("20060102_150405")
	filename := fmt.Sprintf("%s_%s.%s", base, timestamp, ext)
	return filepath.Join(dir, filename), nil
}

// Regex para limpar formatação pterm (rich tags) e sequências ANSI de cor/estilo.
var richTagRegex = regexp.MustCompile(`\[/?([a-zA-Z]+|#[0-9a-fA-F]{6})\]`)
var ansiRegex = regexp.MustCompile(`\x1B\[[0-9;]*[A-Za-z]`)

// cleanRichTags remove tags de formatação do pterm e sequências ANSI.
func cleanRichTags(text string) string {
	text = richTagRegex.ReplaceAllString(text, "")
	text = ansiRegex.ReplaceAllString(text, "")
	return text
}
