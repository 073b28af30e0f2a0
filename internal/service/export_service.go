package service

import (
	"fmt"
	"strconv"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/noah-isme/absensi-karyawan/internal/dto"
	"github.com/noah-isme/absensi-karyawan/internal/models"
	"github.com/noah-isme/absensi-karyawan/pkg/export"
	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
)

var monthNames = [...]string{"", "Januari", "Februari", "Maret", "April", "Mei", "Juni", "Juli", "Agustus", "September", "Oktober", "November", "Desember"}

// ExportFile is a rendered download.
type ExportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ExportService renders attendance reports as CSV or PDF downloads.
type ExportService struct {
	renderers map[export.Format]export.Renderer
	logger    *zap.Logger
}

// NewExportService constructs an export service.
func NewExportService(logger *zap.Logger, csv *export.CSVExporter, pdf *export.PDFExporter) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{
		renderers: map[export.Format]export.Renderer{
			export.FormatCSV: csv,
			export.FormatPDF: pdf,
		},
		logger: logger,
	}
}

// ParseFormat validates the requested format, defaulting to CSV.
func ParseFormat(raw string) (export.Format, error) {
	switch export.Format(strings.ToLower(strings.TrimSpace(raw))) {
	case "", export.FormatCSV:
		return export.FormatCSV, nil
	case export.FormatPDF:
		return export.FormatPDF, nil
	default:
		return "", appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", raw))
	}
}

// Monthly renders a monthly summary.
func (s *ExportService) Monthly(report *dto.MonthlyReport, format export.Format) (*ExportFile, error) {
	filename := fmt.Sprintf("rekap_absensi_%d_%d.%s", report.Year, report.Month, format)
	return s.render(MonthlyDataset(report), format, filename)
}

// Daily renders a daily log.
func (s *ExportService) Daily(report *dto.DailyLogReport, format export.Format) (*ExportFile, error) {
	filename := fmt.Sprintf("log_absensi_harian_%s_to_%s.%s", report.From, report.To, format)
	return s.render(DailyDataset(report), format, filename)
}

func (s *ExportService) render(data export.Dataset, format export.Format, filename string) (*ExportFile, error) {
	renderer, ok := s.renderers[format]
	if !ok {
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported export format %q", format))
	}
	start := time.Now()
	body, err := renderer.Render(data)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render export")
	}
	s.logger.Info("export rendered",
		zap.String("file", filename),
		zap.Int("rows", len(data.Rows)),
		zap.Int("bytes", len(body)),
		zap.Duration("took", time.Since(start)),
	)
	return &ExportFile{Filename: filename, ContentType: format.ContentType(), Body: body}, nil
}

// MonthlyDataset lays out a monthly summary: name, total production, then one
// column per status in display order. An extra column appears only when some
// employee has unrecognized statuses.
func MonthlyDataset(report *dto.MonthlyReport) export.Dataset {
	withOther := false
	for _, row := range report.Rows {
		if row.Unrecognized > 0 {
			withOther = true
			break
		}
	}

	headers := []string{"Nama Karyawan", "Total Produksi"}
	for _, status := range models.AttendanceStatuses {
		headers = append(headers, status.Label())
	}
	if withOther {
		headers = append(headers, "Lainnya")
	}
	numeric := make(map[int]bool, len(headers))
	for i := 1; i < len(headers); i++ {
		numeric[i] = true
	}

	rows := make([][]string, 0, len(report.Rows))
	for _, row := range report.Rows {
		cells := []string{row.EmployeeName, strconv.Itoa(row.TotalProduction)}
		for _, status := range models.AttendanceStatuses {
			cells = append(cells, strconv.Itoa(row.StatusCounts[status]))
		}
		if withOther {
			cells = append(cells, strconv.Itoa(row.Unrecognized))
		}
		rows = append(rows, cells)
	}

	title := fmt.Sprintf("Rekap Absensi %d/%d", report.Month, report.Year)
	if report.Month >= 1 && report.Month <= 12 {
		title = fmt.Sprintf("Rekap Absensi %s %d", monthNames[report.Month], report.Year)
	}
	return export.Dataset{Title: title, Headers: headers, Rows: rows, Numeric: numeric}
}

// DailyDataset lays out a daily log, newest day first.
func DailyDataset(report *dto.DailyLogReport) export.Dataset {
	rows := make([][]string, 0, len(report.Rows))
	for _, rec := range report.Rows {
		rows = append(rows, []string{rec.Day.String(), rec.EmployeeName, rec.Status.Label(), strconv.Itoa(rec.Production)})
	}
	return export.Dataset{
		Title:   fmt.Sprintf("Log Harian %s s.d. %s", report.From, report.To),
		Headers: []string{"Tanggal Absensi/Produksi", "Karyawan", "Status", "Jumlah Produksi"},
		Rows:    rows,
		Numeric: map[int]bool{3: true},
	}
}
