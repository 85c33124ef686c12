package service

import (
	"context"
	"fmt"
	"strconv"
	"time"

	"go.uber.org/zap"

	"github.com/maatram/scholarship-review-api/internal/models"
	appErrors "github.com/maatram/scholarship-review-api/pkg/errors"
	"github.com/maatram/scholarship-review-api/pkg/export"
)

type csvRenderer interface {
	Render(data export.Dataset) ([]byte, error)
}

type pdfRenderer interface {
	Render(data export.Dataset, title string) ([]byte, error)
}

// ExportResult carries a rendered selection-list export.
type ExportResult struct {
	Filename    string
	ContentType string
	Data        []byte
}

// ExportService renders the final selection list as CSV or PDF for the
// trust's records and donor reporting.
type ExportService struct {
	selected selectedLister
	csv      csvRenderer
	pdf      pdfRenderer
	logger   *zap.Logger
}

// NewExportService constructs an ExportService.
func NewExportService(selected selectedLister, csv csvRenderer, pdf pdfRenderer, logger *zap.Logger) *ExportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	if csv == nil {
		csv = export.NewCSVExporter()
	}
	if pdf == nil {
		pdf = export.NewPDFExporter()
	}
	return &ExportService{selected: selected, csv: csv, pdf: pdf, logger: logger}
}

// SelectedStudents renders the decided-student list in the requested format.
func (s *ExportService) SelectedStudents(ctx context.Context, decision models.FinalDecision, format string) (*ExportResult, error) {
	if decision == "" {
		decision = models.FinalDecisionSelected
	}
	rows, err := s.selected.ListSelected(ctx, decision)
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to list selected students")
	}

	dataset := selectedDataset(rows)
	stamp := time.Now().UTC().Format("2006-01-02")

	switch format {
	case "csv", "":
		data, err := s.csv.Render(dataset)
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render csv")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("selected_students_%s.csv", stamp),
			ContentType: "text/csv",
			Data:        data,
		}, nil
	case "pdf":
		data, err := s.pdf.Render(dataset, "Selected Students")
		if err != nil {
			return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render pdf")
		}
		return &ExportResult{
			Filename:    fmt.Sprintf("selected_students_%s.pdf", stamp),
			ContentType: "application/pdf",
			Data:        data,
		}, nil
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, "unsupported export format")
	}
}

func selectedDataset(rows []models.SelectedStudentView) export.Dataset {
	dataset := export.Dataset{
		Headers: []string{"Student ID", "Name", "District", "Phone", "Email", "Decision Date", "College", "Degree", "Branch", "Year"},
	}
	for _, row := range rows {
		record := map[string]string{
			"Student ID": row.StudentID,
			"Name":       row.Name,
			"District":   row.District,
			"Phone":      row.Phone,
			"Email":      row.Email,
		}
		if row.FinalDecisionDate != nil {
			record["Decision Date"] = row.FinalDecisionDate.Format("2006-01-02")
		}
		if row.CollegeName != nil {
			record["College"] = *row.CollegeName
		}
		if row.Degree != nil {
			record["Degree"] = *row.Degree
		}
		if row.Branch != nil {
			record["Branch"] = *row.Branch
		}
		if row.YearOfPassing != nil {
			record["Year"] = strconv.Itoa(*row.YearOfPassing)
		}
		dataset.Rows = append(dataset.Rows, record)
	}
	return dataset
}
