package service

import (
	"context"
	"fmt"
	"strconv"

	"go.uber.org/zap"

	"github.com/noah-isme/sma-gradebook-api/internal/dto"
	appErrors "github.com/noah-isme/sma-gradebook-api/pkg/errors"
	"github.com/noah-isme/sma-gradebook-api/pkg/export"
)

type summaryProvider interface {
	StudentSummary(ctx context.Context, studentID string) (*dto.StudentResultSummary, error)
}

// ReportFile is a rendered report card ready to be streamed.
type ReportFile struct {
	Filename    string
	ContentType string
	Body        []byte
}

// ReportService renders student report cards.
type ReportService struct {
	summaries summaryProvider
	csv       *export.CSVExporter
	pdf       *export.PDFExporter
	logger    *zap.Logger
}

// NewReportService constructs the report service.
func NewReportService(summaries summaryProvider, logger *zap.Logger) *ReportService {
	if logger == nil {
		logger = zap.NewNop()
	}
	return &ReportService{
		summaries: summaries,
		csv:       export.NewCSVExporter(),
		pdf:       export.NewPDFExporter(),
		logger:    logger,
	}
}

// ReportCard renders the student's summary as CSV or PDF.
func (s *ReportService) ReportCard(ctx context.Context, studentID string, format export.Format) (*ReportFile, error) {
	summary, err := s.summaries.StudentSummary(ctx, studentID)
	if err != nil {
		return nil, err
	}

	dataset := ReportCardDataset(summary)
	var body []byte
	switch format {
	case export.FormatPDF:
		title := "Report Card"
		if summary.StudentName != "" {
			title += " - " + summary.StudentName
		}
		body, err = s.pdf.Render(dataset, title)
	case export.FormatCSV:
		body, err = s.csv.Render(dataset)
	default:
		return nil, appErrors.Clone(appErrors.ErrValidation, fmt.Sprintf("unsupported format %q", format))
	}
	if err != nil {
		return nil, appErrors.Wrap(err, appErrors.ErrInternal.Code, appErrors.ErrInternal.Status, "failed to render report card")
	}

	s.logger.Info("report card rendered",
		zap.String("student_id", studentID),
		zap.String("format", string(format)),
		zap.Int("bytes", len(body)))

	return &ReportFile{
		Filename:    fmt.Sprintf("report-card-%s.%s", studentID, format),
		ContentType: format.ContentType(),
		Body:        body,
	}, nil
}

// ReportCardDataset lays a summary out as an export table.
func ReportCardDataset(summary *dto.StudentResultSummary) export.Dataset {
	headers := []string{"Subject", "Exam", "Assignment", "Average"}
	rows := make([]map[string]string, 0, len(summary.Subjects))
	for _, subject := range summary.Subjects {
		rows = append(rows, map[string]string{
			"Subject":    subject.Subject,
			"Exam":       formatScore(subject.ExamScore),
			"Assignment": formatScore(subject.AssignmentScore),
			"Average":    formatScore(subject.Average),
		})
	}
	return export.Dataset{
		Headers: headers,
		Rows:    rows,
		Summary: []export.SummaryLine{
			{Label: "Global average", Value: formatScore(summary.GlobalAverage)},
			{Label: "Status", Value: string(summary.Status)},
		},
	}
}

func formatScore(v float64) string {
	return strconv.FormatFloat(v, 'f', 2, 64)
}
