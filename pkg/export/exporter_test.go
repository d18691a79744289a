package export

import (
	"bytes"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func sampleDataset() Dataset {
	return Dataset{
		Headers: []string{"Subject", "Average"},
		Rows: []map[string]string{
			{"Subject": "Math", "Average": "14.40"},
			{"Subject": "Art, History", "Average": "7.60"},
		},
		Summary: []SummaryLine{{Label: "Global average", Value: "11.00"}},
	}
}

func TestCSVExporterRender(t *testing.T) {
	out, err := NewCSVExporter().Render(sampleDataset())
	require.NoError(t, err)

	expected := "Subject,Average\nMath,14.40\n\"Art, History\",7.60\n\nGlobal average,11.00\n"
	assert.Equal(t, expected, string(out))
}

func TestCSVExporterRequiresHeaders(t *testing.T) {
	_, err := NewCSVExporter().Render(Dataset{})
	assert.Error(t, err)
}

func TestPDFExporterRender(t *testing.T) {
	out, err := NewPDFExporter().Render(sampleDataset(), "Report Card - Ada Lovelace")
	require.NoError(t, err)
	assert.True(t, bytes.HasPrefix(out, []byte("%PDF")))

	_, err = NewPDFExporter().Render(Dataset{}, "empty")
	assert.Error(t, err)
}

func TestParseFormat(t *testing.T) {
	cases := map[string]struct {
		format Format
		ok     bool
	}{
		"":     {FormatCSV, true},
		"csv":  {FormatCSV, true},
		"pdf":  {FormatPDF, true},
		"xlsx": {"", false},
	}
	for raw, tc := range cases {
		format, ok := ParseFormat(raw)
		assert.Equal(t, tc.ok, ok, raw)
		assert.Equal(t, tc.format, format, raw)
	}
	assert.Equal(t, "application/pdf", FormatPDF.ContentType())
	assert.Equal(t, "text/csv", FormatCSV.ContentType())
}
