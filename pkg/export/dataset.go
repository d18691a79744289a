package export

// Dataset defines tabular export content. Summary lines are rendered below the table.
type Dataset struct {
	Headers []string
	Rows    []map[string]string
	Summary []SummaryLine
}

// SummaryLine is a labelled value printed after the rows, such as a global average.
type SummaryLine struct {
	Label string
	Value string
}

// Format selects an export renderer.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ParseFormat maps a query value to a Format, defaulting to CSV.
func ParseFormat(raw string) (Format, bool) {
	switch Format(raw) {
	case "", FormatCSV:
		return FormatCSV, true
	case FormatPDF:
		return FormatPDF, true
	}
	return "", false
}

// ContentType returns the MIME type of the rendered format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv"
}
