package export

// Dataset is a titled table. Every row holds one cell per header, in order.
type Dataset struct {
	Title   string
	Headers []string
	Rows    [][]string
	// Numeric marks columns that are right aligned in rendered documents.
	Numeric map[int]bool
}

// Format identifies an export encoding.
type Format string

const (
	FormatCSV Format = "csv"
	FormatPDF Format = "pdf"
)

// ContentType returns the MIME type for the format.
func (f Format) ContentType() string {
	if f == FormatPDF {
		return "application/pdf"
	}
	return "text/csv; charset=utf-8"
}

// Renderer turns a dataset into a file body.
type Renderer interface {
	Render(data Dataset) ([]byte, error)
}
