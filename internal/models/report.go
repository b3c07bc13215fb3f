package models

// ReportFormat identifies the rendering for a downloadable report.
type ReportFormat string

const (
	ReportFormatCSV ReportFormat = "csv"
	ReportFormatPDF ReportFormat = "pdf"
)

// Valid reports whether f is a supported format.
func (f ReportFormat) Valid() bool {
	return f == ReportFormatCSV || f == ReportFormatPDF
}

// ReportFile is a rendered report ready for download.
type ReportFile struct {
	Filename    string
	ContentType string
	Payload     []byte
}
