package certificates

import (
	"fmt"
	"os"
	"path/filepath"
	"time"

	"github.com/jung-kurt/gofpdf"
)

// Data describes one retirement certificate
type Data struct {
	CertificateID string
	BuyerID       string
	ProjectName   string
	VintageYear   int
	Tons          int64
	ClaimedAt     time.Time
}

// Generator renders retirement certificates as PDF files
type Generator struct {
	outputDir string
}

// NewGenerator creates a certificate generator writing into outputDir
func NewGenerator(outputDir string) *Generator {
	return &Generator{outputDir: outputDir}
}

// Generate renders the certificate and returns the written file path
func (g *Generator) Generate(data Data) (string, error) {
	if err := os.MkdirAll(g.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("failed to create certificate directory: %w", err)
	}

	pdf := gofpdf.New("L", "mm", "A4", "")
	pdf.SetMargins(20, 20, 20)
	pdf.AddPage()

	pdf.SetFont("Helvetica", "B", 28)
	pdf.SetTextColor(20, 83, 45)
	pdf.CellFormat(0, 20, "Certificate of Carbon Credit Retirement", "", 1, "C", false, 0, "")

	pdf.Ln(8)
	pdf.SetFont("Helvetica", "", 13)
	pdf.SetTextColor(0, 0, 0)
	pdf.CellFormat(0, 8, "This certifies that the credits below were permanently retired from circulation", "", 1, "C", false, 0, "")
	pdf.CellFormat(0, 8, "to back an emissions offset claim. Retirement is irreversible.", "", 1, "C", false, 0, "")

	pdf.Ln(10)
	rows := [][2]string{
		{"Certificate ID", data.CertificateID},
		{"Retired By", data.BuyerID},
		{"Project", data.ProjectName},
		{"Vintage Year", fmt.Sprintf("%d", data.VintageYear)},
		{"Amount Retired", fmt.Sprintf("%d tCO2e", data.Tons)},
		{"Retirement Date", data.ClaimedAt.Format("January 2, 2006")},
	}
	for _, row := range rows {
		pdf.SetFont("Helvetica", "B", 12)
		pdf.CellFormat(70, 9, row[0], "", 0, "R", false, 0, "")
		pdf.SetFont("Helvetica", "", 12)
		pdf.CellFormat(0, 9, "  "+row[1], "", 1, "L", false, 0, "")
	}

	pdf.Ln(12)
	pdf.SetFont("Helvetica", "I", 10)
	pdf.SetTextColor(100, 100, 100)
	pdf.CellFormat(0, 6, fmt.Sprintf("Generated %s", time.Now().UTC().Format(time.RFC3339)), "", 1, "C", false, 0, "")

	path := filepath.Join(g.outputDir, fmt.Sprintf("%s.pdf", data.CertificateID))
	if err := pdf.OutputFileAndClose(path); err != nil {
		return "", fmt.Errorf("failed to write certificate: %w", err)
	}
	return path, nil
}
