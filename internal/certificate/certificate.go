// Package certificate renders the compliance certificate issued to a
// certified farmer.
package certificate

import (
	"bytes"
	"errors"
	"fmt"
	"io"
	"strconv"
	"strings"
	"time"

	"github.com/go-pdf/fpdf"
	"github.com/shopspring/decimal"
)

const (
	idPrefix     = "CERT-"
	idLength     = 8
	dateLayout   = "January 2, 2006"
	notSpecified = "Not specified"
)

// ID derives the certificate identifier from a farmer id: CERT- followed by
// the first eight characters of the id, upper-cased.
func ID(farmerID string) string {
	s := farmerID
	if len(s) > idLength {
		s = s[:idLength]
	}
	return idPrefix + strings.ToUpper(s)
}

// Data is the farmer snapshot printed on a certificate.
type Data struct {
	FarmerName      string
	FarmSize        decimal.Decimal
	CropType        string
	IssueDate       time.Time
	CertificateID   string
	LocationAddress string
	Latitude        *float64
	Longitude       *float64
}

// Validate checks that every required field is present.
func (d Data) Validate() error {
	var errs []error
	if strings.TrimSpace(d.FarmerName) == "" {
		errs = append(errs, errors.New("farmer name is required"))
	}
	if strings.TrimSpace(d.CropType) == "" {
		errs = append(errs, errors.New("crop type is required"))
	}
	if !d.FarmSize.IsPositive() {
		errs = append(errs, errors.New("farm size must be positive"))
	}
	if !strings.HasPrefix(d.CertificateID, idPrefix) {
		errs = append(errs, errors.New("certificate id is required"))
	}
	if d.IssueDate.IsZero() {
		errs = append(errs, errors.New("issue date is required"))
	}
	if (d.Latitude == nil) != (d.Longitude == nil) {
		errs = append(errs, errors.New("latitude and longitude must be set together"))
	}
	return errors.Join(errs...)
}

// FarmSizeLabel formats the farm size with its unit, e.g. "5.5 Acres".
func (d Data) FarmSizeLabel() string {
	return strconv.FormatFloat(d.FarmSize.InexactFloat64(), 'f', -1, 64) + " Acres"
}

// LocationLine is the primary location text: the address when known, else
// coordinates at four decimals, else "Not specified".
func (d Data) LocationLine() string {
	if a := strings.TrimSpace(d.LocationAddress); a != "" {
		return a
	}
	if d.hasCoordinates() {
		return fmt.Sprintf("%.4f, %.4f", *d.Latitude, *d.Longitude)
	}
	return notSpecified
}

// GPSLine is printed under an address when coordinates are also known.
func (d Data) GPSLine() string {
	if strings.TrimSpace(d.LocationAddress) == "" || !d.hasCoordinates() {
		return ""
	}
	return fmt.Sprintf("GPS: %.6f, %.6f", *d.Latitude, *d.Longitude)
}

func (d Data) hasCoordinates() bool {
	return d.Latitude != nil && d.Longitude != nil
}

// Bytes validates data and returns the complete landscape A4 PDF.
func Bytes(data Data) ([]byte, error) {
	if err := data.Validate(); err != nil {
		return nil, fmt.Errorf("invalid certificate data: %w", err)
	}

	var buf bytes.Buffer
	if err := build(data).Output(&buf); err != nil {
		return nil, fmt.Errorf("build certificate: %w", err)
	}
	return buf.Bytes(), nil
}

// Render writes the certificate to w. The whole document is built before the
// first byte reaches w, so an invalid or failed build writes nothing.
func Render(w io.Writer, data Data) error {
	doc, err := Bytes(data)
	if err != nil {
		return err
	}
	if _, err := w.Write(doc); err != nil {
		return fmt.Errorf("write certificate: %w", err)
	}
	return nil
}

type rgb struct{ r, g, b int }

var (
	background = rgb{240, 253, 244}
	darkGreen  = rgb{20, 83, 45}
	green      = rgb{22, 101, 52}
	brightLine = rgb{34, 197, 94}
	accent     = rgb{21, 128, 61}
	black      = rgb{0, 0, 0}
	grey       = rgb{102, 102, 102}
	lightGrey  = rgb{136, 136, 136}
)

// Layout in millimetres on a 297x210 page.
const (
	leftCol   = 53.0
	centerCol = 123.0
	rightCol  = 194.0
	colWidth  = 64.0
	statsY    = 120.0
	footerY   = 155.0
	sigY      = 169.0
)

func build(d Data) *fpdf.Fpdf {
	pdf := fpdf.New("L", "mm", "A4", "")
	// Uncompressed content keeps every field extractable as plain text.
	pdf.SetCompression(false)
	pdf.SetTitle("Certificate of Compliance "+d.CertificateID, false)
	pdf.SetCreator("farmverify", false)
	pdf.SetCreationDate(d.IssueDate)
	pdf.SetAutoPageBreak(false, 0)
	pdf.SetMargins(18, 18, 18)
	pdf.AddPage()

	// The core fonts are WinAnsi encoded; UTF-8 text must be translated.
	tr := pdf.UnicodeTranslatorFromDescriptor("")

	pageW, pageH := pdf.GetPageSize()

	fill(pdf, background)
	pdf.Rect(0, 0, pageW, pageH, "F")
	draw(pdf, green)
	pdf.SetLineWidth(1.8)
	pdf.Rect(7, 7, pageW-14, pageH-14, "D")
	draw(pdf, brightLine)
	pdf.SetLineWidth(0.7)
	pdf.Rect(10.5, 10.5, pageW-21, pageH-21, "D")

	centered := func(y float64, style string, size float64, c rgb, text string) {
		pdf.SetFont("Helvetica", style, size)
		color(pdf, c)
		pdf.SetXY(0, y)
		pdf.CellFormat(pageW, size*0.45, text, "", 0, "C", false, 0, "")
	}

	centered(28, "B", 40, darkGreen, "CERTIFICATE OF COMPLIANCE")
	centered(50, "", 16, green, "This is to certify that")
	centered(63, "B", 32, black, tr(d.FarmerName))
	centered(82, "", 16, green, "has successfully met all standards and requirements for")
	centered(96, "B", 24, accent, "Sustainable Farming Practice")

	label := func(x, y float64, text string) {
		pdf.SetFont("Helvetica", "B", 14)
		color(pdf, black)
		pdf.SetXY(x, y)
		pdf.CellFormat(colWidth, 6, text, "", 0, "L", false, 0, "")
	}
	value := func(x, y float64, size float64, c rgb, text string) {
		pdf.SetFont("Helvetica", "", size)
		color(pdf, c)
		pdf.SetXY(x, y)
		pdf.MultiCell(colWidth, size*0.45, text, "", "L", false)
	}

	label(leftCol, statsY, "Farm Size:")
	label(centerCol, statsY, "Crop Type:")
	label(rightCol, statsY, "Location:")
	value(leftCol, statsY+7, 14, green, d.FarmSizeLabel())
	value(centerCol, statsY+7, 14, green, tr(d.CropType))

	locationColor := green
	if d.LocationLine() == notSpecified {
		locationColor = grey
	}
	value(rightCol, statsY+7, 12, locationColor, tr(d.LocationLine()))
	if gps := d.GPSLine(); gps != "" {
		value(rightCol, statsY+18, 10, lightGrey, gps)
	}

	pdf.SetFont("Helvetica", "", 12)
	color(pdf, black)
	pdf.SetXY(leftCol, footerY)
	pdf.CellFormat(colWidth, 5, "Date of Issue:", "", 0, "L", false, 0, "")
	pdf.SetXY(centerCol, footerY)
	pdf.CellFormat(colWidth, 5, "Certificate ID:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(leftCol, footerY+6)
	pdf.CellFormat(colWidth, 5, d.IssueDate.Format(dateLayout), "", 0, "L", false, 0, "")
	pdf.SetXY(centerCol, footerY+6)
	pdf.CellFormat(colWidth, 5, d.CertificateID, "", 0, "L", false, 0, "")

	draw(pdf, black)
	pdf.SetLineWidth(0.35)
	pdf.Line(pageW/2-35, sigY, pageW/2+35, sigY)
	pdf.SetFont("Helvetica", "", 10)
	color(pdf, grey)
	pdf.SetXY(0, sigY+2)
	pdf.CellFormat(pageW, 5, "Authorized Signature", "", 0, "C", false, 0, "")

	return pdf
}

func fill(pdf *fpdf.Fpdf, c rgb) { pdf.SetFillColor(c.r, c.g, c.b) }
func draw(pdf *fpdf.Fpdf, c rgb) { pdf.SetDrawColor(c.r, c.g, c.b) }
func color(pdf *fpdf.Fpdf, c rgb) { pdf.SetTextColor(c.r, c.g, c.b) }
