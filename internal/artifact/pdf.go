package artifact

import (
	"bytes"
	"context"
	"fmt"
	"log/slog"
	"strconv"

	"github.com/go-pdf/fpdf"

	"github.com/NielsdaWheelz/tixmail/internal/config"
	"github.com/NielsdaWheelz/tixmail/internal/fs"
)

const pdfFontFamily = "ticket"

// PDFRenderer lays the ticket out as a one-page A4 document: event title,
// participant details, token and event dates. Spec.Font, when set, is
// embedded as a UTF-8 TrueType font; otherwise Helvetica is used with a
// cp1252 translation of the text.
type PDFRenderer struct {
	FS     fs.FS
	Spec   config.ArtifactSpec
	Logger *slog.Logger
}

// Render implements Renderer.
func (r *PDFRenderer) Render(ctx context.Context, t Ticket) (Artifact, error) {
	if err := ctx.Err(); err != nil {
		return Artifact{}, err
	}

	pdf := fpdf.New("P", "mm", "A4", "")
	family, tr := r.setupFont(pdf)

	title := t.Event.Title
	if title == "" {
		title = "Hackathon"
	}
	orNA := func(s string) string {
		if s == "" {
			return "N/A"
		}
		return s
	}

	pdf.AddPage()
	pdf.SetFont(family, "", float64(r.Spec.TitleSize)/70*25)
	pdf.CellFormat(0, 14, tr(title), "", 1, "C", false, 0, "")
	pdf.Ln(8)

	detail := float64(r.Spec.DetailSize) / 60 * 16
	pdf.SetFont(family, "U", detail)
	pdf.CellFormat(0, 9, tr("Name: "+t.Participant.Name), "", 1, "L", false, 0, "")
	pdf.SetFont(family, "", detail)
	pdf.CellFormat(0, 9, tr("University ID: "+orNA(t.Participant.Affiliation)), "", 1, "L", false, 0, "")
	pdf.CellFormat(0, 9, tr("Year: "+orNA(t.Participant.Cohort)), "", 1, "L", false, 0, "")
	pdf.Ln(8)
	pdf.CellFormat(0, 9, tr("Token Number: "+strconv.Itoa(t.Token)), "", 1, "L", false, 0, "")
	if t.Event.Dates != "" {
		pdf.CellFormat(0, 9, tr("Date: "+t.Event.Dates), "", 1, "L", false, 0, "")
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return Artifact{}, fmt.Errorf("render pdf: %w", err)
	}
	return write(r.FS, SpecPath(r.Spec, t.Participant.Name), buf.Bytes())
}

// setupFont registers the configured font and returns the family to use
// with the matching text translator.
func (r *PDFRenderer) setupFont(pdf *fpdf.Fpdf) (string, func(string) string) {
	if r.Spec.Font != "" {
		data, err := r.FS.ReadFile(r.Spec.Font)
		if err == nil {
			pdf.AddUTF8FontFromBytes(pdfFontFamily, "", data)
			if pdf.Ok() {
				return pdfFontFamily, func(s string) string { return s }
			}
			err = pdf.Error()
			pdf.ClearError()
		}
		r.Logger.Warn("ticket font unavailable, using Helvetica", "font", r.Spec.Font, "error", err)
	}
	return "Helvetica", pdf.UnicodeTranslatorFromDescriptor("")
}
