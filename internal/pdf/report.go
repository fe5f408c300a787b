package pdf

import (
	"fmt"
	"io"
	"time"

	"github.com/jung-kurt/gofpdf"

	"dashboard/internal/models"
)

// Generator renders reports; an interface so it can be stubbed in tests.
type Generator interface {
	WeeklyReport(w io.Writer, data WeeklyReportData) error
}

type WeeklyReportData struct {
	GeneratedAt time.Time
	Stats       models.TaskStats
	Pending     []models.Task
}

// ReportGenerator draws with a TTF font when FontPath is set (needed for non-Latin text)
// and falls back to the built-in Helvetica otherwise.
type ReportGenerator struct {
	FontPath string
	fontName string
}

func NewReportGenerator(fontPath string) *ReportGenerator {
	g := &ReportGenerator{FontPath: fontPath, fontName: "Helvetica"}
	if fontPath != "" {
		g.fontName = "DejaVu"
	}
	return g
}

func (g *ReportGenerator) WeeklyReport(w io.Writer, data WeeklyReportData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Weekly task report", true)
	pdf.SetAuthor("Dashboard", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)
	g.addFont(pdf)
	tr := g.translator(pdf)
	pdf.AddPage()

	pdf.SetFont(g.fontName, "B", 18)
	pdf.CellFormat(0, 10, "Weekly task report", "", 1, "C", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 7, "Generated "+data.GeneratedAt.Format("02.01.2006 15:04"), "", 1, "C", false, 0, "")
	g.hr(pdf)

	s := data.Stats
	g.sectionTitle(pdf, "Totals")
	g.kvLine(pdf, "Tasks", fmt.Sprintf("%d", s.TotalTasks))
	g.kvLine(pdf, "Completed", fmt.Sprintf("%d", s.Completed))
	g.kvLine(pdf, "In progress", fmt.Sprintf("%d", s.InProgress))
	g.kvLine(pdf, "Pending", fmt.Sprintf("%d", s.Pending))
	g.kvLine(pdf, "Completion rate", fmt.Sprintf("%d%%", s.CompletionRate))
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Completed over the last 7 days")
	pdf.SetFont(g.fontName, "B", 11)
	for _, d := range s.WeeklyCompletion {
		pdf.CellFormat(24, 7, d.Day, "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.SetFont(g.fontName, "", 11)
	for _, d := range s.WeeklyCompletion {
		pdf.CellFormat(24, 7, fmt.Sprintf("%d", d.Completed), "1", 0, "C", false, 0, "")
	}
	pdf.Ln(-1)
	pdf.Ln(2)
	g.hr(pdf)

	g.sectionTitle(pdf, "Open tasks")
	if len(data.Pending) == 0 {
		pdf.MultiCell(0, 6, "Nothing pending.", "", "L", false)
	}
	for _, t := range data.Pending {
		line := "- " + t.Title
		if t.Date != nil {
			line += "  (" + *t.Date + ")"
		}
		pdf.MultiCell(0, 6, tr(line), "", "L", false)
	}

	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(g.fontName, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})

	return pdf.Output(w)
}

func (g *ReportGenerator) addFont(pdf *gofpdf.Fpdf) {
	if g.FontPath == "" {
		return
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
}

// translator maps UTF-8 to the core font code page; TTF fonts take UTF-8 as is.
func (g *ReportGenerator) translator(pdf *gofpdf.Fpdf) func(string) string {
	if g.FontPath != "" {
		return func(s string) string { return s }
	}
	return pdf.UnicodeTranslatorFromDescriptor("")
}

func (g *ReportGenerator) sectionTitle(pdf *gofpdf.Fpdf, s string) {
	pdf.SetFont(g.fontName, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
}

func (g *ReportGenerator) kvLine(pdf *gofpdf.Fpdf, key, val string) {
	pdf.SetFont(g.fontName, "B", 11)
	pdf.CellFormat(45, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(g.fontName, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func (g *ReportGenerator) hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}
