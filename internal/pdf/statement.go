package pdf

import (
	"fmt"
	"io"
	"os"
	"sort"
	"time"

	"github.com/jung-kurt/gofpdf"

	"interiorerp/internal/models"
)

// StatementGenerator renders vendor statements from materialized project metrics.
type StatementGenerator interface {
	VendorStatement(w io.Writer, data StatementData) error
}

type StatementData struct {
	Vendor      models.User
	GeneratedAt time.Time
}

type Generator struct {
	FontPath string // TTF with the glyphs of project and vendor names; core Helvetica when empty
	fontName string
}

func NewGenerator(fontPath string) *Generator {
	return &Generator{FontPath: fontPath, fontName: "DejaVu"}
}

func (g *Generator) VendorStatement(w io.Writer, data StatementData) error {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetTitle("Vendor statement: "+data.Vendor.Name, true)
	pdf.SetAuthor("Interior ERP", true)
	pdf.SetMargins(20, 20, 20)
	pdf.SetAutoPageBreak(true, 20)

	font := g.setupFont(pdf)
	pdf.AliasNbPages("")
	pdf.SetFooterFunc(func() {
		pdf.SetY(-15)
		pdf.SetFont(font, "", 9)
		pdf.CellFormat(0, 10, fmt.Sprintf("Page %d/{nb}", pdf.PageNo()), "", 0, "C", false, 0, "")
	})
	pdf.AddPage()

	pdf.SetFont(font, "B", 18)
	pdf.CellFormat(0, 10, "VENDOR STATEMENT", "", 1, "C", false, 0, "")
	pdf.SetFont(font, "", 11)
	pdf.CellFormat(0, 6, "Generated "+data.GeneratedAt.Format("02 Jan 2006 15:04"), "", 1, "C", false, 0, "")
	hr(pdf)

	sectionTitle(pdf, font, "Vendor")
	kvLine(pdf, font, "Name", data.Vendor.Name)
	kvLine(pdf, font, "Email", data.Vendor.Email)
	if data.Vendor.Phone != "" {
		kvLine(pdf, font, "Phone", data.Vendor.Phone)
	}
	pdf.Ln(2)
	hr(pdf)

	sectionTitle(pdf, font, "Projects")
	ids := make([]string, 0, len(data.Vendor.ProjectMetrics))
	for id := range data.Vendor.ProjectMetrics {
		ids = append(ids, id)
	}
	sort.Slice(ids, func(i, j int) bool {
		return data.Vendor.ProjectMetrics[ids[i]].ProjectName < data.Vendor.ProjectMetrics[ids[j]].ProjectName
	})

	widths := []float64{100, 25, 45}
	pdf.SetFont(font, "B", 11)
	pdf.SetFillColor(235, 235, 235)
	for i, h := range []string{"Project", "Tasks", "Net amount (INR)"} {
		align := "L"
		if i > 0 {
			align = "R"
		}
		pdf.CellFormat(widths[i], 8, h, "1", 0, align, true, 0, "")
	}
	pdf.Ln(-1)

	pdf.SetFont(font, "", 11)
	var (
		totalTasks int
		totalNet   float64
	)
	for _, id := range ids {
		m := data.Vendor.ProjectMetrics[id]
		pdf.CellFormat(widths[0], 7, m.ProjectName, "1", 0, "L", false, 0, "")
		pdf.CellFormat(widths[1], 7, fmt.Sprintf("%d", m.TaskCount), "1", 0, "R", false, 0, "")
		pdf.CellFormat(widths[2], 7, formatAmount(m.NetAmount), "1", 1, "R", false, 0, "")
		totalTasks += m.TaskCount
		totalNet += m.NetAmount
	}
	if len(ids) == 0 {
		pdf.CellFormat(widths[0]+widths[1]+widths[2], 7, "No metrics recorded yet", "1", 1, "C", false, 0, "")
	}

	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(widths[0], 8, "Total", "1", 0, "L", true, 0, "")
	pdf.CellFormat(widths[1], 8, fmt.Sprintf("%d", totalTasks), "1", 0, "R", true, 0, "")
	pdf.CellFormat(widths[2], 8, formatAmount(totalNet), "1", 1, "R", true, 0, "")

	pdf.Ln(4)
	pdf.SetFont(font, "", 9)
	pdf.MultiCell(0, 5, "Figures are taken from the last metrics run and count only records approved by both admin and client.", "", "L", false)

	if err := pdf.Output(w); err != nil {
		return fmt.Errorf("render vendor statement: %w", err)
	}
	return nil
}

func (g *Generator) setupFont(pdf *gofpdf.Fpdf) string {
	if g.FontPath == "" {
		return "Helvetica"
	}
	if _, err := os.Stat(g.FontPath); err != nil {
		return "Helvetica"
	}
	pdf.AddUTF8Font(g.fontName, "", g.FontPath)
	pdf.AddUTF8Font(g.fontName, "B", g.FontPath)
	return g.fontName
}

func sectionTitle(pdf *gofpdf.Fpdf, font, s string) {
	pdf.SetFont(font, "B", 12)
	pdf.CellFormat(0, 7, s, "", 1, "L", false, 0, "")
	pdf.SetFont(font, "", 11)
}

func kvLine(pdf *gofpdf.Fpdf, font, key, val string) {
	pdf.SetFont(font, "B", 11)
	pdf.CellFormat(35, 6, key+":", "", 0, "L", false, 0, "")
	pdf.SetFont(font, "", 11)
	pdf.CellFormat(0, 6, val, "", 1, "L", false, 0, "")
}

func hr(pdf *gofpdf.Fpdf) {
	y := pdf.GetY() + 1.5
	pdf.SetLineWidth(0.2)
	pdf.Line(20, y, 190, y)
	pdf.SetY(y + 2)
}

func formatAmount(v float64) string {
	return fmt.Sprintf("%.2f", v)
}
