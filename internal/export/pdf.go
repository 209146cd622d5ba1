package export

import (
	"fmt"
	"math"
	"sort"

	"github.com/go-pdf/fpdf"

	"github.com/piwi3910/StuffGen/internal/model"
)

// boxColor represents an RGB color for a placed box.
type boxColor struct {
	R, G, B int
}

var boxColors = []boxColor{
	{R: 76, G: 175, B: 80},  // green
	{R: 33, G: 150, B: 243}, // blue
	{R: 255, G: 152, B: 0},  // orange
	{R: 156, G: 39, B: 176}, // purple
	{R: 0, G: 188, B: 212},  // cyan
	{R: 244, G: 67, B: 54},  // red
	{R: 255, G: 235, B: 59}, // yellow
	{R: 121, G: 85, B: 72},  // brown
}

// Page layout constants (A4 landscape in mm).
const (
	pageWidth    = 297.0
	pageHeight   = 210.0
	marginLeft   = 15.0
	marginRight  = 15.0
	marginTop    = 15.0
	marginBottom = 15.0
	headerHeight = 12.0
	legendHeight = 30.0
	drawAreaTop  = marginTop + headerHeight + 5.0
)

// ExportPDF writes a preview report: a summary page over all episodes, then
// a top-down layout page for each of the first maxEpisodes episodes. Every
// layout page carries a QR code identifying its episode.
func ExportPDF(path string, episodes []model.Episode, maxEpisodes int) error {
	if len(episodes) == 0 {
		return fmt.Errorf("no episodes to export")
	}

	pdf := fpdf.New("L", "mm", "A4", "")
	pdf.SetAutoPageBreak(false, marginBottom)

	pdf.AddPage()
	renderSummaryPage(pdf, Summarize(episodes))

	for i, ep := range episodes {
		if i >= maxEpisodes {
			break
		}
		pdf.AddPage()
		if err := renderEpisodePage(pdf, ep); err != nil {
			return fmt.Errorf("failed to render episode %d: %w", ep.Index, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// renderEpisodePage draws the final container state of one episode seen from
// above. Boxes are painted bottom-up so higher boxes cover lower ones and
// shaded darker the lower they sit.
func renderEpisodePage(pdf *fpdf.Fpdf, ep model.Episode) error {
	c := ep.Container

	pdf.SetFont("Helvetica", "B", 14)
	pdf.SetXY(marginLeft, marginTop)
	title := fmt.Sprintf("Episode %d (%s): %.2f x %.2f x %.2f", ep.Index, ep.Mode, c.Length, c.Width, c.Height)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, headerHeight, title, "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 10)
	pdf.SetXY(marginLeft, marginTop+headerHeight)
	stats := fmt.Sprintf("Steps: %d | Placed: %d | Feasible: %d | Fill: %.1f%% | Termination: %s",
		len(ep.Steps), ep.PlacedCount(), ep.FeasibleCount(), ep.FillRatio()*100, ep.Termination)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 5, stats, "", 0, "L", false, 0, "")

	drawWidth := pageWidth - marginLeft - marginRight - qrSize - 10
	drawHeight := pageHeight - drawAreaTop - marginBottom - legendHeight
	scale := math.Min(drawWidth/c.Length, drawHeight/c.Width)
	canvasW := c.Length * scale
	canvasH := c.Width * scale
	offsetX := marginLeft + (drawWidth-canvasW)/2
	offsetY := drawAreaTop

	// Container floor
	pdf.SetFillColor(235, 235, 235)
	pdf.SetDrawColor(100, 100, 100)
	pdf.SetLineWidth(0.5)
	pdf.Rect(offsetX, offsetY, canvasW, canvasH, "FD")

	placements := ep.Placements()
	order := make([]int, len(placements))
	for i := range order {
		order[i] = i
	}
	sort.SliceStable(order, func(a, b int) bool {
		return placements[order[a]].Z < placements[order[b]].Z
	})

	for _, i := range order {
		p := placements[i]
		col := shade(boxColors[i%len(boxColors)], p.Z+p.Height, c.Height)
		px := offsetX + p.X*scale
		py := offsetY + p.Y*scale
		pw := p.Length * scale
		ph := p.Width * scale

		pdf.SetFillColor(col.R, col.G, col.B)
		pdf.SetDrawColor(30, 30, 30)
		pdf.SetLineWidth(0.3)
		pdf.Rect(px, py, pw, ph, "FD")

		if pw > 10 && ph > 6 {
			pdf.SetFont("Helvetica", "", labelFontSize(pw, ph))
			pdf.SetTextColor(0, 0, 0)
			label := fmt.Sprintf("#%d z=%.2f", p.ItemID, p.Z)
			w := pdf.GetStringWidth(label)
			if w < pw-2 {
				pdf.SetXY(px+(pw-w)/2, py+ph/2-2)
				pdf.CellFormat(w, 4, label, "", 0, "C", false, 0, "")
			}
		}
	}

	drawDimensionAnnotations(pdf, c, offsetX, offsetY, canvasW, canvasH)

	imgName, err := registerQR(pdf, labelFor(ep))
	if err != nil {
		return err
	}
	qrX := pageWidth - marginRight - qrSize - 5
	pdf.ImageOptions(imgName, qrX, drawAreaTop, qrSize+5, qrSize+5, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	drawViolationLegend(pdf, ep, offsetY+canvasH+8)
	return nil
}

// shade darkens col for boxes whose top sits low in the container.
func shade(col boxColor, top, height float64) boxColor {
	f := 0.55 + 0.45*math.Min(1, top/height)
	return boxColor{R: int(float64(col.R) * f), G: int(float64(col.G) * f), B: int(float64(col.B) * f)}
}

// drawDimensionAnnotations adds length and width labels outside the floor
// rectangle.
func drawDimensionAnnotations(pdf *fpdf.Fpdf, c model.Container, offsetX, offsetY, canvasW, canvasH float64) {
	pdf.SetFont("Helvetica", "", 8)
	pdf.SetTextColor(80, 80, 80)

	lengthLabel := fmt.Sprintf("L = %.2f", c.Length)
	lw := pdf.GetStringWidth(lengthLabel)
	pdf.SetXY(offsetX+(canvasW-lw)/2, offsetY+canvasH+1)
	pdf.CellFormat(lw, 4, lengthLabel, "", 0, "C", false, 0, "")

	widthLabel := fmt.Sprintf("W = %.2f", c.Width)
	pdf.TransformBegin()
	pdf.TransformRotate(90, offsetX-3, offsetY+canvasH/2)
	ww := pdf.GetStringWidth(widthLabel)
	pdf.SetXY(offsetX-3-ww/2, offsetY+canvasH/2-2)
	pdf.CellFormat(ww, 4, widthLabel, "", 0, "C", false, 0, "")
	pdf.TransformEnd()

	pdf.SetTextColor(0, 0, 0)
}

// drawViolationLegend lists the episode's violation counts below the layout.
func drawViolationLegend(pdf *fpdf.Fpdf, ep model.Episode, y float64) {
	counts := make(map[model.Violation]int)
	negatives := 0
	for _, st := range ep.Steps {
		if st.Violation != model.ViolationNone {
			counts[st.Violation]++
		}
		if st.Negative {
			negatives++
		}
	}

	pdf.SetFont("Helvetica", "B", 8)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(30, 4, "Violations:", "", 0, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 8)
	x := marginLeft + 32
	for _, v := range model.Violations {
		text := fmt.Sprintf("%s: %d", v, counts[v])
		w := pdf.GetStringWidth(text) + 6
		pdf.SetXY(x, y)
		pdf.CellFormat(w, 4, text, "", 0, "L", false, 0, "")
		x += w
	}
	pdf.SetXY(marginLeft+32, y+5)
	pdf.CellFormat(80, 4, fmt.Sprintf("negative examples: %d", negatives), "", 0, "L", false, 0, "")
}

// renderSummaryPage draws the dataset statistics.
func renderSummaryPage(pdf *fpdf.Fpdf, s Summary) {
	pdf.SetFont("Helvetica", "B", 16)
	pdf.SetXY(marginLeft, marginTop)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 10, "Dataset Summary", "", 0, "L", false, 0, "")

	pdf.SetDrawColor(0, 0, 0)
	pdf.SetLineWidth(0.5)
	pdf.Line(marginLeft, marginTop+12, pageWidth-marginRight, marginTop+12)

	y := marginTop + 18
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(marginLeft, y)
	pdf.CellFormat(100, 7, "Overall Statistics", "", 0, "L", false, 0, "")
	y += 9

	summaryItems := []struct {
		label string
		value string
	}{
		{"Episodes", fmt.Sprintf("%d", s.Episodes)},
		{"Steps", fmt.Sprintf("%d", s.Steps)},
		{"Placed Items", fmt.Sprintf("%d", s.Placed)},
		{"Fill Ratio (mean / min / max)", fmt.Sprintf("%.1f%% / %.1f%% / %.1f%%", s.MeanFill*100, s.MinFill*100, s.MaxFill*100)},
		{"Feasibility Rate", fmt.Sprintf("%.1f%%", s.FeasibleRate*100)},
		{"Stability Rate", fmt.Sprintf("%.1f%%", s.StableRate*100)},
		{"Exhausted Episodes", fmt.Sprintf("%d", s.Exhausted)},
		{"Negative Examples", fmt.Sprintf("%d", s.Negative)},
		{"Mean Item (l x w x h)", fmt.Sprintf("%.3f x %.3f x %.3f", s.MeanDims[0], s.MeanDims[1], s.MeanDims[2])},
	}

	pdf.SetFont("Helvetica", "", 10)
	for _, item := range summaryItems {
		pdf.SetXY(marginLeft+5, y)
		pdf.CellFormat(70, 6, item.label+":", "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "B", 10)
		pdf.CellFormat(60, 6, item.value, "", 0, "L", false, 0, "")
		pdf.SetFont("Helvetica", "", 10)
		y += 7
	}

	// Violation table on the right
	tableX := marginLeft + 150
	ty := marginTop + 18
	pdf.SetFont("Helvetica", "B", 12)
	pdf.SetXY(tableX, ty)
	pdf.CellFormat(100, 7, "Violations", "", 0, "L", false, 0, "")
	ty += 9

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetFillColor(230, 230, 230)
	pdf.SetXY(tableX, ty)
	pdf.CellFormat(60, 6, "Kind", "1", 0, "C", true, 0, "")
	pdf.CellFormat(30, 6, "Steps", "1", 0, "C", true, 0, "")
	ty += 6

	pdf.SetFont("Helvetica", "", 9)
	for i, v := range model.Violations {
		if i%2 == 0 {
			pdf.SetFillColor(245, 245, 245)
		} else {
			pdf.SetFillColor(255, 255, 255)
		}
		pdf.SetXY(tableX, ty)
		pdf.CellFormat(60, 6, string(v), "1", 0, "C", true, 0, "")
		pdf.CellFormat(30, 6, fmt.Sprintf("%d", s.Violations[v]), "1", 0, "C", true, 0, "")
		ty += 6
	}

	drawVolumeHistogram(pdf, s.ItemVolumes, marginLeft+5, y+8, 130, 45)

	pdf.SetFont("Helvetica", "I", 8)
	pdf.SetTextColor(120, 120, 120)
	pdf.SetXY(marginLeft, pageHeight-marginBottom)
	pdf.CellFormat(pageWidth-marginLeft-marginRight, 4, "Generated by stuffgen - synthetic container stuffing episodes", "", 0, "C", false, 0, "")
	pdf.SetTextColor(0, 0, 0)
}

// drawVolumeHistogram renders the item volume histogram as a bar chart.
func drawVolumeHistogram(pdf *fpdf.Fpdf, bins []Bin, x, y, w, h float64) {
	if len(bins) == 0 {
		return
	}
	pdf.SetFont("Helvetica", "B", 10)
	pdf.SetXY(x, y-6)
	pdf.CellFormat(w, 5, "Item volume distribution", "", 0, "L", false, 0, "")

	peak := 0
	for _, b := range bins {
		peak = max(peak, b.Count)
	}
	if peak == 0 {
		return
	}

	barW := w / float64(len(bins))
	pdf.SetDrawColor(60, 60, 60)
	pdf.SetLineWidth(0.2)
	pdf.Line(x, y+h, x+w, y+h)
	pdf.SetFont("Helvetica", "", 6)
	for i, b := range bins {
		bh := h * float64(b.Count) / float64(peak)
		bx := x + float64(i)*barW
		pdf.SetFillColor(33, 150, 243)
		pdf.Rect(bx+0.5, y+h-bh, barW-1, bh, "F")
		pdf.SetXY(bx, y+h+1)
		pdf.CellFormat(barW, 3, fmt.Sprintf("%.3f", b.Hi), "", 0, "C", false, 0, "")
	}
}

// labelFontSize returns an appropriate font size based on the rectangle dimensions.
func labelFontSize(w, h float64) float64 {
	minDim := math.Min(w, h)
	switch {
	case minDim > 40:
		return 8
	case minDim > 20:
		return 7
	default:
		return 6
	}
}
