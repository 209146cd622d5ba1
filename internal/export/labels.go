package export

import (
	"bytes"
	"encoding/json"
	"fmt"

	"github.com/go-pdf/fpdf"
	qrcode "github.com/skip2/go-qrcode"

	"github.com/piwi3910/StuffGen/internal/model"
)

// LabelInfo holds the data encoded into an episode label's QR code: enough
// to regenerate the episode from the same settings.
type LabelInfo struct {
	ID          string     `json:"id"`
	Mode        model.Mode `json:"mode"`
	Seed        int64      `json:"seed"`
	Index       int        `json:"index"`
	EpisodeSeed int64      `json:"episode_seed"`
	Steps       int        `json:"steps"`
	FillRatio   float64    `json:"fill_ratio"`
}

// Label layout constants for Avery 5160-compatible labels (3 columns, 10 rows per page).
// Each label cell is approximately 66.7mm x 25.4mm on US Letter paper.
const (
	labelPageWidth  = 215.9 // US Letter width in mm
	labelPageHeight = 279.4 // US Letter height in mm
	labelMarginTop  = 12.7  // mm
	labelMarginLeft = 4.8   // mm
	labelWidth      = 66.7  // mm per label
	labelHeight     = 25.4  // mm per label
	labelCols       = 3
	labelRows       = 10
	labelsPerPage   = labelCols * labelRows
	qrSize          = 20.0 // QR code size in mm
	labelPadding    = 2.0  // mm internal padding
)

// CollectLabelInfos extracts the label data of every episode.
func CollectLabelInfos(episodes []model.Episode) []LabelInfo {
	labels := make([]LabelInfo, 0, len(episodes))
	for _, ep := range episodes {
		labels = append(labels, labelFor(ep))
	}
	return labels
}

func labelFor(ep model.Episode) LabelInfo {
	return LabelInfo{
		ID:          ep.ID,
		Mode:        ep.Mode,
		Seed:        ep.Seed,
		Index:       ep.Index,
		EpisodeSeed: ep.EpisodeSeed,
		Steps:       len(ep.Steps),
		FillRatio:   ep.FillRatio(),
	}
}

// ExportLabels generates a PDF sheet of QR-coded episode labels laid out
// for Avery 5160 stock (3 columns x 10 rows on US Letter).
func ExportLabels(path string, episodes []model.Episode) error {
	if len(episodes) == 0 {
		return fmt.Errorf("no episodes to generate labels for")
	}

	pdf := fpdf.New("P", "mm", "Letter", "")
	pdf.SetAutoPageBreak(false, 0)

	for i, label := range CollectLabelInfos(episodes) {
		if i%labelsPerPage == 0 {
			pdf.AddPage()
		}

		posOnPage := i % labelsPerPage
		col := posOnPage % labelCols
		row := posOnPage / labelCols

		x := labelMarginLeft + float64(col)*labelWidth
		y := labelMarginTop + float64(row)*labelHeight

		if err := renderLabel(pdf, x, y, label); err != nil {
			return fmt.Errorf("failed to render label for episode %d: %w", label.Index, err)
		}
	}

	return pdf.OutputFileAndClose(path)
}

// registerQR encodes info as a QR PNG and registers it with the document
// under a name unique to the episode.
func registerQR(pdf *fpdf.Fpdf, info LabelInfo) (string, error) {
	qrData, err := json.Marshal(info)
	if err != nil {
		return "", fmt.Errorf("failed to marshal label info: %w", err)
	}

	qrPNG, err := qrcode.Encode(string(qrData), qrcode.Medium, 256)
	if err != nil {
		return "", fmt.Errorf("failed to generate QR code: %w", err)
	}

	name := "qr_" + info.ID
	pdf.RegisterImageOptionsReader(name, fpdf.ImageOptions{ImageType: "PNG"}, bytes.NewReader(qrPNG))
	return name, nil
}

// renderLabel draws a single label at the given position.
func renderLabel(pdf *fpdf.Fpdf, x, y float64, info LabelInfo) error {
	// Cutting guide
	pdf.SetDrawColor(200, 200, 200)
	pdf.SetLineWidth(0.1)
	pdf.Rect(x, y, labelWidth, labelHeight, "D")

	imgName, err := registerQR(pdf, info)
	if err != nil {
		return err
	}
	qrX := x + labelWidth - qrSize - labelPadding
	qrY := y + (labelHeight-qrSize)/2
	pdf.ImageOptions(imgName, qrX, qrY, qrSize, qrSize, false, fpdf.ImageOptions{ImageType: "PNG"}, 0, "")

	textX := x + labelPadding
	textW := labelWidth - qrSize - 3*labelPadding

	pdf.SetFont("Helvetica", "B", 9)
	pdf.SetTextColor(0, 0, 0)
	pdf.SetXY(textX, y+labelPadding)
	pdf.CellFormat(textW, 4.5, fmt.Sprintf("Episode %d", info.Index), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 7)
	pdf.SetXY(textX, y+labelPadding+5)
	pdf.CellFormat(textW, 3.5, fmt.Sprintf("%s, seed %d", info.Mode, info.Seed), "", 1, "L", false, 0, "")

	pdf.SetFont("Helvetica", "", 6)
	pdf.SetTextColor(100, 100, 100)
	pdf.SetXY(textX, y+labelPadding+9)
	pdf.CellFormat(textW, 3, fmt.Sprintf("%d steps, fill %.1f%%", info.Steps, info.FillRatio*100), "", 1, "L", false, 0, "")

	// The id is too long for the text column; show its first group.
	pdf.SetXY(textX, y+labelPadding+12.5)
	short := info.ID
	if len(short) > 8 {
		short = short[:8]
	}
	pdf.CellFormat(textW, 3, short, "", 0, "L", false, 0, "")

	pdf.SetTextColor(0, 0, 0)
	return nil
}
