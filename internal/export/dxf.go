package export

import (
	"fmt"

	"github.com/yofu/dxf"
	"github.com/yofu/dxf/color"
	"github.com/yofu/dxf/drawing"

	"github.com/piwi3910/StuffGen/internal/model"
)

// DXF layer names.
const (
	LayerContainer = "CONTAINER"
	LayerItems     = "ITEMS"
	LayerAttempts  = "ATTEMPTS"
	LayerElevation = "ELEVATION"
	LayerText      = "LABELS"
)

// ExportDXF writes the final state of ep as a DXF drawing: a floor plan of
// the committed items, the rejected attempt poses, and a side elevation
// (x against z) drawn below the plan.
func ExportDXF(path string, ep model.Episode) error {
	d := dxf.NewDrawing()
	layers := []struct {
		name string
		col  color.ColorNumber
	}{
		{LayerContainer, color.White},
		{LayerItems, color.Green},
		{LayerAttempts, color.Red},
		{LayerElevation, color.Cyan},
		{LayerText, color.Yellow},
	}
	for _, l := range layers {
		if _, err := d.AddLayer(l.name, l.col, dxf.DefaultLineType, false); err != nil {
			return fmt.Errorf("failed to add layer %s: %w", l.name, err)
		}
	}

	c := ep.Container
	textH := min(c.Length, c.Width) / 40
	gap := c.Width * 0.2
	elevY := -gap - c.Height

	if err := d.ChangeLayer(LayerContainer); err != nil {
		return err
	}
	if err := rect(d, 0, 0, c.Length, c.Width); err != nil {
		return err
	}
	if err := rect(d, 0, elevY, c.Length, c.Height); err != nil {
		return err
	}

	for _, st := range ep.Steps {
		switch {
		case st.Placement != nil:
			p := st.Placement
			if err := d.ChangeLayer(LayerItems); err != nil {
				return err
			}
			if err := rect(d, p.X, p.Y, p.Length, p.Width); err != nil {
				return err
			}
			if err := d.ChangeLayer(LayerElevation); err != nil {
				return err
			}
			if err := rect(d, p.X, elevY+p.Z, p.Length, p.Height); err != nil {
				return err
			}
			if err := d.ChangeLayer(LayerText); err != nil {
				return err
			}
			if _, err := d.Text(fmt.Sprintf("%d", p.ItemID), p.X+p.Length/2, p.Y+p.Width/2, p.Z+p.Height, textH); err != nil {
				return err
			}
		case st.Attempt != nil:
			a := st.Attempt
			if err := d.ChangeLayer(LayerAttempts); err != nil {
				return err
			}
			if err := rect(d, a.X, a.Y, a.Length, a.Width); err != nil {
				return err
			}
		}
	}

	if err := d.ChangeLayer(LayerText); err != nil {
		return err
	}
	title := fmt.Sprintf("episode %d %s fill %.1f%%", ep.Index, ep.Mode, ep.FillRatio()*100)
	if _, err := d.Text(title, 0, c.Width+textH, 0, textH*1.5); err != nil {
		return err
	}

	return d.SaveAs(path)
}

// rect draws an axis-aligned rectangle in the z=0 plane as four lines.
func rect(d *drawing.Drawing, x, y, w, h float64) error {
	corners := [][2]float64{{x, y}, {x + w, y}, {x + w, y + h}, {x, y + h}}
	for i := range corners {
		a, b := corners[i], corners[(i+1)%len(corners)]
		if _, err := d.Line(a[0], a[1], 0, b[0], b[1], 0); err != nil {
			return err
		}
	}
	return nil
}
