package render

import (
	"image/color"

	uv "github.com/charmbracelet/ultraviolet"
)

// Draw paints the color buffer onto a terminal screen. Each cell shows two
// framebuffer rows using the upper half block glyph, foreground for the top
// pixel and background for the bottom one, so the framebuffer should be
// twice as tall as area.
func (fb *Framebuffer) Draw(scr uv.Screen, area uv.Rectangle) {
	for row := area.Min.Y; row < area.Max.Y; row++ {
		y := (row - area.Min.Y) * 2
		for col := area.Min.X; col < area.Max.X; col++ {
			x := col - area.Min.X
			if x >= fb.Width {
				break
			}
			scr.SetCell(col, row, &uv.Cell{
				Content: "▀",
				Width:   1,
				Style: uv.Style{
					Fg: cellColor(fb.Pixel(x, y)),
					Bg: cellColor(fb.Pixel(x, y+1)),
				},
			})
		}
	}
}

// cellColor leaves fully transparent pixels as the terminal default.
func cellColor(c Color) color.Color {
	if c.A() == 0 {
		return nil
	}
	return c.NRGBA()
}
