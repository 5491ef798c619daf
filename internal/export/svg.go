package export

import (
	"fmt"
	"strings"

	"github.com/san-kum/galaxysim/internal/viz"
)

const background = "#0a0a0a"

// FrameToSVG converts a braille frame to SVG, one circle per lit dot in
// the colour of its cell. scale is the size of one dot in pixels.
func FrameToSVG(frame *viz.Frame, scale float64) string {
	if frame == nil || frame.Canvas == nil {
		return ""
	}
	canvas := frame.Canvas

	width := float64(canvas.SubWidth()) * scale
	height := float64(canvas.SubHeight()) * scale

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%.0f" height="%.0f" viewBox="0 0 %.0f %.0f">
<rect width="100%%" height="100%%" fill="%s"/>
`, width, height, width, height, background))

	// Braille dot-to-bit mapping
	pixelMap := [4][2]int{
		{0x01, 0x08},
		{0x02, 0x10},
		{0x04, 0x20},
		{0x40, 0x80},
	}

	dotRadius := scale * 0.4

	for row := 0; row < canvas.Height; row++ {
		for col := 0; col < canvas.Width; col++ {
			color, ok := canvas.Cell(col, row)
			if !ok {
				continue
			}
			pattern := int(canvas.Grid[row][col] - 0x2800)

			baseX := float64(col) * scale * 2
			baseY := float64(row) * scale * 4

			sb.WriteString(fmt.Sprintf(`<g fill="%s">`, color.Hex()))
			for dy := 0; dy < 4; dy++ {
				for dx := 0; dx < 2; dx++ {
					if pattern&pixelMap[dy][dx] != 0 {
						cx := baseX + float64(dx)*scale + scale/2
						cy := baseY + float64(dy)*scale + scale/2
						sb.WriteString(fmt.Sprintf(`<circle cx="%.1f" cy="%.1f" r="%.1f"/>`, cx, cy, dotRadius))
					}
				}
			}
			sb.WriteString("</g>\n")
		}
	}

	sb.WriteString("</svg>")
	return sb.String()
}

// SeriesToSVG draws a time series, such as the live star count, as a
// polyline scaled to fill width by height.
func SeriesToSVG(values []float64, width, height int, strokeColor string) string {
	if len(values) < 2 {
		return ""
	}

	minY, maxY := values[0], values[0]
	for _, v := range values {
		if v < minY {
			minY = v
		}
		if v > maxY {
			maxY = v
		}
	}

	// Add padding
	rangeY := maxY - minY
	if rangeY == 0 {
		rangeY = 1
	}
	minY -= rangeY * 0.1
	maxY += rangeY * 0.1
	rangeY = maxY - minY
	rangeX := float64(len(values) - 1)

	var sb strings.Builder

	sb.WriteString(fmt.Sprintf(`<?xml version="1.0" encoding="UTF-8"?>
<svg xmlns="http://www.w3.org/2000/svg" width="%d" height="%d" viewBox="0 0 %d %d">
<rect width="100%%" height="100%%" fill="%s"/>
<path fill="none" stroke="%s" stroke-width="1.5" d="M`,
		width, height, width, height, background, strokeColor))

	for i, v := range values {
		x := float64(i) / rangeX * float64(width)
		y := float64(height) - (v-minY)/rangeY*float64(height)

		if i == 0 {
			sb.WriteString(fmt.Sprintf("%.1f,%.1f", x, y))
		} else {
			sb.WriteString(fmt.Sprintf(" L%.1f,%.1f", x, y))
		}
	}

	sb.WriteString(`"/>
</svg>`)
	return sb.String()
}
