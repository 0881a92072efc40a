// SPDX-License-Identifier: MIT
package render

import (
	"image/color"
	"math"
	"strings"

	"decibel/internal/bars"

	"github.com/charmbracelet/lipgloss"
	"github.com/lucasb-eyer/go-colorful"
)

// Cell is one terminal character of the canvas.
type Cell struct {
	Color color.NRGBA
	Set   bool
}

// Canvas rasterises bars into a grid of terminal cells. Each cell covers
// CellWidth x CellHeight surface pixels; column 0 starts at OffsetX.
type Canvas struct {
	Cols, Rows            int
	CellWidth, CellHeight int
	OffsetX               float64

	cells  []Cell
	styles map[color.NRGBA]lipgloss.Style
}

// NewCanvas creates an empty canvas.
func NewCanvas(cols, rows, cellWidth, cellHeight int) *Canvas {
	cols, rows = max(cols, 0), max(rows, 0)
	return &Canvas{
		Cols:       cols,
		Rows:       rows,
		CellWidth:  max(cellWidth, 1),
		CellHeight: max(cellHeight, 1),
		cells:      make([]Cell, cols*rows),
		styles:     make(map[color.NRGBA]lipgloss.Style),
	}
}

// Reset clears every cell and moves the visible window to offsetX.
func (c *Canvas) Reset(offsetX float64) {
	c.OffsetX = offsetX
	clear(c.cells)
}

// VisibleWidth returns the width of the visible window in surface pixels.
func (c *Canvas) VisibleWidth() float64 {
	return float64(c.Cols * c.CellWidth)
}

// Visible reports whether any part of b falls inside the visible window
// and b is not fully transparent.
func (c *Canvas) Visible(b bars.Bar) bool {
	if b.Alpha <= 0 {
		return false
	}
	return b.Rect.Right > c.OffsetX && b.Rect.Left < c.OffsetX+c.VisibleWidth()
}

// Draw paints b as a filled rectangle with a lighter outline on its top
// row and side columns. Invisible bars are skipped.
func (c *Canvas) Draw(b bars.Bar) {
	if !c.Visible(b) {
		return
	}

	left := int(math.Floor((b.Rect.Left - c.OffsetX) / float64(c.CellWidth)))
	right := int(math.Ceil((b.Rect.Right-c.OffsetX)/float64(c.CellWidth))) - 1
	top := int(math.Floor(b.Rect.Top / float64(c.CellHeight)))
	bottom := int(math.Ceil(b.Rect.Bottom/float64(c.CellHeight))) - 1

	fill := FillColor(b.Color, b.Alpha)
	outline := FillColor(bars.OutlineColor(b.Color), b.Alpha)

	for row := max(top, 0); row <= min(bottom, c.Rows-1); row++ {
		for col := max(left, 0); col <= min(right, c.Cols-1); col++ {
			cell := &c.cells[row*c.Cols+col]
			cell.Set = true
			if row == top || col == left || col == right {
				cell.Color = outline
			} else {
				cell.Color = fill
			}
		}
	}
}

// At returns the cell at col, row.
func (c *Canvas) At(col, row int) Cell {
	return c.cells[row*c.Cols+col]
}

// Render returns the canvas as styled lines, one per row.
func (c *Canvas) Render() string {
	var sb strings.Builder
	for row := 0; row < c.Rows; row++ {
		if row > 0 {
			sb.WriteByte('\n')
		}
		line := c.cells[row*c.Cols : (row+1)*c.Cols]
		for start := 0; start < len(line); {
			end := start + 1
			for end < len(line) && line[end] == line[start] {
				end++
			}
			run := strings.Repeat(" ", end-start)
			if line[start].Set {
				run = c.style(line[start].Color).Render(run)
			}
			sb.WriteString(run)
			start = end
		}
	}
	return sb.String()
}

func (c *Canvas) style(col color.NRGBA) lipgloss.Style {
	if s, ok := c.styles[col]; ok {
		return s
	}
	cf, _ := colorful.MakeColor(color.NRGBA{R: col.R, G: col.G, B: col.B, A: 255})
	s := lipgloss.NewStyle().Background(lipgloss.Color(cf.Hex()))
	c.styles[col] = s
	return s
}

// FillColor composites c over black at the given alpha (0-255).
func FillColor(c color.NRGBA, alpha int) color.NRGBA {
	alpha = min(max(alpha, 0), 255)
	src := colorful.Color{R: float64(c.R) / 255, G: float64(c.G) / 255, B: float64(c.B) / 255}
	r, g, b := colorful.Color{}.BlendRgb(src, float64(alpha)/255).RGB255()
	return color.NRGBA{R: r, G: g, B: b, A: 255}
}
