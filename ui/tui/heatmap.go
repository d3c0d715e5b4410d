package tui

import (
	"strings"

	"github.com/charmbracelet/lipgloss"

	"github.com/Fettser/diplom-deploy/domain/restore"
	"github.com/Fettser/diplom-deploy/domain/surface"
)

// HeatMap renders the z values of res as a cols x rows grid of coloured cells
// using the surface colour scale. The matrix is sampled nearest-neighbour;
// missing samples are left blank.
func HeatMap(res *restore.Result, cols, rows int) string {
	if res == nil || res.Rows() == 0 || res.Cols() == 0 || cols <= 0 || rows <= 0 {
		return ""
	}
	if cols > res.Cols() {
		cols = res.Cols()
	}
	if rows > res.Rows() {
		rows = res.Rows()
	}
	scale := surface.NewColorScale(res.Peaks.Min, res.Peaks.Max)
	var b strings.Builder
	for y := 0; y < rows; y++ {
		row := res.Matrix[y*res.Rows()/rows]
		for x := 0; x < cols; x++ {
			i := x * res.Cols() / cols
			if i >= len(row) {
				b.WriteString("  ")
				continue
			}
			c := surface.Hex(scale.At(row[i].Z()))
			b.WriteString(lipgloss.NewStyle().Background(lipgloss.Color(c)).Render("  "))
		}
		if y < rows-1 {
			b.WriteByte('\n')
		}
	}
	return b.String()
}

// Legend renders the scale bounds with the palette end colours.
func Legend(res *restore.Result) string {
	if res == nil {
		return ""
	}
	scale := surface.NewColorScale(res.Peaks.Min, res.Peaks.Max)
	lo := surface.Hex(scale.At(scale.Min))
	hi := surface.Hex(scale.At(scale.Max))
	return lipgloss.JoinHorizontal(lipgloss.Center,
		lipgloss.NewStyle().Background(lipgloss.Color(lo)).Render("  "),
		" "+formatFloat(scale.Min)+" .. "+formatFloat(scale.Max)+" ",
		lipgloss.NewStyle().Background(lipgloss.Color(hi)).Render("  "),
	)
}
