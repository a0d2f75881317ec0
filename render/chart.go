package render

import (
	"fmt"
	"image/color"
	"io"

	"github.com/go-echarts/go-echarts/v2/charts"
	"github.com/go-echarts/go-echarts/v2/opts"

	"github.com/TheCacophonyProject/track-heatmap/trajectory"
)

// WriteChart writes an interactive HTML scatter plot of buf with one
// series per class.
func WriteChart(w io.Writer, buf trajectory.Buffer, width, height int, palette Palette) error {
	var moving, static []opts.ScatterData
	for _, p := range buf {
		d := opts.ScatterData{
			Name:  p.ObjectID,
			Value: []interface{}{p.X, p.Y, p.Frame},
		}
		if p.Class == trajectory.Static {
			static = append(static, d)
		} else {
			moving = append(moving, d)
		}
	}

	scatter := charts.NewScatter()
	scatter.SetGlobalOptions(
		charts.WithInitializationOpts(opts.Initialization{PageTitle: "Object heatmap", Width: "900px", Height: "600px"}),
		charts.WithTitleOpts(opts.Title{
			Title:    "Object heatmap",
			Subtitle: fmt.Sprintf("moving=%d static=%d", len(moving), len(static)),
		}),
		charts.WithTooltipOpts(opts.Tooltip{Show: opts.Bool(true)}),
		charts.WithLegendOpts(opts.Legend{Show: opts.Bool(true)}),
		charts.WithXAxisOpts(opts.XAxis{Name: "x", Min: 0, Max: width}),
		charts.WithYAxisOpts(opts.YAxis{Name: "y", Min: 0, Max: height}),
	)
	scatter.AddSeries(trajectory.Moving.String(), moving,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(palette.Moving)}))
	scatter.AddSeries(trajectory.Static.String(), static,
		charts.WithScatterChartOpts(opts.ScatterChart{SymbolSize: 8}),
		charts.WithItemStyleOpts(opts.ItemStyle{Color: hexColor(palette.Static)}))

	return scatter.Render(w)
}

func hexColor(c color.NRGBA) string {
	return fmt.Sprintf("#%02x%02x%02x", c.R, c.G, c.B)
}
