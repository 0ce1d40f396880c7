package web

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"math"
	"strings"
)

//go:embed templates/*.html
var templateFS embed.FS

//go:embed static
var staticFS embed.FS

// PageTemplate is the entry template every HTML response renders.
const PageTemplate = "page.html"

var funcs = template.FuncMap{
	"metric": func(v float64) string {
		if math.IsNaN(v) {
			return "-"
		}
		return fmt.Sprintf("%.4f", v)
	},
	"num": func(v float64) string {
		if v == math.Trunc(v) && math.Abs(v) < 1e15 {
			return fmt.Sprintf("%.0f", v)
		}
		return fmt.Sprintf("%.4g", v)
	},
	"pct": func(v float64) string {
		return fmt.Sprintf("%.1f%%", v)
	},
	"bytes": func(n int64) string {
		const unit = 1024
		if n < unit {
			return fmt.Sprintf("%d B", n)
		}
		div, exp := int64(unit), 0
		for m := n / unit; m >= unit; m /= unit {
			div *= unit
			exp++
		}
		return fmt.Sprintf("%.1f %ciB", float64(n)/float64(div), "KMGTPE"[exp])
	},
	"lower": strings.ToLower,
	// barWidth scales a histogram count to a percentage of the largest bin.
	"barWidth": func(count, max int) int {
		if max == 0 {
			return 0
		}
		return count * 100 / max
	},
}

// Templates parses the embedded page templates.
func Templates() (*template.Template, error) {
	return template.New(PageTemplate).Funcs(funcs).ParseFS(templateFS, "templates/*.html")
}

// Static serves the stylesheet.
func Static() fs.FS {
	sub, err := fs.Sub(staticFS, "static")
	if err != nil {
		panic(err)
	}
	return sub
}
