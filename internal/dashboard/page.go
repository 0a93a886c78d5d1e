// Package dashboard renders derived metrics as a standalone HTML page with go-echarts charts.
package dashboard

import (
	"bytes"
	"fmt"
	"html/template"
	"io"
	"strings"
)

// echartsAsset is the script every chart on the page depends on.
const echartsAsset = "https://go-echarts.github.io/go-echarts-assets/assets/echarts.min.js"

// Tone colors a stat card.
type Tone string

// Stat card tones.
const (
	ToneNeutral Tone = "neutral"
	ToneGood    Tone = "good"
	ToneFlat    Tone = "flat"
	ToneBad     Tone = "bad"
)

// Renderable is anything that can write itself as an HTML fragment.
type Renderable interface {
	Render(w io.Writer) error
}

// Stat is a single headline number.
type Stat struct {
	Label string
	Value string
	Note  string
	Tone  Tone
}

// Section is one titled chart on the page.
type Section struct {
	Title    string
	Subtitle string
	Chart    Renderable
}

// Page is a complete dashboard.
type Page struct {
	Title       string
	Description string
	Stats       []Stat
	Sections    []Section
}

// NewPage creates an empty dashboard page.
func NewPage(title, description string) *Page {
	return &Page{Title: title, Description: description}
}

// AddStats appends stat cards to the page.
func (p *Page) AddStats(stats ...Stat) {
	p.Stats = append(p.Stats, stats...)
}

// Add appends sections to the page.
func (p *Page) Add(sections ...Section) {
	p.Sections = append(p.Sections, sections...)
}

type sectionData struct {
	Title    string
	Subtitle string
	Body     template.HTML
}

// Render writes the page as a standalone HTML document.
func (p *Page) Render(w io.Writer) error {
	sections := make([]sectionData, 0, len(p.Sections))
	for _, section := range p.Sections {
		var buf bytes.Buffer
		if section.Chart != nil {
			if err := section.Chart.Render(&buf); err != nil {
				return fmt.Errorf("render section %q: %w", section.Title, err)
			}
		}
		sections = append(sections, sectionData{
			Title:    section.Title,
			Subtitle: section.Subtitle,
			Body:     template.HTML(extractChartContent(buf.String())),
		})
	}

	return pageTemplate.Execute(w, struct {
		*Page
		Asset    string
		Sections []sectionData
	}{p, echartsAsset, sections})
}

// extractChartContent strips the document wrapper go-echarts puts around a single chart.
func extractChartContent(html string) string {
	trimmed := strings.TrimSpace(html)
	if !strings.HasPrefix(trimmed, "<!DOCTYPE") && !strings.HasPrefix(trimmed, "<html") {
		return html
	}
	start := strings.Index(html, `<div class="container">`)
	end := strings.Index(html, `</body>`)
	if start == -1 || end == -1 || end < start {
		return html
	}
	content := html[start:end]
	for {
		i := strings.Index(content, "<style>")
		if i == -1 {
			break
		}
		j := strings.Index(content[i:], "</style>")
		if j == -1 {
			break
		}
		content = content[:i] + content[i+j+len("</style>"):]
	}
	return content
}

var pageTemplate = template.Must(template.New("page").Parse(`<!DOCTYPE html>
<html>
<head>
<meta charset="utf-8">
<title>{{ .Title }}</title>
<script src="{{ .Asset }}"></script>
<style>
body { font-family: -apple-system, "Segoe UI", Helvetica, sans-serif; margin: 0 auto; max-width: 1100px; padding: 24px; color: #1c1917; }
header p { color: #57534e; margin-top: 0; }
.stats { display: grid; grid-template-columns: repeat(auto-fill, minmax(160px, 1fr)); gap: 12px; margin: 24px 0; }
.stat { border: 1px solid #e7e5e4; border-radius: 8px; padding: 12px 16px; }
.stat .label { font-size: 12px; color: #78716c; text-transform: uppercase; }
.stat .value { font-size: 26px; font-weight: 600; margin-top: 4px; }
.stat .note { font-size: 12px; color: #78716c; }
.stat.good .value { color: #15803d; }
.stat.flat .value { color: #a16207; }
.stat.bad .value { color: #b91c1c; }
section { margin-top: 32px; }
section h2 { margin-bottom: 0; }
section p { color: #57534e; margin-top: 4px; }
.container { display: flex; justify-content: center; }
</style>
</head>
<body>
<header>
<h1>{{ .Title }}</h1>
<p>{{ .Description }}</p>
</header>
{{- if .Stats }}
<div class="stats">
{{- range .Stats }}
<div class="stat {{ .Tone }}">
<div class="label">{{ .Label }}</div>
<div class="value">{{ .Value }}</div>
{{- if .Note }}<div class="note">{{ .Note }}</div>{{ end }}
</div>
{{- end }}
</div>
{{- end }}
{{- range .Sections }}
<section>
<h2>{{ .Title }}</h2>
{{- if .Subtitle }}<p>{{ .Subtitle }}</p>{{ end }}
{{ .Body }}
</section>
{{- end }}
</body>
</html>
`))
