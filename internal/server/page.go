package server

import (
	"bytes"
	"html/template"

	"github.com/woozymasta/mapbook/internal/atlas"
	"github.com/woozymasta/mapbook/internal/layout"

	"github.com/tdewolff/minify/v2"
	"github.com/tdewolff/minify/v2/css"
	"github.com/tdewolff/minify/v2/html"
)

var homeTemplate = template.Must(template.New("home").Parse(`<!DOCTYPE html>
<html lang="{{ .Locale }}" dir="{{ .Dir }}">
<head>
  <meta charset="utf-8">
  <title>{{ .Title }}</title>
  <style>
    body { font-family: sans-serif; margin: 2em; }
    ul { list-style: none; padding: 0; }
    li { margin: 0.3em 0; }
  </style>
</head>
<body>
  <h1>{{ .Title }}</h1>
  <p>{{ .BBox }}</p>
  <ul>
    <li><a href="/api/bbox">Bounding box</a></li>
    <li><a href="/api/grid">Grid (GeoJSON)</a></li>
    <li><a href="/api/sheets">Map sheets ({{ .Sheets }})</a></li>
    <li><a href="/api/index">Index</a></li>
  </ul>
  {{ if .Pages }}<h2>Index pages</h2>
  <ul>{{ range .Pages }}
    <li><a href="/api/index/{{ . }}.svg">Page {{ . }}</a></li>{{ end }}
  </ul>{{ end }}
</body>
</html>
`))

type homeData struct {
	Title  string
	Locale string
	Dir    string
	BBox   string
	Sheets int
	Pages  []int
}

// homePage renders the minified landing page of the preview server.
func homePage(a *atlas.Atlas, res *layout.Result) ([]byte, error) {
	p := a.Project()
	data := homeData{
		Title:  p.Title,
		Locale: p.Language().String(),
		Dir:    p.Direction().String(),
		BBox:   p.BBox.DMSString(),
		Sheets: a.Plan().Len(),
	}
	if data.Title == "" {
		data.Title = "Atlas"
	}
	for page := res.FirstPage; page <= res.LastPage; page++ {
		data.Pages = append(data.Pages, page)
	}

	var buf bytes.Buffer
	if err := homeTemplate.Execute(&buf, data); err != nil {
		return nil, err
	}

	m := minify.New()
	m.AddFunc("text/css", css.Minify)
	m.AddFunc("text/html", html.Minify)

	var out bytes.Buffer
	if err := m.Minify("text/html", &out, &buf); err != nil {
		return nil, err
	}

	return out.Bytes(), nil
}
