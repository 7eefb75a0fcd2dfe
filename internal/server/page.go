package server

import (
	"html"
	"html/template"
	"net/http"
	"strconv"
	"strings"
	"time"

	"wine/internal/feature"
	"wine/internal/history"
	"wine/internal/predict"
)

var now = time.Now

type slider struct {
	feature.Field
	Value float64
}

type pageData struct {
	Sliders    []slider
	Guide      []feature.Field
	Result     *predict.Prediction
	Notes      []string
	History    []history.Entry
	Animations map[string]bool
	Error      string
}

var pageFuncs = template.FuncMap{
	"display": func(p *predict.Prediction) template.HTML {
		return bold(predict.Display(*p))
	},
	"number": func(v float64) string {
		return strconv.FormatFloat(v, 'f', -1, 64)
	},
	"fixed": func(v float64) string {
		return strconv.FormatFloat(v, 'f', 2, 64)
	},
	"clock": func(t time.Time) string {
		return t.Format("15:04:05")
	},
}

// bold escapes s and turns **text** spans into <strong>text</strong>.
func bold(s string) template.HTML {
	var b strings.Builder
	rest := s
	for {
		before, after, found := strings.Cut(rest, "**")
		if !found {
			break
		}
		inner, tail, closed := strings.Cut(after, "**")
		if !closed {
			break
		}
		b.WriteString(html.EscapeString(before))
		b.WriteString("<strong>")
		b.WriteString(html.EscapeString(inner))
		b.WriteString("</strong>")
		rest = tail
	}
	b.WriteString(html.EscapeString(rest))
	return template.HTML(b.String())
}

func (rt *Router) newPage(r *http.Request, session string, c *feature.Collector) *pageData {
	fields := feature.Fields()
	values := c.Record().Values()

	page := pageData{
		Sliders:    make([]slider, len(fields)),
		Guide:      fields,
		Animations: make(map[string]bool),
	}
	for i, f := range fields {
		page.Sliders[i] = slider{Field: f, Value: values[i]}
	}

	if session != "" {
		if entries, ok := rt.history.Get(session); ok {
			// newest first
			for i := len(entries) - 1; i >= 0; i-- {
				page.History = append(page.History, entries[i])
			}
		}
	}

	if rt.animations != nil {
		for name := range rt.animations.All(r.Context()) {
			page.Animations[name] = true
		}
	}

	return &page
}
