// Package view renders the server-side pages. Each page is parsed together
// with the shared layout into its own template set.
package view

import (
	"embed"
	"fmt"
	"html/template"
	"strings"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates
var files embed.FS

var Pages = []string{
	"auth/login",
	"auth/register",
	"admin/dashboard",
	"admin/job_applications",
	"student/jobs",
	"student/job_details",
}

var funcs = template.FuncMap{
	"date": func(t time.Time) string {
		if t.IsZero() {
			return ""
		}
		return t.Format("02/01/2006")
	},
	"lower": strings.ToLower,
	"eqID": func(a uint, b string) bool { return fmt.Sprint(a) == b },
}

// Renderer implements gin's render.HTMLRender over the embedded pages.
type Renderer struct {
	sets map[string]*template.Template
}

var _ render.HTMLRender = (*Renderer)(nil)

func New() (*Renderer, error) {
	r := &Renderer{sets: make(map[string]*template.Template, len(Pages))}
	for _, p := range Pages {
		t, err := template.New(p).Funcs(funcs).ParseFS(files, "templates/layout.html", "templates/"+p+".html")
		if err != nil {
			return nil, fmt.Errorf("parse %s: %w", p, err)
		}
		r.sets[p] = t
	}
	return r, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.sets[name]
	if !ok {
		panic("view: unknown page " + name)
	}
	return render.HTML{Template: t, Name: "layout", Data: data}
}
