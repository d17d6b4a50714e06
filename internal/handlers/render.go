package handlers

import (
	"fmt"
	"html/template"
	"io"
	"io/fs"
	"path"
	"strings"

	"github.com/labstack/echo/v4"
)

const layoutFile = "base.html"

// CSRFContextKey is where the CSRF middleware leaves the request token.
// Rendered pages receive it as csrf_token.
const CSRFContextKey = "csrf"

// Renderer executes one template set per page, each parsed together with
// the shared layout.
type Renderer struct {
	pages map[string]*template.Template
}

// NewRenderer parses every *.html page below the root of fsys except the
// layout itself.
func NewRenderer(fsys fs.FS) (*Renderer, error) {
	funcs := template.FuncMap{
		"mediaURL": func(key string) string { return "/media/" + key },
		"truncate": truncateWords,
	}

	r := &Renderer{pages: map[string]*template.Template{}}
	err := fs.WalkDir(fsys, ".", func(name string, d fs.DirEntry, err error) error {
		if err != nil || d.IsDir() || path.Ext(name) != ".html" || name == layoutFile {
			return err
		}
		t, err := template.New(path.Base(name)).Funcs(funcs).ParseFS(fsys, layoutFile, name)
		if err != nil {
			return fmt.Errorf("parse %s: %w", name, err)
		}
		r.pages[name] = t
		return nil
	})
	if err != nil {
		return nil, err
	}
	return r, nil
}

func (r *Renderer) Render(w io.Writer, name string, data interface{}, c echo.Context) error {
	t, ok := r.pages[name]
	if !ok {
		return fmt.Errorf("template %s not found", name)
	}
	if m, ok := data.(echo.Map); ok && c != nil {
		if token, ok := c.Get(CSRFContextKey).(string); ok {
			m["csrf_token"] = token
		}
	}
	return t.ExecuteTemplate(w, layoutFile, data)
}

// truncateWords keeps the first n words of s.
func truncateWords(n int, s string) string {
	words := strings.Fields(s)
	if len(words) <= n {
		return s
	}
	return strings.Join(words[:n], " ") + " …"
}
