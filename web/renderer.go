package web

import (
	"embed"
	"fmt"
	"html/template"
	"time"

	"github.com/gin-gonic/gin/render"
)

//go:embed templates/*.html
var templatesFS embed.FS

// layouts подключаются к каждой странице
var layouts = []string{"templates/base.html", "templates/partials.html"}

var pages = []string{
	"index.html",
	"group.html",
	"profile.html",
	"post.html",
	"post_form.html",
	"group_new.html",
	"profile_edit.html",
	"follow.html",
	"login.html",
	"signup.html",
	"404.html",
	"500.html",
}

// Renderer - набор страниц, каждая собрана вместе с общим layout.
// Реализует render.HTMLRender, поэтому обработчики пишут c.HTML(code, "index.html", data).
type Renderer struct {
	templates map[string]*template.Template
}

func DefaultFuncs() template.FuncMap {
	return template.FuncMap{
		"imageURL": func(key string) string {
			if key == "" {
				return ""
			}
			return "/media/" + key
		},
		"date": func(t time.Time) string {
			return t.Format("2 Jan 2006 15:04")
		},
		"dict": dict,
	}
}

// dict собирает map из пар ключ-значение для вложенных шаблонов
func dict(pairs ...any) (map[string]any, error) {
	if len(pairs)%2 != 0 {
		return nil, fmt.Errorf("dict expects an even number of arguments")
	}
	m := make(map[string]any, len(pairs)/2)
	for i := 0; i < len(pairs); i += 2 {
		key, ok := pairs[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict keys must be strings, got %T", pairs[i])
		}
		m[key] = pairs[i+1]
	}
	return m, nil
}

// NewRenderer разбирает все страницы; funcs дополняют и переопределяют DefaultFuncs
func NewRenderer(funcs template.FuncMap) (*Renderer, error) {
	merged := DefaultFuncs()
	for name, fn := range funcs {
		merged[name] = fn
	}
	templates := make(map[string]*template.Template, len(pages))
	for _, page := range pages {
		files := append(append([]string{}, layouts...), "templates/"+page)
		t, err := template.New(page).Funcs(merged).ParseFS(templatesFS, files...)
		if err != nil {
			return nil, fmt.Errorf("failed to parse template %s: %w", page, err)
		}
		templates[page] = t
	}
	return &Renderer{templates: templates}, nil
}

func (r *Renderer) Instance(name string, data any) render.Render {
	t, ok := r.templates[name]
	if !ok {
		panic(fmt.Sprintf("template is missing {%s}", name))
	}
	return render.HTML{Template: t, Name: "base", Data: data}
}
