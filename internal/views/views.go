// Package views holds the embedded page templates and the engine that renders them.
package views

import (
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"strconv"
	"strings"
	"time"

	"yatube/internal/forms"
	"yatube/internal/models"

	"github.com/gofiber/template/html/v2"
)

// BaseLayout wraps every page.
const BaseLayout = "layouts/base"

//go:embed templates
var templates embed.FS

// New returns the template engine. mediaURL maps stored media keys to URLs.
func New(mediaURL func(key string) string) *html.Engine {
	sub, err := fs.Sub(templates, "templates")
	if err != nil {
		panic(fmt.Sprintf("views: %v", err))
	}
	engine := html.NewFileSystem(http.FS(sub), ".html")
	engine.AddFuncMap(Funcs(mediaURL))
	return engine
}

// Funcs are the helpers available to every template.
func Funcs(mediaURL func(key string) string) template.FuncMap {
	if mediaURL == nil {
		mediaURL = func(key string) string { return "/media/" + key }
	}
	return template.FuncMap{
		"media": func(key string) string {
			if key == "" {
				return ""
			}
			return mediaURL(key)
		},
		"thumb": func(p *models.Post) string {
			switch {
			case p == nil:
				return ""
			case p.ImageThumb != "":
				return mediaURL(p.ImageThumb)
			case p.Image != "":
				return mediaURL(p.Image)
			}
			return ""
		},
		"date":         formatDate,
		"linebreaksbr": linebreaksbr,
		"fieldError": func(errs forms.Errors, field string) string {
			return errs.First(field)
		},
		"pageURL": func(n int) string {
			return "?page=" + strconv.Itoa(n)
		},
		"dict": dict,
	}
}

func formatDate(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format("2 January 2006")
}

// linebreaksbr escapes s and turns newlines into <br>.
func linebreaksbr(s string) template.HTML {
	escaped := template.HTMLEscapeString(strings.ReplaceAll(s, "\r\n", "\n"))
	return template.HTML(strings.ReplaceAll(escaped, "\n", "<br>"))
}

func dict(kv ...any) (map[string]any, error) {
	if len(kv)%2 != 0 {
		return nil, fmt.Errorf("dict: odd number of arguments")
	}
	m := make(map[string]any, len(kv)/2)
	for i := 0; i < len(kv); i += 2 {
		key, ok := kv[i].(string)
		if !ok {
			return nil, fmt.Errorf("dict: key %v is not a string", kv[i])
		}
		m[key] = kv[i+1]
	}
	return m, nil
}
