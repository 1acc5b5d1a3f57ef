// Package views holds the console markup. Pages are html/template files
// embedded at build time and handed to the modules as templ components, so
// every module renders through the same templ.Component contract.
package views

import (
	"context"
	"embed"
	"fmt"
	"html/template"
	"io"
	"net/url"
	"slices"
	"strings"

	"github.com/a-h/templ"

	"github.com/dmitrymomot/eventmail/modules/shell"
	"github.com/dmitrymomot/eventmail/pkg/apiclient"
)

// DatastarScript is the client bundle loaded by the layout.
const DatastarScript = "https://cdn.jsdelivr.net/gh/starfederation/datastar@1.0.0-RC.5/bundles/datastar.js"

//go:embed templates/*.html
var templatesFS embed.FS

var markup = template.Must(template.New("views").Funcs(funcs).ParseFS(templatesFS, "templates/*.html"))

var funcs = template.FuncMap{
	"add": func(a, b int) int { return a + b },
	"sub": func(a, b int) int { return a - b },
	"join": func(sep string, s []string) string {
		return strings.Join(s, sep)
	},
	"has": func(values []string, v string) bool {
		return slices.Contains(values, v)
	},
	"typeLabel": func(t apiclient.AttendeeType) string {
		return t.OrDefault().Label()
	},
	"fieldError": func(errs url.Values, field string) string {
		return errs.Get(field)
	},
}

// partial renders one named template.
func partial(name string, data any) templ.Component {
	t := markup.Lookup(name)
	if t == nil {
		return templ.ComponentFunc(func(context.Context, io.Writer) error {
			return fmt.Errorf("views: template %q is not defined", name)
		})
	}
	return templ.FromGoHTML(t, data)
}

type layoutData struct {
	Title  string
	Nav    shell.Nav
	Body   template.HTML
	Script string
}

// page wraps body in the layout. The tab bar comes from the Nav that
// shell.Middleware stored in the request context.
func page(title string, body templ.Component) templ.Component {
	return templ.ComponentFunc(func(ctx context.Context, w io.Writer) error {
		html, err := templ.ToGoHTML(ctx, body)
		if err != nil {
			return err
		}
		nav := shell.NavFromContext(ctx)
		if nav.Title != "" {
			title = title + " · " + nav.Title
		}
		return markup.ExecuteTemplate(w, "layout", layoutData{
			Title:  title,
			Nav:    nav,
			Body:   html,
			Script: DatastarScript,
		})
	})
}
