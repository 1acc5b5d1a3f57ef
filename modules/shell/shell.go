// Package shell is the frame around every tab: the title, the tab bar and
// the fallback handlers for unknown routes.
package shell

import (
	"context"
	"net/http"
	"strings"

	"github.com/dmitrymomot/eventmail/handler"
)

// Tab is one entry of the top navigation.
type Tab struct {
	Key   string
	Label string
	Icon  string
	Path  string
}

// DefaultTabs is the console's navigation in display order.
var DefaultTabs = []Tab{
	{Key: "dashboard", Label: "대시보드", Icon: "📊", Path: "/"},
	{Key: "apitest", Label: "API 테스트", Icon: "🧪", Path: "/apitest"},
	{Key: "attendees", Label: "참석자 관리", Icon: "👥", Path: "/attendees"},
	{Key: "templates", Label: "이메일 템플릿", Icon: "📧", Path: "/templates"},
	{Key: "sheets", Label: "Google Sheets", Icon: "📊", Path: "/sheets"},
	{Key: "campaign", Label: "이메일 캠페인", Icon: "🚀", Path: "/campaign"},
}

type NavItem struct {
	Tab
	Active bool
}

// Nav is what the layout needs to draw the frame of one request.
type Nav struct {
	Title string
	Items []NavItem
}

// Active returns the highlighted tab, if any.
func (n Nav) Active() (Tab, bool) {
	for _, it := range n.Items {
		if it.Active {
			return it.Tab, true
		}
	}
	return Tab{}, false
}

// Match returns the tab that owns path. The root tab matches only "/";
// other tabs match their path and everything below it.
func Match(tabs []Tab, path string) (Tab, bool) {
	var best Tab
	found := false
	for _, t := range tabs {
		if !owns(t.Path, path) {
			continue
		}
		if !found || len(t.Path) > len(best.Path) {
			best, found = t, true
		}
	}
	return best, found
}

func owns(prefix, path string) bool {
	if prefix == "/" {
		return path == "/" || path == ""
	}
	return path == prefix || strings.HasPrefix(path, prefix+"/")
}

type Shell struct {
	title        string
	tabs         []Tab
	errorHandler handler.ErrorHandler[handler.Context]
}

func New(title string, tabs []Tab, errorHandler handler.ErrorHandler[handler.Context]) *Shell {
	if len(tabs) == 0 {
		tabs = DefaultTabs
	}
	return &Shell{title: title, tabs: tabs, errorHandler: errorHandler}
}

// Nav builds the navigation for path.
func (s *Shell) Nav(path string) Nav {
	active, _ := Match(s.tabs, path)
	items := make([]NavItem, len(s.tabs))
	for i, t := range s.tabs {
		items[i] = NavItem{Tab: t, Active: t.Key == active.Key}
	}
	return Nav{Title: s.title, Items: items}
}

// Middleware stores the request's Nav in its context for the layout.
func (s *Shell) Middleware(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		next.ServeHTTP(w, r.WithContext(WithNav(r.Context(), s.Nav(r.URL.Path))))
	})
}

// NotFound renders the error page, or an error toast for datastar requests.
func (s *Shell) NotFound() http.HandlerFunc {
	return handler.Wrap(func(handler.Context, struct{}) handler.Response {
		return handler.Error(handler.NewHTTPError(http.StatusNotFound, "Page not found"))
	}, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler))
}

func (s *Shell) MethodNotAllowed() http.HandlerFunc {
	return handler.Wrap(func(handler.Context, struct{}) handler.Response {
		return handler.Error(handler.NewHTTPError(http.StatusMethodNotAllowed, "Method not allowed"))
	}, handler.WithErrorHandler[handler.Context, struct{}](s.errorHandler))
}

type navKey struct{}

func WithNav(ctx context.Context, n Nav) context.Context {
	return context.WithValue(ctx, navKey{}, n)
}

// NavFromContext returns the Nav stored by Middleware. Without one, no tab
// is active.
func NavFromContext(ctx context.Context) Nav {
	if n, ok := ctx.Value(navKey{}).(Nav); ok {
		return n
	}
	items := make([]NavItem, len(DefaultTabs))
	for i, t := range DefaultTabs {
		items[i] = NavItem{Tab: t}
	}
	return Nav{Items: items}
}
