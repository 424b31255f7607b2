package dashboard

import (
	"embed"
	"encoding/json"
	"html/template"
	"io"
	"time"

	"github.com/AlibekovAA/cloudrun-demo/internal/common/clock"
	"github.com/AlibekovAA/cloudrun-demo/internal/common/constants"
)

//go:embed templates/*.html
var templateFS embed.FS

type Renderer struct {
	landing   *template.Template
	dashboard *template.Template
}

var funcs = template.FuncMap{
	"iso": func(t time.Time) string { return clock.FormatISO(t) },
	"pretty": func(v any) string {
		b, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return ""
		}
		return string(b)
	},
}

func NewRenderer() (*Renderer, error) {
	landing, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/landing.html")
	if err != nil {
		return nil, err
	}
	dashboard, err := template.New("layout.html").Funcs(funcs).ParseFS(templateFS, "templates/layout.html", "templates/dashboard.html")
	if err != nil {
		return nil, err
	}
	return &Renderer{landing: landing, dashboard: dashboard}, nil
}

type landingPage struct {
	Title         string
	DashboardPath string
}

type dashboardPage struct {
	Title      string
	State      State
	SocketPath string
}

func (r *Renderer) Landing(w io.Writer) error {
	return r.landing.Execute(w, landingPage{
		Title:         "Cloud Run Demo",
		DashboardPath: constants.DashboardRoute,
	})
}

func (r *Renderer) Dashboard(w io.Writer, s State) error {
	return r.dashboard.Execute(w, dashboardPage{
		Title:      "Cloud Run Server-Side Processing Test",
		State:      s,
		SocketPath: constants.DashboardSocketPath,
	})
}
