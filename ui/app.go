package ui

import (
	"bytes"
	"embed"
	"fmt"
	"html/template"
	"io/fs"
	"net/http"
	"net/url"

	"github.com/go-chi/chi/v5"
	"github.com/go-chi/chi/v5/middleware"
	"github.com/gomarkdown/markdown"
	mdhtml "github.com/gomarkdown/markdown/html"
	"github.com/gomarkdown/markdown/parser"

	"custlens/adapters/excel"
	"custlens/app"
	"custlens/domain/customer"
	"custlens/domain/stats"
	"custlens/internal"
	"custlens/internal/api"
	"custlens/internal/errors"
	"custlens/internal/report"
)

//go:embed templates/* static/*
var embeddedFiles embed.FS

// DefaultReportRows caps the raw-records section of the HTML report.
const DefaultReportRows = 50

// App represents the UI application
type App struct {
	router     *chi.Mux
	dashboards *app.DashboardService
	templates  *template.Template
	config     Config
	logger     *internal.Logger
}

// Config holds UI application configuration
type Config struct {
	Defaults customer.FilterCriteria
	Options  app.DashboardOptions
}

// pageData feeds templates/index.html.
type pageData struct {
	Title      string
	Criteria   customer.FilterCriteria
	Cities     []string
	Categories []string
	Query      string
	Report     template.HTML
	Error      string
}

// NewApp creates a new UI application
func NewApp(dashboards *app.DashboardService, config Config, logger *internal.Logger) (*App, error) {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	if config.Options.RecordLimit == 0 {
		config.Options.RecordLimit = DefaultReportRows
	}

	templates, err := template.New("").ParseFS(embeddedFiles, "templates/*.html")
	if err != nil {
		return nil, fmt.Errorf("failed to parse templates: %w", err)
	}

	a := &App{
		router:     chi.NewRouter(),
		dashboards: dashboards,
		templates:  templates,
		config:     config,
		logger:     logger.With("UI"),
	}
	if err := a.setupMiddleware(); err != nil {
		return nil, err
	}
	a.setupRoutes()
	return a, nil
}

// setupMiddleware configures HTTP middleware
func (a *App) setupMiddleware() error {
	a.router.Use(middleware.RequestID)
	a.router.Use(middleware.Logger)
	a.router.Use(middleware.Recoverer)
	a.router.Use(middleware.Compress(5))

	staticFS, err := fs.Sub(embeddedFiles, "static")
	if err != nil {
		return fmt.Errorf("failed to open static files: %w", err)
	}
	a.router.Handle("/static/*", http.StripPrefix("/static/", http.FileServer(http.FS(staticFS))))
	return nil
}

// setupRoutes configures the application routes
func (a *App) setupRoutes() {
	a.router.Get("/", a.handleIndex)
	a.router.Get("/report.md", a.handleMarkdown)
	a.router.Get("/export.xlsx", a.handleWorkbook)
}

// ServeHTTP implements http.Handler.
func (a *App) ServeHTTP(w http.ResponseWriter, r *http.Request) {
	a.router.ServeHTTP(w, r)
}

// Start starts the HTTP server
func (a *App) Start(addr string) error {
	a.logger.Info("starting UI server on %s", addr)
	return http.ListenAndServe(addr, a.router)
}

func (a *App) handleIndex(w http.ResponseWriter, r *http.Request) {
	data := pageData{
		Title:      report.Title,
		Criteria:   a.config.Defaults,
		Cities:     append([]string{customer.All}, customer.Cities...),
		Categories: append([]string{customer.All}, customer.Categories...),
		Query:      r.URL.RawQuery,
	}

	d, err := a.compute(r)
	if err != nil {
		data.Error = err.Error()
		if criteria, perr := api.ParseCriteria(r.URL.Query().Get, a.config.Defaults); perr == nil {
			data.Criteria = criteria
		}
		a.renderTemplate(w, errors.HTTPStatus(err), "index.html", data)
		return
	}

	data.Criteria = d.Criteria
	data.Query = criteriaQuery(d.Criteria)
	data.Report = renderMarkdown(report.Markdown(d))
	a.renderTemplate(w, http.StatusOK, "index.html", data)
}

func (a *App) handleMarkdown(w http.ResponseWriter, r *http.Request) {
	d, err := a.compute(r)
	if err != nil {
		a.fail(w, err)
		return
	}
	w.Header().Set("Content-Type", "text/markdown; charset=utf-8")
	w.WriteHeader(http.StatusOK)
	fmt.Fprint(w, report.Markdown(d))
}

func (a *App) handleWorkbook(w http.ResponseWriter, r *http.Request) {
	d, err := a.compute(r)
	if err != nil {
		a.fail(w, err)
		return
	}
	var buf bytes.Buffer
	if err := excel.WriteWorkbook(d, &buf); err != nil {
		a.fail(w, errors.Wrap(err, "failed to export workbook"))
		return
	}
	w.Header().Set("Content-Type", "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet")
	w.Header().Set("Content-Disposition", fmt.Sprintf("attachment; filename=%q", "custlens-"+d.Fingerprint.Short()+".xlsx"))
	w.WriteHeader(http.StatusOK)
	w.Write(buf.Bytes())
}

func (a *App) compute(r *http.Request) (*stats.Dashboard, error) {
	get := r.URL.Query().Get
	criteria, err := api.ParseCriteria(get, a.config.Defaults)
	if err != nil {
		return nil, err
	}
	opts, err := api.ParseOptions(get, a.config.Options)
	if err != nil {
		return nil, err
	}
	return a.dashboards.Compute(r.Context(), criteria, opts)
}

func (a *App) fail(w http.ResponseWriter, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		a.logger.Error("%v", err)
	}
	http.Error(w, err.Error(), status)
}

// Template helpers
func (a *App) renderTemplate(w http.ResponseWriter, status int, templateName string, data interface{}) {
	var buf bytes.Buffer
	if err := a.templates.ExecuteTemplate(&buf, templateName, data); err != nil {
		a.logger.Error("template error: %v", err)
		http.Error(w, "Template error", http.StatusInternalServerError)
		return
	}
	w.Header().Set("Content-Type", "text/html; charset=utf-8")
	w.WriteHeader(status)
	w.Write(buf.Bytes())
}

// renderMarkdown converts a report to HTML. Parsers are single use.
func renderMarkdown(md string) template.HTML {
	p := parser.NewWithExtensions(parser.CommonExtensions | parser.AutoHeadingIDs)
	r := mdhtml.NewRenderer(mdhtml.RendererOptions{Flags: mdhtml.CommonFlags})
	return template.HTML(markdown.ToHTML([]byte(md), p, r))
}

func criteriaQuery(c customer.FilterCriteria) string {
	v := url.Values{}
	v.Set("age_min", fmt.Sprint(c.AgeMin))
	v.Set("age_max", fmt.Sprint(c.AgeMax))
	v.Set("city", c.City)
	v.Set("category", c.ProductCategory)
	return v.Encode()
}
