// Package api serves the dashboard as a JSON API over gin.
package api

import (
	"bytes"
	"fmt"
	"net/http"
	"strconv"
	"strings"

	"custlens/adapters/excel"
	"custlens/adapters/tabular"
	"custlens/app"
	"custlens/domain/core"
	"custlens/domain/customer"
	"custlens/internal"
	"custlens/internal/analysis"
	"custlens/internal/errors"
	"custlens/internal/presets"

	"github.com/gin-gonic/gin"
)

const (
	defaultRecordPage = 100
	xlsxContentType   = "application/vnd.openxmlformats-officedocument.spreadsheetml.sheet"
)

// Handler answers every /api route.
type Handler struct {
	dashboards *app.DashboardService
	sweeps     *app.SweepService
	presets    []presets.Preset
	defaults   customer.FilterCriteria
	opts       app.DashboardOptions
	logger     *internal.Logger
}

// NewHandler creates the API handler. defaults fill in any filter the request
// leaves out.
func NewHandler(dashboards *app.DashboardService, defaults customer.FilterCriteria, opts app.DashboardOptions, logger *internal.Logger) *Handler {
	if logger == nil {
		logger = internal.DefaultLogger
	}
	return &Handler{
		dashboards: dashboards,
		defaults:   defaults,
		opts:       opts,
		logger:     logger.With("API"),
	}
}

// WithSweep enables GET /api/sweep over the given presets.
func (h *Handler) WithSweep(sweeps *app.SweepService, list []presets.Preset) *Handler {
	h.sweeps = sweeps
	h.presets = list
	return h
}

// Register mounts the routes under /api.
func (h *Handler) Register(r gin.IRouter) {
	api := r.Group("/api")
	api.GET("/health", h.Health)
	api.GET("/dashboard", h.Dashboard)
	api.GET("/records", h.Records)
	api.GET("/stats/:field", h.Stats)
	api.GET("/groups", h.Groups)
	api.GET("/pivot", h.Pivot)
	api.GET("/correlation", h.Correlation)
	api.GET("/top", h.Top)
	api.GET("/explore/city/:city", h.ExploreCity)
	api.GET("/explore/category/:category", h.ExploreCategory)
	api.GET("/export/xlsx", h.ExportWorkbook)
	api.GET("/export/csv/:table", h.ExportCSV)
	api.GET("/sweep", h.Sweep)
	api.POST("/snapshots", h.CreateSnapshot)
	api.GET("/snapshots", h.ListSnapshots)
	api.GET("/snapshots/:id", h.GetSnapshot)
}

// Health reports the loaded dataset.
func (h *Handler) Health(c *gin.Context) {
	params, err := h.dashboards.DatasetInfo(c.Request.Context())
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"status": "ok", "dataset": params})
}

// Dashboard computes the full dashboard for the request's filters.
func (h *Handler) Dashboard(c *gin.Context) {
	criteria, opts, err := h.parse(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	d, err := h.dashboards.Compute(c.Request.Context(), criteria, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Records pages through the filtered rows.
func (h *Handler) Records(c *gin.Context) {
	criteria, err := h.criteria(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	limit, err := intQuery(c, "limit", defaultRecordPage)
	if err != nil {
		h.fail(c, err)
		return
	}
	offset, err := intQuery(c, "offset", 0)
	if err != nil {
		h.fail(c, err)
		return
	}
	page, err := h.dashboards.Records(c.Request.Context(), criteria, limit, offset)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, page)
}

// Stats describes one numeric field.
func (h *Handler) Stats(c *gin.Context) {
	criteria, err := h.criteria(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	field, err := customer.ParseField(c.Param("field"))
	if err != nil {
		h.fail(c, err)
		return
	}
	d, err := h.dashboards.Describe(c.Request.Context(), criteria, field)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// Groups aggregates ?field per value of ?by.
func (h *Handler) Groups(c *gin.Context) {
	criteria, err := h.criteria(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	field, err := fieldQuery(c, "field", customer.FieldPurchaseAmount)
	if err != nil {
		h.fail(c, err)
		return
	}
	by, err := fieldQuery(c, "by", customer.FieldProductCategory)
	if err != nil {
		h.fail(c, err)
		return
	}
	g, err := h.dashboards.GroupBy(c.Request.Context(), criteria, field, by)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, g)
}

// Pivot tabulates mean purchase per age group and category.
func (h *Handler) Pivot(c *gin.Context) {
	criteria, opts, err := h.parse(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	p, err := h.dashboards.Pivot(c.Request.Context(), criteria, opts.Buckets)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, p)
}

// Correlation computes the matrix over ?fields (comma separated), or every
// numeric field.
func (h *Handler) Correlation(c *gin.Context) {
	criteria, err := h.criteria(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	var fields []customer.Field
	for _, name := range splitList(c.Query("fields")) {
		f, err := customer.ParseField(name)
		if err != nil {
			h.fail(c, err)
			return
		}
		fields = append(fields, f)
	}
	m, err := h.dashboards.Correlation(c.Request.Context(), criteria, fields...)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, m)
}

// Top returns the ?n records with the largest ?field.
func (h *Handler) Top(c *gin.Context) {
	criteria, opts, err := h.parse(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	field, err := fieldQuery(c, "field", customer.FieldPurchaseAmount)
	if err != nil {
		h.fail(c, err)
		return
	}
	n, err := intQuery(c, "n", opts.TopN)
	if err != nil {
		h.fail(c, err)
		return
	}
	top, err := h.dashboards.Top(c.Request.Context(), criteria, field, n)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"field": field, "records": top})
}

// ExploreCity summarises one city.
func (h *Handler) ExploreCity(c *gin.Context) {
	criteria, err := h.criteria(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	e, err := h.dashboards.ExploreCity(c.Request.Context(), criteria, c.Param("city"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// ExploreCategory summarises one product category.
func (h *Handler) ExploreCategory(c *gin.Context) {
	criteria, err := h.criteria(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	e, err := h.dashboards.ExploreCategory(c.Request.Context(), criteria, c.Param("category"))
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, e)
}

// ExportWorkbook downloads the dashboard as an xlsx workbook.
func (h *Handler) ExportWorkbook(c *gin.Context) {
	criteria, opts, err := h.parse(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	d, err := h.dashboards.Compute(c.Request.Context(), criteria, opts)
	if err != nil {
		h.fail(c, err)
		return
	}

	var buf bytes.Buffer
	if err := excel.WriteWorkbook(d, &buf); err != nil {
		h.fail(c, errors.Wrap(err, "failed to export workbook"))
		return
	}
	attachment(c, fmt.Sprintf("custlens-%s.xlsx", d.Fingerprint.Short()))
	c.Data(http.StatusOK, xlsxContentType, buf.Bytes())
}

// ExportCSV downloads one dashboard table as CSV.
func (h *Handler) ExportCSV(c *gin.Context) {
	criteria, opts, err := h.parse(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	d, err := h.dashboards.Compute(c.Request.Context(), criteria, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	name := c.Param("table")
	t := d.Table(name)
	if t == nil {
		h.fail(c, errors.NotFound("table "+name))
		return
	}

	var buf bytes.Buffer
	if err := tabular.WriteCSV(t, &buf); err != nil {
		h.fail(c, errors.Wrapf(err, "failed to export %s", name))
		return
	}
	attachment(c, name+".csv")
	c.Data(http.StatusOK, "text/csv; charset=utf-8", buf.Bytes())
}

// Sweep computes the dashboard for every configured preset.
func (h *Handler) Sweep(c *gin.Context) {
	if h.sweeps == nil {
		h.fail(c, errors.NotConfigured("preset sweep"))
		return
	}
	_, opts, err := h.parse(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	results, err := h.sweeps.Run(c.Request.Context(), h.presets, opts)
	if err != nil {
		h.fail(c, err)
		return
	}

	out := make([]gin.H, len(results))
	for i, r := range results {
		out[i] = gin.H{
			"preset":    r.Preset.Name,
			"summary":   r.Dashboard.Summary,
			"row_count": r.Dashboard.RowCount,
			"metrics":   r.Dashboard.Metrics,
		}
	}
	c.JSON(http.StatusOK, gin.H{"results": out})
}

// CreateSnapshot computes and archives the dashboard.
func (h *Handler) CreateSnapshot(c *gin.Context) {
	criteria, opts, err := h.parse(c)
	if err != nil {
		h.fail(c, err)
		return
	}
	d, err := h.dashboards.Compute(c.Request.Context(), criteria, opts)
	if err != nil {
		h.fail(c, err)
		return
	}
	if err := h.dashboards.Archive(c.Request.Context(), d); err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusCreated, d)
}

// ListSnapshots lists recently archived dashboards.
func (h *Handler) ListSnapshots(c *gin.Context) {
	limit, err := intQuery(c, "limit", 0)
	if err != nil {
		h.fail(c, err)
		return
	}
	list, err := h.dashboards.RecentSnapshots(c.Request.Context(), limit)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, gin.H{"snapshots": list})
}

// GetSnapshot loads one archived dashboard.
func (h *Handler) GetSnapshot(c *gin.Context) {
	id, err := core.ParseSnapshotID(c.Param("id"))
	if err != nil {
		h.fail(c, err)
		return
	}
	d, err := h.dashboards.Snapshot(c.Request.Context(), id)
	if err != nil {
		h.fail(c, err)
		return
	}
	c.JSON(http.StatusOK, d)
}

// fail writes {"error","code"} with the status the error maps to.
func (h *Handler) fail(c *gin.Context, err error) {
	status := errors.HTTPStatus(err)
	if status >= http.StatusInternalServerError {
		h.logger.Error("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	} else {
		h.logger.Debug("%s %s: %v", c.Request.Method, c.Request.URL.Path, err)
	}
	c.AbortWithStatusJSON(status, gin.H{"error": err.Error(), "code": errors.GetCode(err)})
}

// parse reads filters and dashboard options from the query string.
func (h *Handler) parse(c *gin.Context) (customer.FilterCriteria, app.DashboardOptions, error) {
	criteria, err := h.criteria(c)
	if err != nil {
		return criteria, h.opts, err
	}
	opts, err := ParseOptions(c.Request.URL.Query().Get, h.opts)
	return criteria, opts, err
}

func (h *Handler) criteria(c *gin.Context) (customer.FilterCriteria, error) {
	return ParseCriteria(c.Request.URL.Query().Get, h.defaults)
}

// ParseCriteria reads age_min, age_max, city and category through get,
// keeping defaults for anything missing.
func ParseCriteria(get func(string) string, defaults customer.FilterCriteria) (customer.FilterCriteria, error) {
	c := defaults
	var err error
	if c.AgeMin, err = parseInt(get, "age_min", c.AgeMin); err != nil {
		return c, err
	}
	if c.AgeMax, err = parseInt(get, "age_max", c.AgeMax); err != nil {
		return c, err
	}
	if v := strings.TrimSpace(get("city")); v != "" {
		c.City = v
	}
	if v := strings.TrimSpace(get("category")); v != "" {
		c.ProductCategory = v
	}
	return c, nil
}

// ParseOptions reads record_limit, top_n and edges through get.
func ParseOptions(get func(string) string, defaults app.DashboardOptions) (app.DashboardOptions, error) {
	opts := defaults
	var err error
	if opts.RecordLimit, err = parseInt(get, "record_limit", opts.RecordLimit); err != nil {
		return opts, err
	}
	if opts.RecordLimit < 0 {
		return opts, core.NewValidationError("record_limit", "must not be negative")
	}
	if opts.TopN, err = parseInt(get, "top_n", opts.TopN); err != nil {
		return opts, err
	}
	if edges := splitList(get("edges")); len(edges) > 0 {
		values := make([]int, len(edges))
		for i, e := range edges {
			if values[i], err = strconv.Atoi(e); err != nil {
				return opts, core.NewValidationError("edges", "must be a comma separated list of integers")
			}
		}
		opts.Buckets = analysis.NewBuckets(values...)
		if err := opts.Buckets.Validate(); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func parseInt(get func(string) string, key string, def int) (int, error) {
	v := strings.TrimSpace(get(key))
	if v == "" {
		return def, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, core.NewValidationError(key, "must be an integer")
	}
	return n, nil
}

func intQuery(c *gin.Context, key string, def int) (int, error) {
	return parseInt(c.Request.URL.Query().Get, key, def)
}

func fieldQuery(c *gin.Context, key string, def customer.Field) (customer.Field, error) {
	v := strings.TrimSpace(c.Query(key))
	if v == "" {
		return def, nil
	}
	return customer.ParseField(v)
}

func splitList(s string) []string {
	var out []string
	for _, part := range strings.Split(s, ",") {
		if part = strings.TrimSpace(part); part != "" {
			out = append(out, part)
		}
	}
	return out
}

func attachment(c *gin.Context, filename string) {
	c.Header("Content-Disposition", fmt.Sprintf("attachment; filename=%q", filename))
}
