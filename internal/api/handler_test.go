package api

import (
	"bytes"
	"context"
	"encoding/csv"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"

	"custlens/app"
	"custlens/domain/core"
	"custlens/domain/customer"
	"custlens/domain/stats"
	"custlens/internal"
	"custlens/internal/presets"
	"custlens/internal/synth"
	"custlens/ports"

	"github.com/gin-gonic/gin"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/xuri/excelize/v2"
)

type memoryRepo struct {
	mu    sync.Mutex
	saved []*stats.Dashboard
}

func (m *memoryRepo) Save(_ context.Context, d *stats.Dashboard) error {
	m.mu.Lock()
	defer m.mu.Unlock()
	m.saved = append(m.saved, d)
	return nil
}

func (m *memoryRepo) GetByID(_ context.Context, id core.SnapshotID) (*stats.Dashboard, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	for _, d := range m.saved {
		if d.ID == id {
			return d, nil
		}
	}
	return nil, fmt.Errorf("%w: %s", core.ErrSnapshotNotFound, id)
}

func (m *memoryRepo) ListRecent(_ context.Context, limit int) ([]ports.SnapshotSummary, error) {
	m.mu.Lock()
	defer m.mu.Unlock()
	out := []ports.SnapshotSummary{}
	for i := len(m.saved) - 1; i >= 0 && len(out) < limit; i-- {
		d := m.saved[i]
		out = append(out, ports.SnapshotSummary{ID: d.ID, Fingerprint: d.Fingerprint, Summary: d.Summary, RowCount: d.RowCount, CreatedAt: d.GeneratedAt})
	}
	return out, nil
}

func newRouter(t *testing.T, repo ports.SnapshotRepository) *gin.Engine {
	t.Helper()
	logger := internal.NewDiscardLogger()
	cache := synth.NewCache(logger)
	svc := app.NewDashboardService(cache.Source(synth.GeneratorConfig{NumRows: 300, Seed: 7}), repo, logger)
	h := NewHandler(svc, customer.DefaultCriteria(), app.DefaultDashboardOptions(), logger).
		WithSweep(app.NewSweepService(svc, 2, logger), presets.Defaults())
	return NewRouter(h, gin.TestMode)
}

func do(t *testing.T, r http.Handler, method, url string) *httptest.ResponseRecorder {
	t.Helper()
	req := httptest.NewRequest(method, url, nil)
	w := httptest.NewRecorder()
	r.ServeHTTP(w, req)
	return w
}

func decode(t *testing.T, w *httptest.ResponseRecorder, v any) {
	t.Helper()
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), v), w.Body.String())
}

func assertError(t *testing.T, w *httptest.ResponseRecorder, status int, code string) {
	t.Helper()
	assert.Equal(t, status, w.Code, w.Body.String())
	var body map[string]string
	decode(t, w, &body)
	assert.Equal(t, code, body["code"])
	assert.NotEmpty(t, body["error"])
}

func TestHealth(t *testing.T) {
	w := do(t, newRouter(t, nil), http.MethodGet, "/api/health")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Status  string          `json:"status"`
		Dataset customer.Params `json:"dataset"`
	}
	decode(t, w, &body)
	assert.Equal(t, "ok", body.Status)
	assert.Equal(t, 300, body.Dataset.NumRows)
}

func TestDashboard(t *testing.T) {
	r := newRouter(t, nil)
	w := do(t, r, http.MethodGet, "/api/dashboard?age_min=30&age_max=50&city=Paris&record_limit=3")
	require.Equal(t, http.StatusOK, w.Code, w.Body.String())

	var d stats.Dashboard
	decode(t, w, &d)
	assert.Equal(t, "Showing data for ages 30-50, City: Paris, Product Category: All", d.Summary)
	assert.Len(t, d.Tables, 8)
	assert.LessOrEqual(t, len(d.Table(stats.TableRecords).Rows), 3)
	for _, p := range d.Scatter {
		assert.Greater(t, p.X.Float(), 0.0)
	}
}

func TestDashboard_InvalidInput(t *testing.T) {
	r := newRouter(t, nil)
	for _, url := range []string{
		"/api/dashboard?age_min=60&age_max=20",
		"/api/dashboard?age_min=abc",
		"/api/dashboard?city=Berlin",
		"/api/dashboard?category=Toys",
		"/api/dashboard?record_limit=-1",
		"/api/dashboard?edges=30,20",
	} {
		t.Run(url, func(t *testing.T) {
			assertError(t, do(t, r, http.MethodGet, url), http.StatusBadRequest, "INVALID_INPUT")
		})
	}
}

func TestRecords(t *testing.T) {
	w := do(t, newRouter(t, nil), http.MethodGet, "/api/records?limit=5&offset=2")
	require.Equal(t, http.StatusOK, w.Code)
	var page app.RecordPage
	decode(t, w, &page)
	assert.Len(t, page.Records, 5)
	assert.Equal(t, 2, page.Offset)
	assert.Greater(t, page.Total, 5)
}

func TestStats(t *testing.T) {
	r := newRouter(t, nil)
	w := do(t, r, http.MethodGet, "/api/stats/age?age_min=18&age_max=70")
	require.Equal(t, http.StatusOK, w.Code)
	var d stats.DescriptiveStats
	decode(t, w, &d)
	assert.Equal(t, 300, d.Count)

	assertError(t, do(t, r, http.MethodGet, "/api/stats/height"), http.StatusBadRequest, "INVALID_INPUT")
	assertError(t, do(t, r, http.MethodGet, "/api/stats/city"), http.StatusBadRequest, "INVALID_INPUT")
}

func TestStats_EmptySelectionEncodesNull(t *testing.T) {
	w := do(t, newRouter(t, nil), http.MethodGet, "/api/stats/income?age_min=40&age_max=39")
	assert.Equal(t, http.StatusBadRequest, w.Code)

	w = do(t, newRouter(t, nil), http.MethodGet, "/api/stats/income?age_min=70&age_max=70")
	require.Equal(t, http.StatusOK, w.Code)
	var raw map[string]any
	decode(t, w, &raw)
	assert.EqualValues(t, 0, raw["count"])
	assert.Nil(t, raw["mean"])
}

func TestGroups(t *testing.T) {
	r := newRouter(t, nil)
	w := do(t, r, http.MethodGet, "/api/groups?field=income&by=city&age_min=18&age_max=70")
	require.Equal(t, http.StatusOK, w.Code)
	var g stats.GroupByResult
	decode(t, w, &g)
	assert.Len(t, g.Groups, len(customer.Cities))

	assertError(t, do(t, r, http.MethodGet, "/api/groups?by=age"), http.StatusBadRequest, "INVALID_INPUT")
}

func TestPivot(t *testing.T) {
	w := do(t, newRouter(t, nil), http.MethodGet, "/api/pivot?edges=18,40,70")
	require.Equal(t, http.StatusOK, w.Code)
	var p stats.PivotTable
	decode(t, w, &p)
	assert.Equal(t, []string{"18-40", "41-70"}, p.Rows)
}

func TestCorrelation(t *testing.T) {
	w := do(t, newRouter(t, nil), http.MethodGet, "/api/correlation?fields=income,purchase_amount")
	require.Equal(t, http.StatusOK, w.Code)
	var m stats.CorrelationMatrix
	decode(t, w, &m)
	require.Len(t, m.Values, 2)
	assert.Equal(t, stats.Number(1), m.Values[0][0])
	assert.Equal(t, m.Values[0][1], m.Values[1][0])
}

func TestTop(t *testing.T) {
	w := do(t, newRouter(t, nil), http.MethodGet, "/api/top?n=3&field=income")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Records []customer.Record `json:"records"`
	}
	decode(t, w, &body)
	require.Len(t, body.Records, 3)
	assert.GreaterOrEqual(t, body.Records[0].Income, body.Records[1].Income)
}

func TestExplore(t *testing.T) {
	r := newRouter(t, nil)
	w := do(t, r, http.MethodGet, "/api/explore/city/Tokyo")
	require.Equal(t, http.StatusOK, w.Code)
	var city stats.CityExploration
	decode(t, w, &city)
	assert.Equal(t, "Tokyo", city.City)

	w = do(t, r, http.MethodGet, "/api/explore/category/Books")
	require.Equal(t, http.StatusOK, w.Code)

	assertError(t, do(t, r, http.MethodGet, "/api/explore/city/Berlin"), http.StatusBadRequest, "INVALID_INPUT")
}

func TestExportWorkbook(t *testing.T) {
	w := do(t, newRouter(t, nil), http.MethodGet, "/api/export/xlsx?city=London")
	require.Equal(t, http.StatusOK, w.Code)
	assert.Equal(t, xlsxContentType, w.Header().Get("Content-Type"))
	assert.Contains(t, w.Header().Get("Content-Disposition"), ".xlsx")

	f, err := excelize.OpenReader(bytes.NewReader(w.Body.Bytes()))
	require.NoError(t, err)
	defer f.Close()
	assert.Contains(t, f.GetSheetList(), stats.TableAgePivot)
}

func TestExportCSV(t *testing.T) {
	r := newRouter(t, nil)
	w := do(t, r, http.MethodGet, "/api/export/csv/"+stats.TableCityCounts)
	require.Equal(t, http.StatusOK, w.Code)
	rows, err := csv.NewReader(bytes.NewReader(w.Body.Bytes())).ReadAll()
	require.NoError(t, err)
	assert.Equal(t, []string{"City", "Count"}, rows[0])
	assert.Len(t, rows, len(customer.Cities)+1)

	assertError(t, do(t, r, http.MethodGet, "/api/export/csv/nope"), http.StatusNotFound, "NOT_FOUND")
}

func TestSweep(t *testing.T) {
	w := do(t, newRouter(t, nil), http.MethodGet, "/api/sweep")
	require.Equal(t, http.StatusOK, w.Code)
	var body struct {
		Results []struct {
			Preset   string `json:"preset"`
			RowCount int    `json:"row_count"`
		} `json:"results"`
	}
	decode(t, w, &body)
	require.Len(t, body.Results, len(presets.Defaults()))
	assert.Equal(t, presets.Defaults()[0].Name, body.Results[0].Preset)
}

func TestSnapshots_NotConfigured(t *testing.T) {
	r := newRouter(t, nil)
	assertError(t, do(t, r, http.MethodPost, "/api/snapshots"), http.StatusNotImplemented, "NOT_CONFIGURED")
	assertError(t, do(t, r, http.MethodGet, "/api/snapshots"), http.StatusNotImplemented, "NOT_CONFIGURED")
	assertError(t, do(t, r, http.MethodGet, "/api/snapshots/"+core.NewSnapshotID().String()), http.StatusNotImplemented, "NOT_CONFIGURED")
	assertError(t, do(t, r, http.MethodGet, "/api/snapshots/not-an-id"), http.StatusBadRequest, "INVALID_INPUT")
}

func TestSnapshots_Archive(t *testing.T) {
	r := newRouter(t, &memoryRepo{})

	w := do(t, r, http.MethodPost, "/api/snapshots?city=Sydney")
	require.Equal(t, http.StatusCreated, w.Code, w.Body.String())
	var created stats.Dashboard
	decode(t, w, &created)

	w = do(t, r, http.MethodGet, "/api/snapshots/"+created.ID.String())
	require.Equal(t, http.StatusOK, w.Code)
	var got stats.Dashboard
	decode(t, w, &got)
	assert.Equal(t, created.ID, got.ID)
	assert.Equal(t, "Sydney", got.Criteria.City)

	w = do(t, r, http.MethodGet, "/api/snapshots?limit=5")
	require.Equal(t, http.StatusOK, w.Code)
	var list struct {
		Snapshots []ports.SnapshotSummary `json:"snapshots"`
	}
	decode(t, w, &list)
	require.Len(t, list.Snapshots, 1)
	assert.Equal(t, created.ID, list.Snapshots[0].ID)

	assertError(t, do(t, r, http.MethodGet, "/api/snapshots/"+core.NewSnapshotID().String()), http.StatusNotFound, "NOT_FOUND")
}
