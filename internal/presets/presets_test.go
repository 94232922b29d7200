package presets

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"custlens/domain/core"
	"custlens/domain/customer"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const sample = `
presets:
  - name: tokyo-electronics
    age_min: 25
    age_max: 45
    city: Tokyo
    product_category: Electronics
  - name: defaults
`

func TestParse(t *testing.T) {
	got, err := Parse(strings.NewReader(sample))
	require.NoError(t, err)
	require.Len(t, got, 2)

	assert.Equal(t, "tokyo-electronics", got[0].Name)
	assert.Equal(t, customer.FilterCriteria{AgeMin: 25, AgeMax: 45, City: "Tokyo", ProductCategory: "Electronics"}, got[0].Criteria)
	assert.Equal(t, customer.DefaultCriteria(), got[1].Criteria)
}

func TestParseRejectsInvalid(t *testing.T) {
	cases := map[string]string{
		"inverted ages": "presets:\n  - name: x\n    age_min: 60\n    age_max: 20\n",
		"unknown city":  "presets:\n  - name: x\n    city: Berlin\n",
		"missing name":  "presets:\n  - age_min: 20\n",
		"duplicate":     "presets:\n  - name: x\n  - name: x\n",
		"empty":         "",
		"not yaml":      "presets: [",
	}
	for name, doc := range cases {
		t.Run(name, func(t *testing.T) {
			_, err := Parse(strings.NewReader(doc))
			require.Error(t, err)
			assert.True(t, core.IsValidationError(err), "got %v", err)
		})
	}
}

func TestWriteLoadRoundTrip(t *testing.T) {
	var buf bytes.Buffer
	require.NoError(t, Write(&buf, Defaults()))

	path := filepath.Join(t.TempDir(), "presets.yaml")
	require.NoError(t, os.WriteFile(path, buf.Bytes(), 0o644))

	got, err := Load(path)
	require.NoError(t, err)
	assert.Equal(t, Defaults(), got)
	assert.Len(t, got, len(customer.Cities)+1)
}

func TestLoadMissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "nope.yaml"))
	assert.Error(t, err)
}
