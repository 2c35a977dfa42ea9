package model

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

const testManifest = `
enums:
  - name: App\Enums\PostStatus
    values: [draft, published]
models:
  - class: App\Models\Post
    typescript: true
    table: posts
    hidden: [secret]
    casts:
      status: App\Enums\PostStatus
      published_at: datetime
    appends: [excerpt]
    doc: |
      /**
       * @property string $excerpt
       */
  - class: App\Models\AuditLog
    typescript: false
shapes:
  - class: App\Data\QuoteData
    typescript: true
    fields:
      - {name: message, type: string}
      - {name: author, type: string, nullable: true}
classes:
  - class: App\Support\Money
    typescript: false
`

func TestParseManifest(t *testing.T) {
	r, err := ParseManifest([]byte(testManifest))
	require.NoError(t, err)

	d, ok := r.Model(`App\Models\Post`)
	require.True(t, ok)
	inst := d.Instance()
	assert.Equal(t, "posts", inst.Table())
	assert.Equal(t, []string{"secret"}, inst.Hidden())
	assert.Equal(t, `App\Enums\PostStatus`, inst.Casts()["status"])
	assert.Equal(t, []string{"excerpt"}, inst.Appends())
	assert.Contains(t, d.Doc, "@property string $excerpt")
	assert.True(t, r.IsMarked(`App\Models\Post`))

	audit, ok := r.Model(`App\Models\AuditLog`)
	require.True(t, ok)
	assert.Equal(t, "", audit.Instance().Table())
	assert.False(t, r.IsMarked(`App\Models\AuditLog`))

	e, ok := r.Enum(`App\Enums\PostStatus`)
	require.True(t, ok)
	assert.Equal(t, []string{"draft", "published"}, e.Values)

	c, ok := r.Class(`App\Data\QuoteData`)
	require.True(t, ok)
	require.NotNil(t, c.Shape)
	assert.Len(t, c.Shape.Fields, 2)
	assert.True(t, c.Shape.Fields[1].Nullable)
	assert.Equal(t, "App.Data.QuoteData", c.OutputName())

	_, ok = r.Model(`App\Support\Money`)
	assert.False(t, ok)
}

func TestParseManifest_Errors(t *testing.T) {
	tests := []struct {
		name    string
		yaml    string
		section string
	}{
		{"missing model class", "models:\n  - typescript: true\n", "models"},
		{"duplicate model", "models:\n  - class: A\\B\n  - class: \\A\\B\n", "models"},
		{"missing enum name", "enums:\n  - values: [a]\n", "enums"},
		{"bad shape field", "shapes:\n  - class: A\\S\n    fields:\n      - {name: x}\n", "shapes"},
		{"missing class", "classes:\n  - typescript: true\n", "classes"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := ParseManifest([]byte(tt.yaml))
			var me *ManifestError
			require.True(t, errors.As(err, &me), "expected ManifestError, got %v", err)
			assert.Equal(t, tt.section, me.Section)
		})
	}
}

func TestLoadManifest(t *testing.T) {
	path := filepath.Join(t.TempDir(), "models.yaml")
	require.NoError(t, os.WriteFile(path, []byte(testManifest), 0o644))

	r, err := LoadManifest(path)
	require.NoError(t, err)
	assert.Equal(t, 4, r.Len())

	_, err = LoadManifest(filepath.Join(t.TempDir(), "missing.yaml"))
	assert.Error(t, err)
}
