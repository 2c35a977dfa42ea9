package typemap

import (
	"path/filepath"
	"sort"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestDefaultMapping(t *testing.T) {
	tm := ForDatabase("postgresql")

	tests := []struct {
		storageType string
		want        TSType
	}{
		{"uuid", TSString},
		{"character varying", TSString},
		{"timestamp without time zone", TSString},
		{"timestamptz", TSString},
		{"bpchar", TSString},
		{"bytea", TSString},
		{"integer", TSNumber},
		{"int2", TSNumber},
		{"int4", TSNumber},
		{"int8", TSNumber},
		{"float8", TSNumber},
		{"numeric", TSNumber},
		{"serial", TSNumber},
		{"bigserial", TSNumber},
		{"smallserial", TSNumber},
		{"boolean", TSBoolean},
		{"bool", TSBoolean},
	}

	for _, tt := range tests {
		t.Run(tt.storageType, func(t *testing.T) {
			assert.Equal(t, tt.want, tm.Resolve(tt.storageType))
		})
	}
}

func TestResolveIsDeterministic(t *testing.T) {
	for _, typ := range ForDatabase("postgresql").SortedTypes() {
		a := ForDatabase("postgresql").Resolve(typ)
		b := ForDatabase("postgresql").Resolve(typ)
		assert.Equal(t, a, b, "Resolve(%q) not stable", typ)
	}
}

func TestUnknownTypeMarker(t *testing.T) {
	tm := ForDatabase("postgresql")
	got := tm.Resolve("geometry")
	assert.Equal(t, TSType("unknown /* geometry */"), got)
	assert.True(t, IsUnknown(got))
	assert.False(t, IsUnknown("string"))
}

func TestUnknownEscapesCommentTerminator(t *testing.T) {
	got := Unknown("weird*/type")
	assert.Equal(t, 1, strings.Count(string(got), "*/"), "marker must contain exactly one comment terminator: %q", got)
}

func TestCaseInsensitiveLookup(t *testing.T) {
	tm := ForDatabase("oracle")
	assert.Equal(t, TSString, tm.Resolve("VARCHAR2"))
	assert.Equal(t, TSNumber, tm.Resolve("NUMBER"))
}

func TestDialectSupplements(t *testing.T) {
	assert.Equal(t, TSString, ForDatabase("mysql").Resolve("longtext"))
	assert.Equal(t, TSString, ForDatabase("mongodb").Resolve("objectId"))
	assert.True(t, IsUnknown(ForDatabase("postgresql").Resolve("longtext")), "longtext is not a postgres default")
}

func TestOverride(t *testing.T) {
	tm := ForDatabase("postgresql")

	tm.Override("numeric", TSString)
	assert.Equal(t, TSString, tm.Resolve("numeric"))
	assert.True(t, tm.IsOverridden("numeric"))

	tm.RestoreDefault("numeric")
	assert.Equal(t, TSNumber, tm.Resolve("numeric"))
	assert.False(t, tm.IsOverridden("numeric"))
}

func TestOverride_SameAsDefault(t *testing.T) {
	tm := ForDatabase("postgresql")

	tm.Override("integer", TSNumber)
	assert.False(t, tm.IsOverridden("integer"), "overriding to the default value is not tracked")
}

func TestOverride_UnmappedTypeRestore(t *testing.T) {
	tm := ForDatabase("postgresql")
	tm.Override("jsonb", TSAny)
	require.Equal(t, TSAny, tm.Resolve("jsonb"))

	tm.RestoreDefault("jsonb")
	assert.True(t, IsUnknown(tm.Resolve("jsonb")), "restored unmapped type should be unknown again")
}

func TestWriteAndLoadYAML(t *testing.T) {
	tm := ForDatabase("postgresql")
	tm.Override("jsonb", TSAny)
	tm.Override("numeric", TSString)

	path := filepath.Join(t.TempDir(), "typemap.yaml")
	require.NoError(t, tm.WriteYAML(path))
	require.FileExists(t, path)

	loaded, err := LoadYAML(path, "mysql")
	require.NoError(t, err)

	assert.Equal(t, "postgresql", loaded.DatabaseType)
	assert.Equal(t, TSAny, loaded.Resolve("jsonb"))
	assert.Equal(t, TSString, loaded.Resolve("numeric"))
	assert.Equal(t, TSString, loaded.Resolve("text"))
}

func TestLoadYAML_NotFound(t *testing.T) {
	_, err := LoadYAML("/nonexistent/typemap.yaml", "postgresql")
	assert.Error(t, err)
}

func TestSortedTypes(t *testing.T) {
	types := ForDatabase("postgresql").SortedTypes()
	require.NotEmpty(t, types)
	assert.True(t, sort.StringsAreSorted(types), "types not sorted: %v", types)
}
