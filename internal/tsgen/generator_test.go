package tsgen

import (
	"context"
	"errors"
	"strings"
	"sync"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/reloquent/modelts/internal/model"
	"github.com/reloquent/modelts/internal/schema"
	"github.com/reloquent/modelts/internal/typemap"
)

// fakeColumns serves fixture columns and counts reads per table.
type fakeColumns struct {
	mu     sync.Mutex
	tables map[string][]schema.Column
	reads  map[string]int
	err    error
}

func (f *fakeColumns) Columns(_ context.Context, table string) ([]schema.Column, error) {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.reads == nil {
		f.reads = make(map[string]int)
	}
	f.reads[table]++
	if f.err != nil {
		return nil, f.err
	}
	return f.tables[table], nil
}

const testManifest = `
enums:
  - name: App\Enums\PostStatus
    values: [draft, published]
models:
  - class: App\Models\User
    typescript: true
    hidden: [password, remember_token]
  - class: App\Models\Post
    typescript: true
    casts:
      status: App\Enums\PostStatus
      is_pinned: boolean
      meta: array
    appends: [excerpt, reading_time, badge, untyped]
    doc: |
      /**
       * @property int $id
       * @property string $excerpt
       * @property ?int $reading_time
       * @property \App\Enums\PostStatus|null $badge
       * @property-read \App\Models\User|null $author
       * @property-read \Illuminate\Database\Eloquent\Collection|\App\Models\Tag[] $tags
       * @property-read int|null $tags_count
       * @property-read \App\Models\Customer|null $customer
       * @property-read \Illuminate\Database\Eloquent\Collection|\App\Models\Comment[] $comments
       * @property-read Collection<int, Tag> $related_tags
       * @property-read \App\Models\Post $parent
       * @property-read string $slug
       * @property-read \Illuminate\Support\Carbon|null $last_seen_at
       * @property-read \App\Enums\PostStatus $state
       * @property-read \App\Support\Money $total
       */
  - class: App\Models\Tag
    typescript: true
  - class: App\Models\Comment
    typescript: false
shapes:
  - class: App\Data\SharedData
    typescript: true
    fields:
      - {name: name, type: string}
`

func testFixture(t *testing.T) (*model.Registry, *fakeColumns) {
	t.Helper()
	reg, err := model.ParseManifest([]byte(testManifest))
	require.NoError(t, err)

	cols := &fakeColumns{tables: map[string][]schema.Column{
		"users": {
			{Name: "id", DataType: "int8"},
			{Name: "name", DataType: "varchar"},
			{Name: "email", DataType: "varchar"},
			{Name: "email_verified_at", DataType: "timestamp", Nullable: true},
			{Name: "password", DataType: "varchar"},
			{Name: "remember_token", DataType: "varchar", Nullable: true},
			{Name: "created_at", DataType: "timestamp", Nullable: true},
			{Name: "updated_at", DataType: "timestamp", Nullable: true},
		},
		"posts": {
			{Name: "id", DataType: "uuid"},
			{Name: "status", DataType: "varchar"},
			{Name: "is_pinned", DataType: "int2"},
			{Name: "meta", DataType: "jsonb", Nullable: true},
			{Name: "location", DataType: "geometry", Nullable: true},
			{Name: "age", DataType: "integer", Nullable: true},
		},
		"tags": {
			{Name: "id", DataType: "int4"},
			{Name: "label", DataType: "text"},
		},
	}}
	return reg, cols
}

func TestTransform_UserColumns(t *testing.T) {
	reg, cols := testFixture(t)
	g := New(reg, cols, nil, nil)

	tt, err := g.Transform(context.Background(), `App\Models\User`, "User")
	require.NoError(t, err)
	require.NotNil(t, tt)

	assert.Equal(t, `App\Models\User`, tt.Class)
	assert.Equal(t, "User", tt.Name)
	assert.Equal(t, "App.Models", tt.Namespace)
	assert.Equal(t, strings.Join([]string{
		"{",
		"id: number",
		"name: string",
		"email: string",
		"email_verified_at: string | null",
		"created_at: string | null",
		"updated_at: string | null",
		"}",
	}, "\n"), tt.Body)
	assert.Empty(t, tt.Unmapped)
}

func TestTransform_PostFieldsInOrder(t *testing.T) {
	reg, cols := testFixture(t)
	g := New(reg, cols, typemap.ForDatabase("postgresql"), nil)

	tt, err := g.Transform(context.Background(), `App\Models\Post`, "")
	require.NoError(t, err)
	require.NotNil(t, tt)
	assert.Equal(t, "Post", tt.Name)

	got := make([]string, len(tt.Fields))
	for i, f := range tt.Fields {
		got[i] = f.String()
	}
	assert.Equal(t, []string{
		// columns
		"id: string",
		"status: 'draft' | 'published'",
		"is_pinned: boolean",
		"meta: any | null",
		"location: unknown /* geometry */ | null",
		"age: number | null",
		// computed
		"excerpt: string",
		"reading_time: number | null",
		"badge: 'draft' | 'published' | null",
		"untyped: any",
		// relations
		"author?: App.Models.User | null",
		"tags?: App.Models.Tag[]",
		"customer?: any | null",
		"comments?: any[]",
		"related_tags?: App.Models.Tag[]",
		"parent?: App.Models.Post",
	}, got)

	assert.Equal(t, []string{"geometry"}, tt.Unmapped)

	for _, f := range tt.Fields {
		assert.NotContains(t, []string{"last_seen_at", "state", "total"}, f.Name, "value-typed accessor emitted as relation")
	}
}

func TestTransform_UnregisteredRelationNeverNamesTarget(t *testing.T) {
	reg, cols := testFixture(t)
	tt, err := New(reg, cols, nil, nil).Transform(context.Background(), `App\Models\Post`, "")
	require.NoError(t, err)

	assert.NotContains(t, tt.Body, "Customer")
	assert.NotContains(t, tt.Body, "Comment")
	assert.NotContains(t, tt.Body, "tags_count")
	assert.NotContains(t, tt.Body, "slug")
}

func TestTransform_NotAModel(t *testing.T) {
	reg, cols := testFixture(t)
	g := New(reg, cols, nil, nil)

	tt, err := g.Transform(context.Background(), `App\Data\SharedData`, "SharedData")
	assert.NoError(t, err)
	assert.Nil(t, tt)

	tt, err = g.Transform(context.Background(), `App\Models\Missing`, "Missing")
	assert.NoError(t, err)
	assert.Nil(t, tt)
	assert.Empty(t, cols.reads, "skipped classes must not touch the schema source")
}

func TestTransform_Idempotent(t *testing.T) {
	reg, cols := testFixture(t)
	g := New(reg, cols, nil, nil)

	first, err := g.Transform(context.Background(), `App\Models\Post`, "")
	require.NoError(t, err)
	second, err := g.Transform(context.Background(), `App\Models\Post`, "")
	require.NoError(t, err)

	assert.Equal(t, first.Body, second.Body)
	assert.Equal(t, 2, cols.reads["posts"], "columns are read fresh on every call")
}

func TestTransform_ColumnReadError(t *testing.T) {
	reg, cols := testFixture(t)
	cols.err = errors.New("connection reset")

	_, err := New(reg, cols, nil, nil).Transform(context.Background(), `App\Models\User`, "")
	require.Error(t, err)
	assert.ErrorIs(t, err, cols.err)
	assert.Contains(t, err.Error(), "users")
}

func TestTransform_NameCollisionKept(t *testing.T) {
	reg := model.NewRegistry()
	_, err := reg.RegisterModel(`App\Models\Tag`, collidingModel{}, model.WithTypeScript(),
		model.WithDoc("/**\n * @property string $label\n * @property-read \\App\\Models\\Tag|null $label\n */"))
	require.NoError(t, err)
	cols := &fakeColumns{tables: map[string][]schema.Column{
		"tags": {{Name: "label", DataType: "text"}},
	}}

	tt, err := New(reg, cols, nil, nil).Transform(context.Background(), `App\Models\Tag`, "")
	require.NoError(t, err)
	assert.Equal(t, "{\nlabel: string\nlabel: string\nlabel?: App.Models.Tag | null\n}", tt.Body)
}

type collidingModel struct{}

func (collidingModel) Table() string            { return "" }
func (collidingModel) Hidden() []string         { return nil }
func (collidingModel) Casts() map[string]string { return nil }
func (collidingModel) Appends() []string        { return []string{"label"} }

func TestTransform_TypeMapOverride(t *testing.T) {
	reg, cols := testFixture(t)
	tm := typemap.ForDatabase("postgresql")
	tm.Override("geometry", "string")

	tt, err := New(reg, cols, tm, nil).Transform(context.Background(), `App\Models\Post`, "")
	require.NoError(t, err)
	assert.Contains(t, tt.Body, "location: string | null")
	assert.Empty(t, tt.Unmapped)
}

func TestParseRelationType(t *testing.T) {
	tests := []struct {
		token string
		want  relationRef
		ok    bool
	}{
		{`\App\Models\Customer|null`, relationRef{Class: `\App\Models\Customer`, Nullable: true}, true},
		{`?\App\Models\Customer`, relationRef{Class: `\App\Models\Customer`, Nullable: true}, true},
		{`\App\Models\Customer`, relationRef{Class: `\App\Models\Customer`}, true},
		{`\Illuminate\Database\Eloquent\Collection|\App\Models\Tag[]`, relationRef{Class: `\App\Models\Tag`, Collection: true}, true},
		{`\App\Models\Tag[]`, relationRef{Class: `\App\Models\Tag`, Collection: true}, true},
		{`Collection<int, \App\Models\Tag>`, relationRef{Class: `\App\Models\Tag`, Collection: true}, true},
		{`array<\App\Models\Tag>`, relationRef{Class: `\App\Models\Tag`, Collection: true}, true},
		{`\Illuminate\Database\Eloquent\Collection`, relationRef{Collection: true}, true},
		{`int|null`, relationRef{}, false},
		{`string`, relationRef{}, false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, ok := parseRelationType(tt.token)
			assert.Equal(t, tt.ok, ok)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestResolveClass(t *testing.T) {
	d := &model.Descriptor{Class: `App\Models\Post`, Namespace: "App.Models", Name: "Post"}
	assert.Equal(t, `App\Models\User`, resolveClass(`\App\Models\User`, d))
	assert.Equal(t, `App\Models\Tag`, resolveClass("Tag", d))
	assert.Equal(t, `App\Models\Post`, resolveClass("static", d))
}

func TestRelationTarget(t *testing.T) {
	reg, cols := testFixture(t)
	require.NoError(t, reg.RegisterClass(`App\Support\Address`, false))
	g := New(reg, cols, nil, nil)

	tests := []struct {
		target     string
		collection bool
		wantName   string
		related    bool
	}{
		{`App\Models\Tag`, false, "App.Models.Tag", true},
		{`App\Data\SharedData`, false, "App.Data.SharedData", true},
		{`App\Models\Comment`, false, "", true},
		{`App\Models\Customer`, false, "", true},
		{`Vendor\Thing`, true, "", true},
		{`App\Enums\PostStatus`, false, "", false},
		{`App\Enums\PostStatus`, true, "", false},
		{`Illuminate\Support\Carbon`, false, "", false},
		{`Carbon\CarbonImmutable`, true, "", false},
		{`App\Support\Address`, false, "", false},
		{`App\Support\Money`, false, "", false},
	}
	for _, tt := range tests {
		c, related := g.relationTarget(tt.target, tt.collection)
		assert.Equal(t, tt.related, related, "%s collection=%v", tt.target, tt.collection)
		if tt.wantName == "" {
			assert.Nil(t, c, tt.target)
			continue
		}
		require.NotNil(t, c, tt.target)
		assert.Equal(t, tt.wantName, c.OutputName())
	}
}

func TestDocType(t *testing.T) {
	reg, cols := testFixture(t)
	g := New(reg, cols, nil, nil)

	tests := []struct {
		token    string
		want     string
		nullable bool
	}{
		{"string", "string", false},
		{"?string", "string", true},
		{"int|null", "number", true},
		{"int|float", "number", false},
		{"string[]", "string[]", false},
		{`\App\Enums\PostStatus[]`, "('draft' | 'published')[]", false},
		{"null", "null", false},
		{"Money", "unknown /* Money */", false},
	}
	for _, tt := range tests {
		t.Run(tt.token, func(t *testing.T) {
			got, nullable := g.docType(tt.token)
			assert.Equal(t, tt.want, got)
			assert.Equal(t, tt.nullable, nullable)
		})
	}
}
