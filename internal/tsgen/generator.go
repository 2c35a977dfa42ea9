// Package tsgen derives TypeScript structural types from model classes.
//
// For one model the pipeline is: collect metadata (table, hidden fields,
// casts, appended properties, columns), map every column through its cast or
// storage type, resolve appended properties from @property annotations,
// resolve relations from @property-read annotations, then assemble the fields
// in that order. Unknown inputs degrade to visible markers; only schema read
// failures are returned as errors.
package tsgen

import (
	"context"
	"log/slog"
	"strings"

	"github.com/reloquent/modelts/internal/model"
	"github.com/reloquent/modelts/internal/schema"
	"github.com/reloquent/modelts/internal/typemap"
)

// ColumnReader reads the ordered physical columns of a table.
type ColumnReader interface {
	Columns(ctx context.Context, table string) ([]schema.Column, error)
}

// Field is one member of a generated structural type.
type Field struct {
	Name     string
	Type     string
	Optional bool
	Nullable bool
}

// String renders the field as "name?: Type | null".
func (f Field) String() string {
	var b strings.Builder
	b.WriteString(f.Name)
	if f.Optional {
		b.WriteString("?")
	}
	b.WriteString(": ")
	b.WriteString(f.Type)
	if f.Nullable {
		b.WriteString(" | null")
	}
	return b.String()
}

// TransformedType is the generated declaration for one class.
type TransformedType struct {
	Class     string // source class, e.g. App\Models\User
	Name      string // output type name
	Namespace string // dot path, e.g. App.Models
	Fields    []Field
	Body      string
	Unmapped  []string // types that degraded to an unknown marker
}

// Generator transforms registered model classes into TransformedTypes.
type Generator struct {
	Registry *model.Registry
	Columns  ColumnReader
	TypeMap  *typemap.TypeMap
	Logger   *slog.Logger
}

// New creates a Generator. A nil logger discards output; a nil type map uses
// the PostgreSQL defaults.
func New(reg *model.Registry, cols ColumnReader, tm *typemap.TypeMap, logger *slog.Logger) *Generator {
	if tm == nil {
		tm = typemap.ForDatabase("postgresql")
	}
	if logger == nil {
		logger = slog.New(slog.DiscardHandler)
	}
	return &Generator{Registry: reg, Columns: cols, TypeMap: tm, Logger: logger}
}

// Transform generates the structural type of class under the given output
// name (the class short name when empty). Classes that are not registered
// models yield (nil, nil) so bulk runs can skip them.
func (g *Generator) Transform(ctx context.Context, class, name string) (*TransformedType, error) {
	d, ok := g.Registry.Model(class)
	if !ok {
		g.Logger.Debug("skipping non-model class", "class", class)
		return nil, nil
	}

	md, err := g.collect(ctx, d)
	if err != nil {
		return nil, err
	}

	fields := g.columnFields(md)
	fields = append(fields, g.computedFields(md)...)
	fields = append(fields, g.relationFields(d)...)

	if name == "" {
		name = d.Name
	}
	tt := assemble(d, name, fields)
	for _, tok := range tt.Unmapped {
		g.Logger.Warn("unmapped type", "class", d.Class, "type", tok)
	}
	return tt, nil
}

// columnFields maps every serialized column, preferring its cast.
func (g *Generator) columnFields(md *Metadata) []Field {
	fields := make([]Field, 0, len(md.Columns))
	for _, col := range md.Columns {
		if md.Hidden[col.Name] {
			continue
		}
		f := Field{Name: col.Name, Nullable: col.Nullable}
		if c, ok := md.Casts[col.Name]; ok {
			f.Type = MapCast(c)
		} else {
			f.Type = g.TypeMap.Resolve(col.DataType)
		}
		fields = append(fields, f)
	}
	return fields
}

// assemble concatenates fields into the type body. Name collisions are kept
// as-is, in concatenation order.
func assemble(d *model.Descriptor, name string, fields []Field) *TransformedType {
	lines := make([]string, len(fields))
	var unmapped []string
	for i, f := range fields {
		lines[i] = f.String()
		if typemap.IsUnknown(f.Type) {
			unmapped = append(unmapped, unknownToken(f.Type))
		}
	}
	return &TransformedType{
		Class:     d.Class,
		Name:      name,
		Namespace: d.Namespace,
		Fields:    fields,
		Body:      "{\n" + strings.Join(lines, "\n") + "\n}",
		Unmapped:  unmapped,
	}
}

// unknownToken extracts the original token from an unknown marker.
func unknownToken(expr string) string {
	_, rest, ok := strings.Cut(expr, typemap.TSUnknown+" /* ")
	if !ok {
		return expr
	}
	tok, _, _ := strings.Cut(rest, " */")
	return tok
}
