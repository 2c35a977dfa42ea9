package tsgen

import (
	"context"
	"fmt"

	"github.com/reloquent/modelts/internal/model"
	"github.com/reloquent/modelts/internal/schema"
)

// Metadata is everything the generator reads about one model.
type Metadata struct {
	Table   string
	Hidden  map[string]bool
	Casts   map[string]model.Cast
	Appends []string
	Columns []schema.Column
	Doc     string
}

// collect reads model metadata from a metadata-only instance and the table's
// columns from the schema source. Columns are read on every call.
func (g *Generator) collect(ctx context.Context, d *model.Descriptor) (*Metadata, error) {
	inst := d.Instance()
	table := d.TableName()

	md := &Metadata{
		Table:   table,
		Hidden:  make(map[string]bool),
		Casts:   make(map[string]model.Cast),
		Appends: inst.Appends(),
		Doc:     d.Doc,
	}
	for _, h := range inst.Hidden() {
		md.Hidden[h] = true
	}
	for field, typ := range inst.Casts() {
		md.Casts[field] = castFor(g.Registry, field, typ)
	}

	cols, err := g.Columns.Columns(ctx, table)
	if err != nil {
		return nil, fmt.Errorf("reading columns of %s for %s: %w", table, d.Class, err)
	}
	md.Columns = cols
	return md, nil
}
