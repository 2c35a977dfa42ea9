package tsgen

import (
	"strings"

	"github.com/reloquent/modelts/internal/docblock"
	"github.com/reloquent/modelts/internal/typemap"
)

// computedFields types each appended property from its @property annotation.
// Properties without one are typed any.
func (g *Generator) computedFields(md *Metadata) []Field {
	fields := make([]Field, 0, len(md.Appends))
	for _, name := range md.Appends {
		f := Field{Name: name, Type: typemap.TSAny}
		if tok, ok := docblock.Property(md.Doc, name); ok {
			f.Type, f.Nullable = g.docType(tok)
		}
		fields = append(fields, f)
	}
	return fields
}

// docType maps a documented type token such as "?string" or "int|null".
// Null members are reported through the nullable flag.
func (g *Generator) docType(token string) (string, bool) {
	token = strings.TrimSpace(token)
	nullable := false
	if strings.HasPrefix(token, "?") {
		nullable = true
		token = token[1:]
	}

	var types []string
	seen := make(map[string]bool)
	for _, member := range docblock.SplitUnion(token) {
		if strings.EqualFold(member, "null") {
			nullable = true
			continue
		}
		ts := g.docMember(member)
		if !seen[ts] {
			seen[ts] = true
			types = append(types, ts)
		}
	}
	if len(types) == 0 {
		return "null", false
	}
	return strings.Join(types, " | "), nullable
}

func (g *Generator) docMember(member string) string {
	if elem, ok := strings.CutSuffix(member, "[]"); ok {
		inner := g.docMember(elem)
		if strings.Contains(inner, " | ") {
			return "(" + inner + ")[]"
		}
		return inner + "[]"
	}
	return MapCast(castFor(g.Registry, "", member))
}
