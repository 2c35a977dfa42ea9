package tsgen

import (
	"strings"

	"github.com/reloquent/modelts/internal/model"
	"github.com/reloquent/modelts/internal/typemap"
)

// dateClasses are date objects serialized as strings, matched on short name.
var dateClasses = map[string]bool{
	"Carbon":            true,
	"CarbonImmutable":   true,
	"DateTime":          true,
	"DateTimeImmutable": true,
	"DateTimeInterface": true,
}

// MapCast converts a cast descriptor into a TypeScript type expression.
// Enum casts become a union of quoted literals in declaration order.
func MapCast(c model.Cast) string {
	if c.Enum != nil {
		return enumUnion(c.Enum)
	}

	base, arg, _ := strings.Cut(c.Type, ":")
	switch base {
	case "boolean", "bool":
		return typemap.TSBoolean
	case "int", "integer", "float", "real", "double", "decimal":
		return typemap.TSNumber
	case "string", "datetime", "timestamp", "date", "uuid",
		"immutable_date", "immutable_datetime", "hashed":
		return typemap.TSString
	case "array", "object", "json", "mixed":
		return typemap.TSAny
	case "collection":
		return typemap.TSAny + "[]"
	case "encrypted":
		if arg != "" {
			return MapCast(model.Cast{Field: c.Field, Type: arg})
		}
		return typemap.TSString
	}

	if _, name := model.SplitClass(c.Type); dateClasses[name] {
		return typemap.TSString
	}
	return typemap.Unknown(c.Type)
}

func enumUnion(values []string) string {
	if len(values) == 0 {
		return "never"
	}
	quoted := make([]string, len(values))
	for i, v := range values {
		v = strings.ReplaceAll(v, `\`, `\\`)
		quoted[i] = "'" + strings.ReplaceAll(v, "'", `\'`) + "'"
	}
	return strings.Join(quoted, " | ")
}

// castFor builds a cast descriptor, attaching enum members when typ names a
// registered enumerated type.
func castFor(reg *model.Registry, field, typ string) model.Cast {
	c := model.Cast{Field: field, Type: typ}
	if e, ok := reg.Enum(typ); ok {
		c.Enum = append([]string{}, e.Values...)
	}
	return c
}
