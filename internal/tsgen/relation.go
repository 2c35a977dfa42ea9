package tsgen

import (
	"regexp"
	"strings"

	"github.com/reloquent/modelts/internal/docblock"
	"github.com/reloquent/modelts/internal/model"
	"github.com/reloquent/modelts/internal/typemap"
)

// countSuffix marks derived relation counts such as posts_count.
const countSuffix = "_count"

var classRefPattern = regexp.MustCompile(`^\\?[A-Za-z_][A-Za-z0-9_]*(?:\\[A-Za-z_][A-Za-z0-9_]*)*$`)

// pseudoTypes are documentation types that never name a class.
var pseudoTypes = map[string]bool{
	"int": true, "integer": true, "float": true, "double": true, "string": true,
	"bool": true, "boolean": true, "true": true, "false": true, "null": true,
	"array": true, "list": true, "iterable": true, "object": true, "mixed": true,
	"callable": true, "resource": true, "void": true, "never": true,
	"scalar": true, "numeric": true,
}

// relationRef is a classified @property-read type token.
type relationRef struct {
	Class      string // as written; empty for an untyped collection
	Collection bool
	Nullable   bool
}

// relationFields emits one optional field per @property-read relation, in
// document order.
func (g *Generator) relationFields(d *model.Descriptor) []Field {
	var fields []Field
	for _, a := range docblock.ReadOnly(d.Doc) {
		if strings.HasSuffix(a.Name, countSuffix) {
			continue
		}
		ref, ok := parseRelationType(a.Type)
		if !ok {
			g.Logger.Debug("property-read is not a relation", "class", d.Class, "property", a.Name, "type", a.Type)
			continue
		}

		var c *model.Class
		if ref.Class != "" {
			target := resolveClass(ref.Class, d)
			var related bool
			c, related = g.relationTarget(target, ref.Collection)
			if !related {
				g.Logger.Debug("property-read does not reference a model", "class", d.Class, "property", a.Name, "type", a.Type)
				continue
			}
			if c == nil {
				g.Logger.Debug("relation target not registered", "class", d.Class, "property", a.Name, "target", target)
			}
		}

		f := Field{Name: a.Name, Type: typemap.TSAny, Optional: true}
		if c != nil {
			f.Type = c.OutputName()
		}
		if ref.Collection {
			f.Type += "[]"
		} else {
			f.Nullable = ref.Nullable
		}
		fields = append(fields, f)
	}
	return fields
}

// relationTarget decides whether target can be the related side of a
// relation. Marked classes and shapes resolve to themselves; other models and
// unregistered classes under a Models namespace are relations typed any.
// Enums, date classes and other value objects are not relations.
func (g *Generator) relationTarget(target string, collection bool) (*model.Class, bool) {
	if g.Registry.IsMarked(target) {
		c, _ := g.Registry.Class(target)
		return c, true
	}
	if c, ok := g.Registry.Class(target); ok {
		return nil, c.Kind == model.KindModel
	}
	if _, ok := g.Registry.Enum(target); ok {
		return nil, false
	}
	ns, short := model.SplitClass(target)
	if dateClasses[short] {
		return nil, false
	}
	return nil, collection || isModelNamespace(ns)
}

func isModelNamespace(ns string) bool {
	for _, seg := range strings.Split(ns, ".") {
		if seg == "Models" {
			return true
		}
	}
	return false
}

// parseRelationType classifies a type token as a collection or scalar
// reference. Tokens naming no class are not relations.
func parseRelationType(token string) (relationRef, bool) {
	var ref relationRef
	t := strings.TrimSpace(token)
	if strings.HasPrefix(t, "?") {
		ref.Nullable = true
		t = t[1:]
	}

	var scalar string
	var wrapper bool
	for _, m := range docblock.SplitUnion(t) {
		switch {
		case strings.EqualFold(m, "null"):
			ref.Nullable = true
		case strings.HasSuffix(m, "[]"):
			if elem := strings.TrimSuffix(m, "[]"); !ref.Collection && isClassRef(elem) {
				ref.Collection, ref.Class = true, elem
			}
		case strings.Contains(m, "<"):
			if elem, ok := genericElement(m); ok && !ref.Collection && isClassRef(elem) {
				ref.Collection, ref.Class = true, elem
			}
		case isCollectionClass(m):
			wrapper = true
		case isClassRef(m):
			if scalar == "" {
				scalar = m
			}
		}
	}

	switch {
	case ref.Collection:
		ref.Nullable = false
		return ref, true
	case scalar != "":
		ref.Class = scalar
		return ref, true
	case wrapper:
		return relationRef{Collection: true}, true
	}
	return relationRef{}, false
}

// genericElement returns the last type argument of a collection generic such
// as Collection<int, \App\Models\Tag> or array<\App\Models\Tag>.
func genericElement(m string) (string, bool) {
	i := strings.Index(m, "<")
	if i < 0 || !strings.HasSuffix(m, ">") {
		return "", false
	}
	head := m[:i]
	switch strings.ToLower(head) {
	case "array", "list", "iterable":
	default:
		if !isCollectionClass(head) {
			return "", false
		}
	}
	args := strings.Split(m[i+1:len(m)-1], ",")
	return strings.TrimSpace(args[len(args)-1]), true
}

func isCollectionClass(name string) bool {
	if !classRefPattern.MatchString(name) {
		return false
	}
	_, short := model.SplitClass(name)
	return short == "Collection"
}

func isClassRef(s string) bool {
	return classRefPattern.MatchString(s) && !pseudoTypes[strings.ToLower(s)]
}

// resolveClass qualifies a class reference written in d's documentation.
// Unqualified names are relative to d's namespace.
func resolveClass(ref string, d *model.Descriptor) string {
	if strings.HasPrefix(ref, `\`) {
		return model.NormalizeClass(ref)
	}
	switch strings.ToLower(ref) {
	case "self", "static":
		return d.Class
	}
	if d.Namespace == "" {
		return ref
	}
	return strings.ReplaceAll(d.Namespace, ".", `\`) + `\` + ref
}
