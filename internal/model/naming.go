package model

import (
	"strings"

	"github.com/go-openapi/inflect"
)

// SplitClass splits App\Models\User into ("App.Models", "User").
func SplitClass(class string) (namespace, name string) {
	class = NormalizeClass(class)
	i := strings.LastIndex(class, `\`)
	if i < 0 {
		return "", class
	}
	return strings.ReplaceAll(class[:i], `\`, "."), class[i+1:]
}

// DefaultTable returns the conventional table name for a model short name:
// snake case, pluralized (BlogPost -> blog_posts).
func DefaultTable(name string) string {
	return inflect.Pluralize(inflect.Underscore(name))
}
