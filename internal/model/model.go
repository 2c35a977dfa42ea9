// Package model holds the class registry the generator reads from: model
// descriptors, enumerated types, manually declared payload shapes and the
// TypeScript registration marker.
package model

import (
	"reflect"
	"strings"
)

// Model exposes the serialization metadata of a data-model class. Methods
// must only return static metadata: they are called on zero values built
// without running any constructor logic.
type Model interface {
	// Table returns the backing table name, or "" for the default name.
	Table() string
	// Hidden returns the field names excluded from serialization.
	Hidden() []string
	// Casts maps field names to cast keywords or enum class names.
	Casts() map[string]string
	// Appends returns the computed property names, in serialization order.
	Appends() []string
}

// Kind distinguishes model classes from other registered classes.
type Kind string

const (
	KindModel Kind = "model"
	KindData  Kind = "data"
)

// Descriptor identifies one data-model class.
type Descriptor struct {
	Class     string // fully-qualified, e.g. App\Models\User
	Namespace string // dot path, e.g. App.Models
	Name      string // short name, e.g. User
	Doc       string // documentation comment, may be empty

	newInstance func() Model
}

// Instance returns a metadata-only instance of the model.
func (d *Descriptor) Instance() Model {
	return d.newInstance()
}

// TableName returns the model's declared table, or the conventional name
// derived from the class when none is declared.
func (d *Descriptor) TableName() string {
	if t := d.Instance().Table(); t != "" {
		return t
	}
	return DefaultTable(d.Name)
}

// OutputName returns the namespaced TypeScript name of the model.
func (d *Descriptor) OutputName() string {
	return qualify(d.Namespace, d.Name)
}

// Class is one entry of the registry.
type Class struct {
	Name       string
	Kind       Kind
	TypeScript bool // registration marker

	Model *Descriptor // set only for KindModel
	Shape *Shape      // set only for manually declared shapes
}

// OutputName returns the namespaced TypeScript name of the class.
func (c *Class) OutputName() string {
	ns, name := SplitClass(c.Name)
	return qualify(ns, name)
}

// Enum is an enumerated type with a fixed, ordered set of literal values.
type Enum struct {
	Name   string   `yaml:"name"`
	Values []string `yaml:"values"`
}

// Shape is a payload type declared as a flat field list.
type Shape struct {
	Class  string       `yaml:"class"`
	Fields []ShapeField `yaml:"fields"`
}

// ShapeField is one member of a Shape. Type is emitted verbatim.
type ShapeField struct {
	Name     string `yaml:"name"`
	Type     string `yaml:"type"`
	Optional bool   `yaml:"optional,omitempty"`
	Nullable bool   `yaml:"nullable,omitempty"`
}

// Cast associates a field with a cast keyword or an enumerated type.
// Enum is non-nil only when Type names a registered enum.
type Cast struct {
	Field string
	Type  string
	Enum  []string
}

// metadataFactory returns a constructor for zero values of m's dynamic type.
func metadataFactory(m Model) func() Model {
	typ := reflect.TypeOf(m)
	if typ.Kind() == reflect.Pointer {
		elem := typ.Elem()
		return func() Model {
			return reflect.New(elem).Interface().(Model)
		}
	}
	return func() Model {
		return reflect.New(typ).Elem().Interface().(Model)
	}
}

func qualify(ns, name string) string {
	if ns == "" {
		return name
	}
	return ns + "." + name
}

// NormalizeClass strips the leading namespace separator from a class reference.
func NormalizeClass(class string) string {
	return strings.TrimPrefix(strings.TrimSpace(class), `\`)
}
