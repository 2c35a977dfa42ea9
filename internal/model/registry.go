package model

import (
	"fmt"
	"sort"
	"sync"
)

// Registry maps class identities to their registration entries and holds the
// enumerated types casts may reference. It is populated once during a
// discovery pass and only read while generating.
type Registry struct {
	mu      sync.RWMutex
	classes map[string]*Class
	enums   map[string]*Enum
}

// NewRegistry creates an empty registry.
func NewRegistry() *Registry {
	return &Registry{
		classes: make(map[string]*Class),
		enums:   make(map[string]*Enum),
	}
}

// Option configures a registered model.
type Option func(*registration)

type registration struct {
	doc    string
	marked bool
}

// WithDoc attaches the model's documentation comment.
func WithDoc(doc string) Option {
	return func(r *registration) { r.doc = doc }
}

// WithTypeScript marks the class for type generation.
func WithTypeScript() Option {
	return func(r *registration) { r.marked = true }
}

// RegisterModel registers a model class. m is only used for its dynamic
// type; the generator builds fresh zero values of that type.
func (r *Registry) RegisterModel(class string, m Model, opts ...Option) (*Descriptor, error) {
	if m == nil {
		return nil, fmt.Errorf("registering %s: nil model", class)
	}
	return r.registerModel(class, metadataFactory(m), opts...)
}

func (r *Registry) registerModel(class string, factory func() Model, opts ...Option) (*Descriptor, error) {
	var reg registration
	for _, opt := range opts {
		opt(&reg)
	}

	class = NormalizeClass(class)
	ns, name := SplitClass(class)
	d := &Descriptor{
		Class:       class,
		Namespace:   ns,
		Name:        name,
		Doc:         reg.doc,
		newInstance: factory,
	}
	err := r.add(&Class{Name: class, Kind: KindModel, TypeScript: reg.marked, Model: d})
	if err != nil {
		return nil, err
	}
	return d, nil
}

// RegisterClass registers a class that is not a model, such as a payload
// object referenced from documentation annotations.
func (r *Registry) RegisterClass(class string, marked bool) error {
	return r.add(&Class{Name: NormalizeClass(class), Kind: KindData, TypeScript: marked})
}

// RegisterShape registers a manually declared payload shape.
func (r *Registry) RegisterShape(s Shape, marked bool) error {
	s.Class = NormalizeClass(s.Class)
	return r.add(&Class{Name: s.Class, Kind: KindData, TypeScript: marked, Shape: &s})
}

// RegisterEnum registers an enumerated type with its values in declaration order.
func (r *Registry) RegisterEnum(name string, values ...string) error {
	name = NormalizeClass(name)
	if name == "" {
		return fmt.Errorf("registering enum: empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.enums[name]; exists {
		return fmt.Errorf("enum %s already registered", name)
	}
	r.enums[name] = &Enum{Name: name, Values: append([]string(nil), values...)}
	return nil
}

func (r *Registry) add(c *Class) error {
	if c.Name == "" {
		return fmt.Errorf("registering class: empty name")
	}
	r.mu.Lock()
	defer r.mu.Unlock()
	if _, exists := r.classes[c.Name]; exists {
		return fmt.Errorf("class %s already registered", c.Name)
	}
	r.classes[c.Name] = c
	return nil
}

// Class returns the registry entry for a class.
func (r *Registry) Class(name string) (*Class, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	c, ok := r.classes[NormalizeClass(name)]
	return c, ok
}

// Model returns the descriptor for a class, if the class is a model.
func (r *Registry) Model(name string) (*Descriptor, bool) {
	c, ok := r.Class(name)
	if !ok || c.Kind != KindModel || c.Model == nil {
		return nil, false
	}
	return c.Model, true
}

// Enum returns the enumerated type with the given name.
func (r *Registry) Enum(name string) (*Enum, bool) {
	r.mu.RLock()
	defer r.mu.RUnlock()
	e, ok := r.enums[NormalizeClass(name)]
	return e, ok
}

// IsMarked reports whether the class carries the type-generation marker.
func (r *Registry) IsMarked(name string) bool {
	c, ok := r.Class(name)
	return ok && c.TypeScript
}

// Marked returns every marked class, sorted by name.
func (r *Registry) Marked() []*Class {
	r.mu.RLock()
	defer r.mu.RUnlock()
	var out []*Class
	for _, c := range r.classes {
		if c.TypeScript {
			out = append(out, c)
		}
	}
	sort.Slice(out, func(i, j int) bool { return out[i].Name < out[j].Name })
	return out
}

// Len returns the number of registered classes.
func (r *Registry) Len() int {
	r.mu.RLock()
	defer r.mu.RUnlock()
	return len(r.classes)
}

// Tables returns the distinct tables backing marked models, sorted.
func (r *Registry) Tables() []string {
	seen := make(map[string]bool)
	var out []string
	for _, c := range r.Marked() {
		if c.Model == nil {
			continue
		}
		if t := c.Model.TableName(); !seen[t] {
			seen[t] = true
			out = append(out, t)
		}
	}
	sort.Strings(out)
	return out
}
