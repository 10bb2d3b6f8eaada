// Package registry holds the static catalog of producer fields and
// decides which field to collect next. Conditional requirements are
// declarative predicates over the collected values, so new business
// types add data, not control flow.
package registry

import (
	"sort"

	id "onboard/pkg/domain"
)

// Predicate decides whether a conditional field is currently required,
// given the values collected so far.
type Predicate func(collected map[string]string) bool

// FieldSpec describes one producer field. Defined once at process start
// and never mutated.
type FieldSpec struct {
	Name           string
	Kind           id.FieldKind
	AlwaysRequired bool
	// Condition applies only when AlwaysRequired is false; nil means
	// never required (collected opportunistically).
	Condition Predicate
	// OrderPriority orders collection; lower collects first. Ties break
	// by declaration order.
	OrderPriority int
}

// Required reports whether the field is currently required.
func (f FieldSpec) Required(collected map[string]string) bool {
	if f.AlwaysRequired {
		return true
	}
	if f.Condition != nil {
		return f.Condition(collected)
	}
	return false
}

// Registry is an ordered, immutable field catalog.
type Registry struct {
	specs []FieldSpec
	index map[string]int
}

// New builds a registry from specs, preserving declaration order.
func New(specs []FieldSpec) *Registry {
	r := &Registry{specs: specs, index: make(map[string]int, len(specs))}
	for i, spec := range specs {
		r.index[spec.Name] = i
	}
	return r
}

// Specs returns the catalog in collection-priority order (declaration
// order on ties).
func (r *Registry) Specs() []FieldSpec {
	out := make([]FieldSpec, len(r.specs))
	copy(out, r.specs)
	sort.SliceStable(out, func(i, j int) bool {
		return out[i].OrderPriority < out[j].OrderPriority
	})
	return out
}

// Lookup returns the spec for a field name.
func (r *Registry) Lookup(name string) (FieldSpec, bool) {
	i, ok := r.index[name]
	if !ok {
		return FieldSpec{}, false
	}
	return r.specs[i], true
}

// NextRequiredField returns the lowest-priority required field not yet
// collected, or nil when collection is complete. Side-effect free.
func (r *Registry) NextRequiredField(collected map[string]string) *FieldSpec {
	var best *FieldSpec
	for i := range r.specs {
		spec := &r.specs[i]
		if _, ok := collected[spec.Name]; ok {
			continue
		}
		if !spec.Required(collected) {
			continue
		}
		if best == nil || spec.OrderPriority < best.OrderPriority {
			best = spec
		}
	}
	if best == nil {
		return nil
	}
	out := *best
	return &out
}

// RequiredFields returns the closure of currently required fields:
// always-required plus conditionals whose predicate holds for the
// collected values.
func (r *Registry) RequiredFields(collected map[string]string) []FieldSpec {
	var out []FieldSpec
	for _, spec := range r.specs {
		if spec.Required(collected) {
			out = append(out, spec)
		}
	}
	return out
}

// MissingFields returns names of required fields not yet collected, in
// collection-priority order (declaration order on ties).
func (r *Registry) MissingFields(collected map[string]string) []string {
	var missing []FieldSpec
	for _, spec := range r.RequiredFields(collected) {
		if _, ok := collected[spec.Name]; !ok {
			missing = append(missing, spec)
		}
	}
	sort.SliceStable(missing, func(i, j int) bool {
		return missing[i].OrderPriority < missing[j].OrderPriority
	})
	out := make([]string, len(missing))
	for i, spec := range missing {
		out[i] = spec.Name
	}
	return out
}

// Completeness returns the percentage of currently required fields
// present, in [0,100]. An empty requirement closure counts as complete.
func (r *Registry) Completeness(collected map[string]string) float64 {
	required := r.RequiredFields(collected)
	if len(required) == 0 {
		return 100
	}
	present := 0
	for _, spec := range required {
		if _, ok := collected[spec.Name]; ok {
			present++
		}
	}
	return 100 * float64(present) / float64(len(required))
}
