package mapping

import (
	"errors"
	"fmt"
	"slices"

	"mapping-resolver/internal/naming"
	"mapping-resolver/internal/plan"
	"mapping-resolver/internal/visitor"
)

// TransformFactory builds an insertion transform from its declaration.
type TransformFactory func(def TransformDef) (visitor.Transform, error)

// HookFactory builds a post-merge hook from its declaration.
type HookFactory func(def HookDef) (plan.Hook, error)

// TransformRegistry maps transform and hook kinds to their factories.
type TransformRegistry struct {
	transforms map[string]TransformFactory
	hooks      map[string]HookFactory
}

// NewTransformRegistry creates a registry holding the built-in kinds.
func NewTransformRegistry() *TransformRegistry {
	r := &TransformRegistry{
		transforms: make(map[string]TransformFactory),
		hooks:      make(map[string]HookFactory),
	}

	r.Add("copy-class-names", copyClassNames)
	r.Add("replace-class-names", replaceClassNames)
	r.Add("drop-namespaces", dropNamespaces)
	r.Add("keep-namespaces", keepNamespaces)
	r.Add("classes-only", func(TransformDef) (visitor.Transform, error) {
		return visitor.ClassesOnly{}, nil
	})

	r.AddHook("renest", renestHook)
	r.AddHook("copy-class-names", copyClassNamesHook)

	return r
}

// Add registers a transform kind, replacing any previous factory.
func (r *TransformRegistry) Add(kind string, f TransformFactory) {
	r.transforms[kind] = f
}

// AddHook registers a hook kind, replacing any previous factory.
func (r *TransformRegistry) AddHook(kind string, f HookFactory) {
	r.hooks[kind] = f
}

// Has returns true if a transform kind exists.
func (r *TransformRegistry) Has(kind string) bool {
	_, exists := r.transforms[kind]
	return exists
}

// HasHook returns true if a hook kind exists.
func (r *TransformRegistry) HasHook(kind string) bool {
	_, exists := r.hooks[kind]
	return exists
}

// Kinds returns all transform kinds, sorted.
func (r *TransformRegistry) Kinds() []string {
	return sortedKeys(r.transforms)
}

// HookKinds returns all hook kinds, sorted.
func (r *TransformRegistry) HookKinds() []string {
	return sortedKeys(r.hooks)
}

// Transform builds the transform a declaration names.
func (r *TransformRegistry) Transform(def TransformDef) (visitor.Transform, error) {
	f, ok := r.transforms[def.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown transform kind %q", def.Kind)
	}

	t, err := f(def)
	if err != nil {
		return nil, fmt.Errorf("transform %s: %w", def.Kind, err)
	}

	return t, nil
}

// Hook builds the hook a declaration names.
func (r *TransformRegistry) Hook(def HookDef) (plan.Hook, error) {
	f, ok := r.hooks[def.Kind]
	if !ok {
		return nil, fmt.Errorf("unknown hook kind %q", def.Kind)
	}

	h, err := f(def)
	if err != nil {
		return nil, fmt.Errorf("hook %s: %w", def.Kind, err)
	}

	return h, nil
}

func sortedKeys[V any](m map[string]V) []string {
	keys := make([]string, 0, len(m))
	for k := range m {
		keys = append(keys, k)
	}

	slices.Sort(keys)

	return keys
}

var (
	errMissingFrom       = errors.New("from is required")
	errMissingTo         = errors.New("to is required")
	errMissingNamespace  = errors.New("namespace is required")
	errMissingNamespaces = errors.New("namespaces is required")
	errMissingOld        = errors.New("old is required")
)

func copyClassNames(def TransformDef) (visitor.Transform, error) {
	switch {
	case def.From == "":
		return nil, errMissingFrom
	case def.To == "":
		return nil, errMissingTo
	}

	return visitor.CopyClassNames{From: naming.Namespace(def.From), To: naming.Namespace(def.To)}, nil
}

func replaceClassNames(def TransformDef) (visitor.Transform, error) {
	switch {
	case def.Namespace == "":
		return nil, errMissingNamespace
	case def.Old == "":
		return nil, errMissingOld
	}

	return visitor.ReplaceClassNames{Namespace: naming.Namespace(def.Namespace), Old: def.Old, New: def.New}, nil
}

func dropNamespaces(def TransformDef) (visitor.Transform, error) {
	if def.Namespaces.IsEmpty() {
		return nil, errMissingNamespaces
	}

	return visitor.DropNamespaces{Namespaces: def.Namespaces.Namespaces()}, nil
}

func keepNamespaces(def TransformDef) (visitor.Transform, error) {
	if def.Namespaces.IsEmpty() {
		return nil, errMissingNamespaces
	}

	return visitor.KeepNamespaces{Namespaces: def.Namespaces.Namespaces()}, nil
}

func renestHook(def HookDef) (plan.Hook, error) {
	switch {
	case def.From == "":
		return nil, errMissingFrom
	case def.To.IsEmpty():
		return nil, errMissingTo
	}

	return plan.Renest{From: naming.Namespace(def.From), To: def.To.Namespaces()}, nil
}

func copyClassNamesHook(def HookDef) (plan.Hook, error) {
	switch {
	case def.From == "":
		return nil, errMissingFrom
	case len(def.To) != 1:
		return nil, errors.New("to must name exactly one namespace")
	}

	return plan.CopyClassNames{From: naming.Namespace(def.From), To: naming.Namespace(def.To[0])}, nil
}
