package postprocessors

import (
	"errors"
	"fmt"
	"maps"
	"slices"

	"github.com/custodia-labs/planroom/internal/core/ports/driven"
)

// ErrUnknownStage is returned when a pipeline names a stage nobody registered.
var ErrUnknownStage = errors.New("unknown ingestion stage")

// BuilderFunc creates a stage from its settings block.
type BuilderFunc func(cfg map[string]any) (driven.PostProcessor, error)

// Registry holds the stages an ingestion pipeline can be assembled from.
type Registry struct {
	builders map[string]BuilderFunc
}

// NewRegistry returns an empty registry.
func NewRegistry() *Registry {
	return &Registry{builders: map[string]BuilderFunc{}}
}

// Register binds a stage name to its builder. A later call for the same
// name replaces the earlier builder.
func (r *Registry) Register(name string, build BuilderFunc) {
	r.builders[name] = build
}

// Build constructs the named stage.
func (r *Registry) Build(name string, cfg map[string]any) (driven.PostProcessor, error) {
	build, ok := r.builders[name]
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownStage, name)
	}
	return build(cfg)
}

// Has reports whether name is registered.
func (r *Registry) Has(name string) bool {
	return r.builders[name] != nil
}

// Names lists registered stages alphabetically.
func (r *Registry) Names() []string {
	return slices.Sorted(maps.Keys(r.builders))
}
