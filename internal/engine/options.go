package engine

import (
	"log/slog"

	"github.com/roach88/cooksync/internal/scene"
)

// Modes selects what a sync pass rebuilds. The four flags are independent.
type Modes struct {
	// Attributes rebuilds the asset's parameter attributes.
	Attributes bool
	// Outputs rebuilds geometry, instancer and material outputs.
	Outputs bool
	// Hidden includes invisible objects.
	Hidden bool
	// TemplatedGeos includes templated geos that are not the display geo.
	TemplatedGeos bool
}

// AllModes returns every mode enabled.
func AllModes() Modes {
	return Modes{Attributes: true, Outputs: true, Hidden: true, TemplatedGeos: true}
}

// ResyncScheduler receives the empty-cook signal. Implementations re-run
// the sync for the asset at the next idle point.
type ResyncScheduler interface {
	ScheduleResync(asset scene.Handle)
}

// Option configures an Orchestrator.
type Option func(*Orchestrator)

// WithModes sets the sync modes. Default: AllModes().
func WithModes(m Modes) Option {
	return func(o *Orchestrator) {
		o.modes = m
	}
}

// WithInstancerNode sets the default instancing policy: true for a native
// point-instancer node, false for one transform per instance. A
// "useInstancerNode" value on the asset node takes precedence.
func WithInstancerNode(use bool) Option {
	return func(o *Orchestrator) {
		o.useInstancerNode = use
	}
}

// WithTextureBaker enables texture resolution for materials. Without a
// baker, materials fall back to their diffuse color.
func WithTextureBaker(b *TextureBaker) Option {
	return func(o *Orchestrator) {
		o.textures = b
	}
}

// WithFinder replaces the depth-first instance target lookup.
func WithFinder(f scene.Finder) Option {
	return func(o *Orchestrator) {
		o.finder = f
	}
}

// WithLogger sets the logger. Default: slog.Default().
func WithLogger(l *slog.Logger) Option {
	return func(o *Orchestrator) {
		o.logger = l
	}
}

// WithResyncScheduler sets the receiver of the empty-cook signal.
func WithResyncScheduler(r ResyncScheduler) Option {
	return func(o *Orchestrator) {
		o.resync = r
	}
}

// WithRunIDs sets the run id generator. Default: UUIDv7Generator.
func WithRunIDs(gen RunIDGenerator) Option {
	return func(o *Orchestrator) {
		o.ids = gen
	}
}
