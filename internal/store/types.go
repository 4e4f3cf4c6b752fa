package store

import (
	"time"

	"github.com/cwbudde/rvegen/internal/pack"
)

// RunConfig holds the full configuration of a generation run. It is
// the persisted counterpart of the engine/sampler parameters so a
// stored run can be replayed bit-for-bit from its seed.
type RunConfig struct {
	Lx           float64 `json:"lx" yaml:"lx"`
	Ly           float64 `json:"ly" yaml:"ly"`
	Circles      int     `json:"circles" yaml:"circles"`
	Distribution string  `json:"distribution" yaml:"distribution"`         // fixed, uniform, gaussian
	Radius       float64 `json:"radius,omitempty" yaml:"radius"`           // fixed distribution
	MinRadius    float64 `json:"minRadius,omitempty" yaml:"min_radius"`    // randomized distributions
	MaxRadius    float64 `json:"maxRadius,omitempty" yaml:"max_radius"`
	MinInside    float64 `json:"minInside,omitempty" yaml:"min_inside"`
	MeshSize     float64 `json:"meshSize,omitempty" yaml:"mesh_size"`
	Seed         int64   `json:"seed" yaml:"seed"`
	MaxAttempts  int     `json:"maxAttempts,omitempty" yaml:"max_attempts"`
}

// ApplyDefaults fills unset optional fields.
func (c *RunConfig) ApplyDefaults() {
	if c.Distribution == "" {
		c.Distribution = pack.DistFixed
	}
	if c.MinInside == 0 {
		c.MinInside = pack.DefaultMinInside
	}
	if c.MaxAttempts == 0 {
		c.MaxAttempts = pack.DefaultMaxAttempts
	}
}

// Validate checks the configuration eagerly, before any placement
// attempt runs.
func (c RunConfig) Validate() error {
	if err := c.Rect().Validate(); err != nil {
		return err
	}
	if c.Circles <= 0 {
		return &ValidationError{Field: "Circles", Reason: "must be positive"}
	}
	if _, err := pack.NewSampler(c.SamplerSpec()); err != nil {
		return err
	}
	return nil
}

// Rect returns the primary cell.
func (c RunConfig) Rect() pack.Rect {
	return pack.Rect{Lx: c.Lx, Ly: c.Ly}
}

// SamplerSpec maps the configuration onto a radius distribution spec.
func (c RunConfig) SamplerSpec() pack.SamplerSpec {
	return pack.SamplerSpec{
		Distribution: c.Distribution,
		Radius:       c.Radius,
		Min:          c.MinRadius,
		Max:          c.MaxRadius,
	}
}

// Engine builds the seeded packing engine for this configuration.
func (c RunConfig) Engine() (*pack.Engine, error) {
	cfg := c
	cfg.ApplyDefaults()

	sampler, err := pack.NewSampler(cfg.SamplerSpec())
	if err != nil {
		return nil, err
	}
	return pack.NewEngine(cfg.Rect(), sampler, cfg.Seed,
		pack.WithMinInside(cfg.MinInside),
		pack.WithMaxAttempts(cfg.MaxAttempts),
	)
}

// RunRecord is a persisted generation run.
type RunRecord struct {
	// ID is the unique identifier for this run.
	ID string `json:"id"`

	// Config reproduces the run given the same seed.
	Config RunConfig `json:"config"`

	// Placed lists primaries and periodic images in placement order.
	Placed []pack.PlacedCircle `json:"placed"`

	// CircleArea sums primary disk areas only.
	CircleArea float64 `json:"circleArea"`

	// RectArea is the cell area.
	RectArea float64 `json:"rectArea"`

	// AreaFraction is the percentage coverage of the cell.
	AreaFraction float64 `json:"areaFraction"`

	// Attempts counts every candidate drawn during placement.
	Attempts int `json:"attempts"`

	// Timestamp records when the run completed.
	Timestamp time.Time `json:"timestamp"`
}

// NewRunRecord converts a finished packing into a persistable record.
func NewRunRecord(id string, config RunConfig, res *pack.Result) *RunRecord {
	return &RunRecord{
		ID:           id,
		Config:       config,
		Placed:       res.Placed,
		CircleArea:   res.CircleArea,
		RectArea:     res.RectArea,
		AreaFraction: res.AreaFraction,
		Attempts:     res.Attempts,
		Timestamp:    time.Now(),
	}
}

// Validate checks the record before persisting it.
func (r *RunRecord) Validate() error {
	if r.ID == "" {
		return &ValidationError{Field: "ID", Reason: "cannot be empty"}
	}
	if len(r.Placed) == 0 {
		return &ValidationError{Field: "Placed", Reason: "cannot be empty"}
	}
	if r.RectArea <= 0 {
		return &ValidationError{Field: "RectArea", Reason: "must be positive"}
	}
	if r.CircleArea < 0 {
		return &ValidationError{Field: "CircleArea", Reason: "cannot be negative"}
	}
	if r.Timestamp.IsZero() {
		return &ValidationError{Field: "Timestamp", Reason: "cannot be zero"}
	}
	primaries := 0
	for _, p := range r.Placed {
		if !p.Image {
			primaries++
		}
	}
	if primaries != r.Config.Circles {
		return &ValidationError{Field: "Placed", Reason: "primary count does not match configured circle count"}
	}
	return nil
}

// Primaries returns the primary circles of the run.
func (r *RunRecord) Primaries() []pack.Circle {
	var out []pack.Circle
	for _, p := range r.Placed {
		if !p.Image {
			out = append(out, p.Circle)
		}
	}
	return out
}

// Circles returns every stored circle of the run.
func (r *RunRecord) Circles() []pack.Circle {
	out := make([]pack.Circle, len(r.Placed))
	for i, p := range r.Placed {
		out[i] = p.Circle
	}
	return out
}

// MeshInfo is the metadata record written next to the mesh input,
// consumed by the downstream solver pipeline. The distribution field
// carries the area-fraction percentage.
type MeshInfo struct {
	ID           string  `json:"id"`
	Circles      int     `json:"circles"`
	Distribution float64 `json:"distribution"`
}

// MeshInfo derives the companion metadata for this run.
func (r *RunRecord) MeshInfo() MeshInfo {
	return MeshInfo{
		ID:           r.ID,
		Circles:      r.Config.Circles,
		Distribution: r.AreaFraction,
	}
}

// RunInfo is run metadata without the circle data, for listings.
type RunInfo struct {
	ID           string    `json:"id"`
	Timestamp    time.Time `json:"timestamp"`
	Circles      int       `json:"circles"`
	Distribution string    `json:"distribution"`
	AreaFraction float64   `json:"areaFraction"`
}

// ToInfo converts a full record to its listing metadata.
func (r *RunRecord) ToInfo() RunInfo {
	return RunInfo{
		ID:           r.ID,
		Timestamp:    r.Timestamp,
		Circles:      r.Config.Circles,
		Distribution: r.Config.Distribution,
		AreaFraction: r.AreaFraction,
	}
}
