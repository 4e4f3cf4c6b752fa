package pack

import (
	"context"
	"log/slog"
	"math/rand"
)

// Placement defaults.
const (
	DefaultMinInside   = 0.3
	DefaultMaxAttempts = 10000
)

// Engine places circles into a rectangular cell by rejection sampling
// under periodic boundary conditions. All randomness flows through a
// single seeded source, so identical configuration and seed reproduce
// the exact placement sequence.
type Engine struct {
	rect        Rect
	sampler     Sampler
	rng         *rand.Rand
	minInside   float64
	maxAttempts int
}

// Option tweaks engine construction.
type Option func(*Engine)

// WithMinInside overrides the minimum contained-area fraction a
// primary circle must keep inside the cell.
func WithMinInside(f float64) Option {
	return func(e *Engine) { e.minInside = f }
}

// WithMaxAttempts overrides the per-circle attempt budget.
func WithMaxAttempts(n int) Option {
	return func(e *Engine) { e.maxAttempts = n }
}

// NewEngine validates the cell and builds an engine with its own
// random source seeded from seed.
func NewEngine(rect Rect, sampler Sampler, seed int64, opts ...Option) (*Engine, error) {
	if err := rect.Validate(); err != nil {
		return nil, err
	}
	if sampler == nil {
		return nil, &ConfigError{Field: "Sampler", Reason: "must not be nil"}
	}

	e := &Engine{
		rect:        rect,
		sampler:     sampler,
		rng:         rand.New(rand.NewSource(seed)),
		minInside:   DefaultMinInside,
		maxAttempts: DefaultMaxAttempts,
	}
	for _, opt := range opts {
		opt(e)
	}

	if e.minInside <= 0 || e.minInside > 1 {
		return nil, &ConfigError{Field: "MinInside", Reason: "must be in (0, 1]"}
	}
	if e.maxAttempts <= 0 {
		return nil, &ConfigError{Field: "MaxAttempts", Reason: "must be positive"}
	}
	return e, nil
}

// Rect returns the primary cell.
func (e *Engine) Rect() Rect {
	return e.rect
}

// Observer receives a callback after every accepted circle. placed is
// the number of primaries accepted so far, attempts the total number
// of candidates drawn.
type Observer func(placed, attempts int)

// Place packs count circles into the cell and returns the result.
//
// Each circle is drawn as a candidate (radius from the sampler, center
// uniform over the cell expanded by the radius on every side), blown
// up into its periodic images, and accepted only if every image clears
// every stored circle and the primary keeps minInside of its area in
// the cell. Accepted images are stored alongside the primary so later
// candidates are tested against them directly.
//
// An InfeasibleError is returned when a single circle burns through
// the attempt budget; ctx cancellation is checked between attempts.
func (e *Engine) Place(ctx context.Context, count int) (*Result, error) {
	return e.PlaceObserved(ctx, count, nil)
}

// PlaceObserved is Place with a per-acceptance callback, used by the
// job server to stream progress. A count of zero yields a valid empty
// packing.
func (e *Engine) PlaceObserved(ctx context.Context, count int, obs Observer) (*Result, error) {
	if count < 0 {
		return nil, &ConfigError{Field: "Count", Reason: "must not be negative"}
	}

	res := &Result{
		Rect:     e.rect,
		RectArea: e.rect.Area(),
	}

	for placed := 0; placed < count; placed++ {
		attempts := 0
		for {
			if err := ctx.Err(); err != nil {
				return nil, err
			}

			r := e.sampler.Sample(e.rng)
			cx := -r + e.rng.Float64()*(e.rect.Lx+2*r)
			cy := -r + e.rng.Float64()*(e.rect.Ly+2*r)
			cand := Circle{X: cx, Y: cy, R: r}

			attempts++
			res.Attempts++

			if attempts > e.maxAttempts {
				return nil, &InfeasibleError{
					Target:   count,
					Placed:   placed,
					Attempts: attempts,
					Radius:   r,
					CX:       cx,
					CY:       cy,
				}
			}

			images := e.rect.Images(cand)
			if !fits(images, res.Placed) || !e.rect.EnoughInside(cand, e.minInside) {
				continue
			}

			res.Placed = append(res.Placed, PlacedCircle{Circle: images[0]})
			for _, img := range images[1:] {
				res.Placed = append(res.Placed, PlacedCircle{Circle: img, Image: true})
			}
			res.CircleArea += cand.Area()

			slog.Debug("circle placed",
				"index", placed,
				"x", cx, "y", cy, "r", r,
				"images", len(images)-1,
				"attempts", attempts,
			)
			if obs != nil {
				obs(placed+1, res.Attempts)
			}
			break
		}
	}

	res.AreaFraction = res.CircleArea / res.RectArea * 100
	return res, nil
}

// fits reports whether every candidate position clears every stored
// circle. Stored images count as full obstacles.
func fits(images []Circle, placed []PlacedCircle) bool {
	for _, img := range images {
		for i := range placed {
			if img.Overlaps(placed[i].Circle) {
				return false
			}
		}
	}
	return true
}
