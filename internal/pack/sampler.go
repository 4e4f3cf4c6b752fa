package pack

import "math/rand"

// Supported radius distribution identifiers.
const (
	DistFixed    = "fixed"
	DistUniform  = "uniform"
	DistGaussian = "gaussian"
)

// DefaultMinRadius is the lower radius bound for randomized
// distributions.
const DefaultMinRadius = 0.1

// Sampler draws one candidate radius per placement attempt. The
// random source is passed in so the engine owns all randomness.
type Sampler interface {
	Sample(rng *rand.Rand) float64
}

// SamplerSpec selects and parameterizes a radius distribution.
// Mean and StdDev apply to the gaussian distribution only and are
// derived from Min/Max when left zero.
type SamplerSpec struct {
	Distribution string  `json:"distribution"`
	Radius       float64 `json:"radius,omitempty"` // fixed
	Min          float64 `json:"min,omitempty"`    // uniform, gaussian
	Max          float64 `json:"max,omitempty"`    // uniform, gaussian
	Mean         float64 `json:"mean,omitempty"`
	StdDev       float64 `json:"stdDev,omitempty"`
}

// NewSampler validates the spec and builds the sampler. Unknown
// distribution identifiers and non-positive bounds fail here, not at
// the first draw.
func NewSampler(spec SamplerSpec) (Sampler, error) {
	switch spec.Distribution {
	case DistFixed:
		if spec.Radius <= 0 {
			return nil, &ConfigError{Field: "Radius", Reason: "must be positive"}
		}
		return fixedSampler{r: spec.Radius}, nil

	case DistUniform:
		min, max, err := radiusBounds(spec)
		if err != nil {
			return nil, err
		}
		return uniformSampler{min: min, max: max}, nil

	case DistGaussian:
		min, max, err := radiusBounds(spec)
		if err != nil {
			return nil, err
		}
		mean, std := spec.Mean, spec.StdDev
		if mean == 0 {
			mean = (max + min) / 2
		}
		if std == 0 {
			std = (max - min) / 4
		}
		if std <= 0 {
			return nil, &ConfigError{Field: "StdDev", Reason: "must be positive"}
		}
		return gaussSampler{min: min, max: max, mean: mean, std: std}, nil

	default:
		return nil, &ConfigError{Field: "Distribution", Reason: "unsupported value " + spec.Distribution}
	}
}

func radiusBounds(spec SamplerSpec) (min, max float64, err error) {
	min = spec.Min
	if min == 0 {
		min = DefaultMinRadius
	}
	if min <= 0 {
		return 0, 0, &ConfigError{Field: "Min", Reason: "must be positive"}
	}
	if spec.Max <= min {
		return 0, 0, &ConfigError{Field: "Max", Reason: "must exceed the minimum radius"}
	}
	return min, spec.Max, nil
}

type fixedSampler struct {
	r float64
}

func (s fixedSampler) Sample(*rand.Rand) float64 {
	return s.r
}

type uniformSampler struct {
	min, max float64
}

func (s uniformSampler) Sample(rng *rand.Rand) float64 {
	return s.min + rng.Float64()*(s.max-s.min)
}

type gaussSampler struct {
	min, max  float64
	mean, std float64
}

// Sample draws from the normal distribution and resamples out-of-range
// values. The draw cap keeps a badly overridden mean/std from spinning
// forever; past it the draw is clamped into range.
func (s gaussSampler) Sample(rng *rand.Rand) float64 {
	const maxDraws = 1000
	for i := 0; i < maxDraws; i++ {
		v := rng.NormFloat64()*s.std + s.mean
		if v >= s.min && v <= s.max {
			return v
		}
	}
	v := rng.NormFloat64()*s.std + s.mean
	if v < s.min {
		return s.min
	}
	if v > s.max {
		return s.max
	}
	return v
}
