package generator

// Config drives the seed data generator.
type Config struct {
	NumLawyers int
	// MaxTestimonials caps the testimonials generated per lawyer.
	MaxTestimonials   int
	UnavailableChance float64
	EnglishChance     float64
	Seed              int64
}

// DefaultConfig returns settings sized for a demo directory.
func DefaultConfig() Config {
	return Config{
		NumLawyers:        200,
		MaxTestimonials:   12,
		UnavailableChance: 0.15,
		EnglishChance:     0.4,
		Seed:              42,
	}
}
