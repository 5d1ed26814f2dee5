package chat

import "math/rand/v2"

// Decorator wraps replies in a randomly chosen prefix and suffix.
// Each draw is independent and uniform, with replacement.
type Decorator struct {
	prefixes []string
	suffixes []string
	intn     func(n int) int
}

// DecoratorOption configures a Decorator
type DecoratorOption func(*Decorator)

// WithIntn replaces the random source; intn must return a value in [0, n)
func WithIntn(intn func(n int) int) DecoratorOption {
	return func(d *Decorator) {
		d.intn = intn
	}
}

// NewDecorator creates a decorator over copies of the given sets
func NewDecorator(prefixes, suffixes []string, opts ...DecoratorOption) *Decorator {
	d := &Decorator{
		prefixes: append([]string(nil), prefixes...),
		suffixes: append([]string(nil), suffixes...),
		intn:     rand.IntN,
	}
	for _, opt := range opts {
		opt(d)
	}
	return d
}

// Decorate returns prefix + reply + suffix
func (d *Decorator) Decorate(reply string) string {
	return d.pick(d.prefixes) + reply + d.pick(d.suffixes)
}

// Prefixes returns a copy of the prefix set
func (d *Decorator) Prefixes() []string {
	return append([]string(nil), d.prefixes...)
}

// Suffixes returns a copy of the suffix set
func (d *Decorator) Suffixes() []string {
	return append([]string(nil), d.suffixes...)
}

// pick returns "" for an empty set
func (d *Decorator) pick(set []string) string {
	if len(set) == 0 {
		return ""
	}
	return set[d.intn(len(set))]
}
