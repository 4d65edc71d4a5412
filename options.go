package spscring

// ringOptions holds resolved configuration for a Ring.
type ringOptions struct {
	logger Logger
}

// RingOption configures a Ring at construction.
type RingOption interface {
	applyRing(*ringOptions)
}

type ringOptionFunc func(*ringOptions)

func (f ringOptionFunc) applyRing(o *ringOptions) { f(o) }

// WithLogger sets the [Logger] a Ring reports contract violations and
// allocator diagnostics through. The default is [NoOpLogger].
func WithLogger(logger Logger) RingOption {
	return ringOptionFunc(func(o *ringOptions) {
		if logger != nil {
			o.logger = logger
		}
	})
}

func resolveRingOptions(opts []RingOption) *ringOptions {
	cfg := &ringOptions{
		logger: NewNoOpLogger(),
	}
	for _, opt := range opts {
		if opt == nil {
			continue
		}
		opt.applyRing(cfg)
	}
	return cfg
}
