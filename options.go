package sprite

// Option configures a Batcher during creation.
//
// Example:
//
//	// Default configuration
//	b := sprite.New(surface)
//
//	// Smaller buffer, primary shader only
//	b := sprite.New(surface, sprite.WithCapacity(256), sprite.WithSingleShader())
type Option func(*config)

// config holds optional configuration for Batcher creation.
type config struct {
	capacity     int
	singleShader bool
}

// defaultConfig returns the default Batcher options.
func defaultConfig() config {
	return config{capacity: DefaultCapacity}
}

// WithCapacity sets the buffer capacity in triangle slots (two slots per
// quad). Values below 4 are ignored: the flush-early overflow check needs
// room for at least one quad plus headroom.
func WithCapacity(slots int) Option {
	return func(c *config) {
		if slots >= 4 {
			c.capacity = slots
		}
	}
}

// WithSingleShader forces every batch through the primary shader,
// ignoring filter kinds. This is a simplified low-power mode resolved
// once at construction, not re-checked per flush.
func WithSingleShader() Option {
	return func(c *config) {
		c.singleShader = true
	}
}
