package panel

// config holds the tunable parts of the panel. Placement is fixed.
type config struct {
	color uint32
	scale float32
}

// BuilderOption is a functional option for configuring the panel built by Build.
type BuilderOption func(*config)

// WithColor sets the base color of every surface.
//
// Parameters:
//   - hex: the packed 0xRRGGBB color
//
// Returns:
//   - BuilderOption: functional option to set the color
func WithColor(hex uint32) BuilderOption {
	return func(c *config) {
		c.color = hex
	}
}

// WithSurfaceScale sets the uniform scale applied to every surface outline.
//
// Parameters:
//   - s: the scale factor
//
// Returns:
//   - BuilderOption: functional option to set the surface scale
func WithSurfaceScale(s float32) BuilderOption {
	return func(c *config) {
		if s > 0 {
			c.scale = s
		}
	}
}
