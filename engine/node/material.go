package node

import "sync/atomic"

type material struct {
	color       [4]float32
	emissive    [3]float32
	doubleSided bool
	highlighted atomic.Bool
}

// Material describes how a Node's shape is shaded: a solid base color and an emissive
// color that is only applied while the material is highlighted.
type Material interface {
	// Color returns the RGBA base color.
	//
	// Returns:
	//   - [4]float32: the base color
	Color() [4]float32

	// EmissiveColor returns the self-illumination color applied while highlighted.
	//
	// Returns:
	//   - [3]float32: the emissive color
	EmissiveColor() [3]float32

	// DoubleSided reports whether both faces are drawn and hit-tested.
	//
	// Returns:
	//   - bool: true if double-sided
	DoubleSided() bool

	// Highlighted reports whether the emissive highlight is on.
	//
	// Returns:
	//   - bool: true if highlighted
	Highlighted() bool

	// SetHighlighted turns the emissive highlight on or off.
	//
	// Parameters:
	//   - on: true to turn the highlight on
	SetHighlighted(on bool)
}

var _ Material = &material{}

// MaterialBuilderOption is a functional option for configuring a Material during construction.
type MaterialBuilderOption func(*material)

// NewMaterial creates a single-sided opaque white Material configured with the given options.
//
// Parameters:
//   - options: functional options to configure the material
//
// Returns:
//   - Material: the newly created material
func NewMaterial(options ...MaterialBuilderOption) Material {
	m := &material{
		color:    [4]float32{1, 1, 1, 1},
		emissive: [3]float32{1, 1, 1},
	}
	for _, option := range options {
		option(m)
	}
	return m
}

// WithColor sets the RGBA base color.
//
// Parameters:
//   - r, g, b, a: color components in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: functional option to set the color
func WithColor(r, g, b, a float32) MaterialBuilderOption {
	return func(m *material) {
		m.color = [4]float32{r, g, b, a}
	}
}

// WithHexColor sets an opaque base color from a 0xRRGGBB value.
//
// Parameters:
//   - hex: the packed color
//
// Returns:
//   - MaterialBuilderOption: functional option to set the color
func WithHexColor(hex uint32) MaterialBuilderOption {
	return func(m *material) {
		m.color = [4]float32{
			float32((hex>>16)&0xff) / 255,
			float32((hex>>8)&0xff) / 255,
			float32(hex&0xff) / 255,
			1,
		}
	}
}

// WithEmissive sets the emissive color applied while highlighted.
//
// Parameters:
//   - r, g, b: color components in [0, 1]
//
// Returns:
//   - MaterialBuilderOption: functional option to set the emissive color
func WithEmissive(r, g, b float32) MaterialBuilderOption {
	return func(m *material) {
		m.emissive = [3]float32{r, g, b}
	}
}

// WithDoubleSided marks the material as double-sided.
//
// Parameters:
//   - doubleSided: true to draw and hit-test both faces
//
// Returns:
//   - MaterialBuilderOption: functional option to set the sidedness
func WithDoubleSided(doubleSided bool) MaterialBuilderOption {
	return func(m *material) {
		m.doubleSided = doubleSided
	}
}

func (m *material) Color() [4]float32 {
	return m.color
}

func (m *material) EmissiveColor() [3]float32 {
	return m.emissive
}

func (m *material) DoubleSided() bool {
	return m.doubleSided
}

func (m *material) Highlighted() bool {
	return m.highlighted.Load()
}

func (m *material) SetHighlighted(on bool) {
	m.highlighted.Store(on)
}
