package input

import (
	"sync"

	"github.com/Carmen-Shannon/oxy-xr/common"
)

type adapterImpl struct {
	mu *sync.Mutex

	device RawDevice

	onButtonPressed []func(index int)
	onAxesChanged   []func(x, y float32)
}

// Adapter translates the polled state of one RawDevice into discrete per-frame events.
//
// Button events are level-triggered: ButtonPressed fires for every button that is down at the
// time of Update, so a held button fires once per frame until it is released. Axis events fire
// whenever either thumbstick axis (common.AxisThumbstickX / common.AxisThumbstickY) is non-zero.
// The adapter keeps no state between frames and never touches the scene.
type Adapter interface {
	// Device returns the wrapped device.
	//
	// Returns:
	//   - RawDevice: the device
	Device() RawDevice

	// OnButtonPressed registers a listener for button-pressed events.
	//
	// Parameters:
	//   - callback: function receiving the pressed button index
	OnButtonPressed(callback func(index int))

	// OnAxesChanged registers a listener for thumbstick events.
	//
	// Parameters:
	//   - callback: function receiving the thumbstick x and y values
	OnAxesChanged(callback func(x, y float32))

	// Update polls the device once and emits events for its current state.
	Update()
}

var _ Adapter = &adapterImpl{}

// NewAdapter creates an Adapter around device.
// Panics if device is nil.
//
// Parameters:
//   - device: the device to poll
//
// Returns:
//   - Adapter: the newly created adapter
func NewAdapter(device RawDevice) Adapter {
	if device == nil {
		panic("input: device is required")
	}
	return &adapterImpl{
		mu:     &sync.Mutex{},
		device: device,
	}
}

func (a *adapterImpl) Device() RawDevice {
	return a.device
}

func (a *adapterImpl) OnButtonPressed(callback func(index int)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onButtonPressed = append(a.onButtonPressed, callback)
}

func (a *adapterImpl) OnAxesChanged(callback func(x, y float32)) {
	a.mu.Lock()
	defer a.mu.Unlock()
	a.onAxesChanged = append(a.onAxesChanged, callback)
}

func (a *adapterImpl) Update() {
	a.mu.Lock()
	buttonListeners := a.onButtonPressed
	axesListeners := a.onAxesChanged
	a.mu.Unlock()

	for i, pressed := range a.device.Buttons() {
		if !pressed {
			continue
		}
		for _, fn := range buttonListeners {
			fn(i)
		}
	}

	axes := a.device.Axes()
	if len(axes) <= common.AxisThumbstickY {
		return
	}
	x, y := axes[common.AxisThumbstickX], axes[common.AxisThumbstickY]
	if x == 0 && y == 0 {
		return
	}
	for _, fn := range axesListeners {
		fn(x, y)
	}
}
