package engine

import (
	"context"
	"errors"
	"sort"
	"sync"
	"sync/atomic"
	"time"

	"github.com/Carmen-Shannon/oxy-xr/engine/loop"
	"github.com/Carmen-Shannon/oxy-xr/engine/profiler"
	"github.com/Carmen-Shannon/oxy-xr/engine/renderer"
	"github.com/Carmen-Shannon/oxy-xr/engine/scene"
	"github.com/Carmen-Shannon/oxy-xr/engine/window"
	"github.com/Carmen-Shannon/oxy-xr/internal/logger"
)

// ErrStopped is returned by NextTick once the engine has quit.
var ErrStopped = errors.New("engine: stopped")

// Frame describes one iteration of the render loop.
type Frame = loop.Frame

// engine implements the Engine interface.
// Coordinates engine, render, and window threads.
type engine struct {
	mu *sync.Mutex

	tickRateChannel chan time.Duration // Channel for dynamic tick rate updates

	running atomic.Bool
	wg      sync.WaitGroup

	quitChannel chan struct{}
	quitOnce    sync.Once // Ensures quitChannel is only closed once

	window   window.Window
	renderer renderer.Renderer

	profiler         *profiler.Profiler
	profilingEnabled atomic.Bool

	engineTickRate time.Duration
	tickCallback   func(deltaTime float32)
	renderCallback func(deltaTime float32)
	frameCallback  func(Frame)

	// released after the current render iteration completes
	tickWaiters []chan struct{}
	afterTick   []func()

	scenes map[int]scene.Scene

	renderFrameLimit time.Duration // minimum frame duration; 0 = uncapped
	onDemand         bool
}

// Engine is the main entry point for the engine.
// It orchestrates the engine loop, render loop, and window management.
type Engine interface {
	// Window returns the underlying window, or nil when running headless.
	//
	// Returns:
	//   - window.Window: the window instance
	Window() window.Window

	// Renderer returns the renderer used for scenes, or nil when none is configured.
	Renderer() renderer.Renderer

	// EnableProfiler enables performance profiling output to the log.
	EnableProfiler()

	// DisableProfiler disables performance profiling output.
	DisableProfiler()

	// SetTickRate sets the engine tick rate in frames per second.
	// The tick callback will be called at this rate for logic updates.
	//
	// Parameters:
	//   - fps: target frames per second (defaults to 60 if <= 0)
	SetTickRate(fps float64)

	// SetTickCallback registers the function called each engine tick.
	//
	// Parameters:
	//   - callback: function to call at the configured tick rate, receiving the delta time in seconds
	SetTickCallback(callback func(deltaTime float32))

	// SetRenderCallback registers the function called after each render frame.
	//
	// Parameters:
	//   - callback: function to call each render frame, receiving the delta time in seconds
	SetRenderCallback(callback func(deltaTime float32))

	// SetFrameCallback hands the render loop to callback. While set, the engine stops drawing
	// scenes itself and calls callback once per frame instead; the callback is responsible for
	// rendering. Pass nil to give the loop back to the engine.
	//
	// Parameters:
	//   - callback: the per-frame function, or nil
	SetFrameCallback(callback func(Frame))

	// NextTick blocks until the render loop completes its next iteration.
	//
	// Parameters:
	//   - ctx: cancels the wait
	//
	// Returns:
	//   - error: ctx.Err() if cancelled, ErrStopped if the engine quit first
	NextTick(ctx context.Context) error

	// AfterNextTick schedules fn to run on the render goroutine once the next iteration completes.
	//
	// Parameters:
	//   - fn: the function to run
	AfterNextTick(fn func())

	// SetRenderFrameLimit sets an optional render frame rate cap in frames per second.
	// Pass 0 to uncap the render loop (default).
	//
	// Parameters:
	//   - fps: maximum render frames per second (0 = uncapped)
	SetRenderFrameLimit(fps float64)

	// AddScene registers a scene at the given z-index key.
	// Scenes are rendered in ascending key order during the render loop.
	//
	// Parameters:
	//   - key: the z-index determining render order (lower renders first)
	//   - s: the Scene to register
	AddScene(key int, s scene.Scene)

	// RemoveScene removes the scene at the given z-index key.
	//
	// Parameters:
	//   - key: the z-index of the scene to remove
	RemoveScene(key int)

	// Scene retrieves the scene registered at the given z-index key.
	// Returns nil if no scene exists at that key.
	//
	// Parameters:
	//   - key: the z-index of the scene to retrieve
	//
	// Returns:
	//   - scene.Scene: the scene at the key, or nil if not found
	Scene(key int) scene.Scene

	// Scenes returns a copy of all registered scenes keyed by z-index.
	//
	// Returns:
	//   - map[int]scene.Scene: a copy of the scenes map
	Scenes() map[int]scene.Scene

	// Run starts the engine loops and blocks until the window closes, or until Quit when
	// running headless.
	Run()

	// Quit signals all engine goroutines to stop and shuts down the engine.
	// Safe to call multiple times; subsequent calls are no-ops.
	Quit()
}

var _ Engine = &engine{}

// NewEngine creates a new Engine instance with the provided options.
//
// Parameters:
//   - options: functional options for engine configuration (profiling, tick rate, etc.)
//
// Returns:
//   - Engine: the newly created engine
func NewEngine(options ...EngineBuilderOption) Engine {
	e := &engine{
		mu:              &sync.Mutex{},
		tickRateChannel: make(chan time.Duration, 1),
		quitChannel:     make(chan struct{}),
		scenes:          make(map[int]scene.Scene),
		wg:              sync.WaitGroup{},
		profiler:        profiler.NewProfiler(),
		engineTickRate:  time.Second / 60,
	}

	for _, opt := range options {
		opt(e)
	}

	if e.window != nil {
		e.window.SetResizeCallback(func(width, height int) {
			if e.renderer != nil {
				e.renderer.Resize(width, height)
			}
			if height <= 0 {
				return
			}
			for _, s := range e.Scenes() {
				s.Camera().SetAspect(float32(width) / float32(height))
				s.QueueRender()
			}
		})
	}

	return e
}

func (e *engine) Window() window.Window {
	return e.window
}

func (e *engine) Renderer() renderer.Renderer {
	return e.renderer
}

func (e *engine) Run() {
	e.running.Store(true)
	e.handle()
	if e.window != nil {
		e.window.ProcessMessages()
		e.signalQuit()
	}
	e.wg.Wait()
	if e.renderer != nil {
		e.renderer.Release()
	}
	if e.window != nil {
		e.window.Destroy()
	}
}

// Quit signals all engine goroutines to stop and shuts down the engine.
// Safe to call multiple times; subsequent calls are no-ops due to sync.Once.
func (e *engine) Quit() {
	e.signalQuit()
	if e.window != nil {
		_ = e.window.Close()
	}
}

// signalQuit closes the quit channel to signal all goroutines to exit.
// Uses sync.Once to ensure the channel is only closed once.
func (e *engine) signalQuit() {
	e.quitOnce.Do(func() {
		e.running.Store(false)
		close(e.quitChannel)
	})
}

// handle launches the engine, render, and quit goroutines.
// Each goroutine is tracked by the engine's WaitGroup.
func (e *engine) handle() {
	e.wg.Add(3)
	go e.handleEngine()
	go e.handleRender()
	go e.handleQuit()
}

// handleEngine runs the fixed-rate engine tick loop in its own goroutine.
// Fires the tick callback at the configured tick rate and listens for dynamic rate changes
// via tickRateChannel. Exits when the quit channel is closed.
func (e *engine) handleEngine() {
	defer e.wg.Done()

	e.mu.Lock()
	rate := e.engineTickRate
	e.mu.Unlock()

	ticker := time.NewTicker(rate)
	defer ticker.Stop()

	lastTick := time.Now()

	for {
		select {
		case <-e.quitChannel:
			return
		case <-ticker.C:
			now := time.Now()
			dt := float32(now.Sub(lastTick).Seconds())
			lastTick = now

			e.mu.Lock()
			cb := e.tickCallback
			e.mu.Unlock()
			if cb != nil {
				cb(dt)
			}
		case newRate := <-e.tickRateChannel:
			ticker.Reset(newRate)
			e.mu.Lock()
			e.engineTickRate = newRate
			e.mu.Unlock()
		}
	}
}

// handleRender runs the render loop in its own goroutine. Each iteration either hands the
// frame to the frame callback or draws the active scenes, then releases tick waiters.
// Recovers from panics to avoid crashing the process and signals quit on recovery.
func (e *engine) handleRender() {
	defer e.wg.Done()
	defer func() {
		if r := recover(); r != nil {
			logger.Error("render goroutine recovered from panic", "panic", r)
			e.signalQuit()
		}
	}()

	lastRender := time.Now()
	var frameNumber uint64

	for {
		select {
		case <-e.quitChannel:
			e.releaseWaiters()
			return
		default:
			now := time.Now()
			dt := float32(now.Sub(lastRender).Seconds())
			lastRender = now
			frameNumber++
			pending := e.takePending()

			e.mu.Lock()
			frameCallback := e.frameCallback
			renderCallback := e.renderCallback
			e.mu.Unlock()

			if frameCallback != nil {
				frameCallback(Frame{Number: frameNumber, Time: now, Delta: dt})
			} else {
				e.drawScenes()
			}

			if renderCallback != nil {
				renderCallback(dt)
			}

			if e.profilingEnabled.Load() && e.profiler != nil {
				e.profiler.Tick()
			}

			pending.complete()

			if limit := e.frameLimit(); limit > 0 {
				elapsed := time.Since(lastRender)
				if remaining := limit - elapsed; remaining > 0 {
					select {
					case <-e.quitChannel:
					case <-time.After(remaining):
					}
				}
			}
		}
	}
}

// drawScenes renders every active scene in ascending z-index order.
func (e *engine) drawScenes() {
	if e.renderer == nil {
		return
	}

	scenes := e.Scenes()
	keys := make([]int, 0, len(scenes))
	for k := range scenes {
		keys = append(keys, k)
	}
	sort.Ints(keys)

	for _, k := range keys {
		s := scenes[k]
		if !s.Active() {
			continue
		}
		if queued := s.ConsumeRender(); e.onDemand && !queued {
			continue
		}
		if err := e.renderer.Render(s, s.Camera()); err != nil {
			logger.Debug("render failed", "scene", s.Name(), "err", err)
		}
	}
}

// frameLimit is the minimum frame duration. Without a renderer pacing the loop through
// presentation, the loop falls back to the tick rate.
func (e *engine) frameLimit() time.Duration {
	e.mu.Lock()
	defer e.mu.Unlock()
	if e.renderFrameLimit > 0 {
		return e.renderFrameLimit
	}
	if e.renderer == nil {
		return e.engineTickRate
	}
	return 0
}

// pendingTick holds the waiters registered before a render iteration started. They are
// released when that iteration completes, so a waiter always sees one full frame.
type pendingTick struct {
	after   []func()
	waiters []chan struct{}
}

func (e *engine) takePending() pendingTick {
	e.mu.Lock()
	defer e.mu.Unlock()
	p := pendingTick{after: e.afterTick, waiters: e.tickWaiters}
	e.afterTick = nil
	e.tickWaiters = nil
	return p
}

func (p pendingTick) complete() {
	for _, fn := range p.after {
		fn()
	}
	for _, ch := range p.waiters {
		close(ch)
	}
}

// releaseWaiters wakes every waiter on shutdown. Queued after-tick functions are dropped.
func (e *engine) releaseWaiters() {
	p := e.takePending()
	p.after = nil
	p.complete()
}

// handleQuit blocks until the quit channel is closed, then decrements the WaitGroup.
func (e *engine) handleQuit() {
	defer e.wg.Done()
	<-e.quitChannel
}

// EnableProfiler enables performance profiling output to the log.
func (e *engine) EnableProfiler() {
	e.profilingEnabled.Store(true)
}

// DisableProfiler disables performance profiling output.
func (e *engine) DisableProfiler() {
	e.profilingEnabled.Store(false)
}

// SetTickRate sets the engine tick rate in frames per second.
// If the engine is running, the change takes effect immediately.
func (e *engine) SetTickRate(fps float64) {
	if fps <= 0 {
		fps = 60
	}
	newRate := time.Duration(float64(time.Second) / fps)

	if e.running.Load() {
		// Non-blocking send - if the channel is full, replace the pending value
		select {
		case e.tickRateChannel <- newRate:
		default:
			select {
			case <-e.tickRateChannel:
			default:
			}
			e.tickRateChannel <- newRate
		}
		return
	}

	e.mu.Lock()
	e.engineTickRate = newRate
	e.mu.Unlock()
}

// SetTickCallback registers the function called each engine tick.
func (e *engine) SetTickCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.tickCallback = callback
}

// SetRenderCallback registers the function called each render frame.
func (e *engine) SetRenderCallback(callback func(deltaTime float32)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.renderCallback = callback
}

func (e *engine) SetFrameCallback(callback func(Frame)) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.frameCallback = callback
}

func (e *engine) NextTick(ctx context.Context) error {
	ch := make(chan struct{})

	e.mu.Lock()
	select {
	case <-e.quitChannel:
		e.mu.Unlock()
		return ErrStopped
	default:
	}
	e.tickWaiters = append(e.tickWaiters, ch)
	e.mu.Unlock()

	select {
	case <-ch:
		select {
		case <-e.quitChannel:
			return ErrStopped
		default:
			return nil
		}
	case <-e.quitChannel:
		return ErrStopped
	case <-ctx.Done():
		return ctx.Err()
	}
}

func (e *engine) AfterNextTick(fn func()) {
	if fn == nil {
		return
	}
	e.mu.Lock()
	defer e.mu.Unlock()
	e.afterTick = append(e.afterTick, fn)
}

// SetRenderFrameLimit sets an optional render frame rate cap.
// Pass 0 to uncap the render loop.
func (e *engine) SetRenderFrameLimit(fps float64) {
	e.mu.Lock()
	defer e.mu.Unlock()
	if fps <= 0 {
		e.renderFrameLimit = 0
		return
	}
	e.renderFrameLimit = time.Duration(float64(time.Second) / fps)
}

func (e *engine) AddScene(key int, s scene.Scene) {
	e.mu.Lock()
	defer e.mu.Unlock()
	e.scenes[key] = s
}

func (e *engine) RemoveScene(key int) {
	e.mu.Lock()
	defer e.mu.Unlock()
	delete(e.scenes, key)
}

func (e *engine) Scene(key int) scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	return e.scenes[key]
}

func (e *engine) Scenes() map[int]scene.Scene {
	e.mu.Lock()
	defer e.mu.Unlock()
	cp := make(map[int]scene.Scene, len(e.scenes))
	for k, v := range e.scenes {
		cp[k] = v
	}
	return cp
}
