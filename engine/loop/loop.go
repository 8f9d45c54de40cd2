// Package loop holds the types shared between the render loop and the code it drives, so that
// frame consumers do not depend on the window and GPU packages.
package loop

import "time"

// Frame describes one iteration of the render loop.
type Frame struct {
	// Number counts frames from 1.
	Number uint64
	// Time is when the frame started.
	Time time.Time
	// Delta is the time since the previous frame in seconds.
	Delta float32
}
