package constant

import "time"

// Demo Loop Timing
const (
	// FrameUpdateInterval is the rendering frame rate interval (~60 FPS)
	FrameUpdateInterval = 16 * time.Millisecond

	// ListenerMoveStep is world units moved per key press
	ListenerMoveStep = 2.0

	// MapUnitsPerCell is world units per terminal cell in the top-down map
	MapUnitsPerCell = 4.0
)

// Logging
const (
	LogDir      = "logs"
	LogFileName = "occlusion.log"
)
