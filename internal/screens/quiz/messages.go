package quiz

import (
	"github.com/abhisek/safetyquiz/internal/imagegen"
)

// timerTickMsg is sent every second while the question countdown runs. gen
// ties the tick to one countdown so a restarted countdown ignores old ticks.
type timerTickMsg struct {
	gen int
}

// imageReadyMsg carries the result of an async image generation. gen
// identifies the request so stale results after a regenerate are dropped.
type imageReadyMsg struct {
	gen   int
	image *imagegen.Image
	err   error
}
