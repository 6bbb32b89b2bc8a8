package easel

import "errors"

// ErrInvalidConfiguration is returned when an engine, scheduler or animation
// is constructed from missing or out-of-range fields. It is only ever raised
// at construction time, never from inside the tick loop.
var ErrInvalidConfiguration = errors.New("easel: invalid configuration")

// ErrInvalidViewport is returned when a container size or pixel density
// cannot be fitted. The previous viewport transform stays in effect.
var ErrInvalidViewport = errors.New("easel: invalid viewport")
