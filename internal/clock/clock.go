package clock

import "time"

// NowFunc returns current time. Override in tests for determinism.
var NowFunc = time.Now

// Now is a thin wrapper around NowFunc.
func Now() time.Time { return NowFunc() }

// UnixMilli returns the current time in milliseconds, the resolution used
// by profile timestamps.
func UnixMilli() int64 { return NowFunc().UnixMilli() }
