// Copyright (C) 2025 Aleutian AI (jinterlante@aleutian.ai)
// This program is free software: you can redistribute it and/or modify
// it under the terms of the GNU Affero General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
// See the LICENSE.txt file for the full license text.

package query

import "time"

// Clock abstracts timer creation so the debounce window is testable
// without real wall-clock time.
type Clock interface {
	// AfterFunc schedules fn to run after d and returns its timer.
	AfterFunc(d time.Duration, fn func()) Timer
}

// Timer is a stoppable scheduled call. Stop reports whether the call
// was prevented from firing.
type Timer interface {
	Stop() bool
}

// realClock is the production Clock backed by the time package.
type realClock struct{}

func (realClock) AfterFunc(d time.Duration, fn func()) Timer {
	return time.AfterFunc(d, fn)
}
