// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package clock

import "time"

// Clock abstracts the current-time reading for testability. Production
// code injects Real(); tests inject Fake() with deterministic control.
//
// Every production function that stamps a report, record, or result
// with a wall-clock time should accept a Clock parameter (or be a
// method on a struct with a Clock field) instead of calling time.Now
// directly. Timeouts still go through context.WithTimeout; the Clock
// covers observable timestamps, not scheduling.
type Clock interface {
	// Now returns the current time.
	Now() time.Time
}
