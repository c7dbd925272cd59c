// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"errors"
	"fmt"
)

// ErrAggregationInvariant marks an internal inconsistency between the
// configured gates and their results: a missing result, an order
// mismatch, or an empty verdict. It is fatal. The caller must fail
// the run rather than risk reporting a GO that no gate actually
// earned.
var ErrAggregationInvariant = errors.New("gate aggregation invariant violated")

// Aggregate computes the overall verdict. GO requires every required
// gate to have verdict pass; a required fail or skipped forces NO-GO.
// Informational gates are recorded but never flip the verdict.
//
// Results must correspond to gates one to one and in order. Any
// violation returns ErrAggregationInvariant together with NO-GO, so
// even a caller that ignores the error cannot read a false GO.
func Aggregate(gates []Gate, results []Result) (Overall, error) {
	if len(results) != len(gates) {
		return OverallNoGo, fmt.Errorf("%w: %d gates configured, %d results",
			ErrAggregationInvariant, len(gates), len(results))
	}
	for i, g := range gates {
		if results[i].GateID != g.ID {
			return OverallNoGo, fmt.Errorf("%w: result %d is for gate %q, want %q",
				ErrAggregationInvariant, i, results[i].GateID, g.ID)
		}
		if results[i].Verdict == "" {
			return OverallNoGo, fmt.Errorf("%w: gate %q has no verdict",
				ErrAggregationInvariant, g.ID)
		}
	}

	for i, g := range gates {
		if g.Required && results[i].Verdict != VerdictPass {
			return OverallNoGo, nil
		}
	}
	return OverallGo, nil
}

// ForMode returns the gates with Required adjusted for the verification
// mode. Hard mode keeps every gate as configured. Soft mode demotes
// required gates without softRequired to informational: they still run
// and report, but no longer block. The input slice is not modified.
func ForMode(gates []Gate, mode Mode) []Gate {
	adjusted := make([]Gate, len(gates))
	copy(adjusted, gates)
	if mode != ModeSoft {
		return adjusted
	}
	for i := range adjusted {
		if adjusted[i].Required && !adjusted[i].SoftRequired {
			adjusted[i].Required = false
		}
	}
	return adjusted
}
