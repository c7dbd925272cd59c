// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package gate

import (
	"errors"
	"testing"
)

func passResult(id string) Result { return Result{GateID: id, Verdict: VerdictPass} }
func failResult(id string) Result { return Result{GateID: id, Verdict: VerdictFail} }

func TestAggregateAllRequiredPass(t *testing.T) {
	gates := []Gate{
		{ID: "security", Run: "true", Required: true},
		{ID: "changelog", Run: "true"},
	}
	results := []Result{
		passResult("security"),
		failResult("changelog"), // informational failure must not block
	}

	overall, err := Aggregate(gates, results)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if overall != OverallGo {
		t.Fatalf("overall = %s, want GO", overall)
	}
}

func TestAggregateRequiredFailForcesNoGo(t *testing.T) {
	gates := []Gate{
		{ID: "vulnerabilities-resolved", Run: "true", Required: true},
		{ID: "docs", Run: "true"},
	}
	results := []Result{
		failResult("vulnerabilities-resolved"),
		passResult("docs"),
	}

	overall, err := Aggregate(gates, results)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if overall != OverallNoGo {
		t.Fatalf("overall = %s, want NO-GO", overall)
	}
}

func TestAggregateRequiredSkippedForcesNoGo(t *testing.T) {
	gates := []Gate{{ID: "tests", Run: "true", Required: true}}
	results := []Result{{GateID: "tests", Verdict: VerdictSkipped, Detail: DetailCancelled}}

	overall, err := Aggregate(gates, results)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if overall != OverallNoGo {
		t.Fatalf("overall = %s, want NO-GO", overall)
	}
}

func TestAggregateInformationalOnly(t *testing.T) {
	gates := []Gate{
		{ID: "changelog", Run: "true"},
		{ID: "docs", Run: "true"},
	}
	results := []Result{failResult("changelog"), failResult("docs")}

	overall, err := Aggregate(gates, results)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if overall != OverallGo {
		t.Fatalf("overall = %s, want GO (no required gates)", overall)
	}
}

func TestForMode(t *testing.T) {
	gates := []Gate{
		{ID: "security", Run: "true", Required: true, SoftRequired: true},
		{ID: "tests", Run: "true", Required: true},
		{ID: "changelog", Run: "true"},
	}

	hard := ForMode(gates, ModeHard)
	for i := range gates {
		if hard[i].Required != gates[i].Required {
			t.Fatalf("hard mode changed Required on %q", gates[i].ID)
		}
	}

	soft := ForMode(gates, ModeSoft)
	if !soft[0].Required {
		t.Fatal("soft mode demoted a softRequired gate")
	}
	if soft[1].Required {
		t.Fatal("soft mode kept a plain required gate blocking")
	}
	if soft[2].Required {
		t.Fatal("soft mode promoted an informational gate")
	}

	// The caller's slice stays untouched.
	if !gates[1].Required {
		t.Fatal("ForMode mutated its input")
	}
}

func TestForModeChangesAggregation(t *testing.T) {
	gates := []Gate{
		{ID: "security", Run: "true", Required: true, SoftRequired: true},
		{ID: "full-suite", Run: "true", Required: true},
	}
	results := []Result{passResult("security"), failResult("full-suite")}

	overall, err := Aggregate(ForMode(gates, ModeHard), results)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if overall != OverallNoGo {
		t.Fatalf("hard mode overall = %s, want NO-GO", overall)
	}

	overall, err = Aggregate(ForMode(gates, ModeSoft), results)
	if err != nil {
		t.Fatalf("Aggregate: %v", err)
	}
	if overall != OverallGo {
		t.Fatalf("soft mode overall = %s, want GO", overall)
	}
}

func TestParseMode(t *testing.T) {
	if mode, err := ParseMode("hard"); err != nil || mode != ModeHard {
		t.Fatalf("ParseMode(hard) = %q, %v", mode, err)
	}
	if mode, err := ParseMode("soft"); err != nil || mode != ModeSoft {
		t.Fatalf("ParseMode(soft) = %q, %v", mode, err)
	}
	if _, err := ParseMode("lenient"); err == nil {
		t.Fatal("ParseMode accepted an unknown mode")
	}
}

func TestAggregateInvariantViolations(t *testing.T) {
	gates := []Gate{
		{ID: "a", Run: "true", Required: true},
		{ID: "b", Run: "true", Required: true},
	}

	tests := []struct {
		name    string
		results []Result
	}{
		{"missing result", []Result{passResult("a")}},
		{"extra result", []Result{passResult("a"), passResult("b"), passResult("c")}},
		{"order mismatch", []Result{passResult("b"), passResult("a")}},
		{"empty verdict", []Result{passResult("a"), {GateID: "b"}}},
	}
	for _, test := range tests {
		t.Run(test.name, func(t *testing.T) {
			overall, err := Aggregate(gates, test.results)
			if !errors.Is(err, ErrAggregationInvariant) {
				t.Fatalf("error = %v, want ErrAggregationInvariant", err)
			}
			if overall == OverallGo {
				t.Fatal("invariant violation still produced GO")
			}
		})
	}
}
