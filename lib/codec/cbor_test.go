// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package codec

import (
	"bytes"
	"reflect"
	"testing"
)

func TestMarshalIsDeterministic(t *testing.T) {
	// Map iteration order varies run to run; deterministic encoding
	// must erase that.
	value := map[string]any{
		"overall": "GO",
		"gates":   []any{"checksums", "unit-tests"},
		"counts":  map[string]any{"pass": int64(4), "fail": int64(0)},
	}

	first, err := Marshal(value)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	for range 20 {
		again, err := Marshal(value)
		if err != nil {
			t.Fatalf("Marshal: %v", err)
		}
		if !bytes.Equal(first, again) {
			t.Fatalf("encoding not deterministic:\n%x\n%x", first, again)
		}
	}
}

func TestRoundTrip(t *testing.T) {
	type record struct {
		Name    string   `cbor:"name"`
		Verdict string   `cbor:"verdict"`
		Files   []string `cbor:"files"`
	}
	in := record{Name: "checksums", Verdict: "pass", Files: []string{"a", "b"}}

	data, err := Marshal(in)
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}
	var out record
	if err := Unmarshal(data, &out); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	if !reflect.DeepEqual(in, out) {
		t.Fatalf("round trip changed record: %+v", out)
	}
}

func TestUnmarshalAnyUsesStringKeyedMaps(t *testing.T) {
	data, err := Marshal(map[string]any{"mode": "safe-share"})
	if err != nil {
		t.Fatalf("Marshal: %v", err)
	}

	var decoded any
	if err := Unmarshal(data, &decoded); err != nil {
		t.Fatalf("Unmarshal: %v", err)
	}
	m, ok := decoded.(map[string]any)
	if !ok {
		t.Fatalf("decoded type = %T, want map[string]any", decoded)
	}
	if m["mode"] != "safe-share" {
		t.Fatalf("decoded map = %v", m)
	}
}
