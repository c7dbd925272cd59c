// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

package cli

import (
	"strings"
	"testing"

	"github.com/spf13/pflag"
)

func TestBindFlags(t *testing.T) {
	type params struct {
		Mode       string   `flag:"mode" desc:"verification mode" default:"hard"`
		Redaction  string   `flag:"redaction" desc:"redaction mode" default:"none"`
		JSON       bool     `flag:"json" desc:"print the report JSON"`
		Recipients []string `flag:"encrypt-to" desc:"age recipients"`
		Ignored    string
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}

	args := []string{
		"--mode", "soft",
		"--json",
		"--encrypt-to", "age1abc",
		"--encrypt-to", "age1def",
	}
	if err := flagSet.Parse(args); err != nil {
		t.Fatalf("Parse: %v", err)
	}

	if p.Mode != "soft" {
		t.Errorf("Mode = %q, want soft", p.Mode)
	}
	if p.Redaction != "none" {
		t.Errorf("Redaction = %q, want default none", p.Redaction)
	}
	if !p.JSON {
		t.Error("JSON not set")
	}
	if len(p.Recipients) != 2 || p.Recipients[0] != "age1abc" || p.Recipients[1] != "age1def" {
		t.Errorf("Recipients = %v", p.Recipients)
	}
	if flagSet.Lookup("Ignored") != nil {
		t.Error("untagged field was bound")
	}
}

func TestBindFlagsShorthand(t *testing.T) {
	type params struct {
		Output string `flag:"output,o" desc:"output path"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"-o", "out.tar"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Output != "out.tar" {
		t.Errorf("Output = %q, want out.tar", p.Output)
	}
}

func TestBindFlagsEmbedded(t *testing.T) {
	type common struct {
		Config string `flag:"config" desc:"config file"`
	}
	type params struct {
		common
		Mode string `flag:"mode" default:"hard"`
	}

	var p params
	flagSet := pflag.NewFlagSet("test", pflag.ContinueOnError)
	if err := BindFlags(&p, flagSet); err != nil {
		t.Fatalf("BindFlags: %v", err)
	}
	if err := flagSet.Parse([]string{"--config", "relgate.yaml"}); err != nil {
		t.Fatalf("Parse: %v", err)
	}
	if p.Config != "relgate.yaml" {
		t.Errorf("Config = %q", p.Config)
	}
}

func TestBindFlagsRejectsUnsupportedType(t *testing.T) {
	type params struct {
		Level float64 `flag:"level"`
	}

	var p params
	err := BindFlags(&p, pflag.NewFlagSet("test", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "unsupported type") {
		t.Fatalf("error = %v, want unsupported type", err)
	}
}

func TestBindFlagsRejectsNonPointer(t *testing.T) {
	type params struct{}
	err := BindFlags(params{}, pflag.NewFlagSet("test", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "pointer to a struct") {
		t.Fatalf("error = %v, want pointer complaint", err)
	}
}

func TestBindFlagsBadDefault(t *testing.T) {
	type params struct {
		Quiet bool `flag:"quiet" default:"sometimes"`
	}

	var p params
	err := BindFlags(&p, pflag.NewFlagSet("test", pflag.ContinueOnError))
	if err == nil || !strings.Contains(err.Error(), "default for --quiet") {
		t.Fatalf("error = %v, want default parse failure", err)
	}
}

func TestExitError(t *testing.T) {
	plain := &ExitError{Code: ExitNoGo}
	if plain.Error() != "exit code 1" {
		t.Errorf("Error() = %q", plain.Error())
	}
	if plain.ExitCode() != 1 {
		t.Errorf("ExitCode() = %d", plain.ExitCode())
	}

	wrapped := &ExitError{Code: ExitConfigError, Err: errStub("bad gates file")}
	if wrapped.Error() != "bad gates file" {
		t.Errorf("Error() = %q", wrapped.Error())
	}
	if wrapped.Unwrap() == nil {
		t.Error("Unwrap() returned nil for wrapped error")
	}
}

type errStub string

func (e errStub) Error() string { return string(e) }
