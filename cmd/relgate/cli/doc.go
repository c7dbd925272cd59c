// Copyright 2026 The Relgate Authors
// SPDX-License-Identifier: Apache-2.0

// Package cli provides the command-line framework for the relgate CLI.
//
// The central type is [Command], which represents a named subcommand
// with optional nested [Command.Subcommands], a [pflag.FlagSet]
// factory, and a Run function. Commands are assembled into a tree in
// cmd/relgate/commands and dispatched via [Command.Execute], which
// handles flag parsing, subcommand routing, and structured help output
// with examples. Run functions receive a context that is cancelled on
// SIGINT/SIGTERM and the run's structured logger.
//
// When a user types an unknown subcommand or flag, the framework
// computes Levenshtein edit distance against all known names and
// suggests the closest match (threshold: distance <= 3).
//
// [FlagsFromParams] binds flags to tagged params-struct fields, so a
// command's inputs live in one declaration. [ExitError] carries the
// process exit code for outcomes where a non-zero exit is a result,
// not a failure: verification's GO/NO-GO/configuration-error contract
// is expressed through the Exit* constants.
package cli
