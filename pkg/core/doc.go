// Package core defines the shared vocabulary of widarcfg.
//
// This package contains:
//   - The error taxonomy (ParseError, ValueError and their sentinels)
//   - Script dialects
//   - Array configuration codes and their maximum baselines
//
// pkg/core imports only the standard library. All other packages depend on
// core, not the reverse.
package core
