// Package pell implements multi-precision finite-field arithmetic and
// elliptic-curve operations for pairing-based cryptography: prime fields,
// binary fields, towered extension fields (Fp2, Fp6, Fp12), scalar
// multiplication on prime and binary curves, and precomputation tables for
// Eta-pairing evaluation.
//
// Subpackages follow a strict bottom-up layering: curve packages call field
// packages, field packages call the digit-vector service. Scalars are
// math/big integers and are never mutated by the library.
package pell

import (
	"errors"

	"github.com/blang/semver/v4"
)

var (
	// ErrInvalidInput is returned when an operation receives an input it is
	// not defined for, such as inverting zero or running the Lopez-Dahab
	// ladder on a supersingular curve.
	ErrInvalidInput = errors.New("invalid input")

	// ErrNoConfig is returned when the selected strategy is incompatible
	// with the active configuration, before any computation begins.
	ErrNoConfig = errors.New("operation not available under current configuration")

	// ErrPrecision is returned when a digit-vector allocation exceeds the
	// configured maximum precision.
	ErrPrecision = errors.New("precision exceeds configured maximum")
)

// Version of the library.
var Version = semver.MustParse("0.2.0")
