// Package keyholder abstracts the TPM 2.0 adaptation layer (spec.md §1):
// an opaque oracle that holds the member secret f and can compute the
// handful of operations signing needs against it, without ever handing
// the raw scalar back to the caller. This package defines only the
// interfaces; it ships no Holder implementation, software or
// TPM-backed. The package tests carry an in-memory one.
package keyholder

import "math/big"

// Holder is the capability a member context signs through. All methods
// operate modulo the group order supplied at construction; callers never
// see f itself.
type Holder interface {
	// Commit returns R = [r]*base for a holder-chosen secret r together
	// with an opaque handle identifying the commitment, mirroring the
	// TPM2 Commit command (original_source/epid/member/split/tpm2).
	Commit(base Point) (commitment Point, handle uint32, err error)

	// Sign returns s = r + c*f mod order for the commitment identified by
	// handle and the supplied challenge c, then discards r and the
	// handle.
	Sign(handle uint32, challenge *big.Int) (s *big.Int, err error)

	// Destroy zeroizes any state the holder owns for this credential.
	Destroy()
}

// Point is the minimal shape keyholder needs from a G1/G2 element so this
// package stays independent of internal/curve.
type Point interface {
	Bytes() []byte
}
