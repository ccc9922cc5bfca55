// Package genart holds the deterministic algorithms behind a generative
// token collection: weighted trait assignment, token DNA derivation and
// trait-link overrides, allowlist Merkle proofs, mint authorization
// signatures, revenue splitting and token metadata rendering.
//
// Everything in this package is pure: no storage, no clock, no randomness.
package genart
