// Package sync implements the reconciliation engine between the
// home-automation area/entity directory and the voice-assistant
// group/appliance directory.
//
// The two directories use different identifier namespaces with lossy,
// convention-based naming, so reconciliation is built from small pure
// pieces that compose in one direction:
//
//  1. Normalization canonicalizes identifiers and area names from both
//     systems into a comparable form.
//  2. Match builds a cross-reference from home-automation entity ids to
//     voice-assistant appliance ids. Exact normalized matches only.
//  3. Diff computes the minimal membership mutation per group under one
//     of two policies (update_only adds, full replaces).
//  4. Orchestrator sequences the phases across all areas and aggregates
//     per-area outcomes into a Summary.
//
// Everything in this package is pure and single-threaded: no network
// calls, no shared mutable state, nothing outlives the run that created
// it. Remote mutation goes through the GroupWriter interface, implemented
// by the directory client, so every piece is testable with fakes.
//
// All batch processing isolates failures per item: one area or entity
// failing never aborts its siblings, and a user interrupt stops between
// items with partial results preserved.
package sync
