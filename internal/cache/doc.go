// Package cache persists LLM responses keyed by request fingerprint so that
// repeated identical requests skip the external call, within and across
// process lifetimes.
//
// The default backend is a single JSON object file mapping fingerprint
// strings to response payloads. The file is read wholly into memory when the
// store is constructed and rewritten on every mutation; a missing, empty, or
// corrupt file yields an empty store rather than an error. All sessions of a
// process share one store instance, and an in-process mutex serializes the
// read-modify-write-persist cycle.
//
// Fingerprinting is the caller's responsibility: the store treats
// fingerprints as opaque strings. BuildFingerprint provides the standard
// provider:model:prompt SHA-256 derivation used by the LLM client.
//
// An alternate SQLite backend lives in the sqlite subpackage for
// installations whose cache outgrows whole-file rewrites.
package cache
