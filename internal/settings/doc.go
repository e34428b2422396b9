// Package settings resolves the effective codeloom configuration from three
// independently-owned sources: the project defaults artifact, the host's
// user configuration store, and the host's secret store.
//
// # Sources and precedence
//
// A project ships opinionated presets in .codeloom/defaults.json (JSONC
// accepted) or .codeloom/defaults.yaml: provider profiles, auto-approval
// policy, allowed commands, mode. User configuration always overrides those
// presets, and the secret store overrides everything for credential fields:
//
//	secret store > user configuration > defaults artifact > baseline
//
// # Loading
//
// Loader.Load reads the artifact and fails soft in every case. A missing
// project root, missing file, empty file, broken syntax, or a document
// without the recognized top-level sections all resolve to "no defaults",
// logged but never fatal. A malformed tree is never partially applied.
// An artifact in the retired flat state/secrets layout is migrated to the
// nested shape before loading (see legacy.go).
//
// # Scanning
//
// Scan flags credential fields carrying values inside a defaults artifact.
// Such files are usually committed to version control, so an embedded API
// key must be reported to the operator.
//
// # Merging
//
// Merge builds the EffectiveSettings tree namespace by namespace, field by
// field over the static field tables in pkg/types. Profile merging runs in
// three passes: defaults (with apiProvider validated against the enumerated
// provider set), user overlay (secret store consulted first for credential
// fields), and secret backfill for credentials the overlay did not cover.
// The tail of the merge guarantees a usable result: a synthetic "default"
// profile when no profile survived, and a current profile name that always
// resolves.
//
// Merge returns a valid tree for every input. The caller cannot distinguish
// "defaults file had a typo" from "no defaults file" except through the
// logs; a configuration engine must never block the tool from starting.
package settings
