// Package providers groups the adapters the autofill manager depends on.
//
// Each subpackage implements one collaborator behind an interface the
// manager declares:
//   - classifier: heuristic field type prediction
//   - store: profile and card records, in memory or loaded from YAML
//   - frames: the renderer driver and its cross-frame security policy
//   - plusaddress: the remote plus-address suggestion delegate
//   - htmlform: form snapshots extracted from raw HTML documents
package providers
