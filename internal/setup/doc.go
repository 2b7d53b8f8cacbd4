// Package setup implements the first-run configuration wizard core.
//
// Four cooperating pieces answer the wizard's questions:
//   - Probe checks whether a TeddyCloud server responds and which Tonieboxes
//     it manages.
//   - Detector inspects the /data mount for TeddyCloud's directory layout
//     and counts library content. It is read-only and never fails.
//   - IsSetupRequired combines config-file existence with reachability of
//     the currently configured server into a single verdict. Ambiguity
//     always resolves toward requiring setup.
//   - Writer expands the wizard's flat submission into the complete
//     persisted configuration document and replaces it atomically.
//
// The read-only operations return well-formed results even on internal
// failure; only Writer.Save surfaces hard errors.
package setup
