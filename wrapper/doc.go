// Package wrapper bridges esm_runscripts and a Snakemake-style workflow
// engine.
//
// It covers two phases of a job's lifecycle:
//
//   - Resource resolution (before scheduling): GetResources runs
//     esm_runscripts in check mode, locates the generated finished-config
//     artifact, and reduces it to a normalized resource request
//     (nodes/tasks/mem_mb/runtime/partition/account).
//   - Payload extraction (inside the granted allocation): RunPayload locates
//     the generated batch script, strips scheduler directives and submission
//     commands, and materializes a directly executable fragment.
//
// The two phases share format knowledge (finished-config schema, batch-script
// directive syntax) but no runtime state: every call is stateless and
// idempotent given the same on-disk artifacts. Concurrency safety across
// experiments comes from experiment-scoped file paths only; callers must not
// resolve the same experiment id concurrently.
//
// External collaborators are injected as small interfaces: CommandRunner for
// the generator process, DocumentLoader for artifact parsing.
package wrapper
