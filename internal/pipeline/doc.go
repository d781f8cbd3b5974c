// Package pipeline executes analysis steps in sequence.
//
// An analysis is a Pipeline of five StageSteps (resolve, fetch, detect,
// audit, compile) followed by a SynthesizeStep. Each stage is shown as
// active for a fixed delay; a Tracker guarantees that exactly one stage is
// active at a time and that stages run in order, and forwards every change
// to the registered Observers (progress bars, web sessions).
//
// Analyze detaches the run from context cancellation, so a started
// sequence always completes before the report is synthesized.
// BatchProcessor runs independent analyses for several targets with
// bounded concurrency using errgroup.
package pipeline
