// Package app holds the UI state of a session and the event handlers that
// move it forward.
//
// State is a plain value. Dispatch applies an Event and returns the next
// State; handlers are looked up per EventKind and can be replaced with
// Handle. Effects (clipboard, download sink, history recorder, logger) are
// injected through Env, so the same handlers serve the terminal and the web
// server.
//
// Every submission increments State.Generation. RunAnalysis tags its
// progress and result events with the generation it was started for, and
// results of older generations are discarded: the newest submission wins.
package app
