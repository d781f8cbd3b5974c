// Package model defines the core data structures used throughout sitescope.
//
// This package contains the following main types:
//   - Target: A validated analysis input produced by ParseTarget
//   - Report: The fixed-shape analysis result with its sections and code samples
//   - Status: The tag attached to each report item, grouped by Tone
//   - TabGroup: A set of mutually exclusive tabs (result tabs and code tabs)
//
// Models live in their own package so that synth, render, report, app and
// database can share them without import cycles. Report and its parts are
// serializable to JSON for report output and history storage.
package model
