// Package synth generates the placeholder analysis report for a target.
//
// No network access takes place. Every section is filled with constant
// sample data in which the target hostname is substituted, and the source
// code samples are rendered from embedded text/template files. The only
// varying input besides the hostname is the clock used for the "last
// analyzed" timestamp, which can be injected with WithClock.
package synth
