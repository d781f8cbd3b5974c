// Package codepanel implements the actions of the source code panel:
// copying the displayed code, downloading it as a file and a naive
// reformatting.
//
// Environment effects are injected: Copy takes a Clipboard and Download a
// Sink. The terminal uses OSC52Clipboard and DirSink; the web server stages
// the text for the browser instead.
package codepanel
