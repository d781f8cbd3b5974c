// Package server serves the browser UI of sitescope.
//
// Every visitor gets a session, keyed by a random cookie, holding its own
// app.State. Pages are rendered on the server: forms post events, the
// handler dispatches them and redirects back to the page. While an
// analysis runs the page refreshes itself and shows the active stage.
package server
