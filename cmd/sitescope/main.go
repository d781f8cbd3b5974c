// Package main provides the entry point for the sitescope CLI.
//
// sitescope produces a simulated website analysis report for a URL: the
// technology stack, server, security, performance, SEO, API and asset
// findings, plus generated source samples. No network request is made.
//
// Usage:
//
//	sitescope analyze https://example.com
//	sitescope serve
//	sitescope history list
//
// See --help for all available options.
package main

func main() {
	Execute()
}
