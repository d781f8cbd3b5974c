// Package report writes analysis reports in several output formats.
//
//   - SimpleWriter: coloured text for the terminal
//   - MarkdownWriter: tables, a status chart and fenced code samples
//   - JSONWriter and FullJSONWriter: structured output for tools
//   - HTMLWriter: a standalone page built with the web UI templates
//
// Every writer implements Writer and writes to an io.Writer, so the same
// report can go to stdout, a file or an HTTP response.
package report
