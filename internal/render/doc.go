// Package render turns reports into HTML.
//
// Rendering happens in two steps. BuildView maps a report to a pure view
// model (one GroupView per page container, holding only the fields the
// section shows). Renderer then executes the embedded html/template
// fragments and replaces the content of each container. RenderPage lays the
// containers out in the single-page UI used by the web server and the HTML
// export.
package render
