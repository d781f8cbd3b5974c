package model

import (
	"fmt"
	"slices"
	"strings"
)

// ResultTab identifies one tab of the result view.
type ResultTab string

// Result tabs in display order.
const (
	TabOverview    ResultTab = "overview"
	TabTechnology  ResultTab = "technology"
	TabServer      ResultTab = "server"
	TabSecurity    ResultTab = "security"
	TabPerformance ResultTab = "performance"
	TabSEO         ResultTab = "seo"
	TabAPIs        ResultTab = "apis"
	TabAssets      ResultTab = "assets"
	TabCode        ResultTab = "code"
)

// ResultTabs lists every result tab in display order.
var ResultTabs = []ResultTab{
	TabOverview, TabTechnology, TabServer, TabSecurity, TabPerformance,
	TabSEO, TabAPIs, TabAssets, TabCode,
}

// String returns the tab identifier.
func (t ResultTab) String() string {
	return string(t)
}

// Title returns the label shown on the tab button.
func (t ResultTab) Title() string {
	switch t {
	case TabOverview:
		return "Overview"
	case TabTechnology:
		return "Technology"
	case TabServer:
		return "Server"
	case TabSecurity:
		return "Security"
	case TabPerformance:
		return "Performance"
	case TabSEO:
		return "SEO"
	case TabAPIs:
		return "APIs"
	case TabAssets:
		return "Assets"
	case TabCode:
		return "Source Code"
	default:
		return string(t)
	}
}

// ParseResultTab converts a tab identifier into a ResultTab.
// Matching ignores case and surrounding whitespace.
func ParseResultTab(s string) (ResultTab, error) {
	t := ResultTab(strings.ToLower(strings.TrimSpace(s)))
	if !slices.Contains(ResultTabs, t) {
		return "", fmt.Errorf("%w: %q", ErrUnknownTab, s)
	}
	return t, nil
}

// CodeType identifies one of the generated source samples.
type CodeType string

// Code types in display order.
const (
	CodeHTML CodeType = "html"
	CodeCSS  CodeType = "css"
	CodeJS   CodeType = "js"
)

// CodeTypes lists every code type in display order.
var CodeTypes = []CodeType{CodeHTML, CodeCSS, CodeJS}

// String returns the code type identifier.
func (c CodeType) String() string {
	return string(c)
}

// Filename returns the download file name for the code type.
func (c CodeType) Filename() string {
	switch c {
	case CodeHTML:
		return "index.html"
	case CodeCSS:
		return "styles.css"
	case CodeJS:
		return "script.js"
	default:
		return "code.txt"
	}
}

// Language returns the fenced code block language used by Markdown output.
func (c CodeType) Language() string {
	if c == CodeJS {
		return "javascript"
	}
	return string(c)
}

// Title returns the label shown on the code tab button.
func (c CodeType) Title() string {
	switch c {
	case CodeHTML:
		return "HTML"
	case CodeCSS:
		return "CSS"
	case CodeJS:
		return "JavaScript"
	default:
		return string(c)
	}
}

// ParseCodeType converts an identifier into a CodeType.
// "javascript" is accepted as an alias of js.
func ParseCodeType(s string) (CodeType, error) {
	v := strings.ToLower(strings.TrimSpace(s))
	if v == "javascript" {
		v = string(CodeJS)
	}
	c := CodeType(v)
	if !slices.Contains(CodeTypes, c) {
		return "", fmt.Errorf("%w: %q", ErrUnknownCodeType, s)
	}
	return c, nil
}

// TabGroup is a set of mutually exclusive tabs.
// Exactly one tab is active at any time, starting with the default.
// There is no terminal state: any tab can be selected again later.
//
// TabGroup is a value type. Copies share the list of tabs, which is never
// modified, and carry their own active tab.
type TabGroup[T comparable] struct {
	tabs   []T
	def    T
	active T
}

// NewTabGroup creates a group of tabs with def active.
// def is added to the group if it is missing from tabs.
func NewTabGroup[T comparable](def T, tabs ...T) TabGroup[T] {
	all := slices.Clone(tabs)
	if !slices.Contains(all, def) {
		all = append([]T{def}, all...)
	}
	return TabGroup[T]{tabs: all, def: def, active: def}
}

// NewResultTabs creates the result tab group with overview active.
func NewResultTabs() TabGroup[ResultTab] {
	return NewTabGroup(TabOverview, ResultTabs...)
}

// NewCodeTabs creates the code tab group with html active.
func NewCodeTabs() TabGroup[CodeType] {
	return NewTabGroup(CodeHTML, CodeTypes...)
}

// Select activates t and deactivates every other tab.
// It reports whether the active tab changed; selecting the active tab is a no-op.
// Tabs outside the group are rejected with ErrUnknownTab and leave the group unchanged.
func (g *TabGroup[T]) Select(t T) (bool, error) {
	if !slices.Contains(g.tabs, t) {
		return false, fmt.Errorf("%w: %v", ErrUnknownTab, t)
	}
	if g.active == t {
		return false, nil
	}
	g.active = t
	return true, nil
}

// Reset activates the default tab.
func (g *TabGroup[T]) Reset() {
	g.active = g.def
}

// Active returns the active tab.
func (g TabGroup[T]) Active() T {
	return g.active
}

// IsActive reports whether t is the active tab.
func (g TabGroup[T]) IsActive(t T) bool {
	return g.active == t
}

// Default returns the tab that is active initially.
func (g TabGroup[T]) Default() T {
	return g.def
}

// Tabs returns the tabs of the group in display order.
func (g TabGroup[T]) Tabs() []T {
	return slices.Clone(g.tabs)
}

// Contains reports whether t belongs to the group.
func (g TabGroup[T]) Contains(t T) bool {
	return slices.Contains(g.tabs, t)
}
