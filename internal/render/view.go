package render

import (
	"strings"
	"time"

	"github.com/nao1215/sitescope/internal/model"
)

// TimestampLayout formats the "last analyzed" time.
const TimestampLayout = "2006-01-02 15:04:05 MST"

// Layout selects the markup used for the items of a group.
type Layout string

// Item layouts, one per section.
const (
	LayoutTech     Layout = "tech"
	LayoutInfo     Layout = "info"
	LayoutSecurity Layout = "security"
	LayoutMetric   Layout = "metric"
	LayoutSEO      Layout = "seo"
	LayoutAPI      Layout = "api"
	LayoutAsset    Layout = "asset"
)

// View is the view model of a whole report.
type View struct {
	Overview OverviewView
	Sections []SectionView
}

// OverviewView is the view model of the overview container.
type OverviewView struct {
	ContainerID  string
	Title        string
	Description  string
	URL          string
	IPAddress    string
	ResponseTime string
	LastAnalyzed string
	Facts        []Fact
}

// Fact is a label/value pair shown in the overview grid.
type Fact struct {
	Label string
	Value string
}

// SectionView is the view model of one result tab.
type SectionView struct {
	Tab    model.ResultTab
	Title  string
	Groups []GroupView
}

// GroupView is one container of a section.
type GroupView struct {
	ContainerID string
	Key         string
	Title       string
	Layout      Layout
	Items       []ItemView
}

// ItemView holds the display fields of one item.
// Empty fields are not rendered.
type ItemView struct {
	Icon        string
	Name        string
	Description string
	Value       string
	Version     string
	Type        string
	Method      string
	Key         string
	Protocol    string
	Service     string
	Status      string
	StatusClass string
}

// group describes where a subsection is rendered.
type group struct {
	containerID string
	title       string
}

// groups maps "<tab>/<key>" to its container.
var groups = map[string]group{
	"technology/frontend":  {"frontend-tech", "Frontend Technologies"},
	"technology/backend":   {"backend-tech", "Backend Technologies"},
	"technology/cloud":     {"cloud-services", "Cloud Services"},
	"technology/analytics": {"analytics-tracking", "Analytics & Tracking"},

	"server/server": {"server-info", "Server Information"},
	"server/dns":    {"dns-info", "DNS Records"},
	"server/ssl":    {"ssl-info", "SSL Certificate"},
	"server/cdn":    {"cdn-info", "CDN & Caching"},

	"security/headers":         {"security-headers", "Security Headers"},
	"security/vulnerabilities": {"vulnerability-scan", "Vulnerability Scan"},
	"security/privacy":         {"privacy-compliance", "Privacy & Compliance"},
	"security/trackers":        {"third-party-trackers", "Third-party Trackers"},

	"performance/loadTimes":     {"load-times", "Load Times"},
	"performance/resourceSizes": {"resource-sizes", "Resource Sizes"},
	"performance/mobile":        {"mobile-performance", "Mobile Performance"},
	"performance/optimization":  {"optimization", "Optimization"},

	"seo/metaTags":         {"meta-tags", "Meta Tags"},
	"seo/contentStructure": {"content-structure", "Content Structure"},
	"seo/links":            {"links-analysis", "Links Analysis"},
	"seo/schema":           {"schema-data", "Structured Data"},

	"apis/endpoints": {"api-endpoints", "API Endpoints"},
	"apis/keys":      {"api-keys", "API Keys"},
	"apis/social":    {"social-apis", "Social APIs"},
	"apis/realtime":  {"realtime-connections", "Real-time Connections"},

	"assets/images":   {"images-media", "Images & Media"},
	"assets/scripts":  {"scripts-styles", "Scripts & Styles"},
	"assets/fonts":    {"fonts-icons", "Fonts & Icons"},
	"assets/external": {"external-resources", "External Resources"},
}

// Container ids that do not belong to a section group.
const (
	OverviewContainerID = "overview-content"
	CodeContainerID     = "source-code"
)

// ContainerIDs returns every container id in page order.
func ContainerIDs() []string {
	ids := []string{OverviewContainerID}
	for _, tab := range model.SectionTabs() {
		for _, key := range model.SubsectionKeys(tab) {
			ids = append(ids, groups[string(tab)+"/"+key].containerID)
		}
	}
	return append(ids, CodeContainerID)
}

// layouts maps each section tab to its item layout.
var layouts = map[model.ResultTab]Layout{
	model.TabTechnology:  LayoutTech,
	model.TabServer:      LayoutInfo,
	model.TabSecurity:    LayoutSecurity,
	model.TabPerformance: LayoutMetric,
	model.TabSEO:         LayoutSEO,
	model.TabAPIs:        LayoutAPI,
	model.TabAssets:      LayoutAsset,
}

// BuildView maps a report to its view model.
// It is a pure function: the same report always yields the same view.
func BuildView(report *model.Report) View {
	v := View{Overview: buildOverview(report.Overview)}
	for _, section := range report.Sections() {
		v.Sections = append(v.Sections, buildSection(section))
	}
	return v
}

func buildOverview(o model.Overview) OverviewView {
	return OverviewView{
		ContainerID:  OverviewContainerID,
		Title:        o.Title,
		Description:  o.Description,
		URL:          o.URL,
		IPAddress:    o.IPAddress,
		ResponseTime: o.ResponseTime,
		LastAnalyzed: FormatTimestamp(o.LastAnalyzed),
		Facts: []Fact{
			{"Domain", o.Domain},
			{"Status", o.Status},
			{"HTTP Status", o.HTTPStatus},
			{"Server Location", o.ServerLocation},
			{"Registrar", o.Registrar},
			{"Created", o.CreatedDate},
			{"Expires", o.ExpiryDate},
		},
	}
}

// FormatTimestamp formats t for display; the zero time yields "".
func FormatTimestamp(t time.Time) string {
	if t.IsZero() {
		return ""
	}
	return t.Format(TimestampLayout)
}

func buildSection(section model.Section) SectionView {
	layout := layouts[section.Tab]
	sv := SectionView{Tab: section.Tab, Title: section.Tab.Title()}
	for _, sub := range section.Subsections {
		g := groups[string(section.Tab)+"/"+sub.Key]
		gv := GroupView{
			ContainerID: g.containerID,
			Key:         sub.Key,
			Title:       g.title,
			Layout:      layout,
			Items:       make([]ItemView, 0, len(sub.Items)),
		}
		for _, item := range sub.Items {
			gv.Items = append(gv.Items, buildItem(layout, item))
		}
		sv.Groups = append(sv.Groups, gv)
	}
	return sv
}

// buildItem keeps only the fields the layout shows.
func buildItem(layout Layout, item model.Item) ItemView {
	iv := ItemView{Name: item.Name}
	if item.Status != "" && layout != LayoutInfo {
		iv.Status = item.Status.String()
		iv.StatusClass = item.Status.CSSClass()
	}

	switch layout {
	case LayoutTech:
		iv.Icon = item.Icon
		iv.Description = item.Description
		iv.Version = VersionLabel(item.Version)
	case LayoutInfo, LayoutSEO:
		iv.Description = item.Value
	case LayoutSecurity:
		iv.Description = item.Description
		iv.Type = item.Type
	case LayoutMetric:
		iv.Value = item.Value
	case LayoutAPI:
		iv.Description = item.Description
		iv.Method = item.Method
		iv.Key = item.Key
		iv.Version = VersionLabel(item.Version)
		iv.Protocol = item.Protocol
		iv.Service = item.Service
	case LayoutAsset:
		iv.Description = AssetDescription(item)
	}
	return iv
}

// VersionLabel prefixes a version with "v".
// Versions that already start with "v" and a digit (v18.0) are kept as is.
func VersionLabel(version string) string {
	if version == "" {
		return ""
	}
	if len(version) > 1 && version[0] == 'v' && version[1] >= '0' && version[1] <= '9' {
		return version
	}
	return "v" + version
}

// AssetDescription joins the present asset attributes with " | ".
func AssetDescription(item model.Item) string {
	var parts []string
	add := func(label, value string) {
		if value != "" {
			parts = append(parts, label+": "+value)
		}
	}
	add("Size", item.Size)
	add("Format", item.Format)
	add("Type", item.Type)
	add("Variants", item.Variants)
	add("Domain", item.Domain)
	return strings.Join(parts, " | ")
}
