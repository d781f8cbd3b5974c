package model

import (
	"encoding/hex"
	"fmt"
	"slices"
	"time"

	"golang.org/x/crypto/sha3"
)

// Report is the complete result of one analysis.
// Its shape is fixed: every report carries the same sections with the same
// subsection keys in the same order, only the content differs.
type Report struct {
	// Overview summarises the site (title, domain, response time, ...).
	Overview Overview `json:"overview"`

	// Technology lists detected frontend, backend, cloud and analytics tools.
	Technology Section `json:"technology"`

	// Server describes the hosting server, DNS, SSL certificate and CDN.
	Server Section `json:"server"`

	// Security lists header checks, vulnerability checks, privacy and trackers.
	Security Section `json:"security"`

	// Performance lists load times, resource sizes, mobile and optimization metrics.
	Performance Section `json:"performance"`

	// SEO lists meta tags, content structure, links and structured data.
	SEO Section `json:"seo"`

	// APIs lists endpoints, exposed keys, social APIs and realtime connections.
	APIs Section `json:"apis"`

	// Assets lists images, scripts, fonts and external resources.
	Assets Section `json:"assets"`

	// Code holds the generated source samples.
	Code Code `json:"code"`

	// Digest is the hex SHA3-256 over the code samples.
	// Set by ComputeDigest.
	Digest string `json:"digest,omitempty"`
}

// Overview is the summary block shown on the first tab.
type Overview struct {
	URL            string    `json:"url"`
	Domain         string    `json:"domain"`
	Title          string    `json:"title"`
	Description    string    `json:"description"`
	Status         string    `json:"status"`
	LastAnalyzed   time.Time `json:"last_analyzed"`
	ResponseTime   string    `json:"response_time"`
	HTTPStatus     string    `json:"http_status"`
	ServerLocation string    `json:"server_location"`
	IPAddress      string    `json:"ip_address"`
	Registrar      string    `json:"registrar"`
	CreatedDate    string    `json:"created_date"`
	ExpiryDate     string    `json:"expiry_date"`
}

// Section is one tab of the report: an ordered list of subsections.
type Section struct {
	Tab         ResultTab    `json:"tab"`
	Subsections []Subsection `json:"subsections"`
}

// Subsection is a named group of items inside a section.
type Subsection struct {
	Key   string `json:"key"`
	Items []Item `json:"items"`
}

// Item is the uniform record used by every section.
// Which optional fields are set depends on the section; renderers only
// show the fields that are present.
type Item struct {
	// Name is the item name, or the label for label/value items.
	Name        string `json:"name"`
	Value       string `json:"value,omitempty"`
	Description string `json:"description,omitempty"`
	Status      Status `json:"status,omitempty"`

	Icon     string `json:"icon,omitempty"`
	Version  string `json:"version,omitempty"`
	Type     string `json:"type,omitempty"`
	Method   string `json:"method,omitempty"`
	Key      string `json:"key,omitempty"`
	Protocol string `json:"protocol,omitempty"`
	Service  string `json:"service,omitempty"`
	Size     string `json:"size,omitempty"`
	Format   string `json:"format,omitempty"`
	Variants string `json:"variants,omitempty"`
	Domain   string `json:"domain,omitempty"`
}

// Code holds the three generated source samples.
type Code struct {
	HTML string `json:"html"`
	CSS  string `json:"css"`
	JS   string `json:"js"`
}

// Get returns the sample for the given code type.
// Unknown types yield an empty string.
func (c Code) Get(t CodeType) string {
	switch t {
	case CodeHTML:
		return c.HTML
	case CodeCSS:
		return c.CSS
	case CodeJS:
		return c.JS
	default:
		return ""
	}
}

// sectionLayout is the fixed subsection order of every section.
var sectionLayout = []struct {
	tab  ResultTab
	keys []string
}{
	{TabTechnology, []string{"frontend", "backend", "cloud", "analytics"}},
	{TabServer, []string{"server", "dns", "ssl", "cdn"}},
	{TabSecurity, []string{"headers", "vulnerabilities", "privacy", "trackers"}},
	{TabPerformance, []string{"loadTimes", "resourceSizes", "mobile", "optimization"}},
	{TabSEO, []string{"metaTags", "contentStructure", "links", "schema"}},
	{TabAPIs, []string{"endpoints", "keys", "social", "realtime"}},
	{TabAssets, []string{"images", "scripts", "fonts", "external"}},
}

// SectionTabs returns the tabs backed by a Section, in display order.
// Overview and code are not sections.
func SectionTabs() []ResultTab {
	tabs := make([]ResultTab, 0, len(sectionLayout))
	for _, l := range sectionLayout {
		tabs = append(tabs, l.tab)
	}
	return tabs
}

// SubsectionKeys returns the fixed subsection keys of a section tab.
// It returns nil for overview, code and unknown tabs.
func SubsectionKeys(tab ResultTab) []string {
	for _, l := range sectionLayout {
		if l.tab == tab {
			return slices.Clone(l.keys)
		}
	}
	return nil
}

// NewSection creates a section with empty subsections for every fixed key.
func NewSection(tab ResultTab) Section {
	keys := SubsectionKeys(tab)
	s := Section{Tab: tab, Subsections: make([]Subsection, 0, len(keys))}
	for _, k := range keys {
		s.Subsections = append(s.Subsections, Subsection{Key: k})
	}
	return s
}

// Set replaces the items of the subsection with the given key.
// It returns false when the key is not part of the section.
func (s *Section) Set(key string, items ...Item) bool {
	for i := range s.Subsections {
		if s.Subsections[i].Key == key {
			s.Subsections[i].Items = items
			return true
		}
	}
	return false
}

// Subsection returns the subsection with the given key.
func (s Section) Subsection(key string) (Subsection, bool) {
	for _, sub := range s.Subsections {
		if sub.Key == key {
			return sub, true
		}
	}
	return Subsection{}, false
}

// Keys returns the subsection keys in order.
func (s Section) Keys() []string {
	keys := make([]string, 0, len(s.Subsections))
	for _, sub := range s.Subsections {
		keys = append(keys, sub.Key)
	}
	return keys
}

// ItemCount returns the number of items across all subsections.
func (s Section) ItemCount() int {
	n := 0
	for _, sub := range s.Subsections {
		n += len(sub.Items)
	}
	return n
}

// Sections returns the seven item sections in display order.
func (r *Report) Sections() []Section {
	return []Section{r.Technology, r.Server, r.Security, r.Performance, r.SEO, r.APIs, r.Assets}
}

// Section returns the section shown on the given tab.
// Overview and code have no section and return false.
func (r *Report) Section(tab ResultTab) (Section, bool) {
	switch tab {
	case TabTechnology:
		return r.Technology, true
	case TabServer:
		return r.Server, true
	case TabSecurity:
		return r.Security, true
	case TabPerformance:
		return r.Performance, true
	case TabSEO:
		return r.SEO, true
	case TabAPIs:
		return r.APIs, true
	case TabAssets:
		return r.Assets, true
	default:
		return Section{}, false
	}
}

// CheckShape verifies that every section carries its fixed subsection keys
// in order and that all status tags are known.
func (r *Report) CheckShape() error {
	for _, l := range sectionLayout {
		s, _ := r.Section(l.tab)
		if s.Tab != l.tab {
			return fmt.Errorf("%w: section %q is tagged %q", ErrReportShape, l.tab, s.Tab)
		}
		if !slices.Equal(s.Keys(), l.keys) {
			return fmt.Errorf("%w: section %q has keys %v, want %v", ErrReportShape, l.tab, s.Keys(), l.keys)
		}
		for _, sub := range s.Subsections {
			for _, item := range sub.Items {
				if !item.Status.IsValid() {
					return fmt.Errorf("%w: %s/%s item %q has unknown status %q",
						ErrReportShape, l.tab, sub.Key, item.Name, item.Status)
				}
			}
		}
	}
	return nil
}

// ComputeDigest calculates and sets the SHA3-256 digest of the code samples.
// The digest identifies the generated content independently of the timestamp.
func (r *Report) ComputeDigest() {
	h := sha3.New256()
	for _, part := range []string{r.Code.HTML, r.Code.CSS, r.Code.JS} {
		h.Write([]byte(part))
		h.Write([]byte{0})
	}
	r.Digest = hex.EncodeToString(h.Sum(nil))
}

// Summary counts report items by status tag and tone.
type Summary struct {
	Total    int            `json:"total"`
	Positive int            `json:"positive"`
	Caution  int            `json:"caution"`
	Negative int            `json:"negative"`
	Neutral  int            `json:"neutral"`
	ByStatus map[Status]int `json:"by_status"`
}

// Summarize counts the items of every section.
// Untagged items (server info) count as neutral but are not in ByStatus.
func (r *Report) Summarize() Summary {
	sum := Summary{ByStatus: make(map[Status]int)}
	for _, s := range r.Sections() {
		for _, sub := range s.Subsections {
			for _, item := range sub.Items {
				sum.Total++
				if item.Status != "" {
					sum.ByStatus[item.Status]++
				}
				switch item.Status.Tone() {
				case TonePositive:
					sum.Positive++
				case ToneCaution:
					sum.Caution++
				case ToneNegative:
					sum.Negative++
				default:
					sum.Neutral++
				}
			}
		}
	}
	return sum
}
