package render

import (
	"slices"
	"testing"
	"time"

	"github.com/nao1215/sitescope/internal/model"
	"github.com/nao1215/sitescope/internal/synth"
)

func testReport(t *testing.T) *model.Report {
	t.Helper()
	s := synth.New(synth.WithClock(func() time.Time {
		return time.Date(2026, 5, 1, 12, 0, 0, 0, time.UTC)
	}))
	report, err := s.Synthesize(model.MustParseTarget("https://example.com"))
	if err != nil {
		t.Fatalf("Synthesize() = %v", err)
	}
	return report
}

func findGroup(t *testing.T, v View, containerID string) GroupView {
	t.Helper()
	for _, s := range v.Sections {
		for _, g := range s.Groups {
			if g.ContainerID == containerID {
				return g
			}
		}
	}
	t.Fatalf("group %q not found", containerID)
	return GroupView{}
}

func TestBuildView(t *testing.T) {
	t.Parallel()

	view := BuildView(testReport(t))

	t.Run("every container is covered", func(t *testing.T) {
		t.Parallel()
		var got []string
		got = append(got, view.Overview.ContainerID)
		for _, s := range view.Sections {
			for _, g := range s.Groups {
				got = append(got, g.ContainerID)
			}
		}
		got = append(got, CodeContainerID)
		if !slices.Equal(got, ContainerIDs()) {
			t.Errorf("containers = %v, want %v", got, ContainerIDs())
		}
		if len(got) != 30 {
			t.Errorf("expected 30 containers, got %d", len(got))
		}
	})

	t.Run("overview", func(t *testing.T) {
		t.Parallel()
		if view.Overview.LastAnalyzed != "2026-05-01 12:00:00 UTC" {
			t.Errorf("LastAnalyzed = %q", view.Overview.LastAnalyzed)
		}
		if view.Overview.Title != "example.com - Professional Website" {
			t.Errorf("Title = %q", view.Overview.Title)
		}
	})

	t.Run("technology shows versions with a v prefix", func(t *testing.T) {
		t.Parallel()
		g := findGroup(t, view, "frontend-tech")
		if g.Items[0].Version != "v18.2.0" {
			t.Errorf("Version = %q, want v18.2.0", g.Items[0].Version)
		}
		cloud := findGroup(t, view, "cloud-services")
		if cloud.Items[0].Version != "" {
			t.Errorf("cloud item should have no version, got %q", cloud.Items[0].Version)
		}
	})

	t.Run("server info has no status", func(t *testing.T) {
		t.Parallel()
		g := findGroup(t, view, "server-info")
		for _, it := range g.Items {
			if it.Status != "" {
				t.Errorf("%s has status %q", it.Name, it.Status)
			}
		}
		if g.Items[0].Description != "nginx/1.20.2" {
			t.Errorf("value = %q", g.Items[0].Description)
		}
	})

	t.Run("social api versions are not doubled", func(t *testing.T) {
		t.Parallel()
		g := findGroup(t, view, "social-apis")
		if g.Items[0].Version != "v18.0" {
			t.Errorf("Version = %q, want v18.0", g.Items[0].Version)
		}
	})

	t.Run("assets join present parts", func(t *testing.T) {
		t.Parallel()
		g := findGroup(t, view, "external-resources")
		if g.Items[0].Description != "Domain: fonts.googleapis.com" {
			t.Errorf("Description = %q", g.Items[0].Description)
		}
		images := findGroup(t, view, "images-media")
		if images.Items[0].Description != "Size: 245KB | Format: JPEG" {
			t.Errorf("Description = %q", images.Items[0].Description)
		}
	})

	t.Run("performance keeps value and label apart", func(t *testing.T) {
		t.Parallel()
		g := findGroup(t, view, "load-times")
		if g.Items[0].Value != "1.2s" || g.Items[0].Name != "First Contentful Paint" {
			t.Errorf("item = %+v", g.Items[0])
		}
		if g.Items[0].StatusClass != "status-good" {
			t.Errorf("StatusClass = %q", g.Items[0].StatusClass)
		}
	})
}

func TestVersionLabel(t *testing.T) {
	t.Parallel()

	tests := map[string]string{
		"":       "",
		"18.2.0": "v18.2.0",
		"v2":     "v2",
		"GA4":    "vGA4",
		"v":      "vv",
	}
	for in, want := range tests {
		if got := VersionLabel(in); got != want {
			t.Errorf("VersionLabel(%q) = %q, want %q", in, got, want)
		}
	}
}

func TestAssetDescription(t *testing.T) {
	t.Parallel()

	tests := []struct {
		name string
		item model.Item
		want string
	}{
		{"nothing", model.Item{Name: "x"}, ""},
		{"size only", model.Item{Size: "34KB"}, "Size: 34KB"},
		{"font", model.Item{Variants: "6 weights", Format: "WOFF2"}, "Format: WOFF2 | Variants: 6 weights"},
		{"script", model.Item{Size: "12KB", Type: "PWA"}, "Size: 12KB | Type: PWA"},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			t.Parallel()
			if got := AssetDescription(tt.item); got != tt.want {
				t.Errorf("AssetDescription() = %q, want %q", got, tt.want)
			}
		})
	}
}

func TestFormatTimestamp(t *testing.T) {
	t.Parallel()

	if FormatTimestamp(time.Time{}) != "" {
		t.Error("zero time should format as empty")
	}
}
