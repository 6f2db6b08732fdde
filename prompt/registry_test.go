package prompt

import (
	"strings"
	"testing"
)

// TestLoadRegistry tests that the embedded style table loads completely.
func TestLoadRegistry(t *testing.T) {
	registry, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}

	wantStyles := []string{
		"realistic", "anime", "oil-painting", "watercolor", "digital-art",
		"3d-render", "pixel-art", "concept-art", "abstract", "surreal",
	}
	for _, id := range wantStyles {
		style, ok := registry.Style(id)
		if !ok {
			t.Errorf("missing style %q", id)
			continue
		}
		if style.Name == "" {
			t.Errorf("style %q has no display name", id)
		}
		if len(style.Modifiers) == 0 {
			t.Errorf("style %q has no modifiers", id)
		}
		if style.NegativePrompt == "" {
			t.Errorf("style %q has no negative prompt", id)
		}
		if style.Settings.Steps <= 0 || style.Settings.CFGScale <= 0 {
			t.Errorf("style %q has invalid sampling settings: %+v", id, style.Settings)
		}
	}

	if got := len(registry.Styles()); got != len(wantStyles) {
		t.Errorf("Styles() returned %d entries, want %d", got, len(wantStyles))
	}
}

// TestLoadRegistry_StylesWithoutPhrases tests that abstract and surreal ship
// no enhancement phrases (the phrase step is skipped for them).
func TestLoadRegistry_StylesWithoutPhrases(t *testing.T) {
	registry, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}

	for _, id := range []string{"abstract", "surreal"} {
		style, ok := registry.Style(id)
		if !ok {
			t.Fatalf("missing style %q", id)
		}
		if len(style.EnhancementPhrases) != 0 {
			t.Errorf("style %q unexpectedly has enhancement phrases", id)
		}
	}
}

// TestNegativePrompt tests style lookup and the generic fallback.
func TestNegativePrompt(t *testing.T) {
	registry, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}

	tests := []struct {
		style       string
		wantContain string
	}{
		{"realistic", "cartoon"},
		{"anime", "realistic"},
		{"oil-painting", "photo"},
		{"no-such-style", DefaultNegativePrompt},
		{"", DefaultNegativePrompt},
	}

	for _, tt := range tests {
		t.Run(tt.style, func(t *testing.T) {
			got := registry.NegativePrompt(tt.style)
			if !strings.Contains(got, tt.wantContain) {
				t.Errorf("NegativePrompt(%q) = %q, want contains %q", tt.style, got, tt.wantContain)
			}
		})
	}
}

// TestPresets tests that the quick-start catalog loads.
func TestPresets(t *testing.T) {
	registry, err := LoadRegistry()
	if err != nil {
		t.Fatalf("LoadRegistry() error: %v", err)
	}

	presets := registry.Presets()
	for _, category := range []string{"portraits", "landscapes", "fantasy", "scifi"} {
		if len(presets[category]) == 0 {
			t.Errorf("preset category %q is empty", category)
		}
	}
}

// TestLoadRegistryFrom_Invalid tests rejection of malformed tables.
func TestLoadRegistryFrom_Invalid(t *testing.T) {
	tests := []struct {
		name string
		data string
	}{
		{"not yaml", ":::"},
		{"empty styles", "styles: []"},
		{"missing id", "styles:\n  - name: Foo"},
		{"duplicate id", "styles:\n  - id: a\n  - id: a"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			if _, err := loadRegistryFrom([]byte(tt.data)); err == nil {
				t.Error("expected error for malformed registry")
			}
		})
	}
}
