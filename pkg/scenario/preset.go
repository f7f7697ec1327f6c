package scenario

import (
	"embed"
	"fmt"
	"io/fs"
	"path"
	"sort"
	"strings"

	"github.com/dd0wney/stratagem/pkg/validation"
)

//go:embed presets/*.yaml
var presets embed.FS

// Preset returns a built-in scenario by name ("small", "medium").
func Preset(name string) (*Scenario, error) {
	data, err := presets.ReadFile(path.Join("presets", name+".yaml"))
	if err != nil {
		return nil, validation.Errorf("preset", "unknown preset %q (available: %s)",
			name, strings.Join(PresetNames(), ", "))
	}
	s, err := Parse(data)
	if err != nil {
		return nil, fmt.Errorf("preset %s: %w", name, err)
	}
	return s, nil
}

// PresetNames lists the built-in scenarios in sorted order.
func PresetNames() []string {
	entries, err := fs.ReadDir(presets, "presets")
	if err != nil {
		return nil
	}
	names := make([]string, 0, len(entries))
	for _, e := range entries {
		names = append(names, strings.TrimSuffix(e.Name(), ".yaml"))
	}
	sort.Strings(names)
	return names
}
