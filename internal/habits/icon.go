package habits

import (
	"fmt"
	"sort"
	"strings"

	"github.com/marcus/habitchain/internal/suggest"
)

// Library is an icon set a habit icon is chosen from.
type Library string

const (
	FontAwesome5  Library = "FontAwesome5"
	Ionicons      Library = "Ionicons"
	Feather       Library = "Feather"
	MaterialIcons Library = "MaterialIcons"
)

// DefaultIcon is preselected in the add-habit form.
var DefaultIcon = Icon{Library: FontAwesome5, Name: "running"}

// glyphs maps each library's supported icon names to a terminal glyph.
var glyphs = map[Library]map[string]string{
	FontAwesome5: {
		"running":  "🏃",
		"book":     "📖",
		"dumbbell": "🏋",
		"store":    "🏪",
		"bicycle":  "🚲",
		"swimmer":  "🏊",
		"heart":    "❤",
		"bed":      "🛏",
	},
	Ionicons: {
		"walk":                     "🚶",
		"water":                    "💧",
		"moon":                     "🌙",
		"leaf":                     "🍃",
		"checkmark-circle-outline": "✅",
	},
	Feather: {
		"book-open": "📖",
		"coffee":    "☕",
		"sun":       "☀",
		"droplet":   "💧",
		"activity":  "📈",
	},
	MaterialIcons: {
		"home":             "🏠",
		"self-improvement": "🧘",
		"fitness-center":   "🏋",
		"local-drink":      "🥤",
		"event":            "🗓",
	},
}

// Icon identifies an icon by library and name.
type Icon struct {
	Library Library `yaml:"library"`
	Name    string  `yaml:"name"`
}

// Glyph returns the terminal rendering of the icon, or "•" when the icon
// is not supported.
func (i Icon) Glyph() string {
	if g, ok := glyphs[i.Library][i.Name]; ok {
		return g
	}
	return "•"
}

func (i Icon) String() string {
	return string(i.Library) + "/" + i.Name
}

// Libraries returns the supported libraries in display order.
func Libraries() []Library {
	return []Library{FontAwesome5, Ionicons, Feather, MaterialIcons}
}

// IconNames returns the icon names supported by lib, sorted.
func IconNames(lib Library) []string {
	names := make([]string, 0, len(glyphs[lib]))
	for n := range glyphs[lib] {
		names = append(names, n)
	}
	sort.Strings(names)
	return names
}

// ParseIcon validates a library and icon name pair.
func ParseIcon(lib, name string) (Icon, error) {
	l := Library(strings.TrimSpace(lib))
	set, ok := glyphs[l]
	if !ok {
		return Icon{}, fmt.Errorf("unknown icon library %q", lib)
	}
	name = strings.ToLower(strings.TrimSpace(name))
	if _, ok := set[name]; !ok {
		if near := suggest.Rank(name, IconNames(l), 3); len(near) > 0 {
			return Icon{}, fmt.Errorf("%s has no icon %q (did you mean %s?)", l, name, strings.Join(near, ", "))
		}
		return Icon{}, fmt.Errorf("%s has no icon %q", l, name)
	}
	return Icon{Library: l, Name: name}, nil
}
