package ui

import (
	"fmt"
	"image/color"
	"os"
	"sort"
	"strconv"
	"strings"

	"charm.land/lipgloss/v2"
	"gopkg.in/yaml.v3"
)

// Theme defines the colors used for tokens, the dropdown, and the status
// line. Host apps can supply their own theme or pick a preset by name.
// Selection and dropdown highlight always render with inverse video rather
// than theme colors so they stay visible in every preset and in no-color
// mode.
type Theme struct {
	FieldColor       color.Color // field token text
	OperatorColor    color.Color // operator token text
	ValueColor       color.Color // value token text
	ConnectorColor   color.Color // connector token text
	PromptColor      color.Color // input prompt marker
	SuggestionColor  color.Color // dropdown labels
	DescriptionColor color.Color // dropdown descriptions and group names
	StatusColor      color.Color // normal status line text
	ErrorColor       color.Color // error status line text
}

// DefaultTheme returns the dark preset.
func DefaultTheme() Theme {
	return darkTheme()
}

func darkTheme() Theme {
	return Theme{
		FieldColor:       lipgloss.Color("81"),  // cyan fields for contrast
		OperatorColor:    lipgloss.Color("215"), // sandy operators
		ValueColor:       lipgloss.Color("252"), // bright values
		ConnectorColor:   lipgloss.Color("140"), // muted violet connectors
		PromptColor:      lipgloss.Color("81"),  // match accent
		SuggestionColor:  lipgloss.Color("250"),
		DescriptionColor: lipgloss.Color("244"), // muted descriptions
		StatusColor:      lipgloss.Color("114"), // mint status
		ErrorColor:       lipgloss.Color("203"), // softer red for errors
	}
}

func lightTheme() Theme {
	return Theme{
		FieldColor:       lipgloss.Color("25"),  // deep blue fields
		OperatorColor:    lipgloss.Color("130"), // brown operators
		ValueColor:       lipgloss.Color("235"), // near-black values
		ConnectorColor:   lipgloss.Color("90"),  // plum connectors
		PromptColor:      lipgloss.Color("25"),
		SuggestionColor:  lipgloss.Color("236"),
		DescriptionColor: lipgloss.Color("245"),
		StatusColor:      lipgloss.Color("28"), // green status
		ErrorColor:       lipgloss.Color("124"),
	}
}

// monoTheme carries no colors at all. Selection stays visible through the
// inverse-video rendering shared by every theme.
func monoTheme() Theme {
	return Theme{}
}

func themePresets() map[string]Theme {
	return map[string]Theme{
		"dark":  darkTheme(),
		"light": lightTheme(),
		"mono":  monoTheme(),
	}
}

// ThemeByName returns a preset theme and true, or a zero Theme and false when
// the name is not a known preset.
func ThemeByName(name string) (Theme, bool) {
	th, ok := themePresets()[strings.ToLower(strings.TrimSpace(name))]
	return th, ok
}

// AvailableThemeNames returns a comma-separated list of preset names.
func AvailableThemeNames() string {
	presets := themePresets()
	names := make([]string, 0, len(presets))
	for name := range presets {
		names = append(names, name)
	}
	sort.Strings(names)
	return strings.Join(names, ", ")
}

// ColorValue stores a color token (number or name) and marshals numerics as
// YAML ints.
type ColorValue string

func (c ColorValue) MarshalYAML() (interface{}, error) {
	if c == "" {
		return "", nil
	}
	s := string(c)
	if _, err := strconv.Atoi(s); err == nil {
		return &yaml.Node{
			Kind:  yaml.ScalarNode,
			Tag:   "!!int",
			Value: s,
		}, nil
	}
	return s, nil
}

func (c *ColorValue) UnmarshalYAML(value *yaml.Node) error {
	if value == nil {
		*c = ""
		return nil
	}
	// Accept both ints and strings; store the literal value.
	*c = ColorValue(value.Value)
	return nil
}

// ThemeConfig is a YAML-friendly theme (colors accept ints or strings).
// Unset fields inherit from the base preset.
type ThemeConfig struct {
	Base             string     `yaml:"base,omitempty" yamlcomment:"Preset to inherit from (dark|light|mono)"`
	FieldColor       ColorValue `yaml:"field_color,omitempty" yamlcomment:"Field token color"`
	OperatorColor    ColorValue `yaml:"operator_color,omitempty" yamlcomment:"Operator token color"`
	ValueColor       ColorValue `yaml:"value_color,omitempty" yamlcomment:"Value token color"`
	ConnectorColor   ColorValue `yaml:"connector_color,omitempty" yamlcomment:"Connector token color"`
	PromptColor      ColorValue `yaml:"prompt_color,omitempty" yamlcomment:"Input prompt color"`
	SuggestionColor  ColorValue `yaml:"suggestion_color,omitempty" yamlcomment:"Dropdown label color"`
	DescriptionColor ColorValue `yaml:"description_color,omitempty" yamlcomment:"Dropdown description color"`
	StatusColor      ColorValue `yaml:"status_color,omitempty" yamlcomment:"Status line color"`
	ErrorColor       ColorValue `yaml:"error_color,omitempty" yamlcomment:"Status error color"`
}

// ThemeFromConfig builds a Theme from a ThemeConfig, filling unset fields
// from the config's base preset (dark when unnamed).
func ThemeFromConfig(cfg ThemeConfig) Theme {
	base, ok := ThemeByName(cfg.Base)
	if !ok {
		base = DefaultTheme()
	}
	th := base
	set := func(val ColorValue, dst *color.Color) {
		if val != "" {
			*dst = lipgloss.Color(string(val))
		}
	}
	set(cfg.FieldColor, &th.FieldColor)
	set(cfg.OperatorColor, &th.OperatorColor)
	set(cfg.ValueColor, &th.ValueColor)
	set(cfg.ConnectorColor, &th.ConnectorColor)
	set(cfg.PromptColor, &th.PromptColor)
	set(cfg.SuggestionColor, &th.SuggestionColor)
	set(cfg.DescriptionColor, &th.DescriptionColor)
	set(cfg.StatusColor, &th.StatusColor)
	set(cfg.ErrorColor, &th.ErrorColor)
	return th
}

// LoadThemeFile reads a YAML theme file and returns a Theme.
func LoadThemeFile(path string) (Theme, error) {
	var cfg ThemeConfig
	data, err := os.ReadFile(path)
	if err != nil {
		return Theme{}, err
	}
	if err := yaml.Unmarshal(data, &cfg); err != nil {
		return Theme{}, fmt.Errorf("parse theme %s: %w", path, err)
	}
	return ThemeFromConfig(cfg), nil
}

// ResolveTheme interprets name as a preset name first and a YAML theme file
// path second. An empty name yields the default theme.
func ResolveTheme(name string) (Theme, error) {
	if strings.TrimSpace(name) == "" {
		return DefaultTheme(), nil
	}
	if th, ok := ThemeByName(name); ok {
		return th, nil
	}
	if _, err := os.Stat(name); err == nil {
		return LoadThemeFile(name)
	}
	return Theme{}, fmt.Errorf("unknown theme %q (available: %s)", name, AvailableThemeNames())
}

func fgStyle(c color.Color, noColor bool) lipgloss.Style {
	s := lipgloss.NewStyle()
	if noColor || c == nil {
		return s
	}
	return s.Foreground(c)
}
