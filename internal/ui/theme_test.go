package ui

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"charm.land/lipgloss/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func TestThemeByName(t *testing.T) {
	for _, name := range []string{"dark", "light", "mono"} {
		_, ok := ThemeByName(name)
		assert.True(t, ok, "preset %q", name)
	}

	// Lookup is forgiving about case and whitespace.
	th, ok := ThemeByName("  Dark ")
	assert.True(t, ok)
	assert.Equal(t, darkTheme(), th)

	_, ok = ThemeByName("solarized")
	assert.False(t, ok)
}

func TestAvailableThemeNames(t *testing.T) {
	assert.Equal(t, "dark, light, mono", AvailableThemeNames())
}

func TestMonoThemeHasNoColors(t *testing.T) {
	th := monoTheme()
	assert.Nil(t, th.FieldColor)
	assert.Nil(t, th.ErrorColor)

	// A colorless style renders text untouched.
	st := fgStyle(th.FieldColor, false)
	assert.Equal(t, "plain", st.Render("plain"))
}

func TestThemeFromConfigInheritsBase(t *testing.T) {
	th := ThemeFromConfig(ThemeConfig{
		Base:       "light",
		FieldColor: "201",
	})

	assert.Equal(t, lipgloss.Color("201"), th.FieldColor, "override applies")
	assert.Equal(t, lightTheme().StatusColor, th.StatusColor, "unset fields inherit")

	// Unknown base falls back to the default preset.
	th = ThemeFromConfig(ThemeConfig{Base: "nope"})
	assert.Equal(t, DefaultTheme(), th)
}

func TestColorValueYAML(t *testing.T) {
	var cfg ThemeConfig
	src := "base: dark\nfield_color: 33\nvalue_color: \"#ff00ff\"\n"
	require.NoError(t, yaml.Unmarshal([]byte(src), &cfg))
	assert.Equal(t, ColorValue("33"), cfg.FieldColor)
	assert.Equal(t, ColorValue("#ff00ff"), cfg.ValueColor)

	// Numeric colors marshal back as YAML ints, not quoted strings.
	out, err := yaml.Marshal(cfg)
	require.NoError(t, err)
	assert.Contains(t, string(out), "field_color: 33")
	assert.NotContains(t, string(out), `field_color: "33"`)
}

func TestLoadThemeFile(t *testing.T) {
	dir := t.TempDir()
	path := filepath.Join(dir, "theme.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base: mono\nerror_color: 196\n"), 0o644))

	th, err := LoadThemeFile(path)
	require.NoError(t, err)
	assert.Equal(t, lipgloss.Color("196"), th.ErrorColor)
	assert.Nil(t, th.FieldColor, "mono base stays colorless")

	_, err = LoadThemeFile(filepath.Join(dir, "missing.yaml"))
	assert.Error(t, err)

	bad := filepath.Join(dir, "bad.yaml")
	require.NoError(t, os.WriteFile(bad, []byte(":\n  - ["), 0o644))
	_, err = LoadThemeFile(bad)
	assert.Error(t, err)
}

func TestResolveTheme(t *testing.T) {
	th, err := ResolveTheme("")
	require.NoError(t, err)
	assert.Equal(t, DefaultTheme(), th)

	th, err = ResolveTheme("light")
	require.NoError(t, err)
	assert.Equal(t, lightTheme(), th)

	dir := t.TempDir()
	path := filepath.Join(dir, "custom.yaml")
	require.NoError(t, os.WriteFile(path, []byte("base: dark\nprompt_color: 99\n"), 0o644))
	th, err = ResolveTheme(path)
	require.NoError(t, err)
	assert.Equal(t, lipgloss.Color("99"), th.PromptColor)

	_, err = ResolveTheme("no-such-theme")
	require.Error(t, err)
	assert.True(t, strings.Contains(err.Error(), "dark, light, mono"), "error lists the presets: %v", err)
}
