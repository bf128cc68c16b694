package config

import (
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"git.home.luguber.info/inful/sitekit/internal/foundation/errors"
	"git.home.luguber.info/inful/sitekit/internal/processors"
	"git.home.luguber.info/inful/sitekit/internal/retry"
)

const sample = `
source: ./site
clean_urls: true
processors:
  minify-html:
  markdown: {}
  template:
  image: {max_width: 800}
  canonicalize: {root: "${SITEKIT_TEST_ROOT}"}
context:
  site_name: Example
  nav: [home, blog]
kits:
  - source: https://git.example.com/kits/base.git
    ref: main
  - name: icons
    source: ./kits/icons
    mount: /assets/../icons/
`

func TestParse_FullConfig(t *testing.T) {
	t.Setenv("SITEKIT_TEST_ROOT", "https://example.com")

	cfg, err := Parse([]byte(sample))
	require.NoError(t, err)

	assert.Equal(t, "./site", cfg.Source)
	assert.Equal(t, DefaultTarget, cfg.Target)
	assert.True(t, cfg.CleanURLs)

	kinds := make([]processors.Kind, 0)
	for _, p := range cfg.Processors {
		kinds = append(kinds, p.Kind)
	}
	assert.Equal(t, []processors.Kind{
		processors.KindMinifyHTML, processors.KindMarkdown, processors.KindTemplate,
		processors.KindImage, processors.KindCanonicalize,
	}, kinds, "document order is kept")

	img, ok := cfg.Processors.Get(processors.KindImage)
	require.True(t, ok)
	assert.Equal(t, 800, img.Options.MaxWidth)
	canon, _ := cfg.Processors.Get(processors.KindCanonicalize)
	assert.Equal(t, "https://example.com", canon.Options.Root)

	seeds, err := cfg.Context.Table()
	require.NoError(t, err)
	assert.Equal(t, []string{"site_name", "nav"}, seeds.Keys())

	require.Len(t, cfg.Kits, 2)
	assert.Equal(t, "base", cfg.Kits[0].Name)
	assert.Equal(t, "base", cfg.Kits[0].Mount)
	assert.Equal(t, "icons", cfg.Kits[1].Mount)

	plan, err := cfg.Plan()
	require.NoError(t, err)
	assert.Equal(t, "https://example.com/", plan.CanonicalRoot)
	require.Len(t, plan.Transform, 3)
	assert.Equal(t, processors.KindTemplate, plan.Transform[0].Kind)
}

func TestParse_Defaults(t *testing.T) {
	cfg, err := Parse([]byte("processors:\n  template: {}\n"))
	require.NoError(t, err)
	assert.Equal(t, DefaultSource, cfg.Source)
	assert.Equal(t, DefaultTarget, cfg.Target)
	assert.False(t, cfg.CleanURLs)
	assert.True(t, cfg.Context.IsZero())

	seeds, err := cfg.Context.Table()
	require.NoError(t, err)
	assert.Equal(t, 0, seeds.Len())
}

func TestParse_KitRetry(t *testing.T) {
	cfg, err := Parse([]byte("kit_retry:\n  mode: exponential\n  initial: 50ms\n  max: 2s\n  max_retries: 4\n"))
	require.NoError(t, err)
	assert.Equal(t, retry.Policy{
		Mode: retry.Exponential, Initial: 50 * time.Millisecond, Max: 2 * time.Second, MaxRetries: 4,
	}, cfg.RetryPolicy())

	cfg, err = Parse([]byte("kit_retry: {max_retries: 0}\n"))
	require.NoError(t, err)
	assert.Equal(t, 0, cfg.RetryPolicy().MaxRetries)
	assert.Equal(t, retry.Linear, cfg.RetryPolicy().Mode)

	cfg, err = Parse([]byte("processors:\n  template: {}\n"))
	require.NoError(t, err)
	assert.Equal(t, retry.DefaultPolicy(), cfg.RetryPolicy())
}

func TestParse_Errors(t *testing.T) {
	tests := []struct {
		name     string
		yaml     string
		category errors.ErrorCategory
	}{
		{"unknown processor", "processors:\n  sass: {}\n", errors.CategoryConfig},
		{"processors not a mapping", "processors: [template]\n", errors.CategoryConfig},
		{"canonicalize without root", "processors:\n  canonicalize: {}\n", errors.CategoryValidation},
		{"duplicate processor", "processors:\n  template: {}\n  template: {}\n", errors.CategoryValidation},
		{"negative image bounds", "processors:\n  image: {max_width: -1}\n", errors.CategoryValidation},
		{"kit without source", "kits:\n  - name: x\n", errors.CategoryValidation},
		{"duplicate kit", "kits:\n  - source: a/x\n  - source: b/x\n", errors.CategoryValidation},
		{"bad seeds", "context: [a, b]\n", errors.CategoryValidation},
		{"unknown retry mode", "kit_retry: {mode: random}\n", errors.CategoryValidation},
		{"negative retry delay", "kit_retry: {initial: -1s}\n", errors.CategoryValidation},
		{"negative max retries", "kit_retry: {max_retries: -1}\n", errors.CategoryValidation},
		{"bad retry duration", "kit_retry: {initial: soon}\n", errors.CategoryConfig},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.yaml))
			require.Error(t, err)
			assert.Equal(t, tt.category, errors.GetCategory(err))
		})
	}
}

func TestLoad_MissingFile(t *testing.T) {
	_, err := Load(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)
	assert.Equal(t, errors.CategoryConfig, errors.GetCategory(err))
}

func TestInit_WritesLoadableConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), DefaultPath)
	require.NoError(t, Init(path, false))

	cfg, err := Load(path)
	require.NoError(t, err)
	assert.True(t, cfg.Processors.Has(processors.KindPattern))
	assert.True(t, cfg.Processors.Has(processors.KindCanonicalize))
	assert.Equal(t, processors.KindTemplate, cfg.Processors[0].Kind)
	seeds, err := cfg.Context.Table()
	require.NoError(t, err)
	name, _ := seeds.Text("site_name")
	assert.Equal(t, "My Site", name)
	assert.Equal(t, retry.DefaultPolicy(), cfg.RetryPolicy())

	err = Init(path, false)
	require.Error(t, err)
	assert.Equal(t, errors.CategoryValidation, errors.GetCategory(err))
	require.NoError(t, Init(path, true))
}

func TestLoad_ReadsDotEnv(t *testing.T) {
	dir := t.TempDir()
	t.Chdir(dir)
	require.NoError(t, os.WriteFile(".env", []byte("SITEKIT_TEST_TARGET=./out\n"), 0o600))
	require.NoError(t, os.WriteFile(DefaultPath, []byte("target: ${SITEKIT_TEST_TARGET}\n"), 0o600))
	t.Cleanup(func() { _ = os.Unsetenv("SITEKIT_TEST_TARGET") })

	cfg, err := Load(DefaultPath)
	require.NoError(t, err)
	assert.Equal(t, "./out", cfg.Target)
}

func TestKitName(t *testing.T) {
	assert.Equal(t, "base", kitName("https://git.example.com/kits/base.git"))
	assert.Equal(t, "icons", kitName("./kits/icons/"))
	assert.Equal(t, "repo", kitName("git@example.com:repo.git"))
}
