package cli

import (
	"context"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/spf13/viper"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"

	"github.com/ppiankov/savoir/internal/ingest"
	"github.com/ppiankov/savoir/internal/model"
)

func newTestViper(t *testing.T) *viper.Viper {
	t.Helper()
	v := viper.New()
	v.SetEnvPrefix("SAVOIR")
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_"))
	v.AutomaticEnv()
	require.NoError(t, registerDefaults(v))
	return v
}

func TestLoadConfigDefaults(t *testing.T) {
	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, model.DefaultConfig(), cfg)
}

func TestLoadConfigEnv(t *testing.T) {
	t.Setenv("SAVOIR_REVISION_MAX_DOCS", "5")
	t.Setenv("SAVOIR_HTTP_TIMEOUT", "3s")
	t.Setenv("SAVOIR_CACHE_DIR", "/tmp/savoir-cache")
	t.Setenv("SAVOIR_LLM_PROVIDER", "ollama")
	t.Setenv("OLLAMA_BASE_URL", "http://gpu:11434")

	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)

	assert.Equal(t, 5, cfg.Revision.MaxDocs)
	assert.Equal(t, 3*time.Second, cfg.HTTP.Timeout)
	assert.Equal(t, "/tmp/savoir-cache", cfg.Cache.Dir)
	assert.Equal(t, "ollama", cfg.LLM.Provider)
	assert.Equal(t, "http://gpu:11434", cfg.LLM.BaseURL)
}

func TestLoadConfigProviderKey(t *testing.T) {
	t.Setenv("SAVOIR_LLM_PROVIDER", "openai")
	t.Setenv("OPENAI_API_KEY", "")

	_, err := loadConfig(newTestViper(t))
	require.Error(t, err)

	t.Setenv("OPENAI_API_KEY", "sk-test")
	cfg, err := loadConfig(newTestViper(t))
	require.NoError(t, err)
	assert.Equal(t, "sk-test", cfg.LLM.APIKey)
}

func TestLoadConfigFile(t *testing.T) {
	path := filepath.Join(t.TempDir(), "config.yaml")
	require.NoError(t, os.WriteFile(path, []byte("summary:\n  max_sentences: 4\nrevision:\n  wikipedia_lang: en\n"), 0o644))

	v := newTestViper(t)
	v.SetConfigFile(path)
	require.NoError(t, v.ReadInConfig())

	cfg, err := loadConfig(v)
	require.NoError(t, err)
	assert.Equal(t, 4, cfg.Summary.MaxSentences)
	assert.Equal(t, "en", cfg.Revision.WikipediaLang)
	assert.Equal(t, 8, cfg.Revision.MaxDocs, "unset keys keep their default")
}

func TestWriteDefaultConfig(t *testing.T) {
	path := filepath.Join(t.TempDir(), ".savoir", "config.yaml")
	require.NoError(t, writeDefaultConfig(path))

	data, err := os.ReadFile(path)
	require.NoError(t, err)

	var cfg model.Config
	require.NoError(t, yaml.Unmarshal(data, &cfg))
	assert.Equal(t, *model.DefaultConfig(), cfg)

	assert.Error(t, writeDefaultConfig(path), "existing file is not overwritten")
}

func TestParseID(t *testing.T) {
	id, err := parseID("42")
	require.NoError(t, err)
	assert.Equal(t, int64(42), id)

	for _, bad := range []string{"0", "-3", "abc"} {
		_, err := parseID(bad)
		assert.Error(t, err, bad)
	}
}

func TestAppEndToEnd(t *testing.T) {
	cfg := model.DefaultConfig()
	cfg.Data.Dir = t.TempDir()
	cfg.Cache.Enabled = false
	cfg.Revision.LookupTimeout = 10 * time.Millisecond
	cfg.Revision.WikipediaLang = "invalid host"

	a, err := newApp(cfg)
	require.NoError(t, err)
	defer func() { _ = a.Close() }()
	assert.False(t, a.bullets.IsEnabled())

	ctx := context.Background()
	doc, err := ingest.Text("The industrial revolution began in England.\nFactories spread across Europe.", "")
	require.NoError(t, err)

	id, err := a.addDocument(ctx, doc)
	require.NoError(t, err)

	summary, err := a.service.BuildSummary(ctx, id, cfg.Summary.MaxSentences)
	require.NoError(t, err)
	assert.Contains(t, summary, "industrial revolution")

	sheet, err := a.service.GenerateRevisionSheet(ctx, "revolution")
	require.NoError(t, err)
	require.NotNil(t, sheet)
	assert.Equal(t, []string{doc.Title}, sheet.Sheet.Sources)
	assert.Len(t, sheet.Sheet.Bibliography, 3, "unreachable lookup yields placeholders")
}
