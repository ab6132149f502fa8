package config

import (
	"bytes"
	"os"
	"path/filepath"
	"strings"

	"github.com/joho/godotenv"
	"github.com/spf13/viper"

	"github.com/agentstation/bibsync/pkg/constants"
	"github.com/agentstation/bibsync/pkg/errors"
)

// EnvPrefix prefixes environment variables that override config keys,
// e.g. BIBSYNC_DATABASES_ARTICLES.
const EnvPrefix = "BIBSYNC"

// TokenEnv lists the environment variables holding the Notion token, in
// order of precedence.
var TokenEnv = []string{"NOTION_INTEGRATION_TOKEN", "NOTION_TOKEN", "TOKEN"}

type loader struct {
	file     string
	token    string
	envFiles []string
	search   []string
}

// Option configures Load.
type Option func(*loader)

// WithFile reads path instead of searching for a config file. The file
// must exist.
func WithFile(path string) Option {
	return func(l *loader) {
		l.file = path
	}
}

// WithToken overrides the token found in the environment.
func WithToken(token string) Option {
	return func(l *loader) {
		l.token = token
	}
}

// WithEnvFiles replaces the .env files loaded before the environment is
// read. Earlier files take precedence.
func WithEnvFiles(files ...string) Option {
	return func(l *loader) {
		l.envFiles = files
	}
}

// WithSearchPaths replaces the locations searched for a config file.
func WithSearchPaths(paths ...string) Option {
	return func(l *loader) {
		l.search = paths
	}
}

// SearchPaths returns the default config file locations in search order.
func SearchPaths() []string {
	paths := []string{"bibsync.yaml", "config.yaml"}
	if p, err := UserPath(); err == nil {
		paths = append(paths, p)
	}
	return paths
}

// UserPath returns the per user config file, which `config init` writes.
func UserPath() (string, error) {
	dir, err := os.UserConfigDir()
	if err != nil {
		return "", errors.WrapIO("locate", "user config directory", err)
	}
	return filepath.Join(dir, constants.AppName, "config.yaml"), nil
}

// Load reads the configuration. It does not validate it; call
// Config.Validate before using it for a sync run.
func Load(opts ...Option) (*Config, error) {
	l := &loader{
		envFiles: []string{".env.local", ".env"},
		search:   SearchPaths(),
	}
	for _, opt := range opts {
		opt(l)
	}

	loadEnvFiles(l.envFiles)

	v := viper.New()
	v.SetConfigType("yaml")
	if err := v.ReadConfig(bytes.NewReader(defaultYAML)); err != nil {
		return nil, errors.WrapParse("yaml", "defaults.yaml", err)
	}

	v.SetEnvPrefix(EnvPrefix)
	v.SetEnvKeyReplacer(strings.NewReplacer(".", "_", "-", "_"))
	v.AutomaticEnv()
	if err := v.BindEnv(append([]string{"token"}, TokenEnv...)...); err != nil {
		return nil, errors.WrapResource("bind", "environment", "token", err)
	}

	path, err := l.locate()
	if err != nil {
		return nil, err
	}
	if path != "" {
		v.SetConfigFile(path)
		if err := v.MergeInConfig(); err != nil {
			return nil, errors.WrapParse("yaml", path, err)
		}
	}

	cfg := &Config{}
	if err := v.Unmarshal(cfg); err != nil {
		return nil, errors.WrapParse("yaml", path, err)
	}
	cfg.File = path
	if l.token != "" {
		cfg.Token = l.token
	}
	cfg.Token = strings.TrimSpace(cfg.Token)
	return cfg, nil
}

// locate returns the config file to read, or "" when there is none.
func (l *loader) locate() (string, error) {
	if l.file != "" {
		if _, err := os.Stat(l.file); err != nil {
			return "", errors.WrapIO("read", l.file, err)
		}
		return l.file, nil
	}
	for _, p := range l.search {
		if info, err := os.Stat(p); err == nil && !info.IsDir() {
			return p, nil
		}
	}
	return "", nil
}

// loadEnvFiles loads environment variables from .env files. Variables that
// are already set are kept.
func loadEnvFiles(files []string) {
	for _, f := range files {
		_ = godotenv.Load(f)
	}
}
