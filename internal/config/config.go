// Package config loads bibsync configuration from YAML files, .env files
// and the environment.
//
// Values are layered: the defaults embedded in the binary, then the first
// config file found, then BIBSYNC_* environment variables. The Notion
// token is read from NOTION_INTEGRATION_TOKEN, NOTION_TOKEN or TOKEN.
package config

import (
	_ "embed"
	"time"

	"github.com/agentstation/bibsync/pkg/records"
)

//go:embed defaults.yaml
var defaultYAML []byte

// Default returns the embedded default configuration file.
func Default() []byte {
	return append([]byte(nil), defaultYAML...)
}

// Config is the complete bibsync configuration.
type Config struct {
	// File is the config file that was read, if any.
	File string `yaml:"-" mapstructure:"-"`
	// Token authenticates against Notion. It is never written out.
	Token string `yaml:"-" mapstructure:"token"`

	Databases     Databases     `yaml:"databases" mapstructure:"databases"`
	Status        Status        `yaml:"status" mapstructure:"status"`
	FieldsMethods FieldsMethods `yaml:"fields-methods" mapstructure:"fields-methods"`
	Topics        Topics        `yaml:"topics" mapstructure:"topics"`
	Folders       Folders       `yaml:"folders" mapstructure:"folders"`
	BibTeX        BibTeX        `yaml:"bibtex" mapstructure:"bibtex"`
	Matching      Matching      `yaml:"matching" mapstructure:"matching"`
	Properties    Properties    `yaml:"properties" mapstructure:"properties"`
	Notion        Notion        `yaml:"notion" mapstructure:"notion"`
}

// Databases holds references to the article and author databases.
type Databases struct {
	Articles string `yaml:"articles" mapstructure:"articles" validate:"required"`
	Authors  string `yaml:"authors" mapstructure:"authors"`
}

// Choice is a display name with an option color.
type Choice struct {
	Name  string `yaml:"name" mapstructure:"name" validate:"required"`
	Color string `yaml:"color,omitempty" mapstructure:"color"`
}

// Status configures status tags.
type Status struct {
	Prefix   string            `yaml:"prefix" mapstructure:"prefix"`
	Fallback Choice            `yaml:"fallback" mapstructure:"fallback"`
	States   map[string]Choice `yaml:"states" mapstructure:"states" validate:"dive"`
}

// FieldsMethods configures composite "field - method" tags.
type FieldsMethods struct {
	Delim   string            `yaml:"delim" mapstructure:"delim"`
	Fields  map[string]Choice `yaml:"fields" mapstructure:"fields" validate:"dive"`
	Methods map[string]Choice `yaml:"methods" mapstructure:"methods" validate:"dive"`
}

// Topics configures topic tags.
type Topics struct {
	Prefix string            `yaml:"prefix" mapstructure:"prefix"`
	Topics map[string]Choice `yaml:"topics" mapstructure:"topics" validate:"dive"`
}

// Folders configures folder path tags.
type Folders struct {
	Separator string `yaml:"separator" mapstructure:"separator"`
}

// BibTeX configures BibTeX field handling.
type BibTeX struct {
	Venues map[string]string `yaml:"venues" mapstructure:"venues"`
}

// Matching configures the matcher.
type Matching struct {
	Authors  int  `yaml:"authors" mapstructure:"authors" validate:"min=1,max=100"`
	Articles int  `yaml:"articles" mapstructure:"articles" validate:"min=1,max=100"`
	Strict   bool `yaml:"strict" mapstructure:"strict"`
}

// Properties renames schema fields to the property names used in Notion.
type Properties struct {
	Articles map[string]string `yaml:"articles" mapstructure:"articles"`
	Authors  map[string]string `yaml:"authors" mapstructure:"authors"`
}

// Names returns the renames for collections of kind.
func (p Properties) Names(kind records.EntryKind) map[string]string {
	if kind == records.KindAuthor {
		return p.Authors
	}
	return p.Articles
}

// Notion configures the API client.
type Notion struct {
	BaseURL   string        `yaml:"base_url" mapstructure:"base_url" validate:"omitempty,url"`
	Version   string        `yaml:"version" mapstructure:"version"`
	RateLimit float64       `yaml:"rate_limit" mapstructure:"rate_limit" validate:"gte=0"`
	Timeout   time.Duration `yaml:"timeout" mapstructure:"timeout" validate:"gte=0"`
	Retries   int           `yaml:"retries" mapstructure:"retries" validate:"gte=0,lte=10"`
}

// HasAuthors reports whether an author database is configured.
func (c *Config) HasAuthors() bool {
	return c.Databases.Authors != ""
}
