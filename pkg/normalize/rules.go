package normalize

import (
	"strings"

	"github.com/agentstation/bibsync/pkg/records"
	"github.com/kyokomi/emoji/v2"
)

// Rules are the configuration driven cosmetic transforms applied to tags.
type Rules struct {
	// Delimiter splits composite "field - method" tags.
	Delimiter string
	// Fields renames and colors the field half of composite tags.
	Fields map[string]records.Choice
	// Methods renames and colors the method half. A method without a color
	// takes its field's color.
	Methods map[string]records.Choice

	// StatusPrefix marks status tags, e.g. "status:unread".
	StatusPrefix string
	// States maps a status tag (prefix removed) to its display choice.
	States map[string]records.Choice
	// FallbackStatus is assigned when no status tag maps.
	FallbackStatus records.Choice

	// TopicPrefix marks topic tags, e.g. "topic:dl".
	TopicPrefix string
	// Topics renames topic tags (prefix removed).
	Topics map[string]records.Choice

	// FolderSeparator marks tags that are folder paths.
	FolderSeparator string

	// Venues maps an entry type to the raw field naming its venue.
	Venues map[string]string
}

// DefaultRules returns the rules used when configuration leaves them out.
func DefaultRules() Rules {
	return Rules{
		Delimiter:       " - ",
		Fields:          map[string]records.Choice{},
		Methods:         map[string]records.Choice{},
		StatusPrefix:    "status:",
		States:          map[string]records.Choice{},
		FallbackStatus:  records.Choice{Name: "Unknown", Color: records.ColorDefault},
		TopicPrefix:     "topic:",
		Topics:          map[string]records.Choice{},
		FolderSeparator: "/",
		Venues: map[string]string{
			"article":       "journal",
			"inproceedings": "booktitle",
			"incollection":  "booktitle",
			"inbook":        "booktitle",
			"phdthesis":     "school",
			"techreport":    "institution",
		},
	}
}

// prepared expands emoji shortcodes and validates colors in every
// configured display name.
func (r Rules) prepared() Rules {
	out := r
	out.Fields = prepareTable(r.Fields)
	out.Methods = prepareTable(r.Methods)
	out.States = prepareTable(r.States)
	out.Topics = prepareTable(r.Topics)
	out.FallbackStatus = prepareChoice(r.FallbackStatus)
	if out.FallbackStatus.Name == "" {
		out.FallbackStatus = DefaultRules().FallbackStatus
	}
	out.Venues = make(map[string]string, len(r.Venues))
	for k, v := range r.Venues {
		out.Venues[strings.ToLower(k)] = v
	}
	return out
}

// prepareTable keys the table by lower cased tag.
func prepareTable(in map[string]records.Choice) map[string]records.Choice {
	out := make(map[string]records.Choice, len(in))
	for k, c := range in {
		out[strings.ToLower(strings.TrimSpace(k))] = prepareChoice(c)
	}
	return out
}

func prepareChoice(c records.Choice) records.Choice {
	if c.Color != "" {
		c.Color = records.ValidColor(c.Color)
	}
	c.Name = CleanOption(ExpandEmoji(c.Name))
	return c
}

// ExpandEmoji replaces shortcodes such as ":lab_coat:" with the emoji.
func ExpandEmoji(s string) string {
	if !strings.Contains(s, ":") {
		return s
	}
	return collapseSpace(emoji.Sprint(s))
}
