package config

import (
	"fmt"
	"reflect"
	"slices"
	"sort"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/agentstation/bibsync/pkg/errors"
	"github.com/agentstation/bibsync/pkg/records"
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name, _, _ := strings.Cut(f.Tag.Get("yaml"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

// Validate checks the configuration. A missing articles database is an
// ambiguous configuration error; other problems are validation errors.
func (c *Config) Validate() error {
	err := validate.Struct(c)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}

	var errs []error
	for _, fe := range verrs {
		key := strings.TrimPrefix(fe.Namespace(), "Config.")
		if key == "databases.articles" {
			return errors.NewAmbiguousConfigError(key, "an articles database is required")
		}
		errs = append(errs, errors.NewValidationError(key, fe.Value(), message(fe)))
	}
	return errors.Join(errs...)
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "min":
		return "must be at least " + fe.Param()
	case "max":
		return "must be at most " + fe.Param()
	case "gte":
		return "must not be less than " + fe.Param()
	case "lte":
		return "must not be more than " + fe.Param()
	case "url":
		return "must be a URL"
	default:
		return fmt.Sprintf("failed %q check", fe.Tag())
	}
}

// InvalidColors lists the configured option colors Notion does not
// accept, as "key: color". They are replaced by the default color.
func (c *Config) InvalidColors() []string {
	var out []string
	check := func(section string, table map[string]Choice) {
		for k, ch := range table {
			if ch.Color != "" && !slices.Contains(records.Colors, ch.Color) {
				out = append(out, section+"."+k+": "+ch.Color)
			}
		}
	}
	check("status.states", c.Status.States)
	check("fields-methods.fields", c.FieldsMethods.Fields)
	check("fields-methods.methods", c.FieldsMethods.Methods)
	check("topics.topics", c.Topics.Topics)
	if fb := c.Status.Fallback.Color; fb != "" && !slices.Contains(records.Colors, fb) {
		out = append(out, "status.fallback: "+fb)
	}
	sort.Strings(out)
	return out
}
