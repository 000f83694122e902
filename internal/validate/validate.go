// Package validate checks the shape of a comment payload and reports every violation at once.
package validate

import (
	"bytes"
	"encoding/json"
	"reflect"
	"sort"
	"strings"
	"sync"

	"github.com/go-playground/validator/v10"

	"lambda-comments/internal/models"
)

// GeneralKey holds messages about the payload as a whole.
const GeneralKey = "_error"

// Messages reported to the client.
const (
	MsgRequired         = "Required"
	MsgMissingUserAgent = "Missing user agent"
	MsgNotString        = "Must be a string"
	MsgInvalidURL       = "Invalid URL"
	MsgInvalidEmail     = "Invalid email address"
	MsgInvalidPayload   = "Invalid payload"
)

// Errors maps a field name, or GeneralKey, to a message.
type Errors map[string]string

func (e Errors) Error() string {
	keys := make([]string, 0, len(e))
	for k := range e {
		keys = append(keys, k)
	}
	sort.Strings(keys)
	parts := make([]string, 0, len(keys))
	for _, k := range keys {
		parts = append(parts, k+": "+e[k])
	}
	return "invalid comment: " + strings.Join(parts, ", ")
}

var (
	once     sync.Once
	instance *validator.Validate
)

func get() *validator.Validate {
	once.Do(func() {
		v := validator.New(validator.WithRequiredStructEnabled())

		// report json names
		v.RegisterTagNameFunc(func(fld reflect.StructField) string {
			tag := fld.Tag.Get("json")
			if tag == "-" || tag == "" {
				return fld.Name
			}
			if idx := strings.Index(tag, ","); idx >= 0 {
				tag = tag[:idx]
			}
			return tag
		})

		_ = v.RegisterValidation("nonblank", func(fl validator.FieldLevel) bool {
			return strings.TrimSpace(fl.Field().String()) != ""
		})

		instance = v
	})
	return instance
}

// Comment decodes and validates a raw payload. Values are copied verbatim; nothing is
// trimmed or normalized. On failure the error is an Errors value.
func Comment(raw json.RawMessage) (models.Comment, error) {
	trimmed := bytes.TrimSpace(raw)
	if len(trimmed) == 0 || trimmed[0] != '{' {
		return models.Comment{}, Errors{GeneralKey: MsgInvalidPayload}
	}
	var fields map[string]json.RawMessage
	if err := json.Unmarshal(trimmed, &fields); err != nil {
		return models.Comment{}, Errors{GeneralKey: MsgInvalidPayload}
	}

	var c models.Comment
	targets := map[string]*string{
		"permalink":      &c.Permalink,
		"userAgent":      &c.UserAgent,
		"referrer":       &c.Referrer,
		"commentContent": &c.CommentContent,
		"authorName":     &c.AuthorName,
		"authorEmail":    &c.AuthorEmail,
		"authorUrl":      &c.AuthorURL,
	}

	errs := Errors{}
	for name, dst := range targets {
		value, ok := fields[name]
		if !ok || string(value) == "null" {
			continue
		}
		if err := json.Unmarshal(value, dst); err != nil {
			errs[name] = MsgNotString
		}
	}

	if err := get().Struct(c); err != nil {
		verrs, ok := err.(validator.ValidationErrors)
		if !ok {
			return models.Comment{}, Errors{GeneralKey: MsgInvalidPayload}
		}
		for _, fe := range verrs {
			if _, seen := errs[fe.Field()]; seen {
				continue
			}
			errs[fe.Field()] = message(fe)
		}
	}

	if _, bad := errs["userAgent"]; bad {
		delete(errs, "userAgent")
		errs[GeneralKey] = MsgMissingUserAgent
	}

	if len(errs) > 0 {
		return models.Comment{}, errs
	}
	return c, nil
}

func message(fe validator.FieldError) string {
	switch fe.Tag() {
	case "url":
		return MsgInvalidURL
	case "email":
		return MsgInvalidEmail
	default:
		return MsgRequired
	}
}
