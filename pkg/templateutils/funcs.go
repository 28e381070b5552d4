package templateutils

import (
	"bytes"
	"encoding/json"
	"strings"
	"text/template"

	"github.com/iancoleman/strcase"
)

var Funcs = template.FuncMap{
	"json": func(v any) (string, error) {
		buf := new(bytes.Buffer)
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		if err := enc.Encode(v); err != nil {
			return "", err
		} else {
			return strings.TrimSpace(buf.String()), nil
		}
	},

	"jsonPretty": func(v any) (string, error) {
		buf := new(bytes.Buffer)
		enc := json.NewEncoder(buf)
		enc.SetEscapeHTML(false)
		enc.SetIndent("", "    ")
		if err := enc.Encode(v); err != nil {
			return "", err
		} else {
			return strings.TrimSpace(buf.String()), nil
		}
	},

	"lowerCamel": strcase.ToLowerCamel,
	"camel":      strcase.ToCamel,
	"kebab":      strcase.ToKebab,
}
