package templateutils

import (
	"io/fs"
	"path"
	"text/template"

	sprig "github.com/Masterminds/sprig/v3"
)

// MustTemplate parses the template at `name` in `fsys` with sprig's hermetic functions plus [Funcs] (which
// take precedence on a name clash). Templates are embedded at build time, so a parse failure panics.
func MustTemplate(fsys fs.FS, name string) *template.Template {
	return template.Must(
		template.New(path.Base(name)).
			Funcs(sprig.HermeticTxtFuncMap()).
			Funcs(Funcs).
			ParseFS(fsys, name),
	)
}
