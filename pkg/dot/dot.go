// Package dot renders resource graphs in Graphviz DOT and, when `dot` is installed, as pannable SVG.
package dot

import (
	"bytes"
	"context"
	"fmt"
	"io"
	"os/exec"
	"regexp"
	"strings"

	"github.com/google/pprof/third_party/svgpan"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"go.uber.org/zap"
)

// svgRewrites turn dot's fixed-size SVG into one that fills the page and pans, the same way pprof's web
// view does. Each rewrite replaces the first match only.
var svgRewrites = []struct {
	match   *regexp.Regexp
	replace func(match string) string
}{
	{
		match:   regexp.MustCompile(`<svg\s*width="[^"]+"\s*height="[^"]+"\s*viewBox="[^"]+"`),
		replace: func(string) string { return `<svg width="100%" height="100%"` },
	},
	{
		match: regexp.MustCompile(`<g id="graph\d"`),
		replace: func(m string) string {
			return `<script type="text/ecmascript"><![CDATA[` + svgpan.JSSource + `]]></script>` +
				`<g id="viewport" transform="scale(0.5,0.5) translate(0,0)">` + m
		},
	},
	{
		match:   regexp.MustCompile(`</svg>`),
		replace: func(m string) string { return `</g>` + m },
	},
}

// SvgPan wraps the graph in a `viewport` group driven by the embedded svgpan script.
func SvgPan(svg string) string {
	// dot leaves some ampersands unescaped
	svg = strings.ReplaceAll(svg, "&;", "&amp;;")
	for _, rw := range svgRewrites {
		if loc := rw.match.FindStringIndex(svg); loc != nil {
			svg = svg[:loc[0]] + rw.replace(svg[loc[0]:loc[1]]) + svg[loc[1]:]
		}
	}
	return svg
}

// Execute runs `dot -Tsvg` over `input`.
func Execute(ctx context.Context, input io.Reader, output io.Writer) error {
	errBuff := new(bytes.Buffer)
	cmd := exec.CommandContext(ctx, "dot", "-Tsvg")
	cmd.Stdin = input
	cmd.Stdout = output
	cmd.Stderr = errBuff
	if err := cmd.Run(); err != nil {
		return fmt.Errorf("could not run 'dot': %w: %s", err, errBuff.String())
	}
	return nil
}

func ExecPan(ctx context.Context, input io.Reader) (string, error) {
	out := new(bytes.Buffer)
	if err := Execute(ctx, input, out); err != nil {
		return "", err
	}
	logging.GetLogger(ctx).Named("dot").Debug("Rendered svg", zap.Int("bytes", out.Len()))
	return SvgPan(out.String()), nil
}
