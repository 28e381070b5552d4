// Package pulumi renders an assembled resource graph as a Pulumi TypeScript program, for teams that prefer to
// let Pulumi own the apply.
package pulumi

import (
	"bytes"
	"embed"
	"fmt"
	"regexp"
	"sort"
	"text/template"

	"github.com/iancoleman/strcase"
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/engine"
	kio "github.com/klothoplatform/stackgraph/pkg/io"
	"github.com/klothoplatform/stackgraph/pkg/templateutils"
)

type (
	Config struct {
		Project     string
		Stack       string
		Description string
	}

	Plugin struct {
		Config Config
	}

	// Exports is the set of named outputs to render as `export const`.
	Exports interface {
		Names() []string
		Ref(name string) (construct.AttributeRef, bool)
	}

	tsResource struct {
		Var      string
		Name     string
		Call     string
		Args     string
		Provider string
		Lookup   bool
	}

	tsExport struct {
		Name  string
		Value string
	}
)

var (
	//go:embed templates/index.ts.tmpl templates/Pulumi.yaml.tmpl templates/Pulumi.stack.yaml.tmpl
	//go:embed templates/package.json templates/tsconfig.json
	files embed.FS

	indexTs     = templateutils.MustTemplate(files, "templates/index.ts.tmpl")
	pulumiBase  = templateutils.MustTemplate(files, "templates/Pulumi.yaml.tmpl")
	pulumiStack = templateutils.MustTemplate(files, "templates/Pulumi.stack.yaml.tmpl")

	invalidProjectChars = regexp.MustCompile(`[^a-zA-Z0-9-_]+`)
)

var calls = map[construct.Kind]string{
	construct.KindProvider:         "new aws.Provider",
	construct.KindImageLookup:      "aws.ec2.getAmiOutput",
	construct.KindIamRole:          "new aws.iam.Role",
	construct.KindPolicyAttachment: "new aws.iam.RolePolicyAttachment",
	construct.KindInstanceProfile:  "new aws.iam.InstanceProfile",
	construct.KindInstance:         "new aws.ec2.Instance",
	construct.KindBucket:           "new aws.s3.BucketV2",
}

func (p Plugin) Name() string {
	return "pulumi"
}

func (p Plugin) sanitizedConfig() (Config, error) {
	cfg := p.Config
	cfg.Project = invalidProjectChars.ReplaceAllString(cfg.Project, "")
	if cfg.Project == "" {
		return cfg, fmt.Errorf("project name %q has no valid characters", p.Config.Project)
	}
	if cfg.Stack == "" {
		cfg.Stack = "dev"
	}
	return cfg, nil
}

// Render returns the files of the Pulumi program: `index.ts` declaring every resource of `g` in topological
// order (so every variable is defined before it is used), the project and stack files, and the node package files.
func (p Plugin) Render(g *engine.ResourceGraph, exports Exports) ([]kio.File, error) {
	cfg, err := p.sanitizedConfig()
	if err != nil {
		return nil, err
	}

	vars := variables(g.Order())
	resources := make([]tsResource, 0, g.Len())
	stackConfig := map[string]string{}
	for _, id := range g.Order() {
		r, err := g.Resource(id)
		if err != nil {
			return nil, err
		}
		res, err := renderResource(g, r, vars)
		if err != nil {
			return nil, fmt.Errorf("could not render %s: %w", id, err)
		}
		resources = append(resources, res)

		// The first provider doubles as the stack's default region.
		if id.Kind == construct.KindProvider && stackConfig["aws:region"] == "" {
			if region, ok := r.Properties["region"].(string); ok {
				stackConfig["aws:region"] = region
			}
		}
	}

	var tsExports []tsExport
	if exports != nil {
		names := exports.Names()
		sort.Strings(names)
		for _, name := range names {
			ref, _ := exports.Ref(name)
			value, err := tsValue(ref, vars)
			if err != nil {
				return nil, fmt.Errorf("could not render export %q: %w", name, err)
			}
			tsExports = append(tsExports, tsExport{Name: name, Value: value})
		}
	}

	index, err := addTemplate("index.ts", indexTs, map[string]any{
		"Resources": resources,
		"Exports":   tsExports,
	})
	if err != nil {
		return nil, err
	}
	project, err := addTemplate("Pulumi.yaml", pulumiBase, cfg)
	if err != nil {
		return nil, err
	}
	stack, err := addTemplate(fmt.Sprintf("Pulumi.%s.yaml", cfg.Stack), pulumiStack, map[string]any{
		"Config": stackConfig,
	})
	if err != nil {
		return nil, err
	}

	out := []kio.File{index, project, stack}
	for _, static := range []string{"package.json", "tsconfig.json"} {
		content, err := files.ReadFile("templates/" + static)
		if err != nil {
			return nil, err
		}
		out = append(out, &kio.RawFile{FPath: static, Content: content})
	}
	return out, nil
}

func addTemplate(name string, t *template.Template, data any) (*kio.RawFile, error) {
	buf := new(bytes.Buffer)
	if err := t.Execute(buf, data); err != nil {
		return nil, fmt.Errorf("error executing template %s: %w", name, err)
	}
	return &kio.RawFile{
		FPath:   name,
		Content: buf.Bytes(),
	}, nil
}

// variables assigns every resource a unique TypeScript identifier derived from its name, qualifying it with
// the kind when two kinds share a name.
func variables(order []construct.ResourceId) map[construct.ResourceId]string {
	taken := map[string]struct{}{"aws": {}, "pulumi": {}}
	vars := make(map[construct.ResourceId]string, len(order))
	for _, id := range order {
		v := identifier(id.Name)
		if _, ok := taken[v]; ok {
			v = identifier(id.Name + " " + id.Kind.String())
		}
		for i := 2; ; i++ {
			if _, ok := taken[v]; !ok {
				break
			}
			v = identifier(fmt.Sprintf("%s %s %d", id.Name, id.Kind, i))
		}
		taken[v] = struct{}{}
		vars[id] = v
	}
	return vars
}

func identifier(s string) string {
	v := strcase.ToLowerCamel(invalidIdentChars.ReplaceAllString(s, " "))
	if v == "" || (v[0] >= '0' && v[0] <= '9') {
		v = "r" + strcase.ToCamel(v)
	}
	return v
}

func renderResource(g *engine.ResourceGraph, r *construct.Resource, vars map[construct.ResourceId]string) (tsResource, error) {
	call, ok := calls[r.Kind()]
	if !ok {
		return tsResource{}, fmt.Errorf("unsupported kind %s", r.Kind())
	}
	res := tsResource{
		Var:    vars[r.ID],
		Name:   r.Name(),
		Call:   call,
		Lookup: r.Kind().IsLookup(),
	}

	props := r.Properties
	if r.Kind() == construct.KindProvider {
		props = providerArgs(props)
	} else {
		deps, err := g.DirectDependencies(r.ID)
		if err != nil {
			return res, err
		}
		for _, dep := range deps {
			if dep.Kind != construct.KindProvider {
				continue
			}
			if res.Provider != "" {
				return res, engine.ErrMultipleProvider
			}
			res.Provider = vars[dep]
		}
	}

	args, err := tsValue(props, vars)
	if err != nil {
		return res, err
	}
	res.Args = args
	return res, nil
}

// providerArgs maps the provider resource's properties onto `aws.ProviderArgs`. The environment only feeds tags.
func providerArgs(props construct.Properties) construct.Properties {
	args := construct.Properties{}
	if region, ok := props["region"]; ok {
		args["region"] = region
	}
	if profile, ok := props["profile"]; ok {
		args["profile"] = profile
	}
	if tags, ok := props["tags"]; ok {
		args["defaultTags"] = map[string]any{"tags": tags}
	}
	return args
}
