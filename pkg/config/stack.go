// Package config reads the stack file that drives a build: which blueprint to declare, in which regions,
// and with which provider settings.
package config

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"regexp"

	"github.com/klothoplatform/stackgraph/pkg/blueprint"
	"github.com/klothoplatform/stackgraph/pkg/closenicely"
	"github.com/klothoplatform/stackgraph/pkg/fanout"
	"go.uber.org/multierr"
	"github.com/klothoplatform/stackgraph/pkg/provider"
	"github.com/mitchellh/mapstructure"
	"github.com/pelletier/go-toml/v2"
	"gopkg.in/yaml.v3"
)

const DefaultLookupConcurrency = 4

type (
	Stack struct {
		Project string `mapstructure:"project"`
		Stack   string `mapstructure:"stack"`

		Regions []fanout.RegionSpec `mapstructure:"regions"`

		// AwsProfile is the shared-config profile the AWS collaborators use.
		AwsProfile string            `mapstructure:"aws_profile"`
		Tags       map[string]string `mapstructure:"tags"`

		// LookupConcurrency bounds early lookups. Nil means [DefaultLookupConcurrency], 0 runs them inline.
		LookupConcurrency *int `mapstructure:"lookup_concurrency"`

		Instance        *Instance        `mapstructure:"instance"`
		InstanceProfile *InstanceProfile `mapstructure:"instance_profile"`
		Bucket          *Bucket          `mapstructure:"bucket"`

		// Format is the format the file was read as.
		Format string `mapstructure:"-"`
	}

	Instance struct {
		Prefix      string   `mapstructure:"prefix"`
		Type        string   `mapstructure:"type"`
		ImageName   string   `mapstructure:"image_name"`
		ImageOwners []string `mapstructure:"image_owners"`
	}

	InstanceProfile struct {
		Role     string   `mapstructure:"role"`
		Policies []string `mapstructure:"policies"`
	}

	Bucket struct {
		Prefix string `mapstructure:"prefix"`
	}
)

var validProjectName = regexp.MustCompile(`^[a-zA-Z0-9][a-zA-Z0-9-_]*$`)

// ReadStack reads the stack file at `fpath`. The format follows the extension: `.toml`, `.json`, otherwise YAML.
func ReadStack(fpath string) (*Stack, error) {
	f, err := os.Open(fpath)
	if err != nil {
		return nil, err
	}
	defer closenicely.OrDebug(f)

	format := "yaml"
	switch filepath.Ext(fpath) {
	case ".toml":
		format = "toml"
	case ".json":
		format = "json"
	}
	stack, err := DecodeStack(f, format)
	if err != nil {
		return nil, fmt.Errorf("could not read stack file %s: %w", fpath, err)
	}
	return stack, nil
}

// DecodeStack decodes a stack file in `format` (yaml, toml or json), applies defaults and validates it.
func DecodeStack(r io.Reader, format string) (*Stack, error) {
	raw := map[string]any{}
	var err error
	switch format {
	case "yaml":
		err = yaml.NewDecoder(r).Decode(&raw)
		if errors.Is(err, io.EOF) {
			err = nil
		}
	case "toml":
		err = toml.NewDecoder(r).Decode(&raw)
	case "json":
		err = json.NewDecoder(r).Decode(&raw)
	default:
		err = fmt.Errorf("unsupported format %q", format)
	}
	if err != nil {
		return nil, err
	}

	stack := &Stack{Format: format}
	decoder, err := mapstructure.NewDecoder(&mapstructure.DecoderConfig{
		Result:           stack,
		ErrorUnused:      true,
		WeaklyTypedInput: true,
	})
	if err != nil {
		return nil, err
	}
	if err := decoder.Decode(raw); err != nil {
		return nil, err
	}

	stack.applyDefaults()
	if err := stack.Validate(); err != nil {
		return nil, err
	}
	return stack, nil
}

func (s *Stack) applyDefaults() {
	if s.Stack == "" {
		s.Stack = "dev"
	}
	if s.LookupConcurrency == nil {
		n := DefaultLookupConcurrency
		s.LookupConcurrency = &n
	}
	if s.Instance == nil && s.Bucket == nil {
		s.Instance = &Instance{}
	}
}

// Validate reports every problem with the stack at once. An empty region list is left to the fan-out.
func (s *Stack) Validate() error {
	var errs error
	if !validProjectName.MatchString(s.Project) {
		errs = multierr.Append(errs, fmt.Errorf("invalid project name %q", s.Project))
	}
	for i, r := range s.Regions {
		if r.RegionId == "" {
			errs = multierr.Append(errs, fmt.Errorf("regions[%d]: region is required", i))
		}
	}
	if s.LookupConcurrency != nil && *s.LookupConcurrency < 0 {
		errs = multierr.Append(errs, fmt.Errorf("lookup_concurrency must not be negative (got %d)", *s.LookupConcurrency))
	}
	for k := range s.Tags {
		if k == blueprint.EnvironmentTagKey {
			errs = multierr.Append(errs, fmt.Errorf("tag %q is set per region by its environment", k))
		}
	}
	errs = multierr.Append(errs, s.Blueprint().Validate())
	return errs
}

// Blueprint converts the stack's resource settings into the blueprint declared in every region.
func (s *Stack) Blueprint() blueprint.Stack {
	bp := blueprint.Stack{Tags: s.Tags}
	if s.Instance != nil {
		bp.Instance = &blueprint.InstanceOptions{
			Prefix:       s.Instance.Prefix,
			InstanceType: s.Instance.Type,
			ImageName:    s.Instance.ImageName,
			ImageOwners:  s.Instance.ImageOwners,
		}
	}
	if s.InstanceProfile != nil {
		bp.Profile = &blueprint.ProfileOptions{
			RoleName:        s.InstanceProfile.Role,
			ManagedPolicies: s.InstanceProfile.Policies,
		}
	}
	if s.Bucket != nil {
		bp.Bucket = &blueprint.BucketOptions{Prefix: s.Bucket.Prefix}
	}
	return bp
}

// ProviderDefaults is the context for collaborator calls outside of any region's provider.
func (s *Stack) ProviderDefaults() provider.ProviderContext {
	return provider.ProviderContext{Profile: s.AwsProfile}
}

func (s *Stack) Concurrency() int {
	if s.LookupConcurrency == nil {
		return DefaultLookupConcurrency
	}
	return *s.LookupConcurrency
}
