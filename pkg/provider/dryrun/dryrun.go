// Package dryrun implements the collaborators without touching any cloud account. Identifiers are derived
// from the request so that planning the same stack twice yields the same values.
package dryrun

import (
	"context"
	"fmt"
	"strings"
	"sync"

	"github.com/google/uuid"
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"github.com/klothoplatform/stackgraph/pkg/provider"
	"go.uber.org/zap"
	"gopkg.in/yaml.v3"
)

// AccountId is the placeholder account used in generated ARNs.
const AccountId = "000000000000"

var namespace = uuid.NewSHA1(uuid.NameSpaceURL, []byte("https://github.com/klothoplatform/stackgraph/dryrun"))

type (
	Call struct {
		Operation string
		Kind      construct.Kind
		// Resource is only set for provision calls.
		Resource construct.ResourceId
		Region   string
		Result   any
	}

	// Provider is safe for concurrent use.
	Provider struct {
		mu    sync.Mutex
		calls []Call
	}
)

var _ provider.Collaborators = (*Provider)(nil)

func New() *Provider {
	return &Provider{}
}

// Calls returns a copy of the calls made so far, in the order they completed.
func (p *Provider) Calls() []Call {
	p.mu.Lock()
	defer p.mu.Unlock()
	return append([]Call(nil), p.calls...)
}

func (p *Provider) record(c Call) {
	p.mu.Lock()
	defer p.mu.Unlock()
	p.calls = append(p.calls, c)
}

// deterministicId returns 32 hex characters derived from `parts`.
func deterministicId(parts ...string) string {
	return strings.ReplaceAll(uuid.NewSHA1(namespace, []byte(strings.Join(parts, "\x00"))).String(), "-", "")
}

func canonical(v any) (string, error) {
	// yaml.v3 sorts map keys, which gives a stable encoding of the filter.
	b, err := yaml.Marshal(v)
	if err != nil {
		return "", err
	}
	return string(b), nil
}

func (p *Provider) Lookup(ctx context.Context, kind construct.Kind, filter provider.Filter, pc provider.ProviderContext) (any, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	if kind != construct.KindImageLookup {
		return nil, fmt.Errorf("unsupported lookup kind %s", kind)
	}
	f, err := canonical(map[string]any(filter))
	if err != nil {
		return nil, fmt.Errorf("could not encode filter: %w", err)
	}
	hex := deterministicId("lookup", kind.String(), pc.Region, f)
	image := "ami-" + hex[:17]
	logging.GetLogger(ctx).Named("provider.dryrun").Debug("Looked up image",
		logging.RegionField(pc.Region), zap.String("image", image))
	p.record(Call{Operation: "lookup", Kind: kind, Region: pc.Region, Result: image})
	return image, nil
}

func (p *Provider) Provision(ctx context.Context, pc provider.ProviderContext, req provider.ProvisionRequest) (provider.Outputs, error) {
	if err := ctx.Err(); err != nil {
		return nil, err
	}
	props, err := canonical(map[string]any(req.Properties))
	if err != nil {
		return nil, fmt.Errorf("could not encode properties of %s: %w", req.ID, err)
	}
	hex := deterministicId("provision", req.ID.String(), pc.Region, props)
	name, err := provider.String(req.Properties, "name")
	if err != nil {
		return nil, err
	}
	if name == "" {
		name = req.ID.Name
	}

	outputs := provider.Outputs{}
	switch req.ID.Kind {
	case construct.KindInstance:
		outputs["id"] = "i-" + hex[:17]
		outputs["arn"] = fmt.Sprintf("arn:aws:ec2:%s:%s:instance/%s", pc.Region, AccountId, outputs["id"])
	case construct.KindIamRole:
		outputs["id"] = "AROA" + strings.ToUpper(hex[:17])
		outputs["name"] = name
		outputs["arn"] = fmt.Sprintf("arn:aws:iam::%s:role/%s", AccountId, name)
	case construct.KindInstanceProfile:
		outputs["id"] = "AIPA" + strings.ToUpper(hex[:17])
		outputs["name"] = name
		outputs["arn"] = fmt.Sprintf("arn:aws:iam::%s:instance-profile/%s", AccountId, name)
	case construct.KindBucket:
		bucket, err := provider.String(req.Properties, "bucket")
		if err != nil {
			return nil, err
		}
		if bucket == "" {
			bucket = req.ID.Name + "-" + hex[:8]
		}
		outputs["id"] = bucket
		outputs["arn"] = "arn:aws:s3:::" + bucket
	case construct.KindPolicyAttachment:
		role, err := provider.RequiredString(req.Properties, "role")
		if err != nil {
			return nil, err
		}
		arn, err := provider.RequiredString(req.Properties, "policyArn")
		if err != nil {
			return nil, err
		}
		outputs["id"] = role + "/" + arn
	default:
		return nil, fmt.Errorf("unsupported resource kind %s", req.ID.Kind)
	}

	logging.GetLogger(ctx).Named("provider.dryrun").Debug("Provisioned",
		logging.ResourceField(req.ID), logging.RegionField(pc.Region), zap.Any("id", outputs["id"]))
	p.record(Call{Operation: "provision", Kind: req.ID.Kind, Resource: req.ID, Region: pc.Region, Result: outputs["id"]})
	return outputs, nil
}
