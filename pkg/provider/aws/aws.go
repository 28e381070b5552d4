// Package aws implements the collaborators against a real AWS account using the v1 SDK.
//
// One set of service clients is created per region (and shared-config profile) and reused for the rest of the run.
package aws

import (
	"context"
	"fmt"
	"sync"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/aws/awserr"
	"github.com/aws/aws-sdk-go/aws/session"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"github.com/klothoplatform/stackgraph/pkg/provider"
	"go.uber.org/zap"
)

type (
	Clients struct {
		EC2 ec2iface.EC2API
		IAM iamiface.IAMAPI
		S3  s3iface.S3API
	}

	// ClientFactory creates the service clients for a provider context.
	ClientFactory func(pc provider.ProviderContext) (*Clients, error)

	Provider struct {
		newClients ClientFactory

		mu      sync.Mutex
		clients map[clientKey]*Clients
	}

	clientKey struct {
		region  string
		profile string
	}
)

var _ provider.Collaborators = (*Provider)(nil)

// New returns a provider that creates SDK sessions from the environment and shared config.
func New() *Provider {
	return NewWithClients(SessionClients)
}

func NewWithClients(factory ClientFactory) *Provider {
	return &Provider{
		newClients: factory,
		clients:    make(map[clientKey]*Clients),
	}
}

// SessionClients creates a session for the context's region, using its profile from the shared config if set.
func SessionClients(pc provider.ProviderContext) (*Clients, error) {
	sess, err := session.NewSessionWithOptions(session.Options{
		Config:            aws.Config{Region: aws.String(pc.Region)},
		Profile:           pc.Profile,
		SharedConfigState: session.SharedConfigEnable,
	})
	if err != nil {
		return nil, fmt.Errorf("could not create session for %s: %w", pc.Region, err)
	}
	return &Clients{
		EC2: ec2.New(sess),
		IAM: iam.New(sess),
		S3:  s3.New(sess),
	}, nil
}

func (p *Provider) clientsFor(pc provider.ProviderContext) (*Clients, error) {
	if pc.Region == "" {
		return nil, fmt.Errorf("no region in provider context")
	}
	key := clientKey{region: pc.Region, profile: pc.Profile}

	p.mu.Lock()
	defer p.mu.Unlock()
	if c, ok := p.clients[key]; ok {
		return c, nil
	}
	c, err := p.newClients(pc)
	if err != nil {
		return nil, err
	}
	p.clients[key] = c
	return c, nil
}

// apiError adds the AWS error code to the message, keeping the original error wrapped.
func apiError(operation string, err error) error {
	if aerr, ok := err.(awserr.Error); ok {
		return fmt.Errorf("%s (%s): %w", operation, aerr.Code(), err)
	}
	return fmt.Errorf("%s: %w", operation, err)
}

func (p *Provider) Lookup(ctx context.Context, kind construct.Kind, filter provider.Filter, pc provider.ProviderContext) (any, error) {
	if kind != construct.KindImageLookup {
		return nil, fmt.Errorf("unsupported lookup kind %s", kind)
	}
	c, err := p.clientsFor(pc)
	if err != nil {
		return nil, err
	}
	return lookupImage(ctx, c.EC2, filter, pc)
}

func (p *Provider) Provision(ctx context.Context, pc provider.ProviderContext, req provider.ProvisionRequest) (provider.Outputs, error) {
	c, err := p.clientsFor(pc)
	if err != nil {
		return nil, err
	}
	log := logging.GetLogger(ctx).Named("provider.aws").With(logging.ResourceField(req.ID), logging.RegionField(pc.Region))

	var outputs provider.Outputs
	switch req.ID.Kind {
	case construct.KindIamRole:
		outputs, err = createRole(ctx, c.IAM, pc, req)
	case construct.KindPolicyAttachment:
		outputs, err = attachPolicy(ctx, c.IAM, req)
	case construct.KindInstanceProfile:
		outputs, err = createInstanceProfile(ctx, c.IAM, req)
	case construct.KindInstance:
		outputs, err = runInstance(ctx, c.EC2, pc, req)
	case construct.KindBucket:
		outputs, err = createBucket(ctx, c.S3, pc, req)
	default:
		return nil, fmt.Errorf("unsupported resource kind %s", req.ID.Kind)
	}
	if err != nil {
		return nil, err
	}
	log.Info("Provisioned", zap.Any("id", outputs[construct.AttributeId]))
	return outputs, nil
}
