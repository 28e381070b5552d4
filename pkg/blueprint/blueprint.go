// Package blueprint declares the stacks this tool provisions as region fan-out templates.
package blueprint

import (
	"fmt"
	"path"

	"github.com/google/uuid"
	"github.com/iancoleman/strcase"
	"github.com/klothoplatform/stackgraph/pkg/build"
	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/fanout"
	awssanitizer "github.com/klothoplatform/stackgraph/pkg/sanitization/aws"
)

const (
	DefaultInstancePrefix = "ec2-instance"
	DefaultInstanceType   = "t2.micro"
	DefaultImageName      = "amzn2-ami-hvm-*-x86_64-gp2"
	DefaultImageOwner     = "amazon"

	// EnvironmentTagKey is the tag carrying a region's environment.
	EnvironmentTagKey = "Environment"
)

// Ec2AssumeRolePolicy lets EC2 instances assume a role.
const Ec2AssumeRolePolicy = `{
  "Version": "2012-10-17",
  "Statement": [
    {
      "Effect": "Allow",
      "Principal": {"Service": "ec2.amazonaws.com"},
      "Action": "sts:AssumeRole"
    }
  ]
}`

type (
	InstanceOptions struct {
		// Prefix names the instance and its image lookup, and prefixes the exported id.
		Prefix       string
		InstanceType string
		ImageName    string
		ImageOwners  []string
	}

	ProfileOptions struct {
		RoleName string
		// ManagedPolicies are policy ARNs attached to the role.
		ManagedPolicies []string
	}

	BucketOptions struct {
		Prefix string
	}

	// Stack is a blueprint: the resources declared in every region. Nil options are not declared.
	Stack struct {
		Instance *InstanceOptions
		Profile  *ProfileOptions
		Bucket   *BucketOptions
		Tags     map[string]string
	}

	// Output is a single value a blueprint exports per region.
	Output struct {
		Name string
		Ref  construct.AttributeRef
	}
)

// Ec2Instance is a single instance running the most recent Amazon Linux 2 image.
func Ec2Instance() Stack {
	return Stack{Instance: &InstanceOptions{}}
}

// InstanceWithProfile is [Ec2Instance] running with an instance profile for `role`.
func InstanceWithProfile(role string, policies ...string) Stack {
	return Stack{
		Instance: &InstanceOptions{},
		Profile:  &ProfileOptions{RoleName: role, ManagedPolicies: policies},
	}
}

func Bucket(prefix string) Stack {
	return Stack{Bucket: &BucketOptions{Prefix: prefix}}
}

// ExportName is the lower camel case name of an exported attribute, eg. `ec2InstanceUsEast1Id`.
func ExportName(prefix, region, attribute string) string {
	return strcase.ToLowerCamel(fmt.Sprintf("%s %s %s", prefix, region, attribute))
}

// ProviderId is the provider resource declared for `region`.
func ProviderId(region fanout.RegionSpec) construct.ResourceId {
	return construct.ResourceId{Kind: construct.KindProvider, Name: region.Namespaced("aws")}
}

func (s Stack) withDefaults() Stack {
	if s.Instance != nil {
		inst := *s.Instance
		if inst.Prefix == "" {
			inst.Prefix = DefaultInstancePrefix
		}
		if inst.InstanceType == "" {
			inst.InstanceType = DefaultInstanceType
		}
		if inst.ImageName == "" {
			inst.ImageName = DefaultImageName
		}
		if len(inst.ImageOwners) == 0 {
			inst.ImageOwners = []string{DefaultImageOwner}
		}
		s.Instance = &inst
	}
	return s
}

func (s Stack) Validate() error {
	if s.Instance == nil && s.Bucket == nil {
		return fmt.Errorf("blueprint declares neither an instance nor a bucket")
	}
	if s.Profile != nil {
		if s.Instance == nil {
			return fmt.Errorf("an instance profile requires an instance")
		}
		if s.Profile.RoleName == "" {
			return fmt.Errorf("instance profile is missing a role name")
		}
	}
	if s.Bucket != nil && s.Bucket.Prefix == "" {
		return fmt.Errorf("bucket is missing a prefix")
	}
	return nil
}

func (s Stack) tags(region fanout.RegionSpec) map[string]any {
	tags := make(map[string]any, len(s.Tags)+1)
	for k, v := range s.Tags {
		tags[k] = v
	}
	if region.EnvironmentTag != "" {
		tags[EnvironmentTagKey] = region.EnvironmentTag
	}
	return tags
}

// cloudName is the name given to the resource in the cloud account. IAM is global, so role names carry
// both environment and region.
func cloudName(base string, region fanout.RegionSpec) string {
	if region.EnvironmentTag == "" {
		return region.Namespaced(base)
	}
	return fmt.Sprintf("%s-%s-%s", base, region.EnvironmentTag, region.RegionId)
}

// attachmentName names a role's attachment of `policyArn`. Policies can share a base name across accounts, so
// the name carries a short digest of the full ARN.
func attachmentName(role, policyArn string) string {
	digest := uuid.NewSHA1(uuid.NameSpaceURL, []byte(policyArn)).String()[:8]
	return fmt.Sprintf("%s-%s-%s", role, strcase.ToKebab(path.Base(policyArn)), digest)
}

// Template declares the stack's resources for one region.
func (s Stack) Template(region fanout.RegionSpec) (fanout.Subgraph, error) {
	if err := s.Validate(); err != nil {
		return nil, err
	}
	s = s.withDefaults()
	decls := construct.NewDeclarations()

	providerProps := construct.Properties{"region": region.RegionId}
	if region.EnvironmentTag != "" {
		providerProps["environment"] = region.EnvironmentTag
	}
	if len(s.Tags) > 0 {
		tags := make(map[string]any, len(s.Tags))
		for k, v := range s.Tags {
			tags[k] = v
		}
		providerProps["tags"] = tags
	}
	aws, err := decls.Create(construct.KindProvider, ProviderId(region).Name, providerProps)
	if err != nil {
		return nil, err
	}

	if s.Instance != nil {
		if err := s.declareInstance(decls, aws, region); err != nil {
			return nil, err
		}
	}
	if s.Bucket != nil {
		_, err := decls.Create(construct.KindBucket, region.Namespaced(s.Bucket.Prefix), construct.Properties{
			"bucket": awssanitizer.S3BucketName(cloudName(s.Bucket.Prefix, region)),
			"tags":   s.tags(region),
		}, aws.ID)
		if err != nil {
			return nil, err
		}
	}
	return decls, nil
}

func (s Stack) declareInstance(decls *construct.Declarations, aws *construct.Resource, region fanout.RegionSpec) error {
	inst := s.Instance
	owners := make([]any, len(inst.ImageOwners))
	for i, o := range inst.ImageOwners {
		owners[i] = o
	}
	ami, err := decls.Create(construct.KindImageLookup, region.Namespaced(inst.Prefix+"-ami"), construct.Properties{
		"mostRecent": true,
		"owners":     owners,
		"filters": []any{
			map[string]any{"name": "name", "values": []any{inst.ImageName}},
		},
	}, aws.ID)
	if err != nil {
		return err
	}

	name := region.Namespaced(inst.Prefix)
	tags := s.tags(region)
	tags["Name"] = name
	props := construct.Properties{
		"ami":          ami.Ref(construct.AttributeId),
		"instanceType": inst.InstanceType,
		"tags":         tags,
	}

	if s.Profile != nil {
		profile, err := s.declareProfile(decls, aws, region)
		if err != nil {
			return err
		}
		props["iamInstanceProfile"] = profile.Ref("name")
	}

	_, err = decls.Create(construct.KindInstance, name, props, aws.ID)
	return err
}

func (s Stack) declareProfile(
	decls *construct.Declarations,
	aws *construct.Resource,
	region fanout.RegionSpec,
) (*construct.Resource, error) {
	p := s.Profile
	role, err := decls.Create(construct.KindIamRole, region.Namespaced(p.RoleName), construct.Properties{
		"name":             awssanitizer.IamRoleName(cloudName(p.RoleName, region)),
		"assumeRolePolicy": Ec2AssumeRolePolicy,
		"tags":             s.tags(region),
	}, aws.ID)
	if err != nil {
		return nil, err
	}

	for _, arn := range p.ManagedPolicies {
		_, err := decls.Create(construct.KindPolicyAttachment,
			region.Namespaced(attachmentName(p.RoleName, arn)),
			construct.Properties{
				"role":      role.Ref("name"),
				"policyArn": arn,
			}, aws.ID)
		if err != nil {
			return nil, err
		}
	}

	return decls.Create(construct.KindInstanceProfile, region.Namespaced(p.RoleName+"-profile"), construct.Properties{
		"name": awssanitizer.InstanceProfileName(cloudName(p.RoleName, region) + "-profile"),
		"role": role.Ref("name"),
	}, aws.ID)
}

// Outputs returns what the stack exports for `region`, in declaration order.
func (s Stack) Outputs(region fanout.RegionSpec) []Output {
	s = s.withDefaults()
	var outputs []Output
	if s.Instance != nil {
		outputs = append(outputs, Output{
			Name: ExportName(s.Instance.Prefix, region.RegionId, construct.AttributeId),
			Ref: construct.RefTo(
				construct.ResourceId{Kind: construct.KindInstance, Name: region.Namespaced(s.Instance.Prefix)},
				construct.AttributeId,
			),
		})
	}
	if s.Bucket != nil {
		outputs = append(outputs, Output{
			Name: ExportName(s.Bucket.Prefix, region.RegionId, construct.AttributeId),
			Ref: construct.RefTo(
				construct.ResourceId{Kind: construct.KindBucket, Name: region.Namespaced(s.Bucket.Prefix)},
				construct.AttributeId,
			),
		})
	}
	return outputs
}

// Declare fans the stack out over `regions` into `run` and exports every region's outputs.
func (s Stack) Declare(run *build.Run, regions []fanout.RegionSpec) error {
	exp, err := run.Expand(s.Template, regions)
	if err != nil {
		return err
	}
	for _, region := range exp.Regions() {
		for _, out := range s.Outputs(region) {
			if err := run.Export(out.Name, out.Ref); err != nil {
				return err
			}
		}
	}
	return nil
}
