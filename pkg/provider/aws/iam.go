package aws

import (
	"context"
	"errors"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/iam"
	"github.com/aws/aws-sdk-go/service/iam/iamiface"
	"github.com/klothoplatform/stackgraph/pkg/provider"
)

func iamTags(tags map[string]string) []*iam.Tag {
	out := make([]*iam.Tag, 0, len(tags))
	for _, k := range provider.SortedTagKeys(tags) {
		out = append(out, &iam.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func createRole(ctx context.Context, client iamiface.IAMAPI, pc provider.ProviderContext, req provider.ProvisionRequest) (provider.Outputs, error) {
	name, err := provider.RequiredString(req.Properties, "name")
	if err != nil {
		return nil, err
	}
	policy, err := provider.RequiredString(req.Properties, "assumeRolePolicy")
	if err != nil {
		return nil, err
	}
	tags, err := provider.Tags(req.Properties, "tags")
	if err != nil {
		return nil, err
	}

	input := &iam.CreateRoleInput{
		RoleName:                 aws.String(name),
		AssumeRolePolicyDocument: aws.String(policy),
	}
	if merged := pc.MergedTags(tags); len(merged) > 0 {
		input.Tags = iamTags(merged)
	}
	out, err := client.CreateRoleWithContext(ctx, input)
	if err != nil {
		return nil, apiError("CreateRole", err)
	}
	if out.Role == nil {
		return nil, errors.New("CreateRole returned no role")
	}
	return provider.Outputs{
		"id":   aws.StringValue(out.Role.RoleId),
		"name": aws.StringValue(out.Role.RoleName),
		"arn":  aws.StringValue(out.Role.Arn),
	}, nil
}

func attachPolicy(ctx context.Context, client iamiface.IAMAPI, req provider.ProvisionRequest) (provider.Outputs, error) {
	role, err := provider.RequiredString(req.Properties, "role")
	if err != nil {
		return nil, err
	}
	arn, err := provider.RequiredString(req.Properties, "policyArn")
	if err != nil {
		return nil, err
	}
	_, err = client.AttachRolePolicyWithContext(ctx, &iam.AttachRolePolicyInput{
		RoleName:  aws.String(role),
		PolicyArn: aws.String(arn),
	})
	if err != nil {
		return nil, apiError("AttachRolePolicy", err)
	}
	return provider.Outputs{"id": role + "/" + arn}, nil
}

func createInstanceProfile(ctx context.Context, client iamiface.IAMAPI, req provider.ProvisionRequest) (provider.Outputs, error) {
	name, err := provider.RequiredString(req.Properties, "name")
	if err != nil {
		return nil, err
	}
	role, err := provider.String(req.Properties, "role")
	if err != nil {
		return nil, err
	}

	out, err := client.CreateInstanceProfileWithContext(ctx, &iam.CreateInstanceProfileInput{
		InstanceProfileName: aws.String(name),
	})
	if err != nil {
		return nil, apiError("CreateInstanceProfile", err)
	}
	if out.InstanceProfile == nil {
		return nil, errors.New("CreateInstanceProfile returned no instance profile")
	}
	if role != "" {
		_, err = client.AddRoleToInstanceProfileWithContext(ctx, &iam.AddRoleToInstanceProfileInput{
			InstanceProfileName: aws.String(name),
			RoleName:            aws.String(role),
		})
		if err != nil {
			return nil, apiError("AddRoleToInstanceProfile", err)
		}
	}
	return provider.Outputs{
		"id":   aws.StringValue(out.InstanceProfile.InstanceProfileId),
		"name": aws.StringValue(out.InstanceProfile.InstanceProfileName),
		"arn":  aws.StringValue(out.InstanceProfile.Arn),
	}, nil
}
