package aws

import (
	"context"
	"errors"
	"fmt"
	"sort"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/ec2"
	"github.com/aws/aws-sdk-go/service/ec2/ec2iface"
	"github.com/klothoplatform/stackgraph/pkg/logging"
	"github.com/klothoplatform/stackgraph/pkg/provider"
	"go.uber.org/zap"
)

var ErrNoImage = errors.New("no image matches the filter")

func lookupImage(ctx context.Context, client ec2iface.EC2API, filter provider.Filter, pc provider.ProviderContext) (string, error) {
	owners, err := provider.Strings(filter, "owners")
	if err != nil {
		return "", err
	}
	mostRecent, err := provider.Bool(filter, "mostRecent")
	if err != nil {
		return "", err
	}
	filters, err := provider.ImageFilters(filter)
	if err != nil {
		return "", err
	}

	input := &ec2.DescribeImagesInput{}
	if len(owners) > 0 {
		input.Owners = aws.StringSlice(owners)
	}
	for _, f := range filters {
		input.Filters = append(input.Filters, &ec2.Filter{
			Name:   aws.String(f.Name),
			Values: aws.StringSlice(f.Values),
		})
	}

	out, err := client.DescribeImagesWithContext(ctx, input)
	if err != nil {
		return "", apiError("DescribeImages", err)
	}
	images := out.Images
	if len(images) == 0 {
		return "", ErrNoImage
	}
	if len(images) > 1 && !mostRecent {
		return "", fmt.Errorf("%d images match the filter, narrow it or set mostRecent", len(images))
	}
	// CreationDate is ISO 8601 so lexical order is chronological.
	sort.SliceStable(images, func(i, j int) bool {
		return aws.StringValue(images[i].CreationDate) > aws.StringValue(images[j].CreationDate)
	})
	image := aws.StringValue(images[0].ImageId)

	logging.GetLogger(ctx).Named("provider.aws").Debug("Found image",
		logging.RegionField(pc.Region),
		zap.String("image", image),
		zap.String("name", aws.StringValue(images[0].Name)),
		zap.Int("candidates", len(images)),
	)
	return image, nil
}

func ec2Tags(tags map[string]string) []*ec2.Tag {
	out := make([]*ec2.Tag, 0, len(tags))
	for _, k := range provider.SortedTagKeys(tags) {
		out = append(out, &ec2.Tag{Key: aws.String(k), Value: aws.String(tags[k])})
	}
	return out
}

func runInstance(ctx context.Context, client ec2iface.EC2API, pc provider.ProviderContext, req provider.ProvisionRequest) (provider.Outputs, error) {
	image, err := provider.RequiredString(req.Properties, "ami")
	if err != nil {
		return nil, err
	}
	instanceType, err := provider.RequiredString(req.Properties, "instanceType")
	if err != nil {
		return nil, err
	}
	profile, err := provider.String(req.Properties, "iamInstanceProfile")
	if err != nil {
		return nil, err
	}
	tags, err := provider.Tags(req.Properties, "tags")
	if err != nil {
		return nil, err
	}

	input := &ec2.RunInstancesInput{
		ImageId:      aws.String(image),
		InstanceType: aws.String(instanceType),
		MinCount:     aws.Int64(1),
		MaxCount:     aws.Int64(1),
	}
	if profile != "" {
		input.IamInstanceProfile = &ec2.IamInstanceProfileSpecification{Name: aws.String(profile)}
	}
	if merged := pc.MergedTags(tags); len(merged) > 0 {
		input.TagSpecifications = []*ec2.TagSpecification{{
			ResourceType: aws.String(ec2.ResourceTypeInstance),
			Tags:         ec2Tags(merged),
		}}
	}

	out, err := client.RunInstancesWithContext(ctx, input)
	if err != nil {
		return nil, apiError("RunInstances", err)
	}
	if len(out.Instances) == 0 {
		return nil, errors.New("RunInstances returned no instance")
	}
	inst := out.Instances[0]
	outputs := provider.Outputs{
		"id":           aws.StringValue(inst.InstanceId),
		"instanceType": aws.StringValue(inst.InstanceType),
	}
	if inst.PrivateIpAddress != nil {
		outputs["privateIp"] = aws.StringValue(inst.PrivateIpAddress)
	}
	return outputs, nil
}
