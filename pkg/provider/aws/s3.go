package aws

import (
	"context"

	"github.com/aws/aws-sdk-go/aws"
	"github.com/aws/aws-sdk-go/service/s3"
	"github.com/aws/aws-sdk-go/service/s3/s3iface"
	"github.com/klothoplatform/stackgraph/pkg/provider"
)

// usEast1 rejects an explicit location constraint.
const usEast1 = "us-east-1"

func createBucket(ctx context.Context, client s3iface.S3API, pc provider.ProviderContext, req provider.ProvisionRequest) (provider.Outputs, error) {
	bucket, err := provider.RequiredString(req.Properties, "bucket")
	if err != nil {
		return nil, err
	}
	tags, err := provider.Tags(req.Properties, "tags")
	if err != nil {
		return nil, err
	}

	input := &s3.CreateBucketInput{Bucket: aws.String(bucket)}
	if pc.Region != usEast1 {
		input.CreateBucketConfiguration = &s3.CreateBucketConfiguration{
			LocationConstraint: aws.String(pc.Region),
		}
	}
	if _, err := client.CreateBucketWithContext(ctx, input); err != nil {
		return nil, apiError("CreateBucket", err)
	}

	if merged := pc.MergedTags(tags); len(merged) > 0 {
		tagSet := make([]*s3.Tag, 0, len(merged))
		for _, k := range provider.SortedTagKeys(merged) {
			tagSet = append(tagSet, &s3.Tag{Key: aws.String(k), Value: aws.String(merged[k])})
		}
		_, err := client.PutBucketTaggingWithContext(ctx, &s3.PutBucketTaggingInput{
			Bucket:  aws.String(bucket),
			Tagging: &s3.Tagging{TagSet: tagSet},
		})
		if err != nil {
			return nil, apiError("PutBucketTagging", err)
		}
	}
	return provider.Outputs{
		"id":  bucket,
		"arn": "arn:aws:s3:::" + bucket,
	}, nil
}
