// Package aws holds the naming rules of the AWS resources a stack creates.
package aws

import "github.com/klothoplatform/stackgraph/pkg/sanitization"

var (
	iamName = sanitization.Replace(`[^\w+=,.@-]`, "_")

	iamRole = sanitization.Sanitizer{
		Rules:     []sanitization.Rule{iamName},
		MaxLength: 64,
	}

	instanceProfile = sanitization.Sanitizer{
		Rules:     []sanitization.Rule{iamName},
		MaxLength: 128,
	}

	s3Bucket = sanitization.Sanitizer{
		Lowercase: true,
		Rules: []sanitization.Rule{
			sanitization.Replace(`[^a-z0-9.-]`, "-"),
			// must start with a letter or digit
			sanitization.Replace(`^[^a-z0-9]+`, ""),
		},
		MaxLength: 63,
		TrimRight: ".-",
	}
)

func IamRoleName(name string) string {
	return iamRole.Apply(name)
}

func InstanceProfileName(name string) string {
	return instanceProfile.Apply(name)
}

func S3BucketName(name string) string {
	return s3Bucket.Apply(name)
}
