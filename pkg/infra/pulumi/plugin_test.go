package pulumi

import (
	"testing"

	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/engine"
	"github.com/klothoplatform/stackgraph/pkg/export"
	kio "github.com/klothoplatform/stackgraph/pkg/io"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func filesByPath(files []kio.File) map[string]string {
	m := make(map[string]string, len(files))
	for _, f := range files {
		m[f.Path()] = string(f.(*kio.RawFile).Content)
	}
	return m
}

func TestRender(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	aws := construct.NewResource(construct.KindProvider, "aws-us-east-1", construct.Properties{"region": "us-east-1"})
	ami := construct.NewResource(construct.KindImageLookup, "ec2-instance-ami-us-east-1", construct.Properties{
		"mostRecent": true,
		"owners":     []any{"amazon"},
	}, aws.ID)
	vm := construct.NewResource(construct.KindInstance, "ec2-instance-us-east-1", construct.Properties{
		"ami":          ami.Ref("id"),
		"instanceType": "t2.micro",
		"tags":         map[string]any{"Name": "ec2-instance-us-east-1"},
	}, aws.ID)

	g, err := engine.Assemble([]*construct.Resource{vm, ami, aws})
	require.NoError(err)

	var exports export.Exporter
	require.NoError(exports.Export("ec2InstanceUsEast1Id", vm.Ref("id")))

	files, err := Plugin{Config: Config{Project: "my project!"}}.Render(g, &exports)
	require.NoError(err)

	byPath := filesByPath(files)
	assert.Equal(`import * as aws from "@pulumi/aws";
import * as pulumi from "@pulumi/pulumi";

const awsUsEast1 = new aws.Provider("aws-us-east-1", { region: "us-east-1" });

const ec2InstanceAmiUsEast1 = aws.ec2.getAmiOutput({ mostRecent: true, owners: ["amazon"] }, { provider: awsUsEast1 });

const ec2InstanceUsEast1 = new aws.ec2.Instance("ec2-instance-us-east-1", { ami: ec2InstanceAmiUsEast1.id, instanceType: "t2.micro", tags: { Name: "ec2-instance-us-east-1" } }, { provider: awsUsEast1 });

export const ec2InstanceUsEast1Id = ec2InstanceUsEast1.id;
`, byPath["index.ts"])

	assert.Equal("name: myproject\nruntime: nodejs\ndescription: \"Generated by stackgraph\"\n", byPath["Pulumi.yaml"])
	assert.Equal("config:\n  aws:region: \"us-east-1\"\n", byPath["Pulumi.dev.yaml"])
	assert.Contains(byPath["package.json"], `"@pulumi/aws"`)
	assert.Contains(byPath, "tsconfig.json")
}

func TestRender_ProviderArgs(t *testing.T) {
	aws := construct.NewResource(construct.KindProvider, "aws", construct.Properties{
		"region":      "eu-west-1",
		"environment": "dev",
		"tags":        map[string]any{"Environment": "dev", "cost-center": "42"},
	})
	g, err := engine.Assemble([]*construct.Resource{aws})
	require.NoError(t, err)

	files, err := Plugin{Config: Config{Project: "p", Stack: "prod"}}.Render(g, nil)
	require.NoError(t, err)

	byPath := filesByPath(files)
	assert.Contains(t, byPath["index.ts"],
		`const awsProvider = new aws.Provider("aws", { defaultTags: { tags: { Environment: "dev", "cost-center": "42" } }, region: "eu-west-1" });`)
	assert.Contains(t, byPath, "Pulumi.prod.yaml")
}

func TestVariables(t *testing.T) {
	order := []construct.ResourceId{
		{Kind: construct.KindIamRole, Name: "wiz-role"},
		{Kind: construct.KindInstanceProfile, Name: "wiz-role"},
		{Kind: construct.KindBucket, Name: "1st-bucket"},
		{Kind: construct.KindProvider, Name: "pulumi"},
	}
	vars := variables(order)
	assert.Equal(t, "wizRole", vars[order[0]])
	assert.Equal(t, "wizRoleInstanceProfile", vars[order[1]])
	assert.Equal(t, "r1StBucket", vars[order[2]])
	assert.Equal(t, "pulumiProvider", vars[order[3]])
}

func TestTsValue(t *testing.T) {
	role := construct.ResourceId{Kind: construct.KindIamRole, Name: "role"}
	vars := map[construct.ResourceId]string{role: "role"}

	tests := []struct {
		name    string
		value   any
		want    string
		wantErr bool
	}{
		{name: "string", value: `a "quoted" string`, want: `"a \"quoted\" string"`},
		{name: "number", value: 3, want: "3"},
		{name: "nil", value: nil, want: "undefined"},
		{name: "ref", value: construct.RefTo(role, "arn"), want: "role.arn"},
		{name: "nested", value: map[string]any{"list": []any{1, "a"}, "empty": map[string]any{}}, want: `{ empty: {}, list: [1, "a"] }`},
		{name: "unknown ref", value: construct.RefTo(construct.ResourceId{Kind: construct.KindBucket, Name: "b"}, "id"), wantErr: true},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := tsValue(tt.value, vars)
			if tt.wantErr {
				assert.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Equal(t, tt.want, got)
		})
	}
}

func TestRender_InvalidProject(t *testing.T) {
	g, err := engine.Assemble(nil)
	require.NoError(t, err)
	_, err = Plugin{Config: Config{Project: "!!!"}}.Render(g, nil)
	assert.Error(t, err)
}
