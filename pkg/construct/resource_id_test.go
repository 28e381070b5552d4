package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestResourceId_UnmarshalText(t *testing.T) {
	tests := []struct {
		name    string
		str     string
		want    ResourceId
		wantErr bool
	}{
		{
			name: "instance",
			str:  "instance:my-ec2-instance",
			want: ResourceId{Kind: KindInstance, Name: "my-ec2-instance"},
		},
		{
			name: "namespaced by region",
			str:  "image_lookup:ami-us-east-1",
			want: ResourceId{Kind: KindImageLookup, Name: "ami-us-east-1"},
		},
		{
			name: "empty",
			str:  "",
			want: ResourceId{},
		},
		{
			name:    "unknown kind",
			str:     "vpc:main",
			wantErr: true,
		},
		{
			name:    "missing name",
			str:     "bucket:",
			wantErr: true,
		},
		{
			name:    "no separator",
			str:     "bucket",
			wantErr: true,
		},
		{
			name:    "invalid characters",
			str:     "bucket:my bucket",
			wantErr: true,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert := assert.New(t)
			var id ResourceId
			err := id.UnmarshalText([]byte(tt.str))
			if tt.wantErr {
				assert.Error(err)
				return
			}
			if !assert.NoError(err) {
				return
			}
			assert.Equal(tt.want, id)
			assert.Equal(tt.str, id.String())
		})
	}
}

func TestAttributeRef_UnmarshalText(t *testing.T) {
	assert := assert.New(t)

	var ref AttributeRef
	assert.NoError(ref.UnmarshalText([]byte("iam_role:wiz-role-dev#name")))
	assert.Equal(RefTo(ResourceId{Kind: KindIamRole, Name: "wiz-role-dev"}, "name"), ref)
	assert.Equal("iam_role:wiz-role-dev#name", ref.String())

	assert.Error(ref.UnmarshalText([]byte("iam_role:wiz-role-dev")))
	assert.Error(ref.UnmarshalText([]byte("iam_role:wiz-role-dev#")))
}

func TestKind(t *testing.T) {
	assert := assert.New(t)

	for _, k := range Kinds() {
		text, err := k.MarshalText()
		assert.NoError(err)

		var parsed Kind
		assert.NoError(parsed.UnmarshalText(text))
		assert.Equal(k, parsed)
	}

	_, err := KindUnknown.MarshalText()
	assert.Error(err)
	assert.True(KindImageLookup.IsLookup())
	assert.False(KindInstance.IsLookup())
}
