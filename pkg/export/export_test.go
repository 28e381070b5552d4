package export

import (
	"encoding/json"
	"testing"

	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

type staticSource map[construct.AttributeRef]any

func (s staticSource) LookupAttribute(ref construct.AttributeRef) (any, bool) {
	v, ok := s[ref]
	return v, ok
}

var (
	east = construct.RefTo(construct.ResourceId{Kind: construct.KindInstance, Name: "ec2-instance-us-east-1"}, "id")
	west = construct.RefTo(construct.ResourceId{Kind: construct.KindInstance, Name: "ec2-instance-us-west-1"}, "id")
)

func TestExport(t *testing.T) {
	tests := []struct {
		name    string
		exports [][2]any
		wantErr error
	}{
		{
			name:    "distinct names",
			exports: [][2]any{{"a", east}, {"b", west}},
		},
		{
			name:    "same ref under two names",
			exports: [][2]any{{"a", east}, {"b", east}},
		},
		{
			name:    "duplicate name",
			exports: [][2]any{{"a", east}, {"a", west}},
			wantErr: ErrDuplicateExportName,
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var e Exporter
			var err error
			for _, ex := range tt.exports {
				if err = e.Export(ex[0].(string), ex[1].(construct.AttributeRef)); err != nil {
					break
				}
			}
			if tt.wantErr != nil {
				assert.ErrorIs(t, err, tt.wantErr)
				var dup *DuplicateExportNameError
				require.ErrorAs(t, err, &dup)
				assert.Equal(t, east, dup.Existing)
				return
			}
			assert.NoError(t, err)
		})
	}
}

func TestExport_Invalid(t *testing.T) {
	var e Exporter
	assert.Error(t, e.Export("", east))
	assert.Error(t, e.Export("x", construct.AttributeRef{}))
	assert.Empty(t, e.Names())
}

func TestExporter_Clone(t *testing.T) {
	var e Exporter
	require.NoError(t, e.Export("a", east))

	c := e.Clone()
	require.NoError(t, c.Export("b", west))

	assert.Equal(t, []string{"a"}, e.Names())
	assert.Equal(t, []string{"a", "b"}, c.Names())
	_, ok := e.Ref("b")
	assert.False(t, ok)
}

func TestFinalize(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	var e Exporter
	require.NoError(e.Export("ec2InstanceUsWest1Id", west))
	require.NoError(e.Export("ec2InstanceUsEast1Id", east))

	table, err := e.Finalize(staticSource{east: "i-east", west: "i-west"})
	require.NoError(err)

	assert.Equal(2, table.Len())
	assert.Equal([]string{"ec2InstanceUsEast1Id", "ec2InstanceUsWest1Id"}, table.Names())
	v, ok := table.Get("ec2InstanceUsEast1Id")
	assert.True(ok)
	assert.Equal("i-east", v)

	// The table is detached from the source map
	m := table.Map()
	m["ec2InstanceUsEast1Id"] = "changed"
	v, _ = table.Get("ec2InstanceUsEast1Id")
	assert.Equal("i-east", v)

	out, err := yaml.Marshal(table)
	require.NoError(err)
	assert.Equal("ec2InstanceUsEast1Id: i-east\nec2InstanceUsWest1Id: i-west\n", string(out))

	js, err := json.Marshal(table)
	require.NoError(err)
	assert.JSONEq(`{"ec2InstanceUsEast1Id":"i-east","ec2InstanceUsWest1Id":"i-west"}`, string(js))
}

func TestFinalize_Unresolved(t *testing.T) {
	require, assert := require.New(t), assert.New(t)

	bucket := construct.RefTo(construct.ResourceId{Kind: construct.KindBucket, Name: "logs"}, "id")

	var e Exporter
	require.NoError(e.Export("bucket", bucket))
	require.NoError(e.Export("east", east))
	require.NoError(e.Export("eastAgain", east))
	require.NoError(e.Export("west", west))

	table, err := e.Finalize(staticSource{west: "i-west"})
	assert.Nil(table)
	assert.ErrorIs(err, ErrUnresolvedReference)

	var unresolved *UnresolvedReferenceError
	require.ErrorAs(err, &unresolved)
	assert.Equal([]construct.AttributeRef{east, bucket}, unresolved.Refs)
}

func TestFinalize_Empty(t *testing.T) {
	var e Exporter
	table, err := e.Finalize(staticSource{})
	require.NoError(t, err)
	assert.Equal(t, 0, table.Len())
}
