package fanout

import (
	"errors"
	"testing"

	"github.com/klothoplatform/stackgraph/pkg/construct"
	"github.com/klothoplatform/stackgraph/pkg/set"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func instanceTemplate(calls *[]RegionSpec) Template {
	return func(region RegionSpec) (Subgraph, error) {
		*calls = append(*calls, region)
		d := construct.NewDeclarations()
		ami, err := d.Create(construct.KindImageLookup, region.Namespaced("ami"), nil)
		if err != nil {
			return nil, err
		}
		_, err = d.Create(construct.KindInstance, region.Namespaced("web"), construct.Properties{
			"ami": ami.Ref(construct.AttributeId),
		})
		return d, err
	}
}

func TestExpand(t *testing.T) {
	tests := []struct {
		name    string
		regions []RegionSpec
	}{
		{
			name:    "single region",
			regions: []RegionSpec{{RegionId: "us-east-1"}},
		},
		{
			name: "two regions",
			regions: []RegionSpec{
				{RegionId: "us-east-1", EnvironmentTag: "dev"},
				{RegionId: "us-west-1", EnvironmentTag: "dev"},
			},
		},
		{
			name: "three regions keep input order",
			regions: []RegionSpec{
				{RegionId: "eu-west-1"},
				{RegionId: "ap-south-1"},
				{RegionId: "us-east-2"},
			},
		},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			require, assert := require.New(t), assert.New(t)

			var calls []RegionSpec
			exp, err := Expand(instanceTemplate(&calls), tt.regions)
			require.NoError(err)

			assert.Equal(tt.regions, calls, "template must be invoked once per region, in order")
			assert.Equal(len(tt.regions), exp.Len())
			assert.Equal(tt.regions, exp.Regions())

			seen := make(set.Set[construct.ResourceId])
			for i := 0; i < exp.Len(); i++ {
				region, sub := exp.Get(i)
				assert.Equal(tt.regions[i], region)
				for _, id := range sub.Ids() {
					assert.False(seen.Contains(id), "%s is declared by more than one region", id)
					seen.Add(id)
					assert.Contains(id.Name, region.RegionId)
				}
			}

			merged := construct.NewDeclarations()
			require.NoError(exp.Merge(merged))
			assert.Equal(2*len(tt.regions), merged.Len())
		})
	}
}

func TestExpand_EmptyRegionList(t *testing.T) {
	var calls []RegionSpec
	exp, err := Expand(instanceTemplate(&calls), nil)
	assert.Nil(t, exp)
	assert.ErrorIs(t, err, ErrEmptyRegionList)
	assert.ErrorAs(t, err, &EmptyRegionListError{})
	assert.Empty(t, calls)
}

func TestExpand_DuplicateRegions(t *testing.T) {
	region := RegionSpec{RegionId: "us-east-1"}

	var calls []RegionSpec
	exp, err := Expand(instanceTemplate(&calls), []RegionSpec{region, region})
	assert.Nil(t, exp)
	assert.ErrorIs(t, err, construct.ErrDuplicateName)
	assert.Len(t, calls, 2)
}

func TestExpand_OverlappingSubgraphs(t *testing.T) {
	fixedName := func(region RegionSpec) (Subgraph, error) {
		d := construct.NewDeclarations()
		_, err := d.Create(construct.KindInstance, "vm", construct.Properties{"region": region.RegionId})
		return d, err
	}
	exp, err := Expand(fixedName, []RegionSpec{{RegionId: "us-east-1"}, {RegionId: "us-west-1"}})
	assert.Nil(t, exp)

	var dup *construct.DuplicateNameError
	require.ErrorAs(t, err, &dup)
	assert.Equal(t, construct.ResourceId{Kind: construct.KindInstance, Name: "vm"}, dup.ID)
	assert.Contains(t, err.Error(), "us-west-1")
}

func TestExpand_TemplateError(t *testing.T) {
	boom := errors.New("boom")
	_, err := Expand(func(region RegionSpec) (Subgraph, error) {
		return nil, boom
	}, []RegionSpec{{RegionId: "us-east-1"}})
	assert.ErrorIs(t, err, boom)
}

func TestExpand_MissingRegionId(t *testing.T) {
	var calls []RegionSpec
	_, err := Expand(instanceTemplate(&calls), []RegionSpec{{EnvironmentTag: "dev"}})
	assert.Error(t, err)
	assert.Empty(t, calls)
}

func TestExpansion_Subgraph(t *testing.T) {
	var calls []RegionSpec
	east, west := RegionSpec{RegionId: "us-east-1"}, RegionSpec{RegionId: "us-west-1"}
	exp, err := Expand(instanceTemplate(&calls), []RegionSpec{east, west})
	require.NoError(t, err)

	sub, ok := exp.Subgraph(west)
	require.True(t, ok)
	_, ok = sub.Get(construct.ResourceId{Kind: construct.KindInstance, Name: "web-us-west-1"})
	assert.True(t, ok)

	_, ok = exp.Subgraph(RegionSpec{RegionId: "eu-west-1"})
	assert.False(t, ok)
}
