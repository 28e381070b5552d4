package construct

import (
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"gopkg.in/yaml.v3"
)

func buildGraph(t *testing.T, rs []*Resource, edges [][2]*Resource) Graph {
	g := NewGraph()
	for _, r := range rs {
		require.NoError(t, g.AddVertex(r))
	}
	for _, e := range edges {
		require.NoError(t, g.AddEdge(e[0].ID, e[1].ID))
	}
	return g
}

func TestTopologicalSort(t *testing.T) {
	provider := NewResource(KindProvider, "aws", nil)
	ami := NewResource(KindImageLookup, "ami", nil)
	role := NewResource(KindIamRole, "role", nil)
	profile := NewResource(KindInstanceProfile, "profile", nil)
	vm := NewResource(KindInstance, "vm", nil)

	g := buildGraph(t,
		[]*Resource{vm, profile, role, ami, provider},
		[][2]*Resource{
			{provider, ami},
			{provider, vm},
			{ami, vm},
			{role, profile},
			{profile, vm},
		},
	)

	topo, err := TopologicalSort(g)
	require.NoError(t, err)
	assert.Equal(t, []ResourceId{provider.ID, ami.ID, role.ID, profile.ID, vm.ID}, topo)

	reverse, err := ReverseTopologicalSort(g)
	require.NoError(t, err)
	assert.Equal(t, []ResourceId{vm.ID, profile.ID, role.ID, ami.ID, provider.ID}, reverse)
}

func TestTopologicalSort_Cycle(t *testing.T) {
	a := NewResource(KindIamRole, "a", nil)
	b := NewResource(KindInstanceProfile, "b", nil)
	c := NewResource(KindBucket, "c", nil)

	g := buildGraph(t,
		[]*Resource{a, b, c},
		[][2]*Resource{{a, b}, {b, a}},
	)

	_, err := TopologicalSort(g)
	var cycle *CyclicDependencyError
	require.ErrorAs(t, err, &cycle)
	assert.Equal(t, []ResourceId{a.ID, b.ID}, cycle.Remaining)
	assert.ErrorIs(t, err, ErrCyclicDependency)
}

func TestString(t *testing.T) {
	role := NewResource(KindIamRole, "role", nil)
	profile := NewResource(KindInstanceProfile, "profile", nil)
	bucket := NewResource(KindBucket, "logs", nil)

	g := buildGraph(t,
		[]*Resource{bucket, profile, role},
		[][2]*Resource{{role, profile}},
	)

	s, err := String(g)
	require.NoError(t, err)
	assert.Equal(t, `"iam_role:role" -> "instance_profile:profile"
"instance_profile:profile"
"bucket:logs"
`, s)
}

func TestYamlGraph(t *testing.T) {
	role := NewResource(KindIamRole, "role", Properties{"name": "wiz-role-dev"})
	profile := NewResource(KindInstanceProfile, "profile", Properties{"role": role.Ref("name")})

	g := buildGraph(t,
		[]*Resource{profile, role},
		[][2]*Resource{{role, profile}},
	)

	out, err := yaml.Marshal(YamlGraph{Graph: g})
	require.NoError(t, err)
	assert.Equal(t, `resources:
    iam_role:role:
        name: wiz-role-dev
    instance_profile:profile:
        role: iam_role:role#name
edges:
    iam_role:role -> instance_profile:profile:
`, string(out))
}

func TestWalkGraph(t *testing.T) {
	role := NewResource(KindIamRole, "role", nil)
	profile := NewResource(KindInstanceProfile, "profile", nil)
	g := buildGraph(t, []*Resource{profile, role}, [][2]*Resource{{role, profile}})

	var visited []ResourceId
	err := WalkGraph(g, func(id ResourceId, r *Resource, nerr error) error {
		visited = append(visited, id)
		return nerr
	})
	require.NoError(t, err)
	assert.Equal(t, []ResourceId{role.ID, profile.ID}, visited)

	visited = nil
	err = WalkGraphReverse(g, func(id ResourceId, r *Resource, nerr error) error {
		visited = append(visited, id)
		return StopWalk
	})
	require.NoError(t, err)
	assert.Equal(t, []ResourceId{profile.ID}, visited)
}
