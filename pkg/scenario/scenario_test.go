package scenario

import (
	"errors"
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/dd0wney/stratagem/pkg/game"
	"github.com/dd0wney/stratagem/pkg/solver"
	"github.com/dd0wney/stratagem/pkg/validation"
)

func TestLoad_TwoNode(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "two_node.yaml"))
	require.NoError(t, err)

	assert.Equal(t, "two_node", s.Name)
	assert.Equal(t, 1.0, s.Budget)
	assert.Equal(t, game.DefaultUtilityParams(), s.Params())

	require.Len(t, s.Resources, 1)
	require.NotNil(t, s.Resources[0].Kind)
	assert.Equal(t, game.Honeypot, *s.Resources[0].Kind)

	catalog := s.Catalog()
	require.Len(t, catalog, 1)
	assert.Equal(t, game.Resource{Kind: game.Honeypot, Detection: 0.8, Cost: 1}, catalog[0])

	topo := s.Topology()
	require.Equal(t, 2, topo.Len())
	assert.Equal(t, []string{"A", "B"}, topo.IDs())
	assert.True(t, topo.Node(0).EntryPoint)
	assert.False(t, topo.Node(1).EntryPoint)
	assert.Equal(t, 1.0, topo.Node(0).Centrality)
	assert.Equal(t, 1.0, topo.Node(1).Centrality)
	assert.Equal(t, []string{"A"}, s.EntryPoints())
}

func TestLoad_SolvesEquilibrium(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "two_node.yaml"))
	require.NoError(t, err)

	sol, err := solver.Solve(s.Topology(), s.Catalog(), s.Budget, s.Params())
	require.NoError(t, err)
	assert.Equal(t, "A", sol.Target)
	assert.InDelta(t, -4.0/11.0, sol.DefenderUtility, 1e-6)
}

func TestLoad_Errors(t *testing.T) {
	_, err := Load(filepath.Join("testdata", "missing.yaml"))
	require.Error(t, err)
	assert.True(t, errors.Is(err, os.ErrNotExist))

	_, err = Load(filepath.Join("testdata", "unknown_edge.yaml"))
	require.Error(t, err)
	assert.ErrorIs(t, err, validation.ErrInvalid)
	field, ok := validation.FieldOf(err)
	require.True(t, ok)
	assert.Equal(t, "edges[1].dst", field)
	assert.Contains(t, err.Error(), `unknown node "cache"`)
}

func TestTopology_ExplicitCentrality(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "explicit_centrality.yaml"))
	require.NoError(t, err)

	topo := s.Topology()
	assert.Equal(t, 0.9, topo.Node(0).Centrality, "explicit value wins")
	assert.Equal(t, 1.0, topo.Node(1).Centrality)
	assert.Equal(t, 0.5, topo.Node(2).Centrality, "duplicate and self links ignored")

	assert.Equal(t, game.UtilityParams{Alpha: 2, Beta: 1}, s.Params())
	assert.Equal(t, game.DefaultCatalog(), s.Catalog())
}

func TestParse_Validation(t *testing.T) {
	tests := []struct {
		name  string
		doc   string
		field string
	}{
		{
			name:  "no nodes",
			doc:   "name: empty\nbudget: 1\n",
			field: "nodes",
		},
		{
			name:  "negative value",
			doc:   "budget: 1\nnodes:\n  - {id: a, value: -1}\n",
			field: "nodes[0].value",
		},
		{
			name:  "missing id",
			doc:   "budget: 1\nnodes:\n  - {value: 1}\n",
			field: "nodes[0].id",
		},
		{
			name:  "negative budget",
			doc:   "budget: -2\nnodes:\n  - {id: a, value: 1}\n",
			field: "budget",
		},
		{
			name:  "zero alpha",
			doc:   "budget: 1\nalpha: 0\nnodes:\n  - {id: a, value: 1}\n",
			field: "alpha",
		},
		{
			name:  "duplicate id",
			doc:   "budget: 1\nnodes:\n  - {id: a, value: 1}\n  - {id: a, value: 2}\n",
			field: "nodes[1].id",
		},
		{
			name:  "detection above one",
			doc:   "budget: 1\ncatalog:\n  - {kind: honeytoken, detection: 1.5, cost: 1}\nnodes:\n  - {id: a, value: 1}\n",
			field: "catalog[0].detection",
		},
		{
			name:  "repeated kind",
			doc:   "budget: 1\ncatalog:\n  - {kind: honeytoken, detection: 0.5, cost: 1}\n  - {kind: honeytoken, detection: 0.6, cost: 2}\nnodes:\n  - {id: a, value: 1}\n",
			field: "catalog[1].kind",
		},
		{
			name:  "missing kind",
			doc:   "budget: 1\ncatalog:\n  - detection: 0.5\n    cost: 1\nnodes:\n  - {id: a, value: 1}\n",
			field: "catalog[0].kind",
		},
		{
			name:  "null kind",
			doc:   "budget: 1\ncatalog:\n  - {kind: honeypot, detection: 0.8, cost: 3}\n  - {kind: null, detection: 0.5, cost: 1}\nnodes:\n  - {id: a, value: 1}\n",
			field: "catalog[1].kind",
		},
		{
			name:  "unknown edge source",
			doc:   "budget: 1\nnodes:\n  - {id: a, value: 1}\nedges:\n  - {src: b, dst: a}\n",
			field: "edges[0].src",
		},
		{
			name:  "infinite value",
			doc:   "budget: 1\nnodes:\n  - {id: a, value: .inf}\n",
			field: "nodes[0].value",
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, validation.ErrInvalid)
			field, ok := validation.FieldOf(err)
			require.True(t, ok, "error %v carries no field", err)
			assert.Equal(t, tt.field, field)
		})
	}
}

func TestParse_Malformed(t *testing.T) {
	tests := []struct {
		name string
		doc  string
	}{
		{"empty", ""},
		{"unknown key", "budget: 1\nbudgett: 2\nnodes:\n  - {id: a, value: 1}\n"},
		{"unknown kind", "budget: 1\ncatalog:\n  - {kind: tripwire, detection: 0.5, cost: 1}\nnodes:\n  - {id: a, value: 1}\n"},
		{"not a mapping", "- a\n- b\n"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := Parse([]byte(tt.doc))
			require.Error(t, err)
			assert.ErrorIs(t, err, ErrParse)
		})
	}
}

func TestDegreeCentrality(t *testing.T) {
	t.Run("single node", func(t *testing.T) {
		c := DegreeCentrality([]NodeSpec{{ID: "solo"}}, nil)
		assert.Equal(t, map[string]float64{"solo": 0}, c)
	})

	t.Run("star", func(t *testing.T) {
		nodes := []NodeSpec{{ID: "hub"}, {ID: "a"}, {ID: "b"}, {ID: "c"}, {ID: "d"}}
		edges := []EdgeSpec{{Src: "hub", Dst: "a"}, {Src: "b", Dst: "hub"}, {Src: "hub", Dst: "c"}, {Src: "hub", Dst: "d"}}
		c := DegreeCentrality(nodes, edges)
		assert.Equal(t, 1.0, c["hub"])
		for _, leaf := range []string{"a", "b", "c", "d"} {
			assert.Equal(t, 0.25, c[leaf], leaf)
		}
	})

	t.Run("isolated nodes", func(t *testing.T) {
		c := DegreeCentrality([]NodeSpec{{ID: "a"}, {ID: "b"}, {ID: "c"}}, []EdgeSpec{{Src: "a", Dst: "b"}})
		assert.Equal(t, 0.5, c["a"])
		assert.Equal(t, 0.5, c["b"])
		assert.Equal(t, 0.0, c["c"])
	})
}

func TestPreset(t *testing.T) {
	assert.Equal(t, []string{"medium", "small"}, PresetNames())

	small, err := Preset("small")
	require.NoError(t, err)
	assert.Equal(t, "small_enterprise", small.Name)
	require.Len(t, small.Nodes, 10)
	assert.Len(t, small.Edges, 12)
	assert.Equal(t, []string{"fw-ext", "web-1", "web-2"}, small.EntryPoints())
	assert.Equal(t, []string{"router-1", "ws-1", "ws-3"}, small.Neighbors("ws-2"))

	topo := small.Topology()
	require.NoError(t, topo.Validate())
	idx, ok := topo.Index("router-1")
	require.True(t, ok)
	assert.InDelta(t, 6.0/9.0, topo.Node(idx).Centrality, 1e-12)
	idx, _ = topo.Index("db-2")
	assert.InDelta(t, 1.0/9.0, topo.Node(idx).Centrality, 1e-12)

	medium, err := Preset("medium")
	require.NoError(t, err)
	assert.Len(t, medium.Nodes, 21)
	assert.Len(t, medium.Edges, 26)
	mtopo := medium.Topology()
	idx, ok = mtopo.Index("router-1")
	require.True(t, ok)
	assert.InDelta(t, 7.0/20.0, mtopo.Node(idx).Centrality, 1e-12)

	_, err = Preset("huge")
	require.Error(t, err)
	field, _ := validation.FieldOf(err)
	assert.Equal(t, "preset", field)
}

func TestPreset_SmallSolves(t *testing.T) {
	s, err := Preset("small")
	require.NoError(t, err)

	topo := s.Topology()
	sol, err := solver.Solve(topo, s.Catalog(), s.Budget, s.Params())
	require.NoError(t, err)

	_, ok := topo.Index(sol.Target)
	assert.True(t, ok, "target %q not in topology", sol.Target)
	assert.LessOrEqual(t, sol.Spend, s.Budget+1e-6)
	assert.GreaterOrEqual(t, sol.DefenderUtility, -10.0-1e-6)
}

func TestMarshal_RoundTrip(t *testing.T) {
	s, err := Load(filepath.Join("testdata", "explicit_centrality.yaml"))
	require.NoError(t, err)

	data, err := s.Marshal()
	require.NoError(t, err)
	again, err := Parse(data)
	require.NoError(t, err)
	assert.Equal(t, s, again)
}
