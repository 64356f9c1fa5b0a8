package integration_tests

import (
	"testing"

	"github.com/specialistvlad/ambigrid/internal/builder"
	"github.com/specialistvlad/ambigrid/internal/graph"
	"github.com/specialistvlad/ambigrid/internal/model"
	"github.com/specialistvlad/ambigrid/internal/testutil"
	"github.com/stretchr/testify/require"
)

// scenario is one loaded and built model.
type scenario struct {
	*testutil.TestContext
	Result *builder.Result
}

// runScenario writes files, loads them as a model and builds it.
func runScenario(t *testing.T, files map[string]string, opts ...builder.Option) *scenario {
	t.Helper()
	tc := testutil.NewContext(t)
	root := testutil.WriteFiles(t, files)

	m, err := model.LoadRecursively(tc.Ctx, root)
	require.NoError(t, err, "loading the model should not fail")

	res, err := builder.New(opts...).Build(tc.Ctx, m)
	require.NoError(t, err, "building the model should not fail")
	return &scenario{TestContext: tc, Result: res}
}

// node returns an exported node or fails the test.
func (s *scenario) node(t *testing.T, id string) *graph.Node {
	t.Helper()
	n, ok := s.Result.Graph.Node(id)
	require.True(t, ok, "node %s was not exported", id)
	return n
}

// prop returns an exported property of a leaf node or fails the test.
func (s *scenario) prop(t *testing.T, id, name string) graph.Property {
	t.Helper()
	for _, p := range s.node(t, id).Properties {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("node %s has no property %s", id, name)
	return graph.Property{}
}
