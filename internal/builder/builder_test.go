package builder

import (
	"context"
	"sort"
	"testing"

	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/graph"
	"github.com/specialistvlad/ambigrid/internal/model"
	"github.com/specialistvlad/ambigrid/internal/resolve"
	"github.com/specialistvlad/ambigrid/internal/slice"
	"github.com/specialistvlad/ambigrid/internal/testutil"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

const uiTypes = `
type "Widget" {
  property "color" {
    type     = string
    optional = true
  }
  property "tags" {
    type      = list(string)
    mergeable = true
    optional  = true
  }
}

type "Theme" {
  property "accent" {
    type     = string
    optional = true
  }
}

type "Window" {
  extends  = "Widget"
  item     = "container"
  tracking = "add_property_holder_as_children"

  property "theme" {
    type = Theme
    kind = "contract"
  }
}

type "Clock" {}

type "Button" {
  extends   = "Widget"
  container = "ui.Window"
  requires  = ["Clock"]

  property "label" {
    type = string
  }
  property "owner" {
    type = Window
  }
  property "serial" {
    type      = number
    writeable = false
    optional  = true
  }
}
`

const uiInstances = `
instance "Theme" "dark" {
  context = "ui"
  values {
    accent = "black"
  }
}

instance "Window" "main" {
  context = "ui"
  values {
    color = "blue"
    tags  = ["window"]
  }
}

instance "Clock" "clock" {
  context = "sys"
}

instance "Button" "ok" {
  context = "ui"
  count   = 2
  values {
    label = format("ok-%d", count.index)
    tags  = ["button"]
    owner = instance.ui.main
  }
  final {
    serial = 7
  }
}

instance "Button" "cancel" {
  context = "ui"
  values {
    label  = "cancel"
    color  = "red"
    serial = 3
  }
}

instance "Button" "styled" {
  context = "ui"
  values {
    label = "styled"
  }
  level "Widget" {
    color = "green"
  }
}
`

func build(t *testing.T, tc *testutil.TestContext, files map[string]string, opts ...Option) *Result {
	t.Helper()
	root := testutil.WriteFiles(t, files)
	m, err := model.LoadRecursively(tc.Ctx, root)
	require.NoError(t, err)

	res, err := New(opts...).Build(tc.Ctx, m)
	require.NoError(t, err)
	return res
}

func property(t *testing.T, g *graph.Graph, nodeID, name string) graph.Property {
	t.Helper()
	n, ok := g.Node(nodeID)
	require.True(t, ok, "node %s not exported", nodeID)
	for _, p := range n.Properties {
		if p.Name == name {
			return p
		}
	}
	t.Fatalf("node %s has no property %s", nodeID, name)
	return graph.Property{}
}

func TestBuild_EndToEnd(t *testing.T) {
	tc := testutil.NewContext(t)
	res := build(t, tc, map[string]string{
		"types/ui.hcl":  uiTypes,
		"instances.hcl": uiInstances,
	}, WithExportOptions(graph.Options{FoldTracking: true}))

	require.NoError(t, res.Fatal())
	assert.Empty(t, res.Skipped)
	assert.Empty(t, tc.Errors(diag.Resolution))
	assert.Len(t, res.Index.Instances(), 7)

	g := res.Graph

	t.Run("count expansion", func(t *testing.T) {
		assert.Equal(t, "ok-0", property(t, g, "ui.ok[0].Button", "label").Value)
		assert.Equal(t, "ok-1", property(t, g, "ui.ok[1].Button", "label").Value)
	})

	t.Run("container inheritance", func(t *testing.T) {
		assert.Equal(t, "blue", property(t, g, "ui.ok[0].Button", "color").Value)
		assert.Equal(t, "red", property(t, g, "ui.cancel.Button", "color").Value, "own leaf value wins")
		assert.Equal(t, "blue", property(t, g, "ui.styled.Button", "color").Value, "a deeper container beats a shallow level value")
	})

	t.Run("mergeable concatenates", func(t *testing.T) {
		assert.Equal(t, []any{"window", "button"}, property(t, g, "ui.ok[0].Button", "tags").Value)
		assert.Equal(t, []any{"window"}, property(t, g, "ui.cancel.Button", "tags").Value)
	})

	t.Run("final ignores writeability", func(t *testing.T) {
		assert.Equal(t, float64(7), property(t, g, "ui.ok[0].Button", "serial").Value)

		rejected := tc.Errors(diag.Assignment)
		require.Len(t, rejected, 1)
		assert.Equal(t, "ui.cancel.Button.serial", rejected[0].Subject)
		assert.Equal(t, "resolved-missing", property(t, g, "ui.cancel.Button", "serial").State)
	})

	t.Run("references", func(t *testing.T) {
		owner := property(t, g, "ui.ok[1].Button", "owner")
		assert.Equal(t, "ui.main.Window", owner.Ref)

		theme := property(t, g, "ui.main.Window", "theme")
		assert.Equal(t, "ui.dark.Theme", theme.Ref)
	})

	t.Run("structure", func(t *testing.T) {
		button, ok := g.Node("ui.ok[0].Button")
		require.True(t, ok)
		assert.Equal(t, "ui.main.Window", button.Container)
		assert.Equal(t, "ui.ok[0].Widget", button.Generalization)
		assert.Equal(t, []graph.Edge{{Node: "sys.clock.Clock"}}, button.Requires)

		window, ok := g.Node("ui.main.Window")
		require.True(t, ok)
		assert.Equal(t, []graph.Edge{{Node: "ui.ok[0].Button"}, {Node: "ui.ok[1].Button"}}, window.Children)
		assert.Equal(t, []string{"ui.cancel.Button", "ui.ok[0].Button", "ui.ok[1].Button", "ui.styled.Button"},
			sorted(g.Contexts["ui"]["Button"]))
	})
}

func TestBuild_Hook(t *testing.T) {
	tc := testutil.NewContext(t)
	calls := 0
	hook := func(_ context.Context, h resolve.Handle) (slice.Value, bool) {
		calls++
		if h.Name() != "label" {
			return slice.Missing, false
		}
		return slice.Data(cty.StringVal("from " + h.Leaf.Instance.ID())), true
	}

	res := build(t, tc, map[string]string{
		"model.hcl": `
type "Tag" {
  property "label" {
    type = string
  }
}

instance "Tag" "t" {}
`,
	}, WithHook(hook))

	assert.Equal(t, "from default.t", property(t, res.Graph, "default.t.Tag", "label").Value)
	assert.Equal(t, 1, calls)
	assert.Empty(t, tc.Errors(diag.Resolution))
}

func TestBuild_AmbiguousContainerIsFatal(t *testing.T) {
	tc := testutil.NewContext(t)
	res := build(t, tc, map[string]string{
		"model.hcl": `
type "Window" {}
type "Button" {
  container = "Window"
}

instance "Window" "a" {}
instance "Window" "b" {}
instance "Button" "ok" {}
`,
	})

	require.Error(t, res.Fatal())
	fatal := tc.Collector.Filter(diag.Ambiguity, diag.SeverityFatal)
	require.Len(t, fatal, 1)
	assert.Equal(t, "default.ok.Button", fatal[0].Subject)
}

func TestBuild_ContainerCycle(t *testing.T) {
	tc := testutil.NewContext(t)
	res := build(t, tc, map[string]string{
		"model.hcl": `
type "Panel" {
  container = "Panel"
  property "color" {
    type     = string
    optional = true
  }
}

instance "Panel" "a" {
  context = "p"
}
instance "Panel" "b" {
  context = "p"
  values {
    color = "red"
  }
}
`,
	})

	require.Error(t, res.Fatal())
	cycles := tc.Collector.Filter(diag.Cycle, diag.SeverityFatal)
	require.Len(t, cycles, 1)
	assert.Contains(t, cycles[0].Message, "p.a")
	assert.Contains(t, cycles[0].Message, "p.b")
	assert.ElementsMatch(t, []string{"p.a", "p.b"}, res.Unresolved)

	assert.Equal(t, "unresolved", property(t, res.Graph, "p.a.Panel", "color").State)
	assert.Equal(t, "unresolved", property(t, res.Graph, "p.b.Panel", "color").State)
}

func TestBuild_AmbiguousContainerAbortsSubtree(t *testing.T) {
	tc := testutil.NewContext(t)
	res := build(t, tc, map[string]string{
		"model.hcl": `
type "Theme" {
  property "color" {
    type     = string
    optional = true
  }
}

type "Base" {
  container = "Theme"
  property "color" {
    type     = string
    optional = true
  }
}

type "Window" {}

type "Button" {
  extends   = "Base"
  container = "Window"
}

type "Caption" {
  container = "Button"
  property "color" {
    type     = string
    optional = true
  }
}

instance "Theme" "t" {
  values {
    color = "blue"
  }
}
instance "Window" "a" {}
instance "Window" "b" {}
instance "Button" "ok" {}
instance "Caption" "text" {}
`,
	})

	require.Error(t, res.Fatal())
	require.Len(t, tc.Collector.Filter(diag.Ambiguity, diag.SeverityFatal), 1)
	assert.ElementsMatch(t, []string{"default.ok", "default.text"}, res.Unresolved)

	ok, found := res.Instance("default.ok")
	require.True(t, found)
	assert.True(t, ok.Aborted())
	assert.Nil(t, ok.Leaf().Container(), "an ambiguous level must not fall back to its parent's container")

	assert.Equal(t, "unresolved", property(t, res.Graph, "default.ok.Button", "color").State)
	assert.Equal(t, "unresolved", property(t, res.Graph, "default.text.Caption", "color").State)
	assert.Equal(t, "resolved-value", property(t, res.Graph, "default.t.Theme", "color").State)

	warnings := tc.Collector.Filter(diag.Resolution, diag.SeverityWarn)
	require.Len(t, warnings, 1)
	assert.Equal(t, "default.text", warnings[0].Subject)
	assert.Contains(t, warnings[0].Message, "default.ok")
}

func TestBuild_ContainerCycleAbortsDependents(t *testing.T) {
	tc := testutil.NewContext(t)
	res := build(t, tc, map[string]string{
		"model.hcl": `
type "Alpha" {
  container = "Beta"
  property "color" {
    type     = string
    optional = true
  }
}

type "Beta" {
  container = "Alpha"
  property "color" {
    type     = string
    optional = true
  }
}

type "Gamma" {
  container = "Alpha"
  property "color" {
    type     = string
    optional = true
  }
}

instance "Alpha" "a" {}
instance "Beta" "b" {
  values {
    color = "red"
  }
}
instance "Gamma" "c" {}
instance "Gamma" "d" {
  values {
    color = "green"
  }
}
`,
	})

	require.Len(t, tc.Collector.Filter(diag.Cycle, diag.SeverityFatal), 1)
	assert.ElementsMatch(t, []string{"default.a", "default.b", "default.c", "default.d"}, res.Unresolved)
	for _, id := range []string{"default.a.Alpha", "default.b.Beta", "default.c.Gamma", "default.d.Gamma"} {
		p := property(t, res.Graph, id, "color")
		assert.Equal(t, "unresolved", p.State, id)
		assert.Nil(t, p.Value, id)
	}
}

func TestBuild_Findings(t *testing.T) {
	testCases := []struct {
		name     string
		src      string
		category diag.Category
		subject  string
		skipped  []string
	}{
		{
			name:     "unknown type",
			src:      `instance "Ghost" "g" {}`,
			category: diag.Structural,
			subject:  "default.g",
			skipped:  []string{"default.g"},
		},
		{
			name: "duplicate instance",
			src: `
type "A" {}
instance "A" "x" {}
instance "A" "x" {}
`,
			category: diag.Structural,
			subject:  "default.x",
			skipped:  []string{"default.x"},
		},
		{
			name: "inheritance cycle",
			src: `
type "A" { extends = "B" }
type "B" { extends = "A" }
`,
			category: diag.Structural,
			subject:  "A",
		},
		{
			name: "unknown level",
			src: `
type "A" {}
instance "A" "x" {
  level "Nope" {}
}
`,
			category: diag.Assignment,
			subject:  "default.x",
		},
		{
			name: "unknown referenced instance",
			src: `
type "A" {
  property "peer" { type = A }
}
instance "A" "x" {
  values {
    peer = instance.default.ghost
  }
}
`,
			category: diag.Reference,
			subject:  "default.x.A.peer",
		},
		{
			name: "unknown property",
			src: `
type "A" {}
instance "A" "x" {
  values {
    size = 3
  }
}
`,
			category: diag.Assignment,
			subject:  "default.x.A.size",
		},
		{
			name: "reference inside an expression",
			src: `
type "A" {
  property "peers" {
    type     = any
  }
}
instance "A" "x" {
  values {
    peers = [instance.default.x]
  }
}
`,
			category: diag.Assignment,
			subject:  "default.x.A.peers",
		},
		{
			name: "required property missing",
			src: `
type "A" {
  property "size" { type = number }
}
instance "A" "x" {}
`,
			category: diag.Resolution,
			subject:  "default.x.A.size",
		},
	}

	for _, tt := range testCases {
		t.Run(tt.name, func(t *testing.T) {
			tc := testutil.NewContext(t)
			res := build(t, tc, map[string]string{"model.hcl": tt.src})

			found := tc.Errors(tt.category)
			require.NotEmpty(t, found)
			assert.Equal(t, tt.subject, found[0].Subject)
			assert.Equal(t, tt.skipped, res.Skipped)
		})
	}
}

func TestBuild_WithoutCollector(t *testing.T) {
	m := &model.Model{}
	res, err := New().Build(context.Background(), m)
	require.NoError(t, err)
	require.NotNil(t, res.Collector)
	assert.Empty(t, res.Graph.Nodes)
}

func TestBuild_Cancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	_, err := New().Build(ctx, &model.Model{})
	assert.ErrorIs(t, err, context.Canceled)
}

func sorted(ids []string) []string {
	out := append([]string(nil), ids...)
	sort.Strings(out)
	return out
}
