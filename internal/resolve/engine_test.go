package resolve

import (
	"context"
	"testing"

	"github.com/specialistvlad/ambigrid/internal/decl"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/nodeid"
	"github.com/specialistvlad/ambigrid/internal/registry"
	"github.com/specialistvlad/ambigrid/internal/slice"
	"github.com/specialistvlad/ambigrid/internal/testutil"
	"github.com/specialistvlad/ambigrid/internal/typesys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type world struct {
	tc  *testutil.TestContext
	reg *registry.Registry
	ix  *slice.Index
}

func newWorld(t *testing.T, types ...*registry.TypeInfo) *world {
	t.Helper()
	w := &world{tc: testutil.NewContext(t), reg: registry.New(), ix: slice.NewIndex()}
	for _, ti := range types {
		require.NoError(t, w.reg.Declare(ti))
	}
	return w
}

func (w *world) add(t *testing.T, typeName, name string) *slice.Instance {
	t.Helper()
	d, err := w.reg.Descriptor(w.tc.Ctx, typeName)
	require.NoError(t, err)
	inst := slice.NewChain(nodeid.Instance("main", name, -1), "main", d)
	w.ix.Add(inst)
	return inst
}

func (w *world) link(t *testing.T) {
	t.Helper()
	require.NoError(t, w.ix.ResolveReferences(w.tc.Ctx))
}

func prop(owner, name string, ty typesys.Type) *decl.Declaration {
	return &decl.Declaration{Name: name, Owner: owner, Type: ty, Writeable: true}
}

func optional(d *decl.Declaration) *decl.Declaration {
	d.Optional, d.ExplicitOptional = true, true
	return d
}

func str(v string) slice.Value { return slice.Data(cty.StringVal(v)) }

func TestResolve_ValueSetOnBaseLevel(t *testing.T) {
	w := newWorld(t,
		&registry.TypeInfo{Name: "Base", Properties: []*decl.Declaration{prop("Base", "Name", typesys.Of(cty.String))}},
		&registry.TypeInfo{Name: "Derived", Parent: "Base"},
	)
	inst := w.add(t, "Derived", "d")
	w.link(t)

	require.NoError(t, inst.Root().Set(w.tc.Ctx, "Name", str("x")))

	e := New()
	cell, err := e.ResolveName(w.tc.Ctx, inst.Leaf(), "Name")
	require.NoError(t, err)
	assert.Equal(t, slice.ResolvedValue, cell.State())
	assert.Equal(t, "x", cell.Value().Data().AsString())
	assert.Empty(t, w.tc.Collector.All())
}

func TestResolve_Deterministic(t *testing.T) {
	w := newWorld(t,
		&registry.TypeInfo{Name: "Base", Properties: []*decl.Declaration{prop("Base", "Name", typesys.Of(cty.String))}},
		&registry.TypeInfo{Name: "Derived", Parent: "Base"},
	)
	inst := w.add(t, "Derived", "d")
	w.link(t)

	calls := 0
	e := New(WithHook(func(ctx context.Context, h Handle) (slice.Value, bool) {
		calls++
		return str("hooked"), true
	}))

	fromLeaf := e.Resolve(w.tc.Ctx, inst.Leaf(), 0)
	fromRoot := e.Resolve(w.tc.Ctx, inst.Root(), 0)
	all := e.ResolveAll(w.tc.Ctx, inst)

	assert.Same(t, fromLeaf, fromRoot)
	assert.Same(t, fromLeaf, all[0])
	assert.Equal(t, "hooked", fromLeaf.Value().Data().AsString())
	assert.Equal(t, 1, calls)
	assert.Nil(t, e.Resolve(w.tc.Ctx, inst.Root(), 5))
}

func sharedTypes() []*registry.TypeInfo {
	return []*registry.TypeInfo{
		{Name: "C", Properties: []*decl.Declaration{prop("C", "Shared", typesys.Of(cty.String))}},
		{Name: "A", Container: &registry.TypeRef{Type: "C"}, Properties: []*decl.Declaration{
			optional(prop("A", "Shared", typesys.Of(cty.String))),
		}},
	}
}

func TestResolve_InheritsFromContainer(t *testing.T) {
	w := newWorld(t, sharedTypes()...)
	c := w.add(t, "C", "c")
	a := w.add(t, "A", "a")
	w.link(t)

	require.NoError(t, c.Leaf().Set(w.tc.Ctx, "Shared", str("fromC")))

	cell, err := New().ResolveName(w.tc.Ctx, a.Leaf(), "Shared")
	require.NoError(t, err)
	assert.Equal(t, "fromC", cell.Value().Data().AsString())
}

func TestResolve_DeferAndFinal(t *testing.T) {
	w := newWorld(t, sharedTypes()...)
	c := w.add(t, "C", "c")
	deferred := w.add(t, "A", "deferred")
	own := w.add(t, "A", "own")
	final := w.add(t, "A", "final")
	w.link(t)
	ctx := w.tc.Ctx

	require.NoError(t, c.Leaf().Set(ctx, "Shared", str("fromC")))
	require.NoError(t, deferred.Leaf().Set(ctx, "Shared", str("mine")))
	require.NoError(t, deferred.Leaf().Defer(ctx, "Shared"))
	require.NoError(t, own.Leaf().Set(ctx, "Shared", str("mine")))
	require.NoError(t, final.Leaf().Set(ctx, "Shared", str("mine")))
	require.NoError(t, final.Leaf().Defer(ctx, "Shared"))
	require.NoError(t, final.Leaf().SetFinal(ctx, "Shared", str("final")))

	e := New()
	get := func(inst *slice.Instance) string {
		cell, err := e.ResolveName(ctx, inst.Leaf(), "Shared")
		require.NoError(t, err)
		return cell.Value().Data().AsString()
	}
	assert.Equal(t, "fromC", get(deferred))
	assert.Equal(t, "mine", get(own))
	assert.Equal(t, "final", get(final))
}

func TestResolve_ShallowConfigurationYieldsToDeeperContainer(t *testing.T) {
	w := newWorld(t,
		&registry.TypeInfo{Name: "Base", Properties: []*decl.Declaration{prop("Base", "Color", typesys.Of(cty.String))}},
		&registry.TypeInfo{Name: "Derived", Parent: "Base", Container: &registry.TypeRef{Type: "Panel"}},
		&registry.TypeInfo{Name: "Panel", Properties: []*decl.Declaration{prop("Panel", "Color", typesys.Of(cty.String))}},
	)
	panel := w.add(t, "Panel", "p")
	shallow := w.add(t, "Derived", "shallow")
	deep := w.add(t, "Derived", "deep")
	w.link(t)
	ctx := w.tc.Ctx

	require.NoError(t, panel.Leaf().Set(ctx, "Color", str("blue")))
	require.NoError(t, shallow.Root().Set(ctx, "Color", str("red")))
	require.NoError(t, deep.Leaf().Set(ctx, "Color", str("red")))

	e := New()
	assert.Equal(t, "blue", e.Resolve(ctx, shallow.Leaf(), 0).Value().Data().AsString())
	assert.Equal(t, "red", e.Resolve(ctx, deep.Leaf(), 0).Value().Data().AsString())
}

func TestResolve_ContainerCycleTerminates(t *testing.T) {
	w := newWorld(t, &registry.TypeInfo{
		Name:       "Node",
		Container:  &registry.TypeRef{Type: "Node"},
		Properties: []*decl.Declaration{optional(prop("Node", "Shared", typesys.Of(cty.String)))},
	})
	a := w.add(t, "Node", "a")
	b := w.add(t, "Node", "b")
	w.link(t)

	require.Same(t, b.Leaf(), a.Leaf().Container())
	require.Same(t, a.Leaf(), b.Leaf().Container())
	require.NoError(t, a.Leaf().Defer(w.tc.Ctx, "Shared"))

	e := New()
	cell := e.Resolve(w.tc.Ctx, a.Leaf(), 0)
	assert.Equal(t, slice.ResolvedMissing, cell.State())
	// b took part in the cycle and was not cached from inside it.
	assert.Equal(t, slice.Unresolved, b.Cells()[0].State())

	cells := e.ResolveAll(w.tc.Ctx, b)
	assert.Equal(t, slice.ResolvedMissing, cells[0].State())
	assert.Empty(t, w.tc.Errors(diag.Resolution))
}

func TestResolve_CycleFirstCallerWins(t *testing.T) {
	newCycle := func(t *testing.T) (*world, *slice.Instance, *slice.Instance) {
		w := newWorld(t,
			&registry.TypeInfo{Name: "Base", Properties: []*decl.Declaration{prop("Base", "Color", typesys.Of(cty.String))}},
			&registry.TypeInfo{Name: "Node", Parent: "Base", Container: &registry.TypeRef{Type: "Node"}},
		)
		a := w.add(t, "Node", "a")
		b := w.add(t, "Node", "b")
		w.link(t)
		require.NoError(t, a.Root().Set(w.tc.Ctx, "Color", str("a")))
		require.NoError(t, b.Root().Set(w.tc.Ctx, "Color", str("b")))
		return w, a, b
	}

	testCases := []struct {
		name  string
		first func(a, b *slice.Instance) *slice.Instance
		want  string
	}{
		{"a first", func(a, _ *slice.Instance) *slice.Instance { return a }, "b"},
		{"b first", func(_, b *slice.Instance) *slice.Instance { return b }, "a"},
	}

	for _, tc := range testCases {
		t.Run(tc.name, func(t *testing.T) {
			w, a, b := newCycle(t)
			e := New()
			e.ResolveAll(w.tc.Ctx, tc.first(a, b))
			e.ResolveAll(w.tc.Ctx, a)
			e.ResolveAll(w.tc.Ctx, b)

			assert.Equal(t, tc.want, a.Cells()[0].Value().Data().AsString())
			assert.Equal(t, tc.want, b.Cells()[0].Value().Data().AsString())
		})
	}
}

func TestResolve_AbortedInstanceIsSkipped(t *testing.T) {
	w := newWorld(t,
		&registry.TypeInfo{Name: "Panel", Properties: []*decl.Declaration{optional(prop("Panel", "Color", typesys.Of(cty.String)))}},
		&registry.TypeInfo{Name: "Button", Container: &registry.TypeRef{Type: "Panel"},
			Properties: []*decl.Declaration{optional(prop("Button", "Color", typesys.Of(cty.String)))}},
	)
	panel := w.add(t, "Panel", "p")
	btn := w.add(t, "Button", "b")
	w.link(t)
	require.NoError(t, panel.Leaf().Set(w.tc.Ctx, "Color", str("blue")))
	panel.Abort()

	e := New()
	e.ResolveAll(w.tc.Ctx, panel)
	assert.Equal(t, slice.Unresolved, panel.Cells()[0].State())

	cell := e.Resolve(w.tc.Ctx, btn.Leaf(), 0)
	assert.Equal(t, slice.ResolvedMissing, cell.State())
	assert.Equal(t, slice.Unresolved, panel.Cells()[0].State())
}

func TestResolve_Mergeable(t *testing.T) {
	types := []*registry.TypeInfo{
		{Name: "C", Properties: []*decl.Declaration{
			prop("C", "Tags", typesys.Of(cty.List(cty.String))),
			prop("C", "Label", typesys.Of(cty.String)),
		}},
		{Name: "A", Container: &registry.TypeRef{Type: "C"}, Properties: []*decl.Declaration{
			{Name: "Tags", Owner: "A", Type: typesys.Of(cty.List(cty.String)), Writeable: true, Mergeable: true},
			{Name: "Label", Owner: "A", Type: typesys.Of(cty.String), Writeable: true, Mergeable: true},
		}},
	}
	w := newWorld(t, types...)
	c := w.add(t, "C", "c")
	a := w.add(t, "A", "a")
	w.link(t)
	ctx := w.tc.Ctx

	require.NoError(t, c.Leaf().Set(ctx, "Tags", slice.Data(cty.ListVal([]cty.Value{cty.StringVal("a")}))))
	require.NoError(t, a.Leaf().Set(ctx, "Tags", slice.Data(cty.ListVal([]cty.Value{cty.StringVal("b")}))))
	require.NoError(t, c.Leaf().Set(ctx, "Label", str("x")))
	require.NoError(t, a.Leaf().Set(ctx, "Label", str("y")))

	e := New()
	tags := e.Resolve(ctx, a.Leaf(), 0).Value().Data()
	assert.True(t, tags.RawEquals(cty.ListVal([]cty.Value{cty.StringVal("a"), cty.StringVal("b")})), tags.GoString())
	assert.Empty(t, w.tc.Errors(diag.Merge))

	label := e.Resolve(ctx, a.Leaf(), 1)
	assert.Equal(t, "y", label.Value().Data().AsString())
	assert.Len(t, w.tc.Errors(diag.Merge), 1)
	assert.Equal(t, slice.ResolvedValue, label.State())
}

func TestResolve_ContractsAndTracking(t *testing.T) {
	w := newWorld(t,
		&registry.TypeInfo{Name: "Theme", Tracking: registry.TrackingHolderRequires},
		&registry.TypeInfo{Name: "DarkTheme", Parent: "Theme"},
		&registry.TypeInfo{Name: "Window", Parent: "DarkTheme"},
		&registry.TypeInfo{Name: "Panel", Container: &registry.TypeRef{Type: "Window"}},
		&registry.TypeInfo{Name: "Button", Container: &registry.TypeRef{Type: "Panel"}, Properties: []*decl.Declaration{
			{Name: "Theme", Owner: "Button", Type: typesys.Named("Theme"), Kind: decl.KindContract},
		}},
	)
	win := w.add(t, "Window", "w")
	w.add(t, "Panel", "p")
	btn := w.add(t, "Button", "b")
	w.link(t)

	cell, err := New().ResolveName(w.tc.Ctx, btn.Leaf(), "Theme")
	require.NoError(t, err)

	theme := win.Leaf().As("Theme")
	require.True(t, cell.Value().IsRef())
	assert.Same(t, theme, cell.Value().Slice())
	assert.Equal(t, []*slice.Slice{btn.Leaf()}, theme.TrackedBy())
}

func TestResolve_ContractFromTargetReference(t *testing.T) {
	w := newWorld(t,
		&registry.TypeInfo{Name: "Clock"},
		&registry.TypeInfo{Name: "Timer", Properties: []*decl.Declaration{
			{Name: "Clock", Owner: "Timer", Type: typesys.Named("Clock"), Kind: decl.KindContract},
		}},
	)
	clock := w.add(t, "Clock", "clock")
	timer := w.add(t, "Timer", "t")
	w.link(t)

	cell := New().Resolve(w.tc.Ctx, timer.Leaf(), 0)
	assert.Same(t, clock.Leaf(), cell.Value().Slice())
	assert.Empty(t, clock.Leaf().TrackedBy())
}

func TestResolve_RequiredMissingAndInheritedKind(t *testing.T) {
	w := newWorld(t,
		&registry.TypeInfo{Name: "C", Properties: []*decl.Declaration{prop("C", "Secret", typesys.Of(cty.String))}},
		&registry.TypeInfo{Name: "A", Container: &registry.TypeRef{Type: "C"}, Properties: []*decl.Declaration{
			{Name: "Secret", Owner: "A", Type: typesys.Of(cty.String), Kind: decl.KindInherited},
		}},
	)
	c := w.add(t, "C", "c")
	a := w.add(t, "A", "a")
	w.link(t)
	require.NoError(t, c.Leaf().Set(w.tc.Ctx, "Secret", str("s")))

	cell := New().Resolve(w.tc.Ctx, a.Leaf(), 0)
	assert.Equal(t, slice.ResolvedMissing, cell.State())
	errs := w.tc.Errors(diag.Resolution)
	require.Len(t, errs, 1)
	assert.Equal(t, "main.a.A.Secret", errs[0].Subject)
}
