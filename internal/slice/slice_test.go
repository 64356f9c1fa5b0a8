package slice

import (
	"testing"

	"github.com/specialistvlad/ambigrid/internal/decl"
	"github.com/specialistvlad/ambigrid/internal/diag"
	"github.com/specialistvlad/ambigrid/internal/nodeid"
	"github.com/specialistvlad/ambigrid/internal/registry"
	"github.com/specialistvlad/ambigrid/internal/testutil"
	"github.com/specialistvlad/ambigrid/internal/typesys"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/zclconf/go-cty/cty"
)

type fixture struct {
	tc  *testutil.TestContext
	reg *registry.Registry
	ix  *Index
}

func newFixture(t *testing.T, types ...*registry.TypeInfo) *fixture {
	t.Helper()
	f := &fixture{tc: testutil.NewContext(t), reg: registry.New(), ix: NewIndex()}
	for _, ti := range types {
		require.NoError(t, f.reg.Declare(ti))
	}
	return f
}

func (f *fixture) instance(t *testing.T, typeName, context, name string) *Instance {
	t.Helper()
	d, err := f.reg.Descriptor(f.tc.Ctx, typeName)
	require.NoError(t, err)
	inst := NewChain(nodeid.Instance(context, name, -1), context, d)
	f.ix.Add(inst)
	return inst
}

var (
	baseType = &registry.TypeInfo{
		Name:      "Base",
		Container: &registry.TypeRef{Type: "Window"},
		Properties: []*decl.Declaration{
			{Name: "Name", Owner: "Base", Type: typesys.Of(cty.String), Writeable: true},
			{Name: "Locked", Owner: "Base", Type: typesys.Of(cty.Bool)},
		},
	}
	derivedType = &registry.TypeInfo{
		Name:     "Derived",
		Parent:   "Base",
		Requires: []registry.TypeRef{{Type: "Clock"}},
		Properties: []*decl.Declaration{
			{Name: "Size", Owner: "Derived", Type: typesys.Of(cty.Number), Writeable: true},
			{Name: "Theme", Owner: "Derived", Type: typesys.Named("Window"), Kind: decl.KindContract},
		},
	}
	windowType = &registry.TypeInfo{Name: "Window"}
	clockType  = &registry.TypeInfo{Name: "Clock"}
)

func TestNewChain_Links(t *testing.T) {
	f := newFixture(t, baseType, derivedType, windowType)
	inst := f.instance(t, "Derived", "main", "d1")

	leaf, root := inst.Leaf(), inst.Root()
	require.Len(t, inst.Slices(), 2)
	assert.Same(t, root, leaf.Generalization)
	assert.Same(t, leaf, root.Specialization)
	assert.Same(t, leaf, root.Leaf())
	assert.Same(t, root, leaf.Root())
	assert.True(t, leaf.IsLeaf())
	assert.Equal(t, "main.d1.Derived", leaf.ID())
	assert.Equal(t, "main.d1.Base", root.ID())

	// Cells are shared and cut off per level.
	require.Len(t, inst.Cells(), 4)
	assert.Same(t, leaf.Cell(0), root.Cell(0))
	assert.Nil(t, root.Cell(2))
	assert.NotNil(t, leaf.Cell(3))

	assert.NotNil(t, root.ContainerRef)
	assert.Nil(t, leaf.ContainerRef)
	require.Len(t, leaf.Requires, 1)
	assert.Equal(t, PolicyError, leaf.Requires[0].Policy)
	require.NotNil(t, leaf.AmbientTarget(3))
	assert.Equal(t, "Window", leaf.AmbientTarget(3).Want.Type)
	assert.Same(t, root, leaf.As("Base"))
	assert.Nil(t, root.As("Derived"))
}

func TestReference_ResolveAndContainerFallback(t *testing.T) {
	f := newFixture(t, baseType, derivedType, windowType, clockType)
	win := f.instance(t, "Window", "main", "w")
	inst := f.instance(t, "Derived", "main", "d1")

	require.NoError(t, f.ix.ResolveReferences(f.tc.Ctx))

	assert.Same(t, win.Leaf(), inst.Root().LocalContainer())
	assert.Nil(t, inst.Leaf().LocalContainer())
	assert.Same(t, win.Leaf(), inst.Leaf().Container())

	// Clock is missing and requires uses the error policy.
	errs := f.tc.Errors(diag.Reference)
	require.Len(t, errs, 1)
	assert.Equal(t, "main.d1.Derived", errs[0].Subject)

	// Ambient target resolves to the only window; the policy is ignore anyway.
	assert.Same(t, win.Leaf(), inst.Leaf().AmbientTarget(3).Slice())
}

func TestReference_ContextLookup(t *testing.T) {
	f := newFixture(t, windowType, &registry.TypeInfo{
		Name:      "Tagged",
		Container: &registry.TypeRef{Type: "Window", Context: "ui"},
	}, &registry.TypeInfo{
		Name:      "Plain",
		Container: &registry.TypeRef{Type: "Window"},
	})
	mainWin := f.instance(t, "Window", "main", "w")
	uiWin := f.instance(t, "Window", "ui", "w")
	tagged := f.instance(t, "Tagged", "main", "t")
	plain := f.instance(t, "Plain", "main", "p")
	other := f.instance(t, "Plain", "other", "p")

	require.Error(t, f.ix.ResolveReferences(f.tc.Ctx))

	// A context tag restricts the lookup to that context.
	assert.Same(t, uiWin.Leaf(), tagged.Leaf().Container())
	// The owner's context is preferred.
	assert.Same(t, mainWin.Leaf(), plain.Leaf().Container())
	// Falling back to every context finds two windows.
	assert.Nil(t, other.Leaf().Container())
	assert.ErrorIs(t, other.Leaf().ContainerRef.Err(), ErrAmbiguous)
	assert.True(t, f.tc.Collector.HasFatal())
	assert.Len(t, f.tc.Collector.Filter(diag.Ambiguity, diag.SeverityFatal), 1)
}

func TestReference_AmbiguityIgnoresPolicy(t *testing.T) {
	f := newFixture(t, windowType, &registry.TypeInfo{
		Name:       "Watcher",
		RequiredBy: []registry.TypeRef{{Type: "Window"}},
	})
	f.instance(t, "Window", "main", "a")
	f.instance(t, "Window", "main", "b")
	w := f.instance(t, "Watcher", "main", "x")

	_, err := w.Leaf().RequiredBy[0].Resolve(f.tc.Ctx, f.ix)
	assert.ErrorIs(t, err, ErrAmbiguous)

	// Memoized: the second call reports nothing new.
	_, err = w.Leaf().RequiredBy[0].Resolve(f.tc.Ctx, f.ix)
	assert.ErrorIs(t, err, ErrAmbiguous)
	assert.Len(t, f.tc.Collector.All(), 1)
}

func TestReference_ExcludesOwnChain(t *testing.T) {
	f := newFixture(t, &registry.TypeInfo{Name: "Node", Container: &registry.TypeRef{Type: "Node"}})
	n := f.instance(t, "Node", "main", "only")

	require.NoError(t, f.ix.ResolveReferences(f.tc.Ctx))
	assert.Nil(t, n.Leaf().Container())
	assert.Len(t, f.tc.Errors(diag.Reference), 1)
}

func TestSlice_Configure(t *testing.T) {
	f := newFixture(t, baseType, derivedType, windowType)
	inst := f.instance(t, "Derived", "main", "d1")
	leaf, root := inst.Leaf(), inst.Root()

	require.NoError(t, root.Set(f.tc.Ctx, "Name", Data(cty.StringVal("base"))))
	st := inst.Setting(0)
	assert.Equal(t, 0, st.Depth)
	assert.Equal(t, "base", st.Value.Data().AsString())

	require.NoError(t, leaf.Set(f.tc.Ctx, "Name", Data(cty.StringVal("leaf"))))
	require.NoError(t, root.Set(f.tc.Ctx, "Name", Data(cty.StringVal("again"))))
	st = inst.Setting(0)
	assert.Equal(t, 1, st.Depth)
	assert.Equal(t, "leaf", st.Value.Data().AsString())

	// Conversion to the declared type.
	require.NoError(t, leaf.Set(f.tc.Ctx, "Size", Data(cty.StringVal("12"))))
	assert.True(t, inst.Setting(2).Value.Data().RawEquals(cty.NumberIntVal(12)))

	// Rejections are reported and skipped.
	assert.Error(t, leaf.Set(f.tc.Ctx, "Size", Data(cty.StringVal("big"))))
	assert.Error(t, leaf.Set(f.tc.Ctx, "Locked", Data(cty.True)))
	assert.Error(t, root.Set(f.tc.Ctx, "Size", Data(cty.NumberIntVal(1))))
	assert.Error(t, leaf.Set(f.tc.Ctx, "Theme", Data(cty.StringVal("dark"))))
	assert.Len(t, f.tc.Errors(diag.Assignment), 4)
	assert.True(t, inst.Setting(2).Value.Data().RawEquals(cty.NumberIntVal(12)))

	// Final values ignore writeability.
	require.NoError(t, leaf.SetFinal(f.tc.Ctx, "Locked", Data(cty.True)))
	assert.True(t, inst.Setting(1).Final.Data().True())

	require.NoError(t, leaf.Defer(f.tc.Ctx, "Name"))
	assert.True(t, inst.Setting(0).Deferred)
}

func TestCoerce_References(t *testing.T) {
	f := newFixture(t, baseType, derivedType, windowType)
	inst := f.instance(t, "Derived", "main", "d1")

	v, err := Coerce(Ref(inst.Leaf()), typesys.Named("Base"))
	require.NoError(t, err)
	assert.Same(t, inst.Root(), v.Slice())

	_, err = Coerce(Ref(inst.Leaf()), typesys.Named("Window"))
	assert.Error(t, err)

	_, err = Coerce(Ref(inst.Leaf()), typesys.Of(cty.String))
	assert.Error(t, err)

	v, err = Coerce(Ref(inst.Leaf()), typesys.Any)
	require.NoError(t, err)
	assert.Same(t, inst.Leaf(), v.Slice())
}

func TestValue(t *testing.T) {
	assert.True(t, Missing.IsMissing())
	assert.True(t, Data(cty.NilVal).IsMissing())
	assert.True(t, Ref(nil).IsMissing())
	assert.Equal(t, `"x"`, Data(cty.StringVal("x")).String())
	assert.True(t, Data(cty.StringVal("x")).Equal(Data(cty.StringVal("x"))))
	assert.False(t, Data(cty.StringVal("x")).Equal(Missing))
}

func TestCell_StateMachine(t *testing.T) {
	c := &Cell{Entry: &decl.Entry{Declaration: decl.Declaration{Name: "P"}}}
	assert.Equal(t, Unresolved, c.State())

	c.Enter()
	assert.Equal(t, InProgress, c.State())
	c.Reset()
	assert.Equal(t, Unresolved, c.State())

	c.Enter()
	c.Finish(Data(cty.True))
	assert.Equal(t, ResolvedValue, c.State())
	assert.True(t, c.Resolved())
	assert.Panics(t, func() { c.Enter() })
}
