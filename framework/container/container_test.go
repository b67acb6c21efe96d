package container_test

import (
	"fmt"
	"log/slog"
	"reflect"
	"strings"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/google/go-cmp/cmp"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-registry/framework/container"
)

// ── Registration ──────────────────────────────────────────────────────────────

func TestNew_RegistersItself(t *testing.T) {
	c := container.New()

	got, err := c.Resolve("container")
	require.NoError(t, err)
	assert.Same(t, c, got)
	assert.Equal(t, []string{"container"}, c.Names())
}

func TestRegister_InstanceIsRealized(t *testing.T) {
	c, _ := newIndexed(t)
	svc := &plainService{id: 1}
	require.NoError(t, c.Register("svc", svc))

	assert.True(t, c.Bound("svc"))
	assert.True(t, c.Resolved("svc"))
	got, err := c.Resolve("svc")
	require.NoError(t, err)
	assert.Same(t, svc, got)
}

func TestRegister_DescriptorIsDeferred(t *testing.T) {
	c, _ := newIndexed(t)
	fc := &factoryCounter{}
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, fc)))

	assert.True(t, c.Bound("greeter"))
	assert.False(t, c.Resolved("greeter"))
	assert.Zero(t, fc.Calls(), "registration must not run the factory")

	e, err := c.Entry("greeter")
	require.NoError(t, err)
	assert.Equal(t, container.Deferred, e.State)
	assert.Nil(t, e.Type)
}

func TestRegister_Errors(t *testing.T) {
	var nilDescriptor *container.Descriptor

	tests := []struct {
		name    string
		entry   string
		value   any
		wantErr error
	}{
		{"empty name", "", &plainService{}, container.ErrInvalidName},
		{"factory prefix", "&svc", &plainService{}, container.ErrInvalidName},
		{"non-printable name", "sv\x01c", &plainService{}, container.ErrInvalidName},
		{"nil value", "svc", nil, container.ErrInvalidDescriptor},
		{"nil descriptor", "svc", nilDescriptor, container.ErrInvalidDescriptor},
		{"duplicate", "container", &plainService{}, container.ErrDuplicateEntry},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			c := container.New()
			err := c.Register(tt.entry, tt.value)
			require.ErrorIs(t, err, tt.wantErr)
			assert.Equal(t, []string{"container"}, c.Names(), "failed registration must not add an entry")
		})
	}
}

func TestRegister_CustomFactoryPrefix(t *testing.T) {
	c, _ := newIndexed(t, container.WithFactoryPrefix("$"))
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))
	require.ErrorIs(t, c.Register("$x", &plainService{}), container.ErrInvalidName)
	require.NoError(t, c.Register("&allowed", &plainService{}))

	assert.Equal(t, "$", c.FactoryPrefix())
	assert.Equal(t, []string{"$greeter"}, c.NamesForType(container.Query{Type: factoryInfoType}))

	f, err := c.Resolve("$greeter")
	require.NoError(t, err)
	assert.IsType(t, &greeterFactory{}, f)
}

func TestRegister_LogsAtDebug(t *testing.T) {
	c, buf := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))

	assert.Contains(t, buf.String(), "registered descriptor")
	assert.Contains(t, buf.String(), "name=greeter")
}

// ── Resolution ────────────────────────────────────────────────────────────────

func TestResolve_ProducerFactory(t *testing.T) {
	c, _ := newIndexed(t)
	fc := &factoryCounter{}
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, fc)))

	product, err := c.Resolve("greeter")
	require.NoError(t, err)
	g, ok := product.(Greeter)
	require.True(t, ok, "product should be a Greeter, got %T", product)
	assert.Equal(t, "hello", g.Greet())

	factory, err := c.Resolve("&greeter")
	require.NoError(t, err)
	info, ok := factory.(GreeterFactoryInfo)
	require.True(t, ok, "factory should be a GreeterFactoryInfo, got %T", factory)
	assert.Equal(t, "en", info.Language())

	assert.Equal(t, 1, fc.Calls())
	assert.True(t, c.Resolved("greeter"))
}

func TestResolve_IsIdempotent(t *testing.T) {
	c, _ := newIndexed(t)
	fc := &factoryCounter{}
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, fc)))

	first, err := c.Resolve("greeter")
	require.NoError(t, err)
	second, err := c.Resolve("greeter")
	require.NoError(t, err)

	assert.Same(t, first, second)
	assert.Equal(t, 1, fc.Calls())
}

func TestResolve_ConcurrentSingletonProducedOnce(t *testing.T) {
	c, _ := newIndexed(t)
	fc := &factoryCounter{}
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, fc)))

	const n = 16
	results := make([]any, n)
	var wg sync.WaitGroup
	for i := range n {
		wg.Add(1)
		go func() {
			defer wg.Done()
			v, err := c.Resolve("greeter")
			assert.NoError(t, err)
			results[i] = v
		}()
	}
	wg.Wait()

	assert.Equal(t, 1, fc.Calls())
	for _, v := range results[1:] {
		assert.Same(t, results[0], v)
	}
}

func TestResolve_PlainDescriptor(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("plain", plainDescriptor(t, nil)))

	v, err := c.Resolve("plain")
	require.NoError(t, err)
	f, err := c.Resolve("&plain")
	require.NoError(t, err)
	assert.Same(t, v, f, "without a Producer the factory object is the product")
}

func TestResolve_NoSuchEntry(t *testing.T) {
	c := container.New()

	_, err := c.Resolve("missing")
	require.ErrorIs(t, err, container.ErrNoSuchEntry)

	_, err = c.Resolve("&container")
	require.ErrorIs(t, err, container.ErrNoSuchEntry, "instances have no factory object")
}

func TestResolve_FactoryErrorLeavesEntryDeferred(t *testing.T) {
	c, _ := newIndexed(t)
	fail := true
	d := container.MustDescriptor(plainType, func(_ *container.Container, _ *container.Descriptor) (any, error) {
		if fail {
			return nil, errBoom
		}
		return &plainService{}, nil
	})
	require.NoError(t, c.Register("flaky", d))

	_, err := c.Resolve("flaky")
	require.ErrorIs(t, err, container.ErrFactoryFailed)
	require.ErrorIs(t, err, errBoom)
	assert.False(t, c.Resolved("flaky"))

	fail = false
	_, err = c.Resolve("flaky")
	require.NoError(t, err)
	assert.True(t, c.Resolved("flaky"))
}

func TestResolve_FactoryReturnsNil(t *testing.T) {
	c, _ := newIndexed(t)
	d := container.MustDescriptor(plainType, func(_ *container.Container, _ *container.Descriptor) (any, error) { return nil, nil })
	require.NoError(t, c.Register("nothing", d))

	_, err := c.Resolve("nothing")
	require.ErrorIs(t, err, container.ErrFactoryFailed)
}

type failingProducer struct{}

func (failingProducer) Object() (any, error) { return nil, errBoom }

func TestResolve_ProducerError(t *testing.T) {
	c, _ := newIndexed(t)
	d := container.MustDescriptor(container.TypeOf[failingProducer](), func(_ *container.Container, _ *container.Descriptor) (any, error) {
		return failingProducer{}, nil
	})
	require.NoError(t, c.Register("broken", d))

	_, err := c.Resolve("broken")
	require.ErrorIs(t, err, container.ErrFactoryFailed)
	require.ErrorIs(t, err, errBoom)
}

func TestResolve_FactoryCanResolveOtherEntries(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("prefix", "hi"))
	d := container.MustDescriptor(container.TypeOf[string](), func(c *container.Container, _ *container.Descriptor) (any, error) {
		p, err := container.Resolve[string](c, "prefix")
		if err != nil {
			return nil, err
		}
		return p + " there", nil
	})
	require.NoError(t, c.Register("greeting", d))

	got, err := container.Resolve[string](c, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hi there", got)
}

func TestResolve_FactoryReceivesDescriptor(t *testing.T) {
	c, _ := newIndexed(t)
	var got *container.Descriptor
	d := container.MustDescriptor(container.TypeOf[string](), func(_ *container.Container, d *container.Descriptor) (any, error) {
		got = d
		lang, _ := d.Property("lang")
		return fmt.Sprintf("hello in %v", lang), nil
	}, container.WithProperty("lang", "en"))
	require.NoError(t, c.Register("greeting", d))

	v, err := container.Resolve[string](c, "greeting")
	require.NoError(t, err)
	assert.Equal(t, "hello in en", v)
	assert.Same(t, d, got)
}

// ── Type mismatches ───────────────────────────────────────────────────────────

// wrongDescriptor declares a Greeter product but produces a *plainService.
func wrongDescriptor(t testing.TB) *container.Descriptor {
	t.Helper()
	return container.MustDescriptor(plainType, func(_ *container.Container, _ *container.Descriptor) (any, error) {
		return &plainService{}, nil
	}, container.Produces(greeterType))
}

func TestResolve_MismatchIsLoggedAndIgnored(t *testing.T) {
	c, buf := newIndexed(t)
	require.NoError(t, c.Register("wrong", wrongDescriptor(t)))

	v, err := c.Resolve("wrong")
	require.NoError(t, err)
	assert.IsType(t, &plainService{}, v)
	assert.Contains(t, buf.String(), "level=WARN")
	assert.Contains(t, buf.String(), "name=wrong")
}

func TestResolve_MismatchOnDeclaredFactoryType(t *testing.T) {
	c, buf := newIndexed(t)
	d := container.MustDescriptor(factoryInfoType, func(_ *container.Container, _ *container.Descriptor) (any, error) {
		return &plainService{}, nil
	})
	require.NoError(t, c.Register("liar", d))

	_, err := c.Resolve("liar")
	require.NoError(t, err)
	assert.Contains(t, buf.String(), "level=WARN")
}

func TestNamesForType_StableAcrossToleratedMismatch(t *testing.T) {
	c, buf := newIndexed(t)
	d := container.MustDescriptor(factoryInfoType, func(_ *container.Container, _ *container.Descriptor) (any, error) {
		return &plainService{}, nil
	}, container.Produces(greeterType))
	require.NoError(t, c.Register("g", d))

	factoryQuery := container.Query{Type: factoryInfoType}
	productQuery := container.Query{Type: greeterType}
	require.Equal(t, []string{"&g"}, c.NamesForType(factoryQuery))
	require.Equal(t, []string{"g"}, c.NamesForType(productQuery))

	_, err := c.Resolve("g")
	require.NoError(t, err)
	require.Contains(t, buf.String(), "level=WARN")

	assert.Equal(t, []string{"&g"}, c.NamesForType(factoryQuery))
	assert.Equal(t, []string{"g"}, c.NamesForType(productQuery))
}

func TestResolve_StrictMismatchFails(t *testing.T) {
	c, _ := newIndexed(t, container.WithStrictTypes(true))
	require.NoError(t, c.Register("wrong", wrongDescriptor(t)))

	_, err := c.Resolve("wrong")
	require.ErrorIs(t, err, container.ErrTypeMismatch)
	assert.False(t, c.Resolved("wrong"))
}

// ── Type queries ──────────────────────────────────────────────────────────────

func TestNamesForType_BeforeAndAfterResolve(t *testing.T) {
	c, _ := newIndexed(t)
	fc := &factoryCounter{}
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, fc)))

	factoryQuery := container.Query{Type: factoryInfoType}
	productQuery := container.Query{Type: greeterType}

	assert.Equal(t, []string{"&greeter"}, c.NamesForType(factoryQuery))
	assert.Equal(t, []string{"greeter"}, c.NamesForType(productQuery))
	assert.Zero(t, fc.Calls(), "querying must not instantiate")

	_, err := c.Resolve("greeter")
	require.NoError(t, err)

	assert.Equal(t, []string{"&greeter"}, c.NamesForType(factoryQuery))
	assert.Equal(t, []string{"greeter"}, c.NamesForType(productQuery))
}

func TestNamesForType_WithoutInterceptorDeferredIsInvisible(t *testing.T) {
	c := container.New(container.WithLogger(slog.New(slog.DiscardHandler)))
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))
	q := container.Query{Type: factoryInfoType}

	assert.Empty(t, c.NamesForType(q))

	_, err := c.Resolve("greeter")
	require.NoError(t, err)
	assert.Equal(t, []string{"&greeter"}, c.NamesForType(q))
}

func TestNamesForType_InterceptorAddedLate(t *testing.T) {
	c := container.New()
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))
	c.AddInterceptor(container.NewTypeIndex())

	assert.Equal(t, []string{"&greeter"}, c.NamesForType(container.Query{Type: factoryInfoType}))
}

func TestNamesForType_PlainDeferredNeedsRealization(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("plain", plainDescriptor(t, nil)))
	q := container.Query{Type: plainType}

	assert.Empty(t, c.NamesForType(q), "descriptors without the capability are not indexed")

	_, err := c.Resolve("plain")
	require.NoError(t, err)
	assert.Equal(t, []string{"plain"}, c.NamesForType(q))
}

func TestNamesForType_RegistrationOrder(t *testing.T) {
	c, _ := newIndexed(t)
	for _, name := range []string{"zeta", "alpha", "mid"} {
		require.NoError(t, c.Register(name, greeterDescriptor(t, nil)))
	}
	require.NoError(t, c.Register("instance", &englishGreeter{}))
	_, err := c.Resolve("alpha")
	require.NoError(t, err)

	want := []string{"zeta", "alpha", "mid", "instance"}
	if diff := cmp.Diff(want, c.NamesForType(container.Query{Type: greeterType})); diff != "" {
		t.Errorf("NamesForType mismatch (-want +got):\n%s", diff)
	}
}

func TestNamesForType_AnyMatchesBothSides(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))

	got := c.NamesForType(container.Query{Type: container.TypeOf[any]()})
	assert.Equal(t, []string{"container", "&greeter", "greeter"}, got)
}

func TestNamesForType_UnrelatedIsEmpty(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))

	assert.Empty(t, c.NamesForType(container.Query{Type: unrelatedType}))
	assert.Nil(t, c.NamesForType(container.Query{}))
}

func TestNamesForType_Prototype(t *testing.T) {
	c, _ := newIndexed(t)
	fc := &factoryCounter{}
	require.NoError(t, c.Register("proto", greeterDescriptor(t, fc, container.WithScope(container.Prototype))))

	assert.Empty(t, c.NamesForType(container.Query{Type: greeterType}))
	assert.Equal(t, []string{"proto"}, c.NamesForType(container.Query{Type: greeterType, IncludeNonSingletons: true}))

	a, err := c.Resolve("proto")
	require.NoError(t, err)
	b, err := c.Resolve("proto")
	require.NoError(t, err)
	assert.NotSame(t, a, b, "prototype entries produce a new object every time")
	assert.Equal(t, 2, fc.Calls())
	assert.False(t, c.Resolved("proto"))
}

func TestNamesForType_Ancestors(t *testing.T) {
	parent, _ := newIndexed(t)
	require.NoError(t, parent.Register("shared", greeterDescriptor(t, nil)))
	require.NoError(t, parent.Register("shadowed", greeterDescriptor(t, nil)))

	child := parent.NewChild()
	child.AddInterceptor(container.NewTypeIndex())
	require.NoError(t, child.Register("local", greeterDescriptor(t, nil)))
	require.NoError(t, child.Register("shadowed", greeterDescriptor(t, nil)))

	q := container.Query{Type: factoryInfoType}
	assert.Equal(t, []string{"&local", "&shadowed"}, child.NamesForType(q))

	q.IncludeAncestors = true
	assert.Equal(t, []string{"&local", "&shadowed", "&shared"}, child.NamesForType(q))
	assert.Same(t, parent, child.Parent())
}

func TestResolve_FallsBackToParent(t *testing.T) {
	parent, _ := newIndexed(t)
	require.NoError(t, parent.Register("greeter", greeterDescriptor(t, nil)))
	child := parent.NewChild()

	v, err := child.Resolve("greeter")
	require.NoError(t, err)
	pv, err := parent.Resolve("greeter")
	require.NoError(t, err)
	assert.Same(t, pv, v)

	_, err = child.Resolve("&greeter")
	require.NoError(t, err)
}

// ── Aliases ───────────────────────────────────────────────────────────────────

func TestAlias(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))
	require.NoError(t, c.Alias("greeter", "hello"))

	a, err := c.Resolve("hello")
	require.NoError(t, err)
	b, err := c.Resolve("greeter")
	require.NoError(t, err)
	assert.Same(t, a, b)

	f, err := c.Resolve("&hello")
	require.NoError(t, err)
	assert.IsType(t, &greeterFactory{}, f)

	assert.True(t, c.Bound("hello"))
	require.ErrorIs(t, c.Register("hello", &plainService{}), container.ErrDuplicateEntry)
}

func TestAlias_Errors(t *testing.T) {
	c := container.New()
	require.ErrorIs(t, c.Alias("x", "x"), container.ErrInvalidName)
	require.ErrorIs(t, c.Alias("x", ""), container.ErrInvalidName)
	require.ErrorIs(t, c.Alias("x", "container"), container.ErrDuplicateEntry)
	require.ErrorIs(t, c.Alias("ghost", "spirit"), container.ErrNoSuchEntry)
	assert.False(t, c.Bound("spirit"))

	require.NoError(t, c.Register("a", "A"))
	require.NoError(t, c.Register("b", "B"))
	require.NoError(t, c.Alias("a", "letter"))
	require.ErrorIs(t, c.Alias("b", "letter"), container.ErrDuplicateEntry)
	assert.Equal(t, "A", container.MustResolve[string](c, "letter"))
}

// ── Tags ──────────────────────────────────────────────────────────────────────

func TestTagged(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("a", "A"))
	require.NoError(t, c.Register("b", plainDescriptor(t, nil)))
	c.Tag([]string{"a", "b"}, "group")

	got, err := c.Tagged("group")
	require.NoError(t, err)
	require.Len(t, got, 2)
	assert.Equal(t, "A", got[0])
	assert.IsType(t, &plainService{}, got[1])

	empty, err := c.Tagged("none")
	require.NoError(t, err)
	assert.Empty(t, empty)
}

func TestTagged_MissingEntry(t *testing.T) {
	c := container.New()
	c.Tag([]string{"ghost"}, "group")

	_, err := c.Tagged("group")
	require.ErrorIs(t, err, container.ErrNoSuchEntry)
}

// ── Extend ────────────────────────────────────────────────────────────────────

type loudGreeter struct{ inner Greeter }

func (g *loudGreeter) Greet() string { return g.inner.Greet() + "!" }

func TestExtend_BeforeResolve(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))
	c.Extend("greeter", func(instance any, _ *container.Container) any {
		return &loudGreeter{inner: instance.(Greeter)}
	})

	g, err := container.Resolve[Greeter](c, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "hello!", g.Greet())
}

func TestExtend_AfterResolve(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))
	_, err := c.Resolve("greeter")
	require.NoError(t, err)

	c.Extend("greeter", func(instance any, _ *container.Container) any {
		return &loudGreeter{inner: instance.(Greeter)}
	})

	g, err := container.Resolve[Greeter](c, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "hello!", g.Greet())
}

func TestExtend_ConcurrentWithResolveAppliesEachOnce(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))

	const n = 8
	var applied atomic.Int32
	var wg sync.WaitGroup
	for range n {
		wg.Add(2)
		go func() {
			defer wg.Done()
			c.Extend("greeter", func(instance any, _ *container.Container) any {
				applied.Add(1)
				return &loudGreeter{inner: instance.(Greeter)}
			})
		}()
		go func() {
			defer wg.Done()
			_, err := c.Resolve("greeter")
			assert.NoError(t, err)
			_ = c.Entries()
			_ = c.NamesForType(container.Query{Type: greeterType})
		}()
	}
	wg.Wait()

	g, err := container.Resolve[Greeter](c, "greeter")
	require.NoError(t, err)
	assert.Equal(t, int32(n), applied.Load())
	assert.Equal(t, "hello"+strings.Repeat("!", n), g.Greet())
}

// ── Callbacks ─────────────────────────────────────────────────────────────────

func TestAfterResolving(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))

	var fired []string
	c.AfterResolving(func(name string, product any) {
		fired = append(fired, fmt.Sprintf("%s:%T", name, product))
	})

	for range 3 {
		_, err := c.Resolve("greeter")
		require.NoError(t, err)
	}
	assert.Equal(t, []string{"greeter:*container_test.englishGreeter"}, fired)
}

// ── Snapshots ─────────────────────────────────────────────────────────────────

func TestEntries(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))
	require.NoError(t, c.Register("plain", plainDescriptor(t, nil, container.WithScope(container.Prototype))))
	_, err := c.Resolve("greeter")
	require.NoError(t, err)

	entries := c.Entries()
	require.Len(t, entries, 3)

	assert.Equal(t, "container", entries[0].Name)
	assert.Equal(t, container.Realized, entries[0].State)
	assert.Nil(t, entries[0].Descriptor)

	assert.Equal(t, "greeter", entries[1].Name)
	assert.Equal(t, container.Realized, entries[1].State)
	assert.Equal(t, container.TypeOf[*englishGreeter](), entries[1].Type)

	assert.Equal(t, "plain", entries[2].Name)
	assert.Equal(t, container.Deferred, entries[2].State)
	assert.Equal(t, container.Prototype, entries[2].Scope)

	e, err := c.Entry("&greeter")
	require.NoError(t, err)
	assert.Equal(t, "greeter", e.Name)
	_, err = c.Entry("nope")
	require.ErrorIs(t, err, container.ErrNoSuchEntry)
}

func TestKnownTypes(t *testing.T) {
	parent, _ := newIndexed(t)
	require.NoError(t, parent.Register("plain", &plainService{}))
	child := parent.NewChild()
	require.NoError(t, child.Register("greeter", greeterDescriptor(t, nil)))

	known := child.KnownTypes()
	for _, typ := range []reflect.Type{factoryInfoType, greeterType, plainType, container.TypeOf[*container.Container]()} {
		assert.Contains(t, known, container.TypeKey(typ))
	}
}

func TestKnownTypes_PointerAndValueAreDistinct(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("ptr", &plainService{id: 1}))
	require.NoError(t, c.Register("val", plainService{id: 2}))

	known := c.KnownTypes()
	ptrType := known[container.TypeKey(plainType)]
	valType := known[container.TypeKey(container.TypeOf[plainService]())]
	require.Equal(t, plainType, ptrType)
	require.Equal(t, container.TypeOf[plainService](), valType)

	assert.Equal(t, []string{"ptr"}, c.NamesForType(container.Query{Type: ptrType}))
	assert.Equal(t, []string{"val"}, c.NamesForType(container.Query{Type: valType}))
}

func TestState_String(t *testing.T) {
	assert.Equal(t, "deferred", container.Deferred.String())
	assert.Equal(t, "realized", container.Realized.String())
}

// ── Generics helpers ──────────────────────────────────────────────────────────

func TestResolveGeneric(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))

	g, err := container.Resolve[Greeter](c, "greeter")
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())

	_, err = container.Resolve[Unrelated](c, "greeter")
	require.ErrorIs(t, err, container.ErrTypeMismatch)

	_, err = container.Resolve[Greeter](c, "missing")
	require.ErrorIs(t, err, container.ErrNoSuchEntry)
}

func TestMustResolve(t *testing.T) {
	c := container.New()
	assert.Same(t, c, container.MustResolve[*container.Container](c, "container"))
	assert.Panics(t, func() { container.MustResolve[Greeter](c, "missing") })
}

func TestResolveType(t *testing.T) {
	c, _ := newIndexed(t)
	require.NoError(t, c.Register("greeter", greeterDescriptor(t, nil)))

	g, err := container.ResolveType[Greeter](c)
	require.NoError(t, err)
	assert.Equal(t, "hello", g.Greet())

	_, err = container.ResolveType[Unrelated](c)
	require.ErrorIs(t, err, container.ErrNoSuchEntry)

	require.NoError(t, c.Register("second", greeterDescriptor(t, nil)))
	_, err = container.ResolveType[Greeter](c)
	require.ErrorIs(t, err, container.ErrAmbiguousType)
}
