package container_test

import (
	"bytes"
	"errors"
	"log/slog"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/require"

	"github.com/km-arc/go-registry/framework/container"
)

// ── fixtures ─────────────────────────────────────────────────────────────────

type Greeter interface {
	Greet() string
}

type GreeterFactoryInfo interface {
	Language() string
}

type Unrelated interface {
	Unrelated()
}

type englishGreeter struct {
	id int64
}

func (g *englishGreeter) Greet() string { return "hello" }

var greeterIDs atomic.Int64

// greeterFactory implements GreeterFactoryInfo and container.Producer.
type greeterFactory struct {
	lang string
}

func (f *greeterFactory) Language() string { return f.lang }

func (f *greeterFactory) Object() (any, error) {
	return &englishGreeter{id: greeterIDs.Add(1)}, nil
}

// plainService is produced directly by its descriptor, without a Producer.
type plainService struct {
	id int64
}

// factoryCounter counts how often a descriptor's factory ran.
type factoryCounter struct {
	calls atomic.Int32
}

func (fc *factoryCounter) Calls() int { return int(fc.calls.Load()) }

var (
	greeterType     = container.TypeOf[Greeter]()
	factoryInfoType = container.TypeOf[GreeterFactoryInfo]()
	unrelatedType   = container.TypeOf[Unrelated]()
	plainType       = container.TypeOf[*plainService]()
)

// helperT is satisfied by *testing.T and *rapid.T.
type helperT interface {
	require.TestingT
	Helper()
}

// greeterDescriptor declares GreeterFactoryInfo and produces Greeter.
func greeterDescriptor(t helperT, fc *factoryCounter, opts ...container.DescriptorOption) *container.Descriptor {
	t.Helper()
	all := append([]container.DescriptorOption{container.Produces(greeterType)}, opts...)
	d, err := container.NewDescriptor(factoryInfoType, func(_ *container.Container, _ *container.Descriptor) (any, error) {
		if fc != nil {
			fc.calls.Add(1)
		}
		return &greeterFactory{lang: "en"}, nil
	}, all...)
	require.NoError(t, err)
	return d
}

// plainDescriptor declares *plainService with no capability marker.
func plainDescriptor(t helperT, fc *factoryCounter, opts ...container.DescriptorOption) *container.Descriptor {
	t.Helper()
	d, err := container.NewDescriptor(plainType, func(_ *container.Container, _ *container.Descriptor) (any, error) {
		if fc != nil {
			fc.calls.Add(1)
		}
		return &plainService{id: greeterIDs.Add(1)}, nil
	}, opts...)
	require.NoError(t, err)
	return d
}

var errBoom = errors.New("boom")

// newIndexed returns a container with a TypeIndex attached and a buffer
// capturing its debug log.
func newIndexed(t testing.TB, opts ...container.Option) (*container.Container, *bytes.Buffer) {
	t.Helper()
	var buf bytes.Buffer
	logger := slog.New(slog.NewTextHandler(&buf, &slog.HandlerOptions{Level: slog.LevelDebug}))
	c := container.New(append([]container.Option{container.WithLogger(logger)}, opts...)...)
	c.AddInterceptor(container.NewTypeIndex())
	return c, &buf
}
