package sink

import (
	"context"
	"errors"
	"os"
	"path/filepath"
	"testing"
	"time"

	"github.com/BurntSushi/toml"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/airstation/config"
	"github.com/airstation/internal/eval"
)

type fakeOptions struct {
	Index string `toml:"index" validate:"required"`
}

type fakeSink struct {
	name      string
	published int
	err       error
	healthErr error
	closed    bool
}

func (f *fakeSink) Name() string                                { return f.name }
func (f *fakeSink) Type() SinkType                              { return OpenSearch }
func (f *fakeSink) Publish(context.Context, *eval.Report) error { f.published++; return f.err }
func (f *fakeSink) Health(context.Context) error                { return f.healthErr }
func (f *fakeSink) Close() error                                { f.closed = true; return nil }

func init() {
	RegisterOptionsParser(OpenSearch, func(meta *toml.MetaData, primitive toml.Primitive) (any, error) {
		return ParseOptions[fakeOptions](meta, primitive, OpenSearch)
	})
	RegisterSink(OpenSearch, func(meta SinkMeta, opts any) (Sink, error) {
		if _, ok := opts.(*fakeOptions); !ok {
			return nil, errors.New("bad options")
		}
		return &fakeSink{name: meta.Name}, nil
	})
}

func writeConfig(t *testing.T, content string) *config.Loader {
	t.Helper()
	path := filepath.Join(t.TempDir(), "config.toml")
	require.NoError(t, os.WriteFile(path, []byte(content), 0o644))
	loader := config.NewLoader(path)
	_, err := loader.Load()
	require.NoError(t, err)
	return loader
}

func TestRegistry_InitFromConfig(t *testing.T) {
	loader := writeConfig(t, `
[llm]
provider = "openai"

[sinks.search]
type = "opensearch"
enabled = true
[sinks.search.options]
index = "station-routing"

[sinks.disabled]
type = "opensearch"
enabled = false
`)

	r := NewRegistry()
	require.NoError(t, r.InitFromConfig(loader))
	all := r.All()
	require.Len(t, all, 1)
	assert.Equal(t, "search", all[0].Name())
}

func TestRegistry_InitFromConfig_InvalidOptions(t *testing.T) {
	loader := writeConfig(t, `
[sinks.search]
type = "opensearch"
enabled = true
`)

	err := NewRegistry().InitFromConfig(loader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "validate opensearch options")
}

func TestRegistry_InitFromConfig_NoParser(t *testing.T) {
	loader := writeConfig(t, `
[sinks.paging]
type = "pagerduty"
enabled = true
`)

	err := NewRegistry().InitFromConfig(loader)
	require.Error(t, err)
	assert.Contains(t, err.Error(), "no parser registered for sink type: pagerduty")
}

func TestRegistry_InitFromConfig_NotLoaded(t *testing.T) {
	err := NewRegistry().InitFromConfig(config.NewLoader("missing.toml"))
	require.EqualError(t, err, "config not loaded")
}

func TestRegistry_PublishJoinsErrors(t *testing.T) {
	r := NewRegistry()
	ok := &fakeSink{name: "a"}
	bad := &fakeSink{name: "b", err: errors.New("unreachable")}
	r.Add(bad)
	r.Add(ok)

	assert.Equal(t, "a", r.All()[0].Name())

	err := r.Publish(context.Background(), &eval.Report{RunID: "run-1"})
	require.Error(t, err)
	assert.Contains(t, err.Error(), "publish to b: unreachable")
	assert.Equal(t, 1, ok.published)
	assert.Equal(t, 1, bad.published)

	require.NoError(t, r.Close())
	assert.True(t, ok.closed)
	assert.True(t, bad.closed)
}

func TestRegistry_CheckHealth(t *testing.T) {
	r := NewRegistry()
	r.Add(&fakeSink{name: "search"})
	r.Add(&fakeSink{name: "paging", healthErr: errors.New("dial tcp: connection refused")})

	failed := r.CheckHealth(context.Background(), time.Second)
	require.Len(t, failed, 1)
	assert.EqualError(t, failed["paging"], "dial tcp: connection refused")
	assert.NotContains(t, failed, "search")

	assert.Empty(t, NewRegistry().CheckHealth(context.Background(), time.Second))
}
