// Copyright (c) 2026 Steve Taranto <staranto@gmail.com>.
// SPDX-License-Identifier: Apache-2.0
// no-cloc

package command

import (
	"bytes"
	"context"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"github.com/urfave/cli/v3"

	"github.com/tfctl/tracediff/internal/backend"
	"github.com/tfctl/tracediff/internal/config"
	"github.com/tfctl/tracediff/internal/differ"
)

// newTestServer serves the backend endpoints from testdata.
func newTestServer(t *testing.T) *httptest.Server {
	t.Helper()
	diff, err := os.ReadFile("testdata/diff.json")
	require.NoError(t, err)
	spans, err := os.ReadFile("testdata/spans.json")
	require.NoError(t, err)

	mux := http.NewServeMux()
	mux.HandleFunc("GET /healthz", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"message":"API is healthy"}`))
	})
	mux.HandleFunc("GET /api/runs", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write([]byte(`{"ok":true,"runs":[{"id":"r1","thread_id":"t1","status":"completed","meta_data":{}},{"id":"r2","thread_id":"t2","status":"running","meta_data":{}}]}`))
	})
	mux.HandleFunc("GET /api/runs/diff", func(w http.ResponseWriter, _ *http.Request) {
		_, _ = w.Write(diff)
	})
	mux.HandleFunc("GET /api/runs/{id}/spans", func(w http.ResponseWriter, r *http.Request) {
		if r.PathValue("id") != "r1" {
			w.WriteHeader(http.StatusNotFound)
			_, _ = w.Write([]byte(`{"detail":"Run not found"}`))
			return
		}
		_, _ = w.Write(spans)
	})

	srv := httptest.NewServer(mux)
	t.Cleanup(srv.Close)
	return srv
}

// runApp runs the app against a test server and returns what it wrote.
func runApp(t *testing.T, stdin string, args ...string) (string, error) {
	t.Helper()

	cfg := filepath.Join(t.TempDir(), "tracediff.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("cache:\n  clean: 0\n"), 0o600))
	t.Setenv("TRACEDIFF_CFG_FILE", cfg)
	t.Setenv("TRACEDIFF_CACHE", "0")
	t.Cleanup(func() { config.Config = config.Type{} })

	srv := newTestServer(t)
	orig := newBackend
	newBackend = func(context.Context, *cli.Command) (backend.Backend, error) {
		return backend.NewClient(srv.URL)
	}
	t.Cleanup(func() { newBackend = orig })

	full := append([]string{"tracediff"}, args...)
	app, err := InitApp(context.Background(), full)
	require.NoError(t, err)

	var out bytes.Buffer
	app.Writer = &out
	app.ErrWriter = &bytes.Buffer{}
	app.Reader = strings.NewReader(stdin)

	err = app.Run(context.Background(), full)
	return out.String(), err
}

func writeJSON(t *testing.T, name, doc string) string {
	t.Helper()
	p := filepath.Join(t.TempDir(), name)
	require.NoError(t, os.WriteFile(p, []byte(doc), 0o600))
	return p
}

func TestInitApp_Commands(t *testing.T) {
	t.Setenv("TRACEDIFF_CFG_FILE", writeJSON(t, "tracediff.yaml", "mode: split\n"))
	app, err := InitApp(context.Background(), []string{"tracediff", "diff"})
	require.NoError(t, err)
	t.Cleanup(func() { config.Config = config.Type{} })

	var names []string
	for _, c := range app.Commands {
		names = append(names, c.Name)
	}
	assert.ElementsMatch(t, []string{"compare", "diff", "health", "runs", "spans", "tree", "completion"}, names)
	assert.Equal(t, "diff", config.Config.Namespace)

	for _, c := range app.Commands {
		for i := 1; i < len(c.Flags); i++ {
			assert.LessOrEqual(t, c.Flags[i-1].Names()[0], c.Flags[i].Names()[0], "%s flags not sorted", c.Name)
		}
	}
}

func TestHealth(t *testing.T) {
	out, err := runApp(t, "", "health")
	require.NoError(t, err)
	assert.Contains(t, out, "API is healthy")
}

func TestRuns(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		out, err := runApp(t, "", "runs")
		require.NoError(t, err)
		assert.Contains(t, out, "r1")
		assert.Contains(t, out, "completed")
		assert.Contains(t, out, "running")
	})

	t.Run("filtered", func(t *testing.T) {
		out, err := runApp(t, "", "runs", "--filter", "status=running")
		require.NoError(t, err)
		assert.Contains(t, out, "r2")
		assert.NotContains(t, out, "r1")
	})

	t.Run("schema", func(t *testing.T) {
		out, err := runApp(t, "", "runs", "--schema")
		require.NoError(t, err)
		assert.Contains(t, out, "thread_id")
	})

	t.Run("bad output", func(t *testing.T) {
		_, err := runApp(t, "", "runs", "--output", "xml")
		assert.Error(t, err)
	})
}

func TestSpans(t *testing.T) {
	t.Run("text", func(t *testing.T) {
		out, err := runApp(t, "", "spans", "r1")
		require.NoError(t, err)
		assert.Contains(t, out, "plan")
		assert.Contains(t, out, "GET /weather")
	})

	t.Run("unknown run", func(t *testing.T) {
		_, err := runApp(t, "", "spans", "nope")
		assert.Error(t, err)
	})

	t.Run("missing arg", func(t *testing.T) {
		_, err := runApp(t, "", "spans")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "expected 1 argument(s), got 0")
	})
}

func TestDiff(t *testing.T) {
	t.Run("unified", func(t *testing.T) {
		out, err := runApp(t, "", "diff", "r1", "r2")
		require.NoError(t, err)

		assert.Contains(t, out, "left:  r1 (completed)")
		assert.Contains(t, out, "right: r2 (completed)")
		assert.Contains(t, out, "plan [node] after_state")
		assert.Contains(t, out, `-     "a"`)
		assert.Contains(t, out, `+     "b"`)
		assert.Contains(t, out, "GET /weather@plan [http] response")
		assert.Contains(t, out, "only in left (1):")

		// Unchanged sections are skipped.
		assert.NotContains(t, out, "before_state")
		assert.NotContains(t, out, "[http] request")
	})

	t.Run("all", func(t *testing.T) {
		out, err := runApp(t, "", "diff", "r1", "r2", "--all")
		require.NoError(t, err)
		assert.Contains(t, out, "plan [node] before_state (no changes)")
	})

	t.Run("kind", func(t *testing.T) {
		out, err := runApp(t, "", "diff", "r1", "r2", "--kind", "http")
		require.NoError(t, err)
		assert.NotContains(t, out, "after_state")
		assert.Contains(t, out, "[http] response")
	})

	t.Run("name", func(t *testing.T) {
		out, err := runApp(t, "", "diff", "r1", "r2", "--name", "weather")
		require.NoError(t, err)
		assert.NotContains(t, out, "after_state")
	})

	t.Run("filter", func(t *testing.T) {
		out, err := runApp(t, "", "diff", "r1", "r2", "--filter", "kind=node")
		require.NoError(t, err)
		assert.Contains(t, out, "after_state")
		assert.NotContains(t, out, "[http]")
	})

	t.Run("patch", func(t *testing.T) {
		out, err := runApp(t, "", "diff", "r1", "r2", "--mode", "patch", "--kind", "node")
		require.NoError(t, err)
		assert.Contains(t, out, "/path/0")
	})

	t.Run("patch for a field on one side", func(t *testing.T) {
		out, err := runApp(t, "", "diff", "r1", "r2", "--mode", "patch", "--kind", "http")
		require.NoError(t, err)
		assert.Contains(t, out, `replace / = {"temp":3}`)
		assert.Contains(t, out, "✓ patch reproduces right value")
		assert.NotContains(t, out, "✗")
	})

	t.Run("json", func(t *testing.T) {
		out, err := runApp(t, "", "diff", "r1", "r2", "--output", "json")
		require.NoError(t, err)
		assert.True(t, strings.HasPrefix(out, "{"))
		assert.Contains(t, out, `"only_left"`)
	})

	t.Run("yaml is rejected", func(t *testing.T) {
		_, err := runApp(t, "", "diff", "r1", "r2", "--output", "yaml")
		assert.Error(t, err)
	})

	t.Run("bad mode", func(t *testing.T) {
		_, err := runApp(t, "", "diff", "r1", "r2", "--mode", "sideways")
		assert.Error(t, err)
	})

	t.Run("one arg", func(t *testing.T) {
		_, err := runApp(t, "", "diff", "r1")
		assert.Error(t, err)
	})
}

func TestCompare(t *testing.T) {
	left := writeJSON(t, "left.json", `{"b":1,"a":[1,2]}`)

	t.Run("changed", func(t *testing.T) {
		right := writeJSON(t, "right.json", `{"a":[1,3],"b":1}`)
		out, err := runApp(t, "", "compare", left, right)
		require.NoError(t, err)
		assert.Contains(t, out, "-     2")
		assert.Contains(t, out, "+     3")
		assert.NotContains(t, out, differ.IdenticalMessage)
	})

	t.Run("key order is ignored", func(t *testing.T) {
		out, err := runApp(t, `{"a":[1,2],"b":1}`, "compare", left, "-")
		require.NoError(t, err)
		assert.Equal(t, differ.IdenticalMessage+"\n", out)
	})

	t.Run("patch mode on arrays", func(t *testing.T) {
		arr := writeJSON(t, "arr.json", `[1,2,3]`)
		out, err := runApp(t, `[1,2,3]`, "compare", arr, "-", "--mode", "patch")
		require.NoError(t, err)
		assert.Equal(t, differ.IdenticalMessage+"\n", out)

		out, err = runApp(t, `[1,2,4]`, "compare", arr, "-", "--mode", "patch")
		require.NoError(t, err)
		assert.Contains(t, out, "merge patch: [1,2,4]")
		assert.NotContains(t, out, "error:")
	})

	t.Run("patch mode on scalars", func(t *testing.T) {
		one := writeJSON(t, "one.json", `1`)
		out, err := runApp(t, `2`, "compare", one, "-", "--mode", "patch")
		require.NoError(t, err)
		assert.Contains(t, out, "merge patch: 2")
	})

	t.Run("stdin twice", func(t *testing.T) {
		_, err := runApp(t, "{}", "compare", "-", "-")
		assert.Error(t, err)
	})

	t.Run("invalid json", func(t *testing.T) {
		bad := writeJSON(t, "bad.json", `{"a":`)
		_, err := runApp(t, "", "compare", left, bad)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "is not valid JSON")
	})
}

func TestTree(t *testing.T) {
	doc := writeJSON(t, "doc.json", `{"a":{"b":1},"c":[1,2]}`)

	t.Run("file", func(t *testing.T) {
		out, err := runApp(t, "", "tree", doc, "--depth", "1")
		require.NoError(t, err)
		assert.Equal(t, "▾ Object(2)\n  ▸ a: Object(1)\n  ▸ c: Array(2)\n", out)
	})

	t.Run("stdin", func(t *testing.T) {
		out, err := runApp(t, `[true]`, "tree", "--depth", "2")
		require.NoError(t, err)
		assert.Equal(t, "▾ Array(1)\n    0: true\n", out)
	})

	t.Run("path", func(t *testing.T) {
		out, err := runApp(t, "", "tree", doc, "--path", "a", "--depth", "1")
		require.NoError(t, err)
		assert.Equal(t, "▾ Object(1)\n    b: 1\n", out)
	})

	t.Run("missing path", func(t *testing.T) {
		_, err := runApp(t, "", "tree", doc, "--path", "zz")
		assert.Error(t, err)
	})

	t.Run("span field", func(t *testing.T) {
		out, err := runApp(t, "", "tree", "--run", "r1", "--span", "s1", "--field", "after_state", "--depth", "1")
		require.NoError(t, err)
		assert.Contains(t, out, "messages: Array(1)")
		assert.Contains(t, out, "step: 1")
	})

	t.Run("unknown span", func(t *testing.T) {
		_, err := runApp(t, "", "tree", "--run", "r1", "--span", "s99")
		require.Error(t, err)
		assert.Contains(t, err.Error(), "span s99 not found")
	})

	t.Run("run without span", func(t *testing.T) {
		_, err := runApp(t, "", "tree", "--run", "r1")
		assert.ErrorIs(t, err, errSpanRef)
	})
}

func TestCompletion(t *testing.T) {
	out, err := runApp(t, "", "completion", "bash")
	require.NoError(t, err)
	assert.Contains(t, out, "complete -F _tracediff tracediff")

	out, err = runApp(t, "", "completion", "zsh")
	require.NoError(t, err)
	assert.Contains(t, out, "#compdef tracediff")
}

func TestValidators(t *testing.T) {
	tests := []struct {
		name    string
		fn      FlagValidatorType
		value   any
		wantErr bool
	}{
		{"output text", OutputValidator, "text", false},
		{"output yaml", OutputValidator, "yaml", false},
		{"output xml", OutputValidator, "xml", true},
		{"diff output yaml", DiffOutputValidator, "yaml", true},
		{"diff output raw", DiffOutputValidator, "raw", false},
		{"mode split", ModeValidator, "split", false},
		{"mode upper", ModeValidator, "UNIFIED", false},
		{"mode bogus", ModeValidator, "bogus", true},
		{"depth zero", DepthValidator, 0, false},
		{"depth negative", DepthValidator, -1, true},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			err := FlagValidators(tt.value, tt.fn)
			if tt.wantErr {
				assert.Error(t, err)
			} else {
				assert.NoError(t, err)
			}
		})
	}
}

func TestArgCountValidator(t *testing.T) {
	tests := []struct {
		name    string
		lo, hi  int
		args    []string
		wantErr string
	}{
		{"exact", 2, 2, []string{"a", "b"}, ""},
		{"too few exact", 2, 2, []string{"a"}, "expected 2 argument(s), got 1"},
		{"range low", 0, 1, nil, ""},
		{"range over", 0, 1, []string{"a", "b"}, "expected 0 to 1 arguments, got 2"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			var hookErr error
			cmd := &cli.Command{
				Name: "x",
				Before: func(ctx context.Context, c *cli.Command) (context.Context, error) {
					ctx, hookErr = ArgCountValidator(tt.lo, tt.hi)(ctx, c)
					return ctx, nil
				},
				Action: func(context.Context, *cli.Command) error { return nil },
			}
			require.NoError(t, cmd.Run(context.Background(), append([]string{"x"}, tt.args...)))
			if tt.wantErr == "" {
				assert.NoError(t, hookErr)
			} else {
				require.Error(t, hookErr)
				assert.Contains(t, hookErr.Error(), tt.wantErr)
			}
		})
	}
}
