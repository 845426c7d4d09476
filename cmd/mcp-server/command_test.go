package main

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"testing"

	"github.com/mark3labs/mcp-go/mcp"
	log "github.com/sirupsen/logrus"
	"github.com/spf13/pflag"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/njchilds90/symcalc"
)

func parse(t *testing.T, args ...string) (*ServerOptions, error) {
	t.Helper()
	f := NewServerFlags()
	flags := pflag.NewFlagSet("test", pflag.ContinueOnError)
	f.BindFlags(flags)
	require.NoError(t, flags.Parse(args))
	return f.ToOptions(flags)
}

// ============================================================
// Options
// ============================================================

func TestToOptions_Defaults(t *testing.T) {
	o, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, "stdio", o.Mode)
	assert.Equal(t, ":8080", o.ListenAddress)
	assert.Equal(t, log.InfoLevel, o.LogLevel)
	assert.Equal(t, 8, o.DistributeDepth)
	assert.Nil(t, o.Store)
}

func TestToOptions_Flags(t *testing.T) {
	o, err := parse(t, "--mode", "http", "--listen", ":9999", "--log-level", "debug", "--distribute-depth", "3")
	require.NoError(t, err)
	assert.Equal(t, "http", o.Mode)
	assert.Equal(t, ":9999", o.ListenAddress)
	assert.Equal(t, log.DebugLevel, o.LogLevel)
	assert.Equal(t, 3, o.DistributeDepth)
}

func TestToOptions_Invalid(t *testing.T) {
	_, err := parse(t, "--mode", "grpc")
	assert.ErrorContains(t, err, "unsupported mode")

	_, err = parse(t, "--log-level", "loud")
	assert.Error(t, err)

	_, err = parse(t, "--distribute-depth", "0")
	assert.ErrorContains(t, err, "distribute-depth")

	_, err = parse(t, "--store", filepath.Join(t.TempDir(), "missing.yaml"))
	assert.ErrorContains(t, err, "reading store file")
}

func TestToOptions_Environment(t *testing.T) {
	t.Setenv("SYMCALC_LISTEN", ":7000")
	t.Setenv("SYMCALC_LOG_LEVEL", "warn")

	o, err := parse(t)
	require.NoError(t, err)
	assert.Equal(t, ":7000", o.ListenAddress)
	assert.Equal(t, log.WarnLevel, o.LogLevel)

	o, err = parse(t, "--listen", ":7001")
	require.NoError(t, err)
	assert.Equal(t, ":7001", o.ListenAddress)
}

func TestToOptions_ConfigAndStore(t *testing.T) {
	dir := t.TempDir()
	store := filepath.Join(dir, "store.yaml")
	require.NoError(t, os.WriteFile(store, []byte("0: 2.5\n"), 0o644))
	cfg := filepath.Join(dir, "config.yaml")
	require.NoError(t, os.WriteFile(cfg, []byte("mode: http\ndistribute-depth: 5\nstore: "+store+"\n"), 0o644))

	o, err := parse(t, "--config", cfg)
	require.NoError(t, err)
	assert.Equal(t, "http", o.Mode)
	assert.Equal(t, 5, o.DistributeDepth)
	assert.Equal(t, store, o.StoreFile)
	assert.Equal(t, symcalc.MapStore{0: 2.5}, o.Store)
}

func TestServerCommand_ReadsStoreOnce(t *testing.T) {
	store := filepath.Join(t.TempDir(), "store.yaml")
	require.NoError(t, os.WriteFile(store, []byte("0: 1\n"), 0o644))

	cmd := NewServerCommand()
	require.NoError(t, cmd.ParseFlags([]string{"--mode", "http", "--listen", "127.0.0.1:0", "--store", store}))
	require.NoError(t, cmd.PreRunE(cmd, nil))
	require.NoError(t, os.Remove(store))

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	cmd.SetContext(ctx)
	assert.NoError(t, cmd.RunE(cmd, nil))
}

func TestServerCommand_InvalidMode(t *testing.T) {
	cmd := NewServerCommand()
	cmd.SetArgs([]string{"--mode", "grpc"})
	assert.ErrorContains(t, cmd.Execute(), "unsupported mode")
}

// ============================================================
// Tool handlers
// ============================================================

func callRequest(t *testing.T, name string, args map[string]interface{}) mcp.CallToolRequest {
	t.Helper()
	body, err := json.Marshal(map[string]interface{}{
		"params": map[string]interface{}{"name": name, "arguments": args},
	})
	require.NoError(t, err)
	var req mcp.CallToolRequest
	require.NoError(t, json.Unmarshal(body, &req))
	return req
}

func TestToolHandler(t *testing.T) {
	handler := toolHandler(symcalc.Toolbox{Store: symcalc.MapStore{0: 3}}, "evaluate")
	stored := symcalc.ToMap(symcalc.MulOf(symcalc.S(0), symcalc.X(1)))

	res, err := handler(context.Background(), callRequest(t, "evaluate", map[string]interface{}{
		"expr": stored,
		"args": []interface{}{2},
	}))
	require.NoError(t, err)
	require.False(t, res.IsError)
	out, err := json.Marshal(res)
	require.NoError(t, err)
	assert.Contains(t, string(out), `\"string\":\"6\"`)

	res, err = handler(context.Background(), callRequest(t, "evaluate", map[string]interface{}{}))
	require.NoError(t, err)
	assert.True(t, res.IsError)

	ctx, cancel := context.WithCancel(context.Background())
	cancel()
	res, err = handler(ctx, callRequest(t, "evaluate", map[string]interface{}{"expr": stored}))
	require.NoError(t, err)
	assert.True(t, res.IsError)
}

func TestNewTool(t *testing.T) {
	for _, spec := range symcalc.ToolSpecs() {
		tool := newTool(spec)
		assert.Equal(t, spec.Name, tool.Name)
		for _, p := range spec.Params {
			assert.Contains(t, tool.InputSchema.Properties, p.Name, "%s.%s", spec.Name, p.Name)
			if p.Required {
				assert.Contains(t, tool.InputSchema.Required, p.Name)
			}
		}
	}
}

// ============================================================
// HTTP endpoints
// ============================================================

func TestHTTPHandler(t *testing.T) {
	o := &ServerOptions{Mode: "http", DistributeDepth: 4, LogLevel: log.InfoLevel}
	srv := httptest.NewServer(newHTTPHandler(o.newMCPServer()))
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/health")
	require.NoError(t, err)
	defer resp.Body.Close()
	assert.Equal(t, http.StatusOK, resp.StatusCode)
	var health map[string]interface{}
	require.NoError(t, json.NewDecoder(resp.Body).Decode(&health))
	assert.Equal(t, "ok", health["status"])

	_, err = toolHandler(o.toolbox(), "simplify")(context.Background(),
		callRequest(t, "simplify", map[string]interface{}{"expr": symcalc.ToMap(symcalc.One{})}))
	require.NoError(t, err)

	metrics, err := http.Get(srv.URL + "/metrics")
	require.NoError(t, err)
	defer metrics.Body.Close()
	body, err := io.ReadAll(metrics.Body)
	require.NoError(t, err)
	assert.Contains(t, string(body), "symcalc_tool_calls_total")
}
