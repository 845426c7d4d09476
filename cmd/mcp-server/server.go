package main

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/mark3labs/mcp-go/mcp"
	"github.com/mark3labs/mcp-go/server"
	"github.com/pkg/errors"
	"github.com/prometheus/client_golang/prometheus/promhttp"
	log "github.com/sirupsen/logrus"

	"github.com/njchilds90/symcalc"
)

const version = "0.1.0"

type ServerOptions struct {
	Mode            string
	ListenAddress   string
	LogLevel        log.Level
	StoreFile       string
	Store           symcalc.Store
	DistributeDepth int
}

func (o *ServerOptions) toolbox() symcalc.Toolbox {
	return symcalc.Toolbox{Store: o.Store, MaxDistributeDepth: o.DistributeDepth}
}

// newMCPServer registers every symcalc tool on a fresh MCP server.
func (o *ServerOptions) newMCPServer() *server.MCPServer {
	hooks := &server.Hooks{}
	hooks.AddOnRegisterSession(func(ctx context.Context, session server.ClientSession) {
		log.WithField("session_id", session.SessionID()).Info("MCP client session registered")
	})
	hooks.AddOnUnregisterSession(func(ctx context.Context, session server.ClientSession) {
		log.WithField("session_id", session.SessionID()).Info("MCP client session unregistered")
	})

	s := server.NewMCPServer(
		"symcalc",
		version,
		server.WithToolCapabilities(false),
		server.WithLogging(),
		server.WithRecovery(),
		server.WithHooks(hooks),
	)

	tb := o.toolbox()
	for _, spec := range symcalc.ToolSpecs() {
		s.AddTool(newTool(spec), toolHandler(tb, spec.Name))
		log.WithField("tool", spec.Name).Debug("Registered tool")
	}
	log.WithField("count", len(symcalc.ToolSpecs())).Info("All MCP tools registered")
	return s
}

func newTool(spec symcalc.ToolSpec) mcp.Tool {
	opts := []mcp.ToolOption{mcp.WithDescription(spec.Description)}
	for _, p := range spec.Params {
		props := []mcp.PropertyOption{mcp.Description(p.Description)}
		if p.Required {
			props = append(props, mcp.Required())
		}
		switch p.Type {
		case "object":
			opts = append(opts, mcp.WithObject(p.Name, props...))
		case "array":
			opts = append(opts, mcp.WithArray(p.Name, props...))
		case "string":
			opts = append(opts, mcp.WithString(p.Name, props...))
		default:
			opts = append(opts, mcp.WithNumber(p.Name, props...))
		}
	}
	return mcp.NewTool(spec.Name, opts...)
}

func toolHandler(tb symcalc.Toolbox, name string) server.ToolHandlerFunc {
	return func(ctx context.Context, request mcp.CallToolRequest) (*mcp.CallToolResult, error) {
		if ctx.Err() != nil {
			log.WithError(ctx.Err()).WithField("tool", name).Warn("Tool called with cancelled context")
			return mcp.NewToolResultError("request cancelled"), nil
		}

		start := time.Now()
		resp := tb.Call(symcalc.ToolRequest{Tool: name, Params: request.GetArguments()})
		elapsed := time.Since(start)
		toolCallDuration.WithLabelValues(name).Observe(elapsed.Seconds())

		logger := log.WithFields(log.Fields{"tool": name, "duration": elapsed})
		if resp.Error != "" {
			toolCallsTotal.WithLabelValues(name, "error").Inc()
			logger.WithField("error", resp.Error).Info("Tool call rejected")
			return mcp.NewToolResultError(resp.Error), nil
		}
		toolCallsTotal.WithLabelValues(name, "ok").Inc()

		body, err := json.Marshal(resp)
		if err != nil {
			toolCallsTotal.WithLabelValues(name, "error").Inc()
			return nil, errors.Wrap(err, "encoding tool response")
		}
		logger.WithField("result", resp.String).Debug("Tool call completed")
		return mcp.NewToolResultText(string(body)), nil
	}
}

func newHTTPHandler(s *server.MCPServer) http.Handler {
	mux := http.NewServeMux()
	mux.Handle("/mcp", server.NewStreamableHTTPServer(s))
	mux.Handle("/metrics", promhttp.Handler())
	mux.HandleFunc("/health", func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "application/json")
		_ = json.NewEncoder(w).Encode(map[string]interface{}{
			"status": "ok",
			"time":   time.Now().UTC().Format(time.RFC3339),
		})
	})
	return mux
}

func (o *ServerOptions) Run(ctx context.Context) error {
	log.SetLevel(o.LogLevel)
	// stdout carries the protocol in stdio mode
	log.SetOutput(os.Stderr)
	log.WithFields(log.Fields{
		"mode":           o.Mode,
		"listen_address": o.ListenAddress,
		"store":          o.StoreFile,
	}).Info("Initializing MCP server")

	mcpServer := o.newMCPServer()

	ctx, stop := signal.NotifyContext(ctx, os.Interrupt, syscall.SIGTERM)
	defer stop()

	errChan := make(chan error, 1)
	serve := func(what string, fn func() error) {
		go func() {
			defer func() {
				if r := recover(); r != nil {
					log.WithField("panic", r).Errorf("%s server panicked", what)
					errChan <- fmt.Errorf("%s server panicked: %v", what, r)
				}
			}()
			errChan <- fn()
		}()
	}

	switch o.Mode {
	case "stdio":
		log.Info("Starting stdio MCP server (press Ctrl+C to stop)")
		serve("stdio", func() error { return server.ServeStdio(mcpServer) })

		select {
		case err := <-errChan:
			if err != nil {
				log.WithError(err).Error("Stdio server failed")
			}
			return err
		case <-ctx.Done():
			log.Info("Received signal, shutting down stdio server")
			return nil
		}

	case "http":
		srv := &http.Server{
			Addr:              o.ListenAddress,
			Handler:           newHTTPHandler(mcpServer),
			ReadHeaderTimeout: 5 * time.Second,
			ReadTimeout:       15 * time.Second,
			IdleTimeout:       60 * time.Second,
		}
		log.WithField("endpoint", fmt.Sprintf("http://localhost%s/mcp", o.ListenAddress)).Info("Starting HTTP MCP server (press Ctrl+C to stop)")
		serve("HTTP", func() error {
			if err := srv.ListenAndServe(); err != nil && err != http.ErrServerClosed {
				return err
			}
			return nil
		})

		select {
		case err := <-errChan:
			if err != nil {
				log.WithError(err).Error("HTTP server failed")
				if strings.Contains(err.Error(), "address already in use") {
					log.WithField("address", o.ListenAddress).Error("Port is already in use")
				}
			}
			return err
		case <-ctx.Done():
			log.Info("Received signal, shutting down HTTP server")
			shutdownCtx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
			defer cancel()
			if err := srv.Shutdown(shutdownCtx); err != nil {
				log.WithError(err).Error("Error during graceful shutdown")
				return err
			}
			log.Info("HTTP server shutdown completed")
			return nil
		}
	}
	return errors.Errorf("unsupported mode: %s", o.Mode)
}
