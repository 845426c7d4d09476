// Command mcp-server exposes the symcalc tools over the Model Context Protocol.
//
// Usage:
//
//	mcp-server --mode stdio
//	mcp-server --mode http --listen :8080 --store store.yaml
package main

import (
	"os"

	log "github.com/sirupsen/logrus"
)

func main() {
	if err := NewServerCommand().Execute(); err != nil {
		log.WithError(err).Error("mcp-server failed")
		os.Exit(1)
	}
}
