package mcp

import (
	"github.com/custodia-labs/quaestor/internal/core/ports/driving"
)

// Ports aggregates all driving port interfaces required by the MCP server.
// This provides a single injection point for dependency injection.
type Ports struct {
	// Knowledge provides index retrieval.
	Knowledge driving.KnowledgeService

	// Ask answers questions without the tip gate.
	Ask driving.AskService
}

// Validate ensures all required ports are set.
// Returns an error if any required port is nil.
func (p *Ports) Validate() error {
	if p.Knowledge == nil {
		return ErrMissingKnowledgeService
	}
	// Ask is optional; without it only retrieval is exposed
	return nil
}
