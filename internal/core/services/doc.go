// Package services contains the core business logic for Quaestor:
// the knowledge index, the price oracle, the pending-question store,
// and the tip-gating orchestrator. Services depend on driven ports
// only; all state is owned by service instances with
// constructor-injected configuration so tests can run many
// independent instances.
package services
