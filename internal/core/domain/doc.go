// Package domain contains the core business entities for Quaestor.
//
// The domain layer has no dependencies on infrastructure. It defines:
//   - Chunk and EmbeddedChunk: the retrievable units of corpus text
//   - Source and Fingerprint: corpus identity for cache invalidation
//   - PendingQuestion: the per-user tip-gating record
//   - PriceSnapshot: a cached asset price observation
//   - TipEvent and Message: the inbound transport events
//   - Answer: the structured generation payload
//
// All types are plain data; behaviour lives in core/services.
package domain
