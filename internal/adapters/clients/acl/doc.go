// Package acl is the anti-corruption layer between this service and remote
// age calculators.
//
// Remote DTOs stay unexported inside the adapter files. Transport failures,
// HTTP statuses and error bodies are translated into domain errors before
// they leave the package:
//
//   - 400/422 → [domain.ErrValidation]
//   - 5xx, 429, other 4xx, network errors → [domain.ErrUnavailable]
//   - [clients.ErrCircuitOpen] and [clients.ErrMaxRetriesExceeded] → [domain.ErrUnavailable]
//
// A remote answer that cannot be decoded is also reported as unavailable;
// callers fall back to the local rule either way.
package acl
