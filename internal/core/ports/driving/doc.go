// Package driving defines the service interfaces exposed to external
// callers: the desktop UI command layer and the AI orchestration layer.
//
// Services under internal/core/services implement these interfaces.
package driving
