// Package services holds the cross-cutting error taxonomy and context keys
// shared by pipeline components.
//
// Errors are tagged with sentinel markers so callers can classify a failure
// as fatal (configuration, validation) or isolated (external tool, timeout)
// without inspecting message text.
package services
