// Package tracing wraps OpenTelemetry so that the optimizer and the guide
// can open spans around validations, leaves and whole sessions without
// importing the upstream packages directly. Until Init is called spans are
// no-ops.
package tracing
