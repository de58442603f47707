// Package idgen generates the identifiers that tag a session's logs and
// spans. Identifiers are opaque strings; NewFunc can be replaced in tests.
package idgen
