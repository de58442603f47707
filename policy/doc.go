// Package policy decides whether the guide may execute a code block:
// automatically, after confirmation, or never (dry run).
package policy
