// Package choice records the answers given to guidebook questions. A State
// maps each question's group context to the selected option title (or a
// JSON encoded form payload), remembers which keys the user explicitly
// cleared, and notifies registered listeners of every change.
package choice
