// Package guidebook turns guidebooks, YAML documents describing an
// installation or configuration procedure, into task graphs and drives them
// to completion.
//
// A session loads the guidebook, prunes the work that validation proves is
// already done, and walks what remains: either interactively, asking the
// user every question (guide mode), or unattended, replaying the answers
// remembered in the profile (run mode).
//
//	srv, _ := guidebook.New(ctx, guidebook.WithConfig(cfg))
//	result, err := srv.Guide(ctx, "install.yaml", guide.ModeGuide)
//
// Answers are persisted per profile; live subprocesses are cleaned up
// exactly once, on completion or on SIGINT/SIGTERM.
package guidebook
