package main

import (
	"context"
	"encoding/json"
	"fmt"
	"text/tabwriter"
)

// runTemplates lists the templates available for merging.
func runTemplates(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseListFlags("templates", args, env.Stderr, printTemplatesUsage)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: templates takes no arguments", ErrUsage)
	}

	sess, err := openSession(&f.common, &f.store, env)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	templates, err := sess.merger.ListTemplates(ctx)
	if err != nil {
		return err
	}

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(templates)
	}

	if len(templates) == 0 {
		fmt.Fprintln(env.Stdout, "No templates found")
		return nil
	}
	tw := tabwriter.NewWriter(env.Stdout, 0, 4, 2, ' ', 0)
	fmt.Fprintln(tw, "ID\tNAME")
	for _, t := range templates {
		fmt.Fprintf(tw, "%s\t%s\n", t.ID, t.Name)
	}
	return tw.Flush()
}

// sweepResult is the --json output of sweep.
type sweepResult struct {
	Deleted int    `json:"deleted"`
	Failed  uint64 `json:"failed"`
}

// runSweep deletes orphaned scratch documents once.
func runSweep(ctx context.Context, args []string, env *Environment) error {
	f, positional, err := parseListFlags("sweep", args, env.Stderr, printSweepUsage)
	if err != nil {
		return err
	}
	if len(positional) > 0 {
		return fmt.Errorf("%w: sweep takes no arguments", ErrUsage)
	}

	sess, err := openSession(&f.common, &f.store, env)
	if err != nil {
		return err
	}
	defer func() { _ = sess.Close() }()

	deleted, err := sess.merger.SweepOrphans(ctx)
	if err != nil {
		return err
	}

	if f.json {
		enc := json.NewEncoder(env.Stdout)
		enc.SetIndent("", "  ")
		return enc.Encode(sweepResult{
			Deleted: deleted,
			Failed:  sess.merger.Stats().OrphanFailures,
		})
	}
	fmt.Fprintf(env.Stdout, "Deleted %d orphaned scratch document(s)\n", deleted)
	return nil
}
