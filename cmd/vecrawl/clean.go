package main

import (
	"bufio"
	"fmt"
	"strings"

	"vecrawl"
	"vecrawl/scan"
)

// Run executes the clean command.
func (c *CleanCmd) Run(deps *Dependencies, cli *CLI) error {
	if !c.DryRun && !c.Yes {
		fmt.Fprint(deps.Stdout, "Delete defective vectors from the index? [y/N]: ")
		answer, _ := bufio.NewReader(deps.Stdin).ReadString('\n')
		if a := strings.ToLower(strings.TrimSpace(answer)); a != "y" && a != "yes" {
			fmt.Fprintln(deps.Stdout, "Aborted.")
			return nil
		}
	}

	scanner := &scan.Scanner{
		Index:         deps.Index,
		Rules:         scan.DefaultRules(c.MinTextLength, c.Epsilon, cli.EmbeddingDimension),
		BatchSize:     c.BatchSize,
		MaxIterations: c.MaxIterations,
		DryRun:        c.DryRun,
	}

	progress := func(p scan.Progress) {
		fmt.Fprintf(deps.Stdout, "  page %d: %d examined, %d defective so far\n",
			p.Iteration, p.Examined, p.Defective)
	}

	report, err := scanner.Run(deps.Ctx, progress)
	if err != nil {
		fmt.Fprintf(deps.Stderr, "error: %s\n", vecrawl.ErrorMessage(err))
		return err
	}

	verb := "deleted"
	if c.DryRun {
		verb = "flagged"
	}
	fmt.Fprintf(deps.Stdout, "Examined %d vectors in %d pages: %d defective, %d %s\n",
		report.Examined, report.Iterations, report.Defective, report.Deleted, verb)
	for rule, n := range report.ByRule {
		fmt.Fprintf(deps.Stdout, "  %s: %d\n", rule, n)
	}
	if !report.Complete {
		fmt.Fprintf(deps.Stdout, "Scan stopped at the page limit with entries remaining; re-run to finish.\n")
	}

	return nil
}
