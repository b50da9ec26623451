// Command snapshot-check validates an exported tab snapshot JSON file:
// display-order integrity, tab payload sanity, content limits, and optionally
// that every tab is flagged for persistence.
package main

import (
	"encoding/json"
	"flag"
	"fmt"
	"io"
	"os"
	"unicode/utf8"

	"tabcore/internal/infra/persistence/memory"
)

var exitFunc = os.Exit

func main() {
	exitFunc(cli(os.Args[1:], os.Stdout, os.Stderr))
}

func cli(args []string, stdout, stderr io.Writer) int {
	fs := flag.NewFlagSet("snapshot-check", flag.ContinueOnError)
	fs.SetOutput(stderr)
	var (
		path      = fs.String("snapshot", "", "path to snapshot json file")
		persisted = fs.Bool("persisted", false, "require every tab to carry the persist flag")
	)
	if err := fs.Parse(args); err != nil {
		return 2
	}
	if *path == "" {
		fmt.Fprintln(stderr, "snapshot-check: -snapshot is required")
		return 2
	}

	payload, err := os.ReadFile(*path)
	if err != nil {
		fmt.Fprintf(stderr, "snapshot-check: read %s: %v\n", *path, err)
		return 2
	}
	var snap memory.Snapshot
	if err := json.Unmarshal(payload, &snap); err != nil {
		fmt.Fprintf(stderr, "snapshot-check: decode %s: %v\n", *path, err)
		return 1
	}

	problems := validate(snap, *persisted)
	if len(problems) > 0 {
		for _, p := range problems {
			fmt.Fprintf(stderr, "snapshot-check: %s\n", p)
		}
		return 1
	}
	fmt.Fprintf(stdout, "snapshot-check: ok (%d tabs)\n", len(snap.Tabs))
	return 0
}

func validate(snap memory.Snapshot, requirePersist bool) []string {
	var problems []string

	seen := make(map[string]struct{}, len(snap.Order))
	for _, id := range snap.Order {
		if _, dup := seen[id]; dup {
			problems = append(problems, fmt.Sprintf("order entry %q duplicated", id))
			continue
		}
		seen[id] = struct{}{}
		if _, ok := snap.Tabs[id]; !ok {
			problems = append(problems, fmt.Sprintf("order entry %q has no tab record", id))
		}
	}
	for id := range snap.Tabs {
		if _, ok := seen[id]; !ok {
			problems = append(problems, fmt.Sprintf("tab %q missing from order", id))
		}
	}

	for id, tab := range snap.Tabs {
		if id == "" {
			problems = append(problems, "tab record with empty key")
			continue
		}
		if tab.ID != "" && tab.ID != id {
			problems = append(problems, fmt.Sprintf("tab %q embeds mismatched id %q", id, tab.ID))
		}
		if tab.Title == "" {
			problems = append(problems, fmt.Sprintf("tab %q has empty title", id))
		}
		if limit := tab.Config.MaxContentSize; limit > 0 {
			if n := utf8.RuneCountInString(tab.Content); n > limit {
				problems = append(problems, fmt.Sprintf("tab %q content %d exceeds limit %d", id, n, limit))
			}
		}
		if requirePersist && !tab.Config.Persist {
			problems = append(problems, fmt.Sprintf("tab %q lacks the persist flag", id))
		}
	}
	return problems
}
