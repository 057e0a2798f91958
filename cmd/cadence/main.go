package main

import (
	"os"
	"strings"

	"cadence-cli/internal/cli"
)

// flagsWithValue lists the persistent flags whose value arrives as the
// following token. Any other flag is assumed self-contained, so an
// adjacent task id is never mistaken for a flag value.
var flagsWithValue = map[string]bool{
	"--dir":       true,
	"--actor":     true,
	"--partition": true,
	"--format":    true,
}

func looksLikeTaskID(s string) bool {
	s = strings.TrimSpace(s)
	rest := strings.TrimPrefix(s, "task-")
	return rest != s && rest != ""
}

// firstPositional returns the index of the first non-flag token in
// argv, or -1. A bare "--" ends flag parsing; whatever follows it is
// positional.
func firstPositional(argv []string) int {
	for i := 1; i < len(argv); i++ {
		a := strings.TrimSpace(argv[i])
		switch {
		case a == "":
			continue
		case a == "--":
			if i+1 < len(argv) {
				return i + 1
			}
			return -1
		case strings.HasPrefix(a, "-"):
			if flagsWithValue[a] && !strings.Contains(a, "=") {
				i++
			}
		default:
			return i
		}
	}
	return -1
}

// expandTaskShortcut lets `cadence <task-id>` stand for
// `cadence show <task-id>`. Cobra resolves the first positional token
// as a subcommand, so the id is spliced out of argv before parsing.
func expandTaskShortcut(argv []string) []string {
	i := firstPositional(argv)
	if i < 0 || !looksLikeTaskID(argv[i]) {
		return argv
	}
	out := make([]string, 0, len(argv)+1)
	out = append(out, argv[:i]...)
	out = append(out, "show")
	return append(out, argv[i:]...)
}

func main() {
	os.Args = expandTaskShortcut(os.Args)

	if err := cli.NewRootCmd().Execute(); err != nil {
		os.Exit(1)
	}
}
