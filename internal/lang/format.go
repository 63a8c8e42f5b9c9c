package lang

import "strings"

// indentLines prefixes every non-empty line of code with one level
// (two spaces) of indentation, used by each target's FormatCode.
func indentLines(code string) string {
	lines := strings.Split(strings.TrimRight(code, "\n"), "\n")
	for i, l := range lines {
		if strings.TrimSpace(l) == "" {
			continue
		}
		lines[i] = "  " + l
	}
	return strings.Join(lines, "\n") + "\n"
}
