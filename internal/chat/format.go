package chat

import "strings"

// FormatTable normalizes pipe tables in a model answer: every line holding
// a "|" that is not a separator row becomes "| a | b |" with trimmed cells.
// Text without a "|" is returned unchanged.
func FormatTable(answer string) string {
	if !strings.Contains(answer, "|") {
		return answer
	}

	lines := strings.Split(answer, "\n")
	for i, line := range lines {
		if !strings.Contains(line, "|") || isSeparatorRow(line) {
			continue
		}
		trimmed := strings.Trim(strings.TrimSpace(line), "|")
		cells := strings.Split(trimmed, "|")
		for j, c := range cells {
			cells[j] = strings.TrimSpace(c)
		}
		lines[i] = "| " + strings.Join(cells, " | ") + " |"
	}
	return strings.Join(lines, "\n")
}

// isSeparatorRow matches markdown rules such as "|---|:--:|".
func isSeparatorRow(line string) bool {
	s := strings.TrimSpace(line)
	if s == "" {
		return false
	}
	hasDash := false
	for _, r := range s {
		switch r {
		case '-':
			hasDash = true
		case '|', ':', ' ':
		default:
			return false
		}
	}
	return hasDash
}
