package service

import "strings"

type importLine struct {
	lotNumber   string
	description string
}

// parseImportLine splits one pasted line into lot number and description.
// Tab-separated input wins over comma-separated, matching spreadsheet paste.
func parseImportLine(line string) *importLine {
	trimmed := strings.TrimSpace(line)
	if trimmed == "" {
		return nil
	}

	var parts []string
	if strings.Contains(trimmed, "\t") {
		parts = strings.Split(trimmed, "\t")
	} else {
		parts = strings.Split(trimmed, ",")
	}

	lotNumber := strings.TrimSpace(parts[0])
	if lotNumber == "" {
		return nil
	}

	description := strings.TrimSpace(strings.Join(parts[1:], ","))
	return &importLine{lotNumber: lotNumber, description: description}
}
