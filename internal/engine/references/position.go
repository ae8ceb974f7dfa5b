package references

import (
	"depgraph/internal/engine/parser"
	"strings"
)

const exportToken = "export"

// FindDeclarationPosition returns the position of name on the first line that
// also mentions an export token. module.exports and exports.x match as well.
func FindDeclarationPosition(lines []string, name, filePath string) *parser.Location {
	if name == "" {
		return nil
	}
	for i, line := range lines {
		if !strings.Contains(line, name) || !strings.Contains(line, exportToken) {
			continue
		}
		return &parser.Location{
			File:   filePath,
			Line:   i + 1,
			Column: strings.Index(line, name) + 1,
		}
	}
	return nil
}

func splitLines(source []byte) []string {
	lines := strings.Split(string(source), "\n")
	for i, line := range lines {
		lines[i] = strings.TrimSuffix(line, "\r")
	}
	return lines
}
