package extract

import (
	"bufio"
	"bytes"
	"regexp"
)

// scanPatterns recognize the common import forms line by line. Used only when
// the parser fails on a file; the first capture group is the dependency name.
var scanPatterns = []*regexp.Regexp{
	regexp.MustCompile(`import\s+.*?from\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`export\s+.*?from\s+['"]([^'"]+)['"]`),
	regexp.MustCompile(`require\s*\(\s*['"]([^'"]+)['"]\s*\)`),
	regexp.MustCompile(`import\s*\(\s*['"]([^'"]+)['"]\s*\)`),
}

// scanLines extracts dependency names with line-oriented regular expressions,
// in declaration order with duplicates removed.
func scanLines(source []byte) []string {
	var ordered []string
	seen := make(map[string]bool)

	scanner := bufio.NewScanner(bytes.NewReader(source))
	for scanner.Scan() {
		line := scanner.Text()
		for _, re := range scanPatterns {
			for _, match := range re.FindAllStringSubmatch(line, -1) {
				if len(match) > 1 && match[1] != "" && !seen[match[1]] {
					seen[match[1]] = true
					ordered = append(ordered, match[1])
				}
			}
		}
	}

	return ordered
}
