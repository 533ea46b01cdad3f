package analyze

import (
	"fmt"
	"strings"
)

// NoHeadingsMessage is returned by Outline for documents without headings.
const NoHeadingsMessage = "No valid headers identified."

const maxHeadingLevel = 6

type heading struct {
	level int
	text  string
}

// Outline extracts Markdown-style headings and renders them as a numbered
// table of contents. Levels are normalized so the shallowest heading becomes
// level 1, a lone top-level heading is promoted to the document title, and
// hierarchical counters reset whenever the level drops.
func Outline(input string) string {
	headings := collectHeadings(input)
	if len(headings) == 0 {
		return NoHeadingsMessage
	}

	offset := headings[0].level - 1
	for i := range headings {
		level := headings[i].level - offset
		if level < 1 {
			level = 1
		}
		headings[i].level = level
	}

	headings, title, minLevel := detectTitle(headings)

	var lines []string
	if title != "" {
		lines = append(lines, "Title: "+title)
	}
	lines = append(lines, numberHeadings(headings, title != "", minLevel)...)

	return strings.Join(lines, "\n")
}

// collectHeadings pulls out lines starting with '#' together with their
// nesting level.
func collectHeadings(input string) []heading {
	var headings []heading
	for _, line := range strings.Split(input, "\n") {
		line = strings.TrimSpace(line)
		if !strings.HasPrefix(line, "#") {
			continue
		}
		level := 0
		for level < len(line) && line[level] == '#' {
			level++
		}
		if level > maxHeadingLevel {
			level = maxHeadingLevel
		}
		headings = append(headings, heading{level: level, text: line})
	}
	return headings
}

// detectTitle promotes a unique shallowest heading to the document title and
// removes it from the outline.
func detectTitle(headings []heading) ([]heading, string, int) {
	minLevel := headings[0].level
	for _, h := range headings {
		if h.level < minLevel {
			minLevel = h.level
		}
	}

	var atMin []heading
	for _, h := range headings {
		if h.level == minLevel {
			atMin = append(atMin, h)
		}
	}
	if len(atMin) != 1 {
		return headings, "", minLevel
	}

	title := cleanHeadingText(atMin[0].text)
	remaining := make([]heading, 0, len(headings)-1)
	for _, h := range headings {
		if h.text == atMin[0].text {
			continue
		}
		remaining = append(remaining, h)
	}
	return remaining, title, minLevel
}

// numberHeadings assigns hierarchical numbers, clamping each heading to at
// most one level deeper than its predecessor.
func numberHeadings(headings []heading, hasTitle bool, minLevel int) []string {
	var (
		lines    []string
		counters [maxHeadingLevel + 1]int
		previous = minLevel
	)

	for _, h := range headings {
		level := h.level
		if level > previous+1 {
			level = previous + 1
		}

		counters[level]++
		if level > previous {
			counters[level] = 1
		}
		for l := level + 1; l <= maxHeadingLevel; l++ {
			counters[l] = 0
		}

		lines = append(lines, fmt.Sprintf("%s. %s",
			headingNumber(counters, level, hasTitle, minLevel),
			cleanHeadingText(h.text)))

		previous = level
	}

	return lines
}

// headingNumber renders the dotted counter path for one heading. With a
// title the numbering starts one level below it.
func headingNumber(counters [maxHeadingLevel + 1]int, level int, hasTitle bool, minLevel int) string {
	if hasTitle {
		switch level {
		case minLevel + 1:
			return fmt.Sprintf("%d", counters[2])
		case minLevel + 2:
			return fmt.Sprintf("%d.%d", counters[2], counters[3])
		}
	}

	parts := make([]string, 0, level)
	for l := 1; l <= level; l++ {
		parts = append(parts, fmt.Sprintf("%d", counters[l]))
	}
	return strings.Join(parts, ".")
}

// cleanHeadingText strips the '#' markers plus decorative asterisks, dots
// and leading numbering from a heading line.
func cleanHeadingText(line string) string {
	text := strings.TrimLeft(line, "#")
	text = strings.Trim(text, " *.0123456789")
	return strings.TrimSpace(text)
}
