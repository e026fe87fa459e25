package tutorial

import (
	"fmt"
	"strings"

	"gopkg.in/yaml.v3"
)

// stripFences removes a wrapping markdown code fence, which models add
// despite instructions not to.
func stripFences(content string) string {
	content = strings.TrimSpace(content)
	if !strings.HasPrefix(content, "```") {
		return content
	}
	lines := strings.Split(content, "\n")
	if len(lines) < 2 {
		return content
	}
	start := 1
	end := len(lines)
	if strings.TrimSpace(lines[end-1]) == "```" {
		end--
	}
	return strings.Join(lines[start:end], "\n")
}

func parseAbstractions(content string, fileCount int) ([]Abstraction, error) {
	var abstractions []Abstraction
	if err := yaml.Unmarshal([]byte(stripFences(content)), &abstractions); err != nil {
		return nil, fmt.Errorf("invalid YAML list: %w", err)
	}
	if len(abstractions) == 0 {
		return nil, fmt.Errorf("no abstractions in response")
	}
	for i, a := range abstractions {
		if strings.TrimSpace(a.Name) == "" {
			return nil, fmt.Errorf("abstraction %d has no name", i)
		}
		for _, idx := range a.Files {
			if idx < 0 || idx >= fileCount {
				return nil, fmt.Errorf("abstraction %q references file index %d, valid range is 0-%d", a.Name, idx, fileCount-1)
			}
		}
	}
	return abstractions, nil
}

func parseAnalysis(content string, abstractionCount int) (Analysis, error) {
	var analysis Analysis
	if err := yaml.Unmarshal([]byte(stripFences(content)), &analysis); err != nil {
		return Analysis{}, fmt.Errorf("invalid YAML mapping: %w", err)
	}
	if strings.TrimSpace(analysis.Summary) == "" {
		return Analysis{}, fmt.Errorf("missing summary in response")
	}
	for i, r := range analysis.Relationships {
		if r.From < 0 || r.From >= abstractionCount || r.To < 0 || r.To >= abstractionCount {
			return Analysis{}, fmt.Errorf("relationship %d references abstraction %d->%d, valid range is 0-%d", i, r.From, r.To, abstractionCount-1)
		}
	}
	return analysis, nil
}

func parseOrder(content string, abstractionCount int) ([]int, error) {
	var order []int
	if err := yaml.Unmarshal([]byte(stripFences(content)), &order); err != nil {
		return nil, fmt.Errorf("invalid YAML list of indices: %w", err)
	}
	if len(order) != abstractionCount {
		return nil, fmt.Errorf("order has %d entries, want %d", len(order), abstractionCount)
	}
	seen := make(map[int]bool, abstractionCount)
	for _, idx := range order {
		if idx < 0 || idx >= abstractionCount {
			return nil, fmt.Errorf("order references abstraction %d, valid range is 0-%d", idx, abstractionCount-1)
		}
		if seen[idx] {
			return nil, fmt.Errorf("order lists abstraction %d twice", idx)
		}
		seen[idx] = true
	}
	return order, nil
}
