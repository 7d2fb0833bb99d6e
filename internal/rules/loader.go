package rules

import (
	"fmt"
	"os"
)

// LoadFromFile reads a rules document and parses it.
// It returns the parsed RuleSet together with the raw text.
func LoadFromFile(path string) (*RuleSet, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", fmt.Errorf("failed to read rules file: %w", err)
	}

	text := string(data)
	return Parse(text), text, nil
}
