package evaluation

import (
	"encoding/json"
	"fmt"
	"os"
	"strings"
)

// LoadQueryCases reads and parses a query suite from a JSON file.
func LoadQueryCases(path string) ([]QueryCase, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read query suite: %w", err)
	}

	var cases []QueryCase
	if err := json.Unmarshal(data, &cases); err != nil {
		return nil, fmt.Errorf("failed to parse query suite: %w", err)
	}

	return cases, nil
}

var validDifficulties = map[string]bool{
	"easy":   true,
	"medium": true,
	"hard":   true,
}

// ValidateQueryCases checks that all cases have required fields and consistent labels.
func ValidateQueryCases(cases []QueryCase) error {
	seen := make(map[string]struct{}, len(cases))

	for i, c := range cases {
		if c.ID == "" {
			return fmt.Errorf("case at index %d: missing id", i)
		}
		if _, dup := seen[c.ID]; dup {
			return fmt.Errorf("case at index %d: duplicate id %q", i, c.ID)
		}
		seen[c.ID] = struct{}{}

		if strings.TrimSpace(c.Reason) == "" {
			return fmt.Errorf("case %q: missing reason", c.ID)
		}
		if !validDifficulties[c.Difficulty] {
			return fmt.Errorf("case %q: invalid difficulty %q (must be easy/medium/hard)", c.ID, c.Difficulty)
		}
		if c.ExpectedCategory != "" && !c.ExpectEmergency {
			return fmt.Errorf("case %q: expected_category requires expect_emergency", c.ID)
		}
		if c.ExpectEmergency && (c.ExpectedTop != "" || len(c.ExpectedIDs) > 0) {
			return fmt.Errorf("case %q: emergency cases cannot expect ranked locations", c.ID)
		}
	}

	return nil
}
