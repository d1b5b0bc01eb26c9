package dispatch

import (
	"fmt"
	"os"

	"gopkg.in/yaml.v3"
)

// ClaimsFile is the on-disk shape of a batch of claims.
type ClaimsFile struct {
	Claims []Claim `yaml:"claims"`
}

// DecodeClaims parses a YAML claims document.
func DecodeClaims(data []byte) ([]Claim, error) {
	var file ClaimsFile
	if err := yaml.Unmarshal(data, &file); err != nil {
		return nil, fmt.Errorf("failed to parse claims: %w", err)
	}
	return file.Claims, nil
}

// LoadClaims reads and parses a YAML claims file.
func LoadClaims(path string) ([]Claim, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read claims file: %w", err)
	}
	return DecodeClaims(data)
}
