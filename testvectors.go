package hashsession

import (
	"encoding/hex"
	"encoding/json"
	"fmt"
	"os"
)

// TestVector is a single known-answer case for one algorithm and size.
type TestVector struct {
	Name      string `json:"name"`
	Algorithm string `json:"algorithm"`
	Size      int    `json:"size"`
	Input     string `json:"input"`
	InputHex  string `json:"input_hex,omitempty"` // Alternative hex-encoded input
	Repeat    int    `json:"repeat,omitempty"`    // Input is repeated this many times
	Expected  string `json:"expected"`            // Hex-encoded expected digest
}

// TestVectorSuite contains all test vectors with metadata about their source.
type TestVectorSuite struct {
	Version     string       `json:"version"`
	Description string       `json:"description"`
	Source      string       `json:"source,omitempty"`
	Vectors     []TestVector `json:"vectors"`
}

// LoadTestVectors loads test vectors from a JSON file.
// Returns an error if the file cannot be read or parsed.
//
// This is used internally for testing but exported for potential external
// validation tools.
func LoadTestVectors(path string) (*TestVectorSuite, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("failed to read test vectors: %w", err)
	}

	var suite TestVectorSuite
	if err := json.Unmarshal(data, &suite); err != nil {
		return nil, fmt.Errorf("failed to parse test vectors: %w", err)
	}

	return &suite, nil
}

// GetInput returns the decoded input bytes for a test vector.
// If InputHex is set, it decodes from hex, otherwise uses Input as UTF-8.
// The result is repeated Repeat times when Repeat is greater than one.
func (tv *TestVector) GetInput() ([]byte, error) {
	unit := []byte(tv.Input)
	if tv.InputHex != "" {
		var err error
		unit, err = hex.DecodeString(tv.InputHex)
		if err != nil {
			return nil, fmt.Errorf("invalid input hex: %w", err)
		}
	}

	if tv.Repeat <= 1 {
		return unit, nil
	}
	input := make([]byte, 0, len(unit)*tv.Repeat)
	for i := 0; i < tv.Repeat; i++ {
		input = append(input, unit...)
	}
	return input, nil
}

// GetExpected returns the decoded expected digest bytes.
func (tv *TestVector) GetExpected() ([]byte, error) {
	expected, err := hex.DecodeString(tv.Expected)
	if err != nil {
		return nil, fmt.Errorf("invalid expected digest: %w", err)
	}
	if len(expected) != tv.Size {
		return nil, fmt.Errorf("expected digest must be %d bytes, got %d", tv.Size, len(expected))
	}
	return expected, nil
}

// GetAlgorithm returns the Algorithm value for this test vector.
func (tv *TestVector) GetAlgorithm() (Algorithm, error) {
	return ParseAlgorithm(tv.Algorithm)
}
