package charlson

import (
	"bytes"
	"encoding/json"
	"fmt"
)

// CodeList accepts either a single code string or a list of code strings on
// the wire and normalises both to a slice. Any other JSON shape — numbers,
// nulls, mixed arrays — is rejected with ErrInvalidInput so a malformed
// payload can never be mistaken for a legitimate zero score.
type CodeList []string

func (c *CodeList) UnmarshalJSON(data []byte) error {
	// Unmarshalling null into a string is a no-op, so it would slip through
	// the string decode below as an empty code.
	if isNull(data) {
		return fmt.Errorf("%w: codes must be a string or a list of strings", ErrInvalidInput)
	}

	var single string
	if err := json.Unmarshal(data, &single); err == nil {
		*c = CodeList{single}
		return nil
	}

	var raw []json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return fmt.Errorf("%w: codes must be a string or a list of strings", ErrInvalidInput)
	}
	out := make(CodeList, 0, len(raw))
	for _, item := range raw {
		var s string
		if isNull(item) || json.Unmarshal(item, &s) != nil {
			return fmt.Errorf("%w: codes must be a string or a list of strings", ErrInvalidInput)
		}
		out = append(out, s)
	}
	*c = out
	return nil
}

func isNull(data []byte) bool {
	return bytes.Equal(bytes.TrimSpace(data), []byte("null"))
}
