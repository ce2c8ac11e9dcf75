package charlson

import (
	"errors"
	"fmt"
	"log/slog"
	"strings"

	"github.com/meridianhealth/comorbid/internal/mapping"
)

var (
	// ErrUnknownMapping is returned when the requested mapping version has no
	// category table in the registry.
	ErrUnknownMapping = errors.New("unknown mapping version")

	// ErrInvalidInput is returned when the code input is malformed. A blank
	// code list is valid (score 0); a blank code inside the list is not.
	ErrInvalidInput = errors.New("invalid code input")
)

// Result is the outcome of one scoring call.
type Result struct {
	MappingVersion string    `json:"mapping"`
	Mode           MatchMode `json:"mode"`
	Score          int       `json:"score"`
	Retained       []string  `json:"retained"`
	Categories     []string  `json:"categories"`
}

// Scorer runs the categorize/resolve pipeline against whichever registry
// snapshot its source currently serves. Stateless per call; safe for
// concurrent use.
type Scorer struct {
	source mapping.RegistrySource
	logger *slog.Logger
}

func NewScorer(source mapping.RegistrySource, logger *slog.Logger) *Scorer {
	return &Scorer{source: source, logger: logger}
}

// Score computes the comorbidity score of codes against the given mapping
// version. Codes are matched verbatim (case-sensitive, no normalisation
// beyond whitespace trimming).
func (s *Scorer) Score(version string, codes []string, mode MatchMode) (*Result, error) {
	table, ok := s.source.Current().Table(version)
	if !ok {
		return nil, fmt.Errorf("%w: %q", ErrUnknownMapping, version)
	}

	cleaned := make([]string, 0, len(codes))
	for _, c := range codes {
		c = strings.TrimSpace(c)
		if c == "" {
			return nil, fmt.Errorf("%w: blank code", ErrInvalidInput)
		}
		cleaned = append(cleaned, c)
	}

	scored := Categorize(cleaned, table, mode)
	score, retained := Resolve(scored, table)

	names := make([]string, 0, len(retained))
	for _, id := range retained {
		names = append(names, table[id].Name)
	}

	s.logger.Debug("score computed",
		"mapping", version,
		"mode", string(mode),
		"codes", len(cleaned),
		"score", score,
		"retained", retained,
	)

	return &Result{
		MappingVersion: version,
		Mode:           mode,
		Score:          score,
		Retained:       retained,
		Categories:     names,
	}, nil
}
