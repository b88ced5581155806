// Package fit scores how well the profile matches a role or keyword and
// explains the result.
package fit

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"

	"github.com/spherical-ai/profile-assistant/internal/domain"
	"github.com/spherical-ai/profile-assistant/internal/knowledge"
	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// Role is one scored role of the fit scores document.
type Role struct {
	Category string `json:"category"`
	Key      string `json:"key"`
	Title    string `json:"title"`
	Score    int    `json:"score"`
}

// Scores holds the roles in document order.
type Scores struct {
	roles []Role
}

// NewScores wraps an ordered role list.
func NewScores(roles []Role) *Scores {
	return &Scores{roles: roles}
}

// Roles returns the roles in document order.
func (s *Scores) Roles() []Role {
	if s == nil {
		return nil
	}
	return s.roles
}

// Len returns the number of roles.
func (s *Scores) Len() int {
	return len(s.Roles())
}

// ParseScores decodes {"fit_scores": {category: {key: {title, score}}}}
// keeping categories and roles in document order.
func ParseScores(data []byte) (*Scores, error) {
	dec := json.NewDecoder(bytes.NewReader(data))

	if err := expectDelim(dec, '{'); err != nil {
		return nil, domain.ParseError("fit scores document", err)
	}

	var roles []Role
	for dec.More() {
		key, err := readKey(dec)
		if err != nil {
			return nil, domain.ParseError("fit scores document", err)
		}
		if key != "fit_scores" {
			var skip json.RawMessage
			if err := dec.Decode(&skip); err != nil {
				return nil, domain.ParseError("fit scores document", err)
			}
			continue
		}
		if roles, err = readCategories(dec); err != nil {
			return nil, domain.ParseError("fit_scores", err)
		}
	}

	if err := expectDelim(dec, '}'); err != nil {
		return nil, domain.ParseError("fit scores document", err)
	}
	if _, err := dec.Token(); err != io.EOF {
		return nil, domain.ParseError("fit scores document", fmt.Errorf("trailing data"))
	}

	return &Scores{roles: roles}, nil
}

func readCategories(dec *json.Decoder) ([]Role, error) {
	if err := expectDelim(dec, '{'); err != nil {
		return nil, err
	}
	var roles []Role
	for dec.More() {
		category, err := readKey(dec)
		if err != nil {
			return nil, err
		}
		if err := expectDelim(dec, '{'); err != nil {
			return nil, fmt.Errorf("category %q: %w", category, err)
		}
		for dec.More() {
			key, err := readKey(dec)
			if err != nil {
				return nil, err
			}
			var role struct {
				Title string `json:"title"`
				Score int    `json:"score"`
			}
			if err := dec.Decode(&role); err != nil {
				return nil, fmt.Errorf("role %s.%s: %w", category, key, err)
			}
			roles = append(roles, Role{Category: category, Key: key, Title: role.Title, Score: role.Score})
		}
		if err := expectDelim(dec, '}'); err != nil {
			return nil, err
		}
	}
	return roles, expectDelim(dec, '}')
}

func readKey(dec *json.Decoder) (string, error) {
	tok, err := dec.Token()
	if err != nil {
		return "", err
	}
	key, ok := tok.(string)
	if !ok {
		return "", fmt.Errorf("expected object key, got %v", tok)
	}
	return key, nil
}

func expectDelim(dec *json.Decoder, want json.Delim) error {
	tok, err := dec.Token()
	if err != nil {
		return err
	}
	if d, ok := tok.(json.Delim); !ok || d != want {
		return fmt.Errorf("expected %q, got %v", want, tok)
	}
	return nil
}

// LoadScores reads the fit scores document. Failures are logged and yield an
// empty set, which leaves keyword scoring in charge.
func LoadScores(ctx context.Context, location string, client *http.Client, logger *observability.Logger) *Scores {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if location == "" {
		return &Scores{}
	}

	data, err := knowledge.ReadLocation(ctx, location, client)
	if err != nil {
		logger.Warn().Err(err).Str("location", location).Msg("Fit scores unavailable, using keyword scoring")
		return &Scores{}
	}

	scores, err := ParseScores(data)
	if err != nil {
		logger.Warn().Err(err).Str("location", location).Msg("Fit scores unreadable, using keyword scoring")
		return &Scores{}
	}

	logger.Info().Int("roles", scores.Len()).Msg("Fit scores loaded")
	return scores
}
