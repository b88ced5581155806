// Package projects serves the portfolio project cards shown next to the chat.
package projects

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"sort"
	"strconv"
	"strings"
	"time"

	"github.com/spherical-ai/profile-assistant/internal/domain"
	"github.com/spherical-ai/profile-assistant/internal/knowledge"
	"github.com/spherical-ai/profile-assistant/internal/observability"
)

// Project is one portfolio card.
type Project struct {
	ID                string   `json:"id"`
	Order             string   `json:"order"`
	Icon              string   `json:"icon"`
	Title             string   `json:"title"`
	Description       string   `json:"description"`
	Domain            string   `json:"domain"`
	SkillsUsed        []string `json:"skillsUsed"`
	MeasurableResults string   `json:"measurableResults"`
	Link              string   `json:"link"`
}

// UnmarshalJSON accepts the PascalCase field names some exports use, numeric
// ids and orders, and a comma separated skills string.
func (p *Project) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	field := func(name string) json.RawMessage {
		if v, ok := raw[name]; ok {
			return v
		}
		return raw[strings.ToUpper(name[:1])+name[1:]]
	}

	*p = Project{
		ID:                scalar(field("id")),
		Order:             scalar(field("order")),
		Icon:              scalar(field("icon")),
		Title:             scalar(field("title")),
		Description:       scalar(field("description")),
		Domain:            scalar(field("domain")),
		MeasurableResults: scalar(field("measurableResults")),
		Link:              scalar(field("link")),
	}

	skills := field("skillsUsed")
	if err := json.Unmarshal(skills, &p.SkillsUsed); err != nil {
		for _, s := range strings.Split(scalar(skills), ",") {
			if s = strings.TrimSpace(s); s != "" {
				p.SkillsUsed = append(p.SkillsUsed, s)
			}
		}
	}
	return nil
}

func scalar(raw json.RawMessage) string {
	raw = bytes.TrimSpace(raw)
	if len(raw) == 0 || bytes.Equal(raw, []byte("null")) {
		return ""
	}
	var s string
	if err := json.Unmarshal(raw, &s); err == nil {
		return s
	}
	return string(raw)
}

// HasCaseStudy reports whether the card links to a case study. A bare "#"
// is a placeholder link.
func (p Project) HasCaseStudy() bool {
	link := strings.TrimSpace(p.Link)
	return link != "" && link != "#"
}

// DefaultProjects is served when the catalog cannot be fetched.
func DefaultProjects() []Project {
	return []Project{
		{
			ID:    "1",
			Order: "1",
			Icon:  "💡",
			Title: "Designing an Engaging Developer Platform for ZARA",
			Description: "As a UX Designer on the team, I contributed to the redesign of Zara Tools, the internal " +
				"platform for the engineering community, helping boost adoption and daily use among developers. " +
				"I improved internal processes and collaborated with multidisciplinary squads (engineering, content, design, PMs).",
			Domain:            "Fashion, B2C, Platform",
			SkillsUsed:        []string{"UX research", "design systems", "UX Design", "UI Design"},
			MeasurableResults: "🚀 +77% adoption in engineering community",
		},
	}
}

// ParseProjects decodes a JSON array of project cards and sorts them.
func ParseProjects(data []byte) ([]Project, error) {
	var list []Project
	if err := json.Unmarshal(data, &list); err != nil {
		return nil, domain.ParseError("decode projects document", err)
	}
	if list == nil {
		return nil, domain.ParseError("projects document is not an array", nil)
	}
	Sort(list)
	return list, nil
}

// Sort orders projects by their numeric order. Non-numeric orders go last,
// compared as text; ties keep document order.
func Sort(list []Project) {
	sort.SliceStable(list, func(i, j int) bool {
		a, aErr := strconv.Atoi(strings.TrimSpace(list[i].Order))
		b, bErr := strconv.Atoi(strings.TrimSpace(list[j].Order))
		switch {
		case aErr == nil && bErr == nil:
			return a < b
		case aErr == nil:
			return true
		case bErr == nil:
			return false
		default:
			return list[i].Order < list[j].Order
		}
	})
}

// Catalog fetches project cards from a URL or file.
type Catalog struct {
	location string
	client   *http.Client
	timeout  time.Duration
	logger   *observability.Logger
}

// NewCatalog creates a catalog. An empty location always serves the defaults.
func NewCatalog(location string, client *http.Client, timeout time.Duration, logger *observability.Logger) *Catalog {
	if logger == nil {
		logger = observability.NopLogger()
	}
	if timeout <= 0 {
		timeout = 5 * time.Second
	}
	return &Catalog{
		location: location,
		client:   client,
		timeout:  timeout,
		logger:   logger.WithComponent("projects"),
	}
}

// Location returns where the catalog reads from.
func (c *Catalog) Location() string {
	return c.location
}

// List returns the sorted project cards, or DefaultProjects on any failure.
func (c *Catalog) List(ctx context.Context) []Project {
	if c.location == "" {
		return DefaultProjects()
	}

	fetchCtx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	data, err := knowledge.ReadLocation(fetchCtx, c.location, c.client)
	if err == nil {
		var list []Project
		if list, err = ParseProjects(data); err == nil && len(list) > 0 {
			return list
		}
	}

	c.logger.WithContext(ctx).Warn().
		Err(err).
		Str("location", c.location).
		Msg("Projects unavailable, serving defaults")
	return DefaultProjects()
}
