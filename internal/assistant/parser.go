package assistant

import (
	"regexp"
	"strconv"
	"strings"
)

// RecommendRequest carries the trip context for a recommendation.
type RecommendRequest struct {
	TripName       string
	Location       string
	StartDate      string
	EndDate        string
	WeatherSummary string
	Categories     []string
	Inventory      []string
	PackedItems    []string
}

// SuggestedItem is one parsed suggestion line.
type SuggestedItem struct {
	Name     string  `json:"name"`
	Quantity int     `json:"quantity"`
	Weight   float64 `json:"weight"`
}

// Section groups suggestions under a category heading.
type Section struct {
	Category string          `json:"category"`
	Items    []SuggestedItem `json:"items"`
}

// Recommendation is the parsed model reply plus the raw markdown.
type Recommendation struct {
	Markdown string    `json:"markdown"`
	Sections []Section `json:"sections"`
}

const emptySection = "No specific recommendations for this category."

var (
	headingRe = regexp.MustCompile(`^#{2,4}\s+(.+?)\s*$`)
	itemRe    = regexp.MustCompile(`^[-*]\s+(.+?)(?:\s*\(qty\s*(\d+)(?:\s*,\s*weight\s*([\d.]+)\s*lbs?)?\))?\s*$`)
)

// ParseRecommendation splits a markdown reply into category sections. Lines
// before the first heading, and lines under headings that match none of the
// known categories, land in an "Other" section. Known categories are matched
// case-insensitively.
func ParseRecommendation(markdown string, categories []string) *Recommendation {
	rec := &Recommendation{Markdown: markdown}

	known := make(map[string]string, len(categories))
	for _, c := range categories {
		known[strings.ToLower(c)] = c
	}

	byCategory := make(map[string]*Section)
	order := []string{}
	section := func(name string) *Section {
		if s, ok := byCategory[name]; ok {
			return s
		}
		s := &Section{Category: name}
		byCategory[name] = s
		order = append(order, name)
		return s
	}

	current := "Other"
	for _, line := range strings.Split(markdown, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || line == emptySection {
			continue
		}
		if m := headingRe.FindStringSubmatch(line); m != nil {
			name := strings.TrimSpace(m[1])
			if canonical, ok := known[strings.ToLower(name)]; ok {
				current = canonical
			} else {
				current = "Other"
			}
			section(current)
			continue
		}
		m := itemRe.FindStringSubmatch(line)
		if m == nil {
			continue
		}
		item := SuggestedItem{Name: strings.TrimSpace(m[1]), Quantity: 1}
		if m[2] != "" {
			if q, err := strconv.Atoi(m[2]); err == nil && q > 0 {
				item.Quantity = q
			}
		}
		if m[3] != "" {
			if w, err := strconv.ParseFloat(m[3], 64); err == nil {
				item.Weight = w
			}
		}
		sec := section(current)
		sec.Items = append(sec.Items, item)
	}

	for _, name := range order {
		s := byCategory[name]
		if name == "Other" && len(s.Items) == 0 {
			continue
		}
		rec.Sections = append(rec.Sections, *s)
	}
	return rec
}
