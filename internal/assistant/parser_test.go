package assistant

import "testing"

func TestParseRecommendationSections(t *testing.T) {
	markdown := `Here are my suggestions.

### Shelter
- Tent (qty 1, weight 4.5 lbs)
- Ground tarp (qty 1, weight 0.8 lbs)

### Cooking
No specific recommendations for this category.

### Clothing
- Wool socks (qty 3, weight 0.2 lbs)
- Rain jacket
`
	rec := ParseRecommendation(markdown, []string{"Shelter", "Cooking", "Clothing"})

	want := map[string]int{"Shelter": 2, "Cooking": 0, "Clothing": 2}
	if len(rec.Sections) != 3 {
		t.Fatalf("sections = %d, want 3", len(rec.Sections))
	}
	for _, s := range rec.Sections {
		if n, ok := want[s.Category]; !ok || len(s.Items) != n {
			t.Errorf("section %q has %d items, want %d", s.Category, len(s.Items), want[s.Category])
		}
	}

	tent := rec.Sections[0].Items[0]
	if tent.Name != "Tent" || tent.Quantity != 1 || tent.Weight != 4.5 {
		t.Errorf("tent = %+v", tent)
	}
	jacket := rec.Sections[2].Items[1]
	if jacket.Name != "Rain jacket" || jacket.Quantity != 1 || jacket.Weight != 0 {
		t.Errorf("jacket = %+v", jacket)
	}
	if rec.Markdown != markdown {
		t.Error("raw markdown not preserved")
	}
}

func TestParseRecommendationUnknownHeadingFallsToOther(t *testing.T) {
	markdown := `### Gadgets
- Headlamp (qty 1, weight 0.3 lbs)

### Shelter
- Bivy sack (qty 1, weight 1.2 lbs)
`
	rec := ParseRecommendation(markdown, []string{"Shelter"})
	if len(rec.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(rec.Sections))
	}
	if rec.Sections[0].Category != "Other" || rec.Sections[0].Items[0].Name != "Headlamp" {
		t.Errorf("first section = %+v", rec.Sections[0])
	}
	if rec.Sections[1].Category != "Shelter" {
		t.Errorf("second section = %+v", rec.Sections[1])
	}
}

func TestParseRecommendationLeadingItemsLandInOther(t *testing.T) {
	markdown := `- Map (qty 2)
### Navigation
- Compass
`
	rec := ParseRecommendation(markdown, []string{"Navigation"})
	if len(rec.Sections) != 2 {
		t.Fatalf("sections = %d, want 2", len(rec.Sections))
	}
	if rec.Sections[0].Category != "Other" || rec.Sections[0].Items[0].Quantity != 2 {
		t.Errorf("other section = %+v", rec.Sections[0])
	}
}

func TestParseRecommendationCaseInsensitiveHeadings(t *testing.T) {
	rec := ParseRecommendation("### shelter\n- Tent\n", []string{"Shelter"})
	if len(rec.Sections) != 1 || rec.Sections[0].Category != "Shelter" {
		t.Fatalf("sections = %+v", rec.Sections)
	}
}

func TestParseRecommendationEmptyReply(t *testing.T) {
	rec := ParseRecommendation("", []string{"Shelter"})
	if len(rec.Sections) != 0 {
		t.Errorf("sections = %d, want 0", len(rec.Sections))
	}
}
