package model

import (
	"fmt"
	"strings"
)

// DocumentType distinguishes planet records from general concept records.
type DocumentType string

const (
	DocumentTypePlanet  DocumentType = "planet"
	DocumentTypeConcept DocumentType = "concept"
)

// Document categories used by the template generator.
const (
	CategorySolarSystem  = "solar_system"
	CategoryVietnamSpace = "vietnam_space"
	CategoryAstronomy    = "astronomy"
)

// Document is a unit of retrievable knowledge.
// Text is the searchable body, already concatenated from the structured Payload.
// Documents are immutable once the index has been built.
type Document struct {
	ID       string       `json:"id"`
	Type     DocumentType `json:"type"`
	Name     string       `json:"name"`
	Category string       `json:"category,omitempty"`
	Text     string       `json:"text"`
	Payload  any          `json:"payload,omitempty"` // *PlanetFacts, *ProgramFacts or *ConceptFacts
}

// PlanetFacts holds the structured record behind a planet document.
type PlanetFacts struct {
	Name            string   `json:"name"`
	EnglishName     string   `json:"english_name"`
	Description     string   `json:"description"`
	Diameter        string   `json:"diameter"`
	DistanceFromSun string   `json:"distance_from_sun"`
	OrbitalPeriod   string   `json:"orbital_period"`
	DayLength       string   `json:"day_length"`
	Temperature     string   `json:"temperature"`
	Moons           int      `json:"moons"`
	Facts           []string `json:"facts,omitempty"`
}

// ProgramFacts holds the structured record behind a Vietnam space program document.
type ProgramFacts struct {
	Name         string   `json:"name"`
	Description  string   `json:"description"`
	Year         int      `json:"year,omitempty"`
	Organization string   `json:"organization,omitempty"`
	Achievements []string `json:"achievements,omitempty"`
}

// ConceptFacts holds the structured record behind a general astronomy concept.
type ConceptFacts struct {
	Name        string   `json:"name"`
	Description string   `json:"description"`
	Facts       []string `json:"facts,omitempty"`
}

// Description returns the human readable description carried by the payload.
func (d Document) Description() string {
	switch p := d.Payload.(type) {
	case *PlanetFacts:
		return p.Description
	case *ProgramFacts:
		return p.Description
	case *ConceptFacts:
		return p.Description
	}
	return d.Text
}

// ContextRecord is a piece of context gathered for a chat request, either from
// the local index or from an external provider.
type ContextRecord struct {
	Name        string `json:"name"`
	Type        string `json:"type"`
	Source      string `json:"source"`
	Description string `json:"description"`
	ImageURL    string `json:"imageUrl,omitempty"`
	Data        any    `json:"data,omitempty"`
}

// Context sources
const (
	SourceKnowledgeBase = "knowledge_base"
	SourceNASA          = "nasa"
	SourceSolarSystem   = "solar_system_opendata"
	SourceWikipedia     = "wikipedia"
)

// ContextFromDocument converts an indexed document into a context record.
func ContextFromDocument(doc Document) ContextRecord {
	return ContextRecord{
		Name:        doc.Name,
		Type:        string(doc.Type),
		Source:      SourceKnowledgeBase,
		Description: doc.Description(),
		Data:        doc.Payload,
	}
}

// CelestialBody is the structured record returned by the celestial-body provider.
type CelestialBody struct {
	ID            string  `json:"id"`
	Name          string  `json:"name"`
	EnglishName   string  `json:"englishName"`
	Mass          string  `json:"mass"`
	Gravity       float64 `json:"gravity"`
	MeanRadius    float64 `json:"meanRadius"`
	AvgTemp       float64 `json:"avgTemp"`
	SideralOrbit  float64 `json:"sideralOrbit"`
	Moons         int     `json:"moons"`
	DiscoveredBy  string  `json:"discoveredBy,omitempty"`
	DiscoveryDate string  `json:"discoveryDate,omitempty"`
}

// EncyclopediaSummary is the record returned by the encyclopedia provider.
type EncyclopediaSummary struct {
	Title   string `json:"title"`
	Summary string `json:"summary"`
	URL     string `json:"url"`
	Image   string `json:"image,omitempty"`
}

// Context converts the body into a context record. displayName overrides the
// provider's name when the catalog knows a Vietnamese one.
func (b CelestialBody) Context(displayName string) ContextRecord {
	name := displayName
	if name == "" {
		name = b.Name
	}

	parts := make([]string, 0, 7)
	if b.Mass != "" {
		parts = append(parts, fmt.Sprintf("khối lượng %s kg", b.Mass))
	}
	if b.Gravity > 0 {
		parts = append(parts, fmt.Sprintf("trọng lực bề mặt %.2f m/s²", b.Gravity))
	}
	if b.MeanRadius > 0 {
		parts = append(parts, fmt.Sprintf("bán kính trung bình %.0f km", b.MeanRadius))
	}
	if b.AvgTemp > 0 {
		parts = append(parts, fmt.Sprintf("nhiệt độ trung bình %.0f K", b.AvgTemp))
	}
	if b.SideralOrbit > 0 {
		parts = append(parts, fmt.Sprintf("chu kỳ quỹ đạo %.2f ngày", b.SideralOrbit))
	}
	parts = append(parts, fmt.Sprintf("%d vệ tinh tự nhiên", b.Moons))
	if b.DiscoveredBy != "" {
		parts = append(parts, fmt.Sprintf("được phát hiện bởi %s (%s)", b.DiscoveredBy, b.DiscoveryDate))
	}

	return ContextRecord{
		Name:        name,
		Type:        "celestial_body",
		Source:      SourceSolarSystem,
		Description: fmt.Sprintf("Dữ liệu thiên thể %s: %s.", name, strings.Join(parts, ", ")),
		Data:        b,
	}
}

// Context converts the summary into a context record.
func (s EncyclopediaSummary) Context() ContextRecord {
	return ContextRecord{
		Name:        s.Title,
		Type:        "encyclopedia",
		Source:      SourceWikipedia,
		Description: s.Summary,
		ImageURL:    s.Image,
		Data:        s,
	}
}
