// Package knowledge holds the fixed Vietnamese knowledge base indexed at startup.
package knowledge

import (
	"fmt"
	"strings"

	"github.com/gcbaptista/space-chatbot/model"
)

// Documents returns a fresh copy of the knowledge base, planets first.
func Documents() []model.Document {
	docs := make([]model.Document, 0, len(planets)+len(programs)+len(concepts))
	for _, p := range planets {
		docs = append(docs, planetDocument(p))
	}
	for _, p := range programs {
		docs = append(docs, programDocument(p))
	}
	for _, c := range concepts {
		docs = append(docs, conceptDocument(c))
	}
	return docs
}

type planetEntry struct {
	id    string
	facts model.PlanetFacts
}

type programEntry struct {
	id    string
	facts model.ProgramFacts
}

type conceptEntry struct {
	id    string
	facts model.ConceptFacts
}

func planetDocument(e planetEntry) model.Document {
	f := e.facts
	text := joinText(
		f.Name, f.EnglishName, f.Description,
		"Đường kính: "+f.Diameter,
		"Khoảng cách đến Mặt Trời: "+f.DistanceFromSun,
		"Chu kỳ quỹ đạo: "+f.OrbitalPeriod,
		"Độ dài ngày: "+f.DayLength,
		"Nhiệt độ: "+f.Temperature,
		fmt.Sprintf("Số vệ tinh: %d", f.Moons),
		strings.Join(f.Facts, ". "),
	)
	facts := f
	return model.Document{
		ID:       e.id,
		Type:     model.DocumentTypePlanet,
		Name:     f.Name,
		Category: model.CategorySolarSystem,
		Text:     text,
		Payload:  &facts,
	}
}

func programDocument(e programEntry) model.Document {
	f := e.facts
	parts := []string{f.Name, f.Description}
	if f.Year > 0 {
		parts = append(parts, fmt.Sprintf("Năm %d", f.Year))
	}
	parts = append(parts, f.Organization, "Việt Nam", strings.Join(f.Achievements, ". "))
	facts := f
	return model.Document{
		ID:       e.id,
		Type:     model.DocumentTypeConcept,
		Name:     f.Name,
		Category: model.CategoryVietnamSpace,
		Text:     joinText(parts...),
		Payload:  &facts,
	}
}

func conceptDocument(e conceptEntry) model.Document {
	f := e.facts
	facts := f
	return model.Document{
		ID:       e.id,
		Type:     model.DocumentTypeConcept,
		Name:     f.Name,
		Category: model.CategoryAstronomy,
		Text:     joinText(f.Name, f.Description, strings.Join(f.Facts, ". ")),
		Payload:  &facts,
	}
}

func joinText(parts ...string) string {
	kept := make([]string, 0, len(parts))
	for _, p := range parts {
		if p = strings.TrimSpace(p); p != "" {
			kept = append(kept, p)
		}
	}
	return strings.Join(kept, ". ")
}
