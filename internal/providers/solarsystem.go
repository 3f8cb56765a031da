package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"unicode"

	"github.com/gcbaptista/space-chatbot/internal/tokenizer"
	"github.com/gcbaptista/space-chatbot/internal/typoutil"
	"github.com/gcbaptista/space-chatbot/model"
)

const DefaultSolarSystemURL = "https://api.le-systeme-solaire.net/rest/bodies"

// minTypoLength is the shortest Latin name that may be matched with one typo.
const minTypoLength = 5

// CatalogEntry is a body known to Solar System OpenData.
type CatalogEntry struct {
	ID          string
	DisplayName string
	Aliases     []string // Vietnamese names, matched as phrases
	LatinNames  []string // English/French names, matched with typo tolerance
}

// Catalog lists the bodies the chatbot recognizes by name.
var Catalog = []CatalogEntry{
	{ID: "soleil", DisplayName: "Mặt Trời", Aliases: []string{"mặt trời"}, LatinNames: []string{"sun", "soleil"}},
	{ID: "mercure", DisplayName: "Sao Thủy", Aliases: []string{"sao thủy"}, LatinNames: []string{"mercury", "mercure"}},
	{ID: "venus", DisplayName: "Sao Kim", Aliases: []string{"sao kim", "kim tinh"}, LatinNames: []string{"venus"}},
	{ID: "terre", DisplayName: "Trái Đất", Aliases: []string{"trái đất", "địa cầu"}, LatinNames: []string{"earth", "terre"}},
	{ID: "lune", DisplayName: "Mặt Trăng", Aliases: []string{"mặt trăng"}, LatinNames: []string{"moon", "lune"}},
	{ID: "mars", DisplayName: "Sao Hỏa", Aliases: []string{"sao hỏa", "hỏa tinh"}, LatinNames: []string{"mars"}},
	{ID: "jupiter", DisplayName: "Sao Mộc", Aliases: []string{"sao mộc", "mộc tinh"}, LatinNames: []string{"jupiter"}},
	{ID: "saturne", DisplayName: "Sao Thổ", Aliases: []string{"sao thổ", "thổ tinh"}, LatinNames: []string{"saturn", "saturne"}},
	{ID: "uranus", DisplayName: "Sao Thiên Vương", Aliases: []string{"sao thiên vương"}, LatinNames: []string{"uranus"}},
	{ID: "neptune", DisplayName: "Sao Hải Vương", Aliases: []string{"sao hải vương"}, LatinNames: []string{"neptune"}},
	{ID: "pluton", DisplayName: "Sao Diêm Vương", Aliases: []string{"sao diêm vương"}, LatinNames: []string{"pluto", "pluton"}},
	{ID: "ceres", DisplayName: "Ceres", LatinNames: []string{"ceres"}},
	{ID: "io", DisplayName: "Io", LatinNames: []string{"io"}},
	{ID: "europe", DisplayName: "Europa", LatinNames: []string{"europa"}},
	{ID: "ganymede", DisplayName: "Ganymede", LatinNames: []string{"ganymede"}},
	{ID: "callisto", DisplayName: "Callisto", LatinNames: []string{"callisto"}},
	{ID: "titan", DisplayName: "Titan", LatinNames: []string{"titan"}},
	{ID: "phobos", DisplayName: "Phobos", LatinNames: []string{"phobos"}},
	{ID: "deimos", DisplayName: "Deimos", LatinNames: []string{"deimos"}},
}

// latinIndex maps every Latin name to its catalog entry.
var latinIndex, latinNames = buildLatinIndex(Catalog)

func buildLatinIndex(entries []CatalogEntry) (map[string]CatalogEntry, []string) {
	index := make(map[string]CatalogEntry)
	names := make([]string, 0)
	for _, entry := range entries {
		for _, name := range entry.LatinNames {
			index[name] = entry
			names = append(names, name)
		}
	}
	return index, names
}

// SolarSystem queries Solar System OpenData.
type SolarSystem struct {
	baseURL string
	apiKey  string
	fetcher *Fetcher
}

// NewSolarSystem creates a Solar System OpenData client. The API expects a
// bearer token; apiKey may be empty for mirrors that do not.
func NewSolarSystem(baseURL, apiKey string, fetcher *Fetcher) *SolarSystem {
	if baseURL == "" {
		baseURL = DefaultSolarSystemURL
	}
	return &SolarSystem{baseURL: strings.TrimRight(baseURL, "/"), apiKey: apiKey, fetcher: fetcher}
}

// Recognize finds a catalog body named in query. Vietnamese names must match
// as whole phrases; Latin names of five or more letters may carry one typo.
func (s *SolarSystem) Recognize(query string) (id, displayName string, ok bool) {
	for _, entry := range Catalog {
		for _, alias := range entry.Aliases {
			if tokenizer.ContainsPhrase(query, alias) {
				return entry.ID, entry.DisplayName, true
			}
		}
	}

	for _, word := range latinWords(query) {
		if entry, exact := latinIndex[word]; exact {
			return entry.ID, entry.DisplayName, true
		}
		if len(word) < minTypoLength {
			continue
		}
		if name, _, found := typoutil.Closest(word, latinNames, 1); found && len(name) >= minTypoLength {
			entry := latinIndex[name]
			return entry.ID, entry.DisplayName, true
		}
	}
	return "", "", false
}

// latinWords returns the ASCII words of query, lowercased and folded.
func latinWords(query string) []string {
	folded := tokenizer.Fold(tokenizer.Normalize(query))
	return strings.FieldsFunc(folded, func(r rune) bool {
		return r > unicode.MaxASCII || !unicode.IsLetter(r)
	})
}

type bodyResponse struct {
	ID          string `json:"id"`
	Name        string `json:"name"`
	EnglishName string `json:"englishName"`
	Mass        *struct {
		MassValue    float64 `json:"massValue"`
		MassExponent int     `json:"massExponent"`
	} `json:"mass"`
	Gravity      float64 `json:"gravity"`
	MeanRadius   float64 `json:"meanRadius"`
	AvgTemp      float64 `json:"avgTemp"`
	SideralOrbit float64 `json:"sideralOrbit"`
	Moons        []struct {
		Moon string `json:"moon"`
	} `json:"moons"`
	DiscoveredBy  string `json:"discoveredBy"`
	DiscoveryDate string `json:"discoveryDate"`
}

// Lookup fetches the body with the given catalog id.
func (s *SolarSystem) Lookup(ctx context.Context, id string) (*model.CelestialBody, error) {
	var headers map[string]string
	if s.apiKey != "" {
		headers = map[string]string{"Authorization": "Bearer " + s.apiKey}
	}

	var resp bodyResponse
	if err := s.fetcher.GetJSON(ctx, s.baseURL+"/"+url.PathEscape(id), nil, headers, &resp); err != nil {
		return nil, err
	}

	body := &model.CelestialBody{
		ID:            resp.ID,
		Name:          resp.Name,
		EnglishName:   resp.EnglishName,
		Gravity:       resp.Gravity,
		MeanRadius:    resp.MeanRadius,
		AvgTemp:       resp.AvgTemp,
		SideralOrbit:  resp.SideralOrbit,
		Moons:         len(resp.Moons),
		DiscoveredBy:  resp.DiscoveredBy,
		DiscoveryDate: resp.DiscoveryDate,
	}
	if resp.Mass != nil {
		body.Mass = fmt.Sprintf("%g × 10^%d", resp.Mass.MassValue, resp.Mass.MassExponent)
	}
	return body, nil
}
