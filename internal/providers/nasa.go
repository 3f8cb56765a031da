package providers

import (
	"context"
	"fmt"
	"net/url"
	"strings"
	"time"

	"github.com/gcbaptista/space-chatbot/internal/clock"
	"github.com/gcbaptista/space-chatbot/internal/tokenizer"
	"github.com/gcbaptista/space-chatbot/model"
)

const (
	DefaultNASABaseURL   = "https://api.nasa.gov"
	DefaultNASAImagesURL = "https://images-api.nasa.gov"
	DefaultNASAAPIKey    = "DEMO_KEY"

	defaultNASAResults = 3
	descriptionLimit   = 400
)

// AstronomyCategory selects which NASA endpoint answers a query.
type AstronomyCategory string

const (
	CategoryNone         AstronomyCategory = ""
	CategoryAsteroids    AstronomyCategory = "asteroids"
	CategoryMarsImagery  AstronomyCategory = "mars_imagery"
	CategoryDailyImage   AstronomyCategory = "daily_image"
	CategorySpaceWeather AstronomyCategory = "space_weather"
)

// categoryKeywords is checked in order; the first category with a matching phrase wins.
var categoryKeywords = []struct {
	category AstronomyCategory
	phrases  []string
}{
	{CategoryMarsImagery, []string{"ảnh sao hỏa", "hình ảnh sao hỏa", "ảnh chụp sao hỏa", "xe tự hành", "curiosity", "perseverance", "mars rover"}},
	{CategoryAsteroids, []string{"tiểu hành tinh", "thiên thạch", "asteroid", "va chạm trái đất"}},
	{CategoryDailyImage, []string{"ảnh thiên văn", "ảnh hôm nay", "ảnh trong ngày", "hình ảnh vũ trụ", "apod"}},
	{CategorySpaceWeather, []string{"bão mặt trời", "gió mặt trời", "thời tiết không gian", "bão từ", "vết lóa", "solar flare"}},
}

// imageSearchTerms maps Vietnamese subjects to English NASA image library queries.
var imageSearchTerms = []struct {
	phrase string
	term   string
}{
	{"hệ mặt trời", "solar system"},
	{"mặt trời", "sun"},
	{"mặt trăng", "moon"},
	{"trái đất", "earth"},
	{"sao thủy", "mercury"},
	{"sao kim", "venus"},
	{"sao hỏa", "mars"},
	{"sao mộc", "jupiter"},
	{"sao thổ", "saturn"},
	{"sao thiên vương", "uranus"},
	{"sao hải vương", "neptune"},
	{"sao diêm vương", "pluto"},
	{"lỗ đen", "black hole"},
	{"hố đen", "black hole"},
	{"thiên hà", "galaxy"},
	{"sao chổi", "comet"},
	{"tinh vân", "nebula"},
	{"trạm vũ trụ", "international space station"},
	{"phi hành gia", "astronaut"},
}

// DetectCategory returns the NASA category a query asks about, or CategoryNone.
func DetectCategory(query string) AstronomyCategory {
	for _, group := range categoryKeywords {
		for _, phrase := range group.phrases {
			if tokenizer.ContainsPhrase(query, phrase) {
				return group.category
			}
		}
	}
	return CategoryNone
}

// NASAConfig configures the NASA client.
type NASAConfig struct {
	APIKey     string
	BaseURL    string
	ImagesURL  string
	MaxResults int
}

// NASA queries the NASA open APIs.
type NASA struct {
	config  NASAConfig
	fetcher *Fetcher
	clock   clock.Clock
}

// NewNASA creates a NASA client on top of fetcher.
func NewNASA(cfg NASAConfig, fetcher *Fetcher) *NASA {
	if cfg.APIKey == "" {
		cfg.APIKey = DefaultNASAAPIKey
	}
	if cfg.BaseURL == "" {
		cfg.BaseURL = DefaultNASABaseURL
	}
	if cfg.ImagesURL == "" {
		cfg.ImagesURL = DefaultNASAImagesURL
	}
	if cfg.MaxResults <= 0 {
		cfg.MaxResults = defaultNASAResults
	}
	return &NASA{config: cfg, fetcher: fetcher, clock: clock.Real{}}
}

// Enrich routes the query to a category endpoint, or to an image search when
// no category keyword matches.
func (n *NASA) Enrich(ctx context.Context, query string) ([]model.ContextRecord, error) {
	switch DetectCategory(query) {
	case CategoryAsteroids:
		return n.Asteroids(ctx)
	case CategoryMarsImagery:
		return n.MarsPhotos(ctx)
	case CategoryDailyImage:
		return n.PictureOfTheDay(ctx)
	case CategorySpaceWeather:
		return n.SolarFlares(ctx)
	}
	return n.SearchImages(ctx, ImageSearchTerm(query))
}

// ImageSearchTerm translates the subject of a Vietnamese query for the NASA image library.
func ImageSearchTerm(query string) string {
	for _, entry := range imageSearchTerms {
		if tokenizer.ContainsPhrase(query, entry.phrase) {
			return entry.term
		}
	}
	return tokenizer.Fold(tokenizer.Normalize(query))
}

type neoFeedResponse struct {
	NearEarthObjects map[string][]struct {
		Name              string `json:"name"`
		NasaJPLURL        string `json:"nasa_jpl_url"`
		Hazardous         bool   `json:"is_potentially_hazardous_asteroid"`
		EstimatedDiameter struct {
			Kilometers struct {
				Min float64 `json:"estimated_diameter_min"`
				Max float64 `json:"estimated_diameter_max"`
			} `json:"kilometers"`
		} `json:"estimated_diameter"`
		CloseApproachData []struct {
			Date         string `json:"close_approach_date"`
			MissDistance struct {
				Kilometers string `json:"kilometers"`
			} `json:"miss_distance"`
			RelativeVelocity struct {
				KilometersPerHour string `json:"kilometers_per_hour"`
			} `json:"relative_velocity"`
		} `json:"close_approach_data"`
	} `json:"near_earth_objects"`
}

// Asteroids returns today's near-Earth objects from NeoWs.
func (n *NASA) Asteroids(ctx context.Context) ([]model.ContextRecord, error) {
	today := n.clock.Now().UTC().Format("2006-01-02")
	params := url.Values{}
	params.Set("start_date", today)
	params.Set("end_date", today)
	params.Set("api_key", n.config.APIKey)

	var resp neoFeedResponse
	if err := n.fetcher.GetJSON(ctx, n.config.BaseURL+"/neo/rest/v1/feed", params, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]model.ContextRecord, 0, n.config.MaxResults)
	for _, neo := range resp.NearEarthObjects[today] {
		if len(records) >= n.config.MaxResults {
			break
		}
		hazard := "không nguy hiểm"
		if neo.Hazardous {
			hazard = "có khả năng nguy hiểm"
		}
		desc := fmt.Sprintf("Tiểu hành tinh %s, đường kính ước tính %.2f-%.2f km, %s.",
			neo.Name, neo.EstimatedDiameter.Kilometers.Min, neo.EstimatedDiameter.Kilometers.Max, hazard)
		if len(neo.CloseApproachData) > 0 {
			approach := neo.CloseApproachData[0]
			desc += fmt.Sprintf(" Tiếp cận Trái Đất ngày %s ở khoảng cách %s km, vận tốc %s km/h.",
				approach.Date, approach.MissDistance.Kilometers, approach.RelativeVelocity.KilometersPerHour)
		}
		records = append(records, model.ContextRecord{
			Name:        neo.Name,
			Type:        "asteroid",
			Source:      model.SourceNASA,
			Description: desc,
			Data:        map[string]any{"url": neo.NasaJPLURL, "hazardous": neo.Hazardous},
		})
	}
	return records, nil
}

type marsPhotosResponse struct {
	LatestPhotos []struct {
		ID        int    `json:"id"`
		Sol       int    `json:"sol"`
		ImgSrc    string `json:"img_src"`
		EarthDate string `json:"earth_date"`
		Camera    struct {
			FullName string `json:"full_name"`
		} `json:"camera"`
		Rover struct {
			Name string `json:"name"`
		} `json:"rover"`
	} `json:"latest_photos"`
}

// MarsPhotos returns the latest Curiosity rover photos.
func (n *NASA) MarsPhotos(ctx context.Context) ([]model.ContextRecord, error) {
	params := url.Values{}
	params.Set("api_key", n.config.APIKey)

	var resp marsPhotosResponse
	if err := n.fetcher.GetJSON(ctx, n.config.BaseURL+"/mars-photos/api/v1/rovers/curiosity/latest_photos", params, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]model.ContextRecord, 0, n.config.MaxResults)
	for _, photo := range resp.LatestPhotos {
		if len(records) >= n.config.MaxResults {
			break
		}
		records = append(records, model.ContextRecord{
			Name:   fmt.Sprintf("Ảnh sao Hỏa #%d", photo.ID),
			Type:   "mars_photo",
			Source: model.SourceNASA,
			Description: fmt.Sprintf("Ảnh chụp bởi xe tự hành %s bằng camera %s vào ngày %s (sol %d).",
				photo.Rover.Name, photo.Camera.FullName, photo.EarthDate, photo.Sol),
			ImageURL: photo.ImgSrc,
		})
	}
	return records, nil
}

type apodResponse struct {
	Title       string `json:"title"`
	Explanation string `json:"explanation"`
	URL         string `json:"url"`
	HDURL       string `json:"hdurl"`
	MediaType   string `json:"media_type"`
	Date        string `json:"date"`
}

// PictureOfTheDay returns NASA's astronomy picture of the day.
func (n *NASA) PictureOfTheDay(ctx context.Context) ([]model.ContextRecord, error) {
	params := url.Values{}
	params.Set("api_key", n.config.APIKey)

	var resp apodResponse
	if err := n.fetcher.GetJSON(ctx, n.config.BaseURL+"/planetary/apod", params, nil, &resp); err != nil {
		return nil, err
	}
	if resp.Title == "" {
		return []model.ContextRecord{}, nil
	}

	image := resp.URL
	if resp.MediaType != "image" && resp.MediaType != "" {
		image = ""
	}
	return []model.ContextRecord{{
		Name:        resp.Title,
		Type:        "apod",
		Source:      model.SourceNASA,
		Description: fmt.Sprintf("Ảnh thiên văn ngày %s: %s", resp.Date, truncateText(resp.Explanation, descriptionLimit)),
		ImageURL:    image,
		Data:        map[string]any{"hdurl": resp.HDURL, "date": resp.Date},
	}}, nil
}

type solarFlare struct {
	FlareID        string `json:"flrID"`
	BeginTime      string `json:"beginTime"`
	PeakTime       string `json:"peakTime"`
	ClassType      string `json:"classType"`
	SourceLocation string `json:"sourceLocation"`
}

// SolarFlares returns solar flares from DONKI over the last week, newest first.
func (n *NASA) SolarFlares(ctx context.Context) ([]model.ContextRecord, error) {
	now := n.clock.Now().UTC()
	params := url.Values{}
	params.Set("startDate", now.Add(-7*24*time.Hour).Format("2006-01-02"))
	params.Set("endDate", now.Format("2006-01-02"))
	params.Set("api_key", n.config.APIKey)

	var flares []solarFlare
	if err := n.fetcher.GetJSON(ctx, n.config.BaseURL+"/DONKI/FLR", params, nil, &flares); err != nil {
		return nil, err
	}

	records := make([]model.ContextRecord, 0, n.config.MaxResults)
	for i := len(flares) - 1; i >= 0 && len(records) < n.config.MaxResults; i-- {
		flare := flares[i]
		records = append(records, model.ContextRecord{
			Name:   fmt.Sprintf("Vết lóa Mặt Trời %s", flare.ClassType),
			Type:   "solar_flare",
			Source: model.SourceNASA,
			Description: fmt.Sprintf("Vết lóa cấp %s bắt đầu lúc %s, đạt đỉnh lúc %s tại vị trí %s.",
				flare.ClassType, flare.BeginTime, flare.PeakTime, flare.SourceLocation),
			Data: map[string]any{"id": flare.FlareID},
		})
	}
	return records, nil
}

type imageSearchResponse struct {
	Collection struct {
		Items []struct {
			Data []struct {
				Title       string `json:"title"`
				Description string `json:"description"`
				NasaID      string `json:"nasa_id"`
				DateCreated string `json:"date_created"`
			} `json:"data"`
			Links []struct {
				Href string `json:"href"`
				Rel  string `json:"rel"`
			} `json:"links"`
		} `json:"items"`
	} `json:"collection"`
}

// SearchImages searches the NASA image library.
func (n *NASA) SearchImages(ctx context.Context, term string) ([]model.ContextRecord, error) {
	term = strings.TrimSpace(term)
	if term == "" {
		return []model.ContextRecord{}, nil
	}
	params := url.Values{}
	params.Set("q", term)
	params.Set("media_type", "image")

	var resp imageSearchResponse
	if err := n.fetcher.GetJSON(ctx, n.config.ImagesURL+"/search", params, nil, &resp); err != nil {
		return nil, err
	}

	records := make([]model.ContextRecord, 0, n.config.MaxResults)
	for _, item := range resp.Collection.Items {
		if len(records) >= n.config.MaxResults {
			break
		}
		if len(item.Data) == 0 {
			continue
		}
		data := item.Data[0]
		var image string
		for _, link := range item.Links {
			if link.Rel == "preview" || image == "" {
				image = link.Href
			}
		}
		records = append(records, model.ContextRecord{
			Name:        data.Title,
			Type:        "nasa_image",
			Source:      model.SourceNASA,
			Description: truncateText(data.Description, descriptionLimit),
			ImageURL:    image,
			Data:        map[string]any{"nasa_id": data.NasaID, "date_created": data.DateCreated},
		})
	}
	return records, nil
}

func truncateText(text string, max int) string {
	runes := []rune(strings.TrimSpace(text))
	if len(runes) <= max {
		return string(runes)
	}
	return string(runes[:max]) + "..."
}
