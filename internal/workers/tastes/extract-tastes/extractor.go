// internal/workers/tastes/extract-tastes/extractor.go
package extracttastes

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"

	"culturis/internal/models"
)

const (
	StrategyModel   = "model"
	StrategyKeyword = "keyword"
)

// ErrUnstructured means the model answered with something that is not JSON.
var ErrUnstructured = errors.New("UNSTRUCTURED_MODEL_OUTPUT")

// Extractor pulls taste tags out of a free-text message.
type Extractor interface {
	Name() string
	Extract(ctx context.Context, message string, existing []string, location string) ([]models.TasteTag, error)
}

// Completer is the plain chat completion the model extractor uses.
type Completer interface {
	Complete(ctx context.Context, system, user string, temperature float64, maxTokens int) (string, error)
}

// ==========================
// Model extraction
// ==========================

type ModelExtractor struct {
	model       Completer
	temperature float64
	maxTokens   int
}

func NewModelExtractor(model Completer, temperature float64, maxTokens int) *ModelExtractor {
	return &ModelExtractor{model: model, temperature: temperature, maxTokens: maxTokens}
}

func (m *ModelExtractor) Name() string { return StrategyModel }

func systemPrompt(location string, existing []string) string {
	var b strings.Builder
	b.WriteString("You are a cultural taste extraction AI. Analyze user messages and extract specific cultural interests, activities, and venue types.\n")
	fmt.Fprintf(&b, "Location context: %s\n", location)
	fmt.Fprintf(&b, "Existing tastes: %s\n", strings.Join(existing, ", "))
	b.WriteString("Extract new cultural tastes from the user's message. Return a JSON array of taste objects with this format:\n")
	b.WriteString(`{"id": "unique_id", "name": "Taste Name", "type": "food_beverage|visual_arts|music|general_cultural", "color": "#RRGGBB"}` + "\n")
	b.WriteString("Focus on:\n")
	b.WriteString("- Specific venue types (jazz clubs, art galleries, bookstores, etc.)\n")
	b.WriteString("- Activity preferences (live music, rooftop dining, craft cocktails, etc.)\n")
	b.WriteString("- Cultural interests (contemporary art, vintage shopping, local cuisine, etc.)\n")
	b.WriteString("- Ambiance preferences (intimate, vibrant, quiet, social, etc.)\n")
	b.WriteString("Only extract tastes that are clearly mentioned or strongly implied. Avoid duplicating existing tastes.\n")
	b.WriteString("Return valid JSON only, no explanations.")
	return b.String()
}

// stripFences removes a surrounding ``` or ```json block.
func stripFences(s string) string {
	s = strings.TrimSpace(s)
	if !strings.HasPrefix(s, "```") {
		return s
	}
	s = strings.TrimPrefix(s, "```")
	if nl := strings.IndexByte(s, '\n'); nl >= 0 {
		s = s[nl+1:]
	} else {
		s = ""
	}
	s = strings.TrimSpace(s)
	return strings.TrimSpace(strings.TrimSuffix(s, "```"))
}

// ParseTastes decodes model output. Valid JSON that is not an array yields
// no tastes; array items that are not taste objects are skipped.
func ParseTastes(content string) ([]models.TasteTag, error) {
	body := stripFences(content)
	if !json.Valid([]byte(body)) {
		return nil, ErrUnstructured
	}

	var items []json.RawMessage
	if err := json.Unmarshal([]byte(body), &items); err != nil {
		return []models.TasteTag{}, nil
	}

	tastes := make([]models.TasteTag, 0, len(items))
	for _, item := range items {
		var taste models.TasteTag
		if err := json.Unmarshal(item, &taste); err != nil || taste.Name == "" {
			continue
		}
		tastes = append(tastes, taste)
	}
	return tastes, nil
}

func (m *ModelExtractor) Extract(ctx context.Context, message string, existing []string, location string) ([]models.TasteTag, error) {
	content, err := m.model.Complete(ctx, systemPrompt(location, existing), message, m.temperature, m.maxTokens)
	if err != nil {
		return nil, err
	}
	return ParseTastes(content)
}

// ==========================
// Keyword extraction
// ==========================

type keywordTaste struct {
	keyword string
	taste   models.TasteTag
}

var keywordTastes = []keywordTaste{
	{"jazz", models.TasteTag{ID: "jazz_music", Name: "Jazz Music", Color: "#8E44AD"}},
	{"coffee", models.TasteTag{ID: "specialty_coffee", Name: "Specialty Coffee", Color: "#A0522D"}},
	{"art", models.TasteTag{ID: "contemporary_art", Name: "Contemporary Art", Color: "#2E8B57"}},
	{"gallery", models.TasteTag{ID: "art_galleries", Name: "Art Galleries", Color: "#4682B4"}},
	{"food", models.TasteTag{ID: "gourmet_food", Name: "Gourmet Food", Color: "#CD853F"}},
	{"restaurant", models.TasteTag{ID: "fine_dining", Name: "Fine Dining", Color: "#B22222"}},
	{"music", models.TasteTag{ID: "live_music", Name: "Live Music", Color: "#FF6347"}},
	{"vintage", models.TasteTag{ID: "vintage_shops", Name: "Vintage Shopping", Color: "#DAA520"}},
	{"books", models.TasteTag{ID: "bookstores", Name: "Independent Bookstores", Color: "#483D8B"}},
	{"craft", models.TasteTag{ID: "craft_beer", Name: "Craft Beer", Color: "#D2691E"}},
	{"outdoor", models.TasteTag{ID: "outdoor_activities", Name: "Outdoor Activities", Color: "#228B22"}},
	{"theater", models.TasteTag{ID: "theater", Name: "Theater & Performance", Color: "#8B008B"}},
	{"local", models.TasteTag{ID: "local_culture", Name: "Local Culture", Color: "#556B2F"}},
	{"hidden", models.TasteTag{ID: "hidden_gems", Name: "Hidden Gems", Color: "#708090"}},
	{"rooftop", models.TasteTag{ID: "rooftop_venues", Name: "Rooftop Venues", Color: "#FF69B4"}},
	{"cocktail", models.TasteTag{ID: "craft_cocktails", Name: "Craft Cocktails", Color: "#20B2AA"}},
	{"museum", models.TasteTag{ID: "museums", Name: "Museums", Color: "#9932CC"}},
	{"market", models.TasteTag{ID: "local_markets", Name: "Local Markets", Color: "#32CD32"}},
	{"nightlife", models.TasteTag{ID: "nightlife", Name: "Nightlife", Color: "#FF1493"}},
}

// KeywordExtractor matches fixed keywords as substrings of the message.
type KeywordExtractor struct{}

func (KeywordExtractor) Name() string { return StrategyKeyword }

func (KeywordExtractor) Extract(_ context.Context, message string, _ []string, _ string) ([]models.TasteTag, error) {
	lower := strings.ToLower(message)
	tastes := []models.TasteTag{}
	for _, kt := range keywordTastes {
		if strings.Contains(lower, kt.keyword) {
			tastes = append(tastes, kt.taste)
		}
	}
	return tastes, nil
}
