// Package models defines the structured recipe schema shared by every
// pipeline stage. The types mirror the JSON shape the completion service
// is constrained to emit; optional fields are pointers so that "absent"
// is distinguishable from an empty value.
package models

import (
	"fmt"
	"math"
	"sort"
	"strings"
	"time"
)

// MacroNutrients holds per-serving nutrition values. Percentages are the
// caloric contribution of each macro and are derived from the gram values.
type MacroNutrients struct {
	Calories          int     `json:"calories" validate:"gte=0"`
	ProteinG          float64 `json:"protein_g" validate:"gte=0"`
	CarbsG            float64 `json:"carbs_g" validate:"gte=0"`
	FatG              float64 `json:"fat_g" validate:"gte=0"`
	FiberG            float64 `json:"fiber_g" validate:"gte=0"`
	SugarG            float64 `json:"sugar_g" validate:"gte=0"`
	SaturatedFatG     float64 `json:"saturated_fat_g" validate:"gte=0"`
	ProteinPercentage float64 `json:"protein_percentage" validate:"gte=0"`
	CarbsPercentage   float64 `json:"carbs_percentage" validate:"gte=0"`
	FatPercentage     float64 `json:"fat_percentage" validate:"gte=0"`
}

// Caloric density per gram: protein and carbs 4 kcal, fat 9 kcal.
const (
	kcalPerGramProtein = 4
	kcalPerGramCarbs   = 4
	kcalPerGramFat     = 9
)

// RecomputePercentages rewrites the three percentage fields from the gram
// values. Calling it twice yields the same result.
func (m *MacroNutrients) RecomputePercentages() {
	total := m.ProteinG*kcalPerGramProtein + m.CarbsG*kcalPerGramCarbs + m.FatG*kcalPerGramFat
	if total <= 0 {
		m.ProteinPercentage = 0
		m.CarbsPercentage = 0
		m.FatPercentage = 0
		return
	}
	m.ProteinPercentage = round1(m.ProteinG * kcalPerGramProtein / total * 100)
	m.CarbsPercentage = round1(m.CarbsG * kcalPerGramCarbs / total * 100)
	m.FatPercentage = round1(m.FatG * kcalPerGramFat / total * 100)
}

func round1(v float64) float64 {
	return math.Round(v*10) / 10
}

// ShoppingItem is one grocery line. StoreSection is only used to group
// items when rendering the shopping list.
type ShoppingItem struct {
	Name         string  `json:"name" validate:"required"`
	Amount       float64 `json:"amount" validate:"gt=0"`
	Unit         string  `json:"unit" validate:"required"`
	Category     string  `json:"category" validate:"required"`
	StoreSection string  `json:"store_section" validate:"required"`
}

// Ingredient is a single recipe ingredient. MacroContribution is a sparse
// nutrient-name to grams mapping when the model reports one.
type Ingredient struct {
	Name              string             `json:"name" validate:"required"`
	Amount            float64            `json:"amount" validate:"gt=0"`
	Unit              string             `json:"unit" validate:"required"`
	Notes             *string            `json:"notes"`
	Category          string             `json:"category" validate:"required"`
	MacroContribution map[string]float64 `json:"macro_contribution"`
	ShoppingInfo      *ShoppingItem      `json:"shopping_info"`
}

// CookingStep is one instruction in the recipe. Order is 1-based and the
// sequence across a recipe must be contiguous.
type CookingStep struct {
	Order           int      `json:"order" validate:"gte=1"`
	Instruction     string   `json:"instruction" validate:"required"`
	DurationMinutes *int     `json:"duration_minutes"`
	Temperature     *string  `json:"temperature"`
	Tips            *string  `json:"tips"`
	EquipmentNeeded []string `json:"equipment_needed"`
}

// Recipe is the aggregate record produced by the synthesizer and carried
// by reference through the remaining pipeline stages. ShoppingList and
// ThumbnailURL start empty and are each assigned exactly once by later
// stages; nothing mutates the record after rendering begins.
type Recipe struct {
	Title                 string         `json:"title" validate:"required"`
	Description           string         `json:"description" validate:"required"`
	CuisineType           string         `json:"cuisine_type" validate:"required"`
	Difficulty            string         `json:"difficulty" validate:"required"`
	Servings              int            `json:"servings" validate:"gt=0"`
	PrepTime              int            `json:"prep_time" validate:"gte=0"`
	CookTime              int            `json:"cook_time" validate:"gte=0"`
	TotalTime             int            `json:"total_time" validate:"gte=0"`
	Ingredients           []Ingredient   `json:"ingredients" validate:"min=1,dive"`
	Steps                 []CookingStep  `json:"steps" validate:"min=1,dive"`
	Macros                MacroNutrients `json:"macros"`
	EquipmentNeeded       []string       `json:"equipment_needed"`
	Tags                  []string       `json:"tags"`
	TipsAndTricks         []string       `json:"tips_and_tricks"`
	StorageInstructions   string         `json:"storage_instructions"`
	ReheatingInstructions string         `json:"reheating_instructions"`
	Variations            []string       `json:"variations"`
	CaloriesPerServing    int            `json:"calories_per_serving" validate:"gte=0"`
	CostEstimate          float64        `json:"cost_estimate" validate:"gte=0"`
	ShoppingList          []ShoppingItem `json:"shopping_list"`
	SourceURL             *string        `json:"source_url"`
	VideoTranscription    *string        `json:"video_transcription"`
	ThumbnailURL          *string        `json:"thumbnail_url"`
	CreatedAt             string         `json:"created_at"`
}

// Normalize reconciles fields the model is known to emit inconsistently.
// TotalTime is rewritten to PrepTime+CookTime when they disagree (a model
// artifact, not a user error), and a missing CreatedAt is stamped.
func (r *Recipe) Normalize() {
	if sum := r.PrepTime + r.CookTime; r.TotalTime != sum {
		r.TotalTime = sum
	}
	if r.CreatedAt == "" {
		r.CreatedAt = time.Now().UTC().Format(time.RFC3339)
	}
}

// Slug returns the title normalized for filenames: lowercased, spaces
// replaced with underscores.
func (r *Recipe) Slug() string {
	return strings.ReplaceAll(strings.ToLower(strings.TrimSpace(r.Title)), " ", "_")
}

// MacroSummary is the fixed-format nutrition line rendered on thumbnails.
func (r *Recipe) MacroSummary() string {
	m := r.Macros
	return fmt.Sprintf("%d cal | P:%.1fg (%.0f%%) | C:%.1fg (%.0f%%) | F:%.1fg (%.0f%%)",
		m.Calories,
		m.ProteinG, m.ProteinPercentage,
		m.CarbsG, m.CarbsPercentage,
		m.FatG, m.FatPercentage)
}

// GroupShoppingList buckets the shopping list by store section and returns
// the section names in sorted order so rendered headers are stable.
func (r *Recipe) GroupShoppingList() ([]string, map[string][]ShoppingItem) {
	sections := make(map[string][]ShoppingItem)
	for _, item := range r.ShoppingList {
		sections[item.StoreSection] = append(sections[item.StoreSection], item)
	}
	names := make([]string, 0, len(sections))
	for name := range sections {
		names = append(names, name)
	}
	sort.Strings(names)
	return names, sections
}

// Summary renders the recipe as plain text in the same section order as
// the exported document.
func (r *Recipe) Summary() string {
	var b strings.Builder
	fmt.Fprintf(&b, "%s\n%s\n\n", strings.ToUpper(r.Title), r.Description)

	fmt.Fprintf(&b, "Cuisine: %s | Difficulty: %s | Serves %d\n", r.CuisineType, r.Difficulty, r.Servings)
	fmt.Fprintf(&b, "Prep %d min | Cook %d min | Total %d min\n", r.PrepTime, r.CookTime, r.TotalTime)
	fmt.Fprintf(&b, "%s\n\n", r.MacroSummary())

	b.WriteString("Ingredients:\n")
	for _, ing := range r.Ingredients {
		note := ""
		if ing.Notes != nil && *ing.Notes != "" {
			note = fmt.Sprintf(" (%s)", *ing.Notes)
		}
		fmt.Fprintf(&b, "- %g %s %s%s\n", ing.Amount, ing.Unit, ing.Name, note)
	}

	if len(r.EquipmentNeeded) > 0 {
		b.WriteString("\nEquipment:\n")
		for _, eq := range r.EquipmentNeeded {
			fmt.Fprintf(&b, "- %s\n", eq)
		}
	}

	b.WriteString("\nInstructions:\n")
	for _, step := range r.Steps {
		fmt.Fprintf(&b, "%d. %s%s\n", step.Order, step.Instruction, stepSuffix(step))
		if step.Tips != nil && *step.Tips != "" {
			fmt.Fprintf(&b, "   Tip: %s\n", *step.Tips)
		}
	}

	if len(r.TipsAndTricks) > 0 {
		b.WriteString("\nTips & Tricks:\n")
		for _, tip := range r.TipsAndTricks {
			fmt.Fprintf(&b, "- %s\n", tip)
		}
	}

	fmt.Fprintf(&b, "\nStorage: %s\nReheating: %s\n", r.StorageInstructions, r.ReheatingInstructions)

	if len(r.ShoppingList) > 0 {
		b.WriteString("\nShopping List:\n")
		names, sections := r.GroupShoppingList()
		for _, name := range names {
			fmt.Fprintf(&b, "%s:\n", name)
			for _, item := range sections[name] {
				fmt.Fprintf(&b, "- %g %s %s\n", item.Amount, item.Unit, item.Name)
			}
		}
	}

	return b.String()
}

func stepSuffix(step CookingStep) string {
	var s string
	if step.DurationMinutes != nil {
		s += fmt.Sprintf(" (%d min)", *step.DurationMinutes)
	}
	if step.Temperature != nil && *step.Temperature != "" {
		s += " at " + *step.Temperature
	}
	return s
}
