package render

import (
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/SquizAI/recipies01/internal/models"
)

func exportRecipe() *models.Recipe {
	tip := "Reserve pasta water."
	return &models.Recipe{
		Title:       "Pasta with Tomato Sauce",
		Description: "A quick weeknight pasta.",
		CuisineType: "Italian",
		Difficulty:  "easy",
		Servings:    4,
		PrepTime:    5,
		CookTime:    15,
		TotalTime:   20,
		Ingredients: []models.Ingredient{
			{Name: "spaghetti", Amount: 400, Unit: "g", Category: "pasta"},
		},
		Steps: []models.CookingStep{
			{Order: 1, Instruction: "Boil the pasta.", Tips: &tip, EquipmentNeeded: []string{"pot"}},
			{Order: 2, Instruction: "Combine with sauce."},
		},
		Macros: models.MacroNutrients{
			Calories: 520, ProteinG: 18, CarbsG: 95, FatG: 6, FiberG: 5, SugarG: 9,
			ProteinPercentage: 14, CarbsPercentage: 75, FatPercentage: 11,
		},
		EquipmentNeeded:       []string{"pot", "pan"},
		StorageInstructions:   "Refrigerate up to 3 days.",
		ReheatingInstructions: "Microwave 2 minutes.",
		CaloriesPerServing:    520,
		CostEstimate:          8.5,
	}
}

func sectionHeadings(sections []docSection) []string {
	headings := make([]string, 0, len(sections))
	for _, s := range sections {
		headings = append(headings, s.Heading)
	}
	return headings
}

func TestBuildSectionsFixedOrder(t *testing.T) {
	r := exportRecipe()
	r.TipsAndTricks = []string{"Salt the water generously."}
	r.ShoppingList = []models.ShoppingItem{
		{Name: "spaghetti", Amount: 400, Unit: "g", Category: "pasta", StoreSection: "Pantry"},
	}

	headings := sectionHeadings(buildSections(r))
	assert.Equal(t, []string{
		"Recipe Information",
		"Nutrition (per serving)",
		"Ingredients",
		"Equipment Needed",
		"Instructions",
		"Tips & Tricks",
		"Storage & Reheating",
		"Shopping List",
	}, headings)
}

func TestBuildSectionsOmitsEmptyTipsAndShopping(t *testing.T) {
	headings := sectionHeadings(buildSections(exportRecipe()))
	assert.NotContains(t, headings, "Tips & Tricks")
	assert.NotContains(t, headings, "Shopping List")
}

func TestShoppingSectionGroupsWithStableHeaderOrder(t *testing.T) {
	r := exportRecipe()
	r.ShoppingList = []models.ShoppingItem{
		{Name: "spaghetti", Amount: 400, Unit: "g", Category: "pasta", StoreSection: "Pantry"},
		{Name: "basil", Amount: 1, Unit: "bunch", Category: "herb", StoreSection: "Produce"},
		{Name: "parmesan", Amount: 50, Unit: "g", Category: "cheese", StoreSection: "Dairy"},
	}

	section := shoppingSection(r)

	var headers []string
	for _, line := range section.Lines {
		if line.Style == styleHeading {
			headers = append(headers, line.Text)
		}
	}
	assert.Equal(t, []string{"Dairy", "Pantry", "Produce"}, headers)
}

func TestStepsSectionCarriesInlineTipsAndEquipment(t *testing.T) {
	section := stepsSection(exportRecipe())

	require.Len(t, section.Lines, 4)
	assert.Equal(t, "1. Boil the pasta.", section.Lines[0].Text)
	assert.Equal(t, "Tip: Reserve pasta water.", section.Lines[1].Text)
	assert.Equal(t, styleNote, section.Lines[1].Style)
	assert.Equal(t, "Equipment: pot", section.Lines[2].Text)
	assert.Equal(t, "2. Combine with sauce.", section.Lines[3].Text)
}

func TestSanitizeNormalizesTypographicPunctuation(t *testing.T) {
	in := "“Smart” ‘quotes’, ellipsis… • bullet — dash"
	assert.Equal(t, `"Smart" 'quotes', ellipsis... - bullet - dash`, Sanitize(in))
}

func TestSanitizeReplacesUnrepresentableRunes(t *testing.T) {
	assert.Equal(t, "creme brulee: cr?me br?l?e", Sanitize("creme brulee: crème brûlée"))
}

func TestExportWritesUniquelyNamedFile(t *testing.T) {
	dir := t.TempDir()
	e := NewExporter(dir, slog.Default())

	first, err := e.Export(exportRecipe(), "")
	require.NoError(t, err)
	second, err := e.Export(exportRecipe(), "")
	require.NoError(t, err)

	assert.NotEqual(t, first, second)
	assert.True(t, strings.HasPrefix(filepath.Base(first), "recipe_pasta_with_tomato_sauce_"))

	data, err := os.ReadFile(first)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}

func TestRenderMissingThumbnailDegradesToTextCover(t *testing.T) {
	e := NewExporter(t.TempDir(), slog.Default())

	data, err := e.Render(exportRecipe(), "/no/such/thumbnail.jpg")
	require.NoError(t, err)
	assert.NotEmpty(t, data)
}

func TestRenderCorruptThumbnailDegradesToTextCover(t *testing.T) {
	// The file exists but is not a decodable image; the cover must fall
	// back to text instead of failing the whole render.
	bad := filepath.Join(t.TempDir(), "thumb.jpg")
	require.NoError(t, os.WriteFile(bad, []byte("not an image"), 0o644))

	e := NewExporter(t.TempDir(), slog.Default())
	data, err := e.Render(exportRecipe(), bad)
	require.NoError(t, err)
	assert.True(t, strings.HasPrefix(string(data), "%PDF"))
}
