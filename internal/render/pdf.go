package render

import (
	"bytes"
	"fmt"
	"image"
	"log/slog"
	"os"
	"path/filepath"
	"strings"

	"github.com/google/uuid"
	"github.com/jung-kurt/gofpdf"

	"github.com/SquizAI/recipies01/internal/models"
)

// Line styles within a document section.
const (
	styleBody    = ""
	styleHeading = "B"
	styleNote    = "I"
)

// docLine is one typeset line (or wrapped paragraph) of the document.
type docLine struct {
	Text  string
	Style string
	Size  float64
}

// docSection is a heading-delimited block of the document. Sections are
// rendered in slice order; NewPage starts the section on a fresh page.
type docSection struct {
	Heading string
	NewPage bool
	Lines   []docLine
}

// Exporter renders recipes into paginated PDF documents.
type Exporter struct {
	outputDir string
	log       *slog.Logger
}

// NewExporter builds an Exporter writing into outputDir.
func NewExporter(outputDir string, log *slog.Logger) *Exporter {
	return &Exporter{outputDir: outputDir, log: log}
}

// Export renders the document and persists it under a unique name
// derived from the recipe title. Write failure is a hard failure.
func (e *Exporter) Export(recipe *models.Recipe, thumbnailPath string) (string, error) {
	data, err := e.Render(recipe, thumbnailPath)
	if err != nil {
		return "", err
	}

	if err := os.MkdirAll(e.outputDir, 0o755); err != nil {
		return "", fmt.Errorf("create output dir: %w", err)
	}
	path := filepath.Join(e.outputDir, Filename(recipe))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return "", fmt.Errorf("write document: %w", err)
	}

	e.log.Info("document exported", "path", path)
	return path, nil
}

// Filename returns the suggested document filename for a recipe.
func Filename(recipe *models.Recipe) string {
	return fmt.Sprintf("recipe_%s_%s.pdf", Sanitize(recipe.Slug()), uuid.NewString())
}

// Render produces the PDF bytes. A missing or unreadable thumbnail
// degrades to a text-only cover.
func (e *Exporter) Render(recipe *models.Recipe, thumbnailPath string) ([]byte, error) {
	pdf := gofpdf.New("P", "mm", "A4", "")
	pdf.SetAutoPageBreak(true, 15)
	pdf.AddPage()

	if thumbnailPath != "" {
		if err := usableImage(thumbnailPath); err != nil {
			e.log.Warn("thumbnail unreadable, rendering text-only cover", "path", thumbnailPath, "err", err)
		} else {
			pdf.ImageOptions(thumbnailPath, 10, 10, 190, 0, false,
				gofpdf.ImageOptions{ReadDpi: true}, 0, "")
			pdf.SetY(125)
		}
	}

	pdf.SetFont("Helvetica", "B", 24)
	pdf.CellFormat(0, 10, Sanitize(recipe.Title), "", 1, "C", false, 0, "")
	pdf.Ln(3)
	pdf.SetFont("Helvetica", "", 12)
	pdf.MultiCell(0, 6, Sanitize(recipe.Description), "", "L", false)
	pdf.Ln(4)

	for _, section := range buildSections(recipe) {
		if section.NewPage {
			pdf.AddPage()
		}
		if section.Heading != "" {
			pdf.SetFont("Helvetica", "B", 14)
			pdf.CellFormat(0, 9, section.Heading, "", 1, "L", false, 0, "")
		}
		for _, line := range section.Lines {
			size := line.Size
			if size == 0 {
				size = 12
			}
			pdf.SetFont("Helvetica", line.Style, size)
			pdf.MultiCell(0, 6, line.Text, "", "L", false)
		}
		pdf.Ln(4)
	}

	var buf bytes.Buffer
	if err := pdf.Output(&buf); err != nil {
		return nil, fmt.Errorf("render document: %w", err)
	}
	return buf.Bytes(), nil
}

// usableImage reports whether the file exists and decodes as an image
// the document can embed. A corrupt file on disk degrades the cover the
// same way a missing one does.
func usableImage(path string) error {
	f, err := os.Open(path)
	if err != nil {
		return err
	}
	defer f.Close()
	if _, _, err := image.DecodeConfig(f); err != nil {
		return fmt.Errorf("decode %s: %w", filepath.Base(path), err)
	}
	return nil
}

// buildSections lays out the document body in its fixed order. Tips and
// the shopping list are omitted entirely when empty. All text passes
// through Sanitize before layout.
func buildSections(r *models.Recipe) []docSection {
	sections := []docSection{
		metadataSection(r),
		nutritionSection(r),
		ingredientsSection(r),
		equipmentSection(r),
		stepsSection(r),
	}

	if len(r.TipsAndTricks) > 0 {
		tips := docSection{Heading: "Tips & Tricks", NewPage: true}
		for _, tip := range r.TipsAndTricks {
			tips.Lines = append(tips.Lines, docLine{Text: "- " + Sanitize(tip)})
		}
		sections = append(sections, tips)
	}

	sections = append(sections, docSection{
		Heading: "Storage & Reheating",
		Lines: []docLine{
			{Text: "Storage: " + Sanitize(r.StorageInstructions)},
			{Text: "Reheating: " + Sanitize(r.ReheatingInstructions)},
		},
	})

	if len(r.ShoppingList) > 0 {
		sections = append(sections, shoppingSection(r))
	}
	return sections
}

func metadataSection(r *models.Recipe) docSection {
	return docSection{
		Heading: "Recipe Information",
		Lines: []docLine{
			{Text: "Cuisine: " + Sanitize(r.CuisineType)},
			{Text: "Difficulty: " + Sanitize(r.Difficulty)},
			{Text: fmt.Sprintf("Prep Time: %d minutes", r.PrepTime)},
			{Text: fmt.Sprintf("Cook Time: %d minutes", r.CookTime)},
			{Text: fmt.Sprintf("Total Time: %d minutes", r.TotalTime)},
			{Text: fmt.Sprintf("Servings: %d", r.Servings)},
		},
	}
}

func nutritionSection(r *models.Recipe) docSection {
	m := r.Macros
	lines := []docLine{
		{Text: fmt.Sprintf("Calories: %d", m.Calories)},
		{Text: fmt.Sprintf("Protein: %.1fg (%.0f%%)", m.ProteinG, m.ProteinPercentage)},
		{Text: fmt.Sprintf("Carbs: %.1fg (%.0f%%)", m.CarbsG, m.CarbsPercentage)},
		{Text: fmt.Sprintf("Fat: %.1fg (%.0f%%)", m.FatG, m.FatPercentage)},
	}
	if m.FiberG > 0 {
		lines = append(lines, docLine{Text: fmt.Sprintf("Fiber: %.1fg", m.FiberG)})
	}
	if m.SugarG > 0 {
		lines = append(lines, docLine{Text: fmt.Sprintf("Sugar: %.1fg", m.SugarG)})
	}
	return docSection{Heading: "Nutrition (per serving)", Lines: lines}
}

func ingredientsSection(r *models.Recipe) docSection {
	section := docSection{Heading: "Ingredients", NewPage: true}
	for _, ing := range r.Ingredients {
		note := ""
		if ing.Notes != nil && *ing.Notes != "" {
			note = fmt.Sprintf(" (%s)", Sanitize(*ing.Notes))
		}
		section.Lines = append(section.Lines, docLine{
			Text: fmt.Sprintf("- %g %s %s%s", ing.Amount, Sanitize(ing.Unit), Sanitize(ing.Name), note),
		})
	}
	return section
}

func equipmentSection(r *models.Recipe) docSection {
	section := docSection{Heading: "Equipment Needed"}
	for _, item := range r.EquipmentNeeded {
		section.Lines = append(section.Lines, docLine{Text: "- " + Sanitize(item)})
	}
	return section
}

func stepsSection(r *models.Recipe) docSection {
	section := docSection{Heading: "Instructions", NewPage: true}
	for _, step := range r.Steps {
		text := fmt.Sprintf("%d. %s", step.Order, Sanitize(step.Instruction))
		if step.DurationMinutes != nil {
			text += fmt.Sprintf(" (%d min)", *step.DurationMinutes)
		}
		if step.Temperature != nil && *step.Temperature != "" {
			text += " at " + Sanitize(*step.Temperature)
		}
		section.Lines = append(section.Lines, docLine{Text: text})

		if step.Tips != nil && *step.Tips != "" {
			section.Lines = append(section.Lines, docLine{
				Text: "Tip: " + Sanitize(*step.Tips), Style: styleNote, Size: 10,
			})
		}
		if len(step.EquipmentNeeded) > 0 {
			section.Lines = append(section.Lines, docLine{
				Text: "Equipment: " + Sanitize(strings.Join(step.EquipmentNeeded, ", ")), Style: styleNote, Size: 10,
			})
		}
	}
	return section
}

func shoppingSection(r *models.Recipe) docSection {
	section := docSection{Heading: "Shopping List", NewPage: true}
	names, groups := r.GroupShoppingList()
	for _, name := range names {
		section.Lines = append(section.Lines, docLine{Text: Sanitize(name), Style: styleHeading})
		for _, item := range groups[name] {
			section.Lines = append(section.Lines, docLine{
				Text: fmt.Sprintf("- %g %s %s", item.Amount, Sanitize(item.Unit), Sanitize(item.Name)),
			})
		}
	}
	return section
}

// punctReplacer normalizes typographic punctuation the PDF core fonts
// cannot represent.
var punctReplacer = strings.NewReplacer(
	"“", `"`, "”", `"`,
	"‘", "'", "’", "'",
	"…", "...",
	"•", "-",
	"–", "-", "—", "-",
	" ", " ",
)

// Sanitize normalizes typographic punctuation to the restricted charset
// and replaces anything else outside printable ASCII with a placeholder
// so layout never fails on exotic input.
func Sanitize(s string) string {
	s = punctReplacer.Replace(s)
	var b strings.Builder
	b.Grow(len(s))
	for _, r := range s {
		switch {
		case r == '\n' || r == '\t':
			b.WriteRune(r)
		case r >= 32 && r < 127:
			b.WriteRune(r)
		default:
			b.WriteByte('?')
		}
	}
	return b.String()
}
