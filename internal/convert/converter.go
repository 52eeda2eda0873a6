package convert

import (
	"fmt"
	"strings"

	"github.com/ledongthuc/pdf"

	"github.com/pdf2deck/backend/internal/pptx"
)

// Conversion stage names reported through ProgressFunc.
const (
	StageExtracting = "extracting text"
	StageBuilding   = "building slides"
	StageFinalizing = "writing presentation"
)

// ProgressFunc receives stage progress updates in the 0-100 range.
type ProgressFunc func(stage string, pct float64)

// Converter builds a PowerPoint deck from a PDF: one slide per page, with
// the page's extracted text as editable content.
type Converter struct {
	profile Profile
}

// NewConverter creates a converter with the given profile.
func NewConverter(profile Profile) *Converter {
	return &Converter{profile: profile}
}

// Convert reads pdfPath and writes a deck to outPath, returning the
// number of slides produced. progress may be nil.
func (c *Converter) Convert(pdfPath, outPath string, progress ProgressFunc) (pages int, err error) {
	if progress == nil {
		progress = func(string, float64) {}
	}

	texts, err := c.extractText(pdfPath, progress)
	if err != nil {
		return 0, err
	}
	if len(texts) == 0 {
		return 0, fmt.Errorf("pdf has no pages")
	}
	progress(StageExtracting, 100)

	deck := pptx.NewDeck()
	style := pptx.DefaultStyle()
	style.TitleSizePt = c.profile.TitleFontPt
	style.BodySizePt = c.profile.BodyFontPt
	deck.Style = style

	for i, text := range texts {
		pageNum := i + 1
		slide := pptx.Slide{
			Title: fmt.Sprintf("Page %d - Click to Edit Title", pageNum),
		}
		if len(strings.TrimSpace(text)) < c.profile.MinTextChars {
			slide.Placeholder = true
			slide.Paragraphs = placeholderParagraphs(pageNum)
		} else {
			slide.Paragraphs = splitParagraphs(text)
		}
		deck.AddSlide(slide)
		progress(StageBuilding, float64(pageNum)/float64(len(texts))*100)
	}

	progress(StageFinalizing, 0)
	if err := deck.WriteFile(outPath); err != nil {
		return 0, fmt.Errorf("writing deck: %w", err)
	}
	progress(StageFinalizing, 100)

	return deck.SlideCount(), nil
}

// extractText returns the cleaned plain text of each page, capped at the
// profile's page limit. The PDF reader panics on some malformed inputs,
// so the whole pass runs under a recover.
func (c *Converter) extractText(pdfPath string, progress ProgressFunc) (texts []string, err error) {
	defer func() {
		if r := recover(); r != nil {
			err = fmt.Errorf("pdf reader panicked: %v", r)
		}
	}()

	f, reader, err := pdf.Open(pdfPath)
	if err != nil {
		return nil, fmt.Errorf("opening pdf: %w", err)
	}
	defer f.Close()

	total := reader.NumPage()
	if total > c.profile.MaxPages {
		fmt.Printf("[Convert] PDF has %d pages, limiting to %d\n", total, c.profile.MaxPages)
		total = c.profile.MaxPages
	}

	for i := 1; i <= total; i++ {
		page := reader.Page(i)
		if page.V.IsNull() {
			texts = append(texts, "")
			continue
		}
		text, err := page.GetPlainText(nil)
		if err != nil {
			// A page that resists extraction still gets a slide; the
			// placeholder substitution handles the empty text.
			fmt.Printf("[Convert] Error extracting text from page %d: %v\n", i, err)
			text = ""
		}
		texts = append(texts, cleanText(text))
		progress(StageExtracting, float64(i)/float64(total)*100)
	}
	return texts, nil
}

// cleanText normalizes extracted text: CRLF to LF, blank-line runs
// collapsed, surrounding whitespace trimmed.
func cleanText(text string) string {
	text = strings.ReplaceAll(text, "\r\n", "\n")
	text = strings.ReplaceAll(text, "\r", "\n")
	for strings.Contains(text, "\n\n") {
		text = strings.ReplaceAll(text, "\n\n", "\n")
	}
	return strings.TrimSpace(text)
}

// splitParagraphs breaks cleaned text into non-empty trimmed paragraphs.
func splitParagraphs(text string) []string {
	var out []string
	for _, line := range strings.Split(text, "\n") {
		line = strings.TrimSpace(line)
		if line != "" {
			out = append(out, line)
		}
	}
	return out
}

// placeholderParagraphs is the editable stand-in content for pages that
// yielded too little text.
func placeholderParagraphs(pageNum int) []string {
	return []string{
		fmt.Sprintf("[Edit this text - Content from page %d]", pageNum),
		"Click here to add your content. You can replace this placeholder text with any content you want.",
	}
}
