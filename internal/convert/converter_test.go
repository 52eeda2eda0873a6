package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/pdf2deck/backend/internal/testutil"
)

func TestConvert_EmptyPagesGetPlaceholders(t *testing.T) {
	dir := t.TempDir()
	pdfPath := testutil.WriteMinimalPDF(t, dir, 2)
	outPath := filepath.Join(dir, "out.pptx")

	var stages []string
	conv := NewConverter(DefaultProfile())
	pages, err := conv.Convert(pdfPath, outPath, func(stage string, pct float64) {
		if len(stages) == 0 || stages[len(stages)-1] != stage {
			stages = append(stages, stage)
		}
	})

	require.NoError(t, err)
	assert.Equal(t, 2, pages)
	assert.Equal(t, []string{StageExtracting, StageBuilding, StageFinalizing}, stages)

	stat, err := os.Stat(outPath)
	require.NoError(t, err)
	assert.Greater(t, stat.Size(), int64(0))
}

func TestConvert_PageClamp(t *testing.T) {
	dir := t.TempDir()
	pdfPath := testutil.WriteMinimalPDF(t, dir, 5)
	outPath := filepath.Join(dir, "out.pptx")

	profile := DefaultProfile()
	profile.MaxPages = 3
	conv := NewConverter(profile)

	pages, err := conv.Convert(pdfPath, outPath, nil)
	require.NoError(t, err)
	assert.Equal(t, 3, pages, "conversion should clamp to the page limit")
}

func TestConvert_InvalidPDF(t *testing.T) {
	dir := t.TempDir()
	pdfPath := filepath.Join(dir, "broken.pdf")
	require.NoError(t, os.WriteFile(pdfPath, []byte("not a pdf at all"), 0644))

	conv := NewConverter(DefaultProfile())
	_, err := conv.Convert(pdfPath, filepath.Join(dir, "out.pptx"), nil)
	assert.Error(t, err)
}

func TestConvert_MissingFile(t *testing.T) {
	dir := t.TempDir()
	conv := NewConverter(DefaultProfile())
	_, err := conv.Convert(filepath.Join(dir, "absent.pdf"), filepath.Join(dir, "out.pptx"), nil)
	assert.Error(t, err)
}

func TestCleanText(t *testing.T) {
	tests := []struct {
		name string
		in   string
		want string
	}{
		{"crlf normalized", "a\r\nb", "a\nb"},
		{"blank runs collapsed", "a\n\n\nb", "a\nb"},
		{"trimmed", "  hello  \n", "hello"},
		{"empty", "   ", ""},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			assert.Equal(t, tt.want, cleanText(tt.in))
		})
	}
}

func TestSplitParagraphs(t *testing.T) {
	got := splitParagraphs("first\n  second  \n\nthird")
	assert.Equal(t, []string{"first", "second", "third"}, got)
}

func TestPlaceholderSubstitution(t *testing.T) {
	// Short text falls below the default 20-char threshold.
	assert.Less(t, len("tiny"), DefaultProfile().MinTextChars)

	paras := placeholderParagraphs(4)
	require.Len(t, paras, 2)
	assert.Equal(t, "[Edit this text - Content from page 4]", paras[0])
}
