package convert

import (
	"os"
	"path/filepath"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestLoadProfile_MissingFileYieldsDefaults(t *testing.T) {
	p, err := LoadProfile(filepath.Join(t.TempDir(), "absent.yaml"))
	require.NoError(t, err)
	assert.Equal(t, DefaultProfile(), p)
}

func TestLoadProfile_PartialOverlay(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxPages: 10\nbodyFontPt: 14\n"), 0644))

	p, err := LoadProfile(path)
	require.NoError(t, err)
	assert.Equal(t, 10, p.MaxPages)
	assert.Equal(t, 14, p.BodyFontPt)
	// Unset fields keep defaults.
	assert.Equal(t, DefaultProfile().TitleFontPt, p.TitleFontPt)
	assert.Equal(t, DefaultProfile().MinTextChars, p.MinTextChars)
}

func TestLoadProfile_InvalidYAML(t *testing.T) {
	path := filepath.Join(t.TempDir(), "profile.yaml")
	require.NoError(t, os.WriteFile(path, []byte("maxPages: [oops"), 0644))

	_, err := LoadProfile(path)
	assert.Error(t, err)
}
