package printing

import (
	"os"
	"path/filepath"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func TestAssetResolver_Load(t *testing.T) {
	dir := t.TempDir()
	data := writePNG(t, dir, "logo.png")
	require.NoError(t, os.WriteFile(filepath.Join(dir, "sign.JPG"), []byte("jpeg"), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "big.png"), make([]byte, 100), 0o600))
	require.NoError(t, os.WriteFile(filepath.Join(dir, "notes.gif"), []byte("gif"), 0o600))

	r := NewAssetResolver(dir, 64)

	t.Run("png", func(t *testing.T) {
		a, err := r.Load("logo.png")
		require.NoError(t, err)
		assert.Equal(t, "image/png", a.MIME)
		assert.Equal(t, "PNG", a.ImageType())
		assert.Equal(t, data, a.Data)
		assert.True(t, strings.HasPrefix(string(a.DataURL()), "data:image/png;base64,"))
	})

	t.Run("jpeg extension is case insensitive", func(t *testing.T) {
		a, err := r.Load("sign.JPG")
		require.NoError(t, err)
		assert.Equal(t, "image/jpeg", a.MIME)
		assert.Equal(t, "JPG", a.ImageType())
	})

	t.Run("blank placeholders", func(t *testing.T) {
		for _, name := range []string{"", "  ", "blank.png"} {
			a, err := r.Load(name)
			assert.NoError(t, err)
			assert.Nil(t, a)
		}
	})

	tests := []struct {
		name string
		file string
		want error
	}{
		{"missing", "nope.png", ErrAssetNotFound},
		{"too large", "big.png", ErrAssetTooLarge},
		{"unsupported", "notes.gif", ErrAssetUnsupported},
		{"traversal", "../logo.png", ErrAssetInvalidPath},
		{"absolute", "/etc/logo.png", ErrAssetInvalidPath},
	}
	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			_, err := r.Load(tt.file)
			assert.ErrorIs(t, err, tt.want)
		})
	}
}

func TestAssetResolver_LoadImages(t *testing.T) {
	dir := t.TempDir()
	writePNG(t, dir, "logo.png")
	r := NewAssetResolver(dir, 0)

	images, err := r.LoadImages("logo.png", "", "blank.png")
	require.NoError(t, err)
	assert.NotNil(t, images.HeaderLogo)
	assert.Nil(t, images.FooterLogo)
	assert.Nil(t, images.Signature)

	_, err = r.LoadImages("logo.png", "missing.png", "")
	assert.ErrorIs(t, err, ErrAssetNotFound)

	assert.NoError(t, r.Ping())
	assert.Error(t, NewAssetResolver(filepath.Join(dir, "absent"), 0).Ping())
}

func TestAsset_NilDataURL(t *testing.T) {
	var a *Asset
	assert.Empty(t, a.DataURL())
}
