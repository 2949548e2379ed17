package printing

import (
	"encoding/base64"
	"errors"
	"fmt"
	"html/template"
	"os"
	"path/filepath"
	"strings"
)

// Asset errors
var (
	ErrAssetNotFound    = errors.New("asset not found")
	ErrAssetTooLarge    = errors.New("asset too large")
	ErrAssetUnsupported = errors.New("unsupported image format, supported formats: PNG, JPG, JPEG")
	ErrAssetInvalidPath = errors.New("invalid asset path")
)

// DefaultMaxAssetSize is the largest image accepted for embedding
const DefaultMaxAssetSize int64 = 10 << 20

// blankAsset is the placeholder name meaning "no image"
const blankAsset = "blank.png"

// Asset is an image loaded from the assets directory
type Asset struct {
	Name string
	MIME string
	Data []byte
}

// DataURL encodes the asset as a data: URL for inline <img> use
func (a *Asset) DataURL() template.URL {
	if a == nil {
		return ""
	}
	// #nosec G203 -- the payload is base64 and the MIME type is whitelisted
	return template.URL("data:" + a.MIME + ";base64," + base64.StdEncoding.EncodeToString(a.Data))
}

// ImageType returns the gofpdf image type for the asset
func (a *Asset) ImageType() string {
	if a.MIME == "image/png" {
		return "PNG"
	}
	return "JPG"
}

// AssetResolver loads logos and signatures from a single directory
type AssetResolver struct {
	dir     string
	maxSize int64
}

// NewAssetResolver creates a resolver rooted at dir
func NewAssetResolver(dir string, maxSize int64) *AssetResolver {
	if maxSize <= 0 {
		maxSize = DefaultMaxAssetSize
	}
	return &AssetResolver{dir: dir, maxSize: maxSize}
}

// Load reads an asset by file name. An empty name or the blank placeholder
// yields (nil, nil).
func (r *AssetResolver) Load(name string) (*Asset, error) {
	name = strings.TrimSpace(name)
	if name == "" || name == blankAsset {
		return nil, nil
	}
	if filepath.IsAbs(name) || containsDotDot(name) {
		return nil, fmt.Errorf("%w: %s", ErrAssetInvalidPath, name)
	}

	mime, err := mimeFor(name)
	if err != nil {
		return nil, err
	}

	full := filepath.Join(r.dir, filepath.Clean(name))
	info, err := os.Stat(full)
	if err != nil {
		if os.IsNotExist(err) {
			return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
		}
		return nil, fmt.Errorf("stat asset %s: %w", name, err)
	}
	if info.IsDir() {
		return nil, fmt.Errorf("%w: %s", ErrAssetNotFound, name)
	}
	if info.Size() > r.maxSize {
		return nil, fmt.Errorf("%w: %s (%d bytes) exceeds maximum allowed size %d", ErrAssetTooLarge, name, info.Size(), r.maxSize)
	}

	data, err := os.ReadFile(full)
	if err != nil {
		return nil, fmt.Errorf("read asset %s: %w", name, err)
	}
	return &Asset{Name: name, MIME: mime, Data: data}, nil
}

// LoadImages resolves the company header logo, footer logo and signature
func (r *AssetResolver) LoadImages(headerLogo, footerLogo, signature string) (Images, error) {
	var (
		images Images
		err    error
	)
	if images.HeaderLogo, err = r.Load(headerLogo); err != nil {
		return Images{}, err
	}
	if images.FooterLogo, err = r.Load(footerLogo); err != nil {
		return Images{}, err
	}
	if images.Signature, err = r.Load(signature); err != nil {
		return Images{}, err
	}
	return images, nil
}

// Ping checks the assets directory is readable
func (r *AssetResolver) Ping() error {
	f, err := os.Open(r.dir)
	if err != nil {
		return fmt.Errorf("assets directory: %w", err)
	}
	return f.Close()
}

func mimeFor(name string) (string, error) {
	switch strings.ToLower(filepath.Ext(name)) {
	case ".png":
		return "image/png", nil
	case ".jpg", ".jpeg":
		return "image/jpeg", nil
	default:
		return "", fmt.Errorf("%w: %s", ErrAssetUnsupported, name)
	}
}
