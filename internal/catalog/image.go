package catalog

import (
	"context"
	"encoding/base64"
	"fmt"
	"io"
	"mime"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/charmbracelet/log"
	"github.com/desertthunder/cinedex/internal/models"
	"github.com/desertthunder/cinedex/internal/shared"
)

// MaxImageBytes caps the size of a selected image file.
const MaxImageBytes = 5 << 20

// ImageStore is the local-only image side table.
type ImageStore interface {
	Put(id models.ID, dataURL string) error
	Get(id models.ID) (string, bool, error)
}

// ImageSource tells where a resolved image came from.
type ImageSource int

const (
	ImagePlaceholder ImageSource = iota
	ImageLocal
	ImageRemote
)

func (s ImageSource) String() string {
	switch s {
	case ImageLocal:
		return "local"
	case ImageRemote:
		return "remote"
	default:
		return "placeholder"
	}
}

// ImageRef is the image to show for a record. Value is a data URL for
// [ImageLocal], a URL for [ImageRemote] and empty for [ImagePlaceholder].
type ImageRef struct {
	Source ImageSource
	Value  string
}

// ResolveImage picks the image for m in priority order: the local image stored
// under its id, the server-supplied image, then a placeholder. Lookup errors are
// logged and fall through.
func ResolveImage(store ImageStore, logger *log.Logger, m models.Movie) ImageRef {
	if store != nil && m.ID.Truthy() {
		dataURL, ok, err := store.Get(m.ID)
		switch {
		case err != nil:
			logger.Warn("failed to read local image", "id", m.ID, "error", err)
		case ok && dataURL != "":
			return ImageRef{Source: ImageLocal, Value: dataURL}
		}
	}
	if m.Image != "" {
		return ImageRef{Source: ImageRemote, Value: m.Image}
	}
	return ImageRef{Source: ImagePlaceholder}
}

// EncodeImage reads an image and returns it as a base64 data URL.
// Content that does not sniff as image/* is rejected.
func EncodeImage(r io.Reader) (string, error) {
	return encodeImage(r, "")
}

func encodeImage(r io.Reader, name string) (string, error) {
	data, err := io.ReadAll(io.LimitReader(r, MaxImageBytes+1))
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrInvalidImage, err)
	}
	if len(data) == 0 {
		return "", fmt.Errorf("%w: empty file", shared.ErrInvalidImage)
	}
	if len(data) > MaxImageBytes {
		return "", fmt.Errorf("%w: larger than %d bytes", shared.ErrInvalidImage, MaxImageBytes)
	}

	contentType := http.DetectContentType(data)
	if !strings.HasPrefix(contentType, "image/") && name != "" {
		if byExt := mime.TypeByExtension(strings.ToLower(filepath.Ext(name))); strings.HasPrefix(byExt, "image/") {
			contentType = byExt
		}
	}
	if !strings.HasPrefix(contentType, "image/") {
		return "", fmt.Errorf("%w: unsupported content type %s", shared.ErrInvalidImage, contentType)
	}

	if i := strings.Index(contentType, ";"); i >= 0 {
		contentType = contentType[:i]
	}
	return "data:" + contentType + ";base64," + base64.StdEncoding.EncodeToString(data), nil
}

// DecodeDataURL splits a base64 data URL into its media type and bytes.
func DecodeDataURL(s string) (string, []byte, error) {
	rest, ok := strings.CutPrefix(s, "data:")
	if !ok {
		return "", nil, fmt.Errorf("%w: not a data URL", shared.ErrInvalidImage)
	}

	meta, payload, ok := strings.Cut(rest, ",")
	if !ok {
		return "", nil, fmt.Errorf("%w: missing payload", shared.ErrInvalidImage)
	}

	mediaType, isBase64 := strings.CutSuffix(meta, ";base64")
	if !isBase64 {
		return "", nil, fmt.Errorf("%w: only base64 data URLs are supported", shared.ErrInvalidImage)
	}

	data, err := base64.StdEncoding.DecodeString(payload)
	if err != nil {
		return "", nil, fmt.Errorf("%w: %w", shared.ErrInvalidImage, err)
	}
	return mediaType, data, nil
}

// ImageExtension returns a file extension for a media type, defaulting to ".img".
func ImageExtension(mediaType string) string {
	switch mediaType {
	case "image/jpeg":
		return ".jpg"
	case "image/png":
		return ".png"
	case "image/gif":
		return ".gif"
	case "image/webp":
		return ".webp"
	}
	if exts, err := mime.ExtensionsByType(mediaType); err == nil && len(exts) > 0 {
		return exts[0]
	}
	return ".img"
}

// PendingImage is an image decode that can be awaited.
type PendingImage struct {
	done    chan struct{}
	dataURL string
	err     error
}

func newPendingImage() *PendingImage {
	return &PendingImage{done: make(chan struct{})}
}

func (p *PendingImage) resolve(dataURL string, err error) {
	p.dataURL, p.err = dataURL, err
	close(p.done)
}

// LoadImage starts decoding the file at path in the background.
func LoadImage(path string) *PendingImage {
	p := newPendingImage()
	go func() {
		p.resolve(readImageFile(path))
	}()
	return p
}

// ReadImage starts decoding an already opened image in the background.
func ReadImage(name string, r io.Reader) *PendingImage {
	p := newPendingImage()
	go func() {
		p.resolve(encodeImage(r, name))
	}()
	return p
}

// ResolvedImage wraps an existing data URL as a completed decode.
func ResolvedImage(dataURL string) *PendingImage {
	p := newPendingImage()
	p.resolve(dataURL, nil)
	return p
}

func readImageFile(path string) (string, error) {
	f, err := os.Open(path)
	if err != nil {
		return "", fmt.Errorf("%w: %w", shared.ErrInvalidImage, err)
	}
	defer f.Close()

	return encodeImage(f, path)
}

// Done is closed once decoding has finished.
func (p *PendingImage) Done() <-chan struct{} {
	return p.done
}

// Wait blocks until decoding finishes or ctx is cancelled.
func (p *PendingImage) Wait(ctx context.Context) (string, error) {
	select {
	case <-p.done:
		return p.dataURL, p.err
	case <-ctx.Done():
		return "", ctx.Err()
	}
}

// Ready reports whether decoding has finished.
func (p *PendingImage) Ready() bool {
	select {
	case <-p.done:
		return true
	default:
		return false
	}
}

// IsDataURL reports whether s looks like an inline data URL.
func IsDataURL(s string) bool {
	return strings.HasPrefix(s, "data:")
}
