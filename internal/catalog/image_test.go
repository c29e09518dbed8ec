package catalog

import (
	"bytes"
	"context"
	"errors"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/desertthunder/cinedex/internal/shared"
	tu "github.com/desertthunder/cinedex/internal/testing"
)

var pngBytes = append([]byte("\x89PNG\r\n\x1a\n"), bytes.Repeat([]byte{0}, 16)...)

func writePNG(t *testing.T) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "poster.png")
	tu.MustWriteFile(t, path, pngBytes)
	return path
}

func TestEncodeImage(t *testing.T) {
	t.Run("png", func(t *testing.T) {
		dataURL, err := EncodeImage(bytes.NewReader(pngBytes))
		if err != nil {
			t.Fatalf("EncodeImage() error = %v", err)
		}
		if !strings.HasPrefix(dataURL, "data:image/png;base64,") {
			t.Errorf("unexpected data URL prefix: %.40s", dataURL)
		}

		mediaType, data, err := DecodeDataURL(dataURL)
		if err != nil {
			t.Fatalf("DecodeDataURL() error = %v", err)
		}
		if mediaType != "image/png" || !bytes.Equal(data, pngBytes) {
			t.Errorf("decoded %s with %d bytes", mediaType, len(data))
		}
	})

	t.Run("rejects non-images", func(t *testing.T) {
		_, err := EncodeImage(strings.NewReader("just some text"))
		if !errors.Is(err, shared.ErrInvalidImage) {
			t.Errorf("expected ErrInvalidImage, got %v", err)
		}
	})

	t.Run("rejects empty input", func(t *testing.T) {
		if _, err := EncodeImage(strings.NewReader("")); !errors.Is(err, shared.ErrInvalidImage) {
			t.Errorf("expected ErrInvalidImage, got %v", err)
		}
	})

	t.Run("rejects oversized input", func(t *testing.T) {
		big := append(append([]byte{}, pngBytes...), make([]byte, MaxImageBytes)...)
		if _, err := EncodeImage(bytes.NewReader(big)); !errors.Is(err, shared.ErrInvalidImage) {
			t.Errorf("expected ErrInvalidImage, got %v", err)
		}
	})

	t.Run("read failure", func(t *testing.T) {
		if _, err := EncodeImage(&tu.FCloser{}); !errors.Is(err, shared.ErrInvalidImage) {
			t.Errorf("expected ErrInvalidImage, got %v", err)
		}
	})

	t.Run("svg by extension", func(t *testing.T) {
		svg := `<svg xmlns="http://www.w3.org/2000/svg"></svg>`
		dataURL, err := encodeImage(strings.NewReader(svg), "poster.svg")
		if err != nil {
			t.Fatalf("encodeImage() error = %v", err)
		}
		if !strings.HasPrefix(dataURL, "data:image/svg+xml;base64,") {
			t.Errorf("unexpected data URL prefix: %.40s", dataURL)
		}
	})
}

func TestDecodeDataURL(t *testing.T) {
	for _, input := range []string{
		"https://example.com/a.png",
		"data:image/png;base64",
		"data:image/png,rawbytes",
		"data:image/png;base64,@@@",
	} {
		if _, _, err := DecodeDataURL(input); !errors.Is(err, shared.ErrInvalidImage) {
			t.Errorf("DecodeDataURL(%q) expected ErrInvalidImage, got %v", input, err)
		}
	}
}

func TestImageExtension(t *testing.T) {
	for mediaType, want := range map[string]string{
		"image/png":  ".png",
		"image/jpeg": ".jpg",
		"image/gif":  ".gif",
		"x/unknown":  ".img",
	} {
		if got := ImageExtension(mediaType); got != want {
			t.Errorf("ImageExtension(%s) = %s, want %s", mediaType, got, want)
		}
	}
}

func TestPendingImage(t *testing.T) {
	t.Run("LoadImage", func(t *testing.T) {
		p := LoadImage(writePNG(t))

		dataURL, err := p.Wait(context.Background())
		if err != nil {
			t.Fatalf("Wait() error = %v", err)
		}
		if !IsDataURL(dataURL) || !p.Ready() {
			t.Errorf("expected resolved data URL, got %.30s", dataURL)
		}
	})

	t.Run("missing file", func(t *testing.T) {
		p := LoadImage(filepath.Join(t.TempDir(), "nope.png"))
		if _, err := p.Wait(context.Background()); !errors.Is(err, shared.ErrInvalidImage) {
			t.Errorf("expected ErrInvalidImage, got %v", err)
		}
	})

	t.Run("ReadImage", func(t *testing.T) {
		p := ReadImage("poster.png", bytes.NewReader(pngBytes))
		select {
		case <-p.Done():
		case <-time.After(5 * time.Second):
			t.Fatal("decode did not finish")
		}
		if _, err := p.Wait(context.Background()); err != nil {
			t.Errorf("Wait() error = %v", err)
		}
	})

	t.Run("Wait honours context", func(t *testing.T) {
		p := newPendingImage()
		ctx, cancel := context.WithCancel(context.Background())
		cancel()

		if _, err := p.Wait(ctx); !errors.Is(err, context.Canceled) {
			t.Errorf("expected context.Canceled, got %v", err)
		}
		if p.Ready() {
			t.Error("unresolved image should not be ready")
		}
	})
}
