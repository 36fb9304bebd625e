package icon

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"testing"

	"github.com/spf13/afero"

	"github.com/Razex4777/ai-image-tools/pkg/genai"
)

type stubSource struct {
	lastRequest genai.ImageRequest
	err         error
}

func (s *stubSource) GenerateImage(_ context.Context, req genai.ImageRequest) (genai.ImageResult, error) {
	s.lastRequest = req
	if s.err != nil {
		return genai.ImageResult{}, s.err
	}

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.Set(0, 0, color.NRGBA{R: 255, A: 200})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return genai.ImageResult{}, err
	}
	return genai.ImageResult{Images: [][]byte{buf.Bytes()}, MIMEs: []string{"image/png"}}, nil
}

type stubRemover struct {
	configured bool
	err        error
	calls      int
}

func (s *stubRemover) Configured() bool { return s.configured }

func (s *stubRemover) Remove(_ context.Context, pngData []byte) ([]byte, error) {
	s.calls++
	if s.err != nil {
		return nil, s.err
	}
	return pngData, nil
}

func TestGenerateSingleIcon(t *testing.T) {
	fs := afero.NewMemMapFs()
	source := &stubSource{}
	remover := &stubRemover{configured: true}
	gen := NewGenerator(source, remover, fs)

	summary, err := gen.Generate(context.Background(), Request{
		Prompt:   "rocket",
		Style:    "minimal",
		SavePath: "icons/rocket.svg",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	if source.lastRequest.AspectRatio != "1:1" {
		t.Fatalf("icons must be square, got %s", source.lastRequest.AspectRatio)
	}
	if !strings.Contains(source.lastRequest.Prompt, "minimalist") {
		t.Fatalf("style preset not applied: %s", source.lastRequest.Prompt)
	}
	if remover.calls != 1 {
		t.Fatalf("expected one removal call, got %d", remover.calls)
	}

	if _, err := fs.Stat("icons/rocket.svg"); err != nil {
		t.Fatalf("output missing: %v", err)
	}
	if !strings.Contains(summary, "icons/rocket.svg") {
		t.Fatalf("summary missing path: %s", summary)
	}
}

func TestGenerateMultipleSizes(t *testing.T) {
	fs := afero.NewMemMapFs()
	gen := NewGenerator(&stubSource{}, &stubRemover{configured: true}, fs)

	_, err := gen.Generate(context.Background(), Request{
		Prompt:   "star",
		Sizes:    []int{4, 8},
		SavePath: "star.svg",
	})
	if err != nil {
		t.Fatalf("generate failed: %v", err)
	}

	for _, path := range []string{"star_4.svg", "star_8.svg"} {
		if _, err := fs.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}
}

func TestGenerateRemovalFailureIsNotFatal(t *testing.T) {
	fs := afero.NewMemMapFs()
	remover := &stubRemover{configured: true, err: errors.New("upstream down")}
	gen := NewGenerator(&stubSource{}, remover, fs)

	summary, err := gen.Generate(context.Background(), Request{Prompt: "heart", SavePath: "heart.svg"})
	if err != nil {
		t.Fatalf("removal failure must not fail the icon: %v", err)
	}
	if !strings.Contains(summary, "background removal skipped") {
		t.Fatalf("summary should note the skipped removal: %s", summary)
	}
	if _, err := fs.Stat("heart.svg"); err != nil {
		t.Fatalf("output missing: %v", err)
	}
}

func TestGenerateValidation(t *testing.T) {
	gen := NewGenerator(&stubSource{}, &stubRemover{}, afero.NewMemMapFs())

	if _, err := gen.Generate(context.Background(), Request{Prompt: "  "}); err == nil {
		t.Fatal("empty prompt must fail")
	}
	if _, err := gen.Generate(context.Background(), Request{Prompt: "x", Sizes: []int{0}}); err == nil {
		t.Fatal("non-positive size must fail")
	}
}

func TestGenerateSourceErrorPropagates(t *testing.T) {
	gen := NewGenerator(&stubSource{err: errors.New("model offline")}, &stubRemover{}, afero.NewMemMapFs())

	_, err := gen.Generate(context.Background(), Request{Prompt: "x"})
	if err == nil || !strings.Contains(err.Error(), "model offline") {
		t.Fatalf("expected source error to surface, got %v", err)
	}
}

func TestEnhancePrompt(t *testing.T) {
	if got := EnhancePrompt("rocket", ""); !strings.Contains(got, "Icon design: rocket") {
		t.Fatalf("basic enhancement missing: %s", got)
	}
	if got := EnhancePrompt("rocket", "kawaii"); !strings.Contains(got, "kawaii cute style") {
		t.Fatalf("preset enhancement missing: %s", got)
	}
	if got := EnhancePrompt("rocket", "custom"); !strings.Contains(got, "sleek and modern rocket icon") {
		t.Fatalf("custom expansion missing: %s", got)
	}
	// Unknown styles fall back to the basic framing.
	if got := EnhancePrompt("rocket", "no-such-style"); !strings.Contains(got, "Icon design: rocket") {
		t.Fatalf("unknown style should fall back: %s", got)
	}
}

func TestStylesIncludesCustom(t *testing.T) {
	names := Styles()
	found := false
	for _, n := range names {
		if n == StyleCustom {
			found = true
		}
	}
	if !found {
		t.Fatal("custom style missing from listing")
	}
	if len(names) < 40 {
		t.Fatalf("expected the full preset table, got %d styles", len(names))
	}
}
