package tools

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"image"
	"image/color"
	"image/png"
	"strings"
	"sync/atomic"
	"testing"

	"github.com/spf13/afero"

	"github.com/Razex4777/ai-image-tools/pkg/genai"
)

type fakeSource struct {
	failFor map[string]bool
	calls   atomic.Int64
}

func (f *fakeSource) GenerateImage(_ context.Context, req genai.ImageRequest) (genai.ImageResult, error) {
	f.calls.Add(1)
	for marker := range f.failFor {
		if strings.Contains(req.Prompt, marker) {
			return genai.ImageResult{}, errors.New("simulated model failure")
		}
	}

	img := image.NewNRGBA(image.Rect(0, 0, 8, 8))
	img.Set(0, 0, color.NRGBA{R: 1, A: 100})
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		return genai.ImageResult{}, err
	}
	return genai.ImageResult{Images: [][]byte{buf.Bytes()}, MIMEs: []string{"image/png"}, Text: "done"}, nil
}

type fakeRemover struct{}

func (fakeRemover) Configured() bool { return false }

func (fakeRemover) Remove(_ context.Context, pngData []byte) ([]byte, error) {
	return pngData, nil
}

func testRegistry(source *fakeSource, fs afero.Fs) *Registry {
	return New(Deps{
		Source:    source,
		Remover:   fakeRemover{},
		Fs:        fs,
		OutputDir: "batch_out",
	})
}

func TestDefaultToolsRegistered(t *testing.T) {
	r := testRegistry(&fakeSource{}, afero.NewMemMapFs())

	want := []string{"nano_banana", "nano_banana_pro", "icon_generator", "batch_icon_generator", "svg_converter"}
	descs := r.Descriptors()
	if len(descs) != len(want) {
		t.Fatalf("expected %d tools, got %d", len(want), len(descs))
	}
	for i, name := range want {
		if descs[i].Name != name {
			t.Fatalf("tool %d: got %s, want %s", i, descs[i].Name, name)
		}
		if len(descs[i].InputSchema) == 0 {
			t.Fatalf("tool %s missing schema", name)
		}
	}
}

func TestGenerateToolSavesPNG(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := testRegistry(&fakeSource{}, fs)

	result, err := r.Call(context.Background(), "nano_banana",
		json.RawMessage(`{"prompt": "a sunset", "save_path": "out/sunset.png"}`))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}

	if _, err := fs.Stat("out/sunset.png"); err != nil {
		t.Fatalf("png output missing: %v", err)
	}
	if !strings.Contains(result, "out/sunset.png") {
		t.Fatalf("summary missing save path: %s", result)
	}
}

func TestGenerateToolSVGWrapper(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := testRegistry(&fakeSource{}, fs)

	_, err := r.Call(context.Background(), "nano_banana",
		json.RawMessage(`{"prompt": "a logo", "save_path": "logo.svg", "output_type": "image_only"}`))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}

	data, err := afero.ReadFile(fs, "logo.svg")
	if err != nil {
		t.Fatalf("svg output missing: %v", err)
	}
	if !strings.Contains(string(data), "data:image/png;base64,") {
		t.Fatal("svg output missing embedded raster")
	}
}

func TestGenerateToolRejectsBadOutputType(t *testing.T) {
	r := testRegistry(&fakeSource{}, afero.NewMemMapFs())

	_, err := r.Call(context.Background(), "nano_banana",
		json.RawMessage(`{"prompt": "x", "output_type": "sideways"}`))
	if err == nil || !strings.Contains(err.Error(), "output_type") {
		t.Fatalf("expected output_type validation error, got %v", err)
	}
}

func TestProToolDefaultsResolution(t *testing.T) {
	source := &fakeSource{}
	r := testRegistry(source, afero.NewMemMapFs())

	result, err := r.Call(context.Background(), "nano_banana_pro",
		json.RawMessage(`{"prompt": "a city", "aspect_ratio": "21:9"}`))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if !strings.Contains(result, "Resolution: 2K") {
		t.Fatalf("pro tool should default to 2K: %s", result)
	}
}

func TestBatchToolEndToEnd(t *testing.T) {
	fs := afero.NewMemMapFs()
	source := &fakeSource{failFor: map[string]bool{"broken": true}}
	r := testRegistry(source, fs)

	result, err := r.Call(context.Background(), "batch_icon_generator",
		json.RawMessage(`{"prompts": ["rocket", "broken", "star"], "style": "minimal", "output_dir": "icons"}`))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}

	if !strings.Contains(result, "2/3 succeeded") {
		t.Fatalf("unexpected batch summary: %s", result)
	}
	for _, path := range []string{"icons/001_rocket.svg", "icons/003_star.svg"} {
		if _, err := fs.Stat(path); err != nil {
			t.Fatalf("expected %s to exist: %v", path, err)
		}
	}
	if _, err := fs.Stat("icons/002_broken.svg"); err == nil {
		t.Fatal("failed job must not leave an output file")
	}
}

func TestBatchToolAdvancedSpecs(t *testing.T) {
	fs := afero.NewMemMapFs()
	r := testRegistry(&fakeSource{}, fs)

	result, err := r.Call(context.Background(), "batch_icon_generator",
		json.RawMessage(`{"icons": [{"prompt": "cat", "style": "kawaii", "sizes": [4]}], "output_dir": "adv"}`))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if !strings.Contains(result, "1/1 succeeded") {
		t.Fatalf("unexpected summary: %s", result)
	}
	if _, err := fs.Stat("adv/001_cat.svg"); err != nil {
		t.Fatalf("expected output file: %v", err)
	}
}

func TestBatchToolValidationErrors(t *testing.T) {
	source := &fakeSource{}
	r := testRegistry(source, afero.NewMemMapFs())

	_, err := r.Call(context.Background(), "batch_icon_generator",
		json.RawMessage(`{"prompts": ["a"], "icons": [{"prompt": "b"}]}`))
	if err == nil {
		t.Fatal("supplying both prompts and icons must fail")
	}
	if got := source.calls.Load(); got != 0 {
		t.Fatalf("no generation may happen on invalid input, got %d calls", got)
	}
}

func TestConvertToolThroughRegistry(t *testing.T) {
	fs := afero.NewMemMapFs()

	img := image.NewNRGBA(image.Rect(0, 0, 2, 2))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("encode fixture: %v", err)
	}
	if err := afero.WriteFile(fs, "pic.png", buf.Bytes(), 0o644); err != nil {
		t.Fatalf("write fixture: %v", err)
	}

	r := testRegistry(&fakeSource{}, fs)
	result, err := r.Call(context.Background(), "svg_converter",
		json.RawMessage(`{"input_path": "pic.png", "output_dir": "svgs"}`))
	if err != nil {
		t.Fatalf("call failed: %v", err)
	}
	if !strings.Contains(result, "1/1 succeeded") {
		t.Fatalf("unexpected summary: %s", result)
	}
	if _, err := fs.Stat("svgs/pic.svg"); err != nil {
		t.Fatalf("expected converted file: %v", err)
	}
}
