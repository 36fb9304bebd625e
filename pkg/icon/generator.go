package icon

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"image/png"
	"strings"

	"github.com/spf13/afero"
	xdraw "golang.org/x/image/draw"

	"github.com/Razex4777/ai-image-tools/pkg/genai"
	"github.com/Razex4777/ai-image-tools/pkg/svg"
)

// DefaultSavePath is used when the caller gives no destination.
const DefaultSavePath = "icon_output.svg"

// ImageSource produces raster images from prompts.
type ImageSource interface {
	GenerateImage(ctx context.Context, req genai.ImageRequest) (genai.ImageResult, error)
}

// BackgroundRemover cuts the background out of a PNG.
type BackgroundRemover interface {
	Configured() bool
	Remove(ctx context.Context, pngData []byte) ([]byte, error)
}

// Generator runs the single-icon pipeline: style enhancement, 1:1
// generation, background removal, and per-size SVG wrapping.
type Generator struct {
	source  ImageSource
	remover BackgroundRemover
	fs      afero.Fs
}

// NewGenerator wires the pipeline's collaborators together.
func NewGenerator(source ImageSource, remover BackgroundRemover, fs afero.Fs) *Generator {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Generator{source: source, remover: remover, fs: fs}
}

// Request describes one icon.
type Request struct {
	Prompt   string
	Style    string
	Sizes    []int
	SavePath string
}

// Generate produces the icon files and returns a text summary.
func (g *Generator) Generate(ctx context.Context, req Request) (string, error) {
	if strings.TrimSpace(req.Prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}
	for _, size := range req.Sizes {
		if size <= 0 {
			return "", fmt.Errorf("invalid size %d, sizes must be positive", size)
		}
	}

	enhanced := EnhancePrompt(req.Prompt, req.Style)

	result, err := g.source.GenerateImage(ctx, genai.ImageRequest{
		Model:       genai.ModelFlash,
		Prompt:      enhanced,
		AspectRatio: "1:1",
	})
	if err != nil {
		return "", fmt.Errorf("generate icon image: %w", err)
	}
	pngData := result.Images[0]

	transparent := false
	var removalNote string
	if g.remover != nil && g.remover.Configured() {
		cutout, err := g.remover.Remove(ctx, pngData)
		if err != nil {
			// Keep the opaque render rather than failing the icon.
			removalNote = fmt.Sprintf("background removal skipped: %v", err)
		} else {
			pngData = cutout
			transparent = true
		}
	} else {
		removalNote = "background removal skipped: remover not configured"
	}

	base, err := png.Decode(bytes.NewReader(pngData))
	if err != nil {
		return "", fmt.Errorf("decode generated png: %w", err)
	}
	baseWidth := base.Bounds().Dx()

	sizes := req.Sizes
	if len(sizes) == 0 {
		sizes = []int{baseWidth}
	}

	savePath := req.SavePath
	if savePath == "" {
		savePath = DefaultSavePath
	}
	baseName := strings.TrimSuffix(strings.TrimSuffix(savePath, ".svg"), ".SVG")

	written := make([]string, 0, len(sizes))
	for _, size := range sizes {
		data := pngData
		if size != baseWidth {
			var buf bytes.Buffer
			if err := png.Encode(&buf, scaleSquare(base, size)); err != nil {
				return "", fmt.Errorf("encode resized png: %w", err)
			}
			data = buf.Bytes()
		}

		document := svg.Wrap(svg.MIMEPNG, data, size, size)
		outPath := baseName + ".svg"
		if len(sizes) > 1 {
			outPath = fmt.Sprintf("%s_%d.svg", baseName, size)
		}
		if err := svg.Write(g.fs, outPath, document, false); err != nil {
			return "", fmt.Errorf("save icon: %w", err)
		}
		written = append(written, outPath)
	}

	return buildSummary(req, baseWidth, transparent, removalNote, written), nil
}

func scaleSquare(src image.Image, size int) image.Image {
	dst := image.NewRGBA(image.Rect(0, 0, size, size))
	xdraw.CatmullRom.Scale(dst, dst.Bounds(), src, src.Bounds(), xdraw.Over, nil)
	return dst
}

func buildSummary(req Request, baseWidth int, transparent bool, note string, files []string) string {
	var b strings.Builder
	b.WriteString("Icon generated")
	if req.Style != "" {
		fmt.Fprintf(&b, " (style: %s)", req.Style)
	}
	fmt.Fprintf(&b, "\nBase size: %dx%d", baseWidth, baseWidth)
	if transparent {
		b.WriteString("\nBackground: transparent")
	}
	if note != "" {
		fmt.Fprintf(&b, "\nNote: %s", note)
	}
	if len(files) > 1 {
		fmt.Fprintf(&b, "\nGenerated %d sizes:", len(files))
		for _, f := range files {
			fmt.Fprintf(&b, "\n  %s", f)
		}
	} else {
		fmt.Fprintf(&b, "\nSaved to: %s", files[0])
	}
	return b.String()
}
