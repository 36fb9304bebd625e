package tools

import (
	"bytes"
	"context"
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	"github.com/Razex4777/ai-image-tools/pkg/genai"
	"github.com/Razex4777/ai-image-tools/pkg/icon"
	"github.com/Razex4777/ai-image-tools/pkg/svg"
)

var referenceMIMEs = map[string]string{
	".png":  "image/png",
	".jpg":  "image/jpeg",
	".jpeg": "image/jpeg",
	".webp": "image/webp",
}

// generateParams is the shared parameter shape of the text-to-image tools.
type generateParams struct {
	Prompt           string   `json:"prompt"`
	ReferenceImages  []string `json:"reference_images"`
	AspectRatio      string   `json:"aspect_ratio"`
	Resolution       string   `json:"resolution"`
	OutputType       string   `json:"output_type"`
	UseGoogleSearch  bool     `json:"use_google_search"`
	RemoveBackground bool     `json:"remove_background"`
	SavePath         string   `json:"save_path"`
}

// imagePipeline is the straightline text-to-image flow: generate,
// optionally remove the background, save as PNG or SVG wrapper.
type imagePipeline struct {
	source  icon.ImageSource
	remover icon.BackgroundRemover
	fs      afero.Fs
}

func (p *imagePipeline) generate(ctx context.Context, model string, params generateParams) (string, error) {
	if strings.TrimSpace(params.Prompt) == "" {
		return "", errors.New("prompt must not be empty")
	}

	outputType := params.OutputType
	if outputType == "" {
		outputType = "both"
	}
	if outputType != "both" && outputType != "image_only" {
		return "", fmt.Errorf("invalid output_type %q, must be both or image_only", outputType)
	}

	aspectRatio := params.AspectRatio
	if aspectRatio == "" {
		aspectRatio = "1:1"
	}

	references, err := p.loadReferences(params.ReferenceImages)
	if err != nil {
		return "", err
	}

	result, err := p.source.GenerateImage(ctx, genai.ImageRequest{
		Model:           model,
		Prompt:          params.Prompt,
		References:      references,
		AspectRatio:     aspectRatio,
		Resolution:      params.Resolution,
		TextOutput:      outputType == "both",
		UseGoogleSearch: params.UseGoogleSearch,
	})
	if err != nil {
		return "", err
	}

	var notes []string
	images := result.Images
	if params.RemoveBackground {
		if p.remover != nil && p.remover.Configured() {
			for i, data := range images {
				cutout, err := p.remover.Remove(ctx, data)
				if err != nil {
					notes = append(notes, fmt.Sprintf("background removal failed for image %d: %v", i+1, err))
					continue
				}
				images[i] = cutout
			}
		} else {
			notes = append(notes, "background removal skipped: remover not configured")
		}
	}

	saved, err := p.save(images, params.SavePath)
	if err != nil {
		return "", err
	}

	return renderGenerateSummary(model, params, result.Text, images, saved, notes), nil
}

func (p *imagePipeline) loadReferences(paths []string) ([]genai.ReferenceImage, error) {
	refs := make([]genai.ReferenceImage, 0, len(paths))
	for _, path := range paths {
		mime, ok := referenceMIMEs[strings.ToLower(filepath.Ext(path))]
		if !ok {
			return nil, fmt.Errorf("unsupported reference image format: %s", path)
		}
		data, err := afero.ReadFile(p.fs, path)
		if err != nil {
			return nil, fmt.Errorf("read reference image %s: %w", path, err)
		}
		refs = append(refs, genai.ReferenceImage{MIMEType: mime, Data: data})
	}
	return refs, nil
}

func (p *imagePipeline) save(images [][]byte, savePath string) ([]string, error) {
	if savePath == "" {
		return nil, nil
	}

	ext := filepath.Ext(savePath)
	base := strings.TrimSuffix(savePath, ext)
	wantsSVG := strings.EqualFold(ext, ".svg")

	saved := make([]string, 0, len(images))
	for i, data := range images {
		suffix := ""
		if len(images) > 1 {
			suffix = fmt.Sprintf("_%d", i+1)
		}

		if wantsSVG {
			cfg, _, err := image.DecodeConfig(bytes.NewReader(data))
			if err != nil {
				return nil, fmt.Errorf("decode image dimensions: %w", err)
			}
			document := svg.Wrap(svg.MIMEPNG, data, cfg.Width, cfg.Height)
			outPath := base + suffix + ".svg"
			if err := svg.Write(p.fs, outPath, document, false); err != nil {
				return nil, err
			}
			saved = append(saved, outPath)
			continue
		}

		outPath := base + suffix + ".png"
		if err := afero.WriteFile(p.fs, outPath, data, 0o644); err != nil {
			return nil, fmt.Errorf("save image: %w", err)
		}
		saved = append(saved, outPath)
	}
	return saved, nil
}

func renderGenerateSummary(model string, params generateParams, text string, images [][]byte, saved []string, notes []string) string {
	var b strings.Builder
	fmt.Fprintf(&b, "Generated %d image(s) with %s", len(images), model)
	if params.Resolution != "" {
		fmt.Fprintf(&b, "\nResolution: %s", params.Resolution)
	}
	if text != "" {
		fmt.Fprintf(&b, "\nText: %s", text)
	}
	for _, path := range saved {
		fmt.Fprintf(&b, "\nSaved to: %s", path)
	}
	for _, note := range notes {
		fmt.Fprintf(&b, "\nNote: %s", note)
	}
	return b.String()
}
