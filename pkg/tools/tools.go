// Package tools binds the image tool implementations to the wire-facing
// lookup table used by both invocation surfaces.
package tools

import (
	"context"
	"encoding/json"
	"fmt"

	"github.com/spf13/afero"

	"github.com/Razex4777/ai-image-tools/pkg/batch"
	"github.com/Razex4777/ai-image-tools/pkg/config"
	"github.com/Razex4777/ai-image-tools/pkg/genai"
	"github.com/Razex4777/ai-image-tools/pkg/icon"
	"github.com/Razex4777/ai-image-tools/pkg/removebg"
	"github.com/Razex4777/ai-image-tools/pkg/svg"
)

// Deps are the collaborators behind the tool handlers.
type Deps struct {
	Source    icon.ImageSource
	Remover   icon.BackgroundRemover
	Fs        afero.Fs
	OutputDir string
	// BatchConcurrency caps batch fan-out; zero means unbounded.
	BatchConcurrency int
}

// Default builds the production registry from bridge configuration.
func Default(cfg config.BridgeConfig) *Registry {
	fs := afero.NewOsFs()
	source := genai.NewClient(cfg.GeminiBaseURL, cfg.GeminiAPIKey, cfg.RequestTimeout)
	remover := removebg.NewClient(cfg.UploadURL, cfg.FallbackUpload, cfg.FreepikBaseURL, cfg.FreepikAPIKey, cfg.RequestTimeout)
	return New(Deps{
		Source:           source,
		Remover:          remover,
		Fs:               fs,
		OutputDir:        cfg.OutputDir,
		BatchConcurrency: cfg.BatchConcurrency,
	})
}

// New builds a registry over explicit collaborators.
func New(deps Deps) *Registry {
	if deps.Fs == nil {
		deps.Fs = afero.NewOsFs()
	}
	if deps.OutputDir == "" {
		deps.OutputDir = "batch_icons"
	}

	pipeline := &imagePipeline{source: deps.Source, remover: deps.Remover, fs: deps.Fs}
	iconGen := icon.NewGenerator(deps.Source, deps.Remover, deps.Fs)
	converter := svg.NewConverter(deps.Fs)

	runner := batch.NewRunner(
		batch.GeneratorFunc(func(ctx context.Context, job batch.Job, outputPath string) (string, error) {
			return iconGen.Generate(ctx, icon.Request{
				Prompt:   job.Label,
				Style:    job.Variant,
				Sizes:    job.Sizes,
				SavePath: outputPath + ".svg",
			})
		}),
		batch.WithFs(deps.Fs),
		batch.WithConcurrency(deps.BatchConcurrency),
	)

	r := NewRegistry()
	registerGenerate(r, pipeline)
	registerGeneratePro(r, pipeline)
	registerIcon(r, iconGen)
	registerBatch(r, runner, deps.OutputDir)
	registerConvert(r, converter)
	return r
}

func registerGenerate(r *Registry, pipeline *imagePipeline) {
	r.Register(Tool{
		Name:        "nano_banana",
		Description: "Fast image generation with Gemini 2.5 Flash",
		Schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"prompt": {"type": "string", "description": "Image description"},
				"reference_images": {"type": "array", "items": {"type": "string"}},
				"aspect_ratio": {"type": "string", "enum": ["1:1", "16:9", "9:16", "4:3", "3:4"]},
				"output_type": {"type": "string", "enum": ["both", "image_only"]},
				"remove_background": {"type": "boolean"},
				"save_path": {"type": "string"}
			},
			"required": ["prompt"]
		}`),
		Run: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var params generateParams
			if err := decodeParams(raw, &params); err != nil {
				return "", err
			}
			return pipeline.generate(ctx, genai.ModelFlash, params)
		},
	})
}

func registerGeneratePro(r *Registry, pipeline *imagePipeline) {
	r.Register(Tool{
		Name:        "nano_banana_pro",
		Description: "Professional 4K image generation with Gemini 3 Pro",
		Schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"prompt": {"type": "string"},
				"reference_images": {"type": "array", "items": {"type": "string"}},
				"aspect_ratio": {"type": "string"},
				"resolution": {"type": "string", "enum": ["1K", "2K", "4K"]},
				"output_type": {"type": "string", "enum": ["both", "image_only"]},
				"use_google_search": {"type": "boolean"},
				"remove_background": {"type": "boolean"},
				"save_path": {"type": "string"}
			},
			"required": ["prompt"]
		}`),
		Run: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var params generateParams
			if err := decodeParams(raw, &params); err != nil {
				return "", err
			}
			if params.Resolution == "" {
				params.Resolution = "2K"
			}
			return pipeline.generate(ctx, genai.ModelPro, params)
		},
	})
}

type iconParams struct {
	Prompt   string `json:"prompt"`
	Style    string `json:"style"`
	Sizes    []int  `json:"sizes"`
	SavePath string `json:"save_path"`
}

func registerIcon(r *Registry, gen *icon.Generator) {
	r.Register(Tool{
		Name:        "icon_generator",
		Description: "Generate SVG icons with 40 modern styles",
		Schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"prompt": {"type": "string"},
				"style": {"type": "string"},
				"sizes": {"type": "array", "items": {"type": "integer"}},
				"save_path": {"type": "string"}
			},
			"required": ["prompt"]
		}`),
		Run: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var params iconParams
			if err := decodeParams(raw, &params); err != nil {
				return "", err
			}
			return gen.Generate(ctx, icon.Request{
				Prompt:   params.Prompt,
				Style:    params.Style,
				Sizes:    params.Sizes,
				SavePath: params.SavePath,
			})
		},
	})
}

type iconSpec struct {
	Prompt string `json:"prompt"`
	Style  string `json:"style"`
	Sizes  []int  `json:"sizes"`
}

type batchParams struct {
	Prompts   []string   `json:"prompts"`
	Icons     []iconSpec `json:"icons"`
	Style     string     `json:"style"`
	Sizes     []int      `json:"sizes"`
	OutputDir string     `json:"output_dir"`
}

func registerBatch(r *Registry, runner *batch.Runner, defaultOutputDir string) {
	r.Register(Tool{
		Name:        "batch_icon_generator",
		Description: "Generate multiple icons concurrently",
		Schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"prompts": {"type": "array", "items": {"type": "string"}},
				"icons": {"type": "array", "items": {"type": "object"}},
				"style": {"type": "string"},
				"sizes": {"type": "array", "items": {"type": "integer"}},
				"output_dir": {"type": "string"}
			}
		}`),
		Run: func(ctx context.Context, raw json.RawMessage) (string, error) {
			var params batchParams
			if err := decodeParams(raw, &params); err != nil {
				return "", err
			}

			outputDir := params.OutputDir
			if outputDir == "" {
				outputDir = defaultOutputDir
			}

			req := batch.Request{
				Labels:    params.Prompts,
				Variant:   params.Style,
				Sizes:     params.Sizes,
				OutputDir: outputDir,
			}
			for _, spec := range params.Icons {
				req.Jobs = append(req.Jobs, batch.Job{
					Label:   spec.Prompt,
					Variant: spec.Style,
					Sizes:   spec.Sizes,
				})
			}

			report, err := runner.Run(ctx, req)
			if err != nil {
				return "", err
			}
			return report.Summary(), nil
		},
	})
}

type convertParams struct {
	InputPath  string   `json:"input_path"`
	InputPaths []string `json:"input_paths"`
	OutputDir  string   `json:"output_dir"`
	Quality    int      `json:"quality"`
	Compress   bool     `json:"compress"`
}

func registerConvert(r *Registry, converter *svg.Converter) {
	r.Register(Tool{
		Name:        "svg_converter",
		Description: "Convert images to SVG/SVGZ format",
		Schema: json.RawMessage(`{
			"type": "object",
			"properties": {
				"input_path": {"type": "string"},
				"input_paths": {"type": "array", "items": {"type": "string"}},
				"output_dir": {"type": "string"},
				"quality": {"type": "integer"},
				"compress": {"type": "boolean"}
			}
		}`),
		Run: func(_ context.Context, raw json.RawMessage) (string, error) {
			var params convertParams
			if err := decodeParams(raw, &params); err != nil {
				return "", err
			}
			return converter.Convert(svg.ConvertRequest{
				Input:     params.InputPath,
				Inputs:    params.InputPaths,
				OutputDir: params.OutputDir,
				Quality:   params.Quality,
				Compress:  params.Compress,
			})
		},
	})
}

func decodeParams(raw json.RawMessage, dst any) error {
	if len(raw) == 0 {
		raw = json.RawMessage(`{}`)
	}
	if err := json.Unmarshal(raw, dst); err != nil {
		return fmt.Errorf("decode tool parameters: %w", err)
	}
	return nil
}
