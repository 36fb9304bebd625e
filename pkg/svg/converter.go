package svg

import (
	"errors"
	"fmt"
	"image"
	"path/filepath"
	"strings"

	"github.com/spf13/afero"

	// Register decoders for the supported input formats.
	_ "image/jpeg"
	_ "image/png"

	_ "golang.org/x/image/webp"
)

// ErrInvalidConvertRequest covers caller-input shape errors.
var ErrInvalidConvertRequest = errors.New("invalid convert request")

var supportedExtensions = map[string]bool{
	".png":  true,
	".jpg":  true,
	".jpeg": true,
	".webp": true,
}

// ConvertRequest selects the files to convert. Exactly one of Input and
// Inputs must be set.
type ConvertRequest struct {
	Input     string
	Inputs    []string
	OutputDir string
	Quality   int
	Compress  bool
}

// Conversion is one file's outcome.
type Conversion struct {
	Input  string
	Output string
	Err    error
}

// Converter turns raster files into SVG/SVGZ wrappers.
type Converter struct {
	fs afero.Fs
}

// NewConverter builds a converter over the given filesystem.
func NewConverter(fs afero.Fs) *Converter {
	if fs == nil {
		fs = afero.NewOsFs()
	}
	return &Converter{fs: fs}
}

// Convert processes the requested files, isolating per-file failures,
// and returns a text summary of the run.
func (c *Converter) Convert(req ConvertRequest) (string, error) {
	files, err := materializeInputs(req)
	if err != nil {
		return "", err
	}

	if req.OutputDir != "" {
		if err := c.fs.MkdirAll(req.OutputDir, 0o755); err != nil {
			return "", fmt.Errorf("create output directory: %w", err)
		}
	}

	results := make([]Conversion, 0, len(files))
	for _, input := range files {
		results = append(results, c.convertOne(input, req))
	}

	return summarize(results, req.OutputDir), nil
}

func materializeInputs(req ConvertRequest) ([]string, error) {
	if req.Input == "" && len(req.Inputs) == 0 {
		return nil, fmt.Errorf("%w: must provide either input_path or input_paths", ErrInvalidConvertRequest)
	}
	if req.Input != "" && len(req.Inputs) > 0 {
		return nil, fmt.Errorf("%w: provide either input_path or input_paths, not both", ErrInvalidConvertRequest)
	}

	files := req.Inputs
	if req.Input != "" {
		files = []string{req.Input}
	}

	for _, f := range files {
		ext := strings.ToLower(filepath.Ext(f))
		if !supportedExtensions[ext] {
			return nil, fmt.Errorf("%w: unsupported format %q for %s (supported: PNG, JPG, JPEG, WebP)", ErrInvalidConvertRequest, ext, f)
		}
	}
	return files, nil
}

func (c *Converter) convertOne(input string, req ConvertRequest) Conversion {
	out := Conversion{Input: input}

	f, err := c.fs.Open(input)
	if err != nil {
		out.Err = fmt.Errorf("open input: %w", err)
		return out
	}
	defer f.Close()

	img, _, err := image.Decode(f)
	if err != nil {
		out.Err = fmt.Errorf("decode image: %w", err)
		return out
	}

	document, err := WrapImage(img, req.Quality)
	if err != nil {
		out.Err = err
		return out
	}

	extension := ".svg"
	if req.Compress {
		extension = ".svgz"
	}
	base := strings.TrimSuffix(filepath.Base(input), filepath.Ext(input))
	dir := req.OutputDir
	if dir == "" {
		dir = filepath.Dir(input)
	}
	out.Output = filepath.Join(dir, base+extension)

	if err := Write(c.fs, out.Output, document, req.Compress); err != nil {
		out.Err = err
		out.Output = ""
		return out
	}
	return out
}

func summarize(results []Conversion, outputDir string) string {
	succeeded := 0
	for _, r := range results {
		if r.Err == nil {
			succeeded++
		}
	}

	var b strings.Builder
	fmt.Fprintf(&b, "SVG conversion complete: %d/%d succeeded\n", succeeded, len(results))
	if outputDir != "" {
		fmt.Fprintf(&b, "Output directory: %s\n", outputDir)
	}
	for _, r := range results {
		if r.Err != nil {
			fmt.Fprintf(&b, "  failed  %s: %v\n", r.Input, r.Err)
			continue
		}
		fmt.Fprintf(&b, "  ok      %s -> %s\n", r.Input, r.Output)
	}
	return b.String()
}
