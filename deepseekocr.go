// Package deepseekocr runs OCR through the DeepSeek-OCR vision model
// and turns grounded transcripts into annotated images.
//
// A grounded transcript embeds detections in a marker sub-language:
//
//	<|ref|>cat<|/ref|><|det|>[[100, 100, 200, 200]]<|/det|>
//
// The service extracts those tags, rescales their [0, 999] grid
// coordinates to the source image's pixel space, and draws one
// labeled, class-colored box per detection onto a copy of the image.
//
// Basic usage:
//
//	package main
//
//	import (
//		"context"
//		"log"
//		"os"
//
//		deepseekocr "github.com/lalanikarim/deepseek-ocr"
//		"github.com/lalanikarim/deepseek-ocr/pkg/ollama"
//	)
//
//	func main() {
//		backend, err := ollama.NewClient("http://localhost:11434")
//		if err != nil {
//			log.Fatal(err)
//		}
//		svc := deepseekocr.New(backend)
//
//		data, err := os.ReadFile("receipt.png")
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		result, err := svc.Run(context.Background(), data, deepseekocr.DefaultOperation)
//		if err != nil {
//			log.Fatal(err)
//		}
//
//		log.Printf("transcript:\n%s", result.Text)
//		if result.Annotated != nil {
//			os.WriteFile("receipt_annotated.png", result.Annotated, 0o644)
//		}
//	}
//
// The package consists of three core components, each a pure function
// over the previous one's output:
//
// 1. Parser (pkg/tagparse): extracts grounding tags from raw text
// 2. Normalizer (pkg/geometry): maps grid coordinates to pixel boxes
// 3. Renderer (pkg/annotate): draws labeled boxes and encodes PNG
//
// pkg/ollama and pkg/llamacpp provide interchangeable model backends
// behind the pkg/client.VisionClient interface; pkg/processing covers
// image decode/encode on either side of the pipeline.
package deepseekocr

import (
	"context"
	"fmt"
	"image"

	"github.com/lalanikarim/deepseek-ocr/pkg/annotate"
	"github.com/lalanikarim/deepseek-ocr/pkg/client"
	"github.com/lalanikarim/deepseek-ocr/pkg/geometry"
	"github.com/lalanikarim/deepseek-ocr/pkg/processing"
	"github.com/lalanikarim/deepseek-ocr/pkg/tagparse"
	"github.com/lalanikarim/deepseek-ocr/pkg/types"
)

// Version of the deepseek-ocr library
const Version = "1.0.0"

// DefaultModel is the Ollama tag of the DeepSeek-OCR model.
const DefaultModel = "deepseek-ocr"

// DefaultOperation asks the model for a grounded OCR pass; the
// grounding prefix is what makes it emit detection tags at all.
const DefaultOperation = "<|grounding|>OCR this image."

// Options configures a Service beyond its defaults.
type Options struct {
	Model       string // model tag, DefaultModel when empty
	SendFormat  string // "jpg" or "png" sent to the backend
	SendMaxDim  int    // long-side cap in px before sending, 0 = original
	SendQuality int    // JPEG quality for the sent image
	StrokeWidth int    // box outline width in px
}

// Service is the OCR round trip: image in, transcript plus annotated
// image out. It is stateless apart from its configuration and safe
// for concurrent use.
type Service struct {
	client    client.VisionClient
	processor *processing.Processor
	renderer  *annotate.Renderer
	opts      Options
}

// New creates a Service with default options over the given backend.
func New(vc client.VisionClient) *Service {
	return NewWithOptions(vc, Options{})
}

// NewWithOptions creates a Service with custom options. Zero-valued
// fields fall back to their defaults.
func NewWithOptions(vc client.VisionClient, opts Options) *Service {
	if opts.Model == "" {
		opts.Model = DefaultModel
	}
	if opts.SendFormat == "" {
		opts.SendFormat = "png"
	}
	if opts.SendQuality == 0 {
		opts.SendQuality = 85
	}
	if opts.StrokeWidth == 0 {
		opts.StrokeWidth = annotate.DefaultStrokeWidth
	}
	return &Service{
		client:    vc,
		processor: processing.NewProcessor(),
		renderer:  annotate.NewRendererWithStroke(opts.StrokeWidth),
		opts:      opts,
	}
}

// Run performs one full OCR pass: decode the image, query the model
// with the given operation, then annotate. An empty operation falls
// back to DefaultOperation. Decode and backend failures are fatal for
// the request and returned as errors.
func (s *Service) Run(ctx context.Context, imageData []byte, operation string) (types.OCRResult, error) {
	if operation == "" {
		operation = DefaultOperation
	}

	img, err := s.processor.DecodeImage(imageData)
	if err != nil {
		return types.OCRResult{}, fmt.Errorf("decode image: %w", err)
	}

	imgB64, err := s.processor.PrepareImageForModel(img, s.opts.SendFormat, s.opts.SendMaxDim, s.opts.SendQuality)
	if err != nil {
		return types.OCRResult{}, fmt.Errorf("prepare image: %w", err)
	}

	text, err := s.client.Query(ctx, s.opts.Model, operation, imgB64)
	if err != nil {
		return types.OCRResult{}, fmt.Errorf("model query: %w", err)
	}

	return s.Annotate(img, text)
}

// Annotate runs the parse, normalize, render pipeline over an already
// obtained transcript. It never calls the model, so callers holding a
// saved transcript can re-annotate without a backend. The transcript
// comes back verbatim in the result; Annotated stays nil when the
// transcript carries no well-formed tags.
func (s *Service) Annotate(img image.Image, rawText string) (types.OCRResult, error) {
	clean, tags := tagparse.Parse(rawText)
	result := types.OCRResult{Text: clean, Detections: tags}
	if len(tags) == 0 {
		return result, nil
	}

	bounds := img.Bounds()
	rects, err := geometry.Normalize(tags, bounds.Dx(), bounds.Dy())
	if err != nil {
		return types.OCRResult{}, err
	}

	annotated, err := s.renderer.Render(img, rects)
	if err != nil {
		return types.OCRResult{}, fmt.Errorf("render annotations: %w", err)
	}
	result.Annotated = annotated
	return result, nil
}

// GetVersion returns the library version
func GetVersion() string {
	return Version
}
