// Command ocr-annotate is the one-shot CLI: run grounded OCR over a
// single image (or re-annotate from a saved transcript) and write the
// transcript plus the annotated image to an output directory.
package main

import (
	"context"
	"flag"
	"log"
	"os"
	"path/filepath"
	"strings"

	deepseekocr "github.com/lalanikarim/deepseek-ocr"
	"github.com/lalanikarim/deepseek-ocr/internal/utils"
	"github.com/lalanikarim/deepseek-ocr/pkg/annotate"
	"github.com/lalanikarim/deepseek-ocr/pkg/client"
	"github.com/lalanikarim/deepseek-ocr/pkg/geometry"
	"github.com/lalanikarim/deepseek-ocr/pkg/llamacpp"
	"github.com/lalanikarim/deepseek-ocr/pkg/ollama"
	"github.com/lalanikarim/deepseek-ocr/pkg/processing"
	"github.com/lalanikarim/deepseek-ocr/pkg/tagparse"
)

func main() {
	var in, outDir, model, url, operation, textFile string
	var backend string
	var ext string
	var quality int
	var lossless bool
	var sendFmt string
	var sendSize int
	var sendQ int
	var stroke int

	flag.StringVar(&in, "in", "", "input image path or URL (jpg/png/webp)")
	flag.StringVar(&outDir, "out", "out", "output directory")
	flag.StringVar(&model, "model", deepseekocr.DefaultModel, "model name")
	flag.StringVar(&backend, "backend", "ollama", "backend to use: ollama or llamacpp")
	flag.StringVar(&url, "url", "", "server URL (defaults: ollama=http://localhost:11434, llamacpp=http://localhost:8080)")
	flag.StringVar(&operation, "operation", deepseekocr.DefaultOperation, "operation prompt sent to the model")
	flag.StringVar(&textFile, "text", "", "saved transcript file; skips the model and annotates from it")

	flag.StringVar(&ext, "ext", "png", "output format for the annotated image: jpg|png|webp")
	flag.IntVar(&quality, "quality", 90, "JPEG/WebP output quality (1-100)")
	flag.BoolVar(&lossless, "lossless", false, "WebP output lossless mode")
	flag.IntVar(&stroke, "stroke", annotate.DefaultStrokeWidth, "box outline width in px")

	flag.StringVar(&sendFmt, "sendfmt", "png", "format sent to the model: jpg|png")
	flag.IntVar(&sendSize, "sendsize", 1536, "max long side sent to the model (px), 0=original")
	flag.IntVar(&sendQ, "sendq", 85, "JPEG quality for image sent to the model (1-100)")

	flag.Parse()
	if in == "" {
		log.Fatalf("usage: %s -in input.png|URL [-backend ollama|llamacpp] [-url server_url] [-operation prompt] [-text transcript.txt] [-out outdir] [-ext jpg|png|webp]", filepath.Base(os.Args[0]))
	}
	if err := utils.EnsureDir(outDir); err != nil {
		log.Fatal(err)
	}

	processor := processing.NewProcessor()

	// Load input image (from file or URL)
	img, err := processor.LoadImageSmart(in)
	if err != nil {
		log.Fatal(err)
	}
	bounds := img.Bounds()
	imgW, imgH := bounds.Dx(), bounds.Dy()

	// Obtain the transcript: saved file or a live model query
	var rawText string
	if textFile != "" {
		if !utils.FileExists(textFile) {
			log.Fatalf("transcript file not found: %s", textFile)
		}
		data, err := os.ReadFile(textFile)
		if err != nil {
			log.Fatal(err)
		}
		rawText = string(data)
	} else {
		var visionClient client.VisionClient
		switch backend {
		case "ollama":
			if url == "" {
				url = "http://localhost:11434"
			}
			visionClient, err = ollama.NewClient(url)
			if err != nil {
				log.Fatalf("Failed to create Ollama client: %v", err)
			}
		case "llamacpp":
			if url == "" {
				url = "http://localhost:8080"
			}
			visionClient, err = llamacpp.NewClient(url)
			if err != nil {
				log.Fatalf("Failed to create llama.cpp client: %v", err)
			}
		default:
			log.Fatalf("Unknown backend: %s (use 'ollama' or 'llamacpp')\n", backend)
		}

		imgB64, err := processor.PrepareImageForModel(img, sendFmt, sendSize, sendQ)
		if err != nil {
			log.Fatal(err)
		}
		rawText, err = visionClient.Query(context.Background(), model, operation, imgB64)
		if err != nil {
			log.Fatal(err)
		}
	}

	// Parse grounding tags and resolve them against the image
	clean, tags := tagparse.Parse(rawText)
	log.Printf("transcript: %d bytes, %d grounded tag(s)", len(clean), len(tags))

	textPath := utils.GenerateOutputFilename(in, outDir, "_transcript", "txt")
	if err := os.WriteFile(textPath, []byte(clean), 0o644); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", textPath)

	if len(tags) == 0 {
		log.Printf("no detections, nothing to annotate")
		return
	}

	rects, err := geometry.Normalize(tags, imgW, imgH)
	if err != nil {
		log.Fatal(err)
	}
	for _, r := range rects {
		log.Printf("detection %q at (%d,%d)-(%d,%d)", r.Label, r.X0, r.Y0, r.X1, r.Y1)
	}

	renderer := annotate.NewRendererWithStroke(stroke)
	canvas, err := renderer.RenderImage(img, rects)
	if err != nil {
		log.Fatal(err)
	}

	annotatedPath := utils.GenerateOutputFilename(in, outDir, "_annotated", strings.ToLower(ext))
	if err := processor.SaveImage(canvas, annotatedPath, ext, quality, lossless); err != nil {
		log.Fatal(err)
	}
	log.Printf("wrote %s", annotatedPath)
}
