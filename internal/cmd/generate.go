package cmd

import (
	"bytes"
	"errors"
	"fmt"
	"image"
	"image/jpeg"
	_ "image/png"
	"os"
	"path/filepath"
	"strconv"
	"strings"
	"time"

	"github.com/jedib0t/go-pretty/v6/table"
	"github.com/spf13/cobra"
	"golang.org/x/image/draw"

	"github.com/imagesmith/imagesmith/internal/config"
	"github.com/imagesmith/imagesmith/internal/imagelink"
	"github.com/imagesmith/imagesmith/internal/observability"
)

var generateCmd = &cobra.Command{
	Use:   "generate <prompt>",
	Short: "Generate an image from a prompt",
	Long:  "Generate an image from a text prompt using the configured providers, with the same primary/fallback pipeline the HTTP gateway uses.",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

func init() {
	rootCmd.AddCommand(generateCmd)

	generateCmd.Flags().StringP("model", "m", "", "Model override (defaults to the configured fallback model)")
	generateCmd.Flags().StringP("preset", "s", "", "Style preset slug (see 'imagesmith presets')")
	generateCmd.Flags().StringP("out-dir", "o", ".", "Output directory for the generated image")
	generateCmd.Flags().Bool("thumb", false, "Also write a JPEG thumbnail next to the image")
	generateCmd.Flags().Int("thumb-size", 256, "Max thumbnail dimension (64-1024)")
}

func runGenerate(cmd *cobra.Command, args []string) error {
	prompt := strings.TrimSpace(args[0])
	if prompt == "" {
		return errors.New("prompt is required")
	}
	if len([]rune(prompt)) > 500 {
		return errors.New("prompt must be 500 characters or less")
	}

	model, _ := cmd.Flags().GetString("model")
	presetSlug, _ := cmd.Flags().GetString("preset")
	outDir, _ := cmd.Flags().GetString("out-dir")
	withThumb, _ := cmd.Flags().GetBool("thumb")
	thumbSize, _ := cmd.Flags().GetInt("thumb-size")

	if thumbSize < 64 || thumbSize > 1024 {
		return errors.New("--thumb-size must be between 64 and 1024")
	}

	cfg, err := config.Load()
	if err != nil {
		return fmt.Errorf("loading config: %w", err)
	}

	if presetSlug != "" {
		catalog, err := loadPresetCatalog(cfg.ImageLink.PresetsFile)
		if err != nil {
			return fmt.Errorf("loading presets: %w", err)
		}
		if p, err := catalog.Get(presetSlug); err == nil {
			model, prompt = p.Apply(model, prompt)
		} else {
			observability.CLILogger.Warn("Unknown preset, using raw model and prompt")
		}
	}

	service := imagelink.NewService(cfg.ImageLink, observability.CLILogger)
	if !service.CredentialConfigured() {
		return errors.New("provider API key not configured")
	}

	result, err := service.Generate(cmd.Context(), model, prompt)
	if err != nil {
		return fmt.Errorf("generation failed: %w", err)
	}

	outPath, err := writeImageFile(outDir, result)
	if err != nil {
		return fmt.Errorf("writing image: %w", err)
	}

	thumbPath := ""
	if withThumb {
		thumbPath = strings.TrimSuffix(outPath, filepath.Ext(outPath)) + ".thumbnail.jpg"
		if err := writeThumbnail(result.ImageBytes, thumbPath, thumbSize); err != nil {
			return fmt.Errorf("writing thumbnail: %w", err)
		}
	}

	printGenerateSummary(result, outPath, thumbPath)
	return nil
}

func writeImageFile(outDir string, result *imagelink.Result) (string, error) {
	absOut, err := filepath.Abs(outDir)
	if err != nil {
		absOut = outDir
	}
	if err := os.MkdirAll(absOut, 0o750); err != nil {
		return "", err
	}

	ext := "png"
	if strings.Contains(result.ContentType, "jpeg") || strings.Contains(result.ContentType, "jpg") {
		ext = "jpg"
	} else if strings.Contains(result.ContentType, "webp") {
		ext = "webp"
	}

	name := fmt.Sprintf("imagesmith-%s.%s", result.Timestamp.UTC().Format("20060102-150405"), ext)
	outPath := filepath.Join(absOut, name)
	if err := os.WriteFile(outPath, result.ImageBytes, 0o600); err != nil {
		return "", err
	}
	return outPath, nil
}

// writeThumbnail downscales the image so its longest side is maxSize and
// writes it as JPEG.
func writeThumbnail(data []byte, outPath string, maxSize int) error {
	srcImg, _, err := image.Decode(bytes.NewReader(data))
	if err != nil {
		return err
	}

	bounds := srcImg.Bounds()
	width := bounds.Dx()
	height := bounds.Dy()
	if width <= 0 || height <= 0 {
		return errors.New("invalid image dimensions")
	}

	longest := width
	if height > longest {
		longest = height
	}
	scale := float64(maxSize) / float64(longest)
	if scale > 1 {
		scale = 1
	}
	newW := int(float64(width) * scale)
	newH := int(float64(height) * scale)
	if newW < 1 {
		newW = 1
	}
	if newH < 1 {
		newH = 1
	}

	dst := image.NewRGBA(image.Rect(0, 0, newW, newH))
	draw.ApproxBiLinear.Scale(dst, dst.Bounds(), srcImg, bounds, draw.Over, nil)

	outFile, err := os.Create(outPath)
	if err != nil {
		return err
	}
	defer outFile.Close() // nolint:errcheck

	return jpeg.Encode(outFile, dst, &jpeg.Options{Quality: 80})
}

func printGenerateSummary(result *imagelink.Result, outPath, thumbPath string) {
	t := table.NewWriter()
	t.SetOutputMirror(os.Stdout)
	t.SetStyle(table.StyleRounded)

	t.AppendHeader(table.Row{"Field", "Value"})
	t.AppendRow(table.Row{"Provider", result.Provider})
	t.AppendRow(table.Row{"Model", result.ModelUsed})
	t.AppendRow(table.Row{"Fallback", strconv.FormatBool(result.Fallback)})
	t.AppendRow(table.Row{"Prompt length", result.PromptLength})
	t.AppendRow(table.Row{"Image bytes", len(result.ImageBytes)})
	t.AppendRow(table.Row{"Generated at", result.Timestamp.UTC().Format(time.RFC3339)})
	t.AppendRow(table.Row{"Output", outPath})
	if thumbPath != "" {
		t.AppendRow(table.Row{"Thumbnail", thumbPath})
	}

	t.Render()
}
