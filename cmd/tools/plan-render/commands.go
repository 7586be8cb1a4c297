package main

import (
	"context"
	"encoding/json"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"

	"unipath-planner/internal/common/config"
	"unipath-planner/internal/common/logger"
	"unipath-planner/internal/export/pdf"
	"unipath-planner/internal/export/slides"
	"unipath-planner/internal/generator"
	"unipath-planner/internal/models"
	"unipath-planner/internal/plan"
	"unipath-planner/internal/pptx"
	"unipath-planner/internal/render/markdown"
	"unipath-planner/internal/render/screen"
	"unipath-planner/internal/report"
)

var (
	profilePath string
	format      string
	outPath     string
	raw         bool
	width       int
	chromeBin   string
	showChrome  bool
)

var validateCmd = &cobra.Command{
	Use:   "validate [plan.json...]",
	Short: "Check model replies against the plan shape",
	Args:  cobra.MinimumNArgs(1),
	RunE:  runValidate,
}

var renderCmd = &cobra.Command{
	Use:   "render <plan.json>",
	Short: "Render a plan as markdown, html, pdf or pptx",
	Args:  cobra.ExactArgs(1),
	RunE:  runRender,
}

var brochureCmd = &cobra.Command{
	Use:   "brochure <sunrise|harvest>",
	Short: "Write the brochure deck of a product",
	Args:  cobra.ExactArgs(1),
	RunE:  runBrochure,
}

var inspectCmd = &cobra.Command{
	Use:   "inspect <deck.pptx>",
	Short: "List the text of every slide",
	Args:  cobra.ExactArgs(1),
	RunE:  runInspect,
}

var generateCmd = &cobra.Command{
	Use:   "generate",
	Short: "Request a plan for a profile using the configured backend",
	Args:  cobra.NoArgs,
	RunE:  runGenerate,
}

func init() {
	renderCmd.Flags().StringVarP(&profilePath, "profile", "p", "", "profile JSON file")
	renderCmd.Flags().StringVarP(&format, "format", "f", "md", "md, html, pdf or pptx")
	renderCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file (default: stdout for md/html, download name otherwise)")
	renderCmd.Flags().BoolVar(&raw, "raw", false, "print markdown without terminal styling")
	renderCmd.Flags().IntVar(&width, "width", 100, "terminal width for styled markdown")
	renderCmd.Flags().StringVar(&chromeBin, "chrome", os.Getenv("CHROME_BIN"), "Chrome binary for pdf output")

	brochureCmd.Flags().StringVarP(&outPath, "out", "o", "", "output file")

	inspectCmd.Flags().BoolVar(&showChrome, "chrome", false, "also list decoration text")

	generateCmd.Flags().StringVarP(&profilePath, "profile", "p", "", "profile JSON file")
	generateCmd.Flags().StringVarP(&outPath, "out", "o", "", "write the plan JSON here instead of stdout")
	_ = generateCmd.MarkFlagRequired("profile")
}

func runValidate(cmd *cobra.Command, args []string) error {
	failed := 0
	for _, path := range args {
		data, err := os.ReadFile(path)
		if err != nil {
			return err
		}
		obj, err := generator.DecodeObject(string(data))
		if err == nil {
			err = plan.Validate(obj)
		}
		if err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "FAIL %s: %v\n", path, err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "ok   %s\n", path)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d plans invalid", failed, len(args))
	}
	return nil
}

func runRender(cmd *cobra.Command, args []string) error {
	doc, err := loadDocument(args[0], profilePath)
	if err != nil {
		return err
	}
	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	log := logger.NewNoOpLogger()

	switch strings.ToLower(format) {
	case "md", "markdown":
		md := markdown.Render(doc)
		if !raw && outPath == "" {
			if md, err = markdown.Terminal(md, width); err != nil {
				return err
			}
		}
		return writeOut(cmd, outPath, []byte(md))
	case "html":
		var b strings.Builder
		if err := screen.MustNew().Report(&b, doc, screen.Links{}); err != nil {
			return err
		}
		return writeOut(cmd, outPath, []byte(b.String()))
	case "pdf":
		printer := pdf.NewRodPrinter(chromeBin, "")
		defer printer.Close()
		data, err := pdf.NewExporter(screen.MustNew(), printer, time.Minute, log).Export(ctx, doc)
		if err != nil {
			return err
		}
		return writeFile(cmd, orDefault(outPath, pdf.FileName(doc.StudentName)), data)
	case "pptx":
		data, err := slides.NewExporter(log).Export(ctx, doc)
		if err != nil {
			return err
		}
		return writeFile(cmd, orDefault(outPath, slides.FileName(doc.StudentName)), data)
	default:
		return fmt.Errorf("unknown format %q", format)
	}
}

func runBrochure(cmd *cobra.Command, args []string) error {
	catalog := models.DefaultCatalog()
	product, err := catalog.Find(args[0])
	if err != nil {
		return err
	}
	deck := slides.Brochure(product, catalog.Contact)
	data, err := deck.Bytes()
	if err != nil {
		return err
	}
	return writeFile(cmd, orDefault(outPath, slides.BrochureFileName(product)), data)
}

func runInspect(cmd *cobra.Command, args []string) error {
	data, err := os.ReadFile(args[0])
	if err != nil {
		return err
	}
	deck, err := pptx.ExtractBytes(data)
	if err != nil {
		return err
	}
	w := cmd.OutOrStdout()
	for _, s := range deck {
		fmt.Fprintf(w, "--- slide %d ---\n", s.Number)
		for _, line := range s.Content {
			fmt.Fprintf(w, "  %s\n", line)
		}
		if showChrome {
			for _, line := range s.Chrome {
				fmt.Fprintf(w, "  [%s]\n", line)
			}
		}
	}
	return nil
}

func runGenerate(cmd *cobra.Command, _ []string) error {
	cfg, err := config.Load()
	if err != nil {
		return err
	}
	profile, err := readProfile(profilePath)
	if err != nil {
		return err
	}

	ctx := cmd.Context()
	if ctx == nil {
		ctx = context.Background()
	}
	backend, err := generator.NewBackend(ctx, cfg.Generation)
	if err != nil {
		return err
	}
	log := logger.NewStructured(cfg.Logging.Level, "console")
	p, err := generator.NewRequester(backend, cfg.GenerationTimeout(), log).Generate(ctx, profile)
	if err != nil {
		return err
	}

	data, err := json.MarshalIndent(p, "", "  ")
	if err != nil {
		return err
	}
	return writeOut(cmd, outPath, append(data, '\n'))
}

// loadDocument reads a plan (a bare object or a raw model reply) and an
// optional profile and lays them out for rendering.
func loadDocument(planPath, profilePath string) (report.Document, error) {
	data, err := os.ReadFile(planPath)
	if err != nil {
		return report.Document{}, err
	}
	obj, err := generator.DecodeObject(string(data))
	if err != nil {
		return report.Document{}, fmt.Errorf("%s: %w", planPath, err)
	}

	profile := models.Profile{Name: "同学"}
	if profilePath != "" {
		if profile, err = readProfile(profilePath); err != nil {
			return report.Document{}, err
		}
	}
	return report.Build(profile, plan.Sanitize(obj), models.DefaultCatalog()), nil
}

func readProfile(path string) (models.Profile, error) {
	var p models.Profile
	data, err := os.ReadFile(path)
	if err != nil {
		return p, err
	}
	if err := json.Unmarshal(data, &p); err != nil {
		return p, fmt.Errorf("decode profile %s: %w", path, err)
	}
	return p, nil
}

func orDefault(path, name string) string {
	if path != "" {
		return path
	}
	return name
}

func writeOut(cmd *cobra.Command, path string, data []byte) error {
	if path == "" {
		_, err := cmd.OutOrStdout().Write(data)
		return err
	}
	return writeFile(cmd, path, data)
}

func writeFile(cmd *cobra.Command, path string, data []byte) error {
	if dir := filepath.Dir(path); dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return err
		}
	}
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return err
	}
	fmt.Fprintf(cmd.ErrOrStderr(), "wrote %s (%d bytes)\n", path, len(data))
	return nil
}
