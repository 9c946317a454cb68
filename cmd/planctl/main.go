// Command planctl runs template inspection and filling locally, without
// the API server, database, or object storage.
package main

import (
	"context"
	"flag"
	"fmt"
	"os"
	"path/filepath"
	"strings"
	"time"

	"planfill/internal/config"
	"planfill/internal/csvexport"
	"planfill/internal/document"
	"planfill/internal/domain"
	"planfill/internal/fill"
	"planfill/internal/generator"
	_ "planfill/internal/generator/deepseek"
	_ "planfill/internal/generator/gemini"
	_ "planfill/internal/generator/openai"
	"planfill/internal/grid"
	"planfill/internal/infer"
	"planfill/internal/logging"
	"planfill/internal/writer"
)

func main() {
	if len(os.Args) < 2 {
		usage()
		os.Exit(2)
	}

	var err error
	switch os.Args[1] {
	case "inspect":
		err = runInspect(os.Args[2:])
	case "fill":
		err = runFill(os.Args[2:])
	default:
		usage()
		os.Exit(2)
	}
	if err != nil {
		fmt.Fprintln(os.Stderr, "error:", err)
		os.Exit(1)
	}
}

func usage() {
	fmt.Fprintln(os.Stderr, `usage:
  planctl inspect -template FILE [-csv FILE]
  planctl fill    -template FILE -out FILE -outline TEXT [-set key=value]... [-dry-run]

Generator credentials are read from PLANFILL_GENERATOR_* environment
variables, the same as the server.`)
}

// kvFlags collects repeated -set key=value flags.
type kvFlags map[string]string

func (f kvFlags) String() string { return "" }

func (f kvFlags) Set(s string) error {
	key, value, ok := strings.Cut(s, "=")
	if !ok {
		return fmt.Errorf("expected key=value, got %q", s)
	}
	f[strings.TrimSpace(key)] = strings.TrimSpace(value)
	return nil
}

func openTemplate(path string) ([]byte, string, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, "", err
	}
	ext := strings.TrimPrefix(strings.ToLower(filepath.Ext(path)), ".")
	tt, ok := domain.AllowedExtensions[ext]
	if !ok {
		return nil, "", domain.ErrUnsupportedFileType
	}
	return data, domain.AllowedTemplateTypes[tt], nil
}

func runInspect(args []string) error {
	fs := flag.NewFlagSet("inspect", flag.ExitOnError)
	templatePath := fs.String("template", "", "template file (docx or xlsx)")
	csvPath := fs.String("csv", "", "write the structure as CSV to this file instead of printing")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *templatePath == "" {
		return fmt.Errorf("-template is required")
	}

	cfg, err := config.Load()
	if err != nil {
		return err
	}

	data, contentType, err := openTemplate(*templatePath)
	if err != nil {
		return err
	}
	doc, err := document.Open(data, contentType)
	if err != nil {
		return err
	}

	structure := infer.FromConfig(&cfg.Infer).Infer(grid.FromDocument(doc))
	if len(structure) == 0 {
		return domain.ErrNoStructure
	}

	if *csvPath != "" {
		out, err := os.Create(*csvPath)
		if err != nil {
			return err
		}
		defer out.Close()
		if err := csvexport.Export(out, structure); err != nil {
			return err
		}
		fmt.Printf("wrote %d bindings to %s\n", len(structure), *csvPath)
		return nil
	}

	for _, b := range structure {
		fmt.Printf("%-50s table=%d row=%d col=%d\n", b.Key, b.Target.Table, b.Target.Row, b.Target.Col)
	}
	fmt.Printf("%d bindings\n", len(structure))
	return nil
}

func runFill(args []string) error {
	fs := flag.NewFlagSet("fill", flag.ExitOnError)
	templatePath := fs.String("template", "", "template file (docx or xlsx)")
	outPath := fs.String("out", "", "output file")
	outline := fs.String("outline", "", "course outline for this lesson")
	timeout := fs.Duration("timeout", 10*time.Minute, "overall generation timeout")
	dryRun := fs.Bool("dry-run", false, "stop after inference and print the structure")
	userCtx := kvFlags{}
	fs.Var(userCtx, "set", "identity field as key=value (repeatable), e.g. -set instructor=\"Jane Doe\"")
	if err := fs.Parse(args); err != nil {
		return err
	}
	if *templatePath == "" {
		return fmt.Errorf("-template is required")
	}
	if !*dryRun {
		if *outPath == "" {
			return fmt.Errorf("-out is required")
		}
		if strings.TrimSpace(*outline) == "" {
			return domain.ErrMissingTopic
		}
	}
	userCtx[domain.ContextKeyOutline] = *outline

	cfg, err := config.Load()
	if err != nil {
		return err
	}
	logger, err := logging.New(cfg.Log)
	if err != nil {
		return err
	}
	defer func() { _ = logger.Sync() }()

	data, contentType, err := openTemplate(*templatePath)
	if err != nil {
		return err
	}
	doc, err := document.Open(data, contentType)
	if err != nil {
		return err
	}

	structure := infer.FromConfig(&cfg.Infer).Infer(grid.FromDocument(doc))
	if len(structure) == 0 {
		return domain.ErrNoStructure
	}
	fmt.Printf("inferred %d bindings\n", len(structure))

	if *dryRun {
		for _, b := range structure {
			fmt.Printf("%-50s table=%d row=%d col=%d\n", b.Key, b.Target.Table, b.Target.Row, b.Target.Col)
		}
		return nil
	}

	gen, err := generator.FromConfig(&cfg.Generator, logger)
	if err != nil {
		return err
	}

	ctx, cancel := context.WithTimeout(context.Background(), *timeout)
	defer cancel()

	orch := fill.New(gen, printObserver{}, logger, fill.Options{
		BatchSize:  cfg.Fill.BatchSize,
		MaxRetries: cfg.Fill.MaxRetries,
	})
	result, err := orch.Run(ctx, structure, domain.UserContext(userCtx))
	if err != nil {
		return err
	}

	filled := writer.New(printObserver{}, logger).Apply(doc, structure, result.Content)

	out, err := os.Create(*outPath)
	if err != nil {
		return err
	}
	defer out.Close()
	if err := doc.Save(out); err != nil {
		return err
	}

	fmt.Printf("filled %d of %d bindings (%d/%d batches ok), wrote %s\n",
		filled, len(structure), result.TotalBatches-result.FailedBatches, result.TotalBatches, *outPath)
	return nil
}

// printObserver surfaces fill progress on stdout.
type printObserver struct{}

func (printObserver) Event(event, detail string) {
	fmt.Printf("  [%s] %s\n", event, detail)
}
