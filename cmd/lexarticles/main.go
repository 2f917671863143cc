package main

import (
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"time"

	"github.com/spf13/cobra"
	"gopkg.in/yaml.v3"

	"github.com/coolbeans/lexarticles/pkg/codes"
	"github.com/coolbeans/lexarticles/pkg/config"
	"github.com/coolbeans/lexarticles/pkg/extract"
	"github.com/coolbeans/lexarticles/pkg/logger"
	"github.com/coolbeans/lexarticles/pkg/pipeline"
	"github.com/coolbeans/lexarticles/pkg/records"
)

var version = "0.1.0"

// Shared state set up before every command runs.
var (
	cfg      *config.Config
	registry *codes.Registry
)

func main() {
	if err := rootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

func rootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lexarticles",
		Short: "Split lex.uz legal codes into per-article files",
		Long: `Lexarticles segments the text of Uzbek legal codes published on lex.uz
into chapters and articles and writes one file per article plus a
metadata.json manifest per code.

Inputs may be plain text, .docx exports or saved lex.uz HTML pages.
Settings are read from the environment and an optional .env file:
  LEXARTICLES_OUTPUT_DIR, LEXARTICLES_CODES_DIR, LEXARTICLES_WORKERS,
  LEXARTICLES_VERBOSE, LEXARTICLES_STRICT`,
		Version:       version,
		SilenceUsage:  true,
		SilenceErrors: true,
		PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
			envFile, _ := cmd.Flags().GetString("env-file")
			var err error
			if envFile != "" {
				cfg, err = config.Load(envFile)
			} else {
				cfg, err = config.Load()
			}
			if err != nil {
				return err
			}

			if cmd.Flags().Changed("verbose") {
				cfg.Verbose, _ = cmd.Flags().GetBool("verbose")
			}
			if cmd.Flags().Changed("codes-dir") {
				cfg.CodesDir, _ = cmd.Flags().GetString("codes-dir")
			}
			logger.SetVerbose(cfg.Verbose)

			registry, err = codes.NewRegistryWithDirectory(cfg.CodesDir)
			if err != nil {
				return fmt.Errorf("loading code registry: %w", err)
			}
			logger.Debug("registry: %d codes (overrides from %s)", registry.Count(), cfg.CodesDir)
			return nil
		},
	}

	root.PersistentFlags().BoolP("verbose", "v", false, "Print debug output")
	root.PersistentFlags().String("env-file", "", "Path to a .env file (default .env)")
	root.PersistentFlags().String("codes-dir", "", "Directory with YAML code overrides")

	root.AddCommand(extractCmd())
	root.AddCommand(batchCmd())
	root.AddCommand(codesCmd())
	root.AddCommand(statusCmd())
	root.AddCommand(verifyCmd())
	return root
}

// addBuildFlags registers the flags shared by extract and batch.
func addBuildFlags(cmd *cobra.Command) {
	cmd.Flags().StringP("output", "o", "", "Output root; each code gets its own folder")
	cmd.Flags().String("code", "", "Code identity, skipping detection from the file name")
	cmd.Flags().Bool("strict", false, "Drop articles whose header has no number")
	cmd.Flags().String("chapter-numbering", "", "Chapter numbering: arabic-only or roman-or-arabic")
	cmd.Flags().Int("max-article", -1, "Highest article number of the code (0 disables normalization)")
	cmd.Flags().Bool("dry-run", false, "Segment without writing files")
}

func processorOptions(cmd *cobra.Command) (pipeline.Options, error) {
	output, _ := cmd.Flags().GetString("output")
	code, _ := cmd.Flags().GetString("code")
	strict, _ := cmd.Flags().GetBool("strict")
	numbering, _ := cmd.Flags().GetString("chapter-numbering")
	maxArticle, _ := cmd.Flags().GetInt("max-article")
	dryRun, _ := cmd.Flags().GetBool("dry-run")

	if output == "" {
		output = cfg.OutputDir
	}
	if !cmd.Flags().Changed("strict") {
		strict = cfg.Strict
	}

	opts := pipeline.Options{
		OutputDir: output,
		Workers:   cfg.Workers,
		DryRun:    dryRun,
		Build: records.BuildOptions{
			Code:   codes.Identity(strings.ToLower(code)),
			Strict: strict,
		},
	}

	if numbering != "" {
		parsed, err := extract.ParseChapterNumbering(numbering)
		if err != nil {
			return opts, err
		}
		opts.Build.Numbering = parsed
	}
	if cmd.Flags().Changed("max-article") {
		if maxArticle < 0 {
			return opts, fmt.Errorf("--max-article must not be negative")
		}
		opts.Build.MaxArticle = &maxArticle
	}
	return opts, nil
}

func extractCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "extract",
		Short: "Extract the articles of one legal code",
		Long: `Extract the articles of one legal code document.

The code is detected from the file name (or lex.uz document id) unless
--code is given.

Example:
  lexarticles extract --source "data/text/Civil Code UZ.txt"
  lexarticles extract --source 97661 --code administrative --strict`,
		RunE: func(cmd *cobra.Command, args []string) error {
			sourcePath, _ := cmd.Flags().GetString("source")
			format, _ := cmd.Flags().GetString("format")

			if sourcePath == "" {
				return fmt.Errorf("--source flag is required")
			}
			if _, err := os.Stat(sourcePath); err != nil {
				if os.IsNotExist(err) {
					return fmt.Errorf("source file not found: %s", sourcePath)
				}
				return fmt.Errorf("failed to stat source: %w", err)
			}

			opts, err := processorOptions(cmd)
			if err != nil {
				return err
			}

			processor := pipeline.NewProcessor(registry, opts)
			result, err := processor.ProcessFile(cmd.Context(), sourcePath)
			if err != nil {
				return err
			}

			if format == "json" {
				return printJSON(result)
			}
			printResult(result, opts.DryRun)
			return nil
		},
	}

	cmd.Flags().StringP("source", "s", "", "Source document (.txt, .docx, .html)")
	cmd.Flags().String("format", "text", "Output format: text, json")
	addBuildFlags(cmd)
	return cmd
}

func batchCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "batch [files...]",
		Short: "Extract several legal codes concurrently",
		Long: `Extract several legal codes concurrently.

Sources are the given files, or every supported document in --dir.
Documents of the same code, such as the two parts of the civil code,
are merged into one folder.

Example:
  lexarticles batch --dir data/text --workers 4
  lexarticles batch "Civil Code p1.txt" "Civil Code p2.txt"`,
		RunE: func(cmd *cobra.Command, args []string) error {
			dir, _ := cmd.Flags().GetString("dir")
			workers, _ := cmd.Flags().GetInt("workers")
			watchCodes, _ := cmd.Flags().GetBool("watch-codes")

			paths := args
			if dir != "" {
				collected, err := pipeline.CollectSources(dir)
				if err != nil {
					return err
				}
				paths = append(paths, collected...)
			}
			if len(paths) == 0 {
				return fmt.Errorf("no sources: pass files or --dir")
			}

			opts, err := processorOptions(cmd)
			if err != nil {
				return err
			}
			if workers > 0 {
				opts.Workers = workers
			}

			if watchCodes {
				registry.SetOnChange(func(event string, changed *codes.CodeConfig) {
					if changed == nil {
						logger.Info("code overrides reloaded after %s", event)
						return
					}
					logger.Info("code %s %s", changed.Identity, event)
				})
				registry.SetOnError(func(err error) {
					logger.Warn("code registry: %v", err)
				})
				if err := registry.Watch(); err != nil {
					return fmt.Errorf("watching %s: %w", cfg.CodesDir, err)
				}
				defer registry.StopWatch()
			}

			ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
			defer stop()

			fmt.Printf("Processing %d documents with %d workers\n", len(paths), opts.Workers)
			start := time.Now()

			processor := pipeline.NewProcessor(registry, opts)
			results, errs := processor.ProcessAll(ctx, paths)

			for _, result := range results {
				printResult(result, opts.DryRun)
			}
			for _, err := range errs {
				fmt.Fprintf(os.Stderr, "error: %v\n", err)
			}
			fmt.Printf("\nDone in %s: %d codes written, %d errors\n",
				time.Since(start).Round(time.Millisecond), len(results), len(errs))

			if len(errs) > 0 {
				return fmt.Errorf("%d documents failed", len(errs))
			}
			return nil
		},
	}

	cmd.Flags().String("dir", "", "Directory of source documents")
	cmd.Flags().Int("workers", 0, "Concurrent documents (default LEXARTICLES_WORKERS or CPU count)")
	cmd.Flags().Bool("watch-codes", false, "Reload YAML code overrides while running")
	addBuildFlags(cmd)
	return cmd
}

func codesCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "codes [identity]",
		Short: "List known legal codes or show one as YAML",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			format, _ := cmd.Flags().GetString("format")

			if len(args) == 1 {
				code, ok := registry.Get(codes.Identity(strings.ToLower(args[0])))
				if !ok {
					return &codes.UnknownCodeError{Source: args[0]}
				}
				if format == "json" {
					return printJSON(code)
				}
				data, err := yaml.Marshal(code)
				if err != nil {
					return fmt.Errorf("failed to encode code: %w", err)
				}
				fmt.Print(string(data))
				return nil
			}

			list := registry.List()
			if format == "json" {
				return printJSON(list)
			}

			fmt.Printf("%-26s %-10s %-8s %s\n", "IDENTITY", "ABBREV", "MAX", "NAME")
			for _, code := range list {
				maxArticle := "-"
				if code.MaxArticle > 0 {
					maxArticle = fmt.Sprintf("%d", code.MaxArticle)
				}
				fmt.Printf("%-26s %-10s %-8s %s\n", code.Identity, code.Abbreviation, maxArticle, code.Name)
			}
			return nil
		},
	}

	cmd.Flags().String("format", "text", "Output format: text, yaml (single code), json")
	return cmd
}

func statusCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "status",
		Short: "Show which codes have been extracted",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			format, _ := cmd.Flags().GetString("format")
			if output == "" {
				output = cfg.OutputDir
			}

			statuses := pipeline.Status(output, registry)
			if format == "json" {
				return printJSON(statuses)
			}

			processed := 0
			fmt.Printf("Output root: %s\n\n", output)
			for _, status := range statuses {
				switch {
				case status.Err != nil:
					fmt.Printf("  ! %-26s %v\n", status.Identity, status.Err)
				case status.Processed:
					processed++
					fmt.Printf("  + %-26s %5d articles  %s\n", status.Identity, status.Articles, status.Name)
				default:
					fmt.Printf("  - %-26s %5s           %s\n", status.Identity, "", status.Name)
				}
			}
			fmt.Printf("\n%d of %d codes processed\n", processed, len(statuses))
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output root")
	cmd.Flags().String("format", "text", "Output format: text, json")
	return cmd
}

func verifyCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "verify [identity...]",
		Short: "Check that manifests match the article files on disk",
		RunE: func(cmd *cobra.Command, args []string) error {
			output, _ := cmd.Flags().GetString("output")
			if output == "" {
				output = cfg.OutputDir
			}

			var folders []string
			if len(args) > 0 {
				for _, arg := range args {
					code, ok := registry.Get(codes.Identity(strings.ToLower(arg)))
					if !ok {
						return &codes.UnknownCodeError{Source: arg}
					}
					folders = append(folders, code.OutputFolder())
				}
			} else {
				for _, status := range pipeline.Status(output, registry) {
					if status.Processed || status.Err != nil {
						folders = append(folders, status.Folder)
					}
				}
			}

			failed := 0
			for _, folder := range folders {
				verification, err := records.Verify(filepath.Join(output, folder))
				if err != nil {
					failed++
					fmt.Printf("FAIL %s: %v\n", folder, err)
					continue
				}
				if !verification.OK() {
					failed++
					fmt.Printf("FAIL %s: %d entries, %d files\n", folder, verification.Entries, verification.Files)
					for _, name := range verification.Missing {
						fmt.Printf("     missing file: %s\n", name)
					}
					for _, name := range verification.Unlisted {
						fmt.Printf("     not in manifest: %s\n", name)
					}
					continue
				}
				fmt.Printf("OK   %s: %d entries, %d files\n", folder, verification.Entries, verification.Files)
				for _, name := range verification.Duplicates {
					logger.Warn("%s: several articles share %s", folder, name)
				}
			}

			if failed > 0 {
				return fmt.Errorf("%d of %d code folders failed verification", failed, len(folders))
			}
			return nil
		},
	}

	cmd.Flags().StringP("output", "o", "", "Output root")
	return cmd
}

func printResult(result *pipeline.Result, dryRun bool) {
	action := "Wrote"
	if dryRun {
		action = "Would write"
	}
	fmt.Printf("%s %d articles of %s to %s\n", action, result.Articles, result.Identity, result.OutputDir)
	fmt.Printf("  Sources:    %s\n", strings.Join(result.Sources, ", "))
	fmt.Printf("  Chapters:   %d\n", result.Stats.Chapters)
	if result.Stats.Unnumbered > 0 {
		fmt.Printf("  Unnumbered: %d (see %s)\n", result.Stats.Unnumbered, records.NoNumber+".txt")
	}
	if len(result.Warnings) > 0 {
		fmt.Printf("  Warnings:   %d\n", len(result.Warnings))
	}
	fmt.Printf("  Run:        %s (%s)\n", result.RunID, result.Duration.Round(time.Millisecond))
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	enc.SetEscapeHTML(false)
	return enc.Encode(v)
}

