package main

import (
	"errors"
	"fmt"
	"os"
	"path/filepath"
	"sort"
	"strings"

	"github.com/spf13/cobra"
	"mercator-hq/ruler/pkg/cli"
	"mercator-hq/ruler/pkg/rulebook/parser"
	"mercator-hq/ruler/pkg/taxonomy"
)

var validateFlags struct {
	rulebook string
	taxonomy string
	format   string
}

var validateCmd = &cobra.Command{
	Use:   "validate",
	Short: "Validate rulebook and taxonomy files",
	Long: `Parse and validate rulebook and reason-taxonomy files without
starting the server.

The validate command reports every problem it finds: malformed JSON,
missing clause IDs, duplicate clauses, unknown field types, and
constraint trees nested past the depth limit. Paths default to the
configured rulebook and taxonomy locations.

Examples:
  # Validate the configured rulebook and taxonomy
  ruler validate

  # Validate a specific rulebook directory
  ruler validate --rulebook ./rules

  # Machine-readable report
  ruler validate --format json`,
	RunE: runValidate,
}

func init() {
	rootCmd.AddCommand(validateCmd)

	validateCmd.Flags().StringVar(&validateFlags.rulebook, "rulebook", "", "rulebook file or directory (uses config if not specified)")
	validateCmd.Flags().StringVar(&validateFlags.taxonomy, "taxonomy", "", "reason taxonomy file (uses config if not specified)")
	validateCmd.Flags().StringVar(&validateFlags.format, "format", "text", "output format: text, json")
}

// fileReport is the validation outcome for one input file.
type fileReport struct {
	Path     string   `json:"path"`
	Valid    bool     `json:"valid"`
	Rules    int      `json:"rules,omitempty"`
	Reasons  int      `json:"reasons,omitempty"`
	Problems []string `json:"problems,omitempty"`
}

// validateReport is the full validation outcome.
type validateReport struct {
	Files   []fileReport `json:"files"`
	Valid   bool         `json:"valid"`
	Summary string       `json:"summary"`
}

func runValidate(cmd *cobra.Command, args []string) error {
	cfg, err := loadConfig(cmd)
	if err != nil {
		return cli.NewConfigError("", fmt.Sprintf("failed to load config: %v", err))
	}

	rulebookPath := validateFlags.rulebook
	if rulebookPath == "" {
		rulebookPath = cfg.Rulebook.Path
	}
	taxonomyPath := validateFlags.taxonomy
	if taxonomyPath == "" {
		taxonomyPath = cfg.Taxonomy.Path
	}

	report := validateReport{Valid: true}

	p := parser.New(&parser.Config{
		MaxFileSize:  cfg.Rulebook.MaxFileSize,
		MaxTreeDepth: cfg.Rulebook.MaxTreeDepth,
	})

	files, err := collectRulebookFiles(rulebookPath)
	if err != nil {
		return cli.NewCommandError("validate", err)
	}
	for _, file := range files {
		report.Files = append(report.Files, validateRulebookFile(p, file))
	}
	report.Files = append(report.Files, validateTaxonomyFile(taxonomyPath))

	ruleCount := 0
	invalid := 0
	for _, fr := range report.Files {
		ruleCount += fr.Rules
		if !fr.Valid {
			invalid++
			report.Valid = false
		}
	}
	if report.Valid {
		report.Summary = fmt.Sprintf("%d files valid (%d rules)", len(report.Files), ruleCount)
	} else {
		report.Summary = fmt.Sprintf("%d of %d files invalid", invalid, len(report.Files))
	}

	if cli.OutputFormat(validateFlags.format) == cli.FormatJSON {
		formatter := cli.NewFormatter(cli.FormatJSON)
		if err := formatter.FormatTo(os.Stdout, report); err != nil {
			return cli.NewCommandError("validate", err)
		}
	} else {
		printReport(report)
	}

	if !report.Valid {
		return cli.NewCommandError("validate", fmt.Errorf("%s", report.Summary))
	}
	return nil
}

func validateRulebookFile(p *parser.Parser, path string) fileReport {
	fr := fileReport{Path: path, Valid: true}

	rb, err := p.ParseFile(path)
	if err != nil {
		fr.Valid = false
		var verr *parser.ValidationError
		if errors.As(err, &verr) {
			fr.Problems = verr.Problems
		} else {
			fr.Problems = []string{err.Error()}
		}
		return fr
	}

	fr.Rules = len(rb.Rules)
	return fr
}

func validateTaxonomyFile(path string) fileReport {
	fr := fileReport{Path: path, Valid: true}

	tax, err := taxonomy.Load(path)
	if err != nil {
		fr.Valid = false
		fr.Problems = []string{err.Error()}
		return fr
	}

	fr.Reasons = tax.Len()
	return fr
}

// collectRulebookFiles resolves a rulebook path to the JSON files it
// names, mirroring what the store loads at startup.
func collectRulebookFiles(path string) ([]string, error) {
	info, err := os.Stat(path)
	if err != nil {
		return nil, fmt.Errorf("rulebook path %q: %w", path, err)
	}
	if !info.IsDir() {
		return []string{path}, nil
	}

	entries, err := os.ReadDir(path)
	if err != nil {
		return nil, fmt.Errorf("rulebook directory %q: %w", path, err)
	}

	var files []string
	for _, entry := range entries {
		name := entry.Name()
		if entry.IsDir() || strings.HasPrefix(name, ".") || !strings.HasSuffix(name, ".json") {
			continue
		}
		files = append(files, filepath.Join(path, name))
	}
	sort.Strings(files)

	if len(files) == 0 {
		return nil, fmt.Errorf("no rulebook files found in %q", path)
	}
	return files, nil
}

func printReport(report validateReport) {
	for _, fr := range report.Files {
		if fr.Valid {
			switch {
			case fr.Rules > 0:
				fmt.Printf("✓ %s (%d rules)\n", fr.Path, fr.Rules)
			case fr.Reasons > 0:
				fmt.Printf("✓ %s (%d reasons)\n", fr.Path, fr.Reasons)
			default:
				fmt.Printf("✓ %s\n", fr.Path)
			}
			continue
		}

		fmt.Printf("✗ %s\n", fr.Path)
		for _, problem := range fr.Problems {
			fmt.Printf("    - %s\n", problem)
		}
	}
	fmt.Println()
	fmt.Println(report.Summary)
}
