// Command doccheck checks .docx documents against a YAML rule set and can
// produce a revised copy with native track-changes marks for every fix.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"log/slog"
	"os"

	"github.com/alecthomas/kong"

	"github.com/dgallion1/doccheck/internal/batch"
	"github.com/dgallion1/doccheck/internal/config"
	"github.com/dgallion1/doccheck/internal/docmodel"
	"github.com/dgallion1/doccheck/internal/engine"
	"github.com/dgallion1/doccheck/internal/parser"
	"github.com/dgallion1/doccheck/internal/revision"
	"github.com/dgallion1/doccheck/internal/rules"
	"github.com/dgallion1/doccheck/internal/semantic"
)

var CLI struct {
	Verbose bool `name:"verbose" short:"v" help:"Enable debug logging"`

	Check  CheckCmd  `cmd:"" help:"Check a document and print the findings as JSON"`
	Revise ReviseCmd `cmd:"" help:"Check a document and write a revised copy with track changes"`
	Parse  ParseCmd  `cmd:"" help:"Parse a document and print its snapshot as JSON"`
	Batch  BatchCmd  `cmd:"" help:"Check several documents concurrently and print a batch summary"`
}

type appContext struct {
	cfg config.Config
	log *slog.Logger
}

// CheckCmd runs parse + rule evaluation and prints the merged report.
type CheckCmd struct {
	File  string `arg:"" help:"Path to the .docx file" type:"existingfile"`
	Rules string `name:"rules" short:"r" help:"Rule set YAML path (overrides DOCCHECK_RULES)"`
	AI    bool   `name:"ai" help:"Enable semantic rule checks and content checks"`
}

func (c *CheckCmd) Run(app *appContext) error {
	report, _, err := runCheck(context.Background(), app, c.File, c.Rules, c.AI)
	if err != nil {
		return err
	}
	return printJSON(report)
}

// ReviseCmd checks the document and applies every fixable finding to a copy.
type ReviseCmd struct {
	File   string `arg:"" help:"Path to the .docx file" type:"existingfile"`
	Rules  string `name:"rules" short:"r" help:"Rule set YAML path (overrides DOCCHECK_RULES)"`
	AI     bool   `name:"ai" help:"Enable semantic rule checks and content checks"`
	Report string `name:"report" help:"Apply a previously saved report instead of re-checking" type:"existingfile"`
	Out    string `name:"out" short:"o" help:"Output directory (overrides DOCCHECK_OUTPUT_DIR)"`
}

func (c *ReviseCmd) Run(app *appContext) error {
	var issues []docmodel.Issue
	if c.Report != "" {
		report, err := loadReport(c.Report)
		if err != nil {
			return err
		}
		issues = report.Issues
	} else {
		report, _, err := runCheck(context.Background(), app, c.File, c.Rules, c.AI)
		if err != nil {
			return err
		}
		issues = report.Issues
	}

	outputDir := app.cfg.OutputDir
	if c.Out != "" {
		outputDir = c.Out
	}
	revEngine, err := revision.NewEngine(outputDir, app.cfg.RevisionAuthor, app.log)
	if err != nil {
		return err
	}

	outPath, err := revEngine.Revise(c.File, issues)
	if err != nil {
		return err
	}

	app.log.Info("revised document written", "path", outPath, "issues", len(issues))
	fmt.Println(outPath)
	return nil
}

// ParseCmd prints the parsed snapshot, mainly for rule authoring.
type ParseCmd struct {
	File string `arg:"" help:"Path to the .docx file" type:"existingfile"`
}

func (c *ParseCmd) Run(app *appContext) error {
	snap, err := parser.Parse(c.File)
	if err != nil {
		return err
	}
	return printJSON(snap)
}

func runCheck(ctx context.Context, app *appContext, file, rulesPath string, withAI bool) (*docmodel.Report, *docmodel.Snapshot, error) {
	if rulesPath == "" {
		rulesPath = app.cfg.RulesPath
	}
	ruleSet, err := rules.Load(rulesPath)
	if err != nil {
		return nil, nil, err
	}
	app.log.Debug("rule set loaded", "path", rulesPath, "rules", len(ruleSet))

	if st, err := os.Stat(file); err == nil && st.Size() > app.cfg.MaxDocumentBytes {
		return nil, nil, fmt.Errorf("document too large: %d bytes (limit %d)", st.Size(), app.cfg.MaxDocumentBytes)
	}

	snap, err := parser.Parse(file)
	if err != nil {
		return nil, nil, err
	}
	app.log.Debug("document parsed",
		"paragraphs", len(snap.Paragraphs),
		"headings", len(snap.Headings),
		"tables", len(snap.Tables),
		"figures", len(snap.Figures))

	var semanticChecker engine.SemanticChecker
	var client *semantic.Client
	if withAI && app.cfg.AIEnabled() {
		client = semantic.NewClient(app.cfg.AIBaseURL, app.cfg.AIAPIKey, app.cfg.AIModel)
		defer client.Close()
		semanticChecker = semantic.NewRuleChecker(client, app.log)
	} else if withAI {
		app.log.Warn("AI requested but AI_API_KEY is not set; semantic checks skipped")
	}

	report, err := engine.New(ruleSet, semanticChecker, app.log).Check(ctx, snap)
	if err != nil {
		return nil, nil, err
	}

	if withAI {
		var checks []string
		if app.cfg.EnableSpellCheck {
			checks = append(checks, semantic.CheckSpelling)
		}
		if app.cfg.EnableCrossRefCheck {
			checks = append(checks, semantic.CheckCrossRefs)
		}
		content := semantic.NewContentChecker(client, app.log)
		extra := content.CheckAll(ctx, snap, checks)
		report.Issues = append(report.Issues, extra...)
		report.TotalIssues = len(report.Issues)
	}

	return report, snap, nil
}

// BatchCmd fans a set of documents across a worker pool and prints one
// summary with per-file outcomes.
type BatchCmd struct {
	Files   []string `arg:"" help:"Paths to the .docx files" type:"existingfile"`
	Rules   string   `name:"rules" short:"r" help:"Rule set YAML path (overrides DOCCHECK_RULES)"`
	AI      bool     `name:"ai" help:"Enable semantic rule checks and content checks"`
	Workers int      `name:"workers" short:"w" default:"4" help:"Number of concurrent checks"`
	Full    bool     `name:"full" help:"Include the full report for each document"`
}

func (c *BatchCmd) Run(app *appContext) error {
	runner := batch.NewRunner(func(ctx context.Context, path string) (*docmodel.Report, error) {
		report, _, err := runCheck(ctx, app, path, c.Rules, c.AI)
		return report, err
	}, c.Workers, app.log)

	jobs := runner.Run(context.Background(), c.Files)
	summary := batch.Summarize(jobs, c.Full)
	if err := printJSON(summary); err != nil {
		return err
	}
	if summary.Failed > 0 {
		return fmt.Errorf("%d of %d documents failed", summary.Failed, summary.Total)
	}
	return nil
}

func loadReport(path string) (*docmodel.Report, error) {
	data, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read report: %w", err)
	}
	var report docmodel.Report
	if err := json.Unmarshal(data, &report); err != nil {
		return nil, fmt.Errorf("parse report: %w", err)
	}
	return &report, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetEscapeHTML(false)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

func main() {
	ctx := kong.Parse(&CLI,
		kong.Name("doccheck"),
		kong.Description("Document format checker and reviser for .docx files"),
		kong.UsageOnError(),
	)

	level := slog.LevelInfo
	if CLI.Verbose {
		level = slog.LevelDebug
	}
	log := slog.New(slog.NewJSONHandler(os.Stderr, &slog.HandlerOptions{Level: level}))

	cfg := config.Load()
	if err := cfg.Validate(); err != nil {
		log.Error("invalid configuration", "error", err)
		os.Exit(1)
	}

	app := &appContext{cfg: cfg, log: log}
	if err := ctx.Run(app); err != nil {
		log.Error("command failed", "error", err)
		os.Exit(1)
	}
}
