package main

import (
	"fmt"
	"net/http"
	"os"
	"path/filepath"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/urfave/cli/v2"

	"github.com/refsweep/refsweep/internal/audit"
	"github.com/refsweep/refsweep/internal/config"
	"github.com/refsweep/refsweep/internal/dataset"
	"github.com/refsweep/refsweep/internal/extract"
	"github.com/refsweep/refsweep/internal/fetch"
	"github.com/refsweep/refsweep/internal/github"
	"github.com/refsweep/refsweep/internal/record"
	"github.com/refsweep/refsweep/internal/scrape"
	"github.com/refsweep/refsweep/internal/substance"
	"github.com/refsweep/refsweep/internal/sweep"
)

// newCLIApp creates the CLI application with all commands.
func newCLIApp() *cli.App {
	app := &cli.App{
		Name:    "refsweep",
		Usage:   "Scrape and progressively clean the external references of a dataset",
		Version: Version,
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "config", Usage: "Path to YAML/JSON config file"},
			&cli.StringFlag{Name: "dir", Aliases: []string{"d"}, Usage: "Corpus directory"},
			&cli.StringFlag{Name: "pattern", Aliases: []string{"p"}, Usage: "Filename glob within the corpus dir"},
			&cli.StringFlag{Name: "backup-dir", Usage: "Copy files here before mutating them"},
			// No "v" shorthand: the app's Version field registers -v for
			// the version flag.
			&cli.BoolFlag{Name: "verbose", Usage: "Enable debug logging"},
		},
		Commands: []*cli.Command{
			scrapeCmd(),
			scrapePDFsCmd(),
			convertCmd(),
			cleanCmd(),
			substanceCmd(),
			polishCmd(),
			navCmd(),
			fixGitHubCmd(),
			auditCmd(),
			verifyCmd(),
		},
	}
	return app
}

// loadConfig merges flags over the optional config file over defaults.
func loadConfig(c *cli.Context) (config.File, error) {
	var f config.File
	f.Corpus.Dir = c.String("dir")
	f.Corpus.Pattern = c.String("pattern")
	f.Corpus.BackupDir = c.String("backup-dir")
	f.Verbose = c.Bool("verbose")

	if path := c.String("config"); path != "" {
		fromFile, err := config.Load(path)
		if err != nil {
			return f, fmt.Errorf("load config %s: %w", path, err)
		}
		config.Overlay(&f, fromFile)
	}
	config.Overlay(&f, config.Defaults())

	if f.Verbose {
		zerolog.SetGlobalLevel(zerolog.DebugLevel)
	}
	return f, nil
}

func newFetchClient(f config.File) *fetch.Client {
	return &fetch.Client{
		HTTPClient:        &http.Client{},
		UserAgent:         f.Fetch.UserAgent,
		MaxAttempts:       f.Fetch.Attempts,
		PerRequestTimeout: f.Fetch.Timeout.Std(),
		RedirectMaxHops:   f.Fetch.MaxHops,
	}
}

func sweepOptions(f config.File) sweep.Options {
	return sweep.Options{Pattern: f.Corpus.Pattern, BackupDir: f.Corpus.BackupDir}
}

func runSweep(c *cli.Context, stage sweep.Stage) error {
	f, err := loadConfig(c)
	if err != nil {
		return err
	}
	_, err = sweep.Run(f.Corpus.Dir, stage, sweepOptions(f))
	return err
}

func scrapeCmd() *cli.Command {
	return &cli.Command{
		Name:      "scrape",
		Usage:     "Fetch links (from args or a links file) into the corpus dir",
		ArgsUsage: "[url...]",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "links-file", Aliases: []string{"f"}, Usage: "File with one URL per line"},
		},
		Action: func(c *cli.Context) error {
			f, err := loadConfig(c)
			if err != nil {
				return err
			}
			links := c.Args().Slice()
			if path := c.String("links-file"); path != "" {
				fromFile, err := readLinksFile(path)
				if err != nil {
					return err
				}
				links = append(links, fromFile...)
			}
			if len(links) == 0 {
				return fmt.Errorf("no links given: pass URLs or --links-file")
			}
			s := &scrape.Scraper{
				Client: newFetchClient(f),
				OutDir: f.Corpus.Dir,
				Delay:  f.Fetch.Delay.Std(),
			}
			rep := s.ScrapeAll(c.Context, links)
			if rep.Successful == 0 && rep.Failed > 0 {
				return fmt.Errorf("all %d fetches failed", rep.Failed)
			}
			return nil
		},
	}
}

func scrapePDFsCmd() *cli.Command {
	return &cli.Command{
		Name:  "scrape-pdfs",
		Usage: "Download and convert every PDF link found in the dataset CSV",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "csv", Usage: "Path to the dataset CSV"},
		},
		Action: func(c *cli.Context) error {
			f, err := loadConfig(c)
			if err != nil {
				return err
			}
			csvPath := c.String("csv")
			if csvPath == "" {
				csvPath = f.Dataset.CSV
			}
			if csvPath == "" {
				return fmt.Errorf("no dataset CSV given: pass --csv or set dataset.csv in config")
			}
			s := &scrape.Scraper{
				Client: newFetchClient(f),
				OutDir: f.Corpus.Dir,
				Delay:  f.Fetch.Delay.Std(),
			}
			run, err := s.ScrapePDFLinks(c.Context, csvPath)
			if err != nil {
				return err
			}
			log.Info().
				Int("rows", run.TotalRows).
				Int("pdfLinks", len(run.PDFLinks)).
				Int("downloaded", run.Downloaded).
				Int("failed", run.Failed).
				Msg("pdf scrape finished")
			return nil
		},
	}
}

func convertCmd() *cli.Command {
	return &cli.Command{
		Name:  "convert",
		Usage: "Convert raw HTML captures to plain text, deleting hollow files",
		Action: func(c *cli.Context) error {
			f, err := loadConfig(c)
			if err != nil {
				return err
			}
			minChars := f.Thresholds.MinWebChars
			return runSweep(c, func(rec record.Record) (record.Record, error) {
				body := rec.Body
				if strings.Contains(body, "<") && strings.Contains(body, ">") {
					doc, err := extract.FromHTML([]byte(body))
					if err != nil {
						// Crude strip beats losing the record.
						body = extract.StripTags(body)
					} else {
						body = doc.Text
					}
				}
				if record.VisibleLen(body) < minChars {
					return rec, sweep.ErrInsufficientContent
				}
				rec.Body = body
				return rec, nil
			})
		},
	}
}

func cleanCmd() *cli.Command {
	return &cli.Command{
		Name:  "clean",
		Usage: "Re-extract article content with readability, skipping thin results",
		Action: func(c *cli.Context) error {
			f, err := loadConfig(c)
			if err != nil {
				return err
			}
			minChars := f.Thresholds.MinCleanChars
			return runSweep(c, func(rec record.Record) (record.Record, error) {
				pageURL := rec.FinalURL
				if pageURL == "" {
					pageURL = rec.SourceURL
				}
				text, err := extract.ExtractReadable(rec.Body, pageURL)
				if err != nil {
					return rec, sweep.ErrSkip
				}
				if record.VisibleLen(text) < minChars {
					return rec, sweep.ErrSkip
				}
				rec.Body = text
				return rec, nil
			})
		},
	}
}

func substanceCmd() *cli.Command {
	return &cli.Command{
		Name:  "substance",
		Usage: "Drop navigation and boilerplate lines, keeping substantive text",
		Flags: []cli.Flag{
			&cli.BoolFlag{Name: "strict", Usage: "Apply the aggressive final-pass rules"},
		},
		Action: func(c *cli.Context) error {
			opts := substance.Standard()
			if c.Bool("strict") {
				opts = substance.Strict()
			}
			return runSweep(c, func(rec record.Record) (record.Record, error) {
				rec.Body = substance.Filter(rec.Body, opts)
				return rec, nil
			})
		},
	}
}

func polishCmd() *cli.Command {
	return &cli.Command{
		Name:  "polish",
		Usage: "Remove markdown artifacts and collapse whitespace",
		Action: func(c *cli.Context) error {
			return runSweep(c, func(rec record.Record) (record.Record, error) {
				rec.Body = substance.Polish(rec.Body)
				return rec, nil
			})
		},
	}
}

func navCmd() *cli.Command {
	return &cli.Command{
		Name:  "nav",
		Usage: "Strip leftover site-navigation lines",
		Action: func(c *cli.Context) error {
			return runSweep(c, func(rec record.Record) (record.Record, error) {
				rec.Body = substance.CleanupNav(rec.Body)
				return rec, nil
			})
		},
	}
}

func fixGitHubCmd() *cli.Command {
	return &cli.Command{
		Name:  "fix-github",
		Usage: "Re-fetch GitHub UI captures through raw.githubusercontent.com",
		Action: func(c *cli.Context) error {
			f, err := loadConfig(c)
			if err != nil {
				return err
			}
			res, err := audit.Classify(f.Corpus.Dir, f.Corpus.Pattern)
			if err != nil {
				return err
			}
			if len(res.GitHubUI) == 0 {
				log.Info().Msg("no GitHub UI captures found")
				return nil
			}
			var files []string
			for _, e := range res.GitHubUI {
				files = append(files, e.File)
			}
			r := &github.Refetcher{
				Client:     newFetchClient(f),
				Delay:      f.Fetch.Delay.Std(),
				MinContent: f.Thresholds.MinRawChars,
			}
			fixed, failed := r.FixFiles(c.Context, f.Corpus.Dir, files)
			log.Info().Int("fixed", fixed).Int("failed", failed).Msg("github fix finished")
			return nil
		},
	}
}

func auditCmd() *cli.Command {
	return &cli.Command{
		Name:  "audit",
		Usage: "Classify corpus files as good, GitHub UI, paywalled, or empty",
		Action: func(c *cli.Context) error {
			f, err := loadConfig(c)
			if err != nil {
				return err
			}
			res, err := audit.Classify(f.Corpus.Dir, f.Corpus.Pattern)
			if err != nil {
				return err
			}
			res.Render(c.App.Writer)
			return nil
		},
	}
}

func verifyCmd() *cli.Command {
	return &cli.Command{
		Name:  "verify",
		Usage: "Cross-check the dataset's links against the scraped corpus",
		Flags: []cli.Flag{
			&cli.StringFlag{Name: "csv", Usage: "Path to the dataset CSV"},
			&cli.StringFlag{Name: "report", Usage: "Report path (default <dir>/_verification_report.txt)"},
		},
		Action: func(c *cli.Context) error {
			f, err := loadConfig(c)
			if err != nil {
				return err
			}
			csvPath := c.String("csv")
			if csvPath == "" {
				csvPath = f.Dataset.CSV
			}
			if csvPath == "" {
				return fmt.Errorf("no dataset CSV given: pass --csv or set dataset.csv in config")
			}
			stats, err := dataset.ScanCSV(csvPath)
			if err != nil {
				return err
			}
			scraped, err := filepath.Glob(filepath.Join(f.Corpus.Dir, "*.txt"))
			if err != nil {
				return err
			}
			reportPath := c.String("report")
			if reportPath == "" {
				reportPath = filepath.Join(f.Corpus.Dir, "_verification_report.txt")
			}
			if err := dataset.WriteVerificationReport(reportPath, stats, len(scraped)); err != nil {
				return err
			}
			log.Info().
				Int("rows", stats.TotalRows).
				Int("links", stats.TotalLinks).
				Int("scraped", len(scraped)).
				Str("report", reportPath).
				Msg("verification report written")
			return nil
		},
	}
}

func readLinksFile(path string) ([]string, error) {
	b, err := os.ReadFile(path)
	if err != nil {
		return nil, fmt.Errorf("read links file: %w", err)
	}
	var links []string
	for _, line := range strings.Split(string(b), "\n") {
		line = strings.TrimSpace(line)
		if line == "" || strings.HasPrefix(line, "#") {
			continue
		}
		links = append(links, line)
	}
	return links, nil
}
