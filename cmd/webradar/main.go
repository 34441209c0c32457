package main

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"syscall"

	"github.com/spf13/cobra"

	"github.com/webradar/webradar/internal/analyze"
	"github.com/webradar/webradar/internal/crawler"
	"github.com/webradar/webradar/internal/extract"
	"github.com/webradar/webradar/internal/proxy"
	"github.com/webradar/webradar/internal/sources"
	"github.com/webradar/webradar/internal/store"
	"github.com/webradar/webradar/pkg/content"
	"github.com/webradar/webradar/pkg/logging"
)

var (
	Version   = "dev"
	BuildTime = "unknown"
)

var (
	dataDir     string
	backendName string
	logLevel    string
	logFormat   string
	quiet       bool
)

var rootCmd = &cobra.Command{
	Use:   "webradar",
	Short: "Discover new corners of the web, one quote at a time",
	Long: `webradar discovers recently surfaced domains from public APIs,
crawls them politely one at a time, and keeps the most interesting
quote each page has to offer.

Every discovery is scored for quality, categorized and persisted, so
a session can be stopped and resumed without resurfacing the same
quotes.

Version: ` + Version + `
Built:   ` + BuildTime,
	Version:       Version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		logConfig := logging.DefaultLogConfig()
		logConfig.Level = logLevel
		logConfig.Format = logFormat
		logConfig.OutputFile = filepath.Join(dataDir, "logs", "webradar.log")
		logConfig.Console = !quiet

		if err := logging.SetupLogger(logConfig); err != nil {
			return fmt.Errorf("initializing logger: %w", err)
		}
		return nil
	},
	RunE: runSession,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&dataDir, "data-dir", "d", "data", "directory for the discovery store and logs")
	rootCmd.PersistentFlags().StringVar(&backendName, "backend", "git", "persistence backend: git or file")
	rootCmd.PersistentFlags().StringVar(&logLevel, "log-level", "info", "log level: debug, info, warn, error")
	rootCmd.PersistentFlags().StringVar(&logFormat, "log-format", "pretty", "log format: pretty or json")
	rootCmd.PersistentFlags().BoolVarP(&quiet, "quiet", "q", false, "suppress console log output")

	rootCmd.AddCommand(listCmd)
}

func runSession(cmd *cobra.Command, args []string) error {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	config := crawler.DefaultConfig()

	st, err := openStore(ctx, config.Store)
	if err != nil {
		return err
	}

	fetcher := proxy.NewFetcher(config.Fetcher)
	aggregator := sources.NewAggregator(fetcher, config.Discovery)
	extractor := extract.NewExtractor(extract.DefaultExtractorConfig())
	analyzer := analyze.NewAnalyzer()

	orchestrator := crawler.NewOrchestrator(config, aggregator, fetcher, extractor, analyzer, st, consoleSink{})
	orchestrator.Start(ctx)

	go func() {
		<-ctx.Done()
		orchestrator.Stop()
	}()

	orchestrator.Wait()
	return nil
}

var listCmd = &cobra.Command{
	Use:   "list",
	Short: "Show persisted discoveries without crawling",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		st, err := openStore(ctx, store.DefaultStoreConfig())
		if err != nil {
			return err
		}

		discoveries := st.Display()
		if len(discoveries) == 0 {
			fmt.Println("No discoveries yet. Run webradar to start a session.")
			return nil
		}

		for _, d := range discoveries {
			printDiscovery(d)
		}
		return nil
	},
}

func openStore(ctx context.Context, config store.StoreConfig) (*store.Store, error) {
	var backend store.Backend
	switch backendName {
	case "git":
		gitBackend, err := store.NewGitBackend(filepath.Join(dataDir, "radar"))
		if err != nil {
			return nil, fmt.Errorf("opening git backend: %w", err)
		}
		backend = gitBackend
	case "file":
		backend = store.NewFileBackend(filepath.Join(dataDir, "discoveries.json"))
	default:
		return nil, fmt.Errorf("unknown backend %q (want git or file)", backendName)
	}

	st := store.NewStore(backend, config)
	if err := st.Hydrate(ctx); err != nil {
		return nil, fmt.Errorf("loading persisted discoveries: %w", err)
	}
	return st, nil
}

// consoleSink prints session progress for interactive runs
type consoleSink struct{}

func (consoleSink) OnStatus(status string) {
	fmt.Printf("── %s\n", status)
}

func (consoleSink) OnProgress(domain, phase string) {
	logger := logging.GetCrawlLogger(domain, phase)
	logger.Debug().Msg("Crawl progress")
}

func (consoleSink) OnDiscovery(d *content.Discovery) {
	printDiscovery(d)
}

func (consoleSink) OnError(domain string, err error) {
	logger := logging.GetLogger("crawler")
	logger.Debug().Str("domain", domain).Err(err).Msg("Crawl step failed")
}

func (consoleSink) OnDone(stats crawler.SessionStats) {
	fmt.Printf("\nSession finished: %d domains crawled, %d discoveries (%.0f%% hit rate, avg quality %.0f)\n",
		stats.DomainsCrawled, stats.Discoveries, stats.SuccessRate()*100, stats.AverageQuality())
}

func printDiscovery(d *content.Discovery) {
	fmt.Printf("\n%s  [%s · %s · %s]\n", d.Domain, d.Tier(), d.Category, d.Sentiment)
	fmt.Printf("  %q\n", d.Quote)
	fmt.Printf("  %s\n", d.URL)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}
