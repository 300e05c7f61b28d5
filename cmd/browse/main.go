// Command browse is a terminal client for the ExamAce Vault API
package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"
	"time"

	"github.com/google/uuid"
	"github.com/rs/zerolog"
	"github.com/spf13/cobra"

	"github.com/sahilchouksey/examace-vault/catalog"
	"github.com/sahilchouksey/examace-vault/client"
	"github.com/sahilchouksey/examace-vault/navigator"
	"github.com/sahilchouksey/examace-vault/resources"
	"github.com/sahilchouksey/examace-vault/search"
	"github.com/sahilchouksey/examace-vault/utils"
)

type options struct {
	apiURL   string
	timeout  time.Duration
	logFile  string
	logLevel string
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	if err := newRootCmd().ExecuteContext(ctx); err != nil {
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:          "browse",
		Short:        "Browse universities, degrees, semesters and exam papers",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return runTUI(cmd.Context(), opts)
		},
	}

	defaultURL := os.Getenv("EXAMACE_API_URL")
	if defaultURL == "" {
		defaultURL = client.DefaultBaseURL
	}
	root.PersistentFlags().StringVar(&opts.apiURL, "api", defaultURL, "API base URL (env EXAMACE_API_URL)")
	root.PersistentFlags().DurationVar(&opts.timeout, "timeout", client.DefaultTimeout, "request timeout")
	root.PersistentFlags().StringVar(&opts.logFile, "log-file", "", "write diagnostics to this file")
	root.PersistentFlags().StringVar(&opts.logLevel, "log-level", "info", "log level")

	root.AddCommand(
		&cobra.Command{
			Use:   "tui",
			Short: "Interactive catalog browser (default)",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runTUI(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "ls [route]",
			Short: "Print the page at a route, e.g. /universities/<id>",
			Args:  cobra.MaximumNArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				path := "/universities"
				if len(args) == 1 {
					path = args[0]
				}
				return runList(cmd.Context(), cmd.OutOrStdout(), opts, path)
			},
		},
		&cobra.Command{
			Use:   "search <query>",
			Short: "Search published resources; an empty query lists recent ones",
			Args:  cobra.ArbitraryArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSearch(cmd.Context(), cmd.OutOrStdout(), opts, strings.Join(args, " "))
			},
		},
		&cobra.Command{
			Use:   "download <resource-id>",
			Short: "Record a download and print the file URL",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runDownload(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
			},
		},
		&cobra.Command{
			Use:   "subscribe <email>",
			Short: "Subscribe to new paper announcements",
			Args:  cobra.ExactArgs(1),
			RunE: func(cmd *cobra.Command, args []string) error {
				return runSubscribe(cmd.Context(), cmd.OutOrStdout(), opts, args[0])
			},
		},
	)
	return root
}

// backend bundles the API client with the navigator's loaders
type backend struct {
	api     *client.Client
	fetcher *catalog.Fetcher
	log     zerolog.Logger
	close   func() error
}

func (o *options) backend() (*backend, error) {
	log, closeLog, err := utils.NewLogger(utils.LoggerConfig{
		Level:  o.logLevel,
		Path:   o.logFile,
		Writer: io.Discard,
	})
	if err != nil {
		return nil, fmt.Errorf("open log file: %w", err)
	}
	limits := client.DefaultRateLimiterConfig()
	api := client.New(client.Config{BaseURL: o.apiURL, Timeout: o.timeout, RateLimit: &limits})
	return &backend{
		api:     api,
		fetcher: catalog.NewFetcher(api, log),
		log:     log,
		close:   closeLog,
	}, nil
}

func runList(ctx context.Context, out io.Writer, opts *options, path string) error {
	b, err := opts.backend()
	if err != nil {
		return err
	}
	defer b.close()

	route, err := navigator.ParseRoute(path)
	if err != nil {
		return err
	}
	m, err := navigator.New(ctx, b.fetcher, b.api, navigator.ViewHome)
	if err != nil {
		return err
	}
	if err := m.Restore(ctx, route); err != nil {
		return err
	}

	fmt.Fprint(out, renderPlain(m.Snapshot()))
	return nil
}

func runSearch(ctx context.Context, out io.Writer, opts *options, query string) error {
	b, err := opts.backend()
	if err != nil {
		return err
	}
	defer b.close()

	listings, err := search.Run(ctx, b.api, query)
	if err != nil {
		return err
	}
	if len(listings) == 0 {
		fmt.Fprintln(out, "No resources found")
		return nil
	}
	for _, l := range listings {
		fmt.Fprintln(out, listingLine(l))
	}
	return nil
}

func runDownload(ctx context.Context, out io.Writer, opts *options, rawID string) error {
	id, err := uuid.Parse(rawID)
	if err != nil {
		return fmt.Errorf("invalid resource id %q", rawID)
	}
	b, err := opts.backend()
	if err != nil {
		return err
	}
	defer b.close()

	ticket, err := b.api.Download(ctx, id)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s\n%s\n", ticket.Filename, ticket.URL)
	return nil
}

func runSubscribe(ctx context.Context, out io.Writer, opts *options, email string) error {
	b, err := opts.backend()
	if err != nil {
		return err
	}
	defer b.close()

	notice, err := b.api.Subscribe(ctx, email)
	if err != nil {
		return err
	}
	fmt.Fprintf(out, "%s %s\n", notice.Title, notice.Description)
	return nil
}

func listingLine(l resources.Listing) string {
	meta := []string{string(l.ResourceType)}
	if l.Year != "" {
		meta = append(meta, l.Year)
	}
	if l.Kind == resources.KindFile {
		meta = append(meta, fmt.Sprintf("%d downloads", l.DownloadCount))
	}
	return fmt.Sprintf("%s  %s  (%s)", l.ID, l.Title, strings.Join(meta, ", "))
}
