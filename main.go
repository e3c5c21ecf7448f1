/* main.go
 * Entry point for the tournament admin tools. For details about the configuration see `.env.example`
 * Usage: go run . web | bot | fetch <resource> [page] [limit] [search]
 */

package main

import (
	"context"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strconv"
	"strings"
	"syscall"
	"time"

	"torneos-admin/api/admin"
	"torneos-admin/api/resource"
	"torneos-admin/api/store"
	"torneos-admin/bot"
	"torneos-admin/config"
	"torneos-admin/logging"
	"torneos-admin/web"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

// options shared by every subcommand
type options struct {
	envFile string
	debug   bool
}

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintln(os.Stderr, err)
		os.Exit(1)
	}
}

// newRootCmd builds the command tree. Kept separate from main so the tree can be inspected in tests
func newRootCmd() *cobra.Command {
	opts := &options{}

	root := &cobra.Command{
		Use:           "torneos-admin",
		Short:         "Administration tools for the tournament platform",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&opts.envFile, "env", "", "env file to load before reading the environment (default .env)")
	root.PersistentFlags().BoolVar(&opts.debug, "debug", false, "enable debug logging, overrides DEBUG")

	root.AddCommand(
		&cobra.Command{
			Use:   "web",
			Short: "Serve the web admin console",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runWeb(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "bot",
			Short: "Run the Discord admin bot",
			Args:  cobra.NoArgs,
			RunE: func(cmd *cobra.Command, args []string) error {
				return runBot(cmd.Context(), opts)
			},
		},
		&cobra.Command{
			Use:   "fetch <resource> [page] [limit] [search]",
			Short: "Print one page of a resource",
			Args:  cobra.RangeArgs(1, 4),
			RunE: func(cmd *cobra.Command, args []string) error {
				q, err := parseQuery(args[1:])
				if err != nil {
					return err
				}
				return runFetch(cmd.Context(), opts, args[0], q, cmd.OutOrStdout())
			},
		},
	)
	return root
}

// parseQuery reads the optional page, limit and search arguments of the fetch command
// Preconditions: args holds at most three values, page and limit must be positive integers when given
// Postconditions: Returns the query, or an error naming the argument that could not be parsed
func parseQuery(args []string) (resource.Query, error) {
	q := resource.Query{}
	if len(args) > 0 {
		page, err := strconv.Atoi(args[0])
		if err != nil || page < 1 {
			return q, fmt.Errorf("invalid page %q, expected a positive integer", args[0])
		}
		q.Page = page
	}
	if len(args) > 1 {
		limit, err := strconv.Atoi(args[1])
		if err != nil || limit < 1 {
			return q, fmt.Errorf("invalid limit %q, expected a positive integer", args[1])
		}
		q.Limit = limit
	}
	if len(args) > 2 {
		q.Search = strings.TrimSpace(args[2])
	}
	return q, nil
}

// runtime bundles what every subcommand needs once the environment has been read
type runtime struct {
	cfg    config.Config
	logger *zap.Logger
	api    *admin.API
	store  *store.Store
}

// setup loads the config, builds the logger, connects to Mongo when configured and creates the admin api
func setup(ctx context.Context, opts *options) (*runtime, error) {
	cfg, err := config.Load(opts.envFile)
	if err != nil {
		return nil, err
	}
	if opts.debug {
		cfg.Debug = true
	}

	logger, err := logging.New(cfg.Debug)
	if err != nil {
		return nil, err
	}

	rt := &runtime{cfg: cfg, logger: logger}

	// a nil *store.Store inside the interface would not compare equal to nil
	var st store.Interface
	if cfg.MongoURI != "" {
		rt.store, err = store.NewStore(ctx, cfg.MongoDB, cfg.MongoURI, cfg.SnapshotTTL)
		if err != nil {
			return nil, fmt.Errorf("error connecting to mongo: %w", err)
		}
		st = rt.store
	} else {
		logger.Info("MONGO_URI not set, session and snapshots will not be persisted")
	}

	rt.api, err = admin.NewAPI(ctx, cfg, st, logger)
	if err != nil {
		rt.close()
		return nil, err
	}
	return rt, nil
}

// close releases the api and the logger
func (rt *runtime) close() {
	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Second)
	defer cancel()

	if rt.api != nil {
		if err := rt.api.Close(ctx); err != nil {
			rt.logger.Warn("error closing api", zap.Error(err))
		}
	} else if rt.store != nil {
		if err := rt.store.Close(ctx); err != nil {
			rt.logger.Warn("error closing store", zap.Error(err))
		}
	}
	_ = rt.logger.Sync()
}

func signalContext(parent context.Context) (context.Context, context.CancelFunc) {
	if parent == nil {
		parent = context.Background()
	}
	return signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
}

func runWeb(parent context.Context, opts *options) error {
	ctx, stop := signalContext(parent)
	defer stop()

	rt, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	return web.Start(ctx, web.Config{
		Addr:   rt.cfg.HTTPAddr,
		API:    rt.api,
		Logger: rt.logger,
	})
}

func runBot(parent context.Context, opts *options) error {
	ctx, stop := signalContext(parent)
	defer stop()

	rt, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	if rt.cfg.DiscordToken == "" {
		return fmt.Errorf("DISCORD_TOKEN is required to run the bot")
	}
	b, err := bot.NewBot(rt.cfg.DiscordToken, rt.api, rt.cfg.AdminChannelID, rt.logger)
	if err != nil {
		return err
	}
	return b.Run(ctx)
}

func runFetch(parent context.Context, opts *options, name string, q resource.Query, out io.Writer) error {
	ctx, stop := signalContext(parent)
	defer stop()

	rt, err := setup(ctx, opts)
	if err != nil {
		return err
	}
	defer rt.close()

	if err := rt.api.Fetch(ctx, name, q); err != nil {
		return err
	}
	h, err := rt.api.Resource(name)
	if err != nil {
		return err
	}
	return printPage(out, h)
}

// printPage writes one "id<TAB>label" line per loaded record followed by the page summary
func printPage(out io.Writer, h resource.Handle) error {
	meta := h.Meta()
	for _, row := range h.Rows() {
		id, err := resource.KeyOf(row[h.KeyField()])
		if err != nil || id == 0 {
			continue
		}
		label, _ := h.LabelOf(id)
		if _, err := fmt.Fprintf(out, "%d\t%s\n", id, label); err != nil {
			return err
		}
	}
	_, err := fmt.Fprintf(out, "page %d, %d of %d %s\n", meta.Page, len(h.Rows()), meta.Total, h.Name())
	return err
}
