package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"strconv"
	"syscall"
	"time"

	"github.com/jmoiron/sqlx"
	"github.com/joho/godotenv"
	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"
	"github.com/spf13/cobra"

	"eventreport/archive"
	"eventreport/assembly"
	"eventreport/config"
	"eventreport/database"
	"eventreport/metrics"
	"eventreport/notify"
	"eventreport/reports"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "eventreport",
	Short: "Assemble event reports from a Word letterhead template",
	Long: `eventreport fills a .docx letterhead template with the details of a
recorded event: text placeholders, scanned letters, a photo gallery, the
attendance sheet and a feedback table.`,
	SilenceUsage: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		if err := godotenv.Load(); err != nil {
			log.Debug().Msg("No .env file found, using environment variables")
		}
		config.SetPath(configPath)
		cfg, err := config.LoadConfig()
		if err != nil {
			return fmt.Errorf("load config: %w", err)
		}
		setupLogger(cfg.LogLevel)
		return nil
	},
}

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the HTTP API",
	RunE:  runServe,
}

var generateCmd = &cobra.Command{
	Use:   "generate <event-id>",
	Short: "Generate the report for one event",
	Args:  cobra.ExactArgs(1),
	RunE:  runGenerate,
}

var batchCmd = &cobra.Command{
	Use:   "batch <event-id>...",
	Short: "Generate reports for several events concurrently",
	Long: `Generate reports for several events. Without arguments every stored
event is generated. The batch is refused when two events would write the
same output file.`,
	RunE: runBatch,
}

func init() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "./eventreport.yaml", "path to the YAML config file")
	rootCmd.AddCommand(serveCmd, generateCmd, batchCmd)
}

func main() {
	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func setupLogger(level string) {
	log.Logger = log.Output(zerolog.ConsoleWriter{Out: os.Stderr, TimeFormat: time.RFC3339})
	lvl, err := zerolog.ParseLevel(level)
	if err != nil || lvl == zerolog.NoLevel {
		lvl = zerolog.InfoLevel
	}
	zerolog.SetGlobalLevel(lvl)
}

// app holds everything a command needs.
type app struct {
	cfg      config.Config
	db       *sqlx.DB
	service  *reports.Service
	recorder *metrics.Recorder
	archive  *archive.MinIOArchive
	closers  []func() error
}

func newApp() (*app, error) {
	cfg := config.GetConfig()

	log.Info().Str("path", cfg.Database).Msg("Connecting to database...")
	db, err := database.Open(cfg.Database)
	if err != nil {
		return nil, err
	}
	if err := database.InitDatabase(db); err != nil {
		db.Close()
		return nil, fmt.Errorf("database initialization failed: %w", err)
	}
	a := &app{cfg: cfg, db: db, recorder: metrics.New()}
	a.closers = append(a.closers, db.Close)

	asm := assembly.New(engineOptions(cfg), log.Logger.With().Str("component", "assembly").Logger(), a.recorder)
	opts := []reports.Option{
		reports.WithConcurrency(cfg.Engine.BatchConcurrency),
		reports.WithSideEffectObserver(a.recorder),
	}

	if cfg.Archive.Endpoint != "" {
		log.Info().Str("endpoint", cfg.Archive.Endpoint).Msg("Initializing MinIO archive...")
		arch, err := archive.NewMinIOArchive(cfg.Archive.Endpoint, cfg.Archive.AccessKey,
			cfg.Archive.SecretKey, cfg.Archive.Bucket, cfg.Archive.UseSSL)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("initialize archive: %w", err)
		}
		a.archive = arch
		opts = append(opts, reports.WithArchiver(arch))
	}

	if cfg.Notify.URL != "" {
		log.Info().Str("exchange", cfg.Notify.Exchange).Msg("Initializing RabbitMQ publisher...")
		pub, err := notify.NewRabbitMQPublisher(cfg.Notify.URL, cfg.Notify.Exchange)
		if err != nil {
			a.Close()
			return nil, fmt.Errorf("initialize publisher: %w", err)
		}
		a.closers = append(a.closers, pub.Close)
		opts = append(opts, reports.WithPublisher(pub))
	}

	a.service = reports.NewService(db, asm, cfg.Paths.UploadRoot, opts...)
	return a, nil
}

func (a *app) Close() {
	for i := len(a.closers) - 1; i >= 0; i-- {
		if err := a.closers[i](); err != nil {
			log.Warn().Err(err).Msg("close failed")
		}
	}
}

func engineOptions(cfg config.Config) assembly.Options {
	opts := assembly.DefaultOptions()
	opts.TemplatePath = cfg.Paths.Template
	opts.OutputDir = cfg.Paths.OutputDir
	opts.LetterWidth = cfg.Engine.LetterWidth
	opts.GalleryWidth = cfg.Engine.GalleryWidth
	opts.AttendanceWidth = cfg.Engine.AttendanceWidth
	opts.LetterPageBreak = cfg.Engine.LetterPageBreak
	opts.BlankMissingMarkers = cfg.Engine.BlankMissingMarkers
	if cfg.Engine.PSO1Text != "" {
		opts.PSOTexts[0] = cfg.Engine.PSO1Text
	}
	if cfg.Engine.PSO2Text != "" {
		opts.PSOTexts[1] = cfg.Engine.PSO2Text
	}
	if len(cfg.Engine.POHeadings) > 0 {
		opts.POHeadings = cfg.Engine.POHeadings
	}
	return opts
}

func runServe(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	srv := &http.Server{
		Addr:         a.cfg.Server.Addr,
		Handler:      setupRouter(a),
		ReadTimeout:  a.cfg.Server.ReadTimeout,
		WriteTimeout: a.cfg.Server.WriteTimeout,
		IdleTimeout:  a.cfg.Server.IdleTimeout,
	}

	errCh := make(chan error, 1)
	go func() {
		log.Info().Str("address", srv.Addr).Msg("Server starting...")
		if err := srv.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			errCh <- err
		}
	}()

	quit := make(chan os.Signal, 1)
	signal.Notify(quit, syscall.SIGINT, syscall.SIGTERM)
	select {
	case err := <-errCh:
		return fmt.Errorf("server failed: %w", err)
	case <-quit:
	}

	log.Info().Msg("Shutting down server...")
	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	if err := srv.Shutdown(ctx); err != nil {
		return fmt.Errorf("server forced to shutdown: %w", err)
	}
	log.Info().Msg("Server exited gracefully")
	return nil
}

func runGenerate(cmd *cobra.Command, args []string) error {
	id, err := strconv.ParseInt(args[0], 10, 64)
	if err != nil {
		return fmt.Errorf("invalid event id %q", args[0])
	}
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	gen, err := a.service.Generate(cmd.Context(), id)
	if err != nil {
		return err
	}
	printStages(cmd, gen.Result)
	fmt.Fprintln(cmd.OutOrStdout(), gen.Report.FilePath)
	return nil
}

func runBatch(cmd *cobra.Command, args []string) error {
	a, err := newApp()
	if err != nil {
		return err
	}
	defer a.Close()

	var ids []int64
	for _, arg := range args {
		id, err := strconv.ParseInt(arg, 10, 64)
		if err != nil {
			return fmt.Errorf("invalid event id %q", arg)
		}
		ids = append(ids, id)
	}
	if len(ids) == 0 {
		if ids, err = database.ListEventIDs(a.db); err != nil {
			return err
		}
	}

	items, err := a.service.GenerateBatch(cmd.Context(), ids)
	if err != nil {
		return err
	}
	failed := 0
	for _, item := range items {
		if item.Err != nil {
			failed++
			fmt.Fprintf(cmd.OutOrStdout(), "%d\tFAILED\t%v\n", item.EventID, item.Err)
			continue
		}
		fmt.Fprintf(cmd.OutOrStdout(), "%d\t%s\n", item.EventID, item.Generated.Report.FilePath)
	}
	if failed > 0 {
		return fmt.Errorf("%d of %d reports failed", failed, len(items))
	}
	return nil
}

func printStages(cmd *cobra.Command, res *assembly.Result) {
	for _, st := range res.Stages {
		line := fmt.Sprintf("%-20s %-8s", st.Stage, st.Outcome)
		if st.Err != nil {
			line += " " + st.Err.Error()
		}
		fmt.Fprintln(cmd.OutOrStdout(), line)
	}
}
