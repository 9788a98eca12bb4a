package main

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"os"
	"path/filepath"
	"time"

	"github.com/spf13/cobra"

	"chart-advisor/internal/logger"
	"chart-advisor/internal/store"
	"chart-advisor/internal/types"
	"chart-advisor/internal/uploads"
	"chart-advisor/internal/web"
)

const defaultConfigPath = "config.yaml"

var errAnalysisFailed = errors.New("analysis failed")

type options struct {
	configPath string
}

func newRootCmd() *cobra.Command {
	opts := &options{}

	rootCmd := &cobra.Command{
		Use:          "advisor",
		Short:        "Chart Advisor - LLM trading chart and market data analysis",
		SilenceUsage: true,
	}
	rootCmd.PersistentFlags().StringVar(&opts.configPath, "config", defaultConfigPath, "Configuration file path")

	rootCmd.AddCommand(newServeCmd(opts))
	rootCmd.AddCommand(newAnalyzeCmd(opts))
	rootCmd.AddCommand(newParseCmd(opts))
	rootCmd.AddCommand(newSymbolsCmd(opts))
	return rootCmd
}

func (o *options) load(cmd *cobra.Command) (*store.Config, error) {
	explicit := cmd.Flags().Changed("config")
	return loadConfig(cmd.Context(), o.configPath, explicit)
}

func newServeCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the web server",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			analyzer, err := initializeAnalyzer(ctx, cfg)
			if err != nil {
				return err
			}
			up, err := uploads.New(cfg.Server.UploadDir, cfg.MaxUploadBytes())
			if err != nil {
				return err
			}
			logger.Info(ctx, "Upload store ready", "dir", up.Dir(), "max_bytes", cfg.MaxUploadBytes())

			srv, err := web.New(web.Config{
				Addr:            cfg.Server.Addr,
				ReadTimeout:     time.Duration(cfg.Server.ReadTimeoutSeconds) * time.Second,
				WriteTimeout:    time.Duration(cfg.Server.WriteTimeoutSeconds) * time.Second,
				ShutdownTimeout: time.Duration(cfg.Server.ShutdownSeconds) * time.Second,
				MaxUploadBytes:  cfg.MaxUploadBytes(),
				CORSOrigins:     cfg.Server.CORSOrigins,
				ReleaseMode:     !logger.IsDebugEnabled(),
			}, analyzer, up)
			if err != nil {
				return err
			}
			return srv.Run(ctx)
		},
	}
}

func newAnalyzeCmd(opts *options) *cobra.Command {
	cmd := &cobra.Command{
		Use:   "analyze",
		Short: "Run a one-shot analysis and print the result as JSON",
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "image <path>",
		Short: "Analyze a chart screenshot",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			data, err := readImage(args[0], cfg.MaxUploadBytes())
			if err != nil {
				return err
			}
			mime, err := uploads.Sniff(data)
			if err != nil {
				return err
			}
			return runAnalysis(cmd, cfg, types.AnalysisRequest{
				Mode:     types.ModeImage,
				Filename: filepath.Base(args[0]),
				Image:    data,
				MimeType: mime,
			})
		},
	})

	cmd.AddCommand(&cobra.Command{
		Use:   "symbol <KEY>",
		Short: "Analyze live market data for a symbol such as EURUSD or BTCUSD",
		Args:  cobra.ExactArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			return runAnalysis(cmd, cfg, types.AnalysisRequest{
				Mode:   types.ModeAPI,
				Symbol: args[0],
			})
		},
	})

	return cmd
}

func newParseCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "parse [file]",
		Short: "Parse a raw LLM reply from a file or stdin",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			p, err := initializeParser(cfg)
			if err != nil {
				return err
			}

			var in io.Reader = cmd.InOrStdin()
			if len(args) == 1 && args[0] != "-" {
				f, err := os.Open(args[0])
				if err != nil {
					return err
				}
				defer f.Close()
				in = f
			}
			raw, err := io.ReadAll(in)
			if err != nil {
				return err
			}
			return writeJSON(cmd.OutOrStdout(), p.Parse(string(raw)))
		},
	}
}

func newSymbolsCmd(opts *options) *cobra.Command {
	return &cobra.Command{
		Use:   "symbols",
		Short: "List the configured symbol keys",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := opts.load(cmd)
			if err != nil {
				return err
			}
			for _, s := range cfg.Symbols {
				fmt.Fprintln(cmd.OutOrStdout(), s)
			}
			return nil
		},
	}
}

func runAnalysis(cmd *cobra.Command, cfg *store.Config, req types.AnalysisRequest) error {
	ctx := cmd.Context()
	analyzer, err := initializeAnalyzer(ctx, cfg)
	if err != nil {
		return err
	}

	out := analyzer.Analyze(ctx, req)
	if err := writeJSON(cmd.OutOrStdout(), out); err != nil {
		return err
	}
	if out.Error != "" {
		return errAnalysisFailed
	}
	return nil
}

func readImage(path string, limit int64) ([]byte, error) {
	f, err := os.Open(path)
	if err != nil {
		return nil, err
	}
	defer f.Close()

	data, err := io.ReadAll(io.LimitReader(f, limit+1))
	if err != nil {
		return nil, err
	}
	if int64(len(data)) > limit {
		return nil, uploads.ErrTooLarge
	}
	return data, nil
}

func writeJSON(w io.Writer, v any) error {
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}
