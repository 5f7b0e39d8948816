// Command lemmatizer serves English lemmatization as a JSON REST API.
//
// Endpoints:
//
//	GET  /healthz     {"status":"ok","model":"...","loaded":true}
//	POST /lemmatize   body: {"text":"..."}
//	GET  /metrics     Prometheus metrics
//
// The model is loaded once at startup; if it is not installed it is
// downloaded once and loaded again. A model that still fails to load
// stops the process.
package main

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/cockroachdb/errors"
	"github.com/schollz/progressbar/v3"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/cours-de-latin/lemmatizer"
)

var cfgFile string

func main() {
	if err := newRootCmd().Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		for _, hint := range errors.GetAllHints(err) {
			fmt.Fprintf(os.Stderr, "Hint: %s\n", hint)
		}
		os.Exit(1)
	}
}

func newRootCmd() *cobra.Command {
	root := &cobra.Command{
		Use:   "lemmatizer",
		Short: "Reduce English text to dictionary base forms",
		Long: `lemmatizer reduces text to lemmas while keeping the original whitespace.

Example usage:
  lemmatizer serve                         # Serve the HTTP API on :8000
  lemmatizer download en_core_web_sm       # Install a model package
  lemmatizer lemmatize "The cats were running"`,
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.PersistentFlags().StringVar(&cfgFile, "config", "", "config file (YAML)")
	root.PersistentFlags().String("model", "", "model name or annotation service URL (env LEMMATIZER_MODEL)")
	root.PersistentFlags().String("models-dir", "", "directory holding model packages")
	root.PersistentFlags().String("model-url", "", "base URL model packages are downloaded from")
	root.PersistentFlags().String("log-level", "", "log level: debug, info, warn, error")

	root.AddCommand(newServeCmd(), newDownloadCmd(), newModelsCmd(), newLemmatizeCmd())
	return root
}

func newServeCmd() *cobra.Command {
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Load the model and serve the HTTP API",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			log, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			ctx, stop := signal.NotifyContext(cmd.Context(), syscall.SIGINT, syscall.SIGTERM)
			defer stop()

			h, err := loadModel(ctx, cfg, log)
			if err != nil {
				return err
			}
			srv := newServer(lemmatizer.NewService(h), cfg.Server, cfg.CORS, log)
			return srv.run(ctx)
		},
	}
	cmd.Flags().String("addr", "", "listen address (default :8000)")
	return cmd
}

func newDownloadCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "download [model]",
		Short: "Download and install a model package",
		Args:  cobra.MaximumNArgs(1),
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			name := cfg.Model
			if len(args) == 1 {
				name = args[0]
			}
			if lemmatizer.IsRemote(name) {
				return errors.Newf("%s is an annotation service, nothing to download", name)
			}
			f := lemmatizer.NewFetcher(cfg.ModelURL, cfg.ModelsDir, cfg.FetchTimeout)
			f.Progress = func(size int64) io.Writer {
				return progressbar.DefaultBytes(size, "downloading "+name)
			}
			fmt.Printf("Fetching %s\n", f.URL(name))
			if err := f.Fetch(cmd.Context(), name); err != nil {
				return err
			}
			m, err := lemmatizer.OpenRuleModel(modelPath(cfg, name))
			if err != nil {
				return errors.Wrap(err, "downloaded package does not load")
			}
			fmt.Printf("Installed %s %s into %s\n", m.Name(), m.Meta().Version, cfg.ModelsDir)
			return nil
		},
	}
}

func newModelsCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "models",
		Short: "List installed model packages",
		Args:  cobra.NoArgs,
		RunE: func(cmd *cobra.Command, _ []string) error {
			cfg, err := loadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			names, err := lemmatizer.InstalledModels(cfg.ModelsDir)
			if err != nil {
				return err
			}
			if len(names) == 0 {
				fmt.Printf("No models installed in %s\n", cfg.ModelsDir)
				return nil
			}
			for _, n := range names {
				marker := " "
				if n == cfg.Model {
					marker = "*"
				}
				fmt.Printf("%s %s\n", marker, n)
			}
			return nil
		},
	}
}

func newLemmatizeCmd() *cobra.Command {
	var asJSON bool
	cmd := &cobra.Command{
		Use:   "lemmatize [text...]",
		Short: "Lemmatize text given as arguments or on stdin",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := loadConfig(cfgFile, cmd.Flags())
			if err != nil {
				return err
			}
			cfg.Log.Level = "warn"
			log, err := newLogger(cfg.Log)
			if err != nil {
				return err
			}
			defer log.Sync() //nolint:errcheck

			text := strings.Join(args, " ")
			if len(args) == 0 {
				b, err := io.ReadAll(cmd.InOrStdin())
				if err != nil {
					return errors.Wrap(err, "read stdin")
				}
				text = string(b)
			}

			h, err := loadModel(cmd.Context(), cfg, log)
			if err != nil {
				return err
			}
			res, err := lemmatizer.NewService(h).Lemmatize(cmd.Context(), text)
			if err != nil {
				return err
			}
			if !asJSON {
				fmt.Fprintln(cmd.OutOrStdout(), res.Lemmatized)
				return nil
			}
			enc := json.NewEncoder(cmd.OutOrStdout())
			enc.SetIndent("", "  ")
			return enc.Encode(lemmatizeResponse{
				Lemmatized: res.Lemmatized,
				Tokens:     toTokensJSON(res.Tokens),
			})
		},
	}
	cmd.Flags().BoolVar(&asJSON, "json", false, "print the response JSON including tokens")
	return cmd
}

// loadModel runs the startup load of the configured model.
func loadModel(ctx context.Context, cfg *Config, log *zap.Logger) (*lemmatizer.Handle, error) {
	h := lemmatizer.NewHandle(cfg.Model)
	fetcher := lemmatizer.NewFetcher(cfg.ModelURL, cfg.ModelsDir, cfg.FetchTimeout)
	loader := lemmatizer.NewLoader(cfg.ModelsDir, fetcher, cfg.FetchTimeout, log)
	if err := loader.Load(ctx, h); err != nil {
		return nil, err
	}
	return h, nil
}

func modelPath(cfg *Config, name string) string {
	return filepath.Join(cfg.ModelsDir, name)
}
