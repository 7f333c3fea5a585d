package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"
	"github.com/studiowebux/restcore/internal/cli"
	"github.com/studiowebux/restcore/internal/config"
	"github.com/studiowebux/restcore/internal/executor"
	"go.uber.org/zap"
)

var (
	version = "0.1.0"
)

func main() {
	if err := rootCmd.Execute(); err != nil {
		fmt.Fprintf(os.Stderr, "Error: %v\n", err)
		os.Exit(1)
	}
}

var rootCmd = &cobra.Command{
	Use:   "restcore",
	Short: "Import and send API requests",
	Long: `restcore imports API requests from cURL commands and .http files into a
YAML collection, and sends stored requests with environment substitution,
Digest authentication and cancellation.

Examples:
  restcore import curl create-user.sh                  # Print a collection
  pbpaste | restcore import curl -                     # Read cURL from stdin
  restcore import http ./requests -r --depth 2 -o api.yaml
  restcore send api.yaml --name "GET /users" --env dev
  restcore send api.yaml                               # Pick a request interactively`,
	Version:       version,
	SilenceUsage:  true,
	SilenceErrors: true,
	PersistentPreRunE: func(cmd *cobra.Command, args []string) error {
		return setup()
	},
	PersistentPostRun: func(cmd *cobra.Command, args []string) {
		if logger != nil {
			_ = logger.Sync()
		}
	},
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import requests into a YAML collection",
}

var importCurlCmd = &cobra.Command{
	Use:   "curl <file|dir|->",
	Short: "Import cURL commands",
	Long: `Import a cURL command from a file, from every file of a directory (-r),
or from stdin when the path is "-".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, cli.KindCurl, args[0])
	},
}

var importHTTPCmd = &cobra.Command{
	Use:   "http <file|dir|->",
	Short: "Import .http request blocks",
	Long: `Import the request blocks of an .http file, of every .http file of a
directory (-r), or of stdin when the path is "-".`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runImport(cmd, cli.KindHTTP, args[0])
	},
}

var sendCmd = &cobra.Command{
	Use:   "send <collection>",
	Short: "Send a request from a collection",
	Long: `Send one request of a collection. The collection is a YAML file path or
the name of a file in ~/.restcore/collections.`,
	Args: cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return runSend(cmd, args[0])
	},
}

var settingsCmd = &cobra.Command{
	Use:   "settings <collection> [key=value...]",
	Short: "Show or change the settings of a request",
	Long: `Show the settings of a request. Each key=value argument changes one
setting and the collection is saved, e.g.:

  restcore settings api.yaml --name "GET /users" timeout=5000 allow_redirects=false`,
	Args: cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		return cli.Settings(cli.SettingsOptions{
			CollectionPath: args[0],
			Name:           settingsName,
			Assignments:    args[1:],
		}, cmd.OutOrStdout())
	},
}

// Global flags
var (
	flagVerbose    bool
	flagConfigPath string
)

// Flags for import
var (
	importRecursive bool
	importDepth     int
	importOutput    string
)

// Flags for send
var (
	sendName   string
	sendEnv    string
	sendOutput string
	sendFull   bool
	sendSave   bool
	sendWrite  string
)

// Flags for settings
var settingsName string

var (
	cfg    config.Config
	logger *zap.Logger
)

func init() {
	rootCmd.PersistentFlags().BoolVarP(&flagVerbose, "verbose", "v", false, "Enable debug logging")
	rootCmd.PersistentFlags().StringVar(&flagConfigPath, "config", "", "Config file (default: .restcore.yaml or ~/.restcore/config.yaml)")

	for _, c := range []*cobra.Command{importCurlCmd, importHTTPCmd} {
		c.Flags().BoolVarP(&importRecursive, "recursive", "r", false, "Import every matching file under a directory")
		c.Flags().IntVar(&importDepth, "depth", -1, "Maximum directory depth with -r (-1 for unlimited)")
		c.Flags().StringVarP(&importOutput, "output", "o", "", "Write the collection to a file instead of stdout")
	}

	sendCmd.Flags().StringVarP(&sendName, "name", "n", "", "Name of the request to send")
	sendCmd.Flags().StringVarP(&sendEnv, "env", "e", "", "Environment name or JSON file")
	sendCmd.Flags().StringVarP(&sendOutput, "output", "o", "text", "Output format (text/json/yaml/body)")
	sendCmd.Flags().BoolVarP(&sendFull, "full", "f", false, "Show headers and cookies")
	sendCmd.Flags().BoolVar(&sendSave, "save", false, "Store the response in the collection")
	sendCmd.Flags().StringVarP(&sendWrite, "write", "w", "", "Write the formatted output to a file")

	settingsCmd.Flags().StringVarP(&settingsName, "name", "n", "", "Name of the request")

	importCmd.AddCommand(importCurlCmd)
	importCmd.AddCommand(importHTTPCmd)
	rootCmd.AddCommand(importCmd)
	rootCmd.AddCommand(sendCmd)
	rootCmd.AddCommand(settingsCmd)
}

// setup initializes the config directory, loads the config and builds the logger
func setup() error {
	if err := config.Initialize(); err != nil {
		return fmt.Errorf("failed to initialize config: %w", err)
	}

	path := flagConfigPath
	if path == "" {
		path = config.GetConfigFilePath()
	}

	var err error
	cfg, err = config.Load(path)
	if err != nil {
		return err
	}

	logger, err = cfg.NewLogger(flagVerbose)
	if err != nil {
		return fmt.Errorf("failed to create logger: %w", err)
	}
	logger.Debug("configuration loaded", zap.String("path", path))
	return nil
}

// runImport parses requests and prints or saves the collection
func runImport(cmd *cobra.Command, kind, path string) error {
	opts := cli.ImportOptions{
		Kind:       kind,
		Path:       path,
		Recursive:  importRecursive,
		Depth:      importDepth,
		OutputPath: importOutput,
		Stdin:      cmd.InOrStdin(),
	}

	c, err := cli.Import(opts, cmd.OutOrStdout())
	if err != nil {
		return err
	}

	logger.Debug("requests imported",
		zap.String("kind", kind),
		zap.String("path", path),
		zap.Int("count", len(c.Requests)),
	)
	if importOutput != "" {
		fmt.Fprintf(cmd.ErrOrStderr(), "Saved %d request(s) to %s\n", len(c.Requests), importOutput)
	}
	return nil
}

// runSend sends one request of a collection
func runSend(cmd *cobra.Command, collectionPath string) error {
	httpProxy, httpsProxy, err := cfg.ProxyURLs()
	if err != nil {
		return err
	}

	exec := executor.New(
		executor.WithLogger(logger),
		executor.WithProxy(httpProxy, httpsProxy),
		executor.WithDefaultTimeout(cfg.DefaultTimeout()),
	)

	opts := cli.RunOptions{
		CollectionPath: collectionPath,
		Name:           sendName,
		Env:            sendEnv,
		OutputFormat:   sendOutput,
		ShowFull:       sendFull,
		Save:           sendSave,
		SavePath:       sendWrite,
	}

	err = cli.Run(cmd.Context(), exec, opts, cmd.OutOrStdout())
	if errors.Is(err, cli.ErrSelectionCancelled) {
		return nil
	}
	return err
}
