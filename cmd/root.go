package cmd

import (
	"context"
	"errors"
	"fmt"
	"io"

	"github.com/charmbracelet/log"
	"github.com/spf13/cobra"
	"github.com/spf13/viper"

	"github.com/mark3labs/gemforward/internal/config"
	"github.com/mark3labs/gemforward/internal/forwarder"
	"github.com/mark3labs/gemforward/internal/gemini"
	"github.com/mark3labs/gemforward/internal/output"
	"github.com/mark3labs/gemforward/internal/prompt"
)

var errMissingPrompt = errors.New("one of --prompt or --prompt-file is required")

// options holds the flags that are not routed through viper.
type options struct {
	configFile string
	prompt     string
	promptFile string
	test       bool
	listModels bool
}

// runtime bundles what every command needs once flags are parsed.
type runtime struct {
	cfg    *config.Config
	logger *log.Logger
	out    *output.Writer
}

// GetRootCommand returns the root command wired to the Gemini API, with the
// version set. It is called from main.go.
func GetRootCommand(v string) *cobra.Command {
	return NewRootCommand(v, gemini.Dial)
}

// NewRootCommand builds the command tree. dial constructs the generation
// client, so tests can substitute a stub.
func NewRootCommand(version string, dial forwarder.Dialer) *cobra.Command {
	var opts options
	v := config.New()

	root := &cobra.Command{
		Use:   "gemforward",
		Short: "Forward a prompt to Gemini and print the reply as JSON",
		Long: `gemforward sends one prompt to the Gemini API and prints a single JSON
object describing the result on standard output.

The prompt is read from --prompt or --prompt-file and optionally wrapped in a
template (see 'gemforward templates'). Failures, including a missing API key
or an unreadable prompt file, are reported as {"success": false, "error": ...}.

Examples:
  gemforward --prompt "Reverse a linked list" --template solution --language go
  gemforward --prompt-file problem.txt --pretty
  gemforward --test
  gemforward --list-models`,
		Version:       version,
		Args:          cobra.NoArgs,
		SilenceUsage:  true,
		SilenceErrors: true,
		RunE: func(cmd *cobra.Command, _ []string) error {
			rt, res := setup(cmd, v, &opts)
			if res == nil {
				r := runForward(cmd.Context(), rt, dial, &opts)
				res = &r
			}
			return rt.out.Write(res)
		},
	}
	root.SetVersionTemplate("gemforward {{.Version}}\n")

	flags := root.Flags()
	flags.StringVarP(&opts.prompt, "prompt", "p", "", "prompt text to send to Gemini")
	flags.StringVar(&opts.promptFile, "prompt-file", "", "file containing the prompt text")
	flags.BoolVar(&opts.test, "test", false, "send a fixed greeting to check connectivity")
	flags.BoolVar(&opts.listModels, "list-models", false, "list models that support content generation")
	root.MarkFlagsMutuallyExclusive("prompt", "prompt-file")
	root.MarkFlagsMutuallyExclusive("test", "list-models")

	pflags := root.PersistentFlags()
	pflags.StringVar(&opts.configFile, "config", "", "config file (default is ./.gemforward.yml or $HOME/.gemforward.yml)")
	pflags.String("api-key", "", "Gemini API key (overrides GEMINI_API_KEY)")
	pflags.StringP("model", "m", gemini.DefaultModel, "model to use")
	pflags.String("base-url", "", "base URL for the Gemini API")
	pflags.String("language", forwarder.DefaultLanguage, "target programming language label for templates")
	pflags.StringP("template", "t", prompt.DefaultTemplate, "prompt template to wrap the prompt in")
	pflags.String("template-file", "", "load the prompt template from a file (.txt, .md, .yaml)")
	pflags.Float32("temperature", gemini.DefaultTemperature, "controls randomness in responses (0.0-2.0)")
	pflags.Float32("top-p", gemini.DefaultTopP, "controls diversity via nucleus sampling (0.0-1.0)")
	pflags.Float32("top-k", gemini.DefaultTopK, "limits sampling to the top K tokens")
	pflags.Int32("max-tokens", gemini.DefaultMaxOutputTokens, "maximum number of tokens in the response")
	pflags.Duration("timeout", 0, "bound the remote call (0 keeps the client default)")
	pflags.Bool("pretty", false, "pretty-print the JSON result (default when writing to a terminal)")
	pflags.Bool("debug", false, "enable debug logging on stderr")

	for _, name := range []string{
		"api-key", "model", "base-url", "language", "template", "template-file",
		"temperature", "top-p", "top-k", "max-tokens", "timeout", "pretty", "debug",
	} {
		_ = v.BindPFlag(name, pflags.Lookup(name))
	}

	root.AddCommand(newTemplatesCommand(v, &opts))
	return root
}

// setup loads configuration and builds the logger and writer. A non-nil
// Result means configuration failed and should be reported as is.
func setup(cmd *cobra.Command, v *viper.Viper, opts *options) (*runtime, *forwarder.Result) {
	out := cmd.OutOrStdout()
	rt := &runtime{
		logger: newLogger(cmd.ErrOrStderr()),
		out:    output.NewWriter(out, output.IsTerminal(out)),
	}

	path, err := config.Init(v, opts.configFile)
	if err != nil {
		res := forwarder.Failure(fmt.Errorf("%w: %w", forwarder.ErrConfiguration, err))
		return rt, &res
	}
	cfg, err := config.Load(v)
	if err != nil {
		res := forwarder.Failure(fmt.Errorf("%w: %w", forwarder.ErrConfiguration, err))
		return rt, &res
	}
	rt.cfg = cfg

	if cfg.Debug {
		rt.logger.SetLevel(log.DebugLevel)
	}
	if cfg.Pretty {
		rt.out = output.NewWriter(out, true)
	}
	if path != "" {
		rt.logger.Debug("loaded config", "path", path)
	}
	return rt, nil
}

// runForward dispatches to the probe or the generation operation.
func runForward(ctx context.Context, rt *runtime, dial forwarder.Dialer, opts *options) forwarder.Result {
	catalog, template, err := rt.cfg.Catalog()
	if err != nil {
		return forwarder.Failure(fmt.Errorf("%w: %w", forwarder.ErrConfiguration, err))
	}

	fw := forwarder.New(forwarder.Options{
		Client:  clientConfig(rt.cfg),
		Dial:    dial,
		Catalog: catalog,
		Logger:  rt.logger,
	})

	if rt.cfg.Timeout > 0 {
		var cancel context.CancelFunc
		ctx, cancel = context.WithTimeout(ctx, rt.cfg.Timeout)
		defer cancel()
	}

	switch {
	case opts.test:
		return fw.TestConnection(ctx)
	case opts.listModels:
		return fw.ListModels(ctx)
	}

	text, err := promptText(opts)
	if err != nil {
		return forwarder.Failure(err)
	}
	return fw.Generate(ctx, forwarder.Request{
		Prompt:   text,
		Language: rt.cfg.Language,
		Template: template,
	})
}

func promptText(opts *options) (string, error) {
	switch {
	case opts.prompt != "":
		return opts.prompt, nil
	case opts.promptFile != "":
		return forwarder.ReadPrompt(opts.promptFile)
	default:
		return "", fmt.Errorf("%w: %w", forwarder.ErrConfiguration, errMissingPrompt)
	}
}

func clientConfig(cfg *config.Config) forwarder.ClientConfig {
	temperature := cfg.Temperature
	return forwarder.ClientConfig{
		APIKey:          cfg.APIKey,
		Model:           cfg.Model,
		BaseURL:         cfg.BaseURL,
		Temperature:     &temperature,
		TopP:            cfg.TopP,
		TopK:            cfg.TopK,
		MaxOutputTokens: cfg.MaxTokens,
	}
}

func newLogger(w io.Writer) *log.Logger {
	return log.NewWithOptions(w, log.Options{
		Level:           log.WarnLevel,
		Prefix:          "gemforward",
		ReportTimestamp: true,
	})
}
