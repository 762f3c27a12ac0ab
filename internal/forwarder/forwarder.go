// Package forwarder turns one textual request into one reply from a remote
// Gemini model. Every public operation returns a Result and never lets an
// error or panic from the remote client escape.
package forwarder

import (
	"context"
	"fmt"
	"io"
	"strings"

	"github.com/charmbracelet/log"

	"github.com/mark3labs/gemforward/internal/prompt"
)

// DefaultLanguage is the target-language label used when none is given.
const DefaultLanguage = "javascript"

// ConnectionProbe is the prompt sent by TestConnection.
const ConnectionProbe = "say hello"

// Request is one generation request as read from the command line.
type Request struct {
	Prompt   string
	Language string
	// Template names a catalog entry. Empty selects prompt.DefaultTemplate.
	Template string
}

// Options configures a Forwarder.
type Options struct {
	// Client configuration handed to Dial. Client.APIKey must be resolved
	// by the caller; an empty key is reported as a configuration failure.
	Client ClientConfig

	// Dial constructs the remote client. Required.
	Dial Dialer

	// Catalog holds the available templates. Defaults to
	// prompt.DefaultCatalog().
	Catalog *prompt.Catalog

	// Logger receives diagnostics. Defaults to a discarding logger.
	Logger *log.Logger
}

// Forwarder issues single generation calls. It holds only immutable
// configuration, so repeated calls with the same input are independent.
type Forwarder struct {
	cfg     ClientConfig
	dial    Dialer
	catalog *prompt.Catalog
	logger  *log.Logger
}

// New creates a Forwarder from opts.
func New(opts Options) *Forwarder {
	f := &Forwarder{
		cfg:     opts.Client,
		dial:    opts.Dial,
		catalog: opts.Catalog,
		logger:  opts.Logger,
	}
	if f.catalog == nil {
		f.catalog = prompt.DefaultCatalog()
	}
	if f.logger == nil {
		f.logger = log.New(io.Discard)
	}
	return f
}

// Generate expands req through its template and forwards the result to the
// remote model exactly once.
func (f *Forwarder) Generate(ctx context.Context, req Request) (res Result) {
	defer f.recoverInto(&res)

	if strings.TrimSpace(req.Prompt) == "" {
		return Failure(fmt.Errorf("%w: prompt is empty", ErrConfiguration))
	}
	tpl, err := f.catalog.Get(req.Template)
	if err != nil {
		return Failure(fmt.Errorf("%w: %w", ErrConfiguration, err))
	}
	language := req.Language
	if language == "" {
		language = DefaultLanguage
	}

	text, err := tpl.ExpandStrict(prompt.Values(req.Prompt, language))
	if err != nil {
		return Failure(fmt.Errorf("%w: template %q: %w", ErrConfiguration, tpl.Name, err))
	}
	f.logger.Debug("forwarding prompt", "template", tpl.Name, "language", language, "chars", len(text))

	reply, err := f.generate(ctx, text)
	if err != nil {
		return Failure(err)
	}
	return Success(reply.Text, f.modelOf(reply), reply.Usage)
}

// TestConnection sends ConnectionProbe and reports the first line of the
// reply.
func (f *Forwarder) TestConnection(ctx context.Context) (res Result) {
	defer f.recoverInto(&res)

	reply, err := f.generate(ctx, ConnectionProbe)
	if err != nil {
		return Failure(err)
	}
	return Success(firstLine(reply.Text), f.modelOf(reply), reply.Usage)
}

// ListModels returns the names of the models that support content
// generation, in the order the service listed them.
func (f *Forwarder) ListModels(ctx context.Context) (res Result) {
	defer f.recoverInto(&res)

	client, err := f.connect(ctx)
	if err != nil {
		return Failure(err)
	}
	models, err := client.ListModels(ctx)
	if err != nil {
		f.logger.Error("listing models failed", "err", err)
		return Failure(fmt.Errorf("%w: %w", ErrRemote, err))
	}

	names := make([]string, 0, len(models))
	for _, m := range models {
		if m.Supports(GenerateContentAction) {
			names = append(names, m.Name)
		}
	}
	f.logger.Debug("listed models", "total", len(models), "generative", len(names))
	return Models(names)
}

// generate performs the single remote call shared by Generate and
// TestConnection.
func (f *Forwarder) generate(ctx context.Context, text string) (*Reply, error) {
	client, err := f.connect(ctx)
	if err != nil {
		return nil, err
	}
	reply, err := client.Generate(ctx, text)
	if err != nil {
		f.logger.Error("gemini request failed", "model", f.cfg.Model, "err", err)
		return nil, fmt.Errorf("%w: %w", ErrRemote, err)
	}
	if reply == nil || reply.Text == "" {
		f.logger.Warn("gemini returned no text", "model", f.cfg.Model)
		return nil, ErrEmptyReply
	}
	return reply, nil
}

// connect validates the configuration and dials the client. A missing API
// key fails here, before any network activity.
func (f *Forwarder) connect(ctx context.Context) (Client, error) {
	if f.cfg.APIKey == "" {
		return nil, fmt.Errorf("%w: GEMINI_API_KEY environment variable not set (or pass --api-key)", ErrConfiguration)
	}
	if f.dial == nil {
		return nil, fmt.Errorf("%w: no client dialer configured", ErrConfiguration)
	}
	client, err := f.dial(ctx, f.cfg)
	if err != nil {
		f.logger.Error("creating gemini client failed", "err", err)
		return nil, fmt.Errorf("%w: %w", ErrRemote, err)
	}
	return client, nil
}

func (f *Forwarder) modelOf(reply *Reply) string {
	if reply.Model != "" {
		return reply.Model
	}
	return f.cfg.Model
}

// recoverInto converts a panic raised by the client into a failed result.
func (f *Forwarder) recoverInto(res *Result) {
	if r := recover(); r != nil {
		f.logger.Error("gemini client panicked", "panic", r)
		*res = Failure(fmt.Errorf("%w: %v", ErrRemote, r))
	}
}
