// cmd/quadras/main.go
package main

import (
	"bufio"
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"

	"github.com/rs/zerolog"
	"github.com/rs/zerolog/log"

	"github.com/codr1/quadras/internal/api/authz"
	"github.com/codr1/quadras/internal/apiclient"
	"github.com/codr1/quadras/internal/booking"
	"github.com/codr1/quadras/internal/config"
	"github.com/codr1/quadras/internal/tokenstore"
)

const genericFailure = "could not reach the booking service, try again"

var (
	errUsage       = errors.New("usage")
	errNotLoggedIn = errors.New("not logged in, run: quadras login")
)

func setupLogger(verbose bool) {
	level := zerolog.WarnLevel
	if verbose {
		level = zerolog.DebugLevel
	}
	log.Logger = zerolog.New(zerolog.ConsoleWriter{Out: os.Stderr}).
		Level(level).
		With().Timestamp().Logger()
}

func main() {
	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt)
	defer stop()

	if err := run(ctx, os.Args[1:], os.Stdin, os.Stdout); err != nil {
		if !errors.Is(err, errUsage) {
			fmt.Fprintln(os.Stderr, "quadras:", errorMessage(err))
		}
		os.Exit(1)
	}
}

func run(ctx context.Context, args []string, in io.Reader, out io.Writer) error {
	global := flag.NewFlagSet("quadras", flag.ContinueOnError)
	global.SetOutput(out)
	configPath := global.String("config", "config/config.yaml", "path to the YAML configuration file")
	verbose := global.Bool("v", false, "log debug output to stderr")
	global.Usage = func() { printUsage(global) }
	if err := global.Parse(args); err != nil {
		if errors.Is(err, flag.ErrHelp) {
			return nil
		}
		return errUsage
	}
	setupLogger(*verbose)

	cfg, err := config.Load(*configPath)
	if err != nil {
		return fmt.Errorf("load configuration: %w", err)
	}
	return execute(ctx, cfg, global.Args(), in, out)
}

func printUsage(global *flag.FlagSet) {
	out := global.Output()
	fmt.Fprintln(out, "Usage: quadras [flags] <command> [command flags]")
	fmt.Fprintln(out, "\nCommands:")
	for _, cmd := range commands {
		fmt.Fprintf(out, "  %-13s %s\n", cmd.name, cmd.summary)
	}
	fmt.Fprintln(out, "\nFlags:")
	global.PrintDefaults()
}

// execute runs one command against an already loaded configuration.
func execute(ctx context.Context, cfg *config.Config, args []string, in io.Reader, out io.Writer) error {
	if len(args) == 0 {
		fmt.Fprintln(out, "Usage: quadras [flags] <command> [command flags]")
		return errUsage
	}
	cmd, ok := findCommand(args[0])
	if !ok {
		return fmt.Errorf("unknown command %q", args[0])
	}

	a, err := newApp(cfg, in, out)
	if err != nil {
		return err
	}
	logger := log.With().Str("command", cmd.name).Logger()
	logger.Debug().Str("api", cfg.API.BaseURL).Msg("Running command")
	return cmd.run(logger.WithContext(ctx), a, args[1:])
}

// app is what every command works with: the API client, the saved session
// and the terminal.
type app struct {
	cfg    *config.Config
	client *apiclient.Client
	tokens *tokenstore.Store
	in     *bufio.Reader
	out    io.Writer
}

func newApp(cfg *config.Config, in io.Reader, out io.Writer) (*app, error) {
	path := cfg.Session.TokenFile
	if path == "" {
		var err error
		if path, err = tokenstore.DefaultPath(); err != nil {
			return nil, err
		}
	}

	client, err := apiclient.New(apiclient.Config{
		BaseURL:           cfg.API.BaseURL,
		Timeout:           cfg.API.Timeout,
		RequestsPerSecond: cfg.API.RequestsPerSecond,
		Burst:             cfg.API.Burst,
	})
	if err != nil {
		return nil, fmt.Errorf("create api client: %w", err)
	}

	return &app{
		cfg:    cfg,
		client: client,
		tokens: tokenstore.New(path),
		in:     bufio.NewReader(in),
		out:    out,
	}, nil
}

// authenticate loads the session token, hands it to the client and returns
// the caller it identifies. QUADRAS_TOKEN wins over the saved token.
func (a *app) authenticate() (*authz.AuthUser, error) {
	token := a.cfg.Session.Token
	if token == "" {
		var err error
		if token, err = a.tokens.Load(); err != nil {
			return nil, err
		}
	}
	if token == "" {
		return nil, errNotLoggedIn
	}

	user, err := authz.UserFromToken(token)
	if err != nil {
		return nil, fmt.Errorf("saved session is invalid, log in again: %w", err)
	}
	a.client.SetToken(token)
	log.Debug().Int64("user_id", user.ID).Str("tipo", user.Type).Msg("Session loaded")
	return user, nil
}

func (a *app) prompt(label string) (string, error) {
	fmt.Fprint(a.out, label)
	line, err := a.in.ReadString('\n')
	if err != nil && !errors.Is(err, io.EOF) {
		return "", fmt.Errorf("read input: %w", err)
	}
	return strings.TrimSpace(line), nil
}

// confirm asks a yes/no question; anything but yes is no.
func (a *app) confirm(question string) (bool, error) {
	answer, err := a.prompt(question + " [y/N] ")
	if err != nil {
		return false, err
	}
	switch strings.ToLower(answer) {
	case "y", "yes", "s", "sim":
		return true, nil
	default:
		return false, nil
	}
}

// errorMessage picks the text shown for a failed command. Backend
// rejections and validation reasons are shown as they are; transport
// problems get a generic message and the detail goes to the debug log.
func errorMessage(err error) string {
	switch booking.KindOf(err) {
	case booking.KindUnknown:
		return err.Error()
	case booking.NetworkFailure:
		log.Debug().Err(err).Msg("Request failed")
		return booking.UserMessage(err, genericFailure)
	default:
		return booking.UserMessage(err, err.Error())
	}
}
