package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"os"
	"os/signal"
	"strings"
	"syscall"

	"github.com/opd-ai/portalsend/config"
	"github.com/sirupsen/logrus"
)

// CLI configuration
type CLIConfig struct {
	configPath string
	logLevel   string
	logFormat  string
	simulate   bool
	help       bool
	command    string
	args       []string
}

// errUsage marks invocation mistakes; main exits with status 2.
var errUsage = errors.New("usage error")

// parseCLIFlags parses global flags from args and splits off the command.
func parseCLIFlags(args []string, output io.Writer) (*CLIConfig, error) {
	cli := &CLIConfig{}
	fs := flag.NewFlagSet("portalsend", flag.ContinueOnError)
	fs.SetOutput(output)

	fs.StringVar(&cli.configPath, "config", "", "Path to portalsend.toml")
	fs.StringVar(&cli.logLevel, "log-level", "", "Log level (DEBUG, INFO, WARN, ERROR)")
	fs.StringVar(&cli.logFormat, "log-format", "", "Log format (text, json)")
	fs.BoolVar(&cli.simulate, "simulate", false, "Use the simulated sender; nothing is uploaded")
	fs.BoolVar(&cli.help, "help", false, "Show help message")

	if err := fs.Parse(args); err != nil {
		return nil, fmt.Errorf("%w: %v", errUsage, err)
	}
	rest := fs.Args()
	if len(rest) > 0 {
		cli.command = rest[0]
		cli.args = rest[1:]
	}
	return cli, nil
}

// printUsage prints the usage information.
func printUsage(w io.Writer) {
	fmt.Fprintln(w, "portalsend - drop a file onto a receiver on your network")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Usage:")
	fmt.Fprintf(w, "  %s [options] <command> [arguments]\n", os.Args[0])
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Commands:")
	fmt.Fprintln(w, "  app                     run the application layer")
	fmt.Fprintln(w, "  tile                    open the send screen")
	fmt.Fprintln(w, "  share <path>            open the send screen with a file")
	fmt.Fprintln(w, "  send <path>             send a file to the stored receiver")
	fmt.Fprintln(w, "  receive [-listen a] [-dir d]  accept uploads")
	fmt.Fprintln(w, "  set-receiver <address>  store the receiver address (-clear to remove)")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Options:")
	fmt.Fprintln(w, "  -config path       configuration file")
	fmt.Fprintln(w, "  -log-level level   DEBUG, INFO, WARN or ERROR")
	fmt.Fprintln(w, "  -log-format fmt    text or json")
	fmt.Fprintln(w, "  -simulate          dry run with the simulated sender")
	fmt.Fprintln(w)
	fmt.Fprintln(w, "Examples:")
	fmt.Fprintf(w, "  %s set-receiver 192.168.1.20\n", os.Args[0])
	fmt.Fprintf(w, "  %s send ~/Documents/report.pdf\n", os.Args[0])
	fmt.Fprintf(w, "  %s receive -dir ~/Inbox\n", os.Args[0])
}

// configureLogging applies level and format to the standard logrus logger.
// Empty arguments keep the values from cfg.
func configureLogging(cfg *config.Config, level, format string) error {
	if level == "" {
		level = cfg.Log.Level
	}
	if format == "" {
		format = cfg.Log.Format
	}

	parsed, err := logrus.ParseLevel(strings.ToLower(level))
	if err != nil {
		return fmt.Errorf("invalid log level %q: %w", level, err)
	}
	logrus.SetLevel(parsed)

	switch strings.ToLower(format) {
	case "text":
		logrus.SetFormatter(&logrus.TextFormatter{FullTimestamp: true})
	case "json":
		logrus.SetFormatter(&logrus.JSONFormatter{})
	default:
		return fmt.Errorf("invalid log format %q", format)
	}
	logrus.SetOutput(os.Stderr)
	return nil
}

// setupSignalHandling cancels ctx on interrupt or termination.
func setupSignalHandling(cancel context.CancelFunc) {
	sigChan := make(chan os.Signal, 1)
	signal.Notify(sigChan, os.Interrupt, syscall.SIGTERM)

	go func() {
		sig := <-sigChan
		logrus.WithField("signal", sig.String()).Info("Received signal, shutting down")
		cancel()
	}()
}

// run executes one command and returns the process exit code.
func run(ctx context.Context, args []string, stdout, stderr io.Writer) int {
	cli, err := parseCLIFlags(args, stderr)
	if err != nil {
		return 2
	}
	if cli.help || cli.command == "" {
		printUsage(stdout)
		if cli.help {
			return 0
		}
		return 2
	}

	cfg, err := config.Load(cli.configPath)
	if err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 1
	}
	if err := configureLogging(cfg, cli.logLevel, cli.logFormat); err != nil {
		fmt.Fprintf(stderr, "Configuration error: %v\n", err)
		return 2
	}

	env := &environment{cfg: cfg, simulate: cli.simulate, stdout: stdout, stderr: stderr}
	cmd, ok := commands[cli.command]
	if !ok {
		fmt.Fprintf(stderr, "Unknown command %q. Use -help for usage information.\n", cli.command)
		return 2
	}

	if err := cmd(ctx, env, cli.args); err != nil {
		if errors.Is(err, errUsage) {
			fmt.Fprintf(stderr, "%v\n", err)
			return 2
		}
		fmt.Fprintf(stderr, "%s: %v\n", cli.command, err)
		return 1
	}
	return 0
}

// main is the entry point for portalsend.
func main() {
	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()
	setupSignalHandling(cancel)

	code := run(ctx, os.Args[1:], os.Stdout, os.Stderr)
	cancel()
	os.Exit(code)
}
