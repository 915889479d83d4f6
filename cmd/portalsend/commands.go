package main

import (
	"context"
	"errors"
	"flag"
	"fmt"
	"io"
	"path/filepath"
	"sync"
	"time"

	"github.com/dustin/go-humanize"
	"github.com/opd-ai/portalsend/config"
	"github.com/opd-ai/portalsend/factory"
	"github.com/opd-ai/portalsend/file"
	"github.com/opd-ai/portalsend/interfaces"
	"github.com/opd-ai/portalsend/launcher"
	"github.com/opd-ai/portalsend/real"
	"github.com/opd-ai/portalsend/receiver"
	"github.com/opd-ai/portalsend/route"
	"github.com/opd-ai/portalsend/settings"
	"github.com/opd-ai/portalsend/transfer"
)

// environment is what every command receives.
type environment struct {
	cfg      *config.Config
	simulate bool
	stdout   io.Writer
	stderr   io.Writer
}

type commandFunc func(ctx context.Context, env *environment, args []string) error

var commands = map[string]commandFunc{
	"app":          cmdApp,
	"tile":         cmdTile,
	"share":        cmdShare,
	"send":         cmdSend,
	"receive":      cmdReceive,
	"set-receiver": cmdSetReceiver,
}

// newSender builds the configured sender. -simulate forces the simulated
// sender; the real sender reports progress on stdout.
func (env *environment) newSender() interfaces.ISender {
	f := factory.NewSenderFactory(env.cfg.SenderConfig())
	if env.simulate {
		f.SwitchToSimulation()
	}
	if f.IsUsingSimulation() {
		fmt.Fprintln(env.stdout, "Simulation mode: nothing is uploaded.")
	}
	sender := f.CreateSender()
	if httpSender, ok := sender.(*real.HTTPSender); ok {
		httpSender.OnProgress(progressPrinter(env.stdout))
	}
	return sender
}

// addressStore reads the receiver address fresh on every lookup.
func (env *environment) addressStore() interfaces.IAddressStore {
	return settings.PathStore{Path: env.cfg.Settings.Path}
}

// progressPrinter prints at most one line per 10% step, or per 4 MiB when
// the total is unknown, with the current upload speed.
func progressPrinter(w io.Writer) func(sent, total int64, bytesPerSec float64) {
	var mu sync.Mutex
	var lastStep int64 = -1
	return func(sent, total int64, bytesPerSec float64) {
		mu.Lock()
		defer mu.Unlock()

		var step int64
		if total > 0 {
			step = sent * 10 / total
		} else {
			step = sent / (4 << 20)
		}
		if step == lastStep {
			return
		}
		lastStep = step
		speed := humanize.Bytes(uint64(bytesPerSec)) + "/s"
		if total > 0 {
			fmt.Fprintf(w, "  %s / %s (%s)\n", humanize.Bytes(uint64(sent)), humanize.Bytes(uint64(total)), speed)
		} else {
			fmt.Fprintf(w, "  %s (%s)\n", humanize.Bytes(uint64(sent)), speed)
		}
	}
}

func cmdApp(ctx context.Context, env *environment, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: app takes no arguments", errUsage)
	}
	return runApp(ctx, env, nil)
}

func cmdTile(ctx context.Context, env *environment, args []string) error {
	if len(args) != 0 {
		return fmt.Errorf("%w: tile takes no arguments", errUsage)
	}
	return forward(ctx, env, launcher.Event{Route: route.RouteSender})
}

func cmdShare(ctx context.Context, env *environment, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: share takes exactly one path", errUsage)
	}
	path, err := filepath.Abs(args[0])
	if err != nil {
		return err
	}
	return forward(ctx, env, launcher.Event{Route: route.RouteShare, Path: path})
}

// forward hands ev to a running app, or cold starts one seeded with ev.
func forward(ctx context.Context, env *environment, ev launcher.Event) error {
	err := launcher.Send(ctx, env.cfg.Launcher.Socket, ev)
	if errors.Is(err, launcher.ErrNotRunning) {
		fmt.Fprintln(env.stdout, "No running app, starting one.")
		return runApp(ctx, env, &ev)
	}
	if err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Opened %s in the running app.\n", ev.Route)
	return nil
}

func cmdSend(ctx context.Context, env *environment, args []string) error {
	if len(args) != 1 {
		return fmt.Errorf("%w: send takes exactly one path", errUsage)
	}
	src, err := file.NewLocalSource(args[0])
	if err != nil {
		return err
	}
	return runSend(ctx, env, env.newSender(), env.addressStore(), file.Resolve(src))
}

func cmdReceive(ctx context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("receive", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	listen := fs.String("listen", env.cfg.Receiver.Listen, "Address to listen on")
	dir := fs.String("dir", env.cfg.Receiver.Dir, "Directory to store uploads in")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	r, err := receiver.New(*dir)
	if err != nil {
		return err
	}
	r.OnReceived(func(rec receiver.Received) {
		fmt.Fprintf(env.stdout, "Received %s (%s) in %s\n", rec.Name, humanize.Bytes(uint64(rec.Size)), rec.Duration.Round(time.Millisecond))
	})

	fmt.Fprintf(env.stdout, "Receiving into %s on %s\n", r.Dir(), *listen)
	return r.ListenAndServe(ctx, *listen)
}

func cmdSetReceiver(_ context.Context, env *environment, args []string) error {
	fs := flag.NewFlagSet("set-receiver", flag.ContinueOnError)
	fs.SetOutput(env.stderr)
	clearAddr := fs.Bool("clear", false, "Remove the stored receiver")
	if err := fs.Parse(args); err != nil {
		return fmt.Errorf("%w: %v", errUsage, err)
	}

	store, err := settings.Open(env.cfg.Settings.Path)
	if err != nil {
		return err
	}
	defer store.Close()

	if *clearAddr {
		if err := store.Delete(settings.ReceiverAddressKey); err != nil {
			return err
		}
		fmt.Fprintln(env.stdout, "Receiver cleared.")
		return nil
	}

	if fs.NArg() != 1 {
		return fmt.Errorf("%w: set-receiver takes exactly one address", errUsage)
	}
	address := fs.Arg(0)
	normalized, err := transfer.NormalizeAddress(address, env.cfg.Transfer.DefaultPort)
	if err != nil {
		return err
	}
	if err := store.Put(settings.ReceiverAddressKey, address); err != nil {
		return err
	}
	fmt.Fprintf(env.stdout, "Receiver set. Files will be sent to http://%s/\n", normalized)
	return nil
}
