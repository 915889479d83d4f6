package main

import (
	"context"
	"errors"
	"fmt"
	"sync"

	"github.com/opd-ai/portalsend/file"
	"github.com/opd-ai/portalsend/interfaces"
	"github.com/opd-ai/portalsend/launcher"
	"github.com/opd-ai/portalsend/route"
	"github.com/opd-ai/portalsend/settings"
	"github.com/sirupsen/logrus"
)

// app is the running application layer. It navigates between the home
// screen and the send screen; a share opens the send screen with a fresh
// session, abandoning any previous one.
type app struct {
	ctx    context.Context
	env    *environment
	bridge *route.Bridge
	sender interfaces.ISender
	store  interfaces.IAddressStore

	mu         sync.Mutex
	cancelSend context.CancelFunc
	wg         sync.WaitGroup
}

// runApp serves the launcher socket until ctx ends. seed, when set, is
// delivered to the bridge before the application reads its initial route,
// which is how a cold start from tile or share behaves.
func runApp(ctx context.Context, env *environment, seed *launcher.Event) error {
	bridge := route.NewBridge()
	listener := launcher.NewListener(env.cfg.Launcher.Socket, bridge)
	if err := listener.Listen(); err != nil {
		return err
	}
	defer listener.Close()

	if seed != nil {
		if err := launcher.Dispatch(bridge, *seed); err != nil {
			return err
		}
	}

	a := &app{
		ctx:    ctx,
		env:    env,
		bridge: bridge,
		sender: env.newSender(),
		store:  env.addressStore(),
	}

	a.navigate(bridge.PullInitialRoute())
	bridge.Attach(a)
	defer bridge.Detach()

	err := listener.Serve(ctx)
	a.stopSend()
	a.wg.Wait()
	return err
}

// NavigateTo implements route.Navigator.
func (a *app) NavigateTo(r string) {
	a.navigate(r)
}

func (a *app) navigate(r string) {
	logrus.WithFields(logrus.Fields{
		"function": "app.navigate",
		"route":    r,
	}).Info("Navigating")

	switch r {
	case route.RouteShare:
		h, ok := a.bridge.PullSharedPayload()
		if !ok {
			fmt.Fprintln(a.env.stdout, "Send screen: the share carried no file.")
			return
		}
		fmt.Fprintf(a.env.stdout, "Send screen: %s\n", h.Name)
		a.startSend(h)
	case route.RouteSender:
		fmt.Fprintln(a.env.stdout, "Send screen: share a file to send it.")
	default:
		if addr, ok := a.store.Get(settings.ReceiverAddressKey); ok {
			fmt.Fprintf(a.env.stdout, "Home: receiver %s\n", addr)
		} else {
			fmt.Fprintln(a.env.stdout, "Home: no receiver set.")
		}
	}
}

// startSend replaces the current send screen with one for h.
func (a *app) startSend(h *file.Handle) {
	ctx, cancel := context.WithCancel(a.ctx)

	a.mu.Lock()
	previous := a.cancelSend
	a.cancelSend = cancel
	a.mu.Unlock()
	if previous != nil {
		previous()
	}

	a.wg.Add(1)
	go func() {
		defer a.wg.Done()
		defer cancel()
		err := runSend(ctx, a.env, a.sender, a.store, h)
		switch {
		case err == nil:
		case errors.Is(err, context.Canceled):
			logrus.WithField("file_name", h.Name).Info("Send screen closed before the upload finished")
		default:
			logrus.WithFields(logrus.Fields{
				"function":  "app.startSend",
				"file_name": h.Name,
				"error":     err.Error(),
			}).Warn("Send failed")
		}
	}()
}

func (a *app) stopSend() {
	a.mu.Lock()
	cancel := a.cancelSend
	a.cancelSend = nil
	a.mu.Unlock()
	if cancel != nil {
		cancel()
	}
}
