package main

import (
	"context"
	"fmt"

	"github.com/dustin/go-humanize"
	"github.com/opd-ai/portalsend/file"
	"github.com/opd-ai/portalsend/interfaces"
	"github.com/opd-ai/portalsend/session"
	"github.com/opd-ai/portalsend/transfer"
)

// runSend drives one session the way the send screen does: the card is
// picked up and dropped on the target at once. It returns when the upload
// succeeds or fails, or when ctx ends.
func runSend(ctx context.Context, env *environment, sender interfaces.ISender, store interfaces.IAddressStore, h *file.Handle) error {
	s, err := session.New(ctx, session.Options{
		Sender:            sender,
		Store:             store,
		File:              h,
		DefaultPort:       env.cfg.Transfer.DefaultPort,
		PresentationDelay: env.cfg.PresentationDelay(),
		DismissDelay:      env.cfg.DismissDelay(),
	})
	if err != nil {
		return err
	}
	defer s.Close()

	result := make(chan session.Event, 1)
	s.OnTransition(func(ev session.Event) {
		if line := describe(ev, h); line != "" {
			fmt.Fprintln(env.stdout, line)
		}
		if ev.To == session.Succeeded || ev.To == session.Failed {
			select {
			case result <- ev:
			default:
			}
		}
	})

	if err := s.BeginDrag(); err != nil {
		return err
	}
	if err := s.Drop(true); err != nil {
		return err
	}

	select {
	case ev := <-result:
		if ev.To == session.Failed {
			return ev.Failure
		}
		return nil
	case <-ctx.Done():
		return ctx.Err()
	}
}

// describe renders a transition as a status line, or "" for silent ones.
func describe(ev session.Event, h *file.Handle) string {
	switch ev.To {
	case session.Committing:
		return fmt.Sprintf("Preparing %s", h.Name)
	case session.Sending:
		return fmt.Sprintf("Sending %s (%s)", h.Name, sizeText(h))
	case session.Succeeded:
		return fmt.Sprintf("Sent %s", h.Name)
	case session.Failed:
		return failureMessage(ev.Failure)
	default:
		return ""
	}
}

func sizeText(h *file.Handle) string {
	if !h.SizeKnown() {
		return "size unknown"
	}
	return humanize.Bytes(uint64(h.Size))
}

// failureMessage is the user-facing text for a failed upload.
func failureMessage(f *transfer.Failure) string {
	if f == nil {
		return "Send failed"
	}
	switch f.Reason {
	case transfer.ReasonConfiguration:
		return fmt.Sprintf("Cannot send: %v. Run 'portalsend set-receiver <address>'.", f.Err)
	case transfer.ReasonServerRejection:
		if f.Snippet == "" {
			return fmt.Sprintf("Receiver refused the file (%d)", f.Status)
		}
		return fmt.Sprintf("Receiver refused the file (%d): %s", f.Status, f.Snippet)
	default:
		return fmt.Sprintf("Could not reach the receiver: %v", f.Err)
	}
}
