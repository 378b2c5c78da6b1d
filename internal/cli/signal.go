package cli

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync/atomic"
	"syscall"
)

// ErrInterrupted is returned by commands that stopped because of a signal.
var ErrInterrupted = fmt.Errorf("interrupted")

// Interrupt is a context cancelled on SIGINT or SIGTERM that remembers
// which signal arrived.
type Interrupt struct {
	context.Context
	cancel context.CancelFunc
	caught atomic.Value
}

// WithInterrupt starts listening for SIGINT and SIGTERM. Stop must be called
// to release the signal handler.
func WithInterrupt(parent context.Context) *Interrupt {
	ctx, cancel := context.WithCancel(parent)
	in := &Interrupt{Context: ctx, cancel: cancel}

	ch := make(chan os.Signal, 1)
	signal.Notify(ch, os.Interrupt, syscall.SIGTERM)
	go func() {
		defer signal.Stop(ch)
		select {
		case sig := <-ch:
			in.caught.Store(sig)
			cancel()
		case <-ctx.Done():
		}
	}()
	return in
}

// Stop cancels the context and unregisters the handler.
func (in *Interrupt) Stop() { in.cancel() }

// Caught returns the signal that cancelled the context, or nil.
func (in *Interrupt) Caught() os.Signal {
	sig, _ := in.caught.Load().(os.Signal)
	return sig
}

// Wrap turns err into ErrInterrupted when a signal ended the command.
func (in *Interrupt) Wrap(err error) error {
	if sig := in.Caught(); sig != nil && err != nil {
		return fmt.Errorf("%w by %s: %w", ErrInterrupted, sig, err)
	}
	return err
}
