package main

import (
	"fmt"
	"io"
	"sync"
	"sync/atomic"
)

const prompt = "> "

// console serializes terminal output between the prompt loop and store
// change notifications, which arrive on the watch goroutine.
type console struct {
	mu     sync.Mutex
	w      io.Writer
	render func(io.Writer)
	local  atomic.Bool
}

func newConsole(w io.Writer, render func(io.Writer)) *console {
	return &console{w: w, render: render}
}

func (c *console) printf(format string, a ...interface{}) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintf(c.w, format, a...)
}

// show writes fn's output without interleaving.
func (c *console) show(fn func(io.Writer)) {
	c.mu.Lock()
	defer c.mu.Unlock()
	fn(c.w)
}

// write runs a command that writes to the store. Change notifications it
// raises are left to the command's own output.
func (c *console) write(fn func() error) error {
	c.local.Store(true)
	defer c.local.Store(false)
	return fn()
}

// changed reports a store change. Only changes made by other processes
// are printed, followed by a fresh prompt.
func (c *console) changed() {
	if c.local.Load() {
		return
	}
	c.mu.Lock()
	defer c.mu.Unlock()
	fmt.Fprintln(c.w, "\n[orders changed]")
	c.render(c.w)
	fmt.Fprint(c.w, prompt)
}
