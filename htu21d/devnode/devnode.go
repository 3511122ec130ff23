// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

// Package devnode shares one HTU21D between several users the way a
// character device node would.
//
// Attach binds a node to the bus connection of one sensor. Every Open returns
// a Handle; reads and writes of all handles of a node are serialized so
// transactions of different users never interleave on the bus. Detach
// releases the node, after which every handle fails with ErrDetached.
package devnode

import (
	"errors"
	"fmt"
	"log/slog"
	"sync"

	"github.com/GermanBionicSystems/htu21d/htu21d"
	"periph.io/x/conn/v3"
)

var (
	// ErrDetached is returned by a node or handle after Detach.
	ErrDetached = errors.New("devnode: device detached")
	// ErrClosed is returned by a handle after Close.
	ErrClosed = errors.New("devnode: handle closed")
)

// Node is one attached sensor.
type Node struct {
	name string
	log  *slog.Logger

	mu       sync.Mutex
	dev      *htu21d.Dev
	opens    int
	detached bool
}

// Attach returns a node for the sensor reachable over c. The Opts are passed
// to htu21d.New and can be nil.
func Attach(name string, c conn.Conn, opts *htu21d.Opts) (*Node, error) {
	if name == "" {
		return nil, errors.New("devnode: name is required")
	}
	if c == nil {
		return nil, errors.New("devnode: nil connection")
	}
	l := slog.Default()
	if opts != nil && opts.Logger != nil {
		l = opts.Logger
	}
	n := &Node{name: name, dev: htu21d.New(c, opts), log: l.With("node", name)}
	n.log.Debug("devnode: attached", "conn", c.String())
	return n, nil
}

func (n *Node) String() string {
	return n.name
}

// Opens returns how many times the node was opened since Attach.
func (n *Node) Opens() int {
	n.mu.Lock()
	defer n.mu.Unlock()
	return n.opens
}

// Open returns a new handle on the node.
func (n *Node) Open() (*Handle, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return nil, fmt.Errorf("devnode: open %s: %w", n.name, ErrDetached)
	}
	n.opens++
	n.log.Debug("devnode: opened", "times", n.opens)
	return &Handle{n: n}, nil
}

// Detach stops any continuous sensing and releases the sensor. It waits for
// an operation in progress to finish.
func (n *Node) Detach() error {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return nil
	}
	n.detached = true
	err := n.dev.Halt()
	n.dev = nil
	n.log.Debug("devnode: detached")
	return err
}

// do runs f with exclusive access to the sensor.
func (n *Node) do(f func(d *htu21d.Dev) (int, error)) (int, error) {
	n.mu.Lock()
	defer n.mu.Unlock()
	if n.detached {
		return 0, ErrDetached
	}
	return f(n.dev)
}

// Handle is one user of a node. It implements io.ReadWriteCloser with the
// semantics of htu21d.Dev.Read and htu21d.Dev.Write.
type Handle struct {
	n *Node

	mu     sync.Mutex
	closed bool
}

func (h *Handle) isClosed() bool {
	h.mu.Lock()
	defer h.mu.Unlock()
	return h.closed
}

// Read fills p with a 4 byte measurement frame.
func (h *Handle) Read(p []byte) (int, error) {
	if h.isClosed() {
		return 0, ErrClosed
	}
	return h.n.do(func(d *htu21d.Dev) (int, error) {
		return d.Read(p)
	})
}

// Write sets the temperature resolution from p[0].
func (h *Handle) Write(p []byte) (int, error) {
	if h.isClosed() {
		return 0, ErrClosed
	}
	return h.n.do(func(d *htu21d.Dev) (int, error) {
		return d.Write(p)
	})
}

// Close releases the handle. The node stays attached.
func (h *Handle) Close() error {
	h.mu.Lock()
	defer h.mu.Unlock()
	if h.closed {
		return ErrClosed
	}
	h.closed = true
	return nil
}
