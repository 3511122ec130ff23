// Copyright 2025 The Periph Authors. All rights reserved.
// Use of this source code is governed under the Apache License, Version 2.0
// that can be found in the LICENSE file.

package devnode

import (
	"bytes"
	"errors"
	"runtime"
	"sync"
	"testing"
	"time"

	"github.com/GermanBionicSystems/htu21d/htu21d"
	"github.com/GermanBionicSystems/htu21d/htu21d/htu21dtest"
)

func attach(t *testing.T, s *htu21dtest.Sensor) *Node {
	t.Helper()
	sleep := func(d time.Duration) {
		s.Sleep(d)
		// Give other handles a chance to run in the middle of a measurement.
		runtime.Gosched()
	}
	n, err := Attach("i2c-htu21d", s, &htu21d.Opts{Sleep: sleep})
	if err != nil {
		t.Fatal(err)
	}
	return n
}

func TestAttach(t *testing.T) {
	if _, err := Attach("", htu21dtest.New(0, 0), nil); err == nil {
		t.Error("expected error for empty name")
	}
	if _, err := Attach("x", nil, nil); err == nil {
		t.Error("expected error for nil connection")
	}
}

func TestOpenReadWrite(t *testing.T) {
	s := htu21dtest.New(0x4e85, 0x683a)
	n := attach(t, s)
	h, err := n.Open()
	if err != nil {
		t.Fatal(err)
	}
	if _, err := n.Open(); err != nil {
		t.Fatal(err)
	}
	if n.Opens() != 2 {
		t.Errorf("Opens() = %d", n.Opens())
	}
	if _, err := h.Write([]byte{12}); err != nil {
		t.Fatal(err)
	}
	if s.Register != 0x03 {
		t.Errorf("register 0x%02x expected 0x03", s.Register)
	}
	buf := make([]byte, htu21d.FrameSize)
	if _, err := h.Read(buf); err != nil {
		t.Fatal(err)
	}
	if expected := []byte{0x4e, 0x85, 0x68, 0x3a}; !bytes.Equal(buf, expected) {
		t.Errorf("frame %#v expected %#v", buf, expected)
	}
	if err := h.Close(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Read(buf); !errors.Is(err, ErrClosed) {
		t.Errorf("Read() after Close() = %v", err)
	}
	if err := h.Close(); !errors.Is(err, ErrClosed) {
		t.Errorf("second Close() = %v", err)
	}
}

func TestConcurrentHandlesDoNotInterleave(t *testing.T) {
	s := htu21dtest.New(0x4e85, 0x683a)
	n := attach(t, s)
	var wg sync.WaitGroup
	errs := make(chan error, 8)
	for i := 0; i < 4; i++ {
		h, err := n.Open()
		if err != nil {
			t.Fatal(err)
		}
		wg.Add(1)
		go func() {
			defer wg.Done()
			buf := make([]byte, htu21d.FrameSize)
			for i := 0; i < 5; i++ {
				if _, err := h.Read(buf); err != nil {
					errs <- err
					return
				}
				if !bytes.Equal(buf, []byte{0x4e, 0x85, 0x68, 0x3a}) {
					errs <- errors.New("corrupted frame")
					return
				}
			}
		}()
	}
	wg.Wait()
	close(errs)
	for err := range errs {
		t.Error(err)
	}
	if s.Interleaved {
		t.Error("measurements of different handles interleaved on the bus")
	}
}

func TestDetach(t *testing.T) {
	n := attach(t, htu21dtest.New(0, 0))
	h, err := n.Open()
	if err != nil {
		t.Fatal(err)
	}
	if err := n.Detach(); err != nil {
		t.Fatal(err)
	}
	if err := n.Detach(); err != nil {
		t.Fatal(err)
	}
	if _, err := h.Write([]byte{14}); !errors.Is(err, ErrDetached) {
		t.Errorf("Write() after Detach() = %v", err)
	}
	if _, err := n.Open(); !errors.Is(err, ErrDetached) {
		t.Errorf("Open() after Detach() = %v", err)
	}
}
