// Copyright © 2024 Martin Novak
//
// Licensed under the Apache License, Version 2.0 (the "License");
// you may not use this file except in compliance with the License.
// You may obtain a copy of the License at
// http://www.apache.org/licenses/LICENSE-2.0
//
// Unless required by applicable law or agreed to in writing, software
// distributed under the License is distributed on an "AS IS" BASIS,
// WITHOUT WARRANTIES OR CONDITIONS OF ANY KIND, either express or implied.
// See the License for the specific language governing permissions and
// limitations under the License.

package match

import (
	"bufio"
	"fmt"
	"io"
	"os/exec"
	"strings"
	"sync"
	"time"

	"github.com/kballard/go-shellquote"
)

// Conn is a line oriented, bidirectional connection to an engine. Lines
// written are terminated and flushed immediately, and lines read arrive
// on the Lines channel, which is closed once the engine's output ends.
type Conn interface {
	WriteLine(line string) error
	Lines() <-chan string

	// Close ends the conversation by closing the engine's input. It
	// waits up to grace for the engine to exit and then kills it.
	Close(grace time.Duration) error
}

// NewConn creates a Conn which writes to w and reads lines from r.
// Closing it closes w, and r too if it is an io.Closer.
func NewConn(w io.WriteCloser, r io.Reader) Conn {
	conn := newLineConn(w, r)
	conn.output, _ = r.(io.Closer)
	return conn
}

type lineConn struct {
	mu     sync.Mutex // guards writer
	writer *bufio.Writer
	input  io.Closer
	output io.Closer // optional

	lines    chan string
	done     chan struct{}
	finished chan struct{} // closed once reading has stopped
	once     sync.Once
}

func newLineConn(w io.WriteCloser, r io.Reader) *lineConn {
	conn := &lineConn{
		writer: bufio.NewWriter(w),
		input:  w,

		lines:    make(chan string),
		done:     make(chan struct{}),
		finished: make(chan struct{}),
	}

	go conn.read(bufio.NewReader(r))
	return conn
}

func (conn *lineConn) read(reader *bufio.Reader) {
	defer close(conn.finished)
	defer close(conn.lines)

	for {
		line, err := reader.ReadString('\n')
		if line = strings.Trim(line, " \n\t\r"); line != "" {
			select {
			case conn.lines <- line:
			case <-conn.done:
				return
			}
		}

		if err != nil {
			return
		}
	}
}

func (conn *lineConn) WriteLine(line string) error {
	conn.mu.Lock()
	defer conn.mu.Unlock()

	if _, err := fmt.Fprintln(conn.writer, line); err != nil {
		return err
	}

	return conn.writer.Flush()
}

func (conn *lineConn) Lines() <-chan string {
	return conn.lines
}

// shutdown stops line delivery and closes the engine's input.
func (conn *lineConn) shutdown() (err error) {
	conn.once.Do(func() {
		close(conn.done)

		conn.mu.Lock()
		err = conn.input.Close()
		conn.mu.Unlock()

		if conn.output != nil {
			_ = conn.output.Close()
		}
	})

	return err
}

func (conn *lineConn) Close(time.Duration) error {
	return conn.shutdown()
}

// Process is a Conn to an engine running as a child process.
type Process struct {
	*lineConn
	cmd *exec.Cmd

	closed   sync.Once
	closeErr error
}

// StartProcess spawns the engine described by config with its standard
// input and output connected to the returned Process.
func StartProcess(config EngineConfig) (*Process, error) {
	args, err := shellquote.Split(config.Arg)
	if err != nil {
		return nil, fmt.Errorf("engine %s: parsing arguments: %w", config.Cmd, err)
	}

	cmd := exec.Command(config.Cmd, args...)
	cmd.Dir = config.Dir

	stdin, err := cmd.StdinPipe()
	if err != nil {
		return nil, err
	}

	stdout, err := cmd.StdoutPipe()
	if err != nil {
		return nil, err
	}

	if err := cmd.Start(); err != nil {
		return nil, fmt.Errorf("engine %s: %w", config.Cmd, err)
	}

	return &Process{
		lineConn: newLineConn(stdin, stdout),
		cmd:      cmd,
	}, nil
}

// Close closes the engine's input and waits for it to exit, killing the
// process if it is still alive after grace. The engine's output is read
// to its end before the process is waited for.
func (process *Process) Close(grace time.Duration) error {
	process.closed.Do(func() {
		_ = process.shutdown()

		timer := time.NewTimer(grace)
		defer timer.Stop()

		var exited chan error
		select {
		case <-process.finished:
			exited = make(chan error, 1)
			go func() { exited <- process.cmd.Wait() }()

			select {
			case process.closeErr = <-exited:
				return
			case <-timer.C:
			}
		case <-timer.C:
		}

		_ = process.cmd.Process.Kill()
		if exited == nil {
			// Wait closes the output, which stops the reader
			exited = make(chan error, 1)
			go func() { exited <- process.cmd.Wait() }()
		}

		<-exited
		process.closeErr = ErrKilled
	})

	return process.closeErr
}
