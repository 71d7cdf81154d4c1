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

// Package matchtest provides a scripted uci engine for testing code which
// drives engines, either in memory or as a child process.
package matchtest

import (
	"bufio"
	"fmt"
	"io"
	"strings"
	"sync"
	"time"

	"github.com/martinnovaak/engineduel/pkg/eve/match"
)

// Script describes the behaviour of a stub engine. The engine plays the
// moves in White or Black in order, chosen by the color to move in the
// last position it was sent, and "0000" once they run out.
type Script struct {
	Name         string // reported by id name, omitted when empty
	White, Black []string

	Delay  time.Duration // thinking time before every bestmove
	Silent bool          // never acknowledge the handshake
	OK     string        // handshake acknowledgement, "uciok" when empty
	Hang   bool          // never answer go
	Exit   bool          // exit instead of answering go

	// Received, if set, records every command line the engine reads.
	Received *Recorder
}

var (
	// Strong mates any opponent which does not defend: the scholar's mate
	// as white and the fool's mate as black.
	Strong = Script{
		Name:  "Strong",
		White: []string{"e2e4", "d1h5", "f1c4", "h5f7"},
		Black: []string{"e7e5", "d8h4"},
	}

	// Helpless walks into both of Strong's mates.
	Helpless = Script{
		Name:  "Helpless",
		White: []string{"f2f3", "g2g4"},
		Black: []string{"a7a6", "a6a5", "a5a4"},
	}
)

// Scripts maps names to predefined scripts, for selecting one in a child
// process.
var Scripts = map[string]Script{
	"strong":   Strong,
	"helpless": Helpless,
}

// Recorder collects lines. It is safe for concurrent use.
type Recorder struct {
	mu    sync.Mutex
	lines []string
}

func (recorder *Recorder) add(line string) {
	if recorder == nil {
		return
	}

	recorder.mu.Lock()
	recorder.lines = append(recorder.lines, line)
	recorder.mu.Unlock()
}

// Lines returns a copy of the recorded lines.
func (recorder *Recorder) Lines() []string {
	recorder.mu.Lock()
	defer recorder.mu.Unlock()
	return append([]string(nil), recorder.lines...)
}

// Serve runs the engine described by script, reading commands from r and
// writing responses to w, until quit is received or r ends.
func Serve(r io.Reader, w io.Writer, script Script) error {
	scanner := bufio.NewScanner(r)
	writer := bufio.NewWriter(w)

	reply := func(format string, a ...any) error {
		if _, err := fmt.Fprintf(writer, format+"\n", a...); err != nil {
			return err
		}

		return writer.Flush()
	}

	plies := 0
	for scanner.Scan() {
		line := strings.TrimSpace(scanner.Text())
		script.Received.add(line)

		fields := strings.Fields(line)
		if len(fields) == 0 {
			continue
		}

		var err error
		switch fields[0] {
		case "uci":
			if script.Silent {
				break
			}

			if script.Name != "" {
				err = reply("id name %s", script.Name)
			}

			if err == nil {
				ok := script.OK
				if ok == "" {
					ok = "uciok"
				}
				err = reply("%s", ok)
			}

		case "isready":
			err = reply("readyok")

		case "position":
			plies = 0
			for i, field := range fields {
				if field == "moves" {
					plies = len(fields) - i - 1
				}
			}

		case "go":
			if script.Exit {
				return nil
			}

			if script.Hang {
				break
			}

			time.Sleep(script.Delay)
			err = reply("bestmove %s", script.move(plies))

		case "quit":
			return nil
		}

		if err != nil {
			return err
		}
	}

	return scanner.Err()
}

func (script Script) move(plies int) string {
	moves := script.White
	if plies%2 == 1 {
		moves = script.Black
	}

	if index := plies / 2; index < len(moves) {
		return moves[index]
	}

	return "0000"
}

// Start runs the engine in memory and returns a connection to it.
func Start(script Script) match.Conn {
	inR, inW := io.Pipe()
	outR, outW := io.Pipe()

	go func() {
		err := Serve(inR, outW, script)
		outW.CloseWithError(err)
		inR.CloseWithError(io.EOF)
	}()

	return match.NewConn(inW, outR)
}
