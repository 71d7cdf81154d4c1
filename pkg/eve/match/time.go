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
	"fmt"
	"math"
	"strconv"
	"strings"
	"time"
)

// TimeControl is the clock of one side: the time it has left and the
// increment it receives after each move.
type TimeControl struct {
	Remaining time.Duration
	Increment time.Duration
}

// ParseTime parses a time control of the form time+increment, both in
// seconds, like 8+0.08.
func ParseTime(str string) (TimeControl, error) {
	time_str, inc_str, found := strings.Cut(str, "+")
	if !found {
		return TimeControl{}, fmt.Errorf("parse tc %q: increment not found", str)
	}

	secs, err := strconv.ParseFloat(time_str, 64)
	if err != nil {
		return TimeControl{}, fmt.Errorf("parse tc %q: %w", str, err)
	}

	incs, err := strconv.ParseFloat(inc_str, 64)
	if err != nil {
		return TimeControl{}, fmt.Errorf("parse tc %q: %w", str, err)
	}

	if secs <= 0 || incs < 0 {
		return TimeControl{}, fmt.Errorf("parse tc %q: non-positive time", str)
	}

	return TimeControl{
		Remaining: time.Millisecond * time.Duration(math.Round(secs*1000)),
		Increment: time.Millisecond * time.Duration(math.Round(incs*1000)),
	}, nil
}

// Charge deducts the time spent on a move and then adds the increment.
func (tc *TimeControl) Charge(spent time.Duration) {
	tc.Remaining -= spent
	tc.Remaining += tc.Increment
}

// HasTimeLeft reports whether the remaining time is positive.
func (tc TimeControl) HasTimeLeft() bool {
	return tc.Remaining > 0
}

// String formats the time control the way ParseTime reads it.
func (tc TimeControl) String() string {
	return strconv.FormatFloat(tc.Remaining.Seconds(), 'f', -1, 64) + "+" +
		strconv.FormatFloat(tc.Increment.Seconds(), 'f', -1, 64)
}
