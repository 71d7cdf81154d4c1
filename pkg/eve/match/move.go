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

// IsLegalMoveString reports whether move has the shape of a move in long
// algebraic notation: a source and a target square, optionally followed
// by a promotion piece. It does not check the move against a position.
func IsLegalMoveString(move string) bool {
	if len(move) != 4 && len(move) != 5 {
		return false
	}

	if !isFile(move[0]) || !isRank(move[1]) || !isFile(move[2]) || !isRank(move[3]) {
		return false
	}

	if len(move) == 5 {
		switch move[4] {
		case 'q', 'r', 'b', 'n':
		default:
			return false
		}
	}

	return true
}

func isFile(c byte) bool { return c >= 'a' && c <= 'h' }
func isRank(c byte) bool { return c >= '1' && c <= '8' }
