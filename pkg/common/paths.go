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

// Package common holds the locations engineduel keeps its files at.
package common

import (
	"os"
	"path/filepath"

	"github.com/adrg/xdg"
)

const FilePermissions = 0755

var (
	Directory = filepath.Join(xdg.DataHome, "engineduel")

	// PausedDirectory holds the saved state of every named duel.
	PausedDirectory = filepath.Join(Directory, "paused")

	// OpeningsFile is the default opening database.
	OpeningsFile = filepath.Join(Directory, "openings.db")
)

// TryMkdir creates dir and its parents unless they already exist.
func TryMkdir(dir string) error {
	return os.MkdirAll(dir, FilePermissions)
}

// EnsureDirectories creates the directories engineduel writes to.
func EnsureDirectories() error {
	for _, dir := range []string{Directory, PausedDirectory} {
		if err := TryMkdir(dir); err != nil {
			return err
		}
	}

	return nil
}

// StatePath returns where the state of the named duel is saved.
func StatePath(name string) string {
	return filepath.Join(PausedDirectory, name+".yaml")
}
