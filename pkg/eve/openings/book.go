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

package openings

import (
	"context"
	"fmt"
	"os"
	"strings"
	"sync"

	"lukechampine.com/frand"
)

// BookConfig describes an opening book file.
type BookConfig struct {
	File  string `yaml:"file"`
	Order string `yaml:"order"` // random or sequential

	Current int `yaml:"current"` // position of a sequential book
}

// NewBook reads the opening book file with one opening per line.
func NewBook(config BookConfig) (*Book, error) {
	file, err := os.ReadFile(config.File)
	if err != nil {
		return nil, err
	}

	var book Book
	for _, entry := range strings.Split(string(file), "\n") {
		if entry = strings.Trim(entry, "\n\r\t "); entry != "" {
			book.entries = append(book.entries, entry)
		}
	}

	if len(book.entries) == 0 {
		return nil, fmt.Errorf("openings: %s: empty book", config.File)
	}

	book.config = config
	return &book, nil
}

// Book is a Source reading openings from a file, in random order or one
// after the other.
type Book struct {
	mu      sync.Mutex
	config  BookConfig
	entries []string
}

func (book *Book) Fetch(_ context.Context, n int) ([]string, error) {
	book.mu.Lock()
	defer book.mu.Unlock()

	openings := make([]string, 0, n)
	for i := 0; i < n; i++ {
		switch book.config.Order {
		case "random":
			openings = append(openings, book.entries[frand.Intn(len(book.entries))])
		default:
			openings = append(openings, book.entries[book.config.Current%len(book.entries)])
			book.config.Current = (book.config.Current + 1) % len(book.entries)
		}
	}

	return openings, nil
}

// Wrap returns the book's config with its current position, for saving.
func (book *Book) Wrap() BookConfig {
	book.mu.Lock()
	defer book.mu.Unlock()
	return book.config
}
