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

package cmd

import (
	"fmt"
	"os"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"

	"github.com/martinnovaak/engineduel/internal/util"
	"github.com/martinnovaak/engineduel/pkg/common"
	"github.com/martinnovaak/engineduel/pkg/eve/openings"
)

func Openings() *cobra.Command {
	var database string

	cmd := &cobra.Command{
		Use:   "openings",
		Short: "Manage the opening database",
	}

	cmd.PersistentFlags().StringVar(&database, "openings", common.OpeningsFile, "Opening database")

	open := func() (*openings.SQLiteSource, error) {
		if database == common.OpeningsFile {
			if err := common.EnsureDirectories(); err != nil {
				return nil, err
			}
		}

		return openings.OpenSQLite(database)
	}

	cmd.AddCommand(&cobra.Command{
		Use:   "import openings-file",
		Short: "Import a file with one opening per line",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			file, err := os.Open(args[0])
			if err != nil {
				return err
			}
			defer file.Close()

			source, err := open()
			if err != nil {
				return err
			}
			defer source.Close()

			var imported int
			err = util.Spin(os.Stderr, "Importing openings...", func() error {
				imported, err = source.Import(cmd.Context(), file)
				return err
			})
			if err != nil {
				return err
			}

			total, err := source.Count(cmd.Context())
			if err != nil {
				return err
			}

			logrus.Infof("Imported %d openings, %d in the database", imported, total)
			return nil
		},
	})

	var n int
	sample := &cobra.Command{
		Use:   "sample",
		Short: "Print random openings from the database",
		Args:  cobra.NoArgs,

		RunE: func(cmd *cobra.Command, args []string) error {
			source, err := open()
			if err != nil {
				return err
			}
			defer source.Close()

			lines, err := source.Fetch(cmd.Context(), n)
			if err != nil {
				return err
			}

			for _, line := range lines {
				fmt.Fprintln(cmd.OutOrStdout(), line)
			}

			return nil
		},
	}

	sample.Flags().IntVarP(&n, "number", "n", 5, "Number of openings")
	cmd.AddCommand(sample)

	return cmd
}
