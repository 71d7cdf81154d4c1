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
	"github.com/spf13/cobra"

	"github.com/martinnovaak/engineduel/pkg/common"
	"github.com/martinnovaak/engineduel/pkg/eve/duel"
)

func Restart() *cobra.Command {
	var addr string

	cmd := &cobra.Command{
		Use:   "restart duel-name",
		Short: "Restart a stopped duel by name",
		Args:  cobra.ExactArgs(1),

		RunE: func(cmd *cobra.Command, args []string) error {
			config, err := duel.LoadConfig(common.StatePath(args[0]))
			if err != nil {
				return err
			}

			config.Name = args[0]
			config.Detailed = true
			return runDuel(cmd, config, addr)
		},
	}

	cmd.Flags().StringVar(&addr, "metrics-addr", "", "Address to serve prometheus metrics at")
	return cmd
}
