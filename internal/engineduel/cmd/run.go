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
	"context"
	"errors"
	"os"
	"os/signal"

	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"golang.org/x/sync/errgroup"

	"github.com/martinnovaak/engineduel/pkg/common"
	"github.com/martinnovaak/engineduel/pkg/eve/duel"
	"github.com/martinnovaak/engineduel/pkg/eve/metrics"
)

// runDuel plays config until it ends or the user interrupts it, saving
// its state under its name, and serves its metrics at addr if set.
func runDuel(cmd *cobra.Command, config duel.Config, addr string) error {
	ctx, stop := signal.NotifyContext(cmd.Context(), os.Interrupt)
	defer stop()

	if err := common.EnsureDirectories(); err != nil {
		return err
	}

	config.StatePath = common.StatePath(config.Name)
	config.Report = cmd.OutOrStdout()
	if addr != "" {
		config.Metrics = metrics.New()
	}

	coordinator, err := duel.New(ctx, config)
	if err != nil {
		return err
	}
	defer coordinator.Close()

	group, ctx := errgroup.WithContext(ctx)
	serving, done := context.WithCancel(ctx)

	var report duel.Report
	group.Go(func() error {
		defer done()
		report = coordinator.Run(ctx)
		return nil
	})

	if addr != "" {
		group.Go(func() error {
			logrus.Infof("Serving metrics at %s", addr)
			return config.Metrics.Serve(serving, addr)
		})
	}

	if err := group.Wait(); err != nil {
		return err
	}

	if report.Cause != nil && !errors.Is(report.Cause, duel.ErrConcluded) {
		logrus.Infof("Duel interrupted, restart it with: engineduel restart %s", config.Name)
	}

	return nil
}
