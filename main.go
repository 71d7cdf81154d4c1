package main

import (
	"context"
	"os"

	"github.com/sirupsen/logrus"

	"github.com/martinnovaak/engineduel/internal/engineduel/cmd"
)

func main() {
	logrus.SetFormatter(&logrus.TextFormatter{
		DisableTimestamp: true,
		PadLevelText:     true,
	})
	logrus.SetLevel(logrus.InfoLevel)

	if err := engineduel(); err != nil {
		logrus.Fatal(err)
	}
}

func engineduel() error {
	root := cmd.Root()
	root.SetArgs(os.Args[1:])
	return root.ExecuteContext(context.Background())
}
