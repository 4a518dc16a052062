package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"uma-config/cli"
)

func main() {
	if err := cli.NewRootCmd().Execute(); err != nil {
		logrus.WithError(err).Error("uma-config failed")
		os.Exit(1)
	}
}
