package main

import (
	"os"

	"github.com/sirupsen/logrus"

	"github.com/Alby-Shinoj7/docker-setup/internal/cli"
	"github.com/Alby-Shinoj7/docker-setup/internal/models"
)

func main() {
	// Setup logging format
	logrus.SetFormatter(&logrus.TextFormatter{
		FullTimestamp: true,
	})

	rootCmd := cli.NewRootCmd()
	if err := rootCmd.Execute(); err != nil {
		logrus.Error(err)
		os.Exit(models.ExitCode(err))
	}
}
