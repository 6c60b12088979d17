// Command agencyctl manages admin accounts and stored content from the shell.
package main

import (
	"fmt"
	"io"
	"os"

	"github.com/joho/godotenv"
	"github.com/sirupsen/logrus"
	"github.com/spf13/cobra"
	"gorm.io/gorm"

	"github.com/camden-git/agencybackend/config"
	"github.com/camden-git/agencybackend/database"
)

// openDB is replaced in tests.
var openDB = func(log *logrus.Logger) (*gorm.DB, error) {
	cfg, err := config.LoadConfig()
	if err != nil {
		return nil, fmt.Errorf("failed to load configuration: %w", err)
	}
	db, err := database.InitGormDB(cfg.DBDriver, cfg.DatabaseURL, log)
	if err != nil {
		return nil, err
	}
	if err := database.AutoMigrateModels(db); err != nil {
		return nil, err
	}
	return db, nil
}

func newRootCmd(in io.Reader, out io.Writer) *cobra.Command {
	log := logrus.New()
	log.SetOutput(os.Stderr)
	log.SetLevel(logrus.WarnLevel)

	root := &cobra.Command{
		Use:           "agencyctl",
		Short:         "Operator tooling for the agency backend",
		SilenceUsage:  true,
		SilenceErrors: true,
	}
	root.SetIn(in)
	root.SetOut(out)

	root.AddCommand(newAdminCmd(log), newDataCmd(log))
	return root
}

func main() {
	_ = godotenv.Load()

	if err := newRootCmd(os.Stdin, os.Stdout).Execute(); err != nil {
		fmt.Fprintln(os.Stderr, "Error:", err)
		os.Exit(1)
	}
}
