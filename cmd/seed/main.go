package main

import (
	"errors"
	"fmt"
	"os"

	"github.com/spf13/cobra"

	"github.com/sahilchouksey/examace-vault/config"
	"github.com/sahilchouksey/examace-vault/database"
	"github.com/sahilchouksey/examace-vault/services/storage"
	"github.com/sahilchouksey/examace-vault/utils"
)

func main() {
	var withBucket bool

	cmd := &cobra.Command{
		Use:          "seed",
		Short:        "Seed the catalog and import papers from the bucket",
		SilenceUsage: true,
		RunE: func(cmd *cobra.Command, args []string) error {
			return run(cmd, withBucket)
		},
	}
	cmd.Flags().BoolVar(&withBucket, "bucket", false, "import resources from papers/ in the configured Spaces bucket")

	if err := cmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func run(cmd *cobra.Command, withBucket bool) error {
	if err := config.LoadENV(); err != nil && !errors.Is(err, os.ErrNotExist) {
		return err
	}
	env, err := config.Get()
	if err != nil {
		return err
	}

	log, closeLog, err := utils.NewLogger(utils.LoggerConfig{Level: env.LOG_LEVEL, Pretty: true})
	if err != nil {
		return err
	}
	defer closeLog()

	store, err := database.StartGORM(env, log)
	if err != nil {
		return err
	}
	defer store.Close()

	if err := store.Init(); err != nil {
		return fmt.Errorf("run migrations: %w", err)
	}

	var objects database.ObjectLister
	if withBucket {
		spaces, err := storage.NewSpacesClient(storage.SpacesConfig{
			AccessKey: env.SPACES_ACCESS_KEY,
			SecretKey: env.SPACES_SECRET_KEY,
			Bucket:    env.SPACES_BUCKET,
			Region:    env.SPACES_REGION,
			Endpoint:  env.SPACES_ENDPOINT,
		})
		if err != nil {
			return err
		}
		objects = spaces
	}

	return database.NewSeeder(store.DB(), objects, log).SeedAll(cmd.Context())
}
