// Command seed loads the development data set into MongoDB or removes it.
//
//	seed import --dir dev-data/data
//	seed delete
package main

import (
	"context"
	"fmt"
	"os"
	"time"

	"github.com/joho/godotenv"
	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"github.com/iliyamo/tour-booking/internal/config"
	"github.com/iliyamo/tour-booking/internal/database"
	"github.com/iliyamo/tour-booking/internal/logger"
	"github.com/iliyamo/tour-booking/internal/repository"
	"github.com/iliyamo/tour-booking/internal/service"
)

var dataDir string

var rootCmd = &cobra.Command{
	Use:           "seed",
	Short:         "Manage the development data set",
	SilenceUsage:  true,
	SilenceErrors: true,
}

var importCmd = &cobra.Command{
	Use:   "import",
	Short: "Import tours, users and reviews from JSON files",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStores(cmd.Context(), func(ctx context.Context, s stores) error {
			return importData(ctx, s, dataDir)
		})
	},
}

var deleteCmd = &cobra.Command{
	Use:   "delete",
	Short: "Delete every tour, user and review",
	RunE: func(cmd *cobra.Command, _ []string) error {
		return withStores(cmd.Context(), func(ctx context.Context, s stores) error {
			return deleteData(ctx, s)
		})
	},
}

func init() {
	importCmd.Flags().StringVarP(&dataDir, "dir", "d", "dev-data/data", "directory holding tours.json, users.json and reviews.json")
	rootCmd.AddCommand(importCmd, deleteCmd)
}

type stores struct {
	tours   *repository.TourRepo
	users   *repository.UserRepo
	reviews *repository.ReviewRepo
	ratings *service.ReviewService
	cost    int
	log     *zap.Logger
}

func withStores(ctx context.Context, fn func(ctx context.Context, s stores) error) error {
	cfg := config.Load()
	log, err := logger.New(cfg.Env, cfg.LogLevel)
	if err != nil {
		return err
	}
	defer func() { _ = log.Sync() }()

	ctx, cancel := context.WithTimeout(ctx, 2*time.Minute)
	defer cancel()

	client, db, err := database.Open(ctx, cfg.MongoURI, cfg.MongoDB)
	if err != nil {
		return fmt.Errorf("connect mongodb: %w", err)
	}
	defer func() { _ = client.Disconnect(context.Background()) }()
	if err := database.EnsureIndexes(ctx, db); err != nil {
		return fmt.Errorf("ensure indexes: %w", err)
	}

	tours := repository.NewTourRepo(db)
	reviews := repository.NewReviewRepo(db)
	return fn(ctx, stores{
		tours:   tours,
		users:   repository.NewUserRepo(db),
		reviews: reviews,
		ratings: service.NewReviewService(reviews, tours, log),
		cost:    cfg.BcryptCost,
		log:     log,
	})
}

func main() {
	_ = godotenv.Load("config.env")
	if err := rootCmd.ExecuteContext(context.Background()); err != nil {
		fmt.Fprintln(os.Stderr, "seed:", err)
		os.Exit(1)
	}
}
