// Command-line tool to clean the database by dropping all tables in the public schema.
package main

import (
	"bufio"
	"context"
	"flag"
	"fmt"
	"os"
	"strings"
	"time"

	"go.uber.org/zap"

	"github.com/Sseankzs/openprofile/internal/database"
	"github.com/Sseankzs/openprofile/internal/logger"
	"github.com/Sseankzs/openprofile/internal/storage"
)

var buckets = []string{
	storage.BucketResumes,
	storage.BucketCoverLetters,
	storage.BucketApplicantImages,
	storage.BucketCompanyLogos,
}

func main() {
	purge := flag.Bool("purge-storage", false, "also delete every object in the configured cloud storage bucket")
	yes := flag.Bool("yes", false, "skip the confirmation prompt")
	flag.Parse()

	flush := logger.Init()
	defer flush()

	if !*yes && !confirm() {
		fmt.Println("Operation cancelled.")
		return
	}

	ctx, cancel := context.WithTimeout(context.Background(), 5*time.Minute)
	defer cancel()

	db, err := database.GetMainDB()
	if err != nil {
		zap.L().Fatal("database failed to initialize", zap.Error(err))
	}
	defer func() { _ = db.Close() }()

	if *purge {
		// objects kept by the database backend go away with its table
		store, err := storage.NewFromEnv(ctx, storage.NewDBStorageClient(db, ""))
		if err != nil {
			zap.L().Fatal("storage failed to initialize", zap.Error(err))
		}
		purgeStorage(ctx, store)
	}

	dropped, err := db.DropAllTables(ctx)
	if err != nil {
		zap.L().Fatal("failed to drop tables", zap.Error(err))
	}
	zap.L().Info("all tables dropped", zap.Strings("tables", dropped))
}

func confirm() bool {
	fmt.Println("⚠️ WARNING: This command will DROP ALL TABLES in the 'public' schema of your database.")
	fmt.Println("This action is irreversible. Do you want to continue? (yes/no): ")

	input, err := bufio.NewReader(os.Stdin).ReadString('\n')
	if err != nil {
		zap.L().Fatal("failed to read input", zap.Error(err))
	}
	return strings.TrimSpace(strings.ToLower(input)) == "yes"
}

func purgeStorage(ctx context.Context, store storage.Client) {
	for _, bucket := range buckets {
		names, err := store.List(ctx, bucket, "")
		if err != nil {
			zap.L().Error("failed to list objects", zap.String("bucket", bucket), zap.Error(err))
			continue
		}
		for _, name := range names {
			if err := store.Delete(ctx, bucket, name); err != nil {
				zap.L().Warn("failed to delete object", zap.String("bucket", bucket), zap.String("object", name), zap.Error(err))
			}
		}
		zap.L().Info("purged bucket", zap.String("bucket", bucket), zap.Int("objects", len(names)))
	}
}
