package main

import (
	"context"
	"errors"
	"fmt"
	"net/http"
	"os"
	"os/signal"
	"syscall"
	"time"

	"github.com/drujensen/cliweb/internal/api"
	"github.com/drujensen/cliweb/internal/api/auth"
	"github.com/drujensen/cliweb/internal/api/websocket"
	"github.com/drujensen/cliweb/internal/domain/entities"
	"github.com/drujensen/cliweb/internal/domain/events"
	"github.com/drujensen/cliweb/internal/domain/interfaces"
	"github.com/drujensen/cliweb/internal/domain/services"
	"github.com/drujensen/cliweb/internal/impl/blob"
	"github.com/drujensen/cliweb/internal/impl/config"
	"github.com/drujensen/cliweb/internal/impl/database"
	"github.com/drujensen/cliweb/internal/impl/endpoints"
	"github.com/drujensen/cliweb/internal/impl/queue"
	repositoriesJson "github.com/drujensen/cliweb/internal/impl/repositories/json"
	repositoriesMongo "github.com/drujensen/cliweb/internal/impl/repositories/mongo"

	"github.com/spf13/cobra"
	"go.uber.org/zap"
)

var (
	version = "unknown" // This should be set during build with -ldflags="-X main.version=1.0.0"
)

const resource = "slicer_cli_web"

func main() {
	rootCmd := &cobra.Command{
		Use:     "cliweb",
		Short:   "REST endpoints for containerized command line tools",
		Version: version,
	}
	rootCmd.AddCommand(serveCmd(), tokenCmd())

	if err := rootCmd.Execute(); err != nil {
		os.Exit(1)
	}
}

func serveCmd() *cobra.Command {
	var storage string
	var debug bool
	cmd := &cobra.Command{
		Use:   "serve",
		Short: "Start the API server",
		RunE: func(cmd *cobra.Command, args []string) error {
			if storage != "file" && storage != "mongo" {
				return fmt.Errorf("invalid storage type: %s", storage)
			}
			return serve(cmd.Context(), storage, debug)
		},
	}
	cmd.Flags().StringVar(&storage, "storage", "file", "Storage type: file or mongo")
	cmd.Flags().BoolVar(&debug, "debug", false, "Enable debug logging")
	return cmd
}

func tokenCmd() *cobra.Command {
	var user entities.User
	var ttl time.Duration
	cmd := &cobra.Command{
		Use:   "token",
		Short: "Issue an API token signed with JWT_SECRET",
		RunE: func(cmd *cobra.Command, args []string) error {
			cfg, err := config.InitConfig()
			if err != nil {
				return err
			}
			if cfg.JWTSecret == "" {
				return errors.New("JWT_SECRET is not set")
			}
			if user.ID == "" {
				return errors.New("--user is required")
			}
			if user.Login == "" {
				user.Login = user.ID
			}
			token, err := auth.IssueToken(cfg.JWTSecret, &user, ttl)
			if err != nil {
				return err
			}
			fmt.Fprintln(cmd.OutOrStdout(), token)
			return nil
		},
	}
	cmd.Flags().StringVar(&user.ID, "user", "", "User id to put in the token")
	cmd.Flags().StringVar(&user.Login, "login", "", "User login (defaults to the id)")
	cmd.Flags().BoolVar(&user.Admin, "admin", false, "Grant administrator access")
	cmd.Flags().DurationVar(&ttl, "ttl", 30*24*time.Hour, "Token lifetime")
	return cmd
}

type repositories struct {
	folders interfaces.FolderRepository
	items   interfaces.ItemRepository
	files   interfaces.FileRepository
	jobs    interfaces.JobRepository
	close   func()
}

func openRepositories(ctx context.Context, storage string, cfg *config.Config, logger *zap.Logger) (*repositories, error) {
	if storage == "mongo" {
		db, err := database.NewMongoDB(cfg.MongoURI, cfg.MongoDatabase, logger)
		if err != nil {
			return nil, fmt.Errorf("failed to connect to MongoDB: %w", err)
		}
		if err := db.EnsureIndexes(ctx); err != nil {
			return nil, fmt.Errorf("failed to create indexes: %w", err)
		}
		return &repositories{
			folders: repositoriesMongo.NewMongoFolderRepository(db.Collection(database.FoldersCollection)),
			items:   repositoriesMongo.NewMongoItemRepository(db.Collection(database.ItemsCollection)),
			files:   repositoriesMongo.NewMongoFileRepository(db.Collection(database.FilesCollection)),
			jobs:    repositoriesMongo.NewMongoJobRepository(db.Collection(database.JobsCollection)),
			close:   func() { db.Disconnect(context.Background()) },
		}, nil
	}

	folders, err := repositoriesJson.NewJSONFolderRepository(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize folder repository: %w", err)
	}
	items, err := repositoriesJson.NewJSONItemRepository(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize item repository: %w", err)
	}
	files, err := repositoriesJson.NewJSONFileRepository(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize file repository: %w", err)
	}
	jobs, err := repositoriesJson.NewJSONJobRepository(cfg.DataDir)
	if err != nil {
		return nil, fmt.Errorf("failed to initialize job repository: %w", err)
	}
	return &repositories{folders: folders, items: items, files: files, jobs: jobs, close: func() {}}, nil
}

func openBlobStore(ctx context.Context, cfg *config.Config, logger *zap.Logger) (interfaces.BlobStore, error) {
	if cfg.UseMinio() {
		return blob.NewMinioStore(ctx, cfg.MinioEndpoint, cfg.MinioAccessKey, cfg.MinioSecretKey, cfg.MinioBucket, cfg.MinioSecure, logger)
	}
	return blob.NewFileStore(cfg.DataDir)
}

func serve(parent context.Context, storage string, debug bool) error {
	logConfig := zap.NewDevelopmentConfig()
	logConfig.Level = zap.NewAtomicLevelAt(zap.InfoLevel)
	if debug {
		logConfig.Level = zap.NewAtomicLevelAt(zap.DebugLevel)
	}
	logger, err := logConfig.Build()
	if err != nil {
		return fmt.Errorf("failed to initialize logger: %w", err)
	}
	defer logger.Sync()

	cfg, err := config.InitConfig()
	if err != nil {
		return fmt.Errorf("failed to load config: %w", err)
	}

	ctx, stop := signal.NotifyContext(parent, os.Interrupt, syscall.SIGTERM)
	defer stop()

	repos, err := openRepositories(ctx, storage, cfg, logger)
	if err != nil {
		return err
	}
	defer repos.close()

	blobs, err := openBlobStore(ctx, cfg, logger)
	if err != nil {
		return fmt.Errorf("failed to initialize blob store: %w", err)
	}

	var dispatcher interfaces.JobDispatcher
	var jobQueue interfaces.JobQueue
	if cfg.UseKafka() {
		kafkaDispatcher := queue.NewKafkaDispatcher(cfg.KafkaBrokers, cfg.KafkaJobTopic, logger)
		defer kafkaDispatcher.Close()
		dispatcher = kafkaDispatcher
	} else {
		localDispatcher := queue.NewLocalDispatcher(logger)
		dispatcher = localDispatcher
		jobQueue = localDispatcher
	}

	storageService := services.NewStorageService(repos.folders, repos.items, repos.files, blobs, logger)
	registry := services.NewImageRegistry(repos.folders, repos.items, repos.files, storageService, logger)
	jobService := services.NewJobService(repos.jobs, registry, dispatcher, logger)
	binder := services.NewBindingService(storageService, logger)
	synth := endpoints.NewSynthesizer(resource, registry, binder, jobService, logger)
	jobService.AddObserver(synth)
	imageService := services.NewDockerImageService(registry, storageService, jobService, synth, cfg.DefaultTaskFolder, logger)

	unsubscribe := events.SubscribeToFileUploadedEvents(func(data events.FileUploadedEventData) {
		if err := jobService.HandleFileUploaded(context.Background(), data.File); err != nil {
			logger.Warn("Failed to link uploaded file to its job", zap.String("file_id", data.File.ID), zap.Error(err))
		}
	})
	defer unsubscribe()

	if _, err := jobService.CancelStaleJobs(ctx, cfg.StaleJobAge); err != nil {
		logger.Warn("Failed to cancel stale jobs", zap.Error(err))
	}
	if err := synth.RebuildAll(ctx); err != nil {
		logger.Error("Failed to install CLI endpoints", zap.Error(err))
	}

	if cfg.UseKafka() {
		consumer := queue.NewStatusConsumer(cfg.KafkaBrokers, cfg.KafkaStatusTopic, cfg.KafkaGroupID, jobService, logger)
		defer consumer.Close()
		go consumer.Run(ctx)
	}

	hub := websocket.NewJobHub(logger)
	defer hub.Close()

	server := api.NewServer(api.Dependencies{
		Images:      imageService,
		Registry:    registry,
		Storage:     storageService,
		Jobs:        jobService,
		Queue:       jobQueue,
		Synthesizer: synth,
		Hub:         hub,
	}, cfg.JWTSecret, logger)

	errCh := make(chan error, 1)
	go func() {
		errCh <- server.Start(cfg.ListenAddr)
	}()

	select {
	case err := <-errCh:
		if !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	case <-ctx.Done():
	}

	logger.Info("Shutting down")
	shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()
	return server.Shutdown(shutdownCtx)
}
