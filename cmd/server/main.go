package main

import (
	"context"
	"errors"
	"fmt"
	"log"
	"net/http"
	"os/signal"
	"path"
	"syscall"
	"time"

	"github.com/aws/aws-sdk-go-v2/aws"
	awsconfig "github.com/aws/aws-sdk-go-v2/config"
	"github.com/aws/aws-sdk-go-v2/credentials"
	"github.com/aws/aws-sdk-go-v2/service/dynamodb"
	"github.com/aws/aws-sdk-go-v2/service/s3"
	"github.com/aws/aws-sdk-go-v2/service/secretsmanager"
	"github.com/aws/aws-sdk-go-v2/service/transfer"
	"github.com/prometheus/client_golang/prometheus"
	"go.uber.org/zap"
	"golang.org/x/sync/errgroup"

	"github.com/sftpflow/sftpflow/internal/api"
	"github.com/sftpflow/sftpflow/internal/api/handlers"
	"github.com/sftpflow/sftpflow/internal/config"
	"github.com/sftpflow/sftpflow/internal/connector"
	"github.com/sftpflow/sftpflow/internal/metrics"
	"github.com/sftpflow/sftpflow/internal/notify"
	"github.com/sftpflow/sftpflow/internal/objstore"
	"github.com/sftpflow/sftpflow/internal/secrets"
	"github.com/sftpflow/sftpflow/internal/sftpls"
	"github.com/sftpflow/sftpflow/internal/statestore"
	"github.com/sftpflow/sftpflow/internal/statestore/dynamo"
	"github.com/sftpflow/sftpflow/internal/statestore/memory"
	"github.com/sftpflow/sftpflow/internal/statestore/postgres"
	"github.com/sftpflow/sftpflow/internal/workflow"
	"github.com/sftpflow/sftpflow/pkg/logger"
)

// @title SFTPFlow API
// @version 1.0
// @description Trigger endpoints for SFTP connector file transfer automation.
// @BasePath /
func main() {
	cfg, err := config.Load()
	if err != nil {
		log.Fatalf("Invalid configuration: %v", err)
	}

	zl := logger.Init(cfg.LogFormat, cfg.LogLevel)
	defer zl.Sync()
	zap.ReplaceGlobals(zl)

	ctx, stop := signal.NotifyContext(context.Background(), syscall.SIGINT, syscall.SIGTERM)
	defer stop()

	awsCfg, err := loadAWSConfig(ctx, cfg.AWS)
	if err != nil {
		zap.S().Fatalw("failed to load AWS configuration", "error", err)
	}

	store, err := buildStore(cfg, awsCfg)
	if err != nil {
		zap.S().Fatalw("failed to initialize status store", "error", err)
	}
	zap.S().Infow("status store initialized", "backend", cfg.StateStore)

	bucket := objstore.NewBucket(s3.NewFromConfig(awsCfg, func(o *s3.Options) {
		if cfg.AWS.Endpoint != "" {
			o.UsePathStyle = true
		}
	}), cfg.BucketName)
	if err := bucket.Verify(ctx); err != nil {
		zap.S().Warnw("bucket check failed", "bucket", cfg.BucketName, "error", err)
	}

	conn := connector.New(transfer.NewFromConfig(awsCfg), bucket, connector.ListingConfig{
		OutputPrefix: cfg.Listing.Prefix,
		MaxItems:     int32(cfg.Listing.MaxItems),
		PollInterval: cfg.Listing.PollInterval,
		MaxAttempts:  cfg.Listing.MaxAttempts,
	})

	var lister workflow.Lister
	if cfg.SFTP.Addr != "" {
		fetcher := secrets.NewFetcher(secretsmanager.NewFromConfig(awsCfg))
		lister = sftpls.NewLister(fetcher, cfg.SFTP.SecretID, sftpls.Config{
			Addr:    cfg.SFTP.Addr,
			HostKey: cfg.SFTP.HostKey,
			Timeout: cfg.SFTP.Timeout,
		})
		zap.S().Infow("listing directories over SFTP", "addr", cfg.SFTP.Addr)
	} else {
		lister = workflow.NewConnectorLister(conn, cfg.ConnectorID)
		zap.S().Info("listing directories through the connector")
	}

	var notifier workflow.Notifier
	if cfg.Webhook.URL != "" {
		notifier = notify.New(notify.Config{
			URL:          cfg.Webhook.URL,
			ClientID:     cfg.Webhook.ClientID,
			ClientSecret: cfg.Webhook.ClientSecret,
			TokenURL:     cfg.Webhook.TokenURL,
		})
	}

	registry := prometheus.NewRegistry()
	m := metrics.New(registry)

	localDir := "/" + path.Join(cfg.BucketName, cfg.DestPrefix)

	retriever := workflow.NewRetriever(store, conn, cfg.ConnectorID, localDir, m)
	directory := workflow.NewDirectoryRetriever(store, conn, lister, cfg.ConnectorID, cfg.SourceDir, localDir, m)
	sender := workflow.NewSender(conn, cfg.ConnectorID, cfg.SendRemoteDir, m)
	reconciler := workflow.NewReconciler(store, conn, workflow.Strategy(cfg.ReconcileStrategy), notifier, m)

	router := api.SetupRouter(api.RouterOptions{
		Handler:   handlers.New(retriever, directory, sender, reconciler),
		Cors:      cfg.CorsConfig,
		JWTSecret: cfg.JWTSecret,
		Registry:  registry,
	})

	server := &http.Server{
		Addr:    fmt.Sprintf(":%s", cfg.Port),
		Handler: router,
		// Directory triggers may poll for a listing manifest for up to a
		// minute, so the write timeout has to outlast that.
		ReadTimeout:  5 * time.Second,
		WriteTimeout: 2 * time.Minute,
		IdleTimeout:  120 * time.Second,
	}

	g, gctx := errgroup.WithContext(ctx)

	g.Go(func() error {
		zap.S().Infof("Starting sftpflow server on port: %s", cfg.Port)
		if err := server.ListenAndServe(); err != nil && !errors.Is(err, http.ErrServerClosed) {
			return err
		}
		return nil
	})

	g.Go(func() error {
		<-gctx.Done()
		shutdownCtx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
		defer cancel()
		return server.Shutdown(shutdownCtx)
	})

	if cfg.ReconcileInterval > 0 {
		g.Go(func() error {
			ticker := time.NewTicker(cfg.ReconcileInterval)
			defer ticker.Stop()
			zap.S().Infow("reconcile ticker started", "interval", cfg.ReconcileInterval)
			for {
				select {
				case <-gctx.Done():
					return nil
				case <-ticker.C:
					if _, err := reconciler.Run(gctx); err != nil {
						zap.S().Errorw("scheduled reconciliation failed", "error", err)
					}
				}
			}
		})
	}

	if err := g.Wait(); err != nil {
		zap.S().Fatalw("server exited", "error", err)
	}
	zap.S().Info("server shutdown")
}

// loadAWSConfig builds the SDK configuration. A custom endpoint (local stacks,
// S3-compatible stores) is applied to every service client, with static keys
// when provided.
func loadAWSConfig(ctx context.Context, c config.AWSConfig) (aws.Config, error) {
	var opts []func(*awsconfig.LoadOptions) error
	if c.Region != "" {
		opts = append(opts, awsconfig.WithRegion(c.Region))
	}
	if c.Endpoint != "" {
		opts = append(opts, awsconfig.WithBaseEndpoint(c.Endpoint))
		if c.AccessKeyID != "" {
			opts = append(opts, awsconfig.WithCredentialsProvider(
				credentials.NewStaticCredentialsProvider(c.AccessKeyID, c.SecretAccessKey, ""),
			))
		}
	}
	return awsconfig.LoadDefaultConfig(ctx, opts...)
}

func buildStore(cfg *config.Config, awsCfg aws.Config) (statestore.Store, error) {
	switch cfg.StateStore {
	case config.StorePostgres:
		return postgres.Open(cfg.DBURL)
	case config.StoreMemory:
		return memory.New(), nil
	default:
		return dynamo.New(dynamodb.NewFromConfig(awsCfg), cfg.BatchTableName, cfg.FileTableName), nil
	}
}
