package main

import (
	"context"
	"fmt"
	"log/slog"
	"os"

	"github.com/labstack/echo/v4"
	echomiddleware "github.com/labstack/echo/v4/middleware"
	"github.com/spf13/cobra"
	"go.opentelemetry.io/contrib/instrumentation/github.com/labstack/echo/otelecho"

	"github.com/shelterhub/adoptd/internal/config"
	"github.com/shelterhub/adoptd/internal/infrastructure/providers"
	"github.com/shelterhub/adoptd/internal/infrastructure/repository"
	"github.com/shelterhub/adoptd/internal/present/rest"
	"github.com/shelterhub/adoptd/internal/present/rest/middleware"
	"github.com/shelterhub/adoptd/internal/service"
	"github.com/shelterhub/adoptd/internal/usecase"
)

var configPath string

var rootCmd = &cobra.Command{
	Use:   "adoptd",
	Short: "Adoption request lifecycle server",
}

func main() {
	rootCmd.PersistentFlags().StringVarP(&configPath, "config", "c", "config.yaml", "path to config file")
	rootCmd.AddCommand(serveCmd())
	rootCmd.AddCommand(migrateCmd())
	if err := rootCmd.Execute(); err != nil {
		fmt.Println("error:", err)
		os.Exit(1)
	}
}

func migrateCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "migrate",
		Short: "Apply database migrations",
		RunE: func(cmd *cobra.Command, args []string) error {
			conf, err := config.Load(configPath)
			if err != nil {
				return err
			}
			db, err := providers.NewDatabase(conf.Server)
			if err != nil {
				return err
			}
			return providers.MigrateDatabase(db)
		},
	}
}

func serveCmd() *cobra.Command {
	return &cobra.Command{
		Use:   "serve",
		Short: "Start the HTTP server",
		RunE: func(cmd *cobra.Command, args []string) error {
			ctx := cmd.Context()

			conf, err := config.Load(configPath)
			if err != nil {
				return err
			}

			if conf.Server.EnableTrace {
				shutdown, err := providers.SetupTracing(ctx, conf.Server)
				if err != nil {
					return err
				}
				defer func() {
					if err := shutdown(context.Background()); err != nil {
						slog.Error("trace shutdown failed", slog.String("error", err.Error()))
					}
				}()
			}

			db, err := providers.NewDatabase(conf.Server)
			if err != nil {
				return err
			}
			if err := providers.MigrateDatabase(db); err != nil {
				return err
			}

			rdb := providers.NewRedis(conf.Server)
			mc := providers.NewMemcache(conf.Server)

			blobStore, err := providers.NewBlobStore(ctx, conf.Blob)
			if err != nil {
				return err
			}

			requestRepo := repository.NewRequestRepository(db)
			accessRepo := repository.NewAccessRepository(db, rdb)
			membershipRepo := repository.NewMembershipRepository(db)
			messageRepo := repository.NewMessageRepository(db)
			notificationRepo := repository.NewNotificationRepository(db)
			emailQueueRepo := repository.NewEmailQueueRepository(db)
			directory := repository.NewAdopterDirectory(db, mc)

			signal := service.NewSignalService(rdb)
			dispatcher := service.NewDispatcher(notificationRepo, emailQueueRepo, membershipRepo, signal)
			auth := service.NewAuthService(conf.Auth.Secret, conf.Auth.Audience)

			accessUC := usecase.NewAccessUsecase(accessRepo, membershipRepo)
			infoUC := usecase.NewInfoRequestUsecase(accessUC, requestRepo, messageRepo, blobStore, directory, dispatcher)
			requestUC := usecase.NewRequestUsecase(accessUC, requestRepo, blobStore, directory, dispatcher)

			e := echo.New()
			e.Use(echomiddleware.Logger())
			e.Use(echomiddleware.Recover())
			e.Use(echomiddleware.CORS())
			if conf.Server.EnableTrace {
				e.Use(otelecho.Middleware("adoptd"))
			}
			e.Use(middleware.NewAuthMiddleware(auth).IdentifyPrincipal)

			handler := rest.NewHandler(infoUC, requestUC, signal)
			handler.RegisterRoutes(e)

			e.Logger.Fatal(e.Start(conf.Server.Listen))
			return nil
		},
	}
}
