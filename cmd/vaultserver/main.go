package main

import (
	"errors"
	"log"
	"os"
	"os/signal"
	"syscall"

	"github.com/urfave/cli/v2"

	"github.com/imgvault/imgvault/catalog"
	"github.com/imgvault/imgvault/cmd/flags"
	"github.com/imgvault/imgvault/httpserver"
	"github.com/imgvault/imgvault/interfaces"
	"github.com/imgvault/imgvault/storage"
	"github.com/imgvault/imgvault/vault"
)

var serverFlags = append([]cli.Flag{
	flags.ListenAddrFlag,
	flags.BlobStoreFlag,
	flags.CatalogPathFlag,
	flags.MaxObjectSizeFlag,
	flags.CompressFlag,
	flags.LogServiceFlagFn("imgvault-server"),
}, flags.CommonFlags...)

func main() {
	app := &cli.App{
		Name:  "vaultserver",
		Usage: "Serve the encrypted image vault API",
		Flags: serverFlags,
		Action: func(cCtx *cli.Context) error {
			logger := flags.SetupLogger(cCtx)

			// Metadata catalog: bbolt on disk, or in-memory when no
			// path is given.
			var cat interfaces.MetadataCatalog
			if catalogPath := cCtx.String(flags.CatalogPathFlag.Name); catalogPath != "" {
				boltCat, err := catalog.OpenBoltCatalog(catalogPath, logger)
				if err != nil {
					logger.Error("Failed to open metadata catalog", "path", catalogPath, "err", err)
					return err
				}
				defer boltCat.Close()
				cat = boltCat
			} else {
				logger.Warn("No catalog path given, using in-memory catalog; records will not survive restarts")
				cat = catalog.NewMemoryCatalog()
			}

			// Blob store: one backend, or a replicated multi-store
			// when several URIs are given.
			storeURIs := cCtx.StringSlice(flags.BlobStoreFlag.Name)
			if len(storeURIs) == 0 {
				return errors.New("at least one --blob-store URI is required")
			}

			locations := make([]interfaces.BlobStoreLocation, 0, len(storeURIs))
			for _, uri := range storeURIs {
				location, err := interfaces.NewBlobStoreLocation(uri)
				if err != nil {
					logger.Error("Invalid blob store URI", "uri", uri, "err", err)
					return err
				}
				locations = append(locations, location)
			}

			factory := storage.NewFactory(logger)
			var blobs interfaces.BlobStore
			var err error
			if len(locations) == 1 {
				blobs, err = factory.BlobStoreFor(locations[0])
			} else {
				blobs, err = factory.CreateMultiStore(locations)
			}
			if err != nil {
				logger.Error("Failed to create blob store", "err", err)
				return err
			}

			svc, err := vault.NewService(blobs, cat, vault.Config{
				MaxObjectSize: cCtx.Int64(flags.MaxObjectSizeFlag.Name),
				Compress:      cCtx.Bool(flags.CompressFlag.Name),
				Log:           logger,
			})
			if err != nil {
				logger.Error("Failed to create vault service", "err", err)
				return err
			}

			cfg := flags.ConfigureServer(cCtx, logger, cCtx.String(flags.ListenAddrFlag.Name))
			server, err := httpserver.New(cfg, httpserver.NewHandler(svc, logger))
			if err != nil {
				logger.Error("Failed to create server", "err", err)
				return err
			}

			server.RunInBackground()

			exit := make(chan os.Signal, 1)
			signal.Notify(exit, os.Interrupt, syscall.SIGTERM)

			logger.Info("Server is running, press Ctrl+C to stop")
			<-exit
			logger.Info("Shutdown signal received")

			server.Shutdown()
			logger.Info("Server shutdown complete")

			return nil
		},
	}

	if err := app.Run(os.Args); err != nil {
		log.Fatal(err)
	}
}
