package main

import (
	"context"
	"database/sql"
	"encoding/json"
	"errors"
	"fmt"
	"mime"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/libertyplace/rentapp/internal"
	"github.com/libertyplace/rentapp/internal/clients"
	"github.com/libertyplace/rentapp/internal/encryption"
	"github.com/libertyplace/rentapp/internal/server"
	"github.com/libertyplace/rentapp/internal/storage"
	"github.com/spf13/cobra"
)

var serveCmd = &cobra.Command{
	Use:   "serve",
	Short: "Run the intake HTTP API",
	RunE: func(cmd *cobra.Command, args []string) error {
		ctx := cmd.Context()
		log := internal.GetDefaultLogger()
		rb := clients.NewRequestBuilder(cfg, log)

		deps := server.Deps{
			Webhook:  rb.Webhook,
			Exporter: newComposer(cfg),
			Log:      log,
		}
		if rb.Board != nil {
			deps.Board = rb.Board
		}
		if rb.Cache != nil {
			if err := rb.Cache.Ping(ctx); err != nil {
				log.Warn("Unit cache unavailable, continuing without it: %v", err)
			}
		}

		if cfg.Encryption.Key != "" {
			sealer, err := encryption.NewSealer(cfg.Encryption.Key)
			if err != nil {
				return err
			}
			deps.Sealer = sealer
		} else {
			log.Warn("No encryption key configured; file uploads are disabled")
		}

		if cfg.Database.Postgres.DSN != "" {
			db, err := storage.NewPostgres(ctx, cfg.Database.Postgres)
			if err != nil {
				return err
			}
			defer closeDB(db)

			store := storage.NewStore(db, log)
			if err := store.Migrate(ctx); err != nil {
				return err
			}
			deps.Store = store
		} else {
			log.Warn("No database configured; application routes are disabled")
		}

		srv := server.New(deps, server.Options{
			Address:         cfg.Server.Address,
			ShutdownTimeout: cfg.Server.ShutdownTimeout,
			MaxBodyMB:       cfg.Server.MaxBodyMB,
			MaxFileSizeMB:   cfg.Encryption.MaxFileSizeMB,
			MetricsEnabled:  cfg.Metrics.Enabled,
			MetricsPath:     cfg.Metrics.Path,
		})
		return srv.Run(ctx)
	},
}

func closeDB(db *sql.DB) {
	if err := db.Close(); err != nil {
		internal.WarningLog("Closing database: %v", err)
	}
}

func boardClient() (*clients.BoardClient, error) {
	rb := clients.NewRequestBuilder(cfg, internal.GetDefaultLogger())
	if rb.Board == nil {
		return nil, errors.New("board client is not configured: set MONDAY_API_TOKEN")
	}
	return rb.Board, nil
}

func printJSON(v any) error {
	enc := json.NewEncoder(os.Stdout)
	enc.SetIndent("", "  ")
	return enc.Encode(v)
}

var (
	unitsBuilding      string
	unitsBuildingsOnly bool
)

var unitsCmd = &cobra.Command{
	Use:   "units",
	Short: "List vacant units from the project board",
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := boardClient()
		if err != nil {
			return err
		}
		units, err := board.FetchVacantUnits(cmd.Context())
		if err != nil {
			return err
		}
		if unitsBuilding != "" {
			units = clients.UnitsByBuilding(units, unitsBuilding)
		}
		if unitsBuildingsOnly {
			return printJSON(clients.UniqueBuildings(units))
		}
		return printJSON(units)
	},
}

var missingDocsCmd = &cobra.Command{
	Use:   "missing-docs <applicantId>",
	Short: "List documents still marked missing for an applicant",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		board, err := boardClient()
		if err != nil {
			return err
		}
		items, err := board.FetchMissingSubitems(cmd.Context(), args[0])
		if err != nil {
			return err
		}
		return printJSON(items)
	},
}

var (
	sendInput         string
	sendApplicationID string
	sendFileName      string
)

var sendPDFCmd = &cobra.Command{
	Use:   "send-pdf",
	Short: "Compose a bundle and post the PDF to the file webhook",
	RunE: func(cmd *cobra.Command, args []string) error {
		bundle, err := readBundle(sendInput)
		if err != nil {
			return err
		}
		pdf, err := newComposer(cfg).Compose(bundle)
		if err != nil {
			return err
		}

		rb := clients.NewRequestBuilder(cfg, internal.GetDefaultLogger())
		referenceID := clients.NewReferenceID()
		res := rb.Webhook.SendPDF(cmd.Context(), referenceID, sendApplicationID, sendFileName, pdf)
		if !res.Success {
			return errors.New(res.Error)
		}
		internal.SuccessLog("Sent %d byte PDF (reference %s)", len(pdf), referenceID)
		return nil
	},
}

func init() {
	unitsCmd.Flags().StringVar(&unitsBuilding, "building", "", "only list units in this building")
	unitsCmd.Flags().BoolVar(&unitsBuildingsOnly, "buildings", false, "list distinct buildings instead of units")

	sendPDFCmd.Flags().StringVarP(&sendInput, "input", "i", "", "bundle JSON file to render")
	sendPDFCmd.Flags().StringVar(&sendApplicationID, "application-id", "unknown", "application id sent with the PDF")
	sendPDFCmd.Flags().StringVar(&sendFileName, "name", "", "file name sent with the PDF")
	_ = sendPDFCmd.MarkFlagRequired("input")

	encryptCmd.Flags().StringVarP(&encryptOutput, "output", "o", "encrypted.json", "where to write the sealed payload")
	encryptCmd.Flags().StringVar(&encryptDocument, "document", "documents", "document slot the files belong to")

	decryptCmd.Flags().StringVarP(&decryptDir, "dir", "d", ".", "directory to restore files into")
}

func newSealer() (*encryption.Sealer, error) {
	if cfg.Encryption.Key == "" {
		return nil, errors.New("no encryption key configured: set ENCRYPTION_KEY or run 'rentapp keygen'")
	}
	return encryption.NewSealer(cfg.Encryption.Key)
}

var (
	encryptOutput   string
	encryptDocument string
	decryptDir      string
)

var encryptCmd = &cobra.Command{
	Use:   "encrypt <file>...",
	Short: "Seal documents into an encrypted payload",
	Args:  cobra.MinimumNArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sealer, err := newSealer()
		if err != nil {
			return err
		}

		payload := encryption.NewPayload(time.Now())
		for _, path := range args {
			data, err := os.ReadFile(path)
			if err != nil {
				return fmt.Errorf("failed to read %s: %w", path, err)
			}
			name := filepath.Base(path)
			if err := encryption.ValidateFile(name, int64(len(data)), cfg.Encryption.MaxFileSizeMB); err != nil {
				return err
			}
			sealed, err := sealer.EncryptFile(name, mime.TypeByExtension(strings.ToLower(filepath.Ext(name))), data)
			if err != nil {
				return err
			}
			payload.Add(encryptDocument, *sealed)
		}

		raw, err := json.MarshalIndent(payload, "", "  ")
		if err != nil {
			return err
		}
		if err := os.WriteFile(encryptOutput, raw, 0o600); err != nil {
			return fmt.Errorf("failed to write payload: %w", err)
		}

		summary := encryption.Summarize(payload)
		internal.SuccessLog("Sealed %d files (%d bytes) into %s", summary.TotalFiles, summary.TotalSize, encryptOutput)
		return nil
	},
}

var decryptCmd = &cobra.Command{
	Use:   "decrypt <payload.json>",
	Short: "Restore the files of an encrypted payload",
	Args:  cobra.ExactArgs(1),
	RunE: func(cmd *cobra.Command, args []string) error {
		sealer, err := newSealer()
		if err != nil {
			return err
		}
		raw, err := os.ReadFile(args[0])
		if err != nil {
			return fmt.Errorf("failed to read payload: %w", err)
		}
		var payload encryption.Payload
		if err := json.Unmarshal(raw, &payload); err != nil {
			return fmt.Errorf("failed to decode payload: %w", err)
		}
		if !payload.Valid() {
			return errors.New(encryption.Summarize(&payload).Error)
		}
		return restoreFiles(cmd.Context(), sealer, &payload, decryptDir)
	},
}

func restoreFiles(ctx context.Context, sealer *encryption.Sealer, payload *encryption.Payload, dir string) error {
	if err := os.MkdirAll(dir, 0o700); err != nil {
		return fmt.Errorf("failed to create %s: %w", dir, err)
	}
	for _, f := range payload.AllEncryptedFiles {
		if err := ctx.Err(); err != nil {
			return err
		}
		data, err := sealer.DecryptFile(&f)
		if err != nil {
			return err
		}
		out := filepath.Join(dir, filepath.Base(f.Filename))
		if err := os.WriteFile(out, data, 0o600); err != nil {
			return fmt.Errorf("failed to write %s: %w", out, err)
		}
		internal.SuccessLog("Restored %s", out)
	}
	return nil
}

var keygenCmd = &cobra.Command{
	Use:   "keygen",
	Short: "Print a new base64 encryption key",
	RunE: func(cmd *cobra.Command, args []string) error {
		key, err := encryption.GenerateKey()
		if err != nil {
			return err
		}
		fmt.Println(key)
		return nil
	},
}
