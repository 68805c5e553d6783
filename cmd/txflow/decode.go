package main

import (
	"bufio"
	"context"
	"encoding/json"
	"fmt"
	"os"
	"os/signal"
	"path/filepath"
	"strings"
	"syscall"

	"github.com/spf13/cobra"
	"go.uber.org/zap"

	"txflow/internal/chain"
	"txflow/internal/config"
	"txflow/internal/metadata"
	"txflow/internal/model"
	"txflow/internal/parser"
	"txflow/internal/storage"
	"txflow/internal/storage/postgres"
)

func runDecode(cmd *cobra.Command, args []string) error {
	cfgFile, _ := cmd.Flags().GetString("config")
	cfg, err := config.Load(cfgFile, cmd.Flags())
	if err != nil {
		return err
	}

	logger, err := newLogger(cfg.LogLevel)
	if err != nil {
		return err
	}
	defer logger.Sync()

	if len(cfg.RPCURLs) == 0 {
		return fmt.Errorf("at least one rpc url is required")
	}
	if cfg.Out == "" {
		return fmt.Errorf("output path is required")
	}

	for _, hash := range args {
		if err := validateTxHash(hash); err != nil {
			return fmt.Errorf("invalid tx hash %q: %w", hash, err)
		}
	}

	ctx, stop := signal.NotifyContext(context.Background(), os.Interrupt, syscall.SIGTERM)
	defer stop()

	sink := storage.NewJsonlStorage(cfg.Out)

	var pgStore *postgres.Store
	if cfg.PgDSN != "" {
		pgStore, err = postgres.NewStore(ctx, cfg.PgDSN)
		if err != nil {
			return fmt.Errorf("connect postgres: %w", err)
		}
		defer pgStore.Close()
	}

	tokenCache := metadata.NewCache()

	logger.Info("decode start",
		zap.Int("rpc_endpoints", len(cfg.RPCURLs)),
		zap.Int("transactions", len(args)),
		zap.String("out", cfg.Out),
		zap.Bool("postgres", pgStore != nil),
	)

	var decoded int
	for _, hash := range args {
		data, client, err := chain.FetchFromEndpoints(ctx, cfg.RPCURLs, hash, logger)
		if err != nil {
			return fmt.Errorf("fetch %s: %w", hash, err)
		}

		lookup := metadata.NewService(client, tokenCache, logger)
		flow := parser.DecodeTransaction(ctx, parser.DecodeInput{
			TxHash:        data.Hash,
			From:          data.From,
			To:            data.To,
			Value:         data.Value,
			Logs:          data.Logs,
			InternalCalls: data.InternalCalls,
		}, lookup, logger)
		client.Close()

		if err := sink.PutFlows([]model.TransactionFlow{flow}); err != nil {
			return err
		}

		decodeErrs := parser.CollectDecodeErrors(data.Hash, data.Logs)
		if len(decodeErrs) > 0 {
			if err := writeDecodeErrors(cfg.Errors, decodeErrs); err != nil {
				return err
			}
		}

		if pgStore != nil {
			if err := pgStore.UpsertFlows(ctx, []model.TransactionFlow{flow}); err != nil {
				return fmt.Errorf("persist %s: %w", hash, err)
			}
			if err := pgStore.InsertDecodeErrors(ctx, decodeErrs); err != nil {
				return fmt.Errorf("persist errors %s: %w", hash, err)
			}
		}
		decoded++

		logger.Info("transaction decoded",
			zap.String("tx", data.Hash),
			zap.Uint64("block", data.BlockNumber),
			zap.Int("flow_items", len(flow.Flow)),
		)
	}

	logger.Info("decode complete", zap.Int("decoded", decoded))
	return nil
}

func writeDecodeErrors(path string, errs []model.DecodeError) error {
	if path == "" {
		return nil
	}
	dir := filepath.Dir(path)
	if dir != "." {
		if err := os.MkdirAll(dir, 0o755); err != nil {
			return fmt.Errorf("create errors dir: %w", err)
		}
	}

	file, err := os.OpenFile(path, os.O_CREATE|os.O_WRONLY|os.O_APPEND, 0o644)
	if err != nil {
		return fmt.Errorf("open errors file: %w", err)
	}
	defer file.Close()

	writer := bufio.NewWriter(file)
	for _, e := range errs {
		line, err := json.Marshal(e)
		if err != nil {
			return fmt.Errorf("marshal decode error: %w", err)
		}
		if _, err := writer.Write(line); err != nil {
			return fmt.Errorf("write decode error: %w", err)
		}
		if err := writer.WriteByte('\n'); err != nil {
			return fmt.Errorf("write newline: %w", err)
		}
	}
	return writer.Flush()
}

// validateTxHash checks the 0x-prefixed 32-byte hash format before any RPC
// round trip.
func validateTxHash(hash string) error {
	if !strings.HasPrefix(hash, "0x") {
		return fmt.Errorf("missing 0x prefix")
	}
	if len(hash) != 66 {
		return fmt.Errorf("expected 66 characters, got %d", len(hash))
	}
	for _, c := range hash[2:] {
		switch {
		case c >= '0' && c <= '9', c >= 'a' && c <= 'f', c >= 'A' && c <= 'F':
		default:
			return fmt.Errorf("non-hex character %q", c)
		}
	}
	return nil
}
