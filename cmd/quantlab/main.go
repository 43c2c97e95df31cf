// Command quantlab wires up a QuantLab deployment's ambient stack --
// config, logging, the access service's storage and manifest-index
// accelerator -- and reports readiness. It performs no HTTP serving: every
// core (access, pricing, risk, stress) is a library API, invoked directly
// by callers rather than through a network boundary, per spec.md section 6.
package main

import (
	"context"
	"os"

	"github.com/redis/go-redis/v9"

	"github.com/aristath/quantlab-go/internal/config"
	"github.com/aristath/quantlab-go/internal/modules/data/access"
	"github.com/aristath/quantlab-go/internal/modules/data/storage"
	"github.com/aristath/quantlab-go/pkg/logging"
)

func main() {
	cfg, err := config.Load()
	if err != nil {
		panic(err)
	}

	log := logging.New(logging.Config{Level: cfg.LogLevel, Pretty: cfg.Pretty})
	logging.SetGlobal(log)

	if _, err := storage.NewFSStore(cfg.CanonicalZoneRoot); err != nil {
		log.Fatal().Err(err).Msg("quantlab: open canonical store")
	}

	switch {
	case cfg.RedisAddr != "":
		client := redis.NewClient(&redis.Options{Addr: cfg.RedisAddr})
		if err := client.Ping(context.Background()).Err(); err != nil {
			log.Fatal().Err(err).Str("addr", cfg.RedisAddr).Msg("quantlab: connect manifest index redis")
		}
		defer client.Close()
		log.Info().Str("addr", cfg.RedisAddr).Msg("quantlab: manifest index backed by redis")
	case cfg.RegistryDSN != "":
		sqlIndex, err := access.OpenSQLManifestIndex(cfg.RegistryDSN)
		if err != nil {
			log.Fatal().Err(err).Msg("quantlab: open sqlite manifest index")
		}
		defer sqlIndex.Close()
		log.Info().Str("dsn", cfg.RegistryDSN).Msg("quantlab: manifest index backed by sqlite")
	default:
		log.Warn().Msg("quantlab: no manifest index accelerator configured, falling back to filesystem-only lookups")
	}

	log.Info().
		Str("raw_root", cfg.RawZoneRoot).
		Str("canonical_root", cfg.CanonicalZoneRoot).
		Str("cache_root", cfg.CacheRoot).
		Str("calendar_baseline", cfg.CalendarBaselineName+"/"+cfg.CalendarBaselineVersion).
		Msg("quantlab: ready")

	os.Exit(0)
}
