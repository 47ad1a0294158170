// Command serve loads the blade surrogate artifact and serves the web form
// and the JSON prediction API. A missing or corrupt artifact aborts startup.
package main

import (
	"flag"
	"net/http"
	"os"
	"time"

	"github.com/thesoulseizure/WindTurbineBladeOptimization/pkg/log"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/server"
	"github.com/thesoulseizure/WindTurbineBladeOptimization/surrogate"
)

func main() {
	var (
		modelPath = flag.String("model", defaultModelPath(), "model artifact path (MODEL_PATH env overrides the default)")
		addr      = flag.String("addr", ":5002", "listen address")
		logLevel  = flag.String("log-level", "info", "log level (debug|info|warn|error)")
	)
	flag.Parse()

	logger := log.New(os.Stdout, "serve", *logLevel)

	m, err := surrogate.Load(*modelPath)
	if err != nil {
		logger.Fatal().Err(err).Str("model", *modelPath).Msg("cannot serve without a model artifact")
	}
	logger.Info().Str("model", *modelPath).Str("algorithm", m.Algorithm).Msg("model loaded")

	srv, err := server.New(m, logger)
	if err != nil {
		logger.Fatal().Err(err).Msg("failed to build server")
	}

	httpSrv := &http.Server{
		Addr:              *addr,
		Handler:           srv,
		ReadHeaderTimeout: 5 * time.Second,
	}
	logger.Info().Str("addr", *addr).Msg("listening")
	if err := httpSrv.ListenAndServe(); err != nil {
		logger.Fatal().Err(err).Msg("server stopped")
	}
}

func defaultModelPath() string {
	if p := os.Getenv("MODEL_PATH"); p != "" {
		return p
	}
	return "models/blade_surrogate.gob"
}
