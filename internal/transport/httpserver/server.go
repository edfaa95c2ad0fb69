package httpserver

import (
	"net/http"
	"time"

	"koffa/internal/config"
)

const (
	readHeaderTimeout = 5 * time.Second
	// outlives the 30s handler timeout so the timeout response gets written
	writeTimeout = 35 * time.Second
	idleTimeout  = 2 * time.Minute
)

func New(cfg config.Config, handler http.Handler) *http.Server {
	return &http.Server{
		Addr:              ":" + cfg.HTTPPort,
		Handler:           handler,
		ReadHeaderTimeout: readHeaderTimeout,
		WriteTimeout:      writeTimeout,
		IdleTimeout:       idleTimeout,
	}
}
