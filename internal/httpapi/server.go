package httpapi

import (
	"net/http"
	"time"

	"mateometeo/internal/config"
)

func NewServer(cfg config.Config, mux *http.ServeMux) *http.Server {
	return &http.Server{
		Addr:              cfg.HTTPAddr,
		Handler:           Wrap(mux),
		ReadHeaderTimeout: 5 * time.Second,
		// wide custom ranges may need several archive fetches
		WriteTimeout: 60 * time.Second,
		IdleTimeout:  2 * time.Minute,
	}
}
