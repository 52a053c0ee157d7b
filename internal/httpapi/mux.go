package httpapi

import (
	"net/http"
)

// NewMux returns a mux serving /healthz. Feature modules register their own
// routes on it.
func NewMux(probes ...Probe) *http.ServeMux {
	mux := http.NewServeMux()
	registerHealthcheck(mux, probes)
	return mux
}
