package api

import "net/http"

func Router(h *Handler) http.Handler {
	mux := http.NewServeMux()

	mux.HandleFunc("GET /v1/health", h.Health)

	mux.HandleFunc("GET /v1/autorun/status", h.AutorunStatus)
	mux.HandleFunc("POST /v1/autorun/start", h.AutorunStart)
	mux.HandleFunc("POST /v1/autorun/stop", h.AutorunStop)

	mux.HandleFunc("POST /v1/passes/bulk", h.RunBulkPass)
	mux.HandleFunc("POST /v1/passes/queue", h.RunQueuePass)

	mux.HandleFunc("GET /v1/channel/status", h.ChannelStatus)

	mux.HandleFunc("GET /", func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write([]byte("whatsheet"))
	})

	return mux
}
