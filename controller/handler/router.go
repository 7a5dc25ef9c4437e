package handler

import (
	"net/http"

	"machinethread/controller/domain"
)

func Route(registry *domain.Registry) *http.ServeMux {
	mux := http.NewServeMux()
	mux.Handle("/healthz", NewHealthHandler(registry, DefaultIdleTimeout))
	return mux
}
