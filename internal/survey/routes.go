package survey

import (
	"github.com/go-chi/chi/v5"
)

// Mount adiciona as rotas da sessão de coleta no router.
func Mount(r chi.Router, handler *Handler) {
	handler.RegisterRoutes(r)
}
