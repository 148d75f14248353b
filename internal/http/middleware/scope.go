package middleware

import (
	"context"
	"net/http"
	"strings"

	"github.com/go-chi/chi/v5"
	"github.com/google/uuid"
)

const ContextKeyScopedClient contextKey = "scoped_client"

// ClientScope valida o parâmetro {clientID} das rotas escopadas por cliente:
// super-admin alcança qualquer cliente, os demais papéis apenas o próprio.
func ClientScope(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		raw := chi.URLParam(r, "clientID")
		clientID, err := uuid.Parse(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, "VALIDATION", "cliente inválido")
			return
		}

		if !strings.EqualFold(GetRole(r.Context()), "super-admin") {
			own := GetClientID(r.Context())
			if own == "" || own != clientID.String() {
				writeError(w, http.StatusForbidden, "FORBIDDEN", "acesso restrito ao próprio cliente")
				return
			}
		}

		ctx := context.WithValue(r.Context(), ContextKeyScopedClient, clientID.String())
		next.ServeHTTP(w, r.WithContext(ctx))
	})
}

// GetScopedClient devolve o cliente validado pela rota.
func GetScopedClient(ctx context.Context) string {
	val, _ := ctx.Value(ContextKeyScopedClient).(string)
	return val
}
