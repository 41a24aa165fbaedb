package httpapi

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/haasonsaas/nexus-rag/internal/apperr"
	"github.com/haasonsaas/nexus-rag/internal/store"
)

// storeErr translates the plain sentinel errors internal/store returns
// (it predates apperr and stays free of it, same as the rest of the
// non-HTTP-facing tree) into the apperr taxonomy writeError understands.
func storeErr(err error) error {
	if err == nil {
		return nil
	}
	if _, ok := apperr.As(err); ok {
		return err
	}
	switch {
	case errors.Is(err, store.ErrNotFound):
		return apperr.Wrap(apperr.NotFound, "not found", err)
	case errors.Is(err, store.ErrAlreadyExists):
		return apperr.Wrap(apperr.ValidationError, "already exists", err)
	default:
		return apperr.Wrap(apperr.Internal, "store operation failed", err)
	}
}

// writeError maps an apperr.Code to its HTTP status and writes a JSON
// error body. This is the one place in the tree that translates the C7
// error taxonomy into wire status codes — apperr.go itself stays free of
// net/http, and every handler funnels failures through here.
func writeError(w http.ResponseWriter, err error) {
	status := http.StatusInternalServerError
	message := "internal error"

	if appErr, ok := apperr.As(err); ok {
		message = appErr.Message
		switch appErr.Code {
		case apperr.Unauthenticated:
			status = http.StatusUnauthorized
		case apperr.Forbidden:
			status = http.StatusForbidden
		case apperr.NotFound:
			status = http.StatusNotFound
		case apperr.ValidationError:
			status = http.StatusBadRequest
		case apperr.QuotaExceeded:
			status = http.StatusTooManyRequests
		case apperr.ContextWindowExceeded:
			status = http.StatusUnprocessableEntity
		case apperr.ProviderError:
			status = http.StatusBadGateway
		case apperr.ToolError:
			status = http.StatusUnprocessableEntity
		case apperr.Internal:
			status = http.StatusInternalServerError
		}
	}

	writeJSON(w, status, map[string]string{"error": message})
}

func writeJSON(w http.ResponseWriter, status int, body any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(body)
}

func decodeJSON(r *http.Request, dst any) error {
	if r.Body == nil {
		return apperr.ValidationErrorf("request body is required")
	}
	defer r.Body.Close()
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return apperr.ValidationErrorf("malformed request body: %v", err)
	}
	return nil
}
