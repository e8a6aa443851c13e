package handlers

import (
	"encoding/json"
	"errors"
	"io"
	"net/http"
	"strings"
	"time"

	"rcvj/internal/common"
)

const (
	maxJSONBody = 1 << 20

	loginWindow = time.Minute
	applyWindow = time.Minute
)

func errRateLimited(what string) error {
	return common.NewError(common.CodeRateLimited, what+" rate limit exceeded", nil)
}

func decodeJSON(r *http.Request, v any) error {
	body := io.LimitReader(r.Body, maxJSONBody)
	if err := json.NewDecoder(body).Decode(v); err != nil {
		return common.NewError(common.CodeValidation, "invalid json body", err)
	}
	return nil
}

// pathSegment returns the n-th slash-separated segment of the request path,
// counting from zero.
func pathSegment(r *http.Request, n int) (string, error) {
	parts := strings.Split(strings.Trim(r.URL.Path, "/"), "/")
	if n >= len(parts) || parts[n] == "" {
		return "", common.NewError(common.CodeValidation, "invalid path", nil)
	}
	return parts[n], nil
}

func idFromPath(r *http.Request, n int) (common.UUID, error) {
	raw, err := pathSegment(r, n)
	if err != nil {
		return "", err
	}
	parsed, err := common.ParseUUID(raw)
	if err != nil {
		return "", common.NewValidationError("invalid id", map[string]string{"id": "invalid uuid"})
	}
	return parsed, nil
}

func errUnauthorized() error {
	return common.NewError(common.CodeUnauthorized, "authentication required", nil)
}

func isBodyTooLarge(err error) bool {
	var maxErr *http.MaxBytesError
	return errors.As(err, &maxErr)
}
