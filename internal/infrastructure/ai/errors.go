package ai

import (
	"fmt"
	"net/http"
	"strings"

	"github.com/doeshing/gpa/internal/domain"
)

// classifyStatus maps an HTTP status (and the Google RPC status string, when
// present) onto the sentinel errors the pipeline reports.
func classifyStatus(code int, rpcStatus, message string) error {
	detail := strings.TrimSpace(message)
	if detail == "" {
		detail = http.StatusText(code)
	}
	switch {
	case code == http.StatusTooManyRequests, rpcStatus == "RESOURCE_EXHAUSTED":
		return fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, detail)
	case code == http.StatusUnauthorized, code == http.StatusForbidden,
		rpcStatus == "UNAUTHENTICATED", rpcStatus == "PERMISSION_DENIED":
		return fmt.Errorf("%w: %s", domain.ErrAuthFailed, detail)
	default:
		return fmt.Errorf("http %d: %s", code, detail)
	}
}

// classifyMessage is used when a client library only surfaces an error string.
func classifyMessage(err error) error {
	msg := err.Error()
	lower := strings.ToLower(msg)
	switch {
	case strings.Contains(lower, "429"), strings.Contains(lower, "resource_exhausted"), strings.Contains(lower, "quota"):
		return fmt.Errorf("%w: %s", domain.ErrQuotaExceeded, msg)
	case strings.Contains(lower, "401"), strings.Contains(lower, "403"), strings.Contains(lower, "api key not valid"):
		return fmt.Errorf("%w: %s", domain.ErrAuthFailed, msg)
	default:
		return err
	}
}
