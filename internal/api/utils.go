package api

import (
	"encoding/json"
	"errors"
	"net/http"
	"strings"

	"go.uber.org/zap"
)

var (
	ErrForbidden    = errors.New("you do not have permission to perform this action")
	ErrInvalidJSON  = errors.New("invalid JSON in request body")
	errUnauthorized = errors.New("authentication required")
)

func respondWithJSON(w http.ResponseWriter, code int, payload any) error {
	response, err := json.Marshal(payload)
	if err != nil {
		return err
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(code)
	_, err = w.Write(response)

	return err
}

func respondWithError(w http.ResponseWriter, code int, msg string) error {
	messageBody := ErrorResponse{
		StatusCode:   code,
		ErrorMessage: msg,
	}
	return respondWithJSON(w, code, messageBody)
}

func RespondWithForbidden(w http.ResponseWriter) error {
	return respondWithError(w, http.StatusForbidden, formatErrorMessage(ErrForbidden))
}

func RespondWithUnauthorized(w http.ResponseWriter, err error) error {
	return respondWithError(w, http.StatusUnauthorized, formatErrorMessage(err))
}

// RespondWithJSON and RespondWithError serve the middleware and the
// handlers registered outside this package.
func RespondWithJSON(w http.ResponseWriter, code int, payload any) error {
	return respondWithJSON(w, code, payload)
}

func RespondWithError(w http.ResponseWriter, code int, msg string) error {
	return respondWithError(w, code, msg)
}

// respondWithServiceError maps err through the service ErrorMap. Unknown
// errors are logged and reported as 500 with fallbackMsg.
func respondWithServiceError(w http.ResponseWriter, logger *zap.Logger, errMap map[error]int, err error, fallbackMsg string) {
	if statusCode, ok := getErrorStatusCode(errMap, err); ok {
		respondWithError(w, statusCode, formatErrorMessage(err))
		return
	}
	logger.Error(fallbackMsg, zap.Error(err))
	respondWithError(w, http.StatusInternalServerError, fallbackMsg)
}

func decodeJSON(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		return ErrInvalidJSON
	}
	return nil
}

func parseUrlQueryToBool(val string) *bool {
	var parsedVal *bool
	switch val {
	case "true":
		val := true
		parsedVal = &val
	case "false":
		val := false
		parsedVal = &val
	}

	return parsedVal
}

func formatErrorMessage(err error) string {
	errorMsg := err.Error()
	if len(errorMsg) > 0 {
		return strings.ToUpper(errorMsg[:1]) + errorMsg[1:]
	}
	return ""
}

// getErrorStatusCode matches err against the map keys with errors.Is, so
// wrapped errors resolve to their sentinel's status.
func getErrorStatusCode(errMap map[error]int, err error) (int, bool) {
	for predefinedErr, statusCode := range errMap {
		if errors.Is(err, predefinedErr) {
			return statusCode, true
		}
	}
	return 0, false
}
