package httpx

import (
	"errors"
	"net/http"

	"github.com/customtruckbeds/site/internal/quote"
	"github.com/customtruckbeds/site/internal/shared"
)

// ErrBadRequest marks malformed request bodies.
var ErrBadRequest = errors.New("bad request")

// RespondError maps domain errors to HTTP responses using RFC7807.
func RespondError(w http.ResponseWriter, err error) {
	var verr *quote.ValidationError
	switch {
	case errors.As(err, &verr):
		WriteProblem(w, ProblemDetail{
			Title:  "Validation Failed",
			Status: http.StatusUnprocessableEntity,
			Detail: quote.MessageFixFields,
			Errors: verr.Fields,
		})
	case errors.Is(err, quote.ErrSubmissionInProgress):
		Problem(w, http.StatusConflict, "Submission In Progress", quote.MessageBusy)
	case errors.Is(err, quote.ErrDispatch):
		Problem(w, http.StatusBadGateway, "Dispatch Failed", quote.MessageFailed)
	case errors.Is(err, quote.ErrUnknownField):
		Problem(w, http.StatusBadRequest, "Unknown Field", err.Error())
	case errors.Is(err, shared.ErrCSRFTokenMissing), errors.Is(err, shared.ErrCSRFTokenMismatch):
		Problem(w, http.StatusForbidden, "Forbidden", "invalid or missing CSRF token")
	case errors.Is(err, shared.ErrIdempotencyConflict):
		Problem(w, http.StatusConflict, "Duplicate", err.Error())
	case errors.Is(err, ErrBadRequest):
		Problem(w, http.StatusBadRequest, "Bad Request", err.Error())
	default:
		Problem(w, http.StatusInternalServerError, "Internal Error", "")
	}
}
