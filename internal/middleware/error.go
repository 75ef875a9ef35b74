package middleware

import (
	"encoding/json"
	"net/http"

	"carvedrock/internal/domain"

	"github.com/go-chi/chi/v5/middleware"
	"github.com/google/uuid"
	"go.uber.org/zap"
)

// GenericErrorDetail is the only detail a client sees for an unexpected failure.
const GenericErrorDetail = "An error occurred in our API. Use the trace id when contacting us."

// ProblemContentType is the media type of RFC 7807 error bodies.
const ProblemContentType = "application/problem+json"

var problemTypes = map[int]string{
	http.StatusBadRequest:          "https://tools.ietf.org/html/rfc9110#section-15.5.1",
	http.StatusUnauthorized:        "https://tools.ietf.org/html/rfc9110#section-15.5.2",
	http.StatusForbidden:           "https://tools.ietf.org/html/rfc9110#section-15.5.4",
	http.StatusNotFound:            "https://tools.ietf.org/html/rfc9110#section-15.5.5",
	http.StatusTooManyRequests:     "https://tools.ietf.org/html/rfc6585#section-4",
	http.StatusInternalServerError: "https://tools.ietf.org/html/rfc9110#section-15.6.1",
}

// problemMembers are the standard members; everything else in a body is an extension.
var problemMembers = map[string]bool{
	"type":     true,
	"title":    true,
	"status":   true,
	"detail":   true,
	"instance": true,
	"traceId":  true,
}

// IsProblemMember reports whether key is a standard problem details member.
func IsProblemMember(key string) bool {
	return problemMembers[key]
}

// ProblemDetails is an RFC 7807 error body. Extensions are serialised as top-level members.
type ProblemDetails struct {
	Type       string
	Title      string
	Status     int
	Detail     string
	Instance   string
	TraceID    string
	Extensions map[string]interface{}
}

// MarshalJSON flattens the extensions next to the standard members
func (p ProblemDetails) MarshalJSON() ([]byte, error) {
	body := make(map[string]interface{}, len(p.Extensions)+6)
	for k, v := range p.Extensions {
		if !problemMembers[k] {
			body[k] = v
		}
	}

	body["type"] = p.Type
	body["title"] = p.Title
	body["status"] = p.Status
	if p.Detail != "" {
		body["detail"] = p.Detail
	}
	if p.Instance != "" {
		body["instance"] = p.Instance
	}
	if p.TraceID != "" {
		body["traceId"] = p.TraceID
	}

	return json.Marshal(body)
}

// UnmarshalJSON collects unknown members into Extensions
func (p *ProblemDetails) UnmarshalJSON(data []byte) error {
	var raw map[string]json.RawMessage
	if err := json.Unmarshal(data, &raw); err != nil {
		return err
	}

	*p = ProblemDetails{}
	for key, value := range raw {
		var err error
		switch key {
		case "type":
			err = json.Unmarshal(value, &p.Type)
		case "title":
			err = json.Unmarshal(value, &p.Title)
		case "status":
			err = json.Unmarshal(value, &p.Status)
		case "detail":
			err = json.Unmarshal(value, &p.Detail)
		case "instance":
			err = json.Unmarshal(value, &p.Instance)
		case "traceId":
			err = json.Unmarshal(value, &p.TraceID)
		default:
			var ext interface{}
			if err = json.Unmarshal(value, &ext); err == nil {
				if p.Extensions == nil {
					p.Extensions = make(map[string]interface{})
				}
				p.Extensions[key] = ext
			}
		}
		if err != nil {
			return err
		}
	}
	return nil
}

// NewProblem builds a problem for the request with its trace id filled in
func NewProblem(r *http.Request, statusCode int, detail string) ProblemDetails {
	problemType, ok := problemTypes[statusCode]
	if !ok {
		problemType = "about:blank"
	}

	title := http.StatusText(statusCode)
	if statusCode == http.StatusInternalServerError {
		title = "An error occurred while processing your request."
	}

	return ProblemDetails{
		Type:     problemType,
		Title:    title,
		Status:   statusCode,
		Detail:   detail,
		Instance: r.URL.Path,
		TraceID:  TraceID(r),
	}
}

// TraceID returns the chi request id, or a fresh uuid outside the RequestID middleware
func TraceID(r *http.Request) string {
	if id := middleware.GetReqID(r.Context()); id != "" {
		return id
	}
	return uuid.NewString()
}

// RespondWithProblem writes p as application/problem+json
func RespondWithProblem(w http.ResponseWriter, p ProblemDetails) {
	w.Header().Set("Content-Type", ProblemContentType)
	w.WriteHeader(p.Status)
	json.NewEncoder(w).Encode(p)
}

// RespondWithError sends a problem response with the given status and detail
func RespondWithError(w http.ResponseWriter, r *http.Request, statusCode int, detail string) {
	RespondWithProblem(w, NewProblem(r, statusCode, detail))
}

// RespondWithValidationErrors sends a 400 problem with one extension member per failing field
func RespondWithValidationErrors(w http.ResponseWriter, r *http.Request, verr *domain.ValidationError) {
	problem := NewProblem(r, http.StatusBadRequest, "")
	problem.Title = "One or more validation errors occurred."

	problem.Extensions = make(map[string]interface{})
	for field, messages := range verr.Messages() {
		problem.Extensions[field] = messages
	}

	RespondWithProblem(w, problem)
}

// RespondWithInternalError logs err against the trace id and sends the generic 500 problem
func RespondWithInternalError(w http.ResponseWriter, r *http.Request, logger *zap.Logger, err error) {
	problem := NewProblem(r, http.StatusInternalServerError, GenericErrorDetail)

	logger.Error("Unhandled error",
		zap.String("trace_id", problem.TraceID),
		zap.String("method", r.Method),
		zap.String("path", r.URL.Path),
		zap.Error(err),
	)

	RespondWithProblem(w, problem)
}

// ErrorHandlingMiddleware catches panics and converts them to 500 problems
func ErrorHandlingMiddleware(logger *zap.Logger) func(http.Handler) http.Handler {
	return func(next http.Handler) http.Handler {
		return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
			defer func() {
				if rec := recover(); rec != nil {
					if rec == http.ErrAbortHandler {
						panic(rec)
					}

					logger.Error("Panic recovered",
						zap.Any("error", rec),
						zap.String("path", r.URL.Path),
						zap.String("method", r.Method),
					)

					RespondWithProblem(w, NewProblem(r, http.StatusInternalServerError, GenericErrorDetail))
				}
			}()

			next.ServeHTTP(w, r)
		})
	}
}

// RespondWithJSON sends a JSON response
func RespondWithJSON(w http.ResponseWriter, statusCode int, payload interface{}) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(statusCode)
	json.NewEncoder(w).Encode(payload)
}
