package http

import (
	"net/http"
	"strings"

	"finboard/internal/core"
	"finboard/internal/log"
)

// sanitizeInput removes control characters except tab, newline and
// carriage return, and trims whitespace.
func sanitizeInput(s string) string {
	return strings.TrimSpace(strings.Map(func(r rune) rune {
		if r < 32 && r != 9 && r != 10 && r != 13 {
			return -1
		}
		return r
	}, s))
}

func (s *Server) today() core.Date {
	return core.DateOf(s.clock.Now())
}

// parseBody parses the request body, writing a 400 when it is malformed.
func parseBody(w http.ResponseWriter, r *http.Request) (*RequestBodyParser, bool) {
	p := NewRequestBodyParser(r)
	if err := p.Parse(); err != nil {
		log.FromContext(r.Context()).WarnContext(r.Context(), "Malformed request body",
			log.FieldPath, r.URL.Path, log.FieldError, err)
		BadRequestError("malformed request body").Write(w)
		return nil, false
	}
	return p, true
}

// validationFailed writes a 422 carrying err's message.
func validationFailed(w http.ResponseWriter, r *http.Request, err error) {
	log.FromContext(r.Context()).InfoContext(r.Context(), "Validation failed",
		log.FieldPath, r.URL.Path, log.FieldError, err)
	UnprocessableEntityError(err.Error()).Write(w)
}
