package server

import (
	"encoding/json"
	"errors"
	"io"
	"math"
	"net/http"
	"reflect"
	"strconv"
	"strings"
	"time"

	"github.com/go-playground/validator/v10"
	"github.com/rs/zerolog"

	"github.com/wolfeidau/teamhub/internal/apperr"
	"github.com/wolfeidau/teamhub/internal/auth"
	"github.com/wolfeidau/teamhub/internal/store"
)

const (
	defaultPageSize = 20
	maxPageSize     = 100
	// maxPage keeps (page-1)*pageSize well inside int range.
	maxPage = 1_000_000
)

var validate = newValidator()

func newValidator() *validator.Validate {
	v := validator.New(validator.WithRequiredStructEnabled())
	// report json field names
	v.RegisterTagNameFunc(func(fld reflect.StructField) string {
		name, _, _ := strings.Cut(fld.Tag.Get("json"), ",")
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

type errorBody struct {
	Error      string `json:"error"`
	Message    string `json:"message"`
	StatusCode int    `json:"statusCode"`
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(v)
}

// writeError renders err as an error body. Unclassified errors are logged and
// reported as a generic internal error.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := apperr.HTTPStatus(err)
	kind, _ := apperr.KindOf(err)

	if status >= http.StatusInternalServerError {
		zerolog.Ctx(r.Context()).Error().Err(err).Msg("request failed")
	}

	writeJSON(w, status, errorBody{
		Error:      kind.String(),
		Message:    apperr.Message(err),
		StatusCode: status,
	})
}

// decode reads a JSON body into dst and, for structs, validates its tags.
func decode(r *http.Request, dst any) error {
	if err := json.NewDecoder(r.Body).Decode(dst); err != nil {
		if errors.Is(err, io.EOF) {
			return apperr.BadRequestf("Request body is required")
		}
		return apperr.BadRequestf("Invalid JSON body")
	}

	if reflect.Indirect(reflect.ValueOf(dst)).Kind() != reflect.Struct {
		return nil
	}
	if err := validate.Struct(dst); err != nil {
		return validationError(err)
	}
	return nil
}

func validationError(err error) error {
	var fieldErrs validator.ValidationErrors
	if !errors.As(err, &fieldErrs) {
		return apperr.Validationf("Invalid request")
	}

	msgs := make([]string, 0, len(fieldErrs))
	for _, fe := range fieldErrs {
		switch fe.Tag() {
		case "required":
			msgs = append(msgs, fe.Field()+" is required")
		case "max":
			msgs = append(msgs, fe.Field()+" must be at most "+fe.Param()+" characters")
		case "oneof":
			msgs = append(msgs, fe.Field()+" must be one of "+fe.Param())
		default:
			msgs = append(msgs, fe.Field()+" is invalid")
		}
	}
	return apperr.Validationf("%s", strings.Join(msgs, ", "))
}

// scope returns the caller's identity, which must carry an organization.
func scope(r *http.Request) (*auth.Identity, error) {
	id := auth.IdentityFromContext(r.Context())
	if id == nil {
		return nil, apperr.Forbiddenf("Authentication required")
	}
	if id.OrgID == "" {
		return nil, apperr.Forbiddenf("Token is not scoped to an organization")
	}
	return id, nil
}

type pageParams struct {
	page int
	size int
}

func (p pageParams) store() store.Page {
	return store.Page{Skip: (p.page - 1) * p.size, Limit: p.size}
}

func parsePage(r *http.Request) (pageParams, error) {
	p := pageParams{page: 1, size: defaultPageSize}
	q := r.URL.Query()

	if v := q.Get("page"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, apperr.BadRequestf("page must be a positive integer")
		}
		if n > maxPage {
			return p, apperr.BadRequestf("page is out of range")
		}
		p.page = n
	}

	if v := q.Get("pageSize"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil || n < 1 {
			return p, apperr.BadRequestf("pageSize must be a positive integer")
		}
		p.size = min(n, maxPageSize)
	}

	return p, nil
}

type pagination struct {
	Page       int   `json:"page"`
	PageSize   int   `json:"pageSize"`
	Total      int64 `json:"total"`
	TotalPages int64 `json:"totalPages"`
}

type pageResponse[T any] struct {
	Data       []T        `json:"data"`
	Pagination pagination `json:"pagination"`
}

func writePage[T any](w http.ResponseWriter, items []T, total int64, p pageParams) {
	if items == nil {
		items = []T{}
	}
	writeJSON(w, http.StatusOK, pageResponse[T]{
		Data: items,
		Pagination: pagination{
			Page:       p.page,
			PageSize:   p.size,
			Total:      total,
			TotalPages: int64(math.Ceil(float64(total) / float64(p.size))),
		},
	})
}

// parseDate accepts a calendar date or an RFC3339 timestamp.
func parseDate(field, v string) (time.Time, error) {
	if t, err := time.Parse(time.DateOnly, v); err == nil {
		return t, nil
	}
	if t, err := time.Parse(time.RFC3339, v); err == nil {
		return t.UTC(), nil
	}
	return time.Time{}, apperr.BadRequestf("Invalid date format for %s: %s", field, v)
}

func parseOptionalDate(field string, v *string) (*time.Time, error) {
	if v == nil || *v == "" {
		return nil, nil
	}
	t, err := parseDate(field, *v)
	if err != nil {
		return nil, err
	}
	return &t, nil
}
