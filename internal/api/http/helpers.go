package http

import (
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"reflect"
	"strconv"
	"strings"

	"github.com/go-playground/validator/v10"
	"github.com/gorilla/mux"

	"toolshed-backend/internal/domain"
)

const maxBodyBytes = 1 << 20

// envelope is the top-level JSON object of every response.
type envelope map[string]any

var validate = newValidator()

// newValidator reports field errors under their JSON names.
func newValidator() *validator.Validate {
	v := validator.New()
	v.RegisterTagNameFunc(func(f reflect.StructField) string {
		name := strings.SplitN(f.Tag.Get("json"), ",", 2)[0]
		if name == "-" {
			return ""
		}
		return name
	})
	return v
}

func writeJSON(w http.ResponseWriter, status int, data envelope, headers http.Header) error {
	js, err := json.Marshal(data)
	if err != nil {
		return err
	}
	js = append(js, '\n')

	for key, value := range headers {
		w.Header()[key] = value
	}
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_, err = w.Write(js)
	return err
}

// readJSON decodes a single JSON object into dst, rejecting unknown fields and
// trailing data, then runs the validate tags on dst.
func readJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeJSON(w, r, dst, false)
}

// readOptionalJSON is readJSON for endpoints whose body may be omitted.
func readOptionalJSON(w http.ResponseWriter, r *http.Request, dst any) error {
	return decodeJSON(w, r, dst, true)
}

func decodeJSON(w http.ResponseWriter, r *http.Request, dst any, allowEmpty bool) error {
	r.Body = http.MaxBytesReader(w, r.Body, maxBodyBytes)
	dec := json.NewDecoder(r.Body)
	dec.DisallowUnknownFields()

	if err := dec.Decode(dst); err != nil {
		var syntaxErr *json.SyntaxError
		var typeErr *json.UnmarshalTypeError
		var maxErr *http.MaxBytesError
		switch {
		case errors.Is(err, io.EOF):
			if !allowEmpty {
				return errors.New("body must not be empty")
			}
		case errors.As(err, &syntaxErr):
			return fmt.Errorf("body contains badly-formed JSON (at character %d)", syntaxErr.Offset)
		case errors.Is(err, io.ErrUnexpectedEOF):
			return errors.New("body contains badly-formed JSON")
		case errors.As(err, &typeErr):
			if typeErr.Field != "" {
				return domain.NewValidationError(typeErr.Field, fmt.Sprintf("must be a %s", typeErr.Type))
			}
			return fmt.Errorf("body contains incorrect JSON type (at character %d)", typeErr.Offset)
		case strings.HasPrefix(err.Error(), "json: unknown field "):
			return fmt.Errorf("body contains unknown key %s", strings.TrimPrefix(err.Error(), "json: unknown field "))
		case errors.As(err, &maxErr):
			return fmt.Errorf("body must not be larger than %d bytes", maxErr.Limit)
		default:
			return err
		}
	} else if err := dec.Decode(&struct{}{}); !errors.Is(err, io.EOF) {
		return errors.New("body must only contain a single JSON value")
	}

	return validateStruct(dst)
}

// validateStruct turns validator failures into a domain ValidationError keyed
// by JSON field name.
func validateStruct(dst any) error {
	err := validate.Struct(dst)
	if err == nil {
		return nil
	}
	var verrs validator.ValidationErrors
	if !errors.As(err, &verrs) {
		return err
	}
	fields := make(map[string]string, len(verrs))
	for _, fe := range verrs {
		fields[fe.Field()] = fieldMessage(fe)
	}
	return &domain.ValidationError{Fields: fields}
}

func fieldMessage(fe validator.FieldError) string {
	switch fe.Tag() {
	case "required":
		return "is required"
	case "email":
		return "must be a valid email address"
	case "oneof":
		return "must be one of: " + fe.Param()
	case "gt":
		return "must be greater than " + fe.Param()
	case "gte":
		return "must be at least " + fe.Param()
	case "lte":
		return "must be at most " + fe.Param()
	case "min":
		return "must be at least " + fe.Param() + " characters long"
	case "max":
		return "must be at most " + fe.Param() + " characters long"
	default:
		return "failed the " + fe.Tag() + " check"
	}
}

func readIDParam(r *http.Request) (int32, error) {
	id, err := strconv.ParseInt(mux.Vars(r)["id"], 10, 32)
	if err != nil || id < 1 {
		return 0, errors.New("invalid id parameter")
	}
	return int32(id), nil
}

// queryReader collects per-field errors while reading query parameters.
type queryReader struct {
	qs     url.Values
	fields map[string]string
}

func newQueryReader(r *http.Request) *queryReader {
	return &queryReader{qs: r.URL.Query(), fields: map[string]string{}}
}

func (q *queryReader) str(key string) string {
	return strings.TrimSpace(q.qs.Get(key))
}

func (q *queryReader) int32(key string, defaultValue int32) int32 {
	s := q.str(key)
	if s == "" {
		return defaultValue
	}
	n, err := strconv.ParseInt(s, 10, 32)
	if err != nil || n < 0 {
		q.fields[key] = "must be a non-negative integer"
		return defaultValue
	}
	return int32(n)
}

func (q *queryReader) date(key string, required bool) domain.Date {
	s := q.str(key)
	if s == "" {
		if required {
			q.fields[key] = "is required"
		}
		return domain.Date{}
	}
	d, err := domain.ParseDate(s)
	if err != nil {
		q.fields[key] = "must be a date formatted YYYY-MM-DD"
	}
	return d
}

func (q *queryReader) err() error {
	if len(q.fields) == 0 {
		return nil
	}
	return &domain.ValidationError{Fields: q.fields}
}

type pageMetadata struct {
	Page     int32 `json:"page"`
	PageSize int32 `json:"page_size"`
	Total    int32 `json:"total"`
}

func newPageMetadata(page, pageSize, total int32) pageMetadata {
	if page <= 0 {
		page = 1
	}
	if pageSize <= 0 {
		pageSize = 50
	}
	return pageMetadata{Page: page, PageSize: pageSize, Total: total}
}

func itoa(id int32) string {
	return strconv.FormatInt(int64(id), 10)
}
