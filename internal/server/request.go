package server

import (
	"errors"
	"fmt"
	"net/http"
	"strings"

	"github.com/go-playground/validator/v10"

	"github.com/ogulcanaydogan/fairparity/internal/parity"
)

// ParityRequest carries one observation table inline, column by column.
type ParityRequest struct {
	Outcome    []string  `json:"outcome" validate:"required,min=1"`
	Group      []string  `json:"group" validate:"required,min=1"`
	Prediction []string  `json:"prediction,omitempty"`
	Score      []float64 `json:"score,omitempty"`
	Levels     []string  `json:"levels,omitempty" validate:"omitempty,len=2,dive,required"`
	Cutoff     *float64  `json:"cutoff,omitempty" validate:"omitempty,gte=0,lte=1"`
	Base       string    `json:"base,omitempty"`
}

type AuditRequest struct {
	ParityRequest
	Metrics []string `json:"metrics,omitempty" validate:"omitempty,unique,dive,required"`
}

func (r ParityRequest) input() parity.Input {
	in := parity.Input{
		Outcome:     r.Outcome,
		Groups:      r.Group,
		Predictions: r.Prediction,
		Scores:      r.Score,
		Cutoff:      r.Cutoff,
		Base:        r.Base,
	}
	if len(r.Levels) == 2 {
		in.Levels = parity.Levels{Negative: r.Levels[0], Positive: r.Levels[1]}
	}
	return in
}

type errorResponse struct {
	Error   string   `json:"error"`
	Code    string   `json:"code"`
	Details []string `json:"details,omitempty"`
}

// classify maps an error to an HTTP status and a stable error code.
func classify(err error) (int, errorResponse) {
	var (
		dim     *parity.DimensionMismatchError
		missing *parity.MissingArgumentError
		base    *parity.InvalidBaseGroupError
		arg     *parity.ArgumentError
		unknown *parity.UnknownMetricError
		invalid validator.ValidationErrors
	)
	switch {
	case errors.As(err, &invalid):
		details := make([]string, 0, len(invalid))
		for _, fe := range invalid {
			details = append(details, formatFieldError(fe))
		}
		return http.StatusBadRequest, errorResponse{Error: "request validation failed", Code: "invalid_request", Details: details}
	case errors.As(err, &unknown):
		return http.StatusNotFound, errorResponse{Error: err.Error(), Code: "unknown_metric"}
	case errors.As(err, &dim):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "dimension_mismatch"}
	case errors.As(err, &missing):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "missing_argument"}
	case errors.As(err, &base):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "invalid_base_group"}
	case errors.As(err, &arg):
		return http.StatusUnprocessableEntity, errorResponse{Error: err.Error(), Code: "invalid_argument"}
	}
	return http.StatusInternalServerError, errorResponse{Error: err.Error(), Code: "internal"}
}

func formatFieldError(fe validator.FieldError) string {
	field := strings.ToLower(fe.Field())
	switch fe.Tag() {
	case "required":
		return fmt.Sprintf("%s is required", field)
	case "min":
		return fmt.Sprintf("%s must have at least %s entries", field, fe.Param())
	case "len":
		return fmt.Sprintf("%s must have exactly %s entries", field, fe.Param())
	case "gte", "lte":
		return fmt.Sprintf("%s must be %s %s", field, fe.Tag(), fe.Param())
	case "unique":
		return fmt.Sprintf("%s must not repeat", field)
	}
	return fmt.Sprintf("%s failed %s", field, fe.Tag())
}
