package http

import (
	"net/http"

	"github.com/aretw0/cado/pkg/protocol"
)

var kindStatus = map[string]int{
	"not_found":             http.StatusNotFound,
	"notebook_not_found":    http.StatusNotFound,
	"unknown_type":          http.StatusBadRequest,
	"invalid_message":       http.StatusBadRequest,
	"unsupported_version":   http.StatusBadRequest,
	"duplicate_output_name": http.StatusUnprocessableEntity,
	"unknown_input":         http.StatusUnprocessableEntity,
	"cycle_detected":        http.StatusUnprocessableEntity,
	"invalid_reorder":       http.StatusUnprocessableEntity,
	"empty_code":            http.StatusUnprocessableEntity,
	"evaluation_error":      http.StatusUnprocessableEntity,
	"missing_output":        http.StatusUnprocessableEntity,
	"parent_error":          http.StatusUnprocessableEntity,
	"timeout":               http.StatusUnprocessableEntity,
	"cell_running":          http.StatusConflict,
}

func statusFor(err error) int {
	return statusForKind(protocol.Kind(err))
}

func statusForKind(kind string) int {
	if status, ok := kindStatus[kind]; ok {
		return status
	}
	return http.StatusInternalServerError
}
