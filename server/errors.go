package server

import (
	"encoding/json"
	"errors"
	"net/http"

	"github.com/findy-network/findy-custodian/core"
	"github.com/golang/glog"
)

type messageBody struct {
	Message string `json:"message"`
}

func statusOf(k core.Kind) int {
	switch k {
	case core.SyntacticallyInvalid:
		return http.StatusBadRequest
	case core.SemanticallyInvalid:
		return http.StatusUnprocessableEntity
	case core.NotFound:
		return http.StatusNotFound
	case core.Conflict:
		return http.StatusConflict
	case core.NotImplemented:
		return http.StatusNotImplemented
	case core.Upstream:
		return http.StatusBadGateway
	}
	return http.StatusInternalServerError
}

// writeError renders the err as a message body. Internal errors don't leak
// their text to the client.
func writeError(w http.ResponseWriter, r *http.Request, err error) {
	var maxErr *http.MaxBytesError
	if errors.As(err, &maxErr) {
		writeMessage(w, http.StatusRequestEntityTooLarge, "Request body is too large")
		return
	}

	status := statusOf(core.KindOf(err))
	msg := core.MessageOf(err)
	switch {
	case status >= http.StatusInternalServerError && status != http.StatusNotImplemented:
		glog.Errorln(r.Method, r.URL.Path, err)
		if status == http.StatusInternalServerError {
			msg = http.StatusText(status)
		}
	default:
		glog.V(1).Infoln(r.Method, r.URL.Path, status, err)
	}
	writeMessage(w, status, msg)
}

func writeMessage(w http.ResponseWriter, status int, msg string) {
	writeJSON(w, status, messageBody{Message: msg})
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	if err := json.NewEncoder(w).Encode(v); err != nil {
		glog.Warningln("cannot write response:", err)
	}
}
