package main

import (
	"encoding/json"
	"net/http"
	"strconv"
	"time"

	"github.com/gorilla/mux"
	"github.com/iov-one/quorum"
	"github.com/iov-one/quorum/errors"
	"github.com/iov-one/quorum/x/factory"
	"github.com/iov-one/quorum/x/multisig"
	"github.com/tendermint/tendermint/libs/log"
)

// maxBodySize limits the size of a request body accepted by the API.
const maxBodySize = 1 << 20

// internalErrorCode is reported by errors.Info for errors that were not
// registered.
const internalErrorCode = 1

type api struct {
	node   *node
	logger log.Logger
}

func newAPI(n *node, logger log.Logger) http.Handler {
	a := &api{node: n, logger: logger.With("module", "api")}

	r := mux.NewRouter()
	r.HandleFunc("/instances", a.listInstances).Methods(http.MethodGet)
	r.HandleFunc("/instances/{index:[0-9]+}", a.instance).Methods(http.MethodGet)
	r.HandleFunc("/instances/{index:[0-9]+}/owners/{address}", a.owner).Methods(http.MethodGet)
	r.HandleFunc("/instances/{index:[0-9]+}/digest", a.digest).Methods(http.MethodPost)
	r.HandleFunc("/instances/{index:[0-9]+}/validate", a.validate).Methods(http.MethodPost)
	r.HandleFunc("/instances/{index:[0-9]+}/submit", a.submit).Methods(http.MethodPost)
	r.HandleFunc("/events", a.listEvents).Methods(http.MethodGet)
	r.NotFoundHandler = http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		JSONErr(w, http.StatusNotFound, http.StatusText(http.StatusNotFound))
	})
	r.Use(a.logRequests)
	return r
}

func (a *api) listInstances(w http.ResponseWriter, r *http.Request) {
	var records []factory.Record
	err := a.node.read(func(db quorum.KVStore) error {
		var err error
		records, err = a.node.factory.Records(db)
		return err
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	JSONResp(w, http.StatusOK, struct {
		Objects []factory.Record `json:"objects"`
	}{
		Objects: records,
	})
}

// listEvents returns the events published since the server started.
func (a *api) listEvents(w http.ResponseWriter, r *http.Request) {
	JSONResp(w, http.StatusOK, struct {
		Objects []quorum.EventRecord `json:"objects"`
	}{
		Objects: a.node.events.Records(),
	})
}

func (a *api) instance(w http.ResponseWriter, r *http.Request) {
	index, ok := instanceIndex(w, r)
	if !ok {
		return
	}
	var info *instanceInfo
	err := a.node.read(func(db quorum.KVStore) error {
		var err error
		info, err = a.node.describe(db, index)
		return err
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	JSONResp(w, http.StatusOK, info)
}

func (a *api) owner(w http.ResponseWriter, r *http.Request) {
	index, ok := instanceIndex(w, r)
	if !ok {
		return
	}
	owner, err := quorum.ParseAddress(mux.Vars(r)["address"])
	if err != nil {
		JSONErr(w, http.StatusBadRequest, "address must be a valid address value.")
		return
	}
	e, err := a.node.factory.Instance(index)
	if err != nil {
		a.fail(w, err)
		return
	}
	var isOwner bool
	err = a.node.read(func(db quorum.KVStore) error {
		var err error
		isOwner, err = e.IsOwner(db, owner)
		return err
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	JSONResp(w, http.StatusOK, ownership{Owner: owner, IsOwner: isOwner})
}

func (a *api) digest(w http.ResponseWriter, r *http.Request) {
	index, ok := instanceIndex(w, r)
	if !ok {
		return
	}
	var req multisig.Request
	if !decodeBody(w, r, &req) {
		return
	}
	if err := req.Validate(); err != nil {
		a.fail(w, err)
		return
	}
	e, err := a.node.factory.Instance(index)
	if err != nil {
		a.fail(w, err)
		return
	}
	var (
		nonce  uint64
		digest []byte
	)
	err = a.node.read(func(db quorum.KVStore) error {
		var err error
		if nonce, err = e.Nonce(db); err != nil {
			return err
		}
		digest, err = e.Digest(db, req)
		return err
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	JSONResp(w, http.StatusOK, struct {
		Nonce  uint64 `json:"nonce"`
		Digest []byte `json:"digest"`
	}{
		Nonce:  nonce,
		Digest: digest,
	})
}

// signedRequest is the body of validate and submit calls.
type signedRequest struct {
	Request    multisig.Request `json:"request"`
	Signatures [][]byte         `json:"signatures"`
}

func (a *api) validate(w http.ResponseWriter, r *http.Request) {
	index, ok := instanceIndex(w, r)
	if !ok {
		return
	}
	var body signedRequest
	if !decodeBody(w, r, &body) {
		return
	}
	env := &envelope{Instance: index, Request: body.Request, Signatures: body.Signatures}
	var res *validation
	err := a.node.read(func(db quorum.KVStore) error {
		var err error
		res, err = a.node.validate(db, env)
		return err
	})
	if err != nil {
		a.fail(w, err)
		return
	}
	JSONResp(w, http.StatusOK, res)
}

func (a *api) submit(w http.ResponseWriter, r *http.Request) {
	index, ok := instanceIndex(w, r)
	if !ok {
		return
	}
	var body signedRequest
	if !decodeBody(w, r, &body) {
		return
	}
	env := &envelope{Instance: index, Request: body.Request, Signatures: body.Signatures}
	receipt, err := a.node.submit(r.Context(), env)
	if err != nil {
		a.fail(w, err)
		return
	}
	JSONResp(w, http.StatusOK, receipt)
}

// fail writes the client safe form of err. Errors that are not
// registered are reported as internal errors and logged.
func (a *api) fail(w http.ResponseWriter, err error) {
	code, reason := errors.Info(err, false)
	status := statusOf(err)
	if status == http.StatusInternalServerError {
		a.logger.Error("request failed", "err", err)
	}
	JSONResp(w, status, struct {
		Code   uint32   `json:"code"`
		Errors []string `json:"errors"`
	}{
		Code:   code,
		Errors: []string{reason},
	})
}

func statusOf(err error) int {
	switch {
	case factory.ErrUnknownInstance.Is(err), errors.ErrNotFound.Is(err):
		return http.StatusNotFound
	case errors.ErrDatabase.Is(err), errors.ErrInvalidModel.Is(err), errors.ErrPanic.Is(err):
		return http.StatusInternalServerError
	}
	if code, _ := errors.Info(err, false); code == internalErrorCode {
		return http.StatusInternalServerError
	}
	return http.StatusBadRequest
}

func instanceIndex(w http.ResponseWriter, r *http.Request) (uint64, bool) {
	index, err := strconv.ParseUint(mux.Vars(r)["index"], 10, 64)
	if err != nil {
		JSONErr(w, http.StatusBadRequest, "index must be an integer instance number.")
		return 0, false
	}
	return index, true
}

func decodeBody(w http.ResponseWriter, r *http.Request, dest interface{}) bool {
	dec := json.NewDecoder(http.MaxBytesReader(w, r.Body, maxBodySize))
	if err := dec.Decode(dest); err != nil {
		JSONErr(w, http.StatusBadRequest, "cannot decode request body: "+err.Error())
		return false
	}
	return true
}

// statusWriter records the status code written by a handler.
type statusWriter struct {
	http.ResponseWriter
	status int
}

func (w *statusWriter) WriteHeader(code int) {
	w.status = code
	w.ResponseWriter.WriteHeader(code)
}

func (a *api) logRequests(next http.Handler) http.Handler {
	return http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		start := time.Now()
		sw := &statusWriter{ResponseWriter: w, status: http.StatusOK}
		next.ServeHTTP(sw, r)
		a.logger.Info("http request",
			"method", r.Method,
			"path", r.URL.Path,
			"status", sw.status,
			"took", time.Since(start))
	})
}

// JSONResp write content as JSON encoded response.
func JSONResp(w http.ResponseWriter, code int, content interface{}) {
	b, err := json.MarshalIndent(content, "", "\t")
	if err != nil {
		code = http.StatusInternalServerError
		b = []byte(`{"errors":["Internal Server Error"]}`)
	}
	w.Header().Set("Content-Type", "application/json; charset=UTF-8")
	w.WriteHeader(code)
	_, _ = w.Write(b)
}

// JSONErr write single error as JSON encoded response.
func JSONErr(w http.ResponseWriter, code int, errText string) {
	JSONResp(w, code, struct {
		Errors []string `json:"errors"`
	}{
		Errors: []string{errText},
	})
}
