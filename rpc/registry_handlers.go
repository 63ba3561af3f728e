package rpc

import (
	"errors"
	"net/http"

	"guardtoken/native/registry"
)

type setCodeHashParams struct {
	Caller   string `json:"caller"`
	CodeHash string `json:"codeHash"`
	Approved bool   `json:"approved"`
}

type codeHashParams struct {
	CodeHash string `json:"codeHash"`
}

func (s *Server) handleSetCodeHash(w http.ResponseWriter, req *RPCRequest) {
	var params setCodeHashParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	caller, err := parseAddress(params.Caller)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	hash, err := parseHash(params.CodeHash)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.ledger.SetCodeHash(caller, hash, params.Approved); err != nil {
		if errors.Is(err, registry.ErrNotAuthorized) {
			writeError(w, http.StatusForbidden, req.ID, codeUnauthorized, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleIsValidCodeHash(w http.ResponseWriter, req *RPCRequest) {
	var params codeHashParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	hash, err := parseHash(params.CodeHash)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	valid, err := s.ledger.IsValidCodeHash(hash)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, valid)
}
