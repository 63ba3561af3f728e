package rpc

import (
	"errors"
	"net/http"

	"guardtoken/core"
)

type beginBlockParams struct {
	Block uint64 `json:"block"`
}

func (s *Server) handleBeginBlock(w http.ResponseWriter, req *RPCRequest) {
	var params beginBlockParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.ledger.BeginBlock(params.Block); err != nil {
		if errors.Is(err, core.ErrInvalidBlock) || errors.Is(err, core.ErrBlockRegression) {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleCurrentBlock(w http.ResponseWriter, req *RPCRequest) {
	writeResult(w, req.ID, s.ledger.CurrentBlock())
}

func (s *Server) handleEvents(w http.ResponseWriter, req *RPCRequest) {
	writeResult(w, req.ID, s.ledger.Events())
}
