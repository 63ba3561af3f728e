package rpc

import (
	"net/http"
)

type refreshTrustParams struct {
	Addresses []string `json:"addresses"`
}

type bindFingerprintParams struct {
	Address  string `json:"address"`
	CodeHash string `json:"codeHash"`
}

func (s *Server) handleIsTrusted(w http.ResponseWriter, req *RPCRequest) {
	var params addressParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	trusted, err := s.ledger.IsTrusted(addr)
	if err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, trusted)
}

func (s *Server) handleRefreshTrust(w http.ResponseWriter, req *RPCRequest) {
	var params refreshTrustParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addrs := make([][20]byte, 0, len(params.Addresses))
	for _, raw := range params.Addresses {
		addr, err := parseAddress(raw)
		if err != nil {
			writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
			return
		}
		addrs = append(addrs, addr)
	}
	if err := s.ledger.RefreshTrust(addrs); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, true)
}

func (s *Server) handleBindFingerprint(w http.ResponseWriter, req *RPCRequest) {
	var params bindFingerprintParams
	if err := decodeParams(req, &params); err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	addr, err := parseAddress(params.Address)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	hash, err := parseHash(params.CodeHash)
	if err != nil {
		writeError(w, http.StatusBadRequest, req.ID, codeInvalidParams, err.Error(), nil)
		return
	}
	if err := s.ledger.BindFingerprint(addr, hash); err != nil {
		writeError(w, http.StatusInternalServerError, req.ID, codeServerError, err.Error(), nil)
		return
	}
	writeResult(w, req.ID, true)
}
