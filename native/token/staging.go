package token

import "github.com/ethereum/go-ethereum/rlp"

// stagedState buffers writes on top of a Storage backend so a multi-step
// operation can be discarded wholesale on failure. Reads observe buffered
// writes; Commit flushes them to the backend in first-write order.
type stagedState struct {
	base   Storage
	writes map[string][]byte
	order  []string
}

func newStagedState(base Storage) *stagedState {
	return &stagedState{
		base:   base,
		writes: make(map[string][]byte),
	}
}

func (s *stagedState) KVPut(key []byte, value interface{}) error {
	encoded, err := rlp.EncodeToBytes(value)
	if err != nil {
		return err
	}
	k := string(key)
	if _, ok := s.writes[k]; !ok {
		s.order = append(s.order, k)
	}
	s.writes[k] = encoded
	return nil
}

func (s *stagedState) KVGet(key []byte, out interface{}) (bool, error) {
	if data, ok := s.writes[string(key)]; ok {
		if out == nil {
			return true, nil
		}
		if err := rlp.DecodeBytes(data, out); err != nil {
			return false, err
		}
		return true, nil
	}
	return s.base.KVGet(key, out)
}

// Commit flushes buffered writes to the backend. The raw RLP payloads are
// forwarded verbatim so the backend stores exactly what a direct put would
// have produced.
func (s *stagedState) Commit() error {
	for _, k := range s.order {
		if err := s.base.KVPut([]byte(k), rlp.RawValue(s.writes[k])); err != nil {
			return err
		}
	}
	return nil
}
