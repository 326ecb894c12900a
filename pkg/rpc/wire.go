package rpc

import "encoding/json"

const version = "2.0"

type request struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Method  string          `json:"method"`
	Params  json.RawMessage `json:"params,omitempty"`
}

type response struct {
	JSONRPC string          `json:"jsonrpc"`
	ID      json.RawMessage `json:"id,omitempty"`
	Result  json.RawMessage `json:"result,omitempty"`
	Error   *Error          `json:"error,omitempty"`
}

// decodeParams accepts a positional array or nothing.
func decodeParams(raw json.RawMessage) (Params, bool) {
	if len(raw) == 0 || string(raw) == "null" {
		return Params{}, true
	}
	var p Params
	if err := json.Unmarshal(raw, &p); err != nil {
		return nil, false
	}
	return p, true
}
