// Copyright (c) 2026 Petar Djukic. All rights reserved.
// SPDX-License-Identifier: MIT

package store

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
)

// Format selects the encoding of the graph and entry point files.
type Format string

const (
	JSON Format = "json"
	CBOR Format = "cbor"
)

// formats lists the supported formats in detection order.
var formats = []Format{JSON, CBOR}

// ParseFormat returns the Format named by s.
func ParseFormat(s string) (Format, error) {
	for _, f := range formats {
		if string(f) == s {
			return f, nil
		}
	}
	return "", fmt.Errorf("%w: %q", ErrUnknownFormat, s)
}

// cborEnc uses Core Deterministic Encoding: sorted map keys and shortest
// integer forms, so the same graph always encodes to the same bytes.
var cborEnc cbor.EncMode

func init() {
	var err error
	cborEnc, err = cbor.CoreDetEncOptions().EncMode()
	if err != nil {
		panic("store: CBOR encoder initialization failed: " + err.Error())
	}
}

func (f Format) marshal(v any) ([]byte, error) {
	switch f {
	case JSON:
		data, err := json.MarshalIndent(v, "", "  ")
		if err != nil {
			return nil, err
		}
		return append(data, '\n'), nil
	case CBOR:
		return cborEnc.Marshal(v)
	default:
		return nil, fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}

func (f Format) unmarshal(data []byte, v any) error {
	switch f {
	case JSON:
		return json.Unmarshal(data, v)
	case CBOR:
		return cbor.Unmarshal(data, v)
	default:
		return fmt.Errorf("%w: %q", ErrUnknownFormat, string(f))
	}
}
