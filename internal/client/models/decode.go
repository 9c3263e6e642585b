package models

import (
	"bytes"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"math"

	"github.com/dmitrijs2005/medigenie/internal/common"
)

func malformed(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrMalformedDerivedState, fmt.Sprintf(format, args...))
}

// trimFence drops a surrounding ```json ... ``` block if the service added one.
func trimFence(data []byte) []byte {
	data = bytes.TrimSpace(data)
	if !bytes.HasPrefix(data, []byte("```")) {
		return data
	}
	data = bytes.TrimPrefix(data, []byte("```"))
	if nl := bytes.IndexByte(data, '\n'); nl >= 0 {
		data = data[nl+1:]
	}
	data = bytes.TrimSuffix(bytes.TrimSpace(data), []byte("```"))
	return bytes.TrimSpace(data)
}

// decodeStrict decodes exactly one JSON value into T, rejecting unknown
// fields and trailing data.
func decodeStrict[T any](data []byte) (T, error) {
	var v T

	data = trimFence(data)
	if len(data) == 0 {
		return v, malformed("empty response")
	}

	dec := json.NewDecoder(bytes.NewReader(data))
	dec.DisallowUnknownFields()
	if err := dec.Decode(&v); err != nil {
		return v, malformed("%v", err)
	}
	if _, err := dec.Token(); !errors.Is(err, io.EOF) {
		return v, malformed("trailing data after JSON document")
	}
	return v, nil
}

func finite(field string, values []float64) error {
	for i, f := range values {
		if math.IsNaN(f) || math.IsInf(f, 0) {
			return fmt.Errorf("%s[%d] is not a finite number", field, i)
		}
	}
	return nil
}
