package controller

import (
	"bytes"
	"encoding/json"
	"fmt"
	"math"
	"strconv"
	"strings"
)

// Float is a JSON number that may also arrive as a string holding one, e.g. "9.99".
type Float float64

func (f *Float) UnmarshalJSON(data []byte) error {
	raw, err := numericText(data)
	if err != nil {
		return err
	}
	v, err := strconv.ParseFloat(raw, 64)
	if err != nil || math.IsNaN(v) || math.IsInf(v, 0) {
		return fmt.Errorf("cannot use %s as a number", data)
	}
	*f = Float(v)
	return nil
}

// Integer is a JSON integer that may also arrive as a string holding one, e.g. "5".
type Integer int

func (n *Integer) UnmarshalJSON(data []byte) error {
	raw, err := numericText(data)
	if err != nil {
		return err
	}
	v, err := strconv.Atoi(raw)
	if err != nil {
		return fmt.Errorf("cannot use %s as an integer", data)
	}
	*n = Integer(v)
	return nil
}

// numericText returns the literal of a JSON number, unquoting a JSON string first.
func numericText(data []byte) (string, error) {
	if len(data) == 0 || data[0] != '"' {
		return string(bytes.TrimSpace(data)), nil
	}
	var s string
	if err := json.Unmarshal(data, &s); err != nil {
		return "", err
	}
	s = strings.TrimSpace(s)
	if s == "" {
		return "", fmt.Errorf("cannot use an empty string as a number")
	}
	return s, nil
}
