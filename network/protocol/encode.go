/***********************************************************************************************************************
 *
 *   MIT License
 *
 *   Copyright (c) 2022 Nicolas JUHEL
 *
 *   Permission is hereby granted, free of charge, to any person obtaining a copy
 *   of this software and associated documentation files (the "Software"), to deal
 *   in the Software without restriction, including without limitation the rights
 *   to use, copy, modify, merge, publish, distribute, sublicense, and/or sell
 *   copies of the Software, and to permit persons to whom the Software is
 *   furnished to do so, subject to the following conditions:
 *
 *   The above copyright notice and this permission notice shall be included in all
 *   copies or substantial portions of the Software.
 *
 *   THE SOFTWARE IS PROVIDED "AS IS", WITHOUT WARRANTY OF ANY KIND, EXPRESS OR
 *   IMPLIED, INCLUDING BUT NOT LIMITED TO THE WARRANTIES OF MERCHANTABILITY,
 *   FITNESS FOR A PARTICULAR PURPOSE AND NONINFRINGEMENT. IN NO EVENT SHALL THE
 *   AUTHORS OR COPYRIGHT HOLDERS BE LIABLE FOR ANY CLAIM, DAMAGES OR OTHER
 *   LIABILITY, WHETHER IN AN ACTION OF CONTRACT, TORT OR OTHERWISE, ARISING FROM,
 *   OUT OF OR IN CONNECTION WITH THE SOFTWARE OR THE USE OR OTHER DEALINGS IN THE
 *   SOFTWARE.
 *
 *
 **********************************************************************************************************************/

package protocol

import (
	"encoding/json"
	"fmt"

	"github.com/fxamacker/cbor/v2"
	"gopkg.in/yaml.v3"
)

func (n NetworkProtocol) MarshalJSON() ([]byte, error) {
	return json.Marshal(n.String())
}

func (n *NetworkProtocol) UnmarshalJSON(b []byte) error {
	var t string
	if err := json.Unmarshal(b, &t); err != nil {
		*n = ParseBytes(b)
		return nil
	}
	*n = Parse(t)
	return nil
}

func (n NetworkProtocol) MarshalYAML() (interface{}, error) {
	return n.String(), nil
}

func (n *NetworkProtocol) UnmarshalYAML(value *yaml.Node) error {
	*n = Parse(value.Value)
	return nil
}

func (n NetworkProtocol) MarshalTOML() ([]byte, error) {
	return []byte("\"" + n.String() + "\""), nil
}

func (n *NetworkProtocol) UnmarshalTOML(i interface{}) error {
	switch v := i.(type) {
	case []byte:
		*n = ParseBytes(v)
	case string:
		*n = Parse(v)
	default:
		return fmt.Errorf("protocol: value not in a valid format")
	}
	return nil
}

func (n NetworkProtocol) MarshalText() ([]byte, error) {
	return []byte(n.String()), nil
}

func (n *NetworkProtocol) UnmarshalText(b []byte) error {
	*n = ParseBytes(b)
	return nil
}

func (n NetworkProtocol) MarshalCBOR() ([]byte, error) {
	return cbor.Marshal(n.String())
}

func (n *NetworkProtocol) UnmarshalCBOR(b []byte) error {
	var t string
	if err := cbor.Unmarshal(b, &t); err != nil {
		return err
	}
	*n = Parse(t)
	return nil
}
