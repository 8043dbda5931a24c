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

package size

import (
	"fmt"
	"strconv"
	"strings"
)

var suffixes = []struct {
	suffix string
	unit   Size
}{
	{"eb", SizeExa},
	{"e", SizeExa},
	{"pb", SizePeta},
	{"p", SizePeta},
	{"tb", SizeTera},
	{"t", SizeTera},
	{"gb", SizeGiga},
	{"g", SizeGiga},
	{"mb", SizeMega},
	{"m", SizeMega},
	{"kb", SizeKilo},
	{"k", SizeKilo},
	{"b", SizeUnit},
}

func parseString(s string) (Size, error) {
	s = trimQuotesAndSpace(s)
	if s == "" {
		return SizeNul, nil
	}

	low := strings.ToLower(s)
	for _, sfx := range suffixes {
		if strings.HasSuffix(low, sfx.suffix) {
			num := strings.TrimSpace(s[:len(s)-len(sfx.suffix)])
			if num == "" {
				continue
			}
			f, err := strconv.ParseFloat(num, 64)
			if err != nil {
				continue
			}
			return Size(f * float64(sfx.unit)), nil
		}
	}

	f, err := strconv.ParseFloat(s, 64)
	if err != nil {
		return SizeNul, fmt.Errorf("size: invalid value %q", s)
	}
	return Size(f), nil
}

func (s *Size) unmarshall(val []byte) error {
	v, err := parseString(string(val))
	if err != nil {
		return err
	}
	*s = v
	return nil
}
