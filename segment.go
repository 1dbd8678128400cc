// Copyright 2022 Sylvain Müller. All rights reserved.
// Mount of this source code is governed by a Apache-2.0 license that can be found
// at https://github.com/tigerwill90/fern/blob/master/LICENSE.txt.

package fern

import (
	"fmt"
	"strings"
)

const (
	slashDelim byte = '/'
	dotDelim   byte = '.'
	paramDelim byte = ':'
)

// defaultDelims is the set of bytes terminating a parameter when no extra delimiter is configured.
const defaultDelims = "/"

// isParamStart reports whether pattern[i] opens a parameter token, that is a ':' directly following a '/'.
func isParamStart(pattern string, i int) bool {
	return i > 0 && pattern[i] == paramDelim && pattern[i-1] == slashDelim
}

// splitParam returns the literal part of pattern up to its first parameter token and the remainder
// starting at the ':' of that token. If pattern has no parameter, rest is empty.
func splitParam(pattern string) (literal, rest string) {
	for i := 1; i < len(pattern); i++ {
		if isParamStart(pattern, i) {
			return pattern[:i], pattern[i:]
		}
	}
	return pattern, ""
}

// splitAtDelimiter splits text at the first byte found in delims. The captured part never
// contains a delimiter.
func splitAtDelimiter(text, delims string) (captured, rest string) {
	if i := strings.IndexAny(text, delims); i >= 0 {
		return text[:i], text[i:]
	}
	return text, ""
}

// paramToken splits a parameter token such as ":id/more" into its name and the remaining pattern.
func paramToken(token, delims string) (name, rest string) {
	return splitAtDelimiter(token[1:], delims)
}

// validatePattern rejects empty pattern and parameter without name.
func validatePattern(pattern, delims string) error {
	if pattern == "" {
		return fmt.Errorf("%w: empty pattern", ErrInvalidRoute)
	}
	for i := 1; i < len(pattern); i++ {
		if !isParamStart(pattern, i) {
			continue
		}
		if name, _ := paramToken(pattern[i:], delims); name == "" {
			return fmt.Errorf("%w: missing parameter name at offset %d in %q", ErrInvalidRoute, i, pattern)
		}
	}
	return nil
}

// hasUpperLiteral reports whether a literal part of pattern contains an upper-case ASCII letter.
func hasUpperLiteral(pattern, delims string) bool {
	for len(pattern) > 0 {
		literal, rest := splitParam(pattern)
		for i := 0; i < len(literal); i++ {
			if 'A' <= literal[i] && literal[i] <= 'Z' {
				return true
			}
		}
		if rest == "" {
			return false
		}
		_, pattern = paramToken(rest, delims)
	}
	return false
}

func toLower(c byte) byte {
	if 'A' <= c && c <= 'Z' {
		return c + ('a' - 'A')
	}
	return c
}

// hasPrefix is strings.HasPrefix with optional ASCII case folding of s. The prefix is expected
// to be already lower-cased when fold is true.
func hasPrefix(s, prefix string, fold bool) bool {
	if len(s) < len(prefix) {
		return false
	}
	if !fold {
		return s[:len(prefix)] == prefix
	}
	for i := 0; i < len(prefix); i++ {
		if toLower(s[i]) != prefix[i] {
			return false
		}
	}
	return true
}
