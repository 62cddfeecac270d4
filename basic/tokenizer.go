// This file is part of mltt-sub000.
//
// mltt-sub000 is free software: you can redistribute it and/or modify
// it under the terms of the GNU General Public License as published by
// the Free Software Foundation, either version 3 of the License, or
// (at your option) any later version.
//
// mltt-sub000 is distributed in the hope that it will be useful,
// but WITHOUT ANY WARRANTY; without even the implied warranty of
// MERCHANTABILITY or FITNESS FOR A PARTICULAR PURPOSE.  See the
// GNU General Public License for more details.
//
// You should have received a copy of the GNU General Public License
// along with mltt-sub000.  If not, see <https://www.gnu.org/licenses/>.

// Package basic implements TI BASIC's line tokenizer and detokenizer.
// Saved BASIC programs store each line as keyword tokens rather than
// text, so loading a program from disk or cassette and listing it back
// both go through this codec; it is written bidirectionally for that
// reason rather than as a one-way compiler front end.
package basic

import (
	"strconv"
	"strings"

	xerrors "github.com/mburkley/mltt-sub000/errors"
)

// Token values for the keywords this emulator's BASIC programs use.
// Real TI BASIC's table runs past 0xFF with a second byte for extended
// keywords; this table covers the statements and functions the
// original_source test programs exercise.
const (
	TokEOL     = 0x00
	TokNumber  = 0xC8 // followed by an 8-byte floating point literal... here, a decimal string
	TokString  = 0xC7 // followed by a length byte and the literal bytes
	TokUnquotedName = 0xC9
)

var keywordTokens = map[string]uint8{
	"PRINT": 0x81, "LET": 0x82, "IF": 0x83, "THEN": 0x84, "ELSE": 0x85,
	"FOR": 0x86, "TO": 0x87, "STEP": 0x88, "NEXT": 0x89, "GOTO": 0x8A,
	"GOSUB": 0x8B, "RETURN": 0x8C, "END": 0x8D, "STOP": 0x8E,
	"DIM": 0x8F, "REM": 0x90, "INPUT": 0x91, "DATA": 0x92, "READ": 0x93,
	"RESTORE": 0x94, "ON": 0x95, "CALL": 0x96, "OPEN": 0x97, "CLOSE": 0x98,
	"PRINT#": 0x99, "AND": 0x9A, "OR": 0x9B, "NOT": 0x9C,
}

var tokenKeywords = reverseMap(keywordTokens)

func reverseMap(m map[string]uint8) map[uint8]string {
	out := make(map[uint8]string, len(m))
	for k, v := range m {
		out[v] = k
	}
	return out
}

// TokenizeLine converts one line of BASIC source text (without its line
// number, which the caller stores separately as the program's line
// index) into its tokenized byte form, terminated by TokEOL.
func TokenizeLine(src string) ([]byte, error) {
	var out []byte
	words := splitKeepingStringsAndNumbers(src)

	for _, w := range words {
		switch {
		case w == "":
			continue
		case strings.HasPrefix(w, `"`):
			unquoted := strings.Trim(w, `"`)
			if len(unquoted) > 255 {
				return nil, xerrors.Errorf(xerrors.MalformedROM, "basic line", "string literal too long")
			}
			out = append(out, TokString, uint8(len(unquoted)))
			out = append(out, unquoted...)
		case isNumber(w):
			out = append(out, TokNumber, uint8(len(w)))
			out = append(out, w...)
		default:
			if tok, ok := keywordTokens[strings.ToUpper(w)]; ok {
				out = append(out, tok)
				continue
			}
			// Bare identifier: variable or unrecognized keyword, stored
			// literally so DetokenizeLine can round-trip it.
			out = append(out, TokUnquotedName, uint8(len(w)))
			out = append(out, w...)
		}
	}
	out = append(out, TokEOL)
	return out, nil
}

// DetokenizeLine reverses TokenizeLine, reconstructing displayable BASIC
// source text from a tokenized line's bytes.
func DetokenizeLine(tok []byte) (string, error) {
	var b strings.Builder
	i := 0
	first := true
	for i < len(tok) {
		if tok[i] == TokEOL {
			break
		}
		if !first {
			b.WriteByte(' ')
		}
		first = false

		switch tok[i] {
		case TokString:
			if i+1 >= len(tok) {
				return "", xerrors.Errorf(xerrors.MalformedROM, "basic line", "truncated string token")
			}
			n := int(tok[i+1])
			if i+2+n > len(tok) {
				return "", xerrors.Errorf(xerrors.MalformedROM, "basic line", "truncated string literal")
			}
			b.WriteByte('"')
			b.Write(tok[i+2 : i+2+n])
			b.WriteByte('"')
			i += 2 + n
		case TokNumber, TokUnquotedName:
			if i+1 >= len(tok) {
				return "", xerrors.Errorf(xerrors.MalformedROM, "basic line", "truncated literal token")
			}
			n := int(tok[i+1])
			if i+2+n > len(tok) {
				return "", xerrors.Errorf(xerrors.MalformedROM, "basic line", "truncated literal")
			}
			b.Write(tok[i+2 : i+2+n])
			i += 2 + n
		default:
			kw, ok := tokenKeywords[tok[i]]
			if !ok {
				return "", xerrors.Errorf(xerrors.MalformedROM, "basic line", "unknown token")
			}
			b.WriteString(kw)
			i++
		}
	}
	return b.String(), nil
}

func isNumber(s string) bool {
	_, err := strconv.ParseFloat(s, 64)
	return err == nil
}

// splitKeepingStringsAndNumbers is a minimal whitespace tokenizer: it
// splits on spaces only (operators are not split off) but keeps quoted
// strings intact.
func splitKeepingStringsAndNumbers(src string) []string {
	var out []string
	var cur strings.Builder
	inString := false

	flush := func() {
		if cur.Len() > 0 {
			out = append(out, cur.String())
			cur.Reset()
		}
	}

	for _, r := range src {
		switch {
		case r == '"':
			cur.WriteRune(r)
			inString = !inString
		case r == ' ' && !inString:
			flush()
		default:
			cur.WriteRune(r)
		}
	}
	flush()
	return out
}
