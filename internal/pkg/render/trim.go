package render

import (
	"regexp"
	"strings"
)

var (
	tagName = regexp.MustCompile(`^[-+]?\s*(\w+)`)
	endRaw  = regexp.MustCompile(`\{%[-+]?\s*endraw\b`)
)

// trimBlocks gives block tags and comments the behaviour of trim_blocks and
// lstrip_blocks: spaces and tabs between the start of a line and the tag
// are dropped, and so is the first newline after it. Output tags are left
// alone. A "+" after "{%" keeps the indentation, a "+" before "%}" keeps
// the newline. Raw sections are copied unchanged.
//
// The removed newline is moved inside the tag rather than deleted, so line
// numbers reported by the parser still match the file.
func trimBlocks(src string) string {
	var b strings.Builder
	b.Grow(len(src))

	pending := 0
	pos := 0
	for {
		start, end := nextTag(src, pos)
		if start < 0 {
			break
		}
		pos = end
		if src[start+1] == '{' {
			continue
		}

		opener, body, closer := src[start:start+2], src[start+2:end-2], src[end-2:end]
		keepIndent := strings.HasPrefix(body, "+")
		if keepIndent {
			body = body[1:]
		}
		keepNewline := strings.HasSuffix(body, "+")
		if keepNewline {
			body = body[:len(body)-1]
		}

		lineStart := strings.LastIndexByte(src[:start], '\n') + 1
		if !keepIndent && lineStart >= pending && strings.Trim(src[lineStart:start], " \t") == "" {
			b.WriteString(src[pending:lineStart])
		} else {
			b.WriteString(src[pending:start])
		}
		pending = end

		newline := ""
		if !keepNewline && !strings.HasSuffix(body, "-") {
			switch {
			case strings.HasPrefix(src[end:], "\r\n"):
				newline = "\r\n"
			case strings.HasPrefix(src[end:], "\n"):
				newline = "\n"
			}
		}
		pending += len(newline)
		b.WriteString(opener + body + newline + closer)

		if opener == "{%" {
			if m := tagName.FindStringSubmatch(body); m != nil && m[1] == "raw" {
				loc := endRaw.FindStringIndex(src[pending:])
				if loc == nil {
					break
				}
				pos = pending + loc[0]
			}
		}
	}
	b.WriteString(src[pending:])
	return b.String()
}

// nextTag finds the first tag at or after pos and returns its bounds, the
// end being just past the closing delimiter. Quoted strings inside block
// and output tags are skipped. It returns -1 when there is no complete
// tag left; the parser reports an unterminated one.
func nextTag(src string, pos int) (int, int) {
	for {
		i := strings.IndexByte(src[pos:], '{')
		if i < 0 || pos+i+1 >= len(src) {
			return -1, -1
		}
		start := pos + i
		switch src[start+1] {
		case '#':
			stop := strings.Index(src[start+2:], "#}")
			if stop < 0 {
				return -1, -1
			}
			return start, start + 2 + stop + 2
		case '%', '{':
			end := tagEnd(src, start+2, src[start+1])
			if end < 0 {
				return -1, -1
			}
			return start, end
		}
		pos = start + 1
	}
}

func tagEnd(src string, i int, kind byte) int {
	closer := "%}"
	if kind == '{' {
		closer = "}}"
	}
	depth := 0
	for i < len(src) {
		switch c := src[i]; c {
		case '"', '\'':
			i++
			for i < len(src) && src[i] != c {
				if src[i] == '\\' {
					i++
				}
				i++
			}
			i++
			continue
		case '{':
			depth++
		case '}':
			if depth > 0 {
				depth--
				i++
				continue
			}
		}
		if depth == 0 && strings.HasPrefix(src[i:], closer) {
			return i + 2
		}
		i++
	}
	return -1
}
