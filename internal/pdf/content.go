package pdf

import (
	"strconv"
	"strings"
)

// DecodeContentText pulls human-readable text out of a raw PDF page content
// stream by decoding the literal strings fed to the Tj/TJ/'/" text-show
// operators. It is a best-effort decoder for text-based PDFs, not a layout
// engine: strings are joined in stream order, separated by single spaces.
func DecodeContentText(content string) string {
	if content == "" {
		return ""
	}

	var texts []string
	for _, line := range strings.Split(content, "\n") {
		line = strings.TrimSpace(line)
		if line == "" || !isTextShowLine(line) {
			continue
		}
		for _, s := range literalStrings(line) {
			if strings.TrimSpace(s) != "" {
				texts = append(texts, s)
			}
		}
	}

	return strings.Join(texts, " ")
}

// isTextShowLine reports whether a content-stream line carries a text-show
// operator (Tj, TJ, ' or ").
func isTextShowLine(line string) bool {
	return strings.Contains(line, " Tj") ||
		strings.Contains(line, " TJ") ||
		strings.HasSuffix(line, "'") ||
		strings.HasSuffix(line, "\"")
}

// literalStrings extracts the (...) literal strings from one operator line,
// resolving the PDF escape sequences \( \) \\ \n \r \t and octal \ddd.
func literalStrings(line string) []string {
	var out []string
	var cur strings.Builder
	depth := 0

	for i := 0; i < len(line); i++ {
		c := line[i]

		if depth == 0 {
			if c == '(' {
				depth = 1
				cur.Reset()
			}
			continue
		}

		switch c {
		case '\\':
			if i+1 >= len(line) {
				continue
			}
			i++
			switch e := line[i]; e {
			case 'n':
				cur.WriteByte('\n')
			case 'r':
				cur.WriteByte('\r')
			case 't':
				cur.WriteByte('\t')
			case '(', ')', '\\':
				cur.WriteByte(e)
			default:
				if e >= '0' && e <= '7' {
					// Up to three octal digits.
					j := i
					for j < len(line) && j-i < 3 && line[j] >= '0' && line[j] <= '7' {
						j++
					}
					if v, err := strconv.ParseUint(line[i:j], 8, 16); err == nil {
						writeOctalRune(&cur, v)
					}
					i = j - 1
				}
			}
		case '(':
			depth++
			cur.WriteByte(c)
		case ')':
			depth--
			if depth == 0 {
				out = append(out, cur.String())
			} else {
				cur.WriteByte(c)
			}
		default:
			cur.WriteByte(c)
		}
	}

	return out
}

// writeOctalRune maps the common PDFDoc/WinAnsi escapes onto their unicode
// equivalents and drops the rest of the non-printable range.
func writeOctalRune(b *strings.Builder, v uint64) {
	switch v {
	case 0225, 0227:
		b.WriteRune('-')
	case 0226:
		b.WriteRune('-')
	case 0221, 0222, 0231:
		b.WriteRune('\'')
	case 0223, 0224:
		b.WriteRune('"')
	case 0240:
		b.WriteRune(' ')
	case 0260:
		b.WriteRune('°')
	case 0251:
		b.WriteRune('©')
	case 0256:
		b.WriteRune('®')
	default:
		switch {
		case v >= 32 && v < 127:
			b.WriteByte(byte(v))
		case v >= 160 && v <= 255:
			// Latin-1 range maps directly onto unicode code points.
			b.WriteRune(rune(v))
		}
	}
}
