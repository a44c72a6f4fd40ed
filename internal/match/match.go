// Package match implements redis-style glob matching for in-process stores
// that have no server to evaluate MATCH patterns for them.
//
// Supported syntax: '*' (any run), '?' (one byte), '[...]' character classes
// with '^' negation and 'a-z' ranges, and '\' escaping.
package match

// Escape returns a pattern that matches s literally, with every glob
// metacharacter backslash-escaped. Redis SCAN MATCH honors the same escapes.
func Escape(s string) string {
	out := make([]byte, 0, len(s))
	for i := 0; i < len(s); i++ {
		switch s[i] {
		case '*', '?', '[', ']', '\\':
			out = append(out, '\\')
		}
		out = append(out, s[i])
	}
	return string(out)
}

// Match reports whether s matches the glob pattern.
func Match(pattern, s string) bool {
	return matchHere(pattern, s)
}

func matchHere(p, s string) bool {
	for len(p) > 0 {
		switch p[0] {
		case '*':
			for len(p) > 1 && p[1] == '*' {
				p = p[1:]
			}
			if len(p) == 1 {
				return true
			}
			for i := 0; i <= len(s); i++ {
				if matchHere(p[1:], s[i:]) {
					return true
				}
			}
			return false
		case '?':
			if len(s) == 0 {
				return false
			}
			p, s = p[1:], s[1:]
		case '[':
			if len(s) == 0 {
				return false
			}
			ok, rest := matchClass(p, s[0])
			if !ok {
				return false
			}
			p, s = rest, s[1:]
		case '\\':
			if len(p) > 1 {
				p = p[1:]
			}
			if len(s) == 0 || p[0] != s[0] {
				return false
			}
			p, s = p[1:], s[1:]
		default:
			if len(s) == 0 || p[0] != s[0] {
				return false
			}
			p, s = p[1:], s[1:]
		}
	}
	return len(s) == 0
}

// matchClass consumes one '[...]' class from p and tests c against it.
// An unclosed class runs to the end of the pattern, mirroring redis.
func matchClass(p string, c byte) (matched bool, rest string) {
	i := 1 // past '['
	neg := false
	if i < len(p) && p[i] == '^' {
		neg = true
		i++
	}
	for i < len(p) && p[i] != ']' {
		if p[i] == '\\' && i+1 < len(p) {
			i++
		}
		if i+2 < len(p) && p[i+1] == '-' && p[i+2] != ']' {
			lo, hi := p[i], p[i+2]
			if hi < lo {
				lo, hi = hi, lo
			}
			if lo <= c && c <= hi {
				matched = true
			}
			i += 3
			continue
		}
		if p[i] == c {
			matched = true
		}
		i++
	}
	if i < len(p) {
		i++ // past ']'
	}
	if neg {
		matched = !matched
	}
	return matched, p[i:]
}
