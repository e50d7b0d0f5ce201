package util

func IsDigit(r rune) bool {
	return r >= '0' && r <= '9'
}

func IsLetter(r rune) bool {
	return (r >= 'a' && r <= 'z') || (r >= 'A' && r <= 'Z')
}

// IsIdentStart reports whether r can begin an identifier or keyword.
func IsIdentStart(r rune) bool {
	return IsLetter(r) || r == '_'
}

// IsIdentPart reports whether r can appear after the first rune of an
// identifier or keyword.
func IsIdentPart(r rune) bool {
	return IsIdentStart(r) || IsDigit(r)
}
