package handlers

import "bytes"

// The first bytes of every signature script hold the signature itself, which
// must never be mistaken for envelope content. A header only counts when it
// starts strictly after this offset.
const headerSkip = 10

var (
	kasplexHeaderLC = []byte("kasplex")
	kasplexHeaderUC = []byte("KASPLEX")
	krc20HeaderLC   = []byte("krc-20")
	krc20HeaderUC   = []byte("KRC-20")
)

// WindowFind returns the index of the first occurrence of needle in haystack
// that starts past the signature preamble, or -1. Haystacks no longer than
// the preamble never match, and neither does an empty needle.
func WindowFind(haystack, needle []byte) int {
	if len(haystack) <= headerSkip || len(needle) == 0 {
		return -1
	}
	position := bytes.Index(haystack[headerSkip+1:], needle)
	if position < 0 {
		return -1
	}
	return position + headerSkip + 1
}

// Detect reports whether header occurs in haystack past the preamble.
func Detect(haystack, header []byte) bool {
	return WindowFind(haystack, header) >= 0
}

// DetectKasplexHeader reports whether either case variant of the namespace
// marker is present.
func DetectKasplexHeader(haystack []byte) bool {
	return Detect(haystack, kasplexHeaderLC) || Detect(haystack, kasplexHeaderUC)
}

// DetectKRC20Header reports whether either case variant of the protocol
// marker is present.
func DetectKRC20Header(haystack []byte) bool {
	return Detect(haystack, krc20HeaderUC) || Detect(haystack, krc20HeaderLC)
}
