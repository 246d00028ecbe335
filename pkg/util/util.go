package util

import (
	"math"
	"strings"
)

func RoundFloat(val float64, precision uint) float64 {
	ratio := math.Pow(10, float64(precision))
	return math.Round(val*ratio) / ratio
}

func ReverseG[T any](arr []T) []T {
	copyArr := make([]T, len(arr)) // should do on the copy )
	copy(copyArr, arr)
	for i, j := 0, len(copyArr)-1; i < j; i, j = i+1, j-1 {
		copyArr[i], copyArr[j] = copyArr[j], copyArr[i]
	}
	return copyArr
}

// EscapeLike escapes the sql LIKE wildcards so the pattern matches them literally. use with ESCAPE '\'.
func EscapeLike(s string) string {
	replacer := strings.NewReplacer(`\`, `\\`, `%`, `\%`, `_`, `\_`)
	return replacer.Replace(s)
}

// NormalizeSpace trims s and collapses inner whitespace runs into a single space.
func NormalizeSpace(s string) string {
	return strings.Join(strings.Fields(s), " ")
}

// ParseListLiteral parses python list literals like "['Road A', 'Road B']" that osmnx writes for
// merged attributes. a plain value is returned as a single element list.
func ParseListLiteral(s string) []string {
	s = strings.TrimSpace(s)
	if s == "" {
		return []string{}
	}
	if !strings.HasPrefix(s, "[") || !strings.HasSuffix(s, "]") {
		return []string{s}
	}

	items := []string{}
	for _, item := range strings.Split(s[1:len(s)-1], ",") {
		item = strings.TrimSpace(item)
		item = strings.Trim(item, `'"`)
		if item != "" {
			items = append(items, item)
		}
	}
	return items
}

// ChunkG splits arr into consecutive chunks of at most size elements.
func ChunkG[T any](arr []T, size int) [][]T {
	if size <= 0 {
		size = 1
	}
	chunks := make([][]T, 0, len(arr)/size+1)
	for i := 0; i < len(arr); i += size {
		end := i + size
		if end > len(arr) {
			end = len(arr)
		}
		chunks = append(chunks, arr[i:end])
	}
	return chunks
}
