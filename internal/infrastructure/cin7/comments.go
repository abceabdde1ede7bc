package cin7

import (
	"fmt"
	"sort"
	"strings"
)

// Structured data rides inside the free-text internal comments field of sales
// orders and credit notes. Sales orders wrap the payload in #FL# markers;
// credit notes use the older ## markers. Keys and values must not contain the
// ": " pair separator.
const (
	// DefaultCommentSeparator separates key/value segments inside the wrapper
	DefaultCommentSeparator = "#--#"

	salesOrderCommentMarker = "#FL#"
	creditNoteCommentMarker = "##"
)

// EncodeInternalComments renders data as `#FL#k: v<sep>k: v#FL#`. Keys are
// emitted in sorted order so the encoding is deterministic.
func EncodeInternalComments(data map[string]string, separator string) string {
	return encodeComments(data, separator, salesOrderCommentMarker)
}

// DecodeInternalComments parses a sales order comments field produced by
// EncodeInternalComments. Segments without a ": " pair are skipped.
func DecodeInternalComments(comments, separator string) map[string]string {
	if separator == "" {
		separator = DefaultCommentSeparator
	}
	body := comments
	if start := strings.Index(body, salesOrderCommentMarker); start >= 0 {
		body = body[start+len(salesOrderCommentMarker):]
		if end := strings.Index(body, salesOrderCommentMarker); end >= 0 {
			body = body[:end]
		}
	}
	return decodeSegments(body, separator)
}

// EncodeCreditNoteComments renders data in the credit note `##…##` wrapper
func EncodeCreditNoteComments(data map[string]string, separator string) string {
	return encodeComments(data, separator, creditNoteCommentMarker)
}

// DecodeCreditNoteComments parses a credit note comments field. Text outside
// the ##…## wrapper is ignored; a missing wrapper yields an empty map.
func DecodeCreditNoteComments(comments, separator string) map[string]string {
	if separator == "" {
		separator = DefaultCommentSeparator
	}
	start := strings.Index(comments, creditNoteCommentMarker)
	if start < 0 {
		return map[string]string{}
	}
	body := comments[start+len(creditNoteCommentMarker):]
	end := strings.Index(body, creditNoteCommentMarker)
	if end < 0 {
		return map[string]string{}
	}
	return decodeSegments(body[:end], separator)
}

func encodeComments(data map[string]string, separator, marker string) string {
	if separator == "" {
		separator = DefaultCommentSeparator
	}
	keys := make([]string, 0, len(data))
	for k := range data {
		keys = append(keys, k)
	}
	sort.Strings(keys)

	segments := make([]string, 0, len(keys))
	for _, k := range keys {
		segments = append(segments, fmt.Sprintf("%s: %s", k, data[k]))
	}
	return marker + strings.Join(segments, separator) + marker
}

func decodeSegments(body, separator string) map[string]string {
	result := make(map[string]string)
	for _, segment := range strings.Split(body, separator) {
		key, value, found := strings.Cut(segment, ": ")
		if !found {
			continue
		}
		result[key] = value
	}
	return result
}
