package cin7

import (
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestInternalComments_RoundTrip(t *testing.T) {
	data := map[string]string{
		"orderId":  "SO-12345",
		"shopName": "main-store",
		"attempt":  "2",
	}

	encoded := EncodeInternalComments(data, "")
	assert.Equal(t, "#FL#attempt: 2#--#orderId: SO-12345#--#shopName: main-store#FL#", encoded)

	decoded := DecodeInternalComments(encoded, "")
	assert.Equal(t, data, decoded)
}

func TestInternalComments_CustomSeparator(t *testing.T) {
	data := map[string]string{"a": "1", "b": "2"}

	encoded := EncodeInternalComments(data, "||")
	assert.Equal(t, "#FL#a: 1||b: 2#FL#", encoded)
	assert.Equal(t, data, DecodeInternalComments(encoded, "||"))
}

func TestDecodeInternalComments_SurroundingFreeText(t *testing.T) {
	comments := "call customer first #FL#orderId: 42#FL# handled by Sam"
	assert.Equal(t, map[string]string{"orderId": "42"}, DecodeInternalComments(comments, ""))
}

func TestDecodeInternalComments_MalformedSegmentsSkipped(t *testing.T) {
	comments := "#FL#orderId: 42#--#garbage#--#shop: x#FL#"
	assert.Equal(t, map[string]string{"orderId": "42", "shop": "x"}, DecodeInternalComments(comments, ""))
}

func TestDecodeInternalComments_NoMarkerParsesWholeString(t *testing.T) {
	assert.Equal(t, map[string]string{"k": "v"}, DecodeInternalComments("k: v", ""))
	assert.Empty(t, DecodeInternalComments("just a note", ""))
}

func TestCreditNoteComments_RoundTrip(t *testing.T) {
	data := map[string]string{"receiptId": "CR-7", "source": "returns-portal"}

	encoded := EncodeCreditNoteComments(data, "")
	assert.Equal(t, "##receiptId: CR-7#--#source: returns-portal##", encoded)
	assert.Equal(t, data, DecodeCreditNoteComments(encoded, ""))
}

func TestDecodeCreditNoteComments_MissingWrapper(t *testing.T) {
	assert.Empty(t, DecodeCreditNoteComments("plain operator note", ""))
	assert.Empty(t, DecodeCreditNoteComments("## unterminated", ""))
}
