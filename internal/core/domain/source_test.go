package domain

import (
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestFingerprint_Deterministic(t *testing.T) {
	sources := []Source{
		{ID: "guide", Text: "# Guide\n\nSome content."},
		{ID: "faq", Text: "## Q1\n\nAn answer."},
	}

	fp1 := Fingerprint(sources)
	fp2 := Fingerprint(sources)

	assert.Equal(t, fp1, fp2)
	assert.Len(t, fp1, 64) // hex-encoded SHA-256
}

func TestFingerprint_ChangesWithContent(t *testing.T) {
	base := []Source{{ID: "doc", Text: "original text"}}
	changed := []Source{{ID: "doc", Text: "original text!"}}

	assert.NotEqual(t, Fingerprint(base), Fingerprint(changed))
}

func TestFingerprint_ChangesWithID(t *testing.T) {
	a := []Source{{ID: "doc-a", Text: "same text"}}
	b := []Source{{ID: "doc-b", Text: "same text"}}

	assert.NotEqual(t, Fingerprint(a), Fingerprint(b))
}

func TestFingerprint_ChangesWithOrder(t *testing.T) {
	first := Source{ID: "first", Text: "alpha"}
	second := Source{ID: "second", Text: "beta"}

	assert.NotEqual(t,
		Fingerprint([]Source{first, second}),
		Fingerprint([]Source{second, first}))
}

func TestFingerprint_HeadTailSampling(t *testing.T) {
	// Sources longer than twice the sample window hash only their
	// length plus head and tail bytes, so a change to the head must
	// still flip the fingerprint.
	long := strings.Repeat("a", 4096)
	edited := "b" + long[1:]

	assert.NotEqual(t,
		Fingerprint([]Source{{ID: "doc", Text: long}}),
		Fingerprint([]Source{{ID: "doc", Text: edited}}))

	// A change to the tail flips it too.
	tailEdited := long[:len(long)-1] + "b"
	assert.NotEqual(t,
		Fingerprint([]Source{{ID: "doc", Text: long}}),
		Fingerprint([]Source{{ID: "doc", Text: tailEdited}}))

	// A length-preserving edit in the unsampled interior is the
	// sampling scheme's documented blind spot: the fingerprint does
	// not change.
	interiorEdited := long[:2048] + "b" + long[2049:]
	assert.Equal(t,
		Fingerprint([]Source{{ID: "doc", Text: long}}),
		Fingerprint([]Source{{ID: "doc", Text: interiorEdited}}))
}

func TestFingerprint_EmptyCorpus(t *testing.T) {
	assert.NotEmpty(t, Fingerprint(nil))
	assert.Equal(t, Fingerprint(nil), Fingerprint([]Source{}))
}
