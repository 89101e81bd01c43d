package hash

import (
	"crypto/sha256"
	"encoding/hex"
	"testing"

	"github.com/stretchr/testify/assert"
)

func TestChainV1_MatchesCanonicalPreimage(t *testing.T) {
	in := ChainInput{
		CompanyID:      "comp_123",
		CounterKey:     "invoice",
		DocType:        "invoice",
		DocNumber:      42,
		DocID:          "doc_abc",
		IssuedAtMillis: 1700000000123,
		PrevHash:       "deadbeef",
	}

	preimage := "v1|comp_123|invoice|invoice|42|doc_abc|1700000000123|deadbeef"
	sum := sha256.Sum256([]byte(preimage))

	assert.Equal(t, hex.EncodeToString(sum[:]), ChainV1(in))
}

func TestChainV1_GenesisWhenNoPrev(t *testing.T) {
	in := ChainInput{
		CompanyID:      "comp_123",
		CounterKey:     "receipt",
		DocType:        "receipt",
		DocNumber:      1,
		DocID:          "doc_first",
		IssuedAtMillis: 1700000000000,
	}

	preimage := "v1|comp_123|receipt|receipt|1|doc_first|1700000000000|GENESIS"
	sum := sha256.Sum256([]byte(preimage))

	assert.Equal(t, hex.EncodeToString(sum[:]), ChainV1(in))
}

func TestChainV1_Deterministic(t *testing.T) {
	in := ChainInput{
		CompanyID:      "c",
		CounterKey:     "invoice",
		DocType:        "invoice",
		DocNumber:      7,
		DocID:          "d",
		IssuedAtMillis: 1,
		PrevHash:       "aa",
	}
	assert.Equal(t, ChainV1(in), ChainV1(in))

	// any single field change must change the digest
	changed := in
	changed.IssuedAtMillis = 2
	assert.NotEqual(t, ChainV1(in), ChainV1(changed))
}

func TestChain_VersionDispatch(t *testing.T) {
	in := ChainInput{CompanyID: "c", CounterKey: "invoice", DocType: "invoice", DocNumber: 1, DocID: "d"}

	got, ok := Chain(ChainFormatV1, in)
	assert.True(t, ok)
	assert.Equal(t, ChainV1(in), got)

	_, ok = Chain("v2", in)
	assert.False(t, ok)
}

func TestSnapshot_JoinsWithDelimiter(t *testing.T) {
	sum := sha256.Sum256([]byte("a|b|c"))
	assert.Equal(t, hex.EncodeToString(sum[:]), Snapshot("a", "b", "c"))
}
