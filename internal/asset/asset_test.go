package asset

import "testing"

func TestAssetEquality(t *testing.T) {
	addr1 := Address{Workchain: 0, Hash: [32]byte{1, 2, 3}}
	addr2 := Address{Workchain: 0, Hash: [32]byte{1, 2, 3}}
	addr3 := Address{Workchain: 0, Hash: [32]byte{9}}

	if Token(addr1) != Token(addr2) {
		t.Fatalf("expected structurally equal token assets to compare equal")
	}
	if Token(addr1) == Token(addr3) {
		t.Fatalf("expected distinct master addresses to compare unequal")
	}
	if Native != (Asset{Kind: KindNative}) {
		t.Fatalf("expected Native to be the zero-payload native asset")
	}
	if Native == Token(Null) {
		t.Fatalf("expected native and token(null) to be distinct assets")
	}
}

func TestAssetAsMapKey(t *testing.T) {
	m := map[Asset]int{}
	m[Native] = 1
	m[ExtraCurrency(7)] = 2
	m[Token(Address{Workchain: -1, Hash: [32]byte{0xaa}})] = 3

	if len(m) != 3 {
		t.Fatalf("expected 3 distinct keys, got %d", len(m))
	}
	if m[Native] != 1 {
		t.Fatalf("lookup by native asset failed")
	}
}
