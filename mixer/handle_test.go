package mixer

import "testing"

func TestHandleEncoding(t *testing.T) {
	t.Parallel()

	h := makeHandle(3, 0)
	if sourceID(h) != 3 || channelID(h) != 0 || sourceType(h) != 0 {
		t.Errorf("source handle fields = %d/%d/%d, want 3/0/0",
			sourceID(h), channelID(h), sourceType(h))
	}

	h = makeHandle(3, 7)
	if sourceID(h) != 3 || channelID(h) != 7 {
		t.Errorf("play handle fields = %d/%d, want 3/7", sourceID(h), channelID(h))
	}

	k := kssSourceID(2)
	if sourceType(k) != sourceTypeKSS {
		t.Errorf("sourceType(kss) = %d, want %d", sourceType(k), sourceTypeKSS)
	}
	if untypedSourceID(k) != 2 {
		t.Errorf("untypedSourceID(kss) = %d, want 2", untypedSourceID(k))
	}

	h = makeHandle(k, 5)
	if sourceType(h) != sourceTypeKSS || untypedSourceID(h) != 2 || channelID(h) != 5 {
		t.Errorf("kss play handle fields = %d/%d/%d, want 1/2/5",
			sourceType(h), untypedSourceID(h), channelID(h))
	}

	// the wildcard handle has no fields at all
	if sourceID(0) != 0 || channelID(0) != 0 {
		t.Error("handle 0 decodes to non-zero fields")
	}
}
