package shared

import "testing"

func TestMakeRandHexString(t *testing.T) {
	t.Parallel()

	s1, err := MakeRandHexString(32)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if len(s1) != 64 {
		t.Fatalf("want 64 hex chars, got %d", len(s1))
	}

	s2, err := MakeRandHexString(32)
	if err != nil {
		t.Fatalf("MakeRandHexString error: %v", err)
	}
	if s1 == s2 {
		t.Fatalf("two random strings should not collide")
	}
}

func TestWipeByteArray(t *testing.T) {
	t.Parallel()

	b := []byte("secret")
	WipeByteArray(b)
	for i, v := range b {
		if v != 0 {
			t.Fatalf("byte %d not wiped: %v", i, v)
		}
	}

	WipeByteArray(nil) // must not panic
}
