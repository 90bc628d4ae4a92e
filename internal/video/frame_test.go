package video

import "testing"

func TestLockedFrameLockView(t *testing.T) {
	f := &LockedFrame{}
	if _, held := f.View(); held {
		t.Fatal("new LockedFrame: want not held")
	}

	buf := []byte{1, 2, 3, 4}
	f.Lock(buf)
	got, held := f.View()
	if !held {
		t.Fatal("after Lock: want held")
	}
	if len(got) != len(buf) {
		t.Errorf("View length: got %d, want %d", len(got), len(buf))
	}
}

func TestLockedFrameLockReplacesPreviousLease(t *testing.T) {
	f := &LockedFrame{}
	f.Lock([]byte{1, 2, 3})
	f.Lock([]byte{9, 9})
	got, held := f.View()
	if !held {
		t.Fatal("want held after second Lock")
	}
	if len(got) != 2 {
		t.Errorf("second Lock should replace the first lease: got len %d, want 2", len(got))
	}
}

func TestLockedFrameUnlockIsIdempotent(t *testing.T) {
	f := &LockedFrame{}
	f.Lock([]byte{1, 2, 3})
	f.Unlock()
	f.Unlock() // second call must not panic or misbehave

	if _, held := f.View(); held {
		t.Error("after Unlock twice: want not held")
	}
}
