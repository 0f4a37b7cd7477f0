package ocr

import (
	"context"
	"errors"
	"testing"
)

type stubEngine struct {
	text  string
	err   error
	calls int
}

func (s *stubEngine) Recognize(_ context.Context, _ string) (string, error) {
	s.calls++
	return s.text, s.err
}

func TestPoolRecognize(t *testing.T) {
	eng := &stubEngine{text: "hello"}
	pool := NewPool(eng, 1)

	got, err := pool.Recognize(context.Background(), "data:image/png;base64,aGk=")
	if err != nil {
		t.Fatal(err)
	}
	if got != "hello" {
		t.Errorf("got %q, want %q", got, "hello")
	}
}

func TestPoolReleasesSlotOnFailure(t *testing.T) {
	eng := &stubEngine{err: errors.New("recognition blew up")}
	pool := NewPool(eng, 1)
	ctx := context.Background()

	// With a single slot, a leaked acquisition would make every later
	// call block. Run several failing calls back to back.
	for i := 0; i < 3; i++ {
		if _, err := pool.Recognize(ctx, "data:image/png;base64,aGk="); err == nil {
			t.Fatal("expected error")
		}
	}
	if eng.calls != 3 {
		t.Errorf("engine called %d times, want 3", eng.calls)
	}
}

func TestPoolCancelledContext(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	pool := NewPool(&stubEngine{}, 1)
	if _, err := pool.Recognize(ctx, "data:image/png;base64,aGk="); err == nil {
		t.Fatal("expected error for cancelled context")
	}
}

func TestDataURIRoundTrip(t *testing.T) {
	uri := EncodeDataURI("image/png", []byte{0x89, 0x50, 0x4e, 0x47})

	mediaType, data, err := decodeDataURI(uri)
	if err != nil {
		t.Fatal(err)
	}
	if mediaType != "image/png" {
		t.Errorf("media type = %q, want %q", mediaType, "image/png")
	}
	if len(data) != 4 || data[0] != 0x89 {
		t.Errorf("decoded bytes = %v", data)
	}
}

func TestDecodeDataURIInvalid(t *testing.T) {
	for _, uri := range []string{"", "image/png;base64,aGk=", "data:image/png,plain", "data:image/png;base64,!!!"} {
		if _, _, err := decodeDataURI(uri); err == nil {
			t.Errorf("decodeDataURI(%q): expected error", uri)
		}
	}
}
