package mqtt

import (
	"errors"
	"testing"
)

func TestDecodeFeed(t *testing.T) {
	feed, err := DecodeFeed([]byte(`[{"day":"Monday","hours":[{"time":"09:00","roles":{"Cook":["Dee"]}}]}]`))
	if err != nil {
		t.Fatalf("decode: %v", err)
	}
	if len(feed) != 1 || feed[0].Day != "Monday" || feed[0].Hours[0].Roles["Cook"][0] != "Dee" {
		t.Fatalf("unexpected feed %+v", feed)
	}
}

func TestDecodeFeedInvalid(t *testing.T) {
	for _, body := range []string{"", "  \n", "{not json", `{"day":"Monday"}`} {
		if _, err := DecodeFeed([]byte(body)); !errors.Is(err, ErrInvalidPayload) {
			t.Fatalf("%q: expected ErrInvalidPayload, got %v", body, err)
		}
	}
}
