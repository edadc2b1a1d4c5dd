package providers

import (
	"context"
	"net/http"
	"testing"

	"github.com/rs/zerolog"

	"github.com/restakehq/restake-agent/internal/message"
)

func TestTVLReply(t *testing.T) {
	client := newExplorerClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"tvl": 1234567.891}`))
	})
	p := NewTVL(client, zerolog.Nop())

	reply := p.Respond(context.Background(), message.New("u", "r", "a", "what is the tvl of eigenlayer?"))
	if reply == nil {
		t.Fatal("expected a reply")
	}
	want := "The current Total Value Locked (TVL) in EigenLayer is $1,234,567.89"
	if reply.Text != want {
		t.Fatalf("reply = %q, want %q", reply.Text, want)
	}
}

func TestTVLServerError(t *testing.T) {
	client := newExplorerClient(t, func(w http.ResponseWriter, r *http.Request) {
		w.WriteHeader(http.StatusInternalServerError)
	})
	p := NewTVL(client, zerolog.Nop())

	reply := p.Respond(context.Background(), message.New("u", "r", "a", "eigenlayer tvl?"))
	if reply == nil {
		t.Fatal("expected a reply")
	}
	want := "Unable to fetch TVL data at the moment due to a server error. Please try again later."
	if reply.Text != want {
		t.Fatalf("reply = %q, want %q", reply.Text, want)
	}
}

func TestTVLIgnoresUnrelatedText(t *testing.T) {
	client := newExplorerClient(t, func(w http.ResponseWriter, r *http.Request) {})
	p := NewTVL(client, zerolog.Nop())

	if reply := p.Respond(context.Background(), message.New("u", "r", "a", "deposit 0.5 into eigenlayer")); reply != nil {
		t.Fatalf("expected nil reply, got %q", reply.Text)
	}
}
