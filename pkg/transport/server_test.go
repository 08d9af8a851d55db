package transport

import (
	"context"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/texere-ot/ot/pkg/ot"
	"github.com/texere-ot/ot/pkg/session"
)

func startTestServer(t *testing.T, docID, initialText string) (*Server, string) {
	t.Helper()
	srv := NewServer(session.NewManager(nil))
	ts := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		srv.ServeHTTP(docID, initialText, w, r)
	}))
	t.Cleanup(ts.Close)

	url := "ws" + strings.TrimPrefix(ts.URL, "http")
	return srv, url
}

func TestServerSendsWelcomeWithCurrentSnapshot(t *testing.T) {
	_, url := startTestServer(t, "doc1", "hello")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	conn, err := Dial(ctx, url, "doc1")
	require.NoError(t, err)
	defer conn.Close()

	assert.Equal(t, "hello", conn.Text())
}

func TestServerBroadcastsOperationsBetweenClients(t *testing.T) {
	_, url := startTestServer(t, "doc1", "hello")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	a, err := Dial(ctx, url, "doc1")
	require.NoError(t, err)
	defer a.Close()

	b, err := Dial(ctx, url, "doc1")
	require.NoError(t, err)
	defer b.Close()

	_, err = a.Edit(ot.New(ot.Keep(5), ot.Add("!")))
	require.NoError(t, err)

	select {
	case text := <-a.Updates():
		assert.Equal(t, "hello!", text)
	case err := <-a.Errs():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for ack")
	}

	select {
	case text := <-b.Updates():
		assert.Equal(t, "hello!", text)
	case err := <-b.Errs():
		t.Fatalf("unexpected error: %v", err)
	case <-time.After(2 * time.Second):
		t.Fatal("timed out waiting for broadcast")
	}
}

// TestServerBroadcastsConcurrentOperationsFromSameRevision covers the case
// the sequential test above does not: two clients both editing from the
// same base revision before either has heard back from the server. Without
// transforming the second-arriving operation against the first (readPump's
// doc.ApplySince call), the second ot.Apply would fail with
// ot.ErrBadTextLength since it was built against a text length the document
// has already moved past.
func TestServerBroadcastsConcurrentOperationsFromSameRevision(t *testing.T) {
	_, url := startTestServer(t, "doc1", "hello")

	ctx, cancel := context.WithTimeout(context.Background(), 2*time.Second)
	defer cancel()

	a, err := Dial(ctx, url, "doc1")
	require.NoError(t, err)
	defer a.Close()

	b, err := Dial(ctx, url, "doc1")
	require.NoError(t, err)
	defer b.Close()

	// Both start from revision 0 / text "hello" and edit without waiting
	// for each other's ack: a appends "!", b prepends "Hi ". Neither
	// overlaps the other's span, so both orderings the server might
	// process them in converge on the same final text.
	_, err = a.Edit(ot.New(ot.Keep(5), ot.Add("!")))
	require.NoError(t, err)
	_, err = b.Edit(ot.New(ot.Add("Hi "), ot.Keep(5)))
	require.NoError(t, err)

	const want = "Hi hello!"
	assert.Equal(t, want, drainUntil(t, a, want))
	assert.Equal(t, want, drainUntil(t, b, want))
}

// drainUntil reads conn's update/error channels until it sees want, the
// connection reports an error, or the test's deadline expires. Each client
// receives one update for its own acked edit and one for the other's
// broadcast remote operation, in whichever order the server processed them.
func drainUntil(t *testing.T, conn *Conn, want string) string {
	t.Helper()
	var last string
	for i := 0; i < 4; i++ {
		select {
		case text := <-conn.Updates():
			last = text
			if last == want {
				return last
			}
		case err := <-conn.Errs():
			t.Fatalf("unexpected error: %v", err)
		case <-time.After(2 * time.Second):
			t.Fatalf("timed out waiting for %q, last seen %q", want, last)
		}
	}
	return last
}
