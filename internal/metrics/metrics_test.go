package metrics

import (
	"io"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/prometheus/client_golang/prometheus/testutil"
)

func TestObserveCounters(t *testing.T) {
	before := testutil.ToFloat64(CommandsTotal.WithLabelValues("go"))
	ObserveCommand("go")
	ObserveCommand("go")
	if got := testutil.ToFloat64(CommandsTotal.WithLabelValues("go")) - before; got != 2 {
		t.Fatalf("commands: got %v", got)
	}

	before = testutil.ToFloat64(PositionRejections.WithLabelValues("empty_fen"))
	ObservePositionRejected("empty_fen")
	if got := testutil.ToFloat64(PositionRejections.WithLabelValues("empty_fen")) - before; got != 1 {
		t.Fatalf("rejections: got %v", got)
	}

	before = testutil.ToFloat64(AdvisorProposals.WithLabelValues("book", "move"))
	ObserveAdvisor("book", "move", 3*time.Millisecond)
	if got := testutil.ToFloat64(AdvisorProposals.WithLabelValues("book", "move")) - before; got != 1 {
		t.Fatalf("proposals: got %v", got)
	}
}

func TestHandlerExposesMetrics(t *testing.T) {
	ObserveCommand("handshake")
	srv := httptest.NewServer(Handler())
	defer srv.Close()

	resp, err := srv.Client().Get(srv.URL)
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	defer resp.Body.Close()
	body, _ := io.ReadAll(resp.Body)
	if !strings.Contains(string(body), `chessbro_commands_total{command="handshake"}`) {
		t.Fatalf("metrics output missing commands counter:\n%s", body)
	}
}
