package handlers_test

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/fumble-dev/hire-me/internal/domain"
	"github.com/fumble-dev/hire-me/internal/logger"
	"github.com/fumble-dev/hire-me/internal/transport/http/handlers"
	"github.com/fumble-dev/hire-me/internal/transport/http/router"
)

type fakeCoordinator struct {
	mu        sync.Mutex
	requested []string
	redeemErr error
	redeemed  []string
}

func (f *fakeCoordinator) Request(_ context.Context, email string) {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.requested = append(f.requested, email)
}

func (f *fakeCoordinator) Redeem(_ context.Context, token, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	if f.redeemErr != nil {
		return f.redeemErr
	}
	f.redeemed = append(f.redeemed, token)
	return nil
}

type fakeNotifier struct {
	mu    sync.Mutex
	calls int
	err   error
}

func (f *fakeNotifier) ApplicationStatusChanged(_ context.Context, _, _ string) error {
	f.mu.Lock()
	defer f.mu.Unlock()
	f.calls++
	return f.err
}

type fakeBroker struct{ degraded bool }

func (f *fakeBroker) Degraded() bool { return f.degraded }

const internalSecret = "test-internal-secret"

func newServer(t *testing.T, coord *fakeCoordinator, notifier *fakeNotifier, broker *fakeBroker) *httptest.Server {
	t.Helper()
	h, err := router.New(router.Deps{
		Health:         handlers.NewHealthHandler(broker),
		Reset:          handlers.NewResetHandler(coord),
		Notify:         handlers.NewNotifyHandler(notifier),
		InternalSecret: internalSecret,
	})
	if err != nil {
		t.Fatalf("router: %v", err)
	}
	srv := httptest.NewServer(h)
	t.Cleanup(srv.Close)
	return srv
}

func doJSON(t *testing.T, method, url, body string, header map[string]string) (*http.Response, map[string]any) {
	t.Helper()
	req, err := http.NewRequest(method, url, strings.NewReader(body))
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	for k, v := range header {
		req.Header.Set(k, v)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("do request: %v", err)
	}
	defer resp.Body.Close()

	var parsed map[string]any
	_ = json.NewDecoder(resp.Body).Decode(&parsed)
	return resp, parsed
}

func TestForgotPasswordAlwaysSameResponse(t *testing.T) {
	coord := &fakeCoordinator{}
	srv := newServer(t, coord, &fakeNotifier{}, &fakeBroker{})

	respA, bodyA := doJSON(t, http.MethodPost, srv.URL+"/forgot-password", `{"email":"known@example.com"}`, nil)
	respB, bodyB := doJSON(t, http.MethodPost, srv.URL+"/forgot-password", `{"email":"unknown@example.com"}`, nil)

	if respA.StatusCode != http.StatusOK || respB.StatusCode != http.StatusOK {
		t.Fatalf("status = %d / %d, want 200 / 200", respA.StatusCode, respB.StatusCode)
	}
	if bodyA["message"] == "" || bodyA["message"] != bodyB["message"] {
		t.Errorf("bodies differ: %v vs %v", bodyA, bodyB)
	}
	if len(coord.requested) != 2 {
		t.Errorf("coordinator called %d times, want 2", len(coord.requested))
	}
}

// bad input on the public endpoints answers with the same flat {"message"}
// shape as every other outcome
func TestForgotPasswordRejectsBadEmailFlat(t *testing.T) {
	srv := newServer(t, &fakeCoordinator{}, &fakeNotifier{}, &fakeBroker{})

	for _, body := range []string{`{"email":"not-an-email"}`, `{`, `{}`} {
		resp, parsed := doJSON(t, http.MethodPost, srv.URL+"/forgot-password", body, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%q: status = %d, want 400", body, resp.StatusCode)
		}
		if msg, _ := parsed["message"].(string); msg == "" {
			t.Errorf("%q: want flat message body, got %v", body, parsed)
		}
		if _, ok := parsed["error"]; ok {
			t.Errorf("%q: structured error leaked on public endpoint: %v", body, parsed)
		}
	}
}

func TestResetPasswordHappyPath(t *testing.T) {
	coord := &fakeCoordinator{}
	srv := newServer(t, coord, &fakeNotifier{}, &fakeBroker{})

	resp, body := doJSON(t, http.MethodPatch, srv.URL+"/reset-password/tok-abc", `{"password":"n3w-password"}`, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["message"] == "" {
		t.Error("missing message body")
	}
	if len(coord.redeemed) != 1 || coord.redeemed[0] != "tok-abc" {
		t.Errorf("redeemed = %v", coord.redeemed)
	}
}

// every internal rejection code maps to the same opaque 400 body
func TestResetPasswordCollapsesRejectionCauses(t *testing.T) {
	causes := []error{
		domain.ErrResetSignatureInvalid(errors.New("bad sig")),
		domain.ErrResetPurposeMismatch("session"),
		domain.ErrResetAssociationMissing(),
		domain.ErrResetAssociationMismatch(),
		domain.ErrResetAccountMissing(),
	}

	var bodies []string
	for _, cause := range causes {
		coord := &fakeCoordinator{redeemErr: cause}
		srv := newServer(t, coord, &fakeNotifier{}, &fakeBroker{})
		resp, body := doJSON(t, http.MethodPatch, srv.URL+"/reset-password/tok", `{"password":"n3w-password"}`, nil)
		if resp.StatusCode != http.StatusBadRequest {
			t.Errorf("%v: status = %d, want 400", cause, resp.StatusCode)
		}
		msg, _ := body["message"].(string)
		if msg == "" {
			t.Errorf("%v: no message body: %v", cause, body)
		}
		bodies = append(bodies, msg)
	}
	for _, b := range bodies[1:] {
		if b != bodies[0] {
			t.Fatalf("rejection bodies differ: %v", bodies)
		}
	}
}

func TestResetPasswordWeakPasswordFlatMessage(t *testing.T) {
	coord := &fakeCoordinator{redeemErr: domain.ErrResetAssociationMissing()}
	srv := newServer(t, coord, &fakeNotifier{}, &fakeBroker{})

	resp, body := doJSON(t, http.MethodPatch, srv.URL+"/reset-password/tok", `{"password":"short"}`, nil)
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}
	weakMsg, _ := body["message"].(string)
	if weakMsg == "" {
		t.Fatalf("want flat message body, got %v", body)
	}
	if _, ok := body["error"]; ok {
		t.Fatalf("structured error leaked on public endpoint: %v", body)
	}

	// the input problem must still be distinguishable from a bad token
	_, rejBody := doJSON(t, http.MethodPatch, srv.URL+"/reset-password/tok", `{"password":"long-enough-pw"}`, nil)
	if rejMsg, _ := rejBody["message"].(string); rejMsg == weakMsg {
		t.Errorf("weak-password and bad-token messages are identical: %q", weakMsg)
	}
}

func TestResetPasswordWarnLogCarriesRequestID(t *testing.T) {
	t.Setenv("LOG_FORMAT", "json")
	t.Setenv("LOG_LEVEL", "debug")
	var buf bytes.Buffer
	logger.InitWithWriter(&buf)

	coord := &fakeCoordinator{redeemErr: domain.ErrResetAssociationMissing()}
	srv := newServer(t, coord, &fakeNotifier{}, &fakeBroker{})

	resp, _ := doJSON(t, http.MethodPatch, srv.URL+"/reset-password/tok", `{"password":"n3w-password"}`,
		map[string]string{"X-Request-Id": "rid-789"})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", resp.StatusCode)
	}

	out := buf.String()
	if !strings.Contains(out, `"request_id":"rid-789"`) {
		t.Errorf("warn log missing request id, got: %s", out)
	}
	if !strings.Contains(out, "reset_association_missing") {
		t.Errorf("warn log missing the real rejection cause, got: %s", out)
	}
}

func TestInternalNotifyRequiresSecret(t *testing.T) {
	notifier := &fakeNotifier{}
	srv := newServer(t, &fakeCoordinator{}, notifier, &fakeBroker{})
	payload := `{"email":"bob@example.com","jobTitle":"Backend Engineer"}`

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/internal/notify/application-status", payload, nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Errorf("without secret: status = %d, want 401", resp.StatusCode)
	}
	if notifier.calls != 0 {
		t.Errorf("notifier reached without auth")
	}

	resp, _ = doJSON(t, http.MethodPost, srv.URL+"/internal/notify/application-status", payload,
		map[string]string{"X-Internal-Secret": internalSecret})
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("with secret: status = %d, want 202", resp.StatusCode)
	}
	if notifier.calls != 1 {
		t.Errorf("notifier calls = %d, want 1", notifier.calls)
	}
}

func TestInternalNotifyDegradedBrokerStill202(t *testing.T) {
	notifier := &fakeNotifier{err: domain.ErrBrokerUnavailable(errors.New("down"))}
	srv := newServer(t, &fakeCoordinator{}, notifier, &fakeBroker{degraded: true})

	resp, _ := doJSON(t, http.MethodPost, srv.URL+"/internal/notify/application-status",
		`{"email":"bob@example.com","jobTitle":"Backend Engineer"}`,
		map[string]string{"X-Internal-Secret": internalSecret})
	if resp.StatusCode != http.StatusAccepted {
		t.Errorf("status = %d, want 202", resp.StatusCode)
	}
}

func TestHealthzReportsBrokerDegradation(t *testing.T) {
	srv := newServer(t, &fakeCoordinator{}, &fakeNotifier{}, &fakeBroker{degraded: true})

	resp, body := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	if body["broker"] != "degraded" {
		t.Errorf("broker = %v, want degraded", body["broker"])
	}
}

func TestRequestIDEchoed(t *testing.T) {
	srv := newServer(t, &fakeCoordinator{}, &fakeNotifier{}, &fakeBroker{})

	resp, _ := doJSON(t, http.MethodGet, srv.URL+"/healthz", "", map[string]string{"X-Request-Id": "rid-123"})
	if got := resp.Header.Get("X-Request-Id"); got != "rid-123" {
		t.Errorf("X-Request-Id = %q, want rid-123", got)
	}
}
