package server

import (
	"bytes"
	"encoding/json"
	"net/http"
	"net/http/httptest"
	"testing"
	"time"

	jwt "github.com/golang-jwt/jwt/v5"

	"teeup/internal/usertoken"
	"teeup/pkg/domain"
	"teeup/pkg/realtime"
	"teeup/pkg/store"
	"teeup/services/social/internal/app"
)

const (
	testSecret   = "server-test-secret"
	testIssuer   = "teeup-auth"
	testAudience = "teeup-api"
)

func newTestServer(t *testing.T) (*httptest.Server, *store.MemoryStore) {
	t.Helper()
	st := store.NewMemoryStore()
	broker := realtime.NewMemoryBroker()
	verifier, err := usertoken.NewVerifier(usertoken.Config{
		Secret:   testSecret,
		Issuer:   testIssuer,
		Audience: testAudience,
	})
	if err != nil {
		t.Fatalf("new verifier: %v", err)
	}
	srv := New(Config{
		App:           app.New(st, broker, app.Options{}),
		Broker:        broker,
		TokenVerifier: verifier,
	})
	ts := httptest.NewServer(srv.Router())
	t.Cleanup(ts.Close)
	return ts, st
}

func mintToken(t *testing.T, userID string) string {
	t.Helper()
	now := time.Now()
	claims := jwt.RegisteredClaims{
		Subject:   userID,
		Issuer:    testIssuer,
		Audience:  jwt.ClaimStrings{testAudience},
		IssuedAt:  jwt.NewNumericDate(now),
		ExpiresAt: jwt.NewNumericDate(now.Add(time.Minute)),
	}
	signed, err := jwt.NewWithClaims(jwt.SigningMethodHS256, claims).SignedString([]byte(testSecret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func seedServerProfile(t *testing.T, st *store.MemoryStore, id, name string) domain.Profile {
	t.Helper()
	p := domain.Profile{ID: id, UserID: "user-" + id, Name: name, Handicap: 12}
	if err := st.SaveProfile(p); err != nil {
		t.Fatalf("seed profile: %v", err)
	}
	return p
}

func doJSON(t *testing.T, method, url, token string, body any) *http.Response {
	t.Helper()
	var buf bytes.Buffer
	if body != nil {
		if err := json.NewEncoder(&buf).Encode(body); err != nil {
			t.Fatalf("encode body: %v", err)
		}
	}
	req, err := http.NewRequest(method, url, &buf)
	if err != nil {
		t.Fatalf("new request: %v", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if token != "" {
		req.Header.Set("Authorization", "Bearer "+token)
	}
	resp, err := http.DefaultClient.Do(req)
	if err != nil {
		t.Fatalf("%s %s: %v", method, url, err)
	}
	t.Cleanup(func() { _ = resp.Body.Close() })
	return resp
}

func TestAuthRequiredOnProtectedRoutes(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodPost, ts.URL+"/rounds", "", map[string]string{})
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("no token: status = %d, want 401", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/conversations", "not-a-token", nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("bad token: status = %d, want 401", resp.StatusCode)
	}
}

func TestAuthRejectsTokenWithoutProfile(t *testing.T) {
	ts, _ := newTestServer(t)

	resp := doJSON(t, http.MethodGet, ts.URL+"/me/profile", mintToken(t, "user-with-no-profile"), nil)
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("status = %d, want 401", resp.StatusCode)
	}
}

func TestRoundLifecycleOverHTTP(t *testing.T) {
	ts, st := newTestServer(t)
	alice := seedServerProfile(t, st, "p1", "Alice")
	bob := seedServerProfile(t, st, "p2", "Bob")
	if err := st.SaveCourse(domain.Course{ID: "c1", Name: "Sunningdale Old", Holes: 18, Par: 72}); err != nil {
		t.Fatalf("seed course: %v", err)
	}
	aliceToken := mintToken(t, alice.UserID)
	bobToken := mintToken(t, bob.UserID)

	resp := doJSON(t, http.MethodPost, ts.URL+"/rounds", aliceToken, map[string]any{
		"courseId":      "c1",
		"date":          "2030-06-15",
		"time":          "09:30",
		"format":        "stroke_play",
		"playersNeeded": 2,
	})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("create round: status = %d, want 201", resp.StatusCode)
	}
	var created domain.RoundDetails
	if err := json.NewDecoder(resp.Body).Decode(&created); err != nil {
		t.Fatalf("decode round: %v", err)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/rounds/"+created.ID+"/join", bobToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("join: status = %d, want 200", resp.StatusCode)
	}
	resp = doJSON(t, http.MethodPost, ts.URL+"/rounds/"+created.ID+"/join", bobToken, nil)
	if resp.StatusCode != http.StatusConflict {
		t.Fatalf("rejoin: status = %d, want 409", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodGet, ts.URL+"/rounds/"+created.ID, "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("get round: status = %d, want 200", resp.StatusCode)
	}
	var fetched domain.RoundDetails
	if err := json.NewDecoder(resp.Body).Decode(&fetched); err != nil {
		t.Fatalf("decode round: %v", err)
	}
	if len(fetched.Players) != 2 || fetched.Status != domain.RoundFull {
		t.Fatalf("unexpected round state: players=%d status=%s", len(fetched.Players), fetched.Status)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/rounds/"+created.ID+"/leave", bobToken, nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("leave: status = %d, want 200", resp.StatusCode)
	}
	var left map[string]string
	if err := json.NewDecoder(resp.Body).Decode(&left); err != nil {
		t.Fatalf("decode leave: %v", err)
	}
	if left["outcome"] != "left" {
		t.Fatalf("outcome = %q, want left", left["outcome"])
	}
}

func TestSendMessageRejectsBlankContent(t *testing.T) {
	ts, st := newTestServer(t)
	alice := seedServerProfile(t, st, "p1", "Alice")
	seedServerProfile(t, st, "p2", "Bob")
	token := mintToken(t, alice.UserID)

	resp := doJSON(t, http.MethodPost, ts.URL+"/conversations/dm", token, map[string]string{"profileId": "p2"})
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("create dm: status = %d, want 200", resp.StatusCode)
	}
	var conv domain.Conversation
	if err := json.NewDecoder(resp.Body).Decode(&conv); err != nil {
		t.Fatalf("decode dm: %v", err)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/conversations/"+conv.ID+"/messages", token, map[string]string{"content": "   "})
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("blank message: status = %d, want 400", resp.StatusCode)
	}

	resp = doJSON(t, http.MethodPost, ts.URL+"/conversations/"+conv.ID+"/messages", token, map[string]string{"content": "up for 9 holes?"})
	if resp.StatusCode != http.StatusCreated {
		t.Fatalf("send: status = %d, want 201", resp.StatusCode)
	}
}

func TestReputationEndpointIsPublic(t *testing.T) {
	ts, st := newTestServer(t)
	seedServerProfile(t, st, "p1", "Alice")

	resp := doJSON(t, http.MethodGet, ts.URL+"/profiles/p1/reputation", "", nil)
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("status = %d, want 200", resp.StatusCode)
	}
	var kpis domain.ReputationKpis
	if err := json.NewDecoder(resp.Body).Decode(&kpis); err != nil {
		t.Fatalf("decode kpis: %v", err)
	}
	if kpis.RoundsPlayed != 0 || kpis.ReliabilityPercent != nil {
		t.Fatalf("unexpected kpis %+v", kpis)
	}
}
