package handlers

import (
	"bytes"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/vz415/BridgeVentilator/internal/service"

	"github.com/gin-gonic/gin"
)

func postJSON(t *testing.T, r *gin.Engine, path, body string) *httptest.ResponseRecorder {
	t.Helper()
	w := httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, path, bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	r.ServeHTTP(w, req)
	return w
}

func TestAuthHandlers_SignUp(t *testing.T) {
	auth := &mockAuth{signUpID: 7}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := postJSON(t, r, "/auth/sign-up", `{"username":"operator1","password":"swordfish"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-up status=%d body=%s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if int(resp["id"].(float64)) != 7 {
		t.Fatalf("id: got %v; want 7", resp["id"])
	}
	if auth.lastSignUpUsername != "operator1" || auth.lastSignUpPassword != "swordfish" {
		t.Fatalf("credentials not forwarded: %q / %q", auth.lastSignUpUsername, auth.lastSignUpPassword)
	}

	// Missing password never reaches the service.
	w = postJSON(t, r, "/auth/sign-up", `{"username":"operator1"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("missing password status=%d", w.Code)
	}

	// Service rejection surfaces as a 400.
	auth.signUpErr = errors.New("username taken")
	w = postJSON(t, r, "/auth/sign-up", `{"username":"operator1","password":"swordfish"}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("duplicate sign-up status=%d", w.Code)
	}
}

func TestAuthHandlers_SignIn(t *testing.T) {
	auth := &mockAuth{token: "header.payload.sig"}
	r := newTestRouter(&service.Service{Authorization: auth})

	w := postJSON(t, r, "/auth/sign-in", `{"username":"operator1","password":"swordfish"}`)
	if w.Code != http.StatusOK {
		t.Fatalf("sign-in status=%d body=%s", w.Code, w.Body.String())
	}
	var resp map[string]any
	if err := json.Unmarshal(w.Body.Bytes(), &resp); err != nil {
		t.Fatalf("decode response: %v", err)
	}
	if resp["token"] != "header.payload.sig" {
		t.Fatalf("token: got %v", resp["token"])
	}
	if auth.lastTokenUsername != "operator1" {
		t.Fatalf("username not forwarded: %q", auth.lastTokenUsername)
	}

	// Wrong credentials come back as a generic 401.
	auth.tokenErr = service.ErrInvalidPassword
	w = postJSON(t, r, "/auth/sign-in", `{"username":"operator1","password":"guess"}`)
	if w.Code != http.StatusUnauthorized {
		t.Fatalf("bad credentials status=%d", w.Code)
	}
	if body := w.Body.String(); strings.Contains(body, "guess") {
		t.Fatalf("response leaks the attempted password: %s", body)
	}

	// Malformed body fails binding before the service is involved.
	w = postJSON(t, r, "/auth/sign-in", `{"username":1}`)
	if w.Code != http.StatusBadRequest {
		t.Fatalf("malformed body status=%d", w.Code)
	}
}
