package http

import (
	"bytes"
	"context"
	"encoding/json"
	"net/http"
	"testing"
	"time"

	"github.com/gofiber/fiber/v2"
	jwt "github.com/golang-jwt/jwt/v5"
	"github.com/jackc/pgx/v5"
	"go.uber.org/zap"

	"github.com/BerkantGC/hotel-booking-api/internal/api/http/handlers"
	"github.com/BerkantGC/hotel-booking-api/internal/auth"
	"github.com/BerkantGC/hotel-booking-api/internal/domain"
	"github.com/BerkantGC/hotel-booking-api/internal/observability"
	"github.com/BerkantGC/hotel-booking-api/internal/persistence"
	"github.com/BerkantGC/hotel-booking-api/internal/realtime"
	"github.com/BerkantGC/hotel-booking-api/internal/service"
)

const (
	testJWTSecret      = "jwt-secret"
	testInternalSecret = "internal-secret"
)

type fakeSubjectStore struct {
	subjects map[int64]bool
}

func (s *fakeSubjectStore) GetByID(_ context.Context, id int64) (*domain.Subject, error) {
	if !s.subjects[id] {
		return nil, pgx.ErrNoRows
	}
	return &domain.Subject{ID: id}, nil
}

type emptyNotificationStore struct{}

func (emptyNotificationStore) ListPendingForSubject(context.Context, int64) ([]domain.Notification, error) {
	return nil, nil
}

func newTestApp(t *testing.T) (*fiber.App, *realtime.Registry) {
	t.Helper()

	logger := zap.NewNop()
	metrics := observability.NewMetrics()
	registry := realtime.NewRegistry()

	verifier := auth.NewTokenVerifier(testJWTSecret, &fakeSubjectStore{subjects: map[int64]bool{42: true}}, time.Second)
	authService := service.NewAuthService(verifier, logger)
	dispatchService := service.NewDispatchService(testInternalSecret, registry, metrics, logger)
	hub := realtime.NewHub(registry, emptyNotificationStore{}, nil, metrics, logger, time.Second)

	app := fiber.New()
	RegisterMiddlewares(app, logger, 0)
	RegisterRoutes(app, RouteConfig{
		Health: handlers.NewHealthHandler("socket-service", "test", &persistence.Postgres{}, &persistence.Redis{}, metrics),
		Notify: handlers.NewNotifyHandler(dispatchService),
		Token:  handlers.NewTokenHandler(authService),
		Socket: handlers.NewSocketHandler(authService, hub, logger),
	})
	return app, registry
}

func signTestToken(t *testing.T, secret string, subjectID int64) string {
	t.Helper()
	token := jwt.NewWithClaims(jwt.SigningMethodHS256, jwt.MapClaims{
		"userId": subjectID,
		"exp":    time.Now().Add(time.Hour).Unix(),
	})
	signed, err := token.SignedString([]byte(secret))
	if err != nil {
		t.Fatalf("sign token: %v", err)
	}
	return signed
}

func decodeBody(t *testing.T, resp *http.Response, into any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(into); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestNotifyWrongSecretIsForbidden(t *testing.T) {
	app, registry := newTestApp(t)

	body := []byte(`{"notification":{"message":"hi","user":{"id":42}}}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/notify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Secret", "wrong")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}

	var envelope struct {
		Error struct {
			Code string `json:"code"`
		} `json:"error"`
	}
	decodeBody(t, resp, &envelope)
	if envelope.Error.Code != "FORBIDDEN" {
		t.Fatalf("expected FORBIDDEN code, got %q", envelope.Error.Code)
	}
	if registry.ConnectionCount() != 0 {
		t.Fatal("registry must be untouched")
	}
}

func TestNotifyWrongSecretWinsOverBadBody(t *testing.T) {
	app, _ := newTestApp(t)

	// An unauthorized caller learns nothing about payload validation.
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/notify", bytes.NewReader([]byte(`not json`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Secret", "wrong")

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusForbidden {
		t.Fatalf("expected 403, got %d", resp.StatusCode)
	}
}

func TestNotifyOfflineSubjectAcks(t *testing.T) {
	app, _ := newTestApp(t)

	body := []byte(`{"notification":{"message":"hi","user":{"id":42}}}`)
	req, _ := http.NewRequest(http.MethodPost, "/api/v1/notify", bytes.NewReader(body))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Secret", testInternalSecret)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var ack struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &ack)
	if ack.Status != "ok" {
		t.Fatalf("expected ok ack, got %+v", ack)
	}
}

func TestNotifyMissingPayloadIsBadRequest(t *testing.T) {
	app, _ := newTestApp(t)

	req, _ := http.NewRequest(http.MethodPost, "/api/v1/notify", bytes.NewReader([]byte(`{}`)))
	req.Header.Set("Content-Type", "application/json")
	req.Header.Set("X-Internal-Secret", testInternalSecret)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400, got %d", resp.StatusCode)
	}
}

func TestVerifyTokenValid(t *testing.T) {
	app, _ := newTestApp(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/verify-token", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testJWTSecret, 42))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200, got %d", resp.StatusCode)
	}

	var body struct {
		Valid bool `json:"valid"`
		User  *struct {
			ID int64 `json:"id"`
		} `json:"user"`
	}
	decodeBody(t, resp, &body)
	if !body.Valid || body.User == nil || body.User.ID != 42 {
		t.Fatalf("expected valid token for subject 42, got %+v", body)
	}
}

func TestVerifyTokenMissingHeader(t *testing.T) {
	app, _ := newTestApp(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/verify-token", nil)

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
}

func TestVerifyTokenUnknownSubject(t *testing.T) {
	app, _ := newTestApp(t)

	req, _ := http.NewRequest(http.MethodGet, "/api/v1/verify-token", nil)
	req.Header.Set("Authorization", "Bearer "+signTestToken(t, testJWTSecret, 999))

	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}

	var body struct {
		Valid bool `json:"valid"`
	}
	decodeBody(t, resp, &body)
	if body.Valid {
		t.Fatal("deleted subject must not introspect as valid")
	}
}

func wsUpgradeRequest(target string) *http.Request {
	req, _ := http.NewRequest(http.MethodGet, target, nil)
	req.Header.Set("Connection", "Upgrade")
	req.Header.Set("Upgrade", "websocket")
	req.Header.Set("Sec-WebSocket-Version", "13")
	req.Header.Set("Sec-WebSocket-Key", "x3JJHMbDL1EzLkh9GBhXDw==")
	return req
}

func TestSocketHandshakeRejectedWithoutCredential(t *testing.T) {
	app, registry := newTestApp(t)

	resp, err := app.Test(wsUpgradeRequest("/ws"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if registry.ConnectionCount() != 0 {
		t.Fatal("no connection may exist after a rejected handshake")
	}
}

func TestSocketHandshakeRejectedWithBadCredential(t *testing.T) {
	app, registry := newTestApp(t)

	resp, err := app.Test(wsUpgradeRequest("/ws?token=garbage"))
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401, got %d", resp.StatusCode)
	}
	if registry.ConnectionCount() != 0 {
		t.Fatal("no connection may exist after a rejected handshake")
	}
}

func TestSocketUpgradeRequiresWebSocket(t *testing.T) {
	app, _ := newTestApp(t)

	// A plain GET without upgrade headers never reaches the hub.
	req, _ := http.NewRequest(http.MethodGet, "/ws", nil)
	resp, err := app.Test(req)
	if err != nil {
		t.Fatalf("request failed: %v", err)
	}
	if resp.StatusCode != http.StatusUpgradeRequired {
		t.Fatalf("expected 426, got %d", resp.StatusCode)
	}
}
