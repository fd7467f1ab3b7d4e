package handlers

import (
	"bytes"
	"crypto/ed25519"
	"crypto/rand"
	"encoding/hex"
	"encoding/json"
	"io"
	"net/http/httptest"
	"testing"

	"github.com/gofiber/fiber/v2"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap"

	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

type interactionsFixture struct {
	app     *fiber.App
	private ed25519.PrivateKey
}

func newInteractionsFixture(t *testing.T) *interactionsFixture {
	t.Helper()
	public, private, err := ed25519.GenerateKey(rand.Reader)
	require.NoError(t, err)

	handler, err := NewInteractionsHandler(hex.EncodeToString(public), "https://tickets.example.com", zap.NewNop())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			domainErr := apperrors.ToDomainError(err)
			return c.Status(domainErr.HTTPStatus).JSON(fiber.Map{"error": fiber.Map{"code": domainErr.Code}})
		},
	})
	app.Post("/discord/interactions", handler.Handle)
	return &interactionsFixture{app: app, private: private}
}

// post signs the body the way Discord does: ed25519 over timestamp+body.
func (f *interactionsFixture) post(t *testing.T, body string, sign bool) (int, []byte) {
	t.Helper()
	req := httptest.NewRequest("POST", "/discord/interactions", bytes.NewBufferString(body))
	req.Header.Set("Content-Type", "application/json")
	if sign {
		timestamp := "1700000000"
		sig := ed25519.Sign(f.private, append([]byte(timestamp), []byte(body)...))
		req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
		req.Header.Set("X-Signature-Timestamp", timestamp)
	}
	resp, err := f.app.Test(req)
	require.NoError(t, err)
	payload, err := io.ReadAll(resp.Body)
	require.NoError(t, err)
	return resp.StatusCode, payload
}

func TestInteractionsPingPong(t *testing.T) {
	f := newInteractionsFixture(t)

	status, body := f.post(t, `{"type":1}`, true)
	require.Equal(t, 200, status)

	var out map[string]any
	require.NoError(t, json.Unmarshal(body, &out))
	assert.EqualValues(t, 1, out["type"])
}

func TestInteractionsRejectsMissingSignature(t *testing.T) {
	f := newInteractionsFixture(t)

	status, _ := f.post(t, `{"type":1}`, false)
	assert.Equal(t, 401, status)
}

func TestInteractionsRejectsTamperedBody(t *testing.T) {
	f := newInteractionsFixture(t)

	body := `{"type":1}`
	req := httptest.NewRequest("POST", "/discord/interactions", bytes.NewBufferString(`{"type":2}`))
	timestamp := "1700000000"
	sig := ed25519.Sign(f.private, append([]byte(timestamp), []byte(body)...))
	req.Header.Set("X-Signature-Ed25519", hex.EncodeToString(sig))
	req.Header.Set("X-Signature-Timestamp", timestamp)

	resp, err := f.app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 401, resp.StatusCode)
}

func TestInteractionsPanelCommand(t *testing.T) {
	f := newInteractionsFixture(t)

	status, body := f.post(t, `{"type":2,"data":{"name":"sistema-ticket"}}`, true)
	require.Equal(t, 200, status)

	var out struct {
		Type int `json:"type"`
		Data struct {
			Embeds []struct {
				Title string `json:"title"`
			} `json:"embeds"`
		} `json:"data"`
	}
	require.NoError(t, json.Unmarshal(body, &out))
	assert.Equal(t, 4, out.Type)
	require.Len(t, out.Data.Embeds, 1)
	assert.Contains(t, out.Data.Embeds[0].Title, "Support Center")
}

func TestInteractionsUnknownCommand(t *testing.T) {
	f := newInteractionsFixture(t)

	status, _ := f.post(t, `{"type":2,"data":{"name":"other"}}`, true)
	assert.Equal(t, 400, status)
}

func TestInteractionsDisabledWithoutKey(t *testing.T) {
	handler, err := NewInteractionsHandler("", "https://tickets.example.com", zap.NewNop())
	require.NoError(t, err)

	app := fiber.New(fiber.Config{
		ErrorHandler: func(c *fiber.Ctx, err error) error {
			return c.SendStatus(apperrors.ToDomainError(err).HTTPStatus)
		},
	})
	app.Post("/discord/interactions", handler.Handle)

	req := httptest.NewRequest("POST", "/discord/interactions", bytes.NewBufferString(`{"type":1}`))
	resp, err := app.Test(req)
	require.NoError(t, err)
	assert.Equal(t, 404, resp.StatusCode)
}

func TestInteractionsBadPublicKey(t *testing.T) {
	_, err := NewInteractionsHandler("not-hex", "https://tickets.example.com", zap.NewNop())
	require.Error(t, err)
}
