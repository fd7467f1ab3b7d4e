package handlers

import (
	"crypto/ed25519"
	"encoding/hex"
	"encoding/json"

	"github.com/gofiber/fiber/v2"
	"go.uber.org/zap"

	"github.com/JulianoPassing/scc-tickets/internal/discord"
	apperrors "github.com/JulianoPassing/scc-tickets/pkg/util"
)

const ticketPanelCommand = "sistema-ticket"

// Interaction types and response types from the Discord interactions model.
const (
	interactionPing               = 1
	interactionApplicationCommand = 2

	responsePong           = 1
	responseChannelMessage = 4
)

// InteractionsHandler serves the Discord interactions webhook. Every request
// must carry a valid ed25519 signature over timestamp+body.
type InteractionsHandler struct {
	publicKey ed25519.PublicKey
	baseURL   string
	logger    *zap.Logger
}

// NewInteractionsHandler decodes the hex-encoded application public key. An
// empty key disables the endpoint.
func NewInteractionsHandler(publicKeyHex, baseURL string, logger *zap.Logger) (*InteractionsHandler, error) {
	h := &InteractionsHandler{baseURL: baseURL, logger: logger}
	if publicKeyHex == "" {
		logger.Warn("DISCORD_INTERACTIONS_PUBLIC_KEY not configured; interactions endpoint disabled")
		return h, nil
	}
	key, err := hex.DecodeString(publicKeyHex)
	if err != nil || len(key) != ed25519.PublicKeySize {
		return nil, apperrors.NewDomainError("CONFIG_INVALID", "invalid interactions public key", 500, nil)
	}
	h.publicKey = ed25519.PublicKey(key)
	return h, nil
}

type interactionRequest struct {
	Type int `json:"type"`
	Data struct {
		Name string `json:"name"`
	} `json:"data"`
}

// Handle POST /discord/interactions.
func (h *InteractionsHandler) Handle(c *fiber.Ctx) error {
	if h.publicKey == nil {
		return apperrors.NewNotFound("interactions endpoint", nil)
	}
	if !h.verify(c) {
		return apperrors.NewUnauthorized("invalid request signature")
	}

	var req interactionRequest
	if err := json.Unmarshal(c.Body(), &req); err != nil {
		return apperrors.NewValidationError("invalid interaction payload", nil)
	}

	switch req.Type {
	case interactionPing:
		return c.JSON(fiber.Map{"type": responsePong})
	case interactionApplicationCommand:
		if req.Data.Name != ticketPanelCommand {
			return apperrors.NewValidationError("unknown command", map[string]any{"command": req.Data.Name})
		}
		h.logger.Info("ticket panel requested via slash command")
		return c.JSON(fiber.Map{
			"type": responseChannelMessage,
			"data": fiber.Map{
				"embeds": []any{discord.PanelEmbed(h.baseURL)},
			},
		})
	}
	return apperrors.NewValidationError("unsupported interaction type", map[string]any{"type": req.Type})
}

// verify checks the ed25519 signature Discord sends with every interaction.
func (h *InteractionsHandler) verify(c *fiber.Ctx) bool {
	signature := c.Get("X-Signature-Ed25519")
	timestamp := c.Get("X-Signature-Timestamp")
	if signature == "" || timestamp == "" {
		return false
	}
	sig, err := hex.DecodeString(signature)
	if err != nil || len(sig) != ed25519.SignatureSize {
		return false
	}
	payload := append([]byte(timestamp), c.Body()...)
	return ed25519.Verify(h.publicKey, payload, sig)
}
