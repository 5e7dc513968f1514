package handlers

import (
	"github.com/gofiber/fiber/v2"
	"github.com/rs/zerolog/log"

	"github.com/cwhuang-tw/studynotes/internal/keystore"
)

// KeysHandler manages stored provider credentials.
type KeysHandler struct {
	store *keystore.Store
}

// NewKeysHandler creates a keys handler.
func NewKeysHandler(store *keystore.Store) *KeysHandler {
	return &KeysHandler{store: store}
}

type saveKeyRequest struct {
	Provider string `json:"provider" validate:"required"`
	APIKey   string `json:"apiKey" validate:"required"`
}

// Save persists an encrypted API key for a provider.
func (h *KeysHandler) Save(c *fiber.Ctx) error {
	var req saveKeyRequest
	if !parseBody(c, &req) {
		return nil
	}

	if err := h.store.Set(req.Provider, req.APIKey); err != nil {
		log.Error().Err(err).Str("provider", req.Provider).Msg("keystore save failed")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to save key", "ERR_STORE")
	}

	return c.JSON(fiber.Map{"ok": true})
}

// Get returns the masked key for a provider, or null when unset.
func (h *KeysHandler) Get(c *fiber.Ctx) error {
	provider := c.Params("provider")

	masked, found, err := h.store.GetMasked(provider)
	if err != nil {
		log.Error().Err(err).Str("provider", provider).Msg("keystore read failed")
		return errorJSON(c, fiber.StatusInternalServerError, "Failed to read key", "ERR_STORE")
	}

	var key any
	if found {
		key = masked
	}
	return c.JSON(fiber.Map{
		"provider": provider,
		"key":      key,
	})
}
