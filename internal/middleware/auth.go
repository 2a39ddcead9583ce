package middleware

import (
	"crypto/subtle"
	"encoding/base64"
	"fmt"
	"strings"

	"github.com/gofiber/fiber/v2"
	"github.com/google/uuid"

	"github.com/llmtrace/llmtrace/internal/config"
	"github.com/llmtrace/llmtrace/internal/pkg/id"
)

// ContextKey type for context keys
type ContextKey string

const (
	// Context keys
	ContextKeyProjectID ContextKey = "projectID"
	ContextKeyPublicKey ContextKey = "publicKey"
	ContextKeyRequestID ContextKey = "requestID"
)

type apiKeyEntry struct {
	publicKey string
	secretKey []byte
	projectID uuid.UUID
}

// APIKeyStore resolves key pairs to the project they authenticate
type APIKeyStore struct {
	keys []apiKeyEntry
}

// NewAPIKeyStore builds a store from configured key pairs
func NewAPIKeyStore(keys []config.APIKey) (*APIKeyStore, error) {
	store := &APIKeyStore{keys: make([]apiKeyEntry, 0, len(keys))}
	seen := make(map[string]struct{}, len(keys))

	for _, k := range keys {
		if _, dup := seen[k.PublicKey]; dup {
			return nil, fmt.Errorf("duplicate public key %q", k.PublicKey)
		}
		seen[k.PublicKey] = struct{}{}

		projectID, err := id.ParseProjectID(k.ProjectID)
		if err != nil {
			return nil, fmt.Errorf("invalid project id for public key %q: %w", k.PublicKey, err)
		}
		store.keys = append(store.keys, apiKeyEntry{
			publicKey: k.PublicKey,
			secretKey: []byte(k.SecretKey),
			projectID: projectID,
		})
	}
	return store, nil
}

// Authenticate checks a public/secret pair. An empty publicKey matches any
// entry whose secret equals secretKey.
func (s *APIKeyStore) Authenticate(publicKey, secretKey string) (uuid.UUID, string, bool) {
	secret := []byte(secretKey)
	for _, k := range s.keys {
		if publicKey != "" && k.publicKey != publicKey {
			continue
		}
		if subtle.ConstantTimeCompare(k.secretKey, secret) == 1 {
			return k.projectID, k.publicKey, true
		}
	}
	return uuid.Nil, "", false
}

// AuthMiddleware handles authentication
type AuthMiddleware struct {
	keys *APIKeyStore
}

// NewAuthMiddleware creates a new auth middleware
func NewAuthMiddleware(keys *APIKeyStore) *AuthMiddleware {
	return &AuthMiddleware{keys: keys}
}

// RequireAPIKey validates API key authentication and scopes the request to
// the key's project
func (m *AuthMiddleware) RequireAPIKey() fiber.Handler {
	return func(c *fiber.Ctx) error {
		publicKey, secretKey, ok := extractCredentials(c)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Unauthorized",
				"message": "API key required",
			})
		}

		projectID, matchedKey, ok := m.keys.Authenticate(publicKey, secretKey)
		if !ok {
			return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{
				"error":   "Unauthorized",
				"message": "Invalid API key",
			})
		}

		c.Locals(string(ContextKeyProjectID), projectID)
		c.Locals(string(ContextKeyPublicKey), matchedKey)

		return c.Next()
	}
}

// extractCredentials reads Basic auth (publicKey:secretKey) or a Bearer
// secret key from the Authorization header
func extractCredentials(c *fiber.Ctx) (publicKey, secretKey string, ok bool) {
	auth := c.Get(fiber.HeaderAuthorization)

	switch {
	case strings.HasPrefix(auth, "Basic "):
		decoded, err := base64.StdEncoding.DecodeString(strings.TrimPrefix(auth, "Basic "))
		if err != nil {
			return "", "", false
		}
		pk, sk, found := strings.Cut(string(decoded), ":")
		if !found || pk == "" || sk == "" {
			return "", "", false
		}
		return pk, sk, true

	case strings.HasPrefix(auth, "Bearer "):
		sk := strings.TrimSpace(strings.TrimPrefix(auth, "Bearer "))
		if sk == "" {
			return "", "", false
		}
		return "", sk, true
	}

	return "", "", false
}

// GetProjectID gets the project ID from context
func GetProjectID(c *fiber.Ctx) (uuid.UUID, bool) {
	projectID, ok := c.Locals(string(ContextKeyProjectID)).(uuid.UUID)
	return projectID, ok
}

// GetPublicKey gets the authenticated public key from context
func GetPublicKey(c *fiber.Ctx) (string, bool) {
	publicKey, ok := c.Locals(string(ContextKeyPublicKey)).(string)
	return publicKey, ok
}
