package handler

import (
	"context"
	"os"

	"chat-guardian-be/internal/dto"
	"chat-guardian-be/internal/pkg/logger"
	"chat-guardian-be/internal/service"

	"github.com/gofiber/fiber/v2"
	"github.com/gofiber/websocket/v2"
	"github.com/golang-jwt/jwt/v5"
	"github.com/google/uuid"
)

// ChatWsHandler runs guarded chat turns over a websocket: one inbound frame
// is one turn, answered with the same payload the REST endpoint returns.
type ChatWsHandler struct {
	chatService service.IChatService
	logger      logger.ILogger
}

func NewChatWsHandler(chatService service.IChatService, log logger.ILogger) *ChatWsHandler {
	return &ChatWsHandler{
		chatService: chatService,
		logger:      log,
	}
}

func (h *ChatWsHandler) RegisterRoutes(r fiber.Router) {
	r.Get("/chat/v1/ws/:id", h.ServeWs)
}

type wsTurnRequest struct {
	Chat        string `json:"chat"`
	AudioData   string `json:"audio_data,omitempty"`
	BrowserLang string `json:"browser_lang,omitempty"`
}

type wsTurnError struct {
	Error string `json:"error"`
}

func (h *ChatWsHandler) ServeWs(c *fiber.Ctx) error {
	tokenStr := c.Query("token")
	if tokenStr == "" {
		authHeader := c.Get("Authorization")
		if len(authHeader) > 7 && authHeader[:7] == "Bearer " {
			tokenStr = authHeader[7:]
		}
	}
	if tokenStr == "" {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Missing token (Query 'token' or Header 'Authorization')"})
	}

	token, err := jwt.Parse(tokenStr, func(t *jwt.Token) (interface{}, error) {
		if _, ok := t.Method.(*jwt.SigningMethodHMAC); !ok {
			return nil, fiber.ErrUnauthorized
		}
		return []byte(os.Getenv("JWT_SECRET")), nil
	})
	if err != nil || !token.Valid {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token"})
	}
	claims, ok := token.Claims.(jwt.MapClaims)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid token claims"})
	}
	userIDStr, ok := claims["user_id"].(string)
	if !ok {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Token missing user_id"})
	}
	userID, err := uuid.Parse(userIDStr)
	if err != nil {
		return c.Status(fiber.StatusUnauthorized).JSON(fiber.Map{"error": "Invalid user ID format in token"})
	}

	sessionID, err := uuid.Parse(c.Params("id"))
	if err != nil {
		return c.Status(fiber.StatusBadRequest).JSON(fiber.Map{"error": "Invalid session id"})
	}

	if websocket.IsWebSocketUpgrade(c) {
		return websocket.New(func(conn *websocket.Conn) {
			h.runSession(conn, userID, sessionID)
		})(c)
	}
	return fiber.ErrUpgradeRequired
}

func (h *ChatWsHandler) runSession(conn *websocket.Conn, userID, sessionID uuid.UUID) {
	h.logger.Info("ChatWsHandler", "Starting chat WebSocket session", map[string]interface{}{
		"user_id":    userID,
		"session_id": sessionID,
	})
	defer h.logger.Info("ChatWsHandler", "Chat WebSocket session ended", map[string]interface{}{
		"user_id":    userID,
		"session_id": sessionID,
	})

	for {
		var req wsTurnRequest
		if err := conn.ReadJSON(&req); err != nil {
			if websocket.IsUnexpectedCloseError(err, websocket.CloseGoingAway, websocket.CloseNormalClosure) {
				h.logger.Warn("ChatWsHandler", "Read failed", map[string]interface{}{"error": err.Error()})
			}
			return
		}

		res, err := h.chatService.SendChat(context.Background(), userID, &dto.SendChatRequest{
			ChatSessionId: sessionID,
			Chat:          req.Chat,
			AudioData:     req.AudioData,
			BrowserLang:   req.BrowserLang,
		})
		if err != nil {
			h.logger.Warn("ChatWsHandler", "Turn failed", map[string]interface{}{"error": err.Error()})
			if writeErr := conn.WriteJSON(wsTurnError{Error: err.Error()}); writeErr != nil {
				return
			}
			continue
		}

		if err := conn.WriteJSON(res); err != nil {
			return
		}
	}
}
