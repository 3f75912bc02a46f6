package handler

import (
	"context"
	"encoding/base64"
	"encoding/json"
	"fmt"
	"log/slog"
	"net/http"
	"slices"
	"strings"
	"time"

	"geofence/config"
	deliverycontext "geofence/internal/delivery/context"
	"geofence/internal/domain/constants"
	"geofence/internal/domain/entity"
	"geofence/internal/domain/repository"
	"geofence/internal/domain/service"

	"github.com/google/uuid"
	"github.com/labstack/echo/v4"
	"github.com/pkg/errors"
	"go.uber.org/fx"
	"google.golang.org/api/idtoken"
)

// PubSubMessage represents the structure of a Pub/Sub push message
type PubSubMessage struct {
	Message struct {
		Data        string            `json:"data"`
		Attributes  map[string]string `json:"attributes,omitempty"`
		MessageID   string            `json:"messageId"`
		PublishTime string            `json:"publishTime"`
	} `json:"message"`
	Subscription string `json:"subscription"`
}

// retryableError wraps an error to indicate it should trigger a Pub/Sub retry
type retryableError struct {
	err error
}

func (e *retryableError) Error() string {
	return fmt.Sprintf("retryable: %v", e.err)
}

func (e *retryableError) Unwrap() error {
	return e.err
}

// newRetryableError wraps an error as retryable
func newRetryableError(err error) error {
	return &retryableError{err: err}
}

// isRetryableError checks if an error is retryable
func isRetryableError(err error) bool {
	var re *retryableError

	return errors.As(err, &re)
}

// PushHandler handles Pub/Sub push messages carrying geofence transition events
type PushHandler struct {
	verifyPushAuth  bool
	logger          *slog.Logger
	notificationSvc service.NotificationService
	deviceRepo      repository.DeviceRepository
	alertRepo       repository.AlertRepository
}

// PushHandlerParams holds dependencies for the PushHandler
type PushHandlerParams struct {
	fx.In

	Config          *config.Config
	Logger          *slog.Logger
	NotificationSvc service.NotificationService
	DeviceRepo      repository.DeviceRepository
	AlertRepo       repository.AlertRepository
}

// NewPushHandler creates a new Pub/Sub push handler
func NewPushHandler(params PushHandlerParams) *PushHandler {
	// Determine if we need to verify push auth based on config
	verifyPushAuth := params.Config.PubSub != nil &&
		params.Config.PubSub.Provider == constants.PubSubProviderGoogle &&
		params.Config.Env.Env != constants.EnvDevelop

	return &PushHandler{
		verifyPushAuth:  verifyPushAuth,
		logger:          params.Logger,
		notificationSvc: params.NotificationSvc,
		deviceRepo:      params.DeviceRepo,
		alertRepo:       params.AlertRepo,
	}
}

// HandlePush handles incoming Pub/Sub push messages
func (h *PushHandler) HandlePush(c echo.Context) error {
	ctx := c.Request().Context()

	// Verify Pub/Sub token in production for Google provider
	if h.verifyPushAuth {
		if err := verifyPubSubToken(c.Request()); err != nil {
			h.logger.Warn("[Worker] Invalid Pub/Sub token", slog.Any("error", err))

			return c.NoContent(http.StatusUnauthorized)
		}
	}

	// Parse Pub/Sub message
	var pushMsg PubSubMessage
	if err := c.Bind(&pushMsg); err != nil {
		h.logger.Error("[Worker] Failed to parse push message", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Decode base64 message data
	data, err := base64.StdEncoding.DecodeString(pushMsg.Message.Data)
	if err != nil {
		h.logger.Error("[Worker] Failed to decode message data", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Parse alert event
	var event service.AlertEvent
	if err := json.Unmarshal(data, &event); err != nil {
		h.logger.Error("[Worker] Failed to parse alert event", slog.Any("error", err))

		return c.NoContent(http.StatusBadRequest)
	}

	// Extract request_id for distributed tracing
	// Priority: message attributes > event field > existing context
	requestID := h.extractRequestID(ctx, &pushMsg, &event)

	// Create request-scoped logger with request_id
	reqLogger := h.logger.With(slog.String("request_id", requestID))

	// Update context with request_id and logger
	ctx = deliverycontext.WithRequestID(ctx, requestID)
	ctx = deliverycontext.WithLogger(ctx, reqLogger)

	reqLogger.Info("[Worker] Processing alert event",
		slog.String("user_id", event.UserID),
		slog.String("area_id", event.AreaID),
		slog.String("kind", event.Kind),
	)

	// Deliver the alert
	if err := h.processAlert(ctx, &event); err != nil {
		reqLogger.Error("[Worker] Failed to process alert",
			slog.String("user_id", event.UserID),
			slog.String("area_id", event.AreaID),
			slog.Any("error", err),
			slog.Bool("retryable", isRetryableError(err)),
		)
		// Return 503 for retryable errors to trigger Pub/Sub retry
		// Return 200 for non-retryable errors to prevent infinite retries
		if isRetryableError(err) {
			return c.NoContent(http.StatusServiceUnavailable)
		}

		return c.NoContent(http.StatusOK)
	}

	reqLogger.Info("[Worker] Alert processed successfully",
		slog.String("user_id", event.UserID),
		slog.String("area_id", event.AreaID),
	)

	return c.NoContent(http.StatusOK)
}

// extractRequestID extracts request_id from message attributes, event, or generates a new one
func (h *PushHandler) extractRequestID(ctx context.Context, pushMsg *PubSubMessage, event *service.AlertEvent) string {
	// 1. Try message attributes (from Pub/Sub)
	if requestID, ok := pushMsg.Message.Attributes["request_id"]; ok && requestID != "" {
		return requestID
	}

	// 2. Try event field (from JSON payload)
	if event.RequestID != "" {
		return event.RequestID
	}

	// 3. Try existing context (from RequestIDMiddleware via X-Request-Id header)
	if requestID := deliverycontext.GetRequestIDFromContext(ctx); requestID != "" {
		return requestID
	}

	// 4. Generate new UUID as fallback
	return uuid.New().String()
}

// processAlert delivers one transition event to every active device of the user
func (h *PushHandler) processAlert(ctx context.Context, event *service.AlertEvent) error {
	userID, areaID, err := h.parseEventIDs(event)
	if err != nil {
		return err
	}

	devices, deviceMap, err := h.getDevicesForUser(ctx, userID, event)
	if err != nil {
		return err
	}

	if len(devices) == 0 {
		return nil
	}

	title, body, alertData := h.prepareAlertContent(event)
	tokens := h.collectTokens(devices)

	totalSent, totalFailed, invalidTokens, alertLogs := h.sendBatchedAlerts(
		ctx, tokens, deviceMap, title, body, alertData, userID, areaID, event,
	)

	// Cleanup invalid tokens
	h.cleanupInvalidTokens(ctx, invalidTokens)

	// Save results
	h.saveAlertResults(ctx, alertLogs, totalSent, totalFailed, len(invalidTokens), event)

	return nil
}

// parseEventIDs parses and validates the IDs from the event
func (h *PushHandler) parseEventIDs(event *service.AlertEvent) (userID, areaID uuid.UUID, err error) {
	userID, err = uuid.Parse(event.UserID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.WithStack(err)
	}

	areaID, err = uuid.Parse(event.AreaID)
	if err != nil {
		return uuid.Nil, uuid.Nil, errors.WithStack(err)
	}

	return userID, areaID, nil
}

// getDevicesForUser retrieves the active devices of the alerted user
func (h *PushHandler) getDevicesForUser(ctx context.Context, userID uuid.UUID, event *service.AlertEvent) ([]*entity.UserDevice, map[string]*entity.UserDevice, error) {
	devices, err := h.deviceRepo.FindActiveDevicesByUser(ctx, userID)
	if err != nil {
		return nil, nil, newRetryableError(errors.WithStack(err))
	}

	if len(devices) == 0 {
		h.logger.Info("[Worker] No active devices for user",
			slog.String("user_id", event.UserID),
		)

		return nil, nil, nil
	}

	deviceMap := make(map[string]*entity.UserDevice, len(devices))
	for _, device := range devices {
		deviceMap[device.FCMToken] = device
	}

	return devices, deviceMap, nil
}

// collectTokens extracts FCM tokens from devices
func (h *PushHandler) collectTokens(devices []*entity.UserDevice) []string {
	tokens := make([]string, 0, len(devices))
	for _, device := range devices {
		tokens = append(tokens, device.FCMToken)
	}

	return tokens
}

// prepareAlertContent creates the push title, body, and data payload
func (h *PushHandler) prepareAlertContent(event *service.AlertEvent) (title, body string, data map[string]string) {
	switch event.Kind {
	case string(entity.TransitionExit):
		title = "Area exited"
		body = fmt.Sprintf("You left %s", event.AreaName)
	default:
		title = "Area entered"
		body = fmt.Sprintf("You entered %s", event.AreaName)
	}

	data = map[string]string{
		"user_id":    event.UserID,
		"area_id":    event.AreaID,
		"area_name":  event.AreaName,
		"alert_type": event.AlertType,
		"kind":       event.Kind,
		"timestamp":  event.Timestamp.UTC().Format(time.RFC3339),
	}

	return title, body, data
}

// sendBatchedAlerts sends pushes in batches and collects per-device results
func (h *PushHandler) sendBatchedAlerts(ctx context.Context, tokens []string, deviceMap map[string]*entity.UserDevice, title, body string, data map[string]string, userID, areaID uuid.UUID, event *service.AlertEvent) (sent, failed int, invalidTokens []string, logs []*entity.AlertLog) {
	const batchSize = 500

	totalSent := 0
	totalFailed := 0
	var allInvalidTokens []string
	var alertLogs []*entity.AlertLog

	for idx := 0; idx < len(tokens); idx += batchSize {
		end := min(idx+batchSize, len(tokens))
		batch := tokens[idx:end]

		successCount, failureCount, batchInvalidTokens, sendErr := h.notificationSvc.SendBatchNotification(
			ctx, batch, title, body, data,
		)

		if sendErr != nil {
			h.logger.Error("[Worker] Failed to send batch",
				slog.Int("batch_start", idx),
				slog.Int("batch_size", len(batch)),
				slog.Any("error", sendErr),
			)
			totalFailed += len(batch)

			// Create failure logs for all tokens in this batch
			for _, token := range batch {
				device, ok := deviceMap[token]
				if !ok || device == nil {
					continue
				}

				alertLogs = append(alertLogs, &entity.AlertLog{
					ID:           uuid.New(),
					UserID:       userID,
					AreaID:       areaID,
					DeviceID:     device.ID,
					Kind:         entity.TransitionKind(event.Kind),
					Status:       entity.AlertStatusFailed,
					ErrorMessage: fmt.Sprintf("batch send error: %v", sendErr),
					SentAt:       time.Now(),
				})
			}

			continue
		}

		totalSent += successCount
		totalFailed += failureCount
		allInvalidTokens = append(allInvalidTokens, batchInvalidTokens...)

		// Create logs for this batch
		for _, token := range batch {
			device, ok := deviceMap[token]
			if !ok || device == nil {
				continue
			}

			status := entity.AlertStatusSent
			errorMsg := ""
			if slices.Contains(batchInvalidTokens, token) {
				status = entity.AlertStatusFailed
				errorMsg = "invalid or unregistered token"
			}

			alertLogs = append(alertLogs, &entity.AlertLog{
				ID:           uuid.New(),
				UserID:       userID,
				AreaID:       areaID,
				DeviceID:     device.ID,
				Kind:         entity.TransitionKind(event.Kind),
				Status:       status,
				ErrorMessage: errorMsg,
				SentAt:       time.Now(),
			})
		}
	}

	return totalSent, totalFailed, allInvalidTokens, alertLogs
}

// cleanupInvalidTokens deactivates devices whose FCM tokens Firebase rejected
func (h *PushHandler) cleanupInvalidTokens(ctx context.Context, invalidTokens []string) {
	if len(invalidTokens) == 0 {
		return
	}

	if err := h.deviceRepo.DeactivateTokens(ctx, invalidTokens); err != nil {
		h.logger.Warn("[Worker] Failed to deactivate invalid tokens",
			slog.Int("token_count", len(invalidTokens)),
			slog.Any("error", err),
		)
	}
}

// saveAlertResults persists delivery logs and reports the outcome
func (h *PushHandler) saveAlertResults(ctx context.Context, logs []*entity.AlertLog, sent, failed, invalidTokensCount int, event *service.AlertEvent) {
	for _, log := range logs {
		if err := h.alertRepo.CreateAlertLog(ctx, log); err != nil {
			h.logger.Error("[Worker] Failed to create alert log",
				slog.String("device_id", log.DeviceID.String()),
				slog.Any("error", err),
			)
		}
	}

	h.logger.Info("[Worker] Alert delivery completed",
		slog.String("user_id", event.UserID),
		slog.String("area_id", event.AreaID),
		slog.Int("total_sent", sent),
		slog.Int("total_failed", failed),
		slog.Int("invalid_tokens", invalidTokensCount),
	)
}

// verifyPubSubToken verifies the JWT token from Google Pub/Sub push requests
// Reference: https://cloud.google.com/pubsub/docs/push#authenticating_standard_push_requests
func verifyPubSubToken(req *http.Request) error {
	// Get the Authorization header
	authHeader := req.Header.Get("Authorization")
	if authHeader == "" {
		return errors.New("missing authorization header")
	}

	// Extract Bearer token
	const bearerPrefix = "Bearer "
	if !strings.HasPrefix(authHeader, bearerPrefix) {
		return errors.New("invalid authorization header format")
	}
	token := strings.TrimPrefix(authHeader, bearerPrefix)

	// Construct the expected audience (the push endpoint URL)
	// The audience should be the URL of this endpoint
	scheme := "https"
	if req.TLS == nil {
		scheme = "http" // For local development
	}
	audience := fmt.Sprintf("%s://%s%s", scheme, req.Host, req.URL.Path)

	// Validate the token using Google's ID token validator
	ctx := req.Context()
	payload, err := idtoken.Validate(ctx, token, audience)
	if err != nil {
		return errors.Wrap(err, "failed to validate token")
	}

	// Verify the token is from Google Pub/Sub
	// The issuer should be accounts.google.com
	if payload.Issuer != "accounts.google.com" && payload.Issuer != "https://accounts.google.com" {
		return errors.Errorf("invalid issuer: %s", payload.Issuer)
	}

	// Verify email is verified (if email claim exists)
	if emailVerified, ok := payload.Claims["email_verified"].(bool); ok && !emailVerified {
		return errors.New("email not verified")
	}

	return nil
}
