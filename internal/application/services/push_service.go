package services

import (
	"context"
	"encoding/json"
	"fmt"
	"sync"

	"github.com/go-playground/validator/v10"
	"github.com/google/uuid"

	"github.com/hogarhub/core/internal/domain/entities"
	"github.com/hogarhub/core/internal/infrastructure/api"
	"github.com/hogarhub/core/internal/infrastructure/logger"
	"github.com/hogarhub/core/internal/ports"
)

// PushService registers this device for push messages and talks to the
// household chat endpoints. Registration is single-flight: concurrent
// callers share one in-flight request and one resulting token.
type PushService struct {
	client   *api.Client
	gateway  ports.NotificationGateway
	validate *validator.Validate
	logger   *logger.Logger

	platform   string
	deviceID   string
	appVersion string

	mu          sync.Mutex
	token       string
	displayName string
	inflight    chan struct{}
	lastErr     error
}

// NewPushService creates a new push service
func NewPushService(client *api.Client, gateway ports.NotificationGateway, platform, deviceID, appVersion string, appLogger *logger.Logger) *PushService {
	return &PushService{
		client:     client,
		gateway:    gateway,
		validate:   validator.New(),
		logger:     appLogger.WithComponent("push"),
		platform:   platform,
		deviceID:   deviceID,
		appVersion: appVersion,
	}
}

// Token returns the registered push token, empty until Register succeeds
func (s *PushService) Token() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.token
}

// DisplayName returns the name the server knows this device by
func (s *PushService) DisplayName() string {
	s.mu.Lock()
	defer s.mu.Unlock()
	return s.displayName
}

// Register obtains a push token and registers this device with the server.
// Repeat calls return the cached token; calls racing an in-flight
// registration wait for it instead of issuing a second one.
func (s *PushService) Register(ctx context.Context, displayName string) (string, error) {
	s.mu.Lock()
	if s.token != "" {
		token := s.token
		s.mu.Unlock()
		return token, nil
	}
	if s.inflight != nil {
		done := s.inflight
		s.mu.Unlock()
		select {
		case <-done:
		case <-ctx.Done():
			return "", ctx.Err()
		}
		s.mu.Lock()
		token, err := s.token, s.lastErr
		s.mu.Unlock()
		if token != "" {
			return token, nil
		}
		// The shared attempt failed; every waiter sees the same cause.
		return "", err
	}
	done := make(chan struct{})
	s.inflight = done
	s.mu.Unlock()

	token, name, err := s.register(ctx, displayName)

	s.mu.Lock()
	if err == nil {
		s.token = token
		s.displayName = name
	}
	s.lastErr = err
	s.inflight = nil
	close(done)
	s.mu.Unlock()

	if err != nil {
		return "", err
	}
	return token, nil
}

func (s *PushService) register(ctx context.Context, displayName string) (token, name string, err error) {
	granted, err := s.gateway.PermissionGranted(ctx)
	if err != nil {
		return "", "", fmt.Errorf("check notification permission: %w", err)
	}
	if !granted {
		return "", "", entities.ErrNoPermission
	}

	// There is no OS push broker here; a per-install token stands in for
	// the device one.
	req := ports.RegisterDeviceRequest{
		Token:       "hogar-" + uuid.NewString(),
		Platform:    s.platform,
		DeviceID:    s.deviceID,
		AppVersion:  s.appVersion,
		DisplayName: displayName,
	}
	if err := s.validate.Struct(req); err != nil {
		return "", "", fmt.Errorf("invalid registration: %w", err)
	}

	data, err := s.client.Post(ctx, s.client.Routes().NotificationsRegister(), req)
	if err != nil {
		return "", "", err
	}

	var resp struct {
		DisplayName string `json:"displayName"`
	}
	name = displayName
	if err := json.Unmarshal(data, &resp); err == nil && resp.DisplayName != "" {
		name = resp.DisplayName
	}

	s.logger.Infow("device registered for push", "device_id", s.deviceID, "display_name", name)
	return req.Token, name, nil
}

// Broadcast sends a message to every registered device
func (s *PushService) Broadcast(ctx context.Context, message string) error {
	req := ports.SendMessageRequest{Message: message, SenderToken: s.Token()}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	_, err := s.client.Post(ctx, s.client.Routes().NotificationsBroadcast(), req)
	return err
}

// SendMessage sends a direct message to one device
func (s *PushService) SendMessage(ctx context.Context, targetToken, message string) error {
	req := ports.SendMessageRequest{Message: message, SenderToken: s.Token(), TargetToken: targetToken}
	if err := s.validate.Struct(req); err != nil {
		return fmt.Errorf("invalid message: %w", err)
	}
	_, err := s.client.Post(ctx, s.client.Routes().NotificationsSendMessage(), req)
	return err
}

// Devices lists the registered devices
func (s *PushService) Devices(ctx context.Context) ([]entities.Device, error) {
	data, err := s.client.Get(ctx, s.client.Routes().NotificationsDevices())
	if err != nil {
		return nil, err
	}
	var devices []entities.Device
	if err := json.Unmarshal(data, &devices); err != nil {
		return nil, fmt.Errorf("decode devices: %w", err)
	}
	return devices, nil
}

// Rename changes the display name of a registered device
func (s *PushService) Rename(ctx context.Context, deviceID, displayName string) error {
	if displayName == "" {
		return fmt.Errorf("display name is required")
	}
	_, err := s.client.Patch(ctx, s.client.Routes().NotificationsDevice(deviceID),
		map[string]any{"displayName": displayName})
	if err != nil {
		return err
	}

	s.mu.Lock()
	if deviceID == s.deviceID {
		s.displayName = displayName
	}
	s.mu.Unlock()
	return nil
}
