package service

import (
	"context"
	"fmt"
	"strings"

	"hotel_ops/internal/logger"
	"hotel_ops/internal/metrics"
	"hotel_ops/internal/models"
	"hotel_ops/internal/push"
	"hotel_ops/internal/repository"

	"github.com/sourcegraph/conc/iter"
)

const cleaningStartedTitle = "Cleaning started"

// DeliveryResult is the outcome of one push in a fan-out. Error is empty on success.
type DeliveryResult struct {
	DeviceID string `json:"device_id"`
	Error    string `json:"error,omitempty"`
}

type FanoutService struct {
	devices repository.DeviceRepo
	gateway push.Gateway
	log     *logger.Logger
}

func NewFanoutService(devices repository.DeviceRepo, gateway push.Gateway, log *logger.Logger) *FanoutService {
	return &FanoutService{devices: devices, gateway: gateway, log: log.Named("fanout")}
}

// NotifyAvailableDevices sends one push to every available device in
// parallel. Deliveries fail independently and are never retried. Devices
// without a token are skipped.
func (s *FanoutService) NotifyAvailableDevices(ctx context.Context, roomLabel, actorName string) ([]DeliveryResult, error) {
	regs, err := s.devices.ListAvailable(ctx)
	if err != nil {
		return nil, fmt.Errorf("list available devices: %w", err)
	}

	targets := make([]models.DeviceRegistration, 0, len(regs))
	for _, r := range regs {
		if strings.TrimSpace(r.Token) != "" {
			targets = append(targets, r)
		}
	}

	body := fmt.Sprintf("Room %s is being cleaned by %s", roomLabel, actorName)
	results := iter.Map(targets, func(d *models.DeviceRegistration) DeliveryResult {
		res := DeliveryResult{DeviceID: d.DeviceID}
		err := s.gateway.Send(ctx, push.Message{
			To:    d.Token,
			Title: cleaningStartedTitle,
			Body:  body,
			Sound: "default",
		})
		if err != nil {
			res.Error = err.Error()
			metrics.PushDeliveries.WithLabelValues("failed").Inc()
			s.log.Warnw("push_delivery_failed", "device_id", d.DeviceID, "err", err)
			return res
		}
		metrics.PushDeliveries.WithLabelValues("sent").Inc()
		return res
	})

	s.log.Infow("fanout_done", "room", roomLabel, "targets", len(targets))
	return results, nil
}
