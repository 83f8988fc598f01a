package services

import (
	"sync"

	"go.uber.org/zap"

	"github.com/certifrancais/backend/internal/pubsub"
)

// WatchSettingsChanges subscribes to the settings and capability change topics
// and logs every runtime change, so operators can trace who-saw-what when a
// capability kill-switch flips. Returns a stop function that unsubscribes and
// ends the watch goroutine.
func WatchSettingsChanges(broker *pubsub.Broker, logger *zap.Logger) func() {
	settingsCh, unsubSettings := broker.Subscribe(pubsub.TopicSettingsChanged)
	capabilitiesCh, unsubCapabilities := broker.Subscribe(pubsub.TopicCapabilitiesChanged)
	done := make(chan struct{})

	go func() {
		for {
			select {
			case msg, ok := <-settingsCh:
				if !ok {
					return
				}
				logger.Info("site settings changed", zap.Any("settings", msg.Payload))
			case msg, ok := <-capabilitiesCh:
				if !ok {
					return
				}
				logger.Info("admin capabilities changed", zap.Any("capabilities", msg.Payload))
			case <-done:
				return
			}
		}
	}()

	var once sync.Once
	return func() {
		once.Do(func() {
			close(done)
			unsubSettings()
			unsubCapabilities()
		})
	}
}
