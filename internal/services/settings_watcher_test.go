package services

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"go.uber.org/zap"
	"go.uber.org/zap/zaptest/observer"

	"github.com/certifrancais/backend/internal/models"
	"github.com/certifrancais/backend/internal/pubsub"
)

func TestWatchSettingsChanges(t *testing.T) {
	t.Run("logs settings and capability changes", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		broker := pubsub.NewBroker()
		defer broker.Close()

		stop := WatchSettingsChanges(broker, zap.New(core))
		defer stop()

		broker.Publish(pubsub.TopicSettingsChanged, models.SiteSettings{QuestionsPerTest: 25})
		broker.Publish(pubsub.TopicCapabilitiesChanged, []models.Capability{models.CapabilityManagePricing})

		assert.Eventually(t, func() bool {
			return logs.FilterMessage("site settings changed").Len() == 1 &&
				logs.FilterMessage("admin capabilities changed").Len() == 1
		}, time.Second, 10*time.Millisecond)
	})

	t.Run("stop ends delivery and is idempotent", func(t *testing.T) {
		core, logs := observer.New(zap.InfoLevel)
		broker := pubsub.NewBroker()
		defer broker.Close()

		stop := WatchSettingsChanges(broker, zap.New(core))
		stop()
		stop()

		broker.Publish(pubsub.TopicSettingsChanged, models.SiteSettings{})

		time.Sleep(50 * time.Millisecond)
		assert.Zero(t, logs.Len())
	})
}
