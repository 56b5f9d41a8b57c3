package config

import (
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
)

func TestFromEnv_Defaults(t *testing.T) {
	t.Setenv("STORE_DRIVER", "")
	t.Setenv("DELIVERY_SLOTS", "")
	cfg := FromEnv()
	assert.Equal(t, "scylla", cfg.StoreDriver)
	assert.Equal(t, []string{"08:00", "10:00", "14:00", "16:00", "18:00"}, cfg.DeliverySlots)
	assert.Equal(t, 30*time.Minute, cfg.DeliveryBuffer)
	assert.Equal(t, 10*time.Second, cfg.WebhookTimeout)
	assert.Equal(t, "product-images", cfg.MinioBucket)
}

func TestFromEnv_Overrides(t *testing.T) {
	t.Setenv("SCYLLA_HOSTS", "10.0.0.1, 10.0.0.2,")
	t.Setenv("DELIVERY_DAYS", "7")
	t.Setenv("DELIVERY_BUFFER", "45m")
	t.Setenv("SMTP_PORT", "abc")
	t.Setenv("TZ_NAME", "Nowhere/City")

	cfg := FromEnv()
	assert.Equal(t, []string{"10.0.0.1", "10.0.0.2"}, cfg.ScyllaHosts)
	assert.Equal(t, 7, cfg.DeliveryDays)
	assert.Equal(t, 45*time.Minute, cfg.DeliveryBuffer)
	assert.Equal(t, 587, cfg.SMTPPort)
	assert.Equal(t, time.UTC, cfg.Location())
}
