package mqtt

import (
	"context"
	"strings"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/platewatch/platewatch-go/internal/conf"
)

func testMQTTSettings() *conf.MQTTSettings {
	return &conf.MQTTSettings{
		Broker:      "tcp://localhost:1883",
		Username:    "user",
		Password:    "pass",
		MainTopic:   "frigate",
		ReturnTopic: "plate_recognizer",
	}
}

func TestDefaultConfig(t *testing.T) {
	config := DefaultConfig()
	assert.Equal(t, 5*time.Second, config.ReconnectCooldown)
	assert.Equal(t, 1*time.Second, config.ReconnectDelay)
	assert.Equal(t, 30*time.Second, config.ConnectTimeout)
	assert.Equal(t, 10*time.Second, config.PublishTimeout)
	assert.Equal(t, 250*time.Millisecond, config.DisconnectTimeout)
}

func TestNewClientIDHasRandomSuffix(t *testing.T) {
	a := NewClient(testMQTTSettings(), "platewatch", nil).(*client)
	b := NewClient(testMQTTSettings(), "platewatch", nil).(*client)

	assert.True(t, strings.HasPrefix(a.config.ClientID, "platewatch-"))
	assert.NotEqual(t, a.config.ClientID, b.config.ClientID)
}

func TestPublishWithoutConnection(t *testing.T) {
	c := NewClient(testMQTTSettings(), "platewatch", nil)

	err := c.Publish(context.Background(), "frigate/plate_recognizer", []byte("{}"))
	require.Error(t, err)
	assert.Contains(t, err.Error(), "not connected")
}

func TestSubscribeBeforeConnectIsDeferred(t *testing.T) {
	c := NewClient(testMQTTSettings(), "platewatch", nil).(*client)

	require.NoError(t, c.Subscribe("frigate/events", func(payload []byte) {}))

	// The handler is retained for the connect handler to subscribe later.
	assert.Contains(t, c.subscriptions, "frigate/events")
	assert.False(t, c.IsConnected())
}

func TestConnectRejectsInvalidBrokerURL(t *testing.T) {
	settings := testMQTTSettings()
	settings.Broker = "://not-a-url"
	c := NewClient(settings, "platewatch", nil)

	err := c.Connect(context.Background())
	require.Error(t, err)
}

func TestConnectCooldown(t *testing.T) {
	settings := testMQTTSettings()
	settings.Broker = "://not-a-url"
	c := NewClient(settings, "platewatch", nil).(*client)

	require.Error(t, c.Connect(context.Background()))

	// A second attempt inside the cooldown window is refused outright.
	err := c.Connect(context.Background())
	require.Error(t, err)
	assert.Contains(t, err.Error(), "too recent")
}

func TestDisconnectWithoutConnectionIsSafe(t *testing.T) {
	c := NewClient(testMQTTSettings(), "platewatch", nil)
	c.Disconnect()
	c.Disconnect()
}
