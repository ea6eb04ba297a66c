// Package service assembles and runs the realtime plate recognition service.
package service

import (
	"context"
	"fmt"
	"os"
	"os/signal"
	"sync"
	"syscall"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/datastore"
	"github.com/platewatch/platewatch-go/internal/frigate"
	"github.com/platewatch/platewatch-go/internal/logging"
	"github.com/platewatch/platewatch-go/internal/mqtt"
	"github.com/platewatch/platewatch-go/internal/observability"
	"github.com/platewatch/platewatch-go/internal/pipeline"
	"github.com/platewatch/platewatch-go/internal/recognizer"
	"github.com/platewatch/platewatch-go/internal/snapshots"
	"github.com/platewatch/platewatch-go/internal/tracker"
	"github.com/platewatch/platewatch-go/internal/watchlist"
)

// Run wires all components together and blocks until the process receives an
// interrupt or termination signal. In-flight pipeline work is drained before
// returning.
func Run(settings *conf.Settings) error {
	logger := logging.ForService("service")

	m, err := observability.NewMetrics()
	if err != nil {
		return fmt.Errorf("initializing metrics: %w", err)
	}

	store, err := datastore.New(settings, m.Datastore)
	if err != nil {
		return fmt.Errorf("configuring datastore: %w", err)
	}
	if err := store.Open(); err != nil {
		return fmt.Errorf("opening datastore: %w", err)
	}
	defer func() {
		if err := store.Close(); err != nil {
			logger.Error("failed to close datastore", "error", err)
		}
	}()

	backend, err := recognizer.NewBackend(&settings.Recognizer)
	if err != nil {
		return fmt.Errorf("selecting recognition backend: %w", err)
	}
	matcher := watchlist.New(settings.Watchlist.Plates, settings.Watchlist.FuzzyMatch)
	recClient := recognizer.NewClient(backend, matcher, settings.Recognizer.MinScore, m.Recognizer)

	frigateClient := frigate.NewClient(settings.Frigate.URL, settings.Frigate.RequestTimeout, m.HTTP)

	var saver pipeline.SnapshotSaver
	if settings.Snapshots.Save || settings.Snapshots.Always {
		saver = snapshots.New(&settings.Snapshots, frigateClient)
	}

	events := tracker.New(m.Pipeline.SetTrackedEvents)
	mqttClient := mqtt.NewClient(&settings.MQTT, settings.Main.Name, m.MQTT)

	pipe := pipeline.New(settings, store, frigateClient, recClient, mqttClient, saver, events, m.Pipeline)
	dispatcher := pipeline.NewDispatcher(pipe, &settings.Workers, m.Pipeline)

	ctx, cancel := context.WithCancel(context.Background())
	defer cancel()

	dispatcher.Start(ctx)

	if err := mqttClient.Connect(ctx); err != nil {
		dispatcher.Stop()
		return fmt.Errorf("connecting to MQTT broker: %w", err)
	}

	eventsTopic := fmt.Sprintf("%s/events", settings.MQTT.MainTopic)
	if err := mqttClient.Subscribe(eventsTopic, func(payload []byte) {
		dispatcher.Submit(payload)
	}); err != nil {
		mqttClient.Disconnect()
		dispatcher.Stop()
		return fmt.Errorf("subscribing to events: %w", err)
	}

	var wg sync.WaitGroup
	quit := make(chan struct{})
	if settings.Telemetry.Enabled {
		endpoint, err := observability.NewEndpoint(settings, m, mqttClient.IsConnected)
		if err != nil {
			mqttClient.Disconnect()
			dispatcher.Stop()
			return fmt.Errorf("creating telemetry endpoint: %w", err)
		}
		endpoint.Start(&wg, quit)
	}

	logger.Info("platewatch running",
		"broker", settings.MQTT.Broker,
		"events_topic", eventsTopic,
		"backend", backend.Name(),
		"workers", settings.Workers.Count)

	sig := make(chan os.Signal, 1)
	signal.Notify(sig, os.Interrupt, syscall.SIGTERM)
	<-sig
	logger.Info("shutdown signal received")

	// Stop inbound deliveries first, then drain workers.
	mqttClient.Disconnect()
	dispatcher.Stop()
	close(quit)
	wg.Wait()

	logger.Info("platewatch stopped")
	return nil
}
