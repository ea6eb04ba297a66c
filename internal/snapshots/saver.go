// Package snapshots persists event snapshots to disk, optionally annotated
// with the detected license plate box.
package snapshots

import (
	"bytes"
	"context"
	"fmt"
	"image"
	"image/color"
	"image/draw"
	"image/jpeg"
	"log/slog"
	"os"
	"path/filepath"
	"strings"
	"time"

	"github.com/platewatch/platewatch-go/internal/conf"
	"github.com/platewatch/platewatch-go/internal/frigate"
	"github.com/platewatch/platewatch-go/internal/logging"
)

// FrigateAPI is the slice of the Frigate client the saver uses.
type FrigateAPI interface {
	GetSnapshot(ctx context.Context, eventID string, cropped bool) ([]byte, error)
	GetFinalPlateAttributes(ctx context.Context, eventID string) ([]frigate.Attribute, error)
}

// Saver writes one snapshot file per saved event, named
// {PLATE}_{camera}_{timestamp}.jpg.
type Saver struct {
	settings *conf.SnapshotSettings
	frigate  FrigateAPI
	logger   *slog.Logger

	// now is swapped out in tests.
	now func() time.Time
}

// New creates a Saver writing into the configured snapshot directory.
func New(settings *conf.SnapshotSettings, frigateAPI FrigateAPI) *Saver {
	return &Saver{
		settings: settings,
		frigate:  frigateAPI,
		logger:   logging.ForService("snapshots"),
		now:      time.Now,
	}
}

// SaveSnapshot fetches the full frame snapshot for the event and writes it to
// disk. plate may be empty when saving is configured for every event.
func (s *Saver) SaveSnapshot(ctx context.Context, event *frigate.EventState, plate string) error {
	data, err := s.frigate.GetSnapshot(ctx, event.ID, false)
	if err != nil {
		return fmt.Errorf("fetching snapshot for save: %w", err)
	}

	if s.settings.DrawBox {
		if annotated, err := s.annotate(ctx, event, data); err != nil {
			s.logger.Warn("snapshot annotation failed, saving unmodified frame",
				"event_id", event.ID, "error", err)
		} else {
			data = annotated
		}
	}

	if err := os.MkdirAll(s.settings.Path, 0o755); err != nil {
		return fmt.Errorf("creating snapshot directory: %w", err)
	}

	path := filepath.Join(s.settings.Path, s.fileName(event, plate))
	if err := os.WriteFile(path, data, 0o644); err != nil {
		return fmt.Errorf("writing snapshot: %w", err)
	}

	s.logger.Info("snapshot saved", "event_id", event.ID, "path", path)
	return nil
}

func (s *Saver) fileName(event *frigate.EventState, plate string) string {
	label := "NO_PLATE"
	if plate != "" {
		label = strings.ToUpper(plate)
	}
	return fmt.Sprintf("%s_%s_%s.jpg", label, event.Camera, s.now().Format("20060102_150405"))
}

// annotate draws the license plate bounding box onto the frame. The box comes
// from the event's current attributes, falling back to the stored event data
// when the message carried none.
func (s *Saver) annotate(ctx context.Context, event *frigate.EventState, data []byte) ([]byte, error) {
	plates := event.LicensePlateAttributes()
	if len(plates) == 0 {
		var err error
		plates, err = s.frigate.GetFinalPlateAttributes(ctx, event.ID)
		if err != nil {
			return nil, err
		}
	}
	if len(plates) == 0 || len(plates[0].Box) < 4 {
		return nil, fmt.Errorf("no license plate box available")
	}

	img, err := jpeg.Decode(bytes.NewReader(data))
	if err != nil {
		return nil, fmt.Errorf("decoding snapshot: %w", err)
	}

	canvas := image.NewRGBA(img.Bounds())
	draw.Draw(canvas, canvas.Bounds(), img, img.Bounds().Min, draw.Src)

	box := plates[0].Box
	rect := image.Rect(int(box[0]), int(box[1]), int(box[2]), int(box[3]))
	drawBox(canvas, rect.Intersect(canvas.Bounds()), color.RGBA{R: 255, A: 255}, 3)

	var buf bytes.Buffer
	if err := jpeg.Encode(&buf, canvas, &jpeg.Options{Quality: 95}); err != nil {
		return nil, fmt.Errorf("encoding annotated snapshot: %w", err)
	}
	return buf.Bytes(), nil
}

// drawBox paints a rectangle outline of the given thickness.
func drawBox(img *image.RGBA, rect image.Rectangle, c color.Color, thickness int) {
	for t := 0; t < thickness; t++ {
		for x := rect.Min.X; x < rect.Max.X; x++ {
			img.Set(x, rect.Min.Y+t, c)
			img.Set(x, rect.Max.Y-1-t, c)
		}
		for y := rect.Min.Y; y < rect.Max.Y; y++ {
			img.Set(rect.Min.X+t, y, c)
			img.Set(rect.Max.X-1-t, y, c)
		}
	}
}
