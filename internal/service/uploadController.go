package service

import (
	"context"
	"sync"
	"time"

	"github.com/ds124wfegd/digit-ui/internal/entity"
	"github.com/ds124wfegd/digit-ui/internal/pkg/processor"
	"github.com/ds124wfegd/digit-ui/internal/predict"
	"github.com/sirupsen/logrus"
)

type ControllerOptions struct {
	ID        string
	Predictor predict.Predictor
	Previews  PreviewService
	// OnSettle is called for every prediction whose result was applied.
	OnSettle func(entity.Outcome)
	// Context for prediction requests. Reset and Select never cancel it.
	Context context.Context
}

// UploadController owns the selected image, its preview, and the prediction
// result of one browser session. All mutations go through its methods.
type UploadController struct {
	id        string
	predictor predict.Predictor
	previews  PreviewService
	onSettle  func(entity.Outcome)
	ctx       context.Context
	log       *logrus.Entry

	mu         sync.Mutex
	state      entity.State
	image      *entity.SelectedImage
	preview    entity.PreviewRef
	result     *entity.Prediction
	errMsg     string
	generation uint64
	version    uint64
	inFlight   bool
	closed     bool

	subscribers map[uint64]chan entity.Snapshot
	nextSub     uint64
}

func NewUploadController(opts ControllerOptions) *UploadController {
	ctx := opts.Context
	if ctx == nil {
		ctx = context.Background()
	}

	return &UploadController{
		id:          opts.ID,
		predictor:   opts.Predictor,
		previews:    opts.Previews,
		onSettle:    opts.OnSettle,
		ctx:         ctx,
		log:         logrus.WithField("session", opts.ID),
		state:       entity.StateIdle,
		subscribers: make(map[uint64]chan entity.Snapshot),
	}
}

func (c *UploadController) ID() string {
	return c.id
}

// Select replaces the current image. Payloads that are empty or not images
// are rejected without touching any state, whatever channel they came from.
func (c *UploadController) Select(img entity.SelectedImage) error {
	if len(img.Data) == 0 {
		return entity.ErrEmptyFile
	}

	img.ContentType = processor.ResolveContentType(img.ContentType, img.Data)
	if !entity.IsImageType(img.ContentType) {
		c.log.WithFields(logrus.Fields{
			"source":       img.Source,
			"content_type": img.ContentType,
		}).Info("ignored non-image file")
		return entity.ErrNotImage
	}
	if img.Source == "" {
		img.Source = entity.SourcePicker
	}
	if img.SelectedAt.IsZero() {
		img.SelectedAt = time.Now()
	}

	// декодирование и ресайз идут без блокировки
	rendered, renderErr := c.previews.Render(&img)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return entity.ErrSessionNotFound
	}

	// старое превью освобождаем до создания нового
	c.releasePreviewLocked()

	if renderErr != nil {
		c.log.WithError(renderErr).Warn("preview unavailable")
	} else if ref, err := c.previews.Store(rendered); err != nil {
		c.log.WithError(err).Warn("preview unavailable")
	} else {
		c.preview = ref
	}

	c.image = &img
	c.result = nil
	c.errMsg = ""
	c.generation++
	c.state = entity.StateSelected

	c.log.WithFields(logrus.Fields{
		"source":     img.Source,
		"file":       img.Name,
		"size":       len(img.Data),
		"generation": c.generation,
	}).Info("image selected")

	c.notifyLocked()
	return nil
}

// Submit dispatches the selected image to the predictor. It returns at once;
// the channel receives the snapshot taken when the request settles.
func (c *UploadController) Submit() (<-chan entity.Snapshot, error) {
	c.mu.Lock()

	if c.closed {
		c.mu.Unlock()
		return nil, entity.ErrSessionNotFound
	}
	if c.image == nil {
		c.mu.Unlock()
		return nil, entity.ErrNoImage
	}
	if c.inFlight {
		c.mu.Unlock()
		return nil, entity.ErrSubmitInFlight
	}

	c.generation++
	c.state = entity.StateSubmitting
	c.result = nil
	c.errMsg = ""
	c.inFlight = true

	img := c.image
	gen := c.generation
	c.log.WithFields(logrus.Fields{"file": img.Name, "generation": gen}).Info("prediction dispatched")
	c.notifyLocked()
	c.mu.Unlock()

	done := make(chan entity.Snapshot, 1)
	go c.run(img, gen, done)
	return done, nil
}

func (c *UploadController) run(img *entity.SelectedImage, gen uint64, done chan<- entity.Snapshot) {
	defer close(done)

	start := time.Now()
	prediction, err := c.predictor.Predict(c.ctx, img)
	elapsed := time.Since(start)

	c.mu.Lock()
	c.inFlight = false

	if gen != c.generation {
		c.log.WithFields(logrus.Fields{
			"generation": gen,
			"current":    c.generation,
		}).Info("discarded stale prediction")
		c.notifyLocked()
		snap := c.snapshotLocked()
		c.mu.Unlock()
		done <- snap
		return
	}

	outcome := entity.Outcome{
		SessionID:   c.id,
		Filename:    img.Name,
		ContentType: img.ContentType,
		Size:        len(img.Data),
		Source:      img.Source,
		DurationMs:  elapsed.Milliseconds(),
		SettledAt:   time.Now(),
	}

	if err != nil {
		c.state = entity.StateFailed
		c.errMsg = predict.DisplayMessage(err)
		outcome.Error = c.errMsg
		c.log.WithError(err).WithField("generation", gen).Warn("prediction failed")
	} else {
		if prediction == nil {
			prediction = &entity.Prediction{}
		}
		c.state = entity.StateSucceeded
		c.result = prediction
		outcome.Digit = prediction.Digit
		c.log.WithFields(logrus.Fields{
			"generation": gen,
			"duration":   elapsed,
		}).Info("prediction succeeded")
	}

	c.notifyLocked()
	snap := c.snapshotLocked()
	c.mu.Unlock()

	if c.onSettle != nil {
		c.onSettle(outcome)
	}
	done <- snap
}

// Reset returns to idle and releases the preview. Any outstanding
// prediction result will be discarded when it arrives.
func (c *UploadController) Reset() error {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.state == entity.StateSubmitting && c.image == nil {
		return nil
	}

	err := c.releasePreviewLocked()

	c.image = nil
	c.result = nil
	c.errMsg = ""
	c.generation++
	c.state = entity.StateIdle

	c.log.WithField("generation", c.generation).Info("reset")
	c.notifyLocked()
	return err
}

func (c *UploadController) Snapshot() entity.Snapshot {
	c.mu.Lock()
	defer c.mu.Unlock()
	return c.snapshotLocked()
}

// Subscribe streams snapshots. Slow readers only see the latest one.
// The returned func must be called to unsubscribe.
func (c *UploadController) Subscribe() (<-chan entity.Snapshot, func()) {
	ch := make(chan entity.Snapshot, 1)

	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		close(ch)
		return ch, func() {}
	}

	id := c.nextSub
	c.nextSub++
	c.subscribers[id] = ch
	ch <- c.snapshotLocked()

	var once sync.Once
	return ch, func() {
		once.Do(func() {
			c.mu.Lock()
			defer c.mu.Unlock()
			if sub, ok := c.subscribers[id]; ok {
				delete(c.subscribers, id)
				close(sub)
			}
		})
	}
}

func (c *UploadController) Subscribers() int {
	c.mu.Lock()
	defer c.mu.Unlock()
	return len(c.subscribers)
}

// Close resets the controller and ends all subscriptions.
func (c *UploadController) Close() {
	c.mu.Lock()
	defer c.mu.Unlock()

	if c.closed {
		return
	}

	c.releasePreviewLocked()
	c.image = nil
	c.result = nil
	c.errMsg = ""
	c.generation++
	c.state = entity.StateIdle
	c.version++
	c.closed = true

	for id, ch := range c.subscribers {
		delete(c.subscribers, id)
		close(ch)
	}
	c.log.Info("closed")
}

func (c *UploadController) releasePreviewLocked() error {
	if c.preview == "" {
		return nil
	}
	ref := c.preview
	c.preview = ""
	if err := c.previews.Revoke(ref); err != nil {
		c.log.WithError(err).WithField("preview", ref).Warn("revoke preview")
		return err
	}
	return nil
}

// notifyLocked marks a change and pushes it to subscribers.
func (c *UploadController) notifyLocked() {
	c.version++
	if len(c.subscribers) == 0 {
		return
	}
	snap := c.snapshotLocked()
	for _, ch := range c.subscribers {
		select {
		case <-ch:
		default:
		}
		ch <- snap
	}
}

func (c *UploadController) snapshotLocked() entity.Snapshot {
	snap := entity.Snapshot{
		SessionID:  c.id,
		State:      c.state,
		Error:      c.errMsg,
		CanSubmit:  c.image != nil && !c.inFlight && !c.closed,
		CanReset:   !(c.state == entity.StateSubmitting && c.image == nil),
		Generation: c.generation,
		Version:    c.version,
	}

	if c.image != nil {
		snap.File = &entity.FileInfo{
			Name:        c.image.Name,
			ContentType: c.image.ContentType,
			Size:        len(c.image.Data),
			Source:      c.image.Source,
		}
	}
	if c.preview != "" {
		snap.PreviewURL = PreviewRoute + string(c.preview)
	}
	if c.result != nil {
		snap.Result = c.result
		snap.Bars = c.result.Bars()
	}
	return snap
}
