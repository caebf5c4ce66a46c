package service

import (
	"bytes"
	"context"
	"errors"
	"image"
	"image/png"
	"testing"
	"time"

	"github.com/kozaktomas/face-gate/internal/detector"
	"github.com/kozaktomas/face-gate/internal/events"
	"github.com/kozaktomas/face-gate/internal/registry"
	"github.com/kozaktomas/face-gate/internal/registry/mock"
	"github.com/kozaktomas/face-gate/internal/trigger"
)

// fakeDetector implements Detector with a canned response.
type fakeDetector struct {
	descriptor []float32
	err        error
	calls      int
}

func (f *fakeDetector) Detect(ctx context.Context, imageData []byte) (*detector.Detection, error) {
	f.calls++
	if f.err != nil {
		return nil, f.err
	}
	return &detector.Detection{Descriptor: f.descriptor, Dim: len(f.descriptor)}, nil
}

// testImage returns a small decodable PNG.
func testImage(t *testing.T) []byte {
	t.Helper()
	img := image.NewRGBA(image.Rect(0, 0, 16, 16))
	var buf bytes.Buffer
	if err := png.Encode(&buf, img); err != nil {
		t.Fatalf("failed to encode test image: %v", err)
	}
	return buf.Bytes()
}

func testDescriptor(fill float32) []float32 {
	d := make([]float32, 128)
	for i := range d {
		d[i] = fill
	}
	return d
}

func newTestService(det Detector) (*Service, *mock.MockStore, *events.Hub) {
	store := mock.NewMockStore()
	hub := events.NewHub()
	gate := trigger.NewGate(3 * time.Second)
	svc := New(store, det, hub, gate, 0.45, 128)
	return svc, store, hub
}

// expectEvent waits for one event of the given type on the channel.
func expectEvent(t *testing.T, ch chan events.Event, eventType events.Type) events.Event {
	t.Helper()
	select {
	case event := <-ch:
		if event.Type != eventType {
			t.Fatalf("expected %s event, got %s", eventType, event.Type)
		}
		return event
	case <-time.After(time.Second):
		t.Fatalf("no %s event received", eventType)
		return events.Event{}
	}
}

func TestRegister_Success(t *testing.T) {
	det := &fakeDetector{descriptor: testDescriptor(0.1)}
	svc, store, hub := newTestService(det)
	observer := hub.AddObserver()
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", testImage(t))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}
	if user.Name != "Alice" {
		t.Errorf("expected name Alice, got %s", user.Name)
	}
	if user.ID == "" {
		t.Error("expected generated id")
	}

	count, _ := store.Count(ctx)
	if count != 1 {
		t.Errorf("expected store size 1, got %d", count)
	}

	event := expectEvent(t, observer, events.TypeUserRegistered)
	payload, ok := event.Data.(events.UserPayload)
	if !ok {
		t.Fatalf("unexpected payload type %T", event.Data)
	}
	if payload.User.Name != "Alice" || payload.User.ID != user.ID {
		t.Errorf("broadcast payload mismatch: %+v", payload.User)
	}
}

func TestRegister_MissingFields(t *testing.T) {
	svc, _, _ := newTestService(&fakeDetector{})

	_, err := svc.Register(context.Background(), "", nil)
	var validationErr *ValidationError
	if !errors.As(err, &validationErr) {
		t.Fatalf("expected ValidationError, got %v", err)
	}
	if len(validationErr.Fields) != 2 {
		t.Errorf("expected both fields named, got %v", validationErr.Fields)
	}
}

func TestRegister_NoFace(t *testing.T) {
	det := &fakeDetector{err: detector.ErrNoFace}
	svc, store, _ := newTestService(det)

	_, err := svc.Register(context.Background(), "Alice", testImage(t))
	if !errors.Is(err, detector.ErrNoFace) {
		t.Fatalf("expected ErrNoFace, got %v", err)
	}

	count, _ := store.Count(context.Background())
	if count != 0 {
		t.Error("failed registration must not mutate the store")
	}
}

func TestRegister_SameNameTwice(t *testing.T) {
	det := &fakeDetector{descriptor: testDescriptor(0.1)}
	svc, store, _ := newTestService(det)
	ctx := context.Background()

	first, err := svc.Register(ctx, "Alice", testImage(t))
	if err != nil {
		t.Fatalf("first register failed: %v", err)
	}
	second, err := svc.Register(ctx, "Alice", testImage(t))
	if err != nil {
		t.Fatalf("second register failed: %v", err)
	}

	if first.ID == second.ID {
		t.Error("same name must create distinct records")
	}
	count, _ := store.Count(ctx)
	if count != 2 {
		t.Errorf("expected 2 records, got %d", count)
	}
}

func TestRegister_StoreWriteFails(t *testing.T) {
	det := &fakeDetector{descriptor: testDescriptor(0.1)}
	svc, store, _ := newTestService(det)
	store.PutError = &registry.StorageError{Op: "put", Err: errors.New("disk full")}

	_, err := svc.Register(context.Background(), "Alice", testImage(t))
	var storageErr *registry.StorageError
	if !errors.As(err, &storageErr) {
		t.Errorf("expected StorageError, got %v", err)
	}
}

func TestRegister_DimensionMismatch(t *testing.T) {
	det := &fakeDetector{descriptor: []float32{1, 2, 3}}
	svc, _, _ := newTestService(det)

	_, err := svc.Register(context.Background(), "Alice", testImage(t))
	if err == nil {
		t.Fatal("expected error for wrong descriptor dimensionality")
	}
}

func TestVerify_EmptyRegistry(t *testing.T) {
	det := &fakeDetector{descriptor: testDescriptor(0)}
	svc, _, _ := newTestService(det)

	_, err := svc.Verify(context.Background(), testImage(t))
	if !errors.Is(err, ErrEmptyRegistry) {
		t.Fatalf("expected ErrEmptyRegistry, got %v", err)
	}
	if det.calls != 1 {
		t.Errorf("detection runs before the registry check, calls = %d", det.calls)
	}
}

func TestVerify_ExactMatch(t *testing.T) {
	det := &fakeDetector{descriptor: testDescriptor(0)}
	svc, _, hub := newTestService(det)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", testImage(t)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	observer := hub.AddObserver()
	outcome, err := svc.Verify(ctx, testImage(t))
	if err != nil {
		t.Fatalf("verify failed: %v", err)
	}
	if !outcome.Success {
		t.Fatal("expected successful match")
	}
	if outcome.User == nil || outcome.User.Name != "Alice" {
		t.Errorf("expected user Alice, got %+v", outcome.User)
	}
	if outcome.Confidence != 1.0 {
		t.Errorf("distance-0 match must have confidence 1.0, got %v", outcome.Confidence)
	}

	event := expectEvent(t, observer, events.TypeAccessAttempt)
	payload := event.Data.(events.AccessPayload)
	if !payload.Success {
		t.Error("broadcast must report success")
	}
	if payload.User == nil || payload.User.Name != "Alice" {
		t.Errorf("broadcast user mismatch: %+v", payload.User)
	}
}

func TestVerify_Rejection(t *testing.T) {
	det := &fakeDetector{descriptor: testDescriptor(0)}
	svc, _, hub := newTestService(det)
	ctx := context.Background()

	if _, err := svc.Register(ctx, "Alice", testImage(t)); err != nil {
		t.Fatalf("register failed: %v", err)
	}

	// Probe far away from the stored descriptor.
	det.descriptor = testDescriptor(10)

	observer := hub.AddObserver()
	outcome, err := svc.Verify(ctx, testImage(t))
	if err != nil {
		t.Fatalf("rejection must not be an error: %v", err)
	}
	if outcome.Success {
		t.Fatal("expected denial")
	}
	if outcome.User != nil {
		t.Error("denied outcome must not carry a user")
	}
	if outcome.Confidence != 0 {
		t.Errorf("expected confidence 0 for a distant probe, got %v", outcome.Confidence)
	}

	event := expectEvent(t, observer, events.TypeAccessAttempt)
	payload := event.Data.(events.AccessPayload)
	if payload.Success {
		t.Error("broadcast must report denial")
	}
	if payload.User != nil {
		t.Error("denial broadcast must not include a user")
	}
}

func TestDelete(t *testing.T) {
	det := &fakeDetector{descriptor: testDescriptor(0)}
	svc, store, hub := newTestService(det)
	ctx := context.Background()

	user, err := svc.Register(ctx, "Alice", testImage(t))
	if err != nil {
		t.Fatalf("register failed: %v", err)
	}

	observer := hub.AddObserver()
	if err := svc.Delete(ctx, user.ID); err != nil {
		t.Fatalf("delete failed: %v", err)
	}

	count, _ := store.Count(ctx)
	if count != 0 {
		t.Errorf("expected empty store after delete, got %d", count)
	}

	event := expectEvent(t, observer, events.TypeUserDeleted)
	payload := event.Data.(events.UserPayload)
	if payload.User.ID != user.ID {
		t.Errorf("broadcast id mismatch: %s", payload.User.ID)
	}
}

func TestDelete_UnknownUser(t *testing.T) {
	svc, _, _ := newTestService(&fakeDetector{})

	err := svc.Delete(context.Background(), "nope")
	if !errors.Is(err, registry.ErrUserNotFound) {
		t.Errorf("expected ErrUserNotFound, got %v", err)
	}
}

func TestList_FilterByName(t *testing.T) {
	det := &fakeDetector{descriptor: testDescriptor(0)}
	svc, _, _ := newTestService(det)
	ctx := context.Background()

	for _, name := range []string{"Jan Novák", "Alice", "jan-stary"} {
		if _, err := svc.Register(ctx, name, testImage(t)); err != nil {
			t.Fatalf("register %s failed: %v", name, err)
		}
	}

	all, err := svc.List(ctx, "")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(all) != 3 {
		t.Errorf("expected 3 users, got %d", len(all))
	}

	jans, err := svc.List(ctx, "jan")
	if err != nil {
		t.Fatalf("list failed: %v", err)
	}
	if len(jans) != 2 {
		t.Errorf("expected 2 users matching 'jan', got %d", len(jans))
	}
}

func TestTrigger_BroadcastsOnAccept(t *testing.T) {
	svc, _, hub := newTestService(&fakeDetector{})
	observer := hub.AddObserver()

	ts := svc.Trigger()
	if ts == 0 {
		t.Fatal("expected non-zero timestamp")
	}
	event := expectEvent(t, observer, events.TypeTrigger)
	payload := event.Data.(events.TriggerPayload)
	if payload.Timestamp != ts {
		t.Errorf("broadcast timestamp %d, want %d", payload.Timestamp, ts)
	}

	// Within the cooldown: same timestamp, no second broadcast.
	if again := svc.Trigger(); again != ts {
		t.Errorf("debounced trigger must return prior timestamp, got %d", again)
	}
	select {
	case event := <-observer:
		t.Errorf("rejected trigger must not broadcast, got %s", event.Type)
	case <-time.After(100 * time.Millisecond):
	}

	if svc.LastTrigger() != ts {
		t.Errorf("LastTrigger = %d, want %d", svc.LastTrigger(), ts)
	}
}
