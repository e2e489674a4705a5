package tracker

import (
	"context"
	"errors"
	"sync"
	"testing"

	"github.com/mj1618/composebox/internal/model"
	"github.com/mj1618/composebox/internal/platform"
)

func TestScanAndLocate_Teams(t *testing.T) {
	h := desktopHost(t)
	svc := NewService(h, testConfig(), nil)

	res, err := svc.ScanAndLocate(context.Background(), "teams")
	if err != nil {
		t.Fatal(err)
	}
	if !res.Found || res.Located.Strategy != model.StrategyKeyword {
		t.Fatalf("Located = %+v, found %v", res.Located, res.Found)
	}
	if res.Located.Element.Identifier != "ckeditor-compose" {
		t.Errorf("element = %+v", res.Located.Element)
	}
	if res.BundleID != "com.microsoft.teams2" || res.Elements != 8 || res.ScanID == "" {
		t.Errorf("result = %+v", res)
	}
	if res.Snapshot() == nil {
		t.Error("Snapshot() = nil")
	}
}

func TestScanAndLocate_NotesFallback(t *testing.T) {
	svc := NewService(desktopHost(t), testConfig(), nil)
	res, err := svc.ScanAndLocate(context.Background(), "notes")
	if err != nil {
		t.Fatal(err)
	}
	if res.Located.Strategy != model.StrategyFallbackScrollArea {
		t.Fatalf("Strategy = %q, want fallback-scroll-area", res.Located.Strategy)
	}
	if res.Located.Element.Position.X != 450 {
		t.Errorf("picked scroll area at %v, want the larger one at x=450", res.Located.Element.Position)
	}
}

func TestScanAndLocate_Errors(t *testing.T) {
	h := desktopHost(t)
	svc := NewService(h, testConfig(), nil)
	ctx := context.Background()

	if _, err := svc.ScanAndLocate(ctx, "slack"); !errors.Is(err, ErrUnknownApp) {
		t.Errorf("unknown app err = %v", err)
	}

	res, err := svc.ScanAndLocate(ctx, "blank")
	if !errors.Is(err, platform.ErrTargetNotRunning) {
		t.Errorf("not running err = %v", err)
	}
	if res.Found {
		t.Error("Found = true for a missing app")
	}

	h.SetTrusted(false)
	if _, err := svc.ScanAndLocate(ctx, "teams"); !errors.Is(err, platform.ErrPermissionDenied) {
		t.Errorf("untrusted err = %v", err)
	}
}

func TestScanAndLocate_NotFoundIsNotAnError(t *testing.T) {
	svc := NewService(blankHost(t), testConfig(), nil)
	res, err := svc.ScanAndLocate(context.Background(), "blank")
	if err != nil {
		t.Fatal(err)
	}
	if res.Found || res.Located.Strategy != model.StrategyNone {
		t.Errorf("result = %+v", res)
	}
}

func TestScanAndLocate_Concurrent(t *testing.T) {
	h := desktopHost(t)
	svc := NewService(h, testConfig(), nil)

	var wg sync.WaitGroup
	for i := 0; i < 8; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()
			res, err := svc.ScanAndLocate(context.Background(), "teams")
			if err != nil || !res.Found {
				t.Errorf("ScanAndLocate = %+v, %v", res, err)
			}
		}()
	}
	wg.Wait()
	if n := h.scans.Load(); n < 1 || n > 8 {
		t.Errorf("scans = %d", n)
	}
}

func TestPositionOverlay_SavesPlacement(t *testing.T) {
	svc := NewService(desktopHost(t), testConfig(), nil)
	ctx := context.Background()

	if _, ok, _ := svc.SavedPlacement(ctx, "teams"); ok {
		t.Fatal("placement present before any positioning")
	}

	res, err := svc.ScanAndLocate(ctx, "teams")
	if err != nil {
		t.Fatal(err)
	}
	pt, err := svc.PositionOverlay(ctx, "teams", res.Located)
	if err != nil {
		t.Fatal(err)
	}
	want := model.Point{X: 1310, Y: 270}
	if pt != want {
		t.Errorf("PositionOverlay = %v, want %v", pt, want)
	}
	saved, ok, err := svc.SavedPlacement(ctx, "teams")
	if err != nil || !ok || saved != want {
		t.Errorf("SavedPlacement = %v, %v, %v", saved, ok, err)
	}
}

func TestCaptureAndApply(t *testing.T) {
	h := desktopHost(t)
	svc := NewService(h, testConfig(), nil)
	ctx := context.Background()

	got, err := svc.Capture(ctx, "teams")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "i has went to the meeting yesterday" {
		t.Errorf("Capture = %q", got.Text)
	}

	if err := svc.Apply(ctx, "teams", "I went to the meeting yesterday."); err != nil {
		t.Fatal(err)
	}
	got, err = svc.Capture(ctx, "teams")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "I went to the meeting yesterday." {
		t.Errorf("Capture after Apply = %q", got.Text)
	}
}

func TestCapture_ScrollAreaResolvesTextArea(t *testing.T) {
	h := desktopHost(t)
	svc := NewService(h, testConfig(), nil)
	ctx := context.Background()

	if err := svc.Apply(ctx, "notes", "shopping list"); err != nil {
		t.Fatal(err)
	}
	got, err := svc.Capture(ctx, "notes")
	if err != nil {
		t.Fatal(err)
	}
	if got.Text != "shopping list" {
		t.Errorf("Capture = %q", got.Text)
	}
}

func TestCapture_NoComposeBox(t *testing.T) {
	svc := NewService(blankHost(t), testConfig(), nil)
	if _, err := svc.Capture(context.Background(), "blank"); !errors.Is(err, ErrNoComposeBox) {
		t.Errorf("err = %v, want ErrNoComposeBox", err)
	}
}

func TestTextElement(t *testing.T) {
	elements := []model.ElementDescriptor{
		{ID: 1, Role: model.RoleScrollArea, Depth: 0},
		{ID: 2, Role: model.RoleGroup, Depth: 1},
		{ID: 3, Role: model.RoleTextArea, Depth: 2},
		{ID: 4, Role: model.RoleScrollArea, Depth: 0},
		{ID: 5, Role: model.RoleTextField, Depth: 1},
	}
	if got := textElement(elements, elements[0], nil); got.ID != 3 {
		t.Errorf("subtree text = %d, want 3", got.ID)
	}
	if got := textElement(elements, elements[2], nil); got.ID != 3 {
		t.Errorf("text input itself = %d, want 3", got.ID)
	}
	if got := textElement(elements, elements[1], []string{model.RoleTextField}); got.ID != 2 {
		t.Errorf("subtree must not leak into sibling: got %d", got.ID)
	}
}
