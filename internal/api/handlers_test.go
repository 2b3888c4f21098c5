package api

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	"github.com/sirupsen/logrus"

	"github.com/handvault/backend/internal/analysis"
	"github.com/handvault/backend/internal/models"
	"github.com/handvault/backend/internal/repository/jsonfile"
	"github.com/handvault/backend/internal/service"
)

// stubInvoker stands in for the external analyzer.
type stubInvoker struct {
	result *analysis.Result
	err    error
}

func (s *stubInvoker) Analyze(ctx context.Context, videoPath string) (*analysis.Result, error) {
	if s.err != nil {
		return nil, s.err
	}
	return s.result, nil
}

type testEnv struct {
	router     *gin.Engine
	uploadsDir string
	invoker    *stubInvoker
}

func setup(t *testing.T) *testEnv {
	t.Helper()
	gin.SetMode(gin.TestMode)

	log := logrus.New()
	log.SetLevel(logrus.PanicLevel)

	store, err := jsonfile.New(t.TempDir())
	if err != nil {
		t.Fatalf("jsonfile.New: %v", err)
	}

	uploadsDir := t.TempDir()
	invoker := &stubInvoker{result: &analysis.Result{
		TextHistory: "analyzed text",
		GuiData: &models.GuiData{
			Board:  []string{"As", "Kd", "7c"},
			Result: models.HandResult{Winner: "hero", Pot: 900, WinningHand: "two pair"},
		},
	}}

	events := service.NewEventService(store, log)
	hands := service.NewHandService(store, invoker, log, uploadsDir, time.Minute)

	router := NewRouter(RouterConfig{
		Events:      events,
		Hands:       hands,
		Log:         log,
		UploadsDir:  uploadsDir,
		MaxUploadMB: 10,
	})

	return &testEnv{router: router, uploadsDir: uploadsDir, invoker: invoker}
}

func (e *testEnv) do(t *testing.T, method, path string, body []byte, contentType string) *httptest.ResponseRecorder {
	t.Helper()
	var reader *bytes.Reader
	if body != nil {
		reader = bytes.NewReader(body)
	} else {
		reader = bytes.NewReader(nil)
	}
	req := httptest.NewRequest(method, path, reader)
	if contentType != "" {
		req.Header.Set("Content-Type", contentType)
	}
	w := httptest.NewRecorder()
	e.router.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, payload interface{}) *httptest.ResponseRecorder {
	t.Helper()
	body, err := json.Marshal(payload)
	if err != nil {
		t.Fatalf("marshal payload: %v", err)
	}
	return e.do(t, method, path, body, "application/json")
}

func decodeBody(t *testing.T, w *httptest.ResponseRecorder, out interface{}) {
	t.Helper()
	if err := json.Unmarshal(w.Body.Bytes(), out); err != nil {
		t.Fatalf("decode response %q: %v", w.Body.String(), err)
	}
}

func (e *testEnv) createEvent(t *testing.T, name string) models.Event {
	t.Helper()
	w := e.doJSON(t, http.MethodPost, "/events", map[string]string{"name": name})
	if w.Code != http.StatusCreated {
		t.Fatalf("create event: status %d body %s", w.Code, w.Body.String())
	}
	var event models.Event
	decodeBody(t, w, &event)
	return event
}

func (e *testEnv) uploadHand(t *testing.T, eventID, filename, content string) *httptest.ResponseRecorder {
	t.Helper()
	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	fw, err := mw.CreateFormFile("file", filename)
	if err != nil {
		t.Fatalf("CreateFormFile: %v", err)
	}
	if _, err := fw.Write([]byte(content)); err != nil {
		t.Fatalf("write part: %v", err)
	}
	mw.Close()
	return e.do(t, http.MethodPost, "/events/"+eventID+"/upload", buf.Bytes(), mw.FormDataContentType())
}

func TestCreateAndGetEvent(t *testing.T) {
	env := setup(t)

	event := env.createEvent(t, "Main Event")
	if event.ID == "" || event.Name != "Main Event" {
		t.Fatalf("unexpected event %+v", event)
	}

	w := env.do(t, http.MethodGet, "/events/"+event.ID, nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("get event: status %d", w.Code)
	}
	var got models.Event
	decodeBody(t, w, &got)
	if got.ID != event.ID || got.Name != event.Name {
		t.Errorf("round trip mismatch: %+v vs %+v", got, event)
	}
}

func TestCreateEventBlankName(t *testing.T) {
	env := setup(t)

	for _, payload := range []interface{}{
		map[string]string{"name": ""},
		map[string]string{"name": "   "},
		map[string]int{"name": 7},
	} {
		w := env.doJSON(t, http.MethodPost, "/events", payload)
		if w.Code != http.StatusBadRequest {
			t.Errorf("payload %v: status %d, want 400", payload, w.Code)
		}
	}

	w := env.do(t, http.MethodGet, "/events", nil, "")
	var listing struct {
		Events []models.Event `json:"events"`
	}
	decodeBody(t, w, &listing)
	if len(listing.Events) != 0 {
		t.Errorf("rejected creates persisted %d events", len(listing.Events))
	}
}

func TestListEventsNewestFirst(t *testing.T) {
	env := setup(t)

	env.createEvent(t, "older")
	time.Sleep(5 * time.Millisecond)
	env.createEvent(t, "newer")

	w := env.do(t, http.MethodGet, "/events", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list events: status %d", w.Code)
	}
	var listing struct {
		Events []models.Event `json:"events"`
	}
	decodeBody(t, w, &listing)
	if len(listing.Events) != 2 {
		t.Fatalf("len = %d, want 2", len(listing.Events))
	}
	if listing.Events[0].Name != "newer" {
		t.Errorf("expected newest first, got %q", listing.Events[0].Name)
	}
}

func TestGetEventNotFound(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/events/does-not-exist", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestUploadHand(t *testing.T) {
	env := setup(t)
	event := env.createEvent(t, "Main Event")

	w := env.uploadHand(t, event.ID, "final table! (day 2).mp4", "fake video bytes")
	if w.Code != http.StatusCreated {
		t.Fatalf("upload: status %d body %s", w.Code, w.Body.String())
	}

	var hand models.Hand
	decodeBody(t, w, &hand)
	if hand.Status != models.StatusUploaded {
		t.Errorf("status = %q, want uploaded", hand.Status)
	}
	if hand.Filename != "finaltableday2.mp4" {
		t.Errorf("filename = %q, want sanitized", hand.Filename)
	}
	if !strings.HasPrefix(hand.Path, "/uploads/"+event.ID+"/") {
		t.Errorf("path = %q, want /uploads/%s/ prefix", hand.Path, event.ID)
	}

	stored, err := os.ReadFile(filepath.Join(env.uploadsDir, event.ID, hand.Filename))
	if err != nil {
		t.Fatalf("stored file: %v", err)
	}
	if string(stored) != "fake video bytes" {
		t.Error("stored file content mismatch")
	}
}

func TestUploadWithoutFile(t *testing.T) {
	env := setup(t)
	event := env.createEvent(t, "Main Event")

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	_ = mw.WriteField("note", "no file here")
	mw.Close()

	w := env.do(t, http.MethodPost, "/events/"+event.ID+"/upload", buf.Bytes(), mw.FormDataContentType())
	if w.Code != http.StatusBadRequest {
		t.Errorf("status = %d, want 400", w.Code)
	}
}

func TestUploadUnusableFilename(t *testing.T) {
	env := setup(t)
	event := env.createEvent(t, "Main Event")

	w := env.uploadHand(t, event.ID, "🂡🂱🃁", "bytes")
	if w.Code != http.StatusBadRequest {
		t.Fatalf("status = %d, want 400", w.Code)
	}

	// Nothing may be written for a rejected upload.
	if _, err := os.Stat(filepath.Join(env.uploadsDir, event.ID)); !os.IsNotExist(err) {
		t.Error("upload directory created for rejected upload")
	}

	hw := env.do(t, http.MethodGet, "/events/"+event.ID+"/hands", nil, "")
	var listing struct {
		Hands []models.Hand `json:"hands"`
	}
	decodeBody(t, hw, &listing)
	if len(listing.Hands) != 0 {
		t.Error("rejected upload persisted a hand")
	}
}

func TestListHandsScopedToEvent(t *testing.T) {
	env := setup(t)
	eventA := env.createEvent(t, "Event A")
	eventB := env.createEvent(t, "Event B")

	env.uploadHand(t, eventA.ID, "a1.mp4", "a1")
	env.uploadHand(t, eventB.ID, "b1.mp4", "b1")
	env.uploadHand(t, eventA.ID, "a2.mp4", "a2")

	w := env.do(t, http.MethodGet, "/events/"+eventA.ID+"/hands", nil, "")
	if w.Code != http.StatusOK {
		t.Fatalf("list hands: status %d", w.Code)
	}
	var listing struct {
		Hands []models.Hand `json:"hands"`
	}
	decodeBody(t, w, &listing)
	if len(listing.Hands) != 2 {
		t.Fatalf("len = %d, want 2", len(listing.Hands))
	}
	if listing.Hands[0].Filename != "a1.mp4" || listing.Hands[1].Filename != "a2.mp4" {
		t.Error("expected creation order within the event")
	}
	for _, h := range listing.Hands {
		if h.EventID != eventA.ID {
			t.Errorf("hand %s belongs to %s", h.ID, h.EventID)
		}
	}
}

func TestAnalyzeUnknownHand(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodPost, "/hands/does-not-exist/analyze", nil, "")
	if w.Code != http.StatusNotFound {
		t.Errorf("status = %d, want 404", w.Code)
	}
}

func TestAnalyzeThenReviewFlow(t *testing.T) {
	env := setup(t)
	event := env.createEvent(t, "Main Event")

	uw := env.uploadHand(t, event.ID, "clip.mp4", "bytes")
	var hand models.Hand
	decodeBody(t, uw, &hand)

	aw := env.do(t, http.MethodPost, "/hands/"+hand.ID+"/analyze", nil, "")
	if aw.Code != http.StatusOK {
		t.Fatalf("analyze: status %d body %s", aw.Code, aw.Body.String())
	}
	var analyzed models.Hand
	decodeBody(t, aw, &analyzed)
	if analyzed.Status != models.StatusNeedsReview {
		t.Errorf("status = %q, want needs_review", analyzed.Status)
	}
	if analyzed.TextHistory == nil || *analyzed.TextHistory != "analyzed text" {
		t.Errorf("textHistory = %v", analyzed.TextHistory)
	}
	var gui models.GuiData
	if err := json.Unmarshal(analyzed.GuiData, &gui); err != nil {
		t.Fatalf("guiData not structured: %v", err)
	}
	if gui.Result.Winner != "hero" {
		t.Errorf("guiData winner = %q", gui.Result.Winner)
	}

	// Re-analyzing a hand awaiting review is rejected.
	if w := env.do(t, http.MethodPost, "/hands/"+hand.ID+"/analyze", nil, ""); w.Code != http.StatusConflict {
		t.Errorf("re-analyze status = %d, want 409", w.Code)
	}

	edited := "edited by reviewer\nwith a second line"
	pw := env.doJSON(t, http.MethodPut, "/hands/"+hand.ID, map[string]string{"textHistory": edited})
	if pw.Code != http.StatusOK {
		t.Fatalf("put: status %d body %s", pw.Code, pw.Body.String())
	}
	var completed models.Hand
	decodeBody(t, pw, &completed)
	if completed.Status != models.StatusCompleted {
		t.Errorf("status = %q, want completed", completed.Status)
	}

	gw := env.do(t, http.MethodGet, "/hands/"+hand.ID, nil, "")
	var final models.Hand
	decodeBody(t, gw, &final)
	if final.TextHistory == nil || *final.TextHistory != edited {
		t.Error("PUT then GET did not round-trip the submitted string")
	}
}

func TestAnalyzeFailureRevertsStatus(t *testing.T) {
	env := setup(t)
	env.invoker.err = errors.New("ocr failed")

	event := env.createEvent(t, "Main Event")
	uw := env.uploadHand(t, event.ID, "clip.mp4", "bytes")
	var hand models.Hand
	decodeBody(t, uw, &hand)

	aw := env.do(t, http.MethodPost, "/hands/"+hand.ID+"/analyze", nil, "")
	if aw.Code != http.StatusInternalServerError {
		t.Fatalf("analyze: status %d, want 500", aw.Code)
	}

	gw := env.do(t, http.MethodGet, "/hands/"+hand.ID, nil, "")
	var got models.Hand
	decodeBody(t, gw, &got)
	if got.Status != models.StatusUploaded {
		t.Errorf("status = %q, want uploaded after failure", got.Status)
	}
	if got.TextHistory != nil || got.GuiData != nil {
		t.Error("failed analysis must not populate results")
	}
}

func TestUpdateHandValidation(t *testing.T) {
	env := setup(t)
	event := env.createEvent(t, "Main Event")
	uw := env.uploadHand(t, event.ID, "clip.mp4", "bytes")
	var hand models.Hand
	decodeBody(t, uw, &hand)

	for _, payload := range []interface{}{
		map[string]int{"textHistory": 5},
		map[string]interface{}{"textHistory": nil},
		map[string]string{"other": "field"},
	} {
		w := env.doJSON(t, http.MethodPut, "/hands/"+hand.ID, payload)
		if w.Code != http.StatusBadRequest {
			t.Errorf("payload %v: status %d, want 400", payload, w.Code)
		}
	}

	if w := env.doJSON(t, http.MethodPut, "/hands/missing", map[string]string{"textHistory": "x"}); w.Code != http.StatusNotFound {
		t.Errorf("unknown hand: status %d, want 404", w.Code)
	}
}

func TestUpdateCompletedHandRejected(t *testing.T) {
	env := setup(t)
	event := env.createEvent(t, "Main Event")
	uw := env.uploadHand(t, event.ID, "clip.mp4", "bytes")
	var hand models.Hand
	decodeBody(t, uw, &hand)

	first := env.doJSON(t, http.MethodPut, "/hands/"+hand.ID, map[string]string{"textHistory": "final text"})
	if first.Code != http.StatusOK {
		t.Fatalf("first put: status %d", first.Code)
	}

	second := env.doJSON(t, http.MethodPut, "/hands/"+hand.ID, map[string]string{"textHistory": "tampered"})
	if second.Code != http.StatusConflict {
		t.Errorf("second put: status %d, want 409", second.Code)
	}

	gw := env.do(t, http.MethodGet, "/hands/"+hand.ID, nil, "")
	var got models.Hand
	decodeBody(t, gw, &got)
	if got.TextHistory == nil || *got.TextHistory != "final text" {
		t.Error("completed hand's textHistory changed")
	}
}

func TestHealth(t *testing.T) {
	env := setup(t)

	w := env.do(t, http.MethodGet, "/health", nil, "")
	if w.Code != http.StatusOK {
		t.Errorf("status = %d, want 200", w.Code)
	}
}
