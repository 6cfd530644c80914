package handlers

import (
	"bytes"
	"encoding/base64"
	"encoding/json"
	"image/color"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"net/url"
	"strings"
	"testing"

	"github.com/go-chi/chi/v5"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	"github.com/memeforge/memeforge/internal/canvas"
	apperrors "github.com/memeforge/memeforge/internal/errors"
	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/memes"
	"github.com/memeforge/memeforge/internal/render"
	"github.com/memeforge/memeforge/internal/sample"
)

func newMemeRouter(t *testing.T) http.Handler {
	t.Helper()
	reg, err := memes.NewRegistry(memes.Options{})
	require.NoError(t, err)
	samples, err := sample.New(sample.WithSeed(9), sample.WithImageSize(48))
	require.NoError(t, err)

	h := NewMemeHandlers(reg, render.New(samples))
	r := chi.NewRouter()
	r.Get("/memes", h.List)
	r.Get("/memes/keys", h.Keys)
	r.Get("/memes/{key}", h.Get)
	r.Post("/memes/{key}", h.Render)
	r.Get("/memes/{key}/preview", h.Preview)
	return r
}

func avatar(t *testing.T) []byte {
	t.Helper()
	data, err := canvas.New(64, 64, color.NRGBA{R: 200, G: 80, B: 40, A: 255}).EncodePNG()
	require.NoError(t, err)
	return data
}

func decodeError(t *testing.T, rec *httptest.ResponseRecorder) apperrors.HTTPErrorDetail {
	t.Helper()
	var resp apperrors.HTTPErrorResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	return resp.Error
}

func TestListReturnsRegistrationOrder(t *testing.T) {
	router := newMemeRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memes", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var descriptors []meme.Descriptor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&descriptors))
	keys := make([]string, len(descriptors))
	for i, d := range descriptors {
		keys[i] = d.Key
	}
	assert.Equal(t, memes.Keys(), keys)
}

func TestListSearch(t *testing.T) {
	router := newMemeRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memes?q=wechat", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var descriptors []meme.Descriptor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&descriptors))
	require.NotEmpty(t, descriptors)
	assert.Equal(t, "wechat_pay", descriptors[0].Key)
}

func TestKeys(t *testing.T) {
	router := newMemeRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memes/keys", nil))
	require.Equal(t, http.StatusOK, rec.Code)

	var resp KeysResponse
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&resp))
	assert.Equal(t, memes.Keys(), resp.Keys)
	assert.Equal(t, len(resp.Keys), resp.Count)
}

func TestGetDescriptorAndUnknownKey(t *testing.T) {
	router := newMemeRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memes/left_right", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	var d meme.Descriptor
	require.NoError(t, json.NewDecoder(rec.Body).Decode(&d))
	assert.Equal(t, 2, d.Params.MinTexts)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memes/nope", nil))
	require.Equal(t, http.StatusNotFound, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeNotFound, body.Code)
	assert.Equal(t, "unknown_template", body.Details["meme_error"])
}

func TestRenderJSON(t *testing.T) {
	router := newMemeRouter(t)

	payload, err := json.Marshal(RenderRequest{Texts: []string{"left", "right"}})
	require.NoError(t, err)
	req := httptest.NewRequest(http.MethodPost, "/memes/left_right", bytes.NewReader(payload))
	req.Header.Set("Content-Type", "application/json")

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "image/png", rec.Header().Get("Content-Type"))
	_, err = canvas.Open(rec.Body.Bytes())
	require.NoError(t, err)
}

func TestRenderJSONWithImagesAndArgs(t *testing.T) {
	router := newMemeRouter(t)

	payload, err := json.Marshal(RenderRequest{
		Images: []string{base64.StdEncoding.EncodeToString(avatar(t))},
		Texts:  []string{"Alice"},
		Args:   map[string]any{"message": "lunch"},
	})
	require.NoError(t, err)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/memes/wechat_pay", bytes.NewReader(payload)))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.True(t, strings.HasPrefix(rec.Header().Get("Content-Type"), "image/"))
}

func TestRenderMultipart(t *testing.T) {
	router := newMemeRouter(t)

	var buf bytes.Buffer
	mw := multipart.NewWriter(&buf)
	part, err := mw.CreateFormFile("images", "me.png")
	require.NoError(t, err)
	_, err = part.Write(avatar(t))
	require.NoError(t, err)
	require.NoError(t, mw.WriteField("texts", "Bob"))
	require.NoError(t, mw.WriteField("args", `{"message":"hello"}`))
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/memes/wechat_pay", &buf)
	req.Header.Set("Content-Type", mw.FormDataContentType())

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, req)
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
}

func TestRenderValidationErrorsMapToBadRequest(t *testing.T) {
	router := newMemeRouter(t)

	cases := []struct {
		name string
		key  string
		body RenderRequest
		kind string
	}{
		{name: "text count", key: "left_right", body: RenderRequest{Texts: []string{"one"}}, kind: "text_number_mismatch"},
		{name: "image count", key: "this_chichen", kind: "image_number_mismatch"},
		{name: "corrupt image", key: "this_chichen", body: RenderRequest{Images: []string{base64.StdEncoding.EncodeToString([]byte("junk"))}}, kind: "open_image_failed"},
		{name: "bad args", key: "wechat_pay", body: RenderRequest{Images: []string{base64.StdEncoding.EncodeToString(avatar(t))}, Texts: []string{"x"}, Args: map[string]any{"message": 7}}, kind: "arg_model_mismatch"},
	}

	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			payload, err := json.Marshal(tc.body)
			require.NoError(t, err)

			rec := httptest.NewRecorder()
			router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/memes/"+tc.key, bytes.NewReader(payload)))
			require.Equal(t, http.StatusBadRequest, rec.Code, rec.Body.String())
			body := decodeError(t, rec)
			assert.Equal(t, apperrors.CodeValidationFailed, body.Code)
			assert.Equal(t, tc.kind, body.Details["meme_error"])
		})
	}
}

func TestRenderRejectsMalformedBodies(t *testing.T) {
	router := newMemeRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/memes/left_right", strings.NewReader("{")))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Code)

	rec = httptest.NewRecorder()
	req := httptest.NewRequest(http.MethodPost, "/memes/left_right", strings.NewReader("x"))
	req.Header.Set("Content-Type", "text/plain")
	router.ServeHTTP(rec, req)
	assert.Equal(t, http.StatusBadRequest, rec.Code)

	rec = httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/memes/left_right", strings.NewReader(`{"images":["***"]}`)))
	assert.Equal(t, http.StatusBadRequest, rec.Code)
}

func TestRenderBodyTooLarge(t *testing.T) {
	router := newMemeRouter(t)

	limited := http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		r.Body = http.MaxBytesReader(w, r.Body, 16)
		router.ServeHTTP(w, r)
	})

	payload := `{"texts":["` + strings.Repeat("a", 64) + `","b"]}`
	rec := httptest.NewRecorder()
	limited.ServeHTTP(rec, httptest.NewRequest(http.MethodPost, "/memes/left_right", strings.NewReader(payload)))
	assert.Equal(t, http.StatusRequestEntityTooLarge, rec.Code)
	assert.Equal(t, apperrors.CodePayloadTooLarge, decodeError(t, rec).Code)
}

func TestPreviewWithoutCache(t *testing.T) {
	router := newMemeRouter(t)

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memes/ride_bike/preview", nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "miss", rec.Header().Get(PreviewCacheHeader))
	_, err := canvas.Open(rec.Body.Bytes())
	require.NoError(t, err)
}

func TestPreviewWithArgs(t *testing.T) {
	router := newMemeRouter(t)
	query := url.Values{"args": {`{"message":"pay me back"}`}}.Encode()

	rec := httptest.NewRecorder()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memes/wechat_pay/preview?"+query, nil))
	require.Equal(t, http.StatusOK, rec.Code, rec.Body.String())
	assert.Equal(t, "bypass", rec.Header().Get(PreviewCacheHeader))

	rec = httptest.NewRecorder()
	query = url.Values{"args": {`{"message":3}`}}.Encode()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memes/wechat_pay/preview?"+query, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	body := decodeError(t, rec)
	assert.Equal(t, apperrors.CodeValidationFailed, body.Code)
	assert.Equal(t, "arg_model_mismatch", body.Details["meme_error"])

	rec = httptest.NewRecorder()
	query = url.Values{"args": {"not json"}}.Encode()
	router.ServeHTTP(rec, httptest.NewRequest(http.MethodGet, "/memes/wechat_pay/preview?"+query, nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Equal(t, apperrors.CodeInvalidInput, decodeError(t, rec).Code)
}
