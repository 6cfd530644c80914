package handlers

import (
	"encoding/base64"
	"encoding/json"
	stderrors "errors"
	"fmt"
	"io"
	"mime"
	"net/http"
	"strconv"
	"strings"

	"github.com/go-chi/chi/v5"

	"github.com/memeforge/memeforge/internal/catalog"
	apperrors "github.com/memeforge/memeforge/internal/errors"
	"github.com/memeforge/memeforge/internal/meme"
	"github.com/memeforge/memeforge/internal/render"
)

// PreviewCacheHeader reports whether a preview came from the cache.
const PreviewCacheHeader = "X-Preview-Cache"

// multipartMemory is how much of a multipart body is held in memory before
// spilling file parts to disk.
const multipartMemory = 8 << 20

// MemeHandlers serves the catalog and renders templates.
type MemeHandlers struct {
	registry *meme.Registry
	catalog  *catalog.Catalog
	renderer *render.Service
}

// NewMemeHandlers wires the handlers to a registry and renderer.
func NewMemeHandlers(reg *meme.Registry, renderer *render.Service) *MemeHandlers {
	return &MemeHandlers{
		registry: reg,
		catalog:  catalog.New(reg),
		renderer: renderer,
	}
}

// KeysResponse lists template keys in registration order.
type KeysResponse struct {
	Keys  []string `json:"keys"`
	Count int      `json:"count"`
}

// RenderRequest is the JSON form of a render call. Images are base64.
type RenderRequest struct {
	Images []string       `json:"images"`
	Texts  []string       `json:"texts"`
	Args   map[string]any `json:"args"`
}

// List returns every descriptor, or the fuzzy matches for ?q=.
func (h *MemeHandlers) List(w http.ResponseWriter, r *http.Request) {
	query := strings.TrimSpace(r.URL.Query().Get("q"))
	if query == "" {
		writeJSON(w, http.StatusOK, h.catalog.Descriptors())
		return
	}
	writeJSON(w, http.StatusOK, catalog.Describe(h.catalog.Search(query)))
}

// Keys returns the registered keys.
func (h *MemeHandlers) Keys(w http.ResponseWriter, r *http.Request) {
	keys := h.registry.Keys()
	writeJSON(w, http.StatusOK, KeysResponse{Keys: keys, Count: len(keys)})
}

// Get returns one descriptor.
func (h *MemeHandlers) Get(w http.ResponseWriter, r *http.Request) {
	m, err := h.registry.Lookup(chi.URLParam(r, "key"))
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, m.Descriptor())
}

// Render invokes a template with the request's images, texts and args.
func (h *MemeHandlers) Render(w http.ResponseWriter, r *http.Request) {
	m, err := h.registry.Lookup(chi.URLParam(r, "key"))
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	req, err := decodeRenderRequest(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	result, err := h.renderer.Render(r.Context(), m, req.images, req.texts, req.args)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	writeImage(w, result)
}

// Preview renders a template with sample inputs. The optional "args" query
// parameter is a JSON object of template args; such previews bypass the
// cache.
func (h *MemeHandlers) Preview(w http.ResponseWriter, r *http.Request) {
	m, err := h.registry.Lookup(chi.URLParam(r, "key"))
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	args, err := previewArgs(r)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}

	result, err := h.renderer.Preview(r.Context(), m, args)
	if err != nil {
		apperrors.RespondWithError(w, r, err)
		return
	}
	switch {
	case len(args) > 0:
		w.Header().Set(PreviewCacheHeader, "bypass")
	case result.Cached:
		w.Header().Set(PreviewCacheHeader, "hit")
	default:
		w.Header().Set(PreviewCacheHeader, "miss")
	}
	writeImage(w, result)
}

func previewArgs(r *http.Request) (map[string]any, error) {
	raw := strings.TrimSpace(r.URL.Query().Get("args"))
	if raw == "" {
		return nil, nil
	}
	var args map[string]any
	if err := json.Unmarshal([]byte(raw), &args); err != nil {
		return nil, apperrors.WrapInvalidInput(r.Context(), err, "args must be a JSON object")
	}
	return args, nil
}

func writeImage(w http.ResponseWriter, result render.Result) {
	w.Header().Set("Content-Type", result.ContentType)
	w.Header().Set("Content-Length", strconv.Itoa(len(result.Data)))
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(result.Data)
}

type renderInput struct {
	images [][]byte
	texts  []string
	args   map[string]any
}

func decodeRenderRequest(r *http.Request) (renderInput, error) {
	mediaType := "application/json"
	if ct := r.Header.Get("Content-Type"); ct != "" {
		parsed, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return renderInput{}, apperrors.WrapInvalidInput(r.Context(), err, "invalid Content-Type")
		}
		mediaType = parsed
	}

	switch mediaType {
	case "multipart/form-data":
		return decodeMultipart(r)
	case "application/json":
		return decodeJSON(r)
	default:
		return renderInput{}, apperrors.NewInvalidInputError(
			fmt.Sprintf("unsupported Content-Type %q; use multipart/form-data or application/json", mediaType))
	}
}

func decodeJSON(r *http.Request) (renderInput, error) {
	var body RenderRequest
	if r.Body != nil && r.Body != http.NoBody {
		if err := json.NewDecoder(r.Body).Decode(&body); err != nil && !stderrors.Is(err, io.EOF) {
			return renderInput{}, bodyError(r, err, "invalid JSON body")
		}
	}

	in := renderInput{texts: body.Texts, args: body.Args}
	for i, encoded := range body.Images {
		data, err := base64.StdEncoding.DecodeString(encoded)
		if err != nil {
			return renderInput{}, apperrors.WrapInvalidInput(r.Context(), err, fmt.Sprintf("images[%d] is not valid base64", i))
		}
		in.images = append(in.images, data)
	}
	return in, nil
}

func decodeMultipart(r *http.Request) (renderInput, error) {
	if err := r.ParseMultipartForm(multipartMemory); err != nil {
		return renderInput{}, bodyError(r, err, "invalid multipart body")
	}
	defer func() { _ = r.MultipartForm.RemoveAll() }()

	in := renderInput{texts: r.MultipartForm.Value["texts"]}
	for _, fh := range r.MultipartForm.File["images"] {
		f, err := fh.Open()
		if err != nil {
			return renderInput{}, apperrors.WrapInvalidInput(r.Context(), err, "unreadable image part "+fh.Filename)
		}
		data, err := io.ReadAll(f)
		_ = f.Close()
		if err != nil {
			return renderInput{}, apperrors.WrapInvalidInput(r.Context(), err, "unreadable image part "+fh.Filename)
		}
		in.images = append(in.images, data)
	}

	if raw := r.MultipartForm.Value["args"]; len(raw) > 0 && strings.TrimSpace(raw[0]) != "" {
		if err := json.Unmarshal([]byte(raw[0]), &in.args); err != nil {
			return renderInput{}, apperrors.WrapInvalidInput(r.Context(), err, "args must be a JSON object")
		}
	}
	return in, nil
}

func bodyError(r *http.Request, err error, message string) error {
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return apperrors.NewPayloadTooLargeError(
			fmt.Sprintf("request body exceeds %d bytes", tooLarge.Limit))
	}
	return apperrors.WrapInvalidInput(r.Context(), err, message)
}
