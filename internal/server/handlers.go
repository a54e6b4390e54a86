package server

import (
	"encoding/json"
	"errors"
	"mime"
	"net/http"
	"strconv"

	"github.com/matzehuels/stacklane/pkg/buildinfo"
	"github.com/matzehuels/stacklane/pkg/cache"
	errs "github.com/matzehuels/stacklane/pkg/errors"
	"github.com/matzehuels/stacklane/pkg/pipeline"
	"github.com/matzehuels/stacklane/pkg/timeline"
)

// Response headers.
const (
	HeaderLayoutHash = "X-Layout-Hash"
	HeaderCache      = "X-Cache"
)

var contentTypes = map[string]string{
	pipeline.FormatSVG:     "image/svg+xml",
	pipeline.FormatPNG:     "image/png",
	pipeline.FormatPDF:     "application/pdf",
	pipeline.FormatJSON:    "application/json",
	pipeline.FormatDOT:     "text/vnd.graphviz; charset=utf-8",
	pipeline.FormatOverlap: "image/svg+xml",
}

// errorResponse is the body of every non-2xx response.
type errorResponse struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleLayout(w http.ResponseWriter, r *http.Request) {
	doc, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	l, hit, err := s.runner.ComputeLayoutWithCacheInfo(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	data, err := timeline.MarshalLayout(l)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	hash, err := cache.HashJSON(l)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	setCacheHeaders(w, hash, hit)
	w.Header().Set("Content-Type", contentTypes[pipeline.FormatJSON])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(data)
}

func (s *Server) handleRender(w http.ResponseWriter, r *http.Request) {
	formats, err := pipeline.ParseFormats(r.URL.Query().Get("format"))
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	switch len(formats) {
	case 0:
		formats = []string{pipeline.FormatSVG}
	case 1:
	default:
		s.writeError(w, r, errs.New(errs.ErrCodeInvalidArgument, "render takes exactly one format, got %d", len(formats)))
		return
	}

	doc, err := s.readDocument(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts, err := s.requestOptions(r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats = formats

	res, err := s.runner.Execute(r.Context(), doc, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	format := formats[0]
	setCacheHeaders(w, res.LayoutHash, res.CacheInfo.LayoutHit && res.CacheInfo.RenderHit)
	w.Header().Set("Content-Type", contentTypes[format])
	w.WriteHeader(http.StatusOK)
	_, _ = w.Write(res.Artifacts[format])
}

// readDocument decodes the request body as a timeline document. The body
// format follows Content-Type; JSON is assumed when it is absent.
func (s *Server) readDocument(w http.ResponseWriter, r *http.Request) (*timeline.Document, error) {
	format := timeline.FormatJSON
	if ct := r.Header.Get("Content-Type"); ct != "" {
		mt, _, err := mime.ParseMediaType(ct)
		if err != nil {
			return nil, errs.Wrap(errs.ErrCodeInvalidFormat, err, "invalid content type %q", ct)
		}
		switch mt {
		case "application/json", "text/json":
			format = timeline.FormatJSON
		case "application/yaml", "application/x-yaml", "text/yaml":
			format = timeline.FormatYAML
		case "application/toml", "text/toml":
			format = timeline.FormatTOML
		default:
			return nil, errs.New(errs.ErrCodeInvalidFormat, "unsupported content type %q", mt)
		}
	}

	body := http.MaxBytesReader(w, r.Body, s.opts.MaxBodyBytes)
	defer body.Close()
	return timeline.Read(body, format)
}

// requestOptions overlays query parameters on the server defaults.
func (s *Server) requestOptions(r *http.Request) (pipeline.Options, error) {
	opts := s.opts.Defaults
	opts.Formats = nil
	if opts.LaneMargin != nil {
		m := *opts.LaneMargin
		opts.LaneMargin = &m
	}
	q := r.URL.Query()

	floats := []struct {
		name string
		dst  *float64
	}{
		{"width", &opts.Width},
		{"height", &opts.Height},
		{"scale", &opts.Scale},
	}
	for _, f := range floats {
		if v := q.Get(f.name); v != "" {
			n, err := strconv.ParseFloat(v, 64)
			if err != nil {
				return opts, errs.New(errs.ErrCodeInvalidArgument, "invalid %s: %q", f.name, v)
			}
			*f.dst = n
		}
	}
	if v := q.Get("margin"); v != "" {
		n, err := strconv.ParseFloat(v, 64)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidArgument, "invalid margin: %q", v)
		}
		opts.LaneMargin = &n
	}
	if v := q.Get("label_every"); v != "" {
		n, err := strconv.Atoi(v)
		if err != nil {
			return opts, errs.New(errs.ErrCodeInvalidArgument, "invalid label_every: %q", v)
		}
		opts.LabelEvery = n
	}
	if v := q.Get("unit"); v != "" {
		opts.Unit = v
	}
	if v := q.Get("epoch"); v != "" {
		opts.Epoch = v
	}

	bools := []struct {
		name string
		dst  *bool
	}{
		{"refresh", &opts.Refresh},
		{"no_axis", &opts.NoAxis},
		{"cluster", &opts.ClusterLanes},
	}
	for _, b := range bools {
		if v := q.Get(b.name); v != "" {
			on, err := strconv.ParseBool(v)
			if err != nil {
				return opts, errs.New(errs.ErrCodeInvalidArgument, "invalid %s: %q", b.name, v)
			}
			*b.dst = on
		}
	}
	return opts, nil
}

func setCacheHeaders(w http.ResponseWriter, layoutHash string, hit bool) {
	w.Header().Set(HeaderLayoutHash, layoutHash)
	if hit {
		w.Header().Set(HeaderCache, "hit")
	} else {
		w.Header().Set(HeaderCache, "miss")
	}
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	status := errs.HTTPStatus(err)
	code := string(errs.GetCode(err))

	var tooLarge *http.MaxBytesError
	switch {
	case errors.As(err, &tooLarge):
		status = http.StatusRequestEntityTooLarge
		code = string(errs.ErrCodeInvalidInput)
		err = errs.New(errs.ErrCodeInvalidInput, "request body exceeds %d bytes", tooLarge.Limit)
	case code == "":
		code = string(errs.ErrCodeInternal)
	}

	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "err", err, "request_id", RequestIDFromContext(r.Context()))
	} else {
		s.logger.Debug("request rejected", "code", code, "err", err)
	}
	writeJSON(w, status, errorResponse{Code: code, Message: errs.UserMessage(err)})
}

func writeJSON(w http.ResponseWriter, status int, data any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	_ = json.NewEncoder(w).Encode(data)
}
