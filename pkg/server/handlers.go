package server

import (
	"context"
	"encoding/json"
	stderrors "errors"
	"io"
	"math"
	"mime"
	"net/http"
	"net/url"
	"strconv"
	"strings"

	"github.com/matzehuels/legalizer/pkg/buildinfo"
	"github.com/matzehuels/legalizer/pkg/errors"
	"github.com/matzehuels/legalizer/pkg/pipeline"
	"github.com/matzehuels/legalizer/pkg/placement"
)

// LegalizeResponse is the JSON body returned by POST /v1/legalize.
type LegalizeResponse struct {
	RunID     string            `json:"run_id"`
	Design    string            `json:"design"`
	CellWidth float64           `json:"cell_width"`
	Result    *placement.Result `json:"result"`
	Warnings  []string          `json:"warnings,omitempty"`
	Format    string            `json:"format"`
	Output    string            `json:"output"`
	Artifacts map[string][]byte `json:"artifacts,omitempty"`
	Cached    bool              `json:"cached"`
}

// CheckResponse is the JSON body returned by POST /v1/check.
type CheckResponse struct {
	*pipeline.CheckResult
	Legal bool `json:"legal"`
}

type errorDetail struct {
	Code    string `json:"code"`
	Message string `json:"message"`
}

type errorResponse struct {
	Error     errorDetail `json:"error"`
	RequestID string      `json:"request_id,omitempty"`
}

func (s *Server) handleHealth(w http.ResponseWriter, r *http.Request) {
	writeJSON(w, http.StatusOK, map[string]string{
		"status":  "ok",
		"version": buildinfo.Version,
	})
}

func (s *Server) handleLegalize(w http.ResponseWriter, r *http.Request) {
	q := r.URL.Query()
	opts, err := queryOptions(q)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	opts.Formats, err = queryList(q, "plot")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	raw, err := queryBool(q, "raw")
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	filename := q.Get("filename")
	if filename != "" {
		if err := errors.ValidatePath(filename); err != nil {
			s.writeError(w, r, err)
			return
		}
	}

	input, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	if opts.InputFormat == "" {
		opts.InputFormat = pipeline.DetectFormat(input)
	}
	outFormat := q.Get("format")
	if outFormat == "" {
		outFormat = opts.InputFormat
	}
	if err := pipeline.ValidateInputFormat(outFormat); err != nil {
		s.writeError(w, r, err)
		return
	}

	result, err := s.runner.Execute(r.Context(), input, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	out, err := pipeline.Encode(result.File, outFormat)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	if raw {
		w.Header().Set("X-Run-ID", result.RunID)
		if filename != "" {
			w.Header().Set("Content-Disposition", mime.FormatMediaType("attachment", map[string]string{"filename": filename}))
		}
		contentType := "text/plain; charset=utf-8"
		if outFormat == pipeline.InputJSON {
			contentType = "application/json"
		}
		w.Header().Set("Content-Type", contentType)
		w.WriteHeader(http.StatusOK)
		_, _ = w.Write(out)
		return
	}

	resp := LegalizeResponse{
		RunID:     result.RunID,
		Design:    result.File.Design.Name,
		CellWidth: result.CellWidth,
		Result:    result.Legalization,
		Format:    outFormat,
		Output:    string(out),
		Cached:    result.CacheInfo.LegalizeHit,
	}
	for _, warn := range result.Warnings {
		resp.Warnings = append(resp.Warnings, "skipped "+strconv.Quote(warn.Word)+" at offset "+strconv.Itoa(warn.Offset))
	}
	if len(result.Artifacts) > 0 {
		resp.Artifacts = result.Artifacts
	}
	writeJSON(w, http.StatusOK, resp)
}

func (s *Server) handleCheck(w http.ResponseWriter, r *http.Request) {
	opts, err := queryOptions(r.URL.Query())
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	input, err := s.readBody(w, r)
	if err != nil {
		s.writeError(w, r, err)
		return
	}

	check, err := s.runner.Check(r.Context(), input, opts)
	if err != nil {
		s.writeError(w, r, err)
		return
	}
	writeJSON(w, http.StatusOK, CheckResponse{CheckResult: check, Legal: check.Legal()})
}

// queryOptions reads the pipeline options shared by every route.
func queryOptions(q url.Values) (pipeline.Options, error) {
	var opts pipeline.Options
	var err error

	opts.InputFormat = q.Get("input")
	if opts.Workers, err = queryInt(q, "workers"); err != nil {
		return opts, err
	}
	for name, dst := range map[string]*float64{
		"sites":      &opts.Sites,
		"cell_width": &opts.CellWidth,
		"scale":      &opts.Scale,
	} {
		if *dst, err = queryFloat(q, name); err != nil {
			return opts, err
		}
	}
	for name, dst := range map[string]*bool{
		"labels":  &opts.Labels,
		"nets":    &opts.Nets,
		"moves":   &opts.Moves,
		"refresh": &opts.Refresh,
	} {
		if *dst, err = queryBool(q, name); err != nil {
			return opts, err
		}
	}
	return opts, nil
}

func queryInt(q url.Values, name string) (int, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	n, err := strconv.Atoi(v)
	if err != nil {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not an integer", name, v)
	}
	return n, nil
}

// queryFloat reads a finite number.
func queryFloat(q url.Values, name string) (float64, error) {
	v := q.Get(name)
	if v == "" {
		return 0, nil
	}
	f, err := strconv.ParseFloat(v, 64)
	if err != nil || math.IsNaN(f) || math.IsInf(f, 0) {
		return 0, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a number", name, v)
	}
	return f, nil
}

func queryBool(q url.Values, name string) (bool, error) {
	v := q.Get(name)
	if v == "" {
		return false, nil
	}
	b, err := strconv.ParseBool(v)
	if err != nil {
		return false, errors.New(errors.ErrCodeInvalidInput, "%s: %q is not a boolean", name, v)
	}
	return b, nil
}

// queryList accepts both repeated and comma-separated values.
func queryList(q url.Values, name string) ([]string, error) {
	var out []string
	for _, v := range q[name] {
		for _, f := range strings.Split(v, ",") {
			if f = strings.TrimSpace(f); f != "" {
				out = append(out, f)
			}
		}
	}
	return out, pipeline.ValidateFormats(out)
}

func (s *Server) readBody(w http.ResponseWriter, r *http.Request) ([]byte, error) {
	data, err := io.ReadAll(http.MaxBytesReader(w, r.Body, s.maxBody))
	var tooLarge *http.MaxBytesError
	if stderrors.As(err, &tooLarge) {
		return nil, errTooLarge{limit: tooLarge.Limit}
	}
	if err != nil {
		return nil, errors.Wrap(errors.ErrCodeInvalidInput, err, "read body")
	}
	if len(data) == 0 {
		return nil, errors.New(errors.ErrCodeInvalidInput, "empty request body")
	}
	return data, nil
}

type errTooLarge struct{ limit int64 }

func (e errTooLarge) Error() string {
	return "request body exceeds " + strconv.FormatInt(e.limit, 10) + " bytes"
}

func (s *Server) writeError(w http.ResponseWriter, r *http.Request, err error) {
	var tooLarge errTooLarge
	if stderrors.As(err, &tooLarge) {
		writeJSON(w, http.StatusRequestEntityTooLarge, errorBody(r, "BODY_TOO_LARGE", err.Error()))
		return
	}
	// middleware.Timeout answers 504 itself.
	if stderrors.Is(err, context.DeadlineExceeded) {
		return
	}

	code := errors.GetCode(err)
	if code == "" {
		code = errors.ErrCodeInternal
	}
	status := errors.HTTPStatus(code)
	if status >= http.StatusInternalServerError {
		s.logger.Error("request failed", "id", RequestID(r.Context()), "err", err)
	}
	writeJSON(w, status, errorBody(r, string(code), errors.UserMessage(err)))
}

func errorBody(r *http.Request, code, message string) errorResponse {
	return errorResponse{
		Error:     errorDetail{Code: code, Message: message},
		RequestID: RequestID(r.Context()),
	}
}

func writeJSON(w http.ResponseWriter, status int, v any) {
	w.Header().Set("Content-Type", "application/json")
	w.WriteHeader(status)
	enc := json.NewEncoder(w)
	enc.SetIndent("", "  ")
	_ = enc.Encode(v)
}
