package inference

import (
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"strings"
	"time"

	"github.com/dmitrijs2005/medigenie/internal/client/models"
	"github.com/dmitrijs2005/medigenie/internal/common"
	"github.com/dmitrijs2005/medigenie/internal/logging"
	"github.com/go-resty/resty/v2"
	"github.com/google/uuid"
)

const DefaultTimeout = 45 * time.Second

type GeminiOptions struct {
	BaseURL   string
	APIKey    string
	Model     string
	MapsModel string
	Timeout   time.Duration
}

// GeminiClient calls the generateContent REST endpoint. It never retries;
// every call is bounded by Timeout.
type GeminiClient struct {
	http      *resty.Client
	model     string
	mapsModel string
	timeout   time.Duration
	logger    logging.Logger
}

func NewGeminiClient(o GeminiOptions, logger logging.Logger) *GeminiClient {
	if o.Timeout <= 0 {
		o.Timeout = DefaultTimeout
	}
	if o.MapsModel == "" {
		o.MapsModel = o.Model
	}
	if logger == nil {
		logger = logging.Nop()
	}

	client := resty.New().
		SetBaseURL(strings.TrimRight(o.BaseURL, "/")).
		SetTimeout(o.Timeout).
		SetRetryCount(0).
		SetHeader("Content-Type", "application/json").
		SetHeader("Accept", "application/json").
		SetHeader("x-goog-api-key", o.APIKey)

	return &GeminiClient{
		http:      client,
		model:     o.Model,
		mapsModel: o.MapsModel,
		timeout:   o.Timeout,
		logger:    logger.With("component", "gemini"),
	}
}

func unavailable(format string, args ...any) error {
	return fmt.Errorf("%w: %s", common.ErrInferenceUnavailable, fmt.Sprintf(format, args...))
}

func (c *GeminiClient) modelFor(req Request) string {
	switch {
	case req.Model != "":
		return req.Model
	case req.Tools.MapsSearch != nil:
		return c.mapsModel
	default:
		return c.model
	}
}

func buildRequest(req Request) (generateRequest, error) {
	out := generateRequest{Contents: make([]wireContent, 0, len(req.Messages))}

	instruction := req.SystemInstruction
	if req.ResponseSchema != nil {
		if req.Tools.Any() {
			// Tools and a response schema cannot be combined on the
			// endpoint, so the schema travels in the instruction.
			schema, err := json.Marshal(req.ResponseSchema)
			if err != nil {
				return out, err
			}
			instruction = strings.TrimSpace(instruction + "\nReturn ONLY a JSON document matching this schema, without markdown: " + string(schema))
		} else {
			out.GenerationConfig = &wireGenerationConfig{
				ResponseMimeType: "application/json",
				ResponseSchema:   req.ResponseSchema,
			}
		}
	}
	if instruction != "" {
		out.SystemInstruction = &wireContent{Parts: []wirePart{{Text: instruction}}}
	}

	for _, m := range req.Messages {
		wc := wireContent{Role: string(m.Role), Parts: make([]wirePart, 0, len(m.Parts))}
		if wc.Role == "" {
			wc.Role = string(RoleUser)
		}
		for _, p := range m.Parts {
			if p.Inline != nil {
				wc.Parts = append(wc.Parts, wirePart{InlineData: &wireInlineData{MimeType: p.Inline.MimeType, Data: p.Inline.Data}})
				continue
			}
			wc.Parts = append(wc.Parts, wirePart{Text: p.Text})
		}
		out.Contents = append(out.Contents, wc)
	}

	if req.Tools.WebSearch {
		out.Tools = append(out.Tools, wireTool{GoogleSearch: &struct{}{}})
	}
	if ll := req.Tools.MapsSearch; ll != nil {
		out.Tools = append(out.Tools, wireTool{GoogleMaps: &struct{}{}})
		tc := &wireToolConfig{}
		tc.RetrievalConfig.LatLng = wireLatLng{Latitude: ll.Latitude, Longitude: ll.Longitude}
		out.ToolConfig = tc
	}
	return out, nil
}

func (c *GeminiClient) Generate(ctx context.Context, req Request) (Response, error) {
	body, err := buildRequest(req)
	if err != nil {
		return Response{}, fmt.Errorf("build request: %w", err)
	}

	ctx, cancel := context.WithTimeout(ctx, c.timeout)
	defer cancel()

	model := c.modelFor(req)
	requestID := uuid.NewString()
	log := c.logger.With("request_id", requestID, "model", model)
	started := time.Now()

	var result generateResponse
	var apiErr errorResponse
	resp, err := c.http.R().
		SetContext(ctx).
		SetHeader(common.RequestIDHeaderName, requestID).
		SetPathParam("model", model).
		SetBody(body).
		SetResult(&result).
		SetError(&apiErr).
		Post("/models/{model}:generateContent")

	if err != nil {
		log.Warn(ctx, "inference call failed", "error", err, "elapsed", time.Since(started))
		if ctxErr := ctx.Err(); ctxErr != nil {
			return Response{}, fmt.Errorf("%w: %w", common.ErrInferenceUnavailable, ctxErr)
		}
		return Response{}, fmt.Errorf("%w: %w", common.ErrInferenceUnavailable, err)
	}
	if resp.IsError() {
		log.Warn(ctx, "inference call rejected", "status", resp.StatusCode(), "message", apiErr.Error.Message)
		msg := apiErr.Error.Message
		if msg == "" {
			msg = resp.Status()
		}
		return Response{}, unavailable("status %d: %s", resp.StatusCode(), msg)
	}

	out, err := decodeResponse(result)
	if err != nil {
		log.Warn(ctx, "inference returned no content", "error", err)
		return Response{}, err
	}

	log.Debug(ctx, "inference call done", "elapsed", time.Since(started), "sources", len(out.GroundingReferences))
	return out, nil
}

func decodeResponse(r generateResponse) (Response, error) {
	if r.PromptFeedback != nil && r.PromptFeedback.BlockReason != "" {
		return Response{}, unavailable("prompt blocked: %s", r.PromptFeedback.BlockReason)
	}
	if len(r.Candidates) == 0 {
		return Response{}, unavailable("no candidates returned")
	}

	cand := r.Candidates[0]
	var sb strings.Builder
	for _, p := range cand.Content.Parts {
		sb.WriteString(p.Text)
	}

	out := Response{Text: sb.String()}
	if cand.Grounding != nil {
		seen := map[string]bool{}
		for _, ch := range cand.Grounding.Chunks {
			var src models.GroundingSource
			switch {
			case ch.Web != nil:
				src = models.GroundingSource{Title: ch.Web.Title, URI: ch.Web.URI}
			case ch.Maps != nil:
				src = models.GroundingSource{Title: ch.Maps.Title, URI: ch.Maps.URI}
			default:
				continue
			}
			if src.URI == "" || seen[src.URI] {
				continue
			}
			seen[src.URI] = true
			out.GroundingReferences = append(out.GroundingReferences, src)
		}
	}

	if out.Text == "" && cand.FinishReason != "" && cand.FinishReason != "STOP" {
		return Response{}, unavailable("generation stopped: %s", cand.FinishReason)
	}
	return out, nil
}

// IsUnavailable reports whether err is a transport-level inference failure.
func IsUnavailable(err error) bool {
	return errors.Is(err, common.ErrInferenceUnavailable)
}
