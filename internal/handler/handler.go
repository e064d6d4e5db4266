package handler

import (
	"strconv"
	"time"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"
	"go.uber.org/zap"

	"payroll-engine/internal/engine"
	"payroll-engine/internal/model"
)

// Handler serves the calculation endpoints.
type Handler struct {
	engine *engine.Engine
	log    *zap.Logger
}

func New(e *engine.Engine, log *zap.Logger) *Handler {
	if log == nil {
		log = zap.NewNop()
	}
	return &Handler{engine: e, log: log}
}

// Serve routes a request. It is a fasthttp.RequestHandler.
func (h *Handler) Serve(ctx *fasthttp.RequestCtx) {
	start := time.Now()

	switch string(ctx.Path()) {
	case "/calculate":
		h.handleCalculate(ctx, h.engine.Process)
	case "/calculate/annual":
		h.handleCalculate(ctx, h.engine.ProcessAnnual)
	case "/analyze":
		h.handleCalculate(ctx, h.engine.Analyze)
	case "/params":
		h.handleParams(ctx)
	default:
		writeError(ctx, fasthttp.StatusNotFound, "not found")
	}

	h.log.Info("request",
		zap.ByteString("method", ctx.Method()),
		zap.ByteString("path", ctx.Path()),
		zap.Int("status", ctx.Response.StatusCode()),
		zap.Duration("elapsed", time.Since(start)))
}

func (h *Handler) handleCalculate(ctx *fasthttp.RequestCtx, process func(model.CalculationRequest) (*model.CalculationResponse, error)) {
	if !ctx.IsPost() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
		return
	}

	var req model.CalculationRequest
	if err := json.Unmarshal(ctx.PostBody(), &req); err != nil {
		writeError(ctx, fasthttp.StatusBadRequest, "invalid request body: "+err.Error())
		return
	}
	if len(req) == 0 {
		writeError(ctx, fasthttp.StatusBadRequest, "request has no fields")
		return
	}

	resp, err := process(req)
	if err != nil {
		h.writeProcessError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (h *Handler) handleParams(ctx *fasthttp.RequestCtx) {
	if !ctx.IsGet() {
		writeError(ctx, fasthttp.StatusMethodNotAllowed, "method not allowed")
		return
	}

	year := engine.DefaultYear
	if raw := ctx.QueryArgs().Peek("year"); len(raw) > 0 {
		y, err := strconv.Atoi(string(raw))
		if err != nil {
			writeError(ctx, fasthttp.StatusBadRequest, "invalid year "+strconv.Quote(string(raw)))
			return
		}
		year = y
	}

	resp, err := h.engine.Params(year)
	if err != nil {
		h.writeProcessError(ctx, err)
		return
	}
	writeJSON(ctx, fasthttp.StatusOK, resp)
}

func (h *Handler) writeProcessError(ctx *fasthttp.RequestCtx, err error) {
	if engine.IsValidation(err) {
		writeError(ctx, fasthttp.StatusBadRequest, err.Error())
		return
	}
	h.log.Error("calculation failed", zap.Error(err))
	writeError(ctx, fasthttp.StatusInternalServerError, err.Error())
}

func writeJSON(ctx *fasthttp.RequestCtx, status int, v any) {
	body, err := json.Marshal(v)
	if err != nil {
		ctx.Error(`{"success":false,"error":"encode response"}`, fasthttp.StatusInternalServerError)
		return
	}
	ctx.SetContentType("application/json")
	ctx.SetStatusCode(status)
	ctx.SetBody(body)
}

func writeError(ctx *fasthttp.RequestCtx, status int, message string) {
	writeJSON(ctx, status, model.Failure(message))
}
