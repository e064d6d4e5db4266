package handler

import (
	"testing"

	json "github.com/goccy/go-json"
	"github.com/valyala/fasthttp"

	"payroll-engine/internal/engine"
	"payroll-engine/internal/model"
	"payroll-engine/internal/params"
)

func serve(t *testing.T, method, uri, body string) (int, model.CalculationResponse) {
	t.Helper()

	h := New(engine.New(params.NewRegistry("")), nil)

	var ctx fasthttp.RequestCtx
	ctx.Request.Header.SetMethod(method)
	ctx.Request.SetRequestURI(uri)
	if body != "" {
		ctx.Request.Header.SetContentType("application/json")
		ctx.Request.SetBodyString(body)
	}

	h.Serve(&ctx)

	var resp model.CalculationResponse
	if err := json.Unmarshal(ctx.Response.Body(), &resp); err != nil {
		t.Fatalf("response is not JSON: %v (%q)", err, ctx.Response.Body())
	}
	if ct := string(ctx.Response.Header.ContentType()); ct != "application/json" {
		t.Fatalf("expected application/json, got %q", ct)
	}
	return ctx.Response.StatusCode(), resp
}

func TestCalculateSuccess(t *testing.T) {
	status, resp := serve(t, "POST", "/calculate", `{"mode":"gross_to_net","amount":"50000","cum_base":"0","employee_type":"normal_4a","year":"2026"}`)

	if status != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d", status)
	}
	if !resp.Success {
		t.Fatalf("expected success, got %q", resp.Error)
	}
	if _, err := model.ParseCalculationResult(resp.Data); err != nil {
		t.Fatalf("data contract: %v", err)
	}
}

func TestCalculateInvalidMode(t *testing.T) {
	status, resp := serve(t, "POST", "/calculate", `{"mode":"sideways","amount":"50000"}`)

	if status != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400, got %d", status)
	}
	if resp.Success || resp.Error != "invalid mode" {
		t.Fatalf("unexpected envelope %+v", resp)
	}
}

func TestCalculateRejectsBadBodies(t *testing.T) {
	tests := []struct {
		name   string
		method string
		body   string
		status int
	}{
		{"wrong method", "GET", "", fasthttp.StatusMethodNotAllowed},
		{"not json", "POST", "amount=5", fasthttp.StatusBadRequest},
		{"empty object", "POST", "{}", fasthttp.StatusBadRequest},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			status, resp := serve(t, tt.method, "/calculate", tt.body)
			if status != tt.status {
				t.Fatalf("expected %d, got %d", tt.status, status)
			}
			if resp.Success || resp.Error == "" {
				t.Fatalf("expected an error envelope, got %+v", resp)
			}
		})
	}
}

func TestAnnualEndpoint(t *testing.T) {
	status, resp := serve(t, "POST", "/calculate/annual", `{"mode":"gross_to_net","amount":60000}`)
	if status != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, resp.Error)
	}
	months, err := model.ParseAnnual(resp.Data)
	if err != nil {
		t.Fatal(err)
	}
	if len(months) != 12 {
		t.Fatalf("expected 12 months, got %d", len(months))
	}
}

func TestAnalyzeEndpoint(t *testing.T) {
	status, resp := serve(t, "POST", "/analyze", `{"gross":50000,"sgk":"6000","employee_type":"normal_4a"}`)
	if status != fasthttp.StatusOK {
		t.Fatalf("expected 200, got %d (%s)", status, resp.Error)
	}
	var report struct {
		Warnings []string `json:"warnings"`
	}
	if err := json.Unmarshal(resp.Data, &report); err != nil {
		t.Fatal(err)
	}
	if len(report.Warnings) == 0 {
		t.Fatal("expected a warning for the wrong SGK premium")
	}

	status, resp = serve(t, "POST", "/analyze", `{"employee_type":"normal_4a"}`)
	if status != fasthttp.StatusBadRequest || resp.Error != "at least one field must be filled" {
		t.Fatalf("expected 400 for an empty payslip, got %d %+v", status, resp)
	}
}

func TestParamsEndpoint(t *testing.T) {
	status, resp := serve(t, "GET", "/params?year=2026", "")
	if status != fasthttp.StatusOK || !resp.Success {
		t.Fatalf("expected params, got %d %+v", status, resp)
	}

	status, _ = serve(t, "GET", "/params?year=abc", "")
	if status != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 for a bad year, got %d", status)
	}

	status, _ = serve(t, "GET", "/params?year=1990", "")
	if status != fasthttp.StatusBadRequest {
		t.Fatalf("expected 400 for an unknown year, got %d", status)
	}
}

func TestUnknownPath(t *testing.T) {
	status, _ := serve(t, "GET", "/nope", "")
	if status != fasthttp.StatusNotFound {
		t.Fatalf("expected 404, got %d", status)
	}
}
