package web_test

import (
	"context"
	"encoding/json"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/shopspring/decimal"
	"github.com/sirupsen/logrus"

	web "github.com/fahmi-blip/data-barang-sub000/internal/adapters/web"
	"github.com/fahmi-blip/data-barang-sub000/internal/ai"
	"github.com/fahmi-blip/data-barang-sub000/internal/app"
	"github.com/fahmi-blip/data-barang-sub000/internal/core"
)

// stubService implements app.ApplicationService with overridable funcs so
// each test case controls only the endpoints it touches.
type stubService struct {
	getItem         func(ctx context.Context, itemID int64) (*core.Item, error)
	createSale      func(ctx context.Context, req app.CreateSaleRequest) (*app.SaleResult, error)
	createReceiving func(ctx context.Context, req app.CreateReceivingRequest) (*app.ReceivingResult, error)
	stockLevels     func(ctx context.Context) (*app.StockResult, error)
	interpret       func(ctx context.Context, note string) (*app.AIResult, error)
}

func (s *stubService) CreateItem(ctx context.Context, req app.CreateItemRequest) (*core.Item, error) {
	return nil, nil
}
func (s *stubService) UpdateItem(ctx context.Context, itemID int64, req app.CreateItemRequest) (*core.Item, error) {
	return nil, nil
}
func (s *stubService) GetItem(ctx context.Context, itemID int64) (*core.Item, error) {
	return s.getItem(ctx, itemID)
}
func (s *stubService) ListItems(ctx context.Context) ([]core.Item, error)  { return nil, nil }
func (s *stubService) CreateUnit(ctx context.Context, name string) (*core.Unit, error) {
	return nil, nil
}
func (s *stubService) ListUnits(ctx context.Context) ([]core.Unit, error) { return nil, nil }
func (s *stubService) CreateVendor(ctx context.Context, req app.CreateVendorRequest) (*core.Vendor, error) {
	return nil, nil
}
func (s *stubService) GetVendor(ctx context.Context, vendorID int64) (*core.Vendor, error) {
	return nil, nil
}
func (s *stubService) ListVendors(ctx context.Context) ([]core.Vendor, error) { return nil, nil }
func (s *stubService) CreateMarginPolicy(ctx context.Context, percentage decimal.Decimal) (*core.MarginPolicy, error) {
	return nil, nil
}
func (s *stubService) GetMarginPolicy(ctx context.Context, policyID int64) (*core.MarginPolicy, error) {
	return nil, nil
}
func (s *stubService) ListMarginPolicies(ctx context.Context) ([]core.MarginPolicy, error) {
	return nil, nil
}
func (s *stubService) PreviewSale(ctx context.Context, req app.CreateSaleRequest) (*core.SalePreview, error) {
	return nil, nil
}
func (s *stubService) CreateProcurement(ctx context.Context, req app.CreateProcurementRequest) (*app.ProcurementResult, error) {
	return nil, nil
}
func (s *stubService) GetProcurement(ctx context.Context, orderID int64) (*app.ProcurementResult, error) {
	return nil, nil
}
func (s *stubService) ListProcurements(ctx context.Context) (*app.ProcurementListResult, error) {
	return nil, nil
}
func (s *stubService) CreateReceiving(ctx context.Context, req app.CreateReceivingRequest) (*app.ReceivingResult, error) {
	return s.createReceiving(ctx, req)
}
func (s *stubService) GetReceiving(ctx context.Context, receivingID int64) (*app.ReceivingResult, error) {
	return nil, nil
}
func (s *stubService) ListReceivings(ctx context.Context) (*app.ReceivingListResult, error) {
	return nil, nil
}
func (s *stubService) CreateSale(ctx context.Context, req app.CreateSaleRequest) (*app.SaleResult, error) {
	return s.createSale(ctx, req)
}
func (s *stubService) GetSale(ctx context.Context, saleID int64) (*app.SaleResult, error) {
	return nil, nil
}
func (s *stubService) ListSales(ctx context.Context) (*app.SaleListResult, error) { return nil, nil }
func (s *stubService) GetItemLedger(ctx context.Context, itemID int64) (*app.LedgerResult, error) {
	return nil, nil
}
func (s *stubService) GetLedger(ctx context.Context) (*app.LedgerResult, error) { return nil, nil }
func (s *stubService) GetStockLevels(ctx context.Context) (*app.StockResult, error) {
	return s.stockLevels(ctx)
}
func (s *stubService) InterpretStockNote(ctx context.Context, note string) (*app.AIResult, error) {
	return s.interpret(ctx, note)
}

func newTestServer(svc *stubService) *httptest.Server {
	log := logrus.New()
	log.SetOutput(io.Discard)
	return httptest.NewServer(web.NewHandler(svc, "", log))
}

func decodeBody(t *testing.T, resp *http.Response, v any) {
	t.Helper()
	defer resp.Body.Close()
	if err := json.NewDecoder(resp.Body).Decode(v); err != nil {
		t.Fatalf("decode response: %v", err)
	}
}

func TestHealth(t *testing.T) {
	srv := newTestServer(&stubService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/health")
	if err != nil {
		t.Fatalf("GET /api/health: %v", err)
	}
	if resp.StatusCode != http.StatusOK {
		t.Errorf("expected 200, got %d", resp.StatusCode)
	}
	var body struct {
		Status string `json:"status"`
	}
	decodeBody(t, resp, &body)
	if body.Status != "ok" {
		t.Errorf("expected status ok, got %q", body.Status)
	}
	if resp.Header.Get("X-Request-ID") == "" {
		t.Error("expected X-Request-ID header")
	}
}

func TestGetItem_NotFoundMapsTo404(t *testing.T) {
	svc := &stubService{
		getItem: func(ctx context.Context, itemID int64) (*core.Item, error) {
			return nil, &core.NotFoundError{Entity: "item", ID: itemID}
		},
	}
	srv := newTestServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/items/42")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	if resp.StatusCode != http.StatusNotFound {
		t.Errorf("expected 404, got %d", resp.StatusCode)
	}
	var body struct {
		Code string `json:"code"`
	}
	decodeBody(t, resp, &body)
	if body.Code != "NOT_FOUND" {
		t.Errorf("expected code NOT_FOUND, got %q", body.Code)
	}
}

func TestGetItem_BadIDMapsTo400(t *testing.T) {
	srv := newTestServer(&stubService{})
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/items/banana")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateSale_Created(t *testing.T) {
	svc := &stubService{
		createSale: func(ctx context.Context, req app.CreateSaleRequest) (*app.SaleResult, error) {
			if req.MarginPolicyID != 1 || len(req.Lines) != 1 {
				t.Errorf("unexpected request: %+v", req)
			}
			if !req.Lines[0].Quantity.Equal(decimal.NewFromInt(4)) {
				t.Errorf("expected quantity 4, got %s", req.Lines[0].Quantity)
			}
			return &app.SaleResult{Sale: &core.SalesOrder{
				ID:       7,
				Subtotal: decimal.NewFromInt(4800),
				Tax:      decimal.NewFromInt(528),
				Total:    decimal.NewFromInt(5328),
			}}, nil
		},
	}
	srv := newTestServer(svc)
	defer srv.Close()

	payload := `{"cashier_id":1,"margin_policy_id":1,"lines":[{"item_id":1,"quantity":"4"}]}`
	resp, err := http.Post(srv.URL+"/api/sales", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusCreated {
		t.Errorf("expected 201, got %d", resp.StatusCode)
	}
	var sale core.SalesOrder
	decodeBody(t, resp, &sale)
	if sale.ID != 7 {
		t.Errorf("expected sale id 7, got %d", sale.ID)
	}
	if !sale.Total.Equal(decimal.NewFromInt(5328)) {
		t.Errorf("expected total 5328, got %s", sale.Total)
	}
}

func TestCreateSale_MissingLinesMapsTo400(t *testing.T) {
	srv := newTestServer(&stubService{})
	defer srv.Close()

	payload := `{"cashier_id":1,"margin_policy_id":1,"lines":[]}`
	resp, err := http.Post(srv.URL+"/api/sales", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusBadRequest {
		t.Errorf("expected 400, got %d", resp.StatusCode)
	}
}

func TestCreateReceiving_ReconciliationMapsTo409(t *testing.T) {
	svc := &stubService{
		createReceiving: func(ctx context.Context, req app.CreateReceivingRequest) (*app.ReceivingResult, error) {
			return nil, &core.ReconciliationError{
				OrderID:  req.OrderID,
				ItemID:   1,
				ItemName: "Beras Premium",
				Expected: decimal.NewFromInt(10),
				Received: decimal.NewFromInt(8),
			}
		},
	}
	srv := newTestServer(svc)
	defer srv.Close()

	payload := `{"order_id":3,"receiver_id":1,"lines":[{"item_id":1,"quantity":"8","unit_price":"1000"}]}`
	resp, err := http.Post(srv.URL+"/api/receivings", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusConflict {
		t.Errorf("expected 409, got %d", resp.StatusCode)
	}
	var body struct {
		Code  string `json:"code"`
		Error string `json:"error"`
	}
	decodeBody(t, resp, &body)
	if body.Code != "RECONCILIATION_ERROR" {
		t.Errorf("expected code RECONCILIATION_ERROR, got %q", body.Code)
	}
	if !strings.Contains(body.Error, "Beras Premium") {
		t.Errorf("expected item name in error, got %q", body.Error)
	}
}

func TestInterpret_DisabledMapsTo503(t *testing.T) {
	svc := &stubService{
		interpret: func(ctx context.Context, note string) (*app.AIResult, error) {
			return nil, app.ErrAssistantDisabled
		},
	}
	srv := newTestServer(svc)
	defer srv.Close()

	payload := `{"note":"terima 10 beras"}`
	resp, err := http.Post(srv.URL+"/api/ai/interpret", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusServiceUnavailable {
		t.Errorf("expected 503, got %d", resp.StatusCode)
	}
}

func TestInterpret_ClarificationMapsTo422(t *testing.T) {
	svc := &stubService{
		interpret: func(ctx context.Context, note string) (*app.AIResult, error) {
			return &app.AIResult{Draft: &ai.DraftAction{
				Kind:       ai.DraftClarification,
				Message:    "Which vendor supplied the rice?",
				Confidence: 0.4,
			}}, nil
		},
	}
	srv := newTestServer(svc)
	defer srv.Close()

	payload := `{"note":"terima beras"}`
	resp, err := http.Post(srv.URL+"/api/ai/interpret", "application/json", strings.NewReader(payload))
	if err != nil {
		t.Fatalf("POST: %v", err)
	}
	if resp.StatusCode != http.StatusUnprocessableEntity {
		t.Errorf("expected 422, got %d", resp.StatusCode)
	}
	var draft ai.DraftAction
	decodeBody(t, resp, &draft)
	if draft.Kind != ai.DraftClarification {
		t.Errorf("expected clarification draft, got %s", draft.Kind)
	}
}

func TestStockLevels_StorageErrorMapsTo500(t *testing.T) {
	svc := &stubService{
		stockLevels: func(ctx context.Context) (*app.StockResult, error) {
			return nil, &core.StorageError{Op: "query stock levels", Err: context.DeadlineExceeded}
		},
	}
	srv := newTestServer(svc)
	defer srv.Close()

	resp, err := http.Get(srv.URL + "/api/stock/levels")
	if err != nil {
		t.Fatalf("GET: %v", err)
	}
	resp.Body.Close()
	if resp.StatusCode != http.StatusInternalServerError {
		t.Errorf("expected 500, got %d", resp.StatusCode)
	}
}
