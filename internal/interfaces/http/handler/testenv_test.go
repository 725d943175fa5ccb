package handler

import (
	"bytes"
	"encoding/json"
	"io"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/gin-gonic/gin"
	importapp "github.com/orderimport/backend/internal/application/import"
	orderapp "github.com/orderimport/backend/internal/application/order"
	"github.com/orderimport/backend/internal/infrastructure/persistence"
	"github.com/orderimport/backend/internal/infrastructure/persistence/models"
	"github.com/orderimport/backend/internal/interfaces/http/dto"
	"github.com/orderimport/backend/internal/interfaces/http/middleware"
	"github.com/stretchr/testify/require"
	"gorm.io/driver/sqlite"
	"gorm.io/gorm"
)

const validCSV = "OrderNumber,ShipToName,ShipToAddress1,ShipToCity,ShipToState,ShipToPostalCode,ShipToCountry,Sku,Quantity,RequestedWarehouse,OrderDate\n" +
	"ORDER1,Jane Doe,1 Main St,Springfield,IL,62701,US,SKU-1,2,WH1,1/5/2024\n" +
	"ORDER2,John Roe,2 Oak Ave,Portland,OR,97201,US,SKU-2,10,WH2,\n"

type testEnv struct {
	engine        *gin.Engine
	db            *gorm.DB
	orders        *persistence.GormOrderRepository
	histories     *persistence.GormImportHistoryRepository
	importService *importapp.OrderImportService
}

// newTestEnv wires the handlers over an in-memory sqlite database. A single
// connection keeps every statement on the same database.
func newTestEnv(t *testing.T, importOpts ...importapp.OrderImportServiceOption) *testEnv {
	t.Helper()

	db, err := gorm.Open(sqlite.Open(":memory:"), &gorm.Config{TranslateError: true})
	require.NoError(t, err)
	sqlDB, err := db.DB()
	require.NoError(t, err)
	sqlDB.SetMaxOpenConns(1)
	t.Cleanup(func() { _ = sqlDB.Close() })
	require.NoError(t, db.AutoMigrate(&models.OrderModel{}, &models.ImportHistoryModel{}))

	orders := persistence.NewGormOrderRepository(db)
	histories := persistence.NewGormImportHistoryRepository(db)

	opts := append([]importapp.OrderImportServiceOption{importapp.WithHistoryRepository(histories)}, importOpts...)
	importService := importapp.NewOrderImportService(orders, opts...)

	orderHandler := NewOrderHandler(orderapp.NewOrderService(orders))
	importHandler := NewOrderImportHandler(importService)
	historyHandler := NewImportHistoryHandler(importapp.NewImportHistoryService(histories))

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	api := engine.Group("/api/v1")
	api.POST("/orders", orderHandler.Create)
	api.GET("/orders", orderHandler.List)
	api.GET("/orders/:id", orderHandler.GetByID)
	api.PUT("/orders/:id", orderHandler.Update)
	api.DELETE("/orders/:id", orderHandler.Delete)
	api.GET("/orders/number/:order_number", orderHandler.GetByOrderNumber)
	api.POST("/orders/import", importHandler.Import)
	api.GET("/orders/import/template", importHandler.Template)
	historyHandler.RegisterRoutes(api)

	return &testEnv{
		engine:        engine,
		db:            db,
		orders:        orders,
		histories:     histories,
		importService: importService,
	}
}

func (e *testEnv) do(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	e.engine.ServeHTTP(w, req)
	return w
}

func (e *testEnv) doJSON(t *testing.T, method, path string, body any) *httptest.ResponseRecorder {
	t.Helper()
	var r io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		require.NoError(t, err)
		r = bytes.NewReader(data)
	}
	req := httptest.NewRequest(method, path, r)
	req.Header.Set("Content-Type", "application/json")
	return e.do(req)
}

func uploadRequest(t *testing.T, fileName string, content []byte) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write(content)
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	return req
}

// decodeResponse unmarshals the envelope and re-decodes Data into out
func decodeResponse(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp))
	if out != nil && resp.Data != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return resp
}
