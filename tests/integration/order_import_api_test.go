package integration

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"mime/multipart"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"
	"time"

	"github.com/gin-gonic/gin"
	importapp "github.com/orderimport/backend/internal/application/import"
	orderapp "github.com/orderimport/backend/internal/application/order"
	"github.com/orderimport/backend/internal/domain/order"
	"github.com/orderimport/backend/internal/infrastructure/cache"
	"github.com/orderimport/backend/internal/infrastructure/persistence"
	"github.com/orderimport/backend/internal/infrastructure/storage"
	"github.com/orderimport/backend/internal/interfaces/http/dto"
	"github.com/orderimport/backend/internal/interfaces/http/handler"
	"github.com/orderimport/backend/internal/interfaces/http/middleware"
	"github.com/orderimport/backend/internal/interfaces/http/router"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
	"go.uber.org/zap/zaptest"
)

const importHeader = "OrderNumber,ShipToName,ShipToAddress1,ShipToCity,ShipToState,ShipToPostalCode,ShipToCountry,Sku,Quantity,RequestedWarehouse,OrderDate\n"

// apiServer is the full HTTP stack over a real database
type apiServer struct {
	engine  *gin.Engine
	orders  *persistence.GormOrderRepository
	archive *storage.MemoryObjectStorage
}

func newAPIServer(t *testing.T, testDB *TestDB) *apiServer {
	t.Helper()
	gin.SetMode(gin.TestMode)
	log := zaptest.NewLogger(t)

	orders := persistence.NewGormOrderRepository(testDB.DB, persistence.WithBatchSize(50))
	histories := persistence.NewGormImportHistoryRepository(testDB.DB)
	archive := storage.NewMemoryObjectStorage()
	store := cache.NewInMemoryIdempotencyStore()
	t.Cleanup(func() { _ = store.Close() })

	importService := importapp.NewOrderImportService(orders,
		importapp.WithLogger(log),
		importapp.WithHistoryRepository(histories),
		importapp.WithArchiveStorage(archive),
		importapp.WithIdempotencyStore(store, time.Hour),
	)

	middleware.SetupValidator()
	engine := gin.New()
	engine.Use(middleware.RequestID())
	router.Setup(engine, router.Handlers{
		Orders:  handler.NewOrderHandler(orderapp.NewOrderService(orders)),
		Import:  handler.NewOrderImportHandler(importService),
		History: handler.NewImportHistoryHandler(importapp.NewImportHistoryService(histories, importapp.WithArchive(archive, time.Minute))),
		System:  handler.NewSystemHandler("order-import", "test", testDB.SqlDB),
	}, []gin.HandlerFunc{middleware.BodyLimit(1 << 20)})

	return &apiServer{engine: engine, orders: orders, archive: archive}
}

func uploadRequest(t *testing.T, fileName, content string, headers map[string]string) *http.Request {
	t.Helper()
	var body bytes.Buffer
	mw := multipart.NewWriter(&body)
	part, err := mw.CreateFormFile("file", fileName)
	require.NoError(t, err)
	_, err = part.Write([]byte(content))
	require.NoError(t, err)
	require.NoError(t, mw.Close())

	req := httptest.NewRequest(http.MethodPost, "/api/v1/orders/import", &body)
	req.Header.Set("Content-Type", mw.FormDataContentType())
	for k, v := range headers {
		req.Header.Set(k, v)
	}
	return req
}

func (s *apiServer) serve(req *http.Request) *httptest.ResponseRecorder {
	w := httptest.NewRecorder()
	s.engine.ServeHTTP(w, req)
	return w
}

func (s *apiServer) upload(t *testing.T, fileName, content string, headers map[string]string) *httptest.ResponseRecorder {
	t.Helper()
	return s.serve(uploadRequest(t, fileName, content, headers))
}

func (s *apiServer) get(path string) *httptest.ResponseRecorder {
	return s.serve(httptest.NewRequest(http.MethodGet, path, nil))
}

func decode(t *testing.T, w *httptest.ResponseRecorder, out any) dto.Response {
	t.Helper()
	var resp dto.Response
	require.NoError(t, json.Unmarshal(w.Body.Bytes(), &resp), w.Body.String())
	if out != nil && resp.Data != nil {
		raw, err := json.Marshal(resp.Data)
		require.NoError(t, err)
		require.NoError(t, json.Unmarshal(raw, out))
	}
	return resp
}

func orderRow(number, quantity, date string) string {
	return fmt.Sprintf("%s,Jane Doe,1 Main St,Springfield,IL,62701,US,SKU-1,%s,WH1,%s\n", number, quantity, date)
}

func TestOrderImportAPI_EndToEnd(t *testing.T) {
	testDB := NewSharedTestDB(t)
	testDB.CleanTables()
	srv := newAPIServer(t, testDB)
	ctx := context.Background()

	var importID string

	t.Run("valid file is committed and archived", func(t *testing.T) {
		w := srv.upload(t, "orders.csv", importHeader+orderRow("E2E-1", "3", "2/29/2024")+orderRow("E2E-2", "1", ""), nil)

		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var result importapp.ImportResult
		decode(t, w, &result)
		assert.Equal(t, 2, result.ImportedCount)
		assert.NotEmpty(t, result.ArchiveKey)
		importID = result.ImportID.String()

		stored, err := srv.orders.FindByOrderNumber(ctx, "E2E-1")
		require.NoError(t, err)
		require.NotNil(t, stored.OrderDate)
		assert.Equal(t, "02/29/2024", *stored.OrderDate)

		archived, ok := srv.archive.Get(result.ArchiveKey)
		require.True(t, ok)
		assert.Contains(t, string(archived.Data), "E2E-2")
	})

	t.Run("order is readable through the API", func(t *testing.T) {
		w := srv.get("/api/v1/orders/number/E2E-2")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
	})

	t.Run("history links to the archived upload", func(t *testing.T) {
		w := srv.get("/api/v1/orders/import/history/" + importID + "/archive")
		require.Equal(t, http.StatusOK, w.Code, w.Body.String())
		var link importapp.ArchiveLink
		decode(t, w, &link)
		assert.True(t, strings.HasPrefix(link.URL, "memory://archive/"), link.URL)
	})

	t.Run("a stored order number rejects the next file entirely", func(t *testing.T) {
		w := srv.upload(t, "more.csv", importHeader+orderRow("E2E-3", "1", "")+orderRow("E2E-1", "1", ""), nil)

		require.Equal(t, http.StatusUnprocessableEntity, w.Code, w.Body.String())
		resp := decode(t, w, nil)
		require.Len(t, resp.Error.Details, 1)
		assert.Equal(t, "E2E-1", resp.Error.Details[0].OrderNumber)
		assert.Equal(t, []string{"OrderNumber E2E-1 already exists"}, resp.Error.Details[0].Messages)

		exists, err := srv.orders.ExistsByOrderNumber(ctx, "E2E-3")
		require.NoError(t, err)
		assert.False(t, exists)
	})

	t.Run("history records both outcomes", func(t *testing.T) {
		w := srv.get("/api/v1/orders/import/history?status=" + string(order.ImportStatusRejected))
		require.Equal(t, http.StatusOK, w.Code)
		var items []dto.ImportHistoryResponse
		decode(t, w, &items)
		require.Len(t, items, 1)
		assert.Equal(t, "more.csv", items[0].FileName)
	})

	t.Run("health reports the database", func(t *testing.T) {
		w := srv.get("/health")
		require.Equal(t, http.StatusOK, w.Code)
		assert.Contains(t, w.Body.String(), `"database":"ok"`)
	})
}

func TestOrderImportAPI_IdempotencyKey(t *testing.T) {
	testDB := NewSharedTestDB(t)
	testDB.CleanTables()
	srv := newAPIServer(t, testDB)
	headers := map[string]string{middleware.IdempotencyKeyHeader: "upload-42"}

	first := srv.upload(t, "orders.csv", importHeader+orderRow("IDEM-1", "1", ""), headers)
	require.Equal(t, http.StatusOK, first.Code, first.Body.String())

	second := srv.upload(t, "orders.csv", importHeader+orderRow("IDEM-2", "1", ""), headers)
	assert.Equal(t, http.StatusConflict, second.Code, second.Body.String())

	exists, err := srv.orders.ExistsByOrderNumber(context.Background(), "IDEM-2")
	require.NoError(t, err)
	assert.False(t, exists)
}

// Concurrent uploads of the same order numbers race past the existence
// check; the unique index makes exactly one of them win.
func TestOrderImportAPI_ConcurrentUploadsCommitOnce(t *testing.T) {
	testDB := NewSharedTestDB(t)
	testDB.CleanTables()
	srv := newAPIServer(t, testDB)

	var content strings.Builder
	content.WriteString(importHeader)
	for i := 1; i <= 50; i++ {
		content.WriteString(orderRow(fmt.Sprintf("RACE-%03d", i), "1", ""))
	}

	const uploads = 5
	reqs := make([]*http.Request, uploads)
	for i := range reqs {
		reqs[i] = uploadRequest(t, "race.csv", content.String(), nil)
	}

	codes := make([]int, uploads)
	var wg sync.WaitGroup
	for i, req := range reqs {
		wg.Add(1)
		go func() {
			defer wg.Done()
			codes[i] = srv.serve(req).Code
		}()
	}
	wg.Wait()

	succeeded := 0
	for _, code := range codes {
		switch code {
		case http.StatusOK:
			succeeded++
		case http.StatusConflict, http.StatusUnprocessableEntity:
		default:
			t.Errorf("unexpected status %d", code)
		}
	}
	assert.Equal(t, 1, succeeded)
	assert.Equal(t, int64(50), countOrders(t, srv.orders))
}
