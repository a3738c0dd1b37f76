package api_test

import (
	"context"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"strings"
	"sync"
	"testing"

	"github.com/UnknownOlympus/athena/internal/api"
	"github.com/UnknownOlympus/athena/internal/metrics"
	"github.com/UnknownOlympus/athena/internal/models"
	"github.com/UnknownOlympus/athena/internal/repository"
	"github.com/UnknownOlympus/athena/internal/services/employees"
	mocks "github.com/UnknownOlympus/athena/mock"
	"github.com/google/uuid"
	"github.com/prometheus/client_golang/prometheus"
	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// memoryRepo is an in-process employees collection.
type memoryRepo struct {
	mu   sync.Mutex
	docs map[string]models.Employee
}

func (r *memoryRepo) ListEmployees(context.Context) ([]models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	list := make([]models.Employee, 0, len(r.docs))
	for _, doc := range r.docs {
		list = append(list, doc)
	}
	return list, nil
}

func (r *memoryRepo) CreateEmployee(_ context.Context, employee models.Employee) (string, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	employee.ID = uuid.NewString()
	r.docs[employee.ID] = employee
	return employee.ID, nil
}

func (r *memoryRepo) GetEmployeeByID(_ context.Context, identifier string) (models.Employee, error) {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[identifier]
	if !ok {
		return models.Employee{}, repository.ErrNotFound
	}
	return doc, nil
}

func (r *memoryRepo) UpdateEmployee(_ context.Context, identifier string, changes models.EmployeeChanges) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	doc, ok := r.docs[identifier]
	if !ok {
		return repository.ErrNotFound
	}
	r.docs[identifier] = changes.Apply(doc)
	return nil
}

func (r *memoryRepo) DeleteEmployee(_ context.Context, identifier string) error {
	r.mu.Lock()
	defer r.mu.Unlock()

	if _, ok := r.docs[identifier]; !ok {
		return repository.ErrNotFound
	}
	delete(r.docs, identifier)
	return nil
}

// memoryBlobs records uploads and hands out URLs under a fake bucket.
type memoryBlobs struct {
	mu      sync.Mutex
	objects map[string][]byte
}

func (b *memoryBlobs) Upload(_ context.Context, key string, upload *models.Upload) (string, error) {
	b.mu.Lock()
	defer b.mu.Unlock()

	b.objects[key] = upload.Data
	return "http://minio:9000/photos/" + key, nil
}

func (b *memoryBlobs) Ping(context.Context) error { return nil }

func TestEmployeeLifecycle(t *testing.T) {
	t.Parallel()

	repo := &memoryRepo{docs: map[string]models.Employee{}}
	blobs := &memoryBlobs{objects: map[string][]byte{}}
	testMetrics := metrics.NewMetrics(prometheus.NewRegistry())
	logger := slog.New(slog.DiscardHandler)
	staff := employees.NewStaff(logger, repo, blobs, testMetrics, "images")
	server := api.New(logger, staff, mocks.NewAuthProvider(t), testMetrics, api.Options{MaxBodyBytes: 20 << 20})

	do := func(req *http.Request) *httptest.ResponseRecorder {
		rec := httptest.NewRecorder()
		server.ServeHTTP(rec, req)
		return rec
	}

	// Incomplete requests leave nothing behind.
	rec := do(multipartRequest(t, http.MethodPost, "/api/addEmployee", annFields(), nil))
	require.Equal(t, http.StatusBadRequest, rec.Code)
	assert.Empty(t, blobs.objects)
	assert.Empty(t, repo.docs)

	rec = do(multipartRequest(t, http.MethodPost, "/api/addEmployee", annFields(), photo))
	require.Equal(t, http.StatusCreated, rec.Code)
	identifier, _ := decode(t, rec)["employeeId"].(string)
	require.NotEmpty(t, identifier)

	rec = do(httptest.NewRequest(http.MethodGet, "/api/getAllEmployees", nil))
	require.Equal(t, http.StatusOK, rec.Code)
	list, _ := decode(t, rec)["employees"].([]any)
	require.Len(t, list, 1)
	listed, _ := list[0].(map[string]any)
	assert.Equal(t, identifier, listed["id"])
	assert.Equal(t, "Ann", listed["firstName"])
	image, _ := listed["image"].(string)
	assert.True(t, strings.HasPrefix(image, "http://") || strings.HasPrefix(image, "https://"), image)
	assert.Contains(t, image, "/images/")
	assert.True(t, strings.HasSuffix(image, "-photo.png"), image)

	// Immutable keys in the body are ignored.
	update := changesBody()
	update["idNumber"] = "HACK"
	update["id"] = "other"
	rec = do(jsonRequest(t, http.MethodPut, "/api/updateEmployee/"+identifier, update))
	require.Equal(t, http.StatusOK, rec.Code)
	applied, _ := decode(t, rec)["employee"].(map[string]any)
	assert.Equal(t, identifier, applied["id"])
	assert.Equal(t, "I1", applied["idNumber"])
	require.Contains(t, repo.docs, identifier)
	assert.Equal(t, "I1", repo.docs[identifier].IDNumber)
	assert.NotContains(t, repo.docs, "other")

	rec = do(httptest.NewRequest(http.MethodGet, "/api/getEmployee/"+identifier, nil))
	require.Equal(t, http.StatusOK, rec.Code)
	fetched, _ := decode(t, rec)["employee"].(map[string]any)
	assert.Equal(t, identifier, fetched["id"])
	assert.Equal(t, "Anna", fetched["firstName"])
	assert.Equal(t, "I1", fetched["idNumber"])
	assert.Equal(t, image, fetched["image"])

	rec = do(jsonRequest(t, http.MethodPut, "/api/updateEmployee/"+uuid.NewString(), changesBody()))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(httptest.NewRequest(http.MethodDelete, "/api/deleteEmployee/"+identifier, nil))
	require.Equal(t, http.StatusOK, rec.Code)

	rec = do(httptest.NewRequest(http.MethodGet, "/api/getEmployee/"+identifier, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)

	rec = do(httptest.NewRequest(http.MethodDelete, "/api/deleteEmployee/"+identifier, nil))
	assert.Equal(t, http.StatusNotFound, rec.Code)
	assert.Len(t, blobs.objects, 1, "photos are kept after delete")
}
