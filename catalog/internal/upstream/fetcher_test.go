package upstream

import (
	"context"
	"encoding/json"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strconv"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
)

func productFixtures(n int) []RawProduct {
	products := make([]RawProduct, 0, n)
	for i := 0; i < n; i++ {
		products = append(products, RawProduct{
			ID:   fmt.Sprintf("prod-%d", i),
			Name: fmt.Sprintf("Producto %d", i),
		})
	}
	return products
}

// pagedServer serves slices of products honoring limit/offset, rendering the
// reported total through render.
func pagedServer(
	t *testing.T,
	products []RawProduct,
	render func(total int) interface{},
	failAtOffset int,
) (*httptest.Server, *atomic.Int64) {
	calls := &atomic.Int64{}
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		offset, _ := strconv.Atoi(r.URL.Query().Get("offset"))
		limit, _ := strconv.Atoi(r.URL.Query().Get("limit"))
		if failAtOffset >= 0 && offset >= failAtOffset {
			w.WriteHeader(http.StatusBadGateway)
			return
		}

		page := []RawProduct{}
		if offset < len(products) {
			end := offset + limit
			if end > len(products) {
				end = len(products)
			}
			page = products[offset:end]
		}
		body := map[string]interface{}{"products": page}
		if render != nil {
			body["total"] = render(len(products))
		}
		if err := json.NewEncoder(w).Encode(body); err != nil {
			t.Errorf("failed encoding page: %s", err)
		}
	}))
	return server, calls
}

func TestFetchAllFollowsReportedTotal(t *testing.T) {
	server, calls := pagedServer(t, productFixtures(5), func(total int) interface{} {
		return total
	}, -1)
	defer server.Close()

	fetcher := NewFetcher(testClient(server.URL, 30), 2)
	all, err := fetcher.FetchAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, all, 5)
	assert.Equal(t, int64(3), calls.Load())
}

func TestFetchAllNormalizesNestedTotal(t *testing.T) {
	server, _ := pagedServer(t, productFixtures(3), func(total int) interface{} {
		return []map[string]int{{"total": total}}
	}, -1)
	defer server.Close()

	fetcher := NewFetcher(testClient(server.URL, 30), 2)
	all, err := fetcher.FetchAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFetchAllFallsBackToEmptyPageWhenTotalIsZero(t *testing.T) {
	server, calls := pagedServer(t, productFixtures(4), func(total int) interface{} {
		return 0
	}, -1)
	defer server.Close()

	fetcher := NewFetcher(testClient(server.URL, 30), 2)
	all, err := fetcher.FetchAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, all, 4)
	// two full pages plus the empty page that terminates the loop
	assert.Equal(t, int64(3), calls.Load())
}

func TestFetchAllStopsAtOverReportedTotal(t *testing.T) {
	server, _ := pagedServer(t, productFixtures(3), func(total int) interface{} {
		return 1000
	}, -1)
	defer server.Close()

	fetcher := NewFetcher(testClient(server.URL, 30), 2)
	all, err := fetcher.FetchAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, all, 3)
}

func TestFetchAllReturnsPartialOnMidSequenceFailure(t *testing.T) {
	server, _ := pagedServer(t, productFixtures(6), func(total int) interface{} {
		return total
	}, 2)
	defer server.Close()

	fetcher := NewFetcher(testClient(server.URL, 30), 2)
	all, err := fetcher.FetchAll(context.Background())

	assert.NoError(t, err)
	assert.Len(t, all, 2)
}

func TestFetchAllFailsWhenFirstCallFails(t *testing.T) {
	server, _ := pagedServer(t, productFixtures(6), func(total int) interface{} {
		return total
	}, 0)
	defer server.Close()

	fetcher := NewFetcher(testClient(server.URL, 30), 2)
	all, err := fetcher.FetchAll(context.Background())

	assert.Error(t, err)
	assert.Nil(t, all)
}
