package integration

import (
	"bytes"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"sync"
	"sync/atomic"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

// TestConcurrentTransfers_ExactDrain fires N concurrent transfers of the same
// amount from one account holding exactly N*amount. Pessimistic locking must
// serialize them so every attempt succeeds, the sender ends at zero and the
// receiver gains exactly N*amount.
func TestConcurrentTransfers_ExactDrain(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	const (
		concurrency = 100
		amount      = int64(100)
	)

	createAccount(t, app, "sender")
	createAccount(t, app, "receiver")
	grantPoints(t, app, "sender", concurrency*amount)

	var (
		wg           sync.WaitGroup
		successCount atomic.Int64
		failCount    atomic.Int64
	)

	body := fmt.Sprintf(`{"from_id":"sender","to_id":"receiver","amount":%d}`, amount)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := http.Post(app.server.URL+"/api/v1/points/transfer", "application/json", bytes.NewBufferString(body))
			if err != nil {
				failCount.Add(1)
				return
			}
			defer r.Body.Close()
			_, _ = io.ReadAll(r.Body)

			if r.StatusCode == http.StatusCreated {
				successCount.Add(1)
			} else {
				failCount.Add(1)
			}
		}()
	}
	wg.Wait()

	t.Logf("Concurrent transfers: %d succeeded, %d failed (out of %d)", successCount.Load(), failCount.Load(), concurrency)

	assert.Equal(t, int64(concurrency), successCount.Load(), "every funded transfer must succeed")
	assert.Equal(t, int64(0), failCount.Load())
	assert.Equal(t, int64(0), getBalance(t, app, "sender"))
	assert.Equal(t, int64(concurrency*amount), getBalance(t, app, "receiver"))
}

// TestConcurrentTransfers_Overdraw fires more concurrent transfers than the
// sender can fund. Exactly balance/amount must succeed and the sender must
// never go negative.
func TestConcurrentTransfers_Overdraw(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	const (
		concurrency = 20
		funded      = 8
		amount      = int64(100)
	)

	createAccount(t, app, "sender")
	createAccount(t, app, "receiver")
	grantPoints(t, app, "sender", funded*amount)

	var (
		wg                sync.WaitGroup
		successCount      atomic.Int64
		insufficientCount atomic.Int64
	)

	body := fmt.Sprintf(`{"from_id":"sender","to_id":"receiver","amount":%d}`, amount)
	for i := 0; i < concurrency; i++ {
		wg.Add(1)
		go func() {
			defer wg.Done()

			r, err := http.Post(app.server.URL+"/api/v1/points/transfer", "application/json", bytes.NewBufferString(body))
			require.NoError(t, err)
			defer r.Body.Close()
			_, _ = io.ReadAll(r.Body)

			switch r.StatusCode {
			case http.StatusCreated:
				successCount.Add(1)
			case http.StatusPaymentRequired:
				insufficientCount.Add(1)
			}
		}()
	}
	wg.Wait()

	t.Logf("Overdraw test: %d succeeded, %d rejected (out of %d)", successCount.Load(), insufficientCount.Load(), concurrency)

	assert.Equal(t, int64(funded), successCount.Load(), "exactly the funded number of transfers succeeds")
	assert.Equal(t, int64(concurrency-funded), insufficientCount.Load())
	assert.Equal(t, int64(0), getBalance(t, app, "sender"))
	assert.Equal(t, int64(funded*amount), getBalance(t, app, "receiver"))
}

// TestConcurrentTransfers_OpposingPair races transfers in both directions
// between the same two accounts. Ascending-id lock ordering must prevent
// deadlock, and the pair's combined balance must be conserved.
func TestConcurrentTransfers_OpposingPair(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	const rounds = 25

	createAccount(t, app, "alice")
	createAccount(t, app, "bob")
	grantPoints(t, app, "alice", 10000)
	grantPoints(t, app, "bob", 10000)

	var wg sync.WaitGroup
	fire := func(body string) {
		defer wg.Done()
		r, err := http.Post(app.server.URL+"/api/v1/points/transfer", "application/json", bytes.NewBufferString(body))
		if err != nil {
			return
		}
		defer r.Body.Close()
		_, _ = io.ReadAll(r.Body)
	}

	wg.Add(2 * rounds)
	for i := 0; i < rounds; i++ {
		go fire(`{"from_id":"alice","to_id":"bob","amount":70}`)
		go fire(`{"from_id":"bob","to_id":"alice","amount":50}`)
	}
	wg.Wait()

	aliceBalance := getBalance(t, app, "alice")
	bobBalance := getBalance(t, app, "bob")
	assert.Equal(t, int64(20000), aliceBalance+bobBalance, "points are conserved")
	assert.Equal(t, int64(10000-rounds*70+rounds*50), aliceBalance)
	assert.Equal(t, int64(10000+rounds*70-rounds*50), bobBalance)
}

// TestConcurrent_ReplayConsistency runs a mixed concurrent workload, then
// replays every account's record history and requires it to match the stored
// balance exactly.
func TestConcurrent_ReplayConsistency(t *testing.T) {
	app := newTestApp(t)
	defer app.close()

	accounts := []string{"a1", "a2", "a3", "a4"}
	for _, id := range accounts {
		createAccount(t, app, id)
		grantPoints(t, app, id, 5000)
	}

	var wg sync.WaitGroup
	for i := 0; i < 40; i++ {
		from := accounts[i%len(accounts)]
		to := accounts[(i+1)%len(accounts)]
		body := fmt.Sprintf(`{"from_id":%q,"to_id":%q,"amount":%d}`, from, to, 50+int64(i%3)*25)
		wg.Add(1)
		go func(b string) {
			defer wg.Done()
			r, err := http.Post(app.server.URL+"/api/v1/points/transfer", "application/json", bytes.NewBufferString(b))
			if err != nil {
				return
			}
			defer r.Body.Close()
			_, _ = io.ReadAll(r.Body)
		}(body)
	}
	wg.Wait()

	var total int64
	for _, id := range accounts {
		resp, err := http.Get(app.server.URL + "/api/v1/accounts/" + id + "/reconcile")
		require.NoError(t, err)
		var body map[string]interface{}
		require.NoError(t, json.NewDecoder(resp.Body).Decode(&body))
		resp.Body.Close()
		require.Equal(t, http.StatusOK, resp.StatusCode)

		data := body["data"].(map[string]interface{})
		assert.Equal(t, true, data["consistent"], "account %s diverged", id)
		total += int64(data["stored_balance"].(float64))
	}
	assert.Equal(t, int64(len(accounts)*5000), total, "points are conserved across the workload")
}
