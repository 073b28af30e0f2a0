package sheets

import (
	"context"
	"encoding/json"
	"errors"
	"net/http"
	"net/http/httptest"
	"sync"
	"testing"
	"time"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"

	appErrors "github.com/noah-isme/absensi-karyawan/pkg/errors"
)

type observedCall struct {
	sheet, op, outcome string
}

type recordingObserver struct {
	mu    sync.Mutex
	calls []observedCall
}

func (o *recordingObserver) ObserveBackendCall(sheet, operation, outcome string, _ time.Duration) {
	o.mu.Lock()
	defer o.mu.Unlock()
	o.calls = append(o.calls, observedCall{sheet: sheet, op: operation, outcome: outcome})
}

func newTestClient(t *testing.T, handler http.HandlerFunc) (*Client, *recordingObserver) {
	t.Helper()
	server := httptest.NewServer(handler)
	t.Cleanup(server.Close)
	observer := &recordingObserver{}
	client := NewClient(Config{BaseURL: server.URL + "/exec", Timeout: time.Second}, nil, observer, nil)
	return client, observer
}

func TestClientFetchRows(t *testing.T) {
	client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodGet, r.Method)
		assert.Equal(t, "Absensi Harian", r.URL.Query().Get("sheet"))
		_, _ = w.Write([]byte(`{"status":200,"data":[{"ID_Karyawan":1,"Status_Kehadiran":"masuk"},{"ID_Karyawan":"2"}]}`))
	})

	rows, err := client.Fetch(context.Background(), "Absensi Harian")
	require.NoError(t, err)
	require.Len(t, rows, 2)
	assert.Equal(t, float64(1), rows[0]["ID_Karyawan"])
	assert.Equal(t, "2", rows[1]["ID_Karyawan"])
	require.Len(t, observer.calls, 1)
	assert.Equal(t, observedCall{sheet: "Absensi Harian", op: OpFetch, outcome: OutcomeOK}, observer.calls[0])
}

func TestClientFetchNullDataIsEmpty(t *testing.T) {
	client, _ := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		_, _ = w.Write([]byte(`{"status":200,"data":null}`))
	})

	rows, err := client.Fetch(context.Background(), "Karyawan")
	require.NoError(t, err)
	assert.Empty(t, rows)
}

func TestClientAppendReturnsData(t *testing.T) {
	client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
		assert.Equal(t, http.MethodPost, r.Method)
		assert.Equal(t, "application/json", r.Header.Get("Content-Type"))
		var payload map[string]interface{}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&payload))
		assert.Equal(t, "Ana", payload["nama_karyawan"])
		_, _ = w.Write([]byte(`{"status":200,"data":{"id":7}}`))
	})

	data, err := client.Append(context.Background(), "Karyawan", Row{"nama_karyawan": "Ana"})
	require.NoError(t, err)
	assert.Equal(t, float64(7), data["id"])
	assert.Equal(t, OpAppend, observer.calls[0].op)
}

func TestClientErrorTaxonomy(t *testing.T) {
	cases := []struct {
		name    string
		status  int
		body    string
		want    *appErrors.Error
		outcome string
		message string
	}{
		{name: "empty body", status: http.StatusOK, body: "  ", want: appErrors.ErrBackendFormat, outcome: OutcomeFormat},
		{name: "html body", status: http.StatusOK, body: "<html>Script function not found</html>", want: appErrors.ErrBackendFormat, outcome: OutcomeFormat},
		{name: "application error", status: http.StatusOK, body: `{"status":400,"message":"Sheet tidak ditemukan"}`, want: appErrors.ErrBackendApplication, outcome: OutcomeApplication, message: "Sheet tidak ditemukan"},
		{name: "http error", status: http.StatusInternalServerError, body: "oops", want: appErrors.ErrBackendUnavailable, outcome: OutcomeUnavailable},
	}
	for _, tc := range cases {
		t.Run(tc.name, func(t *testing.T) {
			client, observer := newTestClient(t, func(w http.ResponseWriter, r *http.Request) {
				w.WriteHeader(tc.status)
				_, _ = w.Write([]byte(tc.body))
			})

			_, err := client.Fetch(context.Background(), "Karyawan")
			require.Error(t, err)
			assert.True(t, errors.Is(err, tc.want), err.Error())
			assert.Equal(t, tc.outcome, observer.calls[0].outcome)
			if tc.message != "" {
				assert.Equal(t, tc.message, appErrors.FromError(err).Message)
			}
		})
	}
}

func TestClientTimeoutIsUnavailable(t *testing.T) {
	release := make(chan struct{})
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		<-release
	}))
	defer server.Close()
	defer close(release)

	client := NewClient(Config{BaseURL: server.URL}, &http.Client{Timeout: 50 * time.Millisecond}, nil, nil)
	_, err := client.Fetch(context.Background(), "Karyawan")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))
	assert.Equal(t, "spreadsheet backend timed out", appErrors.FromError(err).Message)
}

func TestClientRejectsRelativeURL(t *testing.T) {
	client := NewClient(Config{BaseURL: "/exec"}, nil, nil, nil)
	_, err := client.Fetch(context.Background(), "Karyawan")
	require.Error(t, err)
	assert.True(t, errors.Is(err, appErrors.ErrBackendUnavailable))
}
