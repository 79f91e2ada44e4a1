package oracle

import (
	"encoding/json"
	"math/big"
	"net/http"
	"net/http/httptest"
	"os"
	"path/filepath"
	"strings"
	"sync/atomic"
	"testing"
	"time"

	"github.com/stretchr/testify/require"

	"stakevest/crypto"
)

func makeAddress(suffix byte) crypto.Address {
	raw := make([]byte, 20)
	raw[19] = suffix
	return crypto.MustNewAddress(crypto.AccountPrefix, raw)
}

func writeSnapshot(t *testing.T, body string) string {
	t.Helper()
	path := filepath.Join(t.TempDir(), "allocations.yaml")
	require.NoError(t, os.WriteFile(path, []byte(body), 0o600))
	return path
}

func TestFileOracle(t *testing.T) {
	alice := makeAddress(0x01)
	bob := makeAddress(0x02)
	path := writeSnapshot(t, "primary:\n  "+alice.String()+": \"1000\"\nreferral:\n  "+bob.String()+": \"25\"\n")

	o, err := LoadFile(path)
	require.NoError(t, err)

	got, err := o.PrimaryAllocation(alice)
	require.NoError(t, err)
	require.Equal(t, "1000", got.String())
	got, err = o.ReferralAllocation(alice)
	require.NoError(t, err)
	require.Zero(t, got.Sign())
	got, err = o.ReferralAllocation(bob)
	require.NoError(t, err)
	require.Equal(t, "25", got.String())

	require.NoError(t, os.WriteFile(path, []byte("primary:\n  "+alice.String()+": \"-5\"\n"), 0o600))
	require.Error(t, o.Reload())
	got, err = o.PrimaryAllocation(alice)
	require.NoError(t, err)
	require.Equal(t, "1000", got.String(), "failed reload keeps previous data")
}

func TestFileOracleRejectsBadInput(t *testing.T) {
	_, err := LoadFile(filepath.Join(t.TempDir(), "missing.yaml"))
	require.Error(t, err)

	_, err = LoadFile(writeSnapshot(t, "primary:\n  notanaddress: \"1\"\n"))
	require.Error(t, err)

	_, err = LoadFile(writeSnapshot(t, "unknown: {}\n"))
	require.Error(t, err)
}

func TestHTTPOracle(t *testing.T) {
	alice := makeAddress(0x01)
	var calls atomic.Int32
	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		calls.Add(1)
		require.NotEmpty(t, r.Header.Get("X-Request-ID"))
		require.Equal(t, "Bearer secret", r.Header.Get("Authorization"))
		if !strings.HasSuffix(r.URL.Path, "/allocations/"+alice.String()) {
			w.WriteHeader(http.StatusNotFound)
			return
		}
		amount := "7"
		if r.URL.Query().Get("kind") == "primary" {
			amount = "123456789012345678901234567890"
		}
		_ = json.NewEncoder(w).Encode(allocationResponse{Amount: amount})
	}))
	defer srv.Close()

	o, err := NewHTTP(HTTPConfig{BaseURL: srv.URL + "/", APIKey: "secret", Timeout: time.Second, RequestsPerSecond: 100, Burst: 10})
	require.NoError(t, err)

	got, err := o.PrimaryAllocation(alice)
	require.NoError(t, err)
	expected, _ := new(big.Int).SetString("123456789012345678901234567890", 10)
	require.Equal(t, expected.String(), got.String())

	got, err = o.ReferralAllocation(alice)
	require.NoError(t, err)
	require.Equal(t, "7", got.String())

	got, err = o.PrimaryAllocation(makeAddress(0x09))
	require.NoError(t, err)
	require.Zero(t, got.Sign())
	require.Equal(t, int32(3), calls.Load())
}

func TestHTTPOracleErrors(t *testing.T) {
	_, err := NewHTTP(HTTPConfig{})
	require.Error(t, err)

	srv := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Query().Get("kind") == "primary" {
			w.WriteHeader(http.StatusBadGateway)
			return
		}
		_, _ = w.Write([]byte(`{"amount":"abc"}`))
	}))
	defer srv.Close()

	o, err := NewHTTP(HTTPConfig{BaseURL: srv.URL})
	require.NoError(t, err)
	_, err = o.PrimaryAllocation(makeAddress(0x01))
	require.Error(t, err)
	_, err = o.ReferralAllocation(makeAddress(0x01))
	require.Error(t, err)
}
