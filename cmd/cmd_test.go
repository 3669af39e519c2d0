package cmd

import (
	"bytes"
	"io"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"

	"github.com/stretchr/testify/assert"
	"github.com/stretchr/testify/require"
)

func execute(t *testing.T, args ...string) (string, error) {
	t.Helper()

	var out bytes.Buffer
	rootCmd.SetOut(&out)
	rootCmd.SetErr(io.Discard)
	rootCmd.SetArgs(args)
	t.Cleanup(func() {
		rootCmd.SetOut(nil)
		rootCmd.SetErr(nil)
		rootCmd.SetArgs(nil)
	})

	err := rootCmd.Execute()
	return out.String(), err
}

func TestCommands_Registered(t *testing.T) {
	want := []string{"run", "check-version", "state", "retry", "dismiss-update", "set-language", "journal"}

	for _, name := range want {
		t.Run(name, func(t *testing.T) {
			found, _, err := rootCmd.Find([]string{name})
			require.NoError(t, err)
			assert.Equal(t, name, found.Name())
			assert.NotNil(t, found.RunE)
		})
	}
}

func TestRunCommand_Flags(t *testing.T) {
	languageFlag := runCmd.Flags().Lookup("language")
	require.NotNil(t, languageFlag)
	assert.Equal(t, "l", languageFlag.Shorthand)
	assert.Equal(t, "", languageFlag.DefValue)
}

func TestCheckVersion(t *testing.T) {
	tests := []struct {
		name    string
		args    []string
		wantOut string
		wantErr bool
	}{
		{
			name:    "required",
			args:    []string{"--installed", "2.0.0", "--required", "2.1.0", "--current", "2.3.0"},
			wantOut: "decision=update_required",
		},
		{
			name:    "available",
			args:    []string{"--installed", "2.2.0", "--required", "2.1.0", "--current", "2.3.0"},
			wantOut: "decision=update_available",
		},
		{
			name:    "segment_compare",
			args:    []string{"--installed", "2.10.0", "--required", "2.9.1", "--current", "2.10.0"},
			wantOut: "decision=none",
		},
		{
			name:    "missing_bound",
			args:    []string{"--installed", "2.0.0", "--required", "", "--current", "2.3.0"},
			wantOut: "decision=ignore",
		},
		{
			name:    "malformed",
			args:    []string{"--installed", "2.0.0", "--required", "two", "--current", "2.3.0"},
			wantErr: true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append([]string{"check-version"}, tt.args...)...)
			if tt.wantErr {
				require.Error(t, err)
				return
			}
			require.NoError(t, err)
			assert.Contains(t, out, tt.wantOut)
		})
	}
}

func TestControlCommands(t *testing.T) {
	var (
		gotMethod string
		gotPath   string
		gotBody   string
	)
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		body, _ := io.ReadAll(r.Body)
		gotMethod, gotPath, gotBody = r.Method, r.URL.Path, string(body)

		w.Header().Set("Content-Type", "application/json")
		if strings.Contains(gotBody, `"xx"`) {
			w.WriteHeader(http.StatusUnprocessableEntity)
			_, _ = w.Write([]byte(`{"error":"unsupported language: \"xx\""}`))
			return
		}
		_, _ = w.Write([]byte(`{"app_state":{"state":"maintenance_mode","message":"Back soon"},"generation":3}`))
	}))
	defer server.Close()

	tests := []struct {
		name       string
		args       []string
		wantMethod string
		wantPath   string
		wantBody   string
	}{
		{name: "state", args: []string{"state"}, wantMethod: http.MethodGet, wantPath: "/api/state"},
		{name: "retry", args: []string{"retry"}, wantMethod: http.MethodPost, wantPath: "/api/retry"},
		{name: "dismiss", args: []string{"dismiss-update"}, wantMethod: http.MethodPost, wantPath: "/api/update/dismiss"},
		{name: "language", args: []string{"set-language", "fr"}, wantMethod: http.MethodPost, wantPath: "/api/language", wantBody: `{"language":"fr"}`},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			out, err := execute(t, append(tt.args, "--addr", server.URL+"/")...)
			require.NoError(t, err)

			assert.Equal(t, tt.wantMethod, gotMethod)
			assert.Equal(t, tt.wantPath, gotPath)
			if tt.wantBody != "" {
				assert.JSONEq(t, tt.wantBody, gotBody)
			}
			assert.Equal(t, "state=maintenance_mode generation=3 message=\"Back soon\"\n", out)
		})
	}

	t.Run("api_error", func(t *testing.T) {
		_, err := execute(t, "set-language", "xx", "--addr", server.URL)
		require.Error(t, err)
		assert.Contains(t, err.Error(), "status 422")
		assert.Contains(t, err.Error(), "unsupported language")
	})
}
