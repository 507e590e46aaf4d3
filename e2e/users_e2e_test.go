//go:build e2e
// +build e2e

package e2e

import (
	"bytes"
	"context"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"net/http/cookiejar"
	"os"
	"testing"
	"time"

	usersgrpc "github.com/vibast-solutions/ms-go-users/app/grpc"

	"google.golang.org/grpc"
	"google.golang.org/grpc/codes"
	"google.golang.org/grpc/credentials/insecure"
	"google.golang.org/grpc/metadata"
	"google.golang.org/grpc/status"
	"google.golang.org/protobuf/types/known/structpb"
)

const (
	defaultHTTPBase = "http://localhost:8080"
	defaultGRPCAddr = "localhost:9090"
)

type httpClient struct {
	baseURL string
	client  *http.Client
}

func newHTTPClient(t *testing.T) *httpClient {
	t.Helper()

	base := os.Getenv("USERS_HTTP_URL")
	if base == "" {
		base = defaultHTTPBase
	}
	jar, err := cookiejar.New(nil)
	if err != nil {
		t.Fatalf("cookie jar: %v", err)
	}
	return &httpClient{
		baseURL: base,
		client:  &http.Client{Timeout: 10 * time.Second, Jar: jar},
	}
}

func (c *httpClient) do(t *testing.T, method, path string, body any, bearer string) (*http.Response, []byte) {
	t.Helper()

	var reader io.Reader
	if body != nil {
		data, err := json.Marshal(body)
		if err != nil {
			t.Fatalf("json marshal failed: %v", err)
		}
		reader = bytes.NewReader(data)
	}

	req, err := http.NewRequest(method, c.baseURL+path, reader)
	if err != nil {
		t.Fatalf("new request failed: %v", err)
	}
	if body != nil {
		req.Header.Set("Content-Type", "application/json")
	}
	if bearer != "" {
		req.Header.Set("Authorization", "Bearer "+bearer)
	}

	resp, err := c.client.Do(req)
	if err != nil {
		t.Fatalf("http request failed: %v", err)
	}
	defer resp.Body.Close()

	data, err := io.ReadAll(resp.Body)
	if err != nil {
		t.Fatalf("read response failed: %v", err)
	}
	return resp, data
}

type authResponse struct {
	AccessToken  string `json:"access_token"`
	RefreshToken string `json:"refresh_token"`
	User         struct {
		ID     string `json:"id"`
		Email  string `json:"email"`
		Status string `json:"status"`
	} `json:"user"`
}

func waitForHTTP(t *testing.T, baseURL string) {
	t.Helper()

	deadline := time.Now().Add(30 * time.Second)
	for time.Now().Before(deadline) {
		resp, err := http.Get(baseURL + "/health")
		if err == nil {
			resp.Body.Close()
			if resp.StatusCode == http.StatusOK {
				return
			}
		}
		time.Sleep(500 * time.Millisecond)
	}
	t.Fatalf("service at %s not ready", baseURL)
}

func uniqueEmail(prefix string) string {
	return fmt.Sprintf("%s-%d@example.com", prefix, time.Now().UnixNano())
}

func register(t *testing.T, c *httpClient, email string) authResponse {
	t.Helper()

	resp, body := c.do(t, http.MethodPost, "/registration", map[string]string{"email": email, "password": "pw123"}, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("registration failed: %d %s", resp.StatusCode, body)
	}
	var out authResponse
	if err := json.Unmarshal(body, &out); err != nil {
		t.Fatalf("decode registration: %v", err)
	}
	return out
}

func TestHTTPAccountLifecycle(t *testing.T) {
	c := newHTTPClient(t)
	waitForHTTP(t, c.baseURL)

	email := uniqueEmail("user")
	registered := register(t, c, email)
	if registered.User.Status != "Active" {
		t.Fatalf("expected Active, got %s", registered.User.Status)
	}

	if resp, _ := c.do(t, http.MethodPost, "/registration", map[string]string{"email": email, "password": "pw123"}, ""); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for duplicate email, got %d", resp.StatusCode)
	}

	resp, body := c.do(t, http.MethodGet, "/refresh", nil, "")
	if resp.StatusCode != http.StatusOK {
		t.Fatalf("refresh with cookie failed: %d %s", resp.StatusCode, body)
	}

	if resp, _ := c.do(t, http.MethodPost, "/login", map[string]string{"email": email, "password": "wrong"}, ""); resp.StatusCode != http.StatusBadRequest {
		t.Fatalf("expected 400 for wrong password, got %d", resp.StatusCode)
	}

	admin := register(t, newHTTPClient(t), uniqueEmail("admin"))

	if resp, _ := c.do(t, http.MethodPut, "/users/"+registered.User.ID, nil, admin.AccessToken); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("block failed: %d", resp.StatusCode)
	}
	if resp, _ := c.do(t, http.MethodPost, "/login", map[string]string{"email": email, "password": "pw123"}, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 for blocked user, got %d", resp.StatusCode)
	}
	if resp, _ := c.do(t, http.MethodPut, "/users/"+registered.User.ID+"/unblock", nil, admin.AccessToken); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("unblock failed: %d", resp.StatusCode)
	}
	if resp, _ := c.do(t, http.MethodPost, "/login", map[string]string{"email": email, "password": "pw123"}, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("expected 200 after unblock, got %d", resp.StatusCode)
	}

	if resp, _ := c.do(t, http.MethodPost, "/logout", nil, ""); resp.StatusCode != http.StatusOK {
		t.Fatalf("logout failed: %d", resp.StatusCode)
	}
	if resp, _ := c.do(t, http.MethodGet, "/refresh", nil, ""); resp.StatusCode != http.StatusUnauthorized {
		t.Fatalf("expected 401 after logout, got %d", resp.StatusCode)
	}

	if resp, _ := c.do(t, http.MethodDelete, "/users/"+registered.User.ID, nil, admin.AccessToken); resp.StatusCode != http.StatusNoContent {
		t.Fatalf("delete failed: %d", resp.StatusCode)
	}
	if resp, _ := c.do(t, http.MethodPut, "/users/"+registered.User.ID, nil, admin.AccessToken); resp.StatusCode != http.StatusNotFound {
		t.Fatalf("expected 404 blocking deleted user, got %d", resp.StatusCode)
	}
}

func TestGRPCAccountLifecycle(t *testing.T) {
	addr := os.Getenv("USERS_GRPC_ADDR")
	if addr == "" {
		addr = defaultGRPCAddr
	}
	waitForHTTP(t, newHTTPClient(t).baseURL)

	conn, err := grpc.NewClient(addr, grpc.WithTransportCredentials(insecure.NewCredentials()))
	if err != nil {
		t.Fatalf("grpc dial: %v", err)
	}
	defer conn.Close()
	client := usersgrpc.NewUserServiceClient(conn)

	ctx, cancel := context.WithTimeout(context.Background(), 10*time.Second)
	defer cancel()

	in, _ := structpb.NewStruct(map[string]any{"email": uniqueEmail("grpc"), "password": "pw123"})
	registered, err := client.Call(ctx, usersgrpc.MethodRegistration, in)
	if err != nil {
		t.Fatalf("registration: %v", err)
	}

	if _, err := client.Call(ctx, usersgrpc.MethodListUsers, nil); status.Code(err) != codes.Unauthenticated {
		t.Fatalf("expected Unauthenticated without bearer, got %v", err)
	}

	token := registered.GetFields()["access_token"].GetStringValue()
	adminCtx := metadata.AppendToOutgoingContext(ctx, "authorization", "Bearer "+token)
	list, err := client.Call(adminCtx, usersgrpc.MethodListUsers, nil)
	if err != nil {
		t.Fatalf("list users: %v", err)
	}
	if len(list.GetFields()["users"].GetListValue().GetValues()) == 0 {
		t.Fatal("expected at least one user")
	}
}
