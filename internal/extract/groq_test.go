package extract

import (
	"context"
	"encoding/json"
	"io"
	"log/slog"
	"net/http"
	"net/http/httptest"
	"testing"

	"github.com/stretchr/testify/require"
)

func testLogger() *slog.Logger {
	return slog.New(slog.NewTextHandler(io.Discard, nil))
}

func completionBody(t *testing.T, content string) []byte {
	t.Helper()
	raw, err := json.Marshal(map[string]any{
		"choices": []map[string]any{
			{"message": map[string]string{"content": content}},
		},
	})
	require.NoError(t, err)
	return raw
}

func TestGroqParseText(t *testing.T) {
	var gotAuth string
	var gotBody map[string]any
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotAuth = r.Header.Get("Authorization")
		require.Equal(t, "/chat/completions", r.URL.Path)
		require.NoError(t, json.NewDecoder(r.Body).Decode(&gotBody))
		_, _ = w.Write(completionBody(t, `{"action":"new","supplier_name":"Toko Berkah","transaction_date":"2025-06-10","items":[{"product_name":"Kripik Singkong","qty":10,"unit":"bungkus","total_price":25000}],"follow_up_question":"Oke!","confidence_score":0.9}`))
	}))
	defer server.Close()

	client, err := NewGroqClient(Config{
		APIKey:    "test-key",
		BaseURL:   server.URL,
		TextModel: "llama-3.3-70b-versatile",
	}, testLogger())
	require.NoError(t, err)

	res, err := client.ParseText(context.Background(), "beli kripik singkong 10 bungkus 25rb", nil)
	require.NoError(t, err)
	require.Equal(t, "Bearer test-key", gotAuth)
	require.Equal(t, "llama-3.3-70b-versatile", gotBody["model"])
	require.Equal(t, "new", res.Action)
	require.Equal(t, "Toko Berkah", res.SupplierName)
	require.Len(t, res.Items, 1)
	require.InDelta(t, 25000, res.Items[0].TotalPrice, 0.001)
}

func TestGroqParseTextIncludesDraftContext(t *testing.T) {
	var userContent string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		var body struct {
			Messages []struct {
				Role    string          `json:"role"`
				Content json.RawMessage `json:"content"`
			} `json:"messages"`
		}
		require.NoError(t, json.NewDecoder(r.Body).Decode(&body))
		require.Len(t, body.Messages, 2)
		require.NoError(t, json.Unmarshal(body.Messages[1].Content, &userContent))
		_, _ = w.Write(completionBody(t, `{"action":"chat","follow_up_question":"Halo!"}`))
	}))
	defer server.Close()

	client, err := NewGroqClient(Config{APIKey: "k", BaseURL: server.URL}, testLogger())
	require.NoError(t, err)

	current := map[string]any{"supplier_name": "Toko Berkah"}
	_, err = client.ParseText(context.Background(), "simpan", current)
	require.NoError(t, err)
	require.Contains(t, userContent, "CURRENT_DRAFT")
	require.Contains(t, userContent, "Toko Berkah")
	require.Contains(t, userContent, "USER INPUT DATA:\nsimpan")
}

func TestGroqAPIError(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.Error(w, `{"error":"rate limited"}`, http.StatusTooManyRequests)
	}))
	defer server.Close()

	client, err := NewGroqClient(Config{APIKey: "k", BaseURL: server.URL}, testLogger())
	require.NoError(t, err)

	_, err = client.ParseText(context.Background(), "halo", nil)
	require.Error(t, err)
	require.Contains(t, err.Error(), "status 429")
}

func TestNewGroqClientRequiresKey(t *testing.T) {
	_, err := NewGroqClient(Config{}, testLogger())
	require.Error(t, err)
}

func TestParseResultTolerance(t *testing.T) {
	res, err := ParseResult("```json\n{\"action\":\"append\",\"supplier_name\":null,\"items\":[{\"product_name\":\"Teh Botol\",\"qty\":\"24\",\"total_price\":\"48000\"},{\"product_name\":null}],\"confidence_score\":\"0.8\"}\n```")
	require.NoError(t, err)
	require.Equal(t, "append", res.Action)
	require.Empty(t, res.SupplierName)
	require.Len(t, res.Items, 1)
	require.InDelta(t, 24, res.Items[0].Qty, 0.001)
	require.InDelta(t, 0.8, res.Confidence, 0.001)
}

func TestParseResultNoJSON(t *testing.T) {
	_, err := ParseResult("sorry, I cannot help with that")
	require.Error(t, err)
}

func TestParseResultDefaultsToChat(t *testing.T) {
	res, err := ParseResult(`{"follow_up_question":"Halo, mau catat belanjaan apa?"}`)
	require.NoError(t, err)
	require.Equal(t, "chat", res.Action)
}
