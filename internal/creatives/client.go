// Package creatives は外部クリエイティブAPIのクライアントを提供する。
// BFFとしてクリエイティブ一覧を代理取得するのみで、フィルタリング・
// ページネーション・ソートは行わない。
package creatives

import (
	"context"
	"encoding/json"
	"fmt"
	"io"
	"log/slog"
	"net/http"
	"strings"
	"time"

	"github.com/hitoshi/craftdeck/internal/model"
)

// Metrics はクライアントが記録するメトリクスのインターフェース。
type Metrics interface {
	RecordUpstreamLatency(dependency string, duration time.Duration)
	RecordUpstreamFailure(dependency string, reason string)
}

// Client は外部クリエイティブAPIのHTTPクライアント。
// 冪等なGETに限り、ネットワークエラーまたは5xx応答で1回だけリトライする。
// リクエストのコンテキストがキャンセルされた場合はリトライしない。
type Client struct {
	httpClient *http.Client
	baseURL    string
	logger     *slog.Logger
	metrics    Metrics
}

// NewClient はClientを生成する。
// httpClientにはSSRF防止機能付きのクライアントを渡すことを想定している
// （テストでは通常のクライアントを注入する）。
func NewClient(httpClient *http.Client, baseURL string, logger *slog.Logger, metrics Metrics) *Client {
	return &Client{
		httpClient: httpClient,
		baseURL:    strings.TrimSuffix(baseURL, "/"),
		logger:     logger,
		metrics:    metrics,
	}
}

// listResponse はクリエイティブ一覧エンドポイントのレスポンス。
type listResponse struct {
	Creatives []model.Creative `json:"creatives"`
}

// List はクリエイティブ一覧を取得する。
// アップストリームのレスポンスをそのまま返し、加工は行わない。
func (c *Client) List(ctx context.Context) ([]model.Creative, error) {
	start := time.Now()
	body, err := c.getWithRetry(ctx, c.baseURL+"/creatives")
	if c.metrics != nil {
		c.metrics.RecordUpstreamLatency("creatives", time.Since(start))
	}
	if err != nil {
		if c.metrics != nil {
			c.metrics.RecordUpstreamFailure("creatives", "request")
		}
		return nil, err
	}

	var listResp listResponse
	if err := json.Unmarshal(body, &listResp); err != nil {
		if c.metrics != nil {
			c.metrics.RecordUpstreamFailure("creatives", "decode")
		}
		return nil, fmt.Errorf("failed to parse creatives response: %w", err)
	}

	if listResp.Creatives == nil {
		listResp.Creatives = []model.Creative{}
	}
	return listResp.Creatives, nil
}

// getWithRetry はGETリクエストを実行し、失敗時に1回だけリトライする。
// リトライ対象はネットワークエラーと5xx応答のみ。4xxは即時エラーを返す。
func (c *Client) getWithRetry(ctx context.Context, url string) ([]byte, error) {
	body, retriable, err := c.get(ctx, url)
	if err == nil {
		return body, nil
	}
	if !retriable || ctx.Err() != nil {
		return nil, err
	}

	c.logger.Warn("upstream request failed, retrying once",
		slog.String("dependency", "creatives"),
		slog.String("error", err.Error()),
	)

	body, _, err = c.get(ctx, url)
	if err != nil {
		return nil, err
	}
	return body, nil
}

// get は1回のGETリクエストを実行する。
// 戻り値のretriableはリトライ可能な失敗かどうかを示す。
func (c *Client) get(ctx context.Context, url string) (body []byte, retriable bool, err error) {
	req, err := http.NewRequestWithContext(ctx, http.MethodGet, url, nil)
	if err != nil {
		return nil, false, fmt.Errorf("failed to create upstream request: %w", err)
	}
	req.Header.Set("Accept", "application/json")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return nil, true, fmt.Errorf("upstream request failed: %w", err)
	}
	defer resp.Body.Close()

	body, err = io.ReadAll(resp.Body)
	if err != nil {
		return nil, true, fmt.Errorf("failed to read upstream response: %w", err)
	}

	if resp.StatusCode >= 500 {
		return nil, true, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}
	if resp.StatusCode != http.StatusOK {
		return nil, false, fmt.Errorf("upstream returned status %d", resp.StatusCode)
	}

	return body, false, nil
}
