package crawlers

import (
	"bytes"
	"context"
	"crypto/tls"
	"encoding/json"
	"fmt"
	"io"
	"net/http"
	"time"
)

// ServiceFetcher 远端抓取服务客户端
// 职责: 将页面抓取委托给独立部署的抓取服务,返回其原始JSON响应
//
// 服务响应保持map[string]any形状不做转换,
// 字段提取和缺省处理统一由Normalize完成。
type ServiceFetcher struct {
	// 抓取服务地址
	endpoint string

	// HTTP客户端
	client *http.Client
}

// NewServiceFetcher 创建远端抓取服务客户端
func NewServiceFetcher(endpoint string, timeout time.Duration) *ServiceFetcher {
	if timeout <= 0 {
		timeout = 30 * time.Second
	}
	return &ServiceFetcher{
		endpoint: endpoint,
		client: &http.Client{
			Timeout: timeout,
			Transport: &http.Transport{
				TLSClientConfig: &tls.Config{
					InsecureSkipVerify: true,
				},
			},
		},
	}
}

// Fetch 通过抓取服务获取单个页面
func (f *ServiceFetcher) Fetch(ctx context.Context, pageURL string) (any, error) {
	payload, err := json.Marshal(map[string]string{"url": pageURL})
	if err != nil {
		return nil, fmt.Errorf("构造请求体失败: %w", err)
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPost, f.endpoint, bytes.NewReader(payload))
	if err != nil {
		return nil, fmt.Errorf("创建请求失败: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")

	resp, err := f.client.Do(req)
	if err != nil {
		return nil, fmt.Errorf("请求抓取服务失败 [%s]: %w", pageURL, err)
	}
	defer resp.Body.Close()

	if resp.StatusCode != http.StatusOK {
		return nil, fmt.Errorf("抓取服务返回异常状态码: %d", resp.StatusCode)
	}

	body, err := io.ReadAll(resp.Body)
	if err != nil {
		return nil, fmt.Errorf("读取服务响应失败: %w", err)
	}

	var raw map[string]any
	if err := json.Unmarshal(body, &raw); err != nil {
		return nil, fmt.Errorf("解析服务响应失败: %w", err)
	}

	return raw, nil
}
