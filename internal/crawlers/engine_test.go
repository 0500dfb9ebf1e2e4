package crawlers

import (
	"bytes"
	"compress/flate"
	"compress/gzip"
	"context"
	"fmt"
	"net/http"
	"net/http/httptest"
	"strings"
	"testing"
	"time"

	"github.com/andybalholm/brotli"

	"github.com/x5427876/ai-scraping/internal/models"
)

// TestCollyFetcher_Fetch 验证完整的页面抓取和字段提取
func TestCollyFetcher_Fetch(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		if r.URL.Path != "/article" {
			http.NotFound(w, r)
			return
		}
		w.Header().Set("Content-Type", "text/html; charset=utf-8")
		fmt.Fprint(w, `<html>
<head><title>文章标题</title><meta name="author" content="测试作者"></head>
<body>
<p>文章正文。</p>
<a href="/related">相关文章</a>
<a href="https://other.com/external">外部链接</a>
<img src="cover.png">
<img src="//cdn.example.com/banner.jpg">
</body>
</html>`)
	}))
	defer server.Close()

	fetcher := NewCollyFetcher(5*time.Second, nil)
	raw, err := fetcher.Fetch(context.Background(), server.URL+"/article")
	if err != nil {
		t.Fatalf("Fetch() 失败: %v", err)
	}

	page, ok := raw.(*models.RawPage)
	if !ok {
		t.Fatalf("返回类型 = %T, 期望 *models.RawPage", raw)
	}

	if page.Title != "文章标题" {
		t.Errorf("Title = %q, 期望 文章标题", page.Title)
	}
	if !strings.Contains(page.Content, "文章正文。") {
		t.Errorf("Content缺少正文: %q", page.Content)
	}
	if page.Author != "测试作者" {
		t.Errorf("Author = %q, 期望 测试作者", page.Author)
	}

	// 链接解析为绝对地址
	wantLinks := []string{server.URL + "/related", "https://other.com/external"}
	if len(page.Links) != 2 {
		t.Fatalf("Links = %v, 期望 %v", page.Links, wantLinks)
	}
	for i, want := range wantLinks {
		if page.Links[i] != want {
			t.Errorf("Links[%d] = %s, 期望 %s", i, page.Links[i], want)
		}
	}

	// 图片保留原始src,补全交给归一化阶段
	if len(page.Images) != 2 || page.Images[0] != "cover.png" || page.Images[1] != "//cdn.example.com/banner.jpg" {
		t.Errorf("Images = %v, 期望保留原始src", page.Images)
	}
}

// TestCollyFetcher_FetchErrors 验证失败场景返回错误
func TestCollyFetcher_FetchErrors(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		http.NotFound(w, r)
	}))
	defer server.Close()

	fetcher := NewCollyFetcher(5*time.Second, nil)

	tests := []struct {
		name string
		url  string
	}{
		{name: "HTTP 404", url: server.URL + "/missing"},
		{name: "不支持的协议", url: "ftp://example.com/file"},
		{name: "无法连接的地址", url: "http://127.0.0.1:1/unreachable"},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			raw, err := fetcher.Fetch(context.Background(), tt.url)
			if err == nil {
				t.Error("期望返回错误")
			}
			if raw != nil {
				t.Errorf("失败时raw = %v, 期望nil", raw)
			}
		})
	}
}

// TestCollyFetcher_FetchCancelled 验证已取消的context直接返回
func TestCollyFetcher_FetchCancelled(t *testing.T) {
	ctx, cancel := context.WithCancel(context.Background())
	cancel()

	fetcher := NewCollyFetcher(5*time.Second, nil)
	if _, err := fetcher.Fetch(ctx, "https://example.com"); err == nil {
		t.Error("已取消的context应返回错误")
	}
}

// TestCollyFetcher_PlainText 验证纯文本响应直接作为正文
func TestCollyFetcher_PlainText(t *testing.T) {
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/plain; charset=utf-8")
		fmt.Fprint(w, "纯文本内容\n")
	}))
	defer server.Close()

	fetcher := NewCollyFetcher(5*time.Second, nil)
	raw, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() 失败: %v", err)
	}

	page := raw.(*models.RawPage)
	if page.Content != "纯文本内容" {
		t.Errorf("Content = %q, 期望纯文本正文", page.Content)
	}
	if page.Title != "" {
		t.Errorf("纯文本响应Title = %q, 期望空", page.Title)
	}
}

// TestCollyFetcher_CustomHeaders 验证自定义请求头的应用
func TestCollyFetcher_CustomHeaders(t *testing.T) {
	var gotToken string
	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		gotToken = r.Header.Get("X-Api-Token")
		w.Header().Set("Content-Type", "text/html")
		fmt.Fprint(w, "<html><body><p>ok</p></body></html>")
	}))
	defer server.Close()

	headers := http.Header{}
	headers.Set("X-Api-Token", "secret-value")

	fetcher := NewCollyFetcher(5*time.Second, headers)
	if _, err := fetcher.Fetch(context.Background(), server.URL); err != nil {
		t.Fatalf("Fetch() 失败: %v", err)
	}

	if gotToken != "secret-value" {
		t.Errorf("服务端收到的X-Api-Token = %q, 期望 secret-value", gotToken)
	}
}

// TestCollyFetcher_BrotliResponse 验证brotli压缩响应的完整抓取链路
// Go标准库传输层不处理br编码,需经过decompressBody解压
func TestCollyFetcher_BrotliResponse(t *testing.T) {
	html := `<html><head><title>压缩页面</title></head><body><p>brotli正文</p></body></html>`

	var compressed bytes.Buffer
	bw := brotli.NewWriter(&compressed)
	if _, err := bw.Write([]byte(html)); err != nil {
		t.Fatalf("压缩测试数据失败: %v", err)
	}
	if err := bw.Close(); err != nil {
		t.Fatalf("关闭brotli写入器失败: %v", err)
	}

	server := httptest.NewServer(http.HandlerFunc(func(w http.ResponseWriter, r *http.Request) {
		w.Header().Set("Content-Type", "text/html")
		w.Header().Set("Content-Encoding", "br")
		_, _ = w.Write(compressed.Bytes())
	}))
	defer server.Close()

	fetcher := NewCollyFetcher(5*time.Second, nil)
	raw, err := fetcher.Fetch(context.Background(), server.URL)
	if err != nil {
		t.Fatalf("Fetch() 失败: %v", err)
	}

	page := raw.(*models.RawPage)
	if page.Title != "压缩页面" {
		t.Errorf("Title = %q, 期望解压后的标题", page.Title)
	}
	if !strings.Contains(page.Content, "brotli正文") {
		t.Errorf("Content = %q, 期望解压后的正文", page.Content)
	}
}

// TestDecompressBody 验证各压缩格式的解压
func TestDecompressBody(t *testing.T) {
	original := []byte("测试内容 test content")

	gzipData := func() []byte {
		var buf bytes.Buffer
		w := gzip.NewWriter(&buf)
		_, _ = w.Write(original)
		_ = w.Close()
		return buf.Bytes()
	}()

	deflateData := func() []byte {
		var buf bytes.Buffer
		w, _ := flate.NewWriter(&buf, flate.DefaultCompression)
		_, _ = w.Write(original)
		_ = w.Close()
		return buf.Bytes()
	}()

	brData := func() []byte {
		var buf bytes.Buffer
		w := brotli.NewWriter(&buf)
		_, _ = w.Write(original)
		_ = w.Close()
		return buf.Bytes()
	}()

	tests := []struct {
		name     string
		encoding string
		body     []byte
		want     []byte
		wantErr  bool
	}{
		{
			name:     "gzip解压",
			encoding: "gzip",
			body:     gzipData,
			want:     original,
			wantErr:  false,
		},
		{
			name:     "deflate解压",
			encoding: "deflate",
			body:     deflateData,
			want:     original,
			wantErr:  false,
		},
		{
			name:     "brotli解压",
			encoding: "br",
			body:     brData,
			want:     original,
			wantErr:  false,
		},
		{
			name:     "编码大小写不敏感",
			encoding: "GZIP",
			body:     gzipData,
			want:     original,
			wantErr:  false,
		},
		{
			name:     "无压缩原样返回",
			encoding: "",
			body:     original,
			want:     original,
			wantErr:  false,
		},
		{
			name:     "未知编码原样返回",
			encoding: "zstd",
			body:     original,
			want:     original,
			wantErr:  false,
		},
		{
			name:     "损坏的gzip数据",
			encoding: "gzip",
			body:     []byte("not gzip data"),
			want:     nil,
			wantErr:  true,
		},
	}

	for _, tt := range tests {
		t.Run(tt.name, func(t *testing.T) {
			got, err := decompressBody(tt.encoding, tt.body)
			if (err != nil) != tt.wantErr {
				t.Fatalf("decompressBody() error = %v, wantErr %v", err, tt.wantErr)
			}
			if !tt.wantErr && !bytes.Equal(got, tt.want) {
				t.Errorf("decompressBody() = %q, 期望 %q", got, tt.want)
			}
		})
	}
}
