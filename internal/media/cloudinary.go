// 文件路径: internal/media/cloudinary.go
// 模块说明: Cloudinary 无签名预设上传，带指数退避重试与熔断保护。
package media

import (
	"bytes"
	"context"
	"crypto/sha1"
	"encoding/hex"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"log/slog"
	"mime/multipart"
	"net/http"
	"net/url"
	"path"
	"slices"
	"strconv"
	"strings"
	"time"

	"github.com/sony/gobreaker"

	"github.com/brinaregal/brina/internal/support/retry"
)

// CloudinaryOptions 配置 Cloudinary 上传。
type CloudinaryOptions struct {
	CloudName    string
	UploadPreset string
	APIBase      string
	APIKey       string
	APISecret    string
	Timeout      time.Duration
	HTTPClient   *http.Client
	Retry        retry.Config
	Logger       *slog.Logger
	Now          func() time.Time
}

// CloudinaryUploader sends images to the hosted media service.
type CloudinaryUploader struct {
	opts    CloudinaryOptions
	client  *http.Client
	breaker *gobreaker.CircuitBreaker
	logger  *slog.Logger
}

type cloudinaryResponse struct {
	SecureURL string `json:"secure_url"`
	PublicID  string `json:"public_id"`
	Bytes     int64  `json:"bytes"`
	Result    string `json:"result"`
	Error     *struct {
		Message string `json:"message"`
	} `json:"error"`
}

// NewCloudinaryUploader validates options and builds the breaker.
func NewCloudinaryUploader(opts CloudinaryOptions) (*CloudinaryUploader, error) {
	if strings.TrimSpace(opts.CloudName) == "" || strings.TrimSpace(opts.UploadPreset) == "" {
		return nil, fmt.Errorf("media: cloudinary cloud_name and upload_preset are required / 缺少 Cloudinary 配置")
	}
	if opts.APIBase == "" {
		opts.APIBase = "https://api.cloudinary.com/v1_1"
	}
	opts.APIBase = strings.TrimRight(opts.APIBase, "/")
	if opts.Timeout <= 0 {
		opts.Timeout = 30 * time.Second
	}
	if opts.Retry == (retry.Config{}) {
		opts.Retry = retry.DefaultConfig()
	}
	if opts.Now == nil {
		opts.Now = time.Now
	}
	logger := opts.Logger
	if logger == nil {
		logger = slog.Default()
	}
	client := opts.HTTPClient
	if client == nil {
		client = &http.Client{Timeout: opts.Timeout}
	}

	settings := gobreaker.Settings{Name: "cloudinary"}
	settings.Interval = 60 * time.Second
	settings.Timeout = 30 * time.Second
	settings.ReadyToTrip = func(counts gobreaker.Counts) bool {
		return counts.ConsecutiveFailures >= 3
	}
	settings.IsSuccessful = func(err error) bool {
		return err == nil || errors.Is(err, ErrRejected) || errors.Is(err, context.Canceled)
	}
	settings.OnStateChange = func(name string, from, to gobreaker.State) {
		logger.Warn("media breaker state changed", "breaker", name, "from", from.String(), "to", to.String())
	}

	return &CloudinaryUploader{
		opts:    opts,
		client:  client,
		breaker: gobreaker.NewCircuitBreaker(settings),
		logger:  logger.With("component", "media.cloudinary"),
	}, nil
}

func (u *CloudinaryUploader) Driver() string { return DriverCloudinary }

func (u *CloudinaryUploader) Upload(ctx context.Context, folder, filename, contentType string, r io.Reader) (Asset, error) {
	data, err := io.ReadAll(r)
	if err != nil {
		return Asset{}, fmt.Errorf("media: read upload: %w", err)
	}
	folder = CleanFolder(folder)
	name := UniqueName(filename, contentType, u.opts.Now())
	publicID := strings.TrimSuffix(name, path.Ext(name))

	endpoint := fmt.Sprintf("%s/%s/image/upload", u.opts.APIBase, url.PathEscape(u.opts.CloudName))
	var resp cloudinaryResponse
	err = u.guard(ctx, func(ctx context.Context) error {
		body, formType, err := uploadForm(data, name, u.opts.UploadPreset, folder, publicID)
		if err != nil {
			return retry.Permanent(err)
		}
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, body)
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Content-Type", formType)
		return u.do(req, &resp)
	})
	if err != nil {
		return Asset{}, err
	}
	if resp.SecureURL == "" {
		return Asset{}, fmt.Errorf("media: cloudinary returned no secure_url")
	}

	size := resp.Bytes
	if size == 0 {
		size = int64(len(data))
	}
	return Asset{
		PublicID:    resp.PublicID,
		URL:         resp.SecureURL,
		Folder:      folder,
		ContentType: contentType,
		Size:        size,
		Driver:      DriverCloudinary,
	}, nil
}

// Delete calls the signed destroy API. Unsigned presets cannot delete.
func (u *CloudinaryUploader) Delete(ctx context.Context, publicID string) error {
	if u.opts.APIKey == "" || u.opts.APISecret == "" {
		return ErrDeleteUnsupported
	}
	timestamp := strconv.FormatInt(u.opts.Now().Unix(), 10)
	form := url.Values{}
	form.Set("public_id", publicID)
	form.Set("timestamp", timestamp)
	form.Set("api_key", u.opts.APIKey)
	form.Set("signature", Sign(map[string]string{"public_id": publicID, "timestamp": timestamp}, u.opts.APISecret))

	endpoint := fmt.Sprintf("%s/%s/image/destroy", u.opts.APIBase, url.PathEscape(u.opts.CloudName))
	var resp cloudinaryResponse
	err := u.guard(ctx, func(ctx context.Context) error {
		req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, strings.NewReader(form.Encode()))
		if err != nil {
			return retry.Permanent(err)
		}
		req.Header.Set("Content-Type", "application/x-www-form-urlencoded")
		return u.do(req, &resp)
	})
	if err != nil {
		return err
	}
	if resp.Result != "" && resp.Result != "ok" && resp.Result != "not found" {
		return fmt.Errorf("media: destroy %s: %s", publicID, resp.Result)
	}
	return nil
}

// Sign computes the Cloudinary API signature: sha1 of the sorted
// "k=v&k=v" parameters followed by the secret.
func Sign(params map[string]string, secret string) string {
	keys := make([]string, 0, len(params))
	for k := range params {
		keys = append(keys, k)
	}
	slices.Sort(keys)
	pairs := make([]string, 0, len(keys))
	for _, k := range keys {
		pairs = append(pairs, k+"="+params[k])
	}
	sum := sha1.Sum([]byte(strings.Join(pairs, "&") + secret))
	return hex.EncodeToString(sum[:])
}

func (u *CloudinaryUploader) guard(ctx context.Context, fn func(ctx context.Context) error) error {
	_, err := u.breaker.Execute(func() (any, error) {
		return nil, retry.Do(ctx, u.opts.Retry, fn)
	})
	if errors.Is(err, gobreaker.ErrOpenState) || errors.Is(err, gobreaker.ErrTooManyRequests) {
		return fmt.Errorf("%w: %v", ErrCircuitOpen, err)
	}
	return err
}

func (u *CloudinaryUploader) do(req *http.Request, out *cloudinaryResponse) error {
	res, err := u.client.Do(req)
	if err != nil {
		return fmt.Errorf("media: cloudinary request: %w", err)
	}
	defer res.Body.Close()

	payload, err := io.ReadAll(io.LimitReader(res.Body, 1<<20))
	if err != nil {
		return fmt.Errorf("media: read cloudinary response: %w", err)
	}
	_ = json.Unmarshal(payload, out)

	switch {
	case res.StatusCode >= 200 && res.StatusCode < 300:
		return nil
	case res.StatusCode == http.StatusTooManyRequests || res.StatusCode >= 500:
		u.logger.Warn("cloudinary request failed", "status", res.StatusCode)
		return fmt.Errorf("media: cloudinary status %d", res.StatusCode)
	default:
		msg := http.StatusText(res.StatusCode)
		if out.Error != nil && out.Error.Message != "" {
			msg = out.Error.Message
		}
		return retry.Permanent(fmt.Errorf("%w: %s", ErrRejected, msg))
	}
}

func uploadForm(data []byte, filename, preset, folder, publicID string) (io.Reader, string, error) {
	buf := &bytes.Buffer{}
	w := multipart.NewWriter(buf)
	fields := [][2]string{{"upload_preset", preset}, {"public_id", publicID}}
	if folder != "" {
		fields = append(fields, [2]string{"folder", folder})
	}
	for _, f := range fields {
		if err := w.WriteField(f[0], f[1]); err != nil {
			return nil, "", err
		}
	}
	part, err := w.CreateFormFile("file", filename)
	if err != nil {
		return nil, "", err
	}
	if _, err := part.Write(data); err != nil {
		return nil, "", err
	}
	if err := w.Close(); err != nil {
		return nil, "", err
	}
	return buf, w.FormDataContentType(), nil
}
