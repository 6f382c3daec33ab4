package predict

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"mime/multipart"
	"net/http"
	"net/textproto"
	"net/url"
	"strings"

	"github.com/ds124wfegd/digit-ui/internal/entity"
)

// FallbackMessage is shown when no better message can be derived from a failure.
const FallbackMessage = "Failed to predict"

// Predictor represents the external digit classifier.
type Predictor interface {
	Predict(ctx context.Context, img *entity.SelectedImage) (*entity.Prediction, error)
}

type Client struct {
	url    *url.URL
	client *http.Client
}

// NewClient builds a client for baseURL. No timeout is applied unless
// the given http.Client carries one.
func NewClient(baseURL string, client *http.Client) (*Client, error) {
	u, err := url.Parse(strings.TrimSuffix(strings.TrimSpace(baseURL), "/"))
	if err != nil {
		return nil, fmt.Errorf("invalid url: %w", err)
	}
	if u.Scheme == "" || u.Host == "" {
		return nil, fmt.Errorf("invalid url %q: scheme and host are required", baseURL)
	}

	if client == nil {
		client = &http.Client{}
	}

	return &Client{url: u, client: client}, nil
}

func (c *Client) BaseURL() string {
	return c.url.String()
}

func (c *Client) Predict(ctx context.Context, img *entity.SelectedImage) (*entity.Prediction, error) {
	if img == nil || len(img.Data) == 0 {
		return nil, entity.ErrNoImage
	}

	body := &bytes.Buffer{}
	writer := multipart.NewWriter(body)

	part, err := writer.CreatePart(fileHeader(img))
	if err != nil {
		return nil, fmt.Errorf("create form: %w", err)
	}
	if _, err = part.Write(img.Data); err != nil {
		return nil, fmt.Errorf("write form file: %w", err)
	}
	if err = writer.Close(); err != nil {
		return nil, fmt.Errorf("close multipart writer: %w", err)
	}

	request, err := http.NewRequestWithContext(ctx, http.MethodPost, c.url.JoinPath("predict").String(), body)
	if err != nil {
		return nil, fmt.Errorf("create request: %w", err)
	}
	request.Header.Set("Content-Type", writer.FormDataContentType())
	request.Header.Set("Accept", "application/json")

	response, err := c.client.Do(request)
	if err != nil {
		return nil, &RequestFailedError{Err: err}
	}
	defer response.Body.Close()

	if response.StatusCode < 200 || response.StatusCode > 299 {
		text, _ := io.ReadAll(response.Body)
		return nil, &RequestFailedError{
			StatusCode: response.StatusCode,
			Message:    strings.TrimSpace(string(text)),
		}
	}

	var resp entity.Prediction
	if err = json.NewDecoder(response.Body).Decode(&resp); err != nil {
		return nil, &InvalidResponseError{StatusCode: response.StatusCode, Err: err}
	}

	return &resp, nil
}

// Health checks GET {base}/health on the classifier.
func (c *Client) Health(ctx context.Context) error {
	request, err := http.NewRequestWithContext(ctx, http.MethodGet, c.url.JoinPath("health").String(), nil)
	if err != nil {
		return fmt.Errorf("create request: %w", err)
	}

	response, err := c.client.Do(request)
	if err != nil {
		return fmt.Errorf("send request: %w", err)
	}
	defer response.Body.Close()
	_, _ = io.Copy(io.Discard, response.Body)

	if response.StatusCode != http.StatusOK {
		return fmt.Errorf("classifier unhealthy: %d", response.StatusCode)
	}
	return nil
}

func fileHeader(img *entity.SelectedImage) textproto.MIMEHeader {
	name := img.Name
	if name == "" {
		name = "image"
	}
	contentType := img.ContentType
	if contentType == "" {
		contentType = "application/octet-stream"
	}

	h := make(textproto.MIMEHeader)
	h.Set("Content-Disposition",
		fmt.Sprintf(`form-data; name="file"; filename="%s"`, escapeQuotes(name)))
	h.Set("Content-Type", contentType)
	return h
}

var quoteEscaper = strings.NewReplacer("\\", "\\\\", `"`, "\\\"")

func escapeQuotes(s string) string {
	return quoteEscaper.Replace(s)
}

// DisplayMessage turns a Predict error into the text shown next to the buttons.
func DisplayMessage(err error) string {
	if err == nil {
		return ""
	}

	var reqErr *RequestFailedError
	if errors.As(err, &reqErr) {
		if msg := reqErr.displayText(); msg != "" {
			return msg
		}
	}
	return FallbackMessage
}
