package storage

import (
	"bytes"
	"context"
	"encoding/json"
	"errors"
	"fmt"
	"io"
	"net/http"
	"net/url"
	"path"
	"strings"
	"time"

	"github.com/google/uuid"
)

// SignedURLExpiry is the lifetime of every signed URL, in seconds
const SignedURLExpiry = 3600

// MaxFileSize caps uploaded edital PDFs
const MaxFileSize = 20 << 20

// ErrArquivoInvalido is returned for files that are not PDFs
var ErrArquivoInvalido = errors.New("arquivo inválido: envie um PDF")

// ValidarArquivo checks an edital upload before anything is sent out
func ValidarArquivo(nome string, conteudo []byte) error {
	if !strings.EqualFold(path.Ext(nome), ".pdf") {
		return ErrArquivoInvalido
	}
	if len(conteudo) == 0 || len(conteudo) > MaxFileSize {
		return fmt.Errorf("%w: tamanho %d bytes", ErrArquivoInvalido, len(conteudo))
	}
	if http.DetectContentType(conteudo) != "application/pdf" {
		return ErrArquivoInvalido
	}
	return nil
}

// ObjectPath builds the storage path for a user's edital request file
func ObjectPath(userID string) string {
	return fmt.Sprintf("solicitacoes/%s/%s.pdf", userID, uuid.NewString())
}

// Client uploads and signs edital files in an object storage bucket
type Client struct {
	baseURL    string
	bucket     string
	serviceKey string
	httpClient *http.Client
}

// NewClient creates a storage client for bucket under baseURL
func NewClient(baseURL, bucket, serviceKey string) *Client {
	return &Client{
		baseURL:    strings.TrimRight(baseURL, "/"),
		bucket:     bucket,
		serviceKey: serviceKey,
		httpClient: &http.Client{Timeout: 60 * time.Second},
	}
}

type signRequest struct {
	ExpiresIn int `json:"expiresIn"`
}

type signResponse struct {
	SignedURL string `json:"signedURL"`
	URL       string `json:"url"`
	Error     string `json:"error"`
}

// SignedDownloadURL returns a URL that serves objectPath for SignedURLExpiry seconds
func (c *Client) SignedDownloadURL(ctx context.Context, objectPath string) (string, error) {
	return c.sign(ctx, "object/sign", objectPath)
}

// SignedUploadURL returns a URL that accepts a PUT of objectPath
func (c *Client) SignedUploadURL(ctx context.Context, objectPath string) (string, error) {
	return c.sign(ctx, "object/upload/sign", objectPath)
}

// Upload validates and stores a PDF at objectPath through a signed upload URL
func (c *Client) Upload(ctx context.Context, objectPath, nome string, conteudo []byte) error {
	if err := ValidarArquivo(nome, conteudo); err != nil {
		return err
	}

	signed, err := c.SignedUploadURL(ctx, objectPath)
	if err != nil {
		return err
	}

	req, err := http.NewRequestWithContext(ctx, http.MethodPut, signed, bytes.NewReader(conteudo))
	if err != nil {
		return fmt.Errorf("failed to create upload request: %w", err)
	}
	req.Header.Set("Content-Type", "application/pdf")

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return fmt.Errorf("failed to upload file: %w", err)
	}
	defer resp.Body.Close()

	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		body, _ := io.ReadAll(io.LimitReader(resp.Body, 4096))
		return fmt.Errorf("upload returned status %d: %s", resp.StatusCode, strings.TrimSpace(string(body)))
	}
	return nil
}

func (c *Client) sign(ctx context.Context, action, objectPath string) (string, error) {
	payload, err := json.Marshal(signRequest{ExpiresIn: SignedURLExpiry})
	if err != nil {
		return "", fmt.Errorf("failed to marshal sign request: %w", err)
	}

	endpoint := fmt.Sprintf("%s/%s/%s/%s", c.baseURL, action, url.PathEscape(c.bucket), strings.TrimLeft(objectPath, "/"))
	req, err := http.NewRequestWithContext(ctx, http.MethodPost, endpoint, bytes.NewReader(payload))
	if err != nil {
		return "", fmt.Errorf("failed to create sign request: %w", err)
	}
	req.Header.Set("Content-Type", "application/json")
	if c.serviceKey != "" {
		req.Header.Set("Authorization", "Bearer "+c.serviceKey)
	}

	resp, err := c.httpClient.Do(req)
	if err != nil {
		return "", fmt.Errorf("failed to sign %s: %w", objectPath, err)
	}
	defer resp.Body.Close()

	var out signResponse
	if err := json.NewDecoder(io.LimitReader(resp.Body, 1<<16)).Decode(&out); err != nil && resp.StatusCode < 300 {
		return "", fmt.Errorf("failed to decode sign response: %w", err)
	}
	if resp.StatusCode < 200 || resp.StatusCode >= 300 {
		return "", fmt.Errorf("sign returned status %d: %s", resp.StatusCode, out.Error)
	}

	signed := out.SignedURL
	if signed == "" {
		signed = out.URL
	}
	if signed == "" {
		return "", fmt.Errorf("sign returned no URL")
	}
	if strings.HasPrefix(signed, "/") {
		signed = c.baseURL + signed
	}
	return signed, nil
}
